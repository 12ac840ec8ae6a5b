package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/take_profit/internal/domain"
	"github.com/vitos/take_profit/internal/usecase"
	"go.uber.org/zap"
)

const epsilon = 0.000001

func newEngine(side domain.OrderSide, price, amount float64) (*usecase.OrderContext, *usecase.ProfitTargetEngine) {
	order := usecase.NewOrderContext(side, price, amount)
	engine := usecase.NewProfitTargetEngine(order, usecase.DefaultLadderConfig(), zap.NewNop())
	return order, engine
}

func allocations(targets []domain.ProfitTarget) []float64 {
	out := make([]float64, 0, len(targets))
	for _, t := range targets {
		out = append(out, domain.Value(t.Allocation))
	}
	return out
}

func TestEnable_CreatesDefaultTarget(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)

	engine.Enable()

	require.True(t, engine.Enabled())
	targets := engine.Targets()
	require.Len(t, targets, 1)
	assert.Equal(t, 1, targets[0].ID)
	assert.InDelta(t, 2.0, domain.Value(targets[0].Profit), epsilon)
	assert.InDelta(t, 102.0, domain.Value(targets[0].TargetPrice), epsilon)
	assert.InDelta(t, 100.0, domain.Value(targets[0].Allocation), epsilon)
	assert.Empty(t, targets[0].Errors)

	// Enabling twice is a no-op.
	engine.Enable()
	assert.Len(t, engine.Targets(), 1)
}

func TestAddTarget_RebalancesLargestAllocation(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()

	engine.AddTarget()

	targets := engine.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, 2, targets[1].ID)
	assert.InDelta(t, 4.0, domain.Value(targets[1].Profit), epsilon)
	assert.InDelta(t, 104.0, domain.Value(targets[1].TargetPrice), epsilon)
	assert.Equal(t, []float64{80, 20}, allocations(targets))
}

func TestAddTarget_AllocationSumNeverExceedsCeiling(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()

	for i := 0; i < 10; i++ {
		engine.AddTarget()

		var sum float64
		for _, a := range allocations(engine.Targets()) {
			sum += a
		}
		assert.LessOrEqual(t, sum, 100.0)
	}
	assert.Equal(t, []float64{20, 20, 20, 20, 20}, allocations(engine.Targets()))
}

func TestAddTarget_CapacityIsFive(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()

	for i := 0; i < 4; i++ {
		assert.False(t, engine.IsAtCapacity())
		engine.AddTarget()
	}
	require.Len(t, engine.Targets(), 5)
	assert.True(t, engine.IsAtCapacity())

	engine.AddTarget()
	targets := engine.Targets()
	assert.Len(t, targets, 5)
	assert.InDelta(t, 10.0, domain.Value(targets[4].Profit), epsilon)
}

func TestAddTarget_ProfitFollowsLastTarget(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()
	engine.ChangeProfit(1, domain.Float(7.5))

	engine.AddTarget()
	assert.InDelta(t, 9.5, domain.Value(engine.Targets()[1].Profit), epsilon)

	// A cleared profit counts as 0.
	engine.ChangeProfit(2, nil)
	engine.AddTarget()
	assert.InDelta(t, 2.0, domain.Value(engine.Targets()[2].Profit), epsilon)
}

func TestAddTarget_ClampsRebalanceAtZero(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()
	engine.AddTarget()
	engine.AddTarget()
	for _, id := range []int{1, 2, 3} {
		engine.ChangeAllocation(id, domain.Float(50))
	}

	// 50+50+50+20 = 170, overflow 70 is more than the largest allocation.
	engine.AddTarget()

	assert.Equal(t, []float64{0, 50, 50, 20}, allocations(engine.Targets()))
}

func TestAddTarget_OnDisabledLadderEnables(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)

	engine.AddTarget()

	assert.True(t, engine.Enabled())
	assert.Len(t, engine.Targets(), 1)
}

func TestTargetIDs_AreNeverReused(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()
	engine.AddTarget()
	engine.DeleteTarget(2)
	engine.AddTarget()

	targets := engine.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, 3, targets[1].ID)

	// Re-enabling continues the session counter instead of restarting at 1.
	engine.Disable()
	engine.Enable()
	assert.Equal(t, 4, engine.Targets()[0].ID)
}

func TestDeleteTarget(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()
	engine.AddTarget()
	engine.AddTarget()

	engine.DeleteTarget(2)
	targets := engine.Targets()
	require.Len(t, targets, 2)
	assert.Equal(t, 1, targets[0].ID)
	assert.Equal(t, 3, targets[1].ID)

	// Unknown id is ignored.
	engine.DeleteTarget(42)
	assert.Len(t, engine.Targets(), 2)
	assert.True(t, engine.Enabled())
}

func TestDeleteTarget_LastTargetDisables(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()
	engine.ChangeAllocation(1, domain.Float(10))
	require.False(t, engine.Submit())
	require.NotEmpty(t, engine.AggregatedErrors())

	engine.DeleteTarget(1)

	assert.False(t, engine.Enabled())
	assert.Empty(t, engine.Targets())
	assert.Empty(t, engine.AggregatedErrors())
}

func TestToggle(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)

	engine.Toggle()
	assert.True(t, engine.Enabled())
	assert.Len(t, engine.Targets(), 1)

	engine.AddTarget()
	engine.Toggle()
	assert.False(t, engine.Enabled())
	assert.Empty(t, engine.Targets())
}

func TestChangeAndCommit(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()

	engine.ChangeProfit(1, domain.Float(10))
	// Nothing is derived until the field is committed.
	assert.InDelta(t, 102.0, domain.Value(engine.Targets()[0].TargetPrice), epsilon)

	engine.CommitProfit(1)
	assert.InDelta(t, 110.0, domain.Value(engine.Targets()[0].TargetPrice), epsilon)

	engine.ChangeTargetPrice(1, domain.Float(150))
	assert.InDelta(t, 10.0, domain.Value(engine.Targets()[0].Profit), epsilon)

	engine.CommitTargetPrice(1)
	assert.InDelta(t, 0.5, domain.Value(engine.Targets()[0].Profit), epsilon)

	engine.ChangeAllocation(1, domain.Float(55))
	target := engine.Targets()[0]
	assert.InDelta(t, 55.0, domain.Value(target.Allocation), epsilon)
	assert.InDelta(t, 0.5, domain.Value(target.Profit), epsilon)
	assert.InDelta(t, 150.0, domain.Value(target.TargetPrice), epsilon)
}

func TestChange_ClearedAndUnknown(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()

	engine.ChangeProfit(1, nil)
	engine.ChangeAllocation(1, nil)
	target := engine.Targets()[0]
	assert.Nil(t, target.Profit)
	assert.Nil(t, target.Allocation)

	// A cleared profit commits as 0, the field itself stays nil.
	engine.CommitProfit(1)
	target = engine.Targets()[0]
	assert.Nil(t, target.Profit)
	assert.InDelta(t, 100.0, domain.Value(target.TargetPrice), epsilon)

	before := engine.Targets()
	engine.ChangeProfit(99, domain.Float(3))
	engine.CommitProfit(99)
	engine.CommitTargetPrice(99)
	assert.Equal(t, before, engine.Targets())
}

func TestTargets_ReturnsCopies(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()

	targets := engine.Targets()
	*targets[0].Profit = 99
	targets[0].Errors = append(targets[0].Errors, "mutated")

	fresh := engine.Targets()[0]
	assert.InDelta(t, 2.0, domain.Value(fresh.Profit), epsilon)
	assert.Empty(t, fresh.Errors)
}

func TestOrderContext_RepricesTargets(t *testing.T) {
	order, engine := newEngine(domain.SideBuy, 100, 1)
	engine.Enable()
	engine.AddTarget()

	order.SetSide(domain.SideSell)
	targets := engine.Targets()
	assert.InDelta(t, 98.0, domain.Value(targets[0].TargetPrice), epsilon)
	assert.InDelta(t, 96.0, domain.Value(targets[1].TargetPrice), epsilon)

	order.SetUnitPrice(200)
	targets = engine.Targets()
	assert.InDelta(t, 196.0, domain.Value(targets[0].TargetPrice), epsilon)
	assert.InDelta(t, 192.0, domain.Value(targets[1].TargetPrice), epsilon)
	// Profit stays the source of truth.
	assert.InDelta(t, 2.0, domain.Value(targets[0].Profit), epsilon)
}

func TestOrderContext_TotalValue(t *testing.T) {
	order := usecase.NewOrderContext(domain.SideBuy, 0, 3)
	assert.Equal(t, 0.0, order.TotalValue())

	order.SetTotalValue(500)
	assert.Equal(t, 0.0, order.PositionAmount())

	order.SetUnitPrice(250)
	order.SetTotalValue(500)
	assert.InDelta(t, 2.0, order.PositionAmount(), epsilon)
	assert.InDelta(t, 500.0, order.TotalValue(), epsilon)

	order.SetPositionAmount(4)
	assert.InDelta(t, 1000.0, order.TotalValue(), epsilon)
}

func TestOrderContext_InvalidSideFallsBackToBuy(t *testing.T) {
	order := usecase.NewOrderContext("", 10, 1)
	assert.Equal(t, domain.SideBuy, order.Side())
}

func TestProjectedProfit(t *testing.T) {
	tests := []struct {
		name string
		side domain.OrderSide
		want float64
	}{
		// 2 * (0.8*2 + 0.2*4) = 4.8
		{"Buy", domain.SideBuy, 4.8},
		{"Sell", domain.SideSell, 4.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, engine := newEngine(tt.side, 100, 2)
			engine.Enable()
			engine.AddTarget()
			assert.InDelta(t, tt.want, engine.ProjectedProfit(), epsilon)
		})
	}
}

func TestProjectedProfit_RoundsAndTreatsNilAsZero(t *testing.T) {
	_, engine := newEngine(domain.SideBuy, 3, 1)
	engine.Enable()
	engine.ChangeTargetPrice(1, domain.Float(3.333333))
	assert.InDelta(t, 0.33, engine.ProjectedProfit(), epsilon)

	engine.ChangeAllocation(1, nil)
	assert.Equal(t, 0.0, engine.ProjectedProfit())

	engine.Disable()
	assert.Equal(t, 0.0, engine.ProjectedProfit())
}
