package usecase

import (
	"github.com/vitos/take_profit/internal/domain"
	"go.uber.org/zap"
)

// ProfitTargetEngine owns the take-profit ladder of a single order.
//
// It is not safe for concurrent use: every command runs to completion
// before the next one, and adapters that accept concurrent input must
// serialize calls themselves.
type ProfitTargetEngine struct {
	order        *OrderContext
	config       LadderConfig
	logger       *zap.Logger
	targets      []*domain.ProfitTarget
	enabled      bool
	globalErrors []string

	// lastID keeps counting across disable/enable, so a re-enabled ladder
	// starts above 1 instead of restarting at 1 like an empty ladder would.
	// Ids stay unique for the whole session.
	lastID int
}

// engineState is a deep copy of the mutable ladder state.
type engineState struct {
	targets      []domain.ProfitTarget
	enabled      bool
	globalErrors []string
	lastID       int
}

func NewProfitTargetEngine(order *OrderContext, config LadderConfig, logger *zap.Logger) *ProfitTargetEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &ProfitTargetEngine{
		order:  order,
		config: config,
		logger: logger,
	}
	order.repricer = e
	return e
}

func (e *ProfitTargetEngine) Enabled() bool { return e.enabled }

// Targets returns deep copies of the ladder in display order.
func (e *ProfitTargetEngine) Targets() []domain.ProfitTarget {
	out := make([]domain.ProfitTarget, 0, len(e.targets))
	for _, t := range e.targets {
		out = append(out, t.Clone())
	}
	return out
}

func (e *ProfitTargetEngine) IsAtCapacity() bool {
	return len(e.targets) >= e.config.MaxTargets
}

// Enable attaches a ladder with one default target.
func (e *ProfitTargetEngine) Enable() {
	if e.enabled {
		return
	}
	e.appendTarget()
	e.enabled = true
	e.logger.Debug("Take profit enabled")
}

// Disable drops every target and all global errors.
func (e *ProfitTargetEngine) Disable() {
	e.enabled = false
	e.targets = nil
	e.globalErrors = nil
	e.logger.Debug("Take profit disabled")
}

func (e *ProfitTargetEngine) Toggle() {
	if e.enabled {
		e.Disable()
	} else {
		e.Enable()
	}
}

// AddTarget appends a target after the last one. It is silently ignored at
// capacity. On a disabled ladder it behaves like Enable.
func (e *ProfitTargetEngine) AddTarget() {
	if !e.enabled {
		e.Enable()
		return
	}
	e.appendTarget()
}

func (e *ProfitTargetEngine) appendTarget() {
	if e.IsAtCapacity() {
		return
	}

	profit := e.config.ProfitStep
	allocation := e.config.AllocationCeiling
	if n := len(e.targets); n > 0 {
		profit = domain.Value(e.targets[n-1].Profit) + e.config.ProfitStep
		allocation = e.config.AllocationStep
	}

	e.lastID++
	target := &domain.ProfitTarget{
		ID:          e.lastID,
		Profit:      domain.Float(profit),
		TargetPrice: domain.Float(CalcTargetPrice(e.order.Side(), e.order.UnitPrice(), &profit)),
		Allocation:  domain.Float(allocation),
		Errors:      []string{},
	}
	e.targets = append(e.targets, target)

	e.logger.Debug("Profit target added",
		zap.Int("id", target.ID),
		zap.Float64("profit", profit),
		zap.Float64("targetPrice", *target.TargetPrice),
		zap.Float64("allocation", allocation))

	e.rebalanceAllocations()
}

// rebalanceAllocations takes the overflow above the ceiling from the single
// largest allocation (first one on ties), clamped at 0.
func (e *ProfitTargetEngine) rebalanceAllocations() {
	sum := e.allocationSum()
	if sum <= e.config.AllocationCeiling {
		return
	}

	var biggest *domain.ProfitTarget
	for _, t := range e.targets {
		if biggest == nil || domain.Value(t.Allocation) > domain.Value(biggest.Allocation) {
			biggest = t
		}
	}
	if biggest == nil || domain.Value(biggest.Allocation) == 0 {
		return
	}

	overflow := sum - e.config.AllocationCeiling
	reduced := *biggest.Allocation - overflow
	if reduced < 0 {
		e.logger.Warn("Allocation overflow exceeds largest allocation, clamping at 0",
			zap.Int("id", biggest.ID),
			zap.Float64("allocation", *biggest.Allocation),
			zap.Float64("overflow", overflow))
		reduced = 0
	}
	biggest.Allocation = domain.Float(reduced)

	e.logger.Debug("Allocations rebalanced",
		zap.Int("id", biggest.ID),
		zap.Float64("overflow", overflow),
		zap.Float64("allocation", reduced))
}

// DeleteTarget removes a target by id. Removing the last one disables the ladder.
func (e *ProfitTargetEngine) DeleteTarget(id int) {
	for i, t := range e.targets {
		if t.ID == id {
			e.targets = append(e.targets[:i], e.targets[i+1:]...)
			e.logger.Debug("Profit target deleted", zap.Int("id", id))
			break
		}
	}
	if len(e.targets) == 0 && e.enabled {
		e.Disable()
	}
}

func (e *ProfitTargetEngine) ChangeProfit(id int, value *float64) {
	if t := e.find(id); t != nil {
		t.Profit = copyValue(value)
	}
}

func (e *ProfitTargetEngine) ChangeTargetPrice(id int, value *float64) {
	if t := e.find(id); t != nil {
		t.TargetPrice = copyValue(value)
	}
}

// ChangeAllocation stores the allocation as typed; nothing is re-derived.
func (e *ProfitTargetEngine) ChangeAllocation(id int, value *float64) {
	if t := e.find(id); t != nil {
		t.Allocation = copyValue(value)
	}
}

// CommitProfit re-derives the target price from the committed profit.
func (e *ProfitTargetEngine) CommitProfit(id int) {
	if t := e.find(id); t != nil {
		t.TargetPrice = domain.Float(CalcTargetPrice(e.order.Side(), e.order.UnitPrice(), t.Profit))
	}
}

// CommitTargetPrice re-derives the profit from the committed target price.
func (e *ProfitTargetEngine) CommitTargetPrice(id int) {
	if t := e.find(id); t != nil {
		t.Profit = domain.Float(CalcProfit(e.order.UnitPrice(), t.TargetPrice))
	}
}

// recalcTargetPrices follows a side or price change: profit is the source of truth.
func (e *ProfitTargetEngine) recalcTargetPrices() {
	for _, t := range e.targets {
		t.TargetPrice = domain.Float(CalcTargetPrice(e.order.Side(), e.order.UnitPrice(), t.Profit))
	}
}

// ProjectedProfit is the absolute profit if every target fills, rounded to cents.
func (e *ProfitTargetEngine) ProjectedProfit() float64 {
	var total float64
	price := e.order.UnitPrice()
	amount := e.order.PositionAmount()
	for _, t := range e.targets {
		share := amount * (domain.Value(t.Allocation) / 100)
		if e.order.Side() == domain.SideSell {
			total += share * (price - domain.Value(t.TargetPrice))
		} else {
			total += share * (domain.Value(t.TargetPrice) - price)
		}
	}
	return round2(total)
}

// AggregatedErrors lists per-target errors in ladder order followed by the
// global ones, keeping the first occurrence of each message.
func (e *ProfitTargetEngine) AggregatedErrors() []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(msg string) {
		if msg == "" {
			return
		}
		if _, ok := seen[msg]; ok {
			return
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	for _, t := range e.targets {
		for _, msg := range t.Errors {
			add(msg)
		}
	}
	for _, msg := range e.globalErrors {
		add(msg)
	}
	return out
}

func (e *ProfitTargetEngine) allocationSum() float64 {
	var sum float64
	for _, t := range e.targets {
		sum += domain.Value(t.Allocation)
	}
	return sum
}

func (e *ProfitTargetEngine) profitSum() float64 {
	var sum float64
	for _, t := range e.targets {
		sum += domain.Value(t.Profit)
	}
	return sum
}

func (e *ProfitTargetEngine) find(id int) *domain.ProfitTarget {
	for _, t := range e.targets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v)
}

func (e *ProfitTargetEngine) save() engineState {
	return engineState{
		targets:      e.Targets(),
		enabled:      e.enabled,
		globalErrors: append([]string(nil), e.globalErrors...),
		lastID:       e.lastID,
	}
}

func (e *ProfitTargetEngine) restore(s engineState) {
	e.targets = make([]*domain.ProfitTarget, 0, len(s.targets))
	for _, t := range s.targets {
		c := t.Clone()
		e.targets = append(e.targets, &c)
	}
	e.enabled = s.enabled
	e.globalErrors = s.globalErrors
	e.lastID = s.lastID
}
