package usecase

import (
	"fmt"
	"math"
	"strconv"

	"github.com/vitos/take_profit/internal/domain"
	"go.uber.org/zap"
)

// OrderForm bundles the order inputs with its take-profit ladder and
// dispatches presentation commands to them.
type OrderForm struct {
	Order      *OrderContext
	TakeProfit *ProfitTargetEngine
	logger     *zap.Logger
}

func NewOrderForm(order *OrderContext, config LadderConfig, logger *zap.Logger) *OrderForm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderForm{
		Order:      order,
		TakeProfit: NewProfitTargetEngine(order, config, logger),
		logger:     logger,
	}
}

// Apply runs a single command. Unknown target ids are not an error.
// A command whose result no longer fits in a float64 is undone and rejected.
func (f *OrderForm) Apply(cmd domain.Command) (domain.CommandResult, error) {
	if !finite(cmd.Value) {
		return domain.CommandResult{}, fmt.Errorf("%s value must be finite: %w", cmd.Type, domain.ErrInvalidCommand)
	}

	saved := f.save()
	accepted := true

	switch cmd.Type {
	case domain.CmdSetSide:
		if !cmd.Side.Valid() {
			return domain.CommandResult{}, fmt.Errorf("side %q: %w", cmd.Side, domain.ErrInvalidCommand)
		}
		f.Order.SetSide(cmd.Side)
	case domain.CmdSetUnitPrice:
		v, err := nonNegative(cmd)
		if err != nil {
			return domain.CommandResult{}, err
		}
		f.Order.SetUnitPrice(v)
	case domain.CmdSetPositionAmount:
		v, err := nonNegative(cmd)
		if err != nil {
			return domain.CommandResult{}, err
		}
		f.Order.SetPositionAmount(v)
	case domain.CmdSetTotalValue:
		v, err := nonNegative(cmd)
		if err != nil {
			return domain.CommandResult{}, err
		}
		f.Order.SetTotalValue(v)
	case domain.CmdEnable:
		f.TakeProfit.Enable()
	case domain.CmdDisable:
		f.TakeProfit.Disable()
	case domain.CmdToggle:
		f.TakeProfit.Toggle()
	case domain.CmdAddTarget:
		f.TakeProfit.AddTarget()
	case domain.CmdDeleteTarget:
		f.TakeProfit.DeleteTarget(cmd.TargetID)
	case domain.CmdChangeProfit:
		f.TakeProfit.ChangeProfit(cmd.TargetID, cmd.Value)
	case domain.CmdChangeTargetPrice:
		f.TakeProfit.ChangeTargetPrice(cmd.TargetID, cmd.Value)
	case domain.CmdChangeAllocation:
		f.TakeProfit.ChangeAllocation(cmd.TargetID, cmd.Value)
	case domain.CmdCommitProfit:
		f.TakeProfit.CommitProfit(cmd.TargetID)
	case domain.CmdCommitTargetPrice:
		f.TakeProfit.CommitTargetPrice(cmd.TargetID)
	case domain.CmdSubmit:
		accepted = f.TakeProfit.Submit()
	default:
		return domain.CommandResult{}, fmt.Errorf("%q: %w", cmd.Type, domain.ErrUnknownCommand)
	}

	snapshot := f.Snapshot()
	if !snapshot.Finite() {
		f.restore(saved)
		f.logger.Warn("Command overflows derived values, undone",
			zap.String("type", string(cmd.Type)),
			zap.Int("targetID", cmd.TargetID))
		return domain.CommandResult{}, fmt.Errorf("%s: value out of range: %w", cmd.Type, domain.ErrInvalidCommand)
	}

	f.logger.Debug("Command applied",
		zap.String("type", string(cmd.Type)),
		zap.Int("targetID", cmd.TargetID),
		zap.Bool("accepted", accepted))

	return domain.CommandResult{Snapshot: snapshot, Accepted: accepted}, nil
}

func (f *OrderForm) Snapshot() domain.OrderFormSnapshot {
	profit := f.TakeProfit.ProjectedProfit()
	return domain.OrderFormSnapshot{
		Side:               f.Order.Side(),
		UnitPrice:          f.Order.UnitPrice(),
		PositionAmount:     f.Order.PositionAmount(),
		TotalValue:         f.Order.TotalValue(),
		TakeProfitEnabled:  f.TakeProfit.Enabled(),
		AtCapacity:         f.TakeProfit.IsAtCapacity(),
		MaxTargets:         f.TakeProfit.config.MaxTargets,
		Targets:            f.TakeProfit.Targets(),
		ProjectedProfit:    profit,
		ProjectedProfitTxt: strconv.FormatFloat(profit, 'f', 2, 64),
		Errors:             f.TakeProfit.AggregatedErrors(),
	}
}

func nonNegative(cmd domain.Command) (float64, error) {
	if cmd.Value == nil {
		return 0, fmt.Errorf("%s requires a value: %w", cmd.Type, domain.ErrInvalidCommand)
	}
	if *cmd.Value < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %v: %w", cmd.Type, *cmd.Value, domain.ErrInvalidCommand)
	}
	return *cmd.Value, nil
}

func finite(v *float64) bool {
	return v == nil || (!math.IsNaN(*v) && !math.IsInf(*v, 0))
}

type formState struct {
	side           domain.OrderSide
	unitPrice      float64
	positionAmount float64
	ladder         engineState
}

func (f *OrderForm) save() formState {
	return formState{
		side:           f.Order.side,
		unitPrice:      f.Order.unitPrice,
		positionAmount: f.Order.positionAmount,
		ladder:         f.TakeProfit.save(),
	}
}

// restore writes the order fields directly; the ladder is restored as saved,
// so nothing is repriced.
func (f *OrderForm) restore(s formState) {
	f.Order.side = s.side
	f.Order.unitPrice = s.unitPrice
	f.Order.positionAmount = s.positionAmount
	f.TakeProfit.restore(s.ladder)
}
