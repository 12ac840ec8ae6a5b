package domain

import "math"

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

func (s OrderSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

// ProfitTarget is one exit point of the take-profit ladder.
// Nil fields mean the user cleared the input.
type ProfitTarget struct {
	ID          int      `json:"id"`
	Profit      *float64 `json:"profit"`       // percent
	TargetPrice *float64 `json:"target_price"` // absolute price
	Allocation  *float64 `json:"allocation"`   // percent of the position
	Errors      []string `json:"errors"`
}

// Clone returns a deep copy so callers never share pointers with the engine.
func (t ProfitTarget) Clone() ProfitTarget {
	c := ProfitTarget{
		ID:          t.ID,
		Profit:      copyFloat(t.Profit),
		TargetPrice: copyFloat(t.TargetPrice),
		Allocation:  copyFloat(t.Allocation),
		Errors:      make([]string, len(t.Errors)),
	}
	copy(c.Errors, t.Errors)
	return c
}

// OrderFormSnapshot is the read model handed to the presentation layer.
type OrderFormSnapshot struct {
	Side               OrderSide      `json:"side"`
	UnitPrice          float64        `json:"unit_price"`
	PositionAmount     float64        `json:"position_amount"`
	TotalValue         float64        `json:"total_value"`
	TakeProfitEnabled  bool           `json:"take_profit_enabled"`
	AtCapacity         bool           `json:"at_capacity"`
	MaxTargets         int            `json:"max_targets"`
	Targets            []ProfitTarget `json:"targets"`
	ProjectedProfit    float64        `json:"projected_profit"`
	ProjectedProfitTxt string         `json:"projected_profit_text"`
	Errors             []string       `json:"errors"`
}

// Finite reports whether every number in the snapshot can be encoded.
func (s OrderFormSnapshot) Finite() bool {
	for _, v := range []float64{s.UnitPrice, s.PositionAmount, s.TotalValue, s.ProjectedProfit} {
		if !isFinite(v) {
			return false
		}
	}
	for _, t := range s.Targets {
		for _, v := range []*float64{t.Profit, t.TargetPrice, t.Allocation} {
			if v != nil && !isFinite(*v) {
				return false
			}
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float is a helper for building optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// Value dereferences an optional field, treating nil as 0.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
