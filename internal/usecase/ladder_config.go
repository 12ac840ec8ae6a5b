package usecase

import (
	"errors"
	"fmt"
)

type LadderConfig struct {
	MaxTargets        int     `yaml:"max_targets" json:"max_targets"`
	ProfitStep        float64 `yaml:"profit_step" json:"profit_step"`               // percent added per new target
	AllocationStep    float64 `yaml:"allocation_step" json:"allocation_step"`       // allocation of every target after the first
	AllocationCeiling float64 `yaml:"allocation_ceiling" json:"allocation_ceiling"` // required allocation sum
	MaxProfitSum      float64 `yaml:"max_profit_sum" json:"max_profit_sum"`
	MinProfit         float64 `yaml:"min_profit" json:"min_profit"`
}

func DefaultLadderConfig() LadderConfig {
	return LadderConfig{
		MaxTargets:        5,
		ProfitStep:        2,
		AllocationStep:    20,
		AllocationCeiling: 100,
		MaxProfitSum:      500,
		MinProfit:         0.01,
	}
}

func (c LadderConfig) Validate() error {
	var errs []error
	if c.MaxTargets < 1 {
		errs = append(errs, fmt.Errorf("max_targets must be at least 1, got %d", c.MaxTargets))
	}
	if c.ProfitStep <= 0 {
		errs = append(errs, fmt.Errorf("profit_step must be positive, got %v", c.ProfitStep))
	}
	if c.AllocationCeiling <= 0 {
		errs = append(errs, fmt.Errorf("allocation_ceiling must be positive, got %v", c.AllocationCeiling))
	}
	if c.AllocationStep <= 0 || c.AllocationStep > c.AllocationCeiling {
		errs = append(errs, fmt.Errorf("allocation_step must be in (0, allocation_ceiling], got %v", c.AllocationStep))
	}
	if c.MaxProfitSum <= 0 {
		errs = append(errs, fmt.Errorf("max_profit_sum must be positive, got %v", c.MaxProfitSum))
	}
	if c.MinProfit < 0 {
		errs = append(errs, fmt.Errorf("min_profit cannot be negative, got %v", c.MinProfit))
	}
	return errors.Join(errs...)
}
