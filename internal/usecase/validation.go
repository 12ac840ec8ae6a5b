package usecase

import (
	"fmt"

	"github.com/vitos/take_profit/internal/domain"
	"go.uber.org/zap"
)

const errProfitNotIncreasing = "Each target's profit should be greater than the previous one"

// Submit validates the ladder and reports whether the order may be sent.
// A disabled ladder is not validated and never blocks submission.
func (e *ProfitTargetEngine) Submit() bool {
	if !e.enabled {
		return true
	}

	e.globalErrors = []string{}
	for _, t := range e.targets {
		t.Errors = []string{}
	}

	if sum := e.profitSum(); sum > e.config.MaxProfitSum {
		e.globalErrors = append(e.globalErrors,
			fmt.Sprintf("Maximum profit sum is %s%%", formatNumber(e.config.MaxProfitSum)))
	}

	ceiling := e.config.AllocationCeiling
	sum := e.allocationSum()
	switch {
	case sum > ceiling:
		e.globalErrors = append(e.globalErrors,
			fmt.Sprintf("%s out of %s%% selected. Please decrease by %s",
				formatNumber(sum), formatNumber(ceiling), formatNumber(sum-ceiling)))
	case sum < ceiling:
		e.globalErrors = append(e.globalErrors,
			fmt.Sprintf("%s out of %s%% selected. Please increase by %s",
				formatNumber(sum), formatNumber(ceiling), formatNumber(ceiling-sum)))
	}

	var prev *domain.ProfitTarget
	for _, t := range e.targets {
		profit := domain.Value(t.Profit)
		if profit < e.config.MinProfit {
			t.Errors = append(t.Errors, fmt.Sprintf("Minimum value is %s%%", formatNumber(e.config.MinProfit)))
		}
		if prev != nil && domain.Value(prev.Profit) >= profit {
			t.Errors = append(t.Errors, errProfitNotIncreasing)
		}
		if domain.Value(t.TargetPrice) <= 0 {
			t.Errors = append(t.Errors, "Price must be greater than 0")
		}
		prev = t
	}

	errs := e.AggregatedErrors()
	e.logger.Info("Take profit validated",
		zap.Int("targets", len(e.targets)),
		zap.Int("errors", len(errs)))
	return len(errs) == 0
}
