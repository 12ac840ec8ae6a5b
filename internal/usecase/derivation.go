package usecase

import (
	"math"
	"strconv"

	"github.com/vitos/take_profit/internal/domain"
)

// CalcTargetPrice derives an exit price from a profit percentage.
// Buy exits above the entry, sell exits below it. A nil profit counts as 0.
func CalcTargetPrice(side domain.OrderSide, price float64, profit *float64) float64 {
	delta := price * (domain.Value(profit) / 100)
	if side == domain.SideSell {
		return price - delta
	}
	return price + delta
}

// CalcProfit derives a profit percentage back from an exit price.
// The expression is the same for both sides and is not the inverse of
// CalcTargetPrice; existing behaviour is kept until product confirms otherwise.
func CalcProfit(price float64, targetPrice *float64) float64 {
	return (domain.Value(targetPrice) - price) / 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// formatNumber prints a number the way the UI shows raw input: no trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
