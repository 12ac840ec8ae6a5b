package usecase

import "github.com/vitos/take_profit/internal/domain"

// repricer is notified when the side or unit price changes.
type repricer interface {
	recalcTargetPrices()
}

// OrderContext holds the parent order inputs. Setters do no validation.
type OrderContext struct {
	side           domain.OrderSide
	unitPrice      float64
	positionAmount float64
	repricer       repricer
}

func NewOrderContext(side domain.OrderSide, unitPrice, positionAmount float64) *OrderContext {
	if !side.Valid() {
		side = domain.SideBuy
	}
	return &OrderContext{
		side:           side,
		unitPrice:      unitPrice,
		positionAmount: positionAmount,
	}
}

func (o *OrderContext) Side() domain.OrderSide { return o.side }
func (o *OrderContext) UnitPrice() float64     { return o.unitPrice }
func (o *OrderContext) PositionAmount() float64 {
	return o.positionAmount
}

func (o *OrderContext) TotalValue() float64 {
	return o.unitPrice * o.positionAmount
}

// SetSide changes the side; every target price is re-derived from its profit.
func (o *OrderContext) SetSide(side domain.OrderSide) {
	o.side = side
	o.reprice()
}

// SetUnitPrice changes the entry price; callers guarantee price >= 0.
func (o *OrderContext) SetUnitPrice(price float64) {
	o.unitPrice = price
	o.reprice()
}

func (o *OrderContext) SetPositionAmount(amount float64) {
	o.positionAmount = amount
}

// SetTotalValue back-derives the amount from a total. Amount is 0 while
// there is no unit price.
func (o *OrderContext) SetTotalValue(total float64) {
	if o.unitPrice > 0 {
		o.positionAmount = total / o.unitPrice
		return
	}
	o.positionAmount = 0
}

func (o *OrderContext) reprice() {
	if o.repricer != nil {
		o.repricer.recalcTargetPrices()
	}
}
