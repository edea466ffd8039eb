package ledger

import (
	"github.com/shopspring/decimal"
)

// costScale is the number of decimal places kept on average costs
const costScale = 4

// ResolveUnitCost picks the effective unit cost for an inbound movement:
// an explicit non-negative override wins, then the part catalog's cost,
// otherwise nil (the movement carries no cost and the average is untouched).
func ResolveUnitCost(override, catalogCost *decimal.Decimal) *decimal.Decimal {
	if override != nil && !override.IsNegative() {
		c := *override
		return &c
	}
	if catalogCost != nil && !catalogCost.IsNegative() {
		c := *catalogCost
		return &c
	}
	return nil
}

// WeightedAverageCost recomputes the moving average after quantity units
// arrive at unitCost on top of onHandBefore units carried at oldAverage:
//
//	new = (oldAverage*onHandBefore + unitCost*quantity) / max(1, newOnHand)
//
// The max(1, ...) guards the degenerate first movement at zero on-hand.
func WeightedAverageCost(oldAverage decimal.Decimal, onHandBefore int64, unitCost decimal.Decimal, quantity, newOnHand int64) decimal.Decimal {
	totalValue := oldAverage.Mul(decimal.NewFromInt(onHandBefore)).
		Add(unitCost.Mul(decimal.NewFromInt(quantity)))

	divisor := newOnHand
	if divisor < 1 {
		divisor = 1
	}

	return totalValue.Div(decimal.NewFromInt(divisor)).Round(costScale)
}
