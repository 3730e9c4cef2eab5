// Package grading settles locked bets against recorded box-score outcomes
// and computes their monetary results.
package grading

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Profit computes the signed monetary result of a settled bet from its
// stake and American odds. A winning bet at negative odds returns
// stake*100/|odds|; at positive odds, stake*odds/100. A losing bet
// returns the negated stake. Bets persisted without odds are priced at
// the conventional -110.
func Profit(stake decimal.Decimal, odds *int, won bool) decimal.Decimal {
	if !won {
		return stake.Neg()
	}

	price := -110
	if odds != nil {
		price = *odds
	}

	if price < 0 {
		return stake.Mul(hundred).Div(decimal.NewFromInt(int64(-price)))
	}
	return stake.Mul(decimal.NewFromInt(int64(price))).Div(hundred)
}
