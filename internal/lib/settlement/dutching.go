package settlement

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidOdds is returned when an odd is not greater than 1.
var ErrInvalidOdds = errors.New("odds must be greater than 1")

// DutchStake is the stake placed on one selection.
type DutchStake struct {
	Odds  decimal.Decimal `json:"odds"`
	Stake decimal.Decimal `json:"stake"`
}

// DutchResult splits a total stake so that every selection returns the same amount.
type DutchResult struct {
	Stakes []DutchStake    `json:"stakes"`
	Return decimal.Decimal `json:"return"`
	Profit decimal.Decimal `json:"profit"`
}

// Dutch distributes total across the given odds proportionally to 1/odd.
// Stakes are rounded to cents; Return and Profit use the unrounded split.
func Dutch(total decimal.Decimal, odds ...decimal.Decimal) (DutchResult, error) {
	if len(odds) == 0 {
		return DutchResult{}, errors.New("at least one selection is required")
	}
	one := decimal.NewFromInt(1)
	sumInv := decimal.Zero
	for _, o := range odds {
		if o.LessThanOrEqual(one) {
			return DutchResult{}, ErrInvalidOdds
		}
		sumInv = sumInv.Add(one.Div(o))
	}

	res := DutchResult{Stakes: make([]DutchStake, 0, len(odds))}
	for _, o := range odds {
		stake := total.Mul(one.Div(o)).Div(sumInv)
		res.Stakes = append(res.Stakes, DutchStake{Odds: o, Stake: stake.Round(2)})
	}
	res.Return = total.Div(sumInv).Round(2)
	res.Profit = res.Return.Sub(total)
	return res, nil
}
