// Package settlement computes performance analytics over settled tips.
//
// Aggregate is pure: it does no I/O, keeps no state and cannot fail.
// Only WIN and LOSS tips are counted; callers may pass anything.
package settlement

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

var hundred = decimal.NewFromInt(100)

// MethodSummary holds the figures of one betting method.
type MethodSummary struct {
	Method     models.Method   `json:"method_code"`
	MethodName string          `json:"method_name"`
	TotalStake decimal.Decimal `json:"total_stake"`
	NetProfit  decimal.Decimal `json:"net_profit"`
	Bets       int             `json:"total_bets"`
	Wins       int             `json:"total_wins"`
	Losses     int             `json:"total_losses"`
	Yield      decimal.Decimal `json:"yield_percent"`
	LastMatch  time.Time       `json:"last_match_date"`
}

// MonthlyPoint is the cumulative net profit at the end of a calendar month.
type MonthlyPoint struct {
	Year       int             `json:"year"`
	Month      time.Month      `json:"month"`
	Cumulative decimal.Decimal `json:"cumulative_profit"`
}

// Result is the full analysis of a set of tips.
type Result struct {
	Methods    []MethodSummary `json:"summary"`
	TotalStake decimal.Decimal `json:"global_stakes"`
	NetProfit  decimal.Decimal `json:"global_net_profit"`
	Monthly    []MonthlyPoint  `json:"monthly"`
}

type monthKey struct {
	year  int
	month time.Month
}

// Aggregate groups the settled tips by method and builds the monthly cumulative series.
//
// Summaries are ordered by net profit, highest first; equal profits fall back to the
// method code so the output is stable for a given input.
func Aggregate(tips []models.Tip) Result {
	res := Result{
		Methods:    []MethodSummary{},
		TotalStake: decimal.Zero,
		NetProfit:  decimal.Zero,
		Monthly:    []MonthlyPoint{},
	}

	byMethod := make(map[models.Method]*MethodSummary)
	byMonth := make(map[monthKey]decimal.Decimal)

	for _, tip := range tips {
		if !tip.Status.Settled() {
			continue
		}
		net := tip.NetProfit()

		s, ok := byMethod[tip.Method]
		if !ok {
			s = &MethodSummary{
				Method:     tip.Method,
				MethodName: tip.Method.DisplayName(),
				TotalStake: decimal.Zero,
				NetProfit:  decimal.Zero,
			}
			byMethod[tip.Method] = s
		}
		s.TotalStake = s.TotalStake.Add(tip.Stake)
		s.NetProfit = s.NetProfit.Add(net)
		s.Bets++
		if tip.Status == models.StatusWin {
			s.Wins++
		} else {
			s.Losses++
		}
		if tip.MatchDate.After(s.LastMatch) {
			s.LastMatch = tip.MatchDate
		}

		res.TotalStake = res.TotalStake.Add(tip.Stake)
		res.NetProfit = res.NetProfit.Add(net)

		k := monthKey{year: tip.MatchDate.Year(), month: tip.MatchDate.Month()}
		byMonth[k] = byMonth[k].Add(net)
	}

	for _, s := range byMethod {
		s.Yield = Yield(s.NetProfit, s.TotalStake)
		res.Methods = append(res.Methods, *s)
	}
	sort.Slice(res.Methods, func(i, j int) bool {
		a, b := res.Methods[i], res.Methods[j]
		if c := a.NetProfit.Cmp(b.NetProfit); c != 0 {
			return c > 0
		}
		return a.Method < b.Method
	})

	res.Monthly = cumulative(byMonth)
	return res
}

// Yield returns net/stake as a percentage rounded to two places, zero when nothing was staked.
func Yield(net, stake decimal.Decimal) decimal.Decimal {
	if stake.IsZero() {
		return decimal.Zero
	}
	return net.Div(stake).Mul(hundred).Round(2)
}

func cumulative(byMonth map[monthKey]decimal.Decimal) []MonthlyPoint {
	keys := make([]monthKey, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	points := make([]MonthlyPoint, 0, len(keys))
	running := decimal.Zero
	for _, k := range keys {
		running = running.Add(byMonth[k])
		points = append(points, MonthlyPoint{Year: k.year, Month: k.month, Cumulative: running})
	}
	return points
}
