// Package models contains the domain records exchanged between storage,
// services and HTTP handlers: tips, users, subscriptions, news and banners.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the outcome of a tip.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusWin     Status = "WIN"
	StatusLoss    Status = "LOSS"
	StatusVoid    Status = "VOID"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWin, StatusLoss, StatusVoid:
		return true
	}
	return false
}

// Settled reports whether the tip counts towards analytics.
func (s Status) Settled() bool {
	return s == StatusWin || s == StatusLoss
}

// AccessLevel gates which users may see a tip.
type AccessLevel string

const (
	AccessFree    AccessLevel = "FREE"
	AccessPremium AccessLevel = "PREMIUM"
)

// Method is the betting strategy label used as the analytics grouping key.
type Method string

const (
	MethodLay0x1   Method = "LAY0X1"
	MethodLay0x2   Method = "LAY0X2"
	MethodLay0x3   Method = "LAY0X3"
	MethodLay1x0   Method = "LAY1X0"
	MethodLay2x0   Method = "LAY2X0"
	MethodLay3x0   Method = "LAY3X0"
	MethodLay2x2   Method = "LAY2X2"
	MethodLayGC    Method = "LAYGC"
	MethodLayGV    Method = "LAYGV"
	MethodBackC    Method = "BACKC"
	MethodBackV    Method = "BACKV"
	MethodOver05HT Method = "OVER05HT"
	MethodOver05FT Method = "OVER05FT"
	MethodOver15FT Method = "OVER15FT"
)

var methodNames = map[Method]string{
	MethodLay0x1:   "LAY 0x1",
	MethodLay0x2:   "LAY 0x2",
	MethodLay0x3:   "LAY 0x3",
	MethodLay1x0:   "LAY 1x0",
	MethodLay2x0:   "LAY 2x0",
	MethodLay3x0:   "LAY 3x0",
	MethodLay2x2:   "LAY 2x2",
	MethodLayGC:    "LAY GOLEADA CASA",
	MethodLayGV:    "LAY GOLEADA VISITANTE",
	MethodBackC:    "BACK CASA",
	MethodBackV:    "BACK VISITANTE",
	MethodOver05HT: "OVER 0.5 HT",
	MethodOver05FT: "OVER 0.5 FT",
	MethodOver15FT: "OVER 1.5 FT",
}

// DisplayName returns the human readable method label, "Desconhecido" for unknown codes.
func (m Method) DisplayName() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Desconhecido"
}

// Valid reports whether m is a known method code.
func (m Method) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// Tip is a published betting recommendation.
//
// ProfitAmount is meaningful only for WIN, LossAmount only for LOSS.
type Tip struct {
	ID           int64           `json:"id"`
	MatchTitle   string          `json:"match_title"`
	League       string          `json:"league"`
	MatchDate    time.Time       `json:"match_date"`
	Method       Method          `json:"method"`
	Odds         decimal.Decimal `json:"odds"`
	Stake        decimal.Decimal `json:"stake"`
	ProfitAmount decimal.Decimal `json:"profit_amount"`
	LossAmount   decimal.Decimal `json:"loss_amount"`
	FinalResult  *string         `json:"final_result,omitempty"`
	BetLink      *string         `json:"bet_link,omitempty"`
	Status       Status          `json:"status"`
	AccessLevel  AccessLevel     `json:"access_level"`
	IsActive     bool            `json:"is_active"`
}

// NetProfit is +profit for a win, -loss for a loss and zero otherwise.
func (t Tip) NetProfit() decimal.Decimal {
	switch t.Status {
	case StatusWin:
		return t.ProfitAmount
	case StatusLoss:
		return t.LossAmount.Neg()
	default:
		return decimal.Zero
	}
}

// DummyTip is the JSON payload an operator sends to publish a tip.
// Amounts arrive as strings so they can be parsed without float rounding.
type DummyTip struct {
	MatchTitle  string `json:"match_title" validate:"required,max=200"`
	League      string `json:"league" validate:"required,max=100"`
	MatchDate   string `json:"match_date" validate:"required"`
	Method      string `json:"method" validate:"required"`
	Odds        string `json:"odds" validate:"required,numeric"`
	Stake       string `json:"stake" validate:"omitempty,numeric"`
	BetLink     string `json:"bet_link" validate:"omitempty,url,max=500"`
	AccessLevel string `json:"access_level" validate:"required,oneof=FREE PREMIUM"`
}

// Settlement is the operator input that records a tip outcome.
type Settlement struct {
	Status      string `json:"status" validate:"required,oneof=WIN LOSS VOID"`
	Profit      string `json:"profit" validate:"omitempty,numeric"`
	Loss        string `json:"loss" validate:"omitempty,numeric"`
	FinalResult string `json:"final_result" validate:"omitempty,max=100"`
}
