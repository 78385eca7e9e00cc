package statistics

import (
	"time"

	"github.com/shopspring/decimal"
)

// BarValue is one per-bar sample of the portfolio's total value, taken
// when field processing for the bar completes
type BarValue struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// Results summarises one finished run
type Results struct {
	Bars          int             `json:"bars"`
	OrdersPlaced  int             `json:"orders-placed"`
	OrdersFilled  int             `json:"orders-filled"`
	InitialValue  decimal.Decimal `json:"initial-value"`
	FinalValue    decimal.Decimal `json:"final-value"`
	ReturnPercent decimal.Decimal `json:"return-percent"`
	// MaxDrawdownPercent is the deepest peak-to-trough decline of total
	// value over the run, as a positive percentage
	MaxDrawdownPercent decimal.Decimal `json:"max-drawdown-percent"`
}

// Statistic accumulates run statistics through the engine callbacks
type Statistic struct {
	initialSet bool
	initial    decimal.Decimal
	barValues  []BarValue
	acks       int
	fills      int
}
