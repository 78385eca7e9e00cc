// Package rsi is a worked example strategy: it computes the relative
// strength index over each asset's trailing closes and trades mean
// reversion through the backtest's order surface.
package rsi

import (
	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/engine"
	"github.com/openquant/backtester/eventtypes/databar"
	"github.com/openquant/backtester/strategies"
)

const (
	// Name is the strategy name
	Name        = "rsi"
	description = `The relative strength index is a technical indicator used in the analysis of financial markets. It is intended to chart the current and historical strength or weakness of a stock or market based on the closing prices of a recent trading period`
)

// Strategy buys when RSI drops to or below the low threshold and sells
// when it reaches the high threshold
type Strategy struct {
	rsiPeriod int
	rsiLow    decimal.Decimal
	rsiHigh   decimal.Decimal
	orderSize decimal.Decimal
}

// New returns a strategy with the supplied thresholds; a typical
// configuration is period 14, low 30, high 70
func New(period int, low, high, size decimal.Decimal) *Strategy {
	return &Strategy{rsiPeriod: period, rsiLow: low, rsiHigh: high, orderSize: size}
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides a nice overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// OnData is the engine.DataCallback entry point. It waits for enough
// history to warm the indicator, then places market orders on threshold
// breaches. Placement failures, buying power included, are fatal to the
// run
func (s *Strategy) OnData(bt *engine.BackTest, _ *databar.CompletedProcessing) error {
	closeField := common.FieldID("close")
	for _, asset := range bt.Lattice().Assets() {
		closes, err := strategies.History(bt, asset, closeField, s.rsiPeriod+1)
		if err != nil {
			return err
		}
		if len(closes) <= s.rsiPeriod {
			continue
		}
		series := indicators.RSI(closes, s.rsiPeriod)
		latest := decimal.NewFromFloat(series[len(series)-1])

		switch {
		case latest.LessThanOrEqual(s.rsiLow):
			if _, err := bt.PlaceMarketOrder(asset, s.orderSize); err != nil {
				return err
			}
		case latest.GreaterThanOrEqual(s.rsiHigh):
			if bt.Portfolio().Equity(asset).IsPositive() {
				if _, err := bt.PlaceMarketOrder(asset, s.orderSize.Neg()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
