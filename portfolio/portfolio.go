// Package portfolio tracks cash, per-asset equity and total value over a
// backtest. Only fills mutate it; acks pass through untouched.
package portfolio

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/openquant/backtester/common"
)

// ErrNegativePrincipal occurs when a portfolio is opened with negative funds
var ErrNegativePrincipal = errors.New("principal must not be negative")

// Portfolio holds the running cash and equity state of a backtest
type Portfolio struct {
	equity      map[common.AssetID]decimal.Decimal
	buyingPower decimal.Decimal
	totalValue  decimal.Decimal
}

// New opens a portfolio funded with principal
func New(principal decimal.Decimal) (*Portfolio, error) {
	if principal.IsNegative() {
		return nil, ErrNegativePrincipal
	}
	return &Portfolio{
		equity:      make(map[common.AssetID]decimal.Decimal),
		buyingPower: principal,
		totalValue:  principal,
	}, nil
}

// BuyingPower returns the uncommitted cash
func (p *Portfolio) BuyingPower() decimal.Decimal {
	return p.buyingPower
}

// Equity returns the signed holding for an asset, zero when never traded
func (p *Portfolio) Equity(asset common.AssetID) decimal.Decimal {
	return p.equity[asset]
}

// TotalValue returns the value computed at the last revaluation. Because
// revaluation prices positions at the most recent completed bar's close,
// this lags true intra-bar value; that lag is deliberate
func (p *Portfolio) TotalValue() decimal.Decimal {
	return p.totalValue
}

// CanAfford reports whether applying deltaCash keeps buying power at or
// above zero
func (p *Portfolio) CanAfford(deltaCash decimal.Decimal) bool {
	return !p.buyingPower.Add(deltaCash).IsNegative()
}

// ProcessFill applies a fill's deltas and revalues against the supplied
// closes, the most recent completed bar's close per asset
func (p *Portfolio) ProcessFill(asset common.AssetID, deltaEquity, deltaCash decimal.Decimal, closes map[common.AssetID]decimal.Decimal) {
	p.equity[asset] = p.equity[asset].Add(deltaEquity)
	p.buyingPower = p.buyingPower.Add(deltaCash)
	p.Revalue(closes)
}

// Revalue recomputes total value as buying power plus the sum of each
// holding priced at its close
func (p *Portfolio) Revalue(closes map[common.AssetID]decimal.Decimal) {
	total := p.buyingPower
	for asset, size := range p.equity {
		total = total.Add(size.Mul(closes[asset]))
	}
	p.totalValue = total
}

// Holdings returns a copy of the equity table
func (p *Portfolio) Holdings() map[common.AssetID]decimal.Decimal {
	out := make(map[common.AssetID]decimal.Decimal, len(p.equity))
	for a, s := range p.equity {
		out[a] = s
	}
	return out
}
