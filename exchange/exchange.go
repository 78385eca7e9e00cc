// Package exchange simulates the brokerage side of a backtest: order
// construction, the single-bar fill heuristic and the order registry.
package exchange

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/openquant/backtester/common"
)

// NewOrderID returns a fresh collision-free order id
func NewOrderID() (common.OrderID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return common.OrderID(id.String()), nil
}

// NewMarketOrder builds a market order. Size is signed; zero is rejected
func NewMarketOrder(asset common.AssetID, size decimal.Decimal) (*Order, error) {
	if size.IsZero() {
		return nil, fmt.Errorf("%w: asset %q", ErrZeroSizeOrder, asset)
	}
	id, err := NewOrderID()
	if err != nil {
		return nil, err
	}
	return &Order{ID: id, Asset: asset, Kind: Market, Size: size}, nil
}

// NewLimitOrder builds a limit order at the supplied extremum: a buy
// ceiling for positive sizes, a sell floor for negative ones
func NewLimitOrder(asset common.AssetID, size, extremum decimal.Decimal) (*Order, error) {
	if size.IsZero() {
		return nil, fmt.Errorf("%w: asset %q", ErrZeroSizeOrder, asset)
	}
	id, err := NewOrderID()
	if err != nil {
		return nil, err
	}
	return &Order{ID: id, Asset: asset, Kind: Limit, Size: size, Extremum: extremum}, nil
}

// FillPrice evaluates the single-bar fill heuristic against one bar's
// prices. Market orders always fill at the bar midpoint (low+high)/2 —
// a deliberate simplification of intra-bar price action. Limit buys
// fill at min(open, extremum) when the extremum reaches the low; limit
// sells at max(open, extremum) when the extremum is within the high.
// The second return reports whether the order fills on this bar
func (o *Order) FillPrice(bar OHLC) (decimal.Decimal, bool) {
	open := decimal.NewFromFloat(bar.Open)
	switch o.Kind {
	case Market:
		mid := decimal.NewFromFloat(bar.Low).Add(decimal.NewFromFloat(bar.High)).Div(decimal.NewFromInt(2))
		return mid, true
	case Limit:
		if o.Size.IsPositive() {
			if o.Extremum.GreaterThanOrEqual(decimal.NewFromFloat(bar.Low)) {
				return decimal.Min(open, o.Extremum), true
			}
			return decimal.Decimal{}, false
		}
		if o.Extremum.LessThanOrEqual(decimal.NewFromFloat(bar.High)) {
			return decimal.Max(open, o.Extremum), true
		}
	}
	return decimal.Decimal{}, false
}

// Evaluate runs the fill heuristic and, on a fill, derives the portfolio
// deltas: delta cash is -size*price, delta equity is the signed size
func (o *Order) Evaluate(bar OHLC) (Fill, bool) {
	price, ok := o.FillPrice(bar)
	if !ok {
		return Fill{}, false
	}
	return Fill{
		Price:       price,
		DeltaCash:   o.Size.Neg().Mul(price),
		DeltaEquity: o.Size,
	}, true
}

// NewRegistry returns an empty order registry
func NewRegistry() *Registry {
	return &Registry{orders: make(map[common.OrderID]*Order)}
}

// Add stores an order, rejecting duplicate ids
func (r *Registry) Add(o *Order) error {
	if o == nil {
		return common.ErrNilArguments
	}
	if _, ok := r.orders[o.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateOrder, o.ID)
	}
	r.orders[o.ID] = o
	return nil
}

// Get returns the order stored under id
func (r *Registry) Get(id common.OrderID) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, id)
	}
	return o, nil
}

// Len returns how many orders have been registered
func (r *Registry) Len() int {
	return len(r.orders)
}
