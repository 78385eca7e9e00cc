package exchange

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openquant/backtester/common"
)

var (
	// ErrZeroSizeOrder occurs when an order is placed with size zero
	ErrZeroSizeOrder = errors.New("order size must not be zero")
	// ErrInsufficientBuyingPower occurs when a fill would drive buying
	// power below zero
	ErrInsufficientBuyingPower = errors.New("insufficient buying power")
	// ErrUnknownOrder occurs when an order id is not present in the registry
	ErrUnknownOrder = errors.New("unknown order id")
	// ErrDuplicateOrder occurs when an order id is registered twice
	ErrDuplicateOrder = errors.New("order id already registered")
)

// Kind tags the order variant
type Kind uint8

// Order variants
const (
	// Market orders fill unconditionally at the bar's midpoint
	Market Kind = iota
	// Limit orders fill only when the bar's range reaches the extremum
	Limit
)

// Order is a single signed-size order. Positive size buys, negative
// sells. Extremum is the limit price (buy ceiling or sell floor) and is
// meaningful only for limit orders
type Order struct {
	ID       common.OrderID
	Asset    common.AssetID
	Kind     Kind
	Size     decimal.Decimal
	Extremum decimal.Decimal
	PlacedAt time.Time
}

// Fill describes the outcome of a successful fill attempt
type Fill struct {
	Price       decimal.Decimal
	DeltaCash   decimal.Decimal
	DeltaEquity decimal.Decimal
}

// OHLC carries the bar prices a fill attempt is evaluated against
type OHLC struct {
	Open float64
	High float64
	Low  float64
}

// Registry stores every order placed during a backtest by id
type Registry struct {
	orders map[common.OrderID]*Order
}
