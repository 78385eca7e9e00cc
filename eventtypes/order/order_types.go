// Package order holds the order-side event variants raised during the
// simulated order lifecycle.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/eventtypes/event"
)

// Event is implemented by every order lifecycle event
type Event interface {
	common.Event
	GetOrderID() common.OrderID
	IsOrderEvent() bool
}

// Ack confirms that the simulated brokerage received an order. Acks do
// not modify the portfolio
type Ack struct {
	event.Base
	OrderID common.OrderID
}

// GetOrderID returns the id of the acknowledged order
func (a *Ack) GetOrderID() common.OrderID {
	return a.OrderID
}

// IsOrderEvent implements Event
func (a *Ack) IsOrderEvent() bool {
	return true
}

// Fill reports an executed order together with the portfolio deltas it
// carries
type Fill struct {
	event.Base
	OrderID     common.OrderID
	Asset       common.AssetID
	Size        decimal.Decimal
	Price       decimal.Decimal
	DeltaCash   decimal.Decimal
	DeltaEquity decimal.Decimal
}

// GetOrderID returns the id of the filled order
func (f *Fill) GetOrderID() common.OrderID {
	return f.OrderID
}

// IsOrderEvent implements Event
func (f *Fill) IsOrderEvent() bool {
	return true
}

// NewAck builds an ack scheduled at t
func NewAck(t time.Time, id common.OrderID) *Ack {
	return &Ack{Base: event.Base{Time: t}, OrderID: id}
}
