// Package engine contains the discrete-event strategy loop: per-bar
// genesis loading, event scheduling and dispatch, order placement and
// the simulated time accounting that ties them together.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/config"
	"github.com/openquant/backtester/data"
	"github.com/openquant/backtester/eventtypes/databar"
	"github.com/openquant/backtester/eventtypes/event"
	"github.com/openquant/backtester/eventtypes/order"
	"github.com/openquant/backtester/exchange"
	"github.com/openquant/backtester/lattice"
	"github.com/openquant/backtester/portfolio"
)

// Run executes the backtest bar by bar until the next bar would end at or
// past the configured end time, or the readers are exhausted. Events
// scheduled beyond the final bar's end are discarded with the queue
func (bt *BackTest) Run() error {
	if bt.hasRun {
		return ErrAlreadyRun
	}
	bt.hasRun = true

	for {
		proceed, err := bt.nextBarExists()
		if err != nil {
			return err
		}
		if !proceed {
			bt.log.Debugf("backtest complete at %v", bt.curTime)
			return nil
		}
		if err := bt.runNextBar(); err != nil {
			return err
		}
	}
}

// nextBarExists peeks every reader to decide whether another bar both
// exists on all assets and ends before the configured end time. Any
// reader running dry ends the run cleanly
func (bt *BackTest) nextBarExists() (bool, error) {
	var next data.Bar
	for i, a := range bt.lattice.Assets() {
		bar, err := bt.readers[a].Peek()
		if err != nil {
			if errors.Is(err, data.ErrNoMoreData) {
				bt.log.Debugf("data exhausted for %q after %d bars", a, bt.curBarIndex)
				return false, nil
			}
			return false, err
		}
		if i == 0 {
			next = bar
		}
	}
	if !next.Time.Add(bt.cfg.TradingInterval).Before(bt.cfg.EndTime) {
		return false, nil
	}
	return true, nil
}

func (bt *BackTest) runNextBar() error {
	rows, err := bt.loadGenesisData()
	if err != nil {
		return err
	}

	bt.curBarIndex++
	bt.curBarStart = rows[bt.lattice.Assets()[0]].Time
	bt.curBarEnd = bt.curBarStart.Add(bt.cfg.TradingInterval)
	bt.curTime = bt.curBarStart
	bt.log.Infof("bar %d starting", bt.curBarIndex)

	if err := bt.sweepOpenOrders(); err != nil {
		return err
	}

	genesis := make(map[common.AssetID]map[common.FieldID]common.Value, len(rows))
	for a, row := range rows {
		genesis[a] = row.Values
	}
	if err := bt.queue.Push(&databar.NewBar{
		Base:        event.Base{Time: bt.curBarStart.Add(bt.cfg.DataDelay)},
		GenesisData: genesis,
	}); err != nil {
		return err
	}

	for !bt.queue.Empty() && bt.queue.Peek().GetTime().Before(bt.curBarEnd) {
		e := bt.queue.Pop()
		bt.curTime = e.GetTime()
		if err := bt.processEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// loadGenesisData pops one bar from every reader and checks they agree on
// the bar's datetime. It also refreshes the per-asset OHLC table fill
// attempts evaluate against
func (bt *BackTest) loadGenesisData() (map[common.AssetID]data.Bar, error) {
	assets := bt.lattice.Assets()
	rows := make(map[common.AssetID]data.Bar, len(assets))
	for _, a := range assets {
		bar, err := bt.readers[a].PopFirst()
		if err != nil {
			return nil, err
		}
		rows[a] = bar
	}

	barTime := rows[assets[0]].Time
	for _, a := range assets[1:] {
		if !rows[a].Time.Equal(barTime) {
			return nil, fmt.Errorf("%w: %q at %v, %q at %v",
				common.ErrDesynchronisedReaders, assets[0], barTime, a, rows[a].Time)
		}
	}

	for _, a := range assets {
		ohlc, err := barOHLC(rows[a], bt.cfg.Columns)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", a, err)
		}
		bt.currentBars[a] = ohlc
	}
	return rows, nil
}

func barOHLC(bar data.Bar, cols config.Columns) (exchange.OHLC, error) {
	var out exchange.OHLC
	for _, col := range []struct {
		name string
		dst  *float64
	}{
		{name: cols.Open, dst: &out.Open},
		{name: cols.High, dst: &out.High},
		{name: cols.Low, dst: &out.Low},
	} {
		f, ok := bar.Values[common.FieldID(col.name)].Float64()
		if !ok {
			return exchange.OHLC{}, fmt.Errorf("%w: column %q", ErrMalformedBar, col.name)
		}
		*col.dst = f
	}
	return out, nil
}

func (bt *BackTest) processEvent(e common.Event) error {
	switch ev := e.(type) {
	case *databar.NewBar:
		return bt.onNewBar(ev)
	case *databar.CompletedProcessing:
		return bt.onData(bt, ev)
	case order.Event:
		if fill, ok := ev.(*order.Fill); ok {
			bt.portfolio.ProcessFill(fill.Asset, fill.DeltaEquity, fill.DeltaCash, bt.latestCloses())
			bt.log.Transactionf("fill %v: %s %s @ %s", fill.OrderID, fill.Asset, fill.Size, fill.Price)
		} else {
			bt.log.Transactionf("ack %v", ev.GetOrderID())
		}
		return bt.onOrder(bt, ev)
	}
	return fmt.Errorf("unknown event type %T", e)
}

// onNewBar runs lattice propagation, charging its wall-clock cost to the
// simulated clock and failing the backtest when it blows the budget
func (bt *BackTest) onNewBar(e *databar.NewBar) error {
	started := time.Now()
	if err := bt.lattice.NewBar(e.GenesisData); err != nil {
		return err
	}
	cost := time.Since(started)
	if cost > bt.cfg.FieldOpTimeout {
		return fmt.Errorf("%w: took %v, allotted %v", ErrFieldOpTimeout, cost, bt.cfg.FieldOpTimeout)
	}
	bt.log.Debugf("field processing took %v", cost)
	return bt.queue.Push(&databar.CompletedProcessing{
		Base: event.Base{Time: bt.curTime.Add(cost)},
	})
}

// latestCloses prices every asset at the most recent completed bar's
// close. During a bar this lags the simulated present; the portfolio is
// documented to revalue on lagged closes
func (bt *BackTest) latestCloses() map[common.AssetID]decimal.Decimal {
	closes := make(map[common.AssetID]decimal.Decimal, len(bt.lattice.Assets()))
	closeField := common.FieldID(bt.cfg.Columns.Close)
	for _, a := range bt.lattice.Assets() {
		v, err := bt.lattice.Value(0, a, closeField)
		if err != nil {
			continue
		}
		if f, ok := v.Float64(); ok {
			closes[a] = decimal.NewFromFloat(f)
		}
	}
	return closes
}

// PlaceMarketOrder places a signed-size market order at the simulated
// present. It acks after two message latencies and attempts a same-bar
// fill immediately; unfilled orders join the open-order FIFO
func (bt *BackTest) PlaceMarketOrder(asset common.AssetID, size decimal.Decimal) (common.OrderID, error) {
	o, err := exchange.NewMarketOrder(asset, size)
	if err != nil {
		return "", err
	}
	return bt.placeOrder(o)
}

// PlaceLimitOrder places a signed-size limit order at the supplied
// extremum: a buy ceiling for positive sizes, a sell floor for negative
func (bt *BackTest) PlaceLimitOrder(asset common.AssetID, size, extremum decimal.Decimal) (common.OrderID, error) {
	o, err := exchange.NewLimitOrder(asset, size, extremum)
	if err != nil {
		return "", err
	}
	return bt.placeOrder(o)
}

func (bt *BackTest) placeOrder(o *exchange.Order) (common.OrderID, error) {
	if _, ok := bt.currentBars[o.Asset]; !ok {
		return "", fmt.Errorf("%w: %q", lattice.ErrUnknownAsset, o.Asset)
	}
	o.PlacedAt = bt.curTime
	if err := bt.registry.Add(o); err != nil {
		return "", err
	}
	if err := bt.queue.Push(order.NewAck(bt.curTime.Add(2*bt.cfg.MessageLatency), o.ID)); err != nil {
		return "", err
	}
	bt.log.Transactionf("order %v placed: %s size %s", o.ID, o.Asset, o.Size)

	filled, err := bt.tryFillOrder(o)
	if err != nil {
		return "", err
	}
	if !filled {
		bt.openOrders = append(bt.openOrders, o.ID)
	}
	return o.ID, nil
}

// tryFillOrder is the single fill entry point, used both at placement and
// by the bar-start sweep. A fill that would drive buying power negative
// fails the placement rather than queueing
func (bt *BackTest) tryFillOrder(o *exchange.Order) (bool, error) {
	fill, ok := o.Evaluate(bt.currentBars[o.Asset])
	if !ok {
		return false, nil
	}
	if !bt.portfolio.CanAfford(fill.DeltaCash) {
		return false, fmt.Errorf("%w: order %v needs %s, buying power %s",
			exchange.ErrInsufficientBuyingPower, o.ID, fill.DeltaCash.Neg(), bt.portfolio.BuyingPower())
	}

	fillTime := bt.curTime.Add(bt.cfg.MessageLatency)
	if o.Kind == exchange.Limit {
		// limit fills land uniformly at random within the remainder of
		// the bar, one message latency out
		window := bt.curBarEnd.Sub(bt.curTime)
		if window > 0 {
			fillTime = fillTime.Add(time.Duration(bt.rng.Int63n(int64(window) + 1)))
		}
	}
	err := bt.queue.Push(&order.Fill{
		Base:        event.Base{Time: fillTime},
		OrderID:     o.ID,
		Asset:       o.Asset,
		Size:        o.Size,
		Price:       fill.Price,
		DeltaCash:   fill.DeltaCash,
		DeltaEquity: fill.DeltaEquity,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// sweepOpenOrders retries each currently-open order exactly once against
// the new bar, re-appending the ones that still do not fill
func (bt *BackTest) sweepOpenOrders() error {
	n := len(bt.openOrders)
	for i := 0; i < n; i++ {
		id := bt.openOrders[0]
		bt.openOrders = bt.openOrders[1:]
		o, err := bt.registry.Get(id)
		if err != nil {
			return err
		}
		filled, err := bt.tryFillOrder(o)
		if err != nil {
			return err
		}
		if !filled {
			bt.openOrders = append(bt.openOrders, id)
		}
	}
	return nil
}

// Lattice exposes read access to the calculation lattice for callbacks.
// Callbacks must not mutate lattice state
func (bt *BackTest) Lattice() *lattice.Lattice {
	return bt.lattice
}

// Portfolio exposes the running portfolio
func (bt *BackTest) Portfolio() *portfolio.Portfolio {
	return bt.portfolio
}

// Config returns the run's configuration
func (bt *BackTest) Config() config.Config {
	return bt.cfg
}

// CurrentTime returns the simulated present
func (bt *BackTest) CurrentTime() time.Time {
	return bt.curTime
}

// CurrentBarStart returns the start of the bar under simulation
func (bt *BackTest) CurrentBarStart() time.Time {
	return bt.curBarStart
}

// BarIndex returns how many bars have started; zero before the first
func (bt *BackTest) BarIndex() int {
	return bt.curBarIndex
}

// OpenOrders returns the ids of orders still awaiting a fill, in FIFO
// order
func (bt *BackTest) OpenOrders() []common.OrderID {
	out := make([]common.OrderID, len(bt.openOrders))
	copy(out, bt.openOrders)
	return out
}

// Order returns the registered order for an id
func (bt *BackTest) Order(id common.OrderID) (*exchange.Order, error) {
	return bt.registry.Get(id)
}
