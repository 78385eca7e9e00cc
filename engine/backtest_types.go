package engine

import (
	"errors"
	"io"
	"math/rand"
	"time"

	"github.com/openquant/backtester/btlog"
	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/config"
	"github.com/openquant/backtester/data"
	"github.com/openquant/backtester/eventholder"
	"github.com/openquant/backtester/eventtypes/databar"
	"github.com/openquant/backtester/eventtypes/order"
	"github.com/openquant/backtester/exchange"
	"github.com/openquant/backtester/fields"
	"github.com/openquant/backtester/lattice"
	"github.com/openquant/backtester/portfolio"
)

var (
	// ErrAlreadyRun occurs when Run is invoked twice on one backtest;
	// running mutates reader and lattice state, so instances are single use
	ErrAlreadyRun = errors.New("backtest instances can only be run once")
	// ErrFieldOpTimeout occurs when one bar's lattice propagation exceeds
	// the configured wall-clock budget
	ErrFieldOpTimeout = errors.New("field processing exceeded allotted computation time")
	// ErrMalformedBar occurs when a reader yields a non-numeric OHLC cell
	ErrMalformedBar = errors.New("bar carries non-numeric OHLC data")
)

// DataCallback runs when field processing for a bar completes. The
// callback may read lattice data and place orders through the backtest
// but must not retain the *BackTest across calls. A returned error is
// fatal to the backtest; callback failures are never swallowed
type DataCallback func(bt *BackTest, e *databar.CompletedProcessing) error

// OrderCallback runs on every order lifecycle event after any portfolio
// update it implies. A returned error is fatal to the backtest
type OrderCallback func(bt *BackTest, e order.Event) error

// Settings bundles the serialisable config with the runtime collaborators
// a backtest needs
type Settings struct {
	config.Config

	// DataReaders supplies one time-sorted bar iterator per asset
	DataReaders map[common.AssetID]data.Handler
	// FieldOperations registers user fields after the implicit OHLCV
	// genesis fields, in order
	FieldOperations []fields.Operation
	// OnDataEvent and OnOrderEvent default to no-ops
	OnDataEvent  DataCallback
	OnOrderEvent OrderCallback
	// LogWriter receives log lines; stdout when nil
	LogWriter io.Writer
}

// BackTest drives a configured strategy bar by bar. All state mutation is
// serialised through Run and the callbacks it invokes re-entrantly
type BackTest struct {
	cfg      config.Config
	readers  map[common.AssetID]data.Handler
	lattice  *lattice.Lattice
	queue    eventholder.Queue
	registry *exchange.Registry
	// openOrders is the FIFO of unfilled order ids retried at each bar start
	openOrders []common.OrderID
	portfolio  *portfolio.Portfolio
	onData     DataCallback
	onOrder    OrderCallback
	log        *btlog.Logger
	rng        *rand.Rand

	// currentBars holds the bar under simulation per asset; fill attempts
	// evaluate against it
	currentBars map[common.AssetID]exchange.OHLC

	curBarStart time.Time
	curBarEnd   time.Time
	curTime     time.Time
	curBarIndex int
	hasRun      bool
}
