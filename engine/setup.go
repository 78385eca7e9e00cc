package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openquant/backtester/btlog"
	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/config"
	"github.com/openquant/backtester/data"
	"github.com/openquant/backtester/eventtypes/databar"
	"github.com/openquant/backtester/eventtypes/order"
	"github.com/openquant/backtester/exchange"
	"github.com/openquant/backtester/fields"
	"github.com/openquant/backtester/lattice"
	"github.com/openquant/backtester/portfolio"
)

// New builds a backtest from settings: validates the config, fast-forwards
// every reader to the start time, constructs the lattice with the five
// OHLCV genesis fields followed by the user's operations, and funds the
// portfolio with the principal
func New(s *Settings) (*BackTest, error) {
	if s == nil {
		return nil, common.ErrNilArguments
	}
	cfg := s.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(s.DataReaders) == 0 {
		return nil, common.ErrEmptyDataReaders
	}

	// asset order is lexicographic so runs are reproducible regardless of
	// map iteration
	assets := make([]common.AssetID, 0, len(s.DataReaders))
	for a := range s.DataReaders {
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })

	readers := make(map[common.AssetID]data.Handler, len(s.DataReaders))
	for _, a := range assets {
		r := s.DataReaders[a]
		if r == nil {
			return nil, fmt.Errorf("%w: reader for %q", common.ErrNilArguments, a)
		}
		if err := r.FastForward(cfg.Start); err != nil {
			return nil, err
		}
		readers[a] = r
	}

	retention := cfg.NumLookbackBars
	if retention == config.LookbackAll {
		retention = lattice.RetainAll
	}
	lat, err := lattice.New(assets, retention)
	if err != nil {
		return nil, err
	}
	for _, id := range cfg.OHLCVFieldIDs() {
		op, err := fields.Genesis(id)
		if err != nil {
			return nil, err
		}
		if err := lat.AddField(op); err != nil {
			return nil, err
		}
	}
	if err := lat.AddFields(s.FieldOperations...); err != nil {
		return nil, err
	}

	pf, err := portfolio.New(decimal.NewFromFloat(cfg.Principal))
	if err != nil {
		return nil, err
	}

	onData := s.OnDataEvent
	if onData == nil {
		onData = func(*BackTest, *databar.CompletedProcessing) error { return nil }
	}
	onOrder := s.OnOrderEvent
	if onOrder == nil {
		onOrder = func(*BackTest, order.Event) error { return nil }
	}

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	bt := &BackTest{
		cfg:         cfg,
		readers:     readers,
		lattice:     lat,
		registry:    exchange.NewRegistry(),
		portfolio:   pf,
		onData:      onData,
		onOrder:     onOrder,
		rng:         rand.New(rand.NewSource(seed)),
		currentBars: make(map[common.AssetID]exchange.OHLC, len(assets)),
		curTime:     cfg.Start,
	}
	bt.log = btlog.New(s.LogWriter, cfg.VerbosityLevel())
	bt.log.SetClock(func() time.Time { return bt.curTime })
	return bt, nil
}
