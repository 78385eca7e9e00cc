package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/config"
	"github.com/openquant/backtester/data"
	"github.com/openquant/backtester/engine"
	"github.com/openquant/backtester/eventtypes/databar"
	"github.com/openquant/backtester/fields"
)

var start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// runWith drives a backtest over closes for one asset with an sma2-close
// field and invokes check on every completed bar
func runWith(t *testing.T, closes []float64, check engine.DataCallback) {
	t.Helper()
	bars := make([]data.Bar, len(closes))
	for i, c := range closes {
		ts := start.Add(time.Duration(i) * 24 * time.Hour)
		bars[i] = data.Bar{
			Time: ts,
			Values: map[common.FieldID]common.Value{
				"datetime": common.String(ts.Format("2006-01-02 15:04:05")),
				"open":     common.Float(c),
				"high":     common.Float(c + 1),
				"low":      common.Float(c - 1),
				"close":    common.Float(c),
				"volume":   common.Float(100),
			},
		}
	}
	stream, err := data.NewStream("aapl", bars)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Start = start
	cfg.EndTime = start.Add(time.Duration(len(closes))*24*time.Hour + time.Hour)
	cfg.TradingInterval = 24 * time.Hour
	cfg.RandomSeed = 1

	sma, err := fields.NewSMA("sma2-close", "close", 2)
	require.NoError(t, err)

	bt, err := engine.New(&engine.Settings{
		Config:          cfg,
		DataReaders:     map[common.AssetID]data.Handler{"aapl": stream},
		FieldOperations: []fields.Operation{sma},
		OnDataEvent:     check,
	})
	require.NoError(t, err)
	require.NoError(t, bt.Run())
}

func TestCrossoverDetectsUpwardCross(t *testing.T) {
	t.Parallel()
	// close vs its own 2-bar mean: falling then rising closes cross the
	// mean from below on the rebound bar
	closes := []float64{10, 8, 6, 9}
	var crossBars []int
	runWith(t, closes, func(bt *engine.BackTest, _ *databar.CompletedProcessing) error {
		crossed, err := Crossover(bt, "aapl", "close", "sma2-close")
		if err != nil {
			return err
		}
		if crossed {
			crossBars = append(crossBars, bt.BarIndex())
		}
		return nil
	})
	assert.Equal(t, []int{4}, crossBars)
}

func TestCrossunderDetectsDownwardCross(t *testing.T) {
	t.Parallel()
	closes := []float64{6, 8, 10, 7}
	var crossBars []int
	runWith(t, closes, func(bt *engine.BackTest, _ *databar.CompletedProcessing) error {
		crossed, err := Crossunder(bt, "aapl", "close", "sma2-close")
		if err != nil {
			return err
		}
		if crossed {
			crossBars = append(crossBars, bt.BarIndex())
		}
		return nil
	})
	assert.Equal(t, []int{4}, crossBars)
}

func TestCrossoverNeedsTwoBars(t *testing.T) {
	t.Parallel()
	runWith(t, []float64{10}, func(bt *engine.BackTest, _ *databar.CompletedProcessing) error {
		crossed, err := Crossover(bt, "aapl", "close", "sma2-close")
		require.NoError(t, err)
		assert.False(t, crossed)
		return nil
	})
}

func TestCrossoverUnknownField(t *testing.T) {
	t.Parallel()
	runWith(t, []float64{10, 11}, func(bt *engine.BackTest, _ *databar.CompletedProcessing) error {
		_, err := Crossover(bt, "aapl", "close", "nope")
		assert.Error(t, err)
		return nil
	})
}

func TestCrossoverNilBacktest(t *testing.T) {
	t.Parallel()
	_, err := Crossover(nil, "aapl", "a", "b")
	assert.ErrorIs(t, err, common.ErrNilArguments)
}

func TestHistory(t *testing.T) {
	t.Parallel()
	closes := []float64{10, 11, 12}
	runWith(t, closes, func(bt *engine.BackTest, _ *databar.CompletedProcessing) error {
		if bt.BarIndex() != 3 {
			return nil
		}
		got, err := History(bt, "aapl", "close", 5)
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 11, 12}, got)

		got, err = History(bt, "aapl", "close", 2)
		require.NoError(t, err)
		assert.Equal(t, []float64{11, 12}, got)
		return nil
	})
}
