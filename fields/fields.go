// Package fields defines the operation taxonomy a lattice executes:
// genesis inputs, per-asset window reductions and per-bar cross-sectional
// reductions, together with the stock reducers.
package fields

import (
	"math"
	"sort"

	"github.com/openquant/backtester/common"
)

// Genesis declares an externally supplied field
func Genesis(id common.FieldID) (Operation, error) {
	if id == "" {
		return Operation{}, ErrEmptyFieldID
	}
	return Operation{id: id, kind: KindGenesis}, nil
}

// Window declares a field reducing the trailing window of upstream cells
// for each asset
func Window(id, upstream common.FieldID, window int, r WindowReducer) (Operation, error) {
	if id == "" {
		return Operation{}, ErrEmptyFieldID
	}
	if upstream == "" {
		return Operation{}, ErrMissingUpstream
	}
	if window <= 0 {
		return Operation{}, ErrInvalidWindow
	}
	if r == nil {
		return Operation{}, common.ErrNilArguments
	}
	return Operation{id: id, upstream: upstream, window: window, kind: KindWindow, win: r}, nil
}

// CrossSectional declares a field reducing one upstream cell per asset on
// the current bar
func CrossSectional(id, upstream common.FieldID, r CrossSectionalReducer) (Operation, error) {
	if id == "" {
		return Operation{}, ErrEmptyFieldID
	}
	if upstream == "" {
		return Operation{}, ErrMissingUpstream
	}
	if r == nil {
		return Operation{}, common.ErrNilArguments
	}
	return Operation{id: id, upstream: upstream, kind: KindCrossSectional, cross: r}, nil
}

// ReduceWindow applies the operation's window reducer
func (o Operation) ReduceWindow(window []common.Value) common.Value {
	return o.win.Reduce(window, o.window)
}

// ReduceCrossSection applies the operation's cross-sectional reducer
func (o Operation) ReduceCrossSection(values map[common.AssetID]common.Value, assetOrder []common.AssetID) map[common.AssetID]common.Value {
	return o.cross.ReduceAll(values, assetOrder)
}

// SMA is the arithmetic mean of the window. Missing cells contribute
// nothing to the sum but still count towards the divisor, matching a
// sum-over-size reduction
type SMA struct{}

// Reduce implements WindowReducer
func (SMA) Reduce(window []common.Value, _ int) common.Value {
	if len(window) == 0 {
		return common.Missing()
	}
	var sum float64
	for i := range window {
		if f, ok := window[i].Float64(); ok {
			sum += f
		}
	}
	return common.Float(sum / float64(len(window)))
}

// Returns is the simple return across the window,
// (last - first) / first. It produces missing until a full window is
// available
type Returns struct{}

// Reduce implements WindowReducer
func (Returns) Reduce(window []common.Value, size int) common.Value {
	first, last, ok := windowEndpoints(window, size)
	if !ok || first == 0 {
		return common.Missing()
	}
	return common.Float((last - first) / first)
}

// LogReturns is the natural log of last over first across the window,
// missing until a full window is available
type LogReturns struct{}

// Reduce implements WindowReducer
func (LogReturns) Reduce(window []common.Value, size int) common.Value {
	first, last, ok := windowEndpoints(window, size)
	if !ok || first == 0 {
		return common.Missing()
	}
	ratio := last / first
	if ratio <= 0 {
		return common.Missing()
	}
	return common.Float(math.Log(ratio))
}

func windowEndpoints(window []common.Value, size int) (first, last float64, ok bool) {
	if len(window) < size {
		return 0, 0, false
	}
	first, fok := window[0].Float64()
	last, lok := window[size-1].Float64()
	if !fok || !lok {
		return 0, 0, false
	}
	return first, last, true
}

// ZScore standardises each asset's value against the cross-section,
// (x - mean) / sample standard deviation. All outputs are missing when
// fewer than two assets carry values or the deviation is zero
type ZScore struct{}

// ReduceAll implements CrossSectionalReducer
func (ZScore) ReduceAll(values map[common.AssetID]common.Value, assetOrder []common.AssetID) map[common.AssetID]common.Value {
	out := make(map[common.AssetID]common.Value, len(assetOrder))
	var sum float64
	var n int
	for _, a := range assetOrder {
		if f, ok := values[a].Float64(); ok {
			sum += f
			n++
		}
	}
	if n < 2 {
		for _, a := range assetOrder {
			out[a] = common.Missing()
		}
		return out
	}
	mean := sum / float64(n)
	var ss float64
	for _, a := range assetOrder {
		if f, ok := values[a].Float64(); ok {
			ss += (f - mean) * (f - mean)
		}
	}
	sd := math.Sqrt(ss / float64(n-1))
	for _, a := range assetOrder {
		f, ok := values[a].Float64()
		if !ok || sd == 0 {
			out[a] = common.Missing()
			continue
		}
		out[a] = common.Float((f - mean) / sd)
	}
	return out
}

// RankDescending ranks each asset's value against the cross-section; the
// largest value receives rank 1. Ties resolve stably by asset order
type RankDescending struct{}

// ReduceAll implements CrossSectionalReducer
func (RankDescending) ReduceAll(values map[common.AssetID]common.Value, assetOrder []common.AssetID) map[common.AssetID]common.Value {
	out := make(map[common.AssetID]common.Value, len(assetOrder))
	type entry struct {
		asset common.AssetID
		value float64
	}
	ranked := make([]entry, 0, len(assetOrder))
	for _, a := range assetOrder {
		f, ok := values[a].Float64()
		if !ok {
			out[a] = common.Missing()
			continue
		}
		ranked = append(ranked, entry{asset: a, value: f})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].value > ranked[j].value
	})
	for i := range ranked {
		out[ranked[i].asset] = common.Rank(int64(i + 1))
	}
	return out
}

// NewSMA builds a simple-moving-average window field
func NewSMA(id, upstream common.FieldID, window int) (Operation, error) {
	return Window(id, upstream, window, SMA{})
}

// NewReturns builds a simple-returns window field
func NewReturns(id, upstream common.FieldID, window int) (Operation, error) {
	return Window(id, upstream, window, Returns{})
}

// NewLogReturns builds a log-returns window field
func NewLogReturns(id, upstream common.FieldID, window int) (Operation, error) {
	return Window(id, upstream, window, LogReturns{})
}

// NewZScore builds a cross-sectional z-score field
func NewZScore(id, upstream common.FieldID) (Operation, error) {
	return CrossSectional(id, upstream, ZScore{})
}

// NewRank builds a cross-sectional descending rank field
func NewRank(id, upstream common.FieldID) (Operation, error) {
	return CrossSectional(id, upstream, RankDescending{})
}
