// Package strategies contains helpers shared by strategy callbacks:
// field crossover detection over the lattice accessors and history
// extraction for indicator libraries.
package strategies

import (
	"errors"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/engine"
)

// Crossover reports whether field a moved from at-or-below field b on the
// previous bar to strictly above it on the current bar for one asset.
// With fewer than two completed bars, or missing cells, it reports false
func Crossover(bt *engine.BackTest, asset common.AssetID, a, b common.FieldID) (bool, error) {
	return crossed(bt, asset, a, b, false)
}

// Crossunder reports the mirror image: a moves from at-or-above b to
// strictly below it
func Crossunder(bt *engine.BackTest, asset common.AssetID, a, b common.FieldID) (bool, error) {
	return crossed(bt, asset, a, b, true)
}

func crossed(bt *engine.BackTest, asset common.AssetID, a, b common.FieldID, under bool) (bool, error) {
	if bt == nil {
		return false, common.ErrNilArguments
	}
	curA, curB, err := pair(bt, 0, asset, a, b)
	if err != nil || curA == nil || curB == nil {
		return false, err
	}
	prevA, prevB, err := pair(bt, 1, asset, a, b)
	if err != nil {
		if errors.Is(err, common.ErrAgoOutOfRange) {
			return false, nil
		}
		return false, err
	}
	if prevA == nil || prevB == nil {
		return false, nil
	}
	if under {
		return *prevA >= *prevB && *curA < *curB, nil
	}
	return *prevA <= *prevB && *curA > *curB, nil
}

// pair reads two cells on the same bar; nil floats flag missing values
func pair(bt *engine.BackTest, ago int, asset common.AssetID, a, b common.FieldID) (*float64, *float64, error) {
	va, err := bt.Lattice().Value(ago, asset, a)
	if err != nil {
		return nil, nil, err
	}
	vb, err := bt.Lattice().Value(ago, asset, b)
	if err != nil {
		return nil, nil, err
	}
	fa, okA := va.Float64()
	fb, okB := vb.Float64()
	var pa, pb *float64
	if okA {
		pa = &fa
	}
	if okB {
		pb = &fb
	}
	return pa, pb, nil
}

// History collects up to n trailing values of one field for one asset,
// oldest to newest, stopping at whatever the lattice retains. Missing
// cells are skipped
func History(bt *engine.BackTest, asset common.AssetID, field common.FieldID, n int) ([]float64, error) {
	if bt == nil {
		return nil, common.ErrNilArguments
	}
	available := bt.Lattice().NumBarsAvailable()
	if n > available {
		n = available
	}
	out := make([]float64, 0, n)
	for ago := n - 1; ago >= 0; ago-- {
		v, err := bt.Lattice().Value(ago, asset, field)
		if err != nil {
			return nil, err
		}
		if f, ok := v.Float64(); ok {
			out = append(out, f)
		}
	}
	return out, nil
}
