// Package lattice implements the calculation lattice: rolling per-bar
// storage of (asset, field) cells plus the dependency graph that
// propagates derived fields when genesis data arrives.
package lattice

import (
	"fmt"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/fields"
)

// New returns a lattice over the supplied assets. Asset order is fixed at
// construction and drives every propagation and tie-break downstream.
// retention bounds how many bars are kept; RetainAll keeps every bar
func New(assets []common.AssetID, retention int) (*Lattice, error) {
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}
	if retention != RetainAll && retention <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRetention, retention)
	}
	set := make(map[common.AssetID]struct{}, len(assets))
	ordered := make([]common.AssetID, 0, len(assets))
	for _, a := range assets {
		if _, ok := set[a]; ok {
			return nil, fmt.Errorf("duplicate asset %q", a)
		}
		set[a] = struct{}{}
		ordered = append(ordered, a)
	}
	return &Lattice{
		assets:           ordered,
		assetSet:         set,
		retention:        retention,
		completedAssets:  make(map[common.FieldID]int),
		windowDependents: make(map[common.FieldID][]common.FieldID),
		crossDependents:  make(map[common.FieldID][]common.FieldID),
		ops:              make(map[common.FieldID]fields.Operation),
	}, nil
}

// AddField registers an operation. Fields may only be added before the
// first bar is ingested, ids must be unique, and a derived field's
// upstream must already be registered
func (l *Lattice) AddField(op fields.Operation) error {
	if l.curBarIndex != 0 {
		return fmt.Errorf("%w: field %q", common.ErrFieldAfterStart, op.ID())
	}
	if _, ok := l.ops[op.ID()]; ok {
		return fmt.Errorf("%w: %q", common.ErrDuplicateField, op.ID())
	}
	switch op.Kind() {
	case fields.KindGenesis:
		l.genesisFields = append(l.genesisFields, op.ID())
	case fields.KindWindow:
		if _, ok := l.ops[op.Upstream()]; !ok {
			return fmt.Errorf("%w: %q depends on %q", ErrUnknownUpstream, op.ID(), op.Upstream())
		}
		l.windowDependents[op.Upstream()] = append(l.windowDependents[op.Upstream()], op.ID())
	case fields.KindCrossSectional:
		if _, ok := l.ops[op.Upstream()]; !ok {
			return fmt.Errorf("%w: %q depends on %q", ErrUnknownUpstream, op.ID(), op.Upstream())
		}
		l.crossDependents[op.Upstream()] = append(l.crossDependents[op.Upstream()], op.ID())
	}
	l.ops[op.ID()] = op
	l.fieldOrder = append(l.fieldOrder, op.ID())
	return nil
}

// AddFields registers operations in order, stopping at the first failure
func (l *Lattice) AddFields(ops ...fields.Operation) error {
	for i := range ops {
		if err := l.AddField(ops[i]); err != nil {
			return err
		}
	}
	return nil
}

// NewBar ingests one bar of genesis data and propagates every derived
// field. The input must carry a value for every (asset, genesis field)
// pair the lattice tracks
func (l *Lattice) NewBar(genesis map[common.AssetID]map[common.FieldID]common.Value) error {
	for _, a := range l.assets {
		row, ok := genesis[a]
		if !ok {
			return fmt.Errorf("%w: %q", common.ErrMissingAsset, a)
		}
		for _, g := range l.genesisFields {
			if _, ok := row[g]; !ok {
				return fmt.Errorf("%w: asset %q field %q", common.ErrMissingGenesisField, a, g)
			}
		}
	}

	for f := range l.completedAssets {
		delete(l.completedAssets, f)
	}
	l.curBarIndex++

	layer := NewBarLayer()
	if l.retention != RetainAll && len(l.recentBars) == l.retention {
		l.recentBars = l.recentBars[1:]
	}
	l.recentBars = append(l.recentBars, layer)

	for _, a := range l.assets {
		for _, g := range l.genesisFields {
			layer.Insert(a, g, genesis[a][g])
			l.propagate(a, g)
		}
	}
	return nil
}

// propagate walks the dependency tree depth-first from an (asset, field)
// cell that was just inserted. Window dependents compute immediately for
// this asset; cross-sectional dependents fire exactly once per bar, on
// the visit that completes the final asset for the upstream field
func (l *Lattice) propagate(asset common.AssetID, field common.FieldID) {
	layer := l.recentBars[len(l.recentBars)-1]

	for _, w := range l.windowDependents[field] {
		layer.Insert(asset, w, l.computeWindow(w, asset))
		l.propagate(asset, w)
	}

	l.completedAssets[field]++
	if l.completedAssets[field] != len(l.assets) {
		return
	}
	for _, x := range l.crossDependents[field] {
		op := l.ops[x]
		results := op.ReduceCrossSection(layer.FieldValues(field, l.assets), l.assets)
		for _, a := range l.assets {
			v, ok := results[a]
			if !ok {
				v = common.Missing()
			}
			layer.Insert(a, x, v)
		}
		for _, a := range l.assets {
			l.propagate(a, x)
		}
	}
}

// computeWindow gathers the trailing window of upstream cells for one
// asset, oldest to newest, and applies the operation's reduction
func (l *Lattice) computeWindow(field common.FieldID, asset common.AssetID) common.Value {
	op := l.ops[field]
	span := op.WindowLen()
	if available := len(l.recentBars); span > available {
		span = available
	}
	window := make([]common.Value, 0, span)
	for i := len(l.recentBars) - span; i < len(l.recentBars); i++ {
		v, err := l.recentBars[i].Value(asset, op.Upstream())
		if err != nil {
			v = common.Missing()
		}
		window = append(window, v)
	}
	return op.ReduceWindow(window)
}

// Data returns the bar layer ago bars back; ago 0 is the most recent
// completed bar
func (l *Lattice) Data(ago int) (*BarLayer, error) {
	if err := l.checkAgo(ago); err != nil {
		return nil, err
	}
	return l.recentBars[len(l.recentBars)-1-ago], nil
}

// FieldData returns one cell per asset for a field, ago bars back
func (l *Lattice) FieldData(ago int, field common.FieldID) (map[common.AssetID]common.Value, error) {
	if _, ok := l.ops[field]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	layer, err := l.Data(ago)
	if err != nil {
		return nil, err
	}
	return layer.FieldValues(field, l.assets), nil
}

// Value returns a single cell, ago bars back
func (l *Lattice) Value(ago int, asset common.AssetID, field common.FieldID) (common.Value, error) {
	if _, ok := l.assetSet[asset]; !ok {
		return common.Value{}, fmt.Errorf("%w: %q", ErrUnknownAsset, asset)
	}
	if _, ok := l.ops[field]; !ok {
		return common.Value{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	layer, err := l.Data(ago)
	if err != nil {
		return common.Value{}, err
	}
	return layer.Value(asset, field)
}

func (l *Lattice) checkAgo(ago int) error {
	if ago < 0 {
		return fmt.Errorf("%w: ago %d is negative", common.ErrAgoOutOfRange, ago)
	}
	if l.retention != RetainAll && ago >= l.retention {
		return fmt.Errorf("%w: ago %d exceeds retention %d", common.ErrAgoOutOfRange, ago, l.retention)
	}
	if ago >= len(l.recentBars) {
		return fmt.Errorf("%w: ago %d but only %d bars available", common.ErrAgoOutOfRange, ago, len(l.recentBars))
	}
	return nil
}

// NumBarsAvailable returns the count of retained bars
func (l *Lattice) NumBarsAvailable() int {
	return len(l.recentBars)
}

// CurrentBarIndex returns how many bars have been ingested; zero before
// the first bar
func (l *Lattice) CurrentBarIndex() int {
	return l.curBarIndex
}

// Assets returns the lattice's asset ordering. Callers must not mutate
// the returned slice
func (l *Lattice) Assets() []common.AssetID {
	return l.assets
}

// GenesisFields returns the registered genesis field ids in insertion
// order. Callers must not mutate the returned slice
func (l *Lattice) GenesisFields() []common.FieldID {
	return l.genesisFields
}

// Fields returns all registered field ids in registration order. Callers
// must not mutate the returned slice
func (l *Lattice) Fields() []common.FieldID {
	return l.fieldOrder
}

// Retention returns the configured retention, RetainAll when unbounded
func (l *Lattice) Retention() int {
	return l.retention
}
