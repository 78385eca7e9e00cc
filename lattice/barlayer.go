package lattice

import (
	"fmt"

	"github.com/openquant/backtester/common"
)

// NewBarLayer returns an empty bar layer
func NewBarLayer() *BarLayer {
	return &BarLayer{cells: make(map[common.AssetID]map[common.FieldID]common.Value)}
}

// Insert stores a cell value, overwriting any previous value for the pair
func (b *BarLayer) Insert(asset common.AssetID, field common.FieldID, v common.Value) {
	row, ok := b.cells[asset]
	if !ok {
		row = make(map[common.FieldID]common.Value)
		b.cells[asset] = row
	}
	row[field] = v
}

// Value returns the cell for the pair, erroring when no cell exists
func (b *BarLayer) Value(asset common.AssetID, field common.FieldID) (common.Value, error) {
	row, ok := b.cells[asset]
	if !ok {
		return common.Value{}, fmt.Errorf("%w: asset %q field %q", ErrNoValue, asset, field)
	}
	v, ok := row[field]
	if !ok {
		return common.Value{}, fmt.Errorf("%w: asset %q field %q", ErrNoValue, asset, field)
	}
	return v, nil
}

// Has reports whether a cell exists for the pair
func (b *BarLayer) Has(asset common.AssetID, field common.FieldID) bool {
	_, ok := b.cells[asset][field]
	return ok
}

// FieldValues returns one cell per asset for a field. Assets without a
// cell are absent from the result
func (b *BarLayer) FieldValues(field common.FieldID, assetOrder []common.AssetID) map[common.AssetID]common.Value {
	out := make(map[common.AssetID]common.Value, len(assetOrder))
	for _, a := range assetOrder {
		if v, ok := b.cells[a][field]; ok {
			out[a] = v
		}
	}
	return out
}

// Values returns the full (asset, field) cell table. The returned maps
// are the layer's own storage; callers must not mutate them
func (b *BarLayer) Values() map[common.AssetID]map[common.FieldID]common.Value {
	return b.cells
}
