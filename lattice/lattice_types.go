package lattice

import (
	"errors"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/fields"
)

// RetainAll is the retention sentinel meaning no bar is ever evicted
const RetainAll = -1

var (
	// ErrNoAssets occurs when a lattice is constructed without any assets
	ErrNoAssets = errors.New("lattice requires at least one asset")
	// ErrInvalidRetention occurs when retention is neither positive nor RetainAll
	ErrInvalidRetention = errors.New("retention must be positive or RetainAll")
	// ErrUnknownUpstream occurs when a derived field references an
	// upstream id that has not been registered yet
	ErrUnknownUpstream = errors.New("upstream field not registered")
	// ErrUnknownField occurs when an accessor references an unregistered field
	ErrUnknownField = errors.New("unknown field id")
	// ErrUnknownAsset occurs when an accessor references an asset the lattice does not track
	ErrUnknownAsset = errors.New("unknown asset id")
	// ErrNoValue occurs when a bar layer holds no cell for an (asset, field) pair
	ErrNoValue = errors.New("no value for asset/field in bar layer")
)

// BarLayer is a dense mapping from (asset, field) to a cell value for a
// single retained bar
type BarLayer struct {
	cells map[common.AssetID]map[common.FieldID]common.Value
}

// Lattice is an incrementally maintained dependency graph over a rolling
// window of bars, keyed by (bar, asset, field). Fields are registered
// before the first bar; each NewBar call ingests one bar of genesis data
// and propagates every derived field depth-first
type Lattice struct {
	assets    []common.AssetID
	assetSet  map[common.AssetID]struct{}
	retention int

	// recentBars is ordered oldest to newest and never exceeds retention
	recentBars  []*BarLayer
	curBarIndex int

	// completedAssets counts, per field, how many assets have produced a
	// value on the current bar; it gates cross-sectional firing
	completedAssets map[common.FieldID]int

	windowDependents map[common.FieldID][]common.FieldID
	crossDependents  map[common.FieldID][]common.FieldID
	genesisFields    []common.FieldID
	fieldOrder       []common.FieldID
	ops              map[common.FieldID]fields.Operation
}
