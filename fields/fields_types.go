package fields

import (
	"errors"

	"github.com/openquant/backtester/common"
)

var (
	// ErrInvalidWindow occurs when a window operation is built with a
	// non-positive window length
	ErrInvalidWindow = errors.New("window length must be positive")
	// ErrMissingUpstream occurs when a derived operation is built without
	// an upstream field id
	ErrMissingUpstream = errors.New("derived field requires an upstream field id")
	// ErrEmptyFieldID occurs when an operation is built without an id
	ErrEmptyFieldID = errors.New("field id must not be empty")
)

// OpKind tags the operation variant
type OpKind uint8

// Operation variants
const (
	// KindGenesis fields receive their values from outside the lattice
	KindGenesis OpKind = iota
	// KindWindow fields reduce the trailing window of one upstream field
	// for a single asset into one cell
	KindWindow
	// KindCrossSectional fields reduce one upstream cell per asset on the
	// current bar into one cell per asset
	KindCrossSectional
)

// WindowReducer reduces a trailing window of upstream cells, oldest to
// newest, into a single cell. The slice holds min(window, bars available)
// entries; size is the configured length so reducers can detect a
// partially filled window
type WindowReducer interface {
	Reduce(window []common.Value, size int) common.Value
}

// CrossSectionalReducer reduces one upstream cell per asset into one
// output cell per asset. assetOrder carries the lattice's asset ordering
// so reducers that sort can break ties deterministically
type CrossSectionalReducer interface {
	ReduceAll(values map[common.AssetID]common.Value, assetOrder []common.AssetID) map[common.AssetID]common.Value
}

// Operation is one field registered in a lattice: a genesis input, a
// windowed reduction, or a cross-sectional reduction. Construct through
// Genesis, Window or CrossSectional
type Operation struct {
	id       common.FieldID
	upstream common.FieldID
	window   int
	kind     OpKind
	win      WindowReducer
	cross    CrossSectionalReducer
}

// ID returns the field id this operation produces
func (o Operation) ID() common.FieldID {
	return o.id
}

// Upstream returns the id of the single field this operation consumes.
// Genesis operations have no upstream
func (o Operation) Upstream() common.FieldID {
	return o.upstream
}

// WindowLen returns the configured window length for window operations
func (o Operation) WindowLen() int {
	return o.window
}

// Kind returns the operation variant
func (o Operation) Kind() OpKind {
	return o.kind
}
