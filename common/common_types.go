package common

import (
	"errors"
	"time"
)

// AssetID identifies one tradeable asset within a backtest. It is opaque;
// only equality and map-key usage are supported.
type AssetID string

// FieldID identifies one field within a lattice, genesis or derived
type FieldID string

// OrderID is a collision-free token identifying a placed order
type OrderID string

// Verbosity is an ordered log-level ladder. Higher levels include all
// lower ones, so a backtest run at VerbosityInfo also emits transaction,
// debug and warning lines
type Verbosity uint8

// Verbosity levels from quietest to loudest
const (
	VerbosityNone Verbosity = iota
	VerbosityWarning
	VerbosityDebug
	VerbosityTransactions
	VerbosityInfo
)

var (
	// ErrNilArguments is a common error response to highlight that nils were
	// passed in when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrNilEvent is a common error for whenever a nil event occurs when it shouldn't have
	ErrNilEvent = errors.New("nil event received")
	// ErrMissingAsset occurs when new-bar input lacks an asset the lattice tracks
	ErrMissingAsset = errors.New("missing asset in new bar data")
	// ErrMissingGenesisField occurs when new-bar input lacks a genesis field for an asset
	ErrMissingGenesisField = errors.New("missing genesis field in new bar data")
	// ErrDuplicateField occurs when a field id is registered twice
	ErrDuplicateField = errors.New("duplicate field id")
	// ErrFieldAfterStart occurs when a field is added after the first bar was ingested
	ErrFieldAfterStart = errors.New("cannot add field after first bar has been ingested")
	// ErrAgoOutOfRange occurs when a lattice accessor is called with an
	// offset outside the retained history
	ErrAgoOutOfRange = errors.New("ago offset out of range")
	// ErrDateTooEarly occurs when a fast-forward target precedes a reader's first bar
	ErrDateTooEarly = errors.New("date requested before first available bar")
	// ErrDateTooFarOut occurs when a fast-forward target exceeds a reader's last bar
	ErrDateTooFarOut = errors.New("date requested after last available bar")
	// ErrDesynchronisedReaders occurs when readers disagree on the current bar's datetime
	ErrDesynchronisedReaders = errors.New("data readers returned differing datetimes for the same bar")
	// ErrEmptyDataReaders occurs when a backtest is configured without any readers
	ErrEmptyDataReaders = errors.New("no data readers configured")
)

// Kind enumerates the value kinds a lattice cell can hold
type Kind uint8

// Cell value kinds
const (
	KindMissing Kind = iota
	KindFloat
	KindInt
	KindString
	KindRank
)

// Value is a tagged cell value. A lattice cell holds exactly one of a
// float, an int, a string or a rank, or is missing entirely. The zero
// Value is missing
type Value struct {
	kind Kind
	f    float64
	i    int64
	s    string
}

// Event is the smallest interface all queued backtest events satisfy
type Event interface {
	GetTime() time.Time
}
