package data

import (
	"errors"
	"time"

	"github.com/openquant/backtester/common"
)

var (
	// ErrNoMoreData occurs when a reader is asked for a bar after its
	// final one has been consumed
	ErrNoMoreData = errors.New("no more bars available")
	// ErrNoBars occurs when a reader is constructed over an empty source
	ErrNoBars = errors.New("source contains no bars")
)

// Bar is one time-stamped row from a reader. Values holds every column,
// including the configured datetime column in its raw form; Time is that
// column parsed
type Bar struct {
	Time   time.Time
	Values map[common.FieldID]common.Value
}

// Handler is an iterator over time-sorted bars for exactly one asset
type Handler interface {
	// AssetID returns the asset this reader feeds
	AssetID() common.AssetID
	// Peek returns the current bar without advancing
	Peek() (Bar, error)
	// PopFirst returns the current bar and advances to the next
	PopFirst() (Bar, error)
	// FastForward advances until the next bar's datetime is at or past t.
	// It fails with common.ErrDateTooEarly when the first bar is already
	// after t and with common.ErrDateTooFarOut when the reader is
	// exhausted before reaching t
	FastForward(t time.Time) error
}
