// Package data defines the per-asset bar reader contract the backtest
// consumes, plus an in-memory implementation used for canned data and
// tests. Bars must be time-sorted; the engine keeps readers synchronised
// bar-for-bar.
package data

import (
	"fmt"
	"time"

	"github.com/openquant/backtester/common"
)

// Stream is an in-memory Handler over a pre-loaded, time-sorted slice of
// bars
type Stream struct {
	asset  common.AssetID
	bars   []Bar
	offset int
}

// NewStream returns a Stream over bars, which must already be sorted by
// time ascending
func NewStream(asset common.AssetID, bars []Bar) (*Stream, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: asset %q", ErrNoBars, asset)
	}
	return &Stream{asset: asset, bars: bars}, nil
}

// AssetID implements Handler
func (s *Stream) AssetID() common.AssetID {
	return s.asset
}

// Peek implements Handler
func (s *Stream) Peek() (Bar, error) {
	if s.offset >= len(s.bars) {
		return Bar{}, fmt.Errorf("%w: asset %q", ErrNoMoreData, s.asset)
	}
	return s.bars[s.offset], nil
}

// PopFirst implements Handler
func (s *Stream) PopFirst() (Bar, error) {
	b, err := s.Peek()
	if err != nil {
		return Bar{}, err
	}
	s.offset++
	return b, nil
}

// FastForward implements Handler
func (s *Stream) FastForward(t time.Time) error {
	first, err := s.Peek()
	if err != nil {
		return fmt.Errorf("%w: asset %q", common.ErrDateTooFarOut, s.asset)
	}
	if first.Time.After(t) {
		return fmt.Errorf("%w: asset %q starts %v, wanted %v", common.ErrDateTooEarly, s.asset, first.Time, t)
	}
	for {
		next, err := s.Peek()
		if err != nil {
			return fmt.Errorf("%w: asset %q ended before %v", common.ErrDateTooFarOut, s.asset, t)
		}
		if !next.Time.Before(t) {
			return nil
		}
		s.offset++
	}
}
