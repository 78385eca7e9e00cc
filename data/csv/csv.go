// Package csv reads per-asset bar data from delimited text files. A
// reader caches one file's rows at a time and concatenates multiple
// source files in the order supplied.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/data"
)

var (
	// ErrNoPaths occurs when a reader is constructed without any file paths
	ErrNoPaths = errors.New("at least one data path is required")
	// ErrMissingDatetimeColumn occurs when a file lacks the configured datetime column
	ErrMissingDatetimeColumn = errors.New("datetime column not present in header")
)

const (
	defaultDatetimeColumn = common.FieldID("datetime")
	defaultDatetimeLayout = "2006-01-02 15:04:05"
)

// Options configures parsing of delimited bar files
type Options struct {
	// Comma is the field delimiter; ',' when zero
	Comma rune
	// DatetimeColumn names the column holding each bar's timestamp;
	// "datetime" when empty
	DatetimeColumn common.FieldID
	// DatetimeLayout is the time.Parse layout for the datetime column;
	// "2006-01-02 15:04:05" when empty
	DatetimeLayout string
}

func (o Options) withDefaults() Options {
	if o.Comma == 0 {
		o.Comma = ','
	}
	if o.DatetimeColumn == "" {
		o.DatetimeColumn = defaultDatetimeColumn
	}
	if o.DatetimeLayout == "" {
		o.DatetimeLayout = defaultDatetimeLayout
	}
	return o
}

// Reader is a data.Handler over one asset's delimited files
type Reader struct {
	asset common.AssetID
	paths []string
	opts  Options

	fileIndex int
	rows      []data.Bar
	rowIndex  int
}

// NewReader returns a reader over the supplied paths for one asset. The
// first file is loaded eagerly so construction surfaces malformed data
func NewReader(asset common.AssetID, paths []string, opts Options) (*Reader, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	r := &Reader{
		asset:     asset,
		paths:     paths,
		opts:      opts.withDefaults(),
		fileIndex: -1,
	}
	if err := r.loadNextFile(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) loadNextFile() error {
	r.fileIndex++
	path := r.paths[r.fileIndex]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = r.opts.Comma
	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("parsing %q: %w", path, err)
	}
	if len(records) < 2 {
		return fmt.Errorf("%w: %q", data.ErrNoBars, path)
	}

	header := records[0]
	dtCol := -1
	for i := range header {
		if common.FieldID(header[i]) == r.opts.DatetimeColumn {
			dtCol = i
		}
	}
	if dtCol == -1 {
		return fmt.Errorf("%w: %q in %q", ErrMissingDatetimeColumn, r.opts.DatetimeColumn, path)
	}

	rows := make([]data.Bar, 0, len(records)-1)
	for line, rec := range records[1:] {
		ts, err := time.Parse(r.opts.DatetimeLayout, rec[dtCol])
		if err != nil {
			return fmt.Errorf("parsing datetime on line %d of %q: %w", line+2, path, err)
		}
		values := make(map[common.FieldID]common.Value, len(header))
		for i := range header {
			values[common.FieldID(header[i])] = parseCell(rec[i])
		}
		rows = append(rows, data.Bar{Time: ts, Values: values})
	}
	r.rows = rows
	r.rowIndex = 0
	return nil
}

func parseCell(s string) common.Value {
	if s == "" {
		return common.Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return common.Float(f)
	}
	return common.String(s)
}

// AssetID implements data.Handler
func (r *Reader) AssetID() common.AssetID {
	return r.asset
}

// Peek implements data.Handler
func (r *Reader) Peek() (data.Bar, error) {
	for r.rowIndex >= len(r.rows) {
		if r.fileIndex+1 >= len(r.paths) {
			return data.Bar{}, fmt.Errorf("%w: asset %q", data.ErrNoMoreData, r.asset)
		}
		if err := r.loadNextFile(); err != nil {
			return data.Bar{}, err
		}
	}
	return r.rows[r.rowIndex], nil
}

// PopFirst implements data.Handler
func (r *Reader) PopFirst() (data.Bar, error) {
	b, err := r.Peek()
	if err != nil {
		return data.Bar{}, err
	}
	r.rowIndex++
	return b, nil
}

// FastForward implements data.Handler
func (r *Reader) FastForward(t time.Time) error {
	first, err := r.Peek()
	if err != nil {
		return fmt.Errorf("%w: asset %q", common.ErrDateTooFarOut, r.asset)
	}
	if first.Time.After(t) {
		return fmt.Errorf("%w: asset %q starts %v, wanted %v", common.ErrDateTooEarly, r.asset, first.Time, t)
	}
	for {
		next, err := r.Peek()
		if err != nil {
			return fmt.Errorf("%w: asset %q ended before %v", common.ErrDateTooFarOut, r.asset, t)
		}
		if !next.Time.Before(t) {
			return nil
		}
		r.rowIndex++
	}
}
