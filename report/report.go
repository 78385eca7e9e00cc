// Package report exports a backtest's full lattice history as JSON: one
// entry per bar from start up to (exclusive) the end time, keyed by bar
// datetime, each holding every (asset, field) cell.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/config"
	"github.com/openquant/backtester/engine"
	"github.com/openquant/backtester/eventtypes/databar"
)

const datetimeKeyLayout = "2006-01-02 15:04:05"

// Data holds the exported lattice history. Keys marshal in sorted order,
// and the datetime layout sorts chronologically, so the JSON object is
// ordered oldest bar first. Cells marshal as tagged values so every
// kind, rank included, survives a write/read cycle unchanged
type Data struct {
	Bars map[string]map[common.AssetID]map[common.FieldID]common.Value `json:"bars"`
}

// Export runs the configured backtest with zero latencies and unbounded
// retention, snapshotting the freshest bar layer as each bar's field
// processing completes. The supplied settings' callbacks still run after
// the snapshot is taken
func Export(s *engine.Settings) (*Data, error) {
	if s == nil {
		return nil, common.ErrNilArguments
	}
	run := *s
	run.Config.DataDelay = 0
	run.Config.MessageLatency = 0
	run.Config.NumLookbackBars = config.LookbackAll

	d := &Data{Bars: make(map[string]map[common.AssetID]map[common.FieldID]common.Value)}
	userData := run.OnDataEvent
	run.OnDataEvent = func(bt *engine.BackTest, e *databar.CompletedProcessing) error {
		d.snapshot(bt)
		if userData != nil {
			return userData(bt, e)
		}
		return nil
	}

	bt, err := engine.New(&run)
	if err != nil {
		return nil, err
	}
	if err := bt.Run(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Data) snapshot(bt *engine.BackTest) {
	lat := bt.Lattice()
	layer, err := lat.Data(0)
	if err != nil {
		return
	}
	bar := make(map[common.AssetID]map[common.FieldID]common.Value, len(lat.Assets()))
	for _, a := range lat.Assets() {
		row := make(map[common.FieldID]common.Value, len(lat.Fields()))
		for _, f := range lat.Fields() {
			v, err := layer.Value(a, f)
			if err != nil {
				continue
			}
			row[f] = v
		}
		bar[a] = row
	}
	d.Bars[bt.CurrentBarStart().Format(datetimeKeyLayout)] = bar
}

// Value returns one exported cell as a tagged value
func (d *Data) Value(datetime string, asset common.AssetID, field common.FieldID) (common.Value, error) {
	bar, ok := d.Bars[datetime]
	if !ok {
		return common.Value{}, fmt.Errorf("no exported bar at %q", datetime)
	}
	row, ok := bar[asset]
	if !ok {
		return common.Value{}, fmt.Errorf("no exported data for asset %q at %q", asset, datetime)
	}
	v, ok := row[field]
	if !ok {
		return common.Value{}, fmt.Errorf("no exported cell for %q/%q at %q", asset, field, datetime)
	}
	return v, nil
}

// WriteJSON streams the export to w
func (d *Data) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// WriteFile writes the export to path
func (d *Data) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return d.WriteJSON(f)
}

// ReadFile loads a previously written export
func ReadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing report %q: %w", path, err)
	}
	return &d, nil
}
