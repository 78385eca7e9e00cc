// Package config holds the serialisable settings of a backtest run and
// their defaults and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openquant/backtester/common"
)

// DefaultConfig returns a config carrying every documented default:
// 390-minute bars, 100ms delay/latency/timeout, 100k principal and
// lowercase singleton column names
func DefaultConfig() Config {
	return Config{
		TradingInterval: DefaultTradingInterval,
		NumLookbackBars: DefaultLookbackBars,
		Verbosity:       common.VerbosityNone.String(),
		DataDelay:       DefaultDataDelay,
		MessageLatency:  DefaultMessageLatency,
		FieldOpTimeout:  DefaultFieldOpTimeout,
		Principal:       DefaultPrincipal,
		Columns: Columns{
			Datetime: "datetime",
			Open:     "open",
			High:     "high",
			Low:      "low",
			Close:    "close",
			Volume:   "volume",
		},
	}
}

// Validate checks the config for contradictions, filling zero-valued
// column names from the defaults
func (c *Config) Validate() error {
	if !c.Start.Before(c.EndTime) {
		return fmt.Errorf("%w: start %v, end %v", ErrStartAfterEnd, c.Start, c.EndTime)
	}
	if c.TradingInterval <= 0 {
		return ErrInvalidInterval
	}
	if c.NumLookbackBars != LookbackAll && c.NumLookbackBars <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLookback, c.NumLookbackBars)
	}
	if c.DataDelay < 0 || c.MessageLatency < 0 || c.FieldOpTimeout < 0 {
		return ErrNegativeLatency
	}
	if c.Principal < 0 {
		return ErrNegativePrincipal
	}
	if _, err := common.VerbosityFromString(c.Verbosity); err != nil {
		return err
	}
	def := DefaultConfig().Columns
	if c.Columns.Datetime == "" {
		c.Columns.Datetime = def.Datetime
	}
	if c.Columns.Open == "" {
		c.Columns.Open = def.Open
	}
	if c.Columns.High == "" {
		c.Columns.High = def.High
	}
	if c.Columns.Low == "" {
		c.Columns.Low = def.Low
	}
	if c.Columns.Close == "" {
		c.Columns.Close = def.Close
	}
	if c.Columns.Volume == "" {
		c.Columns.Volume = def.Volume
	}
	return nil
}

// VerbosityLevel returns the parsed verbosity ladder level
func (c *Config) VerbosityLevel() common.Verbosity {
	v, err := common.VerbosityFromString(c.Verbosity)
	if err != nil {
		return common.VerbosityNone
	}
	return v
}

// OHLCVFieldIDs returns the five genesis field ids in registration order
func (c *Config) OHLCVFieldIDs() []common.FieldID {
	return []common.FieldID{
		common.FieldID(c.Columns.Open),
		common.FieldID(c.Columns.High),
		common.FieldID(c.Columns.Low),
		common.FieldID(c.Columns.Close),
		common.FieldID(c.Columns.Volume),
	}
}

// ReadConfigFromFile loads and validates a JSON config, layering the
// file's contents over the defaults
func ReadConfigFromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	c := DefaultConfig()
	if err := json.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
