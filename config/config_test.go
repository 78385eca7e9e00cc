package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquant/backtester/common"
)

func validConfig() Config {
	c := DefaultConfig()
	c.Start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	c.EndTime = time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	return c
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	c := DefaultConfig()
	assert.Equal(t, 390*time.Minute, c.TradingInterval)
	assert.Equal(t, 100*time.Millisecond, c.DataDelay)
	assert.Equal(t, 100*time.Millisecond, c.MessageLatency)
	assert.Equal(t, 100*time.Millisecond, c.FieldOpTimeout)
	assert.Equal(t, float64(100_000), c.Principal)
	assert.Equal(t, "none", c.Verbosity)
	assert.Equal(t, "close", c.Columns.Close)
	assert.Equal(t, common.VerbosityNone, c.VerbosityLevel())
}

func TestValidate(t *testing.T) {
	t.Parallel()
	for _, ti := range []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "start after end", mutate: func(c *Config) { c.Start = c.EndTime.Add(time.Hour) }, want: ErrStartAfterEnd},
		{name: "zero interval", mutate: func(c *Config) { c.TradingInterval = 0 }, want: ErrInvalidInterval},
		{name: "bad lookback", mutate: func(c *Config) { c.NumLookbackBars = -3 }, want: ErrInvalidLookback},
		{name: "negative latency", mutate: func(c *Config) { c.MessageLatency = -time.Second }, want: ErrNegativeLatency},
		{name: "negative principal", mutate: func(c *Config) { c.Principal = -1 }, want: ErrNegativePrincipal},
	} {
		ti := ti
		t.Run(ti.name, func(t *testing.T) {
			t.Parallel()
			c := validConfig()
			ti.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ti.want)
		})
	}

	c := validConfig()
	c.NumLookbackBars = LookbackAll
	assert.NoError(t, c.Validate())

	c = validConfig()
	c.Verbosity = "shouty"
	assert.Error(t, c.Validate())
}

func TestValidateFillsColumnDefaults(t *testing.T) {
	t.Parallel()
	c := validConfig()
	c.Columns = Columns{Datetime: "ts"}
	require.NoError(t, c.Validate())
	assert.Equal(t, "ts", c.Columns.Datetime)
	assert.Equal(t, "open", c.Columns.Open)
	assert.Equal(t, []common.FieldID{"open", "high", "low", "close", "volume"}, c.OHLCVFieldIDs())
}

func TestReadConfigFromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cfg.json")
	contents := `{
		"start": "2020-01-01T00:00:00Z",
		"end-time": "2020-06-01T00:00:00Z",
		"verbosity": "debug",
		"principal": 250000
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	c, err := ReadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, float64(250000), c.Principal)
	assert.Equal(t, common.VerbosityDebug, c.VerbosityLevel())
	// defaults still layered underneath
	assert.Equal(t, 390*time.Minute, c.TradingInterval)

	_, err = ReadConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
