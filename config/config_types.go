package config

import (
	"errors"
	"time"
)

var (
	// ErrStartAfterEnd occurs when the configured start is not before the end
	ErrStartAfterEnd = errors.New("start time must precede end time")
	// ErrInvalidInterval occurs when the trading interval is not positive
	ErrInvalidInterval = errors.New("trading interval must be positive")
	// ErrInvalidLookback occurs when the lookback is neither positive nor LookbackAll
	ErrInvalidLookback = errors.New("lookback bars must be positive or LookbackAll")
	// ErrNegativeLatency occurs when a delay or latency duration is negative
	ErrNegativeLatency = errors.New("delays and latencies must not be negative")
	// ErrNegativePrincipal occurs when principal is negative
	ErrNegativePrincipal = errors.New("principal must not be negative")
)

// LookbackAll retains every bar of lattice history
const LookbackAll = -1

// Default values applied by DefaultConfig
const (
	DefaultTradingInterval = 390 * time.Minute
	DefaultDataDelay       = 100 * time.Millisecond
	DefaultMessageLatency  = 100 * time.Millisecond
	DefaultFieldOpTimeout  = 100 * time.Millisecond
	DefaultPrincipal       = 100_000
	DefaultLookbackBars    = 100
)

// Columns names the OHLCV and datetime columns in the source data
type Columns struct {
	Datetime string `json:"datetime-col"`
	Open     string `json:"open-col"`
	High     string `json:"high-col"`
	Low      string `json:"low-col"`
	Close    string `json:"close-col"`
	Volume   string `json:"volume-col"`
}

// CSVData configures file-backed data readers for the CLI runner
type CSVData struct {
	// Paths maps each asset to its ordered list of delimited files
	Paths map[string][]string `json:"paths"`
	// DatetimeLayout is the Go time layout of the datetime column
	DatetimeLayout string `json:"datetime-layout"`
	// Delimiter is the field separator, "," when empty
	Delimiter string `json:"delimiter"`
}

// Config is the serialisable portion of a backtest's settings. Runtime
// pieces (readers, field operations, callbacks) attach via
// engine.Settings
type Config struct {
	Start           time.Time     `json:"start"`
	EndTime         time.Time     `json:"end-time"`
	TradingInterval time.Duration `json:"trading-interval"`
	NumLookbackBars int           `json:"num-lookback-bars"`
	Verbosity       string        `json:"verbosity"`
	DataDelay       time.Duration `json:"data-delay"`
	MessageLatency  time.Duration `json:"message-latency"`
	FieldOpTimeout  time.Duration `json:"field-op-timeout"`
	Principal       float64       `json:"principal"`
	// RandomSeed seeds intra-bar fill-time draws; zero seeds from wall
	// time, any other value makes runs replayable
	RandomSeed int64    `json:"random-seed,omitempty"`
	Columns    Columns  `json:"columns"`
	CSVData    *CSVData `json:"csv-data,omitempty"`
}
