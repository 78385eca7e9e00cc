// Package btlog provides the backtester's leveled logger. Lines are
// stamped with the simulated clock, not wall time, so output reads as a
// chronology of the backtest itself.
package btlog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/openquant/backtester/common"
)

// New returns a logger writing to out at the supplied verbosity. A nil
// out defaults to stdout. Until a clock is set, lines carry wall time
func New(out io.Writer, level common.Verbosity) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		out:   out,
		level: level,
		clock: time.Now,
	}
}

// SetClock replaces the timestamp source
func (l *Logger) SetClock(c Clock) {
	if c == nil {
		return
	}
	l.mu.Lock()
	l.clock = c
	l.mu.Unlock()
}

// Level returns the configured verbosity
func (l *Logger) Level() common.Verbosity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Warnf logs at warning level
func (l *Logger) Warnf(format string, a ...interface{}) {
	l.logf(common.VerbosityWarning, format, a...)
}

// Debugf logs at debug level
func (l *Logger) Debugf(format string, a ...interface{}) {
	l.logf(common.VerbosityDebug, format, a...)
}

// Transactionf logs order and fill activity
func (l *Logger) Transactionf(format string, a ...interface{}) {
	l.logf(common.VerbosityTransactions, format, a...)
}

// Infof logs at the loudest level
func (l *Logger) Infof(format string, a ...interface{}) {
	l.logf(common.VerbosityInfo, format, a...)
}

func (l *Logger) logf(level common.Verbosity, format string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level > l.level || l.level == common.VerbosityNone {
		return
	}
	ts := l.clock().Format(timestampFormat)
	fmt.Fprintf(l.out, "%s%s%s\n", ts, spacer, fmt.Sprintf(format, a...))
}
