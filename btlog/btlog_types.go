package btlog

import (
	"io"
	"sync"
	"time"

	"github.com/openquant/backtester/common"
)

const (
	timestampFormat = "2006-01-02 15:04:05.000"
	spacer          = " ~~~~ "
)

// Clock supplies the timestamp stamped onto each line. The engine wires
// its simulated clock in here so log lines carry backtest time rather
// than wall time
type Clock func() time.Time

// Logger writes verbosity-gated lines of the form
// <yyyy-mm-dd HH:MM:SS.sss> ~~~~ <message>
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level common.Verbosity
	clock Clock
}
