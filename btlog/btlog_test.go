package btlog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openquant/backtester/common"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestLineFormat(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	l := New(&b, common.VerbosityInfo)
	l.SetClock(fixedClock(time.Date(2020, 3, 9, 9, 30, 0, 250e6, time.UTC)))
	l.Infof("new bar %d", 7)
	assert.Equal(t, "2020-03-09 09:30:00.250 ~~~~ new bar 7\n", b.String())
}

func TestLevelGating(t *testing.T) {
	t.Parallel()
	for _, ti := range []struct {
		level common.Verbosity
		want  int
	}{
		{level: common.VerbosityNone, want: 0},
		{level: common.VerbosityWarning, want: 1},
		{level: common.VerbosityDebug, want: 2},
		{level: common.VerbosityTransactions, want: 3},
		{level: common.VerbosityInfo, want: 4},
	} {
		ti := ti
		t.Run(ti.level.String(), func(t *testing.T) {
			t.Parallel()
			var b strings.Builder
			l := New(&b, ti.level)
			l.SetClock(fixedClock(time.Unix(0, 0).UTC()))
			l.Warnf("w")
			l.Debugf("d")
			l.Transactionf("t")
			l.Infof("i")
			got := strings.Count(b.String(), "\n")
			assert.Equal(t, ti.want, got)
		})
	}
}

func TestNilClockIgnored(t *testing.T) {
	t.Parallel()
	var b strings.Builder
	l := New(&b, common.VerbosityWarning)
	l.SetClock(nil)
	l.Warnf("still works")
	assert.Contains(t, b.String(), "still works")
}
