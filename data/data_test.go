package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquant/backtester/common"
)

func streamOf(t *testing.T, times ...time.Time) *Stream {
	t.Helper()
	bars := make([]Bar, len(times))
	for i := range times {
		bars[i] = Bar{
			Time: times[i],
			Values: map[common.FieldID]common.Value{
				"datetime": common.String(times[i].Format(time.RFC3339)),
				"close":    common.Float(float64(i + 1)),
			},
		}
	}
	s, err := NewStream("asset", bars)
	require.NoError(t, err)
	return s
}

func day(d int) time.Time {
	return time.Date(2020, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNewStreamEmpty(t *testing.T) {
	t.Parallel()
	_, err := NewStream("a", nil)
	assert.ErrorIs(t, err, ErrNoBars)
}

func TestPeekThenPopYieldsSameBar(t *testing.T) {
	t.Parallel()
	s := streamOf(t, day(1), day(2))
	peeked, err := s.Peek()
	require.NoError(t, err)
	popped, err := s.PopFirst()
	require.NoError(t, err)
	assert.Equal(t, peeked, popped)

	next, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, day(2), next.Time)
}

func TestExhaustion(t *testing.T) {
	t.Parallel()
	s := streamOf(t, day(1))
	_, err := s.PopFirst()
	require.NoError(t, err)
	_, err = s.Peek()
	assert.ErrorIs(t, err, ErrNoMoreData)
	_, err = s.PopFirst()
	assert.ErrorIs(t, err, ErrNoMoreData)
}

func TestFastForward(t *testing.T) {
	t.Parallel()
	s := streamOf(t, day(1), day(2), day(3), day(4))
	require.NoError(t, s.FastForward(day(3)))
	b, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, day(3), b.Time)
}

func TestFastForwardExactFirstBar(t *testing.T) {
	t.Parallel()
	s := streamOf(t, day(2), day(3))
	require.NoError(t, s.FastForward(day(2)))
	b, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, day(2), b.Time)
}

func TestFastForwardTooEarly(t *testing.T) {
	t.Parallel()
	s := streamOf(t, day(5), day(6))
	assert.ErrorIs(t, s.FastForward(day(2)), common.ErrDateTooEarly)
}

func TestFastForwardTooFarOut(t *testing.T) {
	t.Parallel()
	s := streamOf(t, day(1), day(2))
	assert.ErrorIs(t, s.FastForward(day(9)), common.ErrDateTooFarOut)
}

func TestFastForwardBetweenBars(t *testing.T) {
	t.Parallel()
	s := streamOf(t, day(1), day(4))
	require.NoError(t, s.FastForward(day(2)))
	b, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, day(4), b.Time)
}
