package eventholder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/eventtypes/event"
	"github.com/openquant/backtester/eventtypes/order"
)

type stub struct {
	event.Base
	tag string
}

func at(sec int, tag string) *stub {
	return &stub{Base: event.Base{Time: time.Unix(int64(sec), 0)}, tag: tag}
}

func TestPushOrdering(t *testing.T) {
	t.Parallel()
	var q Queue
	require.NoError(t, q.Push(at(3, "c")))
	require.NoError(t, q.Push(at(1, "a")))
	require.NoError(t, q.Push(at(2, "b")))

	var tags []string
	for !q.Empty() {
		e := q.Pop()
		tags = append(tags, e.(*stub).tag)
	}
	assert.Equal(t, []string{"a", "b", "c"}, tags)
}

func TestStableAtEqualTimes(t *testing.T) {
	t.Parallel()
	var q Queue
	require.NoError(t, q.Push(at(5, "first")))
	require.NoError(t, q.Push(at(5, "second")))
	require.NoError(t, q.Push(at(4, "earlier")))
	require.NoError(t, q.Push(at(5, "third")))

	var tags []string
	for !q.Empty() {
		tags = append(tags, q.Pop().(*stub).tag)
	}
	assert.Equal(t, []string{"earlier", "first", "second", "third"}, tags)
}

func TestMonotonicHeadTimes(t *testing.T) {
	t.Parallel()
	var q Queue
	for _, s := range []int{9, 2, 7, 2, 5, 1, 9, 3} {
		require.NoError(t, q.Push(at(s, "")))
	}
	last := time.Time{}
	for !q.Empty() {
		head := q.Peek().GetTime()
		assert.False(t, head.Before(last))
		q.Pop()
		last = head
	}
}

func TestEmptyBehaviour(t *testing.T) {
	t.Parallel()
	var q Queue
	assert.True(t, q.Empty())
	assert.Nil(t, q.Peek())
	assert.Nil(t, q.Pop())
	assert.ErrorIs(t, q.Push(nil), common.ErrNilEvent)
}

func TestPeekDoesNotRemove(t *testing.T) {
	t.Parallel()
	var q Queue
	require.NoError(t, q.Push(order.NewAck(time.Unix(1, 0), "oid")))
	assert.Equal(t, 1, q.Len())
	assert.NotNil(t, q.Peek())
	assert.Equal(t, 1, q.Len())
	assert.NotNil(t, q.Pop())
	assert.Equal(t, 0, q.Len())
}
