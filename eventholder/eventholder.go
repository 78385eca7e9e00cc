// Package eventholder contains the time-ordered event queue the backtest
// drains each bar.
package eventholder

import (
	"github.com/openquant/backtester/common"
)

// Queue is a time-ordered sequence of events. Ordering is by scheduled
// time, stable across equal times in insertion order. Per-bar event
// counts are bounded, so an insertion-sorted slice is sufficient
type Queue struct {
	events []common.Event
}

// Push inserts an event at the position implied by its scheduled time,
// after any already-queued event with the same time
func (q *Queue) Push(e common.Event) error {
	if e == nil {
		return common.ErrNilEvent
	}
	i := len(q.events)
	for i > 0 && q.events[i-1].GetTime().After(e.GetTime()) {
		i--
	}
	q.events = append(q.events, nil)
	copy(q.events[i+1:], q.events[i:])
	q.events[i] = e
	return nil
}

// Peek returns the earliest event without removing it, nil when empty
func (q *Queue) Peek() common.Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

// Pop removes and returns the earliest event, nil when empty
func (q *Queue) Pop() common.Event {
	if len(q.events) == 0 {
		return nil
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e
}

// Empty reports whether the queue holds no events
func (q *Queue) Empty() bool {
	return len(q.events) == 0
}

// Len returns the number of queued events
func (q *Queue) Len() int {
	return len(q.events)
}
