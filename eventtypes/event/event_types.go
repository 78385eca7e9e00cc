// Package event holds the base type every queued backtest event embeds.
package event

import "time"

// Base carries the scheduled time shared by all event variants. The
// queue orders events by this time, stable across equal times in
// insertion order
type Base struct {
	Time time.Time
}

// GetTime returns the scheduled time of the event
func (b Base) GetTime() time.Time {
	return b.Time
}
