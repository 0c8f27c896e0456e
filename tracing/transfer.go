// Package tracing collects the observable movements of messages through a
// channel session: admissions, evictions, and removals by the consumer.
package tracing

import "time"

// Transfer kinds.
const (
	KindSend    = "send"
	KindReceive = "receive"
	KindDrop    = "drop"
)

// A Transfer records one observable movement of a message: its admission
// into the channel, its eviction by a later send, or its removal by the
// consumer.
type Transfer struct {
	ID         string
	Kind       string
	MsgID      uint16
	PayloadLen int
	Checksum   uint8
	Valid      bool
	Location   string
	Time       float64
}

// TimeTeller tells the current time, in seconds.
type TimeTeller interface {
	CurrentTime() float64
}

// NewWallClock returns a TimeTeller that reports seconds elapsed since its
// creation.
func NewWallClock() TimeTeller {
	return &wallClock{start: time.Now()}
}

type wallClock struct {
	start time.Time
}

func (c *wallClock) CurrentTime() float64 {
	return time.Since(c.start).Seconds()
}
