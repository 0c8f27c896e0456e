package comm

import (
	"fmt"
	"sync"
)

// HookPosChannelPush marks when a message is admitted into the channel.
var HookPosChannelPush = &HookPos{Name: "Channel Push"}

// HookPosChannelPop marks when a message is removed from the channel by the
// consumer side.
var HookPosChannelPop = &HookPos{Name: "Channel Pop"}

// HookPosChannelDrop marks when a full channel evicts its oldest message to
// make room for a new one. The evicted message is the hook item.
var HookPosChannelDrop = &HookPos{Name: "Channel Drop"}

// A ConstructionError reports an invalid channel configuration. It is the
// only error the package returns; every other condition is represented as a
// value.
type ConstructionError struct {
	Reason string
}

func (e *ConstructionError) Error() string {
	return "channel construction: " + e.Reason
}

// A Channel is a bounded FIFO queue of messages shared between the producer
// and the consumer. A full channel never rejects a push; it silently evicts
// the oldest message to make room. Write, read, and dropped counts track
// lifetime totals, not current occupancy.
type Channel interface {
	Named
	Hookable

	Push(msg Message)
	Pop() (Message, bool)
	Peek() (Message, bool)
	Capacity() int
	Length() int
	IsEmpty() bool
	IsFull() bool
	WriteCount() uint64
	ReadCount() uint64
	DroppedCount() uint64

	// Remove all messages in the channel.
	Clear()
}

// NewChannel creates an empty channel with the given capacity. The capacity
// must be positive.
func NewChannel(name string, capacity int) (Channel, error) {
	NameMustBeValid(name)

	if capacity < 1 {
		return nil, &ConstructionError{
			Reason: fmt.Sprintf("capacity must be positive, got %d", capacity),
		}
	}

	return &channelImpl{
		name:     name,
		capacity: capacity,
	}, nil
}

type channelImpl struct {
	HookableBase

	lock       sync.Mutex
	name       string
	capacity   int
	messages   []Message
	writeCount uint64
	readCount  uint64
	dropCount  uint64
}

// Name returns the name of the channel.
func (c *channelImpl) Name() string {
	return c.name
}

// Push admits a message into the channel. When the channel is full, the
// oldest message is evicted first, so a push never fails and never blocks.
// The eviction and the admission happen as one indivisible step.
func (c *channelImpl) Push(msg Message) {
	c.lock.Lock()

	var evicted Message
	hasEvicted := false
	if len(c.messages) >= c.capacity {
		evicted = c.messages[0]
		c.messages = c.messages[1:]
		c.dropCount++
		hasEvicted = true
	}

	c.messages = append(c.messages, msg)
	c.writeCount++

	c.lock.Unlock()

	if c.NumHooks() == 0 {
		return
	}

	if hasEvicted {
		c.InvokeHook(HookCtx{
			Domain: c,
			Pos:    HookPosChannelDrop,
			Item:   evicted,
		})
	}

	c.InvokeHook(HookCtx{
		Domain: c,
		Pos:    HookPosChannelPush,
		Item:   msg,
	})
}

// Pop removes and returns the oldest message. The second return value is
// false when the channel is empty, which is an expected state rather than an
// error.
func (c *channelImpl) Pop() (Message, bool) {
	c.lock.Lock()

	if len(c.messages) == 0 {
		c.lock.Unlock()
		return Message{}, false
	}

	msg := c.messages[0]
	c.messages = c.messages[1:]
	c.readCount++

	c.lock.Unlock()

	if c.NumHooks() > 0 {
		c.InvokeHook(HookCtx{
			Domain: c,
			Pos:    HookPosChannelPop,
			Item:   msg,
		})
	}

	return msg, true
}

// Peek returns the oldest message without removing it.
func (c *channelImpl) Peek() (Message, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if len(c.messages) == 0 {
		return Message{}, false
	}

	return c.messages[0], true
}

// Capacity returns the maximum number of messages the channel can hold.
func (c *channelImpl) Capacity() int {
	return c.capacity
}

// Length returns the number of messages currently in the channel.
func (c *channelImpl) Length() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.messages)
}

// IsEmpty returns true if the channel holds no message.
func (c *channelImpl) IsEmpty() bool {
	return c.Length() == 0
}

// IsFull returns true if the channel is at capacity.
func (c *channelImpl) IsFull() bool {
	return c.Length() >= c.capacity
}

// WriteCount returns the total number of pushes ever issued, including
// pushes whose message was later evicted. It never decreases.
func (c *channelImpl) WriteCount() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.writeCount
}

// ReadCount returns the total number of successful pops. It never decreases.
func (c *channelImpl) ReadCount() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.readCount
}

// DroppedCount returns the total number of messages evicted by pushes on a
// full channel.
func (c *channelImpl) DroppedCount() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.dropCount
}

// Clear removes all messages. The lifetime counters are untouched.
func (c *channelImpl) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.messages = nil
}
