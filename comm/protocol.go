package comm

import "sync"

// HookPosMsgSend marks when the producer side accepts a payload and admits
// the message into the channel.
var HookPosMsgSend = &HookPos{Name: "Msg Send"}

// HookPosMsgRecvd marks when the consumer side receives a message that
// passes its integrity check.
var HookPosMsgRecvd = &HookPos{Name: "Msg Recv"}

// HookPosMsgCorrupted marks when the consumer side receives a message whose
// checksum does not match its payload. The message is still delivered.
var HookPosMsgCorrupted = &HookPos{Name: "Msg Corrupted"}

// HookPosMsgDropped marks when a send evicted an older undelivered message.
var HookPosMsgDropped = &HookPos{Name: "Msg Dropped"}

// HookPosChannelEmpty marks when the consumer side finds the channel empty.
var HookPosChannelEmpty = &HookPos{Name: "Channel Empty"}

// ChannelStatus is a snapshot of channel occupancy.
type ChannelStatus struct {
	Length int
	Empty  bool
	Full   bool
}

// A Delivery pairs a received message with the result of its integrity
// check. An invalid message is still handed back for diagnostics, but its
// payload must not be acted on.
type Delivery struct {
	Msg   Message
	Valid bool
}

// A Protocol drives one producer/consumer session over a single owned
// channel. The producer side assigns sequential message ids and computes
// checksums; the consumer side verifies them. No other component may push or
// pop the owned channel.
type Protocol struct {
	HookableBase

	name    string
	channel Channel

	lock   sync.Mutex
	nextID uint16
}

// NewProtocol creates a protocol owning one channel of the given capacity.
// An invalid capacity is rejected here, once, so that sends can never fail.
func NewProtocol(name string, capacity int) (*Protocol, error) {
	NameMustBeValid(name)

	channel, err := NewChannel(BuildName(name, "Channel"), capacity)
	if err != nil {
		return nil, err
	}

	p := &Protocol{
		name:    name,
		channel: channel,
		nextID:  1,
	}

	channel.AcceptHook(&dropForwarder{protocol: p})

	return p, nil
}

// Name returns the name of the protocol.
func (p *Protocol) Name() string {
	return p.name
}

// Send constructs a message from the payload and admits it into the channel,
// returning the assigned id. The id confirms admission only; a later send
// may still evict the message before it is ever read. Ids are sequential and
// wrap at the 16-bit boundary.
func (p *Protocol) Send(payload []byte) uint16 {
	p.lock.Lock()
	id := p.nextID
	p.nextID++
	p.lock.Unlock()

	msg := NewMessage(id, payload)
	p.channel.Push(msg)

	if p.NumHooks() > 0 {
		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    HookPosMsgSend,
			Item:   msg,
		})
	}

	return id
}

// Receive pops the oldest message and checks its integrity. The second
// return value is false when the channel is empty. A failed integrity check
// does not prevent delivery: the message is returned with Valid set to
// false and is consumed either way, with no retry.
func (p *Protocol) Receive() (Delivery, bool) {
	msg, ok := p.channel.Pop()
	if !ok {
		if p.NumHooks() > 0 {
			p.InvokeHook(HookCtx{
				Domain: p,
				Pos:    HookPosChannelEmpty,
			})
		}

		return Delivery{}, false
	}

	valid := msg.Verify()

	if p.NumHooks() > 0 {
		pos := HookPosMsgRecvd
		if !valid {
			pos = HookPosMsgCorrupted
		}

		p.InvokeHook(HookCtx{
			Domain: p,
			Pos:    pos,
			Item:   msg,
		})
	}

	return Delivery{Msg: msg, Valid: valid}, true
}

// Status reports a snapshot of the owned channel's occupancy.
func (p *Protocol) Status() ChannelStatus {
	return ChannelStatus{
		Length: p.channel.Length(),
		Empty:  p.channel.IsEmpty(),
		Full:   p.channel.IsFull(),
	}
}

// A dropForwarder re-announces channel evictions as protocol-level events so
// that observers of the protocol see message loss without reaching into the
// channel.
type dropForwarder struct {
	protocol *Protocol
}

func (f *dropForwarder) Func(ctx HookCtx) {
	if ctx.Pos != HookPosChannelDrop {
		return
	}

	if f.protocol.NumHooks() == 0 {
		return
	}

	f.protocol.InvokeHook(HookCtx{
		Domain: f.protocol,
		Pos:    HookPosMsgDropped,
		Item:   ctx.Item,
	})
}
