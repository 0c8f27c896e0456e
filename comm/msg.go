package comm

// A Message is the fixed-format data unit exchanged between the two
// processors. A message is immutable once constructed: the checksum is
// computed over the payload at construction time and is never updated
// afterward.
type Message struct {
	ID       uint16
	Payload  []byte
	Checksum uint8
}

// NewMessage creates a message with the given id and payload. The payload is
// copied so that later changes to the caller's slice do not alias the
// message.
func NewMessage(id uint16, payload []byte) Message {
	p := make([]byte, len(payload))
	copy(p, payload)

	return Message{
		ID:       id,
		Payload:  p,
		Checksum: ChecksumOf(p),
	}
}

// ChecksumOf XOR-folds all the payload bytes. The fold of zero bytes is 0.
// XOR folding is blind to transpositions and to an even number of
// identical-value corruptions. This is a known limitation of the scheme, not
// something to compensate for here.
func ChecksumOf(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum ^= b
	}

	return sum
}

// Verify recomputes the checksum over the current payload and compares it
// with the stored one. It has no side effect.
func (m Message) Verify() bool {
	return m.Checksum == ChecksumOf(m.Payload)
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	p := make([]byte, len(m.Payload))
	copy(p, m.Payload)
	m.Payload = p

	return m
}
