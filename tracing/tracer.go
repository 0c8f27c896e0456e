package tracing

// A Tracer can collect transfers observed on a protocol. Tracers may connect
// with different backends so that the transfers can be stored in different
// places (e.g., loggers, SQL databases).
type Tracer interface {
	// RecordSend is called when the producer side admits a message.
	RecordSend(t Transfer)

	// RecordDrop is called when a send evicts an older unread message.
	RecordDrop(t Transfer)

	// RecordReceive is called when the consumer side removes a message,
	// whether or not it passed its integrity check.
	RecordReceive(t Transfer)
}
