package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/mculink/datarecording"
)

type transferTableEntry struct {
	ID         string
	Kind       string
	MsgID      uint16
	PayloadLen int
	Checksum   uint8
	Valid      bool
	Location   string
	Time       float64
}

// DBTracer is a tracer that stores transfers into a database through a
// datarecording backend. All three transfer kinds go into one table; the
// Kind column tells them apart.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller TimeTeller
	backend    datarecording.DataRecorder
}

// TransferTableName is the table DBTracer writes into.
const TransferTableName = "mculink_transfers"

// NewDBTracer creates a new DBTracer. The backend is flushed when the
// process exits.
func NewDBTracer(
	timeTeller TimeTeller,
	backend datarecording.DataRecorder,
) *DBTracer {
	t := &DBTracer{
		timeTeller: timeTeller,
		backend:    backend,
	}

	backend.CreateTable(TransferTableName, transferTableEntry{})

	atexit.Register(func() { t.backend.Flush() })

	return t
}

// RecordSend stores an admission.
func (t *DBTracer) RecordSend(tr Transfer) {
	t.record(tr)
}

// RecordDrop stores an eviction.
func (t *DBTracer) RecordDrop(tr Transfer) {
	t.record(tr)
}

// RecordReceive stores a removal by the consumer.
func (t *DBTracer) RecordReceive(tr Transfer) {
	t.record(tr)
}

func (t *DBTracer) record(tr Transfer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr.Time = t.timeTeller.CurrentTime()

	t.backend.InsertData(TransferTableName, transferTableEntry{
		ID:         tr.ID,
		Kind:       tr.Kind,
		MsgID:      tr.MsgID,
		PayloadLen: tr.PayloadLen,
		Checksum:   tr.Checksum,
		Valid:      tr.Valid,
		Location:   tr.Location,
		Time:       tr.Time,
	})
}
