package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type capturingRecorder struct {
	tables  map[string]any
	entries map[string][]any
}

func newCapturingRecorder() *capturingRecorder {
	return &capturingRecorder{
		tables:  make(map[string]any),
		entries: make(map[string][]any),
	}
}

func (r *capturingRecorder) CreateTable(tableName string, sampleEntry any) {
	r.tables[tableName] = sampleEntry
}

func (r *capturingRecorder) InsertData(tableName string, entry any) {
	r.entries[tableName] = append(r.entries[tableName], entry)
}

func (r *capturingRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for n := range r.tables {
		names = append(names, n)
	}
	return names
}

func (r *capturingRecorder) Flush() {}

type fixedTimeTeller struct {
	now float64
}

func (t *fixedTimeTeller) CurrentTime() float64 {
	return t.now
}

var _ = Describe("DBTracer", func() {
	var (
		backend    *capturingRecorder
		timeTeller *fixedTimeTeller
		tracer     *DBTracer
	)

	BeforeEach(func() {
		backend = newCapturingRecorder()
		timeTeller = &fixedTimeTeller{now: 1.25}
		tracer = NewDBTracer(timeTeller, backend)
	})

	It("should create the transfer table on construction", func() {
		Expect(backend.tables).To(HaveKey(TransferTableName))
	})

	It("should stamp and store transfers", func() {
		tracer.RecordSend(Transfer{
			ID:         "1",
			Kind:       KindSend,
			MsgID:      3,
			PayloadLen: 2,
			Checksum:   0x05,
			Valid:      true,
			Location:   "Link",
		})

		timeTeller.now = 2.5
		tracer.RecordReceive(Transfer{
			ID:    "2",
			Kind:  KindReceive,
			MsgID: 3,
			Valid: false,
		})

		entries := backend.entries[TransferTableName]
		Expect(entries).To(HaveLen(2))

		first := entries[0].(transferTableEntry)
		Expect(first.Kind).To(Equal(KindSend))
		Expect(first.MsgID).To(Equal(uint16(3)))
		Expect(first.Time).To(Equal(1.25))

		second := entries[1].(transferTableEntry)
		Expect(second.Kind).To(Equal(KindReceive))
		Expect(second.Valid).To(BeFalse())
		Expect(second.Time).To(Equal(2.5))
	})

	It("should store drops", func() {
		tracer.RecordDrop(Transfer{ID: "3", Kind: KindDrop, MsgID: 9})

		entries := backend.entries[TransferTableName]
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].(transferTableEntry).Kind).To(Equal(KindDrop))
	})
})
