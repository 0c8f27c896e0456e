package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/mculink/comm"
)

var _ = Describe("TraceHook", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		protocol *comm.Protocol
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)

		var err error
		protocol, err = comm.NewProtocol("Link", 1)
		Expect(err).ToNot(HaveOccurred())

		CollectTrace(protocol, tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record sends", func() {
		var recorded Transfer
		tracer.EXPECT().
			RecordSend(gomock.Any()).
			Do(func(t Transfer) { recorded = t })

		protocol.Send([]byte{0x01, 0x02})

		Expect(recorded.Kind).To(Equal(KindSend))
		Expect(recorded.MsgID).To(Equal(uint16(1)))
		Expect(recorded.PayloadLen).To(Equal(2))
		Expect(recorded.Checksum).To(Equal(byte(0x01 ^ 0x02)))
		Expect(recorded.Valid).To(BeTrue())
		Expect(recorded.Location).To(Equal("Link"))
		Expect(recorded.ID).ToNot(BeEmpty())
	})

	It("should record drops when a send evicts", func() {
		var dropped Transfer
		tracer.EXPECT().RecordSend(gomock.Any()).Times(2)
		tracer.EXPECT().
			RecordDrop(gomock.Any()).
			Do(func(t Transfer) { dropped = t })

		protocol.Send([]byte{0x01})
		protocol.Send([]byte{0x02})

		Expect(dropped.Kind).To(Equal(KindDrop))
		Expect(dropped.MsgID).To(Equal(uint16(1)))
	})

	It("should record receives", func() {
		var received Transfer
		tracer.EXPECT().RecordSend(gomock.Any())
		tracer.EXPECT().
			RecordReceive(gomock.Any()).
			Do(func(t Transfer) { received = t })

		protocol.Send([]byte{0x03})
		protocol.Receive()

		Expect(received.Kind).To(Equal(KindReceive))
		Expect(received.MsgID).To(Equal(uint16(1)))
		Expect(received.Valid).To(BeTrue())
	})

	It("should record nothing on an empty receive", func() {
		_, ok := protocol.Receive()
		Expect(ok).To(BeFalse())
	})

	It("should refuse to install the same tracer twice", func() {
		Expect(func() {
			CollectTrace(protocol, tracer)
		}).To(Panic())
	})
})
