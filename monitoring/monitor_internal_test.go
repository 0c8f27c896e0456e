package monitoring

import (
	"net/http/httptest"

	"github.com/gorilla/mux"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mculink/comm"
)

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
		p *comm.Protocol
	)

	BeforeEach(func() {
		m = NewMonitor()

		var err error
		p, err = comm.NewProtocol("Link", 3)
		Expect(err).ToNot(HaveOccurred())

		m.RegisterProtocol(p)
	})

	It("should discover the protocol's channel", func() {
		Expect(m.channels).To(HaveLen(1))
		Expect(m.channels[0].Name()).To(Equal("Link.Channel"))
		Expect(m.channelsOf["Link"]).To(HaveLen(1))
	})

	It("should list protocols", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/list_protocols", nil)

		m.listProtocols(w, r)

		Expect(w.Body.String()).To(Equal(`["Link"]`))
	})

	It("should report status", func() {
		p.Send([]byte{0x01})
		p.Send([]byte{0x02})

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/status/Link", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Link"})

		m.protocolStatus(w, r)

		Expect(w.Body.String()).To(
			Equal(`{"length":2,"empty":false,"full":false}`))
	})

	It("should 404 on unknown protocols", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/status/Nope", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Nope"})

		m.protocolStatus(w, r)

		Expect(w.Code).To(Equal(404))
	})

	It("should report traffic counters", func() {
		p.Send([]byte{0x01})
		p.Send([]byte{0x02})
		p.Receive()

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/traffic/Link", nil)
		r = mux.SetURLVars(r, map[string]string{"name": "Link"})

		m.reportTraffic(w, r)

		Expect(w.Body.String()).To(Equal(
			`[{"channel":"Link.Channel",` +
				`"write_count":2,"read_count":1,"dropped_count":0}]`))
	})

	It("should report channel levels", func() {
		p.Send([]byte{0x01})

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/channels", nil)

		m.channelLevels(w, r)

		Expect(w.Body.String()).To(
			Equal(`[{"channel":"Link.Channel","level":1,"cap":3}]`))
	})

	It("should reject invalid sort methods", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/channels?sort=bogus", nil)

		m.channelLevels(w, r)

		Expect(w.Code).To(Equal(400))
	})
})
