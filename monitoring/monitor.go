// Package monitoring turns a channel session into a small web server so that
// protocols and their channels can be observed while a session runs.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"
	"unsafe"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/mculink/comm"
	"github.com/sarchlab/mculink/monitoring/web"
)

// Monitor can turn a channel session into a server and allows external
// observation of the registered protocols and their channels.
type Monitor struct {
	portNumber int
	url        string

	lock       sync.Mutex
	protocols  []*comm.Protocol
	channels   []comm.Channel
	channelsOf map[string][]comm.Channel
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		channelsOf: make(map[string][]comm.Channel),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterProtocol registers a protocol to be monitored. The protocol's
// channels are discovered from its fields, so the monitor can report fill
// levels and traffic without the protocol exposing them.
func (m *Monitor) RegisterProtocol(p *comm.Protocol) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.protocols = append(m.protocols, p)
	m.registerChannels(p)
}

func (m *Monitor) registerChannels(p *comm.Protocol) {
	v := reflect.ValueOf(p).Elem()
	channelType := reflect.TypeOf((*comm.Channel)(nil)).Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)

		if field.Type() != channelType {
			continue
		}

		fieldRef := reflect.NewAt(
			field.Type(),
			unsafe.Pointer(field.UnsafeAddr()),
		).Elem().Interface().(comm.Channel)

		m.channels = append(m.channels, fieldRef)
		m.channelsOf[p.Name()] = append(m.channelsOf[p.Name()], fieldRef)
	}
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/list_protocols", m.listProtocols)
	r.HandleFunc("/api/protocol/{name}", m.listProtocolDetails)
	r.HandleFunc("/api/status/{name}", m.protocolStatus)
	r.HandleFunc("/api/traffic/{name}", m.reportTraffic)
	r.HandleFunc("/api/channels", m.channelLevels)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring channel session with %s\n", m.url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitoring page in the default browser. The server
// must have been started.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		panic("monitor server is not started")
	}

	err := browser.OpenURL(m.url)
	dieOnErr(err)
}

func (m *Monitor) listProtocols(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	defer m.lock.Unlock()

	fmt.Fprint(w, "[")
	for i, p := range m.protocols {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", p.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listProtocolDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	p := m.findProtocolOr404(w, name)
	if p == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(p)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) protocolStatus(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	p := m.findProtocolOr404(w, name)
	if p == nil {
		return
	}

	status := p.Status()
	fmt.Fprintf(w, "{\"length\":%d,\"empty\":%t,\"full\":%t}",
		status.Length, status.Empty, status.Full)
}

type trafficRsp struct {
	Channel      string `json:"channel"`
	WriteCount   uint64 `json:"write_count"`
	ReadCount    uint64 `json:"read_count"`
	DroppedCount uint64 `json:"dropped_count"`
}

func (m *Monitor) reportTraffic(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	p := m.findProtocolOr404(w, name)
	if p == nil {
		return
	}

	m.lock.Lock()
	channels := m.channelsOf[name]
	m.lock.Unlock()

	rsp := make([]trafficRsp, 0, len(channels))
	for _, c := range channels {
		rsp = append(rsp, trafficRsp{
			Channel:      c.Name(),
			WriteCount:   c.WriteCount(),
			ReadCount:    c.ReadCount(),
			DroppedCount: c.DroppedCount(),
		})
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) channelLevels(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := m.channelsParseParams(r)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	sortedChannels := m.sortAndSelectChannels(sortMethod, limit, offset)

	fmt.Fprint(w, "[")
	for i, c := range sortedChannels {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "{\"channel\":\"%s\",\"level\":%d,\"cap\":%d}",
			c.Name(), c.Length(), c.Capacity())
	}

	fmt.Fprint(w, "]")
}

func (*Monitor) channelsParseParams(
	r *http.Request,
) (sort string, limit, offset int, err error) {
	sortMethod := r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}
	if sortMethod != "level" && sortMethod != "percent" {
		errStr := fmt.Sprintf(
			"Invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
		return "", 0, 0, errors.New(errStr)
	}

	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}
	limitNumber, err := strconv.Atoi(limitStr)
	if err != nil {
		return sortMethod, 0, 0, err
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}
	offsetNumber, err := strconv.Atoi(offsetStr)
	if err != nil {
		return sortMethod, limitNumber, 0, err
	}

	return sortMethod, limitNumber, offsetNumber, nil
}

func channelPercent(c comm.Channel) float64 {
	return float64(c.Length()) / float64(c.Capacity())
}

func (m *Monitor) sortAndSelectChannels(
	sortMethod string,
	limit, offset int,
) []comm.Channel {
	m.lock.Lock()
	sortedChannels := make([]comm.Channel, len(m.channels))
	copy(sortedChannels, m.channels)
	m.lock.Unlock()

	sort.Slice(sortedChannels, func(i, j int) bool {
		sizeI := sortedChannels[i].Length()
		sizeJ := sortedChannels[j].Length()
		percentI := channelPercent(sortedChannels[i])
		percentJ := channelPercent(sortedChannels[j])

		if sortMethod == "level" {
			if sizeI != sizeJ {
				return sizeI > sizeJ
			}
			return percentI > percentJ
		}

		if percentI != percentJ {
			return percentI > percentJ
		}
		return sizeI > sizeJ
	})

	if offset > len(sortedChannels) {
		offset = len(sortedChannels)
	}
	sortedChannels = sortedChannels[offset:]

	if limit > 0 && limit < len(sortedChannels) {
		sortedChannels = sortedChannels[:limit]
	}

	return sortedChannels
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) findProtocolOr404(
	w http.ResponseWriter,
	name string,
) *comm.Protocol {
	m.lock.Lock()
	defer m.lock.Unlock()

	var protocol *comm.Protocol
	for _, p := range m.protocols {
		if p.Name() == name {
			protocol = p
		}
	}

	if protocol == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Protocol not found"))
		dieOnErr(err)
	}

	return protocol
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
