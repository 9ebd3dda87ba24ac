// Package monitoring turns a running controller into a small web server that
// reports its state and accepts sonar readings over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/keithnet/comm"
	"github.com/sarchlab/keithnet/control"
	"github.com/sarchlab/keithnet/logging"
	"github.com/sarchlab/keithnet/monitoring/web"
	"github.com/sarchlab/keithnet/sonar"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Loop is the part of the control loop the monitor reports on.
type Loop interface {
	Name() string
	State() control.State
	TickCount() uint64
	Freq() control.Freq
	Hormone() float64
	Topics() control.Topics
	SensorReading() sonar.Reading
	SensorUpdates() uint64
	LastTick() control.TickRecord
	Tick() control.TickRecord
}

// Bus is the part of the message bus the monitor needs.
type Bus interface {
	comm.Connection
	Stats(topic string) comm.TopicStats
	Topics() []string
}

// Monitor serves the state of a loop over HTTP and bridges sonar readings
// posted to it onto the bus.
type Monitor struct {
	name            string
	loop            Loop
	bus             Bus
	port            comm.Port
	portNumber      int
	openBrowser     bool
	profileDuration time.Duration
	timing          *control.WorkTimeTracer

	router *mux.Router

	serverLock sync.Mutex
	server     *http.Server
	listener   net.Listener
}

// Name returns the name of the monitor.
func (m *Monitor) Name() string {
	return m.name
}

// Port returns the port the monitor publishes sonar readings from.
func (m *Monitor) Port() comm.Port {
	return m.port
}

// Handler returns the router serving the monitor API.
func (m *Monitor) Handler() http.Handler {
	return m.router
}

func (m *Monitor) routes() {
	r := mux.NewRouter()

	r.HandleFunc("/api/state", m.state).Methods(http.MethodGet)
	r.HandleFunc("/api/sensors", m.sensors).Methods(http.MethodGet)
	r.HandleFunc("/api/motors", m.motors).Methods(http.MethodGet)
	r.HandleFunc("/api/topics", m.topics).Methods(http.MethodGet)
	if m.timing != nil {
		r.HandleFunc("/api/timing", m.reportTiming).Methods(http.MethodGet)
	}

	r.HandleFunc("/api/sonar", m.injectSonar).Methods(http.MethodPost)
	r.HandleFunc("/api/tick", m.tick).Methods(http.MethodPost)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.HandleFunc("/api/component", m.componentDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/field/{path}", m.fieldValue).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	m.router = r
}

// StartServer listens on the configured port and serves the monitor in the
// background. It returns the URL of the dashboard.
func (m *Monitor) StartServer() (string, error) {
	m.serverLock.Lock()
	defer m.serverLock.Unlock()

	if m.server != nil {
		return "", errors.New("monitor already started")
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.portNumber))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	logging.Infof("monitoring %s with %s", m.loop.Name(), url)

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		err := srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("monitor stopped serving: %v", err)
		}
	}(m.server)

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			logging.Warningf("cannot open browser: %v", err)
		}
	}

	return url, nil
}

// Close stops the server, if it was started.
func (m *Monitor) Close() error {
	m.serverLock.Lock()
	defer m.serverLock.Unlock()

	if m.server == nil {
		return nil
	}

	err := m.server.Close()
	m.server = nil
	m.listener = nil

	return err
}

type stateRsp struct {
	Name    string         `json:"name"`
	State   control.State  `json:"state"`
	Ticks   uint64         `json:"ticks"`
	FreqHz  float64        `json:"freq_hz"`
	Hormone float64        `json:"hormone"`
	Topics  control.Topics `json:"topics"`
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stateRsp{
		Name:    m.loop.Name(),
		State:   m.loop.State(),
		Ticks:   m.loop.TickCount(),
		FreqHz:  float64(m.loop.Freq()),
		Hormone: m.loop.Hormone(),
		Topics:  m.loop.Topics(),
	})
}

type sensorsRsp struct {
	Ranges  sonar.Reading `json:"ranges"`
	Updates uint64        `json:"updates"`
}

func (m *Monitor) sensors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sensorsRsp{
		Ranges:  m.loop.SensorReading(),
		Updates: m.loop.SensorUpdates(),
	})
}

func (m *Monitor) motors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.loop.LastTick())
}

func (m *Monitor) topics(w http.ResponseWriter, _ *http.Request) {
	stats := make(map[string]comm.TopicStats)
	for _, t := range m.bus.Topics() {
		stats[t] = m.bus.Stats(t)
	}

	writeJSON(w, http.StatusOK, stats)
}

func (m *Monitor) reportTiming(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.timing.Stats())
}

type sonarReq struct {
	Ranges []float32 `json:"ranges"`
}

type sonarRsp struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Delivered bool   `json:"delivered"`
}

func (m *Monitor) injectSonar(w http.ResponseWriter, r *http.Request) {
	req := sonarReq{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: %v", err)
		return
	}

	if len(req.Ranges) < sonar.NumChannels {
		writeError(w, http.StatusBadRequest,
			"%d ranges given, at least %d required",
			len(req.Ranges), sonar.NumChannels)
		return
	}

	msg := comm.SonarMsgBuilder{}.
		WithSrc(m.port.AsRemote()).
		WithTopic(m.loop.Topics().Sonar).
		WithRanges(req.Ranges...).
		Build()

	delivered := true
	if err := m.port.Send(msg); err != nil {
		delivered = false
		logging.Warningf("%s: sonar message %s dropped", m.name, msg.ID)
	}

	writeJSON(w, http.StatusAccepted, sonarRsp{
		ID:        msg.ID,
		Topic:     msg.Topic,
		Delivered: delivered,
	})
}

func (m *Monitor) tick(w http.ResponseWriter, _ *http.Request) {
	if s := m.loop.State(); s != control.Ready {
		writeError(w, http.StatusConflict,
			"loop %s is %s, manual ticks need %s",
			m.loop.Name(), s, control.Ready)
		return
	}

	writeJSON(w, http.StatusOK, m.loop.Tick())
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		writeError(w, http.StatusConflict, "%v", err)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

func (m *Monitor) componentDetails(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.loop)
	serializer.SetMaxDepth(1)

	w.Header().Set("Content-Type", "application/json")

	if err := serializer.Serialize(w); err != nil {
		logging.Errorf("%s: cannot serialize %s: %v", m.name, m.loop.Name(), err)
	}
}

func (m *Monitor) fieldValue(w http.ResponseWriter, r *http.Request) {
	fields := strings.Split(mux.Vars(r)["path"], ".")

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.loop)
	serializer.SetMaxDepth(1)

	if err := serializer.SetEntryPoint(fields); err != nil {
		writeError(w, http.StatusNotFound, "%v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := serializer.Serialize(w); err != nil {
		logging.Errorf("%s: cannot serialize %v: %v", m.name, fields, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "%v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		logging.Debugf("monitor response not written: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, format, args...)
}
