// Package monitoring turns a running kernel into a small web server so
// the task table, object table, and kernel time can be inspected from
// outside while a system runs on the host port.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/keron/kern"
)

// A Monitor serves the state of one kernel over HTTP.
type Monitor struct {
	kernel      *kern.Kernel
	portNumber  int
	openBrowser bool
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitoring server.
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

// WithBrowser makes StartServer open the dashboard in a browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterKernel registers the kernel to be monitored.
func (m *Monitor) RegisterKernel(k *kern.Kernel) {
	m.kernel = k
}

// StartServer starts serving monitoring requests in the background.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/tasks", m.listTasks)
	r.HandleFunc("/api/task/{id}", m.taskDetails)
	r.HandleFunc("/api/objects", m.listObjects)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/", m.dashboard)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring kernel with %s\n", url)

	if m.openBrowser {
		_ = browser.OpenURL(url)
	}

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) dashboard(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, `<html><body><h1>keron</h1>
<p>Endpoints: /api/now, /api/tasks, /api/task/{id}, /api/objects,
/api/resource, /api/profile</p></body></html>`)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"now\":%d}", m.kernel.Now())
}

type taskRsp struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	State    string `json:"state"`
}

func (m *Monitor) listTasks(w http.ResponseWriter, _ *http.Request) {
	table := m.kernel.Table()

	tasks := make([]taskRsp, 0, table.NumTasks())
	for i := 0; i < table.NumTasks(); i++ {
		id := kern.TaskID(i)
		attr := table.Task(id)
		tasks = append(tasks, taskRsp{
			ID:       i,
			Name:     attr.Name,
			Priority: int(attr.Priority),
			State:    m.kernel.TaskState(id).String(),
		})
	}

	bytes, err := json.Marshal(tasks)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) taskDetails(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]

	id, err := strconv.Atoi(idStr)
	if err != nil || id < 0 || id >= m.kernel.Table().NumTasks() {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Task not found"))
		return
	}

	attr := m.kernel.Table().Task(kern.TaskID(id))

	serializer := goseth.NewSerializer()
	serializer.SetRoot(attr)
	serializer.SetMaxDepth(1)
	err = serializer.Serialize(w)
	dieOnErr(err)
}

type objectsRsp struct {
	PriorityLevels int `json:"priority_levels"`
	Tasks          int `json:"tasks"`
	EventGroups    int `json:"event_groups"`
	Hunks          int `json:"hunks"`
	HunkPoolSize   int `json:"hunk_pool_size"`
	InterruptLines int `json:"interrupt_lines"`
	StartupHooks   int `json:"startup_hooks"`
}

func (m *Monitor) listObjects(w http.ResponseWriter, _ *http.Request) {
	table := m.kernel.Table()

	rsp := objectsRsp{
		PriorityLevels: table.PriorityLevels(),
		Tasks:          table.NumTasks(),
		EventGroups:    table.NumEventGroups(),
		Hunks:          table.NumHunks(),
		HunkPoolSize:   table.HunkPoolSize(),
		InterruptLines: len(table.Interrupts()),
		StartupHooks:   table.NumStartupHooks(),
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
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

	rsp, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
