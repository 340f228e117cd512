package system

import (
	"github.com/rs/xid"

	"github.com/sarchlab/keron/datarecording"
	"github.com/sarchlab/keron/hostport"
	"github.com/sarchlab/keron/kern"
	"github.com/sarchlab/keron/monitoring"
	"github.com/sarchlab/keron/tracing"
)

// Builder can be used to build a system.
type Builder struct {
	monitorOn     bool
	monitorPort   int
	tracingOn     bool
	traceFileName string
}

// MakeBuilder creates a new builder with tracing on and monitoring off.
func MakeBuilder() Builder {
	return Builder{
		tracingOn: true,
	}
}

// WithMonitoring serves the kernel's state over HTTP while it runs.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithoutTracing disables the trace recorder.
func (b Builder) WithoutTracing() Builder {
	b.tracingOn = false
	return b
}

// WithTraceFileName sets a custom file name for the trace database.
func (b Builder) WithTraceFileName(filename string) Builder {
	b.traceFileName = filename
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
	if !b.tracingOn && b.traceFileName != "" {
		panic("trace file name cannot be set when tracing is disabled")
	}
}

// Build assembles a runnable system from a finalized object table.
func (b Builder) Build(table *kern.ObjectTable) *System {
	b.parametersMustBeValid()

	s := &System{
		id: xid.New().String(),
	}

	s.port = hostport.New()
	s.kernel = kern.New(table, s.port)
	s.port.RegisterKernel(s.kernel)

	if b.tracingOn {
		path := b.traceFileName
		if path == "" {
			path = "keron_trace_" + s.id
		}
		s.recorder = datarecording.New(path)
		s.kernel.AcceptHook(tracing.NewDBTracer(s.recorder))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterKernel(s.kernel)
		s.monitor.StartServer()
	}

	return s
}
