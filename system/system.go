// Package system assembles a complete host-run system: a kernel built
// from a finalized object table, the host port that drives it, and the
// optional trace recorder and monitor around it.
package system

import (
	"github.com/sarchlab/keron/datarecording"
	"github.com/sarchlab/keron/hostport"
	"github.com/sarchlab/keron/kern"
	"github.com/sarchlab/keron/monitoring"
)

// A System bundles everything needed to run one configured kernel on
// the host.
type System struct {
	id string

	kernel   *kern.Kernel
	port     *hostport.Port
	recorder datarecording.Recorder
	monitor  *monitoring.Monitor
}

// ID returns the system's unique identifier.
func (s *System) ID() string {
	return s.id
}

// Kernel returns the kernel of the system.
func (s *System) Kernel() *kern.Kernel {
	return s.kernel
}

// Port returns the host port the kernel runs on.
func (s *System) Port() *hostport.Port {
	return s.port
}

// Recorder returns the trace recorder, nil when tracing is disabled.
func (s *System) Recorder() datarecording.Recorder {
	return s.recorder
}

// Run boots the kernel and drives it until quiescence, then flushes
// the trace.
func (s *System) Run() error {
	err := s.port.Run()

	if s.recorder != nil {
		s.recorder.Flush()
	}

	return err
}
