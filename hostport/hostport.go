// Package hostport provides a Port that runs a keron kernel on the
// host. Each task activation runs on its own goroutine, parked on a
// channel between dispatches; the CPU lock is a mutex handed across
// context switches; and the tick source is a virtual clock that jumps to
// the next pending deadline whenever the system is otherwise idle, which
// makes host runs deterministic without real sleeping.
package hostport

import (
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/keron/kern"
)

type taskThread struct {
	resume chan struct{}
}

// A Port is the host implementation of kern.Port. Build the kernel on
// it, register the kernel back, then call Run.
type Port struct {
	mu     sync.Mutex
	kernel *kern.Kernel

	idleResume chan struct{}

	timeLock sync.RWMutex
	now      kern.Ticks

	pending []kern.InterruptNum
	stopped bool
}

// New creates a host port.
func New() *Port {
	return &Port{
		idleResume: make(chan struct{}),
	}
}

// RegisterKernel attaches the kernel this port drives.
func (p *Port) RegisterKernel(k *kern.Kernel) {
	p.kernel = k
}

// EnterCPULock begins a critical section.
func (p *Port) EnterCPULock() {
	p.mu.Lock()
}

// LeaveCPULock ends a critical section, possibly one inherited from the
// context that switched to the caller.
func (p *Port) LeaveCPULock() {
	p.mu.Unlock()
}

// TickCount returns the virtual clock. The clock only moves while the
// idle context runs, so readers inside critical sections see a stable
// value.
func (p *Port) TickCount() kern.Ticks {
	p.timeLock.RLock()
	now := p.now
	p.timeLock.RUnlock()
	return now
}

// PendTickAfter is a no-op on the host: the idle loop reads the
// kernel's next deadline directly instead of programming tick hardware.
func (p *Port) PendTickAfter(delta kern.Ticks) {
}

// InitializeTaskState gives a task a fresh goroutine, parked until the
// first dispatch.
func (p *Port) InitializeTaskState(t *kern.TCB) {
	attr := p.kernel.Table().Task(t.ID())

	th := &taskThread{resume: make(chan struct{})}
	t.SetPortContext(th)

	go func() {
		<-th.resume

		// A fresh context is resumed inside someone else's critical
		// section and has no service frame of its own to release it.
		p.mu.Unlock()

		attr.Start(p.kernel, attr.Param)
		p.kernel.ExitTask()
	}()
}

// ContextSwitch resumes in and parks out. A nil TCB is the idle context.
// An exiting (Dormant) context is not parked; its goroutine unwinds.
// The CPU lock stays held across the switch and is released by whichever
// context next leaves its critical section.
func (p *Port) ContextSwitch(out, in *kern.TCB) {
	if in == nil {
		p.idleResume <- struct{}{}
	} else {
		in.PortContext().(*taskThread).resume <- struct{}{}
	}

	if out == nil {
		<-p.idleResume
	} else if out.State() != kern.Dormant {
		<-out.PortContext().(*taskThread).resume
	}
}

// TriggerInterrupt takes an interrupt line on the calling task
// immediately, like a software interrupt instruction: the bound handler
// runs in interrupt context, and any reschedule it requests happens on
// interrupt exit, possibly switching the caller out. Call it from task
// code only, never from inside a handler.
func (p *Port) TriggerInterrupt(line kern.InterruptNum) {
	p.mu.Lock()
	p.kernel.InterruptEntry(line)
	p.kernel.InterruptExit()
	p.mu.Unlock()
}

// InjectInterrupt queues an interrupt from outside task context, such as
// a device emulation goroutine or a test. The line is taken the next
// time the system is idle; it cannot preempt a task that never enters
// the kernel.
func (p *Port) InjectInterrupt(line kern.InterruptNum) {
	p.mu.Lock()
	if !p.stopped {
		p.pending = append(p.pending, line)
	}
	p.mu.Unlock()
}

// Now returns the virtual clock.
func (p *Port) Now() kern.Ticks {
	return p.TickCount()
}

// Run boots the kernel and drives it until the system quiesces: no task
// ready or running, no interrupt pending, and no timeout armed. It
// returns nil when every task ended Dormant and ErrDeadlock when tasks
// are still blocked with nothing left that could wake them.
func (p *Port) Run() error {
	if p.kernel == nil {
		log.Panic("no kernel registered on the host port")
	}

	p.kernel.Boot()

	p.mu.Lock()
	p.idleLoop()
	p.stopped = true
	p.mu.Unlock()

	stuck := 0
	for i := 0; i < p.kernel.Table().NumTasks(); i++ {
		switch p.kernel.TaskState(kern.TaskID(i)) {
		case kern.Waiting, kern.WaitingTimeout, kern.Suspended:
			stuck++
		}
	}
	if stuck > 0 {
		return fmt.Errorf("%w: %d task(s)", kern.ErrDeadlock, stuck)
	}

	return nil
}

// idleLoop is the idle context, running on the Run goroutine with the
// CPU lock held except while a task has the processor.
func (p *Port) idleLoop() {
	k := p.kernel

	for {
		if len(p.pending) > 0 {
			line := p.pending[0]
			p.pending = p.pending[1:]
			k.InterruptEntry(line)
			continue
		}

		if k.DispatchFromIdle() {
			continue
		}

		if deadline, ok := k.NextTimeout(); ok {
			if deadline > p.now {
				p.timeLock.Lock()
				p.now = deadline
				p.timeLock.Unlock()
			}
			k.TickEntry()
			continue
		}

		return
	}
}
