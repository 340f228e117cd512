// Package tracing turns kernel hook invocations into durable traces of
// scheduling behavior: task state transitions, dispatches, timeout
// expirations, and interrupt activity.
package tracing

import (
	"github.com/sarchlab/keron/datarecording"
	"github.com/sarchlab/keron/kern"
)

// TaskStateEntry is one recorded task state transition.
type TaskStateEntry struct {
	Kernel string
	Task   int
	Name   string
	From   string
	To     string
	At     uint64
}

// DispatchEntry is one recorded processor handover. A task value of -1
// stands for the idle context.
type DispatchEntry struct {
	Kernel string
	From   int
	To     int
	At     uint64
}

// InterruptEntry is one recorded interrupt handler invocation.
type InterruptEntry struct {
	Kernel string
	Line   int
	Enter  bool
	At     uint64
}

// A DBTracer records kernel activity into a trace recorder. Register it
// with Kernel.AcceptHook. Hooks run inside the kernel's critical
// section, so the tracer only buffers; the recorder flushes in batches
// and at exit.
type DBTracer struct {
	recorder datarecording.Recorder
}

// NewDBTracer creates a DBTracer writing to the given recorder.
func NewDBTracer(recorder datarecording.Recorder) *DBTracer {
	recorder.CreateTable("task_state_trace", TaskStateEntry{})
	recorder.CreateTable("dispatch_trace", DispatchEntry{})
	recorder.CreateTable("interrupt_trace", InterruptEntry{})

	return &DBTracer{recorder: recorder}
}

// Func records the hook site into the matching trace table.
func (t *DBTracer) Func(ctx kern.HookCtx) {
	switch ctx.Pos {
	case kern.HookPosStateChange:
		tr := ctx.Detail.(kern.StateTransition)
		t.recorder.InsertData("task_state_trace", TaskStateEntry{
			Kernel: ctx.Kernel.ID(),
			Task:   int(ctx.Task.ID()),
			Name:   ctx.Task.Name(),
			From:   tr.From.String(),
			To:     tr.To.String(),
			At:     uint64(ctx.Now),
		})

	case kern.HookPosDispatch:
		d := ctx.Detail.(kern.DispatchDetail)
		t.recorder.InsertData("dispatch_trace", DispatchEntry{
			Kernel: ctx.Kernel.ID(),
			From:   taskOrIdle(d.From),
			To:     taskOrIdle(d.To),
			At:     uint64(ctx.Now),
		})

	case kern.HookPosInterruptEnter, kern.HookPosInterruptExit:
		t.recorder.InsertData("interrupt_trace", InterruptEntry{
			Kernel: ctx.Kernel.ID(),
			Line:   int(ctx.Detail.(kern.InterruptNum)),
			Enter:  ctx.Pos == kern.HookPosInterruptEnter,
			At:     uint64(ctx.Now),
		})
	}
}

func taskOrIdle(t *kern.TCB) int {
	if t == nil {
		return -1
	}
	return int(t.ID())
}
