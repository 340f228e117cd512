package tracing

import (
	"log"

	"github.com/sarchlab/keron/kern"
)

// A StateLogger is a hook that prints task state transitions and
// dispatches, mostly useful while debugging a system configuration.
type StateLogger struct {
	*log.Logger
}

// NewStateLogger returns a StateLogger which will write into the logger.
func NewStateLogger(logger *log.Logger) *StateLogger {
	h := new(StateLogger)
	h.Logger = logger
	return h
}

// Func writes the hook site information into the logger.
func (h *StateLogger) Func(ctx kern.HookCtx) {
	switch ctx.Pos {
	case kern.HookPosStateChange:
		tr := ctx.Detail.(kern.StateTransition)
		h.Printf("%d, task %s: %s -> %s",
			ctx.Now, ctx.Task.Name(), tr.From, tr.To)

	case kern.HookPosDispatch:
		d := ctx.Detail.(kern.DispatchDetail)
		h.Printf("%d, dispatch %s -> %s",
			ctx.Now, taskName(d.From), taskName(d.To))

	case kern.HookPosTimeout:
		h.Printf("%d, timeout for task %s", ctx.Now, ctx.Task.Name())
	}
}

func taskName(t *kern.TCB) string {
	if t == nil {
		return "<idle>"
	}
	return t.Name()
}
