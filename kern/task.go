package kern

import "container/list"

// TaskState is the scheduling state of a task.
type TaskState int

// The states a task can be in. Exactly one task is Running at a time.
const (
	// Dormant tasks have not been activated, or have exited.
	Dormant TaskState = iota

	// Ready tasks are in their priority's ready queue.
	Ready

	// Running is the task currently holding the processor.
	Running

	// Waiting tasks are blocked on a wait queue with no timeout.
	Waiting

	// WaitingTimeout tasks are blocked with an armed timeout entry.
	WaitingTimeout

	// Suspended tasks were taken out of scheduling by SuspendTask.
	Suspended
)

func (s TaskState) String() string {
	switch s {
	case Dormant:
		return "Dormant"
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Waiting:
		return "Waiting"
	case WaitingTimeout:
		return "WaitingTimeout"
	case Suspended:
		return "Suspended"
	}
	return "Invalid"
}

type wakeReason int

const (
	wakeNone wakeReason = iota
	wakeCondition
	wakeTimeout
)

// A TCB is the runtime control block of one task. TCBs live in a fixed
// array owned by the kernel, indexed by TaskID. All fields other than the
// port context are mutated only inside the kernel's critical sections.
type TCB struct {
	id   TaskID
	attr *TaskAttr

	state TaskState

	// Wait membership. A task is in at most one wait queue at a time;
	// wq and wqElem are both nil unless the task is blocked on a queue.
	wq     *WaitQueue
	wqElem *list.Element

	// Event group wait payload, valid only while blocked on a group.
	waitMask  EventBits
	waitFlags EventWaitFlags

	// Set by the waker before the task is made ready, read by the task
	// once the port resumes it.
	wakeReason wakeReason
	wakeBits   EventBits

	// Armed timeout entry, nil unless state is WaitingTimeout.
	timeout *timeoutEntry

	// Opaque execution context owned by the port layer.
	portCtx any
}

// ID returns the task's configured identity.
func (t *TCB) ID() TaskID {
	return t.id
}

// Name returns the task's configured name.
func (t *TCB) Name() string {
	return t.attr.Name
}

// Priority returns the task's configured priority.
func (t *TCB) Priority() Priority {
	return t.attr.Priority
}

// State returns the task's current scheduling state. Readers outside the
// kernel's critical sections see a possibly stale snapshot.
func (t *TCB) State() TaskState {
	return t.state
}

// PortContext returns the opaque execution context stored by the port.
func (t *TCB) PortContext() any {
	return t.portCtx
}

// SetPortContext stores the port's execution context for this task.
func (t *TCB) SetPortContext(ctx any) {
	t.portCtx = ctx
}
