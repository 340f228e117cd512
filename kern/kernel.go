package kern

import (
	"log"

	"github.com/rs/xid"
)

// A Kernel is the runtime produced by one finalized configuration. All of
// its storage is sized from the object table when the kernel is built;
// nothing is allocated while the system runs.
type Kernel struct {
	HookableBase

	id    string
	table *ObjectTable
	port  Port

	tcbs    []TCB
	ready   *readyQueue
	running *TCB

	timeouts timeoutQueue

	eventGroups []eventGroupState
	egHandles   []EventGroup

	hunkPool []byte

	irqIndex   map[InterruptNum]int
	irqEnabled []bool

	interruptDepth    int
	reschedulePending bool
	booted            bool
}

// New builds the kernel runtime for an object table on the given port.
func New(table *ObjectTable, port Port) *Kernel {
	k := &Kernel{
		id:       xid.New().String(),
		table:    table,
		port:     port,
		ready:    newReadyQueue(table.PriorityLevels()),
		hunkPool: make([]byte, table.HunkPoolSize()),
		irqIndex: make(map[InterruptNum]int),
	}

	k.tcbs = make([]TCB, len(table.tasks))
	for i := range k.tcbs {
		k.tcbs[i] = TCB{
			id:    TaskID(i),
			attr:  &table.tasks[i],
			state: Dormant,
		}
	}

	k.eventGroups = make([]eventGroupState, len(table.eventGroups))
	k.egHandles = make([]EventGroup, len(table.eventGroups))
	for i := range k.eventGroups {
		k.eventGroups[i].bits = table.eventGroups[i].InitialBits
		k.egHandles[i] = EventGroup{
			k:  k,
			id: EventGroupID(i),
			s:  &k.eventGroups[i],
		}
	}

	k.irqEnabled = make([]bool, len(table.interrupts))
	for i, b := range table.interrupts {
		if _, dup := k.irqIndex[b.Line]; dup {
			log.Panicf("interrupt line %d bound twice", b.Line)
		}
		k.irqIndex[b.Line] = i
		k.irqEnabled[i] = b.EnabledAtBoot
	}

	return k
}

// ID returns the unique identifier of this kernel instance.
func (k *Kernel) ID() string {
	return k.id
}

// Table returns the object table the kernel was built from.
func (k *Kernel) Table() *ObjectTable {
	return k.table
}

// Port returns the port the kernel runs on.
func (k *Kernel) Port() Port {
	return k.port
}

// Now returns the current kernel time from the port's time source.
func (k *Kernel) Now() Ticks {
	return k.port.TickCount()
}

// Hunk returns the storage of a configured hunk. The returned slice
// aliases the kernel's hunk pool and stays valid for the program's
// lifetime.
func (k *Kernel) Hunk(id HunkID) []byte {
	l := k.table.Hunk(id)
	return k.hunkPool[l.Offset : l.Offset+l.Size : l.Offset+l.Size]
}

// TaskState returns a snapshot of one task's scheduling state.
func (k *Kernel) TaskState(id TaskID) TaskState {
	t := k.tcb(id)

	k.port.EnterCPULock()
	s := t.state
	k.port.LeaveCPULock()

	return s
}

// RunningTask returns the identity of the running task, if any.
func (k *Kernel) RunningTask() (TaskID, bool) {
	k.port.EnterCPULock()
	t := k.running
	k.port.LeaveCPULock()

	if t == nil {
		return 0, false
	}
	return t.id, true
}

// NextTimeout returns the earliest pending deadline. The caller must hold
// the CPU lock; ports use it to decide how far to advance their clock.
func (k *Kernel) NextTimeout() (Ticks, bool) {
	return k.timeouts.next()
}

// tcb resolves a task identity, trapping on out-of-range values. Object
// identities are pre-validated at configuration time, so a bad one here
// is a programming error, not a recoverable condition.
func (k *Kernel) tcb(id TaskID) *TCB {
	if int(id) < 0 || int(id) >= len(k.tcbs) {
		log.Panicf("task ID %d out of configured range", id)
	}
	return &k.tcbs[int(id)]
}

// acquire begins a critical section, unless the caller already runs in
// interrupt context, which the port enters with the CPU lock held. It
// returns whether release must end the section. Services using it may be
// called from task context, interrupt context, or a startup hook, but
// not from arbitrary goroutines; those inject an interrupt instead.
func (k *Kernel) acquire() bool {
	if k.interruptDepth > 0 {
		return false
	}
	k.port.EnterCPULock()
	return true
}

func (k *Kernel) release(locked bool) {
	if locked {
		k.port.LeaveCPULock()
	}
}

// mustNotBeInterrupt traps a blocking or yielding service invoked from
// an interrupt handler. It must run before the service takes the CPU
// lock: interrupt context enters with the lock already held, so
// acquiring it here would hang instead of trapping. Only the handler's
// own goroutine can have raised the depth, so the unlocked read is
// sound.
func (k *Kernel) mustNotBeInterrupt(op string) {
	if k.interruptDepth > 0 {
		log.Panicf("%s called from interrupt context", op)
	}
}

// mustTaskContext traps when a blocking or yielding service is invoked
// anywhere other than the running task's context.
func (k *Kernel) mustTaskContext(op string) {
	if !k.booted {
		log.Panicf("%s called before the scheduler started", op)
	}
	if k.interruptDepth > 0 {
		log.Panicf("%s called from interrupt context", op)
	}
	if k.running == nil {
		log.Panicf("%s called outside task context", op)
	}
}

// setState applies a task state transition and publishes it to hooks.
func (k *Kernel) setState(t *TCB, to TaskState) {
	from := t.state
	t.state = to

	k.InvokeHook(HookCtx{
		Kernel: k,
		Pos:    HookPosStateChange,
		Now:    k.port.TickCount(),
		Task:   t,
		Detail: StateTransition{From: from, To: to},
	})
}
