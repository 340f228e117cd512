package kern

// A Port supplies the target-specific mechanisms the kernel core cannot
// implement itself: bounded critical sections, execution contexts and the
// switch between them, and a monotonic time source. One concrete Port is
// selected per build; the hostport package provides one for host
// execution.
//
// In exchange, the kernel exposes to the port its entry points: Boot,
// TickEntry, InterruptEntry and InterruptExit.
type Port interface {
	// EnterCPULock begins a critical section, masking interrupt
	// delivery. Critical sections do not nest.
	EnterCPULock()

	// LeaveCPULock ends the critical section. A context resumed by a
	// context switch inherits the critical section entered by the
	// context that switched to it, and releases it with this call.
	LeaveCPULock()

	// InitializeTaskState prepares a fresh execution context for a task
	// that is being activated, storing it via SetPortContext. The
	// context must invoke the task's Start function when first switched
	// to, and call Kernel.ExitTask if Start returns.
	InitializeTaskState(t *TCB)

	// ContextSwitch suspends out and resumes in, called with the CPU
	// lock held. A nil TCB denotes the port's idle context. If out is
	// Dormant the port must not return to it.
	ContextSwitch(out, in *TCB)

	// TickCount returns the current value of the monotonic time source.
	TickCount() Ticks

	// PendTickAfter asks the port to deliver a tick (a TickEntry call)
	// once the given number of ticks has elapsed, replacing any earlier
	// request. The kernel calls this whenever the earliest pending
	// deadline changes.
	PendTickAfter(delta Ticks)
}
