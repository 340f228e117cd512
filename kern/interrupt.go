package kern

import "log"

// InterruptEntry is the trampoline the port invokes when an interrupt
// line fires, with the CPU lock held. The bound handler runs in interrupt
// context: it may make tasks ready, but any resulting switch is deferred
// until InterruptExit. Delivery on a disabled line is dropped; a line
// with no configured binding is a contract violation.
func (k *Kernel) InterruptEntry(line InterruptNum) {
	idx, ok := k.irqIndex[line]
	if !ok {
		log.Panicf("interrupt line %d has no configured handler", line)
	}
	if !k.irqEnabled[idx] {
		return
	}

	k.interruptDepth++

	k.InvokeHook(HookCtx{
		Kernel: k,
		Pos:    HookPosInterruptEnter,
		Now:    k.port.TickCount(),
		Task:   k.running,
		Detail: line,
	})

	k.table.interrupts[idx].Handler(k)

	k.interruptDepth--

	k.InvokeHook(HookCtx{
		Kernel: k,
		Pos:    HookPosInterruptExit,
		Now:    k.port.TickCount(),
		Task:   k.running,
		Detail: line,
	})
}

// InterruptExit performs the reschedule deferred by handlers. The port
// calls it on the interrupted context, after interrupt nesting has fully
// unwound, still holding the CPU lock.
func (k *Kernel) InterruptExit() {
	if k.interruptDepth > 0 {
		log.Panic("InterruptExit with interrupt nesting still active")
	}
	k.maybePreempt()
}

// EnableInterruptLine allows delivery on a configured line.
func (k *Kernel) EnableInterruptLine(line InterruptNum) {
	k.setInterruptLine(line, true)
}

// DisableInterruptLine drops delivery on a configured line.
func (k *Kernel) DisableInterruptLine(line InterruptNum) {
	k.setInterruptLine(line, false)
}

// InterruptLineEnabled reports whether a configured line is enabled.
func (k *Kernel) InterruptLineEnabled(line InterruptNum) bool {
	idx, ok := k.irqIndex[line]
	if !ok {
		log.Panicf("interrupt line %d is not configured", line)
	}

	locked := k.acquire()
	enabled := k.irqEnabled[idx]
	k.release(locked)

	return enabled
}

func (k *Kernel) setInterruptLine(line InterruptNum, enabled bool) {
	idx, ok := k.irqIndex[line]
	if !ok {
		log.Panicf("interrupt line %d is not configured", line)
	}

	locked := k.acquire()
	k.irqEnabled[idx] = enabled
	k.release(locked)
}
