package kern

import (
	"fmt"
	"log"
)

// DispatchDetail is the Detail payload for HookPosDispatch. A nil TCB
// stands for the port's idle context.
type DispatchDetail struct {
	From *TCB
	To   *TCB
}

// makeReady moves a task that is in no queue into its priority's ready
// queue, behind existing same-priority entries. Runs with the CPU lock
// held. If the task outranks the running one, a reschedule is requested;
// the actual switch happens at the caller's next preemption point.
func (k *Kernel) makeReady(t *TCB) {
	k.setState(t, Ready)
	k.ready.push(t)

	if k.running == nil || t.attr.Priority < k.running.attr.Priority {
		k.reschedulePending = true
	}
}

// scheduleNext hands the processor from cur to the highest-priority ready
// task, or to the idle context when none is ready. cur must already have
// left the Running state. The call returns when cur is next dispatched.
func (k *Kernel) scheduleNext(cur *TCB) {
	next := k.ready.pop()
	if next == cur {
		// Nothing else to run at this or a more urgent level.
		k.running = cur
		k.setState(cur, Running)
		return
	}

	k.running = next
	if next != nil {
		k.setState(next, Running)
	}

	k.InvokeHook(HookCtx{
		Kernel: k,
		Pos:    HookPosDispatch,
		Now:    k.port.TickCount(),
		Task:   next,
		Detail: DispatchDetail{From: cur, To: next},
	})

	k.port.ContextSwitch(cur, next)
}

// maybePreempt is the preemption point reached at the end of services
// that can make tasks ready. It is a no-op before boot, inside interrupt
// context (the switch is deferred to InterruptExit), and when the running
// task still outranks or ties every ready task.
func (k *Kernel) maybePreempt() {
	if !k.booted || k.interruptDepth > 0 || !k.reschedulePending {
		return
	}
	k.reschedulePending = false

	cur := k.running
	if cur == nil {
		// Idle context; the port's idle loop dispatches on its own.
		return
	}

	next := k.ready.peek()
	if next == nil || next.attr.Priority >= cur.attr.Priority {
		return
	}

	// The preempted task goes to the front of its level so it resumes
	// before same-priority tasks that became ready while it ran.
	k.setState(cur, Ready)
	k.ready.pushFront(cur)
	k.scheduleNext(cur)
}

// DispatchFromIdle hands the processor from the port's idle context to
// the highest-priority ready task, reporting whether one existed. The
// port calls it with the CPU lock held and nothing running; the call
// returns when control comes back to idle.
func (k *Kernel) DispatchFromIdle() bool {
	if k.running != nil {
		log.Panic("DispatchFromIdle while a task is running")
	}

	next := k.ready.pop()
	if next == nil {
		return false
	}

	k.reschedulePending = false
	k.running = next
	k.setState(next, Running)

	k.InvokeHook(HookCtx{
		Kernel: k,
		Pos:    HookPosDispatch,
		Now:    k.port.TickCount(),
		Task:   next,
		Detail: DispatchDetail{From: nil, To: next},
	})

	k.port.ContextSwitch(nil, next)
	return true
}

// ActivateTask brings a dormant task into the Ready state with a fresh
// execution context. It may be called from task context, from interrupt
// context, or from a startup hook.
func (k *Kernel) ActivateTask(id TaskID) error {
	t := k.tcb(id)

	locked := k.acquire()

	if t.state != Dormant {
		k.release(locked)
		return fmt.Errorf("%w: task %q is %s, not dormant",
			ErrBadState, t.attr.Name, t.state)
	}

	k.port.InitializeTaskState(t)
	k.makeReady(t)
	k.maybePreempt()

	k.release(locked)
	return nil
}

// SuspendTask takes a Ready or Running task out of scheduling until
// ResumeTask. Suspending the running task switches away immediately and
// is not allowed from interrupt context.
func (k *Kernel) SuspendTask(id TaskID) error {
	t := k.tcb(id)

	k.mustNotBeInterrupt("SuspendTask")
	k.port.EnterCPULock()

	switch t.state {
	case Running:
		k.mustTaskContext("SuspendTask(self)")
		k.setState(t, Suspended)
		k.scheduleNext(t)
		k.port.LeaveCPULock()
		return nil

	case Ready:
		k.ready.remove(t)
		k.setState(t, Suspended)
		k.port.LeaveCPULock()
		return nil

	default:
		err := fmt.Errorf("%w: cannot suspend task %q while %s",
			ErrBadState, t.attr.Name, t.state)
		k.port.LeaveCPULock()
		return err
	}
}

// ResumeTask returns a suspended task to the Ready state.
func (k *Kernel) ResumeTask(id TaskID) error {
	t := k.tcb(id)

	locked := k.acquire()

	if t.state != Suspended {
		err := fmt.Errorf("%w: task %q is %s, not suspended",
			ErrBadState, t.attr.Name, t.state)
		k.release(locked)
		return err
	}

	k.makeReady(t)
	k.maybePreempt()

	k.release(locked)
	return nil
}

// Yield moves the running task behind its same-priority peers and
// reschedules. With no peer ready, the caller keeps the processor.
func (k *Kernel) Yield() {
	k.mustNotBeInterrupt("Yield")
	k.port.EnterCPULock()
	k.mustTaskContext("Yield")

	cur := k.running
	k.setState(cur, Ready)
	k.ready.push(cur)
	k.reschedulePending = false
	k.scheduleNext(cur)

	k.port.LeaveCPULock()
}

// ExitTask ends the running task, returning it to Dormant. It does not
// return; the port never resumes a dormant context.
func (k *Kernel) ExitTask() {
	k.mustNotBeInterrupt("ExitTask")
	k.port.EnterCPULock()
	k.mustTaskContext("ExitTask")

	cur := k.running
	k.setState(cur, Dormant)
	k.scheduleNext(cur)

	// Only reached on ports whose ContextSwitch returns to an exiting
	// context; the critical section was handed to the next context, so
	// there is nothing to release here.
}

// Block suspends the running task on q until an explicit wake or, if
// timeout is not WaitForever, until the deadline now+timeout expires.
// It returns nil for a condition wake and ErrTimeout for an expiration;
// exactly one of the two occurs. q may be nil for a purely timed wait.
func (k *Kernel) Block(q *WaitQueue, timeout Ticks) error {
	k.mustNotBeInterrupt("Block")
	k.port.EnterCPULock()
	k.mustTaskContext("Block")

	reason := k.blockLocked(q, timeout)

	k.port.LeaveCPULock()

	if reason == wakeTimeout {
		return ErrTimeout
	}
	return nil
}

// blockLocked is the core of Block, shared with the event group wait
// path, which already holds the CPU lock.
func (k *Kernel) blockLocked(q *WaitQueue, timeout Ticks) wakeReason {
	cur := k.running

	if cur.wq != nil || cur.timeout != nil {
		log.Panicf("task %q is already waiting", cur.attr.Name)
	}
	if q == nil && timeout == WaitForever {
		log.Panicf("task %q would wait forever on nothing", cur.attr.Name)
	}

	cur.wakeReason = wakeNone

	if q != nil {
		q.insert(cur)
		cur.wq = q
	}

	if timeout == WaitForever {
		k.setState(cur, Waiting)
	} else {
		k.timeouts.arm(cur, k.port.TickCount()+timeout)
		k.programTick()
		k.setState(cur, WaitingTimeout)
	}

	k.scheduleNext(cur)

	reason := cur.wakeReason
	cur.wakeReason = wakeNone
	return reason
}

// completeWait detaches a waiting task from its wait queue and timeout
// entry and makes it ready with the given wake reason. Exactly one of
// the explicit-wake path and the timeout path reaches the task: both run
// inside the CPU lock, and whichever runs first clears the memberships
// the other checks.
func (k *Kernel) completeWait(t *TCB, reason wakeReason) {
	if t.wq != nil {
		t.wq.remove(t)
		t.wq = nil
	}
	k.timeouts.disarm(t)
	k.programTick()

	t.wakeReason = reason
	k.makeReady(t)
}

// WakeOne wakes the first waiter of q, reporting whether there was one.
func (k *Kernel) WakeOne(q *WaitQueue) bool {
	locked := k.acquire()

	t := q.first()
	if t == nil {
		k.release(locked)
		return false
	}

	k.completeWait(t, wakeCondition)
	k.maybePreempt()

	k.release(locked)
	return true
}

// WakeAll wakes every waiter of q in queue order and returns the count.
func (k *Kernel) WakeAll(q *WaitQueue) int {
	locked := k.acquire()

	n := 0
	for {
		t := q.first()
		if t == nil {
			break
		}
		k.completeWait(t, wakeCondition)
		n++
	}

	if n > 0 {
		k.maybePreempt()
	}

	k.release(locked)
	return n
}

// Sleep blocks the running task for the given number of ticks. The
// timer expiring is sleep's normal completion, so it reports nil.
func (k *Kernel) Sleep(d Ticks) error {
	if d == WaitForever {
		log.Panic("Sleep needs a finite duration")
	}

	err := k.Block(nil, d)
	if err == ErrTimeout {
		return nil
	}
	return err
}

// TickEntry is the periodic tick entry point, invoked by the port's
// clock source with the CPU lock held. Deadlines that have passed wake
// their tasks in deadline order with a timed-out result.
func (k *Kernel) TickEntry() {
	now := k.port.TickCount()

	for _, t := range k.timeouts.advance(now) {
		k.InvokeHook(HookCtx{
			Kernel: k,
			Pos:    HookPosTimeout,
			Now:    now,
			Task:   t,
		})

		if t.wq != nil {
			t.wq.remove(t)
			t.wq = nil
		}
		t.wakeReason = wakeTimeout
		k.makeReady(t)
	}

	k.programTick()
}

// programTick tells the port when the next deadline is due.
func (k *Kernel) programTick() {
	d, ok := k.timeouts.next()
	if !ok {
		return
	}

	now := k.port.TickCount()
	var delta Ticks
	if d > now {
		delta = d - now
	}
	k.port.PendTickAfter(delta)
}
