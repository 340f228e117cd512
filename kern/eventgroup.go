package kern

import "log"

// EventBits is the fixed-width bit vector held by an event group.
type EventBits uint32

// EventWaitFlags select how a waiter's mask is matched against the group.
type EventWaitFlags uint8

const (
	// EventWaitAll requires every bit of the mask to be set. Without it,
	// any single bit of the mask satisfies the wait.
	EventWaitAll EventWaitFlags = 1 << iota

	// EventClearOnExit clears the waiter's mask from the group when the
	// wait is satisfied.
	EventClearOnExit
)

type eventGroupState struct {
	bits EventBits
	q    WaitQueue
}

// An EventGroup is a bitmask condition variable. Tasks wait for a subset
// of its bits under ANY or ALL semantics, optionally consuming the bits
// that satisfied them. Handles are created at kernel construction; obtain
// one with Kernel.EventGroup.
type EventGroup struct {
	k  *Kernel
	id EventGroupID
	s  *eventGroupState
}

// EventGroup returns the handle for a configured event group.
func (k *Kernel) EventGroup(id EventGroupID) *EventGroup {
	if int(id) < 0 || int(id) >= len(k.egHandles) {
		log.Panicf("event group ID %d out of configured range", id)
	}
	return &k.egHandles[id]
}

// ID returns the group's configured identity.
func (g *EventGroup) ID() EventGroupID {
	return g.id
}

// Name returns the group's configured name.
func (g *EventGroup) Name() string {
	return g.k.table.eventGroups[g.id].Name
}

// Get returns a snapshot of the group's bits.
func (g *EventGroup) Get() EventBits {
	locked := g.k.acquire()
	b := g.s.bits
	g.k.release(locked)
	return b
}

// Clear clears the given bits without affecting any waiter.
func (g *EventGroup) Clear(bits EventBits) {
	locked := g.k.acquire()
	g.s.bits &^= bits
	g.k.release(locked)
}

// Set sets the given bits and wakes every waiter whose condition is now
// satisfied. The scan follows wait-queue order, so higher-priority and
// earlier waiters are served first; a clear-on-exit waiter may consume
// bits and leave later waiters blocked. Callable from interrupt context.
func (g *EventGroup) Set(bits EventBits) {
	k := g.k

	locked := k.acquire()

	g.s.bits |= bits

	for e := g.s.q.waiters.Front(); e != nil; {
		next := e.Next()
		t := e.Value.(*TCB)

		if eventSatisfied(g.s.bits, t.waitMask, t.waitFlags) {
			t.wakeBits = g.s.bits
			if t.waitFlags&EventClearOnExit != 0 {
				g.s.bits &^= t.waitMask
			}
			k.completeWait(t, wakeCondition)
		}

		e = next
	}

	k.maybePreempt()

	k.release(locked)
}

// Wait blocks the running task until the masked bits satisfy the flags,
// or until the timeout expires. It returns the group's bits as observed
// when the condition matched. If the condition already holds, Wait
// returns without blocking.
func (g *EventGroup) Wait(
	mask EventBits,
	flags EventWaitFlags,
	timeout Ticks,
) (EventBits, error) {
	k := g.k

	if mask == 0 {
		log.Panic("event group wait needs a non-empty mask")
	}

	k.mustNotBeInterrupt("EventGroup.Wait")
	k.port.EnterCPULock()
	k.mustTaskContext("EventGroup.Wait")

	if eventSatisfied(g.s.bits, mask, flags) {
		got := g.s.bits
		if flags&EventClearOnExit != 0 {
			g.s.bits &^= mask
		}
		k.port.LeaveCPULock()
		return got, nil
	}

	cur := k.running
	cur.waitMask = mask
	cur.waitFlags = flags

	reason := k.blockLocked(&g.s.q, timeout)

	k.port.LeaveCPULock()

	if reason == wakeTimeout {
		return 0, ErrTimeout
	}
	return cur.wakeBits, nil
}

func eventSatisfied(bits, mask EventBits, flags EventWaitFlags) bool {
	if flags&EventWaitAll != 0 {
		return bits&mask == mask
	}
	return bits&mask != 0
}
