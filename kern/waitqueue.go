package kern

import (
	"container/list"
	"log"
)

// A WaitQueue is the generic blocking primitive: an ordered collection of
// tasks blocked pending a condition. Waiters are ordered by priority
// first, then FIFO among equal priorities, and that order decides who is
// woken first when a condition satisfies several waiters at once.
//
// The zero value is an empty queue. A WaitQueue is always operated on
// through a Kernel (Block, WakeOne, WakeAll), which provides the critical
// section; higher-level primitives embed WaitQueues in their own
// statically configured objects.
type WaitQueue struct {
	waiters list.List
}

// Len returns the number of waiting tasks. Only meaningful inside a
// kernel critical section.
func (q *WaitQueue) Len() int {
	return q.waiters.Len()
}

// insert places t before the first waiter with a numerically larger
// priority, which yields priority-then-FIFO order.
func (q *WaitQueue) insert(t *TCB) {
	if t.wqElem != nil {
		log.Panicf("task %q is already in a wait queue", t.attr.Name)
	}

	for e := q.waiters.Front(); e != nil; e = e.Next() {
		if e.Value.(*TCB).attr.Priority > t.attr.Priority {
			t.wqElem = q.waiters.InsertBefore(t, e)
			return
		}
	}

	t.wqElem = q.waiters.PushBack(t)
}

func (q *WaitQueue) first() *TCB {
	e := q.waiters.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*TCB)
}

// remove supports removal from an arbitrary position, which the timeout
// path needs when a deadline fires for a waiter that is not at the head.
func (q *WaitQueue) remove(t *TCB) {
	if t.wqElem == nil {
		log.Panicf("task %q is not in this wait queue", t.attr.Name)
	}

	q.waiters.Remove(t.wqElem)
	t.wqElem = nil
}
