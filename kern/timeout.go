package kern

import (
	"container/heap"
	"log"
)

// timeoutEntry is one pending deadline for a blocked task.
type timeoutEntry struct {
	task     *TCB
	deadline Ticks
	seq      uint64
	index    int
}

// timeoutQueue orders pending deadlines so that the head is always the
// next expiration. Ties on deadline resolve by arm order, which keeps
// expiration delivery deterministic.
type timeoutQueue struct {
	entries timeoutHeap
	nextSeq uint64
}

func (q *timeoutQueue) arm(t *TCB, deadline Ticks) {
	if t.timeout != nil {
		log.Panicf("task %q already has an armed timeout", t.attr.Name)
	}

	e := &timeoutEntry{
		task:     t,
		deadline: deadline,
		seq:      q.nextSeq,
	}
	q.nextSeq++

	t.timeout = e
	heap.Push(&q.entries, e)
}

// disarm cancels a pending deadline. It is a no-op if the task has no
// armed timeout, which is how the explicit-wake path and the expiration
// path stay mutually exclusive: whichever runs first clears the entry and
// the other finds nothing to do.
func (q *timeoutQueue) disarm(t *TCB) {
	e := t.timeout
	if e == nil {
		return
	}

	heap.Remove(&q.entries, e.index)
	t.timeout = nil
}

// advance removes every entry whose deadline has passed and returns the
// owning tasks, ordered by deadline then arm order.
func (q *timeoutQueue) advance(now Ticks) []*TCB {
	var expired []*TCB

	for len(q.entries) > 0 && q.entries[0].deadline <= now {
		e := heap.Pop(&q.entries).(*timeoutEntry)
		e.task.timeout = nil
		expired = append(expired, e.task)
	}

	return expired
}

// next returns the earliest pending deadline, if any.
func (q *timeoutQueue) next() (Ticks, bool) {
	if len(q.entries) == 0 {
		return 0, false
	}
	return q.entries[0].deadline, true
}

type timeoutHeap []*timeoutEntry

func (h timeoutHeap) Len() int {
	return len(h)
}

func (h timeoutHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].seq < h[j].seq
}

func (h timeoutHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timeoutHeap) Push(x interface{}) {
	e := x.(*timeoutEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *timeoutHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
