package kern

import (
	"log"
	"math/bits"
)

// readyQueue keeps one FIFO per priority level plus a bitmap summary of
// non-empty levels, so the highest-precedence level is found in O(1) with
// a find-first-set. The structure is sized exactly to the configured
// priority range and never grows.
type readyQueue struct {
	levels  [][]*TCB
	summary []uint64
}

func newReadyQueue(numLevels int) *readyQueue {
	return &readyQueue{
		levels:  make([][]*TCB, numLevels),
		summary: make([]uint64, (numLevels+63)/64),
	}
}

func (q *readyQueue) push(t *TCB) {
	p := int(t.attr.Priority)
	q.levels[p] = append(q.levels[p], t)
	q.summary[p/64] |= 1 << (p % 64)
}

// pushFront requeues a preempted task at the head of its level so that it
// resumes before same-priority tasks made ready while it was running.
func (q *readyQueue) pushFront(t *TCB) {
	p := int(t.attr.Priority)
	q.levels[p] = append([]*TCB{t}, q.levels[p]...)
	q.summary[p/64] |= 1 << (p % 64)
}

func (q *readyQueue) topLevel() (int, bool) {
	for w, word := range q.summary {
		if word != 0 {
			return w*64 + bits.TrailingZeros64(word), true
		}
	}
	return 0, false
}

func (q *readyQueue) peek() *TCB {
	p, ok := q.topLevel()
	if !ok {
		return nil
	}
	return q.levels[p][0]
}

func (q *readyQueue) pop() *TCB {
	p, ok := q.topLevel()
	if !ok {
		return nil
	}

	level := q.levels[p]
	t := level[0]
	copy(level, level[1:])
	q.levels[p] = level[:len(level)-1]
	if len(q.levels[p]) == 0 {
		q.summary[p/64] &^= 1 << (p % 64)
	}

	return t
}

func (q *readyQueue) remove(t *TCB) {
	p := int(t.attr.Priority)
	level := q.levels[p]
	for i, cand := range level {
		if cand == t {
			copy(level[i:], level[i+1:])
			q.levels[p] = level[:len(level)-1]
			if len(q.levels[p]) == 0 {
				q.summary[p/64] &^= 1 << (p % 64)
			}
			return
		}
	}

	log.Panicf("task %q is not in the ready queue", t.attr.Name)
}
