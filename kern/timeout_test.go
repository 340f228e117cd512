package kern

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TimeoutQueue", func() {
	var q timeoutQueue

	BeforeEach(func() {
		q = timeoutQueue{}
	})

	It("should report no deadline when empty", func() {
		_, ok := q.next()
		Expect(ok).To(BeFalse())
		Expect(q.advance(100)).To(BeEmpty())
	})

	It("should report the earliest deadline", func() {
		q.arm(queueTask("t1", 1), 30)
		q.arm(queueTask("t2", 1), 10)
		q.arm(queueTask("t3", 1), 20)

		d, ok := q.next()
		Expect(ok).To(BeTrue())
		Expect(d).To(Equal(Ticks(10)))
	})

	It("should expire tasks in deadline order", func() {
		t1 := queueTask("t1", 1)
		t2 := queueTask("t2", 1)
		t3 := queueTask("t3", 1)

		q.arm(t1, 30)
		q.arm(t2, 10)
		q.arm(t3, 20)

		Expect(q.advance(25)).To(Equal([]*TCB{t2, t3}))
		Expect(q.advance(30)).To(Equal([]*TCB{t1}))
	})

	It("should break deadline ties by arm order", func() {
		t1 := queueTask("t1", 1)
		t2 := queueTask("t2", 1)
		t3 := queueTask("t3", 1)

		q.arm(t1, 10)
		q.arm(t2, 10)
		q.arm(t3, 10)

		Expect(q.advance(10)).To(Equal([]*TCB{t1, t2, t3}))
	})

	It("should clear the task's entry on expiration", func() {
		t := queueTask("t", 1)
		q.arm(t, 10)

		q.advance(10)

		Expect(t.timeout).To(BeNil())
	})

	It("should disarm an entry from the middle of the heap", func() {
		t1 := queueTask("t1", 1)
		t2 := queueTask("t2", 1)
		t3 := queueTask("t3", 1)

		q.arm(t1, 10)
		q.arm(t2, 20)
		q.arm(t3, 30)
		q.disarm(t2)

		Expect(t2.timeout).To(BeNil())
		Expect(q.advance(30)).To(Equal([]*TCB{t1, t3}))
	})

	It("should treat disarming an unarmed task as a no-op", func() {
		t := queueTask("t", 1)

		q.disarm(t)

		_, ok := q.next()
		Expect(ok).To(BeFalse())
	})

	It("should panic when arming a task twice", func() {
		t := queueTask("t", 1)
		q.arm(t, 10)

		Expect(func() { q.arm(t, 20) }).To(Panic())
	})
})
