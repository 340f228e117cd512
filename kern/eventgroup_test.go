package kern

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

// tableWithEventGroup extends tableWithPriorities with one event group.
func tableWithEventGroup(initial EventBits, prios ...Priority) *ObjectTable {
	spec := ObjectTableSpec{
		PriorityLevels: 8,
		HunkPoolSize:   len(prios) * 64,
		HunkPoolAlign:  16,
		EventGroups: []EventGroupAttr{
			{Name: "events", InitialBits: initial},
		},
	}

	for i, p := range prios {
		spec.Hunks = append(spec.Hunks, HunkLayout{
			Offset: i * 64,
			Size:   64,
			Align:  16,
		})
		spec.Tasks = append(spec.Tasks, TaskAttr{
			Name:      fmt.Sprintf("task%d", i),
			Start:     func(k *Kernel, param any) {},
			Priority:  p,
			StackHunk: HunkID(i),
		})
	}

	return NewObjectTable(spec)
}

var _ = Describe("EventGroup", func() {
	var (
		mockCtrl *gomock.Controller
		s        *testSystem
		k        *Kernel
		g        *EventGroup
	)

	makeSystem := func(initial EventBits, prios ...Priority) {
		s = newTestSystem(mockCtrl, tableWithEventGroup(initial, prios...))
		k = s.kernel
		k.Boot()
		g = k.EventGroup(0)
	}

	// runTask dispatches until the given task is the running one.
	runTask := func(id TaskID) {
		Expect(k.ActivateTask(id)).To(Succeed())
		Expect(k.DispatchFromIdle()).To(BeTrue())
		got, ok := k.RunningTask()
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(id))
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start with its configured bits", func() {
		makeSystem(0b1010, 3)

		Expect(g.Get()).To(Equal(EventBits(0b1010)))
	})

	It("should accumulate set bits", func() {
		makeSystem(0, 3)

		g.Set(0b0001)
		g.Set(0b0100)

		Expect(g.Get()).To(Equal(EventBits(0b0101)))
	})

	It("should clear bits without touching others", func() {
		makeSystem(0b1111, 3)

		g.Clear(0b0101)

		Expect(g.Get()).To(Equal(EventBits(0b1010)))
	})

	Context("wait with the condition already holding", func() {
		It("should return without blocking on an ANY match", func() {
			makeSystem(0b0010, 3)
			runTask(0)

			got, err := g.Wait(0b0110, 0, WaitForever)

			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(EventBits(0b0010)))
			id, _ := k.RunningTask()
			Expect(id).To(Equal(TaskID(0)))
		})

		It("should consume the mask with clear-on-exit", func() {
			makeSystem(0b0111, 3)
			runTask(0)

			_, err := g.Wait(0b0011, EventClearOnExit, WaitForever)

			Expect(err).NotTo(HaveOccurred())
			Expect(g.Get()).To(Equal(EventBits(0b0100)))
		})

		It("should block when an ALL condition only partially holds", func() {
			makeSystem(0b0001, 3)
			runTask(0)

			g.Wait(0b0011, EventWaitAll, WaitForever)

			Expect(k.TaskState(0)).To(Equal(Waiting))
		})
	})

	Context("waking waiters on set", func() {
		It("should wake an ANY waiter when one masked bit appears", func() {
			makeSystem(0, 3)
			runTask(0)
			g.Wait(0b0110, 0, WaitForever)

			g.Set(0b0010)

			Expect(k.TaskState(0)).To(Equal(Ready))
			Expect(k.tcb(0).wakeBits).To(Equal(EventBits(0b0010)))
		})

		It("should hold an ALL waiter until every bit is present", func() {
			makeSystem(0, 3)
			runTask(0)
			g.Wait(0b0011, EventWaitAll, WaitForever)

			g.Set(0b0001)
			Expect(k.TaskState(0)).To(Equal(Waiting))

			g.Set(0b0010)
			Expect(k.TaskState(0)).To(Equal(Ready))
			Expect(k.tcb(0).wakeBits).To(Equal(EventBits(0b0011)))
		})

		It("should serve waiters in priority order with consumption", func() {
			makeSystem(0, 4, 2)
			runTask(0)
			g.Wait(0b0001, 0, WaitForever)
			runTask(1)
			g.Wait(0b0001, EventClearOnExit, WaitForever)

			g.Set(0b0001)

			// The priority-2 waiter is first in the queue and consumes
			// the bit, leaving the priority-4 waiter blocked.
			Expect(k.TaskState(1)).To(Equal(Ready))
			Expect(k.TaskState(0)).To(Equal(Waiting))
			Expect(g.Get()).To(Equal(EventBits(0)))
		})

		It("should wake every satisfied waiter without consumption", func() {
			makeSystem(0, 3, 3)
			runTask(0)
			g.Wait(0b0001, 0, WaitForever)
			runTask(1)
			g.Wait(0b0001, 0, WaitForever)

			g.Set(0b0001)

			Expect(k.TaskState(0)).To(Equal(Ready))
			Expect(k.TaskState(1)).To(Equal(Ready))
			Expect(g.Get()).To(Equal(EventBits(0b0001)))
		})

		It("should not satisfy an ALL waiter after another consumed a bit", func() {
			makeSystem(0, 3, 3)
			runTask(0)
			g.Wait(0b0011, EventWaitAll, WaitForever)
			runTask(1)
			g.Wait(0b0001, EventClearOnExit, WaitForever)

			g.Set(0b0001)

			// Only the ANY waiter matches, and it takes the bit with it.
			Expect(k.TaskState(1)).To(Equal(Ready))
			Expect(k.TaskState(0)).To(Equal(Waiting))
			Expect(g.Get()).To(Equal(EventBits(0)))

			g.Set(0b0010)

			// With the first bit consumed, the second alone is not enough.
			Expect(k.TaskState(0)).To(Equal(Waiting))
			Expect(g.Get()).To(Equal(EventBits(0b0010)))
		})

		It("should leave unrelated waiters blocked", func() {
			makeSystem(0, 3)
			runTask(0)
			g.Wait(0b1000, 0, WaitForever)

			g.Set(0b0001)

			Expect(k.TaskState(0)).To(Equal(Waiting))
		})
	})

	Context("bounded waits", func() {
		It("should expire through the tick entry", func() {
			makeSystem(0, 3)
			runTask(0)
			g.Wait(0b0001, 0, 25)

			Expect(k.TaskState(0)).To(Equal(WaitingTimeout))

			s.now = 25
			k.TickEntry()

			Expect(k.TaskState(0)).To(Equal(Ready))
			Expect(g.s.q.Len()).To(Equal(0))
		})

		It("should leave no timeout armed after a condition wake", func() {
			makeSystem(0, 3)
			runTask(0)
			g.Wait(0b0001, 0, 25)

			g.Set(0b0001)

			Expect(k.TaskState(0)).To(Equal(Ready))
			_, armed := k.NextTimeout()
			Expect(armed).To(BeFalse())
		})
	})

	It("should panic on an empty wait mask", func() {
		makeSystem(0, 3)
		runTask(0)

		Expect(func() { g.Wait(0, 0, WaitForever) }).To(Panic())
	})

	It("should panic on an out-of-range group ID", func() {
		makeSystem(0, 3)

		Expect(func() { k.EventGroup(7) }).To(Panic())
	})
})
