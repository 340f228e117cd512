package kern

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

// recordingHook keeps every hook invocation for inspection.
type recordingHook struct {
	ctxs []HookCtx
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

func (h *recordingHook) at(pos *HookPos) []HookCtx {
	var out []HookCtx
	for _, ctx := range h.ctxs {
		if ctx.Pos == pos {
			out = append(out, ctx)
		}
	}
	return out
}

var _ = Describe("Kernel", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should give each instance a unique ID", func() {
		table := tableWithPriorities(1)
		a := newTestSystem(mockCtrl, table)
		b := newTestSystem(mockCtrl, table)

		Expect(a.kernel.ID()).NotTo(Equal(b.kernel.ID()))
	})

	It("should expose hunks at their configured placement", func() {
		spec := ObjectTableSpec{
			PriorityLevels: 4,
			HunkPoolSize:   48,
			HunkPoolAlign:  16,
			Hunks: []HunkLayout{
				{Offset: 0, Size: 16, Align: 16},
				{Offset: 16, Size: 32, Align: 8},
			},
		}
		s := newTestSystem(mockCtrl, NewObjectTable(spec))

		h0 := s.kernel.Hunk(0)
		h1 := s.kernel.Hunk(1)

		Expect(h0).To(HaveLen(16))
		Expect(h1).To(HaveLen(32))

		// Writes land in the shared pool, not in a copy.
		h1[0] = 0xAB
		Expect(s.kernel.Hunk(1)[0]).To(Equal(byte(0xAB)))
	})

	It("should keep hunk slices from growing into neighbors", func() {
		spec := ObjectTableSpec{
			PriorityLevels: 4,
			HunkPoolSize:   32,
			HunkPoolAlign:  16,
			Hunks: []HunkLayout{
				{Offset: 0, Size: 16, Align: 16},
				{Offset: 16, Size: 16, Align: 16},
			},
		}
		s := newTestSystem(mockCtrl, NewObjectTable(spec))

		h0 := s.kernel.Hunk(0)

		Expect(cap(h0)).To(Equal(16))
	})

	It("should panic on a hunk ID out of range", func() {
		s := newTestSystem(mockCtrl,
			NewObjectTable(ObjectTableSpec{PriorityLevels: 4}))

		Expect(func() { s.kernel.Hunk(0) }).To(Panic())
	})

	It("should panic on a task ID out of range", func() {
		s := newTestSystem(mockCtrl,
			NewObjectTable(ObjectTableSpec{PriorityLevels: 4}))

		Expect(func() { s.kernel.TaskState(0) }).To(Panic())
	})

	It("should panic on duplicate interrupt lines", func() {
		spec := ObjectTableSpec{
			PriorityLevels: 4,
			Interrupts: []InterruptBinding{
				{Line: 1, Handler: func(k *Kernel) {}},
				{Line: 1, Handler: func(k *Kernel) {}},
			},
		}
		table := NewObjectTable(spec)

		Expect(func() { newTestSystem(mockCtrl, table) }).To(Panic())
	})

	Context("hooks", func() {
		It("should publish state transitions", func() {
			s := newTestSystem(mockCtrl, tableWithPriorities(3))
			k := s.kernel
			hook := &recordingHook{}
			k.AcceptHook(hook)
			k.Boot()

			Expect(k.ActivateTask(0)).To(Succeed())

			changes := hook.at(HookPosStateChange)
			Expect(changes).To(HaveLen(1))
			Expect(changes[0].Task.ID()).To(Equal(TaskID(0)))
			Expect(changes[0].Detail).To(Equal(
				StateTransition{From: Dormant, To: Ready}))
		})

		It("should publish dispatches with from and to", func() {
			s := newTestSystem(mockCtrl, tableWithPriorities(3))
			k := s.kernel
			hook := &recordingHook{}
			k.AcceptHook(hook)
			k.Boot()

			Expect(k.ActivateTask(0)).To(Succeed())
			Expect(k.DispatchFromIdle()).To(BeTrue())

			dispatches := hook.at(HookPosDispatch)
			Expect(dispatches).To(HaveLen(1))
			detail := dispatches[0].Detail.(DispatchDetail)
			Expect(detail.From).To(BeNil())
			Expect(detail.To.ID()).To(Equal(TaskID(0)))
		})

		It("should publish timeouts with the expired task", func() {
			s := newTestSystem(mockCtrl, tableWithPriorities(3))
			k := s.kernel
			hook := &recordingHook{}
			k.AcceptHook(hook)
			k.Boot()

			Expect(k.ActivateTask(0)).To(Succeed())
			Expect(k.DispatchFromIdle()).To(BeTrue())
			k.Block(nil, 10)

			s.now = 10
			k.TickEntry()

			timeouts := hook.at(HookPosTimeout)
			Expect(timeouts).To(HaveLen(1))
			Expect(timeouts[0].Task.ID()).To(Equal(TaskID(0)))
			Expect(timeouts[0].Now).To(Equal(Ticks(10)))
		})
	})
})

var _ = Describe("ObjectTable", func() {
	It("should panic with no priority levels", func() {
		Expect(func() {
			NewObjectTable(ObjectTableSpec{})
		}).To(Panic())
	})

	It("should panic on a priority outside the configured range", func() {
		Expect(func() {
			NewObjectTable(ObjectTableSpec{
				PriorityLevels: 4,
				Hunks:          []HunkLayout{{Size: 64, Align: 16}},
				Tasks: []TaskAttr{{
					Name:      "t",
					Start:     func(k *Kernel, param any) {},
					Priority:  4,
					StackHunk: 0,
				}},
			})
		}).To(Panic())
	})

	It("should panic on an undeclared stack hunk", func() {
		Expect(func() {
			NewObjectTable(ObjectTableSpec{
				PriorityLevels: 4,
				Tasks: []TaskAttr{{
					Name:      "t",
					Start:     func(k *Kernel, param any) {},
					Priority:  1,
					StackHunk: 3,
				}},
			})
		}).To(Panic())
	})

	It("should not alias the caller's slices", func() {
		hunks := []HunkLayout{{Offset: 0, Size: 64, Align: 16}}
		table := NewObjectTable(ObjectTableSpec{
			PriorityLevels: 4,
			HunkPoolSize:   64,
			HunkPoolAlign:  16,
			Hunks:          hunks,
		})

		hunks[0].Size = 1

		Expect(table.Hunk(0).Size).To(Equal(64))
	})
})
