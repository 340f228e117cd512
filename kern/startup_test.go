package kern

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("Startup", func() {
	var mockCtrl *gomock.Controller

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should run startup hooks once, in declaration order", func() {
		var order []int
		spec := ObjectTableSpec{
			PriorityLevels: 4,
			StartupHooks: []StartupHookAttr{
				{Hook: func(k *Kernel) { order = append(order, 0) }},
				{Hook: func(k *Kernel) { order = append(order, 1) }},
				{Hook: func(k *Kernel) { order = append(order, 2) }},
			},
		}
		s := newTestSystem(mockCtrl, NewObjectTable(spec))

		s.kernel.Boot()

		Expect(order).To(Equal([]int{0, 1, 2}))
		Expect(s.kernel.Booted()).To(BeTrue())
	})

	It("should activate boot-active tasks after the hooks", func() {
		var hookRan bool
		spec := ObjectTableSpec{
			PriorityLevels: 4,
			HunkPoolSize:   128,
			HunkPoolAlign:  16,
			Hunks: []HunkLayout{
				{Offset: 0, Size: 64, Align: 16},
				{Offset: 64, Size: 64, Align: 16},
			},
			Tasks: []TaskAttr{
				{
					Name:         "boot",
					Start:        func(k *Kernel, param any) {},
					Priority:     1,
					StackHunk:    0,
					ActiveAtBoot: true,
				},
				{
					Name:      "manual",
					Start:     func(k *Kernel, param any) {},
					Priority:  2,
					StackHunk: 1,
				},
			},
			StartupHooks: []StartupHookAttr{
				{Hook: func(k *Kernel) { hookRan = true }},
			},
		}
		s := newTestSystem(mockCtrl, NewObjectTable(spec))

		s.kernel.Boot()

		Expect(hookRan).To(BeTrue())
		Expect(s.kernel.TaskState(0)).To(Equal(Ready))
		Expect(s.kernel.TaskState(1)).To(Equal(Dormant))

		// Nothing is dispatched until the port asks for it.
		Expect(s.switches).To(BeEmpty())
	})

	It("should let a hook activate tasks before the scheduler starts", func() {
		spec := ObjectTableSpec{
			PriorityLevels: 4,
			HunkPoolSize:   64,
			HunkPoolAlign:  16,
			Hunks:          []HunkLayout{{Offset: 0, Size: 64, Align: 16}},
			Tasks: []TaskAttr{
				{
					Name:      "worker",
					Start:     func(k *Kernel, param any) {},
					Priority:  1,
					StackHunk: 0,
				},
			},
		}
		spec.StartupHooks = []StartupHookAttr{
			{Hook: func(k *Kernel) {
				Expect(k.ActivateTask(0)).To(Succeed())
			}},
		}
		s := newTestSystem(mockCtrl, NewObjectTable(spec))

		s.kernel.Boot()

		Expect(s.kernel.TaskState(0)).To(Equal(Ready))
		Expect(s.switches).To(BeEmpty())
	})

	It("should panic when booted twice", func() {
		s := newTestSystem(mockCtrl,
			NewObjectTable(ObjectTableSpec{PriorityLevels: 4}))

		s.kernel.Boot()

		Expect(func() { s.kernel.Boot() }).To(Panic())
	})
})
