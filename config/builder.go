package config

import (
	"errors"
	"log"
	"math/bits"
	"reflect"

	"github.com/sarchlab/keron/kern"
)

// Defaults applied when a configuration does not say otherwise.
const (
	DefaultPriorityLevels = 16
	DefaultStackSize      = 4096
	DefaultHunkBudget     = 1 << 20

	stackAlign = 16

	// MaxPriorityLevels bounds the ready-queue structure; the scheduler
	// is sized exactly to the configured level count.
	MaxPriorityLevels = 1 << 10
)

type taskDecl struct {
	desc    TaskDesc
	defined bool
}

type eventGroupDecl struct {
	name    string
	initial kern.EventBits
	defined bool
}

type hunkDecl struct {
	size  int
	align int
}

// A Builder accumulates object declarations for one system. Each
// declaration is assigned the next identity of its kind immediately;
// identities may also be reserved ahead of their definition so that
// objects can reference each other. A Builder is single-shot: after
// Finalize it must not be touched again.
type Builder struct {
	priorityLevels int
	hunkBudget     int

	tasks       []taskDecl
	eventGroups []eventGroupDecl
	hunks       []hunkDecl
	interrupts  []kern.InterruptBinding
	hooks       []kern.StartupHookAttr
	hookPtrs    []uintptr

	finalized bool
}

// New creates an empty configuration builder.
func New() *Builder {
	return &Builder{
		priorityLevels: DefaultPriorityLevels,
		hunkBudget:     DefaultHunkBudget,
	}
}

// SetPriorityLevels sets the number of task priority levels.
func (b *Builder) SetPriorityLevels(n int) {
	b.mustBeOpen()
	if n <= 0 || n > MaxPriorityLevels {
		log.Panicf("priority level count %d outside 1..%d", n, MaxPriorityLevels)
	}
	b.priorityLevels = n
}

// SetHunkBudget sets the platform's static memory budget in bytes.
func (b *Builder) SetHunkBudget(n int) {
	b.mustBeOpen()
	if n <= 0 {
		log.Panic("hunk budget must be positive")
	}
	b.hunkBudget = n
}

// AddTask declares a task and returns its identity.
func (b *Builder) AddTask(d TaskDesc) kern.TaskID {
	id := b.ReserveTask()
	b.DefineTask(id, d)
	return id
}

// ReserveTask assigns the next task identity without a definition, so it
// can be referenced before the full descriptor is known. A reservation
// left undefined is a configuration error at finalization.
func (b *Builder) ReserveTask() kern.TaskID {
	b.mustBeOpen()
	b.tasks = append(b.tasks, taskDecl{})
	return kern.TaskID(len(b.tasks) - 1)
}

// DefineTask supplies the descriptor for a reserved task identity.
func (b *Builder) DefineTask(id kern.TaskID, d TaskDesc) {
	b.mustBeOpen()
	if int(id) < 0 || int(id) >= len(b.tasks) {
		log.Panicf("task ID %d was never reserved", id)
	}
	if b.tasks[id].defined {
		log.Panicf("task ID %d defined twice", id)
	}
	b.tasks[id] = taskDecl{desc: d, defined: true}
}

// AddEventGroup declares an event group and returns its identity.
func (b *Builder) AddEventGroup(name string, initial kern.EventBits) kern.EventGroupID {
	id := b.ReserveEventGroup()
	b.DefineEventGroup(id, name, initial)
	return id
}

// ReserveEventGroup assigns the next event group identity without a
// definition.
func (b *Builder) ReserveEventGroup() kern.EventGroupID {
	b.mustBeOpen()
	b.eventGroups = append(b.eventGroups, eventGroupDecl{})
	return kern.EventGroupID(len(b.eventGroups) - 1)
}

// DefineEventGroup supplies the definition for a reserved event group.
func (b *Builder) DefineEventGroup(
	id kern.EventGroupID,
	name string,
	initial kern.EventBits,
) {
	b.mustBeOpen()
	if int(id) < 0 || int(id) >= len(b.eventGroups) {
		log.Panicf("event group ID %d was never reserved", id)
	}
	if b.eventGroups[id].defined {
		log.Panicf("event group ID %d defined twice", id)
	}
	b.eventGroups[id] = eventGroupDecl{name: name, initial: initial, defined: true}
}

// AddHunk declares a statically placed memory region of the given size
// and alignment and returns its identity.
func (b *Builder) AddHunk(size, align int) kern.HunkID {
	b.mustBeOpen()
	b.hunks = append(b.hunks, hunkDecl{size: size, align: align})
	return kern.HunkID(len(b.hunks) - 1)
}

// BindInterrupt binds a handler to an interrupt line.
func (b *Builder) BindInterrupt(
	line kern.InterruptNum,
	handler func(k *kern.Kernel),
	enabledAtBoot bool,
) {
	b.mustBeOpen()
	b.interrupts = append(b.interrupts, kern.InterruptBinding{
		Line:          line,
		Handler:       handler,
		EnabledAtBoot: enabledAtBoot,
	})
}

// AddStartupHook registers a hook to run once during the startup
// sequence, in registration order, and returns its identity.
func (b *Builder) AddStartupHook(hook func(k *kern.Kernel)) kern.StartupHookID {
	b.mustBeOpen()
	b.hooks = append(b.hooks, kern.StartupHookAttr{Hook: hook})

	ptr := uintptr(0)
	if hook != nil {
		ptr = reflect.ValueOf(hook).Pointer()
	}
	b.hookPtrs = append(b.hookPtrs, ptr)

	return kern.StartupHookID(len(b.hooks) - 1)
}

// Finalize validates the accumulated declarations and computes the
// object table. It returns every violated constraint joined into one
// error; a failing configuration produces no table at all.
func (b *Builder) Finalize() (*kern.ObjectTable, error) {
	b.mustBeOpen()
	b.finalized = true

	var errs []error

	spec := kern.ObjectTableSpec{
		PriorityLevels: b.priorityLevels,
		HunkPoolAlign:  1,
	}

	errs = append(errs, b.checkHunks()...)
	errs = append(errs, b.checkEventGroups(&spec)...)
	errs = append(errs, b.checkInterrupts(&spec)...)
	errs = append(errs, b.checkStartupHooks(&spec)...)

	// Task validation may append auto stack hunks, so it runs before
	// the pool layout is computed.
	errs = append(errs, b.checkTasks(&spec)...)
	errs = append(errs, b.layOutHunks(&spec)...)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return kern.NewObjectTable(spec), nil
}

// MustFinalize is Finalize for configurations that are expected to be
// valid, panicking on any violated constraint.
func (b *Builder) MustFinalize() *kern.ObjectTable {
	table, err := b.Finalize()
	if err != nil {
		log.Panicf("invalid configuration:\n%v", err)
	}
	return table
}

func (b *Builder) mustBeOpen() {
	if b.finalized {
		log.Panic("configuration already finalized")
	}
}

func (b *Builder) checkTasks(spec *kern.ObjectTableSpec) []error {
	var errs []error

	declaredHunks := len(b.hunks)

	for i, decl := range b.tasks {
		if !decl.defined {
			errs = append(errs, Error{
				Kind:       kern.ObjectTask,
				ID:         i,
				Constraint: "identity reserved but never defined",
			})
			continue
		}

		d := decl.desc

		if d.start == nil {
			errs = append(errs, Error{
				Kind:       kern.ObjectTask,
				ID:         i,
				Constraint: "no entry function",
			})
		}

		if !d.prioritySet {
			errs = append(errs, Error{
				Kind:       kern.ObjectTask,
				ID:         i,
				Constraint: "no priority",
			})
		} else if d.priority < 0 || int(d.priority) >= b.priorityLevels {
			errs = append(errs, Error{
				Kind:       kern.ObjectTask,
				ID:         i,
				Constraint: "priority outside the configured range",
			})
		}

		stack := d.stackHunk
		switch {
		case d.stackHunkSet && d.stackSize != 0:
			errs = append(errs, Error{
				Kind:       kern.ObjectTask,
				ID:         i,
				Constraint: "both stack hunk and stack size given",
			})
		case d.stackHunkSet:
			if int(stack) < 0 || int(stack) >= declaredHunks {
				errs = append(errs, Error{
					Kind:       kern.ObjectTask,
					ID:         i,
					Constraint: "stack hunk reference does not resolve",
				})
			}
		default:
			size := d.stackSize
			if size == 0 {
				size = DefaultStackSize
			}
			if size < 0 {
				errs = append(errs, Error{
					Kind:       kern.ObjectTask,
					ID:         i,
					Constraint: "stack size must be positive",
				})
				size = DefaultStackSize
			}
			b.hunks = append(b.hunks, hunkDecl{size: size, align: stackAlign})
			stack = kern.HunkID(len(b.hunks) - 1)
		}

		spec.Tasks = append(spec.Tasks, kern.TaskAttr{
			Name:         d.name,
			Start:        d.start,
			Param:        d.param,
			Priority:     d.priority,
			StackHunk:    stack,
			ActiveAtBoot: d.active,
		})
	}

	return errs
}

func (b *Builder) checkHunks() []error {
	var errs []error

	for i, h := range b.hunks {
		if h.size <= 0 {
			errs = append(errs, Error{
				Kind:       kern.ObjectHunk,
				ID:         i,
				Constraint: "size must be positive",
			})
		}
		if h.align <= 0 || bits.OnesCount(uint(h.align)) != 1 {
			errs = append(errs, Error{
				Kind:       kern.ObjectHunk,
				ID:         i,
				Constraint: "alignment must be a power of two",
			})
		}
	}

	return errs
}

// layOutHunks assigns each hunk an offset in the pool by rounding a
// running length up to each hunk's alignment, then checks the total
// against the memory budget.
func (b *Builder) layOutHunks(spec *kern.ObjectTableSpec) []error {
	offset := 0
	align := 1

	for _, h := range b.hunks {
		if h.size <= 0 || h.align <= 0 || bits.OnesCount(uint(h.align)) != 1 {
			// Already reported by checkHunks; no layout to compute.
			return nil
		}

		offset = (offset + h.align - 1) / h.align * h.align

		spec.Hunks = append(spec.Hunks, kern.HunkLayout{
			Offset: offset,
			Size:   h.size,
			Align:  h.align,
		})

		offset += h.size
		if h.align > align {
			align = h.align
		}
	}

	spec.HunkPoolSize = offset
	spec.HunkPoolAlign = align

	if offset > b.hunkBudget {
		return []error{Error{
			Kind:       kern.ObjectHunk,
			ID:         -1,
			Constraint: "hunk pool exceeds the static memory budget",
		}}
	}

	return nil
}

func (b *Builder) checkEventGroups(spec *kern.ObjectTableSpec) []error {
	var errs []error

	for i, decl := range b.eventGroups {
		if !decl.defined {
			errs = append(errs, Error{
				Kind:       kern.ObjectEventGroup,
				ID:         i,
				Constraint: "identity reserved but never defined",
			})
			continue
		}

		spec.EventGroups = append(spec.EventGroups, kern.EventGroupAttr{
			Name:        decl.name,
			InitialBits: decl.initial,
		})
	}

	return errs
}

func (b *Builder) checkInterrupts(spec *kern.ObjectTableSpec) []error {
	var errs []error

	seen := make(map[kern.InterruptNum]bool)
	for i, binding := range b.interrupts {
		if binding.Handler == nil {
			errs = append(errs, Error{
				Kind:       kern.ObjectInterruptLine,
				ID:         i,
				Constraint: "no handler function",
			})
		}
		if seen[binding.Line] {
			errs = append(errs, Error{
				Kind:       kern.ObjectInterruptLine,
				ID:         i,
				Constraint: "line already bound",
			})
		}
		seen[binding.Line] = true
	}

	if len(errs) > 0 {
		return errs
	}

	spec.Interrupts = append(spec.Interrupts, b.interrupts...)
	return nil
}

func (b *Builder) checkStartupHooks(spec *kern.ObjectTableSpec) []error {
	var errs []error

	seen := make(map[uintptr]bool)
	for i, hook := range b.hooks {
		if hook.Hook == nil {
			errs = append(errs, Error{
				Kind:       kern.ObjectStartupHook,
				ID:         i,
				Constraint: "no hook function",
			})
			continue
		}

		ptr := b.hookPtrs[i]
		if seen[ptr] {
			errs = append(errs, Error{
				Kind:       kern.ObjectStartupHook,
				ID:         i,
				Constraint: "hook registered twice",
			})
		}
		seen[ptr] = true
	}

	if len(errs) > 0 {
		return errs
	}

	spec.StartupHooks = append(spec.StartupHooks, b.hooks...)
	return nil
}
