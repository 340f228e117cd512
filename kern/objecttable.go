package kern

import "log"

// TaskAttr describes one configured task.
type TaskAttr struct {
	Name         string
	Start        func(k *Kernel, param any)
	Param        any
	Priority     Priority
	StackHunk    HunkID
	ActiveAtBoot bool
}

// EventGroupAttr describes one configured event group.
type EventGroupAttr struct {
	Name        string
	InitialBits EventBits
}

// HunkLayout is the placement of one hunk inside the hunk pool. Offsets
// are computed at configuration time and never change afterwards.
type HunkLayout struct {
	Offset int
	Size   int
	Align  int
}

// InterruptBinding statically binds a handler to an interrupt line.
type InterruptBinding struct {
	Line          InterruptNum
	Handler       func(k *Kernel)
	EnabledAtBoot bool
}

// StartupHookAttr describes one configured startup hook.
type StartupHookAttr struct {
	Hook func(k *Kernel)
}

// ObjectTableSpec carries a finalized configuration into NewObjectTable.
// It is produced by config.Builder.Finalize and is not meant to be
// assembled by hand.
type ObjectTableSpec struct {
	PriorityLevels int
	HunkPoolSize   int
	HunkPoolAlign  int

	Tasks        []TaskAttr
	EventGroups  []EventGroupAttr
	Hunks        []HunkLayout
	Interrupts   []InterruptBinding
	StartupHooks []StartupHookAttr
}

// An ObjectTable is the immutable description of every kernel object in
// one system. All identities index into it; nothing is ever added,
// removed, or resized after construction.
type ObjectTable struct {
	priorityLevels int
	hunkPoolSize   int
	hunkPoolAlign  int

	tasks        []TaskAttr
	eventGroups  []EventGroupAttr
	hunks        []HunkLayout
	interrupts   []InterruptBinding
	startupHooks []StartupHookAttr
}

// NewObjectTable freezes a finalized configuration into an ObjectTable.
// The spec is expected to be pre-validated by the configuration builder;
// inconsistencies at this level are treated as contract violations.
func NewObjectTable(spec ObjectTableSpec) *ObjectTable {
	if spec.PriorityLevels <= 0 {
		log.Panic("object table needs at least one priority level")
	}

	for i, t := range spec.Tasks {
		if t.Priority < 0 || int(t.Priority) >= spec.PriorityLevels {
			log.Panicf("task %d priority %d outside configured range", i, t.Priority)
		}

		if int(t.StackHunk) < 0 || int(t.StackHunk) >= len(spec.Hunks) {
			log.Panicf("task %d references undeclared stack hunk %d", i, t.StackHunk)
		}
	}

	t := &ObjectTable{
		priorityLevels: spec.PriorityLevels,
		hunkPoolSize:   spec.HunkPoolSize,
		hunkPoolAlign:  spec.HunkPoolAlign,
		tasks:          append([]TaskAttr(nil), spec.Tasks...),
		eventGroups:    append([]EventGroupAttr(nil), spec.EventGroups...),
		hunks:          append([]HunkLayout(nil), spec.Hunks...),
		interrupts:     append([]InterruptBinding(nil), spec.Interrupts...),
		startupHooks:   append([]StartupHookAttr(nil), spec.StartupHooks...),
	}

	return t
}

// PriorityLevels returns the number of priority levels the scheduler is
// sized for.
func (t *ObjectTable) PriorityLevels() int {
	return t.priorityLevels
}

// NumTasks returns the number of configured tasks.
func (t *ObjectTable) NumTasks() int {
	return len(t.tasks)
}

// Task returns the attributes of one task.
func (t *ObjectTable) Task(id TaskID) TaskAttr {
	if int(id) < 0 || int(id) >= len(t.tasks) {
		log.Panicf("task ID %d out of configured range", id)
	}
	return t.tasks[id]
}

// NumEventGroups returns the number of configured event groups.
func (t *ObjectTable) NumEventGroups() int {
	return len(t.eventGroups)
}

// EventGroupAttr returns the attributes of one event group.
func (t *ObjectTable) EventGroupAttr(id EventGroupID) EventGroupAttr {
	if int(id) < 0 || int(id) >= len(t.eventGroups) {
		log.Panicf("event group ID %d out of configured range", id)
	}
	return t.eventGroups[id]
}

// NumHunks returns the number of configured hunks.
func (t *ObjectTable) NumHunks() int {
	return len(t.hunks)
}

// Hunk returns the layout of one hunk.
func (t *ObjectTable) Hunk(id HunkID) HunkLayout {
	if int(id) < 0 || int(id) >= len(t.hunks) {
		log.Panicf("hunk ID %d out of configured range", id)
	}
	return t.hunks[id]
}

// HunkPoolSize returns the total byte size of the hunk pool.
func (t *ObjectTable) HunkPoolSize() int {
	return t.hunkPoolSize
}

// HunkPoolAlign returns the alignment required for the hunk pool base.
func (t *ObjectTable) HunkPoolAlign() int {
	return t.hunkPoolAlign
}

// Interrupts returns a copy of the configured interrupt bindings.
func (t *ObjectTable) Interrupts() []InterruptBinding {
	return append([]InterruptBinding(nil), t.interrupts...)
}

// NumStartupHooks returns the number of configured startup hooks.
func (t *ObjectTable) NumStartupHooks() int {
	return len(t.startupHooks)
}

// StartupHook returns one startup hook in declaration order.
func (t *ObjectTable) StartupHook(id StartupHookID) StartupHookAttr {
	if int(id) < 0 || int(id) >= len(t.startupHooks) {
		log.Panicf("startup hook ID %d out of configured range", id)
	}
	return t.startupHooks[id]
}
