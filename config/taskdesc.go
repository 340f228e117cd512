package config

import "github.com/sarchlab/keron/kern"

// A TaskDesc describes a task to declare. Descriptors are assembled with
// chained With methods and passed to Builder.AddTask or
// Builder.DefineTask.
type TaskDesc struct {
	name         string
	start        func(k *kern.Kernel, param any)
	param        any
	priority     kern.Priority
	prioritySet  bool
	stackSize    int
	stackHunk    kern.HunkID
	stackHunkSet bool
	active       bool
}

// MakeTaskDesc creates a task descriptor with the given name.
func MakeTaskDesc(name string) TaskDesc {
	return TaskDesc{name: name}
}

// WithStart sets the task's entry function.
func (d TaskDesc) WithStart(start func(k *kern.Kernel, param any)) TaskDesc {
	d.start = start
	return d
}

// WithParam sets the parameter passed to the entry function.
func (d TaskDesc) WithParam(param any) TaskDesc {
	d.param = param
	return d
}

// WithPriority sets the task's priority. Lower values run first.
func (d TaskDesc) WithPriority(p kern.Priority) TaskDesc {
	d.priority = p
	d.prioritySet = true
	return d
}

// WithStackSize asks the configuration to carve a stack hunk of the
// given size for this task.
func (d TaskDesc) WithStackSize(size int) TaskDesc {
	d.stackSize = size
	return d
}

// WithStackHunk uses an explicitly declared hunk as the task's stack.
func (d TaskDesc) WithStackHunk(id kern.HunkID) TaskDesc {
	d.stackHunk = id
	d.stackHunkSet = true
	return d
}

// ActiveAtBoot makes the startup sequence activate the task.
func (d TaskDesc) ActiveAtBoot() TaskDesc {
	d.active = true
	return d
}
