// Package kern implements a statically configured real-time kernel core.
// Every kernel object is declared through the config package before the
// system starts; the kernel itself never allocates objects at runtime.
package kern

import "errors"

// Ticks is the kernel time unit, counted by the port's monotonic source.
type Ticks uint64

// WaitForever makes a blocking operation wait without a timeout.
const WaitForever Ticks = ^Ticks(0)

// TaskID identifies a configured task.
type TaskID int

// EventGroupID identifies a configured event group.
type EventGroupID int

// HunkID identifies a configured hunk.
type HunkID int

// StartupHookID identifies a configured startup hook.
type StartupHookID int

// InterruptNum is the number of an interrupt line exposed by the port.
type InterruptNum int

// Priority is a task priority. Lower values take precedence. The valid
// range is fixed at configuration time.
type Priority int

// ObjectKind tells kernel object kinds apart in errors and reports.
type ObjectKind int

// The kinds of objects that a configuration can declare.
const (
	ObjectTask ObjectKind = iota
	ObjectEventGroup
	ObjectHunk
	ObjectInterruptLine
	ObjectStartupHook
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectTask:
		return "task"
	case ObjectEventGroup:
		return "event group"
	case ObjectHunk:
		return "hunk"
	case ObjectInterruptLine:
		return "interrupt line"
	case ObjectStartupHook:
		return "startup hook"
	}
	return "unknown object"
}

// ErrTimeout reports that a blocking operation was woken by its timeout
// rather than by its condition.
var ErrTimeout = errors.New("wait timed out")

// ErrBadState reports that an operation is not applicable to the target
// object's current state, such as activating a task that is not dormant.
var ErrBadState = errors.New("object in incompatible state")

// ErrDeadlock reports that the system quiesced while tasks were still
// waiting with no tick or interrupt left that could wake them.
var ErrDeadlock = errors.New("all runnable tasks exhausted while tasks wait")
