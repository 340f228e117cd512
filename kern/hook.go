package kern

// HookPos defines the enum of possible hooking positions.
type HookPos struct {
	Name string
}

// HookPosStateChange triggers whenever a task changes scheduling state.
var HookPosStateChange = &HookPos{Name: "StateChange"}

// HookPosDispatch triggers when the scheduler switches the running task.
var HookPosDispatch = &HookPos{Name: "Dispatch"}

// HookPosInterruptEnter triggers before a bound interrupt handler runs.
var HookPosInterruptEnter = &HookPos{Name: "InterruptEnter"}

// HookPosInterruptExit triggers after a bound interrupt handler returns.
var HookPosInterruptExit = &HookPos{Name: "InterruptExit"}

// HookPosTimeout triggers when a task's timeout entry expires.
var HookPosTimeout = &HookPos{Name: "Timeout"}

// HookPosStartupHook triggers before each configured startup hook runs.
var HookPosStartupHook = &HookPos{Name: "StartupHook"}

// HookCtx holds the information about the site where a hook is invoked.
// Hooks run inside the kernel's critical section and therefore must not
// call back into kernel services.
type HookCtx struct {
	Kernel *Kernel
	Pos    *HookPos
	Now    Ticks
	Task   *TCB
	Detail interface{}
}

// StateTransition is the Detail payload for HookPosStateChange.
type StateTransition struct {
	From TaskState
	To   TaskState
}

// Hook is a short piece of program that the kernel invokes at interesting
// points, such as state transitions and dispatches.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// Hookable defines an object that accepts Hooks.
type Hookable interface {
	// AcceptHook registers a hook.
	AcceptHook(hook Hook)
}

// A HookableBase provides some utility function for other types that
// implement the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// InvokeHook triggers the registered Hooks.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
