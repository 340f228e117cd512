package kern

import "log"

// Boot runs the startup sequence: every configured startup hook once, in
// declaration order, followed by activation of tasks marked active at
// boot. Hooks run with the scheduler not yet started, so nothing they
// make ready is dispatched before Boot finishes; the port performs the
// first scheduling decision after Boot returns.
func (k *Kernel) Boot() {
	if k.booted {
		log.Panic("kernel booted twice")
	}

	for i := range k.table.startupHooks {
		k.InvokeHook(HookCtx{
			Kernel: k,
			Pos:    HookPosStartupHook,
			Now:    k.port.TickCount(),
			Detail: StartupHookID(i),
		})

		k.table.startupHooks[i].Hook(k)
	}

	for i := range k.tcbs {
		t := &k.tcbs[i]
		if t.attr.ActiveAtBoot && t.state == Dormant {
			if err := k.ActivateTask(t.id); err != nil {
				log.Panicf("activating task %q at boot: %v", t.attr.Name, err)
			}
		}
	}

	k.booted = true
}

// Booted reports whether the startup sequence has completed.
func (k *Kernel) Booted() bool {
	return k.booted
}
