// Package atthreadexit holds per-thread-scope finalizer registries.
//
// Go does not expose OS thread exit, so a "thread scope" is a pinned
// goroutine: [Run] locks the calling goroutine to its OS thread, installs a
// registry for it, runs the given function, and drains the registry when the
// function returns, including by panic, in reverse registration order. A finalizer that registers further hooks during its
// own execution causes those to run too, before the scope truly ends.
//
// The one real exit hook per scope is installed by a platform backend; the
// backends differ in how often the drain may be re-armed and when
// registration becomes permanently refused. Registration returning false
// means the object stays un-finalized: an explicit degraded mode, never a
// fault.
package atthreadexit

import "github.com/harri2012/static-init/internal/diag"

// Status is the lifecycle of one thread-exit hook.
type Status uint8

const (
	// StatusNotRegistered: the hook has not been offered to a registry.
	StatusNotRegistered Status = iota
	// StatusRegistrating: registration is running and guaranteed to succeed.
	StatusRegistrating
	// StatusRegistered: the hook is guaranteed to run at scope exit.
	StatusRegistered
	// StatusExecuting: the hook's finalizer is running.
	StatusExecuting
	// StatusExecuted: the hook's finalizer has run.
	StatusExecuted
	// StatusRegistrationClosed: registration was refused and will never be
	// retried; the hook will never run.
	StatusRegistrationClosed
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusNotRegistered:
		return "NotRegistered"
	case StatusRegistrating:
		return "Registrating"
	case StatusRegistered:
		return "Registered"
	case StatusExecuting:
		return "Executing"
	case StatusExecuted:
		return "Executed"
	case StatusRegistrationClosed:
		return "RegistrationClosed"
	default:
		return "Unknown"
	}
}

// Hook is one pending thread-exit finalizer. It is intrusively chained: the
// hook owns its next slot and resides in at most one registry, within the
// thread scope that registered it. Its address must stay stable for the
// scope's lifetime, which is automatic here since hooks live inside the
// declaring object. All fields are confined to the owning thread scope; no
// synchronization.
type Hook struct {
	run    func()
	next   *Hook
	status Status
}

// NewHook returns a Hook that will invoke fn when its scope drains.
func NewHook(fn func()) *Hook {
	return &Hook{run: fn}
}

// Status returns the hook's current lifecycle state. Only meaningful on the
// owning thread scope's goroutine.
func (h *Hook) Status() Status { return h.status }

func (h *Hook) takeNext() *Hook {
	n := h.next
	h.next = nil
	return n
}

// execute runs the finalizer exactly once. Panics are recovered and logged;
// a failing finalizer must not abort the drain of its scope.
func (h *Hook) execute() {
	h.status = StatusExecuting
	defer func() {
		h.status = StatusExecuted
		if v := recover(); v != nil {
			diag.Logger().Error().
				Interface("panic", v).
				Msg("thread-exit finalizer panicked")
		}
	}()
	h.run()
}
