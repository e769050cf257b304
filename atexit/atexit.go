// Package atexit holds the process-exit finalizer registry.
//
// Finalizers are intrusive Hook nodes pushed onto a single list and drained
// in reverse registration order when the process shuts down in an orderly
// fashion (staticinit.Exit, staticinit.Shutdown, or a converted signal).
// Registration returning true guarantees the hook will run at that drain;
// false means the object stays permanently un-finalized: an explicit
// degraded mode, never a fault. Nothing runs across abnormal termination
// (kill, abort, os.Exit called directly).
package atexit

import (
	"sync"

	"github.com/harri2012/static-init/internal/diag"
)

// Hook is one pending process-exit finalizer. Its address is stable for the
// whole process lifetime (it lives inside the declaring object), and it owns
// its intrusive next slot: a Hook resides in at most one registry, ever.
type Hook struct {
	run        func()
	next       *Hook
	registered bool
	done       bool
}

// NewHook returns a Hook that will invoke fn when drained.
func NewHook(fn func()) *Hook {
	return &Hook{run: fn}
}

// Done reports whether the hook's finalizer has run.
func (h *Hook) Done() bool {
	return h.done
}

// Registry is a process-exit finalizer list. The zero value is ready to use.
type Registry struct {
	mu     sync.Mutex
	head   *Hook
	closed bool
}

// Register enqueues h. It returns false, and the caller must treat the
// object as permanently un-finalized, once the registry is closed, or if h
// was already registered. Hooks registered while a drain is running are
// picked up by that same drain.
func (r *Registry) Register(h *Hook) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || h.registered {
		return false
	}
	h.registered = true
	h.next = r.head
	r.head = h
	return true
}

// Closed reports whether the registry will never accept another hook.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Drain runs every pending hook, newest first, and keeps draining hooks that
// finalizers register during their own execution. The registry is closed
// once the list is observed empty; later Register calls fail. A panicking
// finalizer is recovered and logged, never aborting the drain. Draining an
// already-closed registry is a no-op.
func (r *Registry) Drain() {
	r.mu.Lock()
	for {
		h := r.head
		if h == nil {
			r.closed = true
			r.mu.Unlock()
			return
		}
		r.head = h.next
		h.next = nil
		r.mu.Unlock()

		runHook(h)

		r.mu.Lock()
	}
}

func runHook(h *Hook) {
	defer func() {
		h.done = true
		if v := recover(); v != nil {
			diag.Logger().Error().
				Interface("panic", v).
				Msg("process-exit finalizer panicked")
		}
	}()
	h.run()
}

// Default is the process-wide registry used by the package-level helpers.
var Default Registry

// Register enqueues h on the default registry.
func Register(h *Hook) bool { return Default.Register(h) }

// Closed reports whether the default registry is closed.
func Closed() bool { return Default.Closed() }

// Drain drains the default registry. Driven by staticinit.Shutdown; only
// call it directly when managing shutdown by hand.
func Drain() { Default.Drain() }
