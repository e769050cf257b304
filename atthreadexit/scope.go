package atthreadexit

import (
	"runtime"
	"sync"

	"github.com/harri2012/static-init/internal/diag"
	"github.com/harri2012/static-init/internal/goid"
)

// scope is one thread scope's registry: a head pointer to an intrusive
// singly linked list of pending hooks, most recent first. Every field is
// confined to the owning goroutine; the only shared structure is the scopes
// map used to find the registry from registration sites.
type scope struct {
	head *Hook
	// iterations counts successful re-arms of the exit routine (the key
	// backend's bounded resource).
	iterations int
	// done marks a scope whose one drain callback already fired (the
	// callback backend's terminal flag).
	done bool
	gid  int64
	tid  int // OS thread id where available, diagnostics only
}

// take detaches and returns the whole pending list head.
func (s *scope) take() *Hook {
	h := s.head
	s.head = nil
	return h
}

// push prepends h, chaining the previous list behind it.
func (s *scope) push(h *Hook) {
	h.next = s.take()
	s.head = h
}

// drainAll runs pending hooks most-recent-first. A hook that registers
// further hooks while executing re-populates the registry; those are picked
// up once the current chain is exhausted, so the drain keeps going until the
// scope is truly empty.
func (s *scope) drainAll() {
	h := s.take()
	for h != nil {
		h.execute()
		next := h.takeNext()
		if next == nil {
			next = s.take()
		}
		h = next
	}
}

var scopes sync.Map // goroutine id -> *scope

func currentScope() *scope {
	if v, ok := scopes.Load(goid.Current()); ok {
		return v.(*scope)
	}
	return nil
}

// Run executes fn inside a thread scope: the goroutine is locked to its OS
// thread for the duration, and hooks registered by fn (or anything it calls)
// drain when fn returns, including by panic. Nested Run on the same
// goroutine reuses the enclosing scope; the drain happens at the outermost
// return.
func Run(fn func()) {
	gid := goid.Current()
	if _, ok := scopes.Load(gid); ok {
		fn()
		return
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s := &scope{gid: gid, tid: osThreadID()}
	scopes.Store(gid, s)
	diag.Logger().Debug().
		Int64("goroutine", gid).
		Int("thread", s.tid).
		Msg("thread scope opened")

	defer func() {
		defer scopes.Delete(gid)
		active.drain(s)
		diag.Logger().Debug().
			Int64("goroutine", gid).
			Msg("thread scope drained")
	}()
	fn()
}

// Go runs fn under [Run] on a fresh goroutine; the returned channel closes
// after the scope fully drained.
func Go(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(fn)
	}()
	return done
}

// Register enqueues h with the current thread scope. True guarantees h runs
// at scope exit, in reverse order of registration relative to other hooks of
// the same scope. False (outside any scope, after the backend closed
// registration, or for a hook that was already offered) means h will never
// run.
func Register(h *Hook) bool {
	if h.status != StatusNotRegistered {
		return false
	}
	s := currentScope()
	if s == nil || active.closed(s) {
		h.status = StatusRegistrationClosed
		return false
	}
	h.status = StatusRegistrating
	if !active.register(s, h) {
		h.status = StatusRegistrationClosed
		return false
	}
	h.status = StatusRegistered
	return true
}

// RegistrationClosed reports whether the calling goroutine's scope (or lack
// of one) will refuse every future registration.
func RegistrationClosed() bool {
	s := currentScope()
	if s == nil {
		return true
	}
	return active.closed(s)
}
