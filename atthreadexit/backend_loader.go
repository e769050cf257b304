package atthreadexit

// loaderBackend mirrors the ELF dynamic-loader hook (__cxa_thread_atexit):
// the scope's first registration arms the exit routine, later ones just push
// onto the thread-local list, and the drain keeps going for as long as
// finalizers enqueue further hooks, with no re-arm bound. On a platform whose
// loader lacks the weak entry point, every registration is refused.
type loaderBackend struct {
	// hookPresent is the weak-symbol probe: false models a loader without
	// the thread-exit entry point, where this scope mechanism cannot exist.
	hookPresent bool
}

func (b *loaderBackend) name() string { return "loader" }

func (b *loaderBackend) register(s *scope, h *Hook) bool {
	if !b.hookPresent {
		return false
	}
	s.push(h)
	return true
}

func (b *loaderBackend) closed(s *scope) bool {
	// The loader hook never closes while the scope lives.
	return !b.hookPresent
}

func (b *loaderBackend) drain(s *scope) {
	if !b.hookPresent {
		return
	}
	s.drainAll()
}
