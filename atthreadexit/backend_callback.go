package atthreadexit

// callbackBackend mirrors the loader-invoked callback array (Windows-class
// systems): a function pointer in a dedicated linker-ordered section runs at
// thread detach, drains the thread-local list (still picking up hooks that
// finalizers enqueue mid-drain), and then sets a per-scope done flag so
// later registration attempts are rejected rather than silently dropped.
type callbackBackend struct{}

func (b *callbackBackend) name() string { return "callback" }

func (b *callbackBackend) register(s *scope, h *Hook) bool {
	if s.done {
		return false
	}
	s.push(h)
	return true
}

func (b *callbackBackend) closed(s *scope) bool {
	return s.done
}

func (b *callbackBackend) drain(s *scope) {
	if s.done {
		return
	}
	s.drainAll()
	s.done = true
}
