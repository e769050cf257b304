package atthreadexit

// backend is the platform strategy installing the one real exit hook per
// scope and draining the corresponding registry. Exactly one backend is
// active per build, selected by the default_*.go files; the strategy objects
// themselves are portable so every policy stays testable on every platform.
type backend interface {
	name() string
	// register enqueues h with s, or refuses. s is a live scope.
	register(s *scope, h *Hook) bool
	// closed reports whether s will never accept another hook.
	closed(s *scope) bool
	// drain runs s's pending hooks per the backend's re-arm policy.
	drain(s *scope)
}

// active is fixed per target at build time.
var active backend = defaultBackend()
