package atthreadexit

// unsupportedBackend is the documented always-fails fallback for targets
// with no thread-exit facility at all: registration always refused,
// registration always closed, nothing ever drained.
type unsupportedBackend struct{}

func (b *unsupportedBackend) name() string { return "unsupported" }

func (b *unsupportedBackend) register(s *scope, h *Hook) bool { return false }

func (b *unsupportedBackend) closed(s *scope) bool { return true }

func (b *unsupportedBackend) drain(s *scope) {}
