package lazy

import (
	"github.com/harri2012/static-init/atthreadexit"
	"github.com/harri2012/static-init/once"
	"github.com/harri2012/static-init/phase"
)

// LocalLazy is the goroutine-confined counterpart of [Lazy]: no atomics, no
// parking, reentrancy tracked by a plain depth counter. It must only ever be
// touched by one goroutine.
//
// A recoverer declared without an explicit scope registers in the owning
// goroutine's thread scope, so it runs when [atthreadexit.Run] returns.
type LocalLazy[T any] struct {
	once   once.LocalOnce
	val    T
	gen    func() T
	cfg    *lazyOptions[T]
	source string
}

// NewLocal returns a LocalLazy whose value is constructed by gen on first
// access by the owning goroutine.
func NewLocal[T any](gen func() T, opts ...Option[T]) *LocalLazy[T] {
	l := &LocalLazy[T]{
		gen:    gen,
		cfg:    resolveOptions(opts),
		source: callerSource(),
	}
	if l.cfg.mode == finalizeAuto {
		l.cfg.mode = finalizeAtThreadExit
	}
	return l
}

// Get returns the value, initializing it first if necessary. It panics with
// the settled failure if the object cannot be made readable.
func (l *LocalLazy[T]) Get() *T {
	v, err := l.TryGet()
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet is Get with the failure returned instead of panicked.
func (l *LocalLazy[T]) TryGet() (*T, error) {
	if l.once.Phase().Initialized() {
		return &l.val, nil
	}
	if err := l.once.InitOrWait(l.request()); err != nil {
		return nil, err
	}
	return &l.val, nil
}

// Value returns the value cell without any life-cycle check.
func (l *LocalLazy[T]) Value() *T { return &l.val }

// Phase returns the object's current life-cycle Phase.
func (l *LocalLazy[T]) Phase() phase.Phase { return l.once.Phase() }

func (l *LocalLazy[T]) request() once.Request {
	req := once.Request{
		Init:                func() { l.val = l.gen() },
		Cycle:               l.cfg.cycle,
		InitWithoutFinalize: l.cfg.initWithoutFinalize,
		Name:                l.cfg.name,
		Source:              l.source,
	}
	if l.cfg.retryAfterPanic {
		req.ShouldProceed = once.ProceedRetryPanicked
	}
	if l.cfg.recoverer != nil {
		req.Register = l.registerFinalizer
		if l.cfg.recoverOnRefusal {
			req.OnRegistrationRefused = l.finalizeNow
		}
	}
	return req
}

func (l *LocalLazy[T]) registerFinalizer() bool {
	return atthreadexit.Register(atthreadexit.NewHook(l.finalizeNow))
}

func (l *LocalLazy[T]) finalizeNow() {
	l.once.Finalize(func() { l.cfg.recoverer(&l.val) })
}
