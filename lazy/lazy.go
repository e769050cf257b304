// Package lazy provides generic lazily-initialized containers whose life
// cycle is tracked by a [phase.Phase] bit set.
//
// A [Lazy] is process-wide: any number of goroutines may race the first
// access and exactly one generator run wins. A [LocalLazy] is confined to a
// single goroutine, trading safety checks for zero atomics. Both support an
// optional recoverer that runs exactly once at the object's end of life,
// registered against the process-exit registry, a priority shutdown slot,
// or the calling goroutine's thread scope.
//
// Read access settles in one of three shapes:
//
//   - Get panics with the settled failure: a late crash at the use site
//     rather than a silent zero value.
//   - TryGet returns the failure as an error.
//   - Value skips the life-cycle check entirely; the caller takes
//     responsibility for reading a value whose recoverer may already have
//     run.
package lazy

import (
	"fmt"
	"runtime"

	"github.com/harri2012/static-init/atexit"
	"github.com/harri2012/static-init/atthreadexit"
	"github.com/harri2012/static-init/internal/diag"
	"github.com/harri2012/static-init/once"
	"github.com/harri2012/static-init/phase"
	"github.com/harri2012/static-init/sections"
)

// Lazy is a process-wide lazily-initialized container for one value of
// type T.
//
// Construct with [New] or [NewAt]; the zero value has no generator and is
// not usable.
type Lazy[T any] struct {
	once   once.QuasiOnce
	val    T
	gen    func() T
	cfg    *lazyOptions[T]
	source string
}

// New returns a Lazy whose value is constructed by gen on first access.
func New[T any](gen func() T, opts ...Option[T]) *Lazy[T] {
	l := &Lazy[T]{
		gen:    gen,
		cfg:    resolveOptions(opts),
		source: callerSource(),
	}
	if l.cfg.mode == finalizeAuto {
		l.cfg.mode = finalizeAtExit
	}
	return l
}

// NewAt returns a priority-declared Lazy: a startup slot of the given
// priority initializes it eagerly during [sections.Startup], and a first
// access before that point initializes it lazily instead. Whichever path
// arrives first wins; the generator runs at most once either way.
//
// A recoverer declared without an explicit scope is registered in the
// shutdown slot of the same priority.
func NewAt[T any](prio uint16, gen func() T, opts ...Option[T]) *Lazy[T] {
	l := &Lazy[T]{
		gen:    gen,
		cfg:    resolveOptions(opts),
		source: callerSource(),
	}
	if l.cfg.mode == finalizeAuto {
		l.cfg.mode = finalizeAtPrio
		l.cfg.prio = prio
	}
	sections.AtStartupPrio(prio, func() {
		if err := l.once.Eager(l.request()); err != nil {
			diag.Logger().Error().
				Str("object", l.cfg.name).
				Str("source", l.source).
				Err(err).
				Msg("eager initialization failed")
		}
	})
	return l
}

// Get returns the value, initializing it first if necessary. It panics with
// the settled failure (*once.PanicError, *once.CycleError, or
// once.ErrRegistrationRefused) if the object cannot be made readable.
//
// The fast path is a single atomic load.
func (l *Lazy[T]) Get() *T {
	if l.once.Phase().Initialized() {
		return &l.val
	}
	v, err := l.TryGet()
	if err != nil {
		panic(err)
	}
	return v
}

// TryGet is Get with the failure returned instead of re-panicked.
func (l *Lazy[T]) TryGet() (*T, error) {
	if l.once.Phase().Initialized() {
		return &l.val, nil
	}
	if err := l.once.InitOrWait(l.request()); err != nil {
		return nil, err
	}
	return &l.val, nil
}

// Value returns the value cell without any life-cycle check. The caller is
// responsible for knowing the object is initialized and its recoverer has
// not run yet.
func (l *Lazy[T]) Value() *T { return &l.val }

// Phase returns the object's current life-cycle Phase.
func (l *Lazy[T]) Phase() phase.Phase { return l.once.Phase() }

// request assembles the once.Request shared by the lazy and eager paths.
func (l *Lazy[T]) request() once.Request {
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

// registerFinalizer registers finalizeNow at the configured scope, returning
// true on a guarantee that it will run.
func (l *Lazy[T]) registerFinalizer() bool {
	switch l.cfg.mode {
	case finalizeAtPrio:
		sections.AtShutdownPrio(l.cfg.prio, l.finalizeNow)
		return true
	case finalizeAtThreadExit:
		return atthreadexit.Register(atthreadexit.NewHook(l.finalizeNow))
	default:
		return atexit.Register(atexit.NewHook(l.finalizeNow))
	}
}

// finalizeNow runs the recoverer through the exactly-once finalize gate, so
// the registered-scope path and the refusal path can never both fire.
func (l *Lazy[T]) finalizeNow() {
	l.once.Finalize(func() { l.cfg.recoverer(&l.val) })
}

// callerSource captures the declaration site two frames up (the New/NewAt
// caller) for failure diagnostics.
func callerSource() string {
	if _, file, line, ok := runtime.Caller(2); ok {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return ""
}
