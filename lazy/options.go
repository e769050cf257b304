package lazy

import "github.com/harri2012/static-init/once"

// finalizeMode selects where a declared recoverer is registered.
type finalizeMode uint8

const (
	// finalizeNone: no recoverer declared.
	finalizeNone finalizeMode = iota
	// finalizeAuto: recoverer declared without an explicit scope; resolved
	// at construction (priority objects pair with a shutdown slot at their
	// own priority, plain objects with the process-exit registry).
	finalizeAuto
	// finalizeAtExit: process-exit registry.
	finalizeAtExit
	// finalizeAtPrio: priority shutdown slot.
	finalizeAtPrio
	// finalizeAtThreadExit: thread-scope registry.
	finalizeAtThreadExit
)

// lazyOptions holds configuration for a Lazy or LocalLazy instance.
type lazyOptions[T any] struct {
	name                string
	recoverer           func(*T)
	mode                finalizeMode
	prio                uint16
	cycle               once.CyclePolicy
	retryAfterPanic     bool
	initWithoutFinalize bool
	recoverOnRefusal    bool
}

// Option configures a Lazy or LocalLazy instance.
type Option[T any] interface {
	applyLazy(*lazyOptions[T])
}

// optionImpl implements Option.
type optionImpl[T any] struct {
	applyLazyFunc func(*lazyOptions[T])
}

func (o *optionImpl[T]) applyLazy(opts *lazyOptions[T]) {
	o.applyLazyFunc(opts)
}

// WithName sets the object name used in failure diagnostics.
func WithName[T any](name string) Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.name = name
	}}
}

// WithFinalizer declares a recoverer to run at the object's end of life.
// For process-wide objects the default scope is the process-exit registry
// (or, for priority-declared objects, a shutdown slot of the same
// priority); for goroutine-confined objects it is the thread-scope
// registry. WithFinalizeAt and WithThreadFinalizer override the scope.
func WithFinalizer[T any](recoverer func(*T)) Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.recoverer = recoverer
		if opts.mode == finalizeNone {
			opts.mode = finalizeAuto
		}
	}}
}

// WithFinalizeAt registers the recoverer in the shutdown slot of the given
// priority instead of the default scope.
func WithFinalizeAt[T any](prio uint16) Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.mode = finalizeAtPrio
		opts.prio = prio
	}}
}

// WithThreadFinalizer registers the recoverer in the calling goroutine's
// thread scope instead of the default scope. Registration can be refused
// when no scope is active; see WithInitWithoutFinalize and
// WithRecoverOnRefusal for the refusal policies.
func WithThreadFinalizer[T any]() Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.mode = finalizeAtThreadExit
	}}
}

// WithCyclePolicy sets how a cyclic first access is resolved.
func WithCyclePolicy[T any](policy once.CyclePolicy) Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.cycle = policy
	}}
}

// WithRetryAfterPanic opts into re-running the generator on the next access
// after a panicked attempt, instead of treating the panic as terminal.
func WithRetryAfterPanic[T any]() Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.retryAfterPanic = true
	}}
}

// WithInitWithoutFinalize controls what a definitive finalize-registration
// refusal does to the attempt. When enabled the constructed value is exposed
// anyway, permanently un-finalized; when disabled (the default) the refusal
// fails the attempt.
func WithInitWithoutFinalize[T any](enabled bool) Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.initWithoutFinalize = enabled
	}}
}

// WithRecoverOnRefusal runs the recoverer immediately when finalize
// registration is definitively refused, instead of never. The recoverer
// still runs at most once overall: either at the registered scope exit or
// on refusal, never both.
func WithRecoverOnRefusal[T any]() Option[T] {
	return &optionImpl[T]{func(opts *lazyOptions[T]) {
		opts.recoverOnRefusal = true
	}}
}

// resolveOptions applies Option instances over the defaults.
func resolveOptions[T any](opts []Option[T]) *lazyOptions[T] {
	cfg := &lazyOptions[T]{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyLazy(cfg)
	}
	return cfg
}
