// Package once implements the algorithms that convert concurrent or
// reentrant first-access races into exactly one successful initialization.
//
// Three variants cover the module's needs:
//
//   - [Once]: process-wide, atomic Phase word plus a spin-then-block gate.
//   - [LocalOnce]: confined to a single goroutine, no atomics at all.
//   - [QuasiOnce]: hybrid eager-or-lazy, driven by a priority startup slot
//     with a lazy fallback; whichever accessor arrives first decides.
//
// The sole piece of mutable state shared across threads is the Phase word;
// it is manipulated purely with atomic operations, never a general-purpose
// lock. Reentrancy (a thread re-entering its own in-progress initializer,
// directly or transitively) is detected and resolved per a configurable
// [CyclePolicy], never left to deadlock.
package once

import (
	"sync/atomic"

	"github.com/harri2012/static-init/internal/diag"
	"github.com/harri2012/static-init/internal/goid"
	"github.com/harri2012/static-init/phase"
)

// CyclePolicy selects how a cyclic access (a goroutine re-entering an
// object's own in-progress initializer) is resolved.
type CyclePolicy uint8

const (
	// CycleReport resolves the reentrant call by returning a *CycleError.
	CycleReport CyclePolicy = iota
	// CycleSkip resolves the reentrant call by proceeding with a
	// placeholder value; the InitSkipped bit records the degradation.
	CycleSkip
)

// Request describes one initialization attempt against a Once.
//
// Init runs at most once per guarded object, ever, unless ShouldProceed
// explicitly opts into retrying a failed object.
type Request struct {
	// ShouldProceed decides, given a settled non-zero Phase from a previous
	// attempt, whether another attempt is warranted. Nil means
	// [ProceedFromNew]: attempt only from the pristine state.
	ShouldProceed func(phase.Phase) bool

	// Init constructs the value. A panic escaping Init is recorded in the
	// Phase and re-signaled to every current and future waiter.
	Init func()

	// Register attempts finalize registration, returning true on a
	// guarantee that the finalizer will run. Nil means no finalize was
	// requested.
	Register func() bool

	// OnRegistrationRefused runs (while the attempt still holds the lock)
	// if Register returned false, giving the caller its one chance to
	// recover the constructed value.
	OnRegistrationRefused func()

	// InitWithoutFinalize, when set, exposes the initialized data even if
	// finalize registration is refused ("initialized-without-finalize").
	// When unset, a refusal fails the whole attempt.
	InitWithoutFinalize bool

	// Cycle is the cyclic-access policy for this attempt.
	Cycle CyclePolicy

	// Name and Source are diagnostic metadata (object name, declaration
	// site) used only for failure messages.
	Name   string
	Source string
}

// ProceedFromNew is the default retry predicate: attempt initialization only
// if no previous attempt ran. Panicked and refused objects permanently block
// retry.
func ProceedFromNew(p phase.Phase) bool { return p == 0 }

// ProceedRetryPanicked additionally opts into retrying an object whose
// previous generator panicked.
func ProceedRetryPanicked(p phase.Phase) bool {
	return p == 0 || (p.InitPanicked() && !p.Initialized())
}

// inProgressBits are cleared when an attempt settles.
const inProgressBits = phase.Locked | phase.Initializing | phase.Registrating | phase.Parked

// Once is the process-wide exactly-once engine guarding one object.
//
// The zero value is ready to use. A Once must not be copied after first use.
type Once struct {
	word phase.Word
	// owner is the goroutine id of the in-flight initializer, for cyclic
	// access detection. Zero when no attempt holds the lock.
	owner atomic.Int64
	// failure is the settled failure, written by the losing attempt's
	// winner before the Phase store that publishes it.
	failure atomic.Pointer[PanicError]
	gate    gatePointer
}

// Phase returns the current Phase. The load carries acquire semantics: once
// it reports Initialized, the guarded data is safe to read.
func (o *Once) Phase() phase.Phase {
	return o.word.Load()
}

// InitOrWait drives the state machine for one guarded object.
//
// The winner of the opening compare-and-swap runs req.Init and, if
// requested, finalize registration. Losing concurrent callers park until the
// winner settles. A losing reentrant call from the goroutine already holding
// the lock is resolved per req.Cycle instead of deadlocking.
//
// The return value reflects the settled outcome: nil once the data is
// readable (including the skip-placeholder resolution), a *PanicError if the
// generator or registration panicked, a *CycleError for a reported cycle, or
// ErrRegistrationRefused when refusal was configured to fail the attempt.
func (o *Once) InitOrWait(req Request) error {
	for {
		p := o.word.Load()

		if p.Initialized() {
			return nil
		}

		if p.InProgress() {
			if o.owner.Load() == goid.Current() {
				return o.resolveCycle(req)
			}
			o.wait()
			continue
		}

		if p != 0 {
			proceed := req.ShouldProceed
			if proceed == nil {
				proceed = ProceedFromNew
			}
			if !proceed(p) {
				return o.settledError(p)
			}
		}

		if !o.word.CompareAndSwap(p, p|phase.Locked|phase.Initializing) {
			continue
		}
		return o.attempt(req)
	}
}

// resolveCycle handles a reentrant call per policy. Only the inner call is
// affected; the outer initializer keeps running.
func (o *Once) resolveCycle(req Request) error {
	switch req.Cycle {
	case CycleSkip:
		o.word.SetBits(phase.InitSkipped)
		diag.Logger().Debug().
			Str("object", req.Name).
			Str("source", req.Source).
			Msg("cyclic access resolved by skip")
		return nil
	default:
		diag.Logger().Debug().
			Str("object", req.Name).
			Str("source", req.Source).
			Msg("cyclic access reported")
		return &CycleError{Name: req.Name}
	}
}

// settledError maps a settled failure Phase to the error every caller of the
// failed object observes.
func (o *Once) settledError(p phase.Phase) error {
	switch {
	case p.InitPanicked(), p.RegistrationPanicked():
		return o.failure.Load()
	case p.RegistrationRefused():
		return ErrRegistrationRefused
	default:
		// Settled but neither readable nor failed (e.g. a bare skip left by
		// an aborted outer attempt): treat as failed-by-panic upstream.
		if err := o.failure.Load(); err != nil {
			return err
		}
		return ErrRegistrationRefused
	}
}

// attempt runs as the winner holding Locked|Initializing.
func (o *Once) attempt(req Request) error {
	o.owner.Store(goid.Current())

	if err := o.runInit(req); err != nil {
		o.settle(phase.InitPanicked)
		return err
	}

	if req.Register == nil {
		o.settle(phase.Initialized)
		return nil
	}

	o.word.SetBits(phase.Registrating)
	ok, err := o.runRegister(req)
	switch {
	case err != nil:
		o.settle(phase.RegistrationPanicked)
		return err
	case ok:
		o.settle(phase.Initialized | phase.Registered)
		return nil
	case req.InitWithoutFinalize:
		if req.OnRegistrationRefused != nil {
			req.OnRegistrationRefused()
		}
		// Degraded but usable: initialized-without-finalize.
		diag.Logger().Debug().
			Str("object", req.Name).
			Str("source", req.Source).
			Msg("finalize registration refused; exposing data without finalize")
		o.settle(phase.Initialized | phase.RegistrationRefused)
		return nil
	default:
		if req.OnRegistrationRefused != nil {
			req.OnRegistrationRefused()
		}
		diag.Logger().Debug().
			Str("object", req.Name).
			Str("source", req.Source).
			Msg("finalize registration refused; attempt failed")
		o.settle(phase.RegistrationRefused)
		return ErrRegistrationRefused
	}
}

// runInit invokes the generator, converting an escaping panic into the
// recorded failure.
func (o *Once) runInit(req Request) (err error) {
	defer func() {
		if v := recover(); v != nil {
			pe := &PanicError{Value: v, Name: req.Name, Stage: "init"}
			o.failure.Store(pe)
			diag.Logger().Error().
				Str("object", req.Name).
				Str("source", req.Source).
				Interface("panic", v).
				Msg("generator panicked")
			err = pe
		}
	}()
	req.Init()
	return nil
}

// runRegister invokes finalize registration with the same panic capture.
func (o *Once) runRegister(req Request) (ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			pe := &PanicError{Value: v, Name: req.Name, Stage: "register"}
			o.failure.Store(pe)
			diag.Logger().Error().
				Str("object", req.Name).
				Str("source", req.Source).
				Interface("panic", v).
				Msg("finalize registration panicked")
			ok, err = false, pe
		}
	}()
	return req.Register(), nil
}

// settle publishes the attempt's outcome: the in-progress bits are cleared,
// the outcome bits added, the owner released, and every parked waiter woken.
// Failure bits accumulated by earlier attempts persist; transitions are
// monotonic outside the in-progress window.
func (o *Once) settle(add phase.Phase) {
	o.owner.Store(0)
	for {
		cur := o.word.Load()
		next := (cur &^ inProgressBits) | add
		if o.word.CompareAndSwap(cur, next) {
			break
		}
	}
	o.wake()
}
