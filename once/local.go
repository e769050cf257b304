package once

import (
	"github.com/harri2012/static-init/internal/diag"
	"github.com/harri2012/static-init/phase"
)

// LocalOnce is the thread-confined variant: a single owning goroutine, no
// atomics, no parking. Reentrancy is a plain depth counter.
//
// A LocalOnce must only ever be touched by one goroutine; that confinement
// is the caller's contract, not something this type can enforce.
type LocalOnce struct {
	p       phase.Phase
	depth   int
	failure *PanicError
}

// Phase returns the current Phase.
func (o *LocalOnce) Phase() phase.Phase { return o.p }

// InitOrWait drives the same state machine as [Once.InitOrWait], minus the
// concurrency: there is never anyone to wait for, so the only interesting
// race is the reentrant one.
func (o *LocalOnce) InitOrWait(req Request) error {
	if o.p.Initialized() {
		return nil
	}

	if o.depth > 0 {
		// Reentrant call into our own in-progress initializer.
		switch req.Cycle {
		case CycleSkip:
			o.p |= phase.InitSkipped
			return nil
		default:
			return &CycleError{Name: req.Name}
		}
	}

	if o.p != 0 {
		proceed := req.ShouldProceed
		if proceed == nil {
			proceed = ProceedFromNew
		}
		if !proceed(o.p) {
			return o.settledError()
		}
	}

	o.p |= phase.Locked | phase.Initializing
	o.depth++
	defer func() { o.depth-- }()

	if err := o.runInit(req); err != nil {
		o.settle(phase.InitPanicked)
		return err
	}

	if req.Register == nil {
		o.settle(phase.Initialized)
		return nil
	}

	o.p |= phase.Registrating
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
		o.settle(phase.Initialized | phase.RegistrationRefused)
		return nil
	default:
		if req.OnRegistrationRefused != nil {
			req.OnRegistrationRefused()
		}
		o.settle(phase.RegistrationRefused)
		return ErrRegistrationRefused
	}
}

func (o *LocalOnce) settle(add phase.Phase) {
	o.p = (o.p &^ inProgressBits) | add
}

func (o *LocalOnce) settledError() error {
	switch {
	case o.p.InitPanicked(), o.p.RegistrationPanicked():
		return o.failure
	default:
		return ErrRegistrationRefused
	}
}

func (o *LocalOnce) runInit(req Request) (err error) {
	defer func() {
		if v := recover(); v != nil {
			pe := &PanicError{Value: v, Name: req.Name, Stage: "init"}
			o.failure = pe
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

func (o *LocalOnce) runRegister(req Request) (ok bool, err error) {
	defer func() {
		if v := recover(); v != nil {
			pe := &PanicError{Value: v, Name: req.Name, Stage: "register"}
			o.failure = pe
			err = pe
		}
	}()
	return req.Register(), nil
}
