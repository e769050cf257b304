package once

import (
	"github.com/harri2012/static-init/internal/diag"
	"github.com/harri2012/static-init/phase"
)

// Finalize runs fn on the guarded object's end of life, recording progress
// in the Phase. It runs at most once: a second call, or a call racing a
// first, is a no-op. A panic escaping fn is recorded as
// FinalizationPanicked and swallowed so a registry drain keeps going.
func (o *Once) Finalize(fn func()) {
	for {
		cur := o.word.Load()
		if cur.Finalizing() || cur.Finalized() {
			return
		}
		if o.word.CompareAndSwap(cur, cur|phase.Finalizing) {
			break
		}
	}
	defer func() {
		add := phase.Finalized
		if v := recover(); v != nil {
			add |= phase.FinalizationPanicked
			diag.Logger().Error().
				Interface("panic", v).
				Msg("recoverer panicked")
		}
		for {
			cur := o.word.Load()
			if o.word.CompareAndSwap(cur, (cur&^phase.Finalizing)|add) {
				return
			}
		}
	}()
	fn()
}

// Finalize is the LocalOnce counterpart of [Once.Finalize].
func (o *LocalOnce) Finalize(fn func()) {
	if o.p.Finalizing() || o.p.Finalized() {
		return
	}
	o.p |= phase.Finalizing
	defer func() {
		add := phase.Finalized
		if v := recover(); v != nil {
			add |= phase.FinalizationPanicked
			diag.Logger().Error().
				Interface("panic", v).
				Msg("recoverer panicked")
		}
		o.p = (o.p &^ phase.Finalizing) | add
	}()
	fn()
}
