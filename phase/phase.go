// Package phase defines the status word tracking a guarded object's
// initialization and finalization progress.
//
// A Phase is a bit set, not a mutually exclusive tag: several orthogonal
// facts coexist (an object can be Locked, Initializing, and Parked at the
// same time). Callers query it through predicates rather than comparing
// against a single value.
//
// Transitions are monotonic with one family of exceptions: the *Panicked
// bits mark terminal failure branches that permanently block further
// attempts unless a caller's retry predicate explicitly opts back in.
package phase

import "strings"

// Phase is a bit set recording every known fact about one guarded object.
type Phase uint32

const (
	// Initialized is set once the object's value is fully constructed and
	// visible. It is the only bit the read fast path inspects.
	Initialized Phase = 1 << iota
	// Initializing is set while a generator is running.
	Initializing
	// InitPanicked records a panic escaping the generator. Terminal.
	InitPanicked
	// InitSkipped records a cyclic access resolved under the skip policy:
	// the reentrant caller proceeded with a placeholder value.
	InitSkipped
	// Locked is held by the initialization winner for the duration of the
	// attempt, including any finalize registration.
	Locked
	// Parked indicates at least one loser is blocked waiting for the winner.
	Parked
	// Registrating is set while finalize registration is in flight.
	Registrating
	// RegistrationPanicked records a panic escaping registration. Terminal.
	RegistrationPanicked
	// RegistrationRefused records a definitive registration refusal; the
	// object is permanently un-finalized.
	RegistrationRefused
	// Registered guarantees the finalizer will run at scope exit.
	Registered
	// Finalizing is set while the recoverer is running.
	Finalizing
	// Finalized is set once the recoverer returned.
	Finalized
	// FinalizationPanicked records a panic escaping the recoverer. Terminal.
	FinalizationPanicked
)

// Initialized reports whether the value is constructed and readable.
func (p Phase) Initialized() bool { return p&Initialized != 0 }

// Initializing reports whether a generator is currently running.
func (p Phase) Initializing() bool { return p&Initializing != 0 }

// InitPanicked reports whether the generator panicked.
func (p Phase) InitPanicked() bool { return p&InitPanicked != 0 }

// InitSkipped reports whether a cyclic access was resolved by skipping.
func (p Phase) InitSkipped() bool { return p&InitSkipped != 0 }

// Locked reports whether an attempt currently holds the object.
func (p Phase) Locked() bool { return p&Locked != 0 }

// Parked reports whether any waiter is blocked on the current attempt.
func (p Phase) Parked() bool { return p&Parked != 0 }

// Registrating reports whether finalize registration is in flight.
func (p Phase) Registrating() bool { return p&Registrating != 0 }

// RegistrationPanicked reports whether registration panicked.
func (p Phase) RegistrationPanicked() bool { return p&RegistrationPanicked != 0 }

// RegistrationRefused reports whether finalize registration was refused.
func (p Phase) RegistrationRefused() bool { return p&RegistrationRefused != 0 }

// Registered reports whether the finalizer is guaranteed to run.
func (p Phase) Registered() bool { return p&Registered != 0 }

// Finalizing reports whether the recoverer is currently running.
func (p Phase) Finalizing() bool { return p&Finalizing != 0 }

// Finalized reports whether the recoverer has run.
func (p Phase) Finalized() bool { return p&Finalized != 0 }

// FinalizationPanicked reports whether the recoverer panicked.
func (p Phase) FinalizationPanicked() bool { return p&FinalizationPanicked != 0 }

// InProgress reports whether an initialization attempt is underway.
func (p Phase) InProgress() bool { return p&(Locked|Initializing|Registrating) != 0 }

// Failed reports whether the object settled in a failure state.
func (p Phase) Failed() bool {
	return p&(InitPanicked|RegistrationPanicked|RegistrationRefused) != 0 && !p.Initialized()
}

// Settled reports whether the object reached a terminal state for the
// current attempt: readable, or failed, or skipped.
func (p Phase) Settled() bool {
	return !p.InProgress() && p != 0
}

var bitNames = []struct {
	bit  Phase
	name string
}{
	{Initialized, "initialized"},
	{Initializing, "initializing"},
	{InitPanicked, "init-panicked"},
	{InitSkipped, "init-skipped"},
	{Locked, "locked"},
	{Parked, "parked"},
	{Registrating, "registrating"},
	{RegistrationPanicked, "registration-panicked"},
	{RegistrationRefused, "registration-refused"},
	{Registered, "registered"},
	{Finalizing, "finalizing"},
	{Finalized, "finalized"},
	{FinalizationPanicked, "finalization-panicked"},
}

// String returns the set bits joined by "|", or "new" for the zero Phase.
func (p Phase) String() string {
	if p == 0 {
		return "new"
	}
	var sb strings.Builder
	for _, bn := range bitNames {
		if p&bn.bit == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(bn.name)
	}
	return sb.String()
}
