package once

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrCyclic is matched (via errors.Is) by cyclic-access failures
	// reported under the CycleReport policy.
	ErrCyclic = errors.New("staticinit: cyclic initialization")

	// ErrRegistrationRefused is returned when finalize registration was
	// definitively refused and the attempt was configured to fail in that
	// case. A refusal is an explicit degraded mode, never a crash.
	ErrRegistrationRefused = errors.New("staticinit: finalize registration refused")
)

// PanicError wraps a panic recovered from a generator or a finalize
// registration. Every current and future waiter of the failed object
// receives the same PanicError; no caller may proceed with
// partially-initialized data.
type PanicError struct {
	// Value is the recovered panic value.
	Value any
	// Name identifies the guarded object, when diagnostic metadata was
	// supplied. May be empty.
	Name string
	// Stage is "init" or "register".
	Stage string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("staticinit: %s panicked during %s: %v", e.Name, e.Stage, e.Value)
	}
	return fmt.Sprintf("staticinit: panic during %s: %v", e.Stage, e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type.
// This enables use with [errors.Is] and [errors.As] through the cause chain.
// If the panic value is not an error (e.g. a string), returns nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// CycleError is the distinguished error produced when a reentrant call into
// an object's own in-progress initializer is resolved under the report
// policy. It matches ErrCyclic via [errors.Is].
type CycleError struct {
	// Name identifies the guarded object, when known.
	Name string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("staticinit: cyclic initialization of %s", e.Name)
	}
	return ErrCyclic.Error()
}

// Is reports whether target is ErrCyclic, so callers can match the class
// without knowing the object name.
func (e *CycleError) Is(target error) bool {
	return target == ErrCyclic
}
