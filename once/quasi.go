package once

import "sync/atomic"

// QuasiOnce is the hybrid eager-or-lazy variant used by priority-declared
// objects. The priority sequencer calls [QuasiOnce.Eager] when the object's
// startup slot is reached; a first access before that point initializes
// through the ordinary lazy path instead. Whichever arrives first decides;
// both paths funnel into the same opening compare-and-swap, so the generator
// still runs at most once.
type QuasiOnce struct {
	Once
	eagerWon atomic.Bool
}

// Eager runs the eager path. It is a no-op if a lazy accessor already
// settled the object.
func (q *QuasiOnce) Eager(req Request) error {
	if q.word.Load() == 0 {
		q.eagerWon.Store(true)
	}
	return q.InitOrWait(req)
}

// EagerWon reports whether the eager path reached the object before any lazy
// accessor. Diagnostic only; by the time it returns the answer may already
// be stale for an unsettled object.
func (q *QuasiOnce) EagerWon() bool {
	return q.eagerWon.Load()
}
