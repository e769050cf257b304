package phase

import "sync/atomic"

// Word is the atomically updated Phase cell shared across threads.
//
// PERFORMANCE: Pure atomic CAS operations, no mutex. Cache-line padding
// prevents false sharing between the word and neighbouring fields of the
// guarded object (the value cell typically sits in the same allocation).
type Word struct { // betteralign:ignore
	_ [64]byte      // Cache line padding (before value) //nolint:unused
	v atomic.Uint32 // Phase bits
	_ [60]byte      // Pad to complete cache line (64 - 4 = 60) //nolint:unused
}

// Load returns the current Phase atomically.
func (w *Word) Load() Phase {
	return Phase(w.v.Load())
}

// Store atomically replaces the Phase. Reserved for settled, irreversible
// states; in-progress states must go through CompareAndSwap.
func (w *Word) Store(p Phase) {
	w.v.Store(uint32(p))
}

// CompareAndSwap attempts a single atomic transition.
func (w *Word) CompareAndSwap(old, new Phase) bool {
	return w.v.CompareAndSwap(uint32(old), uint32(new))
}

// SetBits atomically ORs bits into the Phase, retrying on contention.
// Returns the resulting Phase.
func (w *Word) SetBits(bits Phase) Phase {
	return Phase(w.v.Or(uint32(bits))) | bits
}
