package once

import (
	"runtime"
	"sync/atomic"

	"github.com/harri2012/static-init/phase"
)

// Spin budget before a losing caller deschedules. Initialization critical
// sections are usually short (a constructor call), so a brief busy wait
// avoids the park/wake round trip in the common case without burning a core
// when the winner is slow.
const (
	activeSpins = 16
	yieldSpins  = 8
)

// gate is the block/wake facility used when a caller must wait out another
// thread's in-progress initialization. One gate serves one attempt round:
// the winner broadcasts by closing the channel. There is no cancellation and
// no timeout; an initializer that never returns permanently blocks all
// waiters (a documented hazard, not handled defensively).
type gate chan struct{}

// ensureGate returns the current round's gate, installing one if needed.
func (o *Once) ensureGate() gate {
	if g := o.gate.Load(); g != nil {
		return *g
	}
	g := make(gate)
	if o.gate.CompareAndSwap(nil, &g) {
		return g
	}
	return *o.gate.Load()
}

// wake releases every parked waiter of the current round. Idempotent per
// round: the gate pointer is claimed before closing.
func (o *Once) wake() {
	if g := o.gate.Swap(nil); g != nil {
		close(*g)
	}
}

// wait blocks until the in-progress attempt settles, spinning briefly first.
// It may return spuriously (e.g. when adopted by a stale gate); the caller
// re-reads the Phase and loops.
func (o *Once) wait() {
	for i := 0; i < activeSpins+yieldSpins; i++ {
		if !o.word.Load().InProgress() {
			return
		}
		if i >= activeSpins {
			runtime.Gosched()
		}
	}

	g := o.ensureGate()

	// Publish the Parked bit, but only while an attempt is still observed
	// in progress: once the winner settled it will not read the bit again,
	// and a stale Parked on a settled word would lie to Phase() callers.
	for {
		cur := o.word.Load()
		if !cur.InProgress() {
			return
		}
		if cur.Parked() || o.word.CompareAndSwap(cur, cur|phase.Parked) {
			break
		}
	}

	<-g
}

// gatePointer is the lazily allocated per-round gate slot.
type gatePointer = atomic.Pointer[gate]
