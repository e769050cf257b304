package atthreadexit

import (
	"sync/atomic"

	"github.com/harri2012/static-init/internal/diag"
)

// destructorIterations is the portable bound on how many times associating a
// fresh value with the destructor key may re-run the exit routine
// (_POSIX_THREAD_DESTRUCTOR_ITERATIONS in the POSIX model, commonly 4).
const destructorIterations = 4

// keyBackend mirrors the portable fallback built on one process-wide
// thread-local destructor key. The key is created lazily exactly once: the
// creation race is resolved by a compare-and-exchange on a shared slot, and
// losers discard their redundant key. Each time a scope's pending list goes
// from empty to non-empty the exit routine must be re-armed, consuming one
// of the scope's bounded iterations; once the bound is exhausted with
// nothing pending, registration is permanently refused for that scope.
type keyBackend struct {
	// key is the shared slot; zero means not created yet.
	key atomic.Uint64
	// keySeq hands out would-be key ids to racing creators.
	keySeq atomic.Uint64
}

func (b *keyBackend) name() string { return "key" }

// ensureKey resolves the one-time key creation race.
func (b *keyBackend) ensureKey() uint64 {
	if k := b.key.Load(); k != 0 {
		return k
	}
	candidate := b.keySeq.Add(1)
	if b.key.CompareAndSwap(0, candidate) {
		return candidate
	}
	// Lost the race: discard the redundant key.
	diag.Logger().Debug().
		Uint64("key", candidate).
		Msg("discarding redundant destructor key")
	return b.key.Load()
}

func (b *keyBackend) register(s *scope, h *Hook) bool {
	b.ensureKey()
	if s.head == nil {
		// Nothing pending: the exit routine needs (re-)arming, which the
		// platform only guarantees a bounded number of times. The bound
		// counts successful re-arms, not refused attempts.
		if s.iterations >= destructorIterations {
			return false
		}
		s.iterations++
	}
	s.push(h)
	return true
}

func (b *keyBackend) closed(s *scope) bool {
	return s.iterations >= destructorIterations && s.head == nil
}

func (b *keyBackend) drain(s *scope) {
	// The bound is enforced at registration time: hooks enqueued during the
	// drain re-armed the routine through register, so a single exhaustive
	// pass is correct here.
	s.drainAll()
}
