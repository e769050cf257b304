package lazy

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harri2012/static-init/atexit"
	"github.com/harri2012/static-init/once"
	"github.com/harri2012/static-init/sections"
)

func TestLazyGet(t *testing.T) {
	calls := 0
	l := New(func() int {
		calls++
		return 42
	})

	assert.False(t, l.Phase().Initialized())
	assert.Equal(t, 42, *l.Get())
	assert.Equal(t, 42, *l.Get())
	assert.Equal(t, 1, calls)
	assert.True(t, l.Phase().Initialized())
}

func TestLazyGetRace(t *testing.T) {
	var calls atomic.Int32
	l := New(func() []string {
		calls.Add(1)
		return []string{"a", "b"}
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, []string{"a", "b"}, *l.Get())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazyValueSkipsChecks(t *testing.T) {
	l := New(func() int { return 7 })
	// Unchecked access before initialization observes the zero cell.
	assert.Equal(t, 0, *l.Value())
	l.Get()
	assert.Equal(t, 7, *l.Value())
}

func TestLazyGeneratorPanic(t *testing.T) {
	l := New(func() int { panic("gen boom") }, WithName[int]("boomer"))

	_, err := l.TryGet()
	var pe *once.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "gen boom", pe.Value)
	assert.True(t, l.Phase().InitPanicked())

	// Terminal by default: Get re-panics with the recorded failure.
	assert.PanicsWithError(t, pe.Error(), func() { l.Get() })
}

func TestLazyRetryAfterPanic(t *testing.T) {
	calls := 0
	l := New(func() int {
		calls++
		if calls == 1 {
			panic("first only")
		}
		return calls
	}, WithRetryAfterPanic[int]())

	_, err := l.TryGet()
	require.Error(t, err)

	v, err := l.TryGet()
	require.NoError(t, err)
	assert.Equal(t, 2, *v)
	assert.True(t, l.Phase().Initialized())
	assert.True(t, l.Phase().InitPanicked()) // history is retained
}

func TestLazyCycleError(t *testing.T) {
	var l *Lazy[int]
	l = New(func() int {
		l.Get() // reentrant
		return 1
	})

	assert.Panics(t, func() { l.Get() })
}

func TestLazyCycleSkip(t *testing.T) {
	var inner int
	var l *Lazy[int]
	l = New(func() int {
		inner = *l.Get() // resolved with the zero placeholder
		return 5
	}, WithCyclePolicy[int](once.CycleSkip))

	assert.Equal(t, 5, *l.Get())
	assert.Equal(t, 0, inner)
	assert.True(t, l.Phase().InitSkipped())
}

func TestLazyFinalizeAtPriority(t *testing.T) {
	recovered := 0
	l := New(func() int { return 9 },
		WithFinalizer(func(v *int) {
			recovered++
			assert.Equal(t, 9, *v)
		}),
		WithFinalizeAt[int](3),
	)

	l.Get()
	assert.True(t, l.Phase().Registered())

	sections.Shutdown()
	assert.Equal(t, 1, recovered)
	assert.True(t, l.Phase().Finalized())

	// A second drain of the shared table must not re-run the recoverer.
	sections.Shutdown()
	assert.Equal(t, 1, recovered)
}

func TestLazyFinalizeAtProcessExit(t *testing.T) {
	recovered := 0
	l := New(func() string { return "res" },
		WithFinalizer(func(v *string) {
			recovered++
			assert.Equal(t, "res", *v)
		}),
	)
	l.Get()
	assert.True(t, l.Phase().Registered())

	atexit.Drain()
	assert.Equal(t, 1, recovered)
	assert.True(t, l.Phase().Finalized())
}

func TestLazyRefusalFailsAttempt(t *testing.T) {
	// The shared process-exit registry is closed by the prior drain, so
	// registration is definitively refused.
	require.True(t, atexit.Closed())

	l := New(func() int { return 1 },
		WithFinalizer(func(*int) {}),
	)
	_, err := l.TryGet()
	require.ErrorIs(t, err, once.ErrRegistrationRefused)
	assert.False(t, l.Phase().Initialized())
	assert.True(t, l.Phase().RegistrationRefused())
}

func TestLazyRefusalExposeAnyway(t *testing.T) {
	require.True(t, atexit.Closed())

	l := New(func() int { return 8 },
		WithFinalizer(func(*int) {}),
		WithInitWithoutFinalize[int](true),
	)
	v, err := l.TryGet()
	require.NoError(t, err)
	assert.Equal(t, 8, *v)
	assert.True(t, l.Phase().RegistrationRefused())
	assert.False(t, l.Phase().Registered())
}

func TestLazyRecoverOnRefusal(t *testing.T) {
	require.True(t, atexit.Closed())

	recovered := 0
	l := New(func() int { return 4 },
		WithFinalizer(func(v *int) {
			recovered++
			assert.Equal(t, 4, *v)
		}),
		WithRecoverOnRefusal[int](),
		WithInitWithoutFinalize[int](true),
	)

	v, err := l.TryGet()
	require.NoError(t, err)
	assert.Equal(t, 4, *v)
	assert.Equal(t, 1, recovered)
	assert.True(t, l.Phase().Finalized())
}
