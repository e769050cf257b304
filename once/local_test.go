package once

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harri2012/static-init/phase"
)

func TestLocalOnce_InitOnce(t *testing.T) {
	var o LocalOnce
	calls := 0
	req := Request{Init: func() { calls++ }}
	require.NoError(t, o.InitOrWait(req))
	require.NoError(t, o.InitOrWait(req))
	assert.Equal(t, 1, calls)
	assert.True(t, o.Phase().Initialized())
}

func TestLocalOnce_CycleError(t *testing.T) {
	var o LocalOnce
	var inner error
	outer := o.InitOrWait(Request{
		Name:  "local",
		Cycle: CycleReport,
		Init: func() {
			inner = o.InitOrWait(Request{Name: "local", Cycle: CycleReport, Init: func() {}})
		},
	})
	require.NoError(t, outer)
	require.ErrorIs(t, inner, ErrCyclic)
	assert.True(t, o.Phase().Initialized())
}

func TestLocalOnce_CycleSkip(t *testing.T) {
	var o LocalOnce
	var inner error
	outer := o.InitOrWait(Request{
		Cycle: CycleSkip,
		Init: func() {
			inner = o.InitOrWait(Request{Cycle: CycleSkip, Init: func() {}})
		},
	})
	require.NoError(t, outer)
	require.NoError(t, inner)
	assert.True(t, o.Phase().InitSkipped())
}

func TestLocalOnce_DeepReentrancy(t *testing.T) {
	var o LocalOnce
	depth := 0
	var rec func() error
	rec = func() error {
		return o.InitOrWait(Request{
			Cycle: CycleSkip,
			Init: func() {
				if depth < 3 {
					depth++
					_ = rec()
				}
			},
		})
	}
	require.NoError(t, rec())
	assert.Equal(t, 1, depth, "inner calls skip, they do not recurse the generator")
	assert.True(t, o.Phase().Initialized())
}

func TestLocalOnce_PanicTerminal(t *testing.T) {
	var o LocalOnce
	err := o.InitOrWait(Request{Init: func() { panic("local boom") }})
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.True(t, o.Phase().InitPanicked())

	err = o.InitOrWait(Request{Init: func() { t.Error("reran init") }})
	require.ErrorAs(t, err, &pe)
}

func TestLocalOnce_RegistrationFlow(t *testing.T) {
	var o LocalOnce
	require.NoError(t, o.InitOrWait(Request{
		Init:     func() {},
		Register: func() bool { return true },
	}))
	assert.True(t, o.Phase().Registered())

	var o2 LocalOnce
	recovered := 0
	err := o2.InitOrWait(Request{
		Init:                  func() {},
		Register:              func() bool { return false },
		OnRegistrationRefused: func() { recovered++ },
	})
	require.ErrorIs(t, err, ErrRegistrationRefused)
	assert.Equal(t, 1, recovered)
	assert.Equal(t, phase.RegistrationRefused, o2.Phase()&phase.RegistrationRefused)
}
