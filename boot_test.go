package staticinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harri2012/static-init/atexit"
	"github.com/harri2012/static-init/lazy"
)

func TestBootAndExitSequencing(t *testing.T) {
	var events []string

	a := lazy.NewAt(10, func() string {
		events = append(events, "a-init")
		return "a"
	}, lazy.WithFinalizer(func(*string) { events = append(events, "a-fin") }))

	b := lazy.NewAt(1, func() string {
		// Higher priorities initialize first: a is already readable.
		assert.True(t, a.Phase().Initialized())
		events = append(events, "b-init")
		return "b"
	}, lazy.WithFinalizer(func(*string) { events = append(events, "b-fin") }))

	plain := lazy.New(func() string {
		events = append(events, "plain-init")
		return "plain"
	}, lazy.WithFinalizer(func(*string) { events = append(events, "plain-fin") }))

	Boot()
	assert.Equal(t, []string{"a-init", "b-init"}, events)
	assert.False(t, plain.Phase().Initialized())

	// First access after Boot still works through the ordinary lazy path.
	assert.Equal(t, "plain", *plain.Get())
	require.True(t, plain.Phase().Registered())

	exitCode := -1
	osExit = func(code int) { exitCode = code }
	t.Cleanup(func() { osExit = func(int) {} })

	Exit(3)
	assert.Equal(t, 3, exitCode)

	// Shutdown mirrors startup in reverse, and the process-exit registry
	// drains after every priority slot ran.
	assert.Equal(t, []string{
		"a-init", "b-init", "plain-init",
		"b-fin", "a-fin", "plain-fin",
	}, events)
	assert.True(t, a.Phase().Finalized())
	assert.True(t, b.Phase().Finalized())
	assert.True(t, plain.Phase().Finalized())
	assert.True(t, atexit.Closed())

	// Shutdown is one-shot: a second Exit changes nothing but the code.
	Exit(7)
	assert.Equal(t, 7, exitCode)
	assert.Len(t, events, 6)
}

func TestHandleSignalsStop(t *testing.T) {
	stop := HandleSignals()
	assert.NotPanics(t, stop)
}
