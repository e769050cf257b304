//go:build unix

package staticinit

import (
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalCode(t *testing.T) {
	assert.Equal(t, 129, signalCode(syscall.SIGHUP))
	assert.Equal(t, 130, signalCode(syscall.SIGINT))
	assert.Equal(t, 143, signalCode(syscall.SIGTERM))
}

func TestHandleSignalsExits(t *testing.T) {
	exited := make(chan int, 1)
	osExit = func(code int) { exited <- code }
	t.Cleanup(func() { osExit = func(int) {} })

	stop := HandleSignals(syscall.SIGHUP)
	t.Cleanup(stop)

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))
	assert.Equal(t, 129, <-exited)
}
