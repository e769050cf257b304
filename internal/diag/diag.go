// Package diag holds the module-wide diagnostic logger.
//
// Diagnostics are an infrastructure cross-cutting concern: every guarded
// object shares the same sink, configured once at startup via
// staticinit.SetLogger. The default sink discards everything, so the
// initialization fast paths pay only a pointer load when diagnostics are off.
package diag

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	nop := zerolog.Nop()
	logger.Store(&nop)
}

// SetLogger replaces the module-wide diagnostic logger.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// Logger returns the current diagnostic logger.
func Logger() *zerolog.Logger {
	return logger.Load()
}
