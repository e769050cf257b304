// Package staticinit sequences the deterministic startup and shutdown of
// priority-declared objects, and re-exposes the process-level knobs the
// subpackages share.
//
// A typical program declares its objects with [lazy.NewAt] at package scope,
// calls [Boot] early in main, and ends through [Exit] (or [Shutdown] before
// its own exit path) so every registered recoverer runs:
//
//	var db = lazy.NewAt(10, openDB, lazy.WithFinalizer[DB](closeDB))
//
//	func main() {
//		staticinit.Boot()
//		defer staticinit.Shutdown()
//		...
//	}
//
// Startup runs the highest declared priority first; shutdown mirrors that
// layout in reverse, with unprioritized process-exit finalizers draining
// last of all.
package staticinit

import (
	"os"
	"os/signal"
	"sync"

	"github.com/rs/zerolog"

	"github.com/harri2012/static-init/atexit"
	"github.com/harri2012/static-init/internal/diag"
	"github.com/harri2012/static-init/sections"
)

// SetLogger installs the logger every subpackage reports failure diagnostics
// through. The default discards everything.
func SetLogger(l zerolog.Logger) { diag.SetLogger(l) }

// Boot runs every registered startup slot in priority order, eagerly
// initializing all priority-declared objects. Objects already settled by an
// earlier access are skipped.
func Boot() {
	sections.Startup()
}

var shutdownOnce sync.Once

// Shutdown runs every registered shutdown slot in reverse priority order,
// then drains the process-exit registry. Only the first call drains; later
// calls return immediately.
func Shutdown() {
	shutdownOnce.Do(func() {
		sections.Shutdown()
		atexit.Drain()
	})
}

// for tests
var osExit = os.Exit

// Exit runs Shutdown and terminates the process with the given code.
func Exit(code int) {
	Shutdown()
	osExit(code)
}

// HandleSignals arranges for the first delivered signal to run [Exit] with
// the conventional exit code for that signal. With no arguments it watches
// the platform default set. The returned stop function releases the
// handler; it never undoes an Exit already in flight.
func HandleSignals(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = defaultSignals
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, sigs...)
	done := make(chan struct{})
	go func() {
		select {
		case s := <-sigCh:
			diag.Logger().Info().
				Str("signal", s.String()).
				Msg("terminating on signal")
			Exit(signalCode(s))
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
