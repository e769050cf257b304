// Package sections provides linker-section-style startup and shutdown slots
// keyed by a 16-bit priority.
//
// It is the mechanical tail of the module: ordered function-pointer slots
// consumed by the hybrid eager-or-lazy initialization path and by
// priority-based finalize requests. During startup, prioritized slots run
// highest priority first, then unprioritized slots; shutdown reverses the
// whole layout, so unprioritized slots run first and priority 65535 runs
// last. Two slots at the same priority have no relative order guarantee
// (registration order is preserved in practice, but don't rely on it).
package sections

import (
	"runtime"
	"sort"
	"sync"

	"github.com/harri2012/static-init/internal/diag"
)

type entry struct {
	fn   func()
	name string // platform section name, diagnostics + convention contract
	rank int    // 65535-prio; unprioritized sorts after every priority
	seq  int    // registration order, stabilizes equal ranks
}

const unprioritizedRank = 1 << 16

// Table holds one scope's ordered startup and shutdown slots. The zero value
// is ready to use. Registration is safe for concurrent use; Startup and
// Shutdown are meant to be driven by a single sequencer.
type Table struct {
	mu       sync.Mutex
	startup  []entry
	shutdown []entry
	seq      int
}

// AtStartup appends fn to the unprioritized startup slot.
func (t *Table) AtStartup(fn func()) {
	t.add(&t.startup, fn, 0, false, StartupSectionName(runtime.GOOS, 0, false))
}

// AtStartupPrio appends fn to the startup slot for prio.
func (t *Table) AtStartupPrio(prio uint16, fn func()) {
	t.add(&t.startup, fn, prio, true, StartupSectionName(runtime.GOOS, prio, true))
}

// AtShutdown appends fn to the unprioritized shutdown slot.
func (t *Table) AtShutdown(fn func()) {
	t.add(&t.shutdown, fn, 0, false, ShutdownSectionName(runtime.GOOS, 0, false))
}

// AtShutdownPrio appends fn to the shutdown slot for prio.
func (t *Table) AtShutdownPrio(prio uint16, fn func()) {
	t.add(&t.shutdown, fn, prio, true, ShutdownSectionName(runtime.GOOS, prio, true))
}

func (t *Table) add(list *[]entry, fn func(), prio uint16, prioritized bool, name string) {
	rank := unprioritizedRank
	if prioritized {
		rank = int(sortKey(prio))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	*list = append(*list, entry{fn: fn, name: name, rank: rank, seq: t.seq})
	t.seq++
}

// Startup runs the startup slots in layout order: priority 65535 first,
// descending, unprioritized last.
func (t *Table) Startup() {
	for _, e := range t.layout(&t.startup) {
		diag.Logger().Debug().Str("section", e.name).Msg("startup slot")
		e.fn()
	}
}

// Shutdown runs the shutdown slots in reverse layout order: unprioritized
// first, then ascending priority, 65535 last.
func (t *Table) Shutdown() {
	l := t.layout(&t.shutdown)
	for i := len(l) - 1; i >= 0; i-- {
		diag.Logger().Debug().Str("section", l[i].name).Msg("shutdown slot")
		l[i].fn()
	}
}

// layout snapshots and orders a slot list the way the platform loader lays
// out the backing sections.
func (t *Table) layout(list *[]entry) []entry {
	t.mu.Lock()
	out := make([]entry, len(*list))
	copy(out, *list)
	t.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].rank != out[j].rank {
			return out[i].rank < out[j].rank
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// Default is the process-wide table; the package-level helpers below operate
// on it. Library code declaring priority-backed objects registers here, and
// the application's sequencer drives it via staticinit.Boot / Shutdown.
var Default Table

// AtStartup appends fn to the default table's unprioritized startup slot.
func AtStartup(fn func()) { Default.AtStartup(fn) }

// AtStartupPrio appends fn to the default table's startup slot for prio.
func AtStartupPrio(prio uint16, fn func()) { Default.AtStartupPrio(prio, fn) }

// AtShutdown appends fn to the default table's unprioritized shutdown slot.
func AtShutdown(fn func()) { Default.AtShutdown(fn) }

// AtShutdownPrio appends fn to the default table's shutdown slot for prio.
func AtShutdownPrio(prio uint16, fn func()) { Default.AtShutdownPrio(prio, fn) }

// Startup runs the default table's startup slots.
func Startup() { Default.Startup() }

// Shutdown runs the default table's shutdown slots.
func Shutdown() { Default.Shutdown() }
