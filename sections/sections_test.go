package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_StartupOrder(t *testing.T) {
	var tbl Table
	var got []string
	tbl.AtStartup(func() { got = append(got, "plain-a") })
	tbl.AtStartupPrio(10, func() { got = append(got, "p10") })
	tbl.AtStartupPrio(65535, func() { got = append(got, "p65535") })
	tbl.AtStartupPrio(0, func() { got = append(got, "p0") })
	tbl.AtStartup(func() { got = append(got, "plain-b") })

	tbl.Startup()
	require.Equal(t, []string{"p65535", "p10", "p0", "plain-a", "plain-b"}, got)
}

func TestTable_ShutdownOrder(t *testing.T) {
	var tbl Table
	var got []string
	tbl.AtShutdownPrio(100, func() { got = append(got, "p100") })
	tbl.AtShutdown(func() { got = append(got, "plain-a") })
	tbl.AtShutdownPrio(0, func() { got = append(got, "p0") })
	tbl.AtShutdown(func() { got = append(got, "plain-b") })
	tbl.AtShutdownPrio(65535, func() { got = append(got, "p65535") })

	tbl.Shutdown()
	// Reverse layout: unprioritized first (reverse registration), ascending
	// priority after, 65535 last.
	require.Equal(t, []string{"plain-b", "plain-a", "p0", "p100", "p65535"}, got)
}

func TestTable_TiesKeepRegistrationOrderAtStartup(t *testing.T) {
	var tbl Table
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		tbl.AtStartupPrio(7, func() { got = append(got, i) })
	}
	tbl.Startup()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

// Section names are a byte-exact platform contract; a misnamed section
// silently reorders destruction. These are pinned literally.
func TestSectionNames(t *testing.T) {
	// ELF: key is 65535-priority, zero padded to five digits.
	assert.Equal(t, ".init_array.65535", StartupSectionName("linux", 0, true))
	assert.Equal(t, ".init_array.00000", StartupSectionName("linux", 65535, true))
	assert.Equal(t, ".init_array.65335", StartupSectionName("linux", 200, true))
	assert.Equal(t, ".init_array", StartupSectionName("linux", 0, false))
	assert.Equal(t, ".fini_array.65525", ShutdownSectionName("linux", 10, true))
	assert.Equal(t, ".fini_array", ShutdownSectionName("linux", 0, false))

	// COFF: same complemented key, CRT grouped sections.
	assert.Equal(t, ".CRT$XCTZ65535", StartupSectionName("windows", 0, true))
	assert.Equal(t, ".CRT$XCU", StartupSectionName("windows", 0, false))
	assert.Equal(t, ".CRT$XPTZ00000", ShutdownSectionName("windows", 65535, true))
	assert.Equal(t, ".CRT$XPU", ShutdownSectionName("windows", 0, false))

	// Mach-O: no loader priorities, one section each way.
	assert.Equal(t, "__DATA,__mod_init_func", StartupSectionName("darwin", 123, true))
	assert.Equal(t, "__DATA,__mod_term_func", ShutdownSectionName("darwin", 0, false))
}

// The ELF key ordering must make lexicographic layout equal priority order:
// higher priority sorts earlier, unprioritized sections come after every
// suffixed one (linker-script rule, not plain string compare).
func TestSectionNames_LayoutAgreesWithRank(t *testing.T) {
	hi := StartupSectionName("linux", 65535, true)
	mid := StartupSectionName("linux", 200, true)
	lo := StartupSectionName("linux", 0, true)
	assert.Less(t, hi, mid)
	assert.Less(t, mid, lo)
}
