package sections

import "fmt"

// Platform section-name conventions.
//
// Each slot carries the object-file section name its function pointer would
// occupy on the given platform, so the loader's natural ordering of those
// names yields the table's execution order. The conventions are byte-exact
// contracts with each platform's loader: a misnamed section silently
// reorders destruction, which is why these strings are pinned by tests.
//
//   - ELF (linux, bsd): `.init_array.NNNNN` / `.fini_array.NNNNN`, where
//     NNNNN is 65535-priority zero-padded to five digits; the linker sorts
//     suffixed sections lexicographically and places unsuffixed
//     `.init_array` / `.fini_array` after them.
//   - Windows (COFF): `.CRT$XCTZNNNNN` / `.CRT$XPTZNNNNN` with the same
//     complemented key; unprioritized pointers live in `.CRT$XCU` /
//     `.CRT$XPU`. The MSVC linker orders `<prefix>$<suffix>` sections
//     lexicographically within one prefix.
//   - Mach-O (darwin): `__DATA,__mod_init_func` / `__DATA,__mod_term_func`;
//     the loader supports no priorities, so every slot shares one name and
//     ordering is carried entirely by the table.

// sortKey complements the priority so that lexicographic (ascending) layout
// puts the highest priority first, matching the loaders' conventions.
func sortKey(prio uint16) uint16 { return 65535 - prio }

// StartupSectionName returns the startup section name for the platform.
func StartupSectionName(goos string, prio uint16, prioritized bool) string {
	switch goos {
	case "windows":
		if prioritized {
			return fmt.Sprintf(".CRT$XCTZ%05d", sortKey(prio))
		}
		return ".CRT$XCU"
	case "darwin":
		return "__DATA,__mod_init_func"
	default:
		if prioritized {
			return fmt.Sprintf(".init_array.%05d", sortKey(prio))
		}
		return ".init_array"
	}
}

// ShutdownSectionName returns the shutdown section name for the platform.
func ShutdownSectionName(goos string, prio uint16, prioritized bool) string {
	switch goos {
	case "windows":
		if prioritized {
			return fmt.Sprintf(".CRT$XPTZ%05d", sortKey(prio))
		}
		return ".CRT$XPU"
	case "darwin":
		return "__DATA,__mod_term_func"
	default:
		if prioritized {
			return fmt.Sprintf(".fini_array.%05d", sortKey(prio))
		}
		return ".fini_array"
	}
}
