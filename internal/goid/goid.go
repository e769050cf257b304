// Package goid extracts the current goroutine's id.
//
// The id is used to detect reentrant initialization (a goroutine re-entering
// an initializer it is already running). It is derived by parsing the header
// line of runtime.Stack output, which is of the form
//
//	goroutine 123 [running]:
//
// Parsing costs on the order of a microsecond, but it only happens on the
// contended slow path of an initialization race, never on steady-state reads.
package goid

import (
	"runtime"
	"sync"
)

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 64)
		return &b
	},
}

// Current returns the id of the calling goroutine, or 0 if it cannot be
// determined (a 0 never matches a real owner, so detection degrades to
// "not reentrant" rather than misfiring).
func Current() int64 {
	bp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bp)
	n := runtime.Stack(*bp, false)
	return parse((*bp)[:n])
}

// parse extracts the id from a "goroutine N [state]:" header.
func parse(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}
	var id int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
