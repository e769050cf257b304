//go:build linux

package atthreadexit

import "golang.org/x/sys/unix"

// Linux (ELF, glibc/musl): the dynamic loader's thread-exit entry point is
// reliably present.
func defaultBackend() backend {
	return &loaderBackend{hookPresent: true}
}

// osThreadID returns the kernel thread id of the pinned OS thread.
func osThreadID() int {
	return unix.Gettid()
}
