//go:build !linux && !darwin && !windows

package atthreadexit

// Targets with a POSIX thread-local destructor key get the portable
// strategy; anything else would use unsupportedBackend, but every first-class
// Go port has pthread keys, so the key backend is the catch-all.
func defaultBackend() backend {
	return &keyBackend{}
}

func osThreadID() int { return 0 }
