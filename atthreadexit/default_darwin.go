//go:build darwin

package atthreadexit

// Mach-O has no loader thread-exit hook, so darwin uses the portable
// destructor-key strategy with its bounded re-arm cycles.
func defaultBackend() backend {
	return &keyBackend{}
}

func osThreadID() int { return 0 }
