//go:build windows

package atthreadexit

// Windows: loader-invoked callback array (.CRT$XL*) semantics.
func defaultBackend() backend {
	return &callbackBackend{}
}

func osThreadID() int { return 0 }
