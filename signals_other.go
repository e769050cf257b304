//go:build !unix

package staticinit

import "os"

var defaultSignals = []os.Signal{os.Interrupt}

func signalCode(os.Signal) int { return 1 }
