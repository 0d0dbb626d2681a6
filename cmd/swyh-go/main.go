// Command swyh-go captures the default (or a selected) audio input device
// and streams it to UPnP/DLNA/OpenHome renderers discovered on the LAN.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a returned error to the process exit code documented in
// spec §6: 0 normal, 1 configuration error, 2 audio-device error, 130 on
// Ctrl-C. Cobra's Execute only reaches this on a non-nil error, so the 0
// case never appears here.
func exitCodeFor(err error) int {
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}

// exitCodeError lets runDaemon carry a specific exit code back through
// cobra's plain error return.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }
