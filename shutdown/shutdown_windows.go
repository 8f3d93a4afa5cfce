//go:build windows

package shutdown

import (
	"os"
	"os/signal"
)

// Notify registers ch for the signals that should end the session
// cleanly. Windows has no SIGTERM delivery, so interrupt is the only
// one worth listening for.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
