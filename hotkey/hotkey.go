// Package hotkey delivers global keyboard events. Two chords are bound:
// one toggles a recording, the other records while held. The Dual
// router merges both into a single event stream for the session layer.
package hotkey

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}
