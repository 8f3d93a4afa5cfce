package hotkey

import (
	"golang.design/x/hotkey"
)

// xHotkey wraps a golang.design/x/hotkey registration. The library
// drops events when its channels are not drained, so each registration
// pumps into owned buffered channels.
type xHotkey struct {
	hk      *hotkey.Hotkey
	keydown chan struct{}
	keyup   chan struct{}
	quit    chan struct{}
}

// NewToggle binds the toggle chord, Ctrl+Shift+Space.
func NewToggle() Hotkey {
	return newX(hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace))
}

// NewHold binds the hold-to-talk chord, Ctrl+Space.
func NewHold() Hotkey {
	return newX(hotkey.New([]hotkey.Modifier{hotkey.ModCtrl}, hotkey.KeySpace))
}

func newX(hk *hotkey.Hotkey) *xHotkey {
	return &xHotkey{
		hk:      hk,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

func (h *xHotkey) Register() error {
	if err := h.hk.Register(); err != nil {
		return err
	}
	go h.pump(h.hk.Keydown(), h.keydown)
	go h.pump(h.hk.Keyup(), h.keyup)
	return nil
}

func (h *xHotkey) pump(from <-chan hotkey.Event, to chan struct{}) {
	for {
		select {
		case <-h.quit:
			return
		case <-from:
		}
		select {
		case to <- struct{}{}:
		default: // consumer is behind, drop
		}
	}
}

func (h *xHotkey) Unregister() {
	close(h.quit)
	h.hk.Unregister()
}

func (h *xHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *xHotkey) Keyup() <-chan struct{}   { return h.keyup }

// Diagnose is used by the doctor command to report hotkey availability.
func Diagnose() (string, error) {
	return "global hotkeys available (toggle Ctrl+Shift+Space, hold Ctrl+Space)", nil
}
