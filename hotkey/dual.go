package hotkey

type Event int

const (
	EventToggle Event = iota
	EventHoldStart
	EventHoldStop
)

// Dual merges the toggle and hold chords into one event stream and
// resolves their interaction: a hold keydown only starts a recording
// when the session is idle, and toggle presses are ignored while the
// hold key is down. Without this a hold release could orphan a
// toggle-started recording, or vice versa.
type Dual struct {
	toggle Hotkey
	hold   Hotkey
	idle   func() bool

	events chan Event
	quit   chan struct{}
}

func NewDual(toggle, hold Hotkey, idle func() bool) *Dual {
	return &Dual{
		toggle: toggle,
		hold:   hold,
		idle:   idle,
		events: make(chan Event, 8),
		quit:   make(chan struct{}),
	}
}

func (d *Dual) Start() error {
	if err := d.toggle.Register(); err != nil {
		return err
	}
	if err := d.hold.Register(); err != nil {
		d.toggle.Unregister()
		return err
	}
	go d.loop()
	return nil
}

func (d *Dual) Stop() {
	close(d.quit)
	d.toggle.Unregister()
	d.hold.Unregister()
}

func (d *Dual) Events() <-chan Event {
	return d.events
}

func (d *Dual) loop() {
	holdActive := false
	for {
		select {
		case <-d.quit:
			return
		case <-d.toggle.Keydown():
			if holdActive {
				continue
			}
			d.emit(EventToggle)
		case <-d.toggle.Keyup():
			// toggle acts on keydown only
		case <-d.hold.Keydown():
			if holdActive || !d.idle() {
				continue
			}
			holdActive = true
			d.emit(EventHoldStart)
		case <-d.hold.Keyup():
			if !holdActive {
				continue
			}
			holdActive = false
			d.emit(EventHoldStop)
		}
	}
}

func (d *Dual) emit(ev Event) {
	select {
	case d.events <- ev:
	default: // consumer is behind, drop
	}
}
