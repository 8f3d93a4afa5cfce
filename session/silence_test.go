package session

import "testing"

func holdMonitor() *silenceMonitor {
	return newSilenceMonitor(func() bool { return false })
}

func toggleMonitor() *silenceMonitor {
	return newSilenceMonitor(func() bool { return true })
}

func feedN(m *silenceMonitor, speech bool, n int) SilenceEvent {
	var last SilenceEvent
	for i := 0; i < n; i++ {
		last = m.Tick(speech)
	}
	return last
}

func TestSilenceWarnAfterWarnWindow(t *testing.T) {
	m := holdMonitor()
	for i := 0; i < m.warnAt-1; i++ {
		if ev := m.Tick(false); ev != SilenceNone {
			t.Fatalf("unexpected event at tick %d: %d", i, ev)
		}
	}
	if ev := m.Tick(false); ev != SilenceWarn {
		t.Fatalf("expected SilenceWarn at tick %d, got %d", m.warnAt, ev)
	}
}

func TestSilenceWarnClearsOnSpeech(t *testing.T) {
	m := holdMonitor()
	feedN(m, false, m.warnAt)

	for i := 0; i < m.warnAt; i++ {
		if ev := m.Tick(true); ev == SilenceWarnClear {
			return
		}
	}
	t.Fatal("expected SilenceWarnClear after sustained speech")
}

func TestNoWarnDuringSpeech(t *testing.T) {
	m := holdMonitor()
	for i := 0; i < 200; i++ {
		if ev := m.Tick(true); ev == SilenceWarn {
			t.Fatalf("unexpected warn during speech at tick %d", i)
		}
	}
}

func TestWarnOnlyOnce(t *testing.T) {
	m := holdMonitor()
	warns := 0
	for i := 0; i < 300; i++ {
		if ev := m.Tick(false); ev == SilenceWarn {
			warns++
		}
	}
	if warns != 1 {
		t.Fatalf("expected exactly one SilenceWarn, got %d", warns)
	}
}

func TestToggleRepeatWarn(t *testing.T) {
	m := toggleMonitor()
	feedN(m, false, m.warnAt)
	for i := 0; i < m.warnAt+20; i++ {
		if ev := m.Tick(false); ev == SilenceRepeat {
			return
		}
	}
	t.Fatal("expected SilenceRepeat in toggle mode")
}

func TestNoRepeatInHoldMode(t *testing.T) {
	m := holdMonitor()
	for i := 0; i < 300; i++ {
		if ev := m.Tick(false); ev == SilenceRepeat {
			t.Fatalf("unexpected SilenceRepeat in hold mode at tick %d", i)
		}
	}
}

func TestToggleAutoClose(t *testing.T) {
	m := toggleMonitor()
	for i := 0; i < m.windowSz+100; i++ {
		if ev := m.Tick(false); ev == SilenceAutoClose {
			return
		}
	}
	t.Fatal("expected SilenceAutoClose after the full silence window")
}

func TestNoAutoCloseInHoldMode(t *testing.T) {
	m := holdMonitor()
	for i := 0; i < 400; i++ {
		if ev := m.Tick(false); ev == SilenceAutoClose {
			t.Fatalf("unexpected auto-close in hold mode at tick %d", i)
		}
	}
}

func TestAutoClosePreventedBySpeech(t *testing.T) {
	m := toggleMonitor()
	for i := 0; i < 500; i++ {
		speech := i%10 < 7
		if ev := m.Tick(speech); ev == SilenceAutoClose {
			t.Fatalf("unexpected auto-close with speech at tick %d", i)
		}
	}
}

func TestWarnStaysDuringNoise(t *testing.T) {
	m := holdMonitor()
	feedN(m, false, m.warnAt)

	// Occasional VAD false positives below the clear threshold must not
	// clear the warning.
	for i := 0; i < m.warnAt; i++ {
		speech := i%10 == 0
		if ev := m.Tick(speech); ev == SilenceWarnClear {
			t.Fatalf("warning cleared at tick %d with 10%% speech", i)
		}
	}
}
