package hotkey

import (
	"testing"
)

func TestToggle_FlipsStateAndInvokesCallback(t *testing.T) {
	m := NewMonitor([]string{"ctrl", "shift", "l"}, nil)

	var got []bool
	m.SetCallback(func(recording bool) {
		got = append(got, recording)
	})

	m.toggle()
	m.toggle()
	m.toggle()

	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("callback invocations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("callback[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !m.State() {
		t.Error("State() = false after three toggles, want true")
	}
}

func TestToggle_NoCallbackRegistered(t *testing.T) {
	m := NewMonitor([]string{"ctrl"}, nil)

	// must not panic
	m.toggle()

	if !m.State() {
		t.Error("State() = false after toggle, want true")
	}
}

func TestToggle_CallbackPanicIsRecovered(t *testing.T) {
	m := NewMonitor([]string{"ctrl"}, nil)
	m.SetCallback(func(bool) { panic("callback blew up") })

	m.toggle()

	// state still flipped, monitor still usable
	if !m.State() {
		t.Error("State() = false after panicking callback, want true")
	}

	var called bool
	m.SetCallback(func(bool) { called = true })
	m.toggle()
	if !called {
		t.Error("replacement callback was not invoked after a recovered panic")
	}
}

func TestSetCallback_LastRegistrationWins(t *testing.T) {
	m := NewMonitor([]string{"ctrl"}, nil)

	var first, second int
	m.SetCallback(func(bool) { first++ })
	m.SetCallback(func(bool) { second++ })

	m.toggle()

	if first != 0 {
		t.Errorf("replaced callback invoked %d times, want 0", first)
	}
	if second != 1 {
		t.Errorf("active callback invoked %d times, want 1", second)
	}
}

func TestGuard_RecoversPanic(t *testing.T) {
	m := NewMonitor([]string{"ctrl"}, nil)

	// must not propagate
	m.guard("test handler", func() { panic("handler blew up") })
}

func TestStop_WithoutStartIsNoOp(t *testing.T) {
	m := NewMonitor([]string{"ctrl"}, nil)

	// must not panic or block
	m.Stop()
	m.Stop()
}

func TestTapKey_RegistersSubscription(t *testing.T) {
	m := NewMonitor([]string{"ctrl", "shift", "l"}, nil)

	m.TapKey("ctrl", func() {}, func() {})
	m.TapKey("alt", nil, func() {})

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.taps) != 2 {
		t.Fatalf("taps = %d, want 2", len(m.taps))
	}
	if m.taps[0].key != "ctrl" || m.taps[1].key != "alt" {
		t.Errorf("tap keys = %q, %q, want ctrl, alt", m.taps[0].key, m.taps[1].key)
	}
	if m.taps[1].onDown != nil {
		t.Error("nil onDown handler should stay nil")
	}
}
