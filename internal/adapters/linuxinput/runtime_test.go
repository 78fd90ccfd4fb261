//go:build linux

package linuxinput

import (
	"testing"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/hotkeys"
	"burstclicker/internal/keycode"
)

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

func newBareRuntime() *Runtime {
	return &Runtime{
		logger:  noopLogger{},
		hotkeys: make(map[int]hotkeys.ID),
		presses: make(chan hotkeys.ID, 4),
		stopCh:  make(chan struct{}),
	}
}

func TestHotkeyPressReachesPresses(t *testing.T) {
	r := newBareRuntime()
	if err := r.Register(hotkeys.Activate, keycode.VKF6); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	f6, _ := keycode.ToEvdev(keycode.VKF6)
	f7, _ := keycode.ToEvdev(keycode.VKF7)
	r.handleKeyDown(f7)
	r.handleKeyDown(f6)

	select {
	case id := <-r.Presses():
		if id != hotkeys.Activate {
			t.Fatalf("press = %v, want activate", id)
		}
	default:
		t.Fatalf("expected a hotkey press")
	}
	select {
	case id := <-r.Presses():
		t.Fatalf("unexpected extra press %v", id)
	default:
	}
}

func TestRegisterMovesExistingBinding(t *testing.T) {
	r := newBareRuntime()
	_ = r.Register(hotkeys.Save, keycode.VKF8)
	_ = r.Register(hotkeys.Save, 0x53)

	f8, _ := keycode.ToEvdev(keycode.VKF8)
	r.handleKeyDown(f8)
	select {
	case id := <-r.Presses():
		t.Fatalf("old binding still fires %v", id)
	default:
	}

	if err := r.Unregister(hotkeys.Save); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if len(r.hotkeys) != 0 {
		t.Fatalf("bindings left after Unregister: %v", r.hotkeys)
	}
}

func TestRegisterRejectsUnmappedKey(t *testing.T) {
	r := newBareRuntime()
	if err := r.Register(hotkeys.Activate, 0xE7); err == nil {
		t.Fatalf("expected error for key without evdev code")
	}
}

func TestPressedReflectsTrackedButtons(t *testing.T) {
	r := newBareRuntime()
	r.rightDown.Store(true)
	if r.Pressed(autoclicker.ButtonLeft) {
		t.Fatalf("left reported pressed")
	}
	if !r.Pressed(autoclicker.ButtonRight) {
		t.Fatalf("right not reported pressed")
	}
}

func TestNameLooksVirtual(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{name: "burstclicker", expected: true},
		{name: "ydotoold virtual device", expected: true},
		{name: "Logitech G Pro", expected: false},
		{name: "AT Translated Set 2 keyboard", expected: false},
	}
	for _, tc := range tests {
		if got := nameLooksVirtual(tc.name); got != tc.expected {
			t.Fatalf("nameLooksVirtual(%q) = %v, want %v", tc.name, got, tc.expected)
		}
	}
}
