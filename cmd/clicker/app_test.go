package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/hotkeys"
	"burstclicker/internal/settings"
)

type fakeBackend struct {
	left  atomic.Bool
	right atomic.Bool

	mu         sync.Mutex
	clicks     []autoclicker.Button
	registered map[hotkeys.ID]int
	closed     bool

	presses chan hotkeys.ID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		registered: make(map[hotkeys.ID]int),
		presses:    make(chan hotkeys.ID, 4),
	}
}

func (b *fakeBackend) Pressed(button autoclicker.Button) bool {
	if button == autoclicker.ButtonRight {
		return b.right.Load()
	}
	return b.left.Load()
}

func (b *fakeBackend) Click(button autoclicker.Button) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks = append(b.clicks, button)
	return nil
}

func (b *fakeBackend) Register(id hotkeys.ID, vk int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registered[id] = vk
	return nil
}

func (b *fakeBackend) Unregister(id hotkeys.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.registered, id)
	return nil
}

func (b *fakeBackend) Presses() <-chan hotkeys.ID {
	return b.presses
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.presses)
	}
	return nil
}

func (b *fakeBackend) clickCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clicks)
}

func (b *fakeBackend) binding(id hotkeys.ID) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	vk, ok := b.registered[id]
	return vk, ok
}

type stubView struct {
	mu      sync.Mutex
	machine *autoclicker.Machine
	renders int
}

func (v *stubView) bind(m *autoclicker.Machine) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.machine = m
}

func (v *stubView) Render(autoclicker.Mode, autoclicker.Config, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.renders++
}

func (v *stubView) PromptExit() {
	v.mu.Lock()
	m := v.machine
	v.mu.Unlock()
	m.ConfirmExit(autoclicker.ExitDiscard)
}

func (v *stubView) Notify(string)     {}
func (v *stubView) ReportError(error) {}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startTestApp(t *testing.T) (*clickerApp, *fakeBackend, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "config.ini")
	store, err := settings.NewStore(path, logger)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	input := newFakeBackend()
	cfg := config{idleTick: time.Millisecond, releasePoll: time.Millisecond}
	a, err := startAppWith(cfg, logger, store, input, &stubView{}, nil)
	if err != nil {
		t.Fatalf("startAppWith() error = %v", err)
	}
	t.Cleanup(a.close)
	return a, input, path
}

func TestAppRegistersHotkeysAndWritesDefaults(t *testing.T) {
	_, input, path := startTestApp(t)

	defaults := autoclicker.Defaults()
	for _, b := range hotkeys.Bindings(defaults) {
		if vk, ok := input.binding(b.ID); !ok || vk != b.VK {
			t.Fatalf("hotkey %s bound to %d,%v want %d", b.ID, vk, ok, b.VK)
		}
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults not written: %v", err)
	}
}

func TestAppHotkeyActivatesBursts(t *testing.T) {
	a, input, _ := startTestApp(t)

	input.presses <- hotkeys.Activate
	waitFor(t, "active mode", func() bool { return a.machine.Mode() == autoclicker.ModeActive })

	input.left.Store(true)
	waitFor(t, "a full burst", func() bool { return input.clickCount() == 3 })
	input.left.Store(false)

	input.presses <- hotkeys.Deactivate
	waitFor(t, "idle mode", func() bool { return a.machine.Mode() == autoclicker.ModeIdle })

	input.left.Store(true)
	time.Sleep(30 * time.Millisecond)
	if got := input.clickCount(); got != 3 {
		t.Fatalf("clicks = %d after deactivating, want 3", got)
	}
}

func TestAppSaveRebindsHotkeysAndPersists(t *testing.T) {
	a, input, path := startTestApp(t)

	a.machine.Handle(autoclicker.SignalConfigToggle)
	a.machine.EditField(autoclicker.FieldActivationKey, 0x41)
	a.machine.Handle(autoclicker.SignalSave)

	if vk, _ := input.binding(hotkeys.Activate); vk != 0x41 {
		t.Fatalf("activate bound to %d after save, want 0x41", vk)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(raw), "activationKey=65") {
		t.Fatalf("saved file missing new key:\n%s", raw)
	}
}

func TestAppCloseReleasesEverything(t *testing.T) {
	a, input, _ := startTestApp(t)

	a.close()
	a.close()

	input.mu.Lock()
	defer input.mu.Unlock()
	if !input.closed {
		t.Fatalf("backend not closed")
	}
	if len(input.registered) != 0 {
		t.Fatalf("hotkeys still registered: %v", input.registered)
	}
}
