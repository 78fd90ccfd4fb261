//go:build windows || darwin

// Package hotkeyreg registers global hotkeys through the operating system's
// shortcut facility (RegisterHotKey on Windows, Carbon hot keys on macOS).
package hotkeyreg

import (
	"fmt"
	"sync"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/hotkeys"
	"burstclicker/internal/keycode"

	"golang.design/x/hotkey"
)

type binding struct {
	hk   *hotkey.Hotkey
	done chan struct{}
}

// Registrar implements hotkeys.Registrar. Each registered key gets a goroutine
// that forwards its keydown events to Presses.
type Registrar struct {
	logger autoclicker.Logger

	mu       sync.Mutex
	bindings map[hotkeys.ID]binding
	closed   bool

	presses chan hotkeys.ID
	wg      sync.WaitGroup
}

func New(logger autoclicker.Logger) (*Registrar, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Registrar{
		logger:   logger,
		bindings: make(map[hotkeys.ID]binding),
		presses:  make(chan hotkeys.ID, 16),
	}, nil
}

func (r *Registrar) Register(id hotkeys.ID, vk int) error {
	key, ok := keyFor(vk)
	if !ok {
		return fmt.Errorf("key %s cannot be registered as a global hotkey", keycode.Name(vk))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("registrar is closed")
	}
	r.unregisterLocked(id)

	hk := hotkey.New(nil, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", keycode.Name(vk), err)
	}
	b := binding{hk: hk, done: make(chan struct{})}
	r.bindings[id] = b

	r.wg.Add(1)
	go r.forward(id, b)
	return nil
}

func (r *Registrar) Unregister(id hotkeys.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(id)
}

func (r *Registrar) Presses() <-chan hotkeys.ID {
	return r.presses
}

// Close unregisters every hotkey and closes Presses.
func (r *Registrar) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for id := range r.bindings {
		_ = r.unregisterLocked(id)
	}
	r.mu.Unlock()

	r.wg.Wait()
	close(r.presses)
	return nil
}

func (r *Registrar) unregisterLocked(id hotkeys.ID) error {
	b, ok := r.bindings[id]
	if !ok {
		return nil
	}
	delete(r.bindings, id)
	close(b.done)
	return b.hk.Unregister()
}

func (r *Registrar) forward(id hotkeys.ID, b binding) {
	defer r.wg.Done()
	keydown := b.hk.Keydown()
	for {
		select {
		case <-b.done:
			return
		case <-keydown:
			select {
			case r.presses <- id:
			case <-b.done:
				return
			default:
				r.logger.Warn("Dropping hotkey press, dispatcher is behind", "hotkey", id)
			}
		}
	}
}
