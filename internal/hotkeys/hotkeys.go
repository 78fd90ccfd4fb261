// Package hotkeys binds the four logical hotkeys to virtual-key codes through a
// platform Registrar and forwards their presses to the mode state machine.
package hotkeys

import (
	"context"
	"fmt"
	"sync"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/keycode"
)

type ID int

const (
	Activate ID = iota + 1
	Deactivate
	ConfigToggle
	Save
)

func (id ID) String() string {
	switch id {
	case Activate:
		return "activate"
	case Deactivate:
		return "deactivate"
	case ConfigToggle:
		return "config-toggle"
	case Save:
		return "save"
	default:
		return "unknown"
	}
}

// Signal maps a hotkey to the state machine signal it raises.
func (id ID) Signal() autoclicker.Signal {
	switch id {
	case Activate:
		return autoclicker.SignalActivate
	case Deactivate:
		return autoclicker.SignalDeactivate
	case ConfigToggle:
		return autoclicker.SignalConfigToggle
	case Save:
		return autoclicker.SignalSave
	default:
		return 0
	}
}

// Registrar is the OS global shortcut facility. Presses of registered keys are
// delivered on Presses. Conflicting registrations are not detected here.
type Registrar interface {
	Register(id ID, vk int) error
	Unregister(id ID) error
	Presses() <-chan ID
}

type Binding struct {
	ID ID
	VK int
}

// Bindings lists the hotkeys configured in cfg, in registration order.
func Bindings(cfg autoclicker.Config) []Binding {
	return []Binding{
		{ID: Activate, VK: cfg.ActivationKey},
		{ID: Deactivate, VK: cfg.DeactivationKey},
		{ID: ConfigToggle, VK: cfg.ConfigModeKey},
		{ID: Save, VK: cfg.SaveConfigKey},
	}
}

// Manager keeps the registered set in sync with the configuration.
type Manager struct {
	reg    Registrar
	logger autoclicker.Logger

	mu    sync.Mutex
	bound map[ID]int
}

func NewManager(reg Registrar, logger autoclicker.Logger) (*Manager, error) {
	if reg == nil {
		return nil, fmt.Errorf("registrar is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Manager{reg: reg, logger: logger, bound: make(map[ID]int)}, nil
}

// Apply registers every binding of cfg, replacing bindings whose key changed.
// All changed bindings are released before any new key is registered, so keys
// swapped between hotkeys do not collide. Failures are logged and leave that
// hotkey unbound.
func (m *Manager) Apply(cfg autoclicker.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []Binding
	for _, b := range Bindings(cfg) {
		vk, ok := m.bound[b.ID]
		if ok && vk == b.VK {
			continue
		}
		if ok {
			if err := m.reg.Unregister(b.ID); err != nil {
				m.logger.Warn("Failed to unregister hotkey", "hotkey", b.ID, "key", keycode.Name(vk), "err", err)
			}
			delete(m.bound, b.ID)
		}
		pending = append(pending, b)
	}

	for _, b := range pending {
		if err := m.reg.Register(b.ID, b.VK); err != nil {
			m.logger.Warn("Failed to register hotkey", "hotkey", b.ID, "key", keycode.Name(b.VK), "err", err)
			continue
		}
		m.bound[b.ID] = b.VK
		m.logger.Debug("Hotkey registered", "hotkey", b.ID, "key", keycode.Name(b.VK))
	}
}

// Bound reports the key currently registered for id.
func (m *Manager) Bound(id ID) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vk, ok := m.bound[id]
	return vk, ok
}

// Close unregisters everything Apply registered.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range []ID{Activate, Deactivate, ConfigToggle, Save} {
		if _, ok := m.bound[b]; !ok {
			continue
		}
		if err := m.reg.Unregister(b); err != nil {
			m.logger.Warn("Failed to unregister hotkey", "hotkey", b, "err", err)
		}
		delete(m.bound, b)
	}
}

// Handler receives state machine signals.
type Handler interface {
	Handle(sig autoclicker.Signal)
}

// Dispatch forwards presses to h until ctx is done or presses is closed.
func Dispatch(ctx context.Context, presses <-chan ID, h Handler, logger autoclicker.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-presses:
			if !ok {
				return
			}
			sig := id.Signal()
			if sig == 0 {
				logger.Warn("Ignoring unknown hotkey", "hotkey", int(id))
				continue
			}
			logger.Debug("Hotkey pressed", "hotkey", id)
			h.Handle(sig)
		}
	}
}

// RebindingPersister wraps a Persister so that a successful save also moves
// the global hotkeys to the newly saved keys.
type RebindingPersister struct {
	Persister autoclicker.Persister
	Manager   *Manager
}

func (p RebindingPersister) Save(cfg autoclicker.Config) error {
	if err := p.Persister.Save(cfg); err != nil {
		return err
	}
	p.Manager.Apply(cfg)
	return nil
}
