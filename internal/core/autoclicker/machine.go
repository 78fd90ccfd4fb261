package autoclicker

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type Signal int

const (
	SignalActivate Signal = iota + 1
	SignalDeactivate
	SignalConfigToggle
	SignalSave
	SignalEscape
)

func (s Signal) String() string {
	switch s {
	case SignalActivate:
		return "activate"
	case SignalDeactivate:
		return "deactivate"
	case SignalConfigToggle:
		return "config-toggle"
	case SignalSave:
		return "save"
	case SignalEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// ExitChoice answers the unsaved-changes prompt shown when leaving Configuring.
type ExitChoice int

const (
	ExitSave ExitChoice = iota + 1
	ExitDiscard
	ExitCancel
)

func (c ExitChoice) String() string {
	switch c {
	case ExitSave:
		return "save-and-exit"
	case ExitDiscard:
		return "discard-and-exit"
	case ExitCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

type Persister interface {
	Save(cfg Config) error
}

// View is the UI shell as seen by the machine. Calls are made without the
// machine lock held, so a View may call back into the machine.
type View interface {
	Render(mode Mode, cfg Config, unsaved bool)
	// PromptExit asks the user to choose an ExitChoice and deliver it via ConfirmExit.
	PromptExit()
	Notify(msg string)
	ReportError(err error)
}

type MachineConfig struct {
	Config    *LiveConfig
	Persister Persister
	View      View
	Logger    Logger
	// OnShutdown runs once when Escape is received outside Configuring.
	OnShutdown func()
}

// Machine serializes mode transitions driven by hotkeys and UI commands.
// It is the only writer of Mode and of the unsaved-changes flag.
type Machine struct {
	config     *LiveConfig
	persister  Persister
	view       View
	logger     Logger
	onShutdown func()

	mode atomic.Int32

	mu            sync.Mutex
	draft         Config
	unsaved       bool
	promptPending bool
	shutdown      bool
}

func NewMachine(cfg MachineConfig) (*Machine, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("live config is nil")
	}
	if cfg.Persister == nil {
		return nil, fmt.Errorf("persister is nil")
	}
	if cfg.View == nil {
		return nil, fmt.Errorf("view is nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	m := &Machine{
		config:     cfg.Config,
		persister:  cfg.Persister,
		view:       cfg.View,
		logger:     cfg.Logger,
		onShutdown: cfg.OnShutdown,
	}
	m.mode.Store(int32(ModeIdle))
	return m, nil
}

func (m *Machine) Mode() Mode {
	return Mode(m.mode.Load())
}

func (m *Machine) Unsaved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsaved
}

// Refresh re-renders the current state.
func (m *Machine) Refresh() {
	m.mu.Lock()
	effects := []func(){m.renderLocked()}
	m.mu.Unlock()
	run(effects)
}

func (m *Machine) Handle(sig Signal) {
	m.mu.Lock()
	var effects []func()
	if !m.shutdown {
		effects = m.handleLocked(sig)
	}
	m.mu.Unlock()
	run(effects)
}

// EditField records a configuration edit made in the UI.
func (m *Machine) EditField(field Field, value int) {
	m.mu.Lock()
	if m.shutdown || m.Mode() != ModeConfiguring {
		m.mu.Unlock()
		m.logger.Debug("Ignoring field edit outside configuration", "field", field)
		return
	}
	m.draft = m.draft.With(field, value)
	m.unsaved = true
	effects := []func(){m.renderLocked()}
	m.mu.Unlock()
	run(effects)
}

// ConfirmExit applies the user's answer to the exit prompt. SaveAndExit is also
// accepted without a prompt, as the save-and-close command.
func (m *Machine) ConfirmExit(choice ExitChoice) {
	m.mu.Lock()
	var effects []func()
	if !m.shutdown && m.Mode() == ModeConfiguring {
		effects = m.confirmExitLocked(choice)
	}
	m.mu.Unlock()
	run(effects)
}

func (m *Machine) handleLocked(sig Signal) []func() {
	mode := m.Mode()
	m.logger.Debug("Signal", "signal", sig, "mode", mode)

	switch sig {
	case SignalActivate:
		if mode == ModeConfiguring {
			return nil
		}
		m.setMode(ModeActive)
		return []func(){m.renderLocked()}
	case SignalDeactivate:
		if mode == ModeConfiguring {
			return nil
		}
		m.setMode(ModeIdle)
		return []func(){m.renderLocked()}
	case SignalConfigToggle:
		if mode != ModeConfiguring {
			m.draft = m.config.Snapshot()
			m.unsaved = false
			m.promptPending = false
			m.setMode(ModeConfiguring)
			return []func(){m.renderLocked()}
		}
		return m.attemptExitLocked()
	case SignalSave:
		if mode != ModeConfiguring {
			return nil
		}
		err := m.commitLocked()
		if err != nil {
			return []func(){m.renderLocked(), m.reportErrorEffect(err)}
		}
		view := m.view
		return []func(){m.renderLocked(), func() { view.Notify("Settings saved") }}
	case SignalEscape:
		if mode == ModeConfiguring {
			return m.attemptExitLocked()
		}
		m.shutdown = true
		m.logger.Info("Shutdown requested")
		if m.onShutdown == nil {
			return nil
		}
		return []func(){m.onShutdown}
	default:
		m.logger.Warn("Unknown signal", "signal", int(sig))
		return nil
	}
}

func (m *Machine) attemptExitLocked() []func() {
	if !m.unsaved {
		m.leaveConfigLocked()
		return []func(){m.renderLocked()}
	}
	if m.promptPending {
		return nil
	}
	m.promptPending = true
	view := m.view
	return []func(){view.PromptExit}
}

func (m *Machine) confirmExitLocked(choice ExitChoice) []func() {
	m.promptPending = false
	switch choice {
	case ExitCancel:
		return []func(){m.renderLocked()}
	case ExitSave:
		// A failed persist is reported but the transition still happens.
		err := m.commitLocked()
		m.leaveConfigLocked()
		if err != nil {
			return []func(){m.renderLocked(), m.reportErrorEffect(err)}
		}
		return []func(){m.renderLocked()}
	case ExitDiscard:
		m.leaveConfigLocked()
		return []func(){m.renderLocked()}
	default:
		m.logger.Warn("Unknown exit choice", "choice", int(choice))
		return nil
	}
}

// commitLocked publishes the draft and persists it. The unsaved flag is cleared
// even when persisting fails (current, possibly unintended behavior).
func (m *Machine) commitLocked() error {
	m.config.Replace(m.draft)
	m.draft = m.config.Snapshot()
	err := m.persister.Save(m.draft)
	m.unsaved = false
	if err != nil {
		m.logger.Error("Failed to persist settings", "err", err)
		return fmt.Errorf("save settings: %w", err)
	}
	m.logger.Info("Settings saved")
	return nil
}

// leaveConfigLocked always lands in Idle, regardless of the mode held before
// Configuring (current, possibly unintended behavior).
func (m *Machine) leaveConfigLocked() {
	m.draft = Config{}
	m.unsaved = false
	m.promptPending = false
	m.setMode(ModeIdle)
}

func (m *Machine) setMode(mode Mode) {
	prev := Mode(m.mode.Swap(int32(mode)))
	if prev != mode {
		m.logger.Info("Mode changed", "from", prev, "to", mode)
	}
}

func (m *Machine) renderLocked() func() {
	mode := m.Mode()
	cfg := m.config.Snapshot()
	if mode == ModeConfiguring {
		cfg = m.draft
	}
	unsaved := m.unsaved
	view := m.view
	return func() { view.Render(mode, cfg, unsaved) }
}

func (m *Machine) reportErrorEffect(err error) func() {
	view := m.view
	return func() { view.ReportError(err) }
}

func run(effects []func()) {
	for _, effect := range effects {
		effect()
	}
}
