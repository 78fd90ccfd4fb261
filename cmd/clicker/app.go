package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/hotkeys"
	"burstclicker/internal/keycode"
	"burstclicker/internal/settings"
)

// backend is one platform's set of input capabilities.
type backend interface {
	autoclicker.Poller
	autoclicker.Injector
	hotkeys.Registrar
	Close() error
}

// machineView lets a View be built before the machine it drives.
type machineView interface {
	autoclicker.View
	bind(m *autoclicker.Machine)
}

type clickerApp struct {
	logger  *slog.Logger
	store   *settings.Store
	live    *autoclicker.LiveConfig
	machine *autoclicker.Machine
	loop    *autoclicker.Loop
	backend backend
	hotkeys *hotkeys.Manager

	cancelDispatch context.CancelFunc
	dispatchDone   chan struct{}
	closeOnce      sync.Once
}

// startApp loads settings, opens the backend, registers hotkeys and starts the
// automation loop. onShutdown runs when Escape is pressed outside configuration.
func startApp(cfg config, logger *slog.Logger, view machineView, onShutdown func()) (*clickerApp, error) {
	store, err := settings.NewStore(cfg.settingsPath, logger)
	if err != nil {
		return nil, err
	}
	input, err := openBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	return startAppWith(cfg, logger, store, input, view, onShutdown)
}

// startAppWith takes ownership of input and closes it on failure.
func startAppWith(cfg config, logger *slog.Logger, store *settings.Store, input backend, view machineView, onShutdown func()) (*clickerApp, error) {
	initial, err := store.Load()
	if err != nil {
		logger.Warn("Failed to write default settings", "path", store.Path(), "err", err)
	}
	live := autoclicker.NewLiveConfig(initial)

	manager, err := hotkeys.NewManager(input, logger)
	if err != nil {
		_ = input.Close()
		return nil, err
	}

	machine, err := autoclicker.NewMachine(autoclicker.MachineConfig{
		Config:     live,
		Persister:  hotkeys.RebindingPersister{Persister: store, Manager: manager},
		View:       view,
		Logger:     logger,
		OnShutdown: onShutdown,
	})
	if err != nil {
		_ = input.Close()
		return nil, err
	}
	view.bind(machine)

	loop, err := autoclicker.NewLoop(machine, live, input, input, logger, autoclicker.LoopConfig{
		IdleTick:    cfg.idleTick,
		ReleasePoll: cfg.releasePoll,
	})
	if err != nil {
		_ = input.Close()
		return nil, err
	}

	manager.Apply(live.Snapshot())

	ctx, cancel := context.WithCancel(context.Background())
	a := &clickerApp{
		logger:         logger,
		store:          store,
		live:           live,
		machine:        machine,
		loop:           loop,
		backend:        input,
		hotkeys:        manager,
		cancelDispatch: cancel,
		dispatchDone:   make(chan struct{}),
	}
	go func() {
		defer close(a.dispatchDone)
		hotkeys.Dispatch(ctx, input.Presses(), machine, logger)
	}()
	loop.Start()

	logger.Info("Settings", "path", store.Path())
	for _, line := range bindingLines(live.Snapshot()) {
		logger.Info("Hotkey", "binding", line)
	}
	machine.Refresh()
	return a, nil
}

// close joins the automation loop before releasing input so nothing is
// injected after it returns.
func (a *clickerApp) close() {
	a.closeOnce.Do(func() {
		a.loop.Stop()
		a.hotkeys.Close()
		a.cancelDispatch()
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("Failed to close input backend", "err", err)
		}
		<-a.dispatchDone
		a.logger.Info("Stopped")
	})
}

func bindingLines(cfg autoclicker.Config) []string {
	return []string{
		fmt.Sprintf("Activate: %s", keycode.Name(cfg.ActivationKey)),
		fmt.Sprintf("Deactivate: %s", keycode.Name(cfg.DeactivationKey)),
		fmt.Sprintf("Configure: %s", keycode.Name(cfg.ConfigModeKey)),
		fmt.Sprintf("Save: %s", keycode.Name(cfg.SaveConfigKey)),
	}
}

// statusLines is the main display: mode, burst settings and hotkeys.
func statusLines(mode autoclicker.Mode, cfg autoclicker.Config) []string {
	lines := []string{
		fmt.Sprintf("Status: %s", strings.ToUpper(mode.String())),
		fmt.Sprintf("Left clicks: %d", cfg.LeftClickCount),
		fmt.Sprintf("Right clicks: %d", cfg.RightClickCount),
		fmt.Sprintf("Delay: %d ms", cfg.DelayMs),
	}
	return append(lines, bindingLines(cfg)...)
}
