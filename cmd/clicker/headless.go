package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"burstclicker/internal/core/autoclicker"

	"github.com/gen2brain/beeep"
)

const notifyTitle = "burstclicker"

// headlessView reports state through the log and desktop notifications.
// There is no edit surface, so exit prompts always save.
type headlessView struct {
	logger *slog.Logger

	mu       sync.Mutex
	machine  *autoclicker.Machine
	lastMode autoclicker.Mode
	rendered bool
}

func newHeadlessView(logger *slog.Logger) *headlessView {
	return &headlessView{logger: logger}
}

func (v *headlessView) bind(m *autoclicker.Machine) {
	v.mu.Lock()
	v.machine = m
	v.mu.Unlock()
}

func (v *headlessView) Render(mode autoclicker.Mode, cfg autoclicker.Config, unsaved bool) {
	v.mu.Lock()
	changed := !v.rendered || mode != v.lastMode
	first := !v.rendered
	v.lastMode = mode
	v.rendered = true
	v.mu.Unlock()

	if !changed {
		return
	}
	v.logger.Info("Status",
		"mode", mode,
		"left", cfg.LeftClickCount,
		"right", cfg.RightClickCount,
		"delayMs", cfg.DelayMs,
		"unsaved", unsaved,
	)
	if first {
		return
	}
	if freq, duration, ok := modeTone(mode); ok {
		if err := beeep.Beep(freq, duration); err != nil {
			v.logger.Debug("Beep failed", "err", err)
		}
	}
}

func (v *headlessView) PromptExit() {
	v.mu.Lock()
	m := v.machine
	v.mu.Unlock()
	if m != nil {
		m.ConfirmExit(autoclicker.ExitSave)
	}
}

func (v *headlessView) Notify(msg string) {
	v.logger.Info(msg)
	if err := beeep.Notify(notifyTitle, msg, ""); err != nil {
		v.logger.Debug("Notification failed", "err", err)
	}
}

func (v *headlessView) ReportError(err error) {
	v.logger.Error("Error", "err", err)
	if alertErr := beeep.Alert(notifyTitle, err.Error(), ""); alertErr != nil {
		v.logger.Debug("Alert failed", "err", alertErr)
	}
}

// modeTone picks the beep played on entering mode: high for Active, low for
// Idle, none for Configuring.
func modeTone(mode autoclicker.Mode) (float64, int, bool) {
	switch mode {
	case autoclicker.ModeActive:
		return beeep.DefaultFreq * 2, beeep.DefaultDuration / 3, true
	case autoclicker.ModeIdle:
		return beeep.DefaultFreq, beeep.DefaultDuration / 2, true
	default:
		return 0, 0, false
	}
}

func runHeadless(cfg config) error {
	logger := newSlogLogger(cfg.logLevel, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	view := newHeadlessView(logger)
	a, err := startApp(cfg, logger, view, cancel)
	if err != nil {
		return err
	}
	defer a.close()

	logger.Info("Hold a mouse button while active to fire a burst. Press Ctrl+C to stop")
	<-ctx.Done()
	return nil
}
