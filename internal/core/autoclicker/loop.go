package autoclicker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultIdleTick    = time.Millisecond
	DefaultReleasePoll = 10 * time.Millisecond
)

type LoopConfig struct {
	IdleTick    time.Duration
	ReleasePoll time.Duration
	Clock       Clock
}

// Loop is the only producer of synthetic input. It polls the button state while
// the mode is Active and fires one burst per physical press.
type Loop struct {
	mode     ModeReader
	config   *LiveConfig
	poller   Poller
	injector Injector
	logger   Logger

	idleTick    time.Duration
	releasePoll time.Duration
	clock       Clock

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	doneCh    chan struct{}
}

type BurstResult struct {
	Button  Button
	Clicks  int
	Planned int
	Aborted bool
}

func NewLoop(mode ModeReader, config *LiveConfig, poller Poller, injector Injector, logger Logger, cfg LoopConfig) (*Loop, error) {
	if mode == nil {
		return nil, fmt.Errorf("mode reader is nil")
	}
	if config == nil {
		return nil, fmt.Errorf("live config is nil")
	}
	if poller == nil {
		return nil, fmt.Errorf("poller is nil")
	}
	if injector == nil {
		return nil, fmt.Errorf("injector is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if cfg.IdleTick <= 0 {
		cfg.IdleTick = DefaultIdleTick
	}
	if cfg.ReleasePoll <= 0 {
		cfg.ReleasePoll = DefaultReleasePoll
	}
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}

	return &Loop{
		mode:        mode,
		config:      config,
		poller:      poller,
		injector:    injector,
		logger:      logger,
		idleTick:    cfg.IdleTick,
		releasePoll: cfg.ReleasePoll,
		clock:       cfg.Clock,
		doneCh:      make(chan struct{}),
	}, nil
}

// Start runs the loop on its own goroutine until Stop is called.
func (l *Loop) Start() {
	l.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		l.cancel = cancel
		go func() {
			defer close(l.doneCh)
			l.Run(ctx)
		}()
	})
}

// Stop cancels the loop and waits for it to return, so no injection happens after Stop.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		// A Stop before Start leaves the loop permanently unstarted.
		l.startOnce.Do(func() {})
		if l.cancel == nil {
			return
		}
		l.cancel()
		<-l.doneCh
	})
}

// Run blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	for ctx.Err() == nil {
		if l.mode.Mode() != ModeActive {
			if !l.clock.Sleep(ctx, l.idleTick) {
				return
			}
			continue
		}

		left := l.poller.Pressed(ButtonLeft)
		right := l.poller.Pressed(ButtonRight)

		// Left wins a simultaneous press; right is picked up on a later tick.
		var button Button
		switch {
		case left:
			button = ButtonLeft
		case right:
			button = ButtonRight
		}

		if button != 0 {
			result := l.burst(ctx, button)
			if result.Aborted {
				l.logger.Debug("Burst aborted", "button", result.Button, "clicks", result.Clicks, "planned", result.Planned)
			} else {
				l.logger.Debug("Burst complete", "button", result.Button, "clicks", result.Clicks)
			}
			if !l.waitRelease(ctx, button) {
				return
			}
		}

		if !l.clock.Sleep(ctx, l.idleTick) {
			return
		}
	}
}

func (l *Loop) burst(ctx context.Context, button Button) BurstResult {
	snapshot := l.config.Snapshot()
	result := BurstResult{Button: button, Planned: snapshot.ClickCount(button)}
	delay := time.Duration(snapshot.DelayMs) * time.Millisecond

	for i := 0; i < result.Planned; i++ {
		if ctx.Err() != nil || l.mode.Mode() != ModeActive {
			result.Aborted = true
			return result
		}
		if err := l.injector.Click(button); err != nil {
			l.logger.Warn("Click injection failed", "button", button, "err", err)
		}
		result.Clicks++
		if !l.clock.Sleep(ctx, delay) {
			result.Aborted = i+1 < result.Planned
			return result
		}
	}
	return result
}

func (l *Loop) waitRelease(ctx context.Context, button Button) bool {
	for l.poller.Pressed(button) {
		if !l.clock.Sleep(ctx, l.releasePoll) {
			return false
		}
	}
	return ctx.Err() == nil
}
