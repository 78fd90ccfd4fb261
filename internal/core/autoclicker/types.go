package autoclicker

import (
	"context"
	"time"
)

type Button uint8

const (
	ButtonLeft Button = iota + 1
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

type Mode int32

const (
	ModeIdle Mode = iota
	ModeActive
	ModeConfiguring
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeActive:
		return "active"
	case ModeConfiguring:
		return "configuring"
	default:
		return "unknown"
	}
}

// Poller reports the physical state of a mouse button.
type Poller interface {
	Pressed(button Button) bool
}

// Injector emits one synthetic press+release of a mouse button.
type Injector interface {
	Click(button Button) error
}

type ModeReader interface {
	Mode() Mode
}

// Clock sleeps for d or until ctx is done. It reports false when ctx ended the wait.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) bool
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
