//go:build darwin

// Package hookinput tracks mouse buttons from the global event hook and injects
// clicks with robotgo. It needs the Accessibility permission on macOS.
package hookinput

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"burstclicker/internal/core/autoclicker"

	"github.com/go-vgo/robotgo"
	hook "github.com/robotn/gohook"
)

// buttonState tracks one button. The hook reports synthetic clicks too, so
// echoes holds the injected edges still expected back.
type buttonState struct {
	down   atomic.Bool
	echoes echoFilter
}

type Runtime struct {
	logger autoclicker.Logger

	left  buttonState
	right buttonState

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func NewRuntime(logger autoclicker.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Runtime{
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

func (r *Runtime) Start() error {
	r.startOnce.Do(func() {
		events := hook.Start()
		go r.eventLoop(events)
	})
	return nil
}

func (r *Runtime) Close() error {
	r.stopOnce.Do(func() {
		started := true
		r.startOnce.Do(func() { started = false })
		close(r.stopCh)
		if started {
			hook.End()
			<-r.doneCh
		}
	})
	return nil
}

func (r *Runtime) Pressed(button autoclicker.Button) bool {
	if state := r.state(button); state != nil {
		return state.down.Load()
	}
	return false
}

func (r *Runtime) Click(button autoclicker.Button) error {
	state := r.state(button)
	if state == nil {
		return fmt.Errorf("unsupported button %v", button)
	}
	state.echoes.expect(time.Now())
	robotgo.Click(button.String(), false)
	return nil
}

func (r *Runtime) state(button autoclicker.Button) *buttonState {
	switch button {
	case autoclicker.ButtonLeft:
		return &r.left
	case autoclicker.ButtonRight:
		return &r.right
	default:
		return nil
	}
}

func (r *Runtime) eventLoop(events chan hook.Event) {
	defer close(r.doneCh)

	leftCode := hook.MouseMap["left"]
	rightCode := hook.MouseMap["right"]
	for {
		select {
		case <-r.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			var state *buttonState
			switch ev.Button {
			case leftCode:
				state = &r.left
			case rightCode:
				state = &r.right
			default:
				continue
			}
			switch ev.Kind {
			case hook.MouseHold:
				if !state.echoes.consume(edgeHold, time.Now()) {
					state.down.Store(true)
				}
			case hook.MouseUp:
				if !state.echoes.consume(edgeUp, time.Now()) {
					state.down.Store(false)
				}
			}
		}
	}
}
