//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/hotkeys"
	"burstclicker/internal/keycode"

	evdev "github.com/holoplot/go-evdev"
)

// Runtime reads physical mouse and keyboard state from evdev and injects clicks
// through a uinput device. It works on Wayland and X11 alike.
type Runtime struct {
	sourceDevices []*evdev.InputDevice
	pointerPaths  map[string]struct{}
	keyboardPaths map[string]struct{}
	injector      *evdev.InputDevice
	logger        autoclicker.Logger

	leftDown  atomic.Bool
	rightDown atomic.Bool

	hotkeyMu sync.Mutex
	hotkeys  map[int]hotkeys.ID
	presses  chan hotkeys.ID

	stopCh    chan struct{}
	stopOnce  sync.Once
	readersWG sync.WaitGroup
}

func NewRuntime(selection *SourceSelection, logger autoclicker.Logger) (*Runtime, error) {
	if selection == nil {
		return nil, fmt.Errorf("source selection is nil")
	}
	if len(selection.Devices) == 0 {
		return nil, fmt.Errorf("source selection has no devices")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_RIGHT},
		evdev.EV_REL: {evdev.REL_X, evdev.REL_Y},
	}
	injector, err := evdev.CreateDevice(VirtualDeviceName, id, capabilities)
	if err != nil {
		return nil, fmt.Errorf("failed to create uinput device: %w", err)
	}

	return &Runtime{
		sourceDevices: selection.Devices,
		pointerPaths:  selection.PointerPaths,
		keyboardPaths: selection.KeyboardPaths,
		injector:      injector,
		logger:        logger,
		hotkeys:       make(map[int]hotkeys.ID),
		presses:       make(chan hotkeys.ID, 16),
		stopCh:        make(chan struct{}),
	}, nil
}

func (r *Runtime) Start() error {
	for _, dev := range r.sourceDevices {
		if err := dev.NonBlock(); err != nil {
			return fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
		}
	}
	for _, dev := range r.sourceDevices {
		name, _ := dev.Name()
		r.logger.Info("Reading input device", "path", dev.Path(), "name", name)
		r.readersWG.Add(1)
		go r.readLoop(dev)
	}
	return nil
}

// Close stops the readers and removes the uinput device. Presses is closed once
// no reader can send on it.
func (r *Runtime) Close() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.stopCh)
		for _, dev := range r.sourceDevices {
			_ = dev.Close()
		}
		r.readersWG.Wait()
		close(r.presses)
		err = r.injector.Close()
	})
	return err
}

func (r *Runtime) Pressed(button autoclicker.Button) bool {
	switch button {
	case autoclicker.ButtonLeft:
		return r.leftDown.Load()
	case autoclicker.ButtonRight:
		return r.rightDown.Load()
	default:
		return false
	}
}

func (r *Runtime) Click(button autoclicker.Button) error {
	code := evdev.EvCode(evdev.BTN_LEFT)
	if button == autoclicker.ButtonRight {
		code = evdev.BTN_RIGHT
	}
	for _, ev := range []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: code, Value: 1},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
		{Type: evdev.EV_KEY, Code: code, Value: 0},
		{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT, Value: 0},
	} {
		if err := r.injector.WriteOne(&ev); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) Register(id hotkeys.ID, vk int) error {
	if _, ok := keycode.ToEvdev(vk); !ok {
		return fmt.Errorf("key %s has no evdev equivalent", keycode.Name(vk))
	}
	r.hotkeyMu.Lock()
	defer r.hotkeyMu.Unlock()
	for existing, other := range r.hotkeys {
		if other == id {
			delete(r.hotkeys, existing)
		}
	}
	r.hotkeys[vk] = id
	return nil
}

func (r *Runtime) Unregister(id hotkeys.ID) error {
	r.hotkeyMu.Lock()
	defer r.hotkeyMu.Unlock()
	for vk, other := range r.hotkeys {
		if other == id {
			delete(r.hotkeys, vk)
		}
	}
	return nil
}

func (r *Runtime) Presses() <-chan hotkeys.ID {
	return r.presses
}

func (r *Runtime) readLoop(dev *evdev.InputDevice) {
	defer r.readersWG.Done()

	path := dev.Path()
	_, isPointer := r.pointerPaths[path]
	_, isKeyboard := r.keyboardPaths[path]
	for {
		events, err := dev.ReadSlice(64)
		if err != nil {
			if r.stopped() || isDeviceClosedError(err) {
				return
			}
			if isWouldBlockError(err) {
				if !r.sleepWithStop(time.Millisecond) {
					return
				}
				continue
			}
			r.logger.Warn("Read failed", "path", path, "err", err)
			if !r.sleepWithStop(100 * time.Millisecond) {
				return
			}
			continue
		}

		for _, event := range events {
			if event.Type != evdev.EV_KEY {
				continue
			}
			switch {
			case isPointer && event.Code == evdev.BTN_LEFT:
				r.leftDown.Store(event.Value != 0)
			case isPointer && event.Code == evdev.BTN_RIGHT:
				r.rightDown.Store(event.Value != 0)
			case isKeyboard && event.Value == 1:
				r.handleKeyDown(uint16(event.Code))
			}
		}
	}
}

// handleKeyDown ignores autorepeat (value 2) by only being called for value 1.
func (r *Runtime) handleKeyDown(code uint16) {
	vk, ok := keycode.FromEvdev(code)
	if !ok {
		return
	}
	r.hotkeyMu.Lock()
	id, ok := r.hotkeys[vk]
	r.hotkeyMu.Unlock()
	if !ok {
		return
	}
	select {
	case r.presses <- id:
	case <-r.stopCh:
	default:
		r.logger.Warn("Dropping hotkey press, dispatcher is behind", "hotkey", id)
	}
}

func (r *Runtime) stopped() bool {
	select {
	case <-r.stopCh:
		return true
	default:
		return false
	}
}

func (r *Runtime) sleepWithStop(duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-r.stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
