//go:build linux

package linuxinput

import (
	"context"
	"fmt"
	"time"

	"burstclicker/internal/keycode"

	evdev "github.com/holoplot/go-evdev"
)

const defaultCaptureTimeout = 10 * time.Second

// CaptureNextKey waits for the next key or button press that has a
// virtual-key code and returns that code. Presses without one are skipped. An
// empty devicePath listens on every physical device that reports key events.
func CaptureNextKey(devicePath string, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}
	devices, err := openCaptureDevices(devicePath)
	if err != nil {
		return 0, err
	}
	defer func() {
		for _, dev := range devices {
			_ = dev.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	found := make(chan int, 1)
	skipped := make(chan uint16, 8)
	for _, dev := range devices {
		go watchForKey(ctx, dev, found, skipped)
	}

	var lastSkipped string
	for {
		select {
		case vk := <-found:
			return vk, nil
		case code := <-skipped:
			lastSkipped = evdevKeyName(code)
		case <-ctx.Done():
			if lastSkipped != "" {
				return 0, fmt.Errorf("no mappable key pressed within %s (%s has no virtual-key code)", timeout, lastSkipped)
			}
			return 0, fmt.Errorf("no key or button pressed within %s", timeout)
		}
	}
}

func evdevKeyName(code uint16) string {
	if name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code)); name != "" {
		return name
	}
	return fmt.Sprintf("key code %d", code)
}

func watchForKey(ctx context.Context, dev *evdev.InputDevice, found chan<- int, skipped chan<- uint16) {
	for ctx.Err() == nil {
		events, err := dev.ReadSlice(16)
		if err != nil {
			if isDeviceClosedError(err) {
				return
			}
			pause := 25 * time.Millisecond
			if isWouldBlockError(err) {
				pause = 5 * time.Millisecond
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(pause):
			}
			continue
		}

		for _, event := range events {
			if event.Type != evdev.EV_KEY || event.Value != 1 {
				continue
			}
			vk, ok := keycode.FromEvdev(uint16(event.Code))
			if !ok {
				select {
				case skipped <- uint16(event.Code):
				default:
				}
				continue
			}
			select {
			case found <- vk:
			default:
			}
			return
		}
	}
}

func openCaptureDevices(devicePath string) ([]*evdev.InputDevice, error) {
	var paths []string
	if devicePath != "" {
		paths = []string{devicePath}
	} else {
		infos, err := ListInputDevices()
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if !info.IsVirtual && (info.IsKeyboard || info.IsPointer) {
				paths = append(paths, info.Path)
			}
		}
	}

	devices := make([]*evdev.InputDevice, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path)
		if err == nil && len(dev.CapableEvents(evdev.EV_KEY)) > 0 {
			err = dev.NonBlock()
		} else if err == nil {
			err = fmt.Errorf("%s does not report key events", path)
		}
		if err != nil {
			if dev != nil {
				_ = dev.Close()
			}
			if devicePath != "" {
				return nil, err
			}
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no readable input devices with key events found")
	}
	return devices, nil
}
