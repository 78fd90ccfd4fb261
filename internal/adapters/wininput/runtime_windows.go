//go:build windows

// Package wininput polls mouse buttons with GetAsyncKeyState and injects
// clicks with SendInput.
package wininput

import (
	"fmt"
	"time"
	"unsafe"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/keycode"

	"golang.org/x/sys/windows"
)

const (
	inputMouse           = 0
	mouseeventfLeftDown  = 0x0002
	mouseeventfLeftUp    = 0x0004
	mouseeventfRightDown = 0x0008
	mouseeventfRightUp   = 0x0010

	keyDownMask = 0x8000
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSendInput        = user32.NewProc("SendInput")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

type input struct {
	Type uint32
	Mi   mouseInput
}

// Runtime is stateless; the OS owns the button state.
type Runtime struct {
	logger autoclicker.Logger
}

func NewRuntime(logger autoclicker.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if err := procSendInput.Find(); err != nil {
		return nil, fmt.Errorf("SendInput unavailable: %w", err)
	}
	return &Runtime{logger: logger}, nil
}

func (r *Runtime) Pressed(button autoclicker.Button) bool {
	switch button {
	case autoclicker.ButtonLeft:
		return isKeyDown(keycode.VKLButton)
	case autoclicker.ButtonRight:
		return isKeyDown(keycode.VKRButton)
	default:
		return false
	}
}

func (r *Runtime) Click(button autoclicker.Button) error {
	down, up := uint32(mouseeventfLeftDown), uint32(mouseeventfLeftUp)
	if button == autoclicker.ButtonRight {
		down, up = mouseeventfRightDown, mouseeventfRightUp
	}
	inputs := []input{
		{Type: inputMouse, Mi: mouseInput{DwFlags: down}},
		{Type: inputMouse, Mi: mouseInput{DwFlags: up}},
	}

	sent, _, callErr := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if sent != uintptr(len(inputs)) {
		if callErr != nil && callErr != windows.Errno(0) {
			return callErr
		}
		return fmt.Errorf("SendInput sent %d of %d inputs", sent, len(inputs))
	}
	return nil
}

func (r *Runtime) Close() error {
	return nil
}

// CaptureNextKey polls every named key until one goes down and returns its
// virtual-key code. Keys already held when the capture starts are ignored.
func CaptureNextKey(timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	known := keycode.Known()
	held := make(map[int]bool, len(known))
	for _, vk := range known {
		held[vk] = isKeyDown(vk)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, vk := range known {
			down := isKeyDown(vk)
			if down && !held[vk] {
				return vk, nil
			}
			held[vk] = down
		}
		time.Sleep(5 * time.Millisecond)
	}
	return 0, fmt.Errorf("timed out waiting for key/button input")
}

func isKeyDown(vk int) bool {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(state)&keyDownMask != 0
}
