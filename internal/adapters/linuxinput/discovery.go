//go:build linux

package linuxinput

import (
	"fmt"
	"os"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

// VirtualDeviceName is the name of the uinput device that carries injected clicks.
const VirtualDeviceName = "burstclicker"

type DeviceInfo struct {
	Path       string
	Name       string
	IsVirtual  bool
	IsPointer  bool
	IsKeyboard bool
}

// SourceSelection is the set of opened devices the runtime reads. Button state
// comes from PointerPaths, hotkey presses from KeyboardPaths.
type SourceSelection struct {
	Devices       []*evdev.InputDevice
	PointerPaths  map[string]struct{}
	KeyboardPaths map[string]struct{}
}

func (s *SourceSelection) Close() {
	for _, dev := range s.Devices {
		_ = dev.Close()
	}
}

func ListInputDevices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]DeviceInfo, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}
		devices = append(devices, describeDevice(dev, path.Name))
		_ = dev.Close()
	}

	return devices, nil
}

// OpenSources opens the devices to read. With devicePath set, that device is the
// only pointer source; keyboards are always discovered so hotkeys keep working.
func OpenSources(devicePath string) (*SourceSelection, error) {
	infos, err := ListInputDevices()
	if err != nil {
		return nil, err
	}

	pointerPaths := make(map[string]struct{})
	keyboardPaths := make(map[string]struct{})
	if devicePath != "" {
		pointerPaths[devicePath] = struct{}{}
	}
	for _, info := range infos {
		if info.IsVirtual {
			continue
		}
		if devicePath == "" && info.IsPointer {
			pointerPaths[info.Path] = struct{}{}
		}
		if info.IsKeyboard {
			keyboardPaths[info.Path] = struct{}{}
		}
	}
	if len(pointerPaths) == 0 {
		return nil, fmt.Errorf("no mouse with left/right buttons found; use --list-devices and then pass --device")
	}

	allPathMap := make(map[string]struct{}, len(pointerPaths)+len(keyboardPaths))
	for path := range pointerPaths {
		allPathMap[path] = struct{}{}
	}
	for path := range keyboardPaths {
		allPathMap[path] = struct{}{}
	}
	allPaths := make([]string, 0, len(allPathMap))
	for path := range allPathMap {
		allPaths = append(allPaths, path)
	}
	sort.Strings(allPaths)

	selection := &SourceSelection{
		Devices:       make([]*evdev.InputDevice, 0, len(allPaths)),
		PointerPaths:  pointerPaths,
		KeyboardPaths: keyboardPaths,
	}
	for _, path := range allPaths {
		dev, err := openInputDevice(path)
		if err != nil {
			if path == devicePath {
				selection.Close()
				return nil, err
			}
			delete(pointerPaths, path)
			delete(keyboardPaths, path)
			continue
		}
		selection.Devices = append(selection.Devices, dev)
	}

	if devicePath != "" && !deviceSupportsCode(selection.byPath(devicePath), uint16(evdev.BTN_LEFT)) {
		selection.Close()
		return nil, fmt.Errorf("%s does not expose BTN_LEFT", devicePath)
	}
	if len(pointerPaths) == 0 {
		selection.Close()
		return nil, fmt.Errorf("found mouse devices, but failed to open any of them")
	}
	return selection, nil
}

func (s *SourceSelection) byPath(path string) *evdev.InputDevice {
	for _, dev := range s.Devices {
		if dev.Path() == path {
			return dev
		}
	}
	return nil
}

func openInputDevice(path string) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, os.O_RDONLY)
}

func describeDevice(dev *evdev.InputDevice, fallbackName string) DeviceInfo {
	name := fallbackName
	if actualName, err := dev.Name(); err == nil && actualName != "" {
		name = actualName
	}
	return DeviceInfo{
		Path:       dev.Path(),
		Name:       name,
		IsVirtual:  deviceIsVirtual(dev, name),
		IsPointer:  deviceIsPointer(dev),
		IsKeyboard: deviceIsKeyboard(dev),
	}
}

func deviceSupportsCode(device *evdev.InputDevice, code uint16) bool {
	if device == nil {
		return false
	}
	needle := evdev.EvCode(code)
	for _, c := range device.CapableEvents(evdev.EV_KEY) {
		if c == needle {
			return true
		}
	}
	return false
}

func deviceIsVirtual(device *evdev.InputDevice, name string) bool {
	id, err := device.InputID()
	if err == nil && id.BusType == uint16(evdev.BUS_VIRTUAL) {
		return true
	}
	return nameLooksVirtual(name)
}

func nameLooksVirtual(name string) bool {
	lower := strings.ToLower(name)
	for _, token := range []string{"virtual", "uinput", "ydotool", VirtualDeviceName, "autoclicker"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// deviceIsPointer requires both buttons the loop polls.
func deviceIsPointer(device *evdev.InputDevice) bool {
	return deviceSupportsCode(device, uint16(evdev.BTN_LEFT)) && deviceSupportsCode(device, uint16(evdev.BTN_RIGHT))
}

func deviceIsKeyboard(device *evdev.InputDevice) bool {
	for _, c := range device.CapableEvents(evdev.EV_KEY) {
		if c >= evdev.KEY_ESC && c < evdev.BTN_MISC {
			return true
		}
	}
	return false
}
