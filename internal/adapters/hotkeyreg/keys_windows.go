//go:build windows

package hotkeyreg

import "golang.design/x/hotkey"

// Windows hot keys take virtual-key codes directly. Mouse buttons cannot be
// registered.
func keyFor(vk int) (hotkey.Key, bool) {
	if vk <= 0x06 || vk > 0xFE {
		return 0, false
	}
	return hotkey.Key(vk), true
}
