package x11input

import (
	"strings"

	"burstclicker/internal/keycode"
)

var specialKeysyms = map[string]string{
	"Backspace":    "BackSpace",
	"Tab":          "Tab",
	"Enter":        "Return",
	"Pause":        "Pause",
	"CapsLock":     "Caps_Lock",
	"Esc":          "Escape",
	"Space":        "space",
	"PageUp":       "Page_Up",
	"PageDown":     "Page_Down",
	"End":          "End",
	"Home":         "Home",
	"Left":         "Left",
	"Up":           "Up",
	"Right":        "Right",
	"Down":         "Down",
	"PrintScreen":  "Print",
	"Insert":       "Insert",
	"Delete":       "Delete",
	"NumMultiply":  "KP_Multiply",
	"NumAdd":       "KP_Add",
	"NumSubtract":  "KP_Subtract",
	"NumDecimal":   "KP_Decimal",
	"NumDivide":    "KP_Divide",
	"NumLock":      "Num_Lock",
	"ScrollLock":   "Scroll_Lock",
	"LeftShift":    "Shift_L",
	"RightShift":   "Shift_R",
	"LeftCtrl":     "Control_L",
	"RightCtrl":    "Control_R",
	"LeftAlt":      "Alt_L",
	"RightAlt":     "Alt_R",
	"Semicolon":    "semicolon",
	"Equal":        "equal",
	"Comma":        "comma",
	"Minus":        "minus",
	"Period":       "period",
	"Slash":        "slash",
	"Grave":        "grave",
	"LeftBracket":  "bracketleft",
	"Backslash":    "backslash",
	"RightBracket": "bracketright",
	"Apostrophe":   "apostrophe",
}

var keysymToVK map[string]int

func init() {
	keysymToVK = make(map[string]int)
	for _, vk := range keycode.Known() {
		if sym, ok := KeysymName(vk); ok {
			keysymToVK[strings.ToLower(sym)] = vk
		}
	}
}

// KeysymName returns the X keysym string for a virtual-key code. Mouse buttons
// have no keysym.
func KeysymName(vk int) (string, bool) {
	name := keycode.Name(vk)
	if sym, ok := specialKeysyms[name]; ok {
		return sym, true
	}

	switch {
	case len(name) == 1 && name[0] >= 'A' && name[0] <= 'Z':
		return strings.ToLower(name), true
	case len(name) == 1 && name[0] >= '0' && name[0] <= '9':
		return name, true
	case strings.HasPrefix(name, "F") && len(name) > 1 && isDigits(name[1:]):
		return name, true
	case strings.HasPrefix(name, "Num") && len(name) == 4 && isDigits(name[3:]):
		return "KP_" + name[3:], true
	}
	return "", false
}

// vkFromKeysym resolves a keysym string reported by the server.
func vkFromKeysym(sym string) (int, bool) {
	vk, ok := keysymToVK[strings.ToLower(strings.TrimSpace(sym))]
	return vk, ok
}

// vkFromButton maps X pointer buttons to virtual-key codes.
func vkFromButton(button byte) (int, bool) {
	switch button {
	case 1:
		return keycode.VKLButton, true
	case 2:
		return 0x04, true
	case 3:
		return keycode.VKRButton, true
	case 8:
		return 0x05, true
	case 9:
		return 0x06, true
	default:
		return 0, false
	}
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
