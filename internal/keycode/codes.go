// Package keycode maps the Windows virtual-key codes used in the settings file
// to display names and to Linux evdev key codes.
package keycode

import (
	"fmt"
	"sort"
)

const (
	VKLButton = 0x01
	VKRButton = 0x02
	VKEscape  = 0x1B
	VKF5      = 0x74
	VKF6      = 0x75
	VKF7      = 0x76
	VKF8      = 0x77
)

type entry struct {
	vk    int
	name  string
	evdev uint16
}

// evdev codes follow linux/input-event-codes.h.
var table = []entry{
	{VKLButton, "MouseLeft", 0x110},
	{VKRButton, "MouseRight", 0x111},
	{0x04, "MouseMiddle", 0x112},
	{0x05, "MouseX1", 0x113},
	{0x06, "MouseX2", 0x114},

	{0x08, "Backspace", 14},
	{0x09, "Tab", 15},
	{0x0D, "Enter", 28},
	{0x13, "Pause", 119},
	{0x14, "CapsLock", 58},
	{VKEscape, "Esc", 1},
	{0x20, "Space", 57},
	{0x21, "PageUp", 104},
	{0x22, "PageDown", 109},
	{0x23, "End", 107},
	{0x24, "Home", 102},
	{0x25, "Left", 105},
	{0x26, "Up", 103},
	{0x27, "Right", 106},
	{0x28, "Down", 108},
	{0x2C, "PrintScreen", 99},
	{0x2D, "Insert", 110},
	{0x2E, "Delete", 111},

	{0x30, "0", 11},
	{0x31, "1", 2},
	{0x32, "2", 3},
	{0x33, "3", 4},
	{0x34, "4", 5},
	{0x35, "5", 6},
	{0x36, "6", 7},
	{0x37, "7", 8},
	{0x38, "8", 9},
	{0x39, "9", 10},

	{0x41, "A", 30},
	{0x42, "B", 48},
	{0x43, "C", 46},
	{0x44, "D", 32},
	{0x45, "E", 18},
	{0x46, "F", 33},
	{0x47, "G", 34},
	{0x48, "H", 35},
	{0x49, "I", 23},
	{0x4A, "J", 36},
	{0x4B, "K", 37},
	{0x4C, "L", 38},
	{0x4D, "M", 50},
	{0x4E, "N", 49},
	{0x4F, "O", 24},
	{0x50, "P", 25},
	{0x51, "Q", 16},
	{0x52, "R", 19},
	{0x53, "S", 31},
	{0x54, "T", 20},
	{0x55, "U", 22},
	{0x56, "V", 47},
	{0x57, "W", 17},
	{0x58, "X", 45},
	{0x59, "Y", 21},
	{0x5A, "Z", 44},

	{0x60, "Num0", 82},
	{0x61, "Num1", 79},
	{0x62, "Num2", 80},
	{0x63, "Num3", 81},
	{0x64, "Num4", 75},
	{0x65, "Num5", 76},
	{0x66, "Num6", 77},
	{0x67, "Num7", 71},
	{0x68, "Num8", 72},
	{0x69, "Num9", 73},
	{0x6A, "NumMultiply", 55},
	{0x6B, "NumAdd", 78},
	{0x6D, "NumSubtract", 74},
	{0x6E, "NumDecimal", 83},
	{0x6F, "NumDivide", 98},

	{0x70, "F1", 59},
	{0x71, "F2", 60},
	{0x72, "F3", 61},
	{0x73, "F4", 62},
	{VKF5, "F5", 63},
	{VKF6, "F6", 64},
	{VKF7, "F7", 65},
	{VKF8, "F8", 66},
	{0x78, "F9", 67},
	{0x79, "F10", 68},
	{0x7A, "F11", 87},
	{0x7B, "F12", 88},
	{0x7C, "F13", 183},
	{0x7D, "F14", 184},
	{0x7E, "F15", 185},
	{0x7F, "F16", 186},
	{0x80, "F17", 187},
	{0x81, "F18", 188},
	{0x82, "F19", 189},
	{0x83, "F20", 190},
	{0x84, "F21", 191},
	{0x85, "F22", 192},
	{0x86, "F23", 193},
	{0x87, "F24", 194},

	{0x90, "NumLock", 69},
	{0x91, "ScrollLock", 70},
	{0xA0, "LeftShift", 42},
	{0xA1, "RightShift", 54},
	{0xA2, "LeftCtrl", 29},
	{0xA3, "RightCtrl", 97},
	{0xA4, "LeftAlt", 56},
	{0xA5, "RightAlt", 100},

	{0xBA, "Semicolon", 39},
	{0xBB, "Equal", 13},
	{0xBC, "Comma", 51},
	{0xBD, "Minus", 12},
	{0xBE, "Period", 52},
	{0xBF, "Slash", 53},
	{0xC0, "Grave", 41},
	{0xDB, "LeftBracket", 26},
	{0xDC, "Backslash", 43},
	{0xDD, "RightBracket", 27},
	{0xDE, "Apostrophe", 40},
}

var (
	byVK    map[int]entry
	byEvdev map[uint16]entry
)

func init() {
	byVK = make(map[int]entry, len(table))
	byEvdev = make(map[uint16]entry, len(table))
	for _, e := range table {
		byVK[e.vk] = e
		if _, exists := byEvdev[e.evdev]; !exists {
			byEvdev[e.evdev] = e
		}
	}
}

// Name returns a display name such as "F6", or the hex code for unknown keys.
func Name(vk int) string {
	if e, ok := byVK[vk]; ok {
		return e.name
	}
	return fmt.Sprintf("0x%02X", vk)
}

// ToEvdev translates a virtual-key code to its Linux evdev key code.
func ToEvdev(vk int) (uint16, bool) {
	e, ok := byVK[vk]
	if !ok {
		return 0, false
	}
	return e.evdev, true
}

// FromEvdev translates a Linux evdev key code back to a virtual-key code.
func FromEvdev(code uint16) (int, bool) {
	e, ok := byEvdev[code]
	if !ok {
		return 0, false
	}
	return e.vk, true
}

// Known returns every virtual-key code with a name, sorted.
func Known() []int {
	out := make([]int, 0, len(table))
	for _, e := range table {
		out = append(out, e.vk)
	}
	sort.Ints(out)
	return out
}
