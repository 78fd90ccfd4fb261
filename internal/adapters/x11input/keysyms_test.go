package x11input

import (
	"testing"

	"burstclicker/internal/keycode"
)

func TestKeysymName(t *testing.T) {
	tests := []struct {
		vk       int
		expected string
	}{
		{vk: keycode.VKF6, expected: "F6"},
		{vk: keycode.VKEscape, expected: "Escape"},
		{vk: 0x41, expected: "a"},
		{vk: 0x37, expected: "7"},
		{vk: 0x64, expected: "KP_4"},
		{vk: 0xDB, expected: "bracketleft"},
	}
	for _, tc := range tests {
		got, ok := KeysymName(tc.vk)
		if !ok || got != tc.expected {
			t.Fatalf("KeysymName(0x%02X) = %q,%v, want %q", tc.vk, got, ok, tc.expected)
		}
	}

	if _, ok := KeysymName(keycode.VKLButton); ok {
		t.Fatalf("mouse button resolved to a keysym")
	}
}

func TestKeysymRoundTrip(t *testing.T) {
	for _, vk := range keycode.Known() {
		sym, ok := KeysymName(vk)
		if !ok {
			continue
		}
		back, ok := vkFromKeysym(sym)
		if !ok || back != vk {
			t.Fatalf("vkFromKeysym(%q) = 0x%02X,%v, want 0x%02X", sym, back, ok, vk)
		}
	}
	if vk, ok := vkFromKeysym("A"); !ok || vk != 0x41 {
		t.Fatalf("vkFromKeysym is not case-insensitive")
	}
}

func TestVKFromButton(t *testing.T) {
	if vk, ok := vkFromButton(3); !ok || vk != keycode.VKRButton {
		t.Fatalf("button 3 = 0x%02X,%v", vk, ok)
	}
	if _, ok := vkFromButton(4); ok {
		t.Fatalf("scroll button resolved to a key")
	}
}
