package x11input

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"burstclicker/internal/hotkeys"
)

func TestGrabTableLastRegistrationWins(t *testing.T) {
	table := newGrabTable()
	table.assign(hotkeys.Activate, 71)
	table.assign(hotkeys.Save, 71)

	if id, ok := table.lookup(71); !ok || id != hotkeys.Save {
		t.Fatalf("lookup(71) = %v,%v, want %v", id, ok, hotkeys.Save)
	}
	if keys := table.release(hotkeys.Activate); len(keys) != 0 {
		t.Fatalf("release of the displaced hotkey returned %v", keys)
	}
	if id, ok := table.lookup(71); !ok || id != hotkeys.Save {
		t.Fatalf("key lost after releasing the displaced hotkey")
	}
}

func TestGrabTableReleaseReturnsOwnedKeys(t *testing.T) {
	table := newGrabTable()
	table.assign(hotkeys.Activate, 71)
	table.assign(hotkeys.Activate, 72)
	table.assign(hotkeys.Activate, 72)
	table.assign(hotkeys.Deactivate, 72)

	keys := table.release(hotkeys.Activate)
	if len(keys) != 1 || keys[0] != xproto.Keycode(71) {
		t.Fatalf("release(Activate) = %v, want [71]", keys)
	}
	if _, ok := table.lookup(71); ok {
		t.Fatalf("released key still mapped")
	}
	if ids := table.ids(); len(ids) != 1 || ids[0] != hotkeys.Deactivate {
		t.Fatalf("ids() = %v", ids)
	}
}
