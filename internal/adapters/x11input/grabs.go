package x11input

import (
	"github.com/BurntSushi/xgb/xproto"

	"burstclicker/internal/hotkeys"
)

// grabTable maps grabbed keycodes to hotkeys. A keycode belongs to the
// hotkey that registered it last.
type grabTable struct {
	keyToID map[xproto.Keycode]hotkeys.ID
	grabbed map[hotkeys.ID][]xproto.Keycode
}

func newGrabTable() grabTable {
	return grabTable{
		keyToID: make(map[xproto.Keycode]hotkeys.ID),
		grabbed: make(map[hotkeys.ID][]xproto.Keycode),
	}
}

// assign gives key to id, taking it away from any other hotkey holding it.
func (t grabTable) assign(id hotkeys.ID, key xproto.Keycode) {
	if other, taken := t.keyToID[key]; taken && other != id {
		t.grabbed[other] = dropKeycode(t.grabbed[other], key)
		if len(t.grabbed[other]) == 0 {
			delete(t.grabbed, other)
		}
	}
	t.keyToID[key] = id
	for _, held := range t.grabbed[id] {
		if held == key {
			return
		}
	}
	t.grabbed[id] = append(t.grabbed[id], key)
}

// release forgets id and returns the keycodes it still owned.
func (t grabTable) release(id hotkeys.ID) []xproto.Keycode {
	keys := t.grabbed[id]
	for _, key := range keys {
		delete(t.keyToID, key)
	}
	delete(t.grabbed, id)
	return keys
}

func (t grabTable) lookup(key xproto.Keycode) (hotkeys.ID, bool) {
	id, ok := t.keyToID[key]
	return id, ok
}

func (t grabTable) ids() []hotkeys.ID {
	ids := make([]hotkeys.ID, 0, len(t.grabbed))
	for id := range t.grabbed {
		ids = append(ids, id)
	}
	return ids
}

func dropKeycode(keys []xproto.Keycode, key xproto.Keycode) []xproto.Keycode {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
