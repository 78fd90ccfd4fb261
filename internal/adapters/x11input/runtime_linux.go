//go:build linux

package x11input

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"burstclicker/internal/core/autoclicker"
	"burstclicker/internal/hotkeys"
	"burstclicker/internal/keycode"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Runtime polls the core pointer, injects clicks through XTEST and grabs hotkeys
// on the root window.
type Runtime struct {
	xu      *xgbutil.XUtil
	conn    *xgb.Conn
	rootWin xproto.Window
	logger  autoclicker.Logger

	mu        sync.RWMutex
	grabs     grabTable
	presses   chan hotkeys.ID
	injectMu  sync.Mutex
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
	startOnce sync.Once
}

func NewRuntime(logger autoclicker.Logger) (*Runtime, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	conn := xu.Conn()
	if conn == nil {
		return nil, fmt.Errorf("failed to open X11 connection")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, err
	}
	keybind.Initialize(xu)

	return &Runtime{
		xu:      xu,
		conn:    conn,
		rootWin: xu.RootWin(),
		logger:  logger,
		grabs:   newGrabTable(),
		presses: make(chan hotkeys.ID, 16),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

func (r *Runtime) Start() error {
	r.startOnce.Do(func() {
		go r.eventLoop()
	})
	return nil
}

func (r *Runtime) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopCh)

		r.mu.Lock()
		for _, id := range r.grabs.ids() {
			r.ungrabLocked(id)
		}
		r.mu.Unlock()

		r.conn.Close()
		started := true
		r.startOnce.Do(func() { started = false })
		if started {
			<-r.doneCh
		}
		close(r.presses)
	})
	return nil
}

// Pressed reads the core pointer button mask. It reflects the physical
// buttons together with any XTEST presses still held.
func (r *Runtime) Pressed(button autoclicker.Button) bool {
	reply, err := xproto.QueryPointer(r.conn, r.rootWin).Reply()
	if err != nil {
		return false
	}
	switch button {
	case autoclicker.ButtonLeft:
		return reply.Mask&xproto.KeyButMaskButton1 != 0
	case autoclicker.ButtonRight:
		return reply.Mask&xproto.KeyButMaskButton3 != 0
	default:
		return false
	}
}

func (r *Runtime) Click(button autoclicker.Button) error {
	index := byte(xproto.ButtonIndex1)
	if button == autoclicker.ButtonRight {
		index = byte(xproto.ButtonIndex3)
	}

	r.injectMu.Lock()
	defer r.injectMu.Unlock()
	for _, eventType := range []byte{xproto.ButtonPress, xproto.ButtonRelease} {
		if err := xtest.FakeInputChecked(
			r.conn,
			eventType,
			index,
			xproto.TimeCurrentTime,
			r.rootWin,
			0,
			0,
			0,
		).Check(); err != nil {
			return err
		}
	}
	r.conn.Sync()
	return nil
}

func (r *Runtime) Register(id hotkeys.ID, vk int) error {
	sym, ok := KeysymName(vk)
	if !ok {
		return fmt.Errorf("key %s cannot be grabbed on X11", keycode.Name(vk))
	}
	keycodes := uniqueKeycodes(keybind.StrToKeycodes(r.xu, sym))
	if len(keycodes) == 0 {
		return fmt.Errorf("failed to resolve X11 key %q", sym)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ungrabLocked(id)
	for _, key := range keycodes {
		// Grabs are per client, so re-grabbing a key another hotkey holds
		// just moves it here.
		if err := xproto.GrabKeyChecked(
			r.conn,
			false,
			r.rootWin,
			xproto.ModMaskAny,
			key,
			xproto.GrabModeAsync,
			xproto.GrabModeAsync,
		).Check(); err != nil {
			r.ungrabLocked(id)
			return err
		}
		r.grabs.assign(id, key)
	}
	return nil
}

func (r *Runtime) Unregister(id hotkeys.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ungrabLocked(id)
	return nil
}

func (r *Runtime) Presses() <-chan hotkeys.ID {
	return r.presses
}

func (r *Runtime) ungrabLocked(id hotkeys.ID) {
	for _, key := range r.grabs.release(id) {
		xproto.UngrabKey(r.conn, key, r.rootWin, xproto.ModMaskAny)
	}
}

func (r *Runtime) eventLoop() {
	defer close(r.doneCh)

	for {
		event, xerr := r.conn.WaitForEvent()
		if xerr != nil {
			select {
			case <-r.stopCh:
				return
			default:
			}
			r.logger.Warn("X11 event error", "err", xerr)
			continue
		}
		if event == nil {
			return
		}

		ev, ok := event.(xproto.KeyPressEvent)
		if !ok {
			continue
		}
		r.mu.RLock()
		id, bound := r.grabs.lookup(ev.Detail)
		r.mu.RUnlock()
		if !bound {
			continue
		}
		select {
		case r.presses <- id:
		case <-r.stopCh:
			return
		default:
			r.logger.Warn("Dropping hotkey press, dispatcher is behind", "hotkey", id)
		}
	}
}

func uniqueKeycodes(keycodes []xproto.Keycode) []xproto.Keycode {
	uniq := make(map[xproto.Keycode]struct{}, len(keycodes))
	for _, key := range keycodes {
		uniq[key] = struct{}{}
	}
	result := make([]xproto.Keycode, 0, len(uniq))
	for key := range uniq {
		result = append(result, key)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// CaptureNextKey grabs keyboard and pointer until a key or button is pressed
// and returns its virtual-key code.
func CaptureNextKey(timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return 0, err
	}
	conn := xu.Conn()
	root := xu.RootWin()
	keybind.Initialize(xu)

	defer conn.Close()
	defer xproto.UngrabPointer(conn, xproto.TimeCurrentTime)
	defer xproto.UngrabKeyboard(conn, xproto.TimeCurrentTime)

	if reply, err := xproto.GrabKeyboard(
		conn,
		false,
		root,
		xproto.TimeCurrentTime,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
	).Reply(); err != nil {
		return 0, err
	} else if reply.Status != xproto.GrabStatusSuccess {
		return 0, fmt.Errorf("failed to grab keyboard (status=%d)", reply.Status)
	}

	if reply, err := xproto.GrabPointer(
		conn,
		false,
		root,
		xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.TimeCurrentTime,
	).Reply(); err != nil {
		return 0, err
	} else if reply.Status != xproto.GrabStatusSuccess {
		return 0, fmt.Errorf("failed to grab pointer (status=%d)", reply.Status)
	}

	deadline := time.Now().Add(timeout)
	for {
		event, xerr := conn.PollForEvent()
		if xerr != nil {
			return 0, xerr
		}
		if event == nil {
			if time.Now().After(deadline) {
				return 0, fmt.Errorf("timed out waiting for key/button input")
			}
			time.Sleep(2 * time.Millisecond)
			continue
		}

		switch ev := event.(type) {
		case xproto.ButtonPressEvent:
			if vk, ok := vkFromButton(byte(ev.Detail)); ok {
				return vk, nil
			}
		case xproto.KeyPressEvent:
			sym := keybind.LookupString(xu, ev.State, ev.Detail)
			if vk, ok := vkFromKeysym(sym); ok {
				return vk, nil
			}
		}
	}
}
