package hookinput

import (
	"sync"
	"time"
)

// echoExpiry bounds how long injected events are waited for before the
// pending counts are dropped.
const echoExpiry = 250 * time.Millisecond

type edge int

const (
	edgeHold edge = iota
	edgeUp
)

// echoFilter recognizes the hook's reports of clicks this process injected.
// Each injected click is one hold and one up; only that many events are
// swallowed, so real presses and releases around a click still get through.
type echoFilter struct {
	mu       sync.Mutex
	holds    int
	ups      int
	deadline time.Time
}

func (f *echoFilter) expect(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds++
	f.ups++
	f.deadline = now.Add(echoExpiry)
}

// consume reports whether e is an echo of an injected click. Pending counts
// are matched by kind only; a real edge consumed in place of an echo leaves
// the same final button state once the echo arrives.
func (f *echoFilter) consume(e edge, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !now.Before(f.deadline) {
		f.holds, f.ups = 0, 0
		return false
	}
	switch {
	case e == edgeHold && f.holds > 0:
		f.holds--
		return true
	case e == edgeUp && f.ups > 0:
		f.ups--
		return true
	}
	return false
}
