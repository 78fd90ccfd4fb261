package hookinput

import (
	"testing"
	"time"
)

// replay feeds edges through the filter and tracks the button the way the
// event loop does.
func replay(f *echoFilter, now time.Time, edges ...edge) bool {
	down := false
	for _, e := range edges {
		if f.consume(e, now) {
			continue
		}
		down = e == edgeHold
	}
	return down
}

func TestEchoFilterSwallowsInjectedClick(t *testing.T) {
	f := &echoFilter{}
	now := time.Unix(100, 0)
	f.expect(now)

	if !f.consume(edgeHold, now) || !f.consume(edgeUp, now) {
		t.Fatalf("injected hold/up pair not recognized")
	}
	if f.consume(edgeHold, now) {
		t.Fatalf("real press swallowed after the echo was consumed")
	}
}

func TestEchoFilterKeepsRealReleaseDuringBurst(t *testing.T) {
	f := &echoFilter{}
	now := time.Unix(100, 0)

	f.expect(now)
	// Held button, injected click, then the user lets go before the echo lands.
	if down := replay(f, now, edgeUp, edgeHold, edgeUp); down {
		t.Fatalf("real release lost, button still reported down")
	}

	f.expect(now)
	if down := replay(f, now, edgeHold, edgeHold, edgeUp); !down {
		t.Fatalf("real press lost, button reported up")
	}
}

func TestEchoFilterExpires(t *testing.T) {
	f := &echoFilter{}
	now := time.Unix(100, 0)
	f.expect(now)

	later := now.Add(echoExpiry)
	if f.consume(edgeUp, later) {
		t.Fatalf("stale expectation swallowed a release")
	}
	if f.consume(edgeHold, now) {
		t.Fatalf("expired counts were not cleared")
	}
}
