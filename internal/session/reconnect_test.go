package session

import (
	"testing"
	"time"
)

func TestReconnectGraceClaimWithinWindow(t *testing.T) {
	g := newReconnectGrace(5 * time.Second)
	now := time.Now()
	g.markDisconnected("seat-1", now)

	if !g.claim("seat-1", now.Add(2*time.Second)) {
		t.Fatal("expected claim to succeed within the grace window")
	}
}

func TestReconnectGraceClaimPastWindow(t *testing.T) {
	g := newReconnectGrace(5 * time.Second)
	now := time.Now()
	g.markDisconnected("seat-1", now)

	if g.claim("seat-1", now.Add(10*time.Second)) {
		t.Fatal("expected claim to fail past the grace window")
	}
}

func TestReconnectGraceClaimConsumesEntry(t *testing.T) {
	g := newReconnectGrace(5 * time.Second)
	now := time.Now()
	g.markDisconnected("seat-1", now)

	g.claim("seat-1", now)
	if g.claim("seat-1", now) {
		t.Fatal("expected the second claim to fail, the grace window is one-shot")
	}
}

func TestReconnectGraceClearDropsEntry(t *testing.T) {
	g := newReconnectGrace(5 * time.Second)
	now := time.Now()
	g.markDisconnected("seat-1", now)
	g.clear("seat-1")

	if g.claim("seat-1", now) {
		t.Fatal("expected claim to fail after clear")
	}
}
