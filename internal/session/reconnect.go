package session

import (
	"sync"
	"time"
)

// reconnectGrace tracks disconnected seats and the deadline within which a
// new connection may still rebind to them (spec §6 config
// reconnect_grace_ms). Grounded on the TTL-map-with-lazy-expiry idiom in
// the teacher's auth/session.go Manager (sessions map + ExpiresAt,
// swept on lookup rather than by a separate goroutine).
type reconnectGrace struct {
	mu       sync.Mutex
	window   time.Duration
	deadline map[string]time.Time // seatID -> grace deadline
}

func newReconnectGrace(window time.Duration) *reconnectGrace {
	return &reconnectGrace{
		window:   window,
		deadline: make(map[string]time.Time),
	}
}

// markDisconnected opens a grace window for seatID starting now.
func (g *reconnectGrace) markDisconnected(seatID string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deadline[seatID] = now.Add(g.window)
}

// claim reports whether seatID may still be reclaimed at now, consuming
// the grace entry either way (a claim attempt — successful or not — ends
// the window).
func (g *reconnectGrace) claim(seatID string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	deadline, ok := g.deadline[seatID]
	delete(g.deadline, seatID)
	if !ok {
		return false
	}
	return now.Before(deadline)
}

// clear drops any pending grace window for seatID; the Dispatcher calls it
// whenever a connection binds to the seat.
func (g *reconnectGrace) clear(seatID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.deadline, seatID)
}
