package session

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	maxTrackedConnections = 4096
	invalidInputLimit     = 10
)

// strikeTracker counts invalid-input occurrences per connection so the
// Dispatcher can enforce the "repeated invalid input beyond a rate
// threshold" fatal condition (spec §7). Bounded by an LRU cache rather
// than a plain map so a burst of short-lived connections can't grow it
// without limit.
type strikeTracker struct {
	cache *lru.Cache[string, int]
}

func newStrikeTracker() *strikeTracker {
	cache, err := lru.New[string, int](maxTrackedConnections)
	if err != nil {
		panic(err) // only fails for a non-positive size, which is a constant here
	}
	return &strikeTracker{cache: cache}
}

// strike records one invalid-input event for connID and reports whether
// the connection has now crossed the fatal threshold.
func (s *strikeTracker) strike(connID string) bool {
	count, _ := s.cache.Get(connID)
	count++
	s.cache.Add(connID, count)
	return count >= invalidInputLimit
}

func (s *strikeTracker) forget(connID string) {
	s.cache.Remove(connID)
}
