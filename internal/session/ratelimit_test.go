package session

import "testing"

func TestStrikeTrackerTripsAtThreshold(t *testing.T) {
	s := newStrikeTracker()
	tripped := false
	for i := 0; i < invalidInputLimit; i++ {
		tripped = s.strike("conn-1")
	}
	if !tripped {
		t.Fatal("expected strike to report tripped once the limit is reached")
	}
}

func TestStrikeTrackerForgetResetsCount(t *testing.T) {
	s := newStrikeTracker()
	for i := 0; i < invalidInputLimit-1; i++ {
		s.strike("conn-1")
	}
	s.forget("conn-1")

	if s.strike("conn-1") {
		t.Fatal("expected count to reset after forget")
	}
}
