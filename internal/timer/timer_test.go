package timer

import (
	"testing"
	"time"
)

func TestTimerFiresWithSeatAndEpoch(t *testing.T) {
	fireCh := make(chan Timeout, 1)
	tm := New(20*time.Millisecond, fireCh)
	tm.Start("seat-1", 3, time.Now())

	select {
	case to := <-fireCh:
		if to.SeatID != "seat-1" || to.Epoch != 3 {
			t.Fatalf("unexpected timeout payload: %+v", to)
		}
		if !tm.Valid(to) {
			t.Fatal("timeout should still be valid immediately after firing")
		}
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestTimerCancelSuppressesFire(t *testing.T) {
	fireCh := make(chan Timeout, 1)
	tm := New(15*time.Millisecond, fireCh)
	tm.Start("seat-1", 0, time.Now())
	tm.Cancel()

	select {
	case to := <-fireCh:
		t.Fatalf("cancelled timer must not fire, got %+v", to)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStaleTimeoutIsInvalid(t *testing.T) {
	fireCh := make(chan Timeout, 2)
	tm := New(10*time.Millisecond, fireCh)
	tm.Start("seat-1", 0, time.Now())

	var stale Timeout
	select {
	case stale = <-fireCh:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}

	// A new turn starts before the stale message is examined.
	tm.Start("seat-2", 1, time.Now())
	if tm.Valid(stale) {
		t.Fatal("a timeout from the previous epoch must be considered stale")
	}
}

func TestRemainingFloorsAtZero(t *testing.T) {
	fireCh := make(chan Timeout, 1)
	tm := New(10*time.Millisecond, fireCh)
	start := time.Now()
	tm.Start("seat-1", 0, start)

	if r := tm.Remaining(start); r <= 0 {
		t.Fatalf("remaining should be close to the full budget right after start, got %v", r)
	}
	if r := tm.Remaining(start.Add(time.Hour)); r != 0 {
		t.Fatalf("remaining must floor at zero long after the deadline, got %v", r)
	}
}
