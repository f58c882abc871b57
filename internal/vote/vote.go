// Package vote implements the post-terminal replay vote (spec §4.5): a
// 30s unanimity window among the seats connected at the moment the vote
// opens. Grounded on the TTL/lazy-expiry idiom from the teacher's
// auth/session.go (ExpiresAt field, checked on read rather than by a
// separate goroutine).
package vote

import "time"

// Outcome is the terminal result of a replay vote.
type Outcome int

const (
	Pending Outcome = iota
	Accepted
	Rejected
	Expired
)

// Vote tracks ballots from a fixed voter set opened at match-end.
type Vote struct {
	voters    map[string]struct{}
	ballots   map[string]bool
	openedAt  time.Time
	window    time.Duration
}

// Open starts a vote for the given voter set (the seats connected at the
// instant of initiation — fixed for the vote's duration regardless of
// later connect/disconnect activity).
func Open(voterSeatIDs []string, window time.Duration, now time.Time) *Vote {
	voters := make(map[string]struct{}, len(voterSeatIDs))
	for _, id := range voterSeatIDs {
		voters[id] = struct{}{}
	}
	return &Vote{
		voters:   voters,
		ballots:  make(map[string]bool, len(voterSeatIDs)),
		openedAt: now,
		window:   window,
	}
}

// Cast records seatID's ballot. Idempotent re-casts of the same value are
// accepted silently; changing a vote is allowed until the window closes.
// Casting from a seat outside the voter set is rejected: Cast returns false
// and records nothing, and the Room turns that into ErrNotVoter.
func (v *Vote) Cast(seatID string, value bool) bool {
	if _, ok := v.voters[seatID]; !ok {
		return false
	}
	v.ballots[seatID] = value
	return true
}

// Tally returns the current per-seat ballots, for building
// replay-vote-updated payloads.
func (v *Vote) Tally() map[string]bool {
	out := make(map[string]bool, len(v.ballots))
	for k, val := range v.ballots {
		out[k] = val
	}
	return out
}

// Deadline is the instant the vote window closes.
func (v *Vote) Deadline() time.Time {
	return v.openedAt.Add(v.window)
}

// Evaluate reports the vote's outcome as of now: Pending while ballots are
// outstanding and the window is still open; Accepted/Rejected once every
// voter has cast; Expired if the window has elapsed with stragglers.
func (v *Vote) Evaluate(now time.Time) Outcome {
	if len(v.ballots) < len(v.voters) {
		if !now.Before(v.Deadline()) {
			return Expired
		}
		return Pending
	}
	for _, ok := range v.ballots {
		if !ok {
			return Rejected
		}
	}
	return Accepted
}
