package match

import (
	"math/rand"
	"time"

	"github.com/choeurtis18/MortPion/internal/apperr"
	"github.com/choeurtis18/MortPion/internal/board"
)

// Status is the Match's lifecycle state (spec §3 Match).
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Match is owned exclusively by one Room for the duration of one game
// (spec §3 Ownership). It holds no lock of its own: the owning Room's
// mailbox/actor serializes every call into it.
type Match struct {
	Board         board.Board
	Seats         []*Player // ordered snapshot taken at match start; order is fixed for the match's lifetime
	CurrentSeatID SeatID
	Status        Status
	WinnerID      SeatID
	IsDraw        bool
	TurnStartedAt time.Time
	StartedAt     time.Time
	FinishedAt    time.Time

	// TurnEpoch increments on every CurrentSeatID change; the Room's Timer
	// carries it so a fired-but-stale timeout can be recognized and ignored
	// (spec glossary "Turn epoch").
	TurnEpoch int

	skipLimit int
	seatIndex map[SeatID]int
}

// AdvanceOutcome reports what turn advancement produced, so the Room can
// build the right broadcast events without re-deriving engine internals.
type AdvanceOutcome struct {
	Terminal     bool
	WinnerID     SeatID
	IsDraw       bool
	NewCurrent   SeatID
	AutoSkipped  []SeatID // seats auto-skipped while scanning for the next mover (no legal move, not eliminated by this alone)
}

// New initializes a Match from an ordered list of 2..4 seats (spec §4.3
// Initialization). Inventories, skip counters and elimination flags are
// reset; a starter is picked uniformly at random.
func New(seats []*Player, skipLimit int, rng *rand.Rand, now time.Time) *Match {
	ordered := make([]*Player, len(seats))
	copy(ordered, seats)

	idx := make(map[SeatID]int, len(ordered))
	for i, p := range ordered {
		p.ResetForReplay()
		idx[p.ID] = i
	}

	starter := ordered[rng.Intn(len(ordered))]

	return &Match{
		Seats:         ordered,
		CurrentSeatID: starter.ID,
		Status:        StatusPlaying,
		TurnStartedAt: now,
		StartedAt:     now,
		skipLimit:     skipLimit,
		seatIndex:     idx,
	}
}

func (m *Match) seat(id SeatID) *Player {
	i, ok := m.seatIndex[id]
	if !ok {
		return nil
	}
	return m.Seats[i]
}

func (m *Match) activeSeatHasLegalMove() bool {
	for _, p := range m.Seats {
		if p.Active() && board.AnyLegalMove(m.Board, p.Inventory) {
			return true
		}
	}
	return false
}

func (m *Match) activeCount() (count int, lastUneliminated SeatID) {
	for _, p := range m.Seats {
		if !p.Eliminated {
			count++
			lastUneliminated = p.ID
		}
	}
	return
}

// SubmitMove validates and applies a move for seatID (spec §4.3 "Move
// submission", steps 1-8).
func (m *Match) SubmitMove(seatID SeatID, cell int, size board.Size, now time.Time) (AdvanceOutcome, error) {
	if cell < 0 || cell > 8 {
		return AdvanceOutcome{}, apperr.ErrCellOutOfRange
	}
	if m.Status != StatusPlaying {
		return AdvanceOutcome{}, apperr.ErrNotPlaying
	}
	if seatID != m.CurrentSeatID {
		return AdvanceOutcome{}, apperr.ErrWrongTurn
	}
	p := m.seat(seatID)
	if p == nil {
		return AdvanceOutcome{}, apperr.ErrNotInRoom
	}
	if p.Eliminated {
		return AdvanceOutcome{}, apperr.ErrSeatEliminated
	}
	if !p.HasInventory(size) {
		return AdvanceOutcome{}, apperr.ErrIllegalMove
	}
	if !board.IsLegal(m.Board, cell, size) {
		return AdvanceOutcome{}, apperr.ErrIllegalMove
	}

	newBoard, err := board.ApplyMove(m.Board, cell, size, p.Color)
	if err != nil {
		return AdvanceOutcome{}, err
	}
	m.Board = newBoard
	p.UsePiece(size)
	p.ResetSkip()

	if board.HasWin(m.Board, p.Color) {
		m.finish(seatID, false, now)
		return AdvanceOutcome{Terminal: true, WinnerID: seatID}, nil
	}

	if !m.activeSeatHasLegalMove() {
		m.finish("", true, now)
		return AdvanceOutcome{Terminal: true, IsDraw: true}, nil
	}

	return m.advanceTurn(now), nil
}

// SkipCurrent forces the current seat to skip (spec §4.3 "Forced skip"):
// increments its skip counter, eliminates it if the consecutive-skip limit
// is reached, then advances the turn.
func (m *Match) SkipCurrent(now time.Time) AdvanceOutcome {
	p := m.seat(m.CurrentSeatID)
	if p == nil {
		return AdvanceOutcome{}
	}
	p.IncrementSkip()
	if p.SkipsInARow >= m.skipLimit {
		p.Eliminate()
	}

	if count, last := m.activeCount(); count == 0 {
		m.finish("", true, now)
		return AdvanceOutcome{Terminal: true, IsDraw: true}
	} else if count == 1 && p.Eliminated {
		m.finish(last, false, now)
		return AdvanceOutcome{Terminal: true, WinnerID: last}
	}

	if !m.activeSeatHasLegalMove() {
		m.finish("", true, now)
		return AdvanceOutcome{Terminal: true, IsDraw: true}
	}

	return m.advanceTurn(now)
}

// EliminateSeat marks seatID eliminated outside of the normal skip-limit
// cascade (spec §4.6 Room.leave, Playing+explicit): used when a seat
// leaves mid-match. Its placed pieces remain on the board. If seatID held
// the turn, the turn is advanced first so the forfeit check below sees a
// clean state, matching the "invoke skipCurrent('leave') first" rule.
func (m *Match) EliminateSeat(seatID SeatID, now time.Time) AdvanceOutcome {
	p := m.seat(seatID)
	if p == nil || p.Eliminated || m.Status != StatusPlaying {
		return AdvanceOutcome{}
	}
	heldTurn := m.CurrentSeatID == seatID
	p.Eliminate()

	var out AdvanceOutcome
	if heldTurn {
		out = m.advanceTurn(now)
		if out.Terminal {
			return out
		}
	}

	if count, last := m.activeCount(); count == 0 {
		m.finish("", true, now)
		return AdvanceOutcome{Terminal: true, IsDraw: true}
	} else if count == 1 {
		m.finish(last, false, now)
		return AdvanceOutcome{Terminal: true, WinnerID: last}
	}
	return out
}

// advanceTurn scans forward from the current seat for the next active
// seat with a legal move, auto-skipping (incrementing but not eliminating)
// any active seat it passes over that has none (spec §4.3 "Turn
// advancement").
func (m *Match) advanceTurn(now time.Time) AdvanceOutcome {
	n := len(m.Seats)
	start := m.seatIndex[m.CurrentSeatID]
	var autoSkipped []SeatID

	for step := 1; step <= n; step++ {
		idx := (start + step) % n
		candidate := m.Seats[idx]
		if !candidate.Active() {
			continue
		}

		if !m.activeSeatHasLegalMove() {
			m.finish("", true, now)
			return AdvanceOutcome{Terminal: true, IsDraw: true, AutoSkipped: autoSkipped}
		}

		if board.AnyLegalMove(m.Board, candidate.Inventory) {
			m.CurrentSeatID = candidate.ID
			m.TurnStartedAt = now
			m.TurnEpoch++
			return AdvanceOutcome{NewCurrent: candidate.ID, AutoSkipped: autoSkipped}
		}

		candidate.IncrementSkip()
		autoSkipped = append(autoSkipped, candidate.ID)
	}

	// No active seat has a legal move anywhere: draw.
	m.finish("", true, now)
	return AdvanceOutcome{Terminal: true, IsDraw: true, AutoSkipped: autoSkipped}
}

func (m *Match) finish(winner SeatID, draw bool, now time.Time) {
	m.Status = StatusFinished
	m.WinnerID = winner
	m.IsDraw = draw
	m.FinishedAt = now
}
