// Package match implements the Player Record (spec §4.2) and the Match
// Engine state machine (spec §4.3) for one game.
package match

import "github.com/choeurtis18/MortPion/internal/board"

// SeatID is an opaque, room-scoped identifier minted by the owning Room
// (spec §9 "Identifiers").
type SeatID string

// Player is one seat's state for the duration of a room's lifetime. All
// mutations are synchronous and are only ever called from within the
// owning Room's serialized context — Player itself holds no lock.
type Player struct {
	ID          SeatID
	Nickname    string
	Color       board.Color
	Inventory   board.Inventory
	Connected   bool
	SkipsInARow int
	Eliminated  bool
	IsHost      bool
}

// NewPlayer creates a seat with a fresh, full inventory.
func NewPlayer(id SeatID, nickname string, color board.Color, isHost bool) *Player {
	return &Player{
		ID:        id,
		Nickname:  nickname,
		Color:     color,
		Inventory: board.Inventory{P: 3, M: 3, G: 3},
		Connected: true,
		IsHost:    isHost,
	}
}

// Active reports whether the seat can still take part in turn order: not
// eliminated and currently connected (spec glossary "Active seat").
func (p *Player) Active() bool {
	return !p.Eliminated && p.Connected
}

// UsePiece decrements the inventory for size, failing if none remain.
func (p *Player) UsePiece(size board.Size) bool {
	switch size {
	case board.Petite:
		if p.Inventory.P <= 0 {
			return false
		}
		p.Inventory.P--
	case board.Moyenne:
		if p.Inventory.M <= 0 {
			return false
		}
		p.Inventory.M--
	case board.Grande:
		if p.Inventory.G <= 0 {
			return false
		}
		p.Inventory.G--
	default:
		return false
	}
	return true
}

// HasInventory reports whether at least one piece of size remains.
func (p *Player) HasInventory(size board.Size) bool {
	switch size {
	case board.Petite:
		return p.Inventory.P > 0
	case board.Moyenne:
		return p.Inventory.M > 0
	case board.Grande:
		return p.Inventory.G > 0
	default:
		return false
	}
}

// IncrementSkip bumps the consecutive-skip counter.
func (p *Player) IncrementSkip() { p.SkipsInARow++ }

// ResetSkip clears the consecutive-skip counter (called after any
// successful move).
func (p *Player) ResetSkip() { p.SkipsInARow = 0 }

// Eliminate marks the seat eliminated; once true it remains true until the
// seat's Match is reinitialized by a replay.
func (p *Player) Eliminate() { p.Eliminated = true }

// SetConnected updates the transport-liveness flag; called only by the
// Room in response to Dispatcher-observed transport up/down events.
func (p *Player) SetConnected(v bool) { p.Connected = v }

// SetHost sets the host flag. The Room guarantees at most one seat has
// IsHost true at a time.
func (p *Player) SetHost(v bool) { p.IsHost = v }

// ResetForReplay restores a seat to its new-match starting state while
// preserving identity, nickname, color and connection status (spec §4.5).
func (p *Player) ResetForReplay() {
	p.Inventory = board.Inventory{P: 3, M: 3, G: 3}
	p.SkipsInARow = 0
	p.Eliminated = false
}
