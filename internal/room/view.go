package room

import (
	"github.com/choeurtis18/MortPion/internal/board"
	"github.com/choeurtis18/MortPion/internal/match"
)

// CellView is the wire representation of one board cell: color|null per
// slot (spec §6 Game state payload contract).
type CellView struct {
	P *string `json:"P"`
	M *string `json:"M"`
	G *string `json:"G"`
}

func colorPtr(c board.Color) *string {
	if c == board.None {
		return nil
	}
	s := string(c)
	return &s
}

func cellView(c board.Cell) CellView {
	return CellView{P: colorPtr(c.P), M: colorPtr(c.M), G: colorPtr(c.G)}
}

// InventoryView is the wire representation of a seat's remaining pieces.
type InventoryView struct {
	P int `json:"P"`
	M int `json:"M"`
	G int `json:"G"`
}

// PlayerView is one seat as seen by clients.
type PlayerView struct {
	ID          string        `json:"id"`
	Nickname    string        `json:"nickname"`
	Color       string        `json:"color"`
	Inventory   InventoryView `json:"inventory"`
	Connected   bool          `json:"connected"`
	IsHost      bool          `json:"isHost"`
	IsEliminated bool         `json:"isEliminated"`
	SkipsInARow int           `json:"skipsInARow"`
}

func playerView(p *match.Player) PlayerView {
	return PlayerView{
		ID:       string(p.ID),
		Nickname: p.Nickname,
		Color:    string(p.Color),
		Inventory: InventoryView{
			P: p.Inventory.P,
			M: p.Inventory.M,
			G: p.Inventory.G,
		},
		Connected:    p.Connected,
		IsHost:       p.IsHost,
		IsEliminated: p.Eliminated,
		SkipsInARow:  p.SkipsInARow,
	}
}

// GameStateView is the full "Game state payload contract" from spec §6.
type GameStateView struct {
	Board           [9]CellView  `json:"board"`
	Players         []PlayerView `json:"players"`
	CurrentPlayerID *string      `json:"currentPlayerId"`
	Status          string       `json:"status"`
	WinnerID        *string      `json:"winnerId"`
	IsDraw          bool         `json:"isDraw"`
	StartedAt       *int64       `json:"startedAt"`
	FinishedAt      *int64       `json:"finishedAt"`
	TurnTimeLeft    int          `json:"turnTimeLeft"`
}

// ReplayVoteView is the public view of an in-progress replay vote.
type ReplayVoteView struct {
	ReplayDeadline int64           `json:"replayDeadline"`
	ReplayVotes    map[string]bool `json:"replayVotes"`
}

// RoomView is the serializable snapshot used both for a full-sync to a
// joining/reconnecting client and as the payload backing most broadcast
// events (spec §4.6 snapshot()).
type RoomView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Capacity    int             `json:"capacity"`
	IsPrivate   bool            `json:"isPrivate"`
	HostID      string          `json:"hostId"`
	CreatedAt   int64           `json:"createdAt"`
	ExpiresAt   int64           `json:"expiresAt"`
	Status      string          `json:"status"`
	Players     []PlayerView    `json:"players"`
	Game        *GameStateView  `json:"game,omitempty"`
	ReplayVote  *ReplayVoteView `json:"replayVote,omitempty"`
}
