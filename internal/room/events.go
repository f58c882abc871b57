package room

// MessageType identifies the `type` field of a JSON wire envelope
// (spec §6 External Interfaces).
type MessageType string

// Inbound (client -> server).
const (
	MsgPing           MessageType = "ping"
	MsgCreateRoom     MessageType = "create-room"
	MsgJoinRoom       MessageType = "join-room"
	MsgLeaveRoom      MessageType = "leave-room"
	MsgMakeMove       MessageType = "make-move"
	MsgGetGameState   MessageType = "get-game-state"
	MsgCastReplayVote MessageType = "cast-replay-vote"
	MsgReconnectRoom  MessageType = "reconnect-room"
)

// Outbound (server -> client).
const (
	MsgPong                  MessageType = "pong"
	MsgRoomCreated           MessageType = "room-created"
	MsgRoomJoined            MessageType = "room-joined"
	MsgPlayerJoined          MessageType = "player-joined"
	MsgRoomError             MessageType = "room-error"
	MsgJoinError             MessageType = "join-error"
	MsgGameStarted           MessageType = "game-started"
	MsgGameUpdated           MessageType = "game-updated"
	MsgGameEnded             MessageType = "game-ended"
	MsgMoveError             MessageType = "move-error"
	MsgTimerUpdate           MessageType = "timer-update"
	MsgTurnSkipped           MessageType = "turn-skipped"
	MsgPlayerEliminated      MessageType = "player-eliminated"
	MsgPlayerDisconnected    MessageType = "player-disconnected"
	MsgHostTransferred       MessageType = "host-transferred"
	MsgReplayVotingStarted   MessageType = "replay-voting-started"
	MsgReplayVoteUpdated     MessageType = "replay-vote-updated"
	MsgReplayRejected        MessageType = "replay-rejected"
	MsgReplayTimeout         MessageType = "replay-timeout"
	MsgGameRestarted         MessageType = "game-restarted"
	MsgGameState             MessageType = "game-state"
)

// The wire shape is a generic `{type, ...}` object. Outbound payload
// structs below are marshaled with an injected "type" field by
// the session codec (internal/session/codec.go); Room itself only builds
// the typed payload values.

// PongPayload answers a ping with the server's current time.
type PongPayload struct {
	Ts int64 `json:"ts"`
}

// CreateRoomRequest is the inbound create-room payload.
type CreateRoomRequest struct {
	PlayerName string `json:"playerName"`
	RoomName   string `json:"roomName"`
	IsPrivate  bool   `json:"isPrivate"`
	Capacity   int    `json:"capacity"`
	Code       string `json:"code"`
}

// JoinRoomRequest is the inbound join-room payload.
type JoinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	AccessCode string `json:"accessCode"`
}

// MakeMoveRequest is the inbound make-move payload.
type MakeMoveRequest struct {
	RoomID    string `json:"roomId"`
	CellIndex int    `json:"cellIndex"`
	Size      string `json:"size"`
}

// GetGameStateRequest is the inbound get-game-state payload.
type GetGameStateRequest struct {
	RoomID string `json:"roomId"`
}

// CastReplayVoteRequest is the inbound cast-replay-vote payload.
type CastReplayVoteRequest struct {
	RoomID string `json:"roomId"`
	Vote   bool   `json:"vote"`
}

// ReconnectRoomRequest is the inbound reconnect-room payload (supplemented
// wire message: rebinds a new transport to an existing seat).
type ReconnectRoomRequest struct {
	RoomID string `json:"roomId"`
	SeatID string `json:"seatId"`
}

// RoomCreatedPayload acknowledges create-room to the creating connection.
type RoomCreatedPayload struct {
	Room RoomView `json:"room"`
	Self PlayerView `json:"self"`
}

// RoomJoinedPayload acknowledges join-room to the joining connection.
type RoomJoinedPayload struct {
	Room RoomView `json:"room"`
	Self PlayerView `json:"self"`
}

// PlayerJoinedPayload is broadcast to the rest of the room on a new join.
type PlayerJoinedPayload struct {
	Room   RoomView   `json:"room"`
	Player PlayerView `json:"player"`
}

// ErrorPayload backs room-error, join-error and move-error: a stable
// error code plus a human-readable message (spec §7).
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// GameStartedPayload announces the match beginning (initial or replay).
type GameStartedPayload struct {
	Room RoomView `json:"room"`
}

// GameUpdatedPayload is broadcast after any accepted move.
type GameUpdatedPayload struct {
	Room RoomView `json:"room"`
}

// GameEndedPayload announces a terminal match outcome.
type GameEndedPayload struct {
	Room RoomView `json:"room"`
}

// TimerUpdatePayload is the ~1Hz ticking payload named verbatim in spec §6.
type TimerUpdatePayload struct {
	TurnTimeLeft    int    `json:"turnTimeLeft"`
	CurrentPlayerID string `json:"currentPlayerId"`
}

// TurnSkippedPayload announces an automatic skip (timeout or no legal move).
type TurnSkippedPayload struct {
	SkippedPlayerID string        `json:"skippedPlayerId"`
	Reason          string        `json:"reason"`
	GameState       GameStateView `json:"gameState"`
}

// PlayerEliminatedPayload announces a seat's elimination, either by
// crossing the skip-limit or by an explicit leave mid-match.
type PlayerEliminatedPayload struct {
	Room     RoomView `json:"room"`
	PlayerID string   `json:"playerId"`
}

// PlayerDisconnectedPayload announces a transport-level disconnect.
type PlayerDisconnectedPayload struct {
	Room     RoomView `json:"room"`
	PlayerID string   `json:"playerId"`
}

// HostTransferredPayload announces host promotion after the prior host left.
type HostTransferredPayload struct {
	Room      RoomView `json:"room"`
	NewHostID string   `json:"newHostId"`
}

// ReplayVotingStartedPayload opens the post-match replay window.
type ReplayVotingStartedPayload struct {
	ReplayDeadline int64           `json:"replayDeadline"`
	ReplayVotes    map[string]bool `json:"replayVotes"`
}

// ReplayVoteUpdatedPayload is broadcast after each cast ballot.
type ReplayVoteUpdatedPayload struct {
	ReplayVotes map[string]bool `json:"replayVotes"`
}

// ReplayRejectedPayload announces a non-unanimous outcome.
type ReplayRejectedPayload struct {
	Room RoomView `json:"room"`
}

// ReplayTimeoutPayload announces the vote window elapsing with stragglers.
type ReplayTimeoutPayload struct {
	Room RoomView `json:"room"`
}

// GameRestartedPayload announces a fresh match after a unanimous replay.
type GameRestartedPayload struct {
	Room RoomView `json:"room"`
}

// GameStatePayload answers get-game-state with the full room snapshot.
type GameStatePayload struct {
	Room RoomView `json:"room"`
}
