// Package room implements the Room actor (spec §4.6): the unit of
// serialization for one table. All mutations — join, leave, move, vote,
// reconnect, timer fire — are drained one at a time from a mailbox by a
// single goroutine, grounded on the teacher's apps/server/internal/table
// Table.run()/handleEvent() actor.
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/choeurtis18/MortPion/internal/apperr"
	"github.com/choeurtis18/MortPion/internal/board"
	"github.com/choeurtis18/MortPion/internal/match"
	"github.com/choeurtis18/MortPion/internal/timer"
	"github.com/choeurtis18/MortPion/internal/vote"
)

// Outbox delivers a typed payload to a single seat's connection. A seat
// with no live connection is a no-op send; the Room never blocks on it.
type Outbox interface {
	Send(seatID string, msgType MessageType, payload interface{})
}

// Options carries the tunables every Room needs from internal/config.
type Options struct {
	TurnTimeout      time.Duration
	ReplayVoteWindow time.Duration
	RoomTTL          time.Duration
	SkipLimit        int
	ColorPalette     []board.Color
}

// Status is the Room's own lifecycle state (distinct from the Match's).
type Status string

const (
	StatusWaiting Status = "waiting"
	StatusPlaying Status = "playing"
)

// LeaveMode distinguishes an explicit leave-room request from a
// Dispatcher-observed transport disconnect (spec §4.6 leave()).
type LeaveMode int

const (
	LeaveExplicit LeaveMode = iota
	LeaveDisconnect
)

// Summary is the lightweight, lock-guarded projection used by the Lobby
// Registry's listing endpoint — read without going through the mailbox,
// the same way the teacher's Table exposes Snapshot()/IsIdleFor() as
// directly-locked accessors alongside the actor.
type Summary struct {
	ID             string
	Name           string
	PlayerCount    int
	Capacity       int
	IsPrivate      bool
	Status         Status
	CreatedAt      int64
	ExpiresAt      int64
	HostID         string
	LastActivityAt int64 // match.StartedAt if the match has started, else CreatedAt
}

type opKind int

const (
	opJoin opKind = iota
	opLeave
	opMove
	opGetState
	opCastVote
	opReconnect
	opAnnounceCreate
	opAnnounceJoin
	opTimeout
	opTick
	opClose
)

type op struct {
	kind       opKind
	seatID     string
	playerName string
	accessCode string
	leaveMode  LeaveMode
	cellIndex  int
	size       board.Size
	vote       bool
	timeoutMsg timer.Timeout
	reply      chan opResult
}

type opResult struct {
	seatID string
	err    error
}

// Room is one table: its roster, its current Match (if any), its turn
// timer and replay vote, and the mailbox that serializes every mutation.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	IsPrivate bool
	HostID    string
	CreatedAt int64

	opts   Options
	outbox Outbox
	rng    *rand.Rand

	mailbox chan op
	done    chan struct{}
	closeFn func(roomID string)

	mu      sync.RWMutex
	summary Summary

	// Fields below are only ever touched from within the actor goroutine.
	codeHash  []byte
	status    Status
	expiresAt int64
	players   []*match.Player
	m         *match.Match
	tmr       *timer.Timer
	timeoutCh chan timer.Timeout
	vt        *vote.Vote
	closed    bool
}

// New constructs a Room with its host already seated and starts its actor
// goroutine. The host's join never touches the mailbox: nothing else can
// be racing the Room before it exists.
func New(id, name string, capacity int, isPrivate bool, codeHash []byte, hostName string, opts Options, outbox Outbox, rng *rand.Rand, now time.Time, closeFn func(string)) (*Room, string) {
	hostID := uuid.NewString()
	host := match.NewPlayer(match.SeatID(hostID), hostName, opts.ColorPalette[0], true)

	r := &Room{
		ID:        id,
		Name:      name,
		Capacity:  capacity,
		IsPrivate: isPrivate,
		HostID:    hostID,
		CreatedAt: now.UnixMilli(),
		opts:      opts,
		outbox:    outbox,
		rng:       rng,
		mailbox:   make(chan op, 64),
		done:      make(chan struct{}),
		closeFn:   closeFn,
		codeHash:  codeHash,
		status:    StatusWaiting,
		expiresAt: now.Add(opts.RoomTTL).UnixMilli(),
		players:   []*match.Player{host},
	}
	r.timeoutCh = make(chan timer.Timeout, 4)
	r.tmr = timer.New(opts.TurnTimeout, r.timeoutCh)
	r.refreshSummaryLocked()

	go r.run()
	return r, hostID
}

// Summary returns the lock-guarded listing projection (see Summary).
func (r *Room) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary
}

func (r *Room) refreshSummaryLocked() {
	lastActivityAt := r.CreatedAt
	if r.m != nil && !r.m.StartedAt.IsZero() {
		lastActivityAt = r.m.StartedAt.UnixMilli()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = Summary{
		ID:             r.ID,
		Name:           r.Name,
		PlayerCount:    len(r.players),
		Capacity:       r.Capacity,
		IsPrivate:      r.IsPrivate,
		Status:         r.status,
		CreatedAt:      r.CreatedAt,
		ExpiresAt:      r.expiresAt,
		HostID:         r.HostID,
		LastActivityAt: lastActivityAt,
	}
}

func (r *Room) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case o := <-r.mailbox:
			res := r.handle(o, time.Now())
			if o.reply != nil {
				o.reply <- res
			}
			if r.closed {
				if r.closeFn != nil {
					r.closeFn(r.ID)
				}
				return
			}
		case to := <-r.timeoutCh:
			r.handle(op{kind: opTimeout, timeoutMsg: to}, time.Now())
		case <-ticker.C:
			r.handle(op{kind: opTick}, time.Now())
		case <-r.done:
			return
		}
	}
}

func (r *Room) submit(o op) opResult {
	o.reply = make(chan opResult, 1)
	select {
	case r.mailbox <- o:
	case <-r.done:
		return opResult{err: apperr.New(apperr.NotFound, "room closed")}
	}
	select {
	case res := <-o.reply:
		return res
	case <-r.done:
		return opResult{err: apperr.New(apperr.NotFound, "room closed")}
	}
}

// Join enqueues a join-room request and returns the assigned seat ID.
func (r *Room) Join(playerName, accessCode string) (string, error) {
	res := r.submit(op{kind: opJoin, playerName: playerName, accessCode: accessCode})
	return res.seatID, res.err
}

// Leave enqueues a leave-room request (explicit or disconnect).
func (r *Room) Leave(seatID string, mode LeaveMode) error {
	return r.submit(op{kind: opLeave, seatID: seatID, leaveMode: mode}).err
}

// Move enqueues a make-move request.
func (r *Room) Move(seatID string, cellIndex int, size board.Size) error {
	return r.submit(op{kind: opMove, seatID: seatID, cellIndex: cellIndex, size: size}).err
}

// GetState enqueues a get-game-state request.
func (r *Room) GetState(seatID string) error {
	return r.submit(op{kind: opGetState, seatID: seatID}).err
}

// CastReplayVote enqueues a cast-replay-vote request.
func (r *Room) CastReplayVote(seatID string, vote bool) error {
	return r.submit(op{kind: opCastVote, seatID: seatID, vote: vote}).err
}

// Reconnect enqueues a reconnect request for a seat with a restored
// transport.
func (r *Room) Reconnect(seatID string) error {
	return r.submit(op{kind: opReconnect, seatID: seatID}).err
}

// AnnounceCreated sends the room-created acknowledgement to the host seat.
// Called by the Dispatcher once it has bound a connection to the seat
// New returned, so the event isn't dropped for want of a registered
// connection.
func (r *Room) AnnounceCreated(seatID string) error {
	return r.submit(op{kind: opAnnounceCreate, seatID: seatID}).err
}

// AnnounceJoined sends the room-joined acknowledgement to a seat that just
// joined or reconnected. Called by the Dispatcher once it has bound a
// connection to the seat, for the same bind-before-send reason as
// AnnounceCreated.
func (r *Room) AnnounceJoined(seatID string) error {
	return r.submit(op{kind: opAnnounceJoin, seatID: seatID}).err
}

// Close tells the Room to shut its actor down (Lobby sweep or empty room).
func (r *Room) Close() {
	r.submit(op{kind: opClose})
}

func (r *Room) handle(o op, now time.Time) opResult {
	if r.closed && o.kind != opClose {
		return opResult{err: apperr.New(apperr.NotFound, "room closed")}
	}
	switch o.kind {
	case opJoin:
		return r.handleJoin(o.playerName, o.accessCode, now)
	case opLeave:
		return r.handleLeave(o.seatID, o.leaveMode, now)
	case opMove:
		return r.handleMove(o.seatID, o.cellIndex, o.size, now)
	case opGetState:
		return r.handleGetState(o.seatID, now)
	case opCastVote:
		return r.handleCastVote(o.seatID, o.vote, now)
	case opReconnect:
		return r.handleReconnect(o.seatID, now)
	case opAnnounceCreate:
		return r.handleAnnounceCreate(o.seatID, now)
	case opAnnounceJoin:
		return r.handleAnnounceJoined(o.seatID, now)
	case opTimeout:
		r.handleTimeout(o.timeoutMsg, now)
		return opResult{}
	case opTick:
		r.handleTick(now)
		return opResult{}
	case opClose:
		r.closed = true
		r.tmr.Cancel()
		return opResult{}
	default:
		return opResult{err: apperr.New(apperr.Internal, "unknown room operation")}
	}
}

func (r *Room) seatIndex(seatID string) int {
	for i, p := range r.players {
		if string(p.ID) == seatID {
			return i
		}
	}
	return -1
}

func (r *Room) nextColor() (board.Color, bool) {
	used := make(map[board.Color]bool, len(r.players))
	for _, p := range r.players {
		used[p.Color] = true
	}
	for _, c := range r.opts.ColorPalette {
		if !used[c] {
			return c, true
		}
	}
	return board.None, false
}

func (r *Room) handleJoin(playerName, accessCode string, now time.Time) opResult {
	if r.status != StatusWaiting {
		return opResult{err: apperr.ErrInProgress}
	}
	if now.UnixMilli() > r.expiresAt {
		return opResult{err: apperr.ErrExpired}
	}
	if len(r.players) >= r.Capacity {
		return opResult{err: apperr.ErrFull}
	}
	if r.IsPrivate && !verifyCode(r.codeHash, accessCode) {
		return opResult{err: apperr.ErrInvalidCode}
	}
	color, ok := r.nextColor()
	if !ok {
		return opResult{err: apperr.ErrNoColor}
	}

	seatID := uuid.NewString()
	p := match.NewPlayer(match.SeatID(seatID), playerName, color, false)
	r.players = append(r.players, p)

	// room-joined to the new seat itself is sent via AnnounceJoined, once
	// the Dispatcher has bound a connection to this freshly minted seatID
	// — sending it here would race the bind and be silently dropped.
	view := r.snapshot(now)
	r.broadcastExcept(seatID, MsgPlayerJoined, PlayerJoinedPayload{Room: view, Player: playerView(p)})

	if len(r.players) == r.Capacity {
		r.startMatch(now)
	}
	r.refreshSummaryLocked()
	return opResult{seatID: seatID}
}

func (r *Room) startMatch(now time.Time) {
	r.status = StatusPlaying
	r.expiresAt = now.Add(r.opts.RoomTTL).UnixMilli()
	r.m = match.New(r.players, r.opts.SkipLimit, r.rng, now)
	r.tmr.Start(string(r.m.CurrentSeatID), r.m.TurnEpoch, now)
	r.broadcastAll(MsgGameStarted, GameStartedPayload{Room: r.snapshot(now)})
}

func (r *Room) handleLeave(seatID string, mode LeaveMode, now time.Time) opResult {
	idx := r.seatIndex(seatID)
	if idx < 0 {
		return opResult{err: apperr.ErrNotInRoom}
	}
	p := r.players[idx]

	if r.status == StatusWaiting {
		r.removeSeat(idx)
		if len(r.players) == 0 {
			r.closed = true
			return opResult{}
		}
		if p.IsHost {
			r.players[0].SetHost(true)
			r.HostID = string(r.players[0].ID)
			r.broadcastAll(MsgHostTransferred, HostTransferredPayload{Room: r.snapshot(now), NewHostID: r.HostID})
		}
		r.refreshSummaryLocked()
		return opResult{}
	}

	// Playing.
	switch mode {
	case LeaveDisconnect:
		p.SetConnected(false)
		r.broadcastAll(MsgPlayerDisconnected, PlayerDisconnectedPayload{Room: r.snapshot(now), PlayerID: seatID})
		r.refreshSummaryLocked()
		return opResult{}
	default: // LeaveExplicit
		if r.vt != nil {
			// Post-terminal replay-vote window: Room.status stays Playing
			// here (it only drops to Waiting inside evaluateVote's
			// Accepted branch), so the match-finished case below would
			// otherwise treat this leave as a silent no-op while the seat
			// sits in the voter tally forever. Count it as a reject vote
			// instead — the seat is leaving either way, so there is
			// nothing to gain by waiting out the rest of the window.
			r.vt.Cast(seatID, false)
			r.broadcastAll(MsgReplayVoteUpdated, ReplayVoteUpdatedPayload{ReplayVotes: r.vt.Tally()})
			r.evaluateVote(now)
			r.refreshSummaryLocked()
			return opResult{}
		}
		if r.m == nil || r.m.Status != match.StatusPlaying {
			r.refreshSummaryLocked()
			return opResult{}
		}
		out := r.m.EliminateSeat(match.SeatID(seatID), now)
		r.broadcastAll(MsgPlayerEliminated, PlayerEliminatedPayload{Room: r.snapshot(now), PlayerID: seatID})
		r.afterAdvance(out, now)
		r.refreshSummaryLocked()
		return opResult{}
	}
}

func (r *Room) removeSeat(idx int) {
	r.players = append(r.players[:idx], r.players[idx+1:]...)
}

func (r *Room) handleMove(seatID string, cellIndex int, size board.Size, now time.Time) opResult {
	if r.m == nil {
		r.outbox.Send(seatID, MsgMoveError, ErrorPayload{Code: string(apperr.Unavailable), Message: "match has not started"})
		return opResult{err: apperr.ErrNotPlaying}
	}
	out, err := r.m.SubmitMove(match.SeatID(seatID), cellIndex, size, now)
	if err != nil {
		r.outbox.Send(seatID, MsgMoveError, ErrorPayload{Code: string(apperr.CodeOf(err)), Message: err.Error()})
		return opResult{err: err}
	}
	r.broadcastAll(MsgGameUpdated, GameUpdatedPayload{Room: r.snapshot(now)})
	r.afterAdvance(out, now)
	r.refreshSummaryLocked()
	return opResult{}
}

// afterAdvance reacts to a match.AdvanceOutcome: announces turn-skipped
// for every seat auto-skipped for lack of a legal move, rearms or cancels
// the turn timer, and on a terminal outcome announces game-ended and opens
// the replay vote.
func (r *Room) afterAdvance(out match.AdvanceOutcome, now time.Time) {
	if len(out.AutoSkipped) > 0 {
		view := r.snapshot(now)
		for _, id := range out.AutoSkipped {
			r.broadcastAll(MsgTurnSkipped, TurnSkippedPayload{
				SkippedPlayerID: string(id),
				Reason:          "no-legal-move",
				GameState:       *view.Game,
			})
		}
	}
	if out.Terminal {
		r.tmr.Cancel()
		r.broadcastAll(MsgGameEnded, GameEndedPayload{Room: r.snapshot(now)})
		r.openReplayVote(now)
		return
	}
	if out.NewCurrent != "" {
		r.tmr.Start(string(out.NewCurrent), r.m.TurnEpoch, now)
	}
}

func (r *Room) openReplayVote(now time.Time) {
	voters := make([]string, 0, len(r.players))
	for _, p := range r.players {
		if p.Connected {
			voters = append(voters, string(p.ID))
		}
	}
	r.vt = vote.Open(voters, r.opts.ReplayVoteWindow, now)
	r.broadcastAll(MsgReplayVotingStarted, ReplayVotingStartedPayload{
		ReplayDeadline: r.vt.Deadline().UnixMilli(),
		ReplayVotes:    r.vt.Tally(),
	})
}

func (r *Room) handleGetState(seatID string, now time.Time) opResult {
	if r.seatIndex(seatID) < 0 {
		return opResult{err: apperr.ErrNotInRoom}
	}
	r.outbox.Send(seatID, MsgGameState, GameStatePayload{Room: r.snapshot(now)})
	return opResult{}
}

func (r *Room) handleCastVote(seatID string, value bool, now time.Time) opResult {
	if r.vt == nil {
		return opResult{err: apperr.ErrNoVoteActive}
	}
	if !r.vt.Cast(seatID, value) {
		return opResult{err: apperr.ErrNotVoter}
	}
	r.broadcastAll(MsgReplayVoteUpdated, ReplayVoteUpdatedPayload{ReplayVotes: r.vt.Tally()})
	r.evaluateVote(now)
	return opResult{}
}

func (r *Room) evaluateVote(now time.Time) {
	if r.vt == nil {
		return
	}
	switch r.vt.Evaluate(now) {
	case vote.Accepted:
		r.vt = nil
		r.status = StatusWaiting
		r.startMatch(now)
		r.broadcastAll(MsgGameRestarted, GameRestartedPayload{Room: r.snapshot(now)})
	case vote.Rejected:
		r.vt = nil
		r.closed = true
		r.broadcastAll(MsgReplayRejected, ReplayRejectedPayload{Room: r.snapshot(now)})
	case vote.Expired:
		r.vt = nil
		r.closed = true
		r.broadcastAll(MsgReplayTimeout, ReplayTimeoutPayload{Room: r.snapshot(now)})
	}
}

func (r *Room) handleReconnect(seatID string, now time.Time) opResult {
	idx := r.seatIndex(seatID)
	if idx < 0 {
		return opResult{err: apperr.ErrNotInRoom}
	}
	r.players[idx].SetConnected(true)
	r.refreshSummaryLocked()
	return opResult{}
}

func (r *Room) handleAnnounceCreate(seatID string, now time.Time) opResult {
	idx := r.seatIndex(seatID)
	if idx < 0 {
		return opResult{err: apperr.ErrNotInRoom}
	}
	view := r.snapshot(now)
	r.outbox.Send(seatID, MsgRoomCreated, RoomCreatedPayload{Room: view, Self: playerView(r.players[idx])})
	return opResult{}
}

// handleAnnounceJoined sends the room-joined acknowledgement to a seat
// after the Dispatcher has bound its connection, covering both a first
// join and a reconnect (both leave the seat registered but previously
// unreachable from inside the actor).
func (r *Room) handleAnnounceJoined(seatID string, now time.Time) opResult {
	idx := r.seatIndex(seatID)
	if idx < 0 {
		return opResult{err: apperr.ErrNotInRoom}
	}
	view := r.snapshot(now)
	r.outbox.Send(seatID, MsgRoomJoined, RoomJoinedPayload{Room: view, Self: playerView(r.players[idx])})
	return opResult{}
}

func (r *Room) handleTimeout(to timer.Timeout, now time.Time) {
	if r.m == nil || !r.tmr.Valid(to) {
		return
	}
	if string(r.m.CurrentSeatID) != to.SeatID || r.m.TurnEpoch != to.Epoch {
		return
	}
	skipped := r.m.CurrentSeatID
	out := r.m.SkipCurrent(now)
	view := r.snapshot(now)
	r.broadcastAll(MsgTurnSkipped, TurnSkippedPayload{
		SkippedPlayerID: string(skipped),
		Reason:          "timeout",
		GameState:       *view.Game,
	})
	if p := r.players[r.seatIndex(string(skipped))]; p.Eliminated {
		r.broadcastAll(MsgPlayerEliminated, PlayerEliminatedPayload{Room: view, PlayerID: string(skipped)})
	}
	r.afterAdvance(out, now)
	r.refreshSummaryLocked()
}

func (r *Room) handleTick(now time.Time) {
	if r.closed {
		return
	}
	if r.m != nil && r.m.Status == match.StatusPlaying {
		r.broadcastAll(MsgTimerUpdate, TimerUpdatePayload{
			TurnTimeLeft:    int(r.tmr.Remaining(now) / time.Second),
			CurrentPlayerID: string(r.m.CurrentSeatID),
		})
	}
	if r.vt != nil {
		r.evaluateVote(now)
	}
}

func (r *Room) broadcastAll(msgType MessageType, payload interface{}) {
	for _, p := range r.players {
		r.outbox.Send(string(p.ID), msgType, payload)
	}
}

func (r *Room) broadcastExcept(excludeSeatID string, msgType MessageType, payload interface{}) {
	for _, p := range r.players {
		if string(p.ID) == excludeSeatID {
			continue
		}
		r.outbox.Send(string(p.ID), msgType, payload)
	}
}

func (r *Room) snapshot(now time.Time) RoomView {
	players := make([]PlayerView, len(r.players))
	for i, p := range r.players {
		players[i] = playerView(p)
	}

	view := RoomView{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		IsPrivate: r.IsPrivate,
		HostID:    r.HostID,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.expiresAt,
		Status:    string(r.status),
		Players:   players,
		Game:      r.gameStateView(now),
	}
	if r.vt != nil {
		tally := r.vt.Tally()
		view.ReplayVote = &ReplayVoteView{
			ReplayDeadline: r.vt.Deadline().UnixMilli(),
			ReplayVotes:    tally,
		}
	}
	return view
}

func (r *Room) gameStateView(now time.Time) *GameStateView {
	if r.m == nil {
		return nil
	}

	var boardView [9]CellView
	for i, c := range r.m.Board {
		boardView[i] = cellView(c)
	}

	players := make([]PlayerView, len(r.m.Seats))
	for i, p := range r.m.Seats {
		players[i] = playerView(p)
	}

	status := "playing"
	if r.m.Status == match.StatusFinished {
		status = "finished"
	}

	var currentID *string
	if r.m.Status == match.StatusPlaying {
		id := string(r.m.CurrentSeatID)
		currentID = &id
	}
	var winnerID *string
	if r.m.WinnerID != "" {
		id := string(r.m.WinnerID)
		winnerID = &id
	}
	var startedAt *int64
	if !r.m.StartedAt.IsZero() {
		ms := r.m.StartedAt.UnixMilli()
		startedAt = &ms
	}
	var finishedAt *int64
	if !r.m.FinishedAt.IsZero() {
		ms := r.m.FinishedAt.UnixMilli()
		finishedAt = &ms
	}

	return &GameStateView{
		Board:           boardView,
		Players:         players,
		CurrentPlayerID: currentID,
		Status:          status,
		WinnerID:        winnerID,
		IsDraw:          r.m.IsDraw,
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
		TurnTimeLeft:    int(r.tmr.Remaining(now) / time.Second),
	}
}
