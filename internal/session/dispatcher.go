package session

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/choeurtis18/MortPion/internal/apperr"
	"github.com/choeurtis18/MortPion/internal/board"
	"github.com/choeurtis18/MortPion/internal/lobby"
	"github.com/choeurtis18/MortPion/internal/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Dispatcher is the Session Dispatcher (spec §4.8): it owns every live
// WebSocket connection, decodes the wire envelope, and routes each
// operation to the Room it names. It implements room.Outbox so every Room
// can reach its seats' connections without knowing about transport.
type Dispatcher struct {
	mu        sync.RWMutex
	conns     map[string]*Connection
	seatConns map[string]*Connection

	lobby      *lobby.Lobby
	strikes    *strikeTracker
	grace      *reconnectGrace
	nextConnID uint64
}

// New builds a Dispatcher wired to lobby, with a reconnect grace window
// pulled from configuration.
func New(lby *lobby.Lobby, reconnectGraceWindow time.Duration) *Dispatcher {
	return &Dispatcher{
		conns:     make(map[string]*Connection),
		seatConns: make(map[string]*Connection),
		lobby:     lby,
		strikes:   newStrikeTracker(),
		grace:     newReconnectGrace(reconnectGraceWindow),
	}
}

// HandleWebSocket upgrades an HTTP request to a WebSocket and starts the
// connection's read/write pumps.
func (d *Dispatcher) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[session] upgrade failed: %v", err)
		return
	}

	id := fmt.Sprintf("conn-%d", atomic.AddUint64(&d.nextConnID, 1))
	c := newConnection(id, wsConn, d)

	d.mu.Lock()
	d.conns[id] = c
	d.mu.Unlock()

	go c.writePump()
	c.readPump()
}

// Send implements room.Outbox: it routes a Room's event to whichever
// connection currently holds seatID, silently dropping it if none does.
func (d *Dispatcher) Send(seatID string, msgType room.MessageType, payload interface{}) {
	d.mu.RLock()
	c := d.seatConns[seatID]
	d.mu.RUnlock()
	if c == nil {
		return
	}
	d.sendTo(c, msgType, payload)
}

func (d *Dispatcher) sendTo(c *Connection, msgType room.MessageType, payload interface{}) {
	data, err := encodeOutbound(msgType, payload)
	if err != nil {
		log.Printf("[session] encode %s: %v", msgType, err)
		return
	}
	c.Send(data)
}

func (d *Dispatcher) sendError(c *Connection, msgType room.MessageType, err error) {
	d.sendTo(c, msgType, room.ErrorPayload{
		Code:    string(apperr.CodeOf(err)),
		Message: err.Error(),
	})
}

// handleInbound decodes one client frame and routes it. Decode failures
// and unknown message types count as invalid input (spec §7 "protocol
// desync"); once enough of them accumulate on one connection (the count is
// not reset by valid messages), the connection is closed.
func (d *Dispatcher) handleInbound(c *Connection, data []byte) {
	msgType, raw, err := decodeEnvelope(data)
	if err != nil {
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "malformed envelope"))
		return
	}

	switch msgType {
	case room.MsgPing:
		d.sendTo(c, room.MsgPong, room.PongPayload{Ts: time.Now().UnixMilli()})
	case room.MsgCreateRoom:
		d.handleCreateRoom(c, raw)
	case room.MsgJoinRoom:
		d.handleJoinRoom(c, raw)
	case room.MsgLeaveRoom:
		d.handleLeaveRoom(c)
	case room.MsgMakeMove:
		d.handleMakeMove(c, raw)
	case room.MsgGetGameState:
		d.handleGetGameState(c, raw)
	case room.MsgCastReplayVote:
		d.handleCastReplayVote(c, raw)
	case room.MsgReconnectRoom:
		d.handleReconnectRoom(c, raw)
	default:
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "unrecognized message type"))
	}
}

// strikeOrClose reports an InvalidInput error to the connection and, once
// the per-connection strike count crosses the threshold, closes it (spec
// §7 fatal conditions).
func (d *Dispatcher) strikeOrClose(c *Connection, err error) {
	d.sendError(c, room.MsgRoomError, err)
	if d.strikes.strike(c.ID) {
		log.Printf("[session] closing %s: invalid-input rate threshold exceeded", c.ID)
		d.sendError(c, room.MsgRoomError, apperr.New(apperr.Internal, "too many invalid messages"))
		close(c.send)
	}
}

func decodeInto[T any](raw []byte) (T, error) {
	var v T
	err := unmarshalPayload(raw, &v)
	return v, err
}

func (d *Dispatcher) handleCreateRoom(c *Connection, raw []byte) {
	req, err := decodeInto[room.CreateRoomRequest](raw)
	if err != nil {
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "malformed create-room payload"))
		return
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" || len([]rune(name)) > 20 {
		d.sendError(c, room.MsgRoomError, apperr.New(apperr.InvalidInput, "playerName must be 1..20 characters"))
		return
	}
	if req.Capacity < 2 || req.Capacity > 4 {
		d.sendError(c, room.MsgRoomError, apperr.New(apperr.InvalidInput, "capacity must be 2, 3 or 4"))
		return
	}
	var codeHash []byte
	if req.IsPrivate {
		code := strings.TrimSpace(req.Code)
		if n := len([]rune(code)); n < 4 || n > 20 {
			d.sendError(c, room.MsgRoomError, apperr.New(apperr.InvalidInput, "private room code must be 4..20 characters"))
			return
		}
		hash, err := room.HashCode(code)
		if err != nil {
			d.sendError(c, room.MsgRoomError, err)
			return
		}
		codeHash = hash
	}

	r, hostSeatID, err := d.lobby.Create(lobby.CreateOptions{
		Name:      req.RoomName,
		Capacity:  req.Capacity,
		IsPrivate: req.IsPrivate,
		CodeHash:  codeHash,
		HostID:    c.ID,
		HostName:  name,
	}, d)
	if err != nil {
		d.sendError(c, room.MsgRoomError, err)
		return
	}

	d.bindSeat(c, r.ID, hostSeatID)
	r.AnnounceCreated(hostSeatID)
}

func (d *Dispatcher) handleJoinRoom(c *Connection, raw []byte) {
	req, err := decodeInto[room.JoinRoomRequest](raw)
	if err != nil {
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "malformed join-room payload"))
		return
	}
	if c.RoomID != "" {
		d.sendError(c, room.MsgJoinError, apperr.ErrAlreadyIn)
		return
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" || len([]rune(name)) > 20 {
		d.sendError(c, room.MsgJoinError, apperr.New(apperr.InvalidInput, "playerName must be 1..20 characters"))
		return
	}
	r := d.lobby.Get(req.RoomID)
	if r == nil {
		d.sendError(c, room.MsgJoinError, apperr.ErrNotFound)
		return
	}
	seatID, err := r.Join(name, req.AccessCode)
	if err != nil {
		d.sendError(c, room.MsgJoinError, err)
		return
	}
	d.bindSeat(c, req.RoomID, seatID)
	r.AnnounceJoined(seatID)
}

func (d *Dispatcher) handleLeaveRoom(c *Connection) {
	if c.RoomID == "" {
		return
	}
	r := d.lobby.Get(c.RoomID)
	if r != nil {
		r.Leave(c.SeatID, room.LeaveExplicit)
	}
	d.unbindSeat(c)
}

func (d *Dispatcher) handleMakeMove(c *Connection, raw []byte) {
	req, err := decodeInto[room.MakeMoveRequest](raw)
	if err != nil {
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "malformed make-move payload"))
		return
	}
	size, ok := parseSize(req.Size)
	if !ok {
		d.sendError(c, room.MsgMoveError, apperr.New(apperr.InvalidInput, "size must be P, M or G"))
		return
	}
	r := d.roomFor(c, req.RoomID)
	if r == nil {
		d.sendError(c, room.MsgMoveError, apperr.ErrNotFound)
		return
	}
	r.Move(c.SeatID, req.CellIndex, size)
}

func (d *Dispatcher) handleGetGameState(c *Connection, raw []byte) {
	req, err := decodeInto[room.GetGameStateRequest](raw)
	if err != nil {
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "malformed get-game-state payload"))
		return
	}
	r := d.roomFor(c, req.RoomID)
	if r == nil {
		d.sendError(c, room.MsgRoomError, apperr.ErrNotFound)
		return
	}
	r.GetState(c.SeatID)
}

func (d *Dispatcher) handleCastReplayVote(c *Connection, raw []byte) {
	req, err := decodeInto[room.CastReplayVoteRequest](raw)
	if err != nil {
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "malformed cast-replay-vote payload"))
		return
	}
	r := d.roomFor(c, req.RoomID)
	if r == nil {
		d.sendError(c, room.MsgRoomError, apperr.ErrNotFound)
		return
	}
	r.CastReplayVote(c.SeatID, req.Vote)
}

func (d *Dispatcher) handleReconnectRoom(c *Connection, raw []byte) {
	req, err := decodeInto[room.ReconnectRoomRequest](raw)
	if err != nil {
		d.strikeOrClose(c, apperr.New(apperr.InvalidInput, "malformed reconnect-room payload"))
		return
	}
	r := d.lobby.Get(req.RoomID)
	if r == nil {
		d.sendError(c, room.MsgJoinError, apperr.ErrNotFound)
		return
	}
	if !d.grace.claim(req.SeatID, time.Now()) {
		d.sendError(c, room.MsgJoinError, apperr.New(apperr.Forbidden, "reconnect grace window has elapsed"))
		return
	}
	if err := r.Reconnect(req.SeatID); err != nil {
		d.sendError(c, room.MsgJoinError, err)
		return
	}
	d.bindSeat(c, req.RoomID, req.SeatID)
	r.AnnounceJoined(req.SeatID)
}

// roomFor resolves roomID and checks the requesting connection is bound
// to the seat it claims to be.
func (d *Dispatcher) roomFor(c *Connection, roomID string) *room.Room {
	if c.SeatID == "" || c.RoomID != roomID {
		return nil
	}
	return d.lobby.Get(roomID)
}

func (d *Dispatcher) bindSeat(c *Connection, roomID, seatID string) {
	c.RoomID = roomID
	c.SeatID = seatID
	d.mu.Lock()
	d.seatConns[seatID] = c
	d.mu.Unlock()
	d.grace.clear(seatID)
}

func (d *Dispatcher) unbindSeat(c *Connection) {
	d.mu.Lock()
	delete(d.seatConns, c.SeatID)
	d.mu.Unlock()
	c.RoomID = ""
	c.SeatID = ""
}

// handleDisconnect is invoked by Connection.readPump's deferred cleanup:
// a closed transport is a disconnect operation on whatever seat it held.
func (d *Dispatcher) handleDisconnect(c *Connection) {
	d.mu.Lock()
	delete(d.conns, c.ID)
	if c.SeatID != "" && d.seatConns[c.SeatID] == c {
		delete(d.seatConns, c.SeatID)
	}
	d.mu.Unlock()
	d.strikes.forget(c.ID)

	if c.RoomID == "" {
		return
	}
	if r := d.lobby.Get(c.RoomID); r != nil {
		r.Leave(c.SeatID, room.LeaveDisconnect)
	}
	d.grace.markDisconnected(c.SeatID, time.Now())
}

func parseSize(s string) (board.Size, bool) {
	switch board.Size(s) {
	case board.Petite, board.Moyenne, board.Grande:
		return board.Size(s), true
	default:
		return "", false
	}
}
