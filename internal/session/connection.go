package session

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	readLimitBytes  = 65536
	pongWait        = 60 * time.Second
	pingInterval    = 30 * time.Second
	writeWait       = 10 * time.Second
	sendBufferDepth = 256
)

// Connection is one client's WebSocket transport. RoomID/SeatID are only
// ever mutated from this connection's own readPump goroutine, in response
// to the Dispatcher resolving a join/create/reconnect — no separate lock
// is needed for them.
type Connection struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	dispatcher *Dispatcher
	RoomID     string
	SeatID     string
}

func newConnection(id string, wsConn *websocket.Conn, d *Dispatcher) *Connection {
	return &Connection{
		ID:         id,
		conn:       wsConn,
		send:       make(chan []byte, sendBufferDepth),
		dispatcher: d,
	}
}

// Send enqueues a message for delivery, dropping it if the connection's
// outbound buffer is full (spec §5 "bounded non-blocking drop-newest").
func (c *Connection) Send(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("[session] dropping message to connection %s: send buffer full", c.ID)
	}
}

func (c *Connection) readPump() {
	defer func() {
		c.dispatcher.handleDisconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimitBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[session] read error on %s: %v", c.ID, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.dispatcher.handleInbound(c, data)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
