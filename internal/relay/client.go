package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/remotix/remotix/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. 64 KB covers the largest
	// trickle-less SDP payloads with room to spare.
	maxMessageSize = 64 * 1024
)

// Client wraps a single websocket connection (one endpoint). Its identity is
// assigned by the hub on connect and lives until the transport disconnects.
type Client struct {
	// ID is the relay-assigned endpoint id (the routing key for signal
	// envelopes).
	ID string

	Hub  *Hub
	Conn *websocket.Conn

	// RoomID and Role are set on join-room and read only by the hub
	// goroutine.
	RoomID string
	Role   protocol.Role

	// Send is the buffered channel of outbound messages, drained by
	// WritePump. The hub closes it on unregister.
	Send chan *protocol.Message
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// One ReadPump goroutine runs per connection, ensuring at most one reader.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg protocol.Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read error", "endpoint", c.ID, "err", err)
			}
			return
		}
		c.Hub.Inbound <- &inbound{client: c, msg: &msg}
	}
}

// WritePump pumps messages from the hub to the websocket connection and
// keeps the connection alive with periodic pings.
//
// One WritePump goroutine runs per connection, ensuring at most one writer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				slog.Warn("websocket write error", "endpoint", c.ID, "err", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// deliver hands a message to the client without ever blocking the hub. A
// client whose send buffer is full simply misses the message: signaling
// payloads are time-sensitive and are never queued beyond the buffer.
func (c *Client) deliver(msg *protocol.Message) {
	select {
	case c.Send <- msg:
	default:
		slog.Warn("send buffer full, dropping message", "endpoint", c.ID, "type", msg.Type)
	}
}
