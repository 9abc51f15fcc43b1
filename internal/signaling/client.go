package signaling

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP offers with many media
	// sections stay well under this.
	maxMessageSize = 64 * 1024
)

// Client is the relay's handle on a single websocket connection. The ID is
// assigned at upgrade time and is the identity everything else in the
// protocol refers to (from, user-joined, user-left).
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn

	// RoomID and Role are recorded by the hub on join-room and read again on
	// disconnect. Empty until the first join. Only the hub goroutine touches
	// them.
	RoomID string
	Role   string

	// Send is the outbound queue drained by WritePump. The hub closes it on
	// unregister.
	Send chan *Message
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// One ReadPump goroutine runs per connection, and all reads happen on it.
// When the connection drops, for any reason, the deferred unregister is the
// single place the hub learns about the departure.
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
		var msg Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "client", c.ID, "err", err)
			}
			break
		}

		msg.sender = c
		c.Hub.Inbound <- &msg
	}
}

// WritePump pumps messages from the hub to the websocket connection and
// keeps the connection alive with periodic pings. One WritePump goroutine
// runs per connection, and all writes happen on it.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				slog.Warn("websocket write failed", "client", c.ID, "err", err)
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
