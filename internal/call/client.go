package call

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client manages the websocket connection to the relay server. It speaks
// the same Message envelope the relay does; routing of inbound events into
// something typed is the Handler's job.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	incoming  chan *signaling.Message
	outgoing  chan *signaling.Message
	done      chan struct{}
	closed    bool
}

// NewClient creates a signaling client for the given websocket URL.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: serverURL,
		incoming:  make(chan *signaling.Message, 1),
		outgoing:  make(chan *signaling.Message, 1),
		done:      make(chan struct{}, 1),
	}
}

// Connect establishes the websocket connection and starts the pumps.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		var msg signaling.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		c.incoming <- &msg
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send queues a message for the relay. Fire-and-forget, like everything on
// this channel.
func (c *Client) Send(msg *signaling.Message) {
	select {
	case c.outgoing <- msg:
	case <-c.done:
	}
}

// Incoming returns the channel of messages from the relay. It is closed
// when the connection drops.
func (c *Client) Incoming() <-chan *signaling.Message {
	return c.incoming
}

// SendJoin announces this connection as a member of roomID with the given
// role. The relay sends no acknowledgment.
func (c *Client) SendJoin(roomID, role string) {
	c.Send(&signaling.Message{Event: signaling.EventJoinRoom, RoomID: roomID, Role: role})
}

// SendOffer relays a session description offer to the rest of the room.
func (c *Client) SendOffer(roomID string, sdp json.RawMessage) {
	c.Send(&signaling.Message{Event: signaling.EventOffer, RoomID: roomID, SDP: sdp})
}

// SendAnswer relays a session description answer to the rest of the room.
func (c *Client) SendAnswer(roomID string, sdp json.RawMessage) {
	c.Send(&signaling.Message{Event: signaling.EventAnswer, RoomID: roomID, SDP: sdp})
}

// SendCandidate relays an ICE candidate to the rest of the room.
func (c *Client) SendCandidate(roomID string, candidate json.RawMessage) {
	c.Send(&signaling.Message{Event: signaling.EventICECandidate, RoomID: roomID, Candidate: candidate})
}

// Close shuts down the websocket connection and cleans up resources.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true

	close(c.done)
}
