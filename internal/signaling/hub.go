package signaling

import "log/slog"

// Hub owns the room membership table and routes every signaling message.
// All state transitions happen on the single goroutine running Run, one
// event at a time, so joins, relays and disconnects never race each other.
type Hub struct {
	store *RoomStore

	// Register is written by the websocket handler for each new connection.
	Register chan *Client

	// Unregister is written by a client's read pump when its connection dies.
	Unregister chan *Client

	// Inbound carries every parsed message from every client into the loop.
	Inbound chan *Message
}

// NewHub creates a hub around the given membership store.
func NewHub(store *RoomStore) *Hub {
	return &Hub{
		store:      store,
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *Message),
	}
}

// Run is the hub's event loop. It never returns; start it once in its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			// Nothing to track yet: the connection is roomless until it
			// sends a join-room.
			slog.Info("client connected", "client", client.ID)

		case client := <-h.Unregister:
			h.handleDisconnect(client)

		case msg := <-h.Inbound:
			h.dispatch(msg)
		}
	}
}

func (h *Hub) dispatch(msg *Message) {
	switch {
	case msg.Event == EventJoinRoom:
		h.handleJoin(msg)
	case IsSignal(msg.Event):
		h.handleSignal(msg)
	default:
		slog.Warn("ignoring unknown event", "event", msg.Event, "client", msg.sender.ID)
	}
}

// handleJoin adds the sender to the requested room and tells everyone
// already there. Any roomId and role strings are accepted as-is; there is no
// ack back to the joiner.
//
// A connection that joins again while already in a room is treated as
// leaving the old room first, user-left broadcast included, so the old
// partner is not left talking to a ghost.
func (h *Hub) handleJoin(msg *Message) {
	client := msg.sender

	if client.RoomID != "" && client.RoomID != msg.RoomID {
		h.leaveRoom(client)
	}

	client.RoomID = msg.RoomID
	client.Role = msg.Role
	h.store.Add(msg.RoomID, client)

	slog.Info("client joined room", "client", client.ID, "room", msg.RoomID, "role", msg.Role)

	h.store.BroadcastExcept(msg.RoomID, client, &Message{
		Event: EventUserJoined,
		ID:    client.ID,
		Role:  msg.Role,
	})
}

// handleSignal forwards an offer, answer or ice-candidate to every other
// member of the roomId named in the message. Deliberately absent, matching
// the protocol contract: no check that the sender is a member of that room,
// no role gating, no dedup of repeated candidates, no delivery confirmation.
// Malformed SDP or candidate blobs travel through untouched and fail, if at
// all, at the receiving peer.
func (h *Hub) handleSignal(msg *Message) {
	out := &Message{
		Event:     msg.Event,
		SDP:       msg.SDP,
		Candidate: msg.Candidate,
		From:      msg.sender.ID,
	}
	h.store.BroadcastExcept(msg.RoomID, msg.sender, out)
}

// handleDisconnect runs exactly once per connection, when its read pump
// exits. Members of the room the client had joined get a single user-left;
// a connection that never joined produces no broadcast at all.
func (h *Hub) handleDisconnect(client *Client) {
	slog.Info("client disconnected", "client", client.ID)

	if client.RoomID != "" {
		h.leaveRoom(client)
	}

	// Stops the client's write pump.
	close(client.Send)
}

func (h *Hub) leaveRoom(client *Client) {
	roomID := client.RoomID
	h.store.Remove(roomID, client)
	client.RoomID = ""

	h.store.BroadcastExcept(roomID, client, &Message{
		Event: EventUserLeft,
		ID:    client.ID,
	})
}
