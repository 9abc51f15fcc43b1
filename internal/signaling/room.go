package signaling

import "log/slog"

// Room is one logical meeting point for two peers. Rooms come into being on
// the first join and are deleted when the last member leaves; there is no
// explicit create or destroy operation.
//
// The protocol only gives meaning to one creator and one fan per room, but
// membership is not capped and roles are not checked: with three members or
// two creators every broadcast still goes to "everyone else", and what the
// peers make of that is their problem.
type Room struct {
	ID      string
	Members []*Client // join order
}

// RoomStore maps room IDs to their member lists. It has no internal
// locking: the hub goroutine is the only owner, and every mutation happens
// inside the hub's event loop.
type RoomStore struct {
	rooms map[string]*Room
}

// NewRoomStore creates an empty membership table.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room)}
}

// Add puts c into roomID, creating the room if it does not exist yet.
// Adding a client that is already a member is a no-op.
func (s *RoomStore) Add(roomID string, c *Client) {
	room, ok := s.rooms[roomID]
	if !ok {
		room = &Room{ID: roomID}
		s.rooms[roomID] = room
	}
	for _, m := range room.Members {
		if m == c {
			return
		}
	}
	room.Members = append(room.Members, c)
}

// Remove takes c out of roomID and deletes the room once it is empty.
// Removing a client that is not a member is a no-op.
func (s *RoomStore) Remove(roomID string, c *Client) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	for i, m := range room.Members {
		if m == c {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			break
		}
	}
	if len(room.Members) == 0 {
		delete(s.rooms, roomID)
	}
}

// Members returns the current member list of roomID, nil if the room does
// not exist. The returned slice is the store's own; callers must not keep it
// across hub events.
func (s *RoomStore) Members(roomID string) []*Client {
	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return room.Members
}

// BroadcastExcept queues msg for every member of roomID other than except.
// Delivery is fire-and-forget: there is no acknowledgment, and a receiver
// whose outbound buffer is full simply misses the message rather than
// stalling the hub.
func (s *RoomStore) BroadcastExcept(roomID string, except *Client, msg *Message) {
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	for _, m := range room.Members {
		if m == except {
			continue
		}
		select {
		case m.Send <- msg:
		default:
			slog.Warn("dropping message for slow client",
				"client", m.ID, "room", roomID, "event", msg.Event)
		}
	}
}
