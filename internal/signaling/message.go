package signaling

import "encoding/json"

// Event names carried in the "event" field of every websocket message.
// The same names are used in both directions; server-to-client messages
// additionally carry "from" or "id" so receivers know who they concern.
const (
	EventJoinRoom     = "join-room"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"

	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
)

// Role values the protocol gives meaning to. The relay accepts any string;
// only the clients care which one they got.
const (
	RoleCreator = "creator"
	RoleFan     = "fan"
)

// Message is the single JSON envelope exchanged over the signaling
// websocket, in both directions. SDP and candidate payloads are opaque to
// the relay: it forwards them byte-for-byte and never inspects them.
type Message struct {
	Event     string          `json:"event"`
	RoomID    string          `json:"roomId,omitempty"`
	Role      string          `json:"role,omitempty"`
	ID        string          `json:"id,omitempty"`
	From      string          `json:"from,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`

	// sender is the connection the message arrived on. Set by the read
	// pump before the message is handed to the hub; never serialized.
	sender *Client
}

// IsSignal reports whether the event is one of the three relayed
// negotiation payloads (offer, answer, ice-candidate).
func IsSignal(event string) bool {
	switch event {
	case EventOffer, EventAnswer, EventICECandidate:
		return true
	}
	return false
}
