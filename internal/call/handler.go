package call

import (
	"encoding/json"
	"log/slog"

	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
)

// MemberInfo identifies another member of the room.
type MemberInfo struct {
	ID   string
	Role string
}

// Signal is a relayed negotiation payload. Exactly one of SDP or Candidate
// is set, depending on the event it arrived under.
type Signal struct {
	From      string
	SDP       json.RawMessage
	Candidate json.RawMessage
}

// Handler routes incoming relay messages to typed channels.
type Handler struct {
	client *Client

	UserJoined chan MemberInfo
	Offer      chan Signal
	Answer     chan Signal
	Candidate  chan Signal
	UserLeft   chan string

	// Disconnected is closed when the signaling connection goes away.
	Disconnected chan struct{}
}

// NewHandler creates a new message router for the given client.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:       client,
		UserJoined:   make(chan MemberInfo, 1),
		Offer:        make(chan Signal, 1),
		Answer:       make(chan Signal, 1),
		Candidate:    make(chan Signal, 32),
		UserLeft:     make(chan string, 1),
		Disconnected: make(chan struct{}),
	}
}

// Start consumes the client's incoming channel until it closes. Run it in
// its own goroutine.
func (h *Handler) Start() {
	for msg := range h.client.Incoming() {
		h.route(msg)
	}
	close(h.Disconnected)
}

func (h *Handler) route(msg *signaling.Message) {
	switch msg.Event {
	case signaling.EventUserJoined:
		h.UserJoined <- MemberInfo{ID: msg.ID, Role: msg.Role}

	case signaling.EventUserLeft:
		h.UserLeft <- msg.ID

	case signaling.EventOffer:
		h.Offer <- Signal{From: msg.From, SDP: msg.SDP}

	case signaling.EventAnswer:
		h.Answer <- Signal{From: msg.From, SDP: msg.SDP}

	case signaling.EventICECandidate:
		h.Candidate <- Signal{From: msg.From, Candidate: msg.Candidate}

	default:
		// Unknown events never crash a client; the relay forwards whatever
		// it is given.
		slog.Debug("ignoring unknown signaling event", "event", msg.Event)
	}
}
