package call

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
)

// State is the negotiation lifecycle of one call attempt.
type State int

const (
	// StateIdle: media acquired, nothing sent yet.
	StateIdle State = iota

	// StateAwaitingPeer: join-room sent, waiting for the other side.
	StateAwaitingPeer

	// StateNegotiating: both peers present, descriptions in flight.
	StateNegotiating

	// StateConnected: the engine reported a usable remote stream.
	StateConnected

	// StateClosed: terminal. There is no renegotiation or retry path; a new
	// call means a new Negotiator.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPeer:
		return "awaiting-peer"
	case StateNegotiating:
		return "negotiating"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Engine is the slice of the WebRTC implementation the negotiator needs.
// Descriptions and candidates cross this boundary as the same opaque JSON
// the wire carries.
type Engine interface {
	// CreateOffer produces a local offer description, already set as the
	// local description.
	CreateOffer() (json.RawMessage, error)

	// AcceptOffer applies a remote offer and returns the local answer.
	AcceptOffer(offer json.RawMessage) (json.RawMessage, error)

	// AcceptAnswer applies a remote answer description.
	AcceptAnswer(answer json.RawMessage) error

	// AddRemoteCandidate applies (or buffers, if no remote description is
	// set yet) a remote ICE candidate.
	AddRemoteCandidate(candidate json.RawMessage) error

	// Close tears down the peer connection and stops local media.
	Close() error
}

// Signaler is the outbound half of the relay connection.
type Signaler interface {
	SendJoin(roomID, role string)
	SendOffer(roomID string, sdp json.RawMessage)
	SendAnswer(roomID string, sdp json.RawMessage)
	SendCandidate(roomID string, candidate json.RawMessage)
}

// Negotiator drives one two-party negotiation: the creator makes the offer,
// the fan answers, candidates flow both ways, and the first remote track
// marks the call connected. Each inbound event is gated on both the current
// state and the local role; anything that does not fit is dropped without
// touching state.
type Negotiator struct {
	mu sync.Mutex

	roomID string
	role   string

	state  State
	peerID string

	engine   Engine
	signaler Signaler

	// onState, if set, is invoked after every transition, outside the lock.
	onState func(State)

	done     chan struct{}
	doneOnce sync.Once
}

// NewNegotiator creates a negotiator in StateIdle. The caller is expected
// to have acquired local media already; media failure aborts before a
// Negotiator ever exists.
func NewNegotiator(roomID, role string, engine Engine, signaler Signaler) *Negotiator {
	return &Negotiator{
		roomID:   roomID,
		role:     role,
		state:    StateIdle,
		engine:   engine,
		signaler: signaler,
		done:     make(chan struct{}),
	}
}

// OnStateChange registers a transition callback. The callback must not call
// back into the Negotiator.
func (n *Negotiator) OnStateChange(fn func(State)) {
	n.mu.Lock()
	n.onState = fn
	n.mu.Unlock()
}

// State returns the current state.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// PeerID returns the remote member's connection ID, empty until one joins.
func (n *Negotiator) PeerID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.peerID
}

// Done is closed once the negotiator reaches StateClosed.
func (n *Negotiator) Done() <-chan struct{} {
	return n.done
}

// Join sends join-room and moves to StateAwaitingPeer. Valid only once,
// from StateIdle.
func (n *Negotiator) Join() error {
	n.mu.Lock()
	if n.state != StateIdle {
		n.mu.Unlock()
		return WrapError("join", ErrBadState, n.state.String())
	}
	n.setStateLocked(StateAwaitingPeer)
	n.mu.Unlock()

	n.signaler.SendJoin(n.roomID, n.role)
	return nil
}

// HandleUserJoined reacts to the other peer entering the room. The creator
// opens negotiation by sending an offer; the fan just waits for one.
func (n *Negotiator) HandleUserJoined(m MemberInfo) {
	n.mu.Lock()
	if n.state != StateAwaitingPeer {
		n.mu.Unlock()
		return
	}
	n.peerID = m.ID
	n.setStateLocked(StateNegotiating)
	isCreator := n.role == signaling.RoleCreator
	n.mu.Unlock()

	if !isCreator {
		return
	}

	offer, err := n.engine.CreateOffer()
	if err != nil {
		slog.Error("create offer failed", "err", err)
		n.Hangup()
		return
	}
	n.signaler.SendOffer(n.roomID, offer)
}

// HandleOffer is the fan's half of the description exchange: apply the
// remote offer, produce and send an answer. A creator receiving an offer is
// a protocol violation and is ignored.
//
// The fan may still be in StateAwaitingPeer here: user-joined is only
// broadcast to members already present, so a fan that joined second learns
// about the creator from the offer itself.
func (n *Negotiator) HandleOffer(s Signal) {
	n.mu.Lock()
	if n.role != signaling.RoleFan {
		n.mu.Unlock()
		return
	}
	if n.state != StateAwaitingPeer && n.state != StateNegotiating {
		n.mu.Unlock()
		return
	}
	if n.peerID == "" {
		n.peerID = s.From
	}
	n.setStateLocked(StateNegotiating)
	n.mu.Unlock()

	answer, err := n.engine.AcceptOffer(s.SDP)
	if err != nil {
		slog.Error("accept offer failed", "err", err, "from", s.From)
		n.Hangup()
		return
	}
	n.signaler.SendAnswer(n.roomID, answer)
}

// HandleAnswer is the creator's half: apply the remote answer. A fan
// receiving an answer is a protocol violation and is ignored without any
// state change.
func (n *Negotiator) HandleAnswer(s Signal) {
	n.mu.Lock()
	if n.role != signaling.RoleCreator || n.state != StateNegotiating {
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	if err := n.engine.AcceptAnswer(s.SDP); err != nil {
		slog.Error("accept answer failed", "err", err, "from", s.From)
		n.Hangup()
	}
}

// HandleCandidate applies a remote ICE candidate. Candidates are welcome in
// any state except Closed and in whatever order they arrive; the engine
// buffers the ones that beat the remote description. Failures are logged
// and swallowed: the call just continues with fewer connectivity options.
func (n *Negotiator) HandleCandidate(s Signal) {
	n.mu.Lock()
	if n.state == StateClosed {
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	if err := n.engine.AddRemoteCandidate(s.Candidate); err != nil {
		slog.Warn("add remote candidate failed", "err", err, "from", s.From)
	}
}

// HandleRemoteTrack marks the call connected. Called by the engine wrapper
// when the first remote media track arrives; the negotiator itself never
// verifies connectivity.
func (n *Negotiator) HandleRemoteTrack() {
	n.mu.Lock()
	if n.state != StateNegotiating {
		n.mu.Unlock()
		return
	}
	n.setStateLocked(StateConnected)
	n.mu.Unlock()
}

// HandlePeerLeft ends the call when the other side disappears. The remote
// stream is gone but the local peer connection is deliberately left alone:
// this is a one-shot design with no partner replacement, and final teardown
// belongs to the session that owns the engine.
func (n *Negotiator) HandlePeerLeft(id string) {
	n.mu.Lock()
	if n.state == StateClosed {
		n.mu.Unlock()
		return
	}
	n.setStateLocked(StateClosed)
	n.mu.Unlock()

	slog.Info("peer left", "peer", id)
	n.signalDone()
}

// Hangup is the local user ending the call: the engine (peer connection and
// local media) is torn down and the negotiator closes. Safe to call in any
// state, any number of times.
func (n *Negotiator) Hangup() {
	n.mu.Lock()
	if n.state == StateClosed {
		n.mu.Unlock()
		return
	}
	n.setStateLocked(StateClosed)
	n.mu.Unlock()

	if err := n.engine.Close(); err != nil {
		slog.Warn("engine close failed", "err", err)
	}
	n.signalDone()
}

func (n *Negotiator) signalDone() {
	n.doneOnce.Do(func() { close(n.done) })
}

// setStateLocked transitions and schedules the callback. Caller holds n.mu.
func (n *Negotiator) setStateLocked(s State) {
	if n.state == s {
		return
	}
	n.state = s
	if n.onState != nil {
		// Outside the lock so the callback can't deadlock against us.
		go n.onState(s)
	}
}
