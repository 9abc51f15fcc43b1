package signaling

import (
	"encoding/json"
	"testing"
)

func newTestHub() *Hub {
	return NewHub(NewRoomStore())
}

func recvMessage(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	default:
		t.Fatalf("client %s: expected a queued message", c.ID)
		return nil
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("client %s: unexpected message %+v", c.ID, msg)
	default:
	}
}

func join(h *Hub, c *Client, roomID, role string) {
	h.handleJoin(&Message{Event: EventJoinRoom, RoomID: roomID, Role: role, sender: c})
}

func TestJoin_NotifiesExistingMembers(t *testing.T) {
	h := newTestHub()
	creator := newTestClient("creator")
	fan := newTestClient("fan")

	join(h, creator, "room-1", RoleCreator)
	join(h, fan, "room-1", RoleFan)

	msg := recvMessage(t, creator)
	if msg.Event != EventUserJoined || msg.ID != "fan" || msg.Role != RoleFan {
		t.Errorf("unexpected user-joined %+v", msg)
	}

	// The joiner gets no ack and no notification about itself.
	assertNoMessage(t, fan)
}

func TestJoin_FirstMemberHearsNothing(t *testing.T) {
	h := newTestHub()
	creator := newTestClient("creator")

	join(h, creator, "room-1", RoleCreator)

	assertNoMessage(t, creator)
	if creator.RoomID != "room-1" || creator.Role != RoleCreator {
		t.Errorf("join not recorded: room=%q role=%q", creator.RoomID, creator.Role)
	}
}

func TestJoin_ArbitraryRoleIsAccepted(t *testing.T) {
	h := newTestHub()
	a := newTestClient("a")
	b := newTestClient("b")

	join(h, a, "room-1", "spectator")
	join(h, b, "room-1", "spectator")

	msg := recvMessage(t, a)
	if msg.Role != "spectator" {
		t.Errorf("expected role passed through verbatim, got %q", msg.Role)
	}
}

func TestJoin_RejoinLeavesOldRoom(t *testing.T) {
	h := newTestHub()
	a := newTestClient("a")
	partner := newTestClient("partner")
	join(h, a, "room-1", RoleCreator)
	join(h, partner, "room-1", RoleFan)
	recvMessage(t, a) // partner's user-joined

	join(h, a, "room-2", RoleCreator)

	msg := recvMessage(t, partner)
	if msg.Event != EventUserLeft || msg.ID != "a" {
		t.Errorf("expected user-left for a, got %+v", msg)
	}
	if a.RoomID != "room-2" {
		t.Errorf("expected a to be in room-2, got %q", a.RoomID)
	}
	if got := len(h.store.Members("room-1")); got != 1 {
		t.Errorf("expected only partner left in room-1, got %d members", got)
	}
}

func TestSignal_RelayedToOthersWithSenderID(t *testing.T) {
	h := newTestHub()
	creator := newTestClient("creator")
	fan := newTestClient("fan")
	join(h, creator, "room-1", RoleCreator)
	join(h, fan, "room-1", RoleFan)
	recvMessage(t, creator)

	sdp := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	h.handleSignal(&Message{Event: EventOffer, RoomID: "room-1", SDP: sdp, sender: creator})

	msg := recvMessage(t, fan)
	if msg.Event != EventOffer {
		t.Errorf("expected offer, got %q", msg.Event)
	}
	if msg.From != "creator" {
		t.Errorf("expected from=creator, got %q", msg.From)
	}
	if string(msg.SDP) != string(sdp) {
		t.Errorf("SDP not forwarded verbatim: %s", msg.SDP)
	}

	assertNoMessage(t, creator)
}

func TestSignal_NoMembershipCheck(t *testing.T) {
	h := newTestHub()
	member := newTestClient("member")
	outsider := newTestClient("outsider")
	join(h, member, "room-1", RoleCreator)

	// The outsider never joined room-1, but its signal is relayed anyway.
	h.handleSignal(&Message{
		Event:     EventICECandidate,
		RoomID:    "room-1",
		Candidate: json.RawMessage(`{"candidate":"candidate:1"}`),
		sender:    outsider,
	})

	msg := recvMessage(t, member)
	if msg.Event != EventICECandidate || msg.From != "outsider" {
		t.Errorf("unexpected relay %+v", msg)
	}
}

func TestSignal_DuplicateCandidatesForwarded(t *testing.T) {
	h := newTestHub()
	creator := newTestClient("creator")
	fan := newTestClient("fan")
	join(h, creator, "room-1", RoleCreator)
	join(h, fan, "room-1", RoleFan)
	recvMessage(t, creator)

	cand := json.RawMessage(`{"candidate":"candidate:1"}`)
	for i := 0; i < 2; i++ {
		h.handleSignal(&Message{Event: EventICECandidate, RoomID: "room-1", Candidate: cand, sender: fan})
	}

	for i := 0; i < 2; i++ {
		msg := recvMessage(t, creator)
		if msg.Event != EventICECandidate {
			t.Fatalf("relay %d: expected ice-candidate, got %q", i, msg.Event)
		}
	}
}

func TestSignal_EmptyRoomIsNoop(t *testing.T) {
	h := newTestHub()
	loner := newTestClient("loner")
	join(h, loner, "room-1", RoleCreator)

	h.handleSignal(&Message{Event: EventOffer, RoomID: "room-1", SDP: json.RawMessage(`{}`), sender: loner})

	assertNoMessage(t, loner)
}

func TestDisconnect_BroadcastsUserLeftOnce(t *testing.T) {
	h := newTestHub()
	creator := newTestClient("creator")
	fan := newTestClient("fan")
	join(h, creator, "room-1", RoleCreator)
	join(h, fan, "room-1", RoleFan)
	recvMessage(t, creator)

	h.handleDisconnect(fan)

	msg := recvMessage(t, creator)
	if msg.Event != EventUserLeft || msg.ID != "fan" {
		t.Errorf("expected user-left for fan, got %+v", msg)
	}
	assertNoMessage(t, creator)

	if _, ok := <-fan.Send; ok {
		t.Error("expected fan's send channel to be closed")
	}
}

func TestDisconnect_NeverJoinedProducesNoBroadcast(t *testing.T) {
	h := newTestHub()
	creator := newTestClient("creator")
	ghost := newTestClient("ghost")
	join(h, creator, "room-1", RoleCreator)

	h.handleDisconnect(ghost)

	assertNoMessage(t, creator)
}

func TestDispatch_UnknownEventIgnored(t *testing.T) {
	h := newTestHub()
	a := newTestClient("a")
	b := newTestClient("b")
	join(h, a, "room-1", RoleCreator)
	join(h, b, "room-1", RoleFan)
	recvMessage(t, a)

	h.dispatch(&Message{Event: "renegotiate", RoomID: "room-1", sender: b})

	assertNoMessage(t, a)
}

func TestDispatch_ThirdMemberStillRelayed(t *testing.T) {
	h := newTestHub()
	a := newTestClient("a")
	b := newTestClient("b")
	c := newTestClient("c")
	join(h, a, "room-1", RoleCreator)
	join(h, b, "room-1", RoleFan)
	join(h, c, "room-1", RoleFan)
	recvMessage(t, a)
	recvMessage(t, a)
	recvMessage(t, b)

	h.handleSignal(&Message{Event: EventOffer, RoomID: "room-1", SDP: json.RawMessage(`{}`), sender: a})

	for _, m := range []*Client{b, c} {
		msg := recvMessage(t, m)
		if msg.Event != EventOffer || msg.From != "a" {
			t.Errorf("client %s: unexpected relay %+v", m.ID, msg)
		}
	}
}
