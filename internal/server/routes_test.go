package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := signaling.NewHub(signaling.NewRoomStore())
	go hub.Run()

	srv := httptest.NewServer(Routes(hub, t.TempDir()))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]any
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "healthy") {
		t.Errorf("unexpected body %q", body)
	}
}

func TestTwoPeerCallSetup(t *testing.T) {
	srv := newTestServer(t)

	creator := dial(t, srv)
	fan := dial(t, srv)

	send(t, creator, map[string]any{"event": "join-room", "roomId": "sala", "role": "creator"})
	send(t, fan, map[string]any{"event": "join-room", "roomId": "sala", "role": "fan"})

	// The creator, already present, hears the fan arrive.
	joined := recv(t, creator)
	if joined["event"] != "user-joined" || joined["role"] != "fan" {
		t.Fatalf("unexpected user-joined %v", joined)
	}
	fanID, _ := joined["id"].(string)
	if fanID == "" {
		t.Fatal("user-joined without id")
	}

	// Offer goes creator -> fan, stamped with the creator's id.
	send(t, creator, map[string]any{
		"event": "offer", "roomId": "sala",
		"sdp": map[string]any{"type": "offer", "sdp": "v=0"},
	})
	offer := recv(t, fan)
	if offer["event"] != "offer" {
		t.Fatalf("expected offer, got %v", offer)
	}
	creatorID, _ := offer["from"].(string)
	if creatorID == "" {
		t.Fatal("relayed offer without from")
	}
	if sdp, ok := offer["sdp"].(map[string]any); !ok || sdp["type"] != "offer" {
		t.Fatalf("SDP not forwarded intact: %v", offer["sdp"])
	}

	// Answer goes back fan -> creator.
	send(t, fan, map[string]any{
		"event": "answer", "roomId": "sala",
		"sdp": map[string]any{"type": "answer", "sdp": "v=0"},
	})
	answer := recv(t, creator)
	if answer["event"] != "answer" || answer["from"] != fanID {
		t.Fatalf("unexpected answer %v", answer)
	}

	// Candidates flow both ways.
	send(t, creator, map[string]any{
		"event": "ice-candidate", "roomId": "sala",
		"candidate": map[string]any{"candidate": "candidate:1"},
	})
	cand := recv(t, fan)
	if cand["event"] != "ice-candidate" || cand["from"] != creatorID {
		t.Fatalf("unexpected candidate %v", cand)
	}
}

func TestPeerDisconnectBroadcastsUserLeft(t *testing.T) {
	srv := newTestServer(t)

	creator := dial(t, srv)
	fan := dial(t, srv)

	send(t, creator, map[string]any{"event": "join-room", "roomId": "sala", "role": "creator"})
	send(t, fan, map[string]any{"event": "join-room", "roomId": "sala", "role": "fan"})

	joined := recv(t, creator)
	fanID := joined["id"]

	fan.Close()

	left := recv(t, creator)
	if left["event"] != "user-left" || left["id"] != fanID {
		t.Fatalf("expected user-left for %v, got %v", fanID, left)
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	a := dial(t, srv)
	b := dial(t, srv)

	send(t, a, map[string]any{"event": "join-room", "roomId": "sala-a", "role": "creator"})
	send(t, b, map[string]any{"event": "join-room", "roomId": "sala-b", "role": "creator"})

	// A signal in room A must never reach room B.
	send(t, a, map[string]any{
		"event": "offer", "roomId": "sala-a",
		"sdp": map[string]any{"type": "offer", "sdp": "v=0"},
	})

	b.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var msg map[string]any
	if err := b.ReadJSON(&msg); err == nil {
		t.Fatalf("room isolation broken, got %v", msg)
	}
}

func TestMalformedJSONDropsConnection(t *testing.T) {
	srv := newTestServer(t)

	creator := dial(t, srv)
	broken := dial(t, srv)

	send(t, creator, map[string]any{"event": "join-room", "roomId": "sala", "role": "creator"})
	send(t, broken, map[string]any{"event": "join-room", "roomId": "sala", "role": "fan"})
	joined := recv(t, creator)
	brokenID := joined["id"]

	// A frame that is not a JSON envelope ends that connection, which the
	// other member observes as a normal departure.
	if err := broken.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	left := recv(t, creator)
	if left["event"] != "user-left" || left["id"] != brokenID {
		t.Fatalf("expected user-left for %v, got %v", brokenID, left)
	}
}
