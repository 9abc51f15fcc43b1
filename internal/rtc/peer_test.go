package rtc

import (
	"encoding/json"
	"testing"

	"github.com/Pulgas25/activacel-fans-full/internal/config"
)

func newTestPeer(t *testing.T) *Peer {
	t.Helper()
	src, err := NewSilenceSource()
	if err != nil {
		t.Fatal(err)
	}
	peer, err := NewPeer(&config.Config{STUNServer: config.DefaultSTUN}, src, NewMediaSink(""))
	if err != nil {
		t.Fatalf("new peer: %v", err)
	}
	t.Cleanup(func() { peer.Close() })
	return peer
}

func TestCreateOffer_ProducesOfferDescription(t *testing.T) {
	peer := newTestPeer(t)

	raw, err := peer.CreateOffer()
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	var desc struct {
		Type string `json:"type"`
		SDP  string `json:"sdp"`
	}
	if err := json.Unmarshal(raw, &desc); err != nil {
		t.Fatalf("offer is not valid JSON: %v", err)
	}
	if desc.Type != "offer" || desc.SDP == "" {
		t.Errorf("unexpected description type=%q sdp-empty=%v", desc.Type, desc.SDP == "")
	}
}

func TestAddRemoteCandidate_BufferedBeforeRemoteDescription(t *testing.T) {
	peer := newTestPeer(t)

	cand := json.RawMessage(`{"candidate":"candidate:1 1 udp 2130706431 192.0.2.1 54321 typ host","sdpMid":"0","sdpMLineIndex":0}`)
	if err := peer.AddRemoteCandidate(cand); err != nil {
		t.Fatalf("expected early candidate to be buffered, got %v", err)
	}

	peer.mu.Lock()
	buffered := len(peer.pending)
	peer.mu.Unlock()
	if buffered != 1 {
		t.Errorf("expected 1 buffered candidate, got %d", buffered)
	}
}

func TestAddRemoteCandidate_RejectsGarbage(t *testing.T) {
	peer := newTestPeer(t)

	if err := peer.AddRemoteCandidate(json.RawMessage(`not json`)); err == nil {
		t.Error("expected an error for a non-JSON candidate")
	}
}

func TestNegotiation_TwoLocalPeers(t *testing.T) {
	offerer := newTestPeer(t)
	answerer := newTestPeer(t)

	offer, err := offerer.CreateOffer()
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}

	answer, err := answerer.AcceptOffer(offer)
	if err != nil {
		t.Fatalf("accept offer: %v", err)
	}

	if err := offerer.AcceptAnswer(answer); err != nil {
		t.Fatalf("accept answer: %v", err)
	}
}

func TestStats_StartAtZero(t *testing.T) {
	peer := newTestPeer(t)

	stats := peer.Stats()
	if stats.VideoBytes != 0 || stats.AudioBytes != 0 {
		t.Errorf("expected zero media bytes, got %+v", stats)
	}
}
