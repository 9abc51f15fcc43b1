// Package rtc wraps the pion WebRTC engine for the call client: peer
// connection setup, local media tracks, remote track handling, and the
// description/candidate plumbing the negotiation state machine drives.
package rtc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	pion "github.com/pion/webrtc/v4"

	"github.com/Pulgas25/activacel-fans-full/internal/config"
)

// Peer owns one pion PeerConnection plus the local media feeding it and the
// sink receiving the remote side. It implements the negotiator's Engine.
type Peer struct {
	pc     *pion.PeerConnection
	source MediaSource
	sink   *MediaSink

	mu            sync.Mutex
	remoteDescSet bool
	pending       []pion.ICECandidateInit
	onCandidate   func(json.RawMessage)
	onRemoteTrack func(kind string)

	localCandidates  atomic.Int64
	remoteCandidates atomic.Int64
}

// NewPeer creates a PeerConnection configured with the STUN servers from
// cfg, attaches every track of source, and wires remote tracks into sink.
func NewPeer(cfg *config.Config, source MediaSource, sink *MediaSink) (*Peer, error) {
	pc, err := pion.NewPeerConnection(pion.Configuration{
		ICEServers: []pion.ICEServer{{URLs: cfg.GetSTUNServers()}},
	})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	p := &Peer{pc: pc, source: source, sink: sink}

	for _, track := range source.Tracks() {
		sender, err := pc.AddTrack(track)
		if err != nil {
			pc.Close()
			return nil, fmt.Errorf("add local track: %w", err)
		}
		// Drain RTCP so the interceptors keep running.
		go func() {
			buf := make([]byte, 1500)
			for {
				if _, _, err := sender.Read(buf); err != nil {
					return
				}
			}
		}()
	}

	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		p.localCandidates.Add(1)
		data, err := json.Marshal(c.ToJSON())
		if err != nil {
			return
		}
		p.mu.Lock()
		fn := p.onCandidate
		p.mu.Unlock()
		if fn != nil {
			fn(data)
		}
	})

	pc.OnTrack(func(track *pion.TrackRemote, receiver *pion.RTPReceiver) {
		slog.Info("remote track",
			"kind", track.Kind().String(), "codec", track.Codec().MimeType)
		p.mu.Lock()
		fn := p.onRemoteTrack
		p.mu.Unlock()
		if fn != nil {
			fn(track.Kind().String())
		}
		go p.sink.ConsumeTrack(track)
	})

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		slog.Debug("peer connection state", "state", state.String())
	})

	return p, nil
}

// OnCandidate registers the callback for locally gathered ICE candidates,
// already encoded for the wire. Register before CreateOffer/AcceptOffer;
// gathering starts with the local description.
func (p *Peer) OnCandidate(fn func(json.RawMessage)) {
	p.mu.Lock()
	p.onCandidate = fn
	p.mu.Unlock()
}

// OnRemoteTrack registers the callback for the arrival of remote media.
func (p *Peer) OnRemoteTrack(fn func(kind string)) {
	p.mu.Lock()
	p.onRemoteTrack = fn
	p.mu.Unlock()
}

// CreateOffer produces the local offer and sets it as local description.
func (p *Peer) CreateOffer() (json.RawMessage, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return json.Marshal(p.pc.LocalDescription())
}

// AcceptOffer applies the remote offer and returns the local answer.
func (p *Peer) AcceptOffer(offer json.RawMessage) (json.RawMessage, error) {
	var desc pion.SessionDescription
	if err := json.Unmarshal(offer, &desc); err != nil {
		return nil, fmt.Errorf("parse offer: %w", err)
	}
	if err := p.pc.SetRemoteDescription(desc); err != nil {
		return nil, fmt.Errorf("set remote description: %w", err)
	}
	p.flushPending()

	answer, err := p.pc.CreateAnswer(nil)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	if err := p.pc.SetLocalDescription(answer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return json.Marshal(p.pc.LocalDescription())
}

// AcceptAnswer applies the remote answer description.
func (p *Peer) AcceptAnswer(answer json.RawMessage) error {
	var desc pion.SessionDescription
	if err := json.Unmarshal(answer, &desc); err != nil {
		return fmt.Errorf("parse answer: %w", err)
	}
	if err := p.pc.SetRemoteDescription(desc); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	p.flushPending()
	return nil
}

// AddRemoteCandidate applies a remote ICE candidate, buffering it when the
// remote description has not been set yet. Duplicates are applied again
// without complaint, same as a browser would.
func (p *Peer) AddRemoteCandidate(candidate json.RawMessage) error {
	var init pion.ICECandidateInit
	if err := json.Unmarshal(candidate, &init); err != nil {
		return fmt.Errorf("parse ICE candidate: %w", err)
	}

	p.remoteCandidates.Add(1)

	p.mu.Lock()
	if !p.remoteDescSet {
		p.pending = append(p.pending, init)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if err := p.pc.AddICECandidate(init); err != nil {
		return fmt.Errorf("add ICE candidate: %w", err)
	}
	return nil
}

// flushPending replays candidates that arrived before the remote
// description. Order of arrival is preserved.
func (p *Peer) flushPending() {
	p.mu.Lock()
	p.remoteDescSet = true
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	for _, init := range pending {
		if err := p.pc.AddICECandidate(init); err != nil {
			slog.Warn("add buffered ICE candidate failed", "err", err)
		}
	}
}

// Stats reports candidate counts and what the sink has received so far.
func (p *Peer) Stats() Stats {
	sinkStats := p.sink.Stats()
	return Stats{
		LocalCandidates:  p.localCandidates.Load(),
		RemoteCandidates: p.remoteCandidates.Load(),
		VideoBytes:       sinkStats.VideoBytes,
		AudioBytes:       sinkStats.AudioBytes,
	}
}

// Stats is a point-in-time snapshot of the call's media and ICE activity.
type Stats struct {
	LocalCandidates  int64
	RemoteCandidates int64
	VideoBytes       int64
	AudioBytes       int64
}

// Close stops local media and tears down the peer connection.
func (p *Peer) Close() error {
	p.source.Stop()
	p.sink.Close()
	return p.pc.Close()
}
