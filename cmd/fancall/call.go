package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Pulgas25/activacel-fans-full/internal/call"
	"github.com/Pulgas25/activacel-fans-full/internal/config"
	"github.com/Pulgas25/activacel-fans-full/internal/rtc"
	"github.com/Pulgas25/activacel-fans-full/internal/signaling"
	"github.com/Pulgas25/activacel-fans-full/internal/ui"
)

type callOptions struct {
	ServerURL  string
	STUNServer string
	VideoPath  string
	AudioPath  string
	SaveDir    string
}

// runCall is the whole life of one call: acquire media, connect to the
// signaling server, negotiate, show the live view until either side hangs
// up, then print the summary.
func runCall(roomID, role string, opts callOptions) error {
	cfg, err := config.Load(config.Options{
		ServerURL:  opts.ServerURL,
		STUNServer: opts.STUNServer,
	})
	if err != nil {
		return call.NewError("load config", err)
	}

	// Media comes first: if the camera equivalent fails, nobody should see
	// us flicker into the room.
	source, err := acquireMedia(opts)
	if err != nil {
		return call.NewError("acquire media", err)
	}

	if opts.SaveDir != "" {
		if err := os.MkdirAll(opts.SaveDir, 0o755); err != nil {
			return call.NewError("create save dir", err)
		}
	}
	sink := rtc.NewMediaSink(opts.SaveDir)

	peer, err := rtc.NewPeer(cfg, source, sink)
	if err != nil {
		return call.NewError("create peer connection", err)
	}
	source.Play()

	fmt.Println()
	stopSpinner := ui.RunConnectionSpinner("Connecting to signaling server...")
	client := call.NewClient(cfg.ServerURL)
	if err := client.Connect(); err != nil {
		stopSpinner()
		peer.Close()
		return call.NewError("connect to server", err)
	}
	stopSpinner()

	handler := call.NewHandler(client)
	go handler.Start()

	neg := call.NewNegotiator(roomID, role, peer, client)

	peer.OnCandidate(func(candidate json.RawMessage) {
		client.SendCandidate(roomID, candidate)
	})
	peer.OnRemoteTrack(func(kind string) {
		neg.HandleRemoteTrack()
	})

	fmt.Println(ui.RoomInfo{RoomID: roomID, Role: role, URL: cfg.ServerURL}.View())
	fmt.Println()

	cui := ui.NewCallUI(roomID, role)
	neg.OnStateChange(func(s call.State) {
		cui.SetState(stateLabel(s, role))
	})
	cui.Start()

	startTime := time.Now()
	if err := neg.Join(); err != nil {
		cui.Stop()
		peer.Close()
		client.Close()
		return err
	}

	endReason := dispatch(neg, handler, cui, peer)

	cui.Stop()
	peer.Close()
	client.Close()

	stats := peer.Stats()
	ui.RenderCallSummary(ui.CallSummary{
		RoomID:        roomID,
		Role:          role,
		PeerID:        neg.PeerID(),
		Duration:      time.Since(startTime),
		VideoReceived: stats.VideoBytes,
		AudioReceived: stats.AudioBytes,
		LocalICE:      stats.LocalCandidates,
		RemoteICE:     stats.RemoteCandidates,
		EndReason:     endReason,
	})

	return nil
}

// dispatch pumps signaling events into the negotiator until the call ends,
// and returns why it ended.
func dispatch(neg *call.Negotiator, handler *call.Handler, cui *ui.CallUI, peer *rtc.Peer) string {
	statsTicker := time.NewTicker(time.Second)
	defer statsTicker.Stop()

	endReason := "call closed"
	for {
		select {
		case m := <-handler.UserJoined:
			cui.SetPeer(m.ID)
			neg.HandleUserJoined(m)

		case s := <-handler.Offer:
			cui.SetPeer(s.From)
			neg.HandleOffer(s)

		case s := <-handler.Answer:
			neg.HandleAnswer(s)

		case s := <-handler.Candidate:
			neg.HandleCandidate(s)

		case id := <-handler.UserLeft:
			endReason = "peer left"
			neg.HandlePeerLeft(id)

		case <-handler.Disconnected:
			endReason = "signaling connection lost"
			neg.Hangup()

		case <-cui.HangupRequested():
			endReason = "hung up"
			neg.Hangup()

		case <-statsTicker.C:
			stats := peer.Stats()
			cui.UpdateStats(stats.VideoBytes, stats.AudioBytes)

		case <-neg.Done():
			return endReason
		}
	}
}

// acquireMedia opens the configured media files, or falls back to a silent
// audio track so a call works with no files at all.
func acquireMedia(opts callOptions) (rtc.MediaSource, error) {
	if opts.VideoPath == "" && opts.AudioPath == "" {
		return rtc.NewSilenceSource()
	}
	return rtc.NewFileSource(opts.VideoPath, opts.AudioPath)
}

func stateLabel(s call.State, role string) string {
	switch s {
	case call.StateAwaitingPeer:
		if role == signaling.RoleCreator {
			return "Waiting for a fan to join..."
		}
		return "Waiting for the host..."
	case call.StateNegotiating:
		return "Negotiating connection..."
	case call.StateConnected:
		return "Connected"
	case call.StateClosed:
		return "Call ended"
	}
	return s.String()
}
