package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// CallSummary holds the numbers shown when a call ends.
type CallSummary struct {
	RoomID        string
	Role          string
	PeerID        string
	Duration      time.Duration
	VideoReceived int64
	AudioReceived int64
	LocalICE      int64
	RemoteICE     int64
	EndReason     string
}

// RenderCallSummary prints the end-of-call summary table to stdout.
func RenderCallSummary(summary CallSummary) {
	peer := summary.PeerID
	if peer == "" {
		peer = "never joined"
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Room", summary.RoomID},
		{"Role", summary.Role},
		{"Peer", peer},
		{"Duration", summary.Duration.Round(time.Second).String()},
		{"Video received", FormatBytes(summary.VideoReceived)},
		{"Audio received", FormatBytes(summary.AudioReceived)},
		{"ICE candidates (local/remote)", fmt.Sprintf("%d / %d", summary.LocalICE, summary.RemoteICE)},
	})
	t.AppendFooter(table.Row{"Ended", summary.EndReason})
	t.Render()
}

// RoomInfo is the banner shown after joining a room.
type RoomInfo struct {
	RoomID string
	Role   string
	URL    string
}

func (r RoomInfo) View() string {
	content := fmt.Sprintf("%s Joined room\n\n%s Room ID:  %s\n%s Role:     %s\n%s Server:   %s",
		IconRoom,
		IconCopy, BoldStyle.Foreground(Primary).Render(r.RoomID),
		IconPeer, BoldStyle.Render(r.Role),
		IconConnect, MutedStyle.Render(r.URL),
	)
	return SuccessBoxStyle.Render(content)
}

// FormatBytes renders a byte count in a human friendly unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
