package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// CallUI drives the live in-call view: a state line, elapsed time and
// running media counters. Pressing q hangs up.
type CallUI struct {
	program    *tea.Program
	model      *liveCallModel
	updateChan chan callUpdate
	hangup     chan struct{}
	wg         sync.WaitGroup
}

type callUpdate struct {
	state      string
	peerID     string
	videoBytes int64
	audioBytes int64
	statsOnly  bool
}

type tickMsg time.Time

// liveCallModel is the internal Bubble Tea model for a call in progress
type liveCallModel struct {
	roomID string
	role   string

	state      string
	peerID     string
	videoBytes int64
	audioBytes int64

	spinner   spinner.Model
	startTime time.Time

	updateChan chan callUpdate
	hangup     chan struct{}
	hangupOnce *sync.Once
	quitting   bool
}

// NewCallUI creates the live call view for a room.
func NewCallUI(roomID, role string) *CallUI {
	updateChan := make(chan callUpdate, 100)
	hangup := make(chan struct{})

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	model := &liveCallModel{
		roomID:     roomID,
		role:       role,
		state:      "Connecting...",
		spinner:    s,
		startTime:  time.Now(),
		updateChan: updateChan,
		hangup:     hangup,
		hangupOnce: &sync.Once{},
	}

	return &CallUI{
		model:      model,
		updateChan: updateChan,
		hangup:     hangup,
	}
}

// Start starts the UI in a goroutine. Inline mode, no alt screen, so
// earlier terminal output stays visible.
func (ui *CallUI) Start() {
	ui.wg.Add(1)
	go func() {
		defer ui.wg.Done()
		ui.program = tea.NewProgram(ui.model)
		if _, err := ui.program.Run(); err != nil {
			fmt.Printf("UI error: %v\n", err)
		}
	}()
}

// SetState sets the current state line.
func (ui *CallUI) SetState(state string) {
	select {
	case ui.updateChan <- callUpdate{state: state}:
	default:
	}
}

// SetPeer records the remote participant's id.
func (ui *CallUI) SetPeer(id string) {
	select {
	case ui.updateChan <- callUpdate{peerID: id, statsOnly: true}:
	default:
	}
}

// UpdateStats refreshes the received byte counters.
func (ui *CallUI) UpdateStats(videoBytes, audioBytes int64) {
	select {
	case ui.updateChan <- callUpdate{videoBytes: videoBytes, audioBytes: audioBytes, statsOnly: true}:
	default:
	}
}

// HangupRequested is closed when the user presses q or ctrl+c.
func (ui *CallUI) HangupRequested() <-chan struct{} {
	return ui.hangup
}

// Stop tears the UI down and waits for the terminal to be restored.
func (ui *CallUI) Stop() {
	if ui.program != nil {
		ui.program.Quit()
	}
	ui.wg.Wait()
}

func (m *liveCallModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenForUpdates(),
		tea.Tick(time.Second, func(t time.Time) tea.Msg {
			return tickMsg(t)
		}),
	)
}

func (m *liveCallModel) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.updateChan
	}
}

func (m *liveCallModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.hangupOnce.Do(func() { close(m.hangup) })
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tickMsg:
		if !m.quitting {
			cmds = append(cmds, tea.Tick(time.Second, func(t time.Time) tea.Msg {
				return tickMsg(t)
			}))
		}

	case callUpdate:
		if msg.peerID != "" {
			m.peerID = msg.peerID
		}
		if msg.statsOnly {
			if msg.videoBytes > 0 {
				m.videoBytes = msg.videoBytes
			}
			if msg.audioBytes > 0 {
				m.audioBytes = msg.audioBytes
			}
		} else if msg.state != "" {
			m.state = msg.state
		}
		cmds = append(cmds, m.listenForUpdates())
	}

	return m, tea.Batch(cmds...)
}

func (m *liveCallModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("\n%s Call in room %s (%s)\n\n",
		IconPhone, BoldStyle.Foreground(Primary).Render(m.roomID), m.role))

	b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.state))

	if m.peerID != "" {
		b.WriteString(fmt.Sprintf("%s Peer: %s\n", IconPeer, MutedStyle.Render(m.peerID)))
	}

	elapsed := time.Since(m.startTime).Round(time.Second)
	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		IconTime, elapsed.String(),
		IconVideo, FormatBytes(m.videoBytes),
		IconAudio, FormatBytes(m.audioBytes),
	))

	b.WriteString("\n" + MutedStyle.Render("Press q to hang up"))

	return b.String()
}
