// Package tui renders a live read-only view of a room, fed by the
// server's watch socket.
package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cardroomhq/cardroom/internal/deck"
	"github.com/cardroomhq/cardroom/internal/events"
	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/room"
)

// update mirrors the frames the watch socket sends: an event type, the
// event payload and the room snapshot after the mutation.
type update struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	Game *room.Snapshot  `json:"game"`
}

type updateMsg update

type disconnectMsg struct{ err error }

// WatchURL turns a server base URL and a room code into the watch
// socket address.
func WatchURL(server, roomCode string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		// "host:port" with no scheme parses as opaque; retry explicitly.
		return WatchURL("ws://"+server, roomCode)
	}
	u.Path = "/rooms/" + roomCode + "/watch"
	return u.String(), nil
}

// WatchModel is the Bubble Tea model for the spectator view. It holds
// the latest snapshot plus a scrollable event log.
type WatchModel struct {
	logger zerolog.Logger
	conn   *websocket.Conn

	roomCode string
	snap     *room.Snapshot
	eventLog []string

	logViewport viewport.Model

	width        int
	height       int
	initialized  bool
	quitting     bool
	disconnected bool
}

// NewWatchModel creates a watch model over an established connection.
func NewWatchModel(logger zerolog.Logger, conn *websocket.Conn, roomCode string) *WatchModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	return &WatchModel{
		logger:      logger.With().Str("component", "watch").Logger(),
		conn:        conn,
		roomCode:    roomCode,
		logViewport: vp,
	}
}

// Init starts reading frames from the socket.
func (m *WatchModel) Init() tea.Cmd {
	return m.readNext
}

// readNext blocks on the socket and delivers one frame as a message.
// The Update loop re-arms it after each frame.
func (m *WatchModel) readNext() tea.Msg {
	_, frame, err := m.conn.ReadMessage()
	if err != nil {
		return disconnectMsg{err: err}
	}
	var u update
	if err := json.Unmarshal(frame, &u); err != nil {
		return disconnectMsg{err: fmt.Errorf("decode frame: %w", err)}
	}
	return updateMsg(u)
}

// Update handles messages in the watch view
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			if m.conn != nil {
				m.conn.Close()
			}
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		}

	case updateMsg:
		m.apply(update(msg))
		return m, m.readNext

	case disconnectMsg:
		if m.quitting {
			return m, nil
		}
		m.disconnected = true
		m.logger.Debug().Err(msg.err).Msg("Watch socket closed")
		m.appendLog(ErrorStyle.Render("connection closed"))
		return m, nil
	}

	// Viewport's own keymap covers scrolling.
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// apply describes the frame against the previous snapshot, then swaps
// the snapshot in. Leave events need the old snapshot for the name of
// the player who is gone.
func (m *WatchModel) apply(u update) {
	line := m.describe(u)
	if u.Game != nil {
		m.snap = u.Game
	}
	m.appendLog(line)
}

func (m *WatchModel) appendLog(entry string) {
	m.eventLog = append(m.eventLog, entry)
	m.logViewport.SetContent(strings.Join(m.eventLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// describe renders one event as a log line.
func (m *WatchModel) describe(u update) string {
	switch u.Type {
	case "snapshot":
		return InfoStyle.Render("watching room " + m.roomCode)

	case events.TypePlayerJoined:
		var member room.Member
		if err := json.Unmarshal(u.Data, &member); err == nil && member.Name != "" {
			seated := 0
			if u.Game != nil {
				seated = len(u.Game.Players)
			}
			return fmt.Sprintf("%s joined (%d seated)", member.Name, seated)
		}
		return "a player joined"

	case events.TypeSettingsUpdated:
		var s room.Settings
		if err := json.Unmarshal(u.Data, &s); err == nil {
			return fmt.Sprintf("settings: %d chips, blinds %d/%d, %d seats",
				s.StartingChips, s.SmallBlind, s.BigBlind, s.MaxPlayers)
		}
		return "settings updated"

	case events.TypeHandStarted:
		var h struct {
			HandNumber int `json:"handNumber"`
		}
		if err := json.Unmarshal(u.Data, &h); err == nil {
			return HandInfoStyle.Render(fmt.Sprintf("hand #%d dealt", h.HandNumber))
		}
		return HandInfoStyle.Render("new hand dealt")

	case events.TypeActionApplied:
		var a struct {
			PlayerID string `json:"playerId"`
			Action   string `json:"action"`
			Amount   int    `json:"amount"`
		}
		if err := json.Unmarshal(u.Data, &a); err != nil {
			return "action applied"
		}
		name := m.playerName(a.PlayerID)
		switch a.Action {
		case "fold":
			return ErrorStyle.Render(name + " folds")
		case "call":
			return SuccessStyle.Render(name + " calls")
		case "raise":
			return WarningStyle.Render(fmt.Sprintf("%s raises to %d", name, a.Amount))
		case "allin":
			return WarningStyle.Render(name + " is all in")
		}
		return fmt.Sprintf("%s: %s", name, a.Action)

	case events.TypePlayerLeft:
		var l struct {
			PlayerID string `json:"playerId"`
			Closed   bool   `json:"closed"`
		}
		if err := json.Unmarshal(u.Data, &l); err == nil {
			return m.playerName(l.PlayerID) + " left"
		}
		return "a player left"
	}
	return u.Type
}

// playerName resolves an id against the current snapshot's member
// list.
func (m *WatchModel) playerName(id string) string {
	if m.snap != nil {
		for _, p := range m.snap.Players {
			if p.ID == id {
				return p.Name
			}
		}
	}
	return "a player"
}

// View renders the watch view
func (m *WatchModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render(fmt.Sprintf(" watching %s ", m.roomCode))
	if m.disconnected {
		header += " " + ErrorStyle.Render("disconnected")
	}

	help := InfoStyle.Render("↑↓ scroll log • q to quit")

	tableContent := m.renderTable()

	calculatedTableWidth := 44
	if w := lipgloss.Width(tableContent); w > calculatedTableWidth {
		calculatedTableWidth = w
	}
	calculatedPaneHeight := m.height - 4 // header, help and borders
	if calculatedPaneHeight < 1 {
		calculatedPaneHeight = 1
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedTableWidth).
		Height(calculatedPaneHeight)
	tablePane := tableStyle.Render(tableContent)

	calculatedLogWidth := m.width - calculatedTableWidth - 4
	if calculatedLogWidth < 1 {
		calculatedLogWidth = 1
	}

	m.logViewport.Width = calculatedLogWidth
	m.logViewport.Height = calculatedPaneHeight
	if !m.initialized && calculatedLogWidth > 1 && calculatedPaneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedLogWidth).
		Height(calculatedPaneHeight)
	logPane := logStyle.Render(m.logViewport.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, tablePane, logPane)

	return lipgloss.JoinVertical(lipgloss.Top, header, body, help)
}

// renderTable renders the room pane: members before a hand, seats and
// stacks once one is dealt.
func (m *WatchModel) renderTable() string {
	if m.snap == nil {
		return InfoStyle.Render("waiting for snapshot...")
	}

	var b strings.Builder

	s := m.snap.Settings
	b.WriteString(fmt.Sprintf("blinds %d/%d  seats %d  stack %d\n\n",
		s.SmallBlind, s.BigBlind, s.MaxPlayers, s.StartingChips))

	gs := m.snap.GameState
	if gs == nil {
		b.WriteString(fmt.Sprintf("%d seated, waiting for the host\n\n", len(m.snap.Players)))
		for _, p := range m.snap.Players {
			if p.IsHost {
				b.WriteString(fmt.Sprintf("  %s %s\n", p.Name, WarningStyle.Render("(host)")))
			} else {
				b.WriteString(fmt.Sprintf("  %s\n", p.Name))
			}
		}
		return b.String()
	}

	b.WriteString(HandInfoStyle.Render(fmt.Sprintf("hand #%d  %s", gs.HandNumber, gs.Phase)))
	b.WriteString("\n")
	b.WriteString(WarningStyle.Render(fmt.Sprintf("pot %d", gs.Pot)))
	if gs.CurrentBet > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("  to call %d", gs.CurrentBet)))
	}
	b.WriteString("\n\n")

	for i, p := range gs.Players {
		marker := "  "
		if i == gs.CurrentPlayer {
			marker = TurnStyle.Render("> ")
		}
		status := ""
		switch {
		case p.Folded:
			status = " " + ErrorStyle.Render("folded")
		case p.AllInFlag:
			status = " " + WarningStyle.Render("all in")
		}
		b.WriteString(fmt.Sprintf("%s%-10s %5d  bet %3d  %s%s\n",
			marker, m.playerName(p.ID), p.Chips, p.Bet, m.formatCards(p.Cards), status))
	}

	if gs.CurrentPlayer == game.NoActor {
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("betting closed"))
		b.WriteString("\n")
	}

	return b.String()
}

// formatCards formats cards with colors
func (m *WatchModel) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}

	var formatted []string
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}

// EventLog returns the rendered log lines.
func (m *WatchModel) EventLog() []string {
	out := make([]string, len(m.eventLog))
	copy(out, m.eventLog)
	return out
}
