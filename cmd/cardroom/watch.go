package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cardroomhq/cardroom/internal/tui"
)

type WatchCmd struct {
	Room   string `kong:"arg,required,help='Room code to watch'"`
	Server string `kong:"default='http://localhost:8080',help='Server base URL'"`
	Debug  bool   `kong:"help='Write debug logs to cardroom-watch.log'"`
}

func (c *WatchCmd) Run() error {
	// The alternate screen owns the terminal, so debug output goes to a
	// file instead of stderr.
	logger := zerolog.New(io.Discard).Level(zerolog.Disabled)
	if c.Debug {
		f, err := os.OpenFile("cardroom-watch.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logger = zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	code := strings.ToUpper(strings.TrimSpace(c.Room))

	wsURL, err := tui.WatchURL(c.Server, code)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("room %s not found", code)
		}
		return fmt.Errorf("connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	program := tea.NewProgram(tui.NewWatchModel(logger, conn, code), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run watch view: %w", err)
	}
	return nil
}
