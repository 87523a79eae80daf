package server

import (
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cardroomhq/cardroom/internal/room"
)

// watchTypeSnapshot is the first frame every watcher receives; later
// frames carry the event type that caused them.
const watchTypeSnapshot = "snapshot"

const watchSendBuffer = 16

// watchUpdate is pushed to a room's watchers after every accepted
// mutation. Data carries the same payload the event stream publishes.
type watchUpdate struct {
	Type string         `json:"type"`
	Data any            `json:"data,omitempty"`
	Game *room.Snapshot `json:"game,omitempty"`
}

// watchClient is one spectator WebSocket connection.
type watchClient struct {
	roomCode string
	conn     *websocket.Conn
	send     chan []byte
	once     sync.Once
}

func newWatchClient(roomCode string, conn *websocket.Conn) *watchClient {
	return &watchClient{
		roomCode: roomCode,
		conn:     conn,
		send:     make(chan []byte, watchSendBuffer),
	}
}

// close shuts the send channel exactly once. The write pump drains
// whatever is buffered and then closes the connection.
func (c *watchClient) close() {
	c.once.Do(func() { close(c.send) })
}

func (c *watchClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards inbound frames; watchers are read-only. It returns
// when the peer goes away.
func (c *watchClient) readPump(h *watchHub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// watchHub tracks spectator connections per room code. Sends happen
// under the read lock and channel closes under the write lock, so a
// send can never race a close.
type watchHub struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	rooms  map[string]map[*watchClient]bool
}

func newWatchHub(logger zerolog.Logger) *watchHub {
	return &watchHub{
		logger: logger.With().Str("component", "watch").Logger(),
		rooms:  make(map[string]map[*watchClient]bool),
	}
}

func (h *watchHub) add(c *watchClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[c.roomCode]
	if !ok {
		clients = make(map[*watchClient]bool)
		h.rooms[c.roomCode] = clients
	}
	clients[c] = true

	h.logger.Debug().Str("room", c.roomCode).Int("watchers", len(clients)).Msg("Watcher connected")
}

func (h *watchHub) remove(c *watchClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[c.roomCode]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.roomCode)
	}
	c.close()

	h.logger.Debug().Str("room", c.roomCode).Int("watchers", len(clients)).Msg("Watcher disconnected")
}

// broadcast fans an update out to every watcher of the room. A watcher
// whose buffer is full misses the frame rather than blocking the
// request that produced it.
func (h *watchHub) broadcast(roomCode string, update watchUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error().Err(err).Msg("Marshal watch update failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomCode] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug().Str("room", roomCode).Msg("Dropping frame to slow watcher")
		}
	}
}

// sendTo delivers an update to a single client if it is still
// registered.
func (h *watchHub) sendTo(c *watchClient, update watchUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.rooms[c.roomCode]; ok && clients[c] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// closeRoom disconnects every watcher of a room that no longer exists.
func (h *watchHub) closeRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[roomCode] {
		c.close()
	}
	delete(h.rooms, roomCode)
}

// shutdown disconnects all watchers.
func (h *watchHub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.rooms {
		for c := range clients {
			c.close()
		}
	}
	h.rooms = make(map[string]map[*watchClient]bool)
}

func (h *watchHub) watcherCount(roomCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}

// handleWatch upgrades the request to a WebSocket and streams room
// snapshots until either side disconnects. Watching needs no
// membership, only a valid room code.
func (s *Server) handleWatch(c *gin.Context) {
	snap, err := s.registry.Snapshot(c.Param("roomCode"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := newWatchClient(snap.RoomCode, conn)
	s.hub.add(client)
	go client.writePump()

	s.hub.sendTo(client, watchUpdate{Type: watchTypeSnapshot, Game: &snap})

	client.readPump(s.hub)
}
