// Package server hosts the room registry behind an HTTP JSON API, with
// a WebSocket feed for spectators and an optional NATS event stream.
package server

import (
	"context"
	"net/http"
	"sync"

	rand "math/rand/v2"

	"github.com/coder/quartz"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/cardroomhq/cardroom/internal/events"
	"github.com/cardroomhq/cardroom/internal/room"
)

// Server owns the room registry, the spectator hub and the expiry
// sweeper. All request handling goes through the registry; the server
// itself keeps no game state.
type Server struct {
	cfg       *Config
	logger    zerolog.Logger
	registry  *room.Registry
	publisher events.Publisher
	hub       *watchHub
	clock     quartz.Clock
	upgrader  websocket.Upgrader

	httpServer *http.Server

	sweepCancel context.CancelFunc
	sweeper     quartz.Waiter
	stopOnce    sync.Once
}

// Option configures a Server
type Option func(*Server)

// WithConfig overrides the default configuration
func WithConfig(cfg *Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// WithClock substitutes the clock used for room timestamps and expiry,
// for tests.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithPublisher sets the event publisher. The server takes ownership
// and closes it on Shutdown.
func WithPublisher(p events.Publisher) Option {
	return func(s *Server) { s.publisher = p }
}

// NewServer creates a server with an explicit random source. The rng
// seeds every hand dealt by every room, so a fixed seed replays the
// same decks.
func NewServer(logger zerolog.Logger, rng *rand.Rand, opts ...Option) *Server {
	s := &Server{
		cfg:       DefaultConfig(),
		logger:    logger.With().Str("component", "server").Logger(),
		publisher: events.NewNoopPublisher(),
		clock:     quartz.NewReal(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registry = room.NewRegistry(logger, rng, s.cfg.RoomSettings(), room.WithClock(s.clock))
	s.hub = newWatchHub(logger)
	s.httpServer = &http.Server{Handler: s.router()}

	return s
}

// router wires up the HTTP routes
func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/health", s.handleHealth)

	rooms := r.Group("/rooms")
	rooms.POST("/create", s.handleCreateRoom)
	rooms.POST("/join", s.handleJoinRoom)
	rooms.POST("/settings", s.handleUpdateSettings)
	rooms.POST("/new-hand", s.handleNewHand)
	rooms.POST("/action", s.handleAction)
	rooms.POST("/leave", s.handleLeaveRoom)
	rooms.GET("/:roomCode/sync", s.handleSync)
	rooms.GET("/:roomCode/watch", s.handleWatch)

	return r
}

// Start begins serving on addr. It blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	s.startSweeper()

	s.httpServer.Addr = addr
	s.logger.Info().Str("address", addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the sweeper, disconnects all watchers, closes the
// event publisher and drains in-flight requests. Safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() {
		if s.sweepCancel != nil {
			s.sweepCancel()
			_ = s.sweeper.Wait()
		}
	})

	s.hub.shutdown()
	s.publisher.Close()

	return s.httpServer.Shutdown(ctx)
}

// startSweeper expires stale rooms on the configured interval until
// Shutdown. The ticker runs off the injected clock.
func (s *Server) startSweeper() {
	ctx, cancel := context.WithCancel(context.Background())
	s.sweepCancel = cancel
	s.sweeper = s.clock.TickerFunc(ctx, s.cfg.SweepInterval(), func() error {
		s.sweepExpired()
		return nil
	}, "sweep")
}

// sweepExpired drops rooms older than the retention window and tells
// their watchers and event subscribers.
func (s *Server) sweepExpired() {
	for _, code := range s.registry.Expire(s.cfg.Retention()) {
		s.publish(events.Event{Type: events.TypeRoomExpired, RoomCode: code})
		s.hub.closeRoom(code)
	}
}

func (s *Server) publish(evt events.Event) {
	if err := s.publisher.Publish(evt); err != nil {
		s.logger.Warn().Err(err).
			Str("type", evt.Type).
			Str("room", evt.RoomCode).
			Msg("Event publish failed")
	}
}

// broadcast pushes the updated snapshot to the room's watchers, tagged
// with the event that produced it.
func (s *Server) broadcast(evt events.Event, snap room.Snapshot) {
	s.hub.broadcast(snap.RoomCode, watchUpdate{Type: evt.Type, Data: evt.Data, Game: &snap})
}
