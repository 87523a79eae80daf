package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	rand "math/rand/v2"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cardroomhq/cardroom/cmd/cardroom/shared"
	"github.com/cardroomhq/cardroom/internal/events"
	"github.com/cardroomhq/cardroom/internal/randutil"
	"github.com/cardroomhq/cardroom/internal/server"
)

// ServerCmd contains core server configuration
type ServerCmd struct {
	Config  string  `kong:"default='cardroom.hcl',help='Path to HCL config file'"`
	Addr    *string `kong:"help='Listen address (overrides the config file)'"`
	Debug   bool    `kong:"help='Enable debug logging'"`
	LogJSON bool    `kong:"name='log-json',help='Structured JSON logs instead of console output'"`
	Seed    *int64  `kong:"help='Deterministic RNG seed for dealing (optional)'"`
}

func (c *ServerCmd) Run() error {
	var logger zerolog.Logger
	if c.LogJSON {
		logger = shared.SetupStructuredLogger(c.Debug)
	} else {
		logger = shared.SetupLogger(c.Debug)
	}

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The config file's log level applies unless --debug asked for more.
	if !c.Debug {
		if level, err := zerolog.ParseLevel(cfg.Server.LogLevel); err == nil {
			logger = logger.Level(level)
		}
	}

	// Setup RNG and seed
	var rng *rand.Rand
	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info().Int64("seed", seed).Msg("Using deterministic seed")
	} else {
		seed = time.Now().UnixNano()
		logger.Info().Int64("seed", seed).Msg("Using random seed")
	}
	rng = randutil.New(seed)

	addr := cfg.ListenAddr()
	if c.Addr != nil {
		addr = *c.Addr
	}

	opts := []server.Option{server.WithConfig(cfg)}
	if cfg.Events.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithPublisher(pub))
		logger.Info().Str("url", cfg.Events.NATSURL).Msg("Publishing room events to NATS")
	}

	if !c.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.NewServer(logger, rng, opts...)

	rooms := cfg.RoomSettings()
	logger.Info().
		Str("address", addr).
		Int("starting_chips", rooms.StartingChips).
		Int("small_blind", rooms.SmallBlind).
		Int("big_blind", rooms.BigBlind).
		Int("max_players", rooms.MaxPlayers).
		Dur("retention", cfg.Retention()).
		Msg("Starting cardroom server")

	// Setup graceful shutdown
	ctx := shared.SetupSignalHandlerWithLogger(logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
