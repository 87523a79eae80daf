package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"

	"github.com/cardroomhq/cardroom/internal/events"
	"github.com/cardroomhq/cardroom/internal/room"
)

// Config represents the complete server configuration
type Config struct {
	Server    *ListenSettings    `hcl:"server,block"`
	Rooms     *RoomDefaults      `hcl:"rooms,block"`
	Lifecycle *LifecycleSettings `hcl:"lifecycle,block"`
	Events    *EventSettings     `hcl:"events,block"`
}

// ListenSettings contains server-level configuration
type ListenSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// RoomDefaults fills in settings fields a room creator leaves at zero
type RoomDefaults struct {
	StartingChips int `hcl:"starting_chips,optional"`
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
	MaxPlayers    int `hcl:"max_players,optional"`
}

// LifecycleSettings controls room expiry
type LifecycleSettings struct {
	Retention     string `hcl:"retention,optional"`
	SweepInterval string `hcl:"sweep_interval,optional"`
}

// EventSettings configures the optional NATS event stream. Publishing
// is enabled only when nats_url is set.
type EventSettings struct {
	NATSURL       string `hcl:"nats_url,optional"`
	SubjectPrefix string `hcl:"subject_prefix,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ListenSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Rooms: &RoomDefaults{
			StartingChips: 1000,
			SmallBlind:    5,
			BigBlind:      10,
			MaxPlayers:    9,
		},
		Lifecycle: &LifecycleSettings{
			Retention:     "24h",
			SweepInterval: "1h",
		},
		Events: &EventSettings{
			SubjectPrefix: events.DefaultSubjectPrefix,
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills every omitted block and field from DefaultConfig.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Server == nil {
		c.Server = def.Server
	} else {
		if c.Server.Address == "" {
			c.Server.Address = def.Server.Address
		}
		if c.Server.Port == 0 {
			c.Server.Port = def.Server.Port
		}
		if c.Server.LogLevel == "" {
			c.Server.LogLevel = def.Server.LogLevel
		}
	}

	if c.Rooms == nil {
		c.Rooms = def.Rooms
	} else {
		if c.Rooms.StartingChips == 0 {
			c.Rooms.StartingChips = def.Rooms.StartingChips
		}
		if c.Rooms.SmallBlind == 0 {
			c.Rooms.SmallBlind = def.Rooms.SmallBlind
		}
		if c.Rooms.BigBlind == 0 {
			c.Rooms.BigBlind = def.Rooms.BigBlind
		}
		if c.Rooms.MaxPlayers == 0 {
			c.Rooms.MaxPlayers = def.Rooms.MaxPlayers
		}
	}

	if c.Lifecycle == nil {
		c.Lifecycle = def.Lifecycle
	} else {
		if c.Lifecycle.Retention == "" {
			c.Lifecycle.Retention = def.Lifecycle.Retention
		}
		if c.Lifecycle.SweepInterval == "" {
			c.Lifecycle.SweepInterval = def.Lifecycle.SweepInterval
		}
	}

	if c.Events == nil {
		c.Events = def.Events
	} else if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = def.Events.SubjectPrefix
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := zerolog.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.Server.LogLevel)
	}
	if err := c.RoomSettings().Validate(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Lifecycle.Retention); err != nil {
		return fmt.Errorf("invalid retention %q", c.Lifecycle.Retention)
	}
	if _, err := time.ParseDuration(c.Lifecycle.SweepInterval); err != nil {
		return fmt.Errorf("invalid sweep_interval %q", c.Lifecycle.SweepInterval)
	}
	return nil
}

// ListenAddr returns the full server address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomSettings returns the default settings applied to new rooms
func (c *Config) RoomSettings() room.Settings {
	return room.Settings{
		StartingChips: c.Rooms.StartingChips,
		SmallBlind:    c.Rooms.SmallBlind,
		BigBlind:      c.Rooms.BigBlind,
		MaxPlayers:    c.Rooms.MaxPlayers,
	}
}

// Retention returns how long a room is kept after creation
func (c *Config) Retention() time.Duration {
	d, err := time.ParseDuration(c.Lifecycle.Retention)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// SweepInterval returns how often the expiry sweep runs
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.Lifecycle.SweepInterval)
	if err != nil {
		return time.Hour
	}
	return d
}
