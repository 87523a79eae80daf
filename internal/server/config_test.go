package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got := cfg.ListenAddr(); got != "localhost:8080" {
		t.Errorf("ListenAddr = %q, want localhost:8080", got)
	}
	if cfg.Rooms.StartingChips != 1000 {
		t.Errorf("StartingChips = %d, want 1000", cfg.Rooms.StartingChips)
	}
	if cfg.Retention() != 24*time.Hour {
		t.Errorf("Retention = %v, want 24h", cfg.Retention())
	}
	if cfg.SweepInterval() != time.Hour {
		t.Errorf("SweepInterval = %v, want 1h", cfg.SweepInterval())
	}
	if cfg.Events.NATSURL != "" {
		t.Errorf("NATSURL = %q, want empty (events disabled)", cfg.Events.NATSURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigPartialFileFillsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "server.hcl")
	src := `
server {
  port = 9090
}

rooms {
  starting_chips = 500
  max_players    = 6
}

lifecycle {
  retention = "48h"
}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Address != "localhost" {
		t.Errorf("Address = %q, want default localhost", cfg.Server.Address)
	}
	if cfg.Rooms.StartingChips != 500 {
		t.Errorf("StartingChips = %d, want 500", cfg.Rooms.StartingChips)
	}
	if cfg.Rooms.MaxPlayers != 6 {
		t.Errorf("MaxPlayers = %d, want 6", cfg.Rooms.MaxPlayers)
	}
	if cfg.Rooms.BigBlind != 10 {
		t.Errorf("BigBlind = %d, want default 10", cfg.Rooms.BigBlind)
	}
	if cfg.Retention() != 48*time.Hour {
		t.Errorf("Retention = %v, want 48h", cfg.Retention())
	}
	if cfg.Lifecycle.SweepInterval != "1h" {
		t.Errorf("SweepInterval = %q, want default 1h", cfg.Lifecycle.SweepInterval)
	}
	if cfg.Events.SubjectPrefix != "cardroom" {
		t.Errorf("SubjectPrefix = %q, want default cardroom", cfg.Events.SubjectPrefix)
	}
}

func TestLoadConfigRejectsMalformedHCL(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.hcl")
	if err := os.WriteFile(path, []byte("server {"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error for malformed HCL")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, true},
		{"unknown log level", func(c *Config) { c.Server.LogLevel = "verbose" }, true},
		{"small blind above big blind", func(c *Config) { c.Rooms.SmallBlind = 50; c.Rooms.BigBlind = 10 }, true},
		{"too many seats", func(c *Config) { c.Rooms.MaxPlayers = 11 }, true},
		{"unparseable retention", func(c *Config) { c.Lifecycle.Retention = "forever" }, true},
		{"unparseable sweep interval", func(c *Config) { c.Lifecycle.SweepInterval = "often" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
