package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/cardroomhq/cardroom/internal/game"
)

// MaxPlayersLimit bounds how many seats a host can configure.
const MaxPlayersLimit = 10

// Settings configures a room. They apply to the next hand dealt, not
// to one already in flight.
type Settings struct {
	StartingChips int `json:"startingChips"`
	SmallBlind    int `json:"smallBlind"`
	BigBlind      int `json:"bigBlind"`
	MaxPlayers    int `json:"maxPlayers"`
}

// Validate checks settings for internal consistency.
func (s Settings) Validate() error {
	if s.StartingChips <= 0 {
		return fmt.Errorf("%w: starting chips must be positive", ErrInvalidSettings)
	}
	if s.SmallBlind <= 0 {
		return fmt.Errorf("%w: small blind must be positive", ErrInvalidSettings)
	}
	if s.BigBlind < s.SmallBlind {
		return fmt.Errorf("%w: big blind must be at least the small blind", ErrInvalidSettings)
	}
	if s.MaxPlayers < 2 || s.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("%w: max players must be between 2 and %d", ErrInvalidSettings, MaxPlayersLimit)
	}
	return nil
}

// fillDefaults replaces zero-valued fields from the registry defaults.
func (s *Settings) fillDefaults(defaults Settings) {
	if s.StartingChips == 0 {
		s.StartingChips = defaults.StartingChips
	}
	if s.SmallBlind == 0 {
		s.SmallBlind = defaults.SmallBlind
	}
	if s.BigBlind == 0 {
		s.BigBlind = defaults.BigBlind
	}
	if s.MaxPlayers == 0 {
		s.MaxPlayers = defaults.MaxPlayers
	}
}

// SettingsPatch carries a partial settings update. Nil fields keep
// their current value.
type SettingsPatch struct {
	StartingChips *int `json:"startingChips"`
	SmallBlind    *int `json:"smallBlind"`
	BigBlind      *int `json:"bigBlind"`
	MaxPlayers    *int `json:"maxPlayers"`
}

func (p SettingsPatch) apply(s *Settings) {
	if p.StartingChips != nil {
		s.StartingChips = *p.StartingChips
	}
	if p.SmallBlind != nil {
		s.SmallBlind = *p.SmallBlind
	}
	if p.BigBlind != nil {
		s.BigBlind = *p.BigBlind
	}
	if p.MaxPlayers != nil {
		s.MaxPlayers = *p.MaxPlayers
	}
}

// Member is a seated room member. Members persist across hands; the
// in-hand player carrying the same id is recreated every deal.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Room holds a room's members, settings and the current hand. All
// fields are guarded by mu; the registry locks rooms in a fixed
// registry-then-room order.
type Room struct {
	mu          sync.Mutex
	closed      bool // Set before the registry drops the room
	code        string
	hostID      string
	settings    Settings
	members     []*Member
	game        *game.State
	gameStarted bool
	createdAt   time.Time
}

// memberIndex returns the position of a member, or -1. Callers hold mu.
func (r *Room) memberIndex(playerID string) int {
	for i, m := range r.members {
		if m.ID == playerID {
			return i
		}
	}
	return -1
}

// memberIDs returns the seat order for the next hand. Callers hold mu.
func (r *Room) memberIDs() []string {
	ids := make([]string, len(r.members))
	for i, m := range r.members {
		ids[i] = m.ID
	}
	return ids
}

// Snapshot is the read-only view of a room handed to the transport
// layer. It shares no memory with the live room.
type Snapshot struct {
	RoomCode    string      `json:"roomCode"`
	Players     []Member    `json:"players"`
	Settings    Settings    `json:"settings"`
	GameStarted bool        `json:"gameStarted"`
	GameState   *game.State `json:"gameState"`
}

// snapshot deep-copies the room state. Callers hold mu.
func (r *Room) snapshot() Snapshot {
	players := make([]Member, len(r.members))
	for i, m := range r.members {
		players[i] = *m
	}
	return Snapshot{
		RoomCode:    r.code,
		Players:     players,
		Settings:    r.settings,
		GameStarted: r.gameStarted,
		GameState:   r.game.Clone(),
	}
}
