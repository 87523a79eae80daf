package room

import (
	"strings"
	"sync"
	"time"

	rand "math/rand/v2"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/randutil"
)

const maxCodeAttempts = 10

// membership ties a player id back to the room holding them.
type membership struct {
	roomCode string
	name     string
}

// Registry owns the room and player-id maps. The registry mutex
// guards the maps themselves; each room serialises its own mutation
// behind its lock, so different rooms proceed fully in parallel.
// Rooms are flagged closed under their lock before the registry drops
// them, which keeps expiry from racing an in-flight action.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	players map[string]membership

	codes    *CodeGenerator
	defaults Settings
	clock    quartz.Clock
	logger   zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// RegistryOption configures a Registry during creation.
type RegistryOption func(*Registry)

// WithClock substitutes the wall clock, for tests.
func WithClock(clock quartz.Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = clock
	}
}

// WithCodeGenerator substitutes the room-code generator, for tests.
func WithCodeGenerator(codes *CodeGenerator) RegistryOption {
	return func(r *Registry) {
		r.codes = codes
	}
}

// NewRegistry creates an empty registry. The rng seeds per-hand
// shuffles; defaults fill unset fields of create-time settings.
func NewRegistry(logger zerolog.Logger, rng *rand.Rand, defaults Settings, opts ...RegistryOption) *Registry {
	if rng == nil {
		panic("rng is required")
	}
	if err := defaults.Validate(); err != nil {
		panic("invalid default settings: " + err.Error())
	}

	r := &Registry{
		rooms:    make(map[string]*Room),
		players:  make(map[string]membership),
		codes:    NewCodeGenerator(nil),
		defaults: defaults,
		clock:    quartz.NewReal(),
		logger:   logger.With().Str("component", "registry").Logger(),
		rng:      rng,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens a new room with the host as its only member. Settings
// fields left at zero take the registry defaults.
func (r *Registry) Create(hostName string, settings Settings) (Snapshot, Member, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return Snapshot{}, Member{}, ErrMissingName
	}
	settings.fillDefaults(r.defaults)
	if err := settings.Validate(); err != nil {
		return Snapshot{}, Member{}, err
	}

	host := &Member{ID: uuid.NewString(), Name: hostName, IsHost: true}

	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.uniqueCode()
	if err != nil {
		return Snapshot{}, Member{}, err
	}

	rm := &Room{
		code:      code,
		hostID:    host.ID,
		settings:  settings,
		members:   []*Member{host},
		createdAt: r.clock.Now(),
	}
	r.rooms[code] = rm
	r.players[host.ID] = membership{roomCode: code, name: hostName}

	r.logger.Info().
		Str("room", code).
		Str("host", hostName).
		Int("starting_chips", settings.StartingChips).
		Int("max_players", settings.MaxPlayers).
		Msg("Room created")

	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.snapshot(), *host, nil
}

// uniqueCode draws codes until one is unused. Callers hold mu.
func (r *Registry) uniqueCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := r.codes.Generate()
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Join seats a new member in an existing room.
func (r *Registry) Join(code, name string) (Snapshot, Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Snapshot{}, Member{}, ErrMissingName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return Snapshot{}, Member{}, ErrRoomNotFound
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.gameStarted {
		return Snapshot{}, Member{}, ErrGameStarted
	}
	if len(rm.members) >= rm.settings.MaxPlayers {
		return Snapshot{}, Member{}, ErrRoomFull
	}

	member := &Member{ID: uuid.NewString(), Name: name}
	rm.members = append(rm.members, member)
	r.players[member.ID] = membership{roomCode: rm.code, name: name}

	r.logger.Info().
		Str("room", rm.code).
		Str("player", name).
		Int("players", len(rm.members)).
		Msg("Player joined")

	return rm.snapshot(), *member, nil
}

// room resolves a code to a live room without taking the write lock.
func (r *Registry) room(code string) (*Room, error) {
	r.mu.RLock()
	rm, ok := r.rooms[NormalizeCode(code)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// UpdateSettings merges a host-supplied patch into the room settings.
// The merged result must still validate, and seats cannot shrink
// below the current member count.
func (r *Registry) UpdateSettings(code, hostID string, patch SettingsPatch) (Snapshot, error) {
	rm, err := r.room(code)
	if err != nil {
		return Snapshot{}, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	if rm.hostID != hostID {
		return Snapshot{}, ErrNotHost
	}

	merged := rm.settings
	patch.apply(&merged)
	if err := merged.Validate(); err != nil {
		return Snapshot{}, err
	}
	if merged.MaxPlayers < len(rm.members) {
		return Snapshot{}, ErrInvalidSettings
	}
	rm.settings = merged

	r.logger.Info().
		Str("room", rm.code).
		Int("starting_chips", merged.StartingChips).
		Int("small_blind", merged.SmallBlind).
		Int("big_blind", merged.BigBlind).
		Int("max_players", merged.MaxPlayers).
		Msg("Settings updated")

	return rm.snapshot(), nil
}

// StartHand deals a fresh hand for every seated member, replacing any
// previous hand wholesale. Host only; needs at least two members.
func (r *Registry) StartHand(code, hostID string) (Snapshot, error) {
	rm, err := r.room(code)
	if err != nil {
		return Snapshot{}, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	if rm.hostID != hostID {
		return Snapshot{}, ErrNotHost
	}
	if len(rm.members) < 2 {
		return Snapshot{}, ErrTooFewPlayers
	}

	handNumber := 1
	if rm.game != nil {
		handNumber = rm.game.HandNumber + 1
	}

	rm.game = game.NewState(
		r.handRNG(),
		rm.memberIDs(),
		rm.settings.StartingChips,
		rm.settings.SmallBlind,
		rm.settings.BigBlind,
		handNumber,
	)
	rm.gameStarted = true

	r.logger.Info().
		Str("room", rm.code).
		Int("hand_number", handNumber).
		Int("players", len(rm.members)).
		Msg("Hand started")

	return rm.snapshot(), nil
}

// handRNG derives an independent generator for one hand's shuffle.
func (r *Registry) handRNG() *rand.Rand {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return randutil.Child(r.rng)
}

// ApplyAction routes a betting action to the room's current hand.
func (r *Registry) ApplyAction(code, playerID string, action game.Action, amount int) (Snapshot, error) {
	rm, err := r.room(code)
	if err != nil {
		return Snapshot{}, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	if rm.game == nil {
		return Snapshot{}, ErrNoActiveHand
	}
	if err := rm.game.Apply(playerID, action, amount); err != nil {
		return Snapshot{}, err
	}

	r.logger.Debug().
		Str("room", rm.code).
		Str("player", playerID).
		Str("action", action.String()).
		Int("amount", amount).
		Int("pot", rm.game.Pot).
		Msg("Action applied")

	return rm.snapshot(), nil
}

// Sync returns a read-only snapshot for a room member. It never
// mutates anything.
func (r *Registry) Sync(code, playerID string) (Snapshot, error) {
	rm, err := r.room(code)
	if err != nil {
		return Snapshot{}, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	if rm.memberIndex(playerID) == -1 {
		return Snapshot{}, ErrNotMember
	}
	return rm.snapshot(), nil
}

// Snapshot returns a read-only snapshot of a room without requiring
// membership. Spectator connections use it.
func (r *Registry) Snapshot(code string) (Snapshot, error) {
	rm, err := r.room(code)
	if err != nil {
		return Snapshot{}, err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.closed {
		return Snapshot{}, ErrRoomNotFound
	}
	return rm.snapshot(), nil
}

// Leave removes a member from their room. The host role passes to the
// longest-seated remaining member; the last member leaving closes the
// room. A hand in flight keeps its seats, only the room membership
// changes. Returns true when the room was closed.
func (r *Registry) Leave(code, playerID string) (Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[NormalizeCode(code)]
	if !ok {
		return Snapshot{}, false, ErrRoomNotFound
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	idx := rm.memberIndex(playerID)
	if idx == -1 {
		return Snapshot{}, false, ErrNotMember
	}

	leaving := rm.members[idx]
	rm.members = append(rm.members[:idx], rm.members[idx+1:]...)
	delete(r.players, playerID)

	if len(rm.members) == 0 {
		rm.closed = true
		delete(r.rooms, rm.code)
		r.logger.Info().Str("room", rm.code).Msg("Last player left, room closed")
		return rm.snapshot(), true, nil
	}

	if leaving.IsHost {
		next := rm.members[0]
		next.IsHost = true
		rm.hostID = next.ID
		r.logger.Info().
			Str("room", rm.code).
			Str("player", leaving.Name).
			Str("new_host", next.Name).
			Msg("Host left, role transferred")
	} else {
		r.logger.Info().
			Str("room", rm.code).
			Str("player", leaving.Name).
			Msg("Player left")
	}

	return rm.snapshot(), false, nil
}

// Expire drops every room created strictly longer than retention ago,
// along with its player-index entries, and returns the codes removed.
// Each room is flagged closed under its own lock first, so a caller
// mid-action on that room finishes before the delete lands.
func (r *Registry) Expire(retention time.Duration) []string {
	cutoff := r.clock.Now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []string
	for code, rm := range r.rooms {
		rm.mu.Lock()
		if rm.createdAt.Before(cutoff) {
			rm.closed = true
			for _, m := range rm.members {
				delete(r.players, m.ID)
			}
			delete(r.rooms, code)
			expired = append(expired, code)
			r.logger.Info().
				Str("room", code).
				Time("created_at", rm.createdAt).
				Msg("Room expired")
		}
		rm.mu.Unlock()
	}
	return expired
}

// Count reports the number of live rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
