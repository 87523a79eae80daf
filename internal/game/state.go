package game

import (
	"fmt"
	"slices"

	rand "math/rand/v2"

	"github.com/cardroomhq/cardroom/internal/deck"
)

// Phase represents the betting round of a hand
type Phase int

const (
	Preflop Phase = iota
	Flop
	Turn
	River
)

func (p Phase) String() string {
	return [...]string{"preflop", "flop", "turn", "river"}[p]
}

// MarshalText encodes the phase as its lowercase name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase from its lowercase name
func (p *Phase) UnmarshalText(text []byte) error {
	for phase := Preflop; phase <= River; phase++ {
		if string(text) == phase.String() {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("game: unknown phase %q", text)
}

// NoActor is the CurrentPlayer value once every seat is folded or
// all-in. Further actions fail with ErrNoActor.
const NoActor = -1

// State represents the state of a single hand: seats, chips, the pot
// and the turn pointer. One State belongs to exactly one room and is
// replaced wholesale when a new hand starts.
//
// Betting rounds never advance past preflop: there is no round
// completion detection, no community card dealing and no showdown.
// The hand simply keeps accepting actions until every seat is folded
// or all-in.
type State struct {
	Players        []*Player   `json:"players"`
	Pot            int         `json:"pot"`
	CurrentBet     int         `json:"currentBet"`
	CurrentPlayer  int         `json:"currentPlayerIndex"`
	Phase          Phase       `json:"phase"`
	CommunityCards []deck.Card `json:"communityCards"`
	Deck           []deck.Card `json:"deck"` // Residual cards after the deal
	SmallBlind     int         `json:"smallBlind"`
	BigBlind       int         `json:"bigBlind"`
	HandNumber     int         `json:"handNumber"`
}

// NewState deals a fresh hand for the given players. Each player
// starts with startingChips and two hole cards dealt from a deck
// shuffled with the supplied generator. Seat 0 acts first.
//
// Blinds are recorded for the hand but not posted: no chips move
// until the first action, and the opening bet to match is zero.
func NewState(rng *rand.Rand, playerIDs []string, startingChips, smallBlind, bigBlind, handNumber int) *State {
	if rng == nil {
		panic("rng is required")
	}
	if len(playerIDs) < 2 {
		panic("at least 2 players required")
	}
	if startingChips <= 0 {
		panic("starting chips must be positive")
	}

	cards := deck.NewShuffled(rng)
	hands, residual := deck.DealHands(cards, len(playerIDs))

	players := make([]*Player, len(playerIDs))
	for i, id := range playerIDs {
		players[i] = &Player{
			ID:       id,
			Chips:    startingChips,
			Cards:    hands[i],
			Position: i,
		}
	}

	return &State{
		Players:        players,
		Pot:            0,
		CurrentBet:     0,
		CurrentPlayer:  0,
		Phase:          Preflop,
		CommunityCards: make([]deck.Card, 0),
		Deck:           residual,
		SmallBlind:     smallBlind,
		BigBlind:       bigBlind,
		HandNumber:     handNumber,
	}
}

// PlayerIndex returns the seat index for a player id, or -1 if the
// player is not in this hand.
func (s *State) PlayerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Apply validates and processes one action for the given player,
// then advances the turn pointer to the next eligible seat.
//
// Validation happens before any mutation, in order: the player must
// be seated in the hand, betting must still be open, the turn pointer
// must be on their seat and they must not be folded or all-in. A
// failed validation leaves the state untouched.
func (s *State) Apply(playerID string, action Action, amount int) error {
	idx := s.PlayerIndex(playerID)
	if idx == -1 {
		return ErrPlayerNotFound
	}
	if s.CurrentPlayer == NoActor {
		return ErrNoActor
	}
	if idx != s.CurrentPlayer {
		return ErrOutOfTurn
	}

	p := s.Players[idx]
	if !p.CanAct() {
		return ErrCannotAct
	}

	switch action {
	case Fold:
		p.Folded = true

	case Call:
		// Calling with nothing outstanding is a check
		toCall := min(s.CurrentBet-p.Bet, p.Chips)
		p.Bet += toCall
		p.Chips -= toCall
		s.Pot += toCall
		if p.Chips == 0 {
			p.AllInFlag = true
		}

	case Raise:
		// amount is the player's new total bet for the round, not an
		// increment on top of the current bet
		if amount <= s.CurrentBet {
			return ErrInvalidAmount
		}
		delta := min(amount-p.Bet, p.Chips)
		p.Bet += delta
		p.Chips -= delta
		s.Pot += delta
		s.CurrentBet = p.Bet
		if p.Chips == 0 {
			p.AllInFlag = true
		}

	case AllIn:
		allInAmount := p.Chips
		p.Bet += allInAmount
		p.Chips = 0
		p.AllInFlag = true
		s.Pot += allInAmount
		if p.Bet > s.CurrentBet {
			s.CurrentBet = p.Bet
		}

	default:
		return ErrInvalidAction
	}

	s.CurrentPlayer = s.nextEligible(idx + 1)
	return nil
}

// Clone returns a deep copy of the state. Snapshots hand clones to
// the transport so serialization never races with later actions.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		cp := *p
		cp.Cards = slices.Clone(p.Cards)
		c.Players[i] = &cp
	}
	c.CommunityCards = slices.Clone(s.CommunityCards)
	c.Deck = slices.Clone(s.Deck)
	return &c
}

// nextEligible scans at most one full cycle from the given seat and
// returns the first seat that can still act, or NoActor when every
// seat is folded or all-in.
func (s *State) nextEligible(from int) int {
	numPlayers := len(s.Players)
	for i := 0; i < numPlayers; i++ {
		pos := (from + i) % numPlayers
		if s.Players[pos].CanAct() {
			return pos
		}
	}
	return NoActor
}
