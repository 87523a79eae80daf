package game

import (
	"github.com/cardroomhq/cardroom/internal/deck"
)

// Player represents a player in a hand. It is recreated for every
// hand from the room's member list; only the id ties it back to the
// persistent room member.
type Player struct {
	ID        string      `json:"id"`
	Chips     int         `json:"chips"`
	Bet       int         `json:"bet"`      // Committed this betting round
	Folded    bool        `json:"folded"`
	AllInFlag bool        `json:"allIn"`
	Cards     []deck.Card `json:"cards"`    // Exactly two hole cards
	Position  int         `json:"position"` // 0-based seat index
}

// CanAct returns true if the player is still eligible to act.
// A folded or all-in player is skipped by turn advancement.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllInFlag
}
