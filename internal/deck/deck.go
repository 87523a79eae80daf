package deck

import (
	"fmt"

	rand "math/rand/v2"
)

// Size is the number of cards in a standard deck
const Size = 52

// HandSize is the number of hole cards dealt to each player
const HandSize = 2

// New creates a standard 52-card deck in canonical order:
// suits ascending, ranks ascending within each suit
func New() []Card {
	cards := make([]Card, 0, Size)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Shuffle permutes cards in place using Fisher-Yates with the
// supplied random source. The source must not be nil.
func Shuffle(rng *rand.Rand, cards []Card) {
	if rng == nil {
		panic("rng is required")
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// NewShuffled creates a freshly shuffled deck
func NewShuffled(rng *rand.Rand) []Card {
	cards := New()
	Shuffle(rng, cards)
	return cards
}

// DealHands deals one two-card hand per player from the end of the
// deck, in player order, and returns the hands plus the residual
// deck. A deck too short for n hands is a programmer error.
func DealHands(cards []Card, n int) ([][]Card, []Card) {
	if n < 1 {
		panic("at least 1 hand required")
	}
	if len(cards) < n*HandSize {
		panic(fmt.Sprintf("cannot deal %d hands from %d cards", n, len(cards)))
	}

	hands := make([][]Card, n)
	for i := 0; i < n; i++ {
		hand := make([]Card, 0, HandSize)
		for len(hand) < HandSize {
			hand = append(hand, cards[len(cards)-1])
			cards = cards[:len(cards)-1]
		}
		hands[i] = hand
	}
	return hands, cards
}
