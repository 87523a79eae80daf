package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

var suitNames = [...]string{"hearts", "diamonds", "clubs", "spades"}

// String returns the symbol representation of a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the lowercase name of the suit as used on the wire
func (s Suit) Name() string {
	if s < Hearts || s > Spades {
		return "unknown"
	}
	return suitNames[s]
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// MarshalText encodes the suit as its lowercase name
func (s Suit) MarshalText() ([]byte, error) {
	if s < Hearts || s > Spades {
		return nil, fmt.Errorf("deck: invalid suit %d", int(s))
	}
	return []byte(suitNames[s]), nil
}

// UnmarshalText decodes a suit from its lowercase name
func (s *Suit) UnmarshalText(text []byte) error {
	for i, name := range suitNames {
		if string(text) == name {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("deck: unknown suit %q", text)
}

// Rank represents a card rank, aces high
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the face value of a rank ("2".."10", "J", "Q", "K", "A")
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// MarshalText encodes the rank as its face value
func (r Rank) MarshalText() ([]byte, error) {
	if r < Two || r > Ace {
		return nil, fmt.Errorf("deck: invalid rank %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank from its face value
func (r *Rank) UnmarshalText(text []byte) error {
	for rank := Two; rank <= Ace; rank++ {
		if string(text) == rank.String() {
			*r = rank
			return nil
		}
	}
	return fmt.Errorf("deck: unknown rank %q", text)
}

// Card represents a playing card
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the display representation of a card (e.g., "A♠")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}
