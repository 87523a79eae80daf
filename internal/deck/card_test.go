package deck

import (
	"encoding/json"
	"testing"
)

func TestCardString(t *testing.T) {
	tests := []struct {
		card     Card
		expected string
	}{
		{Card{Suit: Spades, Rank: Ace}, "A♠"},
		{Card{Suit: Hearts, Rank: Ten}, "10♥"},
		{Card{Suit: Diamonds, Rank: Two}, "2♦"},
		{Card{Suit: Clubs, Rank: Queen}, "Q♣"},
	}

	for _, tt := range tests {
		if got := tt.card.String(); got != tt.expected {
			t.Errorf("String() = %q, want %q", got, tt.expected)
		}
	}
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal(Card{Suit: Hearts, Rank: King})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"suit":"hearts","rank":"K"}` {
		t.Errorf("Marshal = %s, want {\"suit\":\"hearts\",\"rank\":\"K\"}", data)
	}

	var card Card
	if err := json.Unmarshal([]byte(`{"suit":"spades","rank":"10"}`), &card); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if card.Suit != Spades || card.Rank != Ten {
		t.Errorf("Unmarshal = %v, want 10♠", card)
	}

	if err := json.Unmarshal([]byte(`{"suit":"stars","rank":"3"}`), &card); err == nil {
		t.Error("Unmarshal should fail on unknown suit")
	}
	if err := json.Unmarshal([]byte(`{"suit":"hearts","rank":"1"}`), &card); err == nil {
		t.Error("Unmarshal should fail on unknown rank")
	}
}

func TestSuitNames(t *testing.T) {
	names := map[Suit]string{
		Hearts:   "hearts",
		Diamonds: "diamonds",
		Clubs:    "clubs",
		Spades:   "spades",
	}
	for suit, name := range names {
		if got := suit.Name(); got != name {
			t.Errorf("Name(%d) = %q, want %q", suit, got, name)
		}
	}
}

func TestIsRed(t *testing.T) {
	if !NewCard(Hearts, Five).IsRed() {
		t.Error("hearts should be red")
	}
	if !NewCard(Diamonds, Five).IsRed() {
		t.Error("diamonds should be red")
	}
	if NewCard(Spades, Five).IsRed() {
		t.Error("spades should not be red")
	}
	if NewCard(Clubs, Five).IsRed() {
		t.Error("clubs should not be red")
	}
}
