package events

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		code   string
		want   string
	}{
		{"configured prefix", "poker.rooms", "AB12CD", "poker.rooms.AB12CD"},
		{"empty prefix falls back", "", "AB12CD", "cardroom.AB12CD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subject(tt.prefix, tt.code); got != tt.want {
				t.Errorf("Subject(%q, %q) = %q, want %q", tt.prefix, tt.code, got, tt.want)
			}
		})
	}
}

func TestStampedFillsZeroTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	evt := Event{Type: TypeRoomCreated, RoomCode: "AB12CD"}.stamped(now)
	if !evt.At.Equal(now) {
		t.Errorf("At = %v, want %v", evt.At, now)
	}

	earlier := now.Add(-time.Hour)
	evt = Event{Type: TypeRoomCreated, At: earlier}.stamped(now)
	if !evt.At.Equal(earlier) {
		t.Errorf("stamped overwrote caller timestamp: got %v, want %v", evt.At, earlier)
	}
}

func TestEventJSONShape(t *testing.T) {
	t.Parallel()

	evt := Event{
		Type:     TypeActionApplied,
		RoomCode: "AB12CD",
		At:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Data:     map[string]any{"playerId": "p1", "action": "raise", "amount": 50},
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := string(data)
	for _, want := range []string{
		`"type":"action_applied"`,
		`"roomCode":"AB12CD"`,
		`"playerId":"p1"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("marshaled event missing %s: %s", want, got)
		}
	}
}

func TestEventJSONOmitsNilData(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Event{Type: TypeRoomExpired, RoomCode: "AB12CD", At: time.Now()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), `"data"`) {
		t.Errorf("expected data field omitted, got %s", data)
	}
}

func TestNoopPublisher(t *testing.T) {
	t.Parallel()

	p := NewNoopPublisher()
	if err := p.Publish(Event{Type: TypeRoomCreated, RoomCode: "AB12CD"}); err != nil {
		t.Errorf("noop Publish returned error: %v", err)
	}
	p.Close()
}
