// Package events publishes room lifecycle events to NATS subjects.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event types carried in the Type field of every published event.
const (
	TypeRoomCreated     = "room_created"
	TypePlayerJoined    = "player_joined"
	TypeSettingsUpdated = "settings_updated"
	TypeHandStarted     = "hand_started"
	TypeActionApplied   = "action_applied"
	TypePlayerLeft      = "player_left"
	TypeRoomExpired     = "room_expired"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "cardroom"

// Event is a single room lifecycle notification. Data carries an
// event-specific payload and may be nil.
type Event struct {
	Type     string    `json:"type"`
	RoomCode string    `json:"roomCode"`
	At       time.Time `json:"at"`
	Data     any       `json:"data,omitempty"`
}

// stamped fills in At when the caller left it zero.
func (e Event) stamped(now time.Time) Event {
	if e.At.IsZero() {
		e.At = now
	}
	return e
}

// Subject returns the NATS subject for a room's events.
func Subject(prefix, roomCode string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + roomCode
}

// Publisher delivers room events to interested subscribers.
type Publisher interface {
	// Publish sends one event. Implementations must not block on
	// slow consumers.
	Publish(evt Event) error

	// Close flushes buffered events and releases the transport.
	Close()
}

// NATSPublisher publishes events to a NATS server, one subject per room.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher connects to the NATS server at url. The connection
// retries in the background if the server is not up yet.
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("events: connect to %s: %w", url, err)
	}

	return &NATSPublisher{conn: nc, prefix: prefix}, nil
}

func (p *NATSPublisher) Publish(evt Event) error {
	evt = evt.stamped(time.Now().UTC())

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", evt.Type, err)
	}

	if err := p.conn.Publish(Subject(p.prefix, evt.RoomCode), data); err != nil {
		return fmt.Errorf("events: publish %s: %w", evt.Type, err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// NoopPublisher discards all events. Used when no NATS URL is configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that discards all events.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) Publish(Event) error { return nil }

func (*NoopPublisher) Close() {}
