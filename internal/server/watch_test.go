package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cardroomhq/cardroom/internal/events"
	"github.com/cardroomhq/cardroom/internal/room"
)

func TestWatchHubBroadcast(t *testing.T) {
	t.Parallel()
	hub := newWatchHub(testLogger())

	// Clients without a real connection; we read their send channels
	// directly instead of running pumps.
	c1 := newWatchClient("AB12CD", nil)
	c2 := newWatchClient("AB12CD", nil)
	other := newWatchClient("ZZ99ZZ", nil)
	hub.add(c1)
	hub.add(c2)
	hub.add(other)

	hub.broadcast("AB12CD", watchUpdate{Type: events.TypePlayerJoined})

	for _, c := range []*watchClient{c1, c2} {
		select {
		case frame := <-c.send:
			if !strings.Contains(string(frame), events.TypePlayerJoined) {
				t.Errorf("frame = %s, want a player_joined update", frame)
			}
		default:
			t.Fatal("expected a buffered frame")
		}
	}
	select {
	case frame := <-other.send:
		t.Errorf("client in another room received %s", frame)
	default:
	}

	hub.remove(c1)
	if got := hub.watcherCount("AB12CD"); got != 1 {
		t.Errorf("watcherCount = %d after remove, want 1", got)
	}
	if _, ok := <-c1.send; ok {
		t.Error("removed client's channel should be closed")
	}

	hub.closeRoom("AB12CD")
	if got := hub.watcherCount("AB12CD"); got != 0 {
		t.Errorf("watcherCount = %d after closeRoom, want 0", got)
	}
	if _, ok := <-c2.send; ok {
		t.Error("closeRoom should close remaining channels")
	}
	if got := hub.watcherCount("ZZ99ZZ"); got != 1 {
		t.Errorf("other room watcherCount = %d, want 1", got)
	}
}

func TestWatchHubDropsSlowWatcher(t *testing.T) {
	t.Parallel()
	hub := newWatchHub(testLogger())
	c := newWatchClient("AB12CD", nil)
	hub.add(c)

	// Fill the buffer and then some. Overflow frames are dropped rather
	// than blocking the broadcaster.
	for i := 0; i < watchSendBuffer+5; i++ {
		hub.broadcast("AB12CD", watchUpdate{Type: events.TypeActionApplied})
	}

	if got := len(c.send); got != watchSendBuffer {
		t.Errorf("buffered frames = %d, want %d", got, watchSendBuffer)
	}
	if got := hub.watcherCount("AB12CD"); got != 1 {
		t.Errorf("watcherCount = %d, slow watchers stay registered", got)
	}
}

func TestWatchEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	router := srv.router()

	ts := httptest.NewServer(router)
	defer ts.Close()

	created := createRoom(t, router, "alice", room.Settings{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rooms/" + created.RoomCode + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first watchUpdate
	if _, frame, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read snapshot frame: %v", err)
	} else if err := json.Unmarshal(frame, &first); err != nil {
		t.Fatalf("decode snapshot frame: %v", err)
	}
	if first.Type != watchTypeSnapshot {
		t.Errorf("first frame type = %q, want %q", first.Type, watchTypeSnapshot)
	}
	if first.Game == nil || first.Game.RoomCode != created.RoomCode {
		t.Fatalf("snapshot frame missing room state: %+v", first)
	}
	if len(first.Game.Players) != 1 {
		t.Errorf("snapshot players = %d, want 1", len(first.Game.Players))
	}

	if got := srv.hub.watcherCount(created.RoomCode); got != 1 {
		t.Errorf("watcherCount = %d, want 1", got)
	}

	joinRoom(t, router, created.RoomCode, "bob")

	var second watchUpdate
	if _, frame, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read join frame: %v", err)
	} else if err := json.Unmarshal(frame, &second); err != nil {
		t.Fatalf("decode join frame: %v", err)
	}
	if second.Type != events.TypePlayerJoined {
		t.Errorf("second frame type = %q, want %q", second.Type, events.TypePlayerJoined)
	}
	if second.Game == nil || len(second.Game.Players) != 2 {
		t.Fatalf("join frame should carry both players: %+v", second)
	}

	conn.Close()
	waitForWatchers(t, srv, created.RoomCode, 0)
}

func TestWatchUnknownRoom(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	router := srv.router()

	w := doJSON(t, router, http.MethodGet, "/rooms/ZZZZZZ/watch", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	ts := httptest.NewServer(router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/rooms/ZZZZZZ/watch"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Error("dial to an unknown room should fail")
	}
}

func waitForWatchers(t *testing.T, srv *Server, roomCode string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.hub.watcherCount(roomCode) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("watcherCount(%s) never reached %d", roomCode, want)
}
