package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardroomhq/cardroom/internal/events"
	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/room"
)

type createRoomRequest struct {
	HostName string         `json:"hostName"`
	Settings *room.Settings `json:"settings"`
}

type joinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type updateSettingsRequest struct {
	RoomCode string              `json:"roomCode"`
	HostID   string              `json:"hostId"`
	Settings *room.SettingsPatch `json:"settings"`
}

type newHandRequest struct {
	RoomCode string `json:"roomCode"`
	HostID   string `json:"hostId"`
}

type actionRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
}

type leaveRoomRequest struct {
	RoomCode string `json:"roomCode"`
	PlayerID string `json:"playerId"`
}

// memberResponse is returned by create and join: the caller's identity
// plus the room snapshot.
type memberResponse struct {
	RoomCode string        `json:"roomCode"`
	PlayerID string        `json:"playerId"`
	IsHost   bool          `json:"isHost"`
	Game     room.Snapshot `json:"game"`
}

// gameResponse wraps the snapshot returned by every other room endpoint.
type gameResponse struct {
	Game room.Snapshot `json:"game"`
}

type leaveResponse struct {
	Game   room.Snapshot `json:"game"`
	Closed bool          `json:"closed"`
}

// Event payloads published alongside the room-code subject.
type handStartedEvent struct {
	HandNumber int `json:"handNumber"`
}

type actionAppliedEvent struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
}

type playerLeftEvent struct {
	PlayerID string `json:"playerId"`
	Closed   bool   `json:"closed"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": s.registry.Count()})
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Settings == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "settings required"})
		return
	}

	snap, host, err := s.registry.Create(req.HostName, *req.Settings)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.publish(events.Event{Type: events.TypeRoomCreated, RoomCode: snap.RoomCode, Data: host})

	c.JSON(http.StatusOK, memberResponse{
		RoomCode: snap.RoomCode,
		PlayerID: host.ID,
		IsHost:   true,
		Game:     snap,
	})
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var req joinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode required"})
		return
	}

	snap, member, err := s.registry.Join(req.RoomCode, req.PlayerName)
	if err != nil {
		s.writeError(c, err)
		return
	}

	evt := events.Event{Type: events.TypePlayerJoined, RoomCode: snap.RoomCode, Data: member}
	s.publish(evt)
	s.broadcast(evt, snap)

	c.JSON(http.StatusOK, memberResponse{
		RoomCode: snap.RoomCode,
		PlayerID: member.ID,
		IsHost:   false,
		Game:     snap,
	})
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode required"})
		return
	}
	if req.Settings == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "settings required"})
		return
	}

	snap, err := s.registry.UpdateSettings(req.RoomCode, req.HostID, *req.Settings)
	if err != nil {
		s.writeError(c, err)
		return
	}

	evt := events.Event{Type: events.TypeSettingsUpdated, RoomCode: snap.RoomCode, Data: snap.Settings}
	s.publish(evt)
	s.broadcast(evt, snap)

	c.JSON(http.StatusOK, gameResponse{Game: snap})
}

func (s *Server) handleNewHand(c *gin.Context) {
	var req newHandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode required"})
		return
	}

	snap, err := s.registry.StartHand(req.RoomCode, req.HostID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	evt := events.Event{
		Type:     events.TypeHandStarted,
		RoomCode: snap.RoomCode,
		Data:     handStartedEvent{HandNumber: snap.GameState.HandNumber},
	}
	s.publish(evt)
	s.broadcast(evt, snap)

	c.JSON(http.StatusOK, gameResponse{Game: snap})
}

func (s *Server) handleAction(c *gin.Context) {
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode required"})
		return
	}

	action, err := game.ParseAction(req.Action)
	if err != nil {
		s.writeError(c, err)
		return
	}

	snap, err := s.registry.ApplyAction(req.RoomCode, req.PlayerID, action, req.Amount)
	if err != nil {
		s.writeError(c, err)
		return
	}

	evt := events.Event{
		Type:     events.TypeActionApplied,
		RoomCode: snap.RoomCode,
		Data:     actionAppliedEvent{PlayerID: req.PlayerID, Action: action.String(), Amount: req.Amount},
	}
	s.publish(evt)
	s.broadcast(evt, snap)

	c.JSON(http.StatusOK, gameResponse{Game: snap})
}

func (s *Server) handleSync(c *gin.Context) {
	snap, err := s.registry.Sync(c.Param("roomCode"), c.Query("playerId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gameResponse{Game: snap})
}

func (s *Server) handleLeaveRoom(c *gin.Context) {
	var req leaveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode required"})
		return
	}

	snap, closed, err := s.registry.Leave(req.RoomCode, req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	evt := events.Event{
		Type:     events.TypePlayerLeft,
		RoomCode: snap.RoomCode,
		Data:     playerLeftEvent{PlayerID: req.PlayerID, Closed: closed},
	}
	s.publish(evt)
	if closed {
		s.hub.closeRoom(snap.RoomCode)
	} else {
		s.broadcast(evt, snap)
	}

	c.JSON(http.StatusOK, leaveResponse{Game: snap, Closed: closed})
}
