package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardroomhq/cardroom/internal/game"
	"github.com/cardroomhq/cardroom/internal/room"
)

// statusFor maps a domain error onto the HTTP status of its taxonomy
// class: an unknown room or player is 404, and so is a room with no
// hand dealt yet; host/membership violations are 403, everything a
// client could have avoided is 400, the rest is 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrNoActiveHand),
		errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound

	case errors.Is(err, room.ErrNotHost),
		errors.Is(err, room.ErrNotMember):
		return http.StatusForbidden

	case errors.Is(err, room.ErrMissingName),
		errors.Is(err, room.ErrInvalidSettings),
		errors.Is(err, room.ErrGameStarted),
		errors.Is(err, room.ErrRoomFull),
		errors.Is(err, room.ErrTooFewPlayers),
		errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrOutOfTurn),
		errors.Is(err, game.ErrCannotAct),
		errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrNoActor):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a domain error as an {error} body. Unexpected
// faults are logged and never leak their message to the caller.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
