package room

import "errors"

var (
	// ErrRoomNotFound indicates the room code resolves to nothing.
	ErrRoomNotFound = errors.New("room: not found")

	// ErrNotHost indicates a host-only operation was attempted by
	// another member.
	ErrNotHost = errors.New("room: host only")

	// ErrNotMember indicates the player does not belong to the room.
	ErrNotMember = errors.New("room: not a member")

	// ErrGameStarted indicates the room no longer accepts joins.
	ErrGameStarted = errors.New("room: game already started")

	// ErrRoomFull indicates the room is at its member limit.
	ErrRoomFull = errors.New("room: room is full")

	// ErrTooFewPlayers indicates a hand needs at least two members.
	ErrTooFewPlayers = errors.New("room: at least 2 players required")

	// ErrNoActiveHand indicates no hand has been dealt yet.
	ErrNoActiveHand = errors.New("room: no active hand")

	// ErrMissingName indicates a blank host or player name.
	ErrMissingName = errors.New("room: name required")

	// ErrInvalidSettings indicates settings that fail validation.
	ErrInvalidSettings = errors.New("room: invalid settings")

	// ErrCodeSpaceExhausted indicates repeated code collisions, which
	// only happens when the registry is effectively full.
	ErrCodeSpaceExhausted = errors.New("room: could not allocate a unique code")
)
