package game

import "errors"

var (
	// ErrPlayerNotFound indicates the player id does not map to a seat
	// in this hand.
	ErrPlayerNotFound = errors.New("game: player not in hand")

	// ErrOutOfTurn indicates the player attempted to act before the
	// turn pointer reached their seat.
	ErrOutOfTurn = errors.New("game: not your turn")

	// ErrCannotAct indicates the player has already folded or is
	// all-in and may not act again this hand.
	ErrCannotAct = errors.New("game: player cannot act")

	// ErrInvalidAmount indicates a raise that does not exceed the
	// current bet.
	ErrInvalidAmount = errors.New("game: raise must exceed current bet")

	// ErrInvalidAction indicates an unrecognised action token.
	ErrInvalidAction = errors.New("game: invalid action")

	// ErrNoActor indicates every seat is folded or all-in, so betting
	// is closed for the hand.
	ErrNoActor = errors.New("game: no eligible actor")
)
