package game

import "strings"

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "call", "raise", "allin"}[a]
}

// ParseAction resolves an action token. Tokens are matched case
// insensitively and "all-in"/"all_in" are accepted for allin.
func ParseAction(token string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "fold":
		return Fold, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	case "allin", "all-in", "all_in":
		return AllIn, nil
	default:
		return 0, ErrInvalidAction
	}
}
