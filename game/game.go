// game/game.go
package game

import (
	"encoding/json"
	"errors"
)

var (
	// ErrUnknownGameType is returned when a room is created with a game type
	// no handler was registered for.
	ErrUnknownGameType = errors.New("unknown game type")

	// ErrInvalidAction is the base error for rejected player actions. It is
	// reported to the acting player only and never broadcast.
	ErrInvalidAction = errors.New("invalid action")
)

// Game is the capability set one game type must implement. The server core is
// agnostic to game rules; it only routes actions through this interface and
// broadcasts whatever state comes back. State values are opaque to the core
// and owned by the handler that produced them.
type Game interface {
	// Init produces the initial game state for the given players, listed in
	// join order.
	Init(players []string) (interface{}, error)

	// ValidateAction checks an action without mutating state. A non-nil error
	// (wrapping ErrInvalidAction) rejects the action.
	ValidateAction(state interface{}, playerID, action string, data json.RawMessage) error

	// ApplyAction applies a validated action and returns the new state.
	ApplyAction(state interface{}, playerID, action string, data json.RawMessage) (interface{}, error)

	// IsOver reports whether the game has reached a terminal state.
	IsOver(state interface{}) bool
}

// Scorer is an optional capability: games that track per-player scores expose
// them for room snapshots and history records.
type Scorer interface {
	Scores(state interface{}) map[string]int
}

// Resulter is an optional capability: games that can summarize a finished
// state expose the summary for the history store.
type Resulter interface {
	Result(state interface{}) map[string]interface{}
}
