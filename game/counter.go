// game/counter.go
package game

import (
	"encoding/json"
	"fmt"
)

const counterTarget = 10

// CounterState is the state of the reference counter game.
type CounterState struct {
	Count      int            `json:"count"`
	Target     int            `json:"target"`
	Increments map[string]int `json:"increments"`
	LastActor  string         `json:"last_actor,omitempty"`
}

// Counter is a trivial reference game: any member may send "increment", the
// game ends when the shared count reaches the target. It exists to exercise
// the room/registry machinery without real rules.
type Counter struct {
	Target int
}

func NewCounter() *Counter {
	return &Counter{Target: counterTarget}
}

func (c *Counter) Init(players []string) (interface{}, error) {
	increments := make(map[string]int, len(players))
	for _, p := range players {
		increments[p] = 0
	}
	return &CounterState{
		Count:      0,
		Target:     c.Target,
		Increments: increments,
	}, nil
}

func (c *Counter) ValidateAction(state interface{}, playerID, action string, data json.RawMessage) error {
	st, ok := state.(*CounterState)
	if !ok {
		return fmt.Errorf("%w: bad state type", ErrInvalidAction)
	}
	if action != "increment" {
		return fmt.Errorf("%w: unsupported action %q", ErrInvalidAction, action)
	}
	if _, exists := st.Increments[playerID]; !exists {
		return fmt.Errorf("%w: player %s is not in this game", ErrInvalidAction, playerID)
	}
	if st.Count >= st.Target {
		return fmt.Errorf("%w: game already over", ErrInvalidAction)
	}
	return nil
}

func (c *Counter) ApplyAction(state interface{}, playerID, action string, data json.RawMessage) (interface{}, error) {
	st := state.(*CounterState)

	next := &CounterState{
		Count:      st.Count + 1,
		Target:     st.Target,
		Increments: make(map[string]int, len(st.Increments)),
		LastActor:  playerID,
	}
	for p, n := range st.Increments {
		next.Increments[p] = n
	}
	next.Increments[playerID]++

	return next, nil
}

func (c *Counter) IsOver(state interface{}) bool {
	st, ok := state.(*CounterState)
	return ok && st.Count >= st.Target
}

func (c *Counter) Scores(state interface{}) map[string]int {
	st, ok := state.(*CounterState)
	if !ok {
		return nil
	}
	scores := make(map[string]int, len(st.Increments))
	for p, n := range st.Increments {
		scores[p] = n
	}
	return scores
}

func (c *Counter) Result(state interface{}) map[string]interface{} {
	st, ok := state.(*CounterState)
	if !ok {
		return nil
	}
	return map[string]interface{}{
		"count":      st.Count,
		"last_actor": st.LastActor,
	}
}
