// game/rps.go
package game

import (
	"encoding/json"
	"fmt"
)

const rpsMaxRounds = 5

var rpsBeats = map[string]string{
	"rock":     "scissors",
	"paper":    "rock",
	"scissors": "paper",
}

// RPSRound records one resolved round.
type RPSRound struct {
	Moves  map[string]string `json:"moves"`
	Winner string            `json:"winner,omitempty"` // empty on a draw
}

// RPSState is the state of a best-of-five rock-paper-scissors match.
type RPSState struct {
	Players []string          `json:"players"`
	Moves   map[string]string `json:"-"` // hidden until the round resolves
	Pending []string          `json:"pending"`
	Rounds  []RPSRound        `json:"rounds"`
	Scores  map[string]int    `json:"scores"`
	Winner  string            `json:"winner,omitempty"`
}

// RockPaperScissors is a two-player match decided by the first player to win
// a majority of the rounds, or by score once all rounds are played.
// Each round both players choose a move; the round resolves once both moves
// are in. In-flight moves are kept out of the broadcast state so a snapshot
// never leaks the opponent's choice.
type RockPaperScissors struct {
	MaxRounds int
}

func NewRockPaperScissors() *RockPaperScissors {
	return &RockPaperScissors{MaxRounds: rpsMaxRounds}
}

func (g *RockPaperScissors) Init(players []string) (interface{}, error) {
	if len(players) != 2 {
		return nil, fmt.Errorf("rock_paper_scissors needs exactly 2 players, got %d", len(players))
	}

	scores := make(map[string]int, 2)
	for _, p := range players {
		scores[p] = 0
	}
	st := &RPSState{
		Players: append([]string(nil), players...),
		Moves:   make(map[string]string, 2),
		Scores:  scores,
	}
	st.Pending = st.pendingPlayers()
	return st, nil
}

type rpsMove struct {
	Move string `json:"move"`
}

func (g *RockPaperScissors) ValidateAction(state interface{}, playerID, action string, data json.RawMessage) error {
	st, ok := state.(*RPSState)
	if !ok {
		return fmt.Errorf("%w: bad state type", ErrInvalidAction)
	}
	if action != "choose" {
		return fmt.Errorf("%w: unsupported action %q", ErrInvalidAction, action)
	}
	if st.matchOver(g.MaxRounds) {
		return fmt.Errorf("%w: match already over", ErrInvalidAction)
	}
	if !st.hasPlayer(playerID) {
		return fmt.Errorf("%w: player %s is not in this match", ErrInvalidAction, playerID)
	}
	if _, moved := st.Moves[playerID]; moved {
		return fmt.Errorf("%w: already moved this round", ErrInvalidAction)
	}

	var mv rpsMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return fmt.Errorf("%w: choose requires a move field", ErrInvalidAction)
	}
	if _, valid := rpsBeats[mv.Move]; !valid {
		return fmt.Errorf("%w: unknown move %q", ErrInvalidAction, mv.Move)
	}
	return nil
}

func (g *RockPaperScissors) ApplyAction(state interface{}, playerID, action string, data json.RawMessage) (interface{}, error) {
	st := state.(*RPSState)

	var mv rpsMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return nil, fmt.Errorf("%w: choose requires a move field", ErrInvalidAction)
	}

	next := st.clone()
	next.Moves[playerID] = mv.Move

	if len(next.Moves) == 2 {
		next.resolveRound()
		if next.matchOver(g.MaxRounds) {
			next.Winner = next.leader()
			next.Pending = nil
		}
	}
	if next.Winner == "" {
		next.Pending = next.pendingPlayers()
	}

	return next, nil
}

func (g *RockPaperScissors) IsOver(state interface{}) bool {
	st, ok := state.(*RPSState)
	return ok && st.matchOver(g.MaxRounds)
}

func (g *RockPaperScissors) Scores(state interface{}) map[string]int {
	st, ok := state.(*RPSState)
	if !ok {
		return nil
	}
	scores := make(map[string]int, len(st.Scores))
	for p, s := range st.Scores {
		scores[p] = s
	}
	return scores
}

func (g *RockPaperScissors) Result(state interface{}) map[string]interface{} {
	st, ok := state.(*RPSState)
	if !ok {
		return nil
	}
	return map[string]interface{}{
		"rounds": len(st.Rounds),
		"scores": st.Scores,
		"winner": st.Winner,
	}
}

func (st *RPSState) hasPlayer(playerID string) bool {
	for _, p := range st.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// matchOver reports whether a player has clinched a majority of the rounds
// or all rounds have been played.
func (st *RPSState) matchOver(maxRounds int) bool {
	for _, s := range st.Scores {
		if s > maxRounds/2 {
			return true
		}
	}
	return len(st.Rounds) >= maxRounds
}

func (st *RPSState) pendingPlayers() []string {
	pending := make([]string, 0, 2)
	for _, p := range st.Players {
		if _, moved := st.Moves[p]; !moved {
			pending = append(pending, p)
		}
	}
	return pending
}

func (st *RPSState) clone() *RPSState {
	next := &RPSState{
		Players: st.Players,
		Moves:   make(map[string]string, len(st.Moves)),
		Rounds:  append([]RPSRound(nil), st.Rounds...),
		Scores:  make(map[string]int, len(st.Scores)),
		Winner:  st.Winner,
	}
	for p, m := range st.Moves {
		next.Moves[p] = m
	}
	for p, s := range st.Scores {
		next.Scores[p] = s
	}
	return next
}

func (st *RPSState) resolveRound() {
	a, b := st.Players[0], st.Players[1]
	moveA, moveB := st.Moves[a], st.Moves[b]

	round := RPSRound{Moves: map[string]string{a: moveA, b: moveB}}
	switch {
	case moveA == moveB:
		// draw, nobody scores
	case rpsBeats[moveA] == moveB:
		round.Winner = a
		st.Scores[a]++
	default:
		round.Winner = b
		st.Scores[b]++
	}

	st.Rounds = append(st.Rounds, round)
	st.Moves = make(map[string]string, 2)
}

// leader returns the player with the higher score, or "" on a tie.
func (st *RPSState) leader() string {
	a, b := st.Players[0], st.Players[1]
	switch {
	case st.Scores[a] > st.Scores[b]:
		return a
	case st.Scores[b] > st.Scores[a]:
		return b
	default:
		return ""
	}
}
