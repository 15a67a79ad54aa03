package room

// Phase is the room lifecycle state. Transitions are monotonic:
// Lobby -> InProgress -> Finished; a room never regresses.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseInProgress
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "Lobby"
	case PhaseInProgress:
		return "InProgress"
	case PhaseFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// canTransition enforces forward-only movement through the lifecycle.
func canTransition(from, to Phase) bool {
	return to > from
}
