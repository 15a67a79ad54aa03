// room/room.go
package room

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rihaans/GameHub/game"
	"github.com/rihaans/GameHub/logger"
	"github.com/rihaans/GameHub/models"
	"github.com/rihaans/GameHub/network"
	"github.com/rihaans/GameHub/session"
)

// Finish reasons carried on the terminal state envelope.
const (
	ReasonComplete  = "complete"
	ReasonAbandoned = "abandoned"
)

type member struct {
	sess  *session.Session
	ready bool
}

// Room is one game session: an ordered set of members, a readiness gate and
// an opaque game state owned by the game-type handler. All state mutations
// are serialized by the room's own mutex; operations on different rooms are
// independent.
type Room struct {
	ID        string
	GameType  string
	CreatedAt time.Time

	game       game.Game
	maxPlayers int
	minPlayers int

	members   []*member // insertion order = join order
	phase     Phase
	gameState interface{}
	reason    string
	startedAt time.Time

	broadcaster Broadcaster
	onFinish    func(models.GameRecord)

	mutex sync.Mutex
	// broadcastMu serializes fan-out so every member observes state
	// transitions in mutation order. It is taken before the state mutex is
	// released (hand over hand) and is never held across network I/O: Deliver
	// only enqueues to per-connection buffers.
	broadcastMu sync.Mutex
}

// NewRoom creates a room in the Lobby phase with the creator as its first,
// not-ready member. The caller broadcasts the initial snapshot once the room
// is registered in the directory.
func NewRoom(id, gameType string, g game.Game, maxPlayers, minPlayers int, creator *session.Session, broadcaster Broadcaster, onFinish func(models.GameRecord)) *Room {
	r := &Room{
		ID:          id,
		GameType:    gameType,
		CreatedAt:   time.Now(),
		game:        g,
		maxPlayers:  maxPlayers,
		minPlayers:  minPlayers,
		phase:       PhaseLobby,
		broadcaster: broadcaster,
		onFinish:    onFinish,
	}
	r.members = append(r.members, &member{sess: creator})
	creator.SetRoomID(id)
	return r
}

// outbound is a snapshot of delivery targets and payloads, captured under the
// state mutex and fanned out after it is released.
type outbound struct {
	targets  []*session.Session
	payloads [][]byte
}

// publish must be called with r.mutex held. It takes the broadcast lock,
// releases the state mutex and delivers the payloads in order.
func (r *Room) publish(out outbound) {
	r.broadcastMu.Lock()
	r.mutex.Unlock()
	defer r.broadcastMu.Unlock()

	for _, payload := range out.payloads {
		r.broadcaster.Deliver(out.targets, payload)
	}
}

// Join appends a player to the member list. Valid only in the Lobby phase.
func (r *Room) Join(sess *session.Session) error {
	r.mutex.Lock()

	if r.phase != PhaseLobby {
		r.mutex.Unlock()
		return ErrRoomNotJoinable
	}
	if len(r.members) >= r.maxPlayers {
		r.mutex.Unlock()
		return ErrRoomFull
	}

	r.members = append(r.members, &member{sess: sess})
	sess.SetRoomID(r.ID)

	out := outbound{
		targets:  r.sessionsLocked(),
		payloads: [][]byte{network.Encode(r.snapshotLocked())},
	}
	r.publish(out)
	return nil
}

// SetReady updates a member's readiness. When the room is non-empty and every
// member is ready, the Lobby -> InProgress transition fires exactly once: the
// game handler produces the initial state and the new snapshot is broadcast
// to all members.
func (r *Room) SetReady(playerID string, ready bool) error {
	r.mutex.Lock()

	if r.phase != PhaseLobby {
		r.mutex.Unlock()
		return ErrInvalidState
	}
	m := r.memberLocked(playerID)
	if m == nil {
		r.mutex.Unlock()
		return ErrNotInRoom
	}

	m.ready = ready

	if ready && r.allReadyLocked() {
		st, err := r.game.Init(r.memberIDsLocked())
		if err != nil {
			r.mutex.Unlock()
			return fmt.Errorf("cannot start %s: %w", r.GameType, err)
		}
		r.phase = PhaseInProgress
		r.startedAt = time.Now()
		r.gameState = st
		logger.Log.Infof("Room %s started (%s, %d players)", r.ID, r.GameType, len(r.members))
	}

	out := outbound{
		targets:  r.sessionsLocked(),
		payloads: [][]byte{network.Encode(r.snapshotLocked())},
	}
	r.publish(out)
	return nil
}

// ApplyAction routes one player action through the game handler. Validation
// failures are returned to the caller and nothing is broadcast; room state is
// untouched. On success the new state is broadcast, and if the game reports
// itself over, the room transitions to Finished and the terminal snapshot
// follows in the same delivery order.
func (r *Room) ApplyAction(playerID, action string, data json.RawMessage) error {
	r.mutex.Lock()

	if r.phase != PhaseInProgress {
		r.mutex.Unlock()
		return ErrInvalidState
	}
	if r.memberLocked(playerID) == nil {
		r.mutex.Unlock()
		return ErrNotInRoom
	}

	if err := r.game.ValidateAction(r.gameState, playerID, action, data); err != nil {
		r.mutex.Unlock()
		return err
	}
	st, err := r.game.ApplyAction(r.gameState, playerID, action, data)
	if err != nil {
		r.mutex.Unlock()
		return err
	}
	r.gameState = st

	payloads := [][]byte{network.Encode(r.snapshotLocked())}

	var rec *models.GameRecord
	if r.game.IsOver(st) {
		if rec = r.finishLocked(ReasonComplete); rec != nil {
			payloads = append(payloads, network.Encode(r.snapshotLocked()))
		}
	}

	out := outbound{targets: r.sessionsLocked(), payloads: payloads}
	r.publish(out)

	if rec != nil && r.onFinish != nil {
		r.onFinish(*rec)
	}
	return nil
}

// Leave removes a player from the room. Remaining members get a left
// envelope followed by a fresh snapshot. When membership of an in-progress
// game drops below the minimum viable count, the room finishes as abandoned.
// The returned bool reports whether the room is now empty.
func (r *Room) Leave(playerID string) (bool, error) {
	r.mutex.Lock()

	idx := -1
	for i, m := range r.members {
		if m.sess.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mutex.Unlock()
		return false, ErrNotInRoom
	}

	leaving := r.members[idx]
	r.members = append(r.members[:idx], r.members[idx+1:]...)
	leaving.sess.SetRoomID("")

	if len(r.members) == 0 {
		r.mutex.Unlock()
		return true, nil
	}

	payloads := [][]byte{network.Encode(network.NewLeft(r.ID, playerID))}

	var rec *models.GameRecord
	if r.phase == PhaseInProgress && len(r.members) < r.minPlayers {
		rec = r.finishLocked(ReasonAbandoned)
	}
	payloads = append(payloads, network.Encode(r.snapshotLocked()))

	out := outbound{targets: r.sessionsLocked(), payloads: payloads}
	r.publish(out)

	if rec != nil && r.onFinish != nil {
		r.onFinish(*rec)
	}
	return false, nil
}

// finishLocked moves the room to Finished and builds the history record.
// Returns nil when the room is already finished.
func (r *Room) finishLocked(reason string) *models.GameRecord {
	if !canTransition(r.phase, PhaseFinished) {
		return nil
	}
	r.phase = PhaseFinished
	r.reason = reason
	logger.Log.Infof("Room %s finished (%s)", r.ID, reason)

	rec := &models.GameRecord{
		RoomID:    r.ID,
		GameType:  r.GameType,
		Players:   r.playersLocked(),
		Reason:    reason,
		StartedAt: r.startedAt,
		EndedAt:   time.Now(),
	}
	if res, ok := r.game.(game.Resulter); ok && r.gameState != nil {
		rec.Result = res.Result(r.gameState)
	}
	return rec
}

func (r *Room) memberLocked(playerID string) *member {
	for _, m := range r.members {
		if m.sess.ID == playerID {
			return m
		}
	}
	return nil
}

func (r *Room) allReadyLocked() bool {
	if len(r.members) == 0 {
		return false
	}
	for _, m := range r.members {
		if !m.ready {
			return false
		}
	}
	return true
}

func (r *Room) memberIDsLocked() []string {
	ids := make([]string, 0, len(r.members))
	for _, m := range r.members {
		ids = append(ids, m.sess.ID)
	}
	return ids
}

func (r *Room) sessionsLocked() []*session.Session {
	sessions := make([]*session.Session, 0, len(r.members))
	for _, m := range r.members {
		sessions = append(sessions, m.sess)
	}
	return sessions
}

func (r *Room) playersLocked() []models.PlayerInfo {
	var scores map[string]int
	if sc, ok := r.game.(game.Scorer); ok && r.gameState != nil {
		scores = sc.Scores(r.gameState)
	}

	players := make([]models.PlayerInfo, 0, len(r.members))
	for _, m := range r.members {
		players = append(players, models.PlayerInfo{
			PlayerID: m.sess.ID,
			Name:     m.sess.Name,
			Ready:    m.ready,
			Score:    scores[m.sess.ID],
		})
	}
	return players
}

func (r *Room) snapshotLocked() network.StateEnvelope {
	env := network.StateEnvelope{
		Type:    network.TypeState,
		RoomID:  r.ID,
		Phase:   r.phase.String(),
		Players: r.playersLocked(),
		Reason:  r.reason,
	}
	if r.gameState != nil {
		blob, err := json.Marshal(r.gameState)
		if err != nil {
			logger.Log.Errorf("Room %s: failed to marshal game state: %v", r.ID, err)
		} else {
			env.Game = blob
		}
	}
	return env
}

// Snapshot returns the current room snapshot as it would appear on the wire.
func (r *Room) Snapshot() network.StateEnvelope {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.snapshotLocked()
}

// BroadcastSnapshot delivers the current snapshot to all members.
func (r *Room) BroadcastSnapshot() {
	r.mutex.Lock()
	out := outbound{
		targets:  r.sessionsLocked(),
		payloads: [][]byte{network.Encode(r.snapshotLocked())},
	}
	r.publish(out)
}

func (r *Room) Phase() Phase {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.phase
}

func (r *Room) MemberCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.members)
}

// MemberIDs returns the player ids in join order.
func (r *Room) MemberIDs() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.memberIDsLocked()
}

// Summary is the admin view of the room.
func (r *Room) Summary() models.RoomSummary {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return models.RoomSummary{
		RoomID:      r.ID,
		GameType:    r.GameType,
		Phase:       r.phase.String(),
		PlayerCount: len(r.members),
		CreatedAt:   r.CreatedAt,
	}
}
