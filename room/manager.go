// room/manager.go
package room

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rihaans/GameHub/config"
	"github.com/rihaans/GameHub/game"
	"github.com/rihaans/GameHub/logger"
	"github.com/rihaans/GameHub/models"
	"github.com/rihaans/GameHub/session"
	"github.com/rihaans/GameHub/timer"
)

// Manager is the room directory: it owns the set of live rooms, creates and
// resolves them, and removes them once empty or finished. Its lock guards
// only the map; it is never held across a broadcast.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex

	registry    *game.Registry
	cfg         config.RoomConfig
	broadcaster Broadcaster
	timers      *timer.Manager
	recorder    func(models.GameRecord) // optional history hook
}

func NewManager(registry *game.Registry, cfg config.RoomConfig, broadcaster Broadcaster, timers *timer.Manager, recorder func(models.GameRecord)) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		registry:    registry,
		cfg:         cfg,
		broadcaster: broadcaster,
		timers:      timers,
		recorder:    recorder,
	}
}

// CreateRoom creates a Lobby room for a registered game type with the creator
// as its only member, then broadcasts the initial snapshot (which carries the
// new room id back to the creator).
func (m *Manager) CreateRoom(gameType string, creator *session.Session) (*Room, error) {
	if m.inRoom(creator) {
		return nil, ErrAlreadyInRoom
	}
	g, exists := m.registry.Get(gameType)
	if !exists {
		return nil, game.ErrUnknownGameType
	}

	id := uuid.New().String()
	r := NewRoom(id, gameType, g, m.cfg.MaxPlayers, m.cfg.MinPlayers, creator, m.broadcaster, m.finishHook(id))

	m.mutex.Lock()
	m.rooms[id] = r
	m.mutex.Unlock()

	logger.Log.Infof("Player %s created room %s (%s)", creator.ID, id, gameType)
	r.BroadcastSnapshot()
	return r, nil
}

// JoinRoom adds a player to an existing Lobby room.
func (m *Manager) JoinRoom(roomID string, sess *session.Session) (*Room, error) {
	if m.inRoom(sess) {
		return nil, ErrAlreadyInRoom
	}
	r, exists := m.GetRoom(roomID)
	if !exists {
		return nil, ErrRoomNotFound
	}
	if err := r.Join(sess); err != nil {
		return nil, err
	}
	logger.Log.Infof("Player %s joined room %s", sess.ID, roomID)
	return r, nil
}

// Leave removes the player from their current room. An emptied room is
// destroyed immediately; a finished room is destroyed by the grace timer.
func (m *Manager) Leave(sess *session.Session) error {
	roomID := sess.RoomID()
	if roomID == "" {
		return ErrNotInRoom
	}
	r, exists := m.GetRoom(roomID)
	if !exists {
		// room destroyed while the player reference was still dangling
		sess.SetRoomID("")
		return nil
	}

	empty, err := r.Leave(sess.ID)
	if err != nil {
		return err
	}
	if empty {
		m.RemoveRoom(roomID)
	}
	return nil
}

// inRoom reports whether the player's room reference points at a live room.
// A reference left dangling by grace-period destruction is cleared so the
// player can create or join again.
func (m *Manager) inRoom(sess *session.Session) bool {
	roomID := sess.RoomID()
	if roomID == "" {
		return false
	}
	if _, exists := m.GetRoom(roomID); !exists {
		sess.SetRoomID("")
		return false
	}
	return true
}

func (m *Manager) GetRoom(roomID string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	r, exists := m.rooms[roomID]
	return r, exists
}

// RemoveRoom drops a room from the directory. Safe to call twice.
func (m *Manager) RemoveRoom(roomID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.rooms[roomID]; exists {
		delete(m.rooms, roomID)
		logger.Log.Infof("Room %s destroyed", roomID)
	}
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Summaries lists all live rooms for the admin surface.
func (m *Manager) Summaries() []models.RoomSummary {
	m.mutex.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mutex.RUnlock()

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Summary())
	}
	return summaries
}

// finishHook records the finished game and schedules the room's destruction
// after the configured grace period.
func (m *Manager) finishHook(roomID string) func(models.GameRecord) {
	return func(rec models.GameRecord) {
		if m.recorder != nil {
			m.recorder(rec)
		}
		m.timers.AddTimer(m.cfg.GracePeriod, 0, func() {
			m.RemoveRoom(roomID)
		})
	}
}
