// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rihaans/GameHub/network"
)

// Session binds one live connection to one player identity. It is created on
// connect and destroyed on disconnect; the room it references is authoritative
// for membership, the session only carries the back-reference.
type Session struct {
	ID         string
	Name       string
	Conn       network.Connection
	CreatedAt  time.Time
	LastActive time.Time

	roomID string
	mutex  sync.RWMutex
}

func NewSession(id, name string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Name:       name,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// RoomID returns the id of the room this player is in, or "" if none.
func (s *Session) RoomID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomID
}

func (s *Session) SetRoomID(roomID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomID = roomID
}

// SendEnvelope marshals and enqueues one server envelope. Errors from a full
// queue or closed connection are the caller's to count, not to retry.
func (s *Session) SendEnvelope(env interface{}) error {
	s.LastActive = time.Now()
	return s.Conn.Send(network.Encode(env))
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager is the connection registry: it owns the connection-to-player
// binding. Register assigns identities, Unregister removes them and is
// idempotent.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

// Register allocates a fresh player id for the connection, stores the binding
// and sends the welcome envelope to the originating connection.
func (m *Manager) Register(conn network.Connection, displayName string) *Session {
	sess := NewSession(uuid.New().String(), displayName, conn)

	m.mutex.Lock()
	m.sessions[sess.ID] = sess
	m.mutex.Unlock()

	sess.SendEnvelope(network.NewWelcome(sess.ID))
	return sess
}

// Unregister removes the binding. The second call for the same id is a no-op;
// the returned session is nil when the id was already gone.
func (m *Manager) Unregister(playerID string) *Session {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	sess, exists := m.sessions[playerID]
	if !exists {
		return nil
	}
	delete(m.sessions, playerID)
	return sess
}

func (m *Manager) Get(playerID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	sess, exists := m.sessions[playerID]
	return sess, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}
