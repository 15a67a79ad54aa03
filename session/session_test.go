package session

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/rihaans/GameHub/network"
)

// MockConnection is a test double for the network.Connection interface. It
// records every payload handed to Send.
type MockConnection struct {
	sent [][]byte
}

func (m *MockConnection) Send(data []byte) error {
	m.sent = append(m.sent, data)
	return nil
}
func (m *MockConnection) ReadEnvelope() ([]byte, error) { return nil, nil }
func (m *MockConnection) Close() error                  { return nil }
func (m *MockConnection) RemoteAddr() net.Addr          { return &net.TCPAddr{} }

func TestManager_RegisterSendsWelcome(t *testing.T) {
	manager := NewManager()
	conn := &MockConnection{}

	sess := manager.Register(conn, "Alice")
	if sess == nil {
		t.Fatal("Register should not return nil")
	}
	if sess.ID == "" {
		t.Fatal("Register should assign a player id")
	}
	if sess.Name != "Alice" {
		t.Errorf("Expected name Alice, got %q", sess.Name)
	}

	if len(conn.sent) != 1 {
		t.Fatalf("Expected 1 welcome envelope, got %d", len(conn.sent))
	}
	var welcome map[string]string
	if err := json.Unmarshal(conn.sent[0], &welcome); err != nil {
		t.Fatalf("Welcome envelope is not valid JSON: %v", err)
	}
	if welcome["type"] != network.TypeWelcome {
		t.Errorf("Expected welcome envelope, got type %q", welcome["type"])
	}
	if welcome["player_id"] != sess.ID {
		t.Errorf("Welcome player_id %q does not match assigned id %q", welcome["player_id"], sess.ID)
	}
}

func TestManager_RegisterAssignsUniqueIDs(t *testing.T) {
	manager := NewManager()

	a := manager.Register(&MockConnection{}, "A")
	b := manager.Register(&MockConnection{}, "B")
	if a.ID == b.ID {
		t.Errorf("Two registrations got the same id %q", a.ID)
	}
	if manager.Count() != 2 {
		t.Errorf("Expected 2 sessions, got %d", manager.Count())
	}
}

func TestManager_UnregisterIdempotent(t *testing.T) {
	manager := NewManager()
	sess := manager.Register(&MockConnection{}, "A")

	if got := manager.Unregister(sess.ID); got != sess {
		t.Fatal("First Unregister should return the session")
	}
	if got := manager.Unregister(sess.ID); got != nil {
		t.Fatal("Second Unregister should be a no-op returning nil")
	}
	if _, exists := manager.Get(sess.ID); exists {
		t.Error("Get should not find an unregistered session")
	}
}

func TestSession_RoomID(t *testing.T) {
	sess := NewSession("p1", "A", &MockConnection{})
	if sess.RoomID() != "" {
		t.Errorf("New session should have no room, got %q", sess.RoomID())
	}

	sess.SetRoomID("r1")
	if sess.RoomID() != "r1" {
		t.Errorf("Expected room r1, got %q", sess.RoomID())
	}
}
