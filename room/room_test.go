package room

import (
	"encoding/json"
	"errors"
	"net"
	"os"
	"testing"

	"github.com/rihaans/GameHub/game"
	"github.com/rihaans/GameHub/logger"
	"github.com/rihaans/GameHub/models"
	"github.com/rihaans/GameHub/network"
	"github.com/rihaans/GameHub/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(data []byte) error        { return nil }
func (m *MockConnection) ReadEnvelope() ([]byte, error) { return nil, nil }
func (m *MockConnection) Close() error                  { return nil }
func (m *MockConnection) RemoteAddr() net.Addr          { return &net.TCPAddr{} }

// MockBroadcaster records every delivery in order.
type MockBroadcaster struct {
	payloads [][]byte
	targets  [][]string
}

func (b *MockBroadcaster) Deliver(targets []*session.Session, payload []byte) {
	ids := make([]string, 0, len(targets))
	for _, s := range targets {
		ids = append(ids, s.ID)
	}
	b.targets = append(b.targets, ids)
	b.payloads = append(b.payloads, payload)
}

func (b *MockBroadcaster) reset() {
	b.payloads = nil
	b.targets = nil
}

// envelopeType decodes just the type tag of a recorded payload.
func envelopeType(t *testing.T, payload []byte) string {
	t.Helper()
	var tagged struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &tagged); err != nil {
		t.Fatalf("Recorded payload is not valid JSON: %v", err)
	}
	return tagged.Type
}

func decodeState(t *testing.T, payload []byte) network.StateEnvelope {
	t.Helper()
	var env network.StateEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("Failed to decode state envelope: %v", err)
	}
	return env
}

func newTestSession(id string) *session.Session {
	return session.NewSession(id, "name-"+id, &MockConnection{})
}

func newTestRoom(b Broadcaster, g game.Game, maxPlayers int, onFinish func(models.GameRecord)) (*Room, *session.Session) {
	creator := newTestSession("creator")
	r := NewRoom("room-1", "counter", g, maxPlayers, 2, creator, b, onFinish)
	return r, creator
}

func TestRoom_MembersFollowJoinOrder(t *testing.T) {
	b := &MockBroadcaster{}
	r, _ := newTestRoom(b, game.NewCounter(), 4, nil)

	for _, id := range []string{"p2", "p3", "p4"} {
		if err := r.Join(newTestSession(id)); err != nil {
			t.Fatalf("Join %s failed: %v", id, err)
		}
	}

	got := r.MemberIDs()
	want := []string{"creator", "p2", "p3", "p4"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d members, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Member %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	snap := decodeState(t, b.payloads[len(b.payloads)-1])
	for i := range want {
		if snap.Players[i].PlayerID != want[i] {
			t.Errorf("Snapshot player %d: expected %s, got %s", i, want[i], snap.Players[i].PlayerID)
		}
	}
}

func TestRoom_JoinFull(t *testing.T) {
	b := &MockBroadcaster{}
	r, _ := newTestRoom(b, game.NewCounter(), 2, nil)

	if err := r.Join(newTestSession("p2")); err != nil {
		t.Fatalf("Join should succeed below capacity: %v", err)
	}

	extra := newTestSession("p3")
	if err := r.Join(extra); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
	if extra.RoomID() != "" {
		t.Error("Rejected player must not keep a room reference")
	}
	if r.MemberCount() != 2 {
		t.Errorf("Expected 2 members after rejected join, got %d", r.MemberCount())
	}
}

func TestRoom_StartsWhenReadinessUnanimous(t *testing.T) {
	b := &MockBroadcaster{}
	r, creator := newTestRoom(b, game.NewCounter(), 4, nil)
	p2 := newTestSession("p2")
	r.Join(p2)

	if err := r.SetReady(creator.ID, true); err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if r.Phase() != PhaseLobby {
		t.Fatal("Room must not start before readiness is unanimous")
	}

	b.reset()
	if err := r.SetReady(p2.ID, true); err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if r.Phase() != PhaseInProgress {
		t.Fatalf("Expected InProgress, got %v", r.Phase())
	}

	if len(b.payloads) != 1 {
		t.Fatalf("Expected 1 broadcast on start, got %d", len(b.payloads))
	}
	snap := decodeState(t, b.payloads[0])
	if snap.Phase != "InProgress" {
		t.Errorf("Expected phase InProgress, got %q", snap.Phase)
	}
	if snap.Game == nil {
		t.Error("Start snapshot should carry the initial game state")
	}
	if len(b.targets[0]) != 2 {
		t.Errorf("Start snapshot should reach both members, got %v", b.targets[0])
	}

	// a second ready toggle must not re-fire the transition
	if err := r.SetReady(creator.ID, true); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SetReady after start should fail with ErrInvalidState, got %v", err)
	}
}

func TestRoom_UnreadyBlocksStart(t *testing.T) {
	b := &MockBroadcaster{}
	r, creator := newTestRoom(b, game.NewCounter(), 4, nil)
	p2 := newTestSession("p2")
	r.Join(p2)

	r.SetReady(creator.ID, true)
	r.SetReady(p2.ID, false)
	r.SetReady(p2.ID, true)

	if r.Phase() != PhaseInProgress {
		t.Errorf("Expected InProgress once everyone is ready again, got %v", r.Phase())
	}
}

func TestRoom_ActionInLobbyFails(t *testing.T) {
	b := &MockBroadcaster{}
	r, creator := newTestRoom(b, game.NewCounter(), 4, nil)

	b.reset()
	err := r.ApplyAction(creator.ID, "increment", nil)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState, got %v", err)
	}
	if len(b.payloads) != 0 {
		t.Error("A rejected action must not be broadcast")
	}
	if snap := r.Snapshot(); snap.Game != nil {
		t.Error("Game state must stay untouched by a rejected action")
	}
}

func TestRoom_ActionFlowAndCompletion(t *testing.T) {
	b := &MockBroadcaster{}
	var finished []models.GameRecord
	r, creator := newTestRoom(b, &game.Counter{Target: 2}, 4, func(rec models.GameRecord) {
		finished = append(finished, rec)
	})
	p2 := newTestSession("p2")
	r.Join(p2)
	r.SetReady(creator.ID, true)
	r.SetReady(p2.ID, true)

	b.reset()
	if err := r.ApplyAction(creator.ID, "increment", nil); err != nil {
		t.Fatalf("First action failed: %v", err)
	}
	if len(b.payloads) != 1 {
		t.Fatalf("Expected 1 snapshot after first action, got %d", len(b.payloads))
	}

	b.reset()
	if err := r.ApplyAction(p2.ID, "increment", nil); err != nil {
		t.Fatalf("Final action failed: %v", err)
	}
	if r.Phase() != PhaseFinished {
		t.Fatalf("Expected Finished, got %v", r.Phase())
	}

	// result snapshot first, terminal snapshot second, same delivery order
	if len(b.payloads) != 2 {
		t.Fatalf("Expected 2 snapshots on completion, got %d", len(b.payloads))
	}
	if snap := decodeState(t, b.payloads[0]); snap.Phase != "InProgress" {
		t.Errorf("First snapshot should still be InProgress, got %q", snap.Phase)
	}
	terminal := decodeState(t, b.payloads[1])
	if terminal.Phase != "Finished" {
		t.Errorf("Terminal snapshot should be Finished, got %q", terminal.Phase)
	}
	if terminal.Reason != ReasonComplete {
		t.Errorf("Expected reason complete, got %q", terminal.Reason)
	}

	if len(finished) != 1 {
		t.Fatalf("Expected 1 finish record, got %d", len(finished))
	}
	if finished[0].Reason != ReasonComplete {
		t.Errorf("Record reason should be complete, got %q", finished[0].Reason)
	}

	if err := r.ApplyAction(creator.ID, "increment", nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Actions after Finished should fail with ErrInvalidState, got %v", err)
	}
}

func TestRoom_InvalidActionRejectedForActorOnly(t *testing.T) {
	b := &MockBroadcaster{}
	r, creator := newTestRoom(b, game.NewCounter(), 4, nil)
	p2 := newTestSession("p2")
	r.Join(p2)
	r.SetReady(creator.ID, true)
	r.SetReady(p2.ID, true)

	b.reset()
	err := r.ApplyAction(creator.ID, "decrement", nil)
	if !errors.Is(err, game.ErrInvalidAction) {
		t.Fatalf("Expected ErrInvalidAction, got %v", err)
	}
	if len(b.payloads) != 0 {
		t.Error("A rejected action must not be broadcast")
	}
}

func TestRoom_LeaveBroadcastsLeftThenState(t *testing.T) {
	b := &MockBroadcaster{}
	r, _ := newTestRoom(b, game.NewCounter(), 4, nil)
	p2 := newTestSession("p2")
	p3 := newTestSession("p3")
	r.Join(p2)
	r.Join(p3)

	b.reset()
	empty, err := r.Leave(p2.ID)
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if empty {
		t.Fatal("Room with remaining members is not empty")
	}
	if p2.RoomID() != "" {
		t.Error("Leaving player must lose the room reference")
	}

	if len(b.payloads) != 2 {
		t.Fatalf("Expected left + state broadcasts, got %d", len(b.payloads))
	}
	if typ := envelopeType(t, b.payloads[0]); typ != network.TypeLeft {
		t.Errorf("First broadcast should be left, got %q", typ)
	}
	if typ := envelopeType(t, b.payloads[1]); typ != network.TypeState {
		t.Errorf("Second broadcast should be state, got %q", typ)
	}
	for _, targets := range b.targets {
		if len(targets) != 2 {
			t.Errorf("Broadcast should reach the 2 remaining members, got %v", targets)
		}
	}
}

func TestRoom_AbandonedBelowMinimumMembership(t *testing.T) {
	b := &MockBroadcaster{}
	var finished []models.GameRecord
	r, creator := newTestRoom(b, game.NewCounter(), 4, func(rec models.GameRecord) {
		finished = append(finished, rec)
	})
	p2 := newTestSession("p2")
	r.Join(p2)
	r.SetReady(creator.ID, true)
	r.SetReady(p2.ID, true)

	b.reset()
	if _, err := r.Leave(p2.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	if r.Phase() != PhaseFinished {
		t.Fatalf("Expected Finished after abandonment, got %v", r.Phase())
	}
	terminal := decodeState(t, b.payloads[len(b.payloads)-1])
	if terminal.Reason != ReasonAbandoned {
		t.Errorf("Expected reason abandoned, got %q", terminal.Reason)
	}
	if len(finished) != 1 || finished[0].Reason != ReasonAbandoned {
		t.Errorf("Expected one abandoned record, got %+v", finished)
	}
}

func TestRoom_LeaveLastMember(t *testing.T) {
	b := &MockBroadcaster{}
	r, creator := newTestRoom(b, game.NewCounter(), 4, nil)

	b.reset()
	empty, err := r.Leave(creator.ID)
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if !empty {
		t.Error("Room should report empty after its last member leaves")
	}
	if len(b.payloads) != 0 {
		t.Error("Nothing should be broadcast to an empty room")
	}

	if _, err := r.Leave(creator.ID); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("Leaving twice should fail with ErrNotInRoom, got %v", err)
	}
}
