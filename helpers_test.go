package main

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// ============================================================================
// Test Helpers
// ============================================================================

// sinkEvent is one delivery captured by the recording sink.
type sinkEvent struct {
	PlayerID int64
	Event    Event
}

// recordingSink captures every event a room emits, in order, so tests
// can assert on exactly who was told what.
type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (rs *recordingSink) Send(playerID int64, e Event) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.events = append(rs.events, sinkEvent{PlayerID: playerID, Event: e})
}

// ofType returns all captured events of the given type.
func (rs *recordingSink) ofType(eventType string) []sinkEvent {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	var out []sinkEvent
	for _, se := range rs.events {
		if se.Event.Type == eventType {
			out = append(out, se)
		}
	}
	return out
}

// forPlayer returns all events of the given type delivered to one player.
func (rs *recordingSink) forPlayer(playerID int64, eventType string) []sinkEvent {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	var out []sinkEvent
	for _, se := range rs.events {
		if se.PlayerID == playerID && se.Event.Type == eventType {
			out = append(out, se)
		}
	}
	return out
}

func (rs *recordingSink) reset() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.events = nil
}

// testDeps builds room dependencies with long phase timers so a timer
// never fires mid-test unless a test wants it to.
func testDeps(sink EventSink) RoomDeps {
	return RoomDeps{
		Sink:          sink,
		NightDuration: time.Hour,
		DayDuration:   time.Hour,
	}
}

// newTestRoom creates a room with n seated players. Player IDs are
// 1..n with nicknames P1..Pn; player 1 is the host.
func newTestRoom(t *testing.T, n int) (*Room, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	room := newRoom("test-room", 1, RoomOptions{Name: "Test", Capacity: 16, Public: true}, testDeps(sink))
	seatPlayers(t, room, n)
	return room, sink
}

func seatPlayers(t *testing.T, room *Room, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		if err := room.Join(int64(i), playerName(i)); err != nil {
			t.Fatalf("Join player %d: %v", i, err)
		}
	}
}

func playerName(i int) string {
	return fmt.Sprintf("P%d", i)
}

// startWithRoles starts the game and then overrides the shuffled
// assignment with a fixed one, so resolution tests are deterministic.
// Players not named in the map become villagers.
func startWithRoles(t *testing.T, room *Room, roles map[int64]Role) {
	t.Helper()
	if err := room.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	room.mu.Lock()
	for id, s := range room.players {
		if role, ok := roles[id]; ok {
			s.Role = role
		} else {
			s.Role = RoleVillager
		}
	}
	room.mu.Unlock()
}

// aliveCount reports how many players are still alive.
func aliveCount(room *Room) int {
	room.mu.Lock()
	defer room.mu.Unlock()
	n := 0
	for _, s := range room.players {
		if s.Alive {
			n++
		}
	}
	return n
}

// isAlive reports one player's alive flag.
func isAlive(room *Room, playerID int64) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	s, ok := room.players[playerID]
	return ok && s.Alive
}

// assertErrCode fails unless err is a GameError with the given code.
func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	ge, ok := err.(*GameError)
	if !ok {
		t.Fatalf("expected *GameError, got %T: %v", err, err)
	}
	if ge.Code != code {
		t.Fatalf("expected error code %s, got %s (%s)", code, ge.Code, ge.Message)
	}
}
