package main

import "testing"

// ============================================================================
// Chat Tests
// ============================================================================

func TestPublicChatWhileWaiting(t *testing.T) {
	room, sink := newTestRoom(t, 3)
	sink.reset()

	if err := room.SendChat(1, ChannelPublic, "hello all"); err != nil {
		t.Fatalf("SendChat: %v", err)
	}

	msgs := sink.ofType("chat_message")
	if len(msgs) != 3 {
		t.Fatalf("chat_message deliveries = %d, want 3 (whole room)", len(msgs))
	}
	data := msgs[0].Event.Data.(ChatMessageData)
	if data.From != "P1" || data.Text != "hello all" || data.Channel != ChannelPublic {
		t.Errorf("message = %+v", data)
	}
}

func TestPublicChatBlockedAtNight(t *testing.T) {
	room, _ := newTestRoom(t, 4)
	startWithRoles(t, room, map[int64]Role{1: RoleMafia})

	assertErrCode(t, room.SendChat(2, ChannelPublic, "who did it"), ErrWrongPhase)
}

func TestPublicChatDuringDay(t *testing.T) {
	room, sink := dayRoom(t, 4, map[int64]Role{1: RoleMafia})

	if err := room.SendChat(2, ChannelPublic, "I suspect P1"); err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if got := len(sink.ofType("chat_message")); got != 4 {
		t.Errorf("chat_message deliveries = %d, want 4", got)
	}
}

func TestFactionChatReachesOnlyLivingMafia(t *testing.T) {
	room, sink := newTestRoom(t, 6)
	startWithRoles(t, room, map[int64]Role{1: RoleMafia, 2: RoleMafia})
	sink.reset()

	if err := room.SendChat(1, ChannelFaction, "take out P5"); err != nil {
		t.Fatalf("SendChat: %v", err)
	}

	msgs := sink.ofType("mafia_chat_message")
	if len(msgs) != 2 {
		t.Fatalf("mafia_chat_message deliveries = %d, want 2", len(msgs))
	}
	for _, se := range msgs {
		if se.PlayerID != 1 && se.PlayerID != 2 {
			t.Errorf("faction message leaked to player %d", se.PlayerID)
		}
	}

	// A dead mafioso drops off the distribution list.
	room.mu.Lock()
	room.players[2].Alive = false
	room.mu.Unlock()
	sink.reset()

	if err := room.SendChat(1, ChannelFaction, "alone now"); err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	msgs = sink.ofType("mafia_chat_message")
	if len(msgs) != 1 || msgs[0].PlayerID != 1 {
		t.Errorf("deliveries after death = %v, want only player 1", msgs)
	}
}

func TestFactionChatRejections(t *testing.T) {
	room, _ := newTestRoom(t, 6)
	startWithRoles(t, room, map[int64]Role{1: RoleMafia, 2: RoleMafia})

	// Non-mafia sender.
	assertErrCode(t, room.SendChat(3, ChannelFaction, "let me in"), ErrWrongRole)

	// Mafia chat is night-only.
	room.mu.Lock()
	room.resolveNightLocked()
	room.mu.Unlock()
	assertErrCode(t, room.SendChat(1, ChannelFaction, "psst"), ErrWrongPhase)
}

func TestChatInputValidation(t *testing.T) {
	room, _ := newTestRoom(t, 4)

	assertErrCode(t, room.SendChat(1, ChannelPublic, "   "), ErrBadRequest)
	assertErrCode(t, room.SendChat(1, "whisper", "hm"), ErrBadRequest)
	assertErrCode(t, room.SendChat(99, ChannelPublic, "hi"), ErrNotInRoom)
}

func TestDeadPlayersCannotChat(t *testing.T) {
	room, _ := dayRoom(t, 4, map[int64]Role{1: RoleMafia})

	room.mu.Lock()
	room.players[3].Alive = false
	room.mu.Unlock()

	assertErrCode(t, room.SendChat(3, ChannelPublic, "boo"), ErrDeadPlayer)
}
