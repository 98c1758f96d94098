package main

import (
	"encoding/json"
	"log"
	"time"
)

// WSMessage represents a message from the client
type WSMessage struct {
	Action         string          `json:"action"`
	RoomID         string          `json:"room_id,omitempty"`
	Nickname       string          `json:"nickname,omitempty"`
	Verb           string          `json:"verb,omitempty"` // kill | heal | investigate
	TargetPlayerID string          `json:"target_player_id,omitempty"`
	Text           string          `json:"text,omitempty"`
	SignalType     string          `json:"signal_type,omitempty"` // offer | answer | ice
	SignalData     json.RawMessage `json:"data,omitempty"`
}

// Event is the outbound envelope. Type matches the wire event name,
// Data is the event-specific payload.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventSink delivers events to a single player. The hub implements it
// over websocket connections; tests substitute a recording sink.
type EventSink interface {
	Send(playerID int64, e Event)
}

// PlayerInfo is the roster entry shared in broadcasts. Role is only
// filled in where the receiver is allowed to see it (own role, or
// reveal on elimination / game end).
type PlayerInfo struct {
	PlayerID int64  `json:"player_id"`
	Nickname string `json:"nickname"`
	Alive    bool   `json:"alive"`
	IsHost   bool   `json:"is_host"`
	Role     string `json:"role,omitempty"`
}

type PlayerJoinedData struct {
	Player  PlayerInfo   `json:"player"`
	Players []PlayerInfo `json:"players"`
	Total   int          `json:"total"`
}

type PlayerLeftData struct {
	PlayerID int64        `json:"player_id"`
	Nickname string       `json:"nickname"`
	Players  []PlayerInfo `json:"players"`
	Total    int          `json:"total"`
}

type RoleAssignedData struct {
	Role     string `json:"role"`
	RoleName string `json:"role_name"`
}

type GameStartedData struct {
	Phase   string       `json:"phase"`
	Round   int          `json:"round"`
	Message string       `json:"message"`
	Players []PlayerInfo `json:"players"`
}

type PhaseChangeData struct {
	Phase    string       `json:"phase"`
	Round    int          `json:"round"`
	Message  string       `json:"message"`
	KilledID int64        `json:"killed_id,omitempty"` // set on night -> day when someone died
	Killed   string       `json:"killed,omitempty"`
	Players  []PlayerInfo `json:"players"`
}

type NightOutcomeData struct {
	KilledID       int64  `json:"killed_id,omitempty"`
	KilledNickname string `json:"killed_nickname,omitempty"`
	Saved          bool   `json:"saved"`
	Message        string `json:"message"`
}

type InvestigationResultData struct {
	TargetID       int64  `json:"target_id"`
	TargetNickname string `json:"target_nickname"`
	IsMafia        bool   `json:"is_mafia"`
}

type ActionFeedbackData struct {
	Message string `json:"message"`
}

type VoteCastData struct {
	Voter      string `json:"voter"`
	Voted      string `json:"voted"`
	VotesCount int    `json:"votes_count"`
	TotalAlive int    `json:"total_alive"`
}

type DayOutcomeData struct {
	ExecutedID       int64  `json:"executed_id,omitempty"`
	ExecutedNickname string `json:"executed_nickname,omitempty"`
	ExecutedRole     string `json:"executed_role,omitempty"`
	Message          string `json:"message"`
}

type GameEndedData struct {
	Winner  string       `json:"winner"` // "mafia" or "villagers"
	Message string       `json:"message"`
	Players []PlayerInfo `json:"players"`
}

type PhaseTimeData struct {
	Phase     string `json:"phase"`
	Remaining int    `json:"remaining"` // seconds
	Total     int    `json:"total"`
}

type ChatMessageData struct {
	From    string    `json:"from"`
	Text    string    `json:"text"`
	Ts      time.Time `json:"ts"`
	Channel string    `json:"channel"` // public | faction
}

type NarratorData struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type VoiceSignalData struct {
	FromID     int64           `json:"from_id"`
	SignalType string          `json:"signal_type"`
	Data       json.RawMessage `json:"data"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Rejection reason codes, sent back on the error event.
const (
	ErrRoomNotFound   = "room_not_found"
	ErrRoomFull       = "room_full"
	ErrAlreadyInRoom  = "already_in_room"
	ErrNotInRoom      = "not_in_room"
	ErrNotHost        = "not_host"
	ErrTooFewPlayers  = "too_few_players"
	ErrAlreadyStarted = "already_started"
	ErrWrongPhase     = "wrong_phase"
	ErrWrongRole      = "wrong_role"
	ErrDeadPlayer     = "dead_player"
	ErrInvalidTarget  = "invalid_target"
	ErrBadRequest     = "bad_request"
)

// GameError carries a reason code back to the submitting player.
// No state is mutated on the paths that return one.
type GameError struct {
	Code    string
	Message string
}

func (e *GameError) Error() string { return e.Message }

func reject(code, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// sendError reports a rejected action to a single player.
func sendError(sink EventSink, playerID int64, err error) {
	if err == nil {
		return
	}
	ge, ok := err.(*GameError)
	if !ok {
		ge = &GameError{Code: ErrBadRequest, Message: err.Error()}
	}
	log.Printf("Action rejected for player %d: [%s] %s", playerID, ge.Code, ge.Message)
	sink.Send(playerID, Event{Type: "error", Data: ErrorData{Code: ge.Code, Message: ge.Message}})
}
