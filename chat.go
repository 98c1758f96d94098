package main

import (
	"log"
	"strings"
	"time"
)

const (
	ChannelPublic  = "public"
	ChannelFaction = "faction"
)

// ChatMessage is an ephemeral broadcast artifact; transcripts live
// only as long as the room.
type ChatMessage struct {
	From    string
	Text    string
	Ts      time.Time
	Channel string
}

// SendChat routes a chat message to its channel. Public chat is open
// to living players while the room waits or during the day; faction
// chat is mafia-only, at night, delivered only to living mafiosi.
// Dead players can read public chat but never send on either channel.
func (r *Room) SendChat(senderID int64, channel, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return reject(ErrBadRequest, "Empty message")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sender, err := r.livingSessionLocked(senderID)
	if err != nil {
		return err
	}

	msg := ChatMessage{From: sender.Nickname, Text: text, Ts: time.Now(), Channel: channel}
	data := ChatMessageData{From: msg.From, Text: msg.Text, Ts: msg.Ts, Channel: msg.Channel}

	switch channel {
	case ChannelPublic:
		if r.phase != PhaseDay && r.phase != PhaseWaiting {
			return reject(ErrWrongPhase, "Public chat only available during day phase")
		}
		r.publicChat = append(r.publicChat, msg)
		r.broadcastLocked(Event{Type: "chat_message", Data: data})

	case ChannelFaction:
		if sender.Role != RoleMafia {
			return reject(ErrWrongRole, "Mafia chat only available for mafia")
		}
		if r.phase != PhaseNight {
			return reject(ErrWrongPhase, "Mafia chat only available at night")
		}
		r.factionChat = append(r.factionChat, msg)
		for _, id := range r.order {
			if s := r.players[id]; s.Role == RoleMafia && s.Alive {
				r.deps.Sink.Send(id, Event{Type: "mafia_chat_message", Data: data})
			}
		}

	default:
		return reject(ErrBadRequest, "Unknown chat channel")
	}

	log.Printf("Room %s: [%s] %s: %s", r.ID, channel, sender.Nickname, text)
	return nil
}
