package main

import (
	"fmt"
	"log"
)

// SubmitDayVote records a public elimination vote. Any living player
// may vote for any living player, themselves included. Re-voting
// before resolution overwrites the prior choice.
func (r *Room) SubmitDayVote(voterID, targetID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseDay {
		return reject(ErrWrongPhase, "Voting only allowed during day phase")
	}
	voter, err := r.livingSessionLocked(voterID)
	if err != nil {
		return err
	}
	target, ok := r.players[targetID]
	if !ok {
		return reject(ErrInvalidTarget, "Target not found")
	}
	if !target.Alive {
		return reject(ErrInvalidTarget, "Cannot vote for a dead player")
	}

	r.votes[voterID] = targetID
	voter.Acted = true

	aliveCount := 0
	for _, s := range r.players {
		if s.Alive {
			aliveCount++
		}
	}

	log.Printf("Room %s: %s voted to eliminate %s (%d/%d)", r.ID, voter.Nickname, target.Nickname, len(r.votes), aliveCount)
	DebugLog("SubmitDayVote", "Room %s: %s -> %s", r.ID, voter.Nickname, target.Nickname)

	r.broadcastLocked(Event{Type: "vote_cast", Data: VoteCastData{
		Voter:      voter.Nickname,
		Voted:      target.Nickname,
		VotesCount: len(r.votes),
		TotalAlive: aliveCount,
	}})

	if r.dayCompleteLocked() {
		r.resolveDayLocked()
	}
	return nil
}

// dayCompleteLocked reports whether every living player has voted.
func (r *Room) dayCompleteLocked() bool {
	for _, s := range r.players {
		if !s.Alive {
			continue
		}
		if _, ok := r.votes[s.PlayerID]; !ok {
			return false
		}
	}
	return true
}

// resolveDayLocked tallies the votes. A strict plurality eliminates
// that player and reveals their role; a tie at the top, or no votes
// at all, eliminates no one. Votes from players no longer alive at
// resolution time are discarded.
func (r *Room) resolveDayLocked() {
	r.disarmTimerLocked()

	voteCounts := make(map[int64]int)
	for voterID, targetID := range r.votes {
		if voter, ok := r.players[voterID]; !ok || !voter.Alive {
			continue
		}
		voteCounts[targetID]++
	}

	var eliminatedID int64
	maxVotes := 0
	tie := false
	for targetID, count := range voteCounts {
		if count > maxVotes {
			maxVotes = count
			eliminatedID = targetID
			tie = false
		} else if count == maxVotes {
			tie = true
		}
	}

	var eliminatedName, eliminatedRole string
	if eliminatedID != 0 && !tie {
		if target, ok := r.players[eliminatedID]; ok && target.Alive {
			target.Alive = false
			eliminatedName = target.Nickname
			eliminatedRole = string(target.Role)
		} else {
			eliminatedID = 0
		}
	} else {
		eliminatedID = 0
	}

	message := "No one was executed."
	if eliminatedID != 0 {
		message = fmt.Sprintf("%s was executed by vote. They were a %s.", eliminatedName, roleNames[Role(eliminatedRole)])
		r.history = append(r.history, fmt.Sprintf("Day %d: the village executed %s, a %s.", r.round, eliminatedName, eliminatedRole))
	} else {
		r.history = append(r.history, fmt.Sprintf("Day %d: the vote was deadlocked, nobody was executed.", r.round))
	}

	log.Printf("Room %s: day %d resolved (%s)", r.ID, r.round, message)
	LogRoomState(r.ID, "after day resolution")

	r.broadcastLocked(Event{Type: "day_outcome", Data: DayOutcomeData{
		ExecutedID:       eliminatedID,
		ExecutedNickname: eliminatedName,
		ExecutedRole:     eliminatedRole,
		Message:          message,
	}})

	r.votes = make(map[int64]int64)

	if winner := r.checkWinLocked(); winner != "" {
		r.endGameLocked(winner)
		return
	}

	r.transitionToNightLocked()

	if eliminatedID != 0 {
		r.narrateLocked()
	}
}
