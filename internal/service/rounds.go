package service

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Roster reports the live size of a room. Satisfied by *Registry.
type Roster interface {
	CountPlayers(room string) int
}

// roundState tracks one room's current question.
type roundState struct {
	submitted map[string]struct{} // connection ids that answered this round
	answer    string
	active    bool
}

// RoundTracker is the per-room round state machine: Idle until a question is
// started, Active while submissions are accepted, back to Idle after reveal.
// The round-over check is computed against the roster's live room size, so
// it stays correct as players join or leave mid-round. Safe for concurrent
// use.
type RoundTracker struct {
	mu     sync.Mutex
	rounds map[string]*roundState
	roster Roster
}

// NewRoundTracker creates a RoundTracker backed by the given roster.
func NewRoundTracker(roster Roster) *RoundTracker {
	if roster == nil {
		panic("Roster cannot be nil for RoundTracker")
	}
	return &RoundTracker{
		rounds: make(map[string]*roundState),
		roster: roster,
	}
}

// StartRound begins a new round for the room, clearing any prior
// submissions and storing the pending correct answer. Starting a question
// always supersedes the previous one, even mid-round.
func (t *RoundTracker) StartRound(room, correctAnswer string) {
	t.mu.Lock()
	t.rounds[room] = &roundState{
		submitted: make(map[string]struct{}),
		answer:    correctAnswer,
		active:    true,
	}
	t.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"component": "rounds",
		"room":      room,
	}).Info("Round started")
}

// RecordSubmission marks a player's answer for the room's active round.
// Repeat submissions do not double-count. The returned flag is true iff the
// submission count now equals the room's current player count. Submitting
// while no round is active fails with ErrNoActiveRound.
func (t *RoundTracker) RecordSubmission(room, playerID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.rounds[room]
	if !ok || !state.active {
		return false, ErrNoActiveRound
	}
	state.submitted[playerID] = struct{}{}

	isRoundOver := len(state.submitted) == t.roster.CountPlayers(room)
	return isRoundOver, nil
}

// RevealAnswer returns the active round's correct answer and ends the
// round, transitioning the room back to Idle.
func (t *RoundTracker) RevealAnswer(room string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.rounds[room]
	if !ok || !state.active {
		return "", ErrNoActiveRound
	}
	state.active = false
	answer := state.answer
	state.answer = ""
	return answer, nil
}

// DropPlayer removes a player's submission from the room's round, keeping
// the submitted set a subset of the room's current players. A departure
// never signals round-over; only submissions do.
func (t *RoundTracker) DropPlayer(room, playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if state, ok := t.rounds[room]; ok {
		delete(state.submitted, playerID)
	}
}

// ClearRoom discards a room's round state once the room has emptied.
func (t *RoundTracker) ClearRoom(room string) {
	t.mu.Lock()
	delete(t.rounds, room)
	t.mu.Unlock()
}
