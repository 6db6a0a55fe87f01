package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luan-gomesb/triviagame/internal/service"
)

// lobbyWith registers the given players in room "lobby" and returns the
// registry-backed tracker.
func lobbyWith(t *testing.T, ids ...string) (*service.Registry, *service.RoundTracker) {
	t.Helper()
	registry := service.NewRegistry()
	for _, id := range ids {
		_, err := registry.AddPlayer(id, "player-"+id, "lobby")
		require.NoError(t, err)
	}
	return registry, service.NewRoundTracker(registry)
}

func TestRoundTracker_SubmissionWithoutRound(t *testing.T) {
	_, tracker := lobbyWith(t, "a")

	_, err := tracker.RecordSubmission("lobby", "a")

	assert.True(t, errors.Is(err, service.ErrNoActiveRound))
}

func TestRoundTracker_RoundOverWhenAllSubmit(t *testing.T) {
	_, tracker := lobbyWith(t, "a", "b")
	tracker.StartRound("lobby", "42")

	over, err := tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)
	assert.False(t, over, "round must not be over with one of two answers in")

	over, err = tracker.RecordSubmission("lobby", "b")
	require.NoError(t, err)
	assert.True(t, over, "round must be over once every player has answered")
}

func TestRoundTracker_RepeatSubmissionDoesNotDoubleCount(t *testing.T) {
	_, tracker := lobbyWith(t, "a", "b")
	tracker.StartRound("lobby", "42")

	over, err := tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)
	assert.False(t, over)

	// The same player answering again is idempotent.
	over, err = tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)
	assert.False(t, over)
}

func TestRoundTracker_LiveDenominator(t *testing.T) {
	registry, tracker := lobbyWith(t, "a", "b")
	tracker.StartRound("lobby", "42")

	_, err := tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)
	over, err := tracker.RecordSubmission("lobby", "b")
	require.NoError(t, err)
	require.True(t, over)

	// A player joining after round-over raises the denominator again; the
	// earlier signal stands, later submissions see the live room size.
	_, err = registry.AddPlayer("c", "player-c", "lobby")
	require.NoError(t, err)

	over, err = tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)
	assert.False(t, over)

	over, err = tracker.RecordSubmission("lobby", "c")
	require.NoError(t, err)
	assert.True(t, over)
}

func TestRoundTracker_StartRoundSupersedesActiveRound(t *testing.T) {
	_, tracker := lobbyWith(t, "a", "b")
	tracker.StartRound("lobby", "first")
	_, err := tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)

	// A new question mid-round resets the submitted set.
	tracker.StartRound("lobby", "second")

	over, err := tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)
	assert.False(t, over)
	over, err = tracker.RecordSubmission("lobby", "b")
	require.NoError(t, err)
	assert.True(t, over)

	answer, err := tracker.RevealAnswer("lobby")
	require.NoError(t, err)
	assert.Equal(t, "second", answer)
}

func TestRoundTracker_RevealEndsRound(t *testing.T) {
	_, tracker := lobbyWith(t, "a")
	tracker.StartRound("lobby", "42")

	answer, err := tracker.RevealAnswer("lobby")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)

	// Back to Idle: no further reveals or submissions.
	_, err = tracker.RevealAnswer("lobby")
	assert.True(t, errors.Is(err, service.ErrNoActiveRound))
	_, err = tracker.RecordSubmission("lobby", "a")
	assert.True(t, errors.Is(err, service.ErrNoActiveRound))
}

func TestRoundTracker_RevealWithoutRound(t *testing.T) {
	_, tracker := lobbyWith(t, "a")

	_, err := tracker.RevealAnswer("lobby")

	assert.True(t, errors.Is(err, service.ErrNoActiveRound))
}

func TestRoundTracker_DropPlayerPrunesSubmission(t *testing.T) {
	registry, tracker := lobbyWith(t, "a", "b", "c")
	tracker.StartRound("lobby", "42")

	_, err := tracker.RecordSubmission("lobby", "a")
	require.NoError(t, err)

	// Player a leaves mid-round; their submission must not count toward
	// round-over for the remaining two.
	_, ok := registry.RemovePlayer("a")
	require.True(t, ok)
	tracker.DropPlayer("lobby", "a")

	over, err := tracker.RecordSubmission("lobby", "b")
	require.NoError(t, err)
	assert.False(t, over)
	over, err = tracker.RecordSubmission("lobby", "c")
	require.NoError(t, err)
	assert.True(t, over)
}

func TestRoundTracker_ClearRoom(t *testing.T) {
	_, tracker := lobbyWith(t, "a")
	tracker.StartRound("lobby", "42")

	tracker.ClearRoom("lobby")

	_, err := tracker.RevealAnswer("lobby")
	assert.True(t, errors.Is(err, service.ErrNoActiveRound))
}
