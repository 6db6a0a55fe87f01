package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luan-gomesb/triviagame/internal/service"
)

func TestRegistry_AddPlayer_Success(t *testing.T) {
	registry := service.NewRegistry()

	player, err := registry.AddPlayer("conn-1", "Alice", "lobby")

	require.NoError(t, err)
	require.NotNil(t, player)
	assert.Equal(t, "conn-1", player.ID)
	assert.Equal(t, "Alice", player.PlayerName)
	assert.Equal(t, "lobby", player.Room)

	// The player is visible in subsequent room queries.
	players := registry.ListPlayers("lobby")
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].PlayerName)
}

func TestRegistry_AddPlayer_TrimsWhitespace(t *testing.T) {
	registry := service.NewRegistry()

	player, err := registry.AddPlayer("conn-1", "  Alice  ", " lobby ")

	require.NoError(t, err)
	assert.Equal(t, "Alice", player.PlayerName)
	assert.Equal(t, "lobby", player.Room)
}

func TestRegistry_AddPlayer_EmptyFields(t *testing.T) {
	registry := service.NewRegistry()

	_, err := registry.AddPlayer("conn-1", "   ", "lobby")
	assert.True(t, errors.Is(err, service.ErrInvalidPlayer))

	_, err = registry.AddPlayer("conn-1", "Alice", "")
	assert.True(t, errors.Is(err, service.ErrInvalidPlayer))
}

func TestRegistry_AddPlayer_NameTaken(t *testing.T) {
	registry := service.NewRegistry()

	_, err := registry.AddPlayer("conn-a", "Alice", "lobby")
	require.NoError(t, err)

	// Same name in the same room fails, regardless of case or padding.
	_, err = registry.AddPlayer("conn-b", "Alice", "lobby")
	assert.True(t, errors.Is(err, service.ErrNameTaken))
	_, err = registry.AddPlayer("conn-b", " alice ", "lobby")
	assert.True(t, errors.Is(err, service.ErrNameTaken))

	// A different name succeeds.
	_, err = registry.AddPlayer("conn-b", "Alicia", "lobby")
	assert.NoError(t, err)

	// Names are only unique per room, not globally.
	_, err = registry.AddPlayer("conn-c", "Alice", "kitchen")
	assert.NoError(t, err)
}

func TestRegistry_GetPlayer_NotFound(t *testing.T) {
	registry := service.NewRegistry()

	_, err := registry.GetPlayer("nope")

	assert.True(t, errors.Is(err, service.ErrPlayerNotFound))
}

func TestRegistry_ListPlayers_RegistrationOrder(t *testing.T) {
	registry := service.NewRegistry()
	names := []string{"Charlie", "Alice", "Bob"}
	for i, name := range names {
		_, err := registry.AddPlayer(string(rune('a'+i)), name, "lobby")
		require.NoError(t, err)
	}

	players := registry.ListPlayers("lobby")

	require.Len(t, players, 3)
	for i, name := range names {
		assert.Equal(t, name, players[i].PlayerName)
	}

	assert.Empty(t, registry.ListPlayers("unknown-room"))
}

func TestRegistry_RemovePlayer_Idempotent(t *testing.T) {
	registry := service.NewRegistry()
	_, err := registry.AddPlayer("conn-a", "Alice", "lobby")
	require.NoError(t, err)

	removed, ok := registry.RemovePlayer("conn-a")
	require.True(t, ok)
	assert.Equal(t, "Alice", removed.PlayerName)

	// A second removal has no effect.
	removed, ok = registry.RemovePlayer("conn-a")
	assert.False(t, ok)
	assert.Nil(t, removed)

	// No orphaned entries survive.
	assert.Empty(t, registry.ListPlayers("lobby"))
	assert.Equal(t, 0, registry.CountPlayers("lobby"))
	_, err = registry.GetPlayer("conn-a")
	assert.True(t, errors.Is(err, service.ErrPlayerNotFound))
}

func TestRegistry_CountPlayers(t *testing.T) {
	registry := service.NewRegistry()
	assert.Equal(t, 0, registry.CountPlayers("lobby"))

	_, _ = registry.AddPlayer("conn-a", "Alice", "lobby")
	_, _ = registry.AddPlayer("conn-b", "Bob", "lobby")
	_, _ = registry.AddPlayer("conn-c", "Carol", "kitchen")

	assert.Equal(t, 2, registry.CountPlayers("lobby"))
	assert.Equal(t, 1, registry.CountPlayers("kitchen"))
}
