package service

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/luan-gomesb/triviagame/internal/domain"
)

// Registry owns the connection id -> player mapping. It is the only
// component allowed to hold player records; everyone else looks players up
// by connection id. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*domain.Player // connection id -> player
	rooms   map[string][]string       // room -> connection ids in registration order
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*domain.Player),
		rooms:   make(map[string][]string),
	}
}

// AddPlayer registers a player for the given connection. Name and room are
// trimmed; the name must be unique within the room (case-insensitive).
// The uniqueness check and the insert happen under one lock, so two
// concurrent joins can never both claim the same name.
func (r *Registry) AddPlayer(connID, playerName, room string) (*domain.Player, error) {
	playerName = strings.TrimSpace(playerName)
	room = strings.TrimSpace(room)
	if playerName == "" || room == "" {
		return nil, ErrInvalidPlayer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lower := strings.ToLower(playerName)
	for _, id := range r.rooms[room] {
		if strings.ToLower(r.players[id].PlayerName) == lower {
			return nil, ErrNameTaken
		}
	}

	player := &domain.Player{ID: connID, PlayerName: playerName, Room: room}
	r.players[connID] = player
	r.rooms[room] = append(r.rooms[room], connID)

	logrus.WithFields(logrus.Fields{
		"component": "registry",
		"conn_id":   connID,
		"player":    playerName,
		"room":      room,
	}).Info("Player registered")
	return player, nil
}

// GetPlayer looks up the player registered for a connection.
func (r *Registry) GetPlayer(connID string) (*domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	player, ok := r.players[connID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// ListPlayers returns the players of a room in registration order. An
// unknown room yields an empty slice.
func (r *Registry) ListPlayers(room string) []domain.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.rooms[room]
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, *r.players[id])
	}
	return players
}

// CountPlayers returns the number of players currently in a room.
func (r *Registry) CountPlayers(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// RemovePlayer unregisters a connection and returns the removed player.
// Removing an unknown connection is a no-op returning (nil, false).
func (r *Registry) RemovePlayer(connID string) (*domain.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[connID]
	if !ok {
		return nil, false
	}
	delete(r.players, connID)

	ids := r.rooms[player.Room]
	for i, id := range ids {
		if id == connID {
			r.rooms[player.Room] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(r.rooms[player.Room]) == 0 {
		delete(r.rooms, player.Room)
	}

	logrus.WithFields(logrus.Fields{
		"component": "registry",
		"conn_id":   connID,
		"player":    player.PlayerName,
		"room":      player.Room,
	}).Info("Player removed")
	return player, true
}
