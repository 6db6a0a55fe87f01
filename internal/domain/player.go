// Package domain defines the data structures shared across the application.
package domain

// Player represents a connected participant of a room.
type Player struct {
	ID         string `json:"id"`         // connection id assigned by the transport layer
	PlayerName string `json:"playerName"` // display name, unique within the room
	Room       string `json:"room"`
}
