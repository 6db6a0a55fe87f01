package service

import "errors"

var (
	ErrNameTaken      = errors.New("that display name is already taken in this room")
	ErrPlayerNotFound = errors.New("no player registered for this connection")
	ErrInvalidPlayer  = errors.New("player name and room are required")
	ErrNoActiveRound  = errors.New("no question is currently active in this room")
)
