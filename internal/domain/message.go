package domain

import "time"

// AdminSender is the sender name used for server-generated messages.
const AdminSender = "Admin"

// Message is a displayable chat payload.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Time   int64  `json:"time"` // unix milliseconds
}

// NewMessage formats a (sender, text) pair into a displayable message
// stamped with the current time.
func NewMessage(sender, text string) Message {
	return Message{
		Sender: sender,
		Text:   text,
		Time:   time.Now().UnixMilli(),
	}
}
