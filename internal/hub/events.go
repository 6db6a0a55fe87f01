package hub

import (
	"encoding/json"

	"github.com/luan-gomesb/triviagame/internal/domain"
)

// Inbound event names (client -> server). Disconnect is transport-level
// and has no envelope.
const (
	EventJoin        = "join"
	EventSendMessage = "sendMessage"
	EventGetQuestion = "getQuestion"
	EventSendAnswer  = "sendAnswer"
	EventGetAnswer   = "getAnswer"
)

// Outbound event names (server -> client).
const (
	EventAck           = "ack"
	EventMessage       = "message"
	EventRoom          = "room"
	EventQuestion      = "question"
	EventAnswer        = "answer"
	EventCorrectAnswer = "correctAnswer"
)

// inboundEnvelope is one client event. A nonzero ID requests an ack.
type inboundEnvelope struct {
	Event string          `json:"event"`
	ID    int64           `json:"id,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// outboundEnvelope wraps every server emission.
type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type joinPayload struct {
	PlayerName string `json:"playerName"`
	Room       string `json:"room"`
}

type textPayload struct {
	Text string `json:"text"`
}

// ackPayload answers the inbound envelope with the matching id. Error is
// empty on success.
type ackPayload struct {
	ID    int64  `json:"id"`
	Error string `json:"error,omitempty"`
}

type roomPayload struct {
	Room    string          `json:"room"`
	Players []domain.Player `json:"players"`
}

type questionPayload struct {
	PlayerName string   `json:"playerName"`
	Question   string   `json:"question"`
	Answers    []string `json:"answers"`
}

type answerPayload struct {
	domain.Message
	IsRoundOver bool `json:"isRoundOver"`
}
