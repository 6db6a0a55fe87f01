// Package hub routes client events: it owns the set of live connections,
// resolves senders through the registry, drives the round tracker, and
// fans emissions out to the right audience.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/luan-gomesb/triviagame/internal/domain"
	"github.com/luan-gomesb/triviagame/internal/service"
	"github.com/luan-gomesb/triviagame/internal/trivia"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Upper bound on one question fetch from the content provider.
	fetchTimeout = 15 * time.Second
)

// hubMessage types carried on the Hub's internal channel.
const (
	msgConnect    = "connect"
	msgDisconnect = "disconnect"
	msgEvent      = "event"
	msgRoundReady = "roundReady"
)

// hubMessage is one unit of work for the Hub loop.
type hubMessage struct {
	Type   string
	Client *Client
	Raw    []byte // inbound envelope bytes, msgEvent only

	// msgRoundReady: room context captured when the fetch started.
	Room       string
	PlayerName string
	ConnID     string
	AckID      int64
	Round      *trivia.Round
	Err        error
}

// Hub coordinates all connections. Every registry and tracker mutation
// happens inline on the Run loop, so concurrent handlers can never observe
// a torn intermediate state; question fetches are the one async operation
// and re-enter the loop via msgRoundReady.
type Hub struct {
	messageChan chan hubMessage
	quit        chan struct{}

	// conns holds every live connection, joined or not. Touched only by
	// the Run loop.
	conns map[string]*Client

	registry *service.Registry
	tracker  *service.RoundTracker
	source   trivia.Source
}

// NewHub creates a Hub wired to its collaborators.
func NewHub(registry *service.Registry, tracker *service.RoundTracker, source trivia.Source) *Hub {
	if registry == nil {
		panic("Registry cannot be nil for Hub")
	}
	if tracker == nil {
		panic("RoundTracker cannot be nil for Hub")
	}
	if source == nil {
		panic("trivia.Source cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan hubMessage, 512),
		quit:        make(chan struct{}),
		conns:       make(map[string]*Client),
		registry:    registry,
		tracker:     tracker,
		source:      source,
	}
}

// Run is the Hub's event loop. It should run in a dedicated goroutine and
// exits after Stop.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case msgConnect:
				h.handleConnect(msg.Client)
			case msgDisconnect:
				h.handleDisconnect(msg.Client)
			case msgEvent:
				h.handleEvent(msg.Client, msg.Raw)
			case msgRoundReady:
				h.handleRoundReady(msg)
			default:
				log.Warnf("Received unknown message type: %s", msg.Type)
			}
		case <-h.quit:
			log.Info("Hub is shutting down...")
			return
		}
	}
}

// Stop terminates the Run loop.
func (h *Hub) Stop() {
	close(h.quit)
}

// QueueMessage puts a message on the Hub's processing queue without
// blocking. Returns false if the queue is full.
func (h *Hub) QueueMessage(msg hubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"component":    "hub",
			"message_type": msg.Type,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

// QueueConnect registers a freshly upgraded connection with the Hub.
func (h *Hub) QueueConnect(client *Client) bool {
	return h.QueueMessage(hubMessage{Type: msgConnect, Client: client})
}

func (h *Hub) handleConnect(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	h.conns[client.ID()] = client
	logrus.WithFields(logrus.Fields{
		"component": "hub",
		"conn_id":   client.ID(),
	}).Info("Connection registered")
}

func (h *Hub) handleDisconnect(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	if _, ok := h.conns[client.ID()]; !ok {
		return
	}
	delete(h.conns, client.ID())
	close(client.send)

	logCtx := logrus.WithFields(logrus.Fields{
		"component": "hub",
		"conn_id":   client.ID(),
	})

	player, removed := h.registry.RemovePlayer(client.ID())
	if !removed {
		// The connection never joined a room; nothing to announce.
		logCtx.Debug("Connection closed before join")
		return
	}

	if h.registry.CountPlayers(player.Room) == 0 {
		h.tracker.ClearRoom(player.Room)
	} else {
		h.tracker.DropPlayer(player.Room, player.ID)
	}

	h.broadcastRoom(player.Room, EventMessage,
		domain.NewMessage(domain.AdminSender, fmt.Sprintf("%s has left!", player.PlayerName)), nil)
	h.broadcastRoom(player.Room, EventRoom, roomPayload{
		Room:    player.Room,
		Players: h.registry.ListPlayers(player.Room),
	}, nil)
	logCtx.WithField("room", player.Room).Info("Player departure announced")
}

// handleEvent decodes one inbound envelope and dispatches it. Every failure
// is answered to the sender only; a malformed or out-of-order client never
// causes a room-wide emission.
func (h *Hub) handleEvent(client *Client, raw []byte) {
	var env inboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "hub",
			"conn_id":   client.ID(),
		}).WithError(err).Warn("Dropping malformed event envelope")
		return
	}

	switch env.Event {
	case EventJoin:
		h.handleJoin(client, env)
	case EventSendMessage:
		h.handleSendMessage(client, env)
	case EventGetQuestion:
		h.handleGetQuestion(client, env)
	case EventSendAnswer:
		h.handleSendAnswer(client, env)
	case EventGetAnswer:
		h.handleGetAnswer(client, env)
	default:
		logrus.WithFields(logrus.Fields{
			"component": "hub",
			"conn_id":   client.ID(),
			"event":     env.Event,
		}).Warn("Unknown event")
		h.ack(client, env.ID, fmt.Errorf("unknown event %q", env.Event))
	}
}

func (h *Hub) handleJoin(client *Client, env inboundEnvelope) {
	var payload joinPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		h.ack(client, env.ID, fmt.Errorf("invalid join payload"))
		return
	}

	if _, err := h.registry.GetPlayer(client.ID()); err == nil {
		h.ack(client, env.ID, fmt.Errorf("connection already joined a room"))
		return
	}

	player, err := h.registry.AddPlayer(client.ID(), payload.PlayerName, payload.Room)
	if err != nil {
		h.ack(client, env.ID, err)
		return
	}
	h.ack(client, env.ID, nil)

	h.emit(client, EventMessage, domain.NewMessage(domain.AdminSender, "Welcome!"))
	h.broadcastRoom(player.Room, EventMessage,
		domain.NewMessage(domain.AdminSender, fmt.Sprintf("%s has joined the game!", player.PlayerName)), client)
	h.broadcastRoom(player.Room, EventRoom, roomPayload{
		Room:    player.Room,
		Players: h.registry.ListPlayers(player.Room),
	}, nil)
}

func (h *Hub) handleSendMessage(client *Client, env inboundEnvelope) {
	player, err := h.registry.GetPlayer(client.ID())
	if err != nil {
		h.ack(client, env.ID, err)
		return
	}

	var payload textPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		h.ack(client, env.ID, fmt.Errorf("invalid message payload"))
		return
	}

	h.broadcastRoom(player.Room, EventMessage, domain.NewMessage(player.PlayerName, payload.Text), nil)
	h.ack(client, env.ID, nil)
}

// handleGetQuestion starts an async fetch from the content provider. The
// room context is captured now; the result re-enters the loop as
// msgRoundReady, where the room may have emptied in the meantime.
func (h *Hub) handleGetQuestion(client *Client, env inboundEnvelope) {
	player, err := h.registry.GetPlayer(client.ID())
	if err != nil {
		h.ack(client, env.ID, err)
		return
	}

	ready := hubMessage{
		Type:       msgRoundReady,
		Room:       player.Room,
		PlayerName: player.PlayerName,
		ConnID:     client.ID(),
		AckID:      env.ID,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		ready.Round, ready.Err = h.source.FetchRound(ctx)
		h.QueueMessage(ready)
	}()
}

func (h *Hub) handleRoundReady(msg hubMessage) {
	logCtx := logrus.WithFields(logrus.Fields{
		"component": "hub",
		"room":      msg.Room,
		"player":    msg.PlayerName,
	})

	if msg.Err != nil {
		logCtx.WithError(msg.Err).Error("Question fetch failed")
		if requester, ok := h.conns[msg.ConnID]; ok {
			h.ack(requester, msg.AckID, fmt.Errorf("could not fetch a question, try again"))
		}
		return
	}

	if h.registry.CountPlayers(msg.Room) == 0 {
		// The room emptied while the fetch was pending.
		logCtx.Debug("Dropping question for empty room")
		return
	}

	h.tracker.StartRound(msg.Room, msg.Round.Answer)
	if requester, ok := h.conns[msg.ConnID]; ok {
		h.ack(requester, msg.AckID, nil)
	}
	h.broadcastRoom(msg.Room, EventQuestion, questionPayload{
		PlayerName: msg.PlayerName,
		Question:   msg.Round.Prompt.Question,
		Answers:    msg.Round.Prompt.Answers,
	}, nil)
}

func (h *Hub) handleSendAnswer(client *Client, env inboundEnvelope) {
	player, err := h.registry.GetPlayer(client.ID())
	if err != nil {
		h.ack(client, env.ID, err)
		return
	}

	var payload textPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		h.ack(client, env.ID, fmt.Errorf("invalid answer payload"))
		return
	}

	isRoundOver, err := h.tracker.RecordSubmission(player.Room, player.ID)
	if err != nil {
		h.ack(client, env.ID, err)
		return
	}

	h.broadcastRoom(player.Room, EventAnswer, answerPayload{
		Message:     domain.NewMessage(player.PlayerName, payload.Text),
		IsRoundOver: isRoundOver,
	}, nil)
	h.ack(client, env.ID, nil)
}

func (h *Hub) handleGetAnswer(client *Client, env inboundEnvelope) {
	player, err := h.registry.GetPlayer(client.ID())
	if err != nil {
		h.ack(client, env.ID, err)
		return
	}

	answer, err := h.tracker.RevealAnswer(player.Room)
	if err != nil {
		h.ack(client, env.ID, err)
		return
	}

	h.broadcastRoom(player.Room, EventCorrectAnswer, domain.NewMessage(player.PlayerName, answer), nil)
	h.ack(client, env.ID, nil)
}

// ack answers an inbound envelope on the originating connection only. When
// the client supplied no ack id, errors are just logged.
func (h *Hub) ack(client *Client, id int64, err error) {
	if id == 0 {
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"component": "hub",
				"conn_id":   client.ID(),
			}).WithError(err).Warn("Event rejected (no ack requested)")
		}
		return
	}
	payload := ackPayload{ID: id}
	if err != nil {
		payload.Error = err.Error()
	}
	h.emit(client, EventAck, payload)
}

// emit sends one event to a single client.
func (h *Hub) emit(client *Client, event string, data any) {
	raw, err := json.Marshal(outboundEnvelope{Event: event, Data: data})
	if err != nil {
		logrus.WithField("component", "hub").WithError(err).Error("Failed to marshal outbound event")
		return
	}
	h.enqueue(client, raw)
}

// broadcastRoom sends one event to every registered player of a room,
// optionally excluding one client. Emission to an empty or unknown room is
// a no-op.
func (h *Hub) broadcastRoom(room, event string, data any, exclude *Client) {
	players := h.registry.ListPlayers(room)
	if len(players) == 0 {
		return
	}

	raw, err := json.Marshal(outboundEnvelope{Event: event, Data: data})
	if err != nil {
		logrus.WithField("component", "hub").WithError(err).Error("Failed to marshal broadcast event")
		return
	}

	for _, player := range players {
		client, ok := h.conns[player.ID]
		if !ok || client == exclude {
			continue
		}
		h.enqueue(client, raw)
	}
}

// enqueue hands a frame to the client's write pump without blocking, so a
// single slow client cannot stall the loop.
func (h *Hub) enqueue(client *Client, raw []byte) {
	select {
	case client.send <- raw:
	default:
		logrus.WithFields(logrus.Fields{
			"component": "hub",
			"conn_id":   client.ID(),
		}).Warn("Client send channel full, dropping message")
	}
}
