// Package websocket upgrades HTTP requests into Hub connections.
package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/luan-gomesb/triviagame/internal/hub"
)

// Handler upgrades connections and hands them to the Hub. Room membership
// is negotiated afterwards over the socket via the join event.
type Handler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
}

// NewHandler creates a Handler bound to the given Hub.
func NewHandler(h *hub.Hub) *Handler {
	if h == nil {
		panic("Hub cannot be nil for websocket Handler")
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// TODO: restrict origins once the frontend host is settled
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		hub: h,
	}
}

// HandleConnection upgrades the request and starts the client pumps.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logrus.WithField("component", "ws_handler").WithError(err).Error("Failed to upgrade connection")
		return
	}

	client := hub.NewClient(h.hub, conn)
	logCtx := logrus.WithFields(logrus.Fields{
		"component": "ws_handler",
		"conn_id":   client.ID(),
	})

	if !h.hub.QueueConnect(client) {
		logCtx.Error("Hub message channel full, rejecting connection")
		client.CloseConn()
		return
	}

	client.Run()
	logCtx.Info("Connection upgraded, client pumps started")
}
