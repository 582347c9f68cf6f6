package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/tabletennis-scoring/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewers are read-only; origin is enforced by the CORS layer for the API.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams document events to live viewers. Each connection
// joins the room named by the document ID in the path.
type WebSocketHandler struct {
	hub    *events.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *events.Hub, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// ServeRoom returns a handler for /ws/.../{param}.
func (h *WebSocketHandler) ServeRoom(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, err := getIDFromURL(r, param)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied to the client.
			h.logger.Warn("failed to upgrade websocket", slog.String("room", roomID), slog.Any("error", err))
			return
		}

		client := events.NewClient(h.hub, conn, roomID)
		if !h.hub.Join(client) {
			h.logger.Warn("hub stopped, dropping websocket client", slog.String("room", roomID))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()

		h.logger.Debug("websocket client registered", slog.String("room", roomID))
	}
}
