package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/infrastructure/websocket"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
	logger    logger.Logger
}

// NewWebSocketHandler accepts handshakes from allowedOrigins; "*" or an
// empty list admits any origin.
func NewWebSocketHandler(wsManager *ws.Manager, allowedOrigins []string, log logger.Logger) *WebSocketHandler {
	allowAll := len(allowedOrigins) == 0
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		origins[o] = struct{}{}
	}

	return &WebSocketHandler{
		wsManager: wsManager,
		logger:    log,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// HandleWebSocket subscribes the caller to xp.updated events.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	profileID, err := getProfileID(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", "profileId", profileID, "error", err)
		return nil
	}

	client := ws.NewClient(profileID, conn)
	if !h.wsManager.Add(client) {
		_ = conn.Close()
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
