package handler

import (
	"net/http"
	"strings"

	"github.com/IANDYI/pregnancy-service/internal/adapters/middleware"
	"github.com/IANDYI/pregnancy-service/internal/adapters/websocket"
	"github.com/rs/zerolog"
)

// WebSocketHandler handles clinician WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	authMiddleware *middleware.AuthMiddleware
	logger         zerolog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *websocket.Hub, authMiddleware *middleware.AuthMiddleware, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		authMiddleware: authMiddleware,
		logger:         logger.With().Str("component", "websocket_handler").Logger(),
	}
}

// HandleWebSocket handles GET /ws
// The token comes from the Authorization header or the token query parameter,
// since browsers cannot set headers on a WebSocket handshake
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := middleware.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		h.logger.Info().Msg("websocket connection rejected: missing token")
		http.Error(w, "unauthorized: missing token", http.StatusUnauthorized)
		return
	}

	if h.authMiddleware == nil {
		http.Error(w, "unauthorized: invalid token", http.StatusUnauthorized)
		return
	}
	id, err := h.authMiddleware.Authenticate(tokenString)
	if err != nil {
		h.logger.Info().Err(err).Msg("websocket connection rejected: invalid token")
		http.Error(w, "unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request
		h.logger.Warn().Err(err).Str("user_id", id.UserID).Msg("websocket upgrade failed")
		return
	}

	email := id.Email
	if email == "" {
		email = "unknown"
	}

	client := websocket.NewClient(h.hub, conn, websocket.ClientInfo{
		UserID: id.UserID,
		Role:   id.Role,
		Email:  email,
		Name:   id.DisplayName(),
	})
	h.hub.Register(client)

	gauge := WebSocketConnections.WithLabelValues(strings.ToLower(id.Role))
	gauge.Inc()
	go func() {
		<-client.Done()
		gauge.Dec()
	}()

	client.Start()
}
