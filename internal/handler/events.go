package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Monchel-Emmy/SmartRent360-backend/internal/domain"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/events"
	"github.com/Monchel-Emmy/SmartRent360-backend/internal/security/auth"
)

// EventsHandler streams lifecycle events to admin dashboards over WebSocket
type EventsHandler struct {
	broker         *events.Broker
	tokens         *auth.TokenManager
	logger         *slog.Logger
	allowedOrigins []string
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(broker *events.Broker, tokens *auth.TokenManager, logger *slog.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		broker:         broker,
		tokens:         tokens,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// upgrader is initialized per-request to use the instance's allowed origins
func (h *EventsHandler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no origin
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/events. Browsers cannot set headers on WebSocket
// connections, so the token is also accepted as a query parameter. Only
// admins may subscribe.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		if extracted, err := auth.ExtractToken(r.Header.Get("Authorization")); err == nil {
			tokenString = extracted
		}
	}
	if tokenString == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateToken(tokenString)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}
	if claims.Role != domain.RoleAdmin {
		http.Error(w, "insufficient permissions", http.StatusForbidden)
		return
	}

	upgrader := h.getUpgrader()
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer ws.Close()

	feed, unsubscribe := h.broker.Subscribe()
	defer unsubscribe()

	h.logger.Info("event feed subscribed", slog.String("admin_id", claims.UserID))

	// Drain reads so close frames and pongs are processed; the feed is
	// one-directional.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-feed:
			if !ok {
				return
			}
			if err := ws.WriteJSON(event); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.logger.Debug("event feed closed", slog.String("admin_id", claims.UserID))
				}
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
