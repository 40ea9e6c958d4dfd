package ws

import (
	"context"
	"net/http"

	"taskboard/internal/logger"
	"taskboard/internal/models/user"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TokenVerifier проверяет bearer-токен и возвращает пользователя
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*user.User, error)
}

type Handler struct {
	hub      *Hub
	verifier TokenVerifier
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, verifier TokenVerifier, allowedOrigin string) *Handler {
	return &Handler{
		hub:      hub,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// ServeWS - GET /ws?token=...
// браузерный websocket не умеет выставлять заголовки,
// поэтому токен приходит в query-параметре
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	actor, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		logger.Warn("WS: Отказ в подключении", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WS: Ошибка апгрейда соединения", zap.Error(err))
		return
	}

	client := &Client{
		ID:       uuid.New(),
		Username: actor.Username,
		conn:     conn,
	}
	h.hub.Register(client)

	// клиенты ничего не присылают, читаем только чтобы заметить разрыв
	go h.readLoop(client)
}

func (h *Handler) readLoop(client *Client) {
	defer h.hub.Unregister(client)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
