package ws

import (
	"context"
	"encoding/json"
	"sync"

	"taskboard/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client - одно подключение к доске
type Client struct {
	ID       uuid.UUID
	Username string
	conn     *websocket.Conn
}

// Event - кадр, уходящий клиентам
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub рассылает события всем подключённым клиентам. Доска одна,
// комнат нет: каждое событие получают все.
// Доставка best-effort: без подтверждений, повторов и гарантий порядка
type Hub struct {
	clients    map[uuid.UUID]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Run - основной цикл, останавливается по контексту
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Hub: Остановка, закрытие всех подключений")
			h.closeAllClients()
			close(h.done)
			return
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case event := <-h.broadcast:
			h.handleBroadcast(event)
		}
	}
}

func (h *Hub) Wait() {
	<-h.done
}

// Publish реализует service.EventPublisher.
// Если буфер рассылки переполнен, событие отбрасывается:
// мутация никогда не ждёт медленных подписчиков
func (h *Hub) Publish(event string, payload any) {
	select {
	case h.broadcast <- Event{Event: event, Payload: payload}:
	default:
		logger.Warn("Hub: Буфер рассылки переполнен, событие отброшено",
			zap.String("event", event))
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	logger.Info("Hub: Клиент подключён",
		zap.String("client_id", client.ID.String()),
		zap.String("username", client.Username))
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		client.conn.Close()
		logger.Info("Hub: Клиент отключён",
			zap.String("client_id", client.ID.String()),
			zap.String("username", client.Username))
	}
}

func (h *Hub) handleBroadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Hub: Ошибка сериализации события", err,
			zap.String("event", event.Event))
		return
	}

	for _, client := range h.clients {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warn("Hub: Ошибка отправки клиенту",
				zap.String("client_id", client.ID.String()),
				zap.Error(err))
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		client.conn.Close()
	}
	h.clients = make(map[uuid.UUID]*Client)
}
