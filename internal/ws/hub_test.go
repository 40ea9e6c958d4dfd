package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/user"
	"taskboard/internal/service"
	"taskboard/internal/ws"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*user.User, error) {
	if token != "good" {
		return nil, errors.New("невалидный токен")
	}
	return &user.User{ID: uuid.New(), Username: "alice"}, nil
}

var _ ws.TokenVerifier = (*fakeVerifier)(nil)

func startHub(t *testing.T) (*ws.Hub, *httptest.Server) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		hub.Wait()
	})

	handler := ws.NewHandler(hub, &fakeVerifier{}, "*")
	server := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(server.Close)

	return hub, server
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// TestHub_EventDelivery тестирует доставку события подключённому клиенту
func TestHub_EventDelivery(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "good")

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(service.EventTaskDeleted, uuid.New())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame ws.Event
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, service.EventTaskDeleted, frame.Event)
	assert.NotEmpty(t, frame.Payload)
}

// TestHub_Broadcast тестирует рассылку всем клиентам
func TestHub_Broadcast(t *testing.T) {
	hub, server := startHub(t)
	first := dial(t, server, "good")
	second := dial(t, server, "good")

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	hub.Publish(service.EventActionLogged, []string{"a", "b"})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var frame ws.Event
		require.NoError(t, json.Unmarshal(data, &frame))
		assert.Equal(t, service.EventActionLogged, frame.Event)
	}
}

// TestHub_ClientDisconnect тестирует отписку при разрыве соединения
func TestHub_ClientDisconnect(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "good")

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

// TestHandler_RejectsBadToken тестирует отказ в подключении без валидного токена
func TestHandler_RejectsBadToken(t *testing.T) {
	_, server := startHub(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?token=bad"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if conn != nil {
		conn.Close()
	}
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// TestHub_PublishWithoutClients тестирует публикацию в пустой хаб
func TestHub_PublishWithoutClients(t *testing.T) {
	hub, _ := startHub(t)

	// событие просто уходит в никуда, без паник и блокировок
	hub.Publish(service.EventTaskAdded, map[string]string{"title": "Design"})
	assert.Equal(t, 0, hub.ClientCount())
}
