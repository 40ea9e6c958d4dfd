package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/models/user"
	"taskboard/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

type fakeVerifier struct {
	actor *user.User
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.actor, nil
}

var _ middleware.TokenVerifier = (*fakeVerifier)(nil)

// TestProtect тестирует защиту маршрутов токеном
func TestProtect(t *testing.T) {
	alice := &user.User{ID: uuid.New(), Username: "alice"}

	echoActor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.GetUser(r.Context())
		require.NotNil(t, actor)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(actor.Username))
	})

	tests := []struct {
		name            string
		authorization   string
		verifier        *fakeVerifier
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "no header",
			authorization:   "",
			verifier:        &fakeVerifier{actor: alice},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, no token",
		},
		{
			name:            "wrong scheme",
			authorization:   "Basic abc",
			verifier:        &fakeVerifier{actor: alice},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, no token",
		},
		{
			name:            "empty token",
			authorization:   "Bearer ",
			verifier:        &fakeVerifier{actor: alice},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, no token",
		},
		{
			name:            "verification failed",
			authorization:   "Bearer bad",
			verifier:        &fakeVerifier{err: service.NewUnauthorized()},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, token failed",
		},
		{
			name:            "verifier error",
			authorization:   "Bearer token",
			verifier:        &fakeVerifier{err: errors.New("хранилище недоступно")},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Not authorized, token failed",
		},
		{
			name:           "valid token",
			authorization:  "Bearer good",
			verifier:       &fakeVerifier{actor: alice},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.authorization != "" {
				req.Header.Set("Authorization", tt.authorization)
			}

			middleware.Protect(tt.verifier)(echoActor).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			if tt.expectedMessage != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedMessage, body["message"])
			} else {
				assert.Equal(t, "alice", rec.Body.String())
			}
		})
	}
}

// TestGetUser тестирует чтение пользователя из контекста
func TestGetUser(t *testing.T) {
	assert.Nil(t, middleware.GetUser(context.Background()))
}
