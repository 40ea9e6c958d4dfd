package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"taskboard/internal/logger"
	"taskboard/internal/models/user"

	"go.uber.org/zap"
)

const userKey contextKey = "acting_user"

// TokenVerifier проверяет bearer-токен и возвращает действующего пользователя
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*user.User, error)
}

// Protect пропускает дальше только запросы с валидным токеном
// и кладёт пользователя в контекст запроса
func Protect(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				logger.Warn("HTTP: Запрос без токена",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, "Not authorized, no token")
				return
			}

			actor, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn("HTTP: Невалидный токен",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", r.RemoteAddr),
					zap.Error(err))
				unauthorized(w, "Not authorized, token failed")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) *user.User {
	if u, ok := ctx.Value(userKey).(*user.User); ok {
		return u
	}
	return nil
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"message": message})
}
