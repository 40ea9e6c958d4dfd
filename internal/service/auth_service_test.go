package service_test

import (
	"context"
	"testing"
	"time"

	userstorage "taskboard/internal/repository/user/inmemory"
	"taskboard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() *service.AuthService {
	return service.NewAuthService(userstorage.NewUserStorage(), "test-secret", time.Hour)
}

// TestAuthService_Register тестирует регистрацию
func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success - token verifies back to the same user", func(t *testing.T) {
		svc := newAuthService()

		created, token, err := svc.Register(ctx, "alice", "secret123")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.Equal(t, "alice", created.Username)
		assert.NotEqual(t, "secret123", created.PasswordHash)

		verified, err := svc.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, created.ID, verified.ID)
	})

	t.Run("error - empty fields", func(t *testing.T) {
		svc := newAuthService()

		for _, pair := range [][2]string{{"", "secret123"}, {"alice", ""}, {"   ", "secret123"}} {
			_, _, err := svc.Register(ctx, pair[0], pair[1])
			busErr, ok := service.AsBusinessError(err)
			require.True(t, ok)
			assert.Equal(t, service.CodeValidation, busErr.Code)
			assert.Equal(t, "Please enter all fields", busErr.Message)
		}
	})

	t.Run("error - duplicate username", func(t *testing.T) {
		svc := newAuthService()

		_, _, err := svc.Register(ctx, "alice", "secret123")
		require.NoError(t, err)

		_, _, err = svc.Register(ctx, "alice", "another")
		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, service.CodeUserExists, busErr.Code)
	})
}

// TestAuthService_Login тестирует вход
func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()

	registered, _, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		loggedIn, token, err := svc.Login(ctx, "alice", "secret123")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.Equal(t, registered.ID, loggedIn.ID)
	})

	t.Run("error - wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice", "wrong")
		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, service.CodeInvalidCredentials, busErr.Code)
	})

	t.Run("error - unknown user", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody", "secret123")
		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok)
		// тот же код, что и при неверном пароле - без утечки информации
		assert.Equal(t, service.CodeInvalidCredentials, busErr.Code)
	})
}

// TestAuthService_Verify тестирует проверку токена
func TestAuthService_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("error - garbage token", func(t *testing.T) {
		svc := newAuthService()

		_, err := svc.Verify(ctx, "not.a.token")
		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - token signed with different secret", func(t *testing.T) {
		issuer := newAuthService()
		verifier := service.NewAuthService(userstorage.NewUserStorage(), "other-secret", time.Hour)

		_, token, err := issuer.Register(ctx, "alice", "secret123")
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - expired token", func(t *testing.T) {
		users := userstorage.NewUserStorage()
		issuer := service.NewAuthService(users, "test-secret", -time.Minute)
		verifier := service.NewAuthService(users, "test-secret", time.Hour)

		_, token, err := issuer.Register(ctx, "alice", "secret123")
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, token)
		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})

	t.Run("error - user no longer exists", func(t *testing.T) {
		issuer := newAuthService()
		verifier := service.NewAuthService(userstorage.NewUserStorage(), "test-secret", time.Hour)

		_, token, err := issuer.Register(ctx, "alice", "secret123")
		require.NoError(t, err)

		// тот же секрет, но в хранилище второго сервиса пользователя нет
		_, err = verifier.Verify(ctx, token)
		busErr, ok := service.AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, service.CodeUnauthorized, busErr.Code)
	})
}
