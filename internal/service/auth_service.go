package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/user"
	repo "taskboard/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AuthService выпускает и проверяет bearer-токены (HS256)
type AuthService struct {
	users  UserRepository
	secret []byte
	ttl    time.Duration
}

func NewAuthService(users UserRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*user.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", NewValidationError("Please enter all fields")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("хеширование пароля: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return nil, "", NewUserExists()
		}
		return nil, "", fmt.Errorf("создание пользователя: %w", err)
	}

	token, err := s.issueToken(newUser)
	if err != nil {
		return nil, "", fmt.Errorf("выпуск токена: %w", err)
	}

	logger.Info("Service: Зарегистрирован пользователь", zap.String("username", username))
	return newUser, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*user.User, string, error) {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", NewInvalidCredentials()
		}
		return nil, "", fmt.Errorf("получение пользователя: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
		logger.Warn("Service: Неверный пароль", zap.String("username", username))
		return nil, "", NewInvalidCredentials()
	}

	token, err := s.issueToken(existing)
	if err != nil {
		return nil, "", fmt.Errorf("выпуск токена: %w", err)
	}
	return existing, token, nil
}

// Verify проверяет токен и возвращает действующего пользователя
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*user.User, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &jwt.RegisteredClaims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, NewUnauthorized()
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, NewUnauthorized()
	}

	actor, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewUnauthorized()
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return actor, nil
}

func (s *AuthService) issueToken(u *user.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
