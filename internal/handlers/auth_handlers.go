package handlers

import (
	"encoding/json"
	"net/http"
	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"time"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
	}
}

func (s *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	registered, token, err := s.AuthService.Register(r.Context(), request.Username, request.Password)
	if err != nil {
		handleServiceError(w, err, "register")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("username", registered.Username),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.AuthResponse{
		ID:       registered.ID,
		Username: registered.Username,
		Token:    token,
	})
}

func (s *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	loggedIn, token, err := s.AuthService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		handleServiceError(w, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Пользователь вошёл",
		zap.String("username", loggedIn.Username),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.AuthResponse{
		ID:       loggedIn.ID,
		Username: loggedIn.Username,
		Token:    token,
	})
}
