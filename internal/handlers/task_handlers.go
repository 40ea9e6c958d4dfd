package handlers

import (
	"encoding/json"
	"net/http"
	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	BoardService BoardService
}

func NewTaskHandler(boardService BoardService) TaskHandler {
	return TaskHandler{
		BoardService: boardService,
	}
}

func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	tasks, err := s.BoardService.GetTasks(r.Context())
	if err != nil {
		handleServiceError(w, err, "get_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, tasks)
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := middleware.GetUser(r.Context())

	created, err := s.BoardService.CreateTask(r.Context(), actor, service.CreateTaskInput{
		Title:       request.Title,
		Description: request.Description,
		Status:      request.Status,
		Priority:    request.Priority,
		AssignedTo:  request.AssignedTo,
	})
	if err != nil {
		handleServiceError(w, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, created)
}

func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest

	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := middleware.GetUser(r.Context())

	updated, err := s.BoardService.UpdateTask(r.Context(), actor, id, service.UpdateTaskInput{
		Title:          request.Title,
		Description:    request.Description,
		Status:         request.Status,
		Priority:       request.Priority,
		AssignedTo:     request.AssignedTo,
		LastModifiedAt: request.LastModifiedAt,
	})
	if err != nil {
		handleServiceError(w, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, updated)
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	actor := middleware.GetUser(r.Context())

	if err := s.BoardService.DeleteTask(r.Context(), actor, id); err != nil {
		handleServiceError(w, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithError(w, http.StatusOK, "Task removed")
}

func (s *TaskHandler) DragDropTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.DragDropRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := middleware.GetUser(r.Context())

	updated, err := s.BoardService.DragDrop(r.Context(), actor, id, request.NewStatus, request.LastModifiedAt)
	if err != nil {
		handleServiceError(w, err, "drag_drop_task")
		return
	}

	logger.Info("HTTP_OUT: Задача перенесена",
		zap.String("task_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, updated)
}

func (s *TaskHandler) SmartAssignTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskIDFromRequest(w, r)
	if !ok {
		return
	}

	actor := middleware.GetUser(r.Context())

	updated, err := s.BoardService.SmartAssign(r.Context(), actor, id)
	if err != nil {
		handleServiceError(w, err, "smart_assign_task")
		return
	}

	logger.Info("HTTP_OUT: Задача назначена",
		zap.String("task_id", updated.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, updated)
}

func (s *TaskHandler) GetActions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	actions, err := s.BoardService.GetRecentActions(r.Context())
	if err != nil {
		handleServiceError(w, err, "get_actions")
		return
	}

	logger.Info("HTTP_OUT: Лента действий получена",
		zap.Int("count", len(actions)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, actions)
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")
	responseWithFields(w, http.StatusOK,
		toPayload("service", "taskboard"),
		toPayload("status", "ok"),
	)
}

func taskIDFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid task id")
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("error", "nil id"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Invalid task id")
		return uuid.Nil, false
	}

	return id, true
}
