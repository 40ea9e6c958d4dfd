package dto

import (
	"taskboard/internal/models/task"
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      task.Status   `json:"status"`
	Priority    task.Priority `json:"priority"`
	AssignedTo  *uuid.UUID    `json:"assignedTo"`
}

type UpdateTaskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      task.Status   `json:"status"`
	Priority    task.Priority `json:"priority"`
	AssignedTo  *uuid.UUID    `json:"assignedTo"`
	// последняя версия задачи, которую видел клиент
	LastModifiedAt *time.Time `json:"lastModifiedAt,omitempty"`
}

type DragDropRequest struct {
	NewStatus      task.Status `json:"newStatus"`
	LastModifiedAt *time.Time  `json:"lastModifiedAt,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
}
