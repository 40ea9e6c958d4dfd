package handlers

import (
	"context"
	"taskboard/internal/models/action"
	"taskboard/internal/models/task"
	"taskboard/internal/models/user"
	"taskboard/internal/service"
	"time"

	"github.com/google/uuid"
)

type BoardService interface {
	GetTasks(ctx context.Context) ([]*service.TaskView, error)
	CreateTask(ctx context.Context, actor *user.User, in service.CreateTaskInput) (*service.TaskView, error)
	UpdateTask(ctx context.Context, actor *user.User, id uuid.UUID, in service.UpdateTaskInput) (*service.TaskView, error)
	DeleteTask(ctx context.Context, actor *user.User, id uuid.UUID) error
	DragDrop(ctx context.Context, actor *user.User, id uuid.UUID, newStatus task.Status, watermark *time.Time) (*service.TaskView, error)
	SmartAssign(ctx context.Context, actor *user.User, id uuid.UUID) (*service.TaskView, error)
	GetRecentActions(ctx context.Context) ([]*action.Action, error)
}

type AuthService interface {
	Register(ctx context.Context, username, password string) (*user.User, string, error)
	Login(ctx context.Context, username, password string) (*user.User, string, error)
}
