package service

import (
	"context"
	"taskboard/internal/models/action"
	"taskboard/internal/models/task"
	"taskboard/internal/models/user"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(context.Context, *task.Task) error
	Update(context.Context, *task.Task) error
	GetByID(context.Context, uuid.UUID) (*task.Task, error)
	GetByTitle(context.Context, string) (*task.Task, error)
	GetAll(context.Context) ([]*task.Task, error)
	GetActive(context.Context) ([]*task.Task, error)
	Delete(context.Context, uuid.UUID) error
}

type ActionRepository interface {
	Append(context.Context, *action.Action) error
	GetRecent(context.Context, int) ([]*action.Action, error)
}

type UserRepository interface {
	Create(context.Context, *user.User) error
	GetByID(context.Context, uuid.UUID) (*user.User, error)
	GetByUsername(context.Context, string) (*user.User, error)
	// GetAll обязан возвращать пользователей в стабильном порядке
	GetAll(context.Context) ([]*user.User, error)
}

// EventPublisher - канал рассылки событий подключённым клиентам.
// Передаётся сервису при сборке, а не через глобальное состояние
type EventPublisher interface {
	Publish(event string, payload any)
}
