package service

import (
	"time"

	"taskboard/internal/models/task"
	"taskboard/internal/models/user"

	"github.com/google/uuid"
)

// AssigneeRef - ссылка на исполнителя с развёрнутым именем
type AssigneeRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// TaskView - задача в том виде, в котором она уходит клиентам:
// и в HTTP-ответах, и в событиях рассылки
type TaskView struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Status         task.Status   `json:"status"`
	Priority       task.Priority `json:"priority"`
	AssignedTo     *AssigneeRef  `json:"assignedTo"`
	LastModifiedAt time.Time     `json:"lastModifiedAt"`
	LastModifiedBy *uuid.UUID    `json:"lastModifiedBy"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func newTaskView(t *task.Task, assignee *user.User) *TaskView {
	view := &TaskView{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		LastModifiedAt: t.LastModifiedAt,
		LastModifiedBy: t.LastModifiedBy,
		CreatedAt:      t.CreatedAt,
	}
	if assignee != nil {
		view.AssignedTo = &AssigneeRef{ID: assignee.ID, Username: assignee.Username}
	}
	return view
}
