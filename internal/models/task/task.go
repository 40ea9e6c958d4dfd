package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	Status         Status     `json:"status" db:"status"`
	Priority       Priority   `json:"priority" db:"priority"`
	AssignedTo     *uuid.UUID `json:"assignedTo" db:"assigned_to"`
	LastModifiedAt time.Time  `json:"lastModifiedAt" db:"last_modified_at"`
	LastModifiedBy *uuid.UUID `json:"lastModifiedBy" db:"last_modified_by"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

type Status string
type Priority string

const StatusTodo Status = "Todo"
const StatusInProgress Status = "In Progress"
const StatusDone Status = "Done"

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"

// колонки доски совпадают со статусами, поэтому название задачи
// не может совпадать с названием колонки
func IsColumnName(title string) bool {
	switch Status(title) {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// активные задачи участвуют в подсчёте нагрузки при smart-assign
func (t *Task) IsActive() bool {
	return t.Status == StatusTodo || t.Status == StatusInProgress
}
