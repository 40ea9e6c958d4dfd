package action

import (
	"time"

	"github.com/google/uuid"
)

// Action - неизменяемая запись журнала активности.
// Username намеренно денормализован: это снимок на момент события,
// при чтении он не перечитывается из таблицы пользователей.
type Action struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Type      Type       `json:"type" db:"type"`
	TaskID    *uuid.UUID `json:"taskId" db:"task_id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Username  string     `json:"username" db:"username"`
	Details   string     `json:"details" db:"details"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
}

type Type string

const TypeTaskCreated Type = "TASK_CREATED"
const TypeTaskUpdated Type = "TASK_UPDATED"
const TypeTaskDeleted Type = "TASK_DELETED"
const TypeTaskAssigned Type = "TASK_ASSIGNED"
const TypeTaskStatusChanged Type = "TASK_STATUS_CHANGED"
const TypeTaskDragged Type = "TASK_DRAGGED"

// размер ленты активности, отдаваемой клиентам
const FeedSize = 20
