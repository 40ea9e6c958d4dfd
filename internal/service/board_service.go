package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/action"
	"taskboard/internal/models/task"
	"taskboard/internal/models/user"
	repo "taskboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventTaskAdded = "taskAdded"
const EventTaskUpdated = "taskUpdated"
const EventTaskDeleted = "taskDeleted"
const EventActionLogged = "actionLogged"

// BoardService - конвейер мутаций задач: валидация, правила названий,
// проверка конфликтов, запись в журнал действий и рассылка событий.
// Все зависимости передаются при сборке
type BoardService struct {
	tasks     TaskRepository
	actions   ActionRepository
	users     UserRepository
	publisher EventPublisher
}

func NewBoardService(tasks TaskRepository, actions ActionRepository, users UserRepository, publisher EventPublisher) *BoardService {
	return &BoardService{
		tasks:     tasks,
		actions:   actions,
		users:     users,
		publisher: publisher,
	}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Status      task.Status
	Priority    task.Priority
	AssignedTo  *uuid.UUID
}

type UpdateTaskInput struct {
	Title       string
	Description string
	Status      task.Status
	Priority    task.Priority
	AssignedTo  *uuid.UUID
	// часы клиента: состояние задачи, которое он видел последним
	LastModifiedAt *time.Time
}

func (s *BoardService) GetTasks(ctx context.Context) ([]*TaskView, error) {
	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	views := make([]*TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, s.resolveView(ctx, t))
	}
	return views, nil
}

func (s *BoardService) GetRecentActions(ctx context.Context) ([]*action.Action, error) {
	actions, err := s.actions.GetRecent(ctx, action.FeedSize)
	if err != nil {
		return nil, fmt.Errorf("получение действий: %w", err)
	}
	return actions, nil
}

func validateTitle(title string) (string, *BusinessError) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", NewValidationError("Task title is required", ToDetail("field", "title"))
	}
	if task.IsColumnName(title) {
		return "", NewValidationError("Task title cannot be a column name (Todo, In Progress, Done)",
			ToDetail("field", "title"))
	}
	return title, nil
}

func validateEnums(status task.Status, priority task.Priority) *BusinessError {
	if status != "" && !task.ValidStatus(status) {
		return NewValidationError(fmt.Sprintf("Invalid status %q", status), ToDetail("field", "status"))
	}
	if priority != "" && !task.ValidPriority(priority) {
		return NewValidationError(fmt.Sprintf("Invalid priority %q", priority), ToDetail("field", "priority"))
	}
	return nil
}

func (s *BoardService) CreateTask(ctx context.Context, actor *user.User, in CreateTaskInput) (*TaskView, error) {
	title, busErr := validateTitle(in.Title)
	if busErr != nil {
		return nil, busErr
	}
	if busErr := validateEnums(in.Status, in.Priority); busErr != nil {
		return nil, busErr
	}

	// предварительная проверка уникальности - best-effort,
	// от гонки защищает ограничение в хранилище
	if _, err := s.tasks.GetByTitle(ctx, title); err == nil {
		return nil, NewTitleConflict()
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("проверка уникальности названия: %w", err)
	}

	now := time.Now()
	newTask := &task.Task{
		ID:             uuid.New(),
		Title:          title,
		Description:    in.Description,
		Status:         task.StatusTodo,
		Priority:       task.PriorityMedium,
		AssignedTo:     in.AssignedTo,
		LastModifiedAt: now,
		LastModifiedBy: &actor.ID,
		CreatedAt:      now,
	}
	if in.Status != "" {
		newTask.Status = in.Status
	}
	if in.Priority != "" {
		newTask.Priority = in.Priority
	}

	if err := s.tasks.Create(ctx, newTask); err != nil {
		if errors.Is(err, repo.ErrDuplicateTitle) {
			return nil, NewTitleConflict()
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	view := s.resolveView(ctx, newTask)

	s.logAction(ctx, action.TypeTaskCreated, &newTask.ID, actor,
		fmt.Sprintf("created task %q", newTask.Title))
	s.publisher.Publish(EventTaskAdded, view)

	return view, nil
}

func (s *BoardService) UpdateTask(ctx context.Context, actor *user.User, id uuid.UUID, in UpdateTaskInput) (*TaskView, error) {
	title, busErr := validateTitle(in.Title)
	if busErr != nil {
		return nil, busErr
	}
	if busErr := validateEnums(in.Status, in.Priority); busErr != nil {
		return nil, busErr
	}

	current, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task")
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if title != current.Title {
		existing, err := s.tasks.GetByTitle(ctx, title)
		if err == nil && existing.ID != id {
			return nil, NewTitleConflict()
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("проверка уникальности названия: %w", err)
		}
	}

	if busErr := s.checkWatermark(ctx, current, in.LastModifiedAt); busErr != nil {
		return nil, busErr
	}

	oldStatus := current.Status
	oldAssignedTo := current.AssignedTo

	opts := []task.TaskOption{
		task.WithTitle(title),
		task.WithDescription(in.Description),
		task.WithStatus(in.Status),
		task.WithPriority(in.Priority),
		task.WithAssignee(in.AssignedTo),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(current)
		}
	}
	current.LastModifiedBy = &actor.ID
	current.LastModifiedAt = time.Now()

	if err := s.tasks.Update(ctx, current); err != nil {
		if errors.Is(err, repo.ErrDuplicateTitle) {
			return nil, NewTitleConflict()
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task")
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	view := s.resolveView(ctx, current)

	actionDetails := fmt.Sprintf("updated task %q", current.Title)
	if oldStatus != current.Status {
		actionDetails += fmt.Sprintf(" (status changed from %s to %s)", oldStatus, current.Status)
		s.logAction(ctx, action.TypeTaskStatusChanged, &current.ID, actor,
			fmt.Sprintf("changed status of %q to %q", current.Title, current.Status))
	}
	if !sameAssignee(oldAssignedTo, current.AssignedTo) {
		newAssignee := "unassigned"
		if view.AssignedTo != nil {
			newAssignee = view.AssignedTo.Username
		}
		actionDetails += fmt.Sprintf(" (assigned to %s)", newAssignee)
		s.logAction(ctx, action.TypeTaskAssigned, &current.ID, actor,
			fmt.Sprintf("assigned %q to %s", current.Title, newAssignee))
	}
	s.logAction(ctx, action.TypeTaskUpdated, &current.ID, actor, actionDetails)

	s.publisher.Publish(EventTaskUpdated, view)
	return view, nil
}

func (s *BoardService) DeleteTask(ctx context.Context, actor *user.User, id uuid.UUID) error {
	current, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("Task")
		}
		return fmt.Errorf("получение задачи: %w", err)
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("Task")
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	s.logAction(ctx, action.TypeTaskDeleted, &id, actor,
		fmt.Sprintf("deleted task %q", current.Title))
	s.publisher.Publish(EventTaskDeleted, id)
	return nil
}

// DragDrop переносит задачу в другую колонку. Проверка водяного знака
// здесь та же, что и в полном обновлении, но срабатывает только если
// клиент его прислал
func (s *BoardService) DragDrop(ctx context.Context, actor *user.User, id uuid.UUID, newStatus task.Status, watermark *time.Time) (*TaskView, error) {
	if !task.ValidStatus(newStatus) {
		return nil, NewValidationError(fmt.Sprintf("Invalid status %q", newStatus),
			ToDetail("field", "newStatus"))
	}

	current, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task")
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if busErr := s.checkWatermark(ctx, current, watermark); busErr != nil {
		return nil, busErr
	}

	oldStatus := current.Status
	current.Status = newStatus
	current.LastModifiedBy = &actor.ID
	current.LastModifiedAt = time.Now()

	if err := s.tasks.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	view := s.resolveView(ctx, current)

	s.logAction(ctx, action.TypeTaskDragged, &current.ID, actor,
		fmt.Sprintf("dragged task %q from %q to %q", current.Title, oldStatus, newStatus))
	s.publisher.Publish(EventTaskUpdated, view)

	return view, nil
}

// SmartAssign отдаёт задачу наименее загруженному пользователю.
// Нагрузка - количество активных задач (Todo, In Progress) на исполнителе.
// При равной нагрузке выигрывает первый в порядке обхода репозитория,
// порядок стабилен: по времени регистрации
func (s *BoardService) SmartAssign(ctx context.Context, actor *user.User, id uuid.UUID) (*TaskView, error) {
	current, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task")
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	allUsers, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	if len(allUsers) == 0 {
		return nil, NewNoUsers()
	}

	activeTasks, err := s.tasks.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение активных задач: %w", err)
	}

	counts := make(map[uuid.UUID]int, len(allUsers))
	for _, u := range allUsers {
		counts[u.ID] = 0
	}
	for _, t := range activeTasks {
		if t.AssignedTo == nil {
			continue
		}
		if _, known := counts[*t.AssignedTo]; known {
			counts[*t.AssignedTo]++
		}
	}

	userToAssign := allUsers[0]
	minTasks := counts[userToAssign.ID]
	for _, u := range allUsers[1:] {
		if counts[u.ID] < minTasks {
			minTasks = counts[u.ID]
			userToAssign = u
		}
	}

	oldAssignee := "unassigned"
	if current.AssignedTo != nil {
		if prev, err := s.users.GetByID(ctx, *current.AssignedTo); err == nil {
			oldAssignee = prev.Username
		}
	}

	assigneeID := userToAssign.ID
	current.AssignedTo = &assigneeID
	current.LastModifiedBy = &actor.ID
	current.LastModifiedAt = time.Now()

	if err := s.tasks.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	view := s.resolveView(ctx, current)

	s.logAction(ctx, action.TypeTaskAssigned, &current.ID, actor,
		fmt.Sprintf("smart assigned %q from %s to %s", current.Title, oldAssignee, userToAssign.Username))
	s.publisher.Publish(EventTaskUpdated, view)

	return view, nil
}

// checkWatermark - оптимистическая блокировка: если клиент видел более
// старую версию задачи, мутация не выполняется, клиенту уходит
// актуальное серверное состояние
func (s *BoardService) checkWatermark(ctx context.Context, current *task.Task, watermark *time.Time) *BusinessError {
	if watermark == nil || !watermark.Before(current.LastModifiedAt) {
		return nil
	}

	lastModifier := "Unknown"
	if current.LastModifiedBy != nil {
		if u, err := s.users.GetByID(ctx, *current.LastModifiedBy); err == nil {
			lastModifier = u.Username
		}
	}

	logger.Warn("Service: Конфликт версий задачи",
		zap.String("task_id", current.ID.String()),
		zap.Time("client_watermark", *watermark),
		zap.Time("server_version", current.LastModifiedAt))

	return NewVersionConflict(s.resolveView(ctx, current), lastModifier)
}

// logAction - общий шаг "записать и разослать": одна запись в журнал,
// затем перечитывание последних 20 и рассылка всей ленты целиком.
// Ошибки здесь никогда не прерывают исходную мутацию
func (s *BoardService) logAction(ctx context.Context, actionType action.Type, taskID *uuid.UUID, actor *user.User, details string) {
	entry := &action.Action{
		ID:        uuid.New(),
		Type:      actionType,
		TaskID:    taskID,
		UserID:    actor.ID,
		Username:  actor.Username,
		Details:   details,
		Timestamp: time.Now(),
	}

	if err := s.actions.Append(ctx, entry); err != nil {
		logger.Error("Service: Ошибка записи действия", err,
			zap.String("type", string(actionType)))
		return
	}

	recent, err := s.actions.GetRecent(ctx, action.FeedSize)
	if err != nil {
		logger.Error("Service: Ошибка чтения ленты действий", err)
		return
	}

	s.publisher.Publish(EventActionLogged, recent)
}

func (s *BoardService) resolveView(ctx context.Context, t *task.Task) *TaskView {
	if t.AssignedTo == nil {
		return newTaskView(t, nil)
	}

	assignee, err := s.users.GetByID(ctx, *t.AssignedTo)
	if err != nil {
		logger.Warn("Service: Исполнитель не найден",
			zap.String("task_id", t.ID.String()),
			zap.String("user_id", t.AssignedTo.String()))
		return newTaskView(t, nil)
	}
	return newTaskView(t, assignee)
}

func sameAssignee(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
