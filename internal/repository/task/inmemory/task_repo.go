package inmemory

import (
	"context"
	"sync"
	"taskboard/internal/models/task"
	repo "taskboard/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	titles  map[string]uuid.UUID
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		titles:  make(map[string]uuid.UUID),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

// уникальность названия - зона ответственности хранилища,
// проверка в сервисе перед вставкой не защищает от гонки
func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.titles[taskToCreate.Title]; exists {
		return repo.ErrDuplicateTitle
	}

	copied := *taskToCreate
	s.storage[copied.ID] = &copied
	s.titles[copied.Title] = copied.ID
	s.ids = append(s.ids, copied.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	if owner, exists := s.titles[taskToUpdate.Title]; exists && owner != taskToUpdate.ID {
		return repo.ErrDuplicateTitle
	}

	delete(s.titles, existing.Title)
	copied := *taskToUpdate
	s.storage[copied.ID] = &copied
	s.titles[copied.Title] = copied.ID
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *taskToGet
	return &copied, nil
}

func (s *TaskStorage) GetByTitle(ctx context.Context, title string) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.titles[title]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *s.storage[id]
	return &copied, nil
}

// все задачи в порядке создания
func (s *TaskStorage) GetAll(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		copied := *s.storage[id]
		res = append(res, &copied)
	}
	return res, nil
}

// задачи в статусах Todo и In Progress, для smart-assign
func (s *TaskStorage) GetActive(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if !t.IsActive() {
			continue
		}
		copied := *t
		res = append(res, &copied)
	}
	return res, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return repo.ErrNotFound
	}

	delete(s.titles, existing.Title)
	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
