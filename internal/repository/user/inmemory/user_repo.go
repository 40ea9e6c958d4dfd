package inmemory

import (
	"context"
	"sync"
	"taskboard/internal/models/user"
	repo "taskboard/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage   map[uuid.UUID]*user.User
	usernames map[string]uuid.UUID
	mtx       *sync.RWMutex
	ids       []uuid.UUID
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage:   make(map[uuid.UUID]*user.User),
		usernames: make(map[string]uuid.UUID),
		mtx:       &sync.RWMutex{},
		ids:       []uuid.UUID{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.usernames[userToCreate.Username]; exists {
		return repo.ErrDuplicateUsername
	}

	copied := *userToCreate
	s.storage[copied.ID] = &copied
	s.usernames[copied.Username] = copied.ID
	s.ids = append(s.ids, copied.ID)
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	userToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *userToGet
	return &copied, nil
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *s.storage[id]
	return &copied, nil
}

// порядок обхода стабильный: по времени регистрации.
// на него опирается разрешение ничьих в smart-assign
func (s *UserStorage) GetAll(ctx context.Context) ([]*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*user.User, 0, len(s.ids))
	for _, id := range s.ids {
		copied := *s.storage[id]
		res = append(res, &copied)
	}
	return res, nil
}
