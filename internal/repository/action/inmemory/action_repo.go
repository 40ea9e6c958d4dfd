package inmemory

import (
	"context"
	"sort"
	"sync"
	"taskboard/internal/models/action"
)

// ActionStorage - журнал только на дозапись, записи не изменяются
type ActionStorage struct {
	actions []*action.Action
	mtx     *sync.RWMutex
}

func NewActionStorage() *ActionStorage {
	return &ActionStorage{
		actions: []*action.Action{},
		mtx:     &sync.RWMutex{},
	}
}

func (s *ActionStorage) Append(ctx context.Context, actionToAppend *action.Action) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	copied := *actionToAppend
	s.actions = append(s.actions, &copied)
	return nil
}

// последние limit записей, новые первыми
func (s *ActionStorage) GetRecent(ctx context.Context, limit int) ([]*action.Action, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*action.Action, 0, len(s.actions))
	for _, a := range s.actions {
		copied := *a
		res = append(res, &copied)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp.After(res[j].Timestamp)
	})

	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// удаление старых записей сверх keep, используется только фоновой очисткой
func (s *ActionStorage) TrimOlderThanNewest(ctx context.Context, keep int) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if keep <= 0 || len(s.actions) <= keep {
		return 0, nil
	}

	sort.SliceStable(s.actions, func(i, j int) bool {
		return s.actions[i].Timestamp.After(s.actions[j].Timestamp)
	})

	trimmed := len(s.actions) - keep
	s.actions = s.actions[:keep]
	return trimmed, nil
}
