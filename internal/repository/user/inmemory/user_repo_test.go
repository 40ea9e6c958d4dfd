package inmemory_test

import (
	"context"
	"testing"

	"taskboard/internal/models/user"
	repo "taskboard/internal/repository"
	"taskboard/internal/repository/user/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username string) *user.User {
	return &user.User{
		ID:       uuid.New(),
		Username: username,
	}
}

// TestUserStorage_CreateAndGet тестирует создание и чтение
func TestUserStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	alice := newUser("alice")
	require.NoError(t, storage.Create(ctx, alice))

	byID, err := storage.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := storage.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = storage.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// TestUserStorage_DuplicateUsername тестирует защиту от дублей
func TestUserStorage_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	require.NoError(t, storage.Create(ctx, newUser("alice")))

	err := storage.Create(ctx, newUser("alice"))
	assert.ErrorIs(t, err, repo.ErrDuplicateUsername)
}

// TestUserStorage_GetAllOrder тестирует стабильный порядок обхода
func TestUserStorage_GetAllOrder(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, storage.Create(ctx, newUser(name)))
	}

	all, err := storage.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "bob", all[1].Username)
	assert.Equal(t, "carol", all[2].Username)
}
