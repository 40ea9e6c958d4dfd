package inmemory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"taskboard/internal/models/action"
	"taskboard/internal/repository/action/inmemory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendActions(t *testing.T, storage *inmemory.ActionStorage, n int) {
	t.Helper()
	base := time.Now()
	for i := 0; i < n; i++ {
		err := storage.Append(context.Background(), &action.Action{
			ID:        uuid.New(),
			Type:      action.TypeTaskCreated,
			UserID:    uuid.New(),
			Username:  "alice",
			Details:   fmt.Sprintf("created task \"t%d\"", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
}

// TestActionStorage_GetRecent тестирует порядок и лимит ленты
func TestActionStorage_GetRecent(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewActionStorage()
	appendActions(t, storage, 25)

	recent, err := storage.GetRecent(ctx, action.FeedSize)
	require.NoError(t, err)
	require.Len(t, recent, action.FeedSize)

	// новые первыми
	assert.Equal(t, `created task "t24"`, recent[0].Details)
	assert.Equal(t, `created task "t5"`, recent[len(recent)-1].Details)
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].Timestamp.After(recent[i-1].Timestamp))
	}
}

// TestActionStorage_GetRecentBelowLimit тестирует ленту короче лимита
func TestActionStorage_GetRecentBelowLimit(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewActionStorage()
	appendActions(t, storage, 3)

	recent, err := storage.GetRecent(ctx, action.FeedSize)
	require.NoError(t, err)
	assert.Len(t, recent, 3)
}

// TestActionStorage_TrimOlderThanNewest тестирует фоновую очистку
func TestActionStorage_TrimOlderThanNewest(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to trim", func(t *testing.T) {
		storage := inmemory.NewActionStorage()
		appendActions(t, storage, 5)

		trimmed, err := storage.TrimOlderThanNewest(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, trimmed)
	})

	t.Run("keep zero disables trimming", func(t *testing.T) {
		storage := inmemory.NewActionStorage()
		appendActions(t, storage, 5)

		trimmed, err := storage.TrimOlderThanNewest(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, trimmed)
	})

	t.Run("oldest records removed", func(t *testing.T) {
		storage := inmemory.NewActionStorage()
		appendActions(t, storage, 30)

		trimmed, err := storage.TrimOlderThanNewest(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 20, trimmed)

		recent, err := storage.GetRecent(ctx, 100)
		require.NoError(t, err)
		require.Len(t, recent, 10)
		// выжили самые новые
		assert.Equal(t, `created task "t29"`, recent[0].Details)
		assert.Equal(t, `created task "t20"`, recent[9].Details)
	})
}
