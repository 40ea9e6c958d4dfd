package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"taskboard/internal/logger"
	"taskboard/internal/models/action"
	"taskboard/internal/repository/action/postgres"
	"taskboard/internal/repository/migrate"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

// ActionPostgresTestSuite для интеграционных тестов журнала действий
type ActionPostgresTestSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	storage   *postgres.Storage
	ctx       context.Context
}

func (s *ActionPostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), migrate.Up(connString))

	s.pool, err = pgxpool.New(s.ctx, connString)
	require.NoError(s.T(), err)
	s.storage = postgres.NewWithPool(s.pool)
}

func (s *ActionPostgresTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

func (s *ActionPostgresTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `DELETE FROM actions`)
	require.NoError(s.T(), err)
}

func (s *ActionPostgresTestSuite) appendActions(n int) {
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < n; i++ {
		err := s.storage.Append(s.ctx, &action.Action{
			ID:        uuid.New(),
			Type:      action.TypeTaskCreated,
			UserID:    uuid.New(),
			Username:  "alice",
			Details:   fmt.Sprintf("created task \"t%d\"", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(s.T(), err)
	}
}

// TestActionPostgresTestSuite запускает suite
func TestActionPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(ActionPostgresTestSuite))
}

// TestStorage_AppendAndGetRecent тестирует дозапись и чтение ленты
func (s *ActionPostgresTestSuite) TestStorage_AppendAndGetRecent() {
	s.appendActions(25)

	recent, err := s.storage.GetRecent(s.ctx, action.FeedSize)
	require.NoError(s.T(), err)
	require.Len(s.T(), recent, action.FeedSize)

	// новые первыми
	assert.Equal(s.T(), `created task "t24"`, recent[0].Details)
	assert.Equal(s.T(), `created task "t5"`, recent[len(recent)-1].Details)
}

// TestStorage_GetRecentEmpty тестирует пустую ленту
func (s *ActionPostgresTestSuite) TestStorage_GetRecentEmpty() {
	recent, err := s.storage.GetRecent(s.ctx, action.FeedSize)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), recent)
}

// TestStorage_NullableTaskID тестирует запись без привязки к задаче
func (s *ActionPostgresTestSuite) TestStorage_NullableTaskID() {
	taskID := uuid.New()
	withTask := &action.Action{
		ID:        uuid.New(),
		Type:      action.TypeTaskDeleted,
		TaskID:    &taskID,
		UserID:    uuid.New(),
		Username:  "alice",
		Details:   `deleted task "Design"`,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
	withoutTask := &action.Action{
		ID:        uuid.New(),
		Type:      action.TypeTaskCreated,
		UserID:    uuid.New(),
		Username:  "bob",
		Details:   "no task reference",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond).Add(time.Second),
	}

	require.NoError(s.T(), s.storage.Append(s.ctx, withTask))
	require.NoError(s.T(), s.storage.Append(s.ctx, withoutTask))

	recent, err := s.storage.GetRecent(s.ctx, 10)
	require.NoError(s.T(), err)
	require.Len(s.T(), recent, 2)
	assert.Nil(s.T(), recent[0].TaskID)
	require.NotNil(s.T(), recent[1].TaskID)
	assert.Equal(s.T(), taskID, *recent[1].TaskID)
}

// TestStorage_TrimOlderThanNewest тестирует фоновую очистку
func (s *ActionPostgresTestSuite) TestStorage_TrimOlderThanNewest() {
	s.appendActions(30)

	trimmed, err := s.storage.TrimOlderThanNewest(s.ctx, 10)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 20, trimmed)

	recent, err := s.storage.GetRecent(s.ctx, 100)
	require.NoError(s.T(), err)
	require.Len(s.T(), recent, 10)
	assert.Equal(s.T(), `created task "t29"`, recent[0].Details)
	assert.Equal(s.T(), `created task "t20"`, recent[9].Details)

	// повторная очистка ничего не трогает
	trimmed, err = s.storage.TrimOlderThanNewest(s.ctx, 10)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 0, trimmed)
}
