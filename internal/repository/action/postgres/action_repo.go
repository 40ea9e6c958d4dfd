package postgres

import (
	"context"
	"fmt"
	"taskboard/internal/logger"
	"taskboard/internal/models/action"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage - журнал активности, только дозапись и чтение последних записей
type Storage struct {
	pool *pgxpool.Pool
}

func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Append(ctx context.Context, actionToAppend *action.Action) error {
	start := time.Now()

	query := `INSERT INTO actions
				(id, type, task_id, user_id, username, details, timestamp)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		actionToAppend.ID,
		actionToAppend.Type,
		actionToAppend.TaskID,
		actionToAppend.UserID,
		actionToAppend.Username,
		actionToAppend.Details,
		actionToAppend.Timestamp,
	)

	if err != nil {
		logger.Error("Repository: Не удалось записать действие", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись действия: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetRecent(ctx context.Context, limit int) ([]*action.Action, error) {
	start := time.Now()

	query := `SELECT id, type, task_id, user_id, username, details, timestamp
				FROM actions
				ORDER BY timestamp DESC, id DESC
				LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		logger.Error("Repository: Не удалось получить действия", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение действий: %w", err)
	}
	defer rows.Close()

	actions := []*action.Action{}
	for rows.Next() {
		a := &action.Action{}
		err := rows.Scan(
			&a.ID,
			&a.Type,
			&a.TaskID,
			&a.UserID,
			&a.Username,
			&a.Details,
			&a.Timestamp,
		)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования действия", zap.Error(err))
			continue
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	return actions, nil
}

// оставляет keep самых свежих записей, остальные удаляет.
// вызывается только фоновой очисткой, не конвейером мутаций
func (s *Storage) TrimOlderThanNewest(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	query := `DELETE FROM actions
				WHERE id NOT IN (
					SELECT id FROM actions ORDER BY timestamp DESC, id DESC LIMIT $1
				)`

	tag, err := s.pool.Exec(ctx, query, keep)
	if err != nil {
		logger.Error("Repository: Очистка журнала действий", err)
		return 0, fmt.Errorf("очистка журнала: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
