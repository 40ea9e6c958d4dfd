package worker

import (
	"context"
	"taskboard/internal/logger"
	"time"

	"go.uber.org/zap"
)

// ActionTrimmer удаляет записи журнала сверх keep самых свежих
type ActionTrimmer interface {
	TrimOlderThanNewest(ctx context.Context, keep int) (int, error)
}

// RetentionWorker держит журнал действий ограниченного размера.
// Сам конвейер мутаций журнал никогда не урезает - это делает
// только эта фоновая очистка
type RetentionWorker struct {
	actions  ActionTrimmer
	interval time.Duration
	keep     int
}

func NewRetentionWorker(actions ActionTrimmer, interval time.Duration, keep int) *RetentionWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &RetentionWorker{
		actions:  actions,
		interval: interval,
		keep:     keep,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	if w.keep <= 0 {
		logger.Info("Worker: Очистка журнала выключена")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая очистка останавливается")
			return
		}
	}
}

func (w *RetentionWorker) Check(ctx context.Context) {
	start := time.Now()

	trimmed, err := w.actions.TrimOlderThanNewest(ctx, w.keep)
	if err != nil {
		logger.Warn("Worker: Ошибка очистки журнала", zap.Error(err))
		return
	}

	if trimmed > 0 {
		logger.Info("Worker: Журнал действий урезан",
			zap.Int("trimmed", trimmed),
			zap.Int("keep", w.keep),
			zap.Duration("ms", time.Since(start)))
	}
}
