package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"taskboard/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed sql/*.sql
var migrations embed.FS

// Up накатывает схему на PostgreSQL из встроенных миграций
func Up(connString string) error {
	src, err := iofs.New(migrations, "sql")
	if err != nil {
		return fmt.Errorf("чтение миграций: %w", err)
	}

	db, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("подключение для миграций: %w", err)
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("инициализация драйвера миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Migrate: Схема актуальна")
			return nil
		}
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Migrate: Миграции применены")
	return nil
}
