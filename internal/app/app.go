package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	actioninmem "taskboard/internal/repository/action/inmemory"
	actionpg "taskboard/internal/repository/action/postgres"
	"taskboard/internal/repository/migrate"
	taskinmem "taskboard/internal/repository/task/inmemory"
	taskpg "taskboard/internal/repository/task/postgres"
	userinmem "taskboard/internal/repository/user/inmemory"
	userpg "taskboard/internal/repository/user/postgres"
	"taskboard/internal/service"
	"taskboard/internal/worker"
	"taskboard/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	hub       *ws.Hub
	worker    *worker.RetentionWorker
	pool      *pgxpool.Pool
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	var taskRepo service.TaskRepository
	var actionRepo service.ActionRepository
	var userRepo service.UserRepository
	var trimmer worker.ActionTrimmer

	switch a.config.Repository.Type {
	case "postgres":
		if err := migrate.Up(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}

		poolCfg, err := pgxpool.ParseConfig(a.config.Database.URL)
		if err != nil {
			return fmt.Errorf("конфиг пула: %w", err)
		}
		if a.config.Database.MaxConnections > 0 {
			poolCfg.MaxConns = int32(a.config.Database.MaxConnections)
		}
		if a.config.Database.MinConnections > 0 {
			poolCfg.MinConns = int32(a.config.Database.MinConnections)
		}
		if a.config.Database.IdleTimeout > 0 {
			poolCfg.MaxConnIdleTime = a.config.Database.IdleTimeout.Std()
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("создание пула: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("проверка соединения ping: %w", err)
		}
		a.pool = pool
		a.shutdowns = append(a.shutdowns, pool.Close)

		actionStorage := actionpg.NewWithPool(pool)
		taskRepo = taskpg.NewWithPool(pool)
		actionRepo = actionStorage
		userRepo = userpg.NewWithPool(pool)
		trimmer = actionStorage

		logger.Info("App: Хранилище PostgreSQL", zap.String("url", a.config.Database.URL))

	case "inmemory":
		actionStorage := actioninmem.NewActionStorage()
		taskRepo = taskinmem.NewTaskStorage()
		actionRepo = actionStorage
		userRepo = userinmem.NewUserStorage()
		trimmer = actionStorage

		logger.Info("App: Хранилище в памяти")

	default:
		return fmt.Errorf("неизвестный тип хранилища: %s", a.config.Repository.Type)
	}

	a.hub = ws.NewHub()

	boardService := service.NewBoardService(taskRepo, actionRepo, userRepo, a.hub)
	authService := service.NewAuthService(userRepo, a.config.Auth.JWTSecret, a.config.Auth.TokenTTL.Std())

	taskHandler := handlers.NewTaskHandler(boardService)
	authHandler := handlers.NewAuthHandler(authService)
	wsHandler := ws.NewHandler(a.hub, authService, a.config.CORS.AllowedOrigin)

	a.worker = worker.NewRetentionWorker(trimmer, a.config.Actions.RetentionInterval.Std(), a.config.Actions.RetentionKeep)

	a.router = a.buildRouter(taskHandler, authHandler, wsHandler, authService)
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func (a *App) buildRouter(taskHandler handlers.TaskHandler, authHandler handlers.AuthHandler, wsHandler *ws.Handler, verifier middleware.TokenVerifier) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(a.config.RateLimit.RequestsPerMinute))

	allowedOrigin := a.config.CORS.AllowedOrigin
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Protect(verifier))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.GetTasks)  // GET /api/tasks
				r.Post("/", taskHandler.PostTask) // POST /api/tasks

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", taskHandler.UpdateTask)    // PUT /api/tasks/{id}
					r.Delete("/", taskHandler.DeleteTask) // DELETE /api/tasks/{id}

					r.Put("/drag-drop", taskHandler.DragDropTask)        // PUT /api/tasks/{id}/drag-drop
					r.Post("/smart-assign", taskHandler.SmartAssignTask) // POST /api/tasks/{id}/smart-assign
				})
			})

			r.Get("/actions", taskHandler.GetActions) // GET /api/actions
		})
	})

	r.Get("/ws", wsHandler.ServeWS)
	r.Get("/health", taskHandler.HealthCheck)

	return r
}

// Run блокирует до отмены контекста, затем гасит сервер и фоновые циклы
func (a *App) Run(ctx context.Context) error {
	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.hub.Run(hubCtx)
	go a.worker.Start(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http сервер: %w", err)
	case <-ctx.Done():
	}

	logger.Info("App: Остановка сервера...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}

	cancel()
	a.hub.Wait()

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	return nil
}
