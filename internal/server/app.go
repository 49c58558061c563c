// Package server initializes and runs the todo API server: it opens the
// database, runs migrations, wires the services, and supervises the HTTP
// endpoint and the session cleanup loop until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/logging"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/config"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/httpapi"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/repomanager"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	tokenService *services.TokenService
	authService  *services.AuthService
	todoService  *services.TodoService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tokens := services.NewTokenService(db, rm, cfg)
	auth := services.NewAuthService(db, rm, tokens, cfg)
	todos := services.NewTodoService(db, rm)

	return &App{
		config:       cfg,
		logger:       log,
		db:           db,
		tokenService: tokens,
		authService:  auth,
		todoService:  todos,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s, err := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger, app.authService, app.todoService, app.tokenService)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSessionCleanup periodically deletes expired sessions so the table does
// not grow without bound.
func (app *App) startSessionCleanup(ctx context.Context) {
	interval := app.config.SessionCleanupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.tokenService.DeleteExpiredSessions(ctx)
			if err != nil {
				app.logger.Warn(ctx, "session cleanup failed", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSessionCleanup(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err.Error())
	}
}
