// Package server wires configuration, persistence, storage backends and the
// HTTP API into a runnable application with graceful shutdown.
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

	"github.com/dmitrijs2005/staticstore/internal/logging"
	"github.com/dmitrijs2005/staticstore/internal/server/config"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/staticstore/internal/server/rest"
	"github.com/dmitrijs2005/staticstore/internal/server/services"
	"github.com/dmitrijs2005/staticstore/internal/server/storage"
	"github.com/dmitrijs2005/staticstore/internal/tracing"
)

// openDB is swapped in tests.
var openDB = repomanager.Open

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	handler     *rest.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	registry := storage.NewRegistry(c)

	folders := services.NewFolderService(db, rm)
	files := services.NewFileService(db, rm, registry, logger)
	uploads := services.NewUploadService(db, rm, registry, c)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		handler:     rest.NewHandler(folders, files, uploads, logger),
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
	s := rest.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.handler, app.config.SecretKey, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema and serves until a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	shutdownTracing, err := tracing.Init(ctx, "staticstore", app.config.TraceEndpoint, app.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			app.logger.Error(ctx, "tracer shutdown failed", "error", err)
		}
	}()

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}
