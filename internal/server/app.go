// Package server wires the docsync server: PostgreSQL row store, the REST
// sync API and the gRPC health endpoint, with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/docsync/internal/logging"
	"github.com/dmitrijs2005/docsync/internal/server/api"
	"github.com/dmitrijs2005/docsync/internal/server/auth"
	"github.com/dmitrijs2005/docsync/internal/server/config"
	"github.com/dmitrijs2005/docsync/internal/server/store"

	gs "github.com/dmitrijs2005/docsync/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	rows   *store.PostgresRepository
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	rows, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	return &App{config: c, logger: logger, rows: rows}, nil
}

// IssueToken signs an access token for userID with the configured secret.
func IssueToken(c *config.Config, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id required")
	}
	return auth.GenerateToken(userID, []byte(c.SecretKey), c.AccessTokenValidityDuration)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := api.NewHandler(app.rows, app.config.APIKey, app.config.SecretKey, app.logger)
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.rows, 0)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.rows.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
}
