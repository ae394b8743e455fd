// Package server initializes and runs the authentication server. It builds
// the store, runs migrations, wires the token issuer and service, and serves
// the HTTP API until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/rest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  repomanager.RepositoryManager
	server *rest.HTTPServer
}

// openStore is a seam for tests.
var openStore = func(ctx context.Context, cfg *config.Config) (repomanager.RepositoryManager, error) {
	if cfg.UseMemoryStore() {
		return repomanager.NewInMemoryRepositoryManager(nil), nil
	}
	return repomanager.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
}

// NewApp wires all components from cfg. Logs go to w as JSON lines.
func NewApp(ctx context.Context, cfg *config.Config, w io.Writer) (*App, error) {
	logger, err := logging.NewJSONLogger(w, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	issuer, err := auth.NewIssuer([]byte(cfg.SecretKey), cfg.Issuer, cfg.Audience)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	verifier, err := auth.NewVerifier([]byte(cfg.SecretKey), cfg.Issuer, cfg.Audience)
	if err != nil {
		return nil, fmt.Errorf("token verifier: %w", err)
	}
	hasher, err := password.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := store.RunMigrations(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	ids := identity.NewManager(store, hasher, password.DefaultPolicy())
	svc := services.NewAuthService(ids, ids, issuer, cfg.DefaultRole)
	srv := rest.NewHTTPServer(cfg.EndpointAddr, logger, svc, verifier, cfg.ShutdownTimeout)

	return &App{config: cfg, logger: logger, store: store, server: srv}, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT is received,
// then closes the store.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "store", storeKind(app.config))

	runErr := app.server.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, runErr.Error())
	}

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "close store", "error", err.Error())
	}

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return runErr
}

func storeKind(cfg *config.Config) string {
	if cfg.UseMemoryStore() {
		return "memory"
	}
	return "postgres"
}

// Main loads configuration from args and the environment and runs the app.
// It returns the process exit code.
func Main(ctx context.Context, args []string) int {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	app, err := NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx); err != nil {
		return 1
	}
	return 0
}
