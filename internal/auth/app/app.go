package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/accounts/internal/auth/http"
	"github.com/aussiebroadwan/accounts/internal/auth/projection"
	"github.com/aussiebroadwan/accounts/internal/auth/service"
	"github.com/aussiebroadwan/accounts/internal/auth/store"
	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application holds the running service and everything it owns.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	tokens      tokenstore.Store
	codec       *jwtx.Codec
	projection  projection.Sink
	closeMailer func() error

	authService         *service.AuthService
	accountService      *service.AccountService
	housekeepingService *service.HousekeepingService // nil when the token store expires keys itself
	housekeepingRunning bool

	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from the configuration.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "accounts",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg:    cfg,
		logger: NewLogger(cfg),
	}

	ctx := context.Background()
	if err := app.initDependencies(ctx); err != nil {
		app.closeDependencies()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeDependencies()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the router, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
		app.housekeepingRunning = true
	}

	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingRunning {
		app.housekeepingService.Stop()
		app.housekeepingRunning = false
	}

	if err := app.closeDependencies(); err != nil {
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

func (app *Application) initDependencies(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.db = db

	tokens, err := openTokenStore(ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.tokens = tokens

	codec, err := InitTokenCodec(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize token keys: %w", err)
	}
	app.codec = codec

	app.projection = openProjection(app.cfg, app.logger)
	return nil
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	hasher := cryptox.NewArgon2Hasher(pepper)

	mailer, closeMailer, err := openMailer(app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.closeMailer = closeMailer

	app.authService = &service.AuthService{
		Store:         app.db,
		Tokens:        app.tokens,
		Codec:         app.codec,
		Hasher:        hasher,
		Mailer:        mailer,
		Projection:    app.projection,
		Links:         service.LinkBuilder{BaseURL: app.cfg.PublicBaseURL},
		ActivationTTL: app.cfg.ActivationTTL,
		ResetTTL:      app.cfg.ResetTTL,
		PhoneRegion:   app.cfg.PhoneRegion,
	}

	app.accountService = &service.AccountService{
		Store:       app.db,
		Tokens:      app.tokens,
		Hasher:      hasher,
		Projection:  app.projection,
		PhoneRegion: app.cfg.PhoneRegion,
	}

	// Redis expires keys natively, the embedded stores need sweeping.
	if purger, ok := app.tokens.(tokenstore.Purger); ok {
		app.housekeepingService = service.NewHousekeepingService(
			purger,
			app.logger,
			app.cfg.HousekeepingInterval,
		)
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.tokens, app.logger)
	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// closeDependencies releases whatever initDependencies and initServices
// managed to open. The first error is returned, the rest are logged.
func (app *Application) closeDependencies() error {
	var first error
	closeOne := func(name string, fn func() error) {
		if fn == nil {
			return
		}
		if err := fn(); err != nil {
			app.logger.Error("error closing "+name, "error", err)
			if first == nil {
				first = err
			}
		}
	}

	if app.projection != nil {
		closeOne("projection", app.projection.Close)
	}
	closeOne("mailer", app.closeMailer)
	if app.tokens != nil {
		closeOne("token store", app.tokens.Close)
	}
	if app.db != nil {
		closeOne("database", app.db.Close)
	}

	app.projection, app.closeMailer, app.tokens, app.db = nil, nil, nil, nil
	return first
}
