package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/auth"
	http_controllers "github.com/mrlokans/birdlearner/internal/http"
	"github.com/mrlokans/birdlearner/internal/scheduler"
	"github.com/mrlokans/birdlearner/internal/study"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until ctx is cancelled or SIGINT/SIGTERM arrives,
// then shuts down gracefully within the configured timeout.
func Serve(ctx context.Context, router *gin.Engine, app *App, onShutdown ShutdownFunc) error {
	cfg := app.Config
	logger := app.Logger
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(shutdownCtx)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}

// NewRouter builds the session manager and the router for app.
func NewRouter(app *App, version string) (*gin.Engine, error) {
	cfg := app.Config
	logger := app.Logger

	var routerCfg http_controllers.RouterConfig
	if app.Database != nil {
		sqlDB, err := app.Database.SQL()
		if err != nil {
			return nil, fmt.Errorf("get SQL DB for sessions: %w", err)
		}
		sessions, err := auth.NewSessionManager(sqlDB, cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("initialize session manager: %w", err)
		}
		routerCfg.Sessions = sessions
		routerCfg.Database = app.Database
	} else {
		sessions, err := auth.NewSessionManager(nil, cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("initialize session manager: %w", err)
		}
		routerCfg.Sessions = sessions
	}

	secret := cfg.Session.Secret
	if secret == "" {
		generated, err := auth.GenerateSessionSecret()
		if err != nil {
			return nil, fmt.Errorf("generate CSRF secret: %w", err)
		}
		secret = generated
		logger.Info("generated session secret (set SESSION_SECRET to keep forms valid across restarts)")
	}

	routerCfg.Loader = app.Loader
	routerCfg.Progress = app.Store
	routerCfg.Images = app.Images
	routerCfg.Random = study.NewRandom()
	routerCfg.CSRFSecret = auth.DecodeSecret(secret)
	routerCfg.SecureCookies = cfg.Session.SecureCookies
	routerCfg.Logger = logger.Named("http")
	routerCfg.Version = version

	return http_controllers.NewRouter(routerCfg), nil
}

// Run serves the web UI with the optional backup job until ctx ends.
func Run(ctx context.Context, app *App, version string) error {
	cfg := app.Config
	logger := app.Logger

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if _, err := app.Loader.Load(); err != nil {
		// keep serving; /health and the error page report it
		logger.Error("bird dataset unavailable", zap.Error(err))
	}

	router, err := NewRouter(app, version)
	if err != nil {
		return err
	}

	var backups *scheduler.BackupScheduler
	if cfg.Backup.Enabled {
		backups = scheduler.NewBackupScheduler(app.Store, cfg.Backup, logger.Named("backup"))
		if err := backups.Start(ctx); err != nil {
			return fmt.Errorf("start backup scheduler: %w", err)
		}
	}

	onShutdown := func(ctx context.Context) {
		if backups != nil {
			backups.Stop()
		}
	}

	return Serve(ctx, router, app, onShutdown)
}
