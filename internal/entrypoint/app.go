package entrypoint

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/config"
	"github.com/mrlokans/birdlearner/internal/database"
	"github.com/mrlokans/birdlearner/internal/database/birdprogress"
	"github.com/mrlokans/birdlearner/internal/dataset"
	"github.com/mrlokans/birdlearner/internal/images"
	"github.com/mrlokans/birdlearner/internal/progress"
)

// App holds the components shared by the web server and the CLI.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Loader   *dataset.Loader
	Images   *images.Resolver
	Store    *progress.Store
	Database *database.Database // nil unless a component needs sqlite
}

// NewApp wires the dataset, image and progress components from cfg. The
// dataset is read lazily, so a missing file only fails the requests that need it.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		Loader: dataset.NewLoader(cfg.Dataset.Path, cfg.Dataset.Sheet, logger.Named("dataset")),
		Images: images.NewResolver(cfg.Images.Dir),
	}

	if cfg.UsesDatabase() {
		db, err := database.NewDatabase(cfg.Database.Path, logger.Core().Enabled(zap.DebugLevel))
		if err != nil {
			return nil, err
		}
		app.Database = db
	}

	var backend progress.Backend
	switch cfg.Progress.Backend {
	case config.ProgressBackendDatabase:
		backend = birdprogress.NewRepository(app.Database.DB)
	case config.ProgressBackendFile, "":
		fb, err := progress.NewFileBackend(cfg.Progress.Dir)
		if err != nil {
			return nil, errors.Join(err, app.Close())
		}
		backend = fb
	default:
		return nil, errors.Join(fmt.Errorf("unknown progress backend %q", cfg.Progress.Backend), app.Close())
	}
	app.Store = progress.NewStore(backend, logger.Named("progress"))

	logger.Info("application configured",
		zap.String("dataset", cfg.Dataset.Path),
		zap.String("images", cfg.Images.Dir),
		zap.String("progress_backend", string(cfg.Progress.Backend)))
	return app, nil
}

// Close releases the database, if one was opened.
func (a *App) Close() error {
	if a.Database == nil {
		return nil
	}
	return a.Database.Close()
}
