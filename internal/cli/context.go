package cli

import (
	"sync"

	"github.com/mrlokans/birdlearner/internal/config"
	"github.com/mrlokans/birdlearner/internal/entrypoint"
	"github.com/mrlokans/birdlearner/internal/logging"
)

// AppFactory builds the application for a command.
type AppFactory func() (*entrypoint.App, error)

// DefaultAppFactory reads the environment (and .env) and wires the application.
func DefaultAppFactory() (*entrypoint.App, error) {
	cfg := config.NewConfig()
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return entrypoint.NewApp(cfg, logger)
}

// commandContext builds the application once, on first use, so that
// `--help` works without a dataset or database.
type commandContext struct {
	factory AppFactory

	once   sync.Once
	app    *entrypoint.App
	appErr error
}

func newCommandContext(factory AppFactory) *commandContext {
	return &commandContext{factory: factory}
}

func (c *commandContext) ensureApp() (*entrypoint.App, error) {
	c.once.Do(func() {
		c.app, c.appErr = c.factory()
	})
	return c.app, c.appErr
}

func (c *commandContext) close() error {
	if c.app == nil {
		return nil
	}
	_ = c.app.Logger.Sync()
	return c.app.Close()
}
