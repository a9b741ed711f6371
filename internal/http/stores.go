package http

import (
	"context"

	"github.com/mrlokans/birdlearner/internal/entities"
	"github.com/mrlokans/birdlearner/internal/progress"
)

// Each controller names the narrow slice of a dependency it calls.

// MasterLoader provides the shared bird table. *dataset.Loader satisfies it.
type MasterLoader interface {
	Load() (*entities.MasterTable, error)
}

// ProgressStore reads and updates per-user tables. *progress.Store satisfies it.
type ProgressStore interface {
	LoadOrCreate(ctx context.Context, username string, master *entities.MasterTable) (*progress.Table, error)
	SetFamiliar(ctx context.Context, username, english string, familiar bool) (*progress.Table, error)
}

// ImageLocator finds bird images on disk. *images.Resolver satisfies it.
type ImageLocator interface {
	Resolve(english string) (string, bool)
	Exists(english string) bool
}

// Pinger checks a backing service for the health endpoint. *database.Database satisfies it.
type Pinger interface {
	Ping() error
}
