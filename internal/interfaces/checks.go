package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"math/rand/v2"

	"github.com/mrlokans/birdlearner/internal/database"
	"github.com/mrlokans/birdlearner/internal/database/birdprogress"
	"github.com/mrlokans/birdlearner/internal/dataset"
	"github.com/mrlokans/birdlearner/internal/http"
	"github.com/mrlokans/birdlearner/internal/images"
	"github.com/mrlokans/birdlearner/internal/progress"
	"github.com/mrlokans/birdlearner/internal/scheduler"
	"github.com/mrlokans/birdlearner/internal/study"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// MasterLoader implementations
var _ http.MasterLoader = (*dataset.Loader)(nil)

// ProgressStore implementations
var _ http.ProgressStore = (*progress.Store)(nil)
var _ scheduler.TableSource = (*progress.Store)(nil)

// Progress backends
var _ progress.Backend = (*progress.FileBackend)(nil)
var _ progress.Backend = (*birdprogress.Repository)(nil)

// =============================================================================
// Files and Services
// =============================================================================

// ImageLocator implementations
var _ http.ImageLocator = (*images.Resolver)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Study Modes
// =============================================================================

// Random implementations
var _ study.Random = (*rand.Rand)(nil)
