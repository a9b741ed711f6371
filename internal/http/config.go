package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/auth"
	"github.com/mrlokans/birdlearner/internal/study"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Loader   MasterLoader
	Progress ProgressStore
	Images   ImageLocator
	Sessions *auth.SessionManager

	// Random drives traversal orders, questions and cards. Defaults to study.NewRandom().
	Random study.Random

	// Database is pinged by /health; nil when no component uses it.
	Database Pinger

	// Form protection, off when CSRFSecret is empty
	CSRFSecret    []byte
	SecureCookies bool

	Logger  *zap.Logger
	Version string
}
