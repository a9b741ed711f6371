package auth

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/birdlearner/internal/config"
	"github.com/mrlokans/birdlearner/internal/study"
)

// Session data keys
const (
	SessionKeyUsername = "username"
	SessionKeyStudy    = "study"
	SessionKeyLoginAt  = "login_at"
	SessionKeyWarning  = "flash_warning"
	SessionKeyNotice   = "flash_notice"
)

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager. Sessions are kept
// in memory unless cfg.Store is sqlite, in which case sqlDB (the *sql.DB
// behind GORM) must be non-nil.
func NewSessionManager(sqlDB *sql.DB, cfg config.Session) (*SessionManager, error) {
	sm := scs.New()

	switch cfg.Store {
	case config.SessionStoreSQLite:
		if sqlDB == nil {
			return nil, ErrNoDatabase
		}
		// Create sessions table if it doesn't exist
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	default:
		sm.Store = memstore.New()
	}

	sm.Lifetime = cfg.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = 24 * time.Hour
	}
	sm.IdleTimeout = cfg.IdleTimeout

	sm.Cookie.Name = "birdlearner_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// SignIn identifies the session as username. Switching to another username
// discards the study state of the previous one.
func (sm *SessionManager) SignIn(ctx context.Context, username string) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}

	if sm.Username(ctx) != username {
		sm.Remove(ctx, SessionKeyStudy)
	}
	sm.Put(ctx, SessionKeyUsername, username)
	sm.Put(ctx, SessionKeyLoginAt, time.Now().Unix())
	return nil
}

// SignOut removes all session data and invalidates the session.
func (sm *SessionManager) SignOut(ctx context.Context) error {
	return sm.Destroy(ctx)
}

// Username returns the identified user, or "" before SignIn.
func (sm *SessionManager) Username(ctx context.Context) string {
	return sm.GetString(ctx, SessionKeyUsername)
}

// StudyState returns the session's study state, zero when none was saved.
func (sm *SessionManager) StudyState(ctx context.Context) study.State {
	state, _ := sm.Get(ctx, SessionKeyStudy).(study.State)
	return state
}

// SaveStudyState writes state back to the session.
func (sm *SessionManager) SaveStudyState(ctx context.Context, state study.State) {
	sm.Put(ctx, SessionKeyStudy, state)
}

// ResetStudyState forgets traversal order, question and card.
func (sm *SessionManager) ResetStudyState(ctx context.Context) {
	sm.Remove(ctx, SessionKeyStudy)
}

// Warn queues a one-shot warning for the next rendered page.
func (sm *SessionManager) Warn(ctx context.Context, message string) {
	sm.Put(ctx, SessionKeyWarning, message)
}

// Notify queues a one-shot informational message for the next rendered page.
func (sm *SessionManager) Notify(ctx context.Context, message string) {
	sm.Put(ctx, SessionKeyNotice, message)
}

// Flash holds the one-shot messages popped for a page render.
type Flash struct {
	Warning string
	Notice  string
}

// PopFlash returns and clears the queued messages.
func (sm *SessionManager) PopFlash(ctx context.Context) Flash {
	return Flash{
		Warning: sm.PopString(ctx, SessionKeyWarning),
		Notice:  sm.PopString(ctx, SessionKeyNotice),
	}
}
