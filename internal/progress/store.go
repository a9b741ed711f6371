// Package progress keeps each user's familiar flags on top of the master table.
//
// A Store caches one table per username for the lifetime of the process and
// writes the whole table through its Backend after every mutation. Writers
// for the same username are serialised by a per-user mutex in process and by
// Backend.Update across processes: every mutation re-reads the persisted
// flags under the backend's lock, so a change made by another process is
// kept. Reads between mutations are served from the cache and may lag
// such changes until the next write.
//
// # Usage
//
//	store := progress.NewStore(progress.NewFileBackend(dir), logger)
//	table, err := store.LoadOrCreate(ctx, "matt", master)
//	table, err = store.SetFamiliar(ctx, "matt", "Pied Crow", true)
package progress

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/entities"
)

// Backend persists whole progress tables.
type Backend interface {
	// Load returns the persisted table or ErrNotFound.
	Load(ctx context.Context, username string) (*Table, error)
	// Save replaces the persisted table for table.Username.
	Save(ctx context.Context, table *Table) error
	// Usernames lists users with a persisted table.
	Usernames(ctx context.Context) ([]string, error)
	// Update reads the persisted table (nil when there is none), calls fn and
	// saves the table fn returns, as one step against every other writer of
	// username, including other processes. A nil table from fn saves nothing.
	Update(ctx context.Context, username string, fn UpdateFunc) error
}

// UpdateFunc computes the table to persist from the current one.
type UpdateFunc func(current *Table) (*Table, error)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,63}$`)

// ValidateUsername rejects names that cannot safely name a progress table.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}

// Store is the in-process owner of all progress tables.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu    sync.Mutex
	users map[string]*userTable
}

type userTable struct {
	mu    sync.Mutex
	table *Table
}

// NewStore creates a store writing through backend.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger,
		users:   make(map[string]*userTable),
	}
}

func (s *Store) user(username string) *userTable {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		u = &userTable{}
		s.users[username] = u
	}
	return u
}

// LoadOrCreate returns a copy of the user's table. On first access in this
// process it loads the persisted table and reconciles it with master, or
// creates and persists a fresh one when nothing is persisted.
func (s *Store) LoadOrCreate(ctx context.Context, username string, master *entities.MasterTable) (*Table, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	u := s.user(username)
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.table != nil {
		return u.table.Clone(), nil
	}

	var (
		table   *Table
		created bool
		report  Reconciliation
	)
	err := s.backend.Update(ctx, username, func(current *Table) (*Table, error) {
		if current == nil {
			created = true
			table = NewTable(username, master)
			return table, nil
		}
		current.Username = username
		table, report = Reconcile(master, current)
		if !report.Changed() {
			return nil, nil
		}
		return table, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load progress for %s: %w", username, err)
	}

	switch {
	case created:
		s.logger.Info("created progress table", zap.String("username", username), zap.Int("birds", table.Len()))
	case report.Changed():
		s.logger.Warn("progress table diverged from master table, reconciled by English name",
			zap.String("username", username),
			zap.Strings("added", report.Added),
			zap.Strings("dropped", report.Dropped),
			zap.Strings("updated", report.Updated),
			zap.Bool("reordered", report.Reordered),
			zap.Bool("columns_changed", report.ColumnsChanged))
	}

	u.table = table
	return table.Clone(), nil
}

// Save overwrites the persisted table for username with table.
func (s *Store) Save(ctx context.Context, username string, table *Table) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}

	u := s.user(username)
	u.mu.Lock()
	defer u.mu.Unlock()

	c := table.Clone()
	c.Username = username
	if err := s.backend.Save(ctx, c); err != nil {
		return fmt.Errorf("save progress for %s: %w", username, err)
	}
	u.table = c
	return nil
}

// SetFamiliar sets one bird's flag and persists the whole table before returning.
// The in-memory table is left untouched when persisting fails.
func (s *Store) SetFamiliar(ctx context.Context, username, english string, familiar bool) (*Table, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	u := s.user(username)
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.table == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, username)
	}

	idx := u.table.IndexOf(english)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBird, english)
	}

	// Another process may have written since this table was cached: apply
	// the change to the persisted flags, keeping the cached rows.
	var next *Table
	err := s.backend.Update(ctx, username, func(current *Table) (*Table, error) {
		next = u.table.Clone()
		if current != nil {
			next, _ = Reconcile(u.table.master(), current)
		}
		next.Birds[idx].Familiar = familiar
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("save progress for %s: %w", username, err)
	}

	u.table = next
	s.logger.Debug("familiar flag updated",
		zap.String("username", username),
		zap.String("bird", english),
		zap.Bool("familiar", familiar))
	return next.Clone(), nil
}

// Reset replaces the user's table with a fresh copy of master.
func (s *Store) Reset(ctx context.Context, username string, master *entities.MasterTable) (*Table, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	u := s.user(username)
	u.mu.Lock()
	defer u.mu.Unlock()

	table := NewTable(username, master)
	err := s.backend.Update(ctx, username, func(*Table) (*Table, error) {
		return table, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reset progress for %s: %w", username, err)
	}
	u.table = table
	s.logger.Info("progress table reset", zap.String("username", username))
	return table.Clone(), nil
}

// Snapshot returns the user's current table without reconciling it: the
// cached copy when loaded in this process, otherwise what the backend holds.
func (s *Store) Snapshot(ctx context.Context, username string) (*Table, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	u := s.user(username)
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.table != nil {
		return u.table.Clone(), nil
	}

	table, err := s.backend.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	table.Username = username
	return table, nil
}

// Usernames lists every user with persisted progress, sorted.
func (s *Store) Usernames(ctx context.Context) ([]string, error) {
	names, err := s.backend.Usernames(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
