package progress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	filePrefix    = "progress_"
	fileExtension = ".csv"
	lockRetry     = 50 * time.Millisecond
	fileMode      = 0o644
)

// FileBackend stores one CSV file per user, progress_<username>.csv.
//
// Every read and write holds an flock on a sibling .lock file. Update keeps
// the exclusive lock across its read and write, so writers in different
// processes serving the same directory never overwrite each other's
// changes. Files are replaced by rename, so readers never see a partial table.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the backend, creating dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create progress dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// FileName is the base name of a user's progress file, also used for exports and backups.
func FileName(username string) string {
	return filePrefix + username + fileExtension
}

// Path returns the progress file for username.
func (b *FileBackend) Path(username string) string {
	return filepath.Join(b.dir, FileName(username))
}

// Load implements Backend.
func (b *FileBackend) Load(ctx context.Context, username string) (*Table, error) {
	path := b.Path(username)

	lock := flock.New(path + ".lock")
	if ok, err := lock.TryRLockContext(ctx, lockRetry); err != nil || !ok {
		return nil, fmt.Errorf("lock %s: %w", path, lockError(err))
	}
	defer lock.Unlock()

	return b.read(username)
}

// Save implements Backend.
func (b *FileBackend) Save(ctx context.Context, table *Table) error {
	path := b.Path(table.Username)

	lock := flock.New(path + ".lock")
	if ok, err := lock.TryLockContext(ctx, lockRetry); err != nil || !ok {
		return fmt.Errorf("lock %s: %w", path, lockError(err))
	}
	defer lock.Unlock()

	return b.write(path, table)
}

// Update implements Backend. The user's lock is held from the read until
// the new file is in place.
func (b *FileBackend) Update(ctx context.Context, username string, fn UpdateFunc) error {
	path := b.Path(username)

	lock := flock.New(path + ".lock")
	if ok, err := lock.TryLockContext(ctx, lockRetry); err != nil || !ok {
		return fmt.Errorf("lock %s: %w", path, lockError(err))
	}
	defer lock.Unlock()

	current, err := b.read(username)
	if errors.Is(err, ErrNotFound) {
		current = nil
	} else if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil || next == nil {
		return err
	}
	return b.write(path, next)
}

// read loads the user's file; the caller holds the lock.
func (b *FileBackend) read(username string) (*Table, error) {
	path := b.Path(username)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	table, err := ReadTableCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	table.Username = username
	return table, nil
}

// write replaces path with table; the caller holds the lock.
func (b *FileBackend) write(path string, table *Table) error {
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		return err
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(b.dir, ".progress_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	// CreateTemp uses 0600; progress files are as readable as backups
	if err := tmpFile.Chmod(fileMode); err != nil {
		return err
	}
	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// Usernames implements Backend.
func (b *FileBackend) Usernames(ctx context.Context) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(b.dir, filePrefix+"*"+fileExtension))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), filePrefix), fileExtension)
		if ValidateUsername(name) == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

func lockError(err error) error {
	if err != nil {
		return err
	}
	return errors.New("lock not acquired")
}

var _ Backend = (*FileBackend)(nil)
