package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/config"
	"github.com/mrlokans/birdlearner/internal/progress"
)

// TableSource lists users and hands out copies of their tables. *progress.Store satisfies it.
type TableSource interface {
	Usernames(ctx context.Context) ([]string, error)
	Snapshot(ctx context.Context, username string) (*progress.Table, error)
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// BackupScheduler periodically copies every user's progress table into a
// fresh timestamped directory. It only reads live progress data.
type BackupScheduler struct {
	source   TableSource
	dir      string
	schedule string
	logger   *zap.Logger
	now      func() time.Time

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	runMu     sync.Mutex
}

// NewBackupScheduler creates a scheduler writing under cfg.Dir on cfg.Schedule.
func NewBackupScheduler(source TableSource, cfg config.Backup, logger *zap.Logger) *BackupScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupScheduler{
		source:   source,
		dir:      cfg.Dir,
		schedule: cfg.Schedule,
		logger:   logger,
		now:      time.Now,
		cron:     cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start schedules the backup job. It stops again when ctx is cancelled.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.dir == "" {
		return errors.New("backup directory not configured")
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			s.logger.Error("progress backup failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next := s.cron.Entry(entryID).Next
	s.logger.Info("backup scheduler started",
		zap.String("schedule", s.schedule),
		zap.String("dir", s.dir),
		zap.Time("next_run", next))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops scheduling and waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	s.logger.Info("backup scheduler stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next backup will occur.
func (s *BackupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	t := s.cron.Entry(s.entryID).Next
	return &t
}

// RunNow writes a backup immediately and returns its directory.
func (s *BackupScheduler) RunNow(ctx context.Context) (string, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := s.now()
	usernames, err := s.source.Usernames(ctx)
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}

	target, err := s.makeTargetDir(start)
	if err != nil {
		return "", err
	}

	written := 0
	for _, username := range usernames {
		table, err := s.source.Snapshot(ctx, username)
		if err != nil {
			// one unreadable table must not stop the others
			s.logger.Warn("skipping user in backup", zap.String("username", username), zap.Error(err))
			continue
		}

		var buf bytes.Buffer
		if err := table.WriteCSV(&buf); err != nil {
			return target, fmt.Errorf("encode progress for %s: %w", username, err)
		}
		path := filepath.Join(target, progress.FileName(username))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return target, fmt.Errorf("write backup for %s: %w", username, err)
		}
		written++
	}

	s.logger.Info("progress backup written",
		zap.String("dir", target),
		zap.Int("users", written),
		zap.Duration("took", s.now().Sub(start)))
	return target, nil
}

// makeTargetDir creates BACKUP_DIR/<timestamp>, adding a suffix when a
// backup already ran within the same second.
func (s *BackupScheduler) makeTargetDir(at time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	base := filepath.Join(s.dir, at.UTC().Format("20060102T150405Z"))
	target := base
	for i := 1; ; i++ {
		err := os.Mkdir(target, 0o755)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("create backup dir: %w", err)
		}
		target = base + "-" + strconv.Itoa(i)
	}
}
