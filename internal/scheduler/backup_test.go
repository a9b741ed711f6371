package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/birdlearner/internal/config"
	"github.com/mrlokans/birdlearner/internal/entities"
	"github.com/mrlokans/birdlearner/internal/progress"
)

func seededStore(t *testing.T, usernames ...string) (*progress.Store, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := progress.NewFileBackend(dir)
	require.NoError(t, err)
	store := progress.NewStore(backend, nil)

	master := &entities.MasterTable{
		Columns: []string{"English", "Afrikaans"},
		Birds: []entities.Bird{
			{English: "Pied Crow", Afrikaans: "Witborskraai"},
			{English: "Hadeda Ibis", Afrikaans: "Hadeda"},
		},
	}
	for _, u := range usernames {
		_, err := store.LoadOrCreate(context.Background(), u, master)
		require.NoError(t, err)
	}
	return store, dir
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestBackupScheduler_RunNow(t *testing.T) {
	store, liveDir := seededStore(t, "alice", "bob")
	_, err := store.SetFamiliar(context.Background(), "alice", "Pied Crow", true)
	require.NoError(t, err)

	backupDir := filepath.Join(t.TempDir(), "backups")
	s := NewBackupScheduler(store, config.Backup{Dir: backupDir, Schedule: "0 3 * * *"}, nil)
	s.now = fixedClock(time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC))

	target, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "20260301T030000Z"), target)

	for _, u := range []string{"alice", "bob"} {
		backup, err := os.ReadFile(filepath.Join(target, "progress_"+u+".csv"))
		require.NoError(t, err)
		live, err := os.ReadFile(filepath.Join(liveDir, "progress_"+u+".csv"))
		require.NoError(t, err)
		assert.Equal(t, string(live), string(backup), u)
	}

	// a second run in the same second gets its own directory
	again, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, target+"-1", again)
}

func TestBackupScheduler_NoUsers(t *testing.T) {
	store, _ := seededStore(t)
	s := NewBackupScheduler(store, config.Backup{Dir: t.TempDir(), Schedule: "0 3 * * *"}, nil)

	target, err := s.RunNow(context.Background())
	require.NoError(t, err)
	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type failingSource struct{}

func (failingSource) Usernames(context.Context) ([]string, error) {
	return nil, errors.New("disk on fire")
}

func (failingSource) Snapshot(context.Context, string) (*progress.Table, error) {
	return nil, errors.New("unreachable")
}

func TestBackupScheduler_SourceError(t *testing.T) {
	s := NewBackupScheduler(failingSource{}, config.Backup{Dir: t.TempDir(), Schedule: "0 3 * * *"}, nil)

	_, err := s.RunNow(context.Background())
	assert.ErrorContains(t, err, "disk on fire")
}

func TestBackupScheduler_StartStop(t *testing.T) {
	store, _ := seededStore(t, "alice")

	t.Run("rejects an invalid schedule", func(t *testing.T) {
		s := NewBackupScheduler(store, config.Backup{Dir: t.TempDir(), Schedule: "every day"}, nil)
		assert.Error(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("requires a directory", func(t *testing.T) {
		s := NewBackupScheduler(store, config.Backup{Schedule: "0 3 * * *"}, nil)
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("runs until stopped", func(t *testing.T) {
		s := NewBackupScheduler(store, config.Backup{Dir: t.TempDir(), Schedule: "0 3 * * *"}, nil)
		require.NoError(t, s.Start(context.Background()))
		assert.True(t, s.IsRunning())

		next := s.NextRunTime()
		require.NotNil(t, next)
		assert.Equal(t, 3, next.Hour())

		s.Stop()
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.NextRunTime())
	})

	t.Run("stops with its context", func(t *testing.T) {
		s := NewBackupScheduler(store, config.Backup{Dir: t.TempDir(), Schedule: "*/5 * * * *"}, nil)
		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, s.Start(ctx))

		cancel()
		assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
	})
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.Error(t, ValidateSchedule("0 0 3 * * *"), "seconds field is not supported")
	assert.Error(t, ValidateSchedule(""))
}
