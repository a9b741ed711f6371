package progress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/birdlearner/internal/entities"
)

func testMaster(names ...string) *entities.MasterTable {
	master := &entities.MasterTable{Columns: []string{"English", "Afrikaans", "Family"}}
	for _, n := range names {
		master.Birds = append(master.Birds, entities.Bird{
			English:   n,
			Afrikaans: n + " (af)",
			Extra:     map[string]string{"Family": "family of " + n},
		})
	}
	return master
}

func setupFileStore(t *testing.T) (*Store, *FileBackend) {
	t.Helper()
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return NewStore(backend, nil), backend
}

func TestStore_LoadOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a table mirroring master with no familiar birds", func(t *testing.T) {
		store, backend := setupFileStore(t)
		master := testMaster("A", "B", "C", "D", "E")

		table, err := store.LoadOrCreate(ctx, "alice", master)
		require.NoError(t, err)

		require.Len(t, table.Birds, 5)
		for i, b := range table.Birds {
			assert.Equal(t, master.Birds[i].English, b.English)
			assert.Equal(t, master.Birds[i].Afrikaans, b.Afrikaans)
			assert.Equal(t, master.Birds[i].Extra, b.Extra)
			assert.False(t, b.Familiar)
		}
		assert.FileExists(t, backend.Path("alice"))
	})

	t.Run("returns persisted content verbatim", func(t *testing.T) {
		_, backend := setupFileStore(t)
		master := testMaster("A", "B", "C")

		saved := NewTable("bob", master)
		saved.Birds[1].Familiar = true
		require.NoError(t, backend.Save(ctx, saved))

		// A fresh store models a new process.
		table, err := NewStore(backend, nil).LoadOrCreate(ctx, "bob", master)
		require.NoError(t, err)
		assert.Equal(t, saved, table)
	})

	t.Run("rejects invalid usernames", func(t *testing.T) {
		store, _ := setupFileStore(t)

		for _, name := range []string{"", "../etc", "a/b", " matt", "with space"} {
			_, err := store.LoadOrCreate(ctx, name, testMaster("A"))
			assert.ErrorIs(t, err, ErrInvalidUsername, name)
		}
	})

	t.Run("reconciles a diverged table by English name", func(t *testing.T) {
		store, backend := setupFileStore(t)
		old := NewTable("carol", testMaster("A", "B", "C"))
		old.Birds[0].Familiar = true // A
		old.Birds[2].Familiar = true // C
		require.NoError(t, backend.Save(ctx, old))

		master := testMaster("C", "D", "A")
		table, err := store.LoadOrCreate(ctx, "carol", master)
		require.NoError(t, err)

		require.Len(t, table.Birds, 3)
		assert.Equal(t, "C", table.Birds[0].English)
		assert.True(t, table.Birds[0].Familiar)
		assert.Equal(t, "D", table.Birds[1].English)
		assert.False(t, table.Birds[1].Familiar)
		assert.Equal(t, "A", table.Birds[2].English)
		assert.True(t, table.Birds[2].Familiar)

		persisted, err := backend.Load(ctx, "carol")
		require.NoError(t, err)
		assert.Equal(t, table, persisted, "reconciled table is written back")
	})

	t.Run("caches the table per process", func(t *testing.T) {
		store, backend := setupFileStore(t)
		master := testMaster("A", "B")

		_, err := store.LoadOrCreate(ctx, "dave", master)
		require.NoError(t, err)
		require.NoError(t, os.Remove(backend.Path("dave")))

		table, err := store.LoadOrCreate(ctx, "dave", master)
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())
	})
}

func TestStore_SetFamiliar(t *testing.T) {
	ctx := context.Background()

	t.Run("persists only the toggled bird", func(t *testing.T) {
		store, backend := setupFileStore(t)
		master := testMaster("A", "B", "C", "D", "E")
		_, err := store.LoadOrCreate(ctx, "alice", master)
		require.NoError(t, err)

		table, err := store.SetFamiliar(ctx, "alice", "C", true)
		require.NoError(t, err)
		assert.Equal(t, 1, table.FamiliarCount())

		persisted, err := backend.Load(ctx, "alice")
		require.NoError(t, err)
		for _, b := range persisted.Birds {
			assert.Equal(t, b.English == "C", b.Familiar, b.English)
		}
	})

	t.Run("requires a loaded table", func(t *testing.T) {
		store, _ := setupFileStore(t)

		_, err := store.SetFamiliar(ctx, "erin", "A", true)
		assert.ErrorIs(t, err, ErrNotLoaded)
	})

	t.Run("rejects unknown birds", func(t *testing.T) {
		store, _ := setupFileStore(t)
		_, err := store.LoadOrCreate(ctx, "frank", testMaster("A"))
		require.NoError(t, err)

		_, err = store.SetFamiliar(ctx, "frank", "Z", true)
		assert.ErrorIs(t, err, ErrUnknownBird)
	})

	t.Run("keeps memory unchanged when the write fails", func(t *testing.T) {
		backend := &flakyBackend{tables: map[string]*Table{}}
		store := NewStore(backend, nil)
		_, err := store.LoadOrCreate(ctx, "gina", testMaster("A", "B"))
		require.NoError(t, err)

		backend.fail = true
		_, err = store.SetFamiliar(ctx, "gina", "A", true)
		require.Error(t, err)

		backend.fail = false
		table, err := store.LoadOrCreate(ctx, "gina", testMaster("A", "B"))
		require.NoError(t, err)
		assert.Equal(t, 0, table.FamiliarCount())
	})

	t.Run("concurrent sessions of one user do not lose writes", func(t *testing.T) {
		store, backend := setupFileStore(t)
		names := make([]string, 20)
		for i := range names {
			names[i] = fmt.Sprintf("Bird %02d", i)
		}
		_, err := store.LoadOrCreate(ctx, "henk", testMaster(names...))
		require.NoError(t, err)

		var wg sync.WaitGroup
		for _, n := range names {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				_, err := store.SetFamiliar(ctx, "henk", name, true)
				assert.NoError(t, err)
			}(n)
		}
		wg.Wait()

		persisted, err := backend.Load(ctx, "henk")
		require.NoError(t, err)
		assert.Equal(t, len(names), persisted.FamiliarCount())
	})
}

func TestStore_SharedDirectory(t *testing.T) {
	ctx := context.Background()

	// two stores over one directory behave like two processes
	twoStores := func(t *testing.T, master *entities.MasterTable) (*Store, *Store, *FileBackend) {
		t.Helper()
		dir := t.TempDir()
		first, err := NewFileBackend(dir)
		require.NoError(t, err)
		second, err := NewFileBackend(dir)
		require.NoError(t, err)

		s1, s2 := NewStore(first, nil), NewStore(second, nil)
		_, err = s1.LoadOrCreate(ctx, "alice", master)
		require.NoError(t, err)
		_, err = s2.LoadOrCreate(ctx, "alice", master)
		require.NoError(t, err)
		return s1, s2, first
	}

	t.Run("writes from both stores are kept", func(t *testing.T) {
		s1, s2, backend := twoStores(t, testMaster("A", "B", "C"))

		_, err := s1.SetFamiliar(ctx, "alice", "A", true)
		require.NoError(t, err)
		table, err := s2.SetFamiliar(ctx, "alice", "B", true)
		require.NoError(t, err)
		assert.Equal(t, 2, table.FamiliarCount(), "the returned table includes the other store's change")

		persisted, err := backend.Load(ctx, "alice")
		require.NoError(t, err)
		for _, b := range persisted.Birds {
			assert.Equal(t, b.English != "C", b.Familiar, b.English)
		}
	})

	t.Run("a reset elsewhere is not undone by the next write", func(t *testing.T) {
		master := testMaster("A", "B", "C")
		s1, s2, backend := twoStores(t, master)

		_, err := s1.SetFamiliar(ctx, "alice", "A", true)
		require.NoError(t, err)
		_, err = s2.Reset(ctx, "alice", master)
		require.NoError(t, err)
		_, err = s1.SetFamiliar(ctx, "alice", "C", true)
		require.NoError(t, err)

		persisted, err := backend.Load(ctx, "alice")
		require.NoError(t, err)
		for _, b := range persisted.Birds {
			assert.Equal(t, b.English == "C", b.Familiar, b.English)
		}
	})

	t.Run("concurrent writers in both stores lose nothing", func(t *testing.T) {
		names := make([]string, 20)
		for i := range names {
			names[i] = fmt.Sprintf("Bird %02d", i)
		}
		s1, s2, backend := twoStores(t, testMaster(names...))

		var wg sync.WaitGroup
		for i, n := range names {
			store := s1
			if i%2 == 1 {
				store = s2
			}
			wg.Add(1)
			go func(store *Store, name string) {
				defer wg.Done()
				_, err := store.SetFamiliar(ctx, "alice", name, true)
				assert.NoError(t, err)
			}(store, n)
		}
		wg.Wait()

		persisted, err := backend.Load(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, len(names), persisted.FamiliarCount())
	})
}

func TestFileBackend_FileMode(t *testing.T) {
	store, backend := setupFileStore(t)
	_, err := store.LoadOrCreate(context.Background(), "alice", testMaster("A"))
	require.NoError(t, err)

	info, err := os.Stat(backend.Path("alice"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestStore_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("saving twice produces identical files", func(t *testing.T) {
		store, backend := setupFileStore(t)
		table := NewTable("ivy", testMaster("A", "B", "C"))
		table.Birds[0].Familiar = true

		require.NoError(t, store.Save(ctx, "ivy", table))
		first, err := os.ReadFile(backend.Path("ivy"))
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, "ivy", table))
		second, err := os.ReadFile(backend.Path("ivy"))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("round trips through load", func(t *testing.T) {
		store, backend := setupFileStore(t)
		master := testMaster("A", "B")
		table := NewTable("jan", master)
		table.Birds[1].Familiar = true
		require.NoError(t, store.Save(ctx, "jan", table))

		loaded, err := NewStore(backend, nil).LoadOrCreate(ctx, "jan", master)
		require.NoError(t, err)
		assert.Equal(t, table, loaded)
	})
}

func TestStore_ResetSnapshotAndUsernames(t *testing.T) {
	ctx := context.Background()
	store, backend := setupFileStore(t)
	master := testMaster("A", "B")

	_, err := store.LoadOrCreate(ctx, "kim", master)
	require.NoError(t, err)
	_, err = store.SetFamiliar(ctx, "kim", "A", true)
	require.NoError(t, err)
	_, err = store.LoadOrCreate(ctx, "amy", master)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(backend.Path("x")), "notes.txt"), nil, 0o644))

	names, err := store.Usernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "kim"}, names)

	snap, err := store.Snapshot(ctx, "kim")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.FamiliarCount())

	table, err := store.Reset(ctx, "kim", master)
	require.NoError(t, err)
	assert.Equal(t, 0, table.FamiliarCount())

	persisted, err := backend.Load(ctx, "kim")
	require.NoError(t, err)
	assert.Equal(t, 0, persisted.FamiliarCount())

	_, err = NewStore(backend, nil).Snapshot(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

type flakyBackend struct {
	mu     sync.Mutex
	fail   bool
	tables map[string]*Table
}

func (b *flakyBackend) Load(_ context.Context, username string) (*Table, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tables[username]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (b *flakyBackend) Save(_ context.Context, table *Table) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.New("disk full")
	}
	b.tables[table.Username] = table.Clone()
	return nil
}

func (b *flakyBackend) Usernames(context.Context) ([]string, error) {
	return nil, nil
}

func (b *flakyBackend) Update(_ context.Context, username string, fn UpdateFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var current *Table
	if t, ok := b.tables[username]; ok {
		current = t.Clone()
	}
	next, err := fn(current)
	if err != nil || next == nil {
		return err
	}
	if b.fail {
		return errors.New("disk full")
	}
	b.tables[username] = next.Clone()
	return nil
}
