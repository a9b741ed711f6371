package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "birds.csv")
	require.NoError(t, os.WriteFile(datasetPath,
		[]byte("English,Afrikaans\nPied Crow,Witborskraai\nHadeda Ibis,Hadeda\n"), 0o644))

	cfg := &config.Config{}
	cfg.Dataset.Path = datasetPath
	cfg.Images.Dir = filepath.Join(dir, "images")
	cfg.Progress.Backend = config.ProgressBackendFile
	cfg.Progress.Dir = filepath.Join(dir, "progress")
	cfg.Database.Path = filepath.Join(dir, "birdlearner.db")
	cfg.Session.Store = config.SessionStoreMemory
	cfg.Session.Lifetime = 24 * time.Hour
	return cfg
}

func TestNewApp_FileBackend(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.Database)
	master, err := app.Loader.Load()
	require.NoError(t, err)

	_, err = app.Store.SetFamiliar(context.Background(), "alice", "Pied Crow", true)
	assert.Error(t, err, "no table loaded yet")

	_, err = app.Store.LoadOrCreate(context.Background(), "alice", master)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.Progress.Dir, "progress_alice.csv"))
}

func TestNewApp_DatabaseBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Progress.Backend = config.ProgressBackendDatabase

	app, err := NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.Database)
	master, err := app.Loader.Load()
	require.NoError(t, err)

	table, err := app.Store.LoadOrCreate(context.Background(), "alice", master)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.NoFileExists(t, filepath.Join(cfg.Progress.Dir, "progress_alice.csv"))

	names, err := app.Store.Usernames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names)
}

func TestNewApp_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Progress.Backend = "s3"

	_, err := NewApp(cfg, zap.NewNop())
	assert.ErrorContains(t, err, `unknown progress backend "s3"`)
}

func TestNewRouter(t *testing.T) {
	for _, store := range []config.SessionStore{config.SessionStoreMemory, config.SessionStoreSQLite} {
		t.Run(string(store), func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Session.Store = store

			app, err := NewApp(cfg, zap.NewNop())
			require.NoError(t, err)
			defer app.Close()

			router, err := NewRouter(app, "test")
			require.NoError(t, err)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), "ok (2 birds)")
		})
	}
}
