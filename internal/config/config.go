package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ProgressBackend string

const (
	ProgressBackendFile     ProgressBackend = "file"     // progress_<username>.csv per user (default)
	ProgressBackendDatabase ProgressBackend = "database" // bird_progress table in the sqlite database
)

type SessionStore string

const (
	SessionStoreMemory SessionStore = "memory" // Sessions are lost on restart (default)
	SessionStoreSQLite SessionStore = "sqlite" // Sessions survive restarts
)

type (
	Config struct {
		HTTP
		Dataset
		Images
		Progress
		Database
		Session
		Backup
		Log
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Dataset struct {
		Path  string
		Sheet string // XLSX only; empty means the first sheet
	}
	Images struct {
		Dir string
	}
	Progress struct {
		Backend ProgressBackend
		Dir     string
	}
	Database struct {
		Path string
	}
	Session struct {
		Store         SessionStore
		Secret        string
		Lifetime      time.Duration
		IdleTimeout   time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
	}
	Log struct {
		Level  string
		Format string // console, json or empty for auto-detection
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

// NewConfig reads configuration from the environment, after loading an
// optional .env file from the working directory.
func NewConfig() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8501)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("dataset_path", DefaultDatasetPath)
	v.SetDefault("dataset_sheet", "")
	v.SetDefault("images_dir", DefaultImagesDir)

	v.SetDefault("progress_backend", string(ProgressBackendFile))
	v.SetDefault("progress_dir", DefaultProgressDir)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Session defaults
	v.SetDefault("session_store", string(SessionStoreMemory))
	v.SetDefault("session_secret", "")      // Auto-generated if empty
	v.SetDefault("session_lifetime", "24h") // Absolute lifetime
	v.SetDefault("session_idle_timeout", "2h")
	v.SetDefault("session_secure_cookies", false)

	// Backup defaults
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *")
	v.SetDefault("backup_dir", "./backups")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Dataset: Dataset{
			Path:  v.GetString("DATASET_PATH"),
			Sheet: v.GetString("DATASET_SHEET"),
		},
		Images: Images{
			Dir: v.GetString("IMAGES_DIR"),
		},
		Progress: Progress{
			Backend: ProgressBackend(v.GetString("PROGRESS_BACKEND")),
			Dir:     v.GetString("PROGRESS_DIR"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Session: Session{
			Store:         SessionStore(v.GetString("SESSION_STORE")),
			Secret:        v.GetString("SESSION_SECRET"),
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			IdleTimeout:   v.GetDuration("SESSION_IDLE_TIMEOUT"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Dir:      v.GetString("BACKUP_DIR"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// UsesDatabase reports whether any component needs the sqlite database.
func (c *Config) UsesDatabase() bool {
	return c.Progress.Backend == ProgressBackendDatabase || c.Session.Store == SessionStoreSQLite
}
