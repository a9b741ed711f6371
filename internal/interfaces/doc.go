// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - MasterLoader: The shared bird table (internal/http/stores.go)
//   - ProgressStore: Per-user familiar flags (internal/http/stores.go)
//   - progress.Backend: Whole-table persistence (internal/progress/store.go)
//   - TableSource: Read-only access for backups (internal/scheduler/backup.go)
//
// ## Files and Services
//
//   - ImageLocator: Bird images on disk (internal/http/stores.go)
//   - Pinger: Health checks (internal/http/stores.go)
//
// ## Study Modes
//
//   - study.Random: Randomness for shuffles and quizzes (internal/study/state.go)
//
// # Adding a New Progress Backend
//
//  1. Implement progress.Backend, e.g. in internal/database/<name>/
//
//     type Repository struct { db *gorm.DB }
//
//     func (r *Repository) Load(ctx context.Context, username string) (*progress.Table, error)
//     func (r *Repository) Save(ctx context.Context, table *progress.Table) error
//     func (r *Repository) Usernames(ctx context.Context) ([]string, error)
//     func (r *Repository) Update(ctx context.Context, username string, fn progress.UpdateFunc) error
//
//     Load returns progress.ErrNotFound for unknown users. Update must hold
//     off other writers of the user, in any process, from its read until its write.
//
//  2. Add a config.ProgressBackend value and select it in entrypoint.NewApp.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the application-wide list.
package interfaces
