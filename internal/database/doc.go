// Package database provides the sqlite data access layer.
//
// The database is optional: it is only opened when progress is stored in
// sqlite or when sessions must survive restarts.
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── birdprogress/    # progress.Backend over the bird_progress table
//
// # Usage
//
//	db, err := database.NewDatabase("./birdlearner.db", false)
//	backend := birdprogress.NewRepository(db.DB)
//	store := progress.NewStore(backend, logger)
//
// The same connection pool backs the scs sqlite3store via Database.SQL.
package database
