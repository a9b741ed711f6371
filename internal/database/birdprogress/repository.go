// Package birdprogress stores progress tables in the bird_progress table.
//
// This package implements the progress.Backend interface.
//
//	var _ progress.Backend = (*Repository)(nil)
//
// Only English, Afrikaans, position and the familiar flag are stored;
// passthrough columns always come from the master table on load.
package birdprogress

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/birdlearner/internal/entities"
	"github.com/mrlokans/birdlearner/internal/progress"
)

// Repository handles all bird progress database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bird progress repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Load implements progress.Backend.
func (r *Repository) Load(ctx context.Context, username string) (*progress.Table, error) {
	return load(r.db.WithContext(ctx), username)
}

// Save implements progress.Backend. The user's rows are replaced in one transaction.
func (r *Repository) Save(ctx context.Context, table *progress.Table) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return save(tx, table)
	})
}

// Update implements progress.Backend. The read and the write share one
// transaction; sqlite rejects a competing writer instead of letting it
// overwrite the change.
func (r *Repository) Update(ctx context.Context, username string, fn progress.UpdateFunc) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := load(tx, username)
		if errors.Is(err, progress.ErrNotFound) {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}
		next.Username = username
		return save(tx, next)
	})
}

func load(db *gorm.DB, username string) (*progress.Table, error) {
	var rows []entities.BirdProgress
	err := db.
		Where("username = ?", username).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, progress.ErrNotFound
	}

	table := &progress.Table{
		Username: username,
		Birds:    make([]entities.Bird, len(rows)),
	}
	for i, row := range rows {
		table.Birds[i] = entities.Bird{
			English:   row.English,
			Afrikaans: row.Afrikaans,
			Familiar:  row.Familiar,
		}
	}
	return table, nil
}

func save(tx *gorm.DB, table *progress.Table) error {
	rows := make([]entities.BirdProgress, len(table.Birds))
	for i, b := range table.Birds {
		rows[i] = entities.BirdProgress{
			Username:  table.Username,
			English:   b.English,
			Afrikaans: b.Afrikaans,
			Position:  i,
			Familiar:  b.Familiar,
		}
	}

	if err := tx.Where("username = ?", table.Username).Delete(&entities.BirdProgress{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, 200).Error
}

// Usernames implements progress.Backend.
func (r *Repository) Usernames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&entities.BirdProgress{}).
		Distinct("username").
		Order("username ASC").
		Pluck("username", &names).Error
	return names, err
}

var _ progress.Backend = (*Repository)(nil)
