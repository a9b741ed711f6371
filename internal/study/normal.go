package study

import (
	"context"

	"github.com/mrlokans/birdlearner/internal/progress"
)

// FamiliarSetter persists one familiar flag. *progress.Store satisfies it.
type FamiliarSetter interface {
	SetFamiliar(ctx context.Context, username, english string, familiar bool) (*progress.Table, error)
}

// EnterNormal prepares Normal mode for a table of n birds. The traversal order
// is generated on first entry and kept for the rest of the session.
func EnterNormal(s *State, n int, rng Random) {
	if !validOrder(s.Order, n) {
		s.Order = rng.Perm(n)
		s.Cursor = 0
	}
	if n > 0 {
		s.Cursor = mod(s.Cursor, n)
	}
}

// Next moves the cursor forward, wrapping after the last bird.
func Next(s *State, n int) {
	if n > 0 {
		s.Cursor = mod(s.Cursor+1, n)
	}
}

// Previous moves the cursor back, wrapping before the first bird.
func Previous(s *State, n int) {
	if n > 0 {
		s.Cursor = mod(s.Cursor-1, n)
	}
}

// CurrentIndex returns the table row under the cursor, or -1 before EnterNormal.
func CurrentIndex(s *State) int {
	if len(s.Order) == 0 {
		return -1
	}
	return s.Order[mod(s.Cursor, len(s.Order))]
}

// ToggleFamiliar sets the familiar flag of the bird under the cursor and
// persists it immediately.
func ToggleFamiliar(ctx context.Context, setter FamiliarSetter, username string, s *State, table *progress.Table, familiar bool) (*progress.Table, error) {
	idx := CurrentIndex(s)
	if idx < 0 || idx >= table.Len() {
		return nil, ErrEmptyTable
	}
	return setter.SetFamiliar(ctx, username, table.Birds[idx].English, familiar)
}

func validOrder(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}
