package study

import (
	"github.com/mrlokans/birdlearner/internal/progress"
)

// NextFlashcard draws a bird uniformly at random, hidden.
func NextFlashcard(s *State, table *progress.Table, rng Random) error {
	if table.Len() == 0 {
		return ErrEmptyTable
	}
	s.Flashcard = &Flashcard{Bird: table.Birds[rng.IntN(table.Len())].English}
	return nil
}

// EnsureFlashcard draws a first card if none was drawn in this session.
func EnsureFlashcard(s *State, table *progress.Table, rng Random) error {
	if s.Flashcard != nil && table.IndexOf(s.Flashcard.Bird) >= 0 {
		return nil
	}
	return NextFlashcard(s, table, rng)
}

// Reveal shows the names on the current card.
func Reveal(s *State) error {
	if s.Flashcard == nil {
		return ErrNoFlashcard
	}
	if s.Flashcard.Revealed {
		return ErrAlreadyRevealed
	}
	s.Flashcard.Revealed = true
	return nil
}
