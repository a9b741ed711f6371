package study

import "errors"

var (
	// ErrNoSelection is returned when checking a quiz answer with nothing selected.
	ErrNoSelection = errors.New("no answer selected")

	// ErrUnknownOption is returned when the submitted answer is not one of the options.
	ErrUnknownOption = errors.New("answer is not one of the options")

	// ErrNoQuestion is returned when checking an answer before a question was asked.
	ErrNoQuestion = errors.New("no question asked")

	// ErrNotEnoughBirds is returned when the table has fewer than QuizOptions distinct birds.
	ErrNotEnoughBirds = errors.New("not enough birds for a quiz question")

	// ErrEmptyTable is returned when there is no bird to show.
	ErrEmptyTable = errors.New("bird table is empty")

	// ErrNoFlashcard is returned when revealing before a card was drawn.
	ErrNoFlashcard = errors.New("no flashcard drawn")

	// ErrAlreadyRevealed is returned when revealing a card twice.
	ErrAlreadyRevealed = errors.New("flashcard already revealed")
)
