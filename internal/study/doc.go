// Package study implements the three study modes as plain functions over an
// explicit session State.
//
// Every user action has one function that takes the current State (and the
// user's progress table where needed) and mutates the State in place:
//
//	Normal:      EnterNormal, Next, Previous, ToggleFamiliar
//	One of Four: NewQuestion, CheckAnswer
//	Flashcard:   NextFlashcard, Reveal
//
// Views are built separately (NormalViewOf, QuizViewOf, FlashcardViewOf) so
// the HTTP layer can render after redirecting. Randomness comes from a
// Random, which tests replace with a seeded source.
package study
