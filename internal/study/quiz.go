package study

import (
	"slices"

	"github.com/mrlokans/birdlearner/internal/progress"
)

// QuizOptions is the number of answers offered per question.
const QuizOptions = 4

// NewQuestion asks a new question: one bird picked uniformly as the answer,
// QuizOptions-1 decoys drawn without replacement from the other birds, and
// the options shuffled. Any previous answer is discarded.
func NewQuestion(s *State, table *progress.Table, rng Random) error {
	names := distinctNames(table)
	if len(names) < QuizOptions {
		return ErrNotEnoughBirds
	}

	answerIdx := rng.IntN(len(names))
	answer := names[answerIdx]

	others := make([]string, 0, len(names)-1)
	others = append(others, names[:answerIdx]...)
	others = append(others, names[answerIdx+1:]...)

	// partial Fisher-Yates: the first QuizOptions-1 entries become the decoys
	for i := 0; i < QuizOptions-1; i++ {
		j := i + rng.IntN(len(others)-i)
		others[i], others[j] = others[j], others[i]
	}

	options := make([]string, 0, QuizOptions)
	options = append(options, others[:QuizOptions-1]...)
	options = append(options, answer)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	s.Quiz = &Quiz{
		Answer:  answer,
		Options: options,
	}
	return nil
}

// EnsureQuestion asks a first question if none was asked in this session.
func EnsureQuestion(s *State, table *progress.Table, rng Random) error {
	if s.Quiz != nil && table.IndexOf(s.Quiz.Answer) >= 0 {
		return nil
	}
	return NewQuestion(s, table, rng)
}

// CheckAnswer records the user's choice. An empty choice is rejected with
// ErrNoSelection and leaves the quiz untouched.
func CheckAnswer(s *State, choice string) error {
	if s.Quiz == nil {
		return ErrNoQuestion
	}
	if choice == "" {
		return ErrNoSelection
	}
	if !slices.Contains(s.Quiz.Options, choice) {
		return ErrUnknownOption
	}
	s.Quiz.Choice = choice
	s.Quiz.Answered = true
	return nil
}

func distinctNames(table *progress.Table) []string {
	seen := make(map[string]struct{}, table.Len())
	names := make([]string, 0, table.Len())
	for _, b := range table.Birds {
		if _, dup := seen[b.English]; dup {
			continue
		}
		seen[b.English] = struct{}{}
		names = append(names, b.English)
	}
	return names
}
