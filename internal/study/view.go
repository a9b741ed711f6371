package study

import (
	"github.com/mrlokans/birdlearner/internal/entities"
	"github.com/mrlokans/birdlearner/internal/progress"
)

// ImageChecker reports whether a bird has an image. *images.Resolver satisfies it.
type ImageChecker interface {
	Exists(english string) bool
}

// Image identifies the picture for a bird; Missing is rendered as a warning.
type Image struct {
	Name    string
	Missing bool
}

// Progress is the aggregate familiar count across the whole table.
type Progress struct {
	Familiar int
	Total    int
	Fraction float64
}

// Percent returns the fraction as a whole percentage, for progress bars.
func (p Progress) Percent() int {
	return int(p.Fraction*100 + 0.5)
}

type NormalView struct {
	Bird     entities.Bird
	Image    Image
	Position int // 1-based
	Total    int
	Progress Progress
}

type QuizView struct {
	Image    Image
	Options  []string
	Answered bool
	Choice   string
	Correct  bool
	Answer   string // empty until answered
}

type FlashcardView struct {
	Image    Image
	Revealed bool
	Bird     entities.Bird // zero until revealed
}

func imageOf(english string, images ImageChecker) Image {
	return Image{Name: english, Missing: !images.Exists(english)}
}

// ProgressOf summarises the familiar flags of table.
func ProgressOf(table *progress.Table) Progress {
	return Progress{
		Familiar: table.FamiliarCount(),
		Total:    table.Len(),
		Fraction: table.Fraction(),
	}
}

// NormalViewOf renders the bird under the cursor. EnterNormal must have run.
func NormalViewOf(s *State, table *progress.Table, images ImageChecker) (NormalView, error) {
	idx := CurrentIndex(s)
	if idx < 0 || idx >= table.Len() {
		return NormalView{}, ErrEmptyTable
	}
	bird := table.Birds[idx]
	return NormalView{
		Bird:     bird,
		Image:    imageOf(bird.English, images),
		Position: s.Cursor + 1,
		Total:    table.Len(),
		Progress: ProgressOf(table),
	}, nil
}

// QuizViewOf renders the current question. Names stay hidden until answered.
func QuizViewOf(s *State, images ImageChecker) (QuizView, error) {
	q := s.Quiz
	if q == nil {
		return QuizView{}, ErrNoQuestion
	}
	view := QuizView{
		Image:    imageOf(q.Answer, images),
		Options:  append([]string(nil), q.Options...),
		Answered: q.Answered,
	}
	if q.Answered {
		view.Choice = q.Choice
		view.Correct = q.Correct()
		view.Answer = q.Answer
	}
	return view, nil
}

// FlashcardViewOf renders the current card, with names only once revealed.
func FlashcardViewOf(s *State, table *progress.Table, images ImageChecker) (FlashcardView, error) {
	f := s.Flashcard
	if f == nil {
		return FlashcardView{}, ErrNoFlashcard
	}
	idx := table.IndexOf(f.Bird)
	if idx < 0 {
		return FlashcardView{}, ErrNoFlashcard
	}
	view := FlashcardView{
		Image:    imageOf(f.Bird, images),
		Revealed: f.Revealed,
	}
	if f.Revealed {
		view.Bird = table.Birds[idx]
	}
	return view, nil
}
