package study

import (
	"encoding/gob"
	"math/rand/v2"
	"sync"
)

// Mode is one of the three study modes.
type Mode string

const (
	ModeNormal    Mode = "normal"
	ModeOneOfFour Mode = "one-of-four"
	ModeFlashcard Mode = "flashcard"
)

// Modes lists the modes in selector order.
var Modes = []Mode{ModeNormal, ModeOneOfFour, ModeFlashcard}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, bool) {
	for _, m := range Modes {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Title is the label shown in the mode selector.
func (m Mode) Title() string {
	switch m {
	case ModeOneOfFour:
		return "One of Four"
	case ModeFlashcard:
		return "Flashcard"
	default:
		return "Normal"
	}
}

// State is everything one session remembers between actions. It is never persisted
// beyond the session.
type State struct {
	Mode Mode

	// Normal mode
	Order  []int // permutation of table rows, generated once per session
	Cursor int   // position in Order

	Quiz      *Quiz
	Flashcard *Flashcard
}

// Quiz is a One of Four question. A nil Quiz means no question was asked yet.
type Quiz struct {
	Answer   string   // English name of the pictured bird
	Options  []string // QuizOptions distinct English names, Answer among them
	Choice   string
	Answered bool
}

// Correct reports whether the recorded choice is exactly the answer.
func (q *Quiz) Correct() bool {
	return q != nil && q.Answered && q.Choice == q.Answer
}

// Flashcard is the current card. A nil Flashcard means none was drawn yet.
type Flashcard struct {
	Bird     string // English name
	Revealed bool
}

func init() {
	// State is stored in scs sessions, which gob-encode values
	gob.Register(State{})
}

// Random is the source of randomness for the controllers. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Perm(n int) []int
	Shuffle(n int, swap func(i, j int))
}

// NewRandom returns a randomly seeded source that is safe for concurrent use.
func NewRandom() Random {
	return &lockedRandom{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

type lockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRandom) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Perm(n)
}

func (l *lockedRandom) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
