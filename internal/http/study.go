package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/birdlearner/internal/auth"
	"github.com/mrlokans/birdlearner/internal/progress"
	"github.com/mrlokans/birdlearner/internal/study"
)

// StudyController runs the three study modes. Every action loads the
// session's study.State, applies one study function and writes the state
// back before redirecting to the mode page.
type StudyController struct {
	*renderer
	loader   MasterLoader
	store    ProgressStore
	sessions *auth.SessionManager
	images   ImageLocator
	rng      study.Random
}

func NewStudyController(r *renderer, loader MasterLoader, store ProgressStore, sessions *auth.SessionManager, images ImageLocator, rng study.Random) *StudyController {
	return &StudyController{
		renderer: r,
		loader:   loader,
		store:    store,
		sessions: sessions,
		images:   images,
		rng:      rng,
	}
}

// modeView is the template data of a study page. Exactly one of the mode
// views is set, unless Problem explains why none could be built.
type modeView struct {
	Normal    *study.NormalView
	Quiz      *study.QuizView
	Flashcard *study.FlashcardView
	Progress  study.Progress
	Problem   string
}

type studySession struct {
	username string
	table    *progress.Table
	state    study.State
}

func (controller *StudyController) open(c *gin.Context) (*studySession, bool) {
	username := auth.GetUsername(c)
	master, err := controller.loader.Load()
	if err != nil {
		controller.respondErrorPage(c, http.StatusInternalServerError, err)
		return nil, false
	}
	table, err := controller.store.LoadOrCreate(c.Request.Context(), username, master)
	if err != nil {
		controller.respondErrorPage(c, http.StatusInternalServerError, err)
		return nil, false
	}
	return &studySession{
		username: username,
		table:    table,
		state:    controller.sessions.StudyState(c.Request.Context()),
	}, true
}

func (controller *StudyController) save(c *gin.Context, sess *studySession) {
	controller.sessions.SaveStudyState(c.Request.Context(), sess.state)
}

func (controller *StudyController) parseMode(c *gin.Context) (study.Mode, bool) {
	mode, ok := study.ParseMode(c.Param("mode"))
	if !ok {
		controller.respondErrorPage(c, http.StatusNotFound, nil)
	}
	return mode, ok
}

// Show renders the page of one mode, preparing its first card or question
// when the session has none yet.
func (controller *StudyController) Show(c *gin.Context) {
	mode, ok := controller.parseMode(c)
	if !ok {
		return
	}
	sess, ok := controller.open(c)
	if !ok {
		return
	}
	sess.state.Mode = mode

	view := modeView{Progress: study.ProgressOf(sess.table)}
	switch mode {
	case study.ModeNormal:
		study.EnterNormal(&sess.state, sess.table.Len(), controller.rng)
		if v, err := study.NormalViewOf(&sess.state, sess.table, controller.images); err == nil {
			view.Normal = &v
		} else {
			view.Problem = "The bird list is empty."
		}
	case study.ModeOneOfFour:
		err := study.EnsureQuestion(&sess.state, sess.table, controller.rng)
		if errors.Is(err, study.ErrNotEnoughBirds) {
			view.Problem = "One of Four needs at least four different birds."
			break
		}
		if v, err := study.QuizViewOf(&sess.state, controller.images); err == nil {
			view.Quiz = &v
		}
	case study.ModeFlashcard:
		err := study.EnsureFlashcard(&sess.state, sess.table, controller.rng)
		if errors.Is(err, study.ErrEmptyTable) {
			view.Problem = "The bird list is empty."
			break
		}
		if v, err := study.FlashcardViewOf(&sess.state, sess.table, controller.images); err == nil {
			view.Flashcard = &v
		}
	}

	controller.save(c, sess)
	controller.respondPage(c, http.StatusOK, string(mode), mode.Title(), mode, view)
}

// Image serves the picture of the current bird in a mode. Quiz and flashcard
// pages use it so the bird's name never appears in the page.
func (controller *StudyController) Image(c *gin.Context) {
	mode, ok := study.ParseMode(c.Param("mode"))
	if !ok {
		respondNotFound(c, "image")
		return
	}
	state := controller.sessions.StudyState(c.Request.Context())

	var name string
	switch mode {
	case study.ModeNormal:
		sess, ok := controller.open(c)
		if !ok {
			return
		}
		if idx := study.CurrentIndex(&state); idx >= 0 && idx < sess.table.Len() {
			name = sess.table.Birds[idx].English
		}
	case study.ModeOneOfFour:
		if state.Quiz != nil {
			name = state.Quiz.Answer
		}
	case study.ModeFlashcard:
		if state.Flashcard != nil {
			name = state.Flashcard.Bird
		}
	}

	path, ok := controller.images.Resolve(name)
	if !ok {
		respondNotFound(c, "image")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.File(path)
}

// --- Normal ---

// SetFamiliar stores the posted familiar value for the bird under the cursor.
func (controller *StudyController) SetFamiliar(c *gin.Context) {
	sess, ok := controller.open(c)
	if !ok {
		return
	}

	familiar, err := strconv.ParseBool(c.PostForm("familiar"))
	if err != nil {
		controller.sessions.Warn(c.Request.Context(), "Could not read the familiar checkbox.")
		redirectTo(c, studyPath(study.ModeNormal))
		return
	}

	study.EnterNormal(&sess.state, sess.table.Len(), controller.rng)
	_, err = study.ToggleFamiliar(c.Request.Context(), controller.store, sess.username, &sess.state, sess.table, familiar)
	if err != nil && !errors.Is(err, study.ErrEmptyTable) {
		controller.respondErrorPage(c, http.StatusInternalServerError, err)
		return
	}

	controller.save(c, sess)
	redirectTo(c, studyPath(study.ModeNormal))
}

func (controller *StudyController) Next(c *gin.Context) {
	controller.move(c, study.Next)
}

func (controller *StudyController) Previous(c *gin.Context) {
	controller.move(c, study.Previous)
}

func (controller *StudyController) move(c *gin.Context, step func(*study.State, int)) {
	sess, ok := controller.open(c)
	if !ok {
		return
	}
	study.EnterNormal(&sess.state, sess.table.Len(), controller.rng)
	step(&sess.state, sess.table.Len())
	controller.save(c, sess)
	redirectTo(c, studyPath(study.ModeNormal))
}

// --- One of Four ---

// NewQuestion discards the current question and asks another.
func (controller *StudyController) NewQuestion(c *gin.Context) {
	sess, ok := controller.open(c)
	if !ok {
		return
	}
	// too few birds is explained on the page itself
	_ = study.NewQuestion(&sess.state, sess.table, controller.rng)
	controller.save(c, sess)
	redirectTo(c, studyPath(study.ModeOneOfFour))
}

// CheckAnswer records the selected option.
func (controller *StudyController) CheckAnswer(c *gin.Context) {
	sess, ok := controller.open(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch err := study.CheckAnswer(&sess.state, c.PostForm("choice")); {
	case errors.Is(err, study.ErrNoSelection):
		controller.sessions.Warn(ctx, "Please select an answer before checking.")
	case errors.Is(err, study.ErrUnknownOption):
		controller.sessions.Warn(ctx, "That answer is not one of the options.")
	case errors.Is(err, study.ErrNoQuestion):
		controller.sessions.Warn(ctx, "That question has expired. Here is a new one.")
		_ = study.EnsureQuestion(&sess.state, sess.table, controller.rng)
	}

	controller.save(c, sess)
	redirectTo(c, studyPath(study.ModeOneOfFour))
}

// --- Flashcard ---

// NextCard draws a new hidden card.
func (controller *StudyController) NextCard(c *gin.Context) {
	sess, ok := controller.open(c)
	if !ok {
		return
	}
	_ = study.NextFlashcard(&sess.state, sess.table, controller.rng)
	controller.save(c, sess)
	redirectTo(c, studyPath(study.ModeFlashcard))
}

// Reveal shows the names on the current card. Revealing twice is a no-op.
func (controller *StudyController) Reveal(c *gin.Context) {
	sess, ok := controller.open(c)
	if !ok {
		return
	}
	if err := study.Reveal(&sess.state); errors.Is(err, study.ErrNoFlashcard) {
		_ = study.EnsureFlashcard(&sess.state, sess.table, controller.rng)
	}
	controller.save(c, sess)
	redirectTo(c, studyPath(study.ModeFlashcard))
}
