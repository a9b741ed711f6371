package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/birdlearner/internal/auth"
	"github.com/mrlokans/birdlearner/internal/progress"
	"github.com/mrlokans/birdlearner/internal/study"
)

// SessionController handles the username form that gates every study page.
type SessionController struct {
	*renderer
	loader   MasterLoader
	store    ProgressStore
	sessions *auth.SessionManager
}

func NewSessionController(r *renderer, loader MasterLoader, store ProgressStore, sessions *auth.SessionManager) *SessionController {
	return &SessionController{
		renderer: r,
		loader:   loader,
		store:    store,
		sessions: sessions,
	}
}

type indexView struct {
	Username string
	Mode     study.Mode
}

// Index shows the username form, or continues studying when the session
// already has a user.
func (controller *SessionController) Index(c *gin.Context) {
	ctx := c.Request.Context()
	if controller.sessions.Username(ctx) != "" {
		mode := controller.sessions.StudyState(ctx).Mode
		if mode == "" {
			mode = study.ModeNormal
		}
		c.Redirect(http.StatusFound, studyPath(mode))
		return
	}

	controller.respondPage(c, http.StatusOK, "index", "Bird Learner", "", indexView{Mode: study.ModeNormal})
}

// Login identifies the session, creating the user's progress table on first use.
func (controller *SessionController) Login(c *gin.Context) {
	ctx := c.Request.Context()
	username := strings.TrimSpace(c.PostForm("username"))
	mode, ok := study.ParseMode(c.PostForm("mode"))
	if !ok {
		mode = study.ModeNormal
	}

	if err := progress.ValidateUsername(username); err != nil {
		p := controller.newPage(c, "Bird Learner", "", indexView{Username: username, Mode: mode})
		if username == "" {
			p.Flash.Warning = "Please enter a username to begin."
		} else {
			p.Flash.Warning = "Usernames start with a letter or digit and may contain letters, digits, '.', '_' and '-' (at most 64 characters)."
		}
		c.HTML(http.StatusBadRequest, "index", p)
		return
	}

	master, err := controller.loader.Load()
	if err != nil {
		controller.respondErrorPage(c, http.StatusInternalServerError, err)
		return
	}
	if _, err := controller.store.LoadOrCreate(ctx, username, master); err != nil {
		controller.respondErrorPage(c, http.StatusInternalServerError, err)
		return
	}

	if err := controller.sessions.SignIn(ctx, username); err != nil {
		controller.respondErrorPage(c, http.StatusInternalServerError, err)
		return
	}
	state := controller.sessions.StudyState(ctx)
	state.Mode = mode
	controller.sessions.SaveStudyState(ctx, state)

	redirectTo(c, studyPath(mode))
}

// Logout ends the session, discarding its study state.
func (controller *SessionController) Logout(c *gin.Context) {
	if err := controller.sessions.SignOut(c.Request.Context()); err != nil {
		controller.respondErrorPage(c, http.StatusInternalServerError, err)
		return
	}
	redirectTo(c, "/")
}
