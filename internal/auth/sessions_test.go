package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/birdlearner/internal/config"
	"github.com/mrlokans/birdlearner/internal/study"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func memorySessions(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager(nil, config.Session{
		Store:    config.SessionStoreMemory,
		Lifetime: time.Hour,
	})
	require.NoError(t, err)
	return sm
}

// sessionRouter exposes the session API over a few test routes.
func sessionRouter(sm *SessionManager) *gin.Engine {
	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.POST("/signin/:name", func(c *gin.Context) {
		if err := sm.SignIn(c.Request.Context(), c.Param("name")); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.POST("/signout", func(c *gin.Context) {
		_ = sm.SignOut(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	router.POST("/study", func(c *gin.Context) {
		state := sm.StudyState(c.Request.Context())
		state.Mode = study.ModeFlashcard
		state.Flashcard = &study.Flashcard{Bird: "Pied Crow"}
		sm.SaveStudyState(c.Request.Context(), state)
		c.Status(http.StatusNoContent)
	})
	router.POST("/warn", func(c *gin.Context) {
		sm.Warn(c.Request.Context(), "careful")
		sm.Notify(c.Request.Context(), "saved")
		c.Redirect(http.StatusSeeOther, "/whoami")
	})
	router.GET("/whoami", func(c *gin.Context) {
		ctx := c.Request.Context()
		state := sm.StudyState(ctx)
		flash := sm.PopFlash(ctx)
		c.JSON(http.StatusOK, gin.H{
			"username": sm.Username(ctx),
			"mode":     string(state.Mode),
			"warning":  flash.Warning,
			"notice":   flash.Notice,
		})
	})
	return router
}

type client struct {
	t       *testing.T
	router  http.Handler
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, router http.Handler) *client {
	return &client{t: t, router: router, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	cl.router.ServeHTTP(rr, req)
	for _, c := range rr.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c
	}
	return rr
}

func TestNewSessionManager_CookieSettings(t *testing.T) {
	sm, err := NewSessionManager(nil, config.Session{
		Store:         config.SessionStoreMemory,
		Lifetime:      time.Hour,
		IdleTimeout:   10 * time.Minute,
		SecureCookies: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "birdlearner_session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.True(t, sm.Cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, sm.Cookie.SameSite)
	assert.Equal(t, time.Hour, sm.Lifetime)
	assert.Equal(t, 10*time.Minute, sm.IdleTimeout)
}

func TestNewSessionManager_SQLiteRequiresDatabase(t *testing.T) {
	_, err := NewSessionManager(nil, config.Session{Store: config.SessionStoreSQLite})
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestSessionManager_SignInAndOut(t *testing.T) {
	cl := newClient(t, sessionRouter(memorySessions(t)))

	assert.Equal(t, http.StatusNoContent, cl.do(http.MethodPost, "/signin/alice").Code)
	rr := cl.do(http.MethodGet, "/whoami")
	assert.JSONEq(t, `{"username":"alice","mode":"","warning":"","notice":""}`, rr.Body.String())

	cl.do(http.MethodPost, "/signout")
	rr = cl.do(http.MethodGet, "/whoami")
	assert.Contains(t, rr.Body.String(), `"username":""`)
}

func TestSessionManager_StudyStateFollowsUsername(t *testing.T) {
	cl := newClient(t, sessionRouter(memorySessions(t)))

	cl.do(http.MethodPost, "/signin/alice")
	cl.do(http.MethodPost, "/study")
	assert.Contains(t, cl.do(http.MethodGet, "/whoami").Body.String(), `"mode":"flashcard"`)

	// same user keeps the state
	cl.do(http.MethodPost, "/signin/alice")
	assert.Contains(t, cl.do(http.MethodGet, "/whoami").Body.String(), `"mode":"flashcard"`)

	// another user starts fresh
	cl.do(http.MethodPost, "/signin/bob")
	assert.Contains(t, cl.do(http.MethodGet, "/whoami").Body.String(), `"mode":""`)
}

func TestSessionManager_FlashIsOneShot(t *testing.T) {
	cl := newClient(t, sessionRouter(memorySessions(t)))

	rr := cl.do(http.MethodPost, "/warn")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.NotEmpty(t, cl.cookies, "redirects must still carry the session cookie")

	body := cl.do(http.MethodGet, "/whoami").Body.String()
	assert.Contains(t, body, `"warning":"careful"`)
	assert.Contains(t, body, `"notice":"saved"`)

	body = cl.do(http.MethodGet, "/whoami").Body.String()
	assert.Contains(t, body, `"warning":""`)
}

func TestSessionManager_SQLiteStoreSurvivesManagerRestart(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := config.Session{Store: config.SessionStoreSQLite, Lifetime: time.Hour}

	first, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)
	cl := newClient(t, sessionRouter(first))
	cl.do(http.MethodPost, "/signin/alice")
	cl.do(http.MethodPost, "/study")

	second, err := NewSessionManager(sqlDB, cfg)
	require.NoError(t, err)
	cl.router = sessionRouter(second)

	body := cl.do(http.MethodGet, "/whoami").Body.String()
	assert.Contains(t, body, `"username":"alice"`)
	assert.Contains(t, body, `"mode":"flashcard"`)
}
