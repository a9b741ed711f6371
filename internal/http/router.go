package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/auth"
	"github.com/mrlokans/birdlearner/internal/study"
)

//go:embed templates/*.html
var templatesFS embed.FS

// templateFuncs are available in every template.
var templateFuncs = template.FuncMap{
	"imageURL": imageURL,
	"studyPath": func(mode study.Mode) string {
		return studyPath(mode)
	},
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := cfg.Random
	if rng == nil {
		rng = study.NewRandom()
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(ErrorLogger(logger))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	router.Use(cfg.Sessions.SessionLoadSave())

	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html"))
	router.SetHTMLTemplate(tmpl)

	r := &renderer{sessions: cfg.Sessions, version: cfg.Version}
	health := NewHealthController(cfg.Loader, cfg.Database, cfg.Version)
	sessions := NewSessionController(r, cfg.Loader, cfg.Progress, cfg.Sessions)
	studies := NewStudyController(r, cfg.Loader, cfg.Progress, cfg.Sessions, cfg.Images, rng)
	images := NewImagesController(cfg.Images)
	progressAPI := NewProgressController(cfg.Loader, cfg.Progress)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Username form
	router.GET("/", sessions.Index)
	router.POST("/login", sessions.Login)
	router.POST("/logout", sessions.Logout)

	router.GET("/images/:name", images.Get)

	identified := router.Group("/", cfg.Sessions.RequireUsername())

	// Study pages
	identified.GET("/study/:mode", studies.Show)
	identified.GET("/study/:mode/image", studies.Image)
	identified.POST("/study/normal/familiar", studies.SetFamiliar)
	identified.POST("/study/normal/next", studies.Next)
	identified.POST("/study/normal/previous", studies.Previous)
	identified.POST("/study/one-of-four/new", studies.NewQuestion)
	identified.POST("/study/one-of-four/check", studies.CheckAnswer)
	identified.POST("/study/flashcard/next", studies.NextCard)
	identified.POST("/study/flashcard/reveal", studies.Reveal)

	// Progress API
	identified.GET("/api/progress", progressAPI.Summary)
	identified.GET("/api/progress/export", progressAPI.Export)

	router.NoRoute(func(c *gin.Context) {
		r.respondErrorPage(c, http.StatusNotFound, nil)
	})

	return router
}
