package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/birdlearner/internal/auth"
	"github.com/mrlokans/birdlearner/internal/dataset"
	"github.com/mrlokans/birdlearner/internal/study"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// page is the data every HTML template receives.
type page struct {
	Title     string
	Username  string
	Mode      study.Mode
	Modes     []study.Mode
	Flash     auth.Flash
	CSRFField template.HTML
	Version   string
	View      any
}

// --- Error Response Helpers ---

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError records the error for ErrorLogger and sends a 500.
// The actual error is not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	_ = c.Error(fmt.Errorf("%s: %w", context, err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- HTML Helpers ---

func (r *renderer) newPage(c *gin.Context, title string, mode study.Mode, view any) page {
	p := page{
		Title:     title,
		Mode:      mode,
		Modes:     study.Modes,
		CSRFField: auth.CSRFTokenField(c),
		Version:   r.version,
		View:      view,
	}
	if r.sessions != nil {
		ctx := c.Request.Context()
		p.Username = r.sessions.Username(ctx)
		p.Flash = r.sessions.PopFlash(ctx)
	}
	return p
}

// renderer renders the embedded templates with the shared page data.
type renderer struct {
	sessions *auth.SessionManager
	version  string
}

func (r *renderer) respondPage(c *gin.Context, status int, name, title string, mode study.Mode, view any) {
	c.HTML(status, name, r.newPage(c, title, mode, view))
}

// respondErrorPage renders the error template. Unavailable data maps to 503,
// everything else to status.
func (r *renderer) respondErrorPage(c *gin.Context, status int, err error) {
	message := "Something went wrong. Please try again."
	switch {
	case status == http.StatusNotFound:
		message = "There is nothing here."
	case errors.Is(err, dataset.ErrDataUnavailable):
		status = http.StatusServiceUnavailable
		message = "The bird list could not be loaded. Check the dataset file and reload."
	}
	if err != nil && status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	r.respondPage(c, status, "error", "Error", "", gin.H{"Status": status, "Message": message})
}

// redirectTo finishes a POST with a redirect to path (post-redirect-get).
func redirectTo(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path)
}

func studyPath(mode study.Mode) string {
	return "/study/" + string(mode)
}

func imageURL(english string) string {
	return "/images/" + url.PathEscape(english)
}

// ErrorLogger logs the errors handlers attached with c.Error.
func ErrorLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			logger.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()),
				zap.Error(e.Err))
		}
	}
}
