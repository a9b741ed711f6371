package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/birdlearner/internal/auth"
	"github.com/mrlokans/birdlearner/internal/progress"
)

type ProgressResponse struct {
	Username string  `json:"username"`
	Familiar int     `json:"familiar"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
}

type ProgressController struct {
	loader MasterLoader
	store  ProgressStore
}

func NewProgressController(loader MasterLoader, store ProgressStore) *ProgressController {
	return &ProgressController{loader: loader, store: store}
}

// Summary reports the identified user's familiar count.
func (controller *ProgressController) Summary(c *gin.Context) {
	username := auth.GetUsername(c)
	master, err := controller.loader.Load()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "bird dataset unavailable"})
		return
	}
	table, err := controller.store.LoadOrCreate(c.Request.Context(), username, master)
	if err != nil {
		respondInternalError(c, err, "load progress")
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{
		Username: username,
		Familiar: table.FamiliarCount(),
		Total:    table.Len(),
		Fraction: table.Fraction(),
	})
}

// Export downloads the user's table in the progress file format.
func (controller *ProgressController) Export(c *gin.Context) {
	username := auth.GetUsername(c)
	master, err := controller.loader.Load()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "bird dataset unavailable"})
		return
	}
	table, err := controller.store.LoadOrCreate(c.Request.Context(), username, master)
	if err != nil {
		respondInternalError(c, err, "load progress")
		return
	}

	var buf bytes.Buffer
	if err := table.WriteCSV(&buf); err != nil {
		respondInternalError(c, err, "write progress csv")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+progress.FileName(username)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
