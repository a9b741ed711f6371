package http

import (
	"github.com/gin-gonic/gin"
)

type ImagesController struct {
	images ImageLocator
}

func NewImagesController(images ImageLocator) *ImagesController {
	return &ImagesController{images: images}
}

// Get serves <name>.jpg from the image directory.
func (controller *ImagesController) Get(c *gin.Context) {
	path, ok := controller.images.Resolve(c.Param("name"))
	if !ok {
		respondNotFound(c, "image")
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.File(path)
}
