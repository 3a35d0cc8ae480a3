package controller

import (
	"bufio"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MediaController streams stored proctoring media to reviewers. Paths are
// validated against traversal before they touch storage.
type MediaController struct {
	proctoringService *service.ProctoringService
}

func NewMediaController(proctoringService *service.ProctoringService) *MediaController {
	return &MediaController{proctoringService: proctoringService}
}

// Get godoc
// @Summary Stream a stored media file
// @Tags media
// @Produce octet-stream
// @Security BearerAuth
// @Param path query string true "Stored media path"
// @Success 200 {file} binary
// @Router /api/media [get]
func (ctl *MediaController) Get(c *gin.Context) {
	relPath := c.Query("path")
	if relPath == "" {
		util.BadRequest(c, "path is required")
		return
	}

	reader, err := ctl.proctoringService.OpenMedia(c.Request.Context(), relPath)
	if err != nil {
		util.NotFound(c)
		return
	}
	defer reader.Close()

	// Object storage hands back the stream lazily; a missing object only
	// errors on the first read. Probe before committing the status code.
	br := bufio.NewReader(reader)
	if _, err := br.Peek(1); err != nil && err != io.EOF {
		util.NotFound(c)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(relPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, br)
}
