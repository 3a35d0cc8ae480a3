package controller

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 10 MB for images, 25 MB for audio clips.
const (
	maxImageUpload = 10 << 20
	maxAudioUpload = 25 << 20
)

type ProctoringController struct {
	proctoringService *service.ProctoringService
}

func NewProctoringController(proctoringService *service.ProctoringService) *ProctoringController {
	return &ProctoringController{proctoringService: proctoringService}
}

// UploadCapture godoc
// @Summary Upload a screen capture
// @Tags proctoring
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param image formData file true "Screenshot"
// @Success 201 {object} util.Response
// @Router /api/proctoring/screen/session/{id}/capture [post]
func (ctl *ProctoringController) UploadCapture(c *gin.Context) {
	sessionID := util.MustParseUint(c.Param("id"))

	header, err := c.FormFile("image")
	if err != nil {
		util.BadRequest(c, "image file is required")
		return
	}
	if header.Size > maxImageUpload {
		util.Error(c, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	if _, err := util.ValidateMimeType(file, []string{"image/"}); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(c, err)
		return
	}

	capture, err := ctl.proctoringService.SaveScreenCapture(
		c.Request.Context(), sessionID, file, header.Size, strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Created(c, capture)
}

// ListCaptures godoc
// @Summary List a session's screen captures
// @Tags proctoring
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/proctoring/screen/session/{id}/captures [get]
func (ctl *ProctoringController) ListCaptures(c *gin.Context) {
	captures, err := ctl.proctoringService.ListCaptures(util.MustParseUint(c.Param("id")))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Success(c, captures)
}

// WebcamCheck godoc
// @Summary Upload a webcam frame and count the faces in it
// @Description Zero or multiple faces raise the matching violation with
// @Description the frame attached as evidence.
// @Tags proctoring
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param image formData file true "Webcam frame"
// @Success 200 {object} util.Response
// @Router /api/proctoring/webcam/session/{id}/check [post]
func (ctl *ProctoringController) WebcamCheck(c *gin.Context) {
	sessionID := util.MustParseUint(c.Param("id"))

	header, err := c.FormFile("image")
	if err != nil {
		util.BadRequest(c, "image file is required")
		return
	}
	if header.Size > maxImageUpload {
		util.Error(c, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	if _, err := util.ValidateMimeType(file, []string{"image/"}); err != nil {
		util.BadRequest(c, err.Error())
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(c, err)
		return
	}

	result, err := ctl.proctoringService.CheckWebcamSnapshot(
		c.Request.Context(), sessionID, file, header.Size, strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Success(c, result)
}

// UploadAudioEvidence godoc
// @Summary Upload an audio clip as evidence of suspicious audio
// @Tags proctoring
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param audio formData file true "Audio clip"
// @Param details formData string false "JSON details"
// @Success 201 {object} util.Response
// @Router /api/proctoring/audio/session/{id}/evidence [post]
func (ctl *ProctoringController) UploadAudioEvidence(c *gin.Context) {
	sessionID := util.MustParseUint(c.Param("id"))

	header, err := c.FormFile("audio")
	if err != nil {
		util.BadRequest(c, "audio file is required")
		return
	}
	if header.Size > maxAudioUpload {
		util.Error(c, http.StatusRequestEntityTooLarge, "audio clip too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{"audio/", "video/webm", "application/octet-stream"})
	if err != nil || !util.IsAudio(mimeType) && mimeType != "application/octet-stream" {
		util.BadRequest(c, "not an audio file")
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(c, err)
		return
	}

	var details map[string]interface{}
	if raw := c.PostForm("details"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			util.BadRequest(c, "details must be valid JSON")
			return
		}
	}

	violation, err := ctl.proctoringService.SaveAudioEvidence(
		c.Request.Context(), sessionID, file, header.Size, strings.ToLower(filepath.Ext(header.Filename)), details)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Created(c, violation)
}

type anomalyRequest struct {
	AnomalyType string                 `json:"anomalyType" binding:"required"`
	Details     map[string]interface{} `json:"details"`
}

// RecordAnomaly godoc
// @Summary Record a behavioral anomaly
// @Tags proctoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body anomalyRequest true "Anomaly payload"
// @Success 201 {object} util.Response
// @Router /api/proctoring/behavior/session/{id}/anomaly [post]
func (ctl *ProctoringController) RecordAnomaly(c *gin.Context) {
	var req anomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	anomaly, err := ctl.proctoringService.RecordAnomaly(util.MustParseUint(c.Param("id")), req.AnomalyType, req.Details)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Created(c, anomaly)
}

// ListAnomalies godoc
// @Summary List a session's behavioral anomalies
// @Tags proctoring
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/proctoring/behavior/session/{id}/anomalies [get]
func (ctl *ProctoringController) ListAnomalies(c *gin.Context) {
	anomalies, err := ctl.proctoringService.ListAnomalies(util.MustParseUint(c.Param("id")))
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Success(c, anomalies)
}

type keyboardReport struct {
	SessionID   uint   `json:"sessionId" binding:"required"`
	Combination string `json:"combination" binding:"required"`
}

// KeyboardReport godoc
// @Summary Report a pressed key combination
// @Description Checks the combination against the restricted list; a match
// @Description is logged as a keyboard_shortcut violation.
// @Tags proctoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body keyboardReport true "Key combination"
// @Success 200 {object} util.Response
// @Router /api/proctoring/keyboard/report [post]
func (ctl *ProctoringController) KeyboardReport(c *gin.Context) {
	var req keyboardReport
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	verdict, err := ctl.proctoringService.ReportKeyboard(req.SessionID, req.Combination)
	if err != nil {
		ctl.respondError(c, err)
		return
	}
	util.Success(c, verdict)
}

// Shortcuts godoc
// @Summary Keyboard combinations the exam client must block
// @Tags proctoring
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/proctoring/keyboard/shortcuts [get]
func (ctl *ProctoringController) Shortcuts(c *gin.Context) {
	shortcuts, err := ctl.proctoringService.RestrictedShortcuts()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, shortcuts)
}

func (ctl *ProctoringController) respondError(c *gin.Context, err error) {
	switch err {
	case util.ErrSessionNotFound:
		util.NotFound(c)
	case util.ErrSessionFinal:
		util.Error(c, http.StatusConflict, err.Error())
	default:
		util.LogInternalError(c, err)
	}
}
