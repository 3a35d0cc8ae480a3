package controller

import (
	"net/http"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MonitorController exposes the per-feature monitoring endpoints the exam
// client streams samples to: lighting, gaze and audio. Each feature group
// shares the same shape of status and summary routes.
type MonitorController struct {
	monitorService *service.MonitorService
}

func NewMonitorController(monitorService *service.MonitorService) *MonitorController {
	return &MonitorController{monitorService: monitorService}
}

type lightingReport struct {
	SessionID  uint                   `json:"sessionId" binding:"required"`
	Sample     service.LightingSample `json:"sample" binding:"required"`
	Screenshot string                 `json:"screenshot"`
}

// ReportLighting godoc
// @Summary Report a lighting sample
// @Tags monitoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body lightingReport true "Lighting sample"
// @Success 200 {object} util.Response
// @Router /api/proctoring/lighting/violation [post]
func (ctl *MonitorController) ReportLighting(c *gin.Context) {
	var req lightingReport
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	verdict, err := ctl.monitorService.ReportLighting(req.SessionID, req.Sample, req.Screenshot)
	ctl.respond(c, verdict, err)
}

type gazeReport struct {
	SessionID  uint               `json:"sessionId" binding:"required"`
	Sample     service.GazeSample `json:"sample" binding:"required"`
	Screenshot string             `json:"screenshot"`
}

// ReportGaze godoc
// @Summary Report a gaze sample
// @Tags monitoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body gazeReport true "Gaze sample"
// @Success 200 {object} util.Response
// @Router /api/proctoring/gaze/violation [post]
func (ctl *MonitorController) ReportGaze(c *gin.Context) {
	var req gazeReport
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	verdict, err := ctl.monitorService.ReportGaze(req.SessionID, req.Sample, req.Screenshot)
	ctl.respond(c, verdict, err)
}

type audioReport struct {
	SessionID uint                `json:"sessionId" binding:"required"`
	Sample    service.AudioSample `json:"sample" binding:"required"`
	Evidence  string              `json:"evidence"`
}

// ReportAudio godoc
// @Summary Report an audio analysis window
// @Tags monitoring
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body audioReport true "Audio sample"
// @Success 200 {object} util.Response
// @Router /api/proctoring/audio/violation [post]
func (ctl *MonitorController) ReportAudio(c *gin.Context) {
	var req audioReport
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	verdict, err := ctl.monitorService.ReportAudio(req.SessionID, req.Sample, req.Evidence)
	ctl.respond(c, verdict, err)
}

func (ctl *MonitorController) respond(c *gin.Context, verdict service.MonitorVerdict, err error) {
	if err != nil {
		switch err {
		case util.ErrSessionNotFound:
			util.NotFound(c)
		case util.ErrSessionFinal:
			util.Error(c, http.StatusConflict, err.Error())
		default:
			util.LogInternalError(c, err)
		}
		return
	}
	util.Success(c, verdict)
}

// Status godoc
// @Summary Latest state of one monitored feature for a session
// @Tags monitoring
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/proctoring/{feature}/session/{id}/status [get]
func (ctl *MonitorController) Status(feature string, vt model.ViolationType) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := ctl.monitorService.Status(util.MustParseUint(c.Param("id")), feature, vt)
		if err != nil {
			if err == util.ErrSessionNotFound {
				util.NotFound(c)
				return
			}
			util.LogInternalError(c, err)
			return
		}
		util.Success(c, status)
	}
}

// Summary godoc
// @Summary Feature summary with the session's full per-type breakdown
// @Tags monitoring
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/proctoring/{feature}/session/{id}/summary [get]
func (ctl *MonitorController) Summary(feature string, vt model.ViolationType) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := ctl.monitorService.Summary(util.MustParseUint(c.Param("id")), feature, vt)
		if err != nil {
			if err == util.ErrSessionNotFound {
				util.NotFound(c)
				return
			}
			util.LogInternalError(c, err)
			return
		}
		util.Success(c, summary)
	}
}
