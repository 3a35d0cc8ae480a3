package controller

import (
	"net/http"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ViolationController struct {
	violationService *service.ViolationService
}

func NewViolationController(violationService *service.ViolationService) *ViolationController {
	return &ViolationController{violationService: violationService}
}

type logViolationRequest struct {
	SessionID     uint                   `json:"sessionId" binding:"required"`
	ViolationType model.ViolationType    `json:"violationType" binding:"required"`
	Details       map[string]interface{} `json:"details"`
	Filepath      string                 `json:"filepath"`
}

// Log godoc
// @Summary Log a proctoring violation
// @Description Accepts any violation type; unknown types are persisted
// @Description with a warning.
// @Tags violations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body logViolationRequest true "Violation payload"
// @Success 201 {object} util.Response
// @Router /api/violations [post]
func (ctl *ViolationController) Log(c *gin.Context) {
	var req logViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	v, err := ctl.violationService.Log(req.SessionID, req.ViolationType, req.Details, req.Filepath)
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
	util.Created(c, v)
}

// ListBySession godoc
// @Summary List a session's violations
// @Tags violations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param type query string false "Filter by violation type"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/violations [get]
func (ctl *ViolationController) ListBySession(c *gin.Context) {
	sessionID := util.MustParseUint(c.Param("id"))

	var violations []model.Violation
	var err error
	if vt := c.Query("type"); vt != "" {
		violations, err = ctl.violationService.ListBySessionAndType(sessionID, model.ViolationType(vt))
	} else {
		violations, err = ctl.violationService.ListBySession(sessionID)
	}
	if err != nil {
		if err == util.ErrSessionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, violations)
}

// Summary godoc
// @Summary Per-type violation counts for a session
// @Tags violations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/violations/summary [get]
func (ctl *ViolationController) Summary(c *gin.Context) {
	summary, err := ctl.violationService.SessionSummary(util.MustParseUint(c.Param("id")))
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

// Types godoc
// @Summary Known violation types and their descriptions
// @Tags violations
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/violations/types [get]
func (ctl *ViolationController) Types(c *gin.Context) {
	util.Success(c, model.ViolationDescriptions)
}

type featureViolationRequest struct {
	SessionID uint                   `json:"sessionId" binding:"required"`
	Details   map[string]interface{} `json:"details"`
	Filepath  string                 `json:"filepath"`
}

// LogTyped returns a handler for a feature group's violation endpoint,
// where the route itself fixes the violation type.
func (ctl *ViolationController) LogTyped(vt model.ViolationType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req featureViolationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.BadRequest(c, err.Error())
			return
		}

		v, err := ctl.violationService.Log(req.SessionID, vt, req.Details, req.Filepath)
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
		util.Created(c, v)
	}
}

// ListTyped returns a handler listing a session's violations of one type.
func (ctl *ViolationController) ListTyped(vt model.ViolationType) gin.HandlerFunc {
	return func(c *gin.Context) {
		violations, err := ctl.violationService.ListBySessionAndType(util.MustParseUint(c.Param("id")), vt)
		if err != nil {
			if err == util.ErrSessionNotFound {
				util.NotFound(c)
				return
			}
			util.LogInternalError(c, err)
			return
		}
		util.Success(c, violations)
	}
}
