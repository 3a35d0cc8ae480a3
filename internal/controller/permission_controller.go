package controller

import (
	"net/http"

	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PermissionController struct {
	permissionService *service.PermissionService
}

func NewPermissionController(permissionService *service.PermissionService) *PermissionController {
	return &PermissionController{permissionService: permissionService}
}

type logPermissionRequest struct {
	SessionID      uint        `json:"sessionId" binding:"required"`
	PermissionType string      `json:"permissionType" binding:"required,oneof=camera microphone"`
	Granted        *bool       `json:"granted" binding:"required"`
	DeviceInfo     interface{} `json:"deviceInfo"`
	ErrorMessage   string      `json:"errorMessage"`
}

// Log godoc
// @Summary Log a camera or microphone permission outcome
// @Description Duplicate entries within the dedup window are suppressed.
// @Description A denial also raises the matching violation.
// @Tags permissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body logPermissionRequest true "Permission payload"
// @Success 201 {object} util.Response
// @Router /api/permissions [post]
func (ctl *PermissionController) Log(c *gin.Context) {
	var req logPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	entry, duplicate, err := ctl.permissionService.LogPermission(
		req.SessionID, req.PermissionType, *req.Granted, req.DeviceInfo, req.ErrorMessage)
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
	if duplicate {
		util.Success(c, gin.H{"duplicate": true})
		return
	}
	util.Created(c, entry)
}

// ListBySession godoc
// @Summary List a session's permission log
// @Tags permissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/permissions [get]
func (ctl *PermissionController) ListBySession(c *gin.Context) {
	entries, err := ctl.permissionService.ListBySession(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrSessionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, entries)
}
