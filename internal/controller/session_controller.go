package controller

import (
	"net/http"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	sessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

type startSessionRequest struct {
	TestID    uint   `json:"testId" binding:"required"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// Start godoc
// @Summary Start a test session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body startSessionRequest true "Session payload"
// @Success 201 {object} util.Response
// @Router /api/sessions [post]
func (ctl *SessionController) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}
	email := req.UserEmail
	if email == "" {
		email = claims.Email
	}

	session, err := ctl.sessionService.StartSession(req.TestID, req.UserName, email)
	if err != nil {
		switch err {
		case util.ErrTestNotFound:
			util.NotFound(c)
		case util.ErrEmailRequired:
			util.BadRequest(c, err.Error())
		default:
			util.LogInternalError(c, err)
		}
		return
	}
	util.Created(c, session)
}

// Get godoc
// @Summary Get a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id} [get]
func (ctl *SessionController) Get(c *gin.Context) {
	session, err := ctl.sessionService.GetSession(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrSessionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, session)
}

type submitRequest struct {
	Answers []service.AnswerSubmission `json:"answers" binding:"required,dive"`
}

// Submit godoc
// @Summary Submit answers and complete the session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body submitRequest true "Answers"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/submit [post]
func (ctl *SessionController) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	result, err := ctl.sessionService.Submit(util.MustParseUint(c.Param("id")), req.Answers)
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
	util.Success(c, result)
}

type terminateRequest struct {
	Reason string `json:"reason"`
}

// Terminate godoc
// @Summary Terminate a session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Param request body terminateRequest false "Termination reason"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/terminate [post]
func (ctl *SessionController) Terminate(c *gin.Context) {
	var req terminateRequest
	c.ShouldBindJSON(&req)

	session, err := ctl.sessionService.Terminate(util.MustParseUint(c.Param("id")), req.Reason)
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
	util.Success(c, session)
}

// Validate godoc
// @Summary Check whether a session is still live
// @Description Polled by the exam client. Served through a short-lived
// @Description cache.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/validate [get]
func (ctl *SessionController) Validate(c *gin.Context) {
	status, live, err := ctl.sessionService.Validate(c.Request.Context(), util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrSessionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, gin.H{"status": status, "valid": live})
}

// List godoc
// @Summary List sessions, filterable by user, test or status
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param userId query int false "Filter by user"
// @Param testId query int false "Filter by test"
// @Param status query string false "Filter by status" Enums(in_progress, completed, terminated)
// @Success 200 {object} util.Response
// @Router /api/sessions [get]
func (ctl *SessionController) List(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		sessions, err := ctl.sessionService.ListByStatus(model.SessionStatus(status))
		if err != nil {
			util.LogInternalError(c, err)
			return
		}
		util.Success(c, sessions)
		return
	}
	if userID := util.MustParseUint(c.Query("userId")); userID != 0 {
		sessions, err := ctl.sessionService.ListByUser(userID)
		if err != nil {
			util.LogInternalError(c, err)
			return
		}
		util.Success(c, sessions)
		return
	}
	if testID := util.MustParseUint(c.Query("testId")); testID != 0 {
		sessions, err := ctl.sessionService.ListByTest(testID)
		if err != nil {
			util.LogInternalError(c, err)
			return
		}
		util.Success(c, sessions)
		return
	}

	sessions, err := ctl.sessionService.ListAll()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, sessions)
}

// Delete godoc
// @Summary Delete a session
// @Tags sessions
// @Security BearerAuth
// @Param id path int true "Session ID"
// @Success 204
// @Router /api/sessions/{id} [delete]
func (ctl *SessionController) Delete(c *gin.Context) {
	if err := ctl.sessionService.DeleteSession(util.MustParseUint(c.Param("id"))); err != nil {
		if err == util.ErrSessionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.NoContent(c)
}

// DeleteAll godoc
// @Summary Delete sessions, optionally scoped to a test
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param testId query int false "Limit deletion to one test"
// @Success 200 {object} util.Response
// @Router /api/sessions [delete]
func (ctl *SessionController) DeleteAll(c *gin.Context) {
	var count int64
	var err error
	if testID := util.MustParseUint(c.Query("testId")); testID != 0 {
		count, err = ctl.sessionService.DeleteByTest(testID)
	} else {
		count, err = ctl.sessionService.DeleteAll()
	}
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, gin.H{"deleted": count})
}
