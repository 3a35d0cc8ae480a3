package controller

import (
	"net/http"
	"time"

	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// UserSummary godoc
// @Summary Aggregated session and violation stats for a user
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/users/{id} [get]
func (ctl *AnalyticsController) UserSummary(c *gin.Context) {
	summary, err := ctl.analyticsService.UserSummary(c.Request.Context(), util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrUserNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, summary)
}

// TestSummary godoc
// @Summary Aggregated session and violation stats for a test
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/analytics/tests/{id} [get]
func (ctl *AnalyticsController) TestSummary(c *gin.Context) {
	summary, err := ctl.analyticsService.TestSummary(c.Request.Context(), util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, summary)
}

// ViolationSummary godoc
// @Summary System-wide violation breakdown
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param since query string false "RFC3339 lower bound"
// @Success 200 {object} util.Response
// @Router /api/analytics/violations [get]
func (ctl *AnalyticsController) ViolationSummary(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.BadRequest(c, "since must be RFC3339")
			return
		}
		since = &t
	}

	summary, err := ctl.analyticsService.ViolationSummary(c.Request.Context(), since)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, summary)
}

// ExportViolations godoc
// @Summary Export violations as CSV
// @Tags analytics
// @Produce text/csv
// @Security BearerAuth
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Success 200 {string} string "CSV content"
// @Router /api/analytics/violations/export [get]
func (ctl *AnalyticsController) ExportViolations(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.BadRequest(c, "from must be RFC3339")
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.BadRequest(c, "to must be RFC3339")
			return
		}
		to = &t
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="violations.csv"`)
	c.Status(http.StatusOK)

	if err := ctl.analyticsService.ExportViolationsCSV(c.Writer, from, to); err != nil {
		util.LogInternalError(c, err)
	}
}
