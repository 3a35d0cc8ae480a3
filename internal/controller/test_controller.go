package controller

import (
	"io"
	"net/http"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	testService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{testService: testService}
}

type createTestRequest struct {
	Skill        string `json:"skill" binding:"required"`
	NumQuestions int    `json:"numQuestions" binding:"required,min=1,max=100"`
	Duration     int    `json:"duration" binding:"required,min=1"`
	// When true, questions are generated for the skill instead of being
	// added manually afterwards.
	Generate bool `json:"generate"`
}

// Create godoc
// @Summary Create a test, optionally with generated questions
// @Tags tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createTestRequest true "Test definition"
// @Success 201 {object} util.Response
// @Router /api/tests [post]
func (ctl *TestController) Create(c *gin.Context) {
	var req createTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	claims := util.GetUserFromContext(c)
	test := &model.Test{
		Skill:        req.Skill,
		NumQuestions: req.NumQuestions,
		Duration:     req.Duration,
	}
	if claims != nil {
		test.CreatedBy = claims.UserID
	}

	var err error
	if req.Generate {
		err = ctl.testService.CreateGeneratedTest(c.Request.Context(), test)
	} else {
		err = ctl.testService.CreateTest(test)
	}
	if err != nil {
		if err == util.ErrGenAIUnconfigured {
			util.Error(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, test)
}

// 1 MB of plain text is far beyond what fits in a generation prompt.
const maxDocumentUpload = 1 << 20

// GenerateFromDocument godoc
// @Summary Create a test with questions generated from an uploaded document
// @Description Accepts a plain-text source document; the generated
// @Description questions are grounded in its content.
// @Tags tests
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param skill formData string true "Topic the test covers"
// @Param numQuestions formData int true "Number of questions"
// @Param duration formData int true "Duration in minutes"
// @Param document formData file true "Plain-text source document"
// @Success 201 {object} util.Response
// @Router /api/tests/generate [post]
func (ctl *TestController) GenerateFromDocument(c *gin.Context) {
	skill := c.PostForm("skill")
	numQuestions := int(util.MustParseUint(c.PostForm("numQuestions")))
	duration := int(util.MustParseUint(c.PostForm("duration")))
	if skill == "" || numQuestions < 1 || numQuestions > 100 || duration < 1 {
		util.BadRequest(c, "skill, numQuestions and duration are required")
		return
	}

	header, err := c.FormFile("document")
	if err != nil {
		util.BadRequest(c, "document file is required")
		return
	}
	if header.Size > maxDocumentUpload {
		util.Error(c, http.StatusRequestEntityTooLarge, "document too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	if _, err := util.ValidateMimeType(file, []string{"text/"}); err != nil {
		util.BadRequest(c, "document must be plain text")
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		util.LogInternalError(c, err)
		return
	}
	sourceText, err := io.ReadAll(file)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	claims := util.GetUserFromContext(c)
	test := &model.Test{
		Skill:        skill,
		NumQuestions: numQuestions,
		Duration:     duration,
	}
	if claims != nil {
		test.CreatedBy = claims.UserID
	}

	if err := ctl.testService.CreateGeneratedTestFromText(c.Request.Context(), test, string(sourceText)); err != nil {
		if err == util.ErrGenAIUnconfigured {
			util.Error(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, test)
}

// Get godoc
// @Summary Get a test
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id} [get]
func (ctl *TestController) Get(c *gin.Context) {
	test, err := ctl.testService.GetTest(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, test)
}

// GetWithQuestions godoc
// @Summary Get a test with its full question set
// @Description Correct answers are included only for admins; candidates
// @Description receive the questions with correctness stripped.
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id}/full [get]
func (ctl *TestController) GetWithQuestions(c *gin.Context) {
	claims := util.GetUserFromContext(c)
	includeAnswers := claims != nil && claims.Role == model.Admin

	test, err := ctl.testService.GetTestWithQuestions(util.MustParseUint(c.Param("id")), includeAnswers)
	if err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, test)
}

// List godoc
// @Summary List tests
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /api/tests [get]
func (ctl *TestController) List(c *gin.Context) {
	page := int(util.MustParseUint(c.DefaultQuery("page", "1")))
	limit := int(util.MustParseUint(c.DefaultQuery("limit", "20")))

	tests, total, err := ctl.testService.ListTests(page, limit)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, util.PageResponse{List: tests, Total: total, Page: page, Limit: limit})
}

type updateTestRequest struct {
	Skill        string `json:"skill"`
	NumQuestions int    `json:"numQuestions"`
	Duration     int    `json:"duration"`
}

// Update godoc
// @Summary Update a test
// @Tags tests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Param request body updateTestRequest true "Fields to update"
// @Success 200 {object} util.Response
// @Router /api/tests/{id} [put]
func (ctl *TestController) Update(c *gin.Context) {
	test, err := ctl.testService.GetTest(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}

	var req updateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if req.Skill != "" {
		test.Skill = req.Skill
	}
	if req.NumQuestions > 0 {
		test.NumQuestions = req.NumQuestions
	}
	if req.Duration > 0 {
		test.Duration = req.Duration
	}

	if err := ctl.testService.UpdateTest(test); err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, test)
}

// Delete godoc
// @Summary Delete a test and its questions
// @Tags tests
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 204
// @Router /api/tests/{id} [delete]
func (ctl *TestController) Delete(c *gin.Context) {
	if err := ctl.testService.DeleteTest(util.MustParseUint(c.Param("id"))); err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.NoContent(c)
}

// DeleteAll godoc
// @Summary Delete every test
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/tests [delete]
func (ctl *TestController) DeleteAll(c *gin.Context) {
	count, err := ctl.testService.DeleteAllTests()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, gin.H{"deleted": count})
}

// Draw godoc
// @Summary Draw the question set for taking a test
// @Description Returns a random draw of the test's questions with
// @Description correctness information stripped.
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{id}/questions/draw [get]
func (ctl *TestController) Draw(c *gin.Context) {
	questions, err := ctl.testService.DrawQuestions(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, questions)
}
