package controller

import (
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	questionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{questionService: questionService}
}

type optionPayload struct {
	OptionText string `json:"optionText" binding:"required"`
	IsCorrect  bool   `json:"isCorrect"`
}

type createQuestionRequest struct {
	TestID        uint            `json:"testId" binding:"required"`
	QuestionText  string          `json:"questionText" binding:"required"`
	Code          string          `json:"code"`
	CorrectAnswer string          `json:"correctAnswer"`
	Options       []optionPayload `json:"options" binding:"required,min=2,dive"`
}

// Create godoc
// @Summary Create a question with its options
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createQuestionRequest true "Question payload"
// @Success 201 {object} util.Response
// @Router /api/questions [post]
func (ctl *QuestionController) Create(c *gin.Context) {
	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	q := &model.Question{
		TestID:        req.TestID,
		QuestionText:  req.QuestionText,
		Code:          req.Code,
		CorrectAnswer: req.CorrectAnswer,
	}
	for _, opt := range req.Options {
		q.Options = append(q.Options, model.Option{
			OptionText: opt.OptionText,
			IsCorrect:  opt.IsCorrect,
		})
	}

	if err := ctl.questionService.CreateQuestion(q); err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, q)
}

type batchQuestionPayload struct {
	QuestionText  string          `json:"questionText" binding:"required"`
	Code          string          `json:"code"`
	CorrectAnswer string          `json:"correctAnswer"`
	Options       []optionPayload `json:"options" binding:"required,min=2,dive"`
}

type batchCreateRequest struct {
	TestID    uint                   `json:"testId" binding:"required"`
	Questions []batchQuestionPayload `json:"questions" binding:"required,min=1,dive"`
}

// BatchCreate godoc
// @Summary Create several questions for one test in a single request
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body batchCreateRequest true "Batch payload"
// @Success 201 {object} util.Response
// @Router /api/questions/batch [post]
func (ctl *QuestionController) BatchCreate(c *gin.Context) {
	var req batchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for _, qp := range req.Questions {
		q := model.Question{
			QuestionText:  qp.QuestionText,
			Code:          qp.Code,
			CorrectAnswer: qp.CorrectAnswer,
		}
		for _, opt := range qp.Options {
			q.Options = append(q.Options, model.Option{
				OptionText: opt.OptionText,
				IsCorrect:  opt.IsCorrect,
			})
		}
		questions = append(questions, q)
	}

	if err := ctl.questionService.CreateQuestions(req.TestID, questions); err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, questions)
}

// Get godoc
// @Summary Get a question with its options
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [get]
func (ctl *QuestionController) Get(c *gin.Context) {
	q, err := ctl.questionService.GetQuestion(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrQuestionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, q)
}

// ListByTest godoc
// @Summary List a test's questions
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param testId path int true "Test ID"
// @Success 200 {object} util.Response
// @Router /api/tests/{testId}/questions [get]
func (ctl *QuestionController) ListByTest(c *gin.Context) {
	qs, err := ctl.questionService.ListByTest(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrTestNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, qs)
}

type updateQuestionRequest struct {
	QuestionText  string `json:"questionText"`
	Code          string `json:"code"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Update godoc
// @Summary Update a question's text fields
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body updateQuestionRequest true "Fields to update"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [put]
func (ctl *QuestionController) Update(c *gin.Context) {
	q, err := ctl.questionService.GetQuestion(util.MustParseUint(c.Param("id")))
	if err != nil {
		if err == util.ErrQuestionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}

	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	if req.QuestionText != "" {
		q.QuestionText = req.QuestionText
	}
	if req.Code != "" {
		q.Code = req.Code
	}
	if req.CorrectAnswer != "" {
		q.CorrectAnswer = req.CorrectAnswer
	}

	if err := ctl.questionService.UpdateQuestion(q); err != nil {
		util.LogInternalError(c, err)
		return
	}
	util.Success(c, q)
}

// Delete godoc
// @Summary Delete a question and its options
// @Tags questions
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204
// @Router /api/questions/{id} [delete]
func (ctl *QuestionController) Delete(c *gin.Context) {
	if err := ctl.questionService.DeleteQuestion(util.MustParseUint(c.Param("id"))); err != nil {
		if err == util.ErrQuestionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.NoContent(c)
}

// AddOption godoc
// @Summary Add an option to a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body optionPayload true "Option payload"
// @Success 201 {object} util.Response
// @Router /api/questions/{id}/options [post]
func (ctl *QuestionController) AddOption(c *gin.Context) {
	var req optionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	opt, err := ctl.questionService.AddOption(util.MustParseUint(c.Param("id")), req.OptionText, req.IsCorrect)
	if err != nil {
		if err == util.ErrQuestionNotFound {
			util.NotFound(c)
			return
		}
		util.LogInternalError(c, err)
		return
	}
	util.Created(c, opt)
}
