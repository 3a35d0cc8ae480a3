package service

import (
	"context"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TestService struct {
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
	generator    *QuestionGenerator
}

func NewTestService(testRepo *repository.TestRepository, questionRepo *repository.QuestionRepository, generator *QuestionGenerator) *TestService {
	return &TestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		generator:    generator,
	}
}

func (s *TestService) CreateTest(test *model.Test) error {
	return s.testRepo.Create(test)
}

// CreateGeneratedTest creates a test and populates it with model-generated
// questions for the skill.
func (s *TestService) CreateGeneratedTest(ctx context.Context, test *model.Test) error {
	if s.generator == nil || !s.generator.Available() {
		return util.ErrGenAIUnconfigured
	}

	questions, err := s.generator.Generate(ctx, test.Skill, test.NumQuestions)
	if err != nil {
		return err
	}

	if err := s.testRepo.Create(test); err != nil {
		return err
	}

	for i := range questions {
		questions[i].TestID = test.ID
		if err := s.questionRepo.Create(&questions[i]); err != nil {
			return err
		}
	}
	test.Questions = questions

	logger.Log.Info("Generated test created",
		zap.Uint("testId", test.ID),
		zap.String("skill", test.Skill),
		zap.Int("questions", len(questions)))
	return nil
}

// CreateGeneratedTestFromText creates a test whose questions are generated
// from an uploaded source document about the test's skill.
func (s *TestService) CreateGeneratedTestFromText(ctx context.Context, test *model.Test, sourceText string) error {
	if s.generator == nil || !s.generator.Available() {
		return util.ErrGenAIUnconfigured
	}

	questions, err := s.generator.GenerateFromText(ctx, test.Skill, sourceText, test.NumQuestions)
	if err != nil {
		return err
	}

	if err := s.testRepo.Create(test); err != nil {
		return err
	}

	for i := range questions {
		questions[i].TestID = test.ID
		if err := s.questionRepo.Create(&questions[i]); err != nil {
			return err
		}
	}
	test.Questions = questions

	logger.Log.Info("Generated test created from document",
		zap.Uint("testId", test.ID),
		zap.String("skill", test.Skill),
		zap.Int("questions", len(questions)),
		zap.Int("sourceChars", len(sourceText)))
	return nil
}

func (s *TestService) GetTest(id uint) (*model.Test, error) {
	t, err := s.testRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrTestNotFound
	}
	return t, err
}

// GetTestWithQuestions loads a test with its full question set. Unless the
// caller may see answers, correctness information is stripped first.
func (s *TestService) GetTestWithQuestions(id uint, includeAnswers bool) (*model.Test, error) {
	t, err := s.testRepo.FindWithQuestions(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}

	if !includeAnswers {
		for i := range t.Questions {
			t.Questions[i].CorrectAnswer = ""
			for j := range t.Questions[i].Options {
				t.Questions[i].Options[j].IsCorrect = false
			}
		}
	}
	return t, nil
}

func (s *TestService) ListTests(page, limit int) ([]model.Test, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.testRepo.List((page-1)*limit, limit)
}

func (s *TestService) UpdateTest(test *model.Test) error {
	if _, err := s.GetTest(test.ID); err != nil {
		return err
	}
	return s.testRepo.Update(test)
}

func (s *TestService) DeleteTest(id uint) error {
	if _, err := s.GetTest(id); err != nil {
		return err
	}
	return s.testRepo.Delete(id)
}

func (s *TestService) DeleteAllTests() (int64, error) {
	return s.testRepo.DeleteAll()
}

// DrawQuestions returns the test's question set for a candidate, drawing a
// random subset capped at the test's configured size. Correctness flags
// are stripped before the questions leave the server.
func (s *TestService) DrawQuestions(testID uint) ([]model.Question, error) {
	test, err := s.GetTest(testID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.RandomByTest(testID, test.NumQuestions)
	if err != nil {
		return nil, err
	}

	for i := range questions {
		questions[i].CorrectAnswer = ""
		for j := range questions[i].Options {
			questions[i].Options[j].IsCorrect = false
		}
	}
	return questions, nil
}
