package service

import (
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionService struct {
	questionRepo *repository.QuestionRepository
	testRepo     *repository.TestRepository
}

func NewQuestionService(questionRepo *repository.QuestionRepository, testRepo *repository.TestRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, testRepo: testRepo}
}

func (s *QuestionService) CreateQuestion(q *model.Question) error {
	if _, err := s.testRepo.FindByID(q.TestID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrTestNotFound
		}
		return err
	}
	return s.questionRepo.Create(q)
}

// CreateQuestions inserts a batch of questions for one test. The parent
// test is checked once, not per question.
func (s *QuestionService) CreateQuestions(testID uint, questions []model.Question) error {
	if _, err := s.testRepo.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrTestNotFound
		}
		return err
	}
	for i := range questions {
		questions[i].TestID = testID
		if err := s.questionRepo.Create(&questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.questionRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) ListByTest(testID uint) ([]model.Question, error) {
	if _, err := s.testRepo.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return s.questionRepo.ListByTest(testID)
}

func (s *QuestionService) UpdateQuestion(q *model.Question) error {
	if _, err := s.GetQuestion(q.ID); err != nil {
		return err
	}
	return s.questionRepo.Update(q)
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	if _, err := s.GetQuestion(id); err != nil {
		return err
	}
	return s.questionRepo.Delete(id)
}

func (s *QuestionService) AddOption(questionID uint, text string, isCorrect bool) (*model.Option, error) {
	if _, err := s.GetQuestion(questionID); err != nil {
		return nil, err
	}
	opt := &model.Option{
		QuestionID: questionID,
		OptionText: text,
		IsCorrect:  isCorrect,
	}
	if err := s.questionRepo.AddOption(opt); err != nil {
		return nil, err
	}
	return opt, nil
}
