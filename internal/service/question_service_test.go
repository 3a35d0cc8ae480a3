package service

import (
	"testing"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionService(t *testing.T) (*QuestionService, *TestService, *repository.TestRepository) {
	db := newTestDB(t)
	testRepo := repository.NewTestRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	generator := &QuestionGenerator{cfg: testConfig(), keys: &KeyManager{}}
	return NewQuestionService(questionRepo, testRepo),
		NewTestService(testRepo, questionRepo, generator),
		testRepo
}

func TestCreateQuestionsBatch(t *testing.T) {
	svc, testSvc, _ := newQuestionService(t)

	test := &model.Test{Skill: "go", NumQuestions: 2, Duration: 30}
	require.NoError(t, testSvc.CreateTest(test))

	batch := []model.Question{
		{
			QuestionText: "What does a nil map read return?",
			Options: []model.Option{
				{OptionText: "the zero value", IsCorrect: true},
				{OptionText: "a panic"},
			},
		},
		{
			QuestionText: "What does a nil map write do?",
			Options: []model.Option{
				{OptionText: "nothing"},
				{OptionText: "panics", IsCorrect: true},
			},
		},
	}
	require.NoError(t, svc.CreateQuestions(test.ID, batch))

	questions, err := svc.ListByTest(test.ID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.Equal(t, test.ID, q.TestID)
		assert.Len(t, q.Options, 2)
	}
}

func TestCreateQuestionsBatchUnknownTest(t *testing.T) {
	svc, _, _ := newQuestionService(t)

	err := svc.CreateQuestions(9999, []model.Question{{QuestionText: "orphan"}})
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}
