package service

import (
	"context"
	"testing"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*TestService, *gorm.DB) {
	db := newTestDB(t)
	return NewTestService(
		repository.NewTestRepository(db),
		repository.NewQuestionRepository(db),
		nil,
	), db
}

func TestDrawQuestionsStripsCorrectness(t *testing.T) {
	svc, db := newTestService(t)
	test := seedTest(t, db, 3, 30)

	questions, err := svc.DrawQuestions(test.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 3)

	for _, q := range questions {
		assert.Empty(t, q.CorrectAnswer)
		require.Len(t, q.Options, 4)
		for _, opt := range q.Options {
			assert.False(t, opt.IsCorrect)
		}
	}

	// Originals keep their answer key.
	stored, err := svc.GetTestWithQuestions(test.ID, true)
	require.NoError(t, err)
	assert.True(t, stored.Questions[0].Options[0].IsCorrect)
}

func TestGetTestWithQuestionsStripsAnswersForCandidates(t *testing.T) {
	svc, db := newTestService(t)
	test := seedTest(t, db, 2, 30)

	stripped, err := svc.GetTestWithQuestions(test.ID, false)
	require.NoError(t, err)
	require.Len(t, stripped.Questions, 2)
	for _, q := range stripped.Questions {
		assert.Empty(t, q.CorrectAnswer)
		for _, opt := range q.Options {
			assert.False(t, opt.IsCorrect)
		}
	}

	_, err = svc.GetTestWithQuestions(9999, false)
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}

func TestDrawCapsAtConfiguredSize(t *testing.T) {
	svc, db := newTestService(t)
	test := seedTest(t, db, 5, 30)
	// Shrink the draw size below the stored question count.
	require.NoError(t, db.Model(test).Update("num_questions", 2).Error)

	questions, err := svc.DrawQuestions(test.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestDeleteTestCascades(t *testing.T) {
	svc, db := newTestService(t)
	test := seedTest(t, db, 2, 30)

	require.NoError(t, svc.DeleteTest(test.ID))

	_, err := svc.GetTest(test.ID)
	assert.ErrorIs(t, err, util.ErrTestNotFound)

	var questionCount, optionCount int64
	require.NoError(t, db.Model(&model.Question{}).Where("test_id = ?", test.ID).Count(&questionCount).Error)
	require.NoError(t, db.Model(&model.Option{}).Count(&optionCount).Error)
	assert.Zero(t, questionCount)
	assert.Zero(t, optionCount)
}

func TestGeneratedTestRequiresConfiguration(t *testing.T) {
	db := newTestDB(t)
	svc := NewTestService(
		repository.NewTestRepository(db),
		repository.NewQuestionRepository(db),
		&QuestionGenerator{cfg: testConfig(), keys: &KeyManager{}},
	)

	err := svc.CreateGeneratedTest(context.Background(), &model.Test{Skill: "golang", NumQuestions: 3, Duration: 30})
	assert.ErrorIs(t, err, util.ErrGenAIUnconfigured)

	err = svc.CreateGeneratedTestFromText(context.Background(),
		&model.Test{Skill: "golang", NumQuestions: 3, Duration: 30}, "source text")
	assert.ErrorIs(t, err, util.ErrGenAIUnconfigured)
}
