package service

import (
	"context"
	"testing"
	"time"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSessionService(t *testing.T) (*SessionService, *gorm.DB) {
	db := newTestDB(t)
	return NewSessionService(
		repository.NewSessionRepository(db, nil),
		repository.NewTestRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewUserRepository(db),
		testConfig(),
	), db
}

func TestStartSession(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 2, 30)

	session, err := svc.StartSession(test.ID, "Jo", "jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, session.Status)
	assert.Equal(t, test.ID, session.TestID)

	_, err = svc.StartSession(test.ID, "Jo", "")
	assert.ErrorIs(t, err, util.ErrEmailRequired)

	_, err = svc.StartSession(9999, "Jo", "jo@example.com")
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}

func TestStartSessionResolvesUserByEmail(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 1, 30)

	owner := &model.User{Name: "Owner", Email: "owner@example.com", Role: model.Candidate}
	require.NoError(t, db.Create(owner).Error)

	// The email decides whose session this is, not the caller's identity.
	session, err := svc.StartSession(test.ID, "Someone Else", "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, session.UserID)
	assert.Equal(t, "Owner", session.UserName)

	byUser, err := svc.ListByUser(owner.ID)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)
}

func TestStartSessionCreatesCandidateForUnknownEmail(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 1, 30)

	session, err := svc.StartSession(test.ID, "New Person", "new@example.com")
	require.NoError(t, err)
	require.NotZero(t, session.UserID)

	var user model.User
	require.NoError(t, db.Where("email = ?", "new@example.com").First(&user).Error)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "New Person", user.Name)
	assert.Equal(t, model.Candidate, user.Role)

	// Missing name falls back to the email's local part.
	session2, err := svc.StartSession(test.ID, "", "anon@example.com")
	require.NoError(t, err)
	assert.Equal(t, "anon", session2.UserName)
}

func TestSubmitScoresAgainstCorrectOptions(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 4, 30)
	session := seedSession(t, db, test.ID)

	// Two right, two wrong.
	var answers []AnswerSubmission
	for i, q := range test.Questions {
		selected := q.Options[0].ID
		if i >= 2 {
			selected = q.Options[1].ID
		}
		answers = append(answers, AnswerSubmission{QuestionID: q.ID, SelectedOptionID: selected})
	}

	result, err := svc.Submit(session.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.InDelta(t, 50.0, result.Percentage, 0.001)

	stored, err := svc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 2, *stored.Score)
	require.NotNil(t, stored.EndTime)

	var responses []model.UserResponse
	require.NoError(t, db.Where("session_id = ?", session.ID).Find(&responses).Error)
	assert.Len(t, responses, 4)

	// A completed session cannot be submitted again.
	_, err = svc.Submit(session.ID, answers)
	assert.ErrorIs(t, err, util.ErrSessionFinal)
}

func TestSubmitEmptyAnswers(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 2, 30)
	session := seedSession(t, db, test.ID)

	result, err := svc.Submit(session.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, 0, result.TotalQuestions)
	assert.Equal(t, 0.0, result.Percentage)
}

func TestTerminate(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	terminated, err := svc.Terminate(session.ID, "too many violations")
	require.NoError(t, err)
	assert.Equal(t, model.SessionTerminated, terminated.Status)
	require.NotNil(t, terminated.EndTime)

	_, err = svc.Terminate(session.ID, "again")
	assert.ErrorIs(t, err, util.ErrSessionFinal)
}

func TestValidate(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	status, live, err := svc.Validate(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, live)
	assert.Equal(t, model.SessionInProgress, status)

	_, err = svc.Terminate(session.ID, "")
	require.NoError(t, err)

	status, live, err = svc.Validate(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, live)
	assert.Equal(t, model.SessionTerminated, status)

	_, _, err = svc.Validate(context.Background(), 9999)
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestSweepExpired(t *testing.T) {
	svc, db := newSessionService(t)
	// 30 minute test, 10 minute grace.
	test := seedTest(t, db, 1, 30)

	stale := seedSession(t, db, test.ID)
	require.NoError(t, db.Model(stale).
		Update("start_time", time.Now().Add(-time.Hour)).Error)

	fresh := seedSession(t, db, test.ID)

	terminated := svc.SweepExpired()
	assert.Equal(t, 1, terminated)

	staleStored, err := svc.GetSession(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionTerminated, staleStored.Status)

	freshStored, err := svc.GetSession(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, freshStored.Status)
}

func TestListByStatus(t *testing.T) {
	svc, db := newSessionService(t)
	test := seedTest(t, db, 1, 30)

	first := seedSession(t, db, test.ID)
	seedSession(t, db, test.ID)

	_, err := svc.Terminate(first.ID, "left the room")
	require.NoError(t, err)

	completed, err := svc.ListByStatus(model.SessionCompleted)
	require.NoError(t, err)
	assert.Empty(t, completed)

	terminated, err := svc.ListByStatus(model.SessionTerminated)
	require.NoError(t, err)
	require.Len(t, terminated, 1)
	assert.Equal(t, first.ID, terminated[0].ID)

	active, err := svc.ListByStatus(model.SessionInProgress)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
