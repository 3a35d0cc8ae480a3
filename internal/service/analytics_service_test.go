package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAnalyticsService(t *testing.T) (*AnalyticsService, *ViolationService, *gorm.DB) {
	db := newTestDB(t)
	sessionRepo := repository.NewSessionRepository(db, nil)
	violationRepo := repository.NewViolationRepository(db)
	violationSvc := NewViolationService(violationRepo, sessionRepo)
	svc := NewAnalyticsService(
		sessionRepo,
		violationRepo,
		repository.NewTestRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
	return svc, violationSvc, db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{Name: "Sam", Email: "sam@example.com", Role: model.Candidate}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserAndTestSummaries(t *testing.T) {
	svc, violationSvc, db := newAnalyticsService(t)
	user := seedUser(t, db)
	test := seedTest(t, db, 2, 30)

	completed := seedSession(t, db, test.ID)
	pct := 75.0
	require.NoError(t, db.Model(completed).Updates(map[string]interface{}{
		"user_id":    user.ID,
		"status":     model.SessionCompleted,
		"percentage": pct,
	}).Error)

	terminated := seedSession(t, db, test.ID)
	require.NoError(t, db.Model(terminated).Updates(map[string]interface{}{
		"user_id": user.ID,
		"status":  model.SessionTerminated,
	}).Error)

	running := seedSession(t, db, test.ID)
	require.NoError(t, db.Model(running).Update("user_id", user.ID).Error)

	_, err := violationSvc.LogTabSwitch(running.ID, nil)
	require.NoError(t, err)

	userSummary, err := svc.UserSummary(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, userSummary.TotalSessions)
	assert.Equal(t, 1, userSummary.CompletedSessions)
	assert.Equal(t, 1, userSummary.TerminatedCount)
	assert.Equal(t, 1, userSummary.TotalViolations)
	require.NotNil(t, userSummary.AveragePercentage)
	assert.InDelta(t, 75.0, *userSummary.AveragePercentage, 0.001)

	testSummary, err := svc.TestSummary(context.Background(), test.ID)
	require.NoError(t, err)
	assert.Equal(t, "golang", testSummary.Skill)
	assert.Equal(t, 3, testSummary.TotalSessions)
	assert.Equal(t, 1, testSummary.TotalViolations)

	_, err = svc.UserSummary(context.Background(), 9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
	_, err = svc.TestSummary(context.Background(), 9999)
	assert.ErrorIs(t, err, util.ErrTestNotFound)
}

func TestViolationSummary(t *testing.T) {
	svc, violationSvc, db := newAnalyticsService(t)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	for i := 0; i < 3; i++ {
		_, err := violationSvc.LogTabSwitch(session.ID, nil)
		require.NoError(t, err)
	}
	_, err := violationSvc.LogWindowBlur(session.ID, nil)
	require.NoError(t, err)

	summary, err := svc.ViolationSummary(context.Background(), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 4, summary.Total)
	assert.EqualValues(t, 3, summary.ByType[model.ViolationTabSwitch])
	require.NotEmpty(t, summary.TopSessions)
	assert.Equal(t, session.ID, summary.TopSessions[0].SessionID)
}

func TestExportViolationsCSV(t *testing.T) {
	svc, violationSvc, db := newAnalyticsService(t)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	_, err := violationSvc.LogTabSwitch(session.ID, nil)
	require.NoError(t, err)
	_, err = violationSvc.LogMultipleFaces(session.ID, 3, "webcam/1/a.jpg")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportViolationsCSV(&buf, nil, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows
	assert.Equal(t, "violation_type", records[0][3])
	assert.Equal(t, string(model.ViolationTabSwitch), records[1][3])
	assert.Equal(t, "webcam/1/a.jpg", records[2][5])
}

func TestViolationSummaryByDay(t *testing.T) {
	svc, _, db := newAnalyticsService(t)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	violationRepo := repository.NewViolationRepository(db)
	day1 := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 21, 14, 30, 0, 0, time.UTC)
	for _, ts := range []time.Time{day1, day1.Add(time.Hour), day2} {
		require.NoError(t, violationRepo.Create(&model.Violation{
			SessionID:     session.ID,
			Timestamp:     ts,
			ViolationType: model.ViolationTabSwitch,
		}))
	}

	summary, err := svc.ViolationSummary(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, summary.ByDay, 2)
	assert.Equal(t, "2026-08-20", summary.ByDay[0].Date)
	assert.EqualValues(t, 2, summary.ByDay[0].Count)
	assert.Equal(t, "2026-08-21", summary.ByDay[1].Date)
	assert.EqualValues(t, 1, summary.ByDay[1].Count)

	// The since filter drops the older bucket.
	since := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)
	summary, err = svc.ViolationSummary(context.Background(), &since)
	require.NoError(t, err)
	require.Len(t, summary.ByDay, 1)
	assert.Equal(t, "2026-08-21", summary.ByDay[0].Date)
}
