package service

import (
	"testing"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/pkg/database"
	"exam_proctor_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-string-at-least-32-chars!!"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Proctoring.SessionGraceMinutes = 10
	cfg.Proctoring.PermissionDedupMinutes = 5
	cfg.FaceEngine.MatchThreshold = 0.6
	return cfg
}

// seedTest inserts a test with n questions of 4 options each, the first
// option being correct.
func seedTest(t *testing.T, db *gorm.DB, n, duration int) *model.Test {
	t.Helper()

	test := &model.Test{Skill: "golang", NumQuestions: n, Duration: duration}
	require.NoError(t, db.Create(test).Error)

	questionRepo := repository.NewQuestionRepository(db)
	for i := 0; i < n; i++ {
		q := &model.Question{
			TestID:       test.ID,
			QuestionText: "question",
			Options: []model.Option{
				{OptionText: "right", IsCorrect: true},
				{OptionText: "wrong a"},
				{OptionText: "wrong b"},
				{OptionText: "wrong c"},
			},
		}
		require.NoError(t, questionRepo.Create(q))
		test.Questions = append(test.Questions, *q)
	}
	return test
}

func seedSession(t *testing.T, db *gorm.DB, testID uint) *model.TestSession {
	t.Helper()

	session := &model.TestSession{
		TestID:    testID,
		UserID:    1,
		UserEmail: "candidate@example.com",
		StartTime: time.Now(),
		Status:    model.SessionInProgress,
	}
	require.NoError(t, db.Create(session).Error)
	return session
}
