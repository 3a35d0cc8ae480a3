package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newProctoringService(t *testing.T, engine *fakeFaceEngine) (*ProctoringService, *ViolationService, *gorm.DB, string) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	if engine != nil {
		cfg.FaceEngine.BaseURL = engine.server(t).URL
	}

	storage, err := NewStorageProvider(cfg)
	require.NoError(t, err)

	sessionRepo := repository.NewSessionRepository(db, nil)
	violationSvc := NewViolationService(repository.NewViolationRepository(db), sessionRepo)
	svc := NewProctoringService(
		repository.NewProctoringRepository(db),
		sessionRepo,
		violationSvc,
		storage,
		NewFaceEngine(cfg),
	)
	return svc, violationSvc, db, cfg.Storage.LocalPath
}

func TestSaveScreenCapture(t *testing.T) {
	svc, _, db, basePath := newProctoringService(t, nil)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	capture, err := svc.SaveScreenCapture(context.Background(), session.ID,
		bytes.NewReader([]byte("png-bytes")), 9, ".png")
	require.NoError(t, err)
	assert.Equal(t, session.ID, capture.SessionID)

	data, err := os.ReadFile(filepath.Join(basePath, capture.ImagePath))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	captures, err := svc.ListCaptures(session.ID)
	require.NoError(t, err)
	assert.Len(t, captures, 1)
}

func TestSaveScreenCaptureRejectsFinalSession(t *testing.T) {
	svc, _, db, _ := newProctoringService(t, nil)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)
	require.NoError(t, db.Model(session).Update("status", model.SessionCompleted).Error)

	_, err := svc.SaveScreenCapture(context.Background(), session.ID,
		bytes.NewReader([]byte("png-bytes")), 9, ".png")
	assert.ErrorIs(t, err, util.ErrSessionFinal)
}

func TestWebcamCheckFlagsMultipleFaces(t *testing.T) {
	engine := &fakeFaceEngine{faceCount: 3}
	svc, violationSvc, db, _ := newProctoringService(t, engine)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	result, err := svc.CheckWebcamSnapshot(context.Background(), session.ID,
		bytes.NewReader([]byte("frame-bytes")), 11, ".jpg")
	require.NoError(t, err)
	assert.Equal(t, 3, result.FaceCount)
	assert.True(t, result.Violation)

	violations, err := violationSvc.ListBySessionAndType(session.ID, model.ViolationMultipleFaces)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, result.ImagePath, violations[0].Filepath)
}

func TestWebcamCheckSingleFaceIsClean(t *testing.T) {
	engine := &fakeFaceEngine{faceCount: 1}
	svc, violationSvc, db, _ := newProctoringService(t, engine)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	result, err := svc.CheckWebcamSnapshot(context.Background(), session.ID,
		bytes.NewReader([]byte("frame-bytes")), 11, ".jpg")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FaceCount)
	assert.False(t, result.Violation)

	violations, err := violationSvc.ListBySession(session.ID)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestSaveAudioEvidence(t *testing.T) {
	svc, _, db, basePath := newProctoringService(t, nil)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	v, err := svc.SaveAudioEvidence(context.Background(), session.ID,
		bytes.NewReader([]byte("webm-bytes")), 10, ".webm",
		map[string]interface{}{"issue": "voice_detected"})
	require.NoError(t, err)
	assert.Equal(t, model.ViolationAudioSuspicious, v.ViolationType)
	require.NotEmpty(t, v.Filepath)

	_, err = os.Stat(filepath.Join(basePath, v.Filepath))
	assert.NoError(t, err)
}

func TestRecordAnomaly(t *testing.T) {
	svc, _, db, _ := newProctoringService(t, nil)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	anomaly, err := svc.RecordAnomaly(session.ID, "rapid_answer_pattern",
		map[string]interface{}{"answersPerMinute": 14})
	require.NoError(t, err)
	assert.Equal(t, "rapid_answer_pattern", anomaly.AnomalyType)

	anomalies, err := svc.ListAnomalies(session.ID)
	require.NoError(t, err)
	assert.Len(t, anomalies, 1)
}

func TestRestrictedShortcutsSeeded(t *testing.T) {
	svc, _, _, _ := newProctoringService(t, nil)

	shortcuts, err := svc.RestrictedShortcuts()
	require.NoError(t, err)
	require.NotEmpty(t, shortcuts)

	combos := make(map[string]bool, len(shortcuts))
	for _, s := range shortcuts {
		combos[s.Combination] = true
	}
	assert.True(t, combos["alt+tab"])
	assert.True(t, combos["f12"])
}

func TestReportKeyboardChecksRestrictedList(t *testing.T) {
	svc, violationSvc, db, _ := newProctoringService(t, nil)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	// Seeded restricted combination, case-insensitive.
	verdict, err := svc.ReportKeyboard(session.ID, "Alt+Tab")
	require.NoError(t, err)
	assert.True(t, verdict.Restricted)
	assert.True(t, verdict.Violation)

	violations, err := violationSvc.ListBySessionAndType(session.ID, model.ViolationKeyboardShortcut)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Contains(t, string(violations[0].Details), `"combination":"alt+tab"`)

	// An allowed combination is reported but never logged.
	verdict, err = svc.ReportKeyboard(session.ID, "ctrl+s")
	require.NoError(t, err)
	assert.False(t, verdict.Restricted)
	assert.False(t, verdict.Violation)

	violations, err = violationSvc.ListBySessionAndType(session.ID, model.ViolationKeyboardShortcut)
	require.NoError(t, err)
	assert.Len(t, violations, 1)
}

func TestReportKeyboardRejectsFinalSession(t *testing.T) {
	svc, _, db, _ := newProctoringService(t, nil)
	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)
	require.NoError(t, db.Model(session).Update("status", model.SessionCompleted).Error)

	_, err := svc.ReportKeyboard(session.ID, "alt+tab")
	assert.ErrorIs(t, err, util.ErrSessionFinal)
}
