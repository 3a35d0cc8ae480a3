package service

import (
	"testing"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeLighting(t *testing.T) {
	tests := []struct {
		name    string
		sample  LightingSample
		status  string
		issue   string
		flagged bool
	}{
		{"too dark", LightingSample{Brightness: 0.1}, "issue", "too_dark", true},
		{"too bright", LightingSample{Brightness: 0.9}, "issue", "too_bright", true},
		{"sudden change", LightingSample{Brightness: 0.6, PreviousBrightness: 0.35}, "issue", "sudden_change", true},
		{"normal", LightingSample{Brightness: 0.5, PreviousBrightness: 0.45}, "normal", "", false},
		{"boundary dark", LightingSample{Brightness: 0.3}, "normal", "", false},
		{"boundary bright", LightingSample{Brightness: 0.8}, "normal", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeLighting(tt.sample)
			assert.Equal(t, tt.status, verdict.Status)
			assert.Equal(t, tt.issue, verdict.Issue)
			assert.Equal(t, tt.flagged, verdict.Violation)
		})
	}
}

func TestAnalyzeGaze(t *testing.T) {
	tests := []struct {
		name    string
		sample  GazeSample
		status  string
		flagged bool
	}{
		{"low confidence is unknown", GazeSample{IsLookingAway: true, Confidence: 0.4}, "unknown", false},
		{"looking away", GazeSample{IsLookingAway: true, Confidence: 0.9}, "away", true},
		{"on screen", GazeSample{IsLookingAway: false, Confidence: 0.9}, "on_screen", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeGaze(tt.sample)
			assert.Equal(t, tt.status, verdict.Status)
			assert.Equal(t, tt.flagged, verdict.Violation)
		})
	}
}

func TestAnalyzeAudio(t *testing.T) {
	tests := []struct {
		name    string
		sample  AudioSample
		status  string
		issue   string
		flagged bool
	}{
		{"low confidence is unknown", AudioSample{Confidence: 0.5, VoiceConfidence: 0.9}, "unknown", "", false},
		{"voice detected", AudioSample{Confidence: 0.9, VoiceConfidence: 0.8, NoiseLevelDB: 50}, "issue", "voice_detected", true},
		{"excessive noise", AudioSample{Confidence: 0.9, NoiseLevelDB: 75}, "issue", "excessive_noise", true},
		{"silence", AudioSample{Confidence: 0.9, NoiseLevelDB: 20}, "silence", "", false},
		{"normal", AudioSample{Confidence: 0.9, NoiseLevelDB: 45}, "normal", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := AnalyzeAudio(tt.sample)
			assert.Equal(t, tt.status, verdict.Status)
			assert.Equal(t, tt.issue, verdict.Issue)
			assert.Equal(t, tt.flagged, verdict.Violation)
		})
	}
}

func TestReportRecordsViolationOnlyWhenFlagged(t *testing.T) {
	db := newTestDB(t)
	violationRepo := repository.NewViolationRepository(db)
	sessionRepo := repository.NewSessionRepository(db, nil)
	violationSvc := NewViolationService(violationRepo, sessionRepo)
	svc := NewMonitorService(violationSvc, sessionRepo, violationRepo)

	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	verdict, err := svc.ReportLighting(session.ID, LightingSample{Brightness: 0.5}, "")
	require.NoError(t, err)
	assert.False(t, verdict.Violation)

	verdict, err = svc.ReportLighting(session.ID, LightingSample{Brightness: 0.1}, "captures/1/x.png")
	require.NoError(t, err)
	assert.True(t, verdict.Violation)

	violations, err := violationSvc.ListBySession(session.ID)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, model.ViolationLightingIssue, violations[0].ViolationType)
	assert.Equal(t, "captures/1/x.png", violations[0].Filepath)
}

func TestFeatureStatusAndSummary(t *testing.T) {
	db := newTestDB(t)
	violationRepo := repository.NewViolationRepository(db)
	sessionRepo := repository.NewSessionRepository(db, nil)
	violationSvc := NewViolationService(violationRepo, sessionRepo)
	svc := NewMonitorService(violationSvc, sessionRepo, violationRepo)

	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	_, err := violationSvc.LogGazeAway(session.ID, nil, "")
	require.NoError(t, err)
	_, err = violationSvc.LogGazeAway(session.ID, nil, "")
	require.NoError(t, err)
	_, err = violationSvc.LogTabSwitch(session.ID, nil)
	require.NoError(t, err)

	status, err := svc.Status(session.ID, "gaze", model.ViolationGazeAway)
	require.NoError(t, err)
	assert.EqualValues(t, 2, status.Count)
	require.NotNil(t, status.Latest)
	assert.Equal(t, model.ViolationGazeAway, status.Latest.ViolationType)

	summary, err := svc.Summary(session.ID, "gaze", model.ViolationGazeAway)
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.ByType[model.ViolationGazeAway])
	assert.EqualValues(t, 1, summary.ByType[model.ViolationTabSwitch])

	// Feature with no violations has an empty status.
	status, err = svc.Status(session.ID, "audio", model.ViolationAudioSuspicious)
	require.NoError(t, err)
	assert.EqualValues(t, 0, status.Count)
	assert.Nil(t, status.Latest)
}

func TestSummaryAggregatesNumericDetails(t *testing.T) {
	db := newTestDB(t)
	violationRepo := repository.NewViolationRepository(db)
	sessionRepo := repository.NewSessionRepository(db, nil)
	violationSvc := NewViolationService(violationRepo, sessionRepo)
	svc := NewMonitorService(violationSvc, sessionRepo, violationRepo)

	test := seedTest(t, db, 1, 30)
	session := seedSession(t, db, test.ID)

	_, err := violationSvc.LogTabSwitch(session.ID, map[string]interface{}{"durationSeconds": 10.0})
	require.NoError(t, err)
	_, err = violationSvc.LogTabSwitch(session.ID, map[string]interface{}{"durationSeconds": 20.0})
	require.NoError(t, err)
	// Non-numeric detail fields stay out of the aggregation.
	_, err = violationSvc.LogTabSwitch(session.ID, map[string]interface{}{"target": "mail"})
	require.NoError(t, err)

	summary, err := svc.Summary(session.ID, "tab", model.ViolationTabSwitch)
	require.NoError(t, err)
	require.Contains(t, summary.Details, "durationSeconds")

	stat := summary.Details["durationSeconds"]
	assert.Equal(t, 2, stat.Count)
	assert.InDelta(t, 30.0, stat.Total, 0.001)
	assert.InDelta(t, 15.0, stat.Average, 0.001)
	assert.NotContains(t, summary.Details, "target")

	// A feature with no violations carries no detail stats.
	empty, err := svc.Summary(session.ID, "audio", model.ViolationAudioSuspicious)
	require.NoError(t, err)
	assert.Nil(t, empty.Details)
}
