package service

import (
	"encoding/json"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
)

// Client-side analysis thresholds. The exam client ships raw measurements;
// classification happens here so the thresholds stay server-controlled.
const (
	lightingDarkBelow    = 0.3
	lightingBrightAbove  = 0.8
	lightingSuddenDelta  = 0.2
	gazeMinConfidence    = 0.5
	audioMinConfidence   = 0.6
	audioVoiceConfidence = 0.7
	audioNoiseDB         = 70.0
	audioSilenceDB       = 30.0
)

// LightingSample is one brightness reading from the webcam feed.
type LightingSample struct {
	Brightness         float64 `json:"brightness" binding:"min=0,max=1"`
	PreviousBrightness float64 `json:"previousBrightness"`
}

// GazeSample is one gaze estimate from the client's face tracker.
type GazeSample struct {
	IsLookingAway bool    `json:"isLookingAway"`
	Confidence    float64 `json:"confidence" binding:"min=0,max=1"`
}

// AudioSample is one audio analysis window from the client.
type AudioSample struct {
	Confidence      float64 `json:"confidence" binding:"min=0,max=1"`
	VoiceConfidence float64 `json:"voiceConfidence"`
	NoiseLevelDB    float64 `json:"noiseLevelDb"`
}

// MonitorVerdict classifies a sample and says whether it warrants a
// violation record.
type MonitorVerdict struct {
	Status    string `json:"status"`
	Issue     string `json:"issue,omitempty"`
	Violation bool   `json:"violation"`
}

type MonitorService struct {
	violationSvc  *ViolationService
	sessionRepo   *repository.SessionRepository
	violationRepo *repository.ViolationRepository
}

func NewMonitorService(violationSvc *ViolationService, sessionRepo *repository.SessionRepository, violationRepo *repository.ViolationRepository) *MonitorService {
	return &MonitorService{
		violationSvc:  violationSvc,
		sessionRepo:   sessionRepo,
		violationRepo: violationRepo,
	}
}

// AnalyzeLighting classifies a brightness sample: too dark, too bright, a
// sudden change, or normal.
func AnalyzeLighting(sample LightingSample) MonitorVerdict {
	switch {
	case sample.Brightness < lightingDarkBelow:
		return MonitorVerdict{Status: "issue", Issue: "too_dark", Violation: true}
	case sample.Brightness > lightingBrightAbove:
		return MonitorVerdict{Status: "issue", Issue: "too_bright", Violation: true}
	case sample.PreviousBrightness > 0 && abs(sample.Brightness-sample.PreviousBrightness) > lightingSuddenDelta:
		return MonitorVerdict{Status: "issue", Issue: "sudden_change", Violation: true}
	default:
		return MonitorVerdict{Status: "normal"}
	}
}

// AnalyzeGaze classifies a gaze sample. Low-confidence estimates come back
// unknown rather than penalizing the candidate.
func AnalyzeGaze(sample GazeSample) MonitorVerdict {
	if sample.Confidence < gazeMinConfidence {
		return MonitorVerdict{Status: "unknown"}
	}
	if sample.IsLookingAway {
		return MonitorVerdict{Status: "away", Violation: true}
	}
	return MonitorVerdict{Status: "on_screen"}
}

// AnalyzeAudio classifies an audio window: suspicious voice activity,
// excessive noise, or prolonged silence.
func AnalyzeAudio(sample AudioSample) MonitorVerdict {
	if sample.Confidence < audioMinConfidence {
		return MonitorVerdict{Status: "unknown"}
	}
	switch {
	case sample.VoiceConfidence > audioVoiceConfidence:
		return MonitorVerdict{Status: "issue", Issue: "voice_detected", Violation: true}
	case sample.NoiseLevelDB > audioNoiseDB:
		return MonitorVerdict{Status: "issue", Issue: "excessive_noise", Violation: true}
	case sample.NoiseLevelDB < audioSilenceDB:
		return MonitorVerdict{Status: "silence"}
	default:
		return MonitorVerdict{Status: "normal"}
	}
}

// ReportLighting analyzes a sample and, when it flags, records a
// lighting_issue violation with the sample in the details.
func (s *MonitorService) ReportLighting(sessionID uint, sample LightingSample, screenshot string) (MonitorVerdict, error) {
	verdict := AnalyzeLighting(sample)
	if !verdict.Violation {
		return verdict, nil
	}
	_, err := s.violationSvc.LogLightingIssue(sessionID, map[string]interface{}{
		"issue":      verdict.Issue,
		"brightness": sample.Brightness,
	}, screenshot)
	return verdict, err
}

func (s *MonitorService) ReportGaze(sessionID uint, sample GazeSample, screenshot string) (MonitorVerdict, error) {
	verdict := AnalyzeGaze(sample)
	if !verdict.Violation {
		return verdict, nil
	}
	_, err := s.violationSvc.LogGazeAway(sessionID, map[string]interface{}{
		"confidence": sample.Confidence,
	}, screenshot)
	return verdict, err
}

func (s *MonitorService) ReportAudio(sessionID uint, sample AudioSample, evidence string) (MonitorVerdict, error) {
	verdict := AnalyzeAudio(sample)
	if !verdict.Violation {
		return verdict, nil
	}
	_, err := s.violationSvc.LogAudioSuspicious(sessionID, map[string]interface{}{
		"issue":           verdict.Issue,
		"voiceConfidence": sample.VoiceConfidence,
		"noiseLevelDb":    sample.NoiseLevelDB,
	}, evidence)
	return verdict, err
}

// FeatureStatus reports the latest recorded state of one monitored feature
// for the session: the most recent violation of its type, if any.
type FeatureStatus struct {
	SessionID uint             `json:"sessionId"`
	Feature   string           `json:"feature"`
	Latest    *model.Violation `json:"latest,omitempty"`
	Count     int64            `json:"count"`
}

// DetailStat aggregates one numeric field across a feature's violation
// details, e.g. the duration of tab switches.
type DetailStat struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

// FeatureSummary adds the full per-type breakdown and the feature's
// aggregated numeric details alongside its own count.
type FeatureSummary struct {
	FeatureStatus
	ByType  map[model.ViolationType]int64 `json:"byType"`
	Details map[string]DetailStat         `json:"details,omitempty"`
}

func (s *MonitorService) Status(sessionID uint, feature string, vt model.ViolationType) (*FeatureStatus, error) {
	if _, err := s.sessionRepo.FindByID(sessionID); err != nil {
		return nil, util.ErrSessionNotFound
	}

	latest, err := s.violationRepo.LatestBySessionAndType(sessionID, vt)
	if err != nil {
		return nil, err
	}
	count, err := s.violationRepo.CountBySessionAndType(sessionID, vt)
	if err != nil {
		return nil, err
	}
	return &FeatureStatus{
		SessionID: sessionID,
		Feature:   feature,
		Latest:    latest,
		Count:     count,
	}, nil
}

func (s *MonitorService) Summary(sessionID uint, feature string, vt model.ViolationType) (*FeatureSummary, error) {
	status, err := s.Status(sessionID, feature, vt)
	if err != nil {
		return nil, err
	}
	byType, err := s.violationSvc.SessionSummary(sessionID)
	if err != nil {
		return nil, err
	}

	violations, err := s.violationRepo.ListBySessionAndType(sessionID, vt)
	if err != nil {
		return nil, err
	}
	return &FeatureSummary{
		FeatureStatus: *status,
		ByType:        byType,
		Details:       aggregateDetails(violations),
	}, nil
}

// aggregateDetails totals and averages every numeric field found in the
// violations' details blobs, so the tab-switch summary carries the average
// time away, the lighting summary the average brightness, and so on.
func aggregateDetails(violations []model.Violation) map[string]DetailStat {
	stats := make(map[string]DetailStat)
	for _, v := range violations {
		if len(v.Details) == 0 {
			continue
		}
		var details map[string]interface{}
		if err := json.Unmarshal(v.Details, &details); err != nil {
			continue
		}
		for key, value := range details {
			num, ok := value.(float64)
			if !ok {
				continue
			}
			stat := stats[key]
			stat.Count++
			stat.Total += num
			stats[key] = stat
		}
	}
	for key, stat := range stats {
		stat.Average = stat.Total / float64(stat.Count)
		stats[key] = stat
	}
	if len(stats) == 0 {
		return nil
	}
	return stats
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
