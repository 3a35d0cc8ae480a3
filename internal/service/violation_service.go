package service

import (
	"encoding/json"
	"time"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"
	"exam_proctor_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type ViolationService struct {
	violationRepo *repository.ViolationRepository
	sessionRepo   *repository.SessionRepository
}

func NewViolationService(violationRepo *repository.ViolationRepository, sessionRepo *repository.SessionRepository) *ViolationService {
	return &ViolationService{violationRepo: violationRepo, sessionRepo: sessionRepo}
}

// Log records a violation against a live session. Unknown types are
// accepted and persisted but logged with a warning. Details merge the
// canonical description for known types.
func (s *ViolationService) Log(sessionID uint, vt model.ViolationType, details map[string]interface{}, filepath string) (*model.Violation, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if session.Status.IsFinal() {
		return nil, util.ErrSessionFinal
	}

	if details == nil {
		details = map[string]interface{}{}
	}
	if desc, known := model.ViolationDescriptions[vt]; known {
		if _, set := details["description"]; !set {
			details["description"] = desc
		}
	} else {
		logger.Log.Warn("Unknown violation type logged",
			zap.Uint("sessionId", sessionID),
			zap.String("violationType", string(vt)))
	}

	raw, err := json.Marshal(details)
	if err != nil {
		return nil, err
	}

	v := &model.Violation{
		SessionID:     sessionID,
		Timestamp:     time.Now(),
		ViolationType: vt,
		Details:       raw,
		Filepath:      filepath,
	}
	if err := s.violationRepo.Create(v); err != nil {
		return nil, err
	}

	monitoring.ViolationCounter.WithLabelValues(string(vt)).Inc()
	logger.Log.Info("Violation logged",
		zap.Uint("sessionId", sessionID),
		zap.String("violationType", string(vt)))
	return v, nil
}

func (s *ViolationService) LogTabSwitch(sessionID uint, details map[string]interface{}) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationTabSwitch, details, "")
}

func (s *ViolationService) LogWindowBlur(sessionID uint, details map[string]interface{}) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationWindowBlur, details, "")
}

func (s *ViolationService) LogFullscreenExit(sessionID uint, details map[string]interface{}) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationFullscreenExit, details, "")
}

func (s *ViolationService) LogKeyboardShortcut(sessionID uint, combination string) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationKeyboardShortcut, map[string]interface{}{
		"combination": combination,
	}, "")
}

func (s *ViolationService) LogCameraPermissionDenied(sessionID uint, details map[string]interface{}) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationCameraPermission, details, "")
}

func (s *ViolationService) LogMicrophonePermissionDenied(sessionID uint, details map[string]interface{}) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationMicrophonePermission, details, "")
}

func (s *ViolationService) LogBrowserCompatibility(sessionID uint, details map[string]interface{}) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationBrowserCompatibility, details, "")
}

func (s *ViolationService) LogLightingIssue(sessionID uint, details map[string]interface{}, screenshot string) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationLightingIssue, details, screenshot)
}

func (s *ViolationService) LogGazeAway(sessionID uint, details map[string]interface{}, screenshot string) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationGazeAway, details, screenshot)
}

func (s *ViolationService) LogMultipleFaces(sessionID uint, faceCount int, screenshot string) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationMultipleFaces, map[string]interface{}{
		"faceCount": faceCount,
	}, screenshot)
}

func (s *ViolationService) LogAudioSuspicious(sessionID uint, details map[string]interface{}, evidence string) (*model.Violation, error) {
	return s.Log(sessionID, model.ViolationAudioSuspicious, details, evidence)
}

func (s *ViolationService) ListBySession(sessionID uint) ([]model.Violation, error) {
	if _, err := s.sessionRepo.FindByID(sessionID); err != nil {
		return nil, util.ErrSessionNotFound
	}
	return s.violationRepo.ListBySession(sessionID)
}

func (s *ViolationService) ListBySessionAndType(sessionID uint, vt model.ViolationType) ([]model.Violation, error) {
	if _, err := s.sessionRepo.FindByID(sessionID); err != nil {
		return nil, util.ErrSessionNotFound
	}
	return s.violationRepo.ListBySessionAndType(sessionID, vt)
}

// SessionSummary aggregates a session's violations by type.
func (s *ViolationService) SessionSummary(sessionID uint) (map[model.ViolationType]int64, error) {
	if _, err := s.sessionRepo.FindByID(sessionID); err != nil {
		return nil, util.ErrSessionNotFound
	}
	rows, err := s.violationRepo.CountByTypeForSession(sessionID)
	if err != nil {
		return nil, err
	}
	summary := make(map[model.ViolationType]int64, len(rows))
	for _, row := range rows {
		summary[row.ViolationType] = row.Count
	}
	return summary, nil
}
