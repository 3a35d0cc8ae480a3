package service

import (
	"encoding/json"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"

	"go.uber.org/zap"
)

type PermissionService struct {
	permissionRepo *repository.PermissionRepository
	sessionRepo    *repository.SessionRepository
	violationSvc   *ViolationService
	cfg            *config.Config
}

func NewPermissionService(permissionRepo *repository.PermissionRepository, sessionRepo *repository.SessionRepository, violationSvc *ViolationService, cfg *config.Config) *PermissionService {
	return &PermissionService{
		permissionRepo: permissionRepo,
		sessionRepo:    sessionRepo,
		violationSvc:   violationSvc,
		cfg:            cfg,
	}
}

// LogPermission records a camera or microphone permission outcome.
// Identical entries within the dedup window are suppressed, and a denial
// additionally raises the matching permission violation. DeviceInfo may
// arrive as arbitrary JSON and is normalized to a string.
func (s *PermissionService) LogPermission(sessionID uint, permissionType string, granted bool, deviceInfo interface{}, errorMessage string) (*model.PermissionLog, bool, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, false, util.ErrSessionNotFound
	}
	if session.Status.IsFinal() {
		return nil, false, util.ErrSessionFinal
	}

	window := time.Duration(s.cfg.Proctoring.PermissionDedupMinutes) * time.Minute
	duplicate, err := s.permissionRepo.HasRecent(sessionID, permissionType, granted, window)
	if err != nil {
		return nil, false, err
	}
	if duplicate {
		logger.Log.Debug("Duplicate permission log suppressed",
			zap.Uint("sessionId", sessionID),
			zap.String("permissionType", permissionType),
			zap.Bool("granted", granted))
		return nil, true, nil
	}

	entry := &model.PermissionLog{
		SessionID:      sessionID,
		PermissionType: permissionType,
		Granted:        granted,
		DeviceInfo:     normalizeDeviceInfo(deviceInfo),
		ErrorMessage:   errorMessage,
		Timestamp:      time.Now(),
	}
	if err := s.permissionRepo.Create(entry); err != nil {
		return nil, false, err
	}

	if !granted {
		details := map[string]interface{}{
			"permissionType": permissionType,
		}
		if errorMessage != "" {
			details["error"] = errorMessage
		}
		switch permissionType {
		case "camera":
			s.violationSvc.LogCameraPermissionDenied(sessionID, details)
		case "microphone":
			s.violationSvc.LogMicrophonePermissionDenied(sessionID, details)
		}
	}
	return entry, false, nil
}

func (s *PermissionService) ListBySession(sessionID uint) ([]model.PermissionLog, error) {
	if _, err := s.sessionRepo.FindByID(sessionID); err != nil {
		return nil, util.ErrSessionNotFound
	}
	return s.permissionRepo.ListBySession(sessionID)
}

func normalizeDeviceInfo(v interface{}) string {
	switch info := v.(type) {
	case nil:
		return ""
	case string:
		return info
	default:
		raw, err := json.Marshal(info)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
