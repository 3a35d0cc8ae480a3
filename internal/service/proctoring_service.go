package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"

	"go.uber.org/zap"
)

// ProctoringService handles uploaded monitoring media: screen captures,
// webcam snapshots and audio evidence clips.
type ProctoringService struct {
	proctoringRepo *repository.ProctoringRepository
	sessionRepo    *repository.SessionRepository
	violationSvc   *ViolationService
	storage        StorageProvider
	engine         *FaceEngine
}

func NewProctoringService(proctoringRepo *repository.ProctoringRepository, sessionRepo *repository.SessionRepository, violationSvc *ViolationService, storage StorageProvider, engine *FaceEngine) *ProctoringService {
	return &ProctoringService{
		proctoringRepo: proctoringRepo,
		sessionRepo:    sessionRepo,
		violationSvc:   violationSvc,
		storage:        storage,
		engine:         engine,
	}
}

func (s *ProctoringService) liveSession(sessionID uint) (*model.TestSession, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if session.Status.IsFinal() {
		return nil, util.ErrSessionFinal
	}
	return session, nil
}

// SaveScreenCapture stores an uploaded screenshot and records it against
// the session.
func (s *ProctoringService) SaveScreenCapture(ctx context.Context, sessionID uint, image io.Reader, size int64, ext string) (*model.ScreenCapture, error) {
	if _, err := s.liveSession(sessionID); err != nil {
		return nil, err
	}

	objName := MediaObjectName("captures", sessionID, ext)
	path, err := s.storage.Save(ctx, objName, image, size, "image/png")
	if err != nil {
		return nil, err
	}

	capture := &model.ScreenCapture{
		SessionID: sessionID,
		Timestamp: time.Now(),
		ImagePath: path,
	}
	if err := s.proctoringRepo.CreateCapture(capture); err != nil {
		return nil, err
	}
	return capture, nil
}

func (s *ProctoringService) ListCaptures(sessionID uint) ([]model.ScreenCapture, error) {
	if _, err := s.sessionRepo.FindByID(sessionID); err != nil {
		return nil, util.ErrSessionNotFound
	}
	return s.proctoringRepo.ListCapturesBySession(sessionID)
}

// WebcamCheckResult reports the face count in a webcam snapshot and
// whether it triggered a violation.
type WebcamCheckResult struct {
	FaceCount int    `json:"faceCount"`
	Violation bool   `json:"violation"`
	ImagePath string `json:"imagePath"`
}

// CheckWebcamSnapshot stores a webcam frame and counts faces in it.
// Zero faces or more than one face raise the matching violation with the
// frame attached as evidence.
func (s *ProctoringService) CheckWebcamSnapshot(ctx context.Context, sessionID uint, image io.Reader, size int64, ext string) (*WebcamCheckResult, error) {
	if _, err := s.liveSession(sessionID); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(image)
	if err != nil {
		return nil, err
	}

	objName := MediaObjectName("webcam", sessionID, ext)
	path, err := s.storage.Save(ctx, objName, bytes.NewReader(data), size, "image/jpeg")
	if err != nil {
		return nil, err
	}

	result := &WebcamCheckResult{FaceCount: 1, ImagePath: path}
	if !s.engine.Configured() {
		return result, nil
	}

	detect, err := s.engine.Detect(ctx, bytes.NewReader(data), "frame"+ext)
	if err != nil {
		logger.Log.Warn("Face detection failed on webcam frame",
			zap.Uint("sessionId", sessionID), zap.Error(err))
		return result, nil
	}
	result.FaceCount = detect.FaceCount

	if detect.FaceCount > 1 {
		result.Violation = true
		if _, err := s.violationSvc.LogMultipleFaces(sessionID, detect.FaceCount, path); err != nil {
			return nil, err
		}
	} else if detect.FaceCount == 0 {
		result.Violation = true
		if _, err := s.violationSvc.LogGazeAway(sessionID, map[string]interface{}{
			"reason": "no_face_in_frame",
		}, path); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SaveAudioEvidence stores an uploaded audio clip, probes its metadata and
// attaches both to an audio_suspicious violation.
func (s *ProctoringService) SaveAudioEvidence(ctx context.Context, sessionID uint, clip io.Reader, size int64, ext string, details map[string]interface{}) (*model.Violation, error) {
	if _, err := s.liveSession(sessionID); err != nil {
		return nil, err
	}

	objName := MediaObjectName("audio", sessionID, ext)
	path, err := s.storage.Save(ctx, objName, clip, size, "audio/webm")
	if err != nil {
		return nil, err
	}

	if details == nil {
		details = map[string]interface{}{}
	}

	// Probing needs a local file; skipped when media lives in object storage.
	if local, ok := s.storage.(*LocalStorage); ok {
		if full, err := util.SafeJoin(local.BasePath, path); err == nil {
			if info, err := util.ProbeMedia(full); err == nil {
				details["durationSeconds"] = info.Duration
				details["format"] = info.Format
				details["sizeBytes"] = info.Size
			} else {
				logger.Log.Warn("Audio probe failed",
					zap.Uint("sessionId", sessionID), zap.Error(err))
			}
		}
	}

	return s.violationSvc.LogAudioSuspicious(sessionID, details, path)
}

// RecordAnomaly persists a behavioral anomaly the client's tracker flagged
// without mapping it onto a violation type.
func (s *ProctoringService) RecordAnomaly(sessionID uint, anomalyType string, details map[string]interface{}) (*model.BehavioralAnomaly, error) {
	if _, err := s.liveSession(sessionID); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return nil, err
		}
		raw = data
	}

	anomaly := &model.BehavioralAnomaly{
		SessionID:   sessionID,
		Timestamp:   time.Now(),
		AnomalyType: anomalyType,
		Details:     raw,
	}
	if err := s.proctoringRepo.CreateAnomaly(anomaly); err != nil {
		return nil, err
	}
	return anomaly, nil
}

func (s *ProctoringService) ListAnomalies(sessionID uint) ([]model.BehavioralAnomaly, error) {
	if _, err := s.sessionRepo.FindByID(sessionID); err != nil {
		return nil, util.ErrSessionNotFound
	}
	return s.proctoringRepo.ListAnomaliesBySession(sessionID)
}

// RestrictedShortcuts returns the enabled keyboard combinations the exam
// client must block.
func (s *ProctoringService) RestrictedShortcuts() ([]model.RestrictedShortcut, error) {
	return s.proctoringRepo.RestrictedShortcuts()
}

// KeyboardVerdict classifies one reported key combination.
type KeyboardVerdict struct {
	Combination string `json:"combination"`
	Restricted  bool   `json:"restricted"`
	Violation   bool   `json:"violation"`
}

// ReportKeyboard checks a pressed combination against the restricted list
// and logs a keyboard_shortcut violation only when it matches.
func (s *ProctoringService) ReportKeyboard(sessionID uint, combination string) (*KeyboardVerdict, error) {
	if _, err := s.liveSession(sessionID); err != nil {
		return nil, err
	}

	combo := strings.ToLower(strings.TrimSpace(combination))
	restricted, err := s.proctoringRepo.IsRestrictedCombination(combo)
	if err != nil {
		return nil, err
	}

	verdict := &KeyboardVerdict{Combination: combo, Restricted: restricted}
	if !restricted {
		return verdict, nil
	}

	verdict.Violation = true
	if _, err := s.violationSvc.Log(sessionID, model.ViolationKeyboardShortcut, map[string]interface{}{
		"combination": combo,
		"restricted":  true,
	}, ""); err != nil {
		return nil, err
	}
	return verdict, nil
}

// OpenMedia streams a stored media file for admin review.
func (s *ProctoringService) OpenMedia(ctx context.Context, relPath string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, relPath)
}
