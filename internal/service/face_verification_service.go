package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"

	"go.uber.org/zap"
)

type FaceVerificationService struct {
	faceRepo *repository.FaceVerificationRepository
	storage  StorageProvider
	engine   *FaceEngine
	cfg      *config.Config
}

func NewFaceVerificationService(faceRepo *repository.FaceVerificationRepository, storage StorageProvider, engine *FaceEngine, cfg *config.Config) *FaceVerificationService {
	return &FaceVerificationService{
		faceRepo: faceRepo,
		storage:  storage,
		engine:   engine,
		cfg:      cfg,
	}
}

// UploadIDPhoto stores the reference photo after confirming it contains
// exactly one face. Verification state resets on re-upload.
func (s *FaceVerificationService) UploadIDPhoto(ctx context.Context, userID uint, photo io.Reader, size int64, ext string) (*model.FaceVerification, error) {
	data, err := io.ReadAll(photo)
	if err != nil {
		return nil, err
	}

	if s.engine.Configured() {
		detect, err := s.engine.Detect(ctx, bytes.NewReader(data), "id_photo"+ext)
		if err != nil {
			return nil, err
		}
		if detect.FaceCount == 0 {
			return nil, util.ErrNoFaceDetected
		}
		if detect.FaceCount > 1 {
			return nil, util.ErrMultipleFaces
		}
	}

	objName := MediaObjectName("id_photos", userID, ext)
	path, err := s.storage.Save(ctx, objName, bytes.NewReader(data), size, "image/jpeg")
	if err != nil {
		return nil, err
	}

	fv, err := s.faceRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if fv == nil {
		fv = &model.FaceVerification{UserID: userID}
	}
	fv.IDPhotoPath = path
	fv.IsVerified = false
	fv.MatchScore = nil
	fv.LivenessScore = nil
	if err := s.faceRepo.Save(fv); err != nil {
		return nil, err
	}

	logger.Log.Info("ID photo uploaded", zap.Uint("userId", userID))
	return fv, nil
}

// VerifyResult is the outcome of comparing a live snapshot against the
// stored ID photo.
type VerifyResult struct {
	Verified      bool    `json:"verified"`
	MatchScore    float64 `json:"matchScore"`
	LivenessScore float64 `json:"livenessScore"`
	Threshold     float64 `json:"threshold"`
}

// Verify compares a live webcam snapshot to the user's ID photo. The
// match score is 1 minus the engine's face distance and must clear the
// configured threshold.
func (s *FaceVerificationService) Verify(ctx context.Context, userID uint, snapshot io.Reader) (*VerifyResult, error) {
	fv, err := s.faceRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if fv == nil || fv.IDPhotoPath == "" {
		return nil, util.ErrNoIDPhoto
	}

	snapData, err := io.ReadAll(snapshot)
	if err != nil {
		return nil, err
	}

	detect, err := s.engine.Detect(ctx, bytes.NewReader(snapData), "snapshot.jpg")
	if err != nil {
		return nil, err
	}
	if detect.FaceCount == 0 {
		return nil, util.ErrNoFaceDetected
	}
	if detect.FaceCount > 1 {
		return nil, util.ErrMultipleFaces
	}

	idPhoto, err := s.storage.Open(ctx, fv.IDPhotoPath)
	if err != nil {
		return nil, err
	}
	defer idPhoto.Close()

	compare, err := s.engine.Compare(ctx, idPhoto, bytes.NewReader(snapData), "id_photo.jpg", "snapshot.jpg")
	if err != nil {
		return nil, err
	}
	if !compare.FaceFoundA {
		return nil, util.ErrNoIDPhoto
	}
	if !compare.FaceFoundB {
		return nil, util.ErrNoFaceDetected
	}

	matchScore := 1 - compare.FaceDistance

	liveness, err := s.engine.Liveness(ctx, bytes.NewReader(snapData), "snapshot.jpg")
	if err != nil {
		return nil, err
	}

	threshold := s.cfg.FaceEngine.MatchThreshold
	verified := matchScore >= threshold

	fv.IsVerified = verified
	fv.VerificationDate = time.Now()
	fv.MatchScore = &matchScore
	fv.LivenessScore = &liveness.LivenessScore
	if err := s.faceRepo.Save(fv); err != nil {
		return nil, err
	}

	logger.Log.Info("Face verification completed",
		zap.Uint("userId", userID),
		zap.Bool("verified", verified),
		zap.Float64("matchScore", matchScore))

	return &VerifyResult{
		Verified:      verified,
		MatchScore:    matchScore,
		LivenessScore: liveness.LivenessScore,
		Threshold:     threshold,
	}, nil
}

func (s *FaceVerificationService) Status(userID uint) (*model.FaceVerification, error) {
	fv, err := s.faceRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if fv == nil {
		return nil, util.ErrNoIDPhoto
	}
	return fv, nil
}
