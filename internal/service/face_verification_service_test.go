package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFaceEngine serves the detection, comparison and liveness endpoints
// with canned answers.
type fakeFaceEngine struct {
	faceCount    int
	faceDistance float64
	liveness     float64
}

func (f *fakeFaceEngine) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/detect", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(DetectResult{FaceCount: f.faceCount})
	})
	mux.HandleFunc("/v1/compare", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(CompareResult{
			FaceDistance: f.faceDistance,
			FaceFoundA:   true,
			FaceFoundB:   true,
		})
	})
	mux.HandleFunc("/v1/liveness", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(LivenessResult{LivenessScore: f.liveness})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFaceService(t *testing.T, engine *fakeFaceEngine) (*FaceVerificationService, *config.Config) {
	db := newTestDB(t)
	cfg := testConfig()
	cfg.FaceEngine.BaseURL = engine.server(t).URL
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()

	storage, err := NewStorageProvider(cfg)
	require.NoError(t, err)

	svc := NewFaceVerificationService(
		repository.NewFaceVerificationRepository(db),
		storage,
		NewFaceEngine(cfg),
		cfg,
	)
	return svc, cfg
}

func TestUploadIDPhotoRequiresSingleFace(t *testing.T) {
	engine := &fakeFaceEngine{faceCount: 2}
	svc, _ := newFaceService(t, engine)

	photo := bytes.NewReader([]byte("jpeg-bytes"))
	_, err := svc.UploadIDPhoto(context.Background(), 1, photo, 10, ".jpg")
	assert.ErrorIs(t, err, util.ErrMultipleFaces)

	engine.faceCount = 0
	_, err = svc.UploadIDPhoto(context.Background(), 1, bytes.NewReader([]byte("jpeg-bytes")), 10, ".jpg")
	assert.ErrorIs(t, err, util.ErrNoFaceDetected)

	engine.faceCount = 1
	fv, err := svc.UploadIDPhoto(context.Background(), 1, bytes.NewReader([]byte("jpeg-bytes")), 10, ".jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, fv.IDPhotoPath)
	assert.False(t, fv.IsVerified)
}

func TestVerifyMatchScoreAgainstThreshold(t *testing.T) {
	engine := &fakeFaceEngine{faceCount: 1, faceDistance: 0.25, liveness: 0.95}
	svc, _ := newFaceService(t, engine)

	_, err := svc.UploadIDPhoto(context.Background(), 1, bytes.NewReader([]byte("jpeg-bytes")), 10, ".jpg")
	require.NoError(t, err)

	// Distance 0.25 gives match score 0.75, above the 0.6 threshold.
	result, err := svc.Verify(context.Background(), 1, bytes.NewReader([]byte("snapshot-bytes")))
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.InDelta(t, 0.75, result.MatchScore, 0.001)
	assert.InDelta(t, 0.95, result.LivenessScore, 0.001)

	status, err := svc.Status(1)
	require.NoError(t, err)
	assert.True(t, status.IsVerified)
	require.NotNil(t, status.MatchScore)
	assert.InDelta(t, 0.75, *status.MatchScore, 0.001)
}

func TestVerifyBelowThresholdFails(t *testing.T) {
	engine := &fakeFaceEngine{faceCount: 1, faceDistance: 0.55, liveness: 0.9}
	svc, _ := newFaceService(t, engine)

	_, err := svc.UploadIDPhoto(context.Background(), 1, bytes.NewReader([]byte("jpeg-bytes")), 10, ".jpg")
	require.NoError(t, err)

	// Distance 0.55 gives match score 0.45, below the threshold.
	result, err := svc.Verify(context.Background(), 1, bytes.NewReader([]byte("snapshot-bytes")))
	require.NoError(t, err)
	assert.False(t, result.Verified)

	status, err := svc.Status(1)
	require.NoError(t, err)
	assert.False(t, status.IsVerified)
}

func TestVerifyWithoutIDPhoto(t *testing.T) {
	engine := &fakeFaceEngine{faceCount: 1}
	svc, _ := newFaceService(t, engine)

	_, err := svc.Verify(context.Background(), 1, bytes.NewReader([]byte("snapshot-bytes")))
	assert.ErrorIs(t, err, util.ErrNoIDPhoto)

	_, err = svc.Status(1)
	assert.ErrorIs(t, err, util.ErrNoIDPhoto)
}
