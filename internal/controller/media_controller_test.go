package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"exam_proctor_backend/internal/service"
	"exam_proctor_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	logger.Log = zap.NewNop()
}

// lazyMissStorage mimics object storage: Open always succeeds and the
// missing-object error only surfaces on the first read.
type lazyMissStorage struct {
	content map[string]string
}

func (s *lazyMissStorage) Save(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", errors.New("not implemented")
}

func (s *lazyMissStorage) Open(_ context.Context, relPath string) (io.ReadCloser, error) {
	if data, ok := s.content[relPath]; ok {
		return io.NopCloser(strings.NewReader(data)), nil
	}
	return io.NopCloser(&failingReader{}), nil
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) {
	return 0, errors.New("the specified key does not exist")
}

func newMediaRouter(storage service.StorageProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctl := NewMediaController(service.NewProctoringService(nil, nil, nil, storage, nil))
	router := gin.New()
	router.GET("/media", ctl.Get)
	return router
}

func TestMediaGetStreamsStoredObject(t *testing.T) {
	router := newMediaRouter(&lazyMissStorage{content: map[string]string{
		"captures/1/a.png": "png-bytes",
	}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media?path=captures/1/a.png", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestMediaGetMissingObjectIs404(t *testing.T) {
	router := newMediaRouter(&lazyMissStorage{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media?path=captures/1/gone.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
