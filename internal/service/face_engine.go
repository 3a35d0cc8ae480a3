package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"exam_proctor_backend/internal/config"
)

// FaceEngine is the client for the external face analysis service that
// performs detection, comparison and liveness checks on images.
type FaceEngine struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFaceEngine(cfg *config.Config) *FaceEngine {
	return &FaceEngine{
		baseURL: cfg.FaceEngine.BaseURL,
		apiKey:  cfg.FaceEngine.APIKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *FaceEngine) Configured() bool {
	return e.baseURL != ""
}

// DetectResult is the engine's answer to a detection request.
type DetectResult struct {
	FaceCount int `json:"face_count"`
}

// CompareResult reports the distance between the faces in two images.
// Match score is 1 - distance.
type CompareResult struct {
	FaceDistance float64 `json:"face_distance"`
	FaceFoundA   bool    `json:"face_found_a"`
	FaceFoundB   bool    `json:"face_found_b"`
}

// LivenessResult scores how likely the image shows a live person rather
// than a photo or screen.
type LivenessResult struct {
	LivenessScore float64 `json:"liveness_score"`
}

func (e *FaceEngine) Detect(ctx context.Context, image io.Reader, filename string) (*DetectResult, error) {
	var out DetectResult
	if err := e.postImage(ctx, "/v1/detect", map[string]io.Reader{"image": image}, map[string]string{"image": filename}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *FaceEngine) Compare(ctx context.Context, a, b io.Reader, nameA, nameB string) (*CompareResult, error) {
	var out CompareResult
	files := map[string]io.Reader{"image_a": a, "image_b": b}
	names := map[string]string{"image_a": nameA, "image_b": nameB}
	if err := e.postImage(ctx, "/v1/compare", files, names, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *FaceEngine) Liveness(ctx context.Context, image io.Reader, filename string) (*LivenessResult, error) {
	var out LivenessResult
	if err := e.postImage(ctx, "/v1/liveness", map[string]io.Reader{"image": image}, map[string]string{"image": filename}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *FaceEngine) postImage(ctx context.Context, path string, files map[string]io.Reader, names map[string]string, out interface{}) error {
	if !e.Configured() {
		return fmt.Errorf("face engine is not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, r := range files {
		part, err := writer.CreateFormFile(field, names[field])
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, r); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("face engine request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("face engine returned %d: %s", resp.StatusCode, string(data))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
