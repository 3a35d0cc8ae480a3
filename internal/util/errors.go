package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrEmailRequired      = errors.New("user_email is required to create a session")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrTestNotFound       = errors.New("test not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSessionNotFound    = errors.New("test session not found")
	ErrSessionFinal       = errors.New("test session already completed or terminated")
	ErrNoIDPhoto          = errors.New("no ID photo on file")
	ErrNoFaceDetected     = errors.New("no face detected in the image")
	ErrMultipleFaces      = errors.New("multiple faces detected in the image")
	ErrGenAIUnconfigured  = errors.New("question generation is not configured")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
