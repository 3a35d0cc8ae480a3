package model

import (
	"encoding/json"
	"time"
)

type ViolationType string

const (
	ViolationCameraPermission     ViolationType = "camera_permission_denied"
	ViolationMicrophonePermission ViolationType = "microphone_permission_denied"
	ViolationBrowserCompatibility ViolationType = "browser_compatibility_issue"
	ViolationTabSwitch            ViolationType = "tab_switch"
	ViolationWindowBlur           ViolationType = "window_blur"
	ViolationFullscreenExit       ViolationType = "fullscreen_exit"
	ViolationKeyboardShortcut     ViolationType = "keyboard_shortcut"
	ViolationLightingIssue        ViolationType = "lighting_issue"
	ViolationGazeAway             ViolationType = "gaze_away"
	ViolationMultipleFaces        ViolationType = "multiple_faces"
	ViolationAudioSuspicious      ViolationType = "audio_suspicious"
)

// ViolationDescriptions maps each known type to its canonical description.
// Unknown types are still persisted, with a warning in the log.
var ViolationDescriptions = map[ViolationType]string{
	ViolationCameraPermission:     "Camera permission was denied or revoked",
	ViolationMicrophonePermission: "Microphone permission was denied or revoked",
	ViolationBrowserCompatibility: "Browser compatibility check failed",
	ViolationTabSwitch:            "User switched away from the test tab",
	ViolationWindowBlur:           "Test window lost focus",
	ViolationFullscreenExit:       "User exited fullscreen mode",
	ViolationKeyboardShortcut:     "Restricted keyboard shortcut was attempted",
	ViolationLightingIssue:        "Poor or inadequate lighting conditions detected",
	ViolationGazeAway:             "User gaze was away from screen for extended period",
	ViolationMultipleFaces:        "Multiple faces detected in camera feed",
	ViolationAudioSuspicious:      "Suspicious audio activity detected",
}

// swagger:model Violation
type Violation struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     uint            `gorm:"index;type:bigint unsigned;not null" json:"sessionId"`
	Timestamp     time.Time       `gorm:"index" json:"timestamp"`
	ViolationType ViolationType   `gorm:"size:50;not null;index" json:"violationType"`
	Details       json.RawMessage `gorm:"type:json" json:"details,omitempty"`
	Filepath      string          `gorm:"size:500" json:"filepath,omitempty"`
}

func (Violation) TableName() string {
	return "violations"
}
