package model

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionTerminated SessionStatus = "terminated"
)

// IsFinal reports whether no further transitions are allowed.
func (s SessionStatus) IsFinal() bool {
	return s == SessionCompleted || s == SessionTerminated
}

// swagger:model TestSession
type TestSession struct {
	BaseModel
	TestID         uint          `gorm:"index;type:bigint unsigned;not null" json:"testId"`
	UserID         uint          `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	UserName       string        `gorm:"size:255" json:"userName"`
	UserEmail      string        `gorm:"size:255" json:"userEmail"`
	StartTime      time.Time     `json:"startTime"`
	EndTime        *time.Time    `json:"endTime,omitempty"`
	Score          *int          `json:"score,omitempty"`
	TotalQuestions *int          `json:"totalQuestions,omitempty"`
	Percentage     *float64      `json:"percentage,omitempty"`
	Status         SessionStatus `gorm:"size:20;default:'in_progress'" json:"status"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}
