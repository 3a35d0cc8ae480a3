package model

import (
	"encoding/json"
	"time"
)

// swagger:model BehavioralAnomaly
type BehavioralAnomaly struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID   uint            `gorm:"index;type:bigint unsigned;not null" json:"sessionId"`
	Timestamp   time.Time       `json:"timestamp"`
	AnomalyType string          `gorm:"size:50;not null" json:"anomalyType"`
	Details     json.RawMessage `gorm:"type:json" json:"details,omitempty"`
}

func (BehavioralAnomaly) TableName() string {
	return "behavioral_anomalies"
}
