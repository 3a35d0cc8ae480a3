package model

import "time"

// PermissionLog records the grant/deny outcome of a browser permission
// check (camera, microphone) reported by the exam client.
// swagger:model PermissionLog
type PermissionLog struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID      uint      `gorm:"index;type:bigint unsigned;not null" json:"sessionId"`
	PermissionType string    `gorm:"size:255;not null" json:"permissionType"`
	Granted        bool      `gorm:"not null" json:"granted"`
	DeviceInfo     string    `gorm:"size:500" json:"deviceInfo,omitempty"`
	ErrorMessage   string    `gorm:"size:1000" json:"errorMessage,omitempty"`
	Timestamp      time.Time `gorm:"index" json:"timestamp"`
}

func (PermissionLog) TableName() string {
	return "permission_logs"
}
