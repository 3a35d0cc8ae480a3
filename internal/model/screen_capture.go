package model

import "time"

// swagger:model ScreenCapture
type ScreenCapture struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID uint      `gorm:"index;type:bigint unsigned;not null" json:"sessionId"`
	Timestamp time.Time `json:"timestamp"`
	ImagePath string    `gorm:"size:255" json:"imagePath"`
}

func (ScreenCapture) TableName() string {
	return "screen_captures"
}
