package model

import "time"

// FaceVerification tracks one user's identity verification against the
// uploaded ID photo. One row per user, updated in place on re-verification.
// swagger:model FaceVerification
type FaceVerification struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	IDPhotoPath      string    `gorm:"size:255" json:"idPhotoPath,omitempty"`
	IsVerified       bool      `gorm:"default:false" json:"isVerified"`
	VerificationDate time.Time `json:"verificationDate"`
	MatchScore       *float64  `json:"matchScore,omitempty"`
	LivenessScore    *float64  `json:"livenessScore,omitempty"`
}

func (FaceVerification) TableName() string {
	return "face_verifications"
}
