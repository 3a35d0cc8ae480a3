package repository

import (
	"time"

	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

type PermissionRepository struct {
	DB *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{DB: db}
}

func (r *PermissionRepository) Create(p *model.PermissionLog) error {
	return r.DB.Create(p).Error
}

// HasRecent reports whether an identical (session, type, granted) entry
// exists within the window, used for duplicate suppression.
func (r *PermissionRepository) HasRecent(sessionID uint, permissionType string, granted bool, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window)
	var n int64
	err := r.DB.Model(&model.PermissionLog{}).
		Where("session_id = ? AND permission_type = ? AND granted = ? AND timestamp >= ?",
			sessionID, permissionType, granted, cutoff).
		Count(&n).Error
	return n > 0, err
}

func (r *PermissionRepository) ListBySession(sessionID uint) ([]model.PermissionLog, error) {
	var ps []model.PermissionLog
	err := r.DB.Where("session_id = ?", sessionID).Order("timestamp").Find(&ps).Error
	return ps, err
}
