package repository

import (
	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

// ProctoringRepository persists the non-violation monitoring artifacts:
// screen captures and behavioral anomalies.
type ProctoringRepository struct {
	DB *gorm.DB
}

func NewProctoringRepository(db *gorm.DB) *ProctoringRepository {
	return &ProctoringRepository{DB: db}
}

func (r *ProctoringRepository) CreateCapture(c *model.ScreenCapture) error {
	return r.DB.Create(c).Error
}

func (r *ProctoringRepository) ListCapturesBySession(sessionID uint) ([]model.ScreenCapture, error) {
	var cs []model.ScreenCapture
	err := r.DB.Where("session_id = ?", sessionID).Order("timestamp").Find(&cs).Error
	return cs, err
}

func (r *ProctoringRepository) CreateAnomaly(a *model.BehavioralAnomaly) error {
	return r.DB.Create(a).Error
}

func (r *ProctoringRepository) ListAnomaliesBySession(sessionID uint) ([]model.BehavioralAnomaly, error) {
	var as []model.BehavioralAnomaly
	err := r.DB.Where("session_id = ?", sessionID).Order("timestamp").Find(&as).Error
	return as, err
}

func (r *ProctoringRepository) RestrictedShortcuts() ([]model.RestrictedShortcut, error) {
	var rs []model.RestrictedShortcut
	err := r.DB.Where("enabled = ?", true).Order("combination").Find(&rs).Error
	return rs, err
}

// IsRestrictedCombination checks a normalized key combination against the
// enabled restricted list. Combinations are stored lowercased.
func (r *ProctoringRepository) IsRestrictedCombination(combination string) (bool, error) {
	var n int64
	err := r.DB.Model(&model.RestrictedShortcut{}).
		Where("enabled = ? AND combination = ?", true, combination).
		Count(&n).Error
	return n > 0, err
}
