package repository

import (
	"time"

	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

type ViolationRepository struct {
	DB *gorm.DB
}

func NewViolationRepository(db *gorm.DB) *ViolationRepository {
	return &ViolationRepository{DB: db}
}

func (r *ViolationRepository) Create(v *model.Violation) error {
	return r.DB.Create(v).Error
}

func (r *ViolationRepository) ListBySession(sessionID uint) ([]model.Violation, error) {
	var vs []model.Violation
	err := r.DB.Where("session_id = ?", sessionID).Order("timestamp").Find(&vs).Error
	return vs, err
}

func (r *ViolationRepository) ListBySessionAndType(sessionID uint, vt model.ViolationType) ([]model.Violation, error) {
	var vs []model.Violation
	err := r.DB.Where("session_id = ? AND violation_type = ?", sessionID, vt).
		Order("timestamp desc").Find(&vs).Error
	return vs, err
}

func (r *ViolationRepository) CountBySessionAndType(sessionID uint, vt model.ViolationType) (int64, error) {
	var n int64
	err := r.DB.Model(&model.Violation{}).
		Where("session_id = ? AND violation_type = ?", sessionID, vt).Count(&n).Error
	return n, err
}

func (r *ViolationRepository) LatestBySessionAndType(sessionID uint, vt model.ViolationType) (*model.Violation, error) {
	var v model.Violation
	err := r.DB.Where("session_id = ? AND violation_type = ?", sessionID, vt).
		Order("timestamp desc").First(&v).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &v, err
}

// TypeCount is one row of a count-by-type aggregation.
type TypeCount struct {
	ViolationType model.ViolationType `json:"violationType"`
	Count         int64               `json:"count"`
}

func (r *ViolationRepository) CountByTypeForSession(sessionID uint) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.DB.Model(&model.Violation{}).
		Select("violation_type, COUNT(*) as count").
		Where("session_id = ?", sessionID).
		Group("violation_type").
		Scan(&rows).Error
	return rows, err
}

func (r *ViolationRepository) CountByType(since *time.Time) ([]TypeCount, error) {
	query := r.DB.Model(&model.Violation{}).
		Select("violation_type, COUNT(*) as count").
		Group("violation_type")
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}
	var rows []TypeCount
	err := query.Scan(&rows).Error
	return rows, err
}

// SessionCount is one row of a violations-per-session aggregation.
type SessionCount struct {
	SessionID uint  `json:"sessionId"`
	Count     int64 `json:"count"`
}

func (r *ViolationRepository) TopSessions(limit int) ([]SessionCount, error) {
	var rows []SessionCount
	err := r.DB.Model(&model.Violation{}).
		Select("session_id, COUNT(*) as count").
		Group("session_id").
		Order("count desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DayCount is one day's violation total.
type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// CountByDay buckets violations per UTC calendar day. Bucketing happens in
// Go so the query stays portable across SQL dialects.
func (r *ViolationRepository) CountByDay(since *time.Time) ([]DayCount, error) {
	query := r.DB.Model(&model.Violation{}).Select("timestamp").Order("timestamp")
	if since != nil {
		query = query.Where("timestamp >= ?", *since)
	}
	var timestamps []time.Time
	if err := query.Pluck("timestamp", &timestamps).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	var days []string
	for _, ts := range timestamps {
		day := ts.UTC().Format("2006-01-02")
		if _, seen := counts[day]; !seen {
			days = append(days, day)
		}
		counts[day]++
	}

	rows := make([]DayCount, 0, len(days))
	for _, day := range days {
		rows = append(rows, DayCount{Date: day, Count: counts[day]})
	}
	return rows, nil
}

// ListByTest returns all violations of every session belonging to a test.
func (r *ViolationRepository) ListByTest(testID uint) ([]model.Violation, error) {
	var vs []model.Violation
	err := r.DB.
		Joins("JOIN test_sessions ON test_sessions.id = violations.session_id").
		Where("test_sessions.test_id = ?", testID).
		Order("violations.timestamp").
		Find(&vs).Error
	return vs, err
}

func (r *ViolationRepository) ListByUser(userID uint) ([]model.Violation, error) {
	var vs []model.Violation
	err := r.DB.
		Joins("JOIN test_sessions ON test_sessions.id = violations.session_id").
		Where("test_sessions.user_id = ?", userID).
		Order("violations.timestamp").
		Find(&vs).Error
	return vs, err
}

// ListRange returns violations in a time window, oldest first, for export.
func (r *ViolationRepository) ListRange(from, to *time.Time) ([]model.Violation, error) {
	query := r.DB.Model(&model.Violation{})
	if from != nil {
		query = query.Where("timestamp >= ?", *from)
	}
	if to != nil {
		query = query.Where("timestamp <= ?", *to)
	}
	var vs []model.Violation
	err := query.Order("timestamp").Find(&vs).Error
	return vs, err
}
