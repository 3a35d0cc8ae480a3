package repository

import (
	"context"
	"fmt"
	"time"

	"exam_proctor_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// sessionStatusTTL bounds how stale the cached status answer may be for
// the high-frequency validate endpoint polled by the exam client.
const sessionStatusTTL = 30 * time.Second

type SessionRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewSessionRepository(db *gorm.DB, rdb *redis.Client) *SessionRepository {
	return &SessionRepository{DB: db, RDB: rdb}
}

func (r *SessionRepository) Create(s *model.TestSession) error {
	return r.DB.Create(s).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.TestSession, error) {
	var s model.TestSession
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *SessionRepository) ListByUser(userID uint) ([]model.TestSession, error) {
	var ss []model.TestSession
	err := r.DB.Where("user_id = ?", userID).Order("id").Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) ListByTest(testID uint) ([]model.TestSession, error) {
	var ss []model.TestSession
	err := r.DB.Where("test_id = ?", testID).Order("id").Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) ListAll() ([]model.TestSession, error) {
	var ss []model.TestSession
	err := r.DB.Order("id").Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) ListByStatus(status model.SessionStatus) ([]model.TestSession, error) {
	var ss []model.TestSession
	err := r.DB.Where("status = ?", status).Order("id").Find(&ss).Error
	return ss, err
}

func (r *SessionRepository) Update(s *model.TestSession) error {
	if err := r.DB.Save(s).Error; err != nil {
		return err
	}
	r.invalidateStatus(s.ID)
	return nil
}

func (r *SessionRepository) Delete(id uint) error {
	if err := r.DB.Delete(&model.TestSession{}, id).Error; err != nil {
		return err
	}
	r.invalidateStatus(id)
	return nil
}

func (r *SessionRepository) DeleteByTest(testID uint) (int64, error) {
	res := r.DB.Where("test_id = ?", testID).Delete(&model.TestSession{})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) DeleteAll() (int64, error) {
	res := r.DB.Where("1 = 1").Delete(&model.TestSession{})
	return res.RowsAffected, res.Error
}

func (r *SessionRepository) CountActive() (int64, error) {
	var n int64
	err := r.DB.Model(&model.TestSession{}).Where("status = ?", model.SessionInProgress).Count(&n).Error
	return n, err
}

type expiredRow struct {
	model.TestSession
	Duration int
}

// ListExpired returns in_progress sessions whose test duration plus grace
// elapsed, for the background sweeper. The deadline check happens in Go to
// stay dialect neutral.
func (r *SessionRepository) ListExpired(grace time.Duration) ([]model.TestSession, error) {
	var rows []expiredRow
	err := r.DB.Model(&model.TestSession{}).
		Select("test_sessions.*, tests.duration AS duration").
		Joins("JOIN tests ON tests.id = test_sessions.test_id").
		Where("test_sessions.status = ?", model.SessionInProgress).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var expired []model.TestSession
	for _, row := range rows {
		deadline := row.StartTime.Add(time.Duration(row.Duration)*time.Minute + grace)
		if now.After(deadline) {
			expired = append(expired, row.TestSession)
		}
	}
	return expired, nil
}

func (r *SessionRepository) CreateResponse(resp *model.UserResponse) error {
	return r.DB.Create(resp).Error
}

func (r *SessionRepository) ResponsesBySession(sessionID uint) ([]model.UserResponse, error) {
	var rs []model.UserResponse
	err := r.DB.Where("session_id = ?", sessionID).Order("id").Find(&rs).Error
	return rs, err
}

// StatusCached reads the session status through a short-lived redis cache.
// Falls back to the database on any cache error.
func (r *SessionRepository) StatusCached(ctx context.Context, id uint) (model.SessionStatus, error) {
	key := statusKey(id)
	if r.RDB != nil {
		if v, err := r.RDB.Get(ctx, key).Result(); err == nil {
			return model.SessionStatus(v), nil
		}
	}

	s, err := r.FindByID(id)
	if err != nil {
		return "", err
	}

	if r.RDB != nil {
		r.RDB.Set(ctx, key, string(s.Status), sessionStatusTTL)
	}
	return s.Status, nil
}

func (r *SessionRepository) invalidateStatus(id uint) {
	if r.RDB != nil {
		r.RDB.Del(context.Background(), statusKey(id))
	}
}

func statusKey(id uint) string {
	return fmt.Sprintf("session:%d:status", id)
}
