package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// analyticsCacheTTL bounds staleness of the aggregated summaries, which
// are expensive to compute and polled by the admin dashboard.
const analyticsCacheTTL = 60 * time.Second

type AnalyticsService struct {
	sessionRepo   *repository.SessionRepository
	violationRepo *repository.ViolationRepository
	testRepo      *repository.TestRepository
	userRepo      *repository.UserRepository
	rdb           *redis.Client
}

func NewAnalyticsService(sessionRepo *repository.SessionRepository, violationRepo *repository.ViolationRepository, testRepo *repository.TestRepository, userRepo *repository.UserRepository, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{
		sessionRepo:   sessionRepo,
		violationRepo: violationRepo,
		testRepo:      testRepo,
		userRepo:      userRepo,
		rdb:           rdb,
	}
}

// UserSummary aggregates one candidate's sessions and violations.
type UserSummary struct {
	UserID            uint     `json:"userId"`
	TotalSessions     int      `json:"totalSessions"`
	CompletedSessions int      `json:"completedSessions"`
	TerminatedCount   int      `json:"terminatedCount"`
	AveragePercentage *float64 `json:"averagePercentage,omitempty"`
	TotalViolations   int      `json:"totalViolations"`
}

// TestSummary aggregates the sessions taken against one test.
type TestSummary struct {
	TestID            uint     `json:"testId"`
	Skill             string   `json:"skill"`
	TotalSessions     int      `json:"totalSessions"`
	CompletedSessions int      `json:"completedSessions"`
	TerminatedCount   int      `json:"terminatedCount"`
	AveragePercentage *float64 `json:"averagePercentage,omitempty"`
	TotalViolations   int      `json:"totalViolations"`
}

// ViolationSummary is the system-wide violation breakdown.
type ViolationSummary struct {
	Total       int64                         `json:"total"`
	ByType      map[model.ViolationType]int64 `json:"byType"`
	ByDay       []repository.DayCount         `json:"byDay"`
	TopSessions []repository.SessionCount     `json:"topSessions"`
}

func (s *AnalyticsService) UserSummary(ctx context.Context, userID uint) (*UserSummary, error) {
	key := fmt.Sprintf("analytics:user:%d", userID)
	var cached UserSummary
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, util.ErrUserNotFound
	}

	sessions, err := s.sessionRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	violations, err := s.violationRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{UserID: userID, TotalSessions: len(sessions), TotalViolations: len(violations)}
	fillSessionStats(sessions, &summary.CompletedSessions, &summary.TerminatedCount, &summary.AveragePercentage)

	s.cacheSet(ctx, key, summary)
	return summary, nil
}

func (s *AnalyticsService) TestSummary(ctx context.Context, testID uint) (*TestSummary, error) {
	key := fmt.Sprintf("analytics:test:%d", testID)
	var cached TestSummary
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	test, err := s.testRepo.FindByID(testID)
	if err != nil {
		return nil, util.ErrTestNotFound
	}

	sessions, err := s.sessionRepo.ListByTest(testID)
	if err != nil {
		return nil, err
	}
	violations, err := s.violationRepo.ListByTest(testID)
	if err != nil {
		return nil, err
	}

	summary := &TestSummary{
		TestID:          testID,
		Skill:           test.Skill,
		TotalSessions:   len(sessions),
		TotalViolations: len(violations),
	}
	fillSessionStats(sessions, &summary.CompletedSessions, &summary.TerminatedCount, &summary.AveragePercentage)

	s.cacheSet(ctx, key, summary)
	return summary, nil
}

func (s *AnalyticsService) ViolationSummary(ctx context.Context, since *time.Time) (*ViolationSummary, error) {
	key := "analytics:violations"
	if since == nil {
		var cached ViolationSummary
		if s.cacheGet(ctx, key, &cached) {
			return &cached, nil
		}
	}

	rows, err := s.violationRepo.CountByType(since)
	if err != nil {
		return nil, err
	}
	byDay, err := s.violationRepo.CountByDay(since)
	if err != nil {
		return nil, err
	}
	top, err := s.violationRepo.TopSessions(10)
	if err != nil {
		return nil, err
	}

	summary := &ViolationSummary{
		ByType:      make(map[model.ViolationType]int64, len(rows)),
		ByDay:       byDay,
		TopSessions: top,
	}
	for _, row := range rows {
		summary.ByType[row.ViolationType] = row.Count
		summary.Total += row.Count
	}

	if since == nil {
		s.cacheSet(ctx, key, summary)
	}
	return summary, nil
}

// ExportViolationsCSV streams a time window of violations as CSV, oldest
// first.
func (s *AnalyticsService) ExportViolationsCSV(w io.Writer, from, to *time.Time) error {
	violations, err := s.violationRepo.ListRange(from, to)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "session_id", "timestamp", "violation_type", "details", "filepath"}); err != nil {
		return err
	}
	for _, v := range violations {
		record := []string{
			strconv.FormatUint(uint64(v.ID), 10),
			strconv.FormatUint(uint64(v.SessionID), 10),
			v.Timestamp.UTC().Format(time.RFC3339),
			string(v.ViolationType),
			string(v.Details),
			v.Filepath,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fillSessionStats(sessions []model.TestSession, completed, terminated *int, avg **float64) {
	var sum float64
	var scored int
	for _, sess := range sessions {
		switch sess.Status {
		case model.SessionCompleted:
			*completed++
		case model.SessionTerminated:
			*terminated++
		}
		if sess.Percentage != nil {
			sum += *sess.Percentage
			scored++
		}
	}
	if scored > 0 {
		mean := sum / float64(scored)
		*avg = &mean
	}
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.rdb == nil {
		return false
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.rdb == nil {
		return
	}
	if data, err := json.Marshal(v); err == nil {
		s.rdb.Set(ctx, key, data, analyticsCacheTTL)
	}
}
