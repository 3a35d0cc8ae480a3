package service

import (
	"context"
	"strings"
	"time"

	"exam_proctor_backend/internal/config"
	"exam_proctor_backend/internal/model"
	"exam_proctor_backend/internal/repository"
	"exam_proctor_backend/internal/util"
	"exam_proctor_backend/pkg/logger"
	"exam_proctor_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SessionService struct {
	sessionRepo  *repository.SessionRepository
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
	userRepo     *repository.UserRepository
	cfg          *config.Config
}

func NewSessionService(sessionRepo *repository.SessionRepository, testRepo *repository.TestRepository, questionRepo *repository.QuestionRepository, userRepo *repository.UserRepository, cfg *config.Config) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		testRepo:     testRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		cfg:          cfg,
	}
}

// AnswerSubmission is one answered question in a submit payload.
type AnswerSubmission struct {
	QuestionID       uint `json:"questionId" binding:"required"`
	SelectedOptionID uint `json:"selectedOptionId" binding:"required"`
}

// SessionResult is the scored outcome returned on submission.
type SessionResult struct {
	SessionID      uint    `json:"sessionId"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	Percentage     float64 `json:"percentage"`
}

// StartSession opens a session for the candidate identified by email.
// The email owns the attempt: the user row is looked up by it, created as
// a candidate when absent, and the session carries that user's identity
// regardless of who made the request.
func (s *SessionService) StartSession(testID uint, userName, userEmail string) (*model.TestSession, error) {
	if userEmail == "" {
		return nil, util.ErrEmailRequired
	}
	if _, err := s.testRepo.FindByID(testID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	user, err := s.findOrCreateCandidate(userName, userEmail)
	if err != nil {
		return nil, err
	}

	session := &model.TestSession{
		TestID:    testID,
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		StartTime: time.Now(),
		Status:    model.SessionInProgress,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	monitoring.ActiveSessions.Inc()
	logger.Log.Info("Test session started",
		zap.Uint("sessionId", session.ID),
		zap.Uint("testId", testID),
		zap.Uint("userId", user.ID),
		zap.String("userEmail", user.Email))
	return session, nil
}

func (s *SessionService) findOrCreateCandidate(name, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = &model.User{
		Name:  name,
		Email: email,
		Role:  model.Candidate,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	logger.Log.Info("Candidate created on session start",
		zap.Uint("userId", user.ID),
		zap.String("email", email))
	return user, nil
}

func (s *SessionService) GetSession(id uint) (*model.TestSession, error) {
	session, err := s.sessionRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrSessionNotFound
	}
	return session, err
}

// Submit scores the answers against the stored correct options, records
// each response, and completes the session.
func (s *SessionService) Submit(sessionID uint, answers []AnswerSubmission) (*SessionResult, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsFinal() {
		return nil, util.ErrSessionFinal
	}

	questionIDs := make([]uint, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, a.QuestionID)
	}
	options, err := s.questionRepo.OptionsByQuestionIDs(questionIDs)
	if err != nil {
		return nil, err
	}

	correctByQuestion := make(map[uint]map[uint]bool)
	for _, opt := range options {
		if correctByQuestion[opt.QuestionID] == nil {
			correctByQuestion[opt.QuestionID] = make(map[uint]bool)
		}
		correctByQuestion[opt.QuestionID][opt.ID] = opt.IsCorrect
	}

	score := 0
	for _, a := range answers {
		correct := correctByQuestion[a.QuestionID][a.SelectedOptionID]
		if correct {
			score++
		}
		resp := &model.UserResponse{
			SessionID:        sessionID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        correct,
		}
		if err := s.sessionRepo.CreateResponse(resp); err != nil {
			return nil, err
		}
	}

	total := len(answers)
	percentage := 0.0
	if total > 0 {
		percentage = float64(score) / float64(total) * 100
	}

	now := time.Now()
	session.EndTime = &now
	session.Score = &score
	session.TotalQuestions = &total
	session.Percentage = &percentage
	session.Status = model.SessionCompleted
	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	monitoring.ActiveSessions.Dec()
	logger.Log.Info("Test session submitted",
		zap.Uint("sessionId", sessionID),
		zap.Int("score", score),
		zap.Int("total", total),
		zap.Float64("percentage", percentage))

	return &SessionResult{
		SessionID:      sessionID,
		Score:          score,
		TotalQuestions: total,
		Percentage:     percentage,
	}, nil
}

// Terminate forcibly ends a session, used when violations warrant it.
func (s *SessionService) Terminate(sessionID uint, reason string) (*model.TestSession, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsFinal() {
		return nil, util.ErrSessionFinal
	}

	now := time.Now()
	session.EndTime = &now
	session.Status = model.SessionTerminated
	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	monitoring.ActiveSessions.Dec()
	logger.Log.Warn("Test session terminated",
		zap.Uint("sessionId", sessionID),
		zap.String("reason", reason))
	return session, nil
}

// Validate answers the exam client's poll: is this session still live.
// Status reads go through the short-lived cache.
func (s *SessionService) Validate(ctx context.Context, sessionID uint) (model.SessionStatus, bool, error) {
	status, err := s.sessionRepo.StatusCached(ctx, sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, util.ErrSessionNotFound
		}
		return "", false, err
	}
	return status, status == model.SessionInProgress, nil
}

func (s *SessionService) ListByUser(userID uint) ([]model.TestSession, error) {
	return s.sessionRepo.ListByUser(userID)
}

func (s *SessionService) ListByTest(testID uint) ([]model.TestSession, error) {
	return s.sessionRepo.ListByTest(testID)
}

func (s *SessionService) ListByStatus(status model.SessionStatus) ([]model.TestSession, error) {
	return s.sessionRepo.ListByStatus(status)
}

func (s *SessionService) ListAll() ([]model.TestSession, error) {
	return s.sessionRepo.ListAll()
}

func (s *SessionService) DeleteSession(id uint) error {
	if _, err := s.GetSession(id); err != nil {
		return err
	}
	return s.sessionRepo.Delete(id)
}

func (s *SessionService) DeleteByTest(testID uint) (int64, error) {
	return s.sessionRepo.DeleteByTest(testID)
}

func (s *SessionService) DeleteAll() (int64, error) {
	return s.sessionRepo.DeleteAll()
}

// SweepExpired terminates in_progress sessions whose test duration plus
// the configured grace period has elapsed. Runs on a background ticker.
func (s *SessionService) SweepExpired() int {
	grace := time.Duration(s.cfg.Proctoring.SessionGraceMinutes) * time.Minute
	expired, err := s.sessionRepo.ListExpired(grace)
	if err != nil {
		logger.Log.Error("Session sweep failed", zap.Error(err))
		return 0
	}

	terminated := 0
	for _, session := range expired {
		if _, err := s.Terminate(session.ID, "time limit exceeded"); err != nil {
			logger.Log.Error("Failed to terminate expired session",
				zap.Uint("sessionId", session.ID), zap.Error(err))
			continue
		}
		terminated++
	}
	if terminated > 0 {
		logger.Log.Info("Session sweep terminated expired sessions", zap.Int("count", terminated))
	}
	return terminated
}
