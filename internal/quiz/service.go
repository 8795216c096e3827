package quiz

import (
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/idoneo/backend/internal/models"
)

// ContentStore loads quiz content for session assembly.
type ContentStore interface {
	GetQuiz(id string) (models.Quiz, error)
	ListSubjects(quizID string) ([]models.Subject, error)
	ListQuestions(quizID string) ([]models.Question, error)
	ListSubjectRules(quizID string) ([]models.SubjectRule, error)
}

// AttemptStore persists and reads finished attempts.
type AttemptStore interface {
	InsertAttempt(a *models.Attempt) error
	ListRecentAttempts(userID int64, quizID string, limit int) ([]models.Attempt, error)
	GetAttempt(id string, userID int64) (models.Attempt, error)
	ListAttempts(userID int64, quizID *string, page, pageSize int) ([]models.AttemptSummary, int, error)
	GetUserStats(userID int64) (models.UserStatsResponse, error)
}

// Service runs quiz sessions end to end: assembly, state transitions, scoring
// and persistence.
type Service struct {
	content  ContentStore
	attempts AttemptStore
	sessions *Manager

	now     func() time.Time
	after   func(time.Duration, func()) func()
	newID   func() string
	newRand func() *rand.Rand
}

func NewService(content ContentStore, attempts AttemptStore) *Service {
	return &Service{
		content:  content,
		attempts: attempts,
		sessions: NewManager(),
		now:      time.Now,
		newID:    uuid.NewString,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// ── Session Lifecycle ────────────────────────────────────

// Start assembles and registers a custom session for the given policy.
func (s *Service) Start(userID int64, quizID string, policy Policy) (*Session, error) {
	return s.start(userID, quizID, policy, true)
}

// StartOfficial runs the quiz's stored official simulation: the persisted
// per-subject distribution, the quiz time limit, no instant check, and
// navigation as configured on the quiz. A quiz without stored rules serves
// its whole active pool.
func (s *Service) StartOfficial(userID int64, quizID string) (*Session, error) {
	quiz, err := s.content.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	rules, err := s.content.ListSubjectRules(quizID)
	if err != nil {
		return nil, err
	}

	policy := Policy{Mode: ModeStandard}
	if len(rules) == 0 {
		policy.AllQuestions = true
	} else {
		policy.Distribution = make(map[string]int, len(rules))
		for _, r := range rules {
			policy.Distribution[r.SubjectID] = r.QuestionCount
		}
	}
	return s.start(userID, quizID, policy, !quiz.OfficialNonNavigable)
}

func (s *Service) start(userID int64, quizID string, policy Policy, navigable bool) (*Session, error) {
	quiz, err := s.content.GetQuiz(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.IsArchived {
		return nil, ErrQuizNotFound
	}

	subjects, err := s.content.ListSubjects(quizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.content.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}
	pool, err := NewPool(quiz, subjects, questions, policy.Subjects)
	if err != nil {
		return nil, err
	}

	var history []models.Attempt
	if policy.NeedsHistory() {
		history, err = s.attempts.ListRecentAttempts(userID, quizID, policy.HistoryScanLimit())
		if err != nil {
			return nil, err
		}
	}

	selected, err := Select(pool, policy, history, s.newRand())
	if err != nil {
		return nil, err
	}

	minutes := policy.Minutes
	if minutes == 0 && quiz.TimeLimit != nil {
		minutes = *quiz.TimeLimit
	}

	session := NewSession(SessionConfig{
		ID:           s.newID(),
		UserID:       userID,
		Pool:         pool,
		Questions:    selected,
		Navigable:    navigable,
		AutoNext:     policy.AutoNext,
		InstantCheck: policy.InstantCheck,
		Minutes:      minutes,
		Now:          s.now,
		After:        s.after,
	})
	s.sessions.Put(session)
	session.StartCountdown(time.Second, func() {
		log.Printf("[quiz] session %s expired, forcing finish", session.ID)
		s.finish(session)
	})
	return session, nil
}

// View renders the current state of a session.
func (s *Service) View(sessionID string, userID int64) (models.SessionView, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return models.SessionView{}, err
	}
	return session.View(), nil
}

// Answer records an answer on a running session.
func (s *Service) Answer(sessionID string, userID int64, req models.AnswerRequest) (models.AnswerResponse, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return models.AnswerResponse{}, err
	}
	return session.Answer(req.QuestionID, req.Option)
}

func (s *Service) Next(sessionID string, userID int64) (models.SessionView, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return models.SessionView{}, err
	}
	if err := session.Next(); err != nil {
		return models.SessionView{}, err
	}
	return session.View(), nil
}

func (s *Service) Previous(sessionID string, userID int64) (models.SessionView, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return models.SessionView{}, err
	}
	if err := session.Previous(); err != nil {
		return models.SessionView{}, err
	}
	return session.View(), nil
}

// Finish scores the session and persists the attempt. Calling it again, or
// racing the countdown expiry, returns the same result without a second
// insert.
func (s *Service) Finish(sessionID string, userID int64) (models.FinishResponse, error) {
	session, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return models.FinishResponse{}, err
	}
	return *s.finish(session), nil
}

func (s *Service) finish(session *Session) *models.FinishResponse {
	return session.Finish(func(questions []models.Question, answers map[string]string, durationSeconds int) *models.FinishResponse {
		result := Score(session.pool, questions, answers)

		resp := &models.FinishResponse{
			Correct:   result.Correct,
			Wrong:     result.Wrong,
			Blank:     result.Blank,
			Score:     result.Score,
			Breakdown: result.Breakdown,
		}

		finishedAt := s.now()
		attempt := &models.Attempt{
			QuizID:          session.pool.Quiz.ID,
			UserID:          session.UserID,
			StartedAt:       session.startedAt,
			FinishedAt:      finishedAt,
			DurationSeconds: durationSeconds,
			TotalQuestions:  len(questions),
			Correct:         result.Correct,
			Wrong:           result.Wrong,
			Blank:           result.Blank,
			Score:           result.Score,
			Answers:         result.Answers,
		}
		if err := s.attempts.InsertAttempt(attempt); err != nil {
			log.Printf("WARN: [quiz] failed to save attempt for session %s: %v", session.ID, err)
			resp.SaveError = "attempt could not be saved"
		} else {
			resp.AttemptID = attempt.ID
		}
		return resp
	})
}

// ── Attempt Reads ────────────────────────────────────────

func (s *Service) ListAttempts(userID int64, quizID *string, page, pageSize int) (models.AttemptListResponse, error) {
	attempts, total, err := s.attempts.ListAttempts(userID, quizID, page, pageSize)
	if err != nil {
		return models.AttemptListResponse{}, err
	}
	if attempts == nil {
		attempts = []models.AttemptSummary{}
	}
	return models.AttemptListResponse{
		Attempts: attempts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// AttemptDetail loads one attempt and pairs every stored answer with the
// current question content for review. Questions deleted since the attempt
// leave a nil Question in the entry.
func (s *Service) AttemptDetail(id string, userID int64) (models.AttemptDetailResponse, error) {
	attempt, err := s.attempts.GetAttempt(id, userID)
	if err != nil {
		return models.AttemptDetailResponse{}, err
	}

	questions, err := s.content.ListQuestions(attempt.QuizID)
	if err != nil {
		return models.AttemptDetailResponse{}, err
	}
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	review := make([]models.AttemptReviewEntry, 0, len(attempt.Answers))
	for _, ans := range attempt.Answers {
		entry := models.AttemptReviewEntry{Answer: ans}
		if q, ok := byID[ans.QuestionID]; ok {
			entry.Question = &q
		}
		review = append(review, entry)
	}
	return models.AttemptDetailResponse{Attempt: attempt, Review: review}, nil
}

func (s *Service) UserStats(userID int64) (models.UserStatsResponse, error) {
	return s.attempts.GetUserStats(userID)
}
