package quiz

import (
	"sync"
	"time"

	"github.com/idoneo/backend/internal/models"
)

// AutoAdvanceDelay is how long an instant-check session lingers on the graded
// question before moving on. Without instant check the advance is immediate.
const AutoAdvanceDelay = 1200 * time.Millisecond

// SessionConfig carries everything needed to start a session. Now and After
// default to the real clock; tests inject deterministic replacements.
type SessionConfig struct {
	ID           string
	UserID       int64
	Pool         *Pool
	Questions    []models.Question
	Navigable    bool
	AutoNext     bool
	InstantCheck bool
	Minutes      int // 0 = untimed
	Now          func() time.Time
	After        func(time.Duration, func()) func()
}

// Session is the in-memory state of one running test. All state transitions
// happen under the mutex; once finished a session is immutable and every
// further mutation fails with ErrSessionFinished.
type Session struct {
	ID           string
	UserID       int64
	pool         *Pool
	questions    []models.Question
	navigable    bool
	autoNext     bool
	instantCheck bool

	mu            sync.Mutex
	answers       map[string]string
	locked        map[string]bool
	index         map[string]int // question id -> position
	current       int
	startedAt     time.Time
	deadline      time.Time
	finished      bool
	result        *models.FinishResponse
	cancelAdvance func()
	stopCountdown chan struct{}

	now   func() time.Time
	after func(time.Duration, func()) func()
}

func NewSession(cfg SessionConfig) *Session {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	after := cfg.After
	if after == nil {
		after = func(d time.Duration, f func()) func() {
			t := time.AfterFunc(d, f)
			return func() { t.Stop() }
		}
	}

	s := &Session{
		ID:            cfg.ID,
		UserID:        cfg.UserID,
		pool:          cfg.Pool,
		questions:     cfg.Questions,
		navigable:     cfg.Navigable,
		autoNext:      cfg.AutoNext,
		instantCheck:  cfg.InstantCheck,
		answers:       make(map[string]string),
		locked:        make(map[string]bool),
		index:         make(map[string]int, len(cfg.Questions)),
		startedAt:     now(),
		stopCountdown: make(chan struct{}),
		now:           now,
		after:         after,
	}
	for i, q := range cfg.Questions {
		s.index[q.ID] = i
	}
	if cfg.Minutes > 0 {
		s.deadline = s.startedAt.Add(time.Duration(cfg.Minutes) * time.Minute)
	}
	return s
}

// ── Answering ────────────────────────────────────────────

// Answer records the chosen option for a question. In instant-check mode the
// answer locks and the response carries the verdict; otherwise answers stay
// revisable until finish. In auto-next mode a successful answer on the
// current question schedules an advance, replacing any pending one.
func (s *Session) Answer(questionID, option string) (models.AnswerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.expiredLocked() {
		return models.AnswerResponse{}, ErrSessionFinished
	}
	if !ValidOption(option) {
		return models.AnswerResponse{}, ErrInvalidOption
	}
	pos, ok := s.index[questionID]
	if !ok {
		return models.AnswerResponse{}, ErrUnknownQuestion
	}
	if !s.navigable && pos != s.current {
		return models.AnswerResponse{}, ErrNotNavigable
	}
	if s.locked[questionID] {
		return models.AnswerResponse{}, ErrAnswerLocked
	}

	s.answers[questionID] = option
	resp := models.AnswerResponse{Recorded: true}

	if s.instantCheck {
		s.locked[questionID] = true
		q := s.questions[pos]
		correctKey := CorrectKey(q)
		verdict := correctKey != "" && option == correctKey
		resp.Correct = &verdict
		if correctKey != "" {
			resp.CorrectOption = &correctKey
		}
	}

	if s.autoNext && pos == s.current {
		s.scheduleAdvanceLocked()
	}
	return resp, nil
}

func (s *Session) scheduleAdvanceLocked() {
	if s.cancelAdvance != nil {
		s.cancelAdvance()
	}
	delay := time.Duration(0)
	if s.instantCheck {
		delay = AutoAdvanceDelay
	}
	s.cancelAdvance = s.after(delay, s.autoAdvance)
}

func (s *Session) autoAdvance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAdvance = nil
	if s.finished {
		return
	}
	if s.current < len(s.questions)-1 {
		s.current++
	}
}

// ── Navigation ───────────────────────────────────────────

// Next moves forward one question. At the last question it is a no-op.
// Manual navigation cancels any pending auto-advance.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.expiredLocked() {
		return ErrSessionFinished
	}
	s.cancelAdvanceLocked()
	if s.current < len(s.questions)-1 {
		s.current++
	}
	return nil
}

// Previous moves back one question. At the first question it is a no-op.
// Non-navigable sessions reject it outright.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || s.expiredLocked() {
		return ErrSessionFinished
	}
	if !s.navigable {
		return ErrNotNavigable
	}
	s.cancelAdvanceLocked()
	if s.current > 0 {
		s.current--
	}
	return nil
}

func (s *Session) cancelAdvanceLocked() {
	if s.cancelAdvance != nil {
		s.cancelAdvance()
		s.cancelAdvance = nil
	}
}

// ── Finishing ────────────────────────────────────────────

// Finish transitions the session to its terminal state and runs finalize
// exactly once with a snapshot of the questions, the recorded answers and the
// elapsed seconds. Repeated calls return the cached first result, so scoring
// and persistence can never run twice for one session.
func (s *Session) Finish(finalize func(questions []models.Question, answers map[string]string, durationSeconds int) *models.FinishResponse) *models.FinishResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return s.result
	}
	s.finished = true
	s.cancelAdvanceLocked()
	close(s.stopCountdown)

	elapsed := int(s.now().Sub(s.startedAt).Seconds())
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	s.result = finalize(s.questions, answers, elapsed)
	return s.result
}

// Finished reports whether the session reached its terminal state.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// ── Timer ────────────────────────────────────────────────

func (s *Session) expiredLocked() bool {
	return !s.deadline.IsZero() && !s.now().Before(s.deadline)
}

// ExpireIfDue reports whether the session just ran out of time. The caller is
// expected to finish it; the session itself never persists anything.
func (s *Session) ExpireIfDue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.finished && s.expiredLocked()
}

// StartCountdown launches the per-second expiry watch for timed sessions and
// calls expire once when time runs out. Untimed sessions ignore it.
func (s *Session) StartCountdown(interval time.Duration, expire func()) {
	s.mu.Lock()
	timed := !s.deadline.IsZero()
	stop := s.stopCountdown
	s.mu.Unlock()
	if !timed {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if s.ExpireIfDue() {
					expire()
					return
				}
			}
		}
	}()
}

// ── Presentation ─────────────────────────────────────────

// View renders the session for the client. The correct answer never appears
// here regardless of mode.
func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz := s.pool.Quiz
	view := models.SessionView{
		SessionID:      s.ID,
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		CurrentIndex:   s.current,
		TotalQuestions: len(s.questions),
		AnsweredCount:  len(s.answers),
		Navigable:      s.navigable,
		AutoNext:       s.autoNext,
		InstantCheck:   s.instantCheck,
		Finished:       s.finished,
	}

	if !s.deadline.IsZero() {
		remaining := int(s.deadline.Sub(s.now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		view.RemainingSeconds = &remaining
	}

	if !s.finished && s.current < len(s.questions) {
		q := s.questions[s.current]
		view.Question = sessionQuestion(q, s.pool.SubjectName(q.SubjectID))
		if chosen, ok := s.answers[q.ID]; ok {
			view.SelectedOption = &chosen
		}
		view.CanMovePrevious = s.navigable && s.current > 0
		view.CanMoveNext = s.current < len(s.questions)-1
	}

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	view.Answers = answers
	return view
}

func sessionQuestion(q models.Question, subjectName string) *models.SessionQuestion {
	sq := &models.SessionQuestion{
		ID:          q.ID,
		SubjectID:   q.SubjectID,
		SubjectName: subjectName,
		Text:        q.Text,
		ImageURL:    q.ImageURL,
	}
	for _, key := range []string{"a", "b", "c", "d"} {
		if text := q.Option(key); text != nil {
			sq.Options = append(sq.Options, models.SessionOption{Key: key, Text: *text})
		}
	}
	return sq
}

// ── Registry ─────────────────────────────────────────────

// Manager is the in-memory session registry. Sessions do not survive a
// restart; an unfinished session simply disappears without an attempt.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// Get looks up a session owned by the given user. Other users' sessions are
// indistinguishable from missing ones.
func (m *Manager) Get(id string, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
