package quiz

import (
	"errors"
	"testing"
	"time"

	"github.com/idoneo/backend/internal/models"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeScheduler captures auto-advance timers instead of running them.
type fakeScheduler struct {
	delay     time.Duration
	fn        func()
	scheduled int
	cancelled int
}

func (s *fakeScheduler) After(d time.Duration, f func()) func() {
	s.delay = d
	s.fn = f
	s.scheduled++
	return func() { s.cancelled++ }
}

func startTestSession(t *testing.T, clock *fakeClock, sched *fakeScheduler, cfg SessionConfig) *Session {
	t.Helper()
	pool := testPool(t, nil)
	cfg.ID = "sess-1"
	cfg.UserID = 7
	cfg.Pool = pool
	cfg.Questions = pool.Questions
	if clock != nil {
		cfg.Now = clock.Now
	}
	if sched != nil {
		cfg.After = sched.After
	}
	return NewSession(cfg)
}

// ── Navigation ───────────────────────────────────────────

func TestNavigationClampsAtEnds(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: true})

	if err := s.Previous(); err != nil {
		t.Fatalf("Previous() at start error = %v", err)
	}
	if got := s.View().CurrentIndex; got != 0 {
		t.Errorf("CurrentIndex after Previous at start = %d, want 0", got)
	}

	for i := 0; i < 20; i++ {
		if err := s.Next(); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
	}
	if got := s.View().CurrentIndex; got != 9 {
		t.Errorf("CurrentIndex after overshooting Next = %d, want 9", got)
	}
}

func TestPreviousRejectedWhenNotNavigable(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: false})
	if err := s.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := s.Previous(); !errors.Is(err, ErrNotNavigable) {
		t.Errorf("Previous() error = %v, want ErrNotNavigable", err)
	}
}

// ── Answering ────────────────────────────────────────────

func TestAnswerRecordsAndRevises(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: true})
	current := s.View().Question.ID

	resp, err := s.Answer(current, "b")
	if err != nil || !resp.Recorded {
		t.Fatalf("Answer() = %+v, %v", resp, err)
	}
	if resp.Correct != nil {
		t.Error("verdict leaked without instant check")
	}

	// Revising is allowed outside instant-check mode.
	if _, err := s.Answer(current, "a"); err != nil {
		t.Fatalf("revised Answer() error = %v", err)
	}
	view := s.View()
	if view.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d, want 1", view.AnsweredCount)
	}
	if view.SelectedOption == nil || *view.SelectedOption != "a" {
		t.Errorf("SelectedOption = %v, want a", view.SelectedOption)
	}
}

func TestAnswerValidation(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: true})
	current := s.View().Question.ID

	if _, err := s.Answer(current, "e"); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Answer(e) error = %v, want ErrInvalidOption", err)
	}
	if _, err := s.Answer("nope", "a"); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("Answer(unknown) error = %v, want ErrUnknownQuestion", err)
	}
}

func TestInstantCheckLocksAnswer(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: true, InstantCheck: true})
	current := s.View().Question.ID

	resp, err := s.Answer(current, "b")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if resp.Correct == nil || *resp.Correct {
		t.Errorf("Correct = %v, want false", resp.Correct)
	}
	if resp.CorrectOption == nil || *resp.CorrectOption != "a" {
		t.Errorf("CorrectOption = %v, want a", resp.CorrectOption)
	}

	if _, err := s.Answer(current, "a"); !errors.Is(err, ErrAnswerLocked) {
		t.Errorf("second Answer() error = %v, want ErrAnswerLocked", err)
	}
}

func TestNonNavigableAnswersOnlyCurrent(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: false})
	view := s.View()
	current := view.Question.ID

	// Any other question in the session is off limits.
	other := ""
	for _, q := range testPool(t, nil).Questions {
		if q.ID != current {
			other = q.ID
			break
		}
	}
	if _, err := s.Answer(other, "a"); !errors.Is(err, ErrNotNavigable) {
		t.Errorf("Answer(other) error = %v, want ErrNotNavigable", err)
	}
	if _, err := s.Answer(current, "a"); err != nil {
		t.Errorf("Answer(current) error = %v", err)
	}
}

// ── Auto Advance ─────────────────────────────────────────

func TestAutoAdvanceDelay(t *testing.T) {
	sched := &fakeScheduler{}
	s := startTestSession(t, nil, sched, SessionConfig{Navigable: true, AutoNext: true, InstantCheck: true})

	if _, err := s.Answer(s.View().Question.ID, "a"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if sched.delay != AutoAdvanceDelay {
		t.Errorf("delay = %v, want %v", sched.delay, AutoAdvanceDelay)
	}

	sched.fn()
	if got := s.View().CurrentIndex; got != 1 {
		t.Errorf("CurrentIndex after auto-advance = %d, want 1", got)
	}
}

func TestAutoAdvanceImmediateWithoutInstantCheck(t *testing.T) {
	sched := &fakeScheduler{}
	s := startTestSession(t, nil, sched, SessionConfig{Navigable: true, AutoNext: true})

	if _, err := s.Answer(s.View().Question.ID, "a"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if sched.delay != 0 {
		t.Errorf("delay = %v, want 0", sched.delay)
	}
}

func TestManualNavigationCancelsAutoAdvance(t *testing.T) {
	sched := &fakeScheduler{}
	s := startTestSession(t, nil, sched, SessionConfig{Navigable: true, AutoNext: true, InstantCheck: true})

	if _, err := s.Answer(s.View().Question.ID, "a"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if sched.cancelled != 1 {
		t.Errorf("cancelled = %d, want 1", sched.cancelled)
	}
	if got := s.View().CurrentIndex; got != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got)
	}
}

// ── Finish and Timer ─────────────────────────────────────

func TestFinishRunsFinalizeOnce(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: true})

	calls := 0
	finalize := func(questions []models.Question, answers map[string]string, duration int) *models.FinishResponse {
		calls++
		return &models.FinishResponse{Score: 1.5}
	}

	first := s.Finish(finalize)
	second := s.Finish(finalize)
	if calls != 1 {
		t.Errorf("finalize calls = %d, want 1", calls)
	}
	if first != second {
		t.Error("repeated Finish returned a different result")
	}
	if !s.Finished() {
		t.Error("session not finished after Finish")
	}
}

func TestFinishedSessionRejectsMutations(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: true})
	s.Finish(func([]models.Question, map[string]string, int) *models.FinishResponse {
		return &models.FinishResponse{}
	})

	if _, err := s.Answer("q1", "a"); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("Answer() error = %v, want ErrSessionFinished", err)
	}
	if err := s.Next(); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("Next() error = %v, want ErrSessionFinished", err)
	}
	if err := s.Previous(); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("Previous() error = %v, want ErrSessionFinished", err)
	}
}

func TestCountdownExpiry(t *testing.T) {
	clock := newFakeClock()
	s := startTestSession(t, clock, nil, SessionConfig{Navigable: true, Minutes: 1})

	view := s.View()
	if view.RemainingSeconds == nil || *view.RemainingSeconds != 60 {
		t.Fatalf("RemainingSeconds = %v, want 60", view.RemainingSeconds)
	}

	// One second per tick; the session must survive 59 of them.
	for i := 0; i < 59; i++ {
		clock.Advance(time.Second)
		if s.ExpireIfDue() {
			t.Fatalf("expired early at tick %d", i+1)
		}
	}
	clock.Advance(time.Second)
	if !s.ExpireIfDue() {
		t.Fatal("session did not expire at the deadline")
	}

	// Expired but not yet finalized: mutations already fail.
	if _, err := s.Answer("q1", "a"); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("Answer() after expiry error = %v, want ErrSessionFinished", err)
	}

	calls := 0
	s.Finish(func([]models.Question, map[string]string, int) *models.FinishResponse {
		calls++
		return &models.FinishResponse{}
	})
	if calls != 1 {
		t.Errorf("finalize calls = %d, want 1", calls)
	}
	if s.ExpireIfDue() {
		t.Error("finished session still reports as due to expire")
	}

	if got := s.View().RemainingSeconds; got == nil || *got != 0 {
		t.Errorf("RemainingSeconds after expiry = %v, want 0", got)
	}
}

func TestUntimedSessionHasNoCountdown(t *testing.T) {
	s := startTestSession(t, nil, nil, SessionConfig{Navigable: true})
	if got := s.View().RemainingSeconds; got != nil {
		t.Errorf("RemainingSeconds = %v, want nil", *got)
	}
	if s.ExpireIfDue() {
		t.Error("untimed session reports expiry")
	}
}
