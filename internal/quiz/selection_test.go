package quiz

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/idoneo/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func testQuestion(id, subjectID, correct string) models.Question {
	q := models.Question{
		ID:      id,
		QuizID:  "quiz-1",
		Text:    "question " + id,
		OptionA: strPtr("alpha"),
		OptionB: strPtr("beta"),
		OptionC: strPtr("gamma"),
		OptionD: strPtr("delta"),
	}
	if subjectID != "" {
		q.SubjectID = strPtr(subjectID)
	}
	if correct != "" {
		q.CorrectOption = strPtr(correct)
	}
	return q
}

// testPool builds a quiz with two subjects: s1 holds q1..q6, s2 holds q7..q10.
// Every question's correct option is "a".
func testPool(t *testing.T, filter []string) *Pool {
	t.Helper()
	quiz := models.Quiz{ID: "quiz-1", Title: "Concorso Test", PointsCorrect: 1, PointsWrong: -0.33}
	subjects := []models.Subject{
		{ID: "s1", QuizID: "quiz-1", Name: "Logica"},
		{ID: "s2", QuizID: "quiz-1", Name: "Diritto"},
	}
	var questions []models.Question
	for i, id := range []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8", "q9", "q10"} {
		sid := "s1"
		if i >= 6 {
			sid = "s2"
		}
		questions = append(questions, testQuestion(id, sid, "a"))
	}
	pool, err := NewPool(quiz, subjects, questions, filter)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	return pool
}

func wrongAnswer(questionID string) models.AttemptAnswer {
	return models.AttemptAnswer{QuestionID: questionID, ChosenOption: strPtr("b"), CorrectAnswer: strPtr("a")}
}

func rightAnswer(questionID string) models.AttemptAnswer {
	return models.AttemptAnswer{QuestionID: questionID, ChosenOption: strPtr("a"), CorrectAnswer: strPtr("a"), IsCorrect: true}
}

// ── Standard ─────────────────────────────────────────────

func TestStandardSelectionDistribution(t *testing.T) {
	pool := testPool(t, nil)
	policy := Policy{Mode: ModeStandard, Distribution: map[string]int{"s1": 3, "s2": 2}}

	selected, err := Select(pool, policy, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 5 {
		t.Fatalf("len(selected) = %d, want 5", len(selected))
	}

	counts := map[string]int{}
	seen := map[string]bool{}
	for _, q := range selected {
		if seen[q.ID] {
			t.Errorf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
		counts[*q.SubjectID]++
	}
	if counts["s1"] != 3 || counts["s2"] != 2 {
		t.Errorf("subject counts = %v, want s1:3 s2:2", counts)
	}
}

func TestStandardSelectionClampsToAvailable(t *testing.T) {
	pool := testPool(t, nil)
	policy := Policy{Mode: ModeStandard, Distribution: map[string]int{"s2": 50}}

	selected, err := Select(pool, policy, nil, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 4 {
		t.Errorf("len(selected) = %d, want 4 (all of s2)", len(selected))
	}
}

func TestStandardSelectionDeterministicForSeed(t *testing.T) {
	pool := testPool(t, nil)
	policy := Policy{Mode: ModeStandard, Distribution: map[string]int{"s1": 3, "s2": 2}}

	first, err := Select(pool, policy, nil, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	second, err := Select(pool, policy, nil, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("selection differs at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestStandardSelectionRequiresDistribution(t *testing.T) {
	pool := testPool(t, nil)
	_, err := Select(pool, Policy{Mode: ModeStandard}, nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("Select() error = %v, want ErrInvalidPolicy", err)
	}
}

func TestStandardSelectionUnknownSubject(t *testing.T) {
	pool := testPool(t, nil)
	policy := Policy{Mode: ModeStandard, Distribution: map[string]int{"missing": 5}}
	_, err := Select(pool, policy, nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Select() error = %v, want ErrEmptySelection", err)
	}
}

// ── Errors Recent ────────────────────────────────────────

func TestErrorsRecentOrderAndDedup(t *testing.T) {
	pool := testPool(t, nil)
	// Newest attempt first: q1 wrong, q2 right; older attempt: q3 wrong, q1
	// wrong again. The duplicate q1 must not reappear.
	history := []models.Attempt{
		{ID: "a2", Answers: []models.AttemptAnswer{wrongAnswer("q1"), rightAnswer("q2")}},
		{ID: "a1", Answers: []models.AttemptAnswer{wrongAnswer("q3"), wrongAnswer("q1")}},
	}

	selected, err := Select(pool, Policy{Mode: ModeErrorsRecent, Limit: DefaultLimit}, history, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := []string{"q1", "q3"}
	if len(selected) != len(want) {
		t.Fatalf("len(selected) = %d, want %d", len(selected), len(want))
	}
	for i, id := range want {
		if selected[i].ID != id {
			t.Errorf("selected[%d] = %s, want %s", i, selected[i].ID, id)
		}
	}
}

func TestErrorsRecentSkipsQuestionsOutsidePool(t *testing.T) {
	pool := testPool(t, nil)
	history := []models.Attempt{
		{Answers: []models.AttemptAnswer{wrongAnswer("deleted-question"), wrongAnswer("q5")}},
	}

	selected, err := Select(pool, Policy{Mode: ModeErrorsRecent, Limit: DefaultLimit}, history, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 1 || selected[0].ID != "q5" {
		t.Errorf("selected = %v, want just q5", selected)
	}
}

func TestErrorsRecentRespectsLimit(t *testing.T) {
	pool := testPool(t, nil)
	history := []models.Attempt{
		{Answers: []models.AttemptAnswer{wrongAnswer("q1"), wrongAnswer("q2"), wrongAnswer("q3")}},
	}

	selected, err := Select(pool, Policy{Mode: ModeErrorsRecent, Limit: 2}, history, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 2 {
		t.Errorf("len(selected) = %d, want 2", len(selected))
	}
}

func TestErrorsRecentNoHistory(t *testing.T) {
	pool := testPool(t, nil)
	_, err := Select(pool, Policy{Mode: ModeErrorsRecent, Limit: DefaultLimit}, nil, rand.New(rand.NewSource(1)))
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Select() error = %v, want ErrEmptySelection", err)
	}
}

// ── Most Wrong ───────────────────────────────────────────

func TestMostWrongRanking(t *testing.T) {
	pool := testPool(t, nil)
	// q1 wrong twice, q2 wrong once, q3 only answered correctly.
	history := []models.Attempt{
		{Answers: []models.AttemptAnswer{wrongAnswer("q1"), wrongAnswer("q2"), rightAnswer("q3")}},
		{Answers: []models.AttemptAnswer{wrongAnswer("q1"), rightAnswer("q2")}},
	}

	selected, err := Select(pool, Policy{Mode: ModeMostWrong, Limit: DefaultLimit}, history, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := []string{"q1", "q2"}
	if len(selected) != len(want) {
		t.Fatalf("len(selected) = %d, want %d", len(selected), len(want))
	}
	for i, id := range want {
		if selected[i].ID != id {
			t.Errorf("selected[%d] = %s, want %s", i, selected[i].ID, id)
		}
	}
}

func TestMostWrongTieKeepsFirstSeenOrder(t *testing.T) {
	pool := testPool(t, nil)
	history := []models.Attempt{
		{Answers: []models.AttemptAnswer{wrongAnswer("q4"), wrongAnswer("q2"), wrongAnswer("q9")}},
	}

	selected, err := Select(pool, Policy{Mode: ModeMostWrong, Limit: DefaultLimit}, history, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	want := []string{"q4", "q2", "q9"}
	for i, id := range want {
		if selected[i].ID != id {
			t.Errorf("selected[%d] = %s, want %s", i, selected[i].ID, id)
		}
	}
}

func TestMostWrongRespectsLimit(t *testing.T) {
	pool := testPool(t, nil)
	history := []models.Attempt{
		{Answers: []models.AttemptAnswer{wrongAnswer("q1"), wrongAnswer("q2"), wrongAnswer("q3")}},
	}

	selected, err := Select(pool, Policy{Mode: ModeMostWrong, Limit: 1}, history, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(selected) != 1 {
		t.Errorf("len(selected) = %d, want 1", len(selected))
	}
}

// ── Policy Parsing ───────────────────────────────────────

func TestParsePolicyDefaults(t *testing.T) {
	p := ParsePolicy(nil)
	if p.Mode != ModeStandard {
		t.Errorf("Mode = %q, want standard", p.Mode)
	}
	if p.RecentAttempts != DefaultRecentAttempts {
		t.Errorf("RecentAttempts = %d, want %d", p.RecentAttempts, DefaultRecentAttempts)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("Limit = %d, want %d", p.Limit, DefaultLimit)
	}
}

func TestParsePolicyFull(t *testing.T) {
	values := map[string][]string{
		"mode":          {"errors_recent"},
		"minutes":       {"45"},
		"subjects":      {"s1, s2"},
		"dist":          {"s1:3,s2:2,bad,empty:,s3:-1"},
		"attempts":      {"5"},
		"limit":         {"30"},
		"auto_next":     {"true"},
		"instant_check": {"true"},
	}

	p := ParsePolicy(values)
	if p.Mode != ModeErrorsRecent {
		t.Errorf("Mode = %q, want errors_recent", p.Mode)
	}
	if p.Minutes != 45 || p.RecentAttempts != 5 || p.Limit != 30 {
		t.Errorf("Minutes/Attempts/Limit = %d/%d/%d, want 45/5/30", p.Minutes, p.RecentAttempts, p.Limit)
	}
	if len(p.Subjects) != 2 || p.Subjects[0] != "s1" || p.Subjects[1] != "s2" {
		t.Errorf("Subjects = %v, want [s1 s2]", p.Subjects)
	}
	if len(p.Distribution) != 2 || p.Distribution["s1"] != 3 || p.Distribution["s2"] != 2 {
		t.Errorf("Distribution = %v, want s1:3 s2:2", p.Distribution)
	}
	if !p.AutoNext || !p.InstantCheck {
		t.Errorf("AutoNext/InstantCheck = %v/%v, want true/true", p.AutoNext, p.InstantCheck)
	}
}

func TestParsePolicyUnknownModeFallsBack(t *testing.T) {
	p := ParsePolicy(map[string][]string{"mode": {"adaptive"}})
	if p.Mode != ModeStandard {
		t.Errorf("Mode = %q, want standard", p.Mode)
	}
}
