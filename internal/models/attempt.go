package models

import "time"

// ── Attempt Types ────────────────────────────────────────

// AttemptAnswer is one per-question record inside a persisted attempt.
// ChosenOption is nil for blank answers; CorrectAnswer holds the normalized
// correct option at the time of the attempt (nil when the question data never
// defined one).
type AttemptAnswer struct {
	QuestionID    string  `json:"question_id"`
	SubjectID     *string `json:"subject_id"`
	ChosenOption  *string `json:"chosen_option"`
	CorrectAnswer *string `json:"correct_answer"`
	IsCorrect     bool    `json:"is_correct"`
}

// Attempt is the durable record of one finished quiz session. Created exactly
// once when a session finishes, never mutated afterward.
type Attempt struct {
	ID              string          `json:"id"`
	QuizID          string          `json:"quiz_id"`
	UserID          int64           `json:"user_id"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
	DurationSeconds int             `json:"duration_seconds"`
	TotalQuestions  int             `json:"total_questions"`
	Correct         int             `json:"correct"`
	Wrong           int             `json:"wrong"`
	Blank           int             `json:"blank"`
	Score           float64         `json:"score"`
	Answers         []AttemptAnswer `json:"answers"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SubjectStat is one row of the per-subject result breakdown.
type SubjectStat struct {
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Correct   int    `json:"correct"`
	Wrong     int    `json:"wrong"`
	Blank     int    `json:"blank"`
}

// ── Responses ────────────────────────────────────────────

// AttemptSummary is the list view of an attempt (answers omitted).
type AttemptSummary struct {
	ID              string    `json:"id"`
	QuizID          string    `json:"quiz_id"`
	QuizTitle       string    `json:"quiz_title"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	DurationSeconds int       `json:"duration_seconds"`
	TotalQuestions  int       `json:"total_questions"`
	Correct         int       `json:"correct"`
	Wrong           int       `json:"wrong"`
	Blank           int       `json:"blank"`
	Score           float64   `json:"score"`
}

type AttemptListResponse struct {
	Attempts []AttemptSummary `json:"attempts"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// AttemptReviewEntry pairs a persisted answer with the question content so a
// finished attempt can be reviewed question by question.
type AttemptReviewEntry struct {
	Answer   AttemptAnswer `json:"answer"`
	Question *Question     `json:"question,omitempty"`
}

type AttemptDetailResponse struct {
	Attempt Attempt              `json:"attempt"`
	Review  []AttemptReviewEntry `json:"review"`
}

type UserStatsResponse struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
}
