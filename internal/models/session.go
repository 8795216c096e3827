package models

// ── Session Payloads ─────────────────────────────────────

// SessionOption is an answer option as presented to the client.
type SessionOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// SessionQuestion is the presentation view of the current question. Correct
// answers are never included here; instant-check feedback travels on the
// answer response instead.
type SessionQuestion struct {
	ID          string          `json:"id"`
	SubjectID   *string         `json:"subject_id,omitempty"`
	SubjectName string          `json:"subject_name"`
	Text        string          `json:"text"`
	Options     []SessionOption `json:"options"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// SessionView is the full presentation state of a running session.
type SessionView struct {
	SessionID        string            `json:"session_id"`
	QuizID           string            `json:"quiz_id"`
	QuizTitle        string            `json:"quiz_title"`
	CurrentIndex     int               `json:"current_index"`
	TotalQuestions   int               `json:"total_questions"`
	AnsweredCount    int               `json:"answered_count"`
	Question         *SessionQuestion  `json:"question,omitempty"`
	SelectedOption   *string           `json:"selected_option,omitempty"`
	RemainingSeconds *int              `json:"remaining_seconds,omitempty"`
	CanMovePrevious  bool              `json:"can_move_previous"`
	CanMoveNext      bool              `json:"can_move_next"`
	Navigable        bool              `json:"navigable"`
	AutoNext         bool              `json:"auto_next"`
	InstantCheck     bool              `json:"instant_check"`
	Finished         bool              `json:"finished"`
	Answers          map[string]string `json:"answers,omitempty"`
}

type AnswerRequest struct {
	QuestionID string `json:"question_id"`
	Option     string `json:"option"`
}

// AnswerResponse reports the recorded answer. Correct and CorrectOption are
// only populated when the session runs in instant-check mode.
type AnswerResponse struct {
	Recorded      bool    `json:"recorded"`
	Correct       *bool   `json:"correct,omitempty"`
	CorrectOption *string `json:"correct_option,omitempty"`
}

// FinishResponse carries the scored result. SaveError is set when the attempt
// could not be persisted; the result itself is still valid.
type FinishResponse struct {
	AttemptID string        `json:"attempt_id,omitempty"`
	Correct   int           `json:"correct"`
	Wrong     int           `json:"wrong"`
	Blank     int           `json:"blank"`
	Score     float64       `json:"score"`
	Breakdown []SubjectStat `json:"breakdown"`
	SaveError string        `json:"save_error,omitempty"`
}
