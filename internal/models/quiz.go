package models

import "time"

// ── Quiz Content Types ───────────────────────────────────

type Quiz struct {
	ID                   string    `json:"id"`
	RoleID               *string   `json:"role_id,omitempty"`
	Slug                 *string   `json:"slug,omitempty"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	Year                 *int      `json:"year,omitempty"`
	TimeLimit            *int      `json:"time_limit,omitempty"` // minutes
	PointsCorrect        float64   `json:"points_correct"`
	PointsWrong          float64   `json:"points_wrong"`
	PointsBlank          float64   `json:"points_blank"`
	TotalQuestions       *int      `json:"total_questions,omitempty"`
	IsOfficial           bool      `json:"is_official"`
	OfficialNonNavigable bool      `json:"official_non_navigable"`
	IsArchived           bool      `json:"is_archived"`
	CreatedAt            time.Time `json:"created_at"`
}

type Subject struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quiz_id"`
	Name        string    `json:"name"`
	Code        *string   `json:"code,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question carries three legacy correct-option columns; raw values are not
// trustworthy equality keys and must go through quiz.CorrectKey before any
// comparison.
type Question struct {
	ID            string    `json:"id"`
	QuizID        string    `json:"quiz_id"`
	SubjectID     *string   `json:"subject_id,omitempty"`
	Text          string    `json:"text"`
	OptionA       *string   `json:"option_a,omitempty"`
	OptionB       *string   `json:"option_b,omitempty"`
	OptionC       *string   `json:"option_c,omitempty"`
	OptionD       *string   `json:"option_d,omitempty"`
	CorrectOption *string   `json:"correct_option,omitempty"`
	CorrectAnswer *string   `json:"correct_answer,omitempty"`
	Answer        *string   `json:"answer,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
	IsArchived    bool      `json:"is_archived"`
	CreatedAt     time.Time `json:"created_at"`
}

// Option returns the text of the given option key ("a".."d"), or nil when the
// question does not define it.
func (q Question) Option(key string) *string {
	switch key {
	case "a":
		return q.OptionA
	case "b":
		return q.OptionB
	case "c":
		return q.OptionC
	case "d":
		return q.OptionD
	}
	return nil
}

// SubjectRule is the per-quiz official distribution: how many questions of a
// subject an official simulation draws.
type SubjectRule struct {
	ID            string    `json:"id"`
	QuizID        string    `json:"quiz_id"`
	SubjectID     string    `json:"subject_id"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ── Admin Requests ───────────────────────────────────────

type QuizRequest struct {
	RoleID               *string  `json:"role_id"`
	Slug                 *string  `json:"slug"`
	Title                string   `json:"title"`
	Description          *string  `json:"description"`
	Year                 *int     `json:"year"`
	TimeLimit            *int     `json:"time_limit"`
	PointsCorrect        *float64 `json:"points_correct"`
	PointsWrong          *float64 `json:"points_wrong"`
	PointsBlank          *float64 `json:"points_blank"`
	TotalQuestions       *int     `json:"total_questions"`
	IsOfficial           bool     `json:"is_official"`
	OfficialNonNavigable bool     `json:"official_non_navigable"`
}

type SubjectRequest struct {
	QuizID      string  `json:"quiz_id"`
	Name        string  `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
}

type QuestionRequest struct {
	QuizID        string  `json:"quiz_id"`
	SubjectID     *string `json:"subject_id"`
	Text          string  `json:"text"`
	OptionA       *string `json:"option_a"`
	OptionB       *string `json:"option_b"`
	OptionC       *string `json:"option_c"`
	OptionD       *string `json:"option_d"`
	CorrectOption *string `json:"correct_option"`
	ImageURL      *string `json:"image_url"`
}

type SubjectRuleRequest struct {
	SubjectID     string `json:"subject_id"`
	QuestionCount int    `json:"question_count"`
}

// QuestionWarning flags a data-quality problem on a stored question. These are
// admin-facing only; the runtime treats such questions as "always wrong if
// answered" rather than failing.
type QuestionWarning struct {
	QuestionID string `json:"question_id"`
	SubjectID  *string `json:"subject_id,omitempty"`
	Text       string `json:"text"`
	Problem    string `json:"problem"`
}
