package quiz

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/idoneo/backend/internal/models"
)

// Store handles quiz content and attempt persistence.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Content Loads ────────────────────────────────────────

// GetQuiz fetches a quiz by id, archived or not. Callers decide whether an
// archived quiz is acceptable for their operation.
func (s *Store) GetQuiz(id string) (models.Quiz, error) {
	var q models.Quiz
	err := s.db.QueryRow(`
		SELECT id, role_id, slug, title, description, year, time_limit,
		       points_correct, points_wrong, points_blank, total_questions,
		       is_official, official_non_navigable, is_archived, created_at
		FROM quizzes WHERE id = $1`, id).Scan(
		&q.ID, &q.RoleID, &q.Slug, &q.Title, &q.Description, &q.Year, &q.TimeLimit,
		&q.PointsCorrect, &q.PointsWrong, &q.PointsBlank, &q.TotalQuestions,
		&q.IsOfficial, &q.OfficialNonNavigable, &q.IsArchived, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return models.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

func (s *Store) ListSubjects(quizID string) ([]models.Subject, error) {
	rows, err := s.db.Query(`
		SELECT id, quiz_id, name, code, description, is_archived, created_at
		FROM subjects WHERE quiz_id = $1 ORDER BY name`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var sub models.Subject
		if err := rows.Scan(&sub.ID, &sub.QuizID, &sub.Name, &sub.Code, &sub.Description, &sub.IsArchived, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

// ListQuestions returns every question of a quiz, archived ones included.
// Pool construction filters; admin views want the full set.
func (s *Store) ListQuestions(quizID string) ([]models.Question, error) {
	rows, err := s.db.Query(`
		SELECT id, quiz_id, subject_id, text, option_a, option_b, option_c, option_d,
		       correct_option, correct_answer, answer, image_url, is_archived, created_at
		FROM questions WHERE quiz_id = $1 ORDER BY created_at, id`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.SubjectID, &q.Text,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&q.CorrectOption, &q.CorrectAnswer, &q.Answer,
			&q.ImageURL, &q.IsArchived, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) ListSubjectRules(quizID string) ([]models.SubjectRule, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.quiz_id, r.subject_id, r.question_count, r.created_at
		FROM quiz_subject_rules r
		JOIN subjects s ON s.id = r.subject_id
		WHERE r.quiz_id = $1 ORDER BY s.name`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list subject rules: %w", err)
	}
	defer rows.Close()

	var rules []models.SubjectRule
	for rows.Next() {
		var r models.SubjectRule
		if err := rows.Scan(&r.ID, &r.QuizID, &r.SubjectID, &r.QuestionCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subject rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// ── Attempts ─────────────────────────────────────────────

// InsertAttempt persists a finished attempt and fills in the generated id and
// created_at. Answers travel as a JSONB array.
func (s *Store) InsertAttempt(a *models.Attempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	err = s.db.QueryRow(`
		INSERT INTO quiz_attempts
			(quiz_id, user_id, started_at, finished_at, duration_seconds,
			 total_questions, correct, wrong, blank, score, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		a.QuizID, a.UserID, a.StartedAt, a.FinishedAt, a.DurationSeconds,
		a.TotalQuestions, a.Correct, a.Wrong, a.Blank, a.Score, answers).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListRecentAttempts returns a user's attempts on a quiz, newest first,
// answers included. Used by the history-based selection modes.
func (s *Store) ListRecentAttempts(userID int64, quizID string, limit int) ([]models.Attempt, error) {
	rows, err := s.db.Query(`
		SELECT id, quiz_id, user_id, started_at, finished_at, duration_seconds,
		       total_questions, correct, wrong, blank, score, answers, created_at
		FROM quiz_attempts
		WHERE user_id = $1 AND quiz_id = $2
		ORDER BY finished_at DESC
		LIMIT $3`, userID, quizID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func scanAttempt(rows *sql.Rows) (models.Attempt, error) {
	var a models.Attempt
	var answers []byte
	if err := rows.Scan(&a.ID, &a.QuizID, &a.UserID, &a.StartedAt, &a.FinishedAt,
		&a.DurationSeconds, &a.TotalQuestions, &a.Correct, &a.Wrong, &a.Blank,
		&a.Score, &answers, &a.CreatedAt); err != nil {
		return models.Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return models.Attempt{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return a, nil
}

// GetAttempt fetches one attempt with answers, scoped to its owner.
func (s *Store) GetAttempt(id string, userID int64) (models.Attempt, error) {
	var a models.Attempt
	var answers []byte
	err := s.db.QueryRow(`
		SELECT id, quiz_id, user_id, started_at, finished_at, duration_seconds,
		       total_questions, correct, wrong, blank, score, answers, created_at
		FROM quiz_attempts WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&a.ID, &a.QuizID, &a.UserID, &a.StartedAt, &a.FinishedAt,
			&a.DurationSeconds, &a.TotalQuestions, &a.Correct, &a.Wrong, &a.Blank,
			&a.Score, &answers, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Attempt{}, sql.ErrNoRows
	}
	if err != nil {
		return models.Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return models.Attempt{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	return a, nil
}

// ListAttempts returns attempt summaries for a user, newest first, optionally
// scoped to one quiz, with total count for pagination.
func (s *Store) ListAttempts(userID int64, quizID *string, page, pageSize int) ([]models.AttemptSummary, int, error) {
	where := "WHERE a.user_id = $1"
	args := []interface{}{userID}
	if quizID != nil {
		where += " AND a.quiz_id = $2"
		args = append(args, *quizID)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM quiz_attempts a "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	query := fmt.Sprintf(`
		SELECT a.id, a.quiz_id, q.title, a.started_at, a.finished_at,
		       a.duration_seconds, a.total_questions, a.correct, a.wrong, a.blank, a.score
		FROM quiz_attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		%s
		ORDER BY a.finished_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var summaries []models.AttemptSummary
	for rows.Next() {
		var sum models.AttemptSummary
		if err := rows.Scan(&sum.ID, &sum.QuizID, &sum.QuizTitle, &sum.StartedAt, &sum.FinishedAt,
			&sum.DurationSeconds, &sum.TotalQuestions, &sum.Correct, &sum.Wrong, &sum.Blank, &sum.Score); err != nil {
			return nil, 0, fmt.Errorf("scan attempt summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, total, rows.Err()
}

// GetUserStats aggregates a user's overall attempt count and average score.
func (s *Store) GetUserStats(userID int64) (models.UserStatsResponse, error) {
	var stats models.UserStatsResponse
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(AVG(score), 0)
		FROM quiz_attempts WHERE user_id = $1`, userID).
		Scan(&stats.TotalAttempts, &stats.AverageScore)
	if err != nil {
		return models.UserStatsResponse{}, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

// ── Admin Writes ─────────────────────────────────────────

func (s *Store) ListQuizzes() ([]models.Quiz, error) {
	rows, err := s.db.Query(`
		SELECT id, role_id, slug, title, description, year, time_limit,
		       points_correct, points_wrong, points_blank, total_questions,
		       is_official, official_non_navigable, is_archived, created_at
		FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []models.Quiz
	for rows.Next() {
		var q models.Quiz
		if err := rows.Scan(&q.ID, &q.RoleID, &q.Slug, &q.Title, &q.Description, &q.Year, &q.TimeLimit,
			&q.PointsCorrect, &q.PointsWrong, &q.PointsBlank, &q.TotalQuestions,
			&q.IsOfficial, &q.OfficialNonNavigable, &q.IsArchived, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (s *Store) CreateQuiz(req models.QuizRequest) (models.Quiz, error) {
	var id string
	err := s.db.QueryRow(`
		INSERT INTO quizzes
			(role_id, slug, title, description, year, time_limit,
			 points_correct, points_wrong, points_blank, total_questions,
			 is_official, official_non_navigable)
		VALUES ($1, $2, $3, $4, $5, $6,
		        COALESCE($7, 1), COALESCE($8, -0.33), COALESCE($9, 0), $10, $11, $12)
		RETURNING id`,
		req.RoleID, req.Slug, req.Title, req.Description, req.Year, req.TimeLimit,
		req.PointsCorrect, req.PointsWrong, req.PointsBlank, req.TotalQuestions,
		req.IsOfficial, req.OfficialNonNavigable).Scan(&id)
	if err != nil {
		return models.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	return s.GetQuiz(id)
}

func (s *Store) UpdateQuiz(id string, req models.QuizRequest) (models.Quiz, error) {
	res, err := s.db.Exec(`
		UPDATE quizzes SET
			role_id = $2, slug = $3, title = $4, description = $5, year = $6,
			time_limit = $7,
			points_correct = COALESCE($8, points_correct),
			points_wrong = COALESCE($9, points_wrong),
			points_blank = COALESCE($10, points_blank),
			total_questions = $11, is_official = $12, official_non_navigable = $13
		WHERE id = $1`,
		id, req.RoleID, req.Slug, req.Title, req.Description, req.Year, req.TimeLimit,
		req.PointsCorrect, req.PointsWrong, req.PointsBlank, req.TotalQuestions,
		req.IsOfficial, req.OfficialNonNavigable)
	if err != nil {
		return models.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Quiz{}, ErrQuizNotFound
	}
	return s.GetQuiz(id)
}

// ArchiveQuiz soft-deletes. Attempts keep referencing the quiz, so rows are
// never physically removed through the API.
func (s *Store) ArchiveQuiz(id string) error {
	res, err := s.db.Exec(`UPDATE quizzes SET is_archived = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *Store) CreateSubject(req models.SubjectRequest) (models.Subject, error) {
	var sub models.Subject
	err := s.db.QueryRow(`
		INSERT INTO subjects (quiz_id, name, code, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, quiz_id, name, code, description, is_archived, created_at`,
		req.QuizID, req.Name, req.Code, req.Description).
		Scan(&sub.ID, &sub.QuizID, &sub.Name, &sub.Code, &sub.Description, &sub.IsArchived, &sub.CreatedAt)
	if err != nil {
		return models.Subject{}, fmt.Errorf("create subject: %w", err)
	}
	return sub, nil
}

func (s *Store) UpdateSubject(id string, req models.SubjectRequest) (models.Subject, error) {
	var sub models.Subject
	err := s.db.QueryRow(`
		UPDATE subjects SET name = $2, code = $3, description = $4
		WHERE id = $1
		RETURNING id, quiz_id, name, code, description, is_archived, created_at`,
		id, req.Name, req.Code, req.Description).
		Scan(&sub.ID, &sub.QuizID, &sub.Name, &sub.Code, &sub.Description, &sub.IsArchived, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, sql.ErrNoRows
	}
	if err != nil {
		return models.Subject{}, fmt.Errorf("update subject: %w", err)
	}
	return sub, nil
}

func (s *Store) ArchiveSubject(id string) error {
	res, err := s.db.Exec(`UPDATE subjects SET is_archived = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive subject: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) CreateQuestion(req models.QuestionRequest) (models.Question, error) {
	var id string
	err := s.db.QueryRow(`
		INSERT INTO questions
			(quiz_id, subject_id, text, option_a, option_b, option_c, option_d,
			 correct_option, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		req.QuizID, req.SubjectID, req.Text, req.OptionA, req.OptionB, req.OptionC, req.OptionD,
		req.CorrectOption, req.ImageURL).Scan(&id)
	if err != nil {
		return models.Question{}, fmt.Errorf("create question: %w", err)
	}
	return s.GetQuestion(id)
}

func (s *Store) GetQuestion(id string) (models.Question, error) {
	var q models.Question
	err := s.db.QueryRow(`
		SELECT id, quiz_id, subject_id, text, option_a, option_b, option_c, option_d,
		       correct_option, correct_answer, answer, image_url, is_archived, created_at
		FROM questions WHERE id = $1`, id).
		Scan(&q.ID, &q.QuizID, &q.SubjectID, &q.Text,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&q.CorrectOption, &q.CorrectAnswer, &q.Answer,
			&q.ImageURL, &q.IsArchived, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Question{}, sql.ErrNoRows
	}
	if err != nil {
		return models.Question{}, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// UpdateQuestion writes through the canonical correct_option column and clears
// the legacy ones so edited questions stop depending on the fallback chain.
func (s *Store) UpdateQuestion(id string, req models.QuestionRequest) (models.Question, error) {
	res, err := s.db.Exec(`
		UPDATE questions SET
			subject_id = $2, text = $3, option_a = $4, option_b = $5,
			option_c = $6, option_d = $7,
			correct_option = $8, correct_answer = NULL, answer = NULL,
			image_url = $9
		WHERE id = $1`,
		id, req.SubjectID, req.Text, req.OptionA, req.OptionB, req.OptionC, req.OptionD,
		req.CorrectOption, req.ImageURL)
	if err != nil {
		return models.Question{}, fmt.Errorf("update question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Question{}, sql.ErrNoRows
	}
	return s.GetQuestion(id)
}

func (s *Store) ArchiveQuestion(id string) error {
	res, err := s.db.Exec(`UPDATE questions SET is_archived = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("archive question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteQuiz physically removes a quiz and, via FK cascades, its subjects,
// questions, rules and attempts. Archive is the normal path; this exists for
// admin cleanup only.
func (s *Store) DeleteQuiz(id string) error {
	res, err := s.db.Exec(`DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *Store) DeleteSubject(id string) error {
	res, err := s.db.Exec(`DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteQuestion(id string) error {
	res, err := s.db.Exec(`DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceSubjectRules swaps the official distribution of a quiz in one
// transaction.
func (s *Store) ReplaceSubjectRules(quizID string, rules []models.SubjectRuleRequest) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM quiz_subject_rules WHERE quiz_id = $1`, quizID); err != nil {
		return fmt.Errorf("clear subject rules: %w", err)
	}
	for _, r := range rules {
		if _, err := tx.Exec(`
			INSERT INTO quiz_subject_rules (quiz_id, subject_id, question_count)
			VALUES ($1, $2, $3)`, quizID, r.SubjectID, r.QuestionCount); err != nil {
			return fmt.Errorf("insert subject rule: %w", err)
		}
	}
	return tx.Commit()
}
