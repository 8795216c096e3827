package quiz

import (
	"math"
	"sort"

	"github.com/idoneo/backend/internal/models"
)

// Default per-question points, applied when the quiz does not define its own.
const (
	DefaultPointsCorrect = 1.0
	DefaultPointsWrong   = -0.33
	DefaultPointsBlank   = 0.0
)

// Result is the scored outcome of a finished session.
type Result struct {
	Correct   int
	Wrong     int
	Blank     int
	Score     float64
	Answers   []models.AttemptAnswer
	Breakdown []models.SubjectStat
}

// Score grades every question in order against the given answers map
// (question id -> chosen option key). A question answered when no correct
// option can be normalized counts as wrong: the user committed to an answer
// that cannot be verified correct. The total is rounded to two decimals.
func Score(pool *Pool, questions []models.Question, answers map[string]string) Result {
	quiz := pool.Quiz
	pc, pw, pb := quiz.PointsCorrect, quiz.PointsWrong, quiz.PointsBlank

	res := Result{Answers: make([]models.AttemptAnswer, 0, len(questions))}
	perSubject := make(map[string]*models.SubjectStat)
	var subjectOrder []string

	for _, q := range questions {
		chosen, answered := answers[q.ID]
		correctKey := CorrectKey(q)

		record := models.AttemptAnswer{
			QuestionID: q.ID,
			SubjectID:  q.SubjectID,
		}
		if correctKey != "" {
			record.CorrectAnswer = &correctKey
		}
		if answered {
			record.ChosenOption = &chosen
		}

		switch {
		case !answered:
			res.Blank++
		case correctKey != "" && chosen == correctKey:
			record.IsCorrect = true
			res.Correct++
		default:
			res.Wrong++
		}
		res.Answers = append(res.Answers, record)

		sid := "unknown"
		if q.SubjectID != nil {
			sid = *q.SubjectID
		}
		stat, ok := perSubject[sid]
		if !ok {
			stat = &models.SubjectStat{SubjectID: sid, Name: pool.SubjectName(q.SubjectID)}
			perSubject[sid] = stat
			subjectOrder = append(subjectOrder, sid)
		}
		stat.Total++
		switch {
		case !answered:
			stat.Blank++
		case record.IsCorrect:
			stat.Correct++
		default:
			stat.Wrong++
		}
	}

	raw := float64(res.Correct)*pc + float64(res.Wrong)*pw + float64(res.Blank)*pb
	res.Score = math.Round(raw*100) / 100

	sort.Strings(subjectOrder)
	for _, sid := range subjectOrder {
		res.Breakdown = append(res.Breakdown, *perSubject[sid])
	}
	return res
}
