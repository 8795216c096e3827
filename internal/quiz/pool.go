package quiz

import (
	"github.com/idoneo/backend/internal/models"
)

// Pool is the set of active questions eligible for selection for one quiz,
// optionally restricted to a subject subset, annotated with subject lookups.
type Pool struct {
	Quiz      models.Quiz
	Subjects  map[string]models.Subject
	Questions []models.Question

	byID      map[string]models.Question
	bySubject map[string][]models.Question
}

// NewPool filters the loaded content down to active questions (and the
// subject restriction, when present) and builds the lookup indexes.
// Returns ErrEmptyPool when nothing survives: an empty quiz is never
// presented silently.
func NewPool(quiz models.Quiz, subjects []models.Subject, questions []models.Question, subjectFilter []string) (*Pool, error) {
	filter := make(map[string]bool, len(subjectFilter))
	for _, id := range subjectFilter {
		if id != "" {
			filter[id] = true
		}
	}

	p := &Pool{
		Quiz:      quiz,
		Subjects:  make(map[string]models.Subject, len(subjects)),
		byID:      make(map[string]models.Question),
		bySubject: make(map[string][]models.Question),
	}
	for _, s := range subjects {
		p.Subjects[s.ID] = s
	}

	for _, q := range questions {
		if q.IsArchived {
			continue
		}
		if len(filter) > 0 {
			if q.SubjectID == nil || !filter[*q.SubjectID] {
				continue
			}
		}
		p.Questions = append(p.Questions, q)
		p.byID[q.ID] = q
		if q.SubjectID != nil {
			p.bySubject[*q.SubjectID] = append(p.bySubject[*q.SubjectID], q)
		}
	}

	if len(p.Questions) == 0 {
		return nil, ErrEmptyPool
	}
	return p, nil
}

// Contains reports whether the question is still part of the active pool.
func (p *Pool) Contains(questionID string) bool {
	_, ok := p.byID[questionID]
	return ok
}

// Question returns the pool question with the given id.
func (p *Pool) Question(questionID string) (models.Question, bool) {
	q, ok := p.byID[questionID]
	return q, ok
}

// SubjectQuestions returns the active questions belonging to a subject.
func (p *Pool) SubjectQuestions(subjectID string) []models.Question {
	return p.bySubject[subjectID]
}

// SubjectName resolves a display name for breakdown rows. Questions without a
// subject fall into the "unknown" bucket.
func (p *Pool) SubjectName(subjectID *string) string {
	if subjectID == nil {
		return "Sconosciuta"
	}
	if s, ok := p.Subjects[*subjectID]; ok {
		return s.Name
	}
	return "Sconosciuta"
}
