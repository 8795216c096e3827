package quiz

import "errors"

var (
	// ErrQuizNotFound indicates the quiz record does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmptyPool is returned when no active questions survive filtering.
	ErrEmptyPool = errors.New("no active questions for the given criteria")
	// ErrInvalidPolicy indicates malformed or missing selection parameters.
	ErrInvalidPolicy = errors.New("invalid selection policy")
	// ErrEmptySelection is returned when a strategy produces zero questions.
	ErrEmptySelection = errors.New("selection produced no questions")
	// ErrSessionNotFound indicates an unknown or expired session identifier.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionFinished is returned for mutations on a finished session.
	ErrSessionFinished = errors.New("session already finished")
	// ErrNotNavigable is returned for navigation on a non-navigable official session.
	ErrNotNavigable = errors.New("session is not navigable")
	// ErrUnknownQuestion indicates an answer for a question outside the session.
	ErrUnknownQuestion = errors.New("question not part of session")
	// ErrInvalidOption indicates an option key outside a-d.
	ErrInvalidOption = errors.New("invalid option key")
	// ErrAnswerLocked is returned when changing an instant-check answer.
	ErrAnswerLocked = errors.New("answer already locked")
)
