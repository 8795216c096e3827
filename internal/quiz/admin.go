package quiz

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/idoneo/backend/internal/models"
)

// AdminHandler serves the content management endpoints.
type AdminHandler struct {
	store *Store
}

func NewAdminHandler(store *Store) *AdminHandler {
	return &AdminHandler{store: store}
}

func (h *AdminHandler) RegisterRoutes(admin *mux.Router) {
	admin.HandleFunc("/quizzes", h.ListQuizzes).Methods("GET")
	admin.HandleFunc("/quizzes", h.CreateQuiz).Methods("POST")
	admin.HandleFunc("/quizzes/{id}", h.UpdateQuiz).Methods("PUT")
	admin.HandleFunc("/quizzes/{id}", h.ArchiveQuiz).Methods("DELETE")
	admin.HandleFunc("/quizzes/{id}/rules", h.ReplaceRules).Methods("PUT")
	admin.HandleFunc("/quizzes/{id}/rules", h.ListRules).Methods("GET")
	admin.HandleFunc("/quizzes/{id}/warnings", h.ListWarnings).Methods("GET")
	admin.HandleFunc("/quizzes/{id}/questions", h.ListQuestions).Methods("GET")
	admin.HandleFunc("/subjects", h.CreateSubject).Methods("POST")
	admin.HandleFunc("/subjects/{id}", h.UpdateSubject).Methods("PUT")
	admin.HandleFunc("/subjects/{id}", h.ArchiveSubject).Methods("DELETE")
	admin.HandleFunc("/questions", h.CreateQuestion).Methods("POST")
	admin.HandleFunc("/questions/{id}", h.UpdateQuestion).Methods("PUT")
	admin.HandleFunc("/questions/{id}", h.ArchiveQuestion).Methods("DELETE")
}

// ── Quizzes ──────────────────────────────────────────────

func (h *AdminHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.store.ListQuizzes()
	if err != nil {
		log.Printf("[admin] ListQuizzes error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list quizzes"})
		return
	}
	if quizzes == nil {
		quizzes = []models.Quiz{}
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *AdminHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Title is required"})
		return
	}
	quiz, err := h.store.CreateQuiz(req)
	if err != nil {
		log.Printf("[admin] CreateQuiz error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create quiz"})
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *AdminHandler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Title is required"})
		return
	}
	quiz, err := h.store.UpdateQuiz(mux.Vars(r)["id"], req)
	if errors.Is(err, ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		log.Printf("[admin] UpdateQuiz error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update quiz"})
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// ArchiveQuiz soft-deletes by default; ?hard=true removes the row and
// everything hanging off it.
func (h *AdminHandler) ArchiveQuiz(w http.ResponseWriter, r *http.Request) {
	var err error
	if hardDelete(r) {
		err = h.store.DeleteQuiz(mux.Vars(r)["id"])
	} else {
		err = h.store.ArchiveQuiz(mux.Vars(r)["id"])
	}
	if errors.Is(err, ErrQuizNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	if err != nil {
		log.Printf("[admin] ArchiveQuiz error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to archive quiz"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Official Rules ───────────────────────────────────────

func (h *AdminHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.ListSubjectRules(mux.Vars(r)["id"])
	if err != nil {
		log.Printf("[admin] ListRules error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list rules"})
		return
	}
	if rules == nil {
		rules = []models.SubjectRule{}
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *AdminHandler) ReplaceRules(w http.ResponseWriter, r *http.Request) {
	var rules []models.SubjectRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	for _, rule := range rules {
		if rule.SubjectID == "" || rule.QuestionCount <= 0 {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Each rule needs a subject_id and a positive question_count"})
			return
		}
	}
	quizID := mux.Vars(r)["id"]
	if err := h.store.ReplaceSubjectRules(quizID, rules); err != nil {
		log.Printf("[admin] ReplaceRules error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to replace rules"})
		return
	}
	updated, err := h.store.ListSubjectRules(quizID)
	if err != nil {
		log.Printf("[admin] ReplaceRules reload error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to replace rules"})
		return
	}
	if updated == nil {
		updated = []models.SubjectRule{}
	}
	writeJSON(w, http.StatusOK, updated)
}

// ── Data Quality ─────────────────────────────────────────

// ListWarnings flags active questions whose stored correct answer cannot be
// resolved to a presentable option. Such questions still run; they just grade
// as wrong whenever answered.
func (h *AdminHandler) ListWarnings(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions(mux.Vars(r)["id"])
	if err != nil {
		log.Printf("[admin] ListWarnings error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to inspect questions"})
		return
	}

	warnings := []models.QuestionWarning{}
	for _, q := range questions {
		if q.IsArchived {
			continue
		}
		if problem := inspectQuestion(q); problem != "" {
			warnings = append(warnings, models.QuestionWarning{
				QuestionID: q.ID,
				SubjectID:  q.SubjectID,
				Text:       q.Text,
				Problem:    problem,
			})
		}
	}
	writeJSON(w, http.StatusOK, warnings)
}

func inspectQuestion(q models.Question) string {
	key := CorrectKey(q)
	switch {
	case key == "":
		return "no correct option defined"
	case !ValidOption(key):
		return "correct option is not one of a-d"
	case q.Option(key) == nil:
		return "correct option has no answer text"
	}
	return ""
}

func (h *AdminHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.store.ListQuestions(mux.Vars(r)["id"])
	if err != nil {
		log.Printf("[admin] ListQuestions error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list questions"})
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

// ── Subjects ─────────────────────────────────────────────

func (h *AdminHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req models.SubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "quiz_id and name are required"})
		return
	}
	subject, err := h.store.CreateSubject(req)
	if err != nil {
		log.Printf("[admin] CreateSubject error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create subject"})
		return
	}
	writeJSON(w, http.StatusCreated, subject)
}

func (h *AdminHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	var req models.SubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}
	subject, err := h.store.UpdateSubject(mux.Vars(r)["id"], req)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Subject not found"})
		return
	}
	writeJSON(w, http.StatusOK, subject)
}

func (h *AdminHandler) ArchiveSubject(w http.ResponseWriter, r *http.Request) {
	var err error
	if hardDelete(r) {
		err = h.store.DeleteSubject(mux.Vars(r)["id"])
	} else {
		err = h.store.ArchiveSubject(mux.Vars(r)["id"])
	}
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Subject not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Questions ────────────────────────────────────────────

func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "quiz_id and text are required"})
		return
	}
	if !validCorrectOption(req.CorrectOption) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "correct_option must normalize to one of a-d"})
		return
	}
	question, err := h.store.CreateQuestion(req)
	if err != nil {
		log.Printf("[admin] CreateQuestion error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create question"})
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "text is required"})
		return
	}
	if !validCorrectOption(req.CorrectOption) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "correct_option must normalize to one of a-d"})
		return
	}
	question, err := h.store.UpdateQuestion(mux.Vars(r)["id"], req)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// validCorrectOption allows a missing value (legacy imports) but rejects one
// that cannot normalize to a presentable option key.
func validCorrectOption(raw *string) bool {
	if raw == nil || *raw == "" {
		return true
	}
	return ValidOption(NormalizeOption(*raw))
}

func (h *AdminHandler) ArchiveQuestion(w http.ResponseWriter, r *http.Request) {
	var err error
	if hardDelete(r) {
		err = h.store.DeleteQuestion(mux.Vars(r)["id"])
	} else {
		err = h.store.ArchiveQuestion(mux.Vars(r)["id"])
	}
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func hardDelete(r *http.Request) bool {
	return r.URL.Query().Get("hard") == "true"
}
