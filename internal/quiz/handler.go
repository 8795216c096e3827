package quiz

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/idoneo/backend/internal/models"
)

// Handler serves the session runtime and attempt history endpoints.
type Handler struct {
	service *Service
	store   *Store
}

func NewHandler(service *Service, store *Store) *Handler {
	return &Handler{service: service, store: store}
}

// RegisterPublicRoutes registers the quiz content reads.
func (h *Handler) RegisterPublicRoutes(api *mux.Router) {
	api.HandleFunc("/quizzes/{id}", h.GetQuiz).Methods("GET")
	api.HandleFunc("/quizzes/{id}/subjects", h.ListSubjects).Methods("GET")
}

// RegisterProtectedRoutes registers everything requiring an authenticated user.
func (h *Handler) RegisterProtectedRoutes(protected *mux.Router) {
	protected.HandleFunc("/quizzes/{id}/sessions", h.StartSession).Methods("POST")
	protected.HandleFunc("/quizzes/{id}/sessions/official", h.StartOfficialSession).Methods("POST")
	protected.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	protected.HandleFunc("/sessions/{id}/answer", h.Answer).Methods("POST")
	protected.HandleFunc("/sessions/{id}/next", h.Next).Methods("POST")
	protected.HandleFunc("/sessions/{id}/previous", h.Previous).Methods("POST")
	protected.HandleFunc("/sessions/{id}/finish", h.Finish).Methods("POST")
	protected.HandleFunc("/quizzes/{id}/attempts", h.ListQuizAttempts).Methods("GET")
	protected.HandleFunc("/attempts/{id}", h.GetAttempt).Methods("GET")
	protected.HandleFunc("/me/attempts", h.ListMyAttempts).Methods("GET")
	protected.HandleFunc("/me/stats", h.MyStats).Methods("GET")
}

// ── Content ──────────────────────────────────────────────

func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	quiz, err := h.store.GetQuiz(id)
	if err != nil || quiz.IsArchived {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	subjects, err := h.store.ListSubjects(id)
	if err != nil {
		log.Printf("[quiz] ListSubjects error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list subjects"})
		return
	}
	active := make([]models.Subject, 0, len(subjects))
	for _, s := range subjects {
		if !s.IsArchived {
			active = append(active, s)
		}
	}
	writeJSON(w, http.StatusOK, active)
}

// ── Sessions ─────────────────────────────────────────────

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID := userID(r)
	quizID := mux.Vars(r)["id"]

	policy := ParsePolicy(r.URL.Query())
	session, err := h.service.Start(userID, quizID, policy)
	if err != nil {
		h.writeError(w, "StartSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, session.View())
}

func (h *Handler) StartOfficialSession(w http.ResponseWriter, r *http.Request) {
	userID := userID(r)
	quizID := mux.Vars(r)["id"]

	session, err := h.service.StartOfficial(userID, quizID)
	if err != nil {
		h.writeError(w, "StartOfficialSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, session.View())
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.View(mux.Vars(r)["id"], userID(r))
	if err != nil {
		h.writeError(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	resp, err := h.service.Answer(mux.Vars(r)["id"], userID(r), req)
	if err != nil {
		h.writeError(w, "Answer", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Next(mux.Vars(r)["id"], userID(r))
	if err != nil {
		h.writeError(w, "Next", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Previous(mux.Vars(r)["id"], userID(r))
	if err != nil {
		h.writeError(w, "Previous", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Finish(mux.Vars(r)["id"], userID(r))
	if err != nil {
		h.writeError(w, "Finish", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Attempts ─────────────────────────────────────────────

func (h *Handler) ListQuizAttempts(w http.ResponseWriter, r *http.Request) {
	quizID := mux.Vars(r)["id"]
	page, pageSize := pagination(r)
	resp, err := h.service.ListAttempts(userID(r), &quizID, page, pageSize)
	if err != nil {
		log.Printf("[quiz] ListQuizAttempts error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list attempts"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListMyAttempts(w http.ResponseWriter, r *http.Request) {
	var quizID *string
	if v := r.URL.Query().Get("quiz_id"); v != "" {
		quizID = &v
	}
	page, pageSize := pagination(r)
	resp, err := h.service.ListAttempts(userID(r), quizID, page, pageSize)
	if err != nil {
		log.Printf("[quiz] ListMyAttempts error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list attempts"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.AttemptDetail(mux.Vars(r)["id"], userID(r))
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Attempt not found"})
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) MyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.UserStats(userID(r))
	if err != nil {
		log.Printf("[quiz] MyStats error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ── Helpers ──────────────────────────────────────────────

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrQuizNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
	case errors.Is(err, ErrEmptyPool):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No active questions match the given criteria"})
	case errors.Is(err, ErrInvalidPolicy):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid session parameters"})
	case errors.Is(err, ErrEmptySelection):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Selection produced no questions"})
	case errors.Is(err, ErrSessionFinished):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session already finished"})
	case errors.Is(err, ErrAnswerLocked):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Answer already locked"})
	case errors.Is(err, ErrNotNavigable):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Session is not navigable"})
	case errors.Is(err, ErrUnknownQuestion):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Question is not part of this session"})
	case errors.Is(err, ErrInvalidOption):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid option key"})
	default:
		log.Printf("[quiz] %s error: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value("user_id").(int64)
	return id
}

func pagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("WARN: failed to encode response: %v", err)
	}
}
