package catalog

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/idoneo/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterPublicRoutes registers the browsable catalog endpoints.
func (h *Handler) RegisterPublicRoutes(api *mux.Router) {
	api.HandleFunc("/categories", h.ListCategories).Methods("GET")
	api.HandleFunc("/categories/{slug}", h.GetCategory).Methods("GET")
	api.HandleFunc("/categories/{slug}/roles", h.ListRoles).Methods("GET")
	api.HandleFunc("/roles/{slug}/contests", h.ListContests).Methods("GET")
	api.HandleFunc("/contests/{slug}", h.GetContest).Methods("GET")
}

// RegisterAdminRoutes registers the catalog CRUD endpoints on the protected subrouter.
func (h *Handler) RegisterAdminRoutes(admin *mux.Router) {
	admin.HandleFunc("/categories", h.CreateCategory).Methods("POST")
	admin.HandleFunc("/categories/{id}", h.UpdateCategory).Methods("PUT")
	admin.HandleFunc("/categories/{id}", h.DeleteCategory).Methods("DELETE")
	admin.HandleFunc("/roles", h.CreateRole).Methods("POST")
	admin.HandleFunc("/roles/{id}", h.UpdateRole).Methods("PUT")
	admin.HandleFunc("/roles/{id}", h.DeleteRole).Methods("DELETE")
}

// ── Public Handlers ──────────────────────────────────────

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories()
	if err != nil {
		log.Printf("[catalog] ListCategories error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list categories"})
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	category, err := h.store.GetCategoryBySlug(slug)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Category not found"})
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	roles, err := h.store.ListRolesByCategory(slug)
	if err != nil {
		log.Printf("[catalog] ListRoles error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list roles"})
		return
	}
	if roles == nil {
		roles = []models.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

func (h *Handler) ListContests(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	contests, err := h.store.ListContestsByRole(slug)
	if err != nil {
		log.Printf("[catalog] ListContests error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list contests"})
		return
	}
	if contests == nil {
		contests = []models.Contest{}
	}
	writeJSON(w, http.StatusOK, contests)
}

func (h *Handler) GetContest(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	contest, err := h.store.GetContestBySlug(slug)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Contest not found"})
		return
	}
	writeJSON(w, http.StatusOK, contest)
}

// ── Admin Handlers ───────────────────────────────────────

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Slug == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "slug and title are required"})
		return
	}

	category, err := h.store.CreateCategory(req)
	if err != nil {
		log.Printf("[catalog] CreateCategory error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create category"})
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req models.CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	category, err := h.store.UpdateCategory(id, req)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Category not found"})
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteCategory(id); err != nil {
		log.Printf("[catalog] DeleteCategory error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete category"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req models.RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.CategoryID == "" || req.Slug == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "category_id, slug, and title are required"})
		return
	}

	role, err := h.store.CreateRole(req)
	if err != nil {
		log.Printf("[catalog] CreateRole error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create role"})
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req models.RoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	role, err := h.store.UpdateRole(id, req)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Role not found"})
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.DeleteRole(id); err != nil {
		log.Printf("[catalog] DeleteRole error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete role"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
