package closing

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Handler exposes reconciliation HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Get("/api/v1/cash/summary", h.dailySummary) // GET /api/v1/cash/summary?date=2026-08-30
	r.Route("/api/v1/cash/closures", func(r chi.Router) {
		r.Post("/", h.createClosure)    // POST /api/v1/cash/closures
		r.Get("/", h.history)           // GET  /api/v1/cash/closures?limit=30
		r.Get("/{id}", h.closureDetail) // GET  /api/v1/cash/closures/{id}
	})
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}
	summary, err := h.service.ComputeDailySummary(r.Context(), day)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, summary)
}

func (h *Handler) createClosure(w http.ResponseWriter, r *http.Request) {
	var req CreateClosureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.CreateClosure(r.Context(), req)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}
	closures, err := h.service.History(r.Context(), limit)
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, closures)
}

func (h *Handler) closureDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.ClosureDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, detail)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrClosureNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConcurrencyConflict):
		return http.StatusConflict
	case strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "required") ||
		strings.Contains(err.Error(), "must"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
