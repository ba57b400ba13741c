package sale

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lmoralesdev/caja-backend/internal/modules/inventory"
)

// Handler exposes sale HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Post("/", h.createSale)                     // POST /api/v1/sales
		r.Post("/{id}/void", h.voidSale)              // POST /api/v1/sales/{id}/void
		r.Get("/{id}", h.getSale)                     // GET  /api/v1/sales/{id}
		r.Get("/number/{number}", h.getSaleByNumber)  // GET  /api/v1/sales/number/{number}
		r.Get("/", h.listSales)                       // GET  /api/v1/sales?date=2026-08-30
	})
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s, err := h.service.CreateSale(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, s)
}

func (h *Handler) voidSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req VoidSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s, err := h.service.VoidSale(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) getSaleByNumber(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSaleByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}
	includeVoided := r.URL.Query().Get("include_voided") == "true"
	sales, err := h.service.ListSalesByDate(r.Context(), day, includeVoided)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, sales)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var short *inventory.InsufficientStockError
	code := http.StatusInternalServerError
	body := map[string]interface{}{"error": err.Error()}
	switch {
	case errors.As(err, &short):
		// Tell the cashier exactly which product is short and by how much.
		code = http.StatusUnprocessableEntity
		body["product_id"] = short.ProductID
		body["available"] = short.Available
		body["requested"] = short.Requested
	case errors.Is(err, ErrAlreadyVoided):
		code = http.StatusConflict
	case errors.Is(err, ErrSaleNotFound), errors.Is(err, ErrClientNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		code = http.StatusNotFound
	case strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "required") ||
		strings.Contains(err.Error(), "must") || strings.Contains(err.Error(), "at least one"):
		code = http.StatusBadRequest
	}
	respond(w, code, body)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
