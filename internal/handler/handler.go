package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"offer-catalog-api/internal/auth"
	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/features"
	"offer-catalog-api/internal/models"
	"offer-catalog-api/internal/service"
	"offer-catalog-api/internal/validation"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service     *service.Service
	auth        *auth.Manager
	flags       *features.Manager
	maxBodySize int64
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	MaxBodySize int64
}

// DefaultHandlerOptions returns default handler options.
func DefaultHandlerOptions() NewHandlerOptions {
	return NewHandlerOptions{
		MaxBodySize: 10 << 20, // 10MB default
	}
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service, am *auth.Manager, flags *features.Manager) *Handler {
	return NewHandlerWithOptions(svc, am, flags, DefaultHandlerOptions())
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc *service.Service, am *auth.Manager, flags *features.Manager, opts NewHandlerOptions) *Handler {
	return &Handler{
		service:     svc,
		auth:        am,
		flags:       flags,
		maxBodySize: opts.MaxBodySize,
	}
}

// Routes builds the API router. Admin routes sit behind bearer token auth;
// everything else is the public storefront surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/setup/admin", h.SetupAdmin)

		r.Get("/offers/current", h.GetCurrentOffers)
		r.Get("/categories", h.GetCategories)
		r.Post("/contact", h.SubmitContact)
		r.Post("/newsletter/subscribe", h.SubscribeNewsletter)
		r.Post("/newsletter/unsubscribe", h.UnsubscribeNewsletter)
		r.Post("/chat", h.Chat)

		r.Get("/products", h.ListProducts)
		r.Get("/products/categories", h.GetProductCategories)

		// Admin surface
		r.Group(func(r chi.Router) {
			r.Use(h.auth.RequireAdmin)

			r.Get("/auth/me", h.Me)

			r.Get("/offers", h.ListOffers)
			r.Post("/offers", h.CreateOffer)
			r.Post("/offers/reorder", h.ReorderOffers)
			r.Get("/offers/{id}", h.GetOffer)
			r.Put("/offers/{id}", h.UpdateOffer)
			r.Delete("/offers/{id}", h.DeleteOffer)
			r.Put("/offers/{id}/active", h.SetOfferActive)

			r.Get("/contact/messages", h.ListContactMessages)
			r.Get("/newsletter/subscribers", h.ListSubscribers)

			r.Post("/products", h.CreateProduct)
			r.Post("/products/bulk", h.CreateProductsBulk)
			r.Delete("/products", h.DeleteAllProducts)
			r.Delete("/products/{id}", h.DeleteProduct)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

// GetCurrentOffers handles GET /api/offers/current. The public projection is
// fixed to the current week's active offers; query parameters cannot widen it.
func (h *Handler) GetCurrentOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.ListCurrent(r.Context())
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusOK, offers)
}

// ListOffers handles GET /api/offers with optional week, year and active_only
// query parameters.
func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	filter := database.OfferFilter{IncludeInactive: true}

	q := r.URL.Query()
	if weekParam := q.Get("week"); weekParam != "" {
		week, err := strconv.Atoi(weekParam)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid 'week' parameter")
			return
		}
		filter.WeekNumber = &week
	}
	if yearParam := q.Get("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid 'year' parameter")
			return
		}
		filter.Year = &year
	}
	if activeParam := q.Get("active_only"); activeParam == "true" || activeParam == "1" {
		filter.IncludeInactive = false
	}

	offers, err := h.service.ListOffers(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, offers)
}

// GetOffer handles GET /api/offers/{id}
func (h *Handler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	offer, err := h.service.GetOffer(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, offer)
}

// CreateOffer handles POST /api/offers
func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req models.OfferCreate
	if !h.decodeBody(w, r, &req) {
		return
	}

	offer, err := h.service.CreateOffer(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusCreated, offer)
}

// UpdateOffer handles PUT /api/offers/{id}. The body is a partial update:
// absent fields are left untouched.
func (h *Handler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch models.OfferPatch
	if !h.decodeBody(w, r, &patch) {
		return
	}

	offer, err := h.service.UpdateOffer(r.Context(), id, patch)
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, offer)
}

// DeleteOffer handles DELETE /api/offers/{id}
func (h *Handler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteOffer(r.Context(), id); err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{Message: "offer deleted"})
}

// SetOfferActive handles PUT /api/offers/{id}/active
func (h *Handler) SetOfferActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SetActiveRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	offer, err := h.service.SetActive(r.Context(), id, req.IsActive)
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, offer)
}

// ReorderOffers handles POST /api/offers/reorder
func (h *Handler) ReorderOffers(w http.ResponseWriter, r *http.Request) {
	var req models.ReorderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.service.Reorder(r.Context(), req.OfferIDA, req.OfferIDB); err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{Message: "offers reordered"})
}

// decodeBody decodes a JSON request body into dst, writing the error response
// itself when decoding fails.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	// Limit request body size to prevent abuse
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return false
	}

	return true
}

// respondServiceError maps a service error to an HTTP response. Admin routes
// surface the underlying detail; public routes get a generic message for
// anything unexpected.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error, exposeDetail bool) {
	var verr *validation.ValidationError
	switch {
	case errors.As(err, &verr):
		h.respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, database.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrUnauthorized):
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrConflict):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		if exposeDetail {
			h.respondError(w, http.StatusInternalServerError, err.Error())
		} else {
			h.respondError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
