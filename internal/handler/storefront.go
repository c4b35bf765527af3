package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"offer-catalog-api/internal/auth"
	"offer-catalog-api/internal/chat"
	"offer-catalog-api/internal/database"
	"offer-catalog-api/internal/features"
	"offer-catalog-api/internal/models"
	"offer-catalog-api/internal/validation"
)

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.AdminFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.respondJSON(w, http.StatusOK, admin)
}

// SetupAdmin handles POST /api/setup/admin. It creates the initial admin
// account and refuses once any admin exists.
func (h *Handler) SetupAdmin(w http.ResponseWriter, r *http.Request) {
	exists, err := h.auth.HasAdmins(r.Context())
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}
	if exists {
		h.respondError(w, http.StatusBadRequest, "admin account already exists")
		return
	}

	var req models.LoginRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if err := h.auth.CreateAdmin(r.Context(), uuid.New().String(), req.Username, req.Password); err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusCreated, models.MessageResponse{Message: "admin account created"})
}

// GetCategories handles GET /api/categories
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusOK, categories)
}

// SubmitContact handles POST /api/contact
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactMessageCreate
	if !h.decodeBody(w, r, &req) {
		return
	}

	msg, err := h.service.SubmitContact(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusCreated, models.MessageResponse{Message: msg})
}

// ListContactMessages handles GET /api/contact/messages
func (h *Handler) ListContactMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.ListContactMessages(r.Context())
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, messages)
}

// SubscribeNewsletter handles POST /api/newsletter/subscribe
func (h *Handler) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterSubscribe
	if !h.decodeBody(w, r, &req) {
		return
	}

	msg, err := h.service.SubscribeNewsletter(r.Context(), req.Email)
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{Message: msg})
}

// UnsubscribeNewsletter handles POST /api/newsletter/unsubscribe
func (h *Handler) UnsubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req models.NewsletterSubscribe
	if !h.decodeBody(w, r, &req) {
		return
	}

	msg, err := h.service.UnsubscribeNewsletter(r.Context(), req.Email)
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{Message: msg})
}

// ListSubscribers handles GET /api/newsletter/subscribers
func (h *Handler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListSubscribers(r.Context())
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, subs)
}

// ListProducts handles GET /api/products with optional search, category,
// limit and offset query parameters.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := database.ProductFilter{
		Search:   validation.SanitizeString(q.Get("search")),
		Category: validation.SanitizeString(q.Get("category")),
	}
	if limitParam := q.Get("limit"); limitParam != "" {
		if limit, err := strconv.Atoi(limitParam); err == nil {
			filter.Limit = limit
		}
	}
	// The original admin tool sends "skip"; "offset" is accepted as well.
	for _, name := range []string{"skip", "offset"} {
		if param := q.Get(name); param != "" {
			if offset, err := strconv.Atoi(param); err == nil {
				filter.Offset = offset
			}
			break
		}
	}

	page, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusOK, page)
}

// GetProductCategories handles GET /api/products/categories
func (h *Handler) GetProductCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ProductCategories(r.Context())
	if err != nil {
		h.respondServiceError(w, err, false)
		return
	}

	h.respondJSON(w, http.StatusOK, categories)
}

// CreateProduct handles POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductCreate
	if !h.decodeBody(w, r, &req) {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusCreated, product)
}

// CreateProductsBulk handles POST /api/products/bulk
func (h *Handler) CreateProductsBulk(w http.ResponseWriter, r *http.Request) {
	var req models.ProductBulkCreate
	if !h.decodeBody(w, r, &req) {
		return
	}

	inserted, err := h.service.CreateProductsBulk(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]int{"inserted": inserted})
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, models.MessageResponse{Message: "product deleted"})
}

// DeleteAllProducts handles DELETE /api/products
func (h *Handler) DeleteAllProducts(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteAllProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, err, true)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// Chat handles POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.flags != nil && !h.flags.IsEnabled(features.ChatAssistant) {
		h.respondError(w, http.StatusServiceUnavailable, "chat assistant is disabled")
		return
	}

	var req models.ChatQuery
	if !h.decodeBody(w, r, &req) {
		return
	}

	h.respondJSON(w, http.StatusOK, models.ChatResponse{
		Found:   true,
		Message: chat.Respond(req.Query),
	})
}
