package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/platform/httpx"
	"github.com/movewidget/api/internal/services"
)

// PromoHandlers exposes promo validation for the wizard and bulk management
// for the operator dashboard.
type PromoHandlers struct {
	promos services.PromotionService
}

// NewPromoHandlers constructs a promo handler set.
func NewPromoHandlers(promos services.PromotionService) *PromoHandlers {
	return &PromoHandlers{promos: promos}
}

// Routes registers the promo endpoints beneath /promos. GET with a code
// query validates; GET without one lists.
func (h *PromoHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.validateOrList)
	r.Post("/", h.save)
}

func (h *PromoHandlers) validateOrList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "promotion service not available", http.StatusServiceUnavailable))
		return
	}

	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" && !r.URL.Query().Has("code") {
		promos, err := h.promos.List(ctx, queryLimit(r, 50))
		if err != nil {
			writePromoError(ctx, w, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, map[string]any{"promos": promos})
		return
	}

	validation, err := h.promos.Validate(ctx, code)
	if err != nil {
		// the wizard shows a retryable inline failure, never a fatal error
		validation = domain.PromoValidation{Reason: domain.PromoReasonServerError}
	}
	writeJSONResponse(w, http.StatusOK, validation)
}

func (h *PromoHandlers) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.promos == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "promotion service not available", http.StatusServiceUnavailable))
		return
	}

	body, err := readLimitedBody(r, maxRequestBody)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		case errors.Is(err, errEmptyBody):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body is required", http.StatusBadRequest))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		}
		return
	}

	var req struct {
		Promos []domain.PromoCode `json:"promos"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	saved, err := h.promos.Save(ctx, req.Promos)
	if err != nil {
		writePromoError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"saved": saved})
}

func writePromoError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrPromotionInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrPromotionLookupFailed):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "promo store temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("promo_error", "failed to process promo request", http.StatusInternalServerError))
	}
}
