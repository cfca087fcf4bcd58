package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/movewidget/api/internal/platform/httpx"
	"github.com/movewidget/api/internal/services"
)

// ContactHandlers exposes early lead capture and the per-widget contact list.
type ContactHandlers struct {
	contacts services.ContactService
}

// NewContactHandlers constructs a contact handler set.
func NewContactHandlers(contacts services.ContactService) *ContactHandlers {
	return &ContactHandlers{contacts: contacts}
}

// Routes registers the contact endpoints beneath /contacts.
func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.capture)
	r.Get("/", h.list)
}

func (h *ContactHandlers) capture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "contact service not available", http.StatusServiceUnavailable))
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
		WidgetID  string `json:"widgetId"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	contact, err := h.contacts.Capture(ctx, services.CaptureContactCommand{
		WidgetID:  req.WidgetID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		writeContactError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"contact": contact})
}

func (h *ContactHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contacts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "contact service not available", http.StatusServiceUnavailable))
		return
	}

	widgetID := strings.TrimSpace(r.URL.Query().Get("widgetId"))
	if widgetID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "widgetId is required", http.StatusBadRequest))
		return
	}

	contacts, err := h.contacts.ListByWidget(ctx, widgetID, queryLimit(r, 50))
	if err != nil {
		writeContactError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func writeContactError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrContactInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrContactUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "contact store temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("contact_error", "failed to process contact request", http.StatusInternalServerError))
	}
}
