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

// WidgetHandlers exposes the widget configuration endpoints. The GET by id is
// the public surface the embed script loads; create, update and list serve
// the operator dashboard.
type WidgetHandlers struct {
	widgets services.WidgetService
}

// NewWidgetHandlers constructs a widget handler set.
func NewWidgetHandlers(widgets services.WidgetService) *WidgetHandlers {
	return &WidgetHandlers{widgets: widgets}
}

// Routes registers the widget endpoints beneath /widgets.
func (h *WidgetHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{widgetId}", h.get)
	r.Put("/{widgetId}", h.update)
}

func (h *WidgetHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.widgets == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "widget service not available", http.StatusServiceUnavailable))
		return
	}

	widgetID := strings.TrimSpace(chi.URLParam(r, "widgetId"))
	config, err := h.widgets.Get(ctx, widgetID)
	if err != nil {
		writeWidgetError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, config)
}

func (h *WidgetHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.widgets == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "widget service not available", http.StatusServiceUnavailable))
		return
	}

	widgets, err := h.widgets.List(ctx, queryLimit(r, 50))
	if err != nil {
		writeWidgetError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"widgets": widgets})
}

func (h *WidgetHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.widgets == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "widget service not available", http.StatusServiceUnavailable))
		return
	}

	cmd, ok := decodeWidgetCommand(ctx, w, r)
	if !ok {
		return
	}

	widget, err := h.widgets.Create(ctx, cmd)
	if err != nil {
		writeWidgetError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"widget": widget})
}

func (h *WidgetHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.widgets == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "widget service not available", http.StatusServiceUnavailable))
		return
	}

	cmd, ok := decodeWidgetCommand(ctx, w, r)
	if !ok {
		return
	}
	cmd.WidgetID = strings.TrimSpace(chi.URLParam(r, "widgetId"))

	widget, err := h.widgets.Update(ctx, cmd)
	if err != nil {
		writeWidgetError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"widget": widget})
}

type upsertWidgetRequest struct {
	Name         string                  `json:"name"`
	Branding     domain.Branding         `json:"branding"`
	CustomFields []domain.CustomField    `json:"customFields"`
	Pricing      *domain.RateConfigPatch `json:"pricing"`
}

func decodeWidgetCommand(ctx context.Context, w http.ResponseWriter, r *http.Request) (services.UpsertWidgetCommand, bool) {
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
		return services.UpsertWidgetCommand{}, false
	}

	var req upsertWidgetRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return services.UpsertWidgetCommand{}, false
	}

	return services.UpsertWidgetCommand{
		Name:         req.Name,
		Branding:     req.Branding,
		CustomFields: req.CustomFields,
		Pricing:      req.Pricing,
	}, true
}

func writeWidgetError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrWidgetInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrWidgetNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "widget not found", http.StatusNotFound))
	case errors.Is(err, services.ErrWidgetUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "widget store temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("widget_error", "failed to process widget request", http.StatusInternalServerError))
	}
}
