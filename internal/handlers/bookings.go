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

// BookingHandlers exposes booking submission and the operator's read surface.
// The POST is protected by the idempotency middleware configured on the
// bookings route group.
type BookingHandlers struct {
	bookings services.BookingService
}

// NewBookingHandlers constructs a booking handler set.
func NewBookingHandlers(bookings services.BookingService) *BookingHandlers {
	return &BookingHandlers{bookings: bookings}
}

// Routes registers the booking endpoints beneath /bookings.
func (h *BookingHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submit)
	r.Get("/", h.list)
	r.Get("/{bookingId}", h.get)
}

type submitBookingRequest struct {
	WidgetID     string            `json:"widgetId"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	MoveDate     string            `json:"moveDate"`
	MoveTime     string            `json:"moveTime"`
	Selection    domain.Selection  `json:"selection"`
	PromoCode    string            `json:"promoCode"`
	CustomFields map[string]string `json:"customFields"`
}

func (h *BookingHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bookings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "booking service not available", http.StatusServiceUnavailable))
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

	var req submitBookingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	moveDate, err := parseDateValue(req.MoveDate)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "moveDate: "+err.Error(), http.StatusBadRequest))
		return
	}

	booking, err := h.bookings.Submit(ctx, services.SubmitBookingCommand{
		WidgetID:     req.WidgetID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		MoveDate:     moveDate,
		MoveTime:     req.MoveTime,
		Selection:    req.Selection,
		PromoCode:    req.PromoCode,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		writeBookingError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"booking": booking})
}

func (h *BookingHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bookings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "booking service not available", http.StatusServiceUnavailable))
		return
	}

	bookingID := strings.TrimSpace(chi.URLParam(r, "bookingId"))
	booking, err := h.bookings.Get(ctx, bookingID)
	if err != nil {
		writeBookingError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"booking": booking})
}

func (h *BookingHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bookings == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "booking service not available", http.StatusServiceUnavailable))
		return
	}

	widgetID := strings.TrimSpace(r.URL.Query().Get("widgetId"))
	if widgetID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "widgetId is required", http.StatusBadRequest))
		return
	}

	bookings, err := h.bookings.ListByWidget(ctx, widgetID, queryLimit(r, 50))
	if err != nil {
		writeBookingError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func writeBookingError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrBookingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrBookingNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "booking not found", http.StatusNotFound))
	case errors.Is(err, services.ErrBookingUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "booking store temporarily unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("booking_error", "failed to process booking request", http.StatusInternalServerError))
	}
}
