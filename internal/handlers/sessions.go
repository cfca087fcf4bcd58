package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/platform/httpx"
	"github.com/movewidget/api/internal/wizard"
)

// SessionHandlers drives the server-side wizard: the embed script creates a
// session per visitor and posts discrete events, receiving the new screen and
// the live estimate back.
type SessionHandlers struct {
	manager *wizard.Manager
}

// NewSessionHandlers constructs a wizard session handler set.
func NewSessionHandlers(manager *wizard.Manager) *SessionHandlers {
	return &SessionHandlers{manager: manager}
}

// Routes registers the session endpoints beneath /sessions.
func (h *SessionHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.create)
	r.Get("/{sessionId}", h.get)
	r.Post("/{sessionId}/events", h.applyEvent)
	r.Delete("/{sessionId}", h.remove)
}

type sessionView struct {
	SessionID   string              `json:"sessionId"`
	WidgetID    string              `json:"widgetId"`
	State       wizard.State        `json:"state"`
	Suggestions []wizard.Suggestion `json:"suggestions"`
	Booking     *domain.Booking     `json:"booking,omitempty"`
}

func buildSessionView(session *wizard.Session, state wizard.State) sessionView {
	suggestions := session.Suggestions()
	if suggestions == nil {
		suggestions = []wizard.Suggestion{}
	}
	return sessionView{
		SessionID:   session.ID,
		WidgetID:    session.WidgetID(),
		State:       state,
		Suggestions: suggestions,
		Booking:     session.Booking(),
	}
}

func (h *SessionHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "wizard sessions not available", http.StatusServiceUnavailable))
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
		WidgetID string `json:"widgetId"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}
	if strings.TrimSpace(req.WidgetID) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "widgetId is required", http.StatusBadRequest))
		return
	}

	session, err := h.manager.Create(ctx, req.WidgetID)
	if err != nil {
		writeWidgetError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildSessionView(session, session.State()))
}

func (h *SessionHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, ok := h.lookup(ctx, w, r)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionView(session, session.State()))
}

func (h *SessionHandlers) remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "wizard sessions not available", http.StatusServiceUnavailable))
		return
	}
	h.manager.Remove(strings.TrimSpace(chi.URLParam(r, "sessionId")))
	w.WriteHeader(http.StatusNoContent)
}

type sessionEventRequest struct {
	Type          string             `json:"type"`
	ServiceType   string             `json:"serviceType"`
	LaborHelpType string             `json:"laborHelpType"`
	MoveType      string             `json:"moveType"`
	SizeBucket    string             `json:"sizeBucket"`
	Contact       wizard.ContactInfo `json:"contact"`
	Date          string             `json:"date"`
	Slot          string             `json:"slot"`
	Query         string             `json:"query"`
	Unit          string             `json:"unit"`
	HasElevator   bool               `json:"hasElevator"`
	StairsTier    string             `json:"stairsTier"`
	WalkingTier   string             `json:"walkingTier"`
	Tier          string             `json:"tier"`
	Hours         float64            `json:"hours"`
	Selected      bool               `json:"selected"`
	Duration      string             `json:"duration"`
	DeclaredValue float64            `json:"declaredValue"`
	Code          string             `json:"code"`
	Input         string             `json:"input"`
}

func (h *SessionHandlers) applyEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, ok := h.lookup(ctx, w, r)
	if !ok {
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

	var req sessionEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "invalid JSON payload", http.StatusBadRequest))
		return
	}

	var state wizard.State
	switch strings.TrimSpace(req.Type) {
	case "type_address":
		session.TypeAddress(ctx, req.Input)
		state = session.State()
	case "apply_promo":
		state, err = session.ApplyPromo(ctx, req.Code)
	case "submit":
		state, err = session.Submit(ctx)
	default:
		event, buildErr := buildWizardEvent(req)
		if buildErr != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", buildErr.Error(), http.StatusBadRequest))
			return
		}
		state, err = session.Apply(ctx, event)
	}
	if err != nil {
		writeWizardError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionView(session, state))
}

func (h *SessionHandlers) lookup(ctx context.Context, w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	if h.manager == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "wizard sessions not available", http.StatusServiceUnavailable))
		return nil, false
	}
	sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
	session, err := h.manager.Get(sessionID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("not_found", "session not found", http.StatusNotFound))
		return nil, false
	}
	return session, true
}

func buildWizardEvent(req sessionEventRequest) (wizard.Event, error) {
	switch strings.TrimSpace(req.Type) {
	case "choose_service":
		return wizard.ChooseService{Type: domain.ServiceType(req.ServiceType)}, nil
	case "choose_labor_help":
		return wizard.ChooseLaborHelp{Type: domain.LaborHelpType(req.LaborHelpType)}, nil
	case "choose_move_type":
		return wizard.ChooseMoveType{Type: domain.MoveType(req.MoveType)}, nil
	case "choose_size":
		return wizard.ChooseSize{Bucket: req.SizeBucket}, nil
	case "submit_contact":
		return wizard.SubmitContact{Contact: req.Contact}, nil
	case "choose_move_date":
		date, err := parseDateValue(req.Date)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		return wizard.ChooseMoveDate{Date: date}, nil
	case "choose_move_time":
		return wizard.ChooseMoveTime{Slot: req.Slot}, nil
	case "confirm_origin":
		return wizard.ConfirmOriginAddress{Query: req.Query}, nil
	case "submit_origin_details":
		return wizard.SubmitOriginDetails{
			Unit:        req.Unit,
			HasElevator: req.HasElevator,
			StairsTier:  req.StairsTier,
			WalkingTier: req.WalkingTier,
		}, nil
	case "confirm_destination":
		return wizard.ConfirmDestinationAddress{Query: req.Query}, nil
	case "submit_destination_details":
		return wizard.SubmitDestinationDetails{
			Unit:        req.Unit,
			HasElevator: req.HasElevator,
			StairsTier:  req.StairsTier,
			WalkingTier: req.WalkingTier,
		}, nil
	case "choose_team":
		return wizard.ChooseTeam{Tier: req.Tier}, nil
	case "choose_hours":
		return wizard.ChooseHours{Hours: req.Hours}, nil
	case "open_storage_editor":
		return wizard.OpenStorageEditor{}, nil
	case "save_storage":
		return wizard.SaveStorage{Selected: req.Selected, Duration: req.Duration}, nil
	case "open_protection_editor":
		return wizard.OpenProtectionEditor{}, nil
	case "save_protection":
		return wizard.SaveProtection{Selected: req.Selected, DeclaredValue: req.DeclaredValue}, nil
	case "cancel_editor":
		return wizard.CancelEditor{}, nil
	case "continue_to_promo":
		return wizard.ContinueToPromo{}, nil
	case "edit_promo":
		return wizard.EditPromoCode{Code: req.Code}, nil
	case "skip_promo":
		return wizard.SkipPromo{}, nil
	case "continue_to_review":
		return wizard.ContinueToReview{}, nil
	case "back":
		return wizard.Back{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", req.Type)
	}
}

func writeWizardError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	var validation *wizard.ValidationError
	switch {
	case errors.As(err, &validation):
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", validation.Message, http.StatusBadRequest).
			WithDetails(map[string]any{"field": validation.Field}))
	case errors.Is(err, wizard.ErrInvalidTransition), errors.Is(err, wizard.ErrNotOnReview):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, wizard.ErrSubmissionInFlight):
		httpx.WriteError(ctx, w, httpx.NewError("submission_in_progress", "a submission is already being processed", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("session_error", "failed to process wizard event", http.StatusInternalServerError))
	}
}
