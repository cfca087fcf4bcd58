package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/services"
	"github.com/movewidget/api/internal/wizard"
)

func newSessionRouter(t *testing.T, widgets services.WidgetService) chi.Router {
	t.Helper()

	var counter int
	manager, err := wizard.NewManager(wizard.ManagerDeps{
		Widgets: widgets,
		IDGen: func() string {
			counter++
			return fmt.Sprintf("session-%d", counter)
		},
	})
	if err != nil {
		t.Fatalf("failed to build manager: %v", err)
	}

	r := chi.NewRouter()
	NewSessionHandlers(manager).Routes(r)
	return r
}

func defaultWidgetStub() *stubWidgetService {
	return &stubWidgetService{
		config: services.WidgetConfig{
			Widget:  domain.Widget{ID: "widget-1", Name: "Acme Movers"},
			Pricing: domain.DefaultRateConfig(),
		},
	}
}

func createSession(t *testing.T, router chi.Router) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"widgetId":"widget-1"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating session, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse create response: %v", err)
	}
	if body.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return body.SessionID
}

func postEvent(t *testing.T, router chi.Router, sessionID, payload string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/"+sessionID+"/events", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestSessionCreateStartsAtServiceSelect(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"widgetId":"widget-1"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}

	var body struct {
		SessionID string `json:"sessionId"`
		WidgetID  string `json:"widgetId"`
		State     struct {
			Screen string `json:"screen"`
		} `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.WidgetID != "widget-1" {
		t.Fatalf("expected widget-1, got %s", body.WidgetID)
	}
	if body.State.Screen != string(wizard.ScreenServiceSelect) {
		t.Fatalf("expected service_select, got %s", body.State.Screen)
	}
}

func TestSessionCreateUnknownWidget(t *testing.T) {
	router := newSessionRouter(t, &stubWidgetService{getErr: services.ErrWidgetNotFound})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"widgetId":"missing"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSessionEventAdvancesScreenAndRefreshesEstimate(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())
	sessionID := createSession(t, router)

	rr := postEvent(t, router, sessionID, `{"type":"choose_service","serviceType":"full_service"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		State struct {
			Screen    string `json:"screen"`
			Selection struct {
				ServiceType string `json:"serviceType"`
			} `json:"selection"`
		} `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.State.Screen != string(wizard.ScreenMoveTypeSelect) {
		t.Fatalf("expected move_type_select, got %s", body.State.Screen)
	}
	if body.State.Selection.ServiceType != string(domain.ServiceTypeFullService) {
		t.Fatalf("expected full_service, got %s", body.State.Selection.ServiceType)
	}
}

func TestSessionEventValidationErrorIsBadRequest(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())
	sessionID := createSession(t, router)

	rr := postEvent(t, router, sessionID, `{"type":"choose_service","serviceType":"teleport"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Error != "validation_failed" {
		t.Fatalf("expected validation_failed, got %s", body.Error)
	}
	if body.Field != "serviceType" {
		t.Fatalf("expected field serviceType, got %s", body.Field)
	}
}

func TestSessionEventInvalidTransitionIsConflict(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())
	sessionID := createSession(t, router)

	rr := postEvent(t, router, sessionID, `{"type":"continue_to_review"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestSessionSubmitBeforeReviewIsConflict(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())
	sessionID := createSession(t, router)

	rr := postEvent(t, router, sessionID, `{"type":"submit"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestSessionEventUnknownTypeIsBadRequest(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())
	sessionID := createSession(t, router)

	rr := postEvent(t, router, sessionID, `{"type":"teleport"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSessionGetUnknownIDIsNotFound(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSessionRemoveThenGet(t *testing.T) {
	router := newSessionRouter(t, defaultWidgetStub())
	sessionID := createSession(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/"+sessionID, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/"+sessionID, nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after removal, got %d", rr.Code)
	}
}
