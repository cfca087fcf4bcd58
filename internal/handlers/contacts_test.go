package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/services"
)

type stubContactService struct {
	contact    domain.Contact
	captureErr error
	contacts   []domain.Contact

	lastCapture services.CaptureContactCommand
	lastWidget  string
}

func (s *stubContactService) Capture(_ context.Context, cmd services.CaptureContactCommand) (domain.Contact, error) {
	s.lastCapture = cmd
	return s.contact, s.captureErr
}

func (s *stubContactService) ListByWidget(_ context.Context, widgetID string, _ int) ([]domain.Contact, error) {
	s.lastWidget = widgetID
	return s.contacts, nil
}

func newContactRouter(svc services.ContactService) chi.Router {
	r := chi.NewRouter()
	NewContactHandlers(svc).Routes(r)
	return r
}

func TestContactCapture(t *testing.T) {
	svc := &stubContactService{
		contact: domain.Contact{ID: "contact-1", WidgetID: "widget-1", Email: "dana@example.com"},
	}

	payload := `{"widgetId":"widget-1","firstName":"Dana","lastName":"Reyes","email":"dana@example.com","phone":"555-010-2030"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if svc.lastCapture.WidgetID != "widget-1" || svc.lastCapture.Email != "dana@example.com" {
		t.Fatalf("unexpected capture command: %+v", svc.lastCapture)
	}

	var body struct {
		Contact domain.Contact `json:"contact"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Contact.ID != "contact-1" {
		t.Fatalf("expected contact-1, got %s", body.Contact.ID)
	}
}

func TestContactCaptureRejectsInvalidInput(t *testing.T) {
	svc := &stubContactService{captureErr: services.ErrContactInvalidInput}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"widgetId":"widget-1"}`))
	rr := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestContactListRequiresWidgetID(t *testing.T) {
	svc := &stubContactService{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestContactList(t *testing.T) {
	svc := &stubContactService{contacts: []domain.Contact{{ID: "a"}, {ID: "b"}}}

	req := httptest.NewRequest(http.MethodGet, "/?widgetId=widget-1", nil)
	rr := httptest.NewRecorder()
	newContactRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if svc.lastWidget != "widget-1" {
		t.Fatalf("expected widget-1, got %q", svc.lastWidget)
	}
}
