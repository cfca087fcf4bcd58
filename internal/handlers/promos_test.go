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

type stubPromotionService struct {
	validation  domain.PromoValidation
	validateErr error
	saved       int
	saveErr     error
	promos      []domain.PromoCode

	lastCode string
	lastSave []domain.PromoCode
}

func (s *stubPromotionService) Validate(_ context.Context, code string) (domain.PromoValidation, error) {
	s.lastCode = code
	return s.validation, s.validateErr
}

func (s *stubPromotionService) Save(_ context.Context, promos []domain.PromoCode) (int, error) {
	s.lastSave = promos
	return s.saved, s.saveErr
}

func (s *stubPromotionService) List(context.Context, int) ([]domain.PromoCode, error) {
	return s.promos, nil
}

func newPromoRouter(svc services.PromotionService) chi.Router {
	r := chi.NewRouter()
	NewPromoHandlers(svc).Routes(r)
	return r
}

func TestPromoValidateValidCode(t *testing.T) {
	svc := &stubPromotionService{
		validation: domain.PromoValidation{
			Valid: true,
			Promo: &domain.PromoCode{Code: "MOVE10", DiscountType: domain.DiscountTypePercent, DiscountValue: 10},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/?code=move10", nil)
	rr := httptest.NewRecorder()
	newPromoRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if svc.lastCode != "move10" {
		t.Fatalf("expected raw code passed through, got %q", svc.lastCode)
	}

	var body domain.PromoValidation
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !body.Valid || body.Promo == nil || body.Promo.Code != "MOVE10" {
		t.Fatalf("unexpected validation payload: %+v", body)
	}
}

func TestPromoValidateReportsReason(t *testing.T) {
	svc := &stubPromotionService{
		validation: domain.PromoValidation{Reason: domain.PromoReasonExpired},
	}

	req := httptest.NewRequest(http.MethodGet, "/?code=OLD", nil)
	rr := httptest.NewRecorder()
	newPromoRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body domain.PromoValidation
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Valid || body.Reason != domain.PromoReasonExpired {
		t.Fatalf("expected expired reason, got %+v", body)
	}
}

func TestPromoValidateLookupFailureIsSoft(t *testing.T) {
	svc := &stubPromotionService{validateErr: services.ErrPromotionLookupFailed}

	req := httptest.NewRequest(http.MethodGet, "/?code=MOVE10", nil)
	rr := httptest.NewRecorder()
	newPromoRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for soft failure, got %d", rr.Code)
	}

	var body domain.PromoValidation
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Valid || body.Reason != domain.PromoReasonServerError {
		t.Fatalf("expected server_error reason, got %+v", body)
	}
}

func TestPromoListWithoutCodeParam(t *testing.T) {
	svc := &stubPromotionService{promos: []domain.PromoCode{{Code: "MOVE10"}, {Code: "SAVE25"}}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	newPromoRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Promos []domain.PromoCode `json:"promos"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(body.Promos) != 2 {
		t.Fatalf("expected 2 promos, got %d", len(body.Promos))
	}
}

func TestPromoSaveBulk(t *testing.T) {
	svc := &stubPromotionService{saved: 2}

	payload := `{"promos":[{"code":"move10","discountType":"percent","discountValue":10},{"code":"save25","discountType":"fixed","discountValue":25}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	newPromoRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(svc.lastSave) != 2 {
		t.Fatalf("expected 2 promos passed to service, got %d", len(svc.lastSave))
	}

	var body struct {
		Saved int `json:"saved"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Saved != 2 {
		t.Fatalf("expected saved 2, got %d", body.Saved)
	}
}

func TestPromoSaveRejectsInvalidInput(t *testing.T) {
	svc := &stubPromotionService{saveErr: services.ErrPromotionInvalidInput}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"promos":[{"code":"X","discountValue":0}]}`))
	rr := httptest.NewRecorder()
	newPromoRouter(svc).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
