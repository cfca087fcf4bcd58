package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/movewidget/api/internal/domain"
)

func newTestWidgetService(t *testing.T, repo *fakeWidgetRepo) WidgetService {
	t.Helper()
	svc, err := NewWidgetService(WidgetServiceDeps{
		Widgets: repo,
		Clock:   func() time.Time { return time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC) },
		IDGen:   func() string { return "widget-1" },
	})
	if err != nil {
		t.Fatalf("NewWidgetService: %v", err)
	}
	return svc
}

func TestWidgetGetResolvesPricingOnce(t *testing.T) {
	travelRate := 0.5
	repo := &fakeWidgetRepo{widgets: map[string]domain.Widget{
		"widget-1": {
			ID:      "widget-1",
			Name:    "Acme Moving",
			Pricing: &domain.RateConfigPatch{TravelRate: &travelRate},
		},
	}}
	svc := newTestWidgetService(t, repo)

	config, err := svc.Get(context.Background(), "widget-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if config.Pricing.TravelRate != 0.5 {
		t.Fatalf("expected patched travel rate, got %v", config.Pricing.TravelRate)
	}
	// untouched parts come from the defaults
	if config.Pricing.PricePerMile != 2.5 {
		t.Fatalf("expected default price per mile, got %v", config.Pricing.PricePerMile)
	}
	if _, ok := config.Pricing.Teams.Move["2-1"]; !ok {
		t.Fatalf("expected default move tiers present")
	}
}

func TestWidgetGetNotFound(t *testing.T) {
	repo := &fakeWidgetRepo{widgets: map[string]domain.Widget{}}
	svc := newTestWidgetService(t, repo)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrWidgetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWidgetCreateValidatesPricing(t *testing.T) {
	repo := &fakeWidgetRepo{widgets: map[string]domain.Widget{}}
	svc := newTestWidgetService(t, repo)

	negative := -1.0
	_, err := svc.Create(context.Background(), UpsertWidgetCommand{
		Name:    "Bad Rates",
		Pricing: &domain.RateConfigPatch{PricePerMile: &negative},
	})
	if !errors.Is(err, ErrWidgetInvalidInput) {
		t.Fatalf("expected invalid input for negative price, got %v", err)
	}

	widget, err := svc.Create(context.Background(), UpsertWidgetCommand{Name: "Acme Moving"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if widget.ID == "" || widget.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps set, got %+v", widget)
	}
}

func TestWidgetUpdateKeepsIdentity(t *testing.T) {
	created := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	repo := &fakeWidgetRepo{widgets: map[string]domain.Widget{
		"widget-1": {ID: "widget-1", Name: "Old Name", CreatedAt: created},
	}}
	svc := newTestWidgetService(t, repo)

	widget, err := svc.Update(context.Background(), UpsertWidgetCommand{WidgetID: "widget-1", Name: "New Name"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if widget.ID != "widget-1" || !widget.CreatedAt.Equal(created) {
		t.Fatalf("update must keep identity and creation time, got %+v", widget)
	}
	if widget.Name != "New Name" {
		t.Fatalf("expected renamed widget, got %q", widget.Name)
	}
}
