package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/repositories"
)

var (
	// ErrWidgetInvalidInput signals malformed operator input.
	ErrWidgetInvalidInput = errors.New("widget service: invalid input")
	// ErrWidgetNotFound indicates no widget exists for the given identifier.
	ErrWidgetNotFound = errors.New("widget service: widget not found")
	// ErrWidgetUnavailable indicates the widget store cannot be reached.
	ErrWidgetUnavailable = errors.New("widget service: store unavailable")
)

// WidgetServiceDeps bundles dependencies required to construct a WidgetService.
type WidgetServiceDeps struct {
	Widgets repositories.WidgetRepository
	Clock   func() time.Time
	IDGen   func() string
	Logger  func(context.Context, string, map[string]any)
}

type widgetService struct {
	repo   repositories.WidgetRepository
	clock  func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewWidgetService wires a WidgetService backed by the provided repository.
func NewWidgetService(deps WidgetServiceDeps) (WidgetService, error) {
	if deps.Widgets == nil {
		return nil, errors.New("widget service: repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGen
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &widgetService{
		repo:   deps.Widgets,
		clock:  func() time.Time { return clock().UTC() },
		newID:  newID,
		logger: logger,
	}, nil
}

// Get loads a widget and resolves its rate table against platform defaults.
// This is the single place the default fallback happens; everything
// downstream reads the resolved table.
func (s *widgetService) Get(ctx context.Context, widgetID string) (WidgetConfig, error) {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return WidgetConfig{}, fmt.Errorf("%w: widget id is required", ErrWidgetInvalidInput)
	}

	widget, err := s.repo.FindByID(ctx, widgetID)
	if err != nil {
		return WidgetConfig{}, s.classify(err)
	}

	return WidgetConfig{Widget: widget, Pricing: widget.ResolvedPricing()}, nil
}

func (s *widgetService) Create(ctx context.Context, cmd UpsertWidgetCommand) (domain.Widget, error) {
	widget, err := s.buildWidget(cmd)
	if err != nil {
		return domain.Widget{}, err
	}

	now := s.clock()
	widget.ID = s.newID()
	widget.CreatedAt = now
	widget.UpdatedAt = now

	if err := s.repo.Insert(ctx, widget); err != nil {
		return domain.Widget{}, s.classify(err)
	}
	s.logger(ctx, "widget_created", map[string]any{"widgetId": widget.ID})
	return widget, nil
}

func (s *widgetService) Update(ctx context.Context, cmd UpsertWidgetCommand) (domain.Widget, error) {
	widgetID := strings.TrimSpace(cmd.WidgetID)
	if widgetID == "" {
		return domain.Widget{}, fmt.Errorf("%w: widget id is required", ErrWidgetInvalidInput)
	}

	existing, err := s.repo.FindByID(ctx, widgetID)
	if err != nil {
		return domain.Widget{}, s.classify(err)
	}

	widget, err := s.buildWidget(cmd)
	if err != nil {
		return domain.Widget{}, err
	}
	widget.ID = existing.ID
	widget.CreatedAt = existing.CreatedAt
	widget.UpdatedAt = s.clock()

	if err := s.repo.Update(ctx, widget); err != nil {
		return domain.Widget{}, s.classify(err)
	}
	return widget, nil
}

func (s *widgetService) List(ctx context.Context, limit int) ([]domain.Widget, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	widgets, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, s.classify(err)
	}
	return widgets, nil
}

// buildWidget validates operator input, including the pricing patch: the
// patch must produce a structurally valid resolved table before it is saved.
func (s *widgetService) buildWidget(cmd UpsertWidgetCommand) (domain.Widget, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.Widget{}, fmt.Errorf("%w: name is required", ErrWidgetInvalidInput)
	}

	for _, field := range cmd.CustomFields {
		if strings.TrimSpace(field.Key) == "" || strings.TrimSpace(field.Label) == "" {
			return domain.Widget{}, fmt.Errorf("%w: custom fields require key and label", ErrWidgetInvalidInput)
		}
	}

	if cmd.Pricing != nil {
		resolved := domain.ResolveRateConfig(cmd.Pricing)
		if err := resolved.Validate(); err != nil {
			return domain.Widget{}, fmt.Errorf("%w: %v", ErrWidgetInvalidInput, err)
		}
	}

	return domain.Widget{
		Name:         name,
		Branding:     cmd.Branding,
		CustomFields: cmd.CustomFields,
		Pricing:      cmd.Pricing,
	}, nil
}

func (s *widgetService) classify(err error) error {
	if repoErr, ok := err.(repositories.RepositoryError); ok {
		switch {
		case repoErr.IsNotFound():
			return ErrWidgetNotFound
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrWidgetUnavailable, err)
		}
	}
	return err
}
