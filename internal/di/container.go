package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movewidget/api/internal/platform/config"
	"github.com/movewidget/api/internal/repositories"
	"github.com/movewidget/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete implementations
// are assembled via dependency injection in NewContainer.
type Services struct {
	Widgets    services.WidgetService
	Contacts   services.ContactService
	Bookings   services.BookingService
	Promotions services.PromotionService
	System     services.SystemService
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// Option customises container construction.
type Option func(*containerConfig)

type containerConfig struct {
	notifiers []services.BookingNotifier
	logger    func(context.Context, string, map[string]any)
	clock     func() time.Time
}

// WithBookingNotifiers attaches the best-effort notification channels fired
// after a booking persists.
func WithBookingNotifiers(notifiers ...services.BookingNotifier) Option {
	return func(cfg *containerConfig) {
		cfg.notifiers = append(cfg.notifiers, notifiers...)
	}
}

// WithLogger injects the structured event logger passed to every service.
func WithLogger(logger func(context.Context, string, map[string]any)) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithClock overrides the time source, primarily for testing.
func WithClock(clock func() time.Time) Option {
	return func(cfg *containerConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// NewContainer constructs the runtime dependencies. Production wiring provides the
// Firestore-backed registry, while tests can supply in-memory fakes.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...Option) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}

	cc := containerConfig{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&cc)
		}
	}

	svc, err := buildServices(reg, cc)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(reg repositories.Registry, cc containerConfig) (Services, error) {
	var svc Services

	widgetSvc, err := services.NewWidgetService(services.WidgetServiceDeps{
		Widgets: reg.Widgets(),
		Clock:   cc.clock,
		Logger:  cc.logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build widget service: %w", err)
	}
	svc.Widgets = widgetSvc

	contactSvc, err := services.NewContactService(services.ContactServiceDeps{
		Contacts: reg.Contacts(),
		Clock:    cc.clock,
		Logger:   cc.logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build contact service: %w", err)
	}
	svc.Contacts = contactSvc

	promotionSvc, err := services.NewPromotionService(services.PromotionServiceDeps{
		Promos: reg.Promos(),
		Clock:  cc.clock,
		Logger: cc.logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build promotion service: %w", err)
	}
	svc.Promotions = promotionSvc

	bookingSvc, err := services.NewBookingService(services.BookingServiceDeps{
		Bookings:   reg.Bookings(),
		Widgets:    reg.Widgets(),
		Contacts:   contactSvc,
		Promotions: promotionSvc,
		Notifiers:  cc.notifiers,
		Clock:      cc.clock,
		Logger:     cc.logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build booking service: %w", err)
	}
	svc.Bookings = bookingSvc

	systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
		Health: reg.Health(),
		Clock:  cc.clock,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build system service: %w", err)
	}
	svc.System = systemSvc

	return svc, nil
}
