package repositories

import (
	"context"

	domain "github.com/movewidget/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for wiring.
type Registry interface {
	Close(ctx context.Context) error

	Widgets() WidgetRepository
	Contacts() ContactRepository
	Bookings() BookingRepository
	Promos() PromoRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with the
// categorisation services branch on.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// WidgetRepository persists operator widget configurations.
type WidgetRepository interface {
	Insert(ctx context.Context, widget domain.Widget) error
	Update(ctx context.Context, widget domain.Widget) error
	FindByID(ctx context.Context, widgetID string) (domain.Widget, error)
	List(ctx context.Context, limit int) ([]domain.Widget, error)
}

// ContactRepository persists captured leads, unique per widget by email.
type ContactRepository interface {
	Insert(ctx context.Context, contact domain.Contact) error
	Update(ctx context.Context, contact domain.Contact) error
	FindByEmail(ctx context.Context, widgetID, email string) (domain.Contact, error)
	ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Contact, error)
}

// BookingRepository persists completed submissions.
type BookingRepository interface {
	Insert(ctx context.Context, booking domain.Booking) error
	FindByID(ctx context.Context, bookingID string) (domain.Booking, error)
	ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Booking, error)
}

// PromoRepository reads and writes promo codes. Lookup is case-insensitive;
// implementations normalise codes before matching.
type PromoRepository interface {
	FindByCode(ctx context.Context, code string) (domain.PromoCode, error)
	Upsert(ctx context.Context, promo domain.PromoCode) error
	List(ctx context.Context, limit int) ([]domain.PromoCode, error)
}

// HealthRepository verifies that the persistence layer is reachable.
type HealthRepository interface {
	CheckReadiness(ctx context.Context) error
}
