package firestore

import (
	"context"
	"errors"
	"fmt"

	pfirestore "github.com/movewidget/api/internal/platform/firestore"
	"github.com/movewidget/api/internal/repositories"
)

// Registry wires the Firestore-backed repository set over a shared provider.
type Registry struct {
	provider *pfirestore.Provider

	widgets  *WidgetRepository
	contacts *ContactRepository
	bookings *BookingRepository
	promos   *PromoRepository
	health   repositories.HealthRepository
}

// NewRegistry constructs every repository against the given provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry: firestore provider is required")
	}

	widgets, err := NewWidgetRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: widget repository: %w", err)
	}
	contacts, err := NewContactRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: contact repository: %w", err)
	}
	bookings, err := NewBookingRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: booking repository: %w", err)
	}
	promos, err := NewPromoRepository(provider)
	if err != nil {
		return nil, fmt.Errorf("registry: promo repository: %w", err)
	}

	health, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{
			Name: "firestore",
			Check: func(ctx context.Context) error {
				_, err := provider.Client(ctx)
				return err
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("registry: health repository: %w", err)
	}

	return &Registry{
		provider: provider,
		widgets:  widgets,
		contacts: contacts,
		bookings: bookings,
		promos:   promos,
		health:   health,
	}, nil
}

// Close releases the shared Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

func (r *Registry) Widgets() repositories.WidgetRepository   { return r.widgets }
func (r *Registry) Contacts() repositories.ContactRepository { return r.contacts }
func (r *Registry) Bookings() repositories.BookingRepository { return r.bookings }
func (r *Registry) Promos() repositories.PromoRepository     { return r.promos }
func (r *Registry) Health() repositories.HealthRepository    { return r.health }

// Ensure interface compliance.
var _ repositories.Registry = (*Registry)(nil)
