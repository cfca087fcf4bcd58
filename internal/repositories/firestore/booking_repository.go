package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/movewidget/api/internal/domain"
	pfirestore "github.com/movewidget/api/internal/platform/firestore"
	"github.com/movewidget/api/internal/repositories"
)

const bookingsCollection = "bookings"

// BookingRepository persists completed wizard submissions.
type BookingRepository struct {
	base *pfirestore.BaseRepository[domain.Booking]
}

// NewBookingRepository constructs a Firestore-backed booking repository.
func NewBookingRepository(provider *pfirestore.Provider) (*BookingRepository, error) {
	if provider == nil {
		return nil, errors.New("booking repository: firestore provider is required")
	}

	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Booking, error) {
		var booking domain.Booking
		if err := snap.DataTo(&booking); err != nil {
			return domain.Booking{}, err
		}
		booking.ID = snap.Ref.ID
		if booking.CreatedAt.IsZero() {
			booking.CreatedAt = snap.CreateTime
		}
		return booking, nil
	}

	base := pfirestore.NewBaseRepository[domain.Booking](provider, bookingsCollection, nil, decoder)
	return &BookingRepository{base: base}, nil
}

// Insert stores a new booking document. Bookings are immutable once written.
func (r *BookingRepository) Insert(ctx context.Context, booking domain.Booking) error {
	if r == nil || r.base == nil {
		return errors.New("booking repository not initialised")
	}
	booking.ID = strings.TrimSpace(booking.ID)
	if booking.ID == "" {
		return errors.New("booking repository: id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, booking.ID)
	if err != nil {
		return err
	}
	if _, err := docRef.Create(ctx, booking); err != nil {
		return pfirestore.WrapError("bookings.insert", err)
	}
	return nil
}

// FindByID loads a booking by its identifier.
func (r *BookingRepository) FindByID(ctx context.Context, bookingID string) (domain.Booking, error) {
	if r == nil || r.base == nil {
		return domain.Booking{}, errors.New("booking repository not initialised")
	}
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return domain.Booking{}, errors.New("booking repository: id is required")
	}

	doc, err := r.base.Get(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	return doc.Data, nil
}

// ListByWidget returns a widget's bookings, newest first.
func (r *BookingRepository) ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Booking, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("booking repository not initialised")
	}
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return nil, errors.New("booking repository: widget id is required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		query = query.
			Where("widgetId", "==", widgetID).
			OrderBy("createdAt", firestore.Desc)
		if limit > 0 {
			query = query.Limit(limit)
		}
		return query
	})
	if err != nil {
		return nil, err
	}

	bookings := make([]domain.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, doc.Data)
	}
	return bookings, nil
}

// Ensure interface compliance.
var _ repositories.BookingRepository = (*BookingRepository)(nil)
