package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/movewidget/api/internal/domain"
	pfirestore "github.com/movewidget/api/internal/platform/firestore"
	"github.com/movewidget/api/internal/repositories"
)

const contactsCollection = "contacts"

// ContactRepository persists captured leads. A contact is unique per widget
// by lowercased email; the service layer normalises before calling in.
type ContactRepository struct {
	base *pfirestore.BaseRepository[domain.Contact]
}

// NewContactRepository constructs a Firestore-backed contact repository.
func NewContactRepository(provider *pfirestore.Provider) (*ContactRepository, error) {
	if provider == nil {
		return nil, errors.New("contact repository: firestore provider is required")
	}

	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Contact, error) {
		var contact domain.Contact
		if err := snap.DataTo(&contact); err != nil {
			return domain.Contact{}, err
		}
		contact.ID = snap.Ref.ID
		if contact.CreatedAt.IsZero() {
			contact.CreatedAt = snap.CreateTime
		}
		if contact.UpdatedAt.IsZero() {
			contact.UpdatedAt = snap.UpdateTime
		}
		return contact, nil
	}

	base := pfirestore.NewBaseRepository[domain.Contact](provider, contactsCollection, nil, decoder)
	return &ContactRepository{base: base}, nil
}

// Insert stores a new contact document.
func (r *ContactRepository) Insert(ctx context.Context, contact domain.Contact) error {
	if r == nil || r.base == nil {
		return errors.New("contact repository not initialised")
	}
	contact.ID = strings.TrimSpace(contact.ID)
	if contact.ID == "" {
		return errors.New("contact repository: id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, contact.ID)
	if err != nil {
		return err
	}
	if _, err := docRef.Create(ctx, contact); err != nil {
		return pfirestore.WrapError("contacts.insert", err)
	}
	return nil
}

// Update replaces the contact document state.
func (r *ContactRepository) Update(ctx context.Context, contact domain.Contact) error {
	if r == nil || r.base == nil {
		return errors.New("contact repository not initialised")
	}
	contact.ID = strings.TrimSpace(contact.ID)
	if contact.ID == "" {
		return errors.New("contact repository: id is required")
	}
	if _, err := r.base.Set(ctx, contact.ID, contact); err != nil {
		return err
	}
	return nil
}

// FindByEmail looks up the contact for a widget by its email address.
func (r *ContactRepository) FindByEmail(ctx context.Context, widgetID, email string) (domain.Contact, error) {
	if r == nil || r.base == nil {
		return domain.Contact{}, errors.New("contact repository not initialised")
	}
	widgetID = strings.TrimSpace(widgetID)
	email = strings.ToLower(strings.TrimSpace(email))
	if widgetID == "" || email == "" {
		return domain.Contact{}, errors.New("contact repository: widget id and email are required")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.
			Where("widgetId", "==", widgetID).
			Where("email", "==", email).
			Limit(1)
	})
	if err != nil {
		return domain.Contact{}, err
	}
	if len(docs) == 0 {
		return domain.Contact{}, pfirestore.WrapError("contacts.find_by_email", status.Error(codes.NotFound, "contact not found"))
	}
	return docs[0].Data, nil
}

// ListByWidget returns a widget's contacts, newest first.
func (r *ContactRepository) ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Contact, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("contact repository not initialised")
	}
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return nil, errors.New("contact repository: widget id is required")
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

	contacts := make([]domain.Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, doc.Data)
	}
	return contacts, nil
}

// Ensure interface compliance.
var _ repositories.ContactRepository = (*ContactRepository)(nil)
