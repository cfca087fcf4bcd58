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

const widgetsCollection = "widgets"

// WidgetRepository persists operator widget configurations.
type WidgetRepository struct {
	base *pfirestore.BaseRepository[domain.Widget]
}

// NewWidgetRepository constructs a Firestore-backed widget repository.
func NewWidgetRepository(provider *pfirestore.Provider) (*WidgetRepository, error) {
	if provider == nil {
		return nil, errors.New("widget repository: firestore provider is required")
	}

	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Widget, error) {
		var widget domain.Widget
		if err := snap.DataTo(&widget); err != nil {
			return domain.Widget{}, err
		}
		widget.ID = snap.Ref.ID
		if widget.CreatedAt.IsZero() {
			widget.CreatedAt = snap.CreateTime
		}
		if widget.UpdatedAt.IsZero() {
			widget.UpdatedAt = snap.UpdateTime
		}
		return widget, nil
	}

	base := pfirestore.NewBaseRepository[domain.Widget](provider, widgetsCollection, nil, decoder)
	return &WidgetRepository{base: base}, nil
}

// Insert stores a new widget document.
func (r *WidgetRepository) Insert(ctx context.Context, widget domain.Widget) error {
	if r == nil || r.base == nil {
		return errors.New("widget repository not initialised")
	}
	widget.ID = strings.TrimSpace(widget.ID)
	if widget.ID == "" {
		return errors.New("widget repository: id is required")
	}

	docRef, err := r.base.DocumentRef(ctx, widget.ID)
	if err != nil {
		return err
	}
	if _, err := docRef.Create(ctx, widget); err != nil {
		return pfirestore.WrapError("widgets.insert", err)
	}
	return nil
}

// Update replaces the widget document state.
func (r *WidgetRepository) Update(ctx context.Context, widget domain.Widget) error {
	if r == nil || r.base == nil {
		return errors.New("widget repository not initialised")
	}
	widget.ID = strings.TrimSpace(widget.ID)
	if widget.ID == "" {
		return errors.New("widget repository: id is required")
	}
	if _, err := r.base.Set(ctx, widget.ID, widget); err != nil {
		return err
	}
	return nil
}

// FindByID loads a widget by its identifier.
func (r *WidgetRepository) FindByID(ctx context.Context, widgetID string) (domain.Widget, error) {
	if r == nil || r.base == nil {
		return domain.Widget{}, errors.New("widget repository not initialised")
	}
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return domain.Widget{}, errors.New("widget repository: id is required")
	}

	doc, err := r.base.Get(ctx, widgetID)
	if err != nil {
		return domain.Widget{}, err
	}
	return doc.Data, nil
}

// List returns widgets ordered by most recent creation.
func (r *WidgetRepository) List(ctx context.Context, limit int) ([]domain.Widget, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("widget repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		query = query.OrderBy("createdAt", firestore.Desc)
		if limit > 0 {
			query = query.Limit(limit)
		}
		return query
	})
	if err != nil {
		return nil, err
	}

	widgets := make([]domain.Widget, 0, len(docs))
	for _, doc := range docs {
		widgets = append(widgets, doc.Data)
	}
	return widgets, nil
}

// Ensure interface compliance.
var _ repositories.WidgetRepository = (*WidgetRepository)(nil)
