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

const promoCodesCollection = "promoCodes"

// PromoRepository persists promo codes. The document ID is the normalised
// (uppercased) code, which makes lookup case-insensitive by construction.
type PromoRepository struct {
	base *pfirestore.BaseRepository[domain.PromoCode]
}

// NewPromoRepository constructs a Firestore-backed promo repository.
func NewPromoRepository(provider *pfirestore.Provider) (*PromoRepository, error) {
	if provider == nil {
		return nil, errors.New("promo repository: firestore provider is required")
	}

	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.PromoCode, error) {
		var promo domain.PromoCode
		if err := snap.DataTo(&promo); err != nil {
			return domain.PromoCode{}, err
		}
		promo.ID = snap.Ref.ID
		if promo.CreatedAt.IsZero() {
			promo.CreatedAt = snap.CreateTime
		}
		if promo.UpdatedAt.IsZero() {
			promo.UpdatedAt = snap.UpdateTime
		}
		return promo, nil
	}

	base := pfirestore.NewBaseRepository[domain.PromoCode](provider, promoCodesCollection, nil, decoder)
	return &PromoRepository{base: base}, nil
}

// FindByCode loads a promo by its code, matching case-insensitively.
func (r *PromoRepository) FindByCode(ctx context.Context, code string) (domain.PromoCode, error) {
	if r == nil || r.base == nil {
		return domain.PromoCode{}, errors.New("promo repository not initialised")
	}
	code = normalisePromoDocID(code)
	if code == "" {
		return domain.PromoCode{}, errors.New("promo repository: code is required")
	}

	doc, err := r.base.Get(ctx, code)
	if err != nil {
		return domain.PromoCode{}, err
	}
	return doc.Data, nil
}

// Upsert writes the promo under its normalised code.
func (r *PromoRepository) Upsert(ctx context.Context, promo domain.PromoCode) error {
	if r == nil || r.base == nil {
		return errors.New("promo repository not initialised")
	}
	docID := normalisePromoDocID(promo.Code)
	if docID == "" {
		return errors.New("promo repository: code is required")
	}
	if _, err := r.base.Set(ctx, docID, promo); err != nil {
		return err
	}
	return nil
}

// List returns promo codes ordered by code.
func (r *PromoRepository) List(ctx context.Context, limit int) ([]domain.PromoCode, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("promo repository not initialised")
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		query = query.OrderBy(firestore.DocumentID, firestore.Asc)
		if limit > 0 {
			query = query.Limit(limit)
		}
		return query
	})
	if err != nil {
		return nil, err
	}

	promos := make([]domain.PromoCode, 0, len(docs))
	for _, doc := range docs {
		promos = append(promos, doc.Data)
	}
	return promos, nil
}

func normalisePromoDocID(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Ensure interface compliance.
var _ repositories.PromoRepository = (*PromoRepository)(nil)
