package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/repositories"
)

// PromotionServiceDeps bundles dependencies required to construct a PromotionService.
type PromotionServiceDeps struct {
	Promos repositories.PromoRepository
	Clock  func() time.Time
	Logger func(context.Context, string, map[string]any)
}

type promotionService struct {
	repo   repositories.PromoRepository
	clock  func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewPromotionService wires a PromotionService backed by the provided repository.
func NewPromotionService(deps PromotionServiceDeps) (PromotionService, error) {
	if deps.Promos == nil {
		return nil, ErrPromotionRepositoryMissing
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &promotionService{
		repo:   deps.Promos,
		clock:  func() time.Time { return clock().UTC() },
		logger: logger,
	}, nil
}

// Validate decides whether a code is applicable right now. The reason
// precedence is fixed: a missing code short-circuits without a lookup, an
// unknown code reports not_found, then inactive, not_started, expired and
// maxed_out are checked in that order.
func (s *promotionService) Validate(ctx context.Context, code string) (domain.PromoValidation, error) {
	normalized := NormalizePromoCode(code)
	if normalized == "" {
		return domain.PromoValidation{Reason: domain.PromoReasonMissingCode}, nil
	}

	promo, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if repoErr, ok := err.(repositories.RepositoryError); ok && repoErr.IsNotFound() {
			return domain.PromoValidation{Reason: domain.PromoReasonNotFound}, nil
		}
		s.logger(ctx, "promo_lookup_failed", map[string]any{"code": normalized, "error": err.Error()})
		return domain.PromoValidation{}, fmt.Errorf("%w: %v", ErrPromotionLookupFailed, err)
	}

	now := s.clock()
	switch {
	case !promo.IsActive:
		return domain.PromoValidation{Reason: domain.PromoReasonInactive}, nil
	case !promo.StartsAt.IsZero() && now.Before(promo.StartsAt):
		return domain.PromoValidation{Reason: domain.PromoReasonNotStarted}, nil
	case !promo.EndsAt.IsZero() && now.After(promo.EndsAt):
		return domain.PromoValidation{Reason: domain.PromoReasonExpired}, nil
	case promo.MaxUses != nil && promo.UsesCount >= *promo.MaxUses:
		return domain.PromoValidation{Reason: domain.PromoReasonMaxedOut}, nil
	}

	return domain.PromoValidation{Valid: true, Promo: &promo}, nil
}

// Save upserts a batch of operator-supplied codes. Percent discounts must be
// within [1,100], fixed discounts at least 1; discount values are floored to
// whole units the way the dashboard enters them.
func (s *promotionService) Save(ctx context.Context, promos []domain.PromoCode) (int, error) {
	if len(promos) == 0 {
		return 0, fmt.Errorf("%w: no promo codes provided", ErrPromotionInvalidInput)
	}

	now := s.clock()
	saved := 0
	for _, promo := range promos {
		promo.Code = NormalizePromoCode(promo.Code)
		if promo.Code == "" {
			continue
		}
		if promo.DiscountType != domain.DiscountTypeFixed {
			promo.DiscountType = domain.DiscountTypePercent
		}
		promo.DiscountValue = math.Floor(promo.DiscountValue)
		if promo.DiscountType == domain.DiscountTypePercent {
			if promo.DiscountValue < 1 || promo.DiscountValue > 100 {
				return 0, fmt.Errorf("%w: invalid percent discount for %s", ErrPromotionInvalidInput, promo.Code)
			}
		} else if promo.DiscountValue < 1 {
			return 0, fmt.Errorf("%w: invalid fixed discount for %s", ErrPromotionInvalidInput, promo.Code)
		}

		promo.IsActive = true
		promo.UpdatedAt = now
		if promo.CreatedAt.IsZero() {
			promo.CreatedAt = now
		}
		if err := s.repo.Upsert(ctx, promo); err != nil {
			return saved, fmt.Errorf("%w: %v", ErrPromotionLookupFailed, err)
		}
		saved++
	}
	if saved == 0 {
		return 0, fmt.Errorf("%w: no valid promo codes provided", ErrPromotionInvalidInput)
	}
	return saved, nil
}

// List returns codes for the operator dashboard, newest first.
func (s *promotionService) List(ctx context.Context, limit int) ([]domain.PromoCode, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	promos, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPromotionLookupFailed, err)
	}
	return promos, nil
}

// NormalizePromoCode applies the canonical trim+uppercase form used for both
// storage and lookup.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ApplyPromoDiscount applies a validated promo to one total. Percent values
// are clamped to [0,100], fixed discounts cannot push the total below zero.
func ApplyPromoDiscount(total float64, promo domain.PromoCode) float64 {
	switch promo.DiscountType {
	case domain.DiscountTypePercent:
		pct := promo.DiscountValue
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		discounted := total * (1 - pct/100)
		if discounted < 0 {
			return 0
		}
		return discounted
	case domain.DiscountTypeFixed:
		discounted := total - promo.DiscountValue
		if discounted < 0 {
			return 0
		}
		return discounted
	default:
		return total
	}
}
