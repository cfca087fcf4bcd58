package services

import "errors"

var (
	// ErrPromotionRepositoryMissing indicates the promo repository dependency is absent.
	ErrPromotionRepositoryMissing = errors.New("promotion service: repository is not configured")
	// ErrPromotionInvalidInput signals a malformed promo code payload.
	ErrPromotionInvalidInput = errors.New("promotion service: invalid input")
	// ErrPromotionLookupFailed indicates the promo store could not be queried. Callers
	// surface this as a server error, distinct from a code that does not exist.
	ErrPromotionLookupFailed = errors.New("promotion service: lookup failed")
)
