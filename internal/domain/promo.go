package domain

import "time"

// DiscountType distinguishes percent-off from fixed-amount promo codes.
type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

// Reasons a promo code fails validation, in the order they are checked.
const (
	PromoReasonMissingCode = "missing_code"
	PromoReasonNotFound    = "not_found"
	PromoReasonInactive    = "inactive"
	PromoReasonNotStarted  = "not_started"
	PromoReasonExpired     = "expired"
	PromoReasonMaxedOut    = "maxed_out"
	PromoReasonServerError = "server_error"
)

// PromoCode is an operator-issued discount. Codes are unique and matched
// case-insensitively.
type PromoCode struct {
	ID            string       `firestore:"-" json:"id"`
	Code          string       `firestore:"code" json:"code"`
	DiscountType  DiscountType `firestore:"discountType" json:"discountType"`
	DiscountValue float64      `firestore:"discountValue" json:"discountValue"`
	IsActive      bool         `firestore:"isActive" json:"isActive"`
	StartsAt      time.Time    `firestore:"startsAt,omitempty" json:"startsAt,omitempty"`
	EndsAt        time.Time    `firestore:"endsAt,omitempty" json:"endsAt,omitempty"`
	MaxUses       *int         `firestore:"maxUses,omitempty" json:"maxUses,omitempty"`
	UsesCount     int          `firestore:"usesCount" json:"usesCount"`
	CreatedAt     time.Time    `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time    `firestore:"updatedAt" json:"updatedAt"`
}

// PromoValidation is the outcome of validating one code. Reason is set only
// when Valid is false.
type PromoValidation struct {
	Valid  bool       `json:"valid"`
	Reason string     `json:"reason,omitempty"`
	Promo  *PromoCode `json:"promo,omitempty"`
}
