package domain

import "time"

// Branding carries the widget's presentation settings. The API stores and
// returns it untouched; rendering happens in the embed script.
type Branding struct {
	CompanyName    string `firestore:"companyName,omitempty" json:"companyName,omitempty"`
	PrimaryColor   string `firestore:"primaryColor,omitempty" json:"primaryColor,omitempty"`
	SecondaryColor string `firestore:"secondaryColor,omitempty" json:"secondaryColor,omitempty"`
	LogoURL        string `firestore:"logoUrl,omitempty" json:"logoUrl,omitempty"`
}

// CustomField is an operator-defined extra question shown on the review
// screen. Answers pass through to the booking record as opaque values.
type CustomField struct {
	Key      string   `firestore:"key" json:"key"`
	Label    string   `firestore:"label" json:"label"`
	Type     string   `firestore:"type" json:"type"`
	Required bool     `firestore:"required" json:"required"`
	Options  []string `firestore:"options,omitempty" json:"options,omitempty"`
}

// Widget is one operator-configured booking widget.
type Widget struct {
	ID           string           `firestore:"-" json:"id"`
	Name         string           `firestore:"name" json:"name"`
	Branding     Branding         `firestore:"branding" json:"branding"`
	CustomFields []CustomField    `firestore:"customFields,omitempty" json:"customFields,omitempty"`
	Pricing      *RateConfigPatch `firestore:"pricing,omitempty" json:"pricing,omitempty"`
	CreatedAt    time.Time        `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time        `firestore:"updatedAt" json:"updatedAt"`
}

// ResolvedPricing returns the widget's effective rate table.
func (w Widget) ResolvedPricing() RateConfig {
	return ResolveRateConfig(w.Pricing)
}
