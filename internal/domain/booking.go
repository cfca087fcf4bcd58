package domain

import "time"

// ContactSourceBookingForm tags contacts captured mid-wizard, before the
// booking itself is submitted.
const ContactSourceBookingForm = "booking_form"

// Contact is a captured lead, unique per widget by email.
type Contact struct {
	ID        string    `firestore:"-" json:"id"`
	WidgetID  string    `firestore:"widgetId" json:"widgetId"`
	FirstName string    `firestore:"firstName" json:"firstName"`
	LastName  string    `firestore:"lastName" json:"lastName"`
	Email     string    `firestore:"email" json:"email"`
	Phone     string    `firestore:"phone" json:"phone"`
	Source    string    `firestore:"source" json:"source"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Booking is a completed wizard submission with its estimate snapshot.
type Booking struct {
	ID           string            `firestore:"-" json:"id"`
	WidgetID     string            `firestore:"widgetId" json:"widgetId"`
	ContactID    string            `firestore:"contactId" json:"contactId"`
	FirstName    string            `firestore:"firstName" json:"firstName"`
	LastName     string            `firestore:"lastName" json:"lastName"`
	Email        string            `firestore:"email" json:"email"`
	Phone        string            `firestore:"phone" json:"phone"`
	MoveDate     time.Time         `firestore:"moveDate" json:"moveDate"`
	MoveTime     string            `firestore:"moveTime" json:"moveTime"`
	Selection    Selection         `firestore:"selection" json:"selection"`
	Estimate     EstimateResult    `firestore:"estimate" json:"estimate"`
	PromoCode    string            `firestore:"promoCode,omitempty" json:"promoCode,omitempty"`
	CustomFields map[string]string `firestore:"customFields,omitempty" json:"customFields,omitempty"`
	CreatedAt    time.Time         `firestore:"createdAt" json:"createdAt"`
}

// ContactName joins the customer's name parts for display.
func (b Booking) ContactName() string {
	if b.FirstName == "" {
		return b.LastName
	}
	if b.LastName == "" {
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}
