package services

import (
	"context"
	"time"

	domain "github.com/movewidget/api/internal/domain"
)

// WidgetService manages operator widget configurations and resolves their
// effective rate tables.
type WidgetService interface {
	Get(ctx context.Context, widgetID string) (WidgetConfig, error)
	Create(ctx context.Context, cmd UpsertWidgetCommand) (domain.Widget, error)
	Update(ctx context.Context, cmd UpsertWidgetCommand) (domain.Widget, error)
	List(ctx context.Context, limit int) ([]domain.Widget, error)
}

// WidgetConfig is a widget plus the rate table the wizard prices against,
// resolved against platform defaults exactly once at load.
type WidgetConfig struct {
	Widget  domain.Widget     `json:"widget"`
	Pricing domain.RateConfig `json:"pricing"`
}

// UpsertWidgetCommand carries operator input for widget create and update.
type UpsertWidgetCommand struct {
	WidgetID     string
	Name         string
	Branding     domain.Branding
	CustomFields []domain.CustomField
	Pricing      *domain.RateConfigPatch
}

// ContactService captures leads as soon as the contact screen completes.
type ContactService interface {
	Capture(ctx context.Context, cmd CaptureContactCommand) (domain.Contact, error)
	ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Contact, error)
}

// CaptureContactCommand identifies a lead within a widget by email.
type CaptureContactCommand struct {
	WidgetID  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// BookingService persists submissions and triggers best-effort notification.
type BookingService interface {
	Submit(ctx context.Context, cmd SubmitBookingCommand) (domain.Booking, error)
	Get(ctx context.Context, bookingID string) (domain.Booking, error)
	ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Booking, error)
}

// SubmitBookingCommand is the full wizard output for one confirm click.
type SubmitBookingCommand struct {
	WidgetID     string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	MoveDate     time.Time
	MoveTime     string
	Selection    domain.Selection
	PromoCode    string
	CustomFields map[string]string
}

// PromotionService validates and manages promo codes.
type PromotionService interface {
	Validate(ctx context.Context, code string) (domain.PromoValidation, error)
	Save(ctx context.Context, promos []domain.PromoCode) (int, error)
	List(ctx context.Context, limit int) ([]domain.PromoCode, error)
}

// BookingNotification is the payload handed to the notification channel after
// a booking persists. Summary is the human-readable block; Booking carries
// the raw data.
type BookingNotification struct {
	Summary BookingSummary `json:"summary"`
	Booking domain.Booking `json:"booking"`
}

// BookingSummary mirrors the confirmation email's header block.
type BookingSummary struct {
	ContactName        string `json:"contactName"`
	ContactSummaryLine string `json:"contactSummaryLine"`
	RouteSummary       string `json:"routeSummary"`
	MoveDateSummary    string `json:"moveDateSummary"`
	Team               string `json:"team"`
	EstimateLabel      string `json:"estimateLabel"`
}

// BookingNotifier delivers a confirmation payload. Implementations must be
// safe to fail: the booking flow never propagates notifier errors.
type BookingNotifier interface {
	NotifyBookingSubmitted(ctx context.Context, notification BookingNotification) error
}

// SystemService reports process health and readiness.
type SystemService interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}
