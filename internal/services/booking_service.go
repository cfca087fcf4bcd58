package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/repositories"
)

var (
	// ErrBookingInvalidInput signals a malformed submission payload.
	ErrBookingInvalidInput = errors.New("booking service: invalid input")
	// ErrBookingNotFound indicates no booking exists for the given identifier.
	ErrBookingNotFound = errors.New("booking service: booking not found")
	// ErrBookingUnavailable indicates the booking store cannot be reached.
	ErrBookingUnavailable = errors.New("booking service: store unavailable")
)

// BookingServiceDeps bundles dependencies required to construct a BookingService.
type BookingServiceDeps struct {
	Bookings   repositories.BookingRepository
	Widgets    repositories.WidgetRepository
	Contacts   ContactService
	Promotions PromotionService
	Notifiers  []BookingNotifier
	Clock      func() time.Time
	IDGen      func() string
	Logger     func(context.Context, string, map[string]any)
}

type bookingService struct {
	bookings   repositories.BookingRepository
	widgets    repositories.WidgetRepository
	contacts   ContactService
	promotions PromotionService
	notifiers  []BookingNotifier
	clock      func() time.Time
	newID      func() string
	logger     func(context.Context, string, map[string]any)
}

// NewBookingService wires a BookingService backed by the provided collaborators.
func NewBookingService(deps BookingServiceDeps) (BookingService, error) {
	if deps.Bookings == nil {
		return nil, errors.New("booking service: booking repository is required")
	}
	if deps.Widgets == nil {
		return nil, errors.New("booking service: widget repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGen
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &bookingService{
		bookings:   deps.Bookings,
		widgets:    deps.Widgets,
		contacts:   deps.Contacts,
		promotions: deps.Promotions,
		notifiers:  deps.Notifiers,
		clock:      func() time.Time { return clock().UTC() },
		newID:      newID,
		logger:     logger,
	}, nil
}

// Submit persists one confirm click. The estimate is recomputed server-side
// against the widget's resolved rate table so the stored snapshot cannot be
// tampered with by the embedding page. Contact capture and notification are
// both best-effort: their failures are logged and never block the customer.
func (s *bookingService) Submit(ctx context.Context, cmd SubmitBookingCommand) (domain.Booking, error) {
	if err := validateSubmission(cmd); err != nil {
		return domain.Booking{}, err
	}

	widget, err := s.widgets.FindByID(ctx, strings.TrimSpace(cmd.WidgetID))
	if err != nil {
		if repoErr, ok := err.(repositories.RepositoryError); ok {
			switch {
			case repoErr.IsNotFound():
				return domain.Booking{}, fmt.Errorf("%w: unknown widget", ErrBookingInvalidInput)
			case repoErr.IsUnavailable():
				return domain.Booking{}, fmt.Errorf("%w: %v", ErrBookingUnavailable, err)
			}
		}
		return domain.Booking{}, err
	}

	promo := s.resolvePromo(ctx, cmd.PromoCode)
	promoCode := ""
	if promo != nil {
		promoCode = promo.Code
	}

	selection := cmd.Selection.Clone()
	estimate := ComputeEstimate(widget.ResolvedPricing(), selection, selection.Distance, promo)

	contactID := ""
	if s.contacts != nil {
		contact, captureErr := s.contacts.Capture(ctx, CaptureContactCommand{
			WidgetID:  widget.ID,
			FirstName: cmd.FirstName,
			LastName:  cmd.LastName,
			Email:     cmd.Email,
			Phone:     cmd.Phone,
		})
		if captureErr != nil {
			s.logger(ctx, "booking_contact_capture_failed", map[string]any{"widgetId": widget.ID, "error": captureErr.Error()})
		} else {
			contactID = contact.ID
		}
	}

	booking := domain.Booking{
		ID:           s.newID(),
		WidgetID:     widget.ID,
		ContactID:    contactID,
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		Phone:        strings.TrimSpace(cmd.Phone),
		MoveDate:     cmd.MoveDate.UTC(),
		MoveTime:     strings.TrimSpace(cmd.MoveTime),
		Selection:    selection,
		Estimate:     estimate,
		PromoCode:    promoCode,
		CustomFields: cmd.CustomFields,
		CreatedAt:    s.clock(),
	}

	if err := s.bookings.Insert(ctx, booking); err != nil {
		if repoErr, ok := err.(repositories.RepositoryError); ok && repoErr.IsUnavailable() {
			return domain.Booking{}, fmt.Errorf("%w: %v", ErrBookingUnavailable, err)
		}
		return domain.Booking{}, err
	}
	s.logger(ctx, "booking_created", map[string]any{"widgetId": widget.ID, "bookingId": booking.ID})

	s.notify(ctx, booking)
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, bookingID string) (domain.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return domain.Booking{}, fmt.Errorf("%w: booking id is required", ErrBookingInvalidInput)
	}
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if repoErr, ok := err.(repositories.RepositoryError); ok {
			switch {
			case repoErr.IsNotFound():
				return domain.Booking{}, ErrBookingNotFound
			case repoErr.IsUnavailable():
				return domain.Booking{}, fmt.Errorf("%w: %v", ErrBookingUnavailable, err)
			}
		}
		return domain.Booking{}, err
	}
	return booking, nil
}

func (s *bookingService) ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Booking, error) {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return nil, fmt.Errorf("%w: widget id is required", ErrBookingInvalidInput)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	bookings, err := s.bookings.ListByWidget(ctx, widgetID, limit)
	if err != nil {
		if repoErr, ok := err.(repositories.RepositoryError); ok && repoErr.IsUnavailable() {
			return nil, fmt.Errorf("%w: %v", ErrBookingUnavailable, err)
		}
		return nil, err
	}
	return bookings, nil
}

// resolvePromo revalidates the submitted code. A code that fails validation
// for any reason is dropped from the booking rather than rejecting it; the
// customer already saw the inline outcome on the promo screen.
func (s *bookingService) resolvePromo(ctx context.Context, code string) *domain.PromoCode {
	if s.promotions == nil || strings.TrimSpace(code) == "" {
		return nil
	}
	validation, err := s.promotions.Validate(ctx, code)
	if err != nil {
		s.logger(ctx, "booking_promo_validation_failed", map[string]any{"code": code, "error": err.Error()})
		return nil
	}
	if !validation.Valid {
		s.logger(ctx, "booking_promo_rejected", map[string]any{"code": code, "reason": validation.Reason})
		return nil
	}
	return validation.Promo
}

func (s *bookingService) notify(ctx context.Context, booking domain.Booking) {
	if len(s.notifiers) == 0 {
		return
	}
	notification := BuildBookingNotification(booking)
	for _, notifier := range s.notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.NotifyBookingSubmitted(ctx, notification); err != nil {
			s.logger(ctx, "booking_notification_failed", map[string]any{"bookingId": booking.ID, "error": err.Error()})
		}
	}
}

// BuildBookingNotification assembles the confirmation payload: the summary
// block the email leads with plus the raw booking record.
func BuildBookingNotification(booking domain.Booking) BookingNotification {
	summary := BookingSummary{
		ContactName:        booking.ContactName(),
		ContactSummaryLine: joinNonEmpty(" / ", booking.Email, booking.Phone),
		MoveDateSummary:    formatMoveDate(booking.MoveDate, booking.MoveTime),
		Team:               booking.Selection.TeamTier,
		EstimateLabel:      FormatEstimateLabel(booking.Estimate),
	}
	if booking.Selection.Origin != nil && booking.Selection.Destination != nil {
		summary.RouteSummary = booking.Selection.Origin.Query + " to " + booking.Selection.Destination.Query
	} else if booking.Selection.Origin != nil {
		summary.RouteSummary = booking.Selection.Origin.Query
	}
	return BookingNotification{Summary: summary, Booking: booking}
}

// FormatEstimateLabel renders the discounted range the way the review screen
// shows it, collapsing fixed-point estimates to a single amount.
func FormatEstimateLabel(estimate domain.EstimateResult) string {
	if estimate.FixedPoint() {
		return fmt.Sprintf("$%.2f", estimate.DiscountedMinTotal)
	}
	return fmt.Sprintf("$%.2f - $%.2f", estimate.DiscountedMinTotal, estimate.DiscountedMaxTotal)
}

func validateSubmission(cmd SubmitBookingCommand) error {
	switch {
	case strings.TrimSpace(cmd.WidgetID) == "":
		return fmt.Errorf("%w: widget id is required", ErrBookingInvalidInput)
	case strings.TrimSpace(cmd.FirstName) == "":
		return fmt.Errorf("%w: first name is required", ErrBookingInvalidInput)
	case strings.TrimSpace(cmd.LastName) == "":
		return fmt.Errorf("%w: last name is required", ErrBookingInvalidInput)
	case !emailPattern.MatchString(strings.TrimSpace(cmd.Email)):
		return fmt.Errorf("%w: email is malformed", ErrBookingInvalidInput)
	case strings.TrimSpace(cmd.Phone) == "":
		return fmt.Errorf("%w: phone is required", ErrBookingInvalidInput)
	case cmd.MoveDate.IsZero():
		return fmt.Errorf("%w: move date is required", ErrBookingInvalidInput)
	case cmd.Selection.Origin == nil || strings.TrimSpace(cmd.Selection.Origin.Query) == "":
		return fmt.Errorf("%w: origin is required", ErrBookingInvalidInput)
	case cmd.Selection.Destination == nil || strings.TrimSpace(cmd.Selection.Destination.Query) == "":
		return fmt.Errorf("%w: destination is required", ErrBookingInvalidInput)
	}
	return nil
}

func formatMoveDate(date time.Time, moveTime string) string {
	if date.IsZero() {
		return moveTime
	}
	formatted := date.Format("Mon, Jan 2 2006")
	return joinNonEmpty(" at ", formatted, moveTime)
}

func joinNonEmpty(sep string, parts ...string) string {
	filtered := parts[:0:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			filtered = append(filtered, part)
		}
	}
	return strings.Join(filtered, sep)
}
