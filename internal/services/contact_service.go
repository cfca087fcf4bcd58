package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/repositories"
)

var (
	// ErrContactInvalidInput signals a malformed contact payload.
	ErrContactInvalidInput = errors.New("contact service: invalid input")
	// ErrContactUnavailable indicates the contact store cannot be reached.
	ErrContactUnavailable = errors.New("contact service: store unavailable")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ContactServiceDeps bundles dependencies required to construct a ContactService.
type ContactServiceDeps struct {
	Contacts repositories.ContactRepository
	Clock    func() time.Time
	IDGen    func() string
	Logger   func(context.Context, string, map[string]any)
}

type contactService struct {
	repo   repositories.ContactRepository
	clock  func() time.Time
	newID  func() string
	logger func(context.Context, string, map[string]any)
}

// NewContactService wires a ContactService backed by the provided repository.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Contacts == nil {
		return nil, errors.New("contact service: repository is required")
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
	return &contactService{
		repo:   deps.Contacts,
		clock:  func() time.Time { return clock().UTC() },
		newID:  newID,
		logger: logger,
	}, nil
}

// Capture upserts a lead keyed by (widget, email). An existing contact keeps
// its identity and source; name and phone are refreshed with the newer input.
func (s *contactService) Capture(ctx context.Context, cmd CaptureContactCommand) (domain.Contact, error) {
	widgetID := strings.TrimSpace(cmd.WidgetID)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	switch {
	case widgetID == "":
		return domain.Contact{}, fmt.Errorf("%w: widget id is required", ErrContactInvalidInput)
	case email == "":
		return domain.Contact{}, fmt.Errorf("%w: email is required", ErrContactInvalidInput)
	case !emailPattern.MatchString(email):
		return domain.Contact{}, fmt.Errorf("%w: email is malformed", ErrContactInvalidInput)
	}

	now := s.clock()

	existing, err := s.repo.FindByEmail(ctx, widgetID, email)
	if err == nil {
		existing.FirstName = strings.TrimSpace(cmd.FirstName)
		existing.LastName = strings.TrimSpace(cmd.LastName)
		existing.Phone = strings.TrimSpace(cmd.Phone)
		existing.UpdatedAt = now
		if updateErr := s.repo.Update(ctx, existing); updateErr != nil {
			return domain.Contact{}, s.classify(updateErr)
		}
		return existing, nil
	}
	if repoErr, ok := err.(repositories.RepositoryError); !ok || !repoErr.IsNotFound() {
		return domain.Contact{}, s.classify(err)
	}

	contact := domain.Contact{
		ID:        s.newID(),
		WidgetID:  widgetID,
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(cmd.Phone),
		Source:    domain.ContactSourceBookingForm,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, contact); err != nil {
		return domain.Contact{}, s.classify(err)
	}
	s.logger(ctx, "contact_captured", map[string]any{"widgetId": widgetID, "contactId": contact.ID})
	return contact, nil
}

func (s *contactService) ListByWidget(ctx context.Context, widgetID string, limit int) ([]domain.Contact, error) {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		return nil, fmt.Errorf("%w: widget id is required", ErrContactInvalidInput)
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	contacts, err := s.repo.ListByWidget(ctx, widgetID, limit)
	if err != nil {
		return nil, s.classify(err)
	}
	return contacts, nil
}

func (s *contactService) classify(err error) error {
	if repoErr, ok := err.(repositories.RepositoryError); ok && repoErr.IsUnavailable() {
		return fmt.Errorf("%w: %v", ErrContactUnavailable, err)
	}
	return err
}
