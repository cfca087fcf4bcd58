package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/services"
)

const (
	defaultSuggestionDebounce = 250 * time.Millisecond
	defaultDistanceDebounce   = 500 * time.Millisecond
)

var (
	// ErrSubmissionInFlight guards against duplicate confirm clicks.
	ErrSubmissionInFlight = errors.New("wizard: submission already in flight")
	// ErrNotOnReview is returned when submit is requested before the review screen.
	ErrNotOnReview = errors.New("wizard: submission requires the review screen")
)

// Suggestion is one address autocomplete candidate.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

// SuggestionClient resolves address autocomplete queries.
type SuggestionClient interface {
	Suggest(ctx context.Context, input string) ([]Suggestion, error)
}

// DistanceClient resolves the route between two address strings.
type DistanceClient interface {
	Distance(ctx context.Context, origin, destination string) (domain.Distance, error)
}

// SessionDeps bundles the collaborators one wizard session needs.
type SessionDeps struct {
	WidgetID           string
	Pricing            domain.RateConfig
	Suggestions        SuggestionClient
	Distances          DistanceClient
	Promotions         services.PromotionService
	Contacts           services.ContactService
	Bookings           services.BookingService
	SuggestionDebounce time.Duration
	DistanceDebounce   time.Duration
	Clock              func() time.Time
	Logger             func(context.Context, string, map[string]any)
}

// Session owns one customer's wizard run: the pure state machine plus the
// asynchronous side of it. Suggestion and distance lookups are debounced and
// cancelable so a newer keystroke always wins; promo validation is cached per
// code; a single in-flight guard prevents duplicate submission.
type Session struct {
	ID string

	widgetID      string
	pricing       domain.RateConfig
	suggestions   SuggestionClient
	distances     DistanceClient
	promotions    services.PromotionService
	contacts      services.ContactService
	bookings      services.BookingService
	suggestDelay  time.Duration
	distanceDelay time.Duration
	clock         func() time.Time
	logger        func(context.Context, string, map[string]any)

	mu                sync.Mutex
	state             State
	latestSuggestions []Suggestion
	suggestTimer      *time.Timer
	suggestCancel     context.CancelFunc
	suggestSeq        uint64
	distanceTimer     *time.Timer
	distanceCancel    context.CancelFunc
	distanceSeq       uint64
	pendingRoute      string
	submitting        bool
	booking           *domain.Booking
	closed            bool
}

// NewSession constructs a session at the wizard's starting screen.
func NewSession(id string, deps SessionDeps) (*Session, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("wizard: session id is required")
	}
	if strings.TrimSpace(deps.WidgetID) == "" {
		return nil, errors.New("wizard: widget id is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	suggestDelay := deps.SuggestionDebounce
	if suggestDelay <= 0 {
		suggestDelay = defaultSuggestionDebounce
	}
	distanceDelay := deps.DistanceDebounce
	if distanceDelay <= 0 {
		distanceDelay = defaultDistanceDebounce
	}
	return &Session{
		ID:            id,
		widgetID:      deps.WidgetID,
		pricing:       deps.Pricing,
		suggestions:   deps.Suggestions,
		distances:     deps.Distances,
		promotions:    deps.Promotions,
		contacts:      deps.Contacts,
		bookings:      deps.Bookings,
		suggestDelay:  suggestDelay,
		distanceDelay: distanceDelay,
		clock:         func() time.Time { return clock().UTC() },
		logger:        logger,
		state:         NewState(),
	}, nil
}

// WidgetID reports the widget this session prices against.
func (s *Session) WidgetID() string { return s.widgetID }

// State returns a copy of the current wizard state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Booking returns the persisted submission, if the session completed one.
func (s *Session) Booking() *domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.booking == nil {
		return nil
	}
	booking := *s.booking
	return &booking
}

// Apply feeds one event through the state machine. Navigation events abandon
// any pending lookups for screens the customer left; committing a destination
// schedules the debounced distance lookup.
func (s *Session) Apply(ctx context.Context, event Event) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := event.(ChooseMoveDate); ok {
		// stamp the clock so the past-date check stays deterministic
		ev := event.(ChooseMoveDate)
		if ev.Now.IsZero() {
			ev.Now = s.clock()
		}
		event = ev
	}

	next, err := Apply(s.pricing, s.state, event)
	if err != nil {
		return s.state.clone(), err
	}

	leftSearchScreen := isSearchScreen(s.state.Screen) && next.Screen != s.state.Screen
	s.state = next

	if leftSearchScreen {
		s.cancelSuggestionsLocked()
	}
	if _, ok := event.(SubmitContact); ok {
		s.captureContactLocked(ctx)
	}
	s.maybeScheduleDistanceLocked(ctx)

	return s.state.clone(), nil
}

// captureContactLocked records the lead as soon as the contact screen is
// completed, so an abandoned wizard still leaves the operator a contact.
// Capture is best-effort in the background and never blocks or fails the
// transition.
func (s *Session) captureContactLocked(ctx context.Context) {
	if s.contacts == nil {
		return
	}
	cmd := services.CaptureContactCommand{
		WidgetID:  s.widgetID,
		FirstName: s.state.Contact.FirstName,
		LastName:  s.state.Contact.LastName,
		Email:     s.state.Contact.Email,
		Phone:     s.state.Contact.Phone,
	}
	captureCtx := context.WithoutCancel(ctx)
	go func() {
		if _, err := s.contacts.Capture(captureCtx, cmd); err != nil {
			s.logger(captureCtx, "session_contact_capture_failed", map[string]any{"sessionId": s.ID, "error": err.Error()})
		}
	}()
}

// TypeAddress registers a keystroke in the active search field. The lookup
// fires only after the debounce window and any earlier in-flight request is
// canceled, so stale results can never overwrite fresher input.
func (s *Session) TypeAddress(ctx context.Context, input string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.suggestions == nil || !isSearchScreen(s.state.Screen) {
		return
	}

	s.cancelSuggestionsLocked()

	input = strings.TrimSpace(input)
	if len(input) < 3 {
		s.latestSuggestions = nil
		return
	}

	s.suggestSeq++
	seq := s.suggestSeq
	lookupCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.suggestCancel = cancel
	s.suggestTimer = time.AfterFunc(s.suggestDelay, func() {
		s.runSuggestionLookup(lookupCtx, seq, input)
	})
}

// Suggestions returns the most recent autocomplete results.
func (s *Session) Suggestions() []Suggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Suggestion, len(s.latestSuggestions))
	copy(out, s.latestSuggestions)
	return out
}

// ApplyPromo validates the code and applies the outcome. The last validated
// code is cached: re-submitting it skips the lookup, while any edit via
// EditPromoCode resets the cache. A lookup failure surfaces inline as
// server_error rather than failing the session.
func (s *Session) ApplyPromo(ctx context.Context, code string) (State, error) {
	s.mu.Lock()
	if s.state.Screen != ScreenPromoCode {
		state := s.state.clone()
		s.mu.Unlock()
		return state, ErrInvalidTransition
	}
	normalized := services.NormalizePromoCode(code)
	if normalized != "" && normalized == s.state.Promo.LastValidated && s.state.Promo.Status == PromoValid {
		state := s.state.clone()
		s.mu.Unlock()
		return state, nil
	}
	// surface the in-flight status while the lookup runs
	s.state.Promo.Status = PromoChecking
	promotions := s.promotions
	s.mu.Unlock()

	outcome := domain.PromoValidation{Reason: domain.PromoReasonServerError}
	if promotions != nil {
		validated, err := promotions.Validate(ctx, code)
		if err != nil {
			s.logger(ctx, "session_promo_validation_failed", map[string]any{"sessionId": s.ID, "error": err.Error()})
		} else {
			outcome = validated
		}
	}

	return s.Apply(ctx, PromoChecked{Code: code, Outcome: outcome})
}

// Submit fires the booking exactly once. The wizard reaches its terminal
// screen even when persistence or dispatch fails; the failure is logged for
// the operator, never shown as an error state to the customer.
func (s *Session) Submit(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.state.Screen != ScreenReview {
		state := s.state.clone()
		s.mu.Unlock()
		return state, ErrNotOnReview
	}
	if s.submitting {
		state := s.state.clone()
		s.mu.Unlock()
		return state, ErrSubmissionInFlight
	}
	s.submitting = true
	cmd := s.buildSubmissionLocked()
	bookings := s.bookings
	s.mu.Unlock()

	if bookings != nil {
		booking, err := bookings.Submit(ctx, cmd)
		if err != nil {
			s.logger(ctx, "session_submission_failed", map[string]any{"sessionId": s.ID, "error": err.Error()})
		} else {
			s.mu.Lock()
			s.booking = &booking
			s.mu.Unlock()
		}
	}

	state, err := s.Apply(ctx, CompleteSubmission{})

	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
	return state, err
}

// Close abandons pending lookups. Used when the customer navigates away.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelSuggestionsLocked()
	s.cancelDistanceLocked()
}

func (s *Session) buildSubmissionLocked() services.SubmitBookingCommand {
	return services.SubmitBookingCommand{
		WidgetID:  s.widgetID,
		FirstName: s.state.Contact.FirstName,
		LastName:  s.state.Contact.LastName,
		Email:     s.state.Contact.Email,
		Phone:     s.state.Contact.Phone,
		MoveDate:  s.state.MoveDate,
		MoveTime:  s.state.MoveTime,
		Selection: s.state.Selection.Clone(),
		PromoCode: s.state.Selection.PromoCode,
	}
}

func (s *Session) runSuggestionLookup(ctx context.Context, seq uint64, input string) {
	results, err := s.suggestions.Suggest(ctx, input)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger(ctx, "session_suggestions_failed", map[string]any{"sessionId": s.ID, "error": err.Error()})
		}
		results = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.suggestSeq || s.closed {
		// a newer keystroke superseded this lookup
		return
	}
	s.latestSuggestions = results
}

func (s *Session) maybeScheduleDistanceLocked(ctx context.Context) {
	if s.closed || s.distances == nil {
		return
	}
	sel := s.state.Selection
	if sel.Origin == nil || sel.Destination == nil || sel.Distance != nil {
		return
	}
	origin := strings.TrimSpace(sel.Origin.Query)
	destination := strings.TrimSpace(sel.Destination.Query)
	if origin == "" || destination == "" {
		return
	}
	route := origin + "|" + destination
	if route == s.pendingRoute {
		return
	}

	s.cancelDistanceLocked()
	s.pendingRoute = route
	s.distanceSeq++
	seq := s.distanceSeq
	lookupCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.distanceCancel = cancel
	s.distanceTimer = time.AfterFunc(s.distanceDelay, func() {
		s.runDistanceLookup(lookupCtx, seq, origin, destination)
	})
}

func (s *Session) runDistanceLookup(ctx context.Context, seq uint64, origin, destination string) {
	distance, err := s.distances.Distance(ctx, origin, destination)

	s.mu.Lock()
	if seq != s.distanceSeq || s.closed {
		s.mu.Unlock()
		return
	}
	s.pendingRoute = ""
	if err != nil {
		s.mu.Unlock()
		if !errors.Is(err, context.Canceled) {
			// the estimate simply keeps pricing travel at zero
			s.logger(ctx, "session_distance_failed", map[string]any{"sessionId": s.ID, "error": err.Error()})
		}
		return
	}

	next, applyErr := Apply(s.pricing, s.state, DistanceResolved{Distance: distance})
	if applyErr == nil {
		s.state = next
	}
	s.mu.Unlock()
}

func (s *Session) cancelSuggestionsLocked() {
	if s.suggestTimer != nil {
		s.suggestTimer.Stop()
		s.suggestTimer = nil
	}
	if s.suggestCancel != nil {
		s.suggestCancel()
		s.suggestCancel = nil
	}
	s.suggestSeq++
}

func (s *Session) cancelDistanceLocked() {
	if s.distanceTimer != nil {
		s.distanceTimer.Stop()
		s.distanceTimer = nil
	}
	if s.distanceCancel != nil {
		s.distanceCancel()
		s.distanceCancel = nil
	}
	s.distanceSeq++
	s.pendingRoute = ""
}

func isSearchScreen(screen Screen) bool {
	return screen == ScreenOriginSearch || screen == ScreenDestinationSearch
}
