package wizard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	domain "github.com/movewidget/api/internal/domain"
	"github.com/movewidget/api/internal/services"
)

// ErrInvalidTransition is returned when an event does not apply to the
// current screen.
var ErrInvalidTransition = errors.New("wizard: event not valid for current screen")

// ValidationError is a per-screen field check failure. It blocks advancing
// and is surfaced inline; it is never fatal to the session.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wizard: %s: %s", e.Field, e.Message)
}

var (
	wizardEmailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	wizardPhonePattern = regexp.MustCompile(`^\+?[0-9][0-9()\-.\s]{5,}$`)
)

var allowedExplicitHours = map[float64]bool{2: true, 3: true, 4: true}

// Apply advances the wizard by one event. It is a pure transition: the input
// state is never mutated, and on error it is returned unchanged. The live
// estimate is refreshed on every accepted event.
func Apply(cfg domain.RateConfig, state State, event Event) (State, error) {
	next := state.clone()

	switch ev := event.(type) {
	case DistanceResolved:
		// asynchronous completion, applies on any screen
		distance := ev.Distance
		next.Selection.Distance = &distance

	case Back:
		if err := applyBack(&next); err != nil {
			return state, err
		}

	case ChooseService:
		if state.Screen != ScreenServiceSelect {
			return state, ErrInvalidTransition
		}
		if ev.Type != domain.ServiceTypeFullService && ev.Type != domain.ServiceTypeLaborOnly {
			return state, &ValidationError{Field: "serviceType", Message: "choose a service"}
		}
		if next.Selection.ServiceType != ev.Type {
			next.Selection.LaborHelpType = ""
			next.Selection.TeamTier = ""
			next.Selection.ExplicitHours = 0
		}
		next.Selection.ServiceType = ev.Type
		if ev.Type == domain.ServiceTypeLaborOnly {
			advance(&next, ScreenLaborHelpSelect)
		} else {
			advance(&next, ScreenMoveTypeSelect)
		}

	case ChooseLaborHelp:
		if state.Screen != ScreenLaborHelpSelect {
			return state, ErrInvalidTransition
		}
		switch ev.Type {
		case domain.LaborHelpLoadingUnloading, domain.LaborHelpLoadingOnly, domain.LaborHelpUnloadingOnly:
		default:
			return state, &ValidationError{Field: "laborHelpType", Message: "choose the help you need"}
		}
		if next.Selection.LaborHelpType != ev.Type {
			next.Selection.TeamTier = ""
			next.Selection.ExplicitHours = 0
		}
		next.Selection.LaborHelpType = ev.Type
		advance(&next, ScreenMoveTypeSelect)

	case ChooseMoveType:
		if state.Screen != ScreenMoveTypeSelect {
			return state, ErrInvalidTransition
		}
		switch ev.Type {
		case domain.MoveTypeHome, domain.MoveTypeStorage, domain.MoveTypeOffice:
		default:
			return state, &ValidationError{Field: "moveType", Message: "choose a move type"}
		}
		if next.Selection.MoveType != ev.Type {
			next.Selection.SizeBucket = ""
		}
		next.Selection.MoveType = ev.Type
		advance(&next, ScreenSizeSelect)

	case ChooseSize:
		if state.Screen != ScreenSizeSelect {
			return state, ErrInvalidTransition
		}
		if strings.TrimSpace(ev.Bucket) == "" {
			return state, &ValidationError{Field: "sizeBucket", Message: "choose a size"}
		}
		next.Selection.SizeBucket = strings.TrimSpace(ev.Bucket)
		if next.Selection.ServiceType == domain.ServiceTypeFullService {
			next.Selection.TeamTier = services.RecommendedTeamTier(next.Selection)
		}
		advance(&next, ScreenContactInfo)

	case SubmitContact:
		if state.Screen != ScreenContactInfo {
			return state, ErrInvalidTransition
		}
		contact, err := validateContact(ev.Contact)
		if err != nil {
			return state, err
		}
		next.Contact = contact
		advance(&next, ScreenMoveDate)

	case ChooseMoveDate:
		if state.Screen != ScreenMoveDate {
			return state, ErrInvalidTransition
		}
		if ev.Date.IsZero() {
			return state, &ValidationError{Field: "moveDate", Message: "pick a date"}
		}
		now := ev.Now
		if now.IsZero() {
			now = time.Now()
		}
		if dayOf(ev.Date).Before(dayOf(now)) {
			return state, &ValidationError{Field: "moveDate", Message: "date cannot be in the past"}
		}
		next.MoveDate = ev.Date.UTC()
		advance(&next, ScreenMoveTime)

	case ChooseMoveTime:
		if state.Screen != ScreenMoveTime {
			return state, ErrInvalidTransition
		}
		if strings.TrimSpace(ev.Slot) == "" {
			return state, &ValidationError{Field: "moveTime", Message: "pick an arrival window"}
		}
		next.MoveTime = strings.TrimSpace(ev.Slot)
		advance(&next, ScreenOriginSearch)

	case ConfirmOriginAddress:
		if state.Screen != ScreenOriginSearch {
			return state, ErrInvalidTransition
		}
		query := strings.TrimSpace(ev.Query)
		if query == "" {
			return state, &ValidationError{Field: "origin", Message: "enter the pickup address"}
		}
		origin := domain.Location{StairsTier: domain.StairsTierNone, WalkingTier: domain.WalkingTierShort}
		if next.Selection.Origin != nil {
			origin = *next.Selection.Origin
		}
		if origin.Query != query {
			// the route changed; a stale distance must not linger
			next.Selection.Distance = nil
		}
		origin.Query = query
		next.Selection.Origin = &origin
		advance(&next, ScreenOriginDetails)

	case SubmitOriginDetails:
		if state.Screen != ScreenOriginDetails || next.Selection.Origin == nil {
			return state, ErrInvalidTransition
		}
		if err := applyLocationDetails(next.Selection.Origin, ev.Unit, ev.HasElevator, ev.StairsTier, ev.WalkingTier); err != nil {
			return state, err
		}
		advance(&next, ScreenDestinationSearch)

	case ConfirmDestinationAddress:
		if state.Screen != ScreenDestinationSearch {
			return state, ErrInvalidTransition
		}
		query := strings.TrimSpace(ev.Query)
		if query == "" {
			return state, &ValidationError{Field: "destination", Message: "enter the drop-off address"}
		}
		destination := domain.Location{StairsTier: domain.StairsTierNone, WalkingTier: domain.WalkingTierShort}
		if next.Selection.Destination != nil {
			destination = *next.Selection.Destination
		}
		if destination.Query != query {
			next.Selection.Distance = nil
		}
		destination.Query = query
		next.Selection.Destination = &destination
		advance(&next, ScreenDestinationDetails)

	case SubmitDestinationDetails:
		if state.Screen != ScreenDestinationDetails || next.Selection.Destination == nil {
			return state, ErrInvalidTransition
		}
		if err := applyLocationDetails(next.Selection.Destination, ev.Unit, ev.HasElevator, ev.StairsTier, ev.WalkingTier); err != nil {
			return state, err
		}
		if next.Selection.ServiceType == domain.ServiceTypeLaborOnly {
			advance(&next, ScreenTeamSelect)
		} else {
			advance(&next, ScreenServicesSelect)
		}

	case ChooseTeam:
		if state.Screen != ScreenTeamSelect {
			return state, ErrInvalidTransition
		}
		if strings.TrimSpace(ev.Tier) == "" {
			return state, &ValidationError{Field: "teamTier", Message: "choose a team"}
		}
		next.Selection.TeamTier = strings.TrimSpace(ev.Tier)
		if next.Selection.FixedHours() {
			advance(&next, ScreenUnloadingHours)
		} else {
			advance(&next, ScreenServicesSelect)
		}

	case ChooseHours:
		if state.Screen != ScreenUnloadingHours {
			return state, ErrInvalidTransition
		}
		if !allowedExplicitHours[ev.Hours] {
			return state, &ValidationError{Field: "explicitHours", Message: "choose 2, 3 or 4 hours"}
		}
		next.Selection.ExplicitHours = ev.Hours
		advance(&next, ScreenServicesSelect)

	case OpenStorageEditor:
		if state.Screen != ScreenServicesSelect {
			return state, ErrInvalidTransition
		}
		next.editor = snapshotEditors(next.Selection)
		next.Screen = ScreenStorageEditor

	case SaveStorage:
		if state.Screen != ScreenStorageEditor {
			return state, ErrInvalidTransition
		}
		next.Selection.StorageSelected = ev.Selected
		next.Selection.StorageDuration = strings.TrimSpace(ev.Duration)
		if !ev.Selected {
			next.Selection.StorageDuration = ""
		}
		next.editor = nil
		next.Screen = ScreenServicesSelect

	case OpenProtectionEditor:
		if state.Screen != ScreenServicesSelect {
			return state, ErrInvalidTransition
		}
		next.editor = snapshotEditors(next.Selection)
		next.Screen = ScreenProtectionEditor

	case SaveProtection:
		if state.Screen != ScreenProtectionEditor {
			return state, ErrInvalidTransition
		}
		if ev.DeclaredValue < 0 {
			return state, &ValidationError{Field: "declaredValue", Message: "declared value cannot be negative"}
		}
		next.Selection.ProtectionSelected = ev.Selected
		next.Selection.DeclaredValue = ev.DeclaredValue
		if !ev.Selected {
			next.Selection.DeclaredValue = 0
		}
		next.editor = nil
		next.Screen = ScreenServicesSelect

	case CancelEditor:
		if state.Screen != ScreenStorageEditor && state.Screen != ScreenProtectionEditor {
			return state, ErrInvalidTransition
		}
		restoreEditors(&next)
		next.Screen = ScreenServicesSelect

	case ContinueToPromo:
		if state.Screen != ScreenServicesSelect {
			return state, ErrInvalidTransition
		}
		advance(&next, ScreenPromoCode)

	case EditPromoCode:
		if state.Screen != ScreenPromoCode {
			return state, ErrInvalidTransition
		}
		next.Promo = PromoState{Code: ev.Code, Status: PromoIdle}
		next.Selection.PromoCode = ""

	case PromoChecked:
		if state.Screen != ScreenPromoCode {
			return state, ErrInvalidTransition
		}
		code := services.NormalizePromoCode(ev.Code)
		next.Promo.Code = ev.Code
		if ev.Outcome.Valid && ev.Outcome.Promo != nil {
			promo := *ev.Outcome.Promo
			next.Promo.Status = PromoValid
			next.Promo.Reason = ""
			next.Promo.Applied = &promo
			next.Promo.LastValidated = code
			next.Selection.PromoCode = promo.Code
		} else {
			next.Promo.Status = PromoInvalid
			next.Promo.Reason = ev.Outcome.Reason
			next.Promo.Applied = nil
			next.Promo.LastValidated = ""
			next.Selection.PromoCode = ""
		}

	case SkipPromo:
		if state.Screen != ScreenPromoCode {
			return state, ErrInvalidTransition
		}
		next.Promo = PromoState{Status: PromoIdle}
		next.Selection.PromoCode = ""
		advance(&next, ScreenReview)

	case ContinueToReview:
		if state.Screen != ScreenPromoCode {
			return state, ErrInvalidTransition
		}
		if strings.TrimSpace(next.Promo.Code) != "" && next.Promo.Status != PromoValid {
			return state, &ValidationError{Field: "promoCode", Message: "apply or skip the promo code"}
		}
		advance(&next, ScreenReview)

	case CompleteSubmission:
		if state.Screen != ScreenReview {
			return state, ErrInvalidTransition
		}
		next.Screen = ScreenSubmitted
		next.history = nil

	default:
		return state, ErrInvalidTransition
	}

	refreshEstimate(cfg, &next)
	return next, nil
}

// advance records the current screen for back-navigation and moves forward.
func advance(s *State, to Screen) {
	s.pushHistory(s.Screen)
	s.Screen = to
}

// applyBack restores the exact prior screen. Inside an editor it behaves
// like cancel; from the terminal screen there is nowhere to go.
func applyBack(s *State) error {
	switch s.Screen {
	case ScreenStorageEditor, ScreenProtectionEditor:
		restoreEditors(s)
		s.Screen = ScreenServicesSelect
		return nil
	case ScreenSubmitted:
		return ErrInvalidTransition
	}
	prev, ok := s.popHistory()
	if !ok {
		return ErrInvalidTransition
	}
	s.Screen = prev
	return nil
}

func snapshotEditors(sel domain.Selection) *editorSnapshot {
	return &editorSnapshot{
		storageSelected:    sel.StorageSelected,
		storageDuration:    sel.StorageDuration,
		protectionSelected: sel.ProtectionSelected,
		declaredValue:      sel.DeclaredValue,
	}
}

func restoreEditors(s *State) {
	if s.editor == nil {
		return
	}
	s.Selection.StorageSelected = s.editor.storageSelected
	s.Selection.StorageDuration = s.editor.storageDuration
	s.Selection.ProtectionSelected = s.editor.protectionSelected
	s.Selection.DeclaredValue = s.editor.declaredValue
	s.editor = nil
}

func refreshEstimate(cfg domain.RateConfig, s *State) {
	s.Estimate = services.ComputeEstimate(cfg, s.Selection, s.Selection.Distance, s.Promo.Applied)
}

func validateContact(contact ContactInfo) (ContactInfo, error) {
	contact.FirstName = strings.TrimSpace(contact.FirstName)
	contact.LastName = strings.TrimSpace(contact.LastName)
	contact.Email = strings.TrimSpace(contact.Email)
	contact.Phone = strings.TrimSpace(contact.Phone)

	switch {
	case contact.FirstName == "":
		return contact, &ValidationError{Field: "firstName", Message: "first name is required"}
	case contact.LastName == "":
		return contact, &ValidationError{Field: "lastName", Message: "last name is required"}
	case !wizardEmailPattern.MatchString(contact.Email):
		return contact, &ValidationError{Field: "email", Message: "enter a valid email"}
	case !wizardPhonePattern.MatchString(contact.Phone):
		return contact, &ValidationError{Field: "phone", Message: "enter a valid phone number"}
	}
	return contact, nil
}

func applyLocationDetails(loc *domain.Location, unit string, hasElevator bool, stairsTier, walkingTier string) error {
	stairs := strings.TrimSpace(stairsTier)
	if stairs == "" {
		stairs = domain.StairsTierNone
	}
	switch stairs {
	case domain.StairsTierNone, domain.StairsTierLow, domain.StairsTierMid, domain.StairsTierHigh:
	default:
		return &ValidationError{Field: "stairsTier", Message: "unknown stairs tier"}
	}

	walking := strings.TrimSpace(walkingTier)
	if walking == "" {
		walking = domain.WalkingTierShort
	}
	switch walking {
	case domain.WalkingTierShort, domain.WalkingTierMedium, domain.WalkingTierLong:
	default:
		return &ValidationError{Field: "walkingTier", Message: "unknown walking distance"}
	}

	loc.Unit = strings.TrimSpace(unit)
	loc.HasElevator = hasElevator
	loc.StairsTier = stairs
	loc.WalkingTier = walking
	return nil
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
