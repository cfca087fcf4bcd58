package wizard

import (
	"time"

	domain "github.com/movewidget/api/internal/domain"
)

// Screen identifies the wizard step currently shown. Exactly one screen is
// active at a time; the tagged state makes contradictory combinations
// unrepresentable.
type Screen string

const (
	ScreenServiceSelect      Screen = "service_select"
	ScreenLaborHelpSelect    Screen = "labor_help_select"
	ScreenMoveTypeSelect     Screen = "move_type_select"
	ScreenSizeSelect         Screen = "size_select"
	ScreenContactInfo        Screen = "contact_info"
	ScreenMoveDate           Screen = "move_date"
	ScreenMoveTime           Screen = "move_time"
	ScreenOriginSearch       Screen = "origin_search"
	ScreenOriginDetails      Screen = "origin_details"
	ScreenDestinationSearch  Screen = "destination_search"
	ScreenDestinationDetails Screen = "destination_details"
	ScreenTeamSelect         Screen = "team_select"
	ScreenUnloadingHours     Screen = "unloading_hours"
	ScreenServicesSelect     Screen = "services_select"
	ScreenStorageEditor      Screen = "storage_editor"
	ScreenProtectionEditor   Screen = "protection_editor"
	ScreenPromoCode          Screen = "promo_code"
	ScreenReview             Screen = "review"
	ScreenSubmitted          Screen = "submitted"
)

// PromoStatus tracks the promo field's validation lifecycle.
type PromoStatus string

const (
	PromoIdle     PromoStatus = "idle"
	PromoChecking PromoStatus = "checking"
	PromoValid    PromoStatus = "valid"
	PromoInvalid  PromoStatus = "invalid"
)

// ContactInfo is the customer identity collected on the contact screen.
type ContactInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// PromoState carries the promo field plus its last validation outcome. Any
// edit to the code resets the status to idle; the last validated code is
// cached so the review screen does not re-validate redundantly.
type PromoState struct {
	Code          string            `json:"code"`
	Status        PromoStatus       `json:"status"`
	Reason        string            `json:"reason,omitempty"`
	Applied       *domain.PromoCode `json:"applied,omitempty"`
	LastValidated string            `json:"-"`
}

// editorSnapshot captures the values an editor detour can roll back to when
// the customer cancels instead of saving.
type editorSnapshot struct {
	storageSelected    bool
	storageDuration    string
	protectionSelected bool
	declaredValue      float64
}

// State is the complete wizard position: current screen, accumulated
// selection, contact and schedule data, promo state and the live estimate.
// Transitions treat it as a value; Apply returns a new State.
type State struct {
	Screen    Screen                `json:"screen"`
	Selection domain.Selection      `json:"selection"`
	Contact   ContactInfo           `json:"contact"`
	MoveDate  time.Time             `json:"moveDate,omitempty"`
	MoveTime  string                `json:"moveTime,omitempty"`
	Promo     PromoState            `json:"promo"`
	Estimate  domain.EstimateResult `json:"estimate"`

	history []Screen
	editor  *editorSnapshot
}

// NewState returns the wizard's starting position.
func NewState() State {
	return State{
		Screen: ScreenServiceSelect,
		Promo:  PromoState{Status: PromoIdle},
	}
}

// Submitted reports whether the wizard reached its terminal screen.
func (s State) Submitted() bool {
	return s.Screen == ScreenSubmitted
}

// clone copies the state deeply enough that the returned value can be
// mutated without affecting the original.
func (s State) clone() State {
	out := s
	out.Selection = s.Selection.Clone()
	if s.Promo.Applied != nil {
		applied := *s.Promo.Applied
		out.Promo.Applied = &applied
	}
	out.history = append([]Screen(nil), s.history...)
	if s.editor != nil {
		snapshot := *s.editor
		out.editor = &snapshot
	}
	return out
}

func (s *State) pushHistory(screen Screen) {
	s.history = append(s.history, screen)
}

func (s *State) popHistory() (Screen, bool) {
	if len(s.history) == 0 {
		return "", false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return last, true
}
