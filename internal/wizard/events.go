package wizard

import (
	"time"

	domain "github.com/movewidget/api/internal/domain"
)

// Event is one discrete user action or asynchronous completion fed to Apply.
type Event interface {
	isEvent()
}

// ChooseService picks full service or labor only on the opening screen.
type ChooseService struct {
	Type domain.ServiceType
}

// ChooseLaborHelp narrows a labor-only booking.
type ChooseLaborHelp struct {
	Type domain.LaborHelpType
}

// ChooseMoveType picks home, storage or office. Changing it clears any size
// bucket selected for the previous move type.
type ChooseMoveType struct {
	Type domain.MoveType
}

// ChooseSize picks the size bucket within the current move type.
type ChooseSize struct {
	Bucket string
}

// SubmitContact completes the contact screen.
type SubmitContact struct {
	Contact ContactInfo
}

// ChooseMoveDate sets the move date. Dates before Now's day are rejected.
type ChooseMoveDate struct {
	Date time.Time
	Now  time.Time
}

// ChooseMoveTime sets the arrival window.
type ChooseMoveTime struct {
	Slot string
}

// ConfirmOriginAddress commits the origin search field and advances to the
// origin details screen.
type ConfirmOriginAddress struct {
	Query string
}

// SubmitOriginDetails completes origin accessibility details.
type SubmitOriginDetails struct {
	Unit        string
	HasElevator bool
	StairsTier  string
	WalkingTier string
}

// ConfirmDestinationAddress commits the destination search field.
type ConfirmDestinationAddress struct {
	Query string
}

// SubmitDestinationDetails completes destination accessibility details.
type SubmitDestinationDetails struct {
	Unit        string
	HasElevator bool
	StairsTier  string
	WalkingTier string
}

// DistanceResolved delivers an asynchronous distance lookup result. It never
// changes the screen; it refreshes the estimate in place.
type DistanceResolved struct {
	Distance domain.Distance
}

// ChooseTeam picks the crew tier on the team screen (labor-only flows).
type ChooseTeam struct {
	Tier string
}

// ChooseHours picks the explicit labor hours for loading-only or
// unloading-only bookings.
type ChooseHours struct {
	Hours float64
}

// OpenStorageEditor enters the storage detour from the services screen.
type OpenStorageEditor struct{}

// SaveStorage commits the storage editor and returns to the services screen.
type SaveStorage struct {
	Selected bool
	Duration string
}

// OpenProtectionEditor enters the protection detour.
type OpenProtectionEditor struct{}

// SaveProtection commits the protection editor.
type SaveProtection struct {
	Selected      bool
	DeclaredValue float64
}

// CancelEditor abandons the open editor, restoring the values captured when
// it was opened.
type CancelEditor struct{}

// ContinueToPromo leaves the services screen.
type ContinueToPromo struct{}

// EditPromoCode updates the promo field. Any edit resets validation to idle.
type EditPromoCode struct {
	Code string
}

// PromoChecked delivers the validation outcome for the code the customer
// submitted.
type PromoChecked struct {
	Code    string
	Outcome domain.PromoValidation
}

// SkipPromo clears all promo state and advances to review.
type SkipPromo struct{}

// ContinueToReview advances from the promo screen with the current promo
// state (valid or idle).
type ContinueToReview struct{}

// CompleteSubmission marks the wizard terminal. It is applied after the
// dispatcher ran, whether or not delivery succeeded.
type CompleteSubmission struct{}

// Back returns to the exact previous screen without clearing entered data.
type Back struct{}

func (ChooseService) isEvent()             {}
func (ChooseLaborHelp) isEvent()           {}
func (ChooseMoveType) isEvent()            {}
func (ChooseSize) isEvent()                {}
func (SubmitContact) isEvent()             {}
func (ChooseMoveDate) isEvent()            {}
func (ChooseMoveTime) isEvent()            {}
func (ConfirmOriginAddress) isEvent()      {}
func (SubmitOriginDetails) isEvent()       {}
func (ConfirmDestinationAddress) isEvent() {}
func (SubmitDestinationDetails) isEvent()  {}
func (DistanceResolved) isEvent()          {}
func (ChooseTeam) isEvent()                {}
func (ChooseHours) isEvent()               {}
func (OpenStorageEditor) isEvent()         {}
func (SaveStorage) isEvent()               {}
func (OpenProtectionEditor) isEvent()      {}
func (SaveProtection) isEvent()            {}
func (CancelEditor) isEvent()              {}
func (ContinueToPromo) isEvent()           {}
func (EditPromoCode) isEvent()             {}
func (PromoChecked) isEvent()              {}
func (SkipPromo) isEvent()                 {}
func (ContinueToReview) isEvent()          {}
func (CompleteSubmission) isEvent()        {}
func (Back) isEvent()                      {}
