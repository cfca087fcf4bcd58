package domain

// ServiceType is the top-level service the customer is booking.
type ServiceType string

const (
	ServiceTypeFullService ServiceType = "full_service"
	ServiceTypeLaborOnly   ServiceType = "labor_only"
)

// LaborHelpType narrows a labor-only booking to the work being hired.
type LaborHelpType string

const (
	LaborHelpLoadingUnloading LaborHelpType = "loading_unloading"
	LaborHelpLoadingOnly      LaborHelpType = "loading_only"
	LaborHelpUnloadingOnly    LaborHelpType = "unloading_only"
)

// MoveType selects which estimate-labor group sizes are read from.
type MoveType string

const (
	MoveTypeHome    MoveType = "home"
	MoveTypeStorage MoveType = "storage"
	MoveTypeOffice  MoveType = "office"
)

// Location describes one endpoint of the move, including the accessibility
// attributes that feed the surcharge table.
type Location struct {
	Query       string `firestore:"query" json:"query"`
	Unit        string `firestore:"unit,omitempty" json:"unit,omitempty"`
	HasElevator bool   `firestore:"hasElevator" json:"hasElevator"`
	StairsTier  string `firestore:"stairsTier" json:"stairsTier"`
	WalkingTier string `firestore:"walkingTier" json:"walkingTier"`
}

// Distance is the resolved route between origin and destination. It stays nil
// on a selection until the external lookup completes.
type Distance struct {
	Miles       float64 `firestore:"miles" json:"miles"`
	TravelHours float64 `firestore:"travelHours" json:"travelHours"`
}

// Selection is the customer's accumulated wizard input. It is treated as an
// immutable value: transitions copy it, they never mutate in place.
type Selection struct {
	ServiceType        ServiceType   `firestore:"serviceType" json:"serviceType"`
	LaborHelpType      LaborHelpType `firestore:"laborHelpType,omitempty" json:"laborHelpType,omitempty"`
	MoveType           MoveType      `firestore:"moveType,omitempty" json:"moveType,omitempty"`
	SizeBucket         string        `firestore:"sizeBucket,omitempty" json:"sizeBucket,omitempty"`
	TeamTier           string        `firestore:"teamTier,omitempty" json:"teamTier,omitempty"`
	ExplicitHours      float64       `firestore:"explicitHours,omitempty" json:"explicitHours,omitempty"`
	Origin             *Location     `firestore:"origin,omitempty" json:"origin,omitempty"`
	Destination        *Location     `firestore:"destination,omitempty" json:"destination,omitempty"`
	Distance           *Distance     `firestore:"distance,omitempty" json:"distance,omitempty"`
	StorageSelected    bool          `firestore:"storageSelected" json:"storageSelected"`
	StorageDuration    string        `firestore:"storageDuration,omitempty" json:"storageDuration,omitempty"`
	ProtectionSelected bool          `firestore:"protectionSelected" json:"protectionSelected"`
	DeclaredValue      float64       `firestore:"declaredValue,omitempty" json:"declaredValue,omitempty"`
	PromoCode          string        `firestore:"promoCode,omitempty" json:"promoCode,omitempty"`
}

// TeamGroup maps the service and labor-help choice to the rate-table group
// the estimate reads crew pricing from.
func (s Selection) TeamGroup() string {
	if s.ServiceType == ServiceTypeLaborOnly {
		switch s.LaborHelpType {
		case LaborHelpLoadingOnly:
			return TeamGroupLoaders
		case LaborHelpUnloadingOnly:
			return TeamGroupUnloading
		}
	}
	return TeamGroupMove
}

// FixedHours reports whether labor time is a direct customer input rather
// than a size-derived range.
func (s Selection) FixedHours() bool {
	return s.ServiceType == ServiceTypeLaborOnly &&
		(s.LaborHelpType == LaborHelpLoadingOnly || s.LaborHelpType == LaborHelpUnloadingOnly)
}

// Clone returns a deep copy so transitions can derive new selections without
// sharing the location or distance pointers.
func (s Selection) Clone() Selection {
	out := s
	if s.Origin != nil {
		origin := *s.Origin
		out.Origin = &origin
	}
	if s.Destination != nil {
		destination := *s.Destination
		out.Destination = &destination
	}
	if s.Distance != nil {
		distance := *s.Distance
		out.Distance = &distance
	}
	return out
}
