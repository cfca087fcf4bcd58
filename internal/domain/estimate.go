package domain

// EstimateResult is the full price breakdown for the current selection. It is
// recomputed on every relevant input change and embedded in the final booking
// record; it is never persisted on its own.
type EstimateResult struct {
	TeamTier           string  `firestore:"teamTier" json:"teamTier"`
	HourlyRate         float64 `firestore:"hourlyRate" json:"hourlyRate"`
	MinLaborHours      float64 `firestore:"minLaborHours" json:"minLaborHours"`
	MaxLaborHours      float64 `firestore:"maxLaborHours" json:"maxLaborHours"`
	MinLaborCost       float64 `firestore:"minLaborCost" json:"minLaborCost"`
	MaxLaborCost       float64 `firestore:"maxLaborCost" json:"maxLaborCost"`
	TravelCost         float64 `firestore:"travelCost" json:"travelCost"`
	DistanceCost       float64 `firestore:"distanceCost" json:"distanceCost"`
	AccessibilityCost  float64 `firestore:"accessibilityCost" json:"accessibilityCost"`
	ProtectionCost     float64 `firestore:"protectionCost" json:"protectionCost"`
	MinTotal           float64 `firestore:"minTotal" json:"minTotal"`
	MaxTotal           float64 `firestore:"maxTotal" json:"maxTotal"`
	DiscountedMinTotal float64 `firestore:"discountedMinTotal" json:"discountedMinTotal"`
	DiscountedMaxTotal float64 `firestore:"discountedMaxTotal" json:"discountedMaxTotal"`
}

// FixedPoint reports whether the displayed estimate collapsed to a single
// value, which happens when labor hours are explicit rather than size-derived.
// It compares the discounted totals since those are what the customer sees.
func (e EstimateResult) FixedPoint() bool {
	return e.DiscountedMinTotal == e.DiscountedMaxTotal
}
