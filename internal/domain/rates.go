package domain

import (
	"errors"
	"fmt"
)

// Team group keys within a rate table.
const (
	TeamGroupMove      = "move"
	TeamGroupLoaders   = "loaders"
	TeamGroupUnloading = "unloading"
)

// Stairs and walking-distance tiers recognised by the accessibility table.
const (
	StairsTierNone    = "none"
	StairsTierLow     = "1-2"
	StairsTierMid     = "3-4"
	StairsTierHigh    = "5+"
	WalkingTierShort  = "short"
	WalkingTierMedium = "medium"
	WalkingTierLong   = "long"
)

// TeamRate is the hourly pricing for one crew tier.
type TeamRate struct {
	Rate         float64 `firestore:"rate" json:"rate"`
	MinimumHours float64 `firestore:"minimumHours" json:"minimumHours"`
}

// TeamRates groups crew tiers by the kind of work they perform.
type TeamRates struct {
	Move      map[string]TeamRate `firestore:"move" json:"move"`
	Loaders   map[string]TeamRate `firestore:"loaders" json:"loaders"`
	Unloading map[string]TeamRate `firestore:"unloading" json:"unloading"`
}

// LaborRange is the estimated labor-hour band for one size bucket.
type LaborRange struct {
	MinLabor float64 `firestore:"minLabor" json:"minLabor"`
	MaxLabor float64 `firestore:"maxLabor" json:"maxLabor"`
}

// EstimateLaborTable maps size buckets to labor ranges per move type.
type EstimateLaborTable struct {
	Home    map[string]LaborRange `firestore:"home" json:"home"`
	Storage map[string]LaborRange `firestore:"storage" json:"storage"`
	Office  map[string]LaborRange `firestore:"office" json:"office"`
}

// AccessibilityCharges holds the per-location surcharge table.
type AccessibilityCharges struct {
	NoElevatorCharge float64            `firestore:"noElevatorCharge" json:"noElevatorCharge"`
	StairsCharge     map[string]float64 `firestore:"stairsCharge" json:"stairsCharge"`
	WalkingDistance  map[string]float64 `firestore:"walkingDistance" json:"walkingDistance"`
}

// RateConfig is the fully resolved rate table an estimate is computed against.
// Instances produced by ResolveRateConfig always carry every group, tier and
// charge; readers never fall back to defaults themselves.
type RateConfig struct {
	Teams            TeamRates            `firestore:"teams" json:"teams"`
	EstimateLabor    EstimateLaborTable   `firestore:"estimateLabor" json:"estimateLabor"`
	TravelRate       float64              `firestore:"travelRate" json:"travelRate"`
	PricePerMile     float64              `firestore:"pricePerMile" json:"pricePerMile"`
	ProtectionCharge float64              `firestore:"protectionCharge" json:"protectionCharge"`
	Accessibility    AccessibilityCharges `firestore:"accessibility" json:"accessibility"`
}

// RateConfigPatch is the operator-supplied portion of a rate table. Nil fields
// and missing map entries fall back to platform defaults at resolve time.
type RateConfigPatch struct {
	Teams            *TeamRates          `firestore:"teams,omitempty" json:"teams,omitempty"`
	EstimateLabor    *EstimateLaborTable `firestore:"estimateLabor,omitempty" json:"estimateLabor,omitempty"`
	TravelRate       *float64            `firestore:"travelRate,omitempty" json:"travelRate,omitempty"`
	PricePerMile     *float64            `firestore:"pricePerMile,omitempty" json:"pricePerMile,omitempty"`
	ProtectionCharge *float64            `firestore:"protectionCharge,omitempty" json:"protectionCharge,omitempty"`
	Accessibility    *AccessibilityPatch `firestore:"accessibility,omitempty" json:"accessibility,omitempty"`
}

// AccessibilityPatch is the operator-supplied portion of the surcharge table.
type AccessibilityPatch struct {
	NoElevatorCharge *float64           `firestore:"noElevatorCharge,omitempty" json:"noElevatorCharge,omitempty"`
	StairsCharge     map[string]float64 `firestore:"stairsCharge,omitempty" json:"stairsCharge,omitempty"`
	WalkingDistance  map[string]float64 `firestore:"walkingDistance,omitempty" json:"walkingDistance,omitempty"`
}

// DefaultRateConfig returns the platform default rate table.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		Teams: TeamRates{
			Move: map[string]TeamRate{
				"2-1": {Rate: 120, MinimumHours: 2},
				"3-1": {Rate: 180, MinimumHours: 3},
				"3-2": {Rate: 220, MinimumHours: 2},
				"4-2": {Rate: 300, MinimumHours: 2},
			},
			Loaders: map[string]TeamRate{
				"loaders-2": {Rate: 120, MinimumHours: 2},
				"loaders-3": {Rate: 180, MinimumHours: 2},
			},
			Unloading: map[string]TeamRate{
				"2-1": {Rate: 0, MinimumHours: 2},
				"3-1": {Rate: 0, MinimumHours: 2},
			},
		},
		EstimateLabor: EstimateLaborTable{
			Home: map[string]LaborRange{
				"studio": {MinLabor: 2, MaxLabor: 3},
				"1bed":   {MinLabor: 2.5, MaxLabor: 3.5},
				"2bed":   {MinLabor: 3, MaxLabor: 4},
				"3bed":   {MinLabor: 4, MaxLabor: 5},
				"4bed":   {MinLabor: 5, MaxLabor: 6},
				"5bed":   {MinLabor: 6, MaxLabor: 8},
			},
			Storage: map[string]LaborRange{
				"25":  {MinLabor: 1, MaxLabor: 1.5},
				"50":  {MinLabor: 1.5, MaxLabor: 2},
				"75":  {MinLabor: 2, MaxLabor: 2.5},
				"100": {MinLabor: 2.5, MaxLabor: 3},
				"200": {MinLabor: 3, MaxLabor: 4},
				"300": {MinLabor: 4, MaxLabor: 5},
			},
			Office: map[string]LaborRange{
				"1-4":      {MinLabor: 2, MaxLabor: 3},
				"5-9":      {MinLabor: 3, MaxLabor: 4},
				"10-19":    {MinLabor: 4, MaxLabor: 5},
				"20-49":    {MinLabor: 5, MaxLabor: 7},
				"50-99":    {MinLabor: 7, MaxLabor: 9},
				"over-100": {MinLabor: 10, MaxLabor: 12},
			},
		},
		TravelRate:       0.75,
		PricePerMile:     2.5,
		ProtectionCharge: 15,
		Accessibility: AccessibilityCharges{
			NoElevatorCharge: 25,
			StairsCharge: map[string]float64{
				StairsTierLow:  0,
				StairsTierMid:  25,
				StairsTierHigh: 50,
			},
			WalkingDistance: map[string]float64{
				WalkingTierShort:  0,
				WalkingTierMedium: 15,
				WalkingTierLong:   30,
			},
		},
	}
}

// ResolveRateConfig merges an operator patch over the default rate table.
// The merge happens once, at widget load; downstream code reads the resolved
// table without further fallbacks.
func ResolveRateConfig(patch *RateConfigPatch) RateConfig {
	resolved := DefaultRateConfig()
	if patch == nil {
		return resolved
	}

	if patch.Teams != nil {
		resolved.Teams.Move = mergeTeamGroup(resolved.Teams.Move, patch.Teams.Move)
		resolved.Teams.Loaders = mergeTeamGroup(resolved.Teams.Loaders, patch.Teams.Loaders)
		resolved.Teams.Unloading = mergeTeamGroup(resolved.Teams.Unloading, patch.Teams.Unloading)
	}
	if patch.EstimateLabor != nil {
		resolved.EstimateLabor.Home = mergeLaborGroup(resolved.EstimateLabor.Home, patch.EstimateLabor.Home)
		resolved.EstimateLabor.Storage = mergeLaborGroup(resolved.EstimateLabor.Storage, patch.EstimateLabor.Storage)
		resolved.EstimateLabor.Office = mergeLaborGroup(resolved.EstimateLabor.Office, patch.EstimateLabor.Office)
	}
	if patch.TravelRate != nil {
		resolved.TravelRate = *patch.TravelRate
	}
	if patch.PricePerMile != nil {
		resolved.PricePerMile = *patch.PricePerMile
	}
	if patch.ProtectionCharge != nil {
		resolved.ProtectionCharge = *patch.ProtectionCharge
	}
	if patch.Accessibility != nil {
		if patch.Accessibility.NoElevatorCharge != nil {
			resolved.Accessibility.NoElevatorCharge = *patch.Accessibility.NoElevatorCharge
		}
		resolved.Accessibility.StairsCharge = mergeChargeTiers(resolved.Accessibility.StairsCharge, patch.Accessibility.StairsCharge)
		resolved.Accessibility.WalkingDistance = mergeChargeTiers(resolved.Accessibility.WalkingDistance, patch.Accessibility.WalkingDistance)
	}
	return resolved
}

// Validate checks the structural invariants of a resolved rate table.
func (c RateConfig) Validate() error {
	if c.TravelRate < 0 {
		return errors.New("rate config: travel rate cannot be negative")
	}
	if c.PricePerMile < 0 {
		return errors.New("rate config: price per mile cannot be negative")
	}
	if c.ProtectionCharge < 0 {
		return errors.New("rate config: protection charge cannot be negative")
	}
	if c.Accessibility.NoElevatorCharge < 0 {
		return errors.New("rate config: no-elevator charge cannot be negative")
	}
	for tier, charge := range c.Accessibility.StairsCharge {
		if charge < 0 {
			return fmt.Errorf("rate config: stairs charge %q cannot be negative", tier)
		}
	}
	for tier, charge := range c.Accessibility.WalkingDistance {
		if charge < 0 {
			return fmt.Errorf("rate config: walking charge %q cannot be negative", tier)
		}
	}
	for group, tiers := range map[string]map[string]TeamRate{
		TeamGroupMove:      c.Teams.Move,
		TeamGroupLoaders:   c.Teams.Loaders,
		TeamGroupUnloading: c.Teams.Unloading,
	} {
		for tier, rate := range tiers {
			if rate.Rate < 0 {
				return fmt.Errorf("rate config: %s tier %q rate cannot be negative", group, tier)
			}
			if rate.MinimumHours < 0 {
				return fmt.Errorf("rate config: %s tier %q minimum hours cannot be negative", group, tier)
			}
		}
	}
	for group, buckets := range map[string]map[string]LaborRange{
		"home":    c.EstimateLabor.Home,
		"storage": c.EstimateLabor.Storage,
		"office":  c.EstimateLabor.Office,
	} {
		for bucket, labor := range buckets {
			if labor.MinLabor < 0 {
				return fmt.Errorf("rate config: %s bucket %q min labor cannot be negative", group, bucket)
			}
			if labor.MinLabor > labor.MaxLabor {
				return fmt.Errorf("rate config: %s bucket %q min labor exceeds max labor", group, bucket)
			}
		}
	}
	return nil
}

func mergeTeamGroup(base, overlay map[string]TeamRate) map[string]TeamRate {
	merged := make(map[string]TeamRate, len(base)+len(overlay))
	for tier, rate := range base {
		merged[tier] = rate
	}
	for tier, rate := range overlay {
		merged[tier] = rate
	}
	return merged
}

func mergeLaborGroup(base, overlay map[string]LaborRange) map[string]LaborRange {
	merged := make(map[string]LaborRange, len(base)+len(overlay))
	for bucket, labor := range base {
		merged[bucket] = labor
	}
	for bucket, labor := range overlay {
		merged[bucket] = labor
	}
	return merged
}

func mergeChargeTiers(base, overlay map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(base)+len(overlay))
	for tier, charge := range base {
		merged[tier] = charge
	}
	for tier, charge := range overlay {
		merged[tier] = charge
	}
	return merged
}
