package services

import (
	domain "github.com/movewidget/api/internal/domain"
)

// ComputeEstimate derives the price breakdown for the current selection.
// It is pure and total: any structurally valid input produces a result,
// missing optional inputs degrade to zero cost, and a missing rate entry for
// a selected tier or bucket falls back to the tier's minimum hours rather
// than failing. Currency amounts are not rounded here; formatting belongs to
// the presentation layer.
func ComputeEstimate(cfg domain.RateConfig, sel domain.Selection, dist *domain.Distance, promo *domain.PromoCode) domain.EstimateResult {
	team, _ := resolveTeamRate(cfg.Teams, sel)
	minLabor, maxLabor := resolveLaborRange(cfg.EstimateLabor, sel, team.MinimumHours)

	result := domain.EstimateResult{
		TeamTier:      sel.TeamTier,
		HourlyRate:    team.Rate,
		MinLaborHours: minLabor,
		MaxLaborHours: maxLabor,
		MinLaborCost:  minLabor * team.Rate,
		MaxLaborCost:  maxLabor * team.Rate,
	}

	if dist != nil {
		result.TravelCost = dist.TravelHours * team.Rate * cfg.TravelRate
		result.DistanceCost = dist.Miles * cfg.PricePerMile
	}

	result.AccessibilityCost = locationAccessibilityCost(cfg.Accessibility, sel.Origin) +
		locationAccessibilityCost(cfg.Accessibility, sel.Destination)

	if sel.ProtectionSelected {
		result.ProtectionCost = cfg.ProtectionCharge
	}

	shared := result.TravelCost + result.DistanceCost + result.AccessibilityCost + result.ProtectionCost
	result.MinTotal = result.MinLaborCost + shared
	result.MaxTotal = result.MaxLaborCost + shared

	result.DiscountedMinTotal = result.MinTotal
	result.DiscountedMaxTotal = result.MaxTotal
	if promo != nil {
		result.DiscountedMinTotal = ApplyPromoDiscount(result.MinTotal, *promo)
		result.DiscountedMaxTotal = ApplyPromoDiscount(result.MaxTotal, *promo)
	}

	return result
}

// resolveTeamRate reads the crew pricing for the selected tier. An absent
// tier yields a zero rate so the estimate stays evaluable.
func resolveTeamRate(teams domain.TeamRates, sel domain.Selection) (domain.TeamRate, bool) {
	var group map[string]domain.TeamRate
	switch sel.TeamGroup() {
	case domain.TeamGroupLoaders:
		group = teams.Loaders
	case domain.TeamGroupUnloading:
		group = teams.Unloading
	default:
		group = teams.Move
	}
	rate, ok := group[sel.TeamTier]
	if !ok {
		return domain.TeamRate{}, false
	}
	return rate, true
}

// resolveLaborRange produces the labor-hour band. Explicit hours collapse the
// band to a fixed point clamped up to the tier minimum; size-derived ranges
// are floored at the tier minimum and max never drops below min.
func resolveLaborRange(table domain.EstimateLaborTable, sel domain.Selection, minimumHours float64) (float64, float64) {
	if sel.FixedHours() {
		hours := sel.ExplicitHours
		if hours < minimumHours {
			hours = minimumHours
		}
		return hours, hours
	}

	var group map[string]domain.LaborRange
	switch sel.MoveType {
	case domain.MoveTypeStorage:
		group = table.Storage
	case domain.MoveTypeOffice:
		group = table.Office
	default:
		group = table.Home
	}

	labor, ok := group[sel.SizeBucket]
	if !ok {
		labor = domain.LaborRange{MinLabor: minimumHours, MaxLabor: minimumHours}
	}

	minLabor := labor.MinLabor
	if minLabor < minimumHours {
		minLabor = minimumHours
	}
	maxLabor := labor.MaxLabor
	if maxLabor < minLabor {
		maxLabor = minLabor
	}
	return minLabor, maxLabor
}

// locationAccessibilityCost sums the surcharges one location contributes.
// The walking tier always charges; "short" is only free because the default
// table prices it at zero. An unset walking tier is treated as short.
func locationAccessibilityCost(charges domain.AccessibilityCharges, loc *domain.Location) float64 {
	if loc == nil {
		return 0
	}

	var cost float64
	if !loc.HasElevator {
		cost += charges.NoElevatorCharge
	}
	if loc.StairsTier != "" && loc.StairsTier != domain.StairsTierNone {
		cost += charges.StairsCharge[loc.StairsTier]
	}
	walking := loc.WalkingTier
	if walking == "" {
		walking = domain.WalkingTierShort
	}
	cost += charges.WalkingDistance[walking]
	return cost
}

// RecommendedTeamTier picks the crew tier a full-service move defaults to
// based on the size bucket, so those flows skip the team screen.
func RecommendedTeamTier(sel domain.Selection) string {
	if sel.ServiceType == domain.ServiceTypeLaborOnly {
		return ""
	}
	switch sel.MoveType {
	case domain.MoveTypeHome:
		switch sel.SizeBucket {
		case "studio", "1bed", "2bed":
			return "2-1"
		case "3bed":
			return "3-1"
		case "4bed":
			return "3-2"
		default:
			return "4-2"
		}
	case domain.MoveTypeOffice:
		switch sel.SizeBucket {
		case "1-4", "5-9":
			return "2-1"
		case "10-19":
			return "3-1"
		default:
			return "4-2"
		}
	default:
		return "2-1"
	}
}
