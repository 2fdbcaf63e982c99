package engine

import (
	"fmt"

	"floorgrid/internal/domain"
)

// UnitPricePence is the price of one quarter-unit (0.25 m²): £100.
const UnitPricePence int64 = 10000

// Amount thresholds, checked coarsest first. An amount below the quarter
// threshold buys no cell of its own and is pooled in full.
const (
	fullThresholdPence    = 4 * UnitPricePence
	halfThresholdPence    = 2 * UnitPricePence
	quarterThresholdPence = 1 * UnitPricePence
)

// ResolveArea maps a donation amount (and optional package) to the number of
// quarter-units to claim plus the remainder routed to the shared pool. A
// zero unit count means the entire amount is pooled. The remainder is never
// lost and never allocated again against the same request.
func ResolveArea(amountPence int64, pkg *domain.Package) (units int, remainderPence int64, err error) {
	if amountPence <= 0 {
		return 0, 0, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidArea)
	}

	if pkg != nil {
		units = pkg.QuarterUnits
		if units < 1 {
			units = 1
		}
		if rem := amountPence - pkg.PricePence; rem > 0 {
			remainderPence = rem
		}
		return units, remainderPence, nil
	}

	switch {
	case amountPence >= fullThresholdPence:
		units = 4
	case amountPence >= halfThresholdPence:
		units = 2
	case amountPence >= quarterThresholdPence:
		units = 1
	default:
		return 0, amountPence, nil
	}
	return units, amountPence - int64(units)*UnitPricePence, nil
}

// decompose splits a quarter-unit count into the coarsest cell tiers that
// cover it: one 1x1 per four units, then one 1x0.5 per two, then quarters.
func decompose(units int) []domain.CellType {
	var plan []domain.CellType
	for units >= 4 {
		plan = append(plan, domain.CellFull)
		units -= 4
	}
	for units >= 2 {
		plan = append(plan, domain.CellHalf)
		units -= 2
	}
	for units >= 1 {
		plan = append(plan, domain.CellQuarter)
		units--
	}
	return plan
}
