package engine

import (
	"context"
	"fmt"

	"floorgrid/internal/domain"
)

// scanHeadroom is the extra number of candidate rows locked beyond the
// strict need, so that a candidate discarded over an inconsistent conflict
// does not immediately fail the request.
const scanHeadroom = 8

// claimCells claims cells covering the given quarter-unit count inside the
// open transaction. Units are covered coarse-first; the whole claim fails
// with ErrInsufficientSpace when any tier cannot supply enough conflict-free
// cells, and the caller's rollback leaves the grid untouched.
func (e *Engine) claimCells(ctx context.Context, tx domain.RepoTx, units int, claim domain.CellClaim) ([]string, error) {
	if units < 1 {
		return nil, fmt.Errorf("%w: no units to claim", domain.ErrInvalidArea)
	}

	need := map[domain.CellType]int{}
	for _, tier := range decompose(units) {
		need[tier]++
	}

	var claimed []string
	for _, tier := range []domain.CellType{domain.CellFull, domain.CellHalf, domain.CellQuarter} {
		n := need[tier]
		if n == 0 {
			continue
		}
		ids, err := e.claimTier(ctx, tx, tier, n, claim)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, ids...)
	}
	return claimed, nil
}

// claimTier claims exactly n available cells of one tier, in deterministic
// rectangle-then-position order, blocking each claimed cell's overlapping
// cells in the same transaction.
func (e *Engine) claimTier(ctx context.Context, tx domain.RepoTx, tier domain.CellType, n int, claim domain.CellClaim) ([]string, error) {
	candidates, err := tx.Cells().SelectAvailableForUpdate(ctx, tier, n+scanHeadroom)
	if err != nil {
		return nil, err
	}

	cellAmount := int64(tier.QuarterUnits()) * UnitPricePence
	var claimed []string
	for _, cand := range candidates {
		if len(claimed) == n {
			break
		}
		conflictIDs := domain.ConflictIDs(cand.Ref())
		conflicts, err := tx.Cells().GetForUpdate(ctx, conflictIDs)
		if err != nil {
			return nil, err
		}
		if occupied := occupiedIDs(conflicts); len(occupied) > 0 {
			// An occupied overlap of an available cell means earlier
			// bookkeeping went inconsistent; skip the candidate.
			e.log.Warn().
				Str("cell_id", cand.ID).
				Strs("occupied_conflicts", occupied).
				Msg("skipping candidate with occupied conflicts")
			continue
		}

		cellClaim := claim
		cellClaim.AmountPence = cellAmount
		if err := tx.Cells().Claim(ctx, cand.ID, cellClaim); err != nil {
			return nil, err
		}
		if _, err := tx.Cells().Block(ctx, conflictIDs); err != nil {
			return nil, err
		}
		claimed = append(claimed, cand.ID)
	}

	if len(claimed) < n {
		return nil, fmt.Errorf("%w: need %d %s cells, found %d",
			domain.ErrInsufficientSpace, n, tier, len(claimed))
	}
	return claimed, nil
}

func occupiedIDs(cells []domain.GridCell) []string {
	var ids []string
	for _, c := range cells {
		if c.Status.Occupied() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
