package engine

import (
	"context"
	"fmt"

	"floorgrid/internal/domain"
)

// Deallocate frees every cell currently referencing the given pledge or
// payment id and unblocks their conflict sets. It is idempotent: a
// reference with no matching cells succeeds with an empty result.
func (e *Engine) Deallocate(ctx context.Context, pledgeID, paymentID *string) (*DeallocationResult, error) {
	if pledgeID == nil && paymentID == nil {
		return nil, fmt.Errorf("%w: a pledge or payment reference is required", domain.ErrInvalidArea)
	}

	var freed []string
	err := e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		var relErr error
		freed, relErr = e.releaseByRef(ctx, tx, pledgeID, paymentID)
		return relErr
	})
	if err != nil {
		return nil, err
	}

	if len(freed) > 0 {
		e.audit.Record(ctx, AuditEvent{
			Action:    "deallocate",
			PledgeID:  pledgeID,
			PaymentID: paymentID,
			CellIDs:   freed,
		})
	}
	return &DeallocationResult{DeallocatedCellIDs: freed}, nil
}

// releaseByRef finds and releases the occupied cells of a donor reference
// inside the open transaction. No matches is a successful no-op.
func (e *Engine) releaseByRef(ctx context.Context, tx domain.RepoTx, pledgeID, paymentID *string) ([]string, error) {
	if pledgeID == nil && paymentID == nil {
		return nil, nil
	}
	cells, err := tx.Cells().FindByDonorRefForUpdate(ctx, pledgeID, paymentID)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, nil
	}
	if err := e.releaseCells(ctx, tx, cells); err != nil {
		return nil, err
	}
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.ID
	}
	return ids, nil
}

// releaseCells restores the given occupied cells to available and unblocks
// exactly the overlapping cells this allocation had blocked. A blocked cell
// stays blocked while any other overlapping cell is still occupied: two
// sibling quarters block the same parent, and freeing one must not free the
// parent under the other.
func (e *Engine) releaseCells(ctx context.Context, tx domain.RepoTx, cells []domain.GridCell) error {
	ids := make([]string, len(cells))
	for i, c := range cells {
		ids[i] = c.ID
	}
	if err := tx.Cells().Release(ctx, ids); err != nil {
		return err
	}
	for _, cell := range cells {
		for _, conflict := range domain.Conflicts(cell.Ref()) {
			_, err := tx.Cells().UnblockIfUnconflicted(ctx, conflict.ID(), domain.ConflictIDs(conflict))
			if err != nil {
				return err
			}
		}
	}
	return nil
}
