package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"floorgrid/internal/domain"
)

// Contribute adds a sub-threshold amount to the shared pool and then tries
// to convert pooled value into a collective allocation. The contribution
// itself always commits; a failed conversion is logged and retried on the
// next contribution.
func (e *Engine) Contribute(ctx context.Context, amountPence int64) (*domain.CustomAmountPool, error) {
	if amountPence <= 0 {
		return nil, fmt.Errorf("%w: contribution must be positive", domain.ErrInvalidArea)
	}
	var pool *domain.CustomAmountPool
	err := e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		var addErr error
		pool, addErr = tx.Pool().Add(ctx, amountPence)
		return addErr
	})
	if err != nil {
		return nil, err
	}
	e.drainPool(ctx)
	return pool, nil
}

// drainPool converts pooled value into collective allocations while the
// remaining balance is at or above the quarter threshold. Each conversion
// is its own transaction; running out of space defers the conversion
// rather than failing the donation that triggered it.
func (e *Engine) drainPool(ctx context.Context) {
	for {
		var allocated []string
		var value int64
		err := e.store.WithTx(ctx, func(tx domain.RepoTx) error {
			pool, err := tx.Pool().GetForUpdate(ctx)
			if err != nil {
				return err
			}
			if pool.RemainingPence < quarterThresholdPence {
				allocated = nil
				return nil
			}
			units, _, err := ResolveArea(pool.RemainingPence, nil)
			if err != nil {
				return err
			}

			// Collective cells carry a synthetic payment reference so the
			// donor-reference invariant holds and a specific collective
			// allocation stays individually reversible.
			poolRef := "pool-" + uuid.NewString()
			claim := domain.CellClaim{
				Status:    domain.CellPaid,
				PaymentID: &poolRef,
				DonorName: domain.CollectiveDonorName,
			}
			allocated, err = e.claimCells(ctx, tx, units, claim)
			if err != nil {
				return err
			}
			value = int64(units) * UnitPricePence
			return tx.Pool().RecordAllocation(ctx, value)
		})
		if errors.Is(err, domain.ErrInsufficientSpace) {
			e.log.Warn().Err(err).Msg("pool conversion deferred: no space available")
			return
		}
		if err != nil {
			e.log.Error().Err(err).Msg("pool conversion failed")
			return
		}
		if len(allocated) == 0 {
			return
		}
		e.audit.Record(ctx, AuditEvent{
			Action:      "pool_allocate",
			CellIDs:     allocated,
			AreaM2:      float64(value) / float64(UnitPricePence) * 0.25,
			AmountPence: value,
		})
	}
}
