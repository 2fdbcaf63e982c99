package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"floorgrid/internal/domain"
)

// Engine is the floor-grid allocation engine. It assigns grid cells to
// donors, pools sub-threshold amounts, and records every allocation as a
// reversible batch. All mutating operations run inside a single database
// transaction supplied by the injected TxRunner.
type Engine struct {
	store domain.TxRunner
	log   zerolog.Logger
	audit AuditSink
}

// New creates an Engine. A nil audit sink falls back to logging events
// through the engine logger.
func New(store domain.TxRunner, log zerolog.Logger, audit AuditSink) *Engine {
	if audit == nil {
		audit = LogSink{Log: log}
	}
	return &Engine{store: store, log: log, audit: audit}
}

// AllocateRequest describes one allocation attempt. Exactly one of PledgeID
// and PaymentID must be set; the engine assumes the amount was validated
// upstream.
type AllocateRequest struct {
	PledgeID    *string
	PaymentID   *string
	AmountPence int64
	Package     *domain.Package
	DonorName   string
	Status      domain.CellStatus
	BatchID     *string
}

// AllocationResult reports a committed allocation. PooledPence is the part
// of the amount routed to the shared accumulator.
type AllocationResult struct {
	AllocatedCellIDs []string
	AreaAllocatedM2  float64
	PooledPence      int64
}

// DeallocationResult reports the cells returned to available.
type DeallocationResult struct {
	DeallocatedCellIDs []string
}

func (r AllocateRequest) validate() error {
	if (r.PledgeID == nil) == (r.PaymentID == nil) {
		return fmt.Errorf("%w: exactly one of pledge and payment reference required", domain.ErrInvalidArea)
	}
	if r.Status != domain.CellPledged && r.Status != domain.CellPaid {
		return fmt.Errorf("%w: status must be pledged or paid", domain.ErrInvalidArea)
	}
	if r.DonorName == "" {
		return fmt.Errorf("%w: donor name required", domain.ErrInvalidArea)
	}
	return nil
}

// Allocate resolves the amount to an area, claims that many cells for the
// donor and routes any remainder to the shared pool, all in one
// transaction. Sub-threshold amounts are pooled in full and claim nothing.
func (e *Engine) Allocate(ctx context.Context, req AllocateRequest) (*AllocationResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	units, remainder, err := ResolveArea(req.AmountPence, req.Package)
	if err != nil {
		return nil, err
	}

	claim := domain.CellClaim{
		Status:    req.Status,
		PledgeID:  req.PledgeID,
		PaymentID: req.PaymentID,
		DonorName: NormalizeDonorName(req.DonorName),
	}
	if req.BatchID != nil {
		id, err := parseBatchID(*req.BatchID)
		if err != nil {
			return nil, err
		}
		claim.BatchID = &id
	}

	var cellIDs []string
	err = e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		if units > 0 {
			var claimErr error
			cellIDs, claimErr = e.claimCells(ctx, tx, units, claim)
			if claimErr != nil {
				return claimErr
			}
		}
		if remainder > 0 {
			if _, poolErr := tx.Pool().Add(ctx, remainder); poolErr != nil {
				return poolErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &AllocationResult{
		AllocatedCellIDs: cellIDs,
		AreaAllocatedM2:  float64(units) * 0.25,
		PooledPence:      remainder,
	}
	e.audit.Record(ctx, AuditEvent{
		Action:      "allocate",
		PledgeID:    req.PledgeID,
		PaymentID:   req.PaymentID,
		CellIDs:     cellIDs,
		AreaM2:      result.AreaAllocatedM2,
		AmountPence: req.AmountPence,
	})
	if remainder > 0 {
		e.drainPool(ctx)
	}
	return result, nil
}

// GridStatus returns the cells of the grid, optionally filtered by
// rectangle, for visualization.
func (e *Engine) GridStatus(ctx context.Context, rectangle string) ([]domain.GridCell, error) {
	var cells []domain.GridCell
	err := e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		var listErr error
		cells, listErr = tx.Cells().List(ctx, rectangle)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return cells, nil
}

// AllocationStats aggregates grid occupancy and campaign progress.
func (e *Engine) AllocationStats(ctx context.Context) (*domain.GridStats, error) {
	var stats *domain.GridStats
	err := e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		var statsErr error
		stats, statsErr = tx.Cells().Stats(ctx)
		return statsErr
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
