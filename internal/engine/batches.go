package engine

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"floorgrid/internal/domain"
)

var batchValidate = validator.New()

// CreateBatchRequest captures one allocation request. Original references
// point at a donor's prior allocation when an existing allocation is being
// updated rather than created fresh.
type CreateBatchRequest struct {
	BatchType         string  `validate:"required"`
	RequestType       string  `validate:"required,oneof=create update"`
	OriginalPledgeID  *string `validate:"-"`
	OriginalPaymentID *string `validate:"-"`
	NewPledgeID       *string `validate:"-"`
	NewPaymentID      *string `validate:"-"`
	DonorID           *string `validate:"-"`
	DonorName         string  `validate:"required"`
	DonorPhone        *string `validate:"-"`
	OriginalAmount    int64   `validate:"min=0"`
	AdditionalAmount  int64   `validate:"min=0"`
	TotalAmount       int64   `validate:"required,gt=0"`
	PackageID         *string `validate:"-"`
}

func parseBatchID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a batch id", domain.ErrBatchNotFound, raw)
	}
	return id, nil
}

// CreateBatch records a pending allocation batch and returns its id.
func (e *Engine) CreateBatch(ctx context.Context, req CreateBatchRequest) (uuid.UUID, error) {
	if err := batchValidate.Struct(req); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrInvalidBatchTransition, err)
	}
	batch := &domain.AllocationBatch{
		BatchType:         req.BatchType,
		RequestType:       req.RequestType,
		OriginalPledgeID:  req.OriginalPledgeID,
		OriginalPaymentID: req.OriginalPaymentID,
		NewPledgeID:       req.NewPledgeID,
		NewPaymentID:      req.NewPaymentID,
		DonorID:           req.DonorID,
		DonorName:         NormalizeDonorName(req.DonorName),
		DonorPhone:        req.DonorPhone,
		OriginalAmount:    req.OriginalAmount,
		AdditionalAmount:  req.AdditionalAmount,
		TotalAmount:       req.TotalAmount,
		PackageID:         req.PackageID,
	}
	err := e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		return tx.Batches().Create(ctx, batch)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return batch.ID, nil
}

// GetBatch looks up one batch.
func (e *Engine) GetBatch(ctx context.Context, batchID string) (*domain.AllocationBatch, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}
	var batch *domain.AllocationBatch
	err = e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		var getErr error
		batch, getErr = tx.Batches().Get(ctx, id)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// ApproveBatch records the cell set and area that the allocator actually
// claimed for a pending batch. The recorded set is the authoritative record
// for a later undo, so it must mirror the committed cell mutation.
func (e *Engine) ApproveBatch(ctx context.Context, batchID string, cellIDs []string, areaM2 float64, approverID string) error {
	id, err := parseBatchID(batchID)
	if err != nil {
		return err
	}
	if len(cellIDs) == 0 {
		return fmt.Errorf("%w: approval requires the claimed cell set", domain.ErrInvalidBatchTransition)
	}
	return e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		batch, err := tx.Batches().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if batch.ApprovalStatus != domain.BatchPending {
			return fmt.Errorf("%w: batch is %s, not pending", domain.ErrInvalidBatchTransition, batch.ApprovalStatus)
		}
		return tx.Batches().MarkApproved(ctx, id, cellIDs, areaM2, approverID)
	})
}

// RejectBatch resolves a pending batch without touching any cell.
func (e *Engine) RejectBatch(ctx context.Context, batchID string) error {
	id, err := parseBatchID(batchID)
	if err != nil {
		return err
	}
	return e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		batch, err := tx.Batches().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if batch.ApprovalStatus != domain.BatchPending {
			return fmt.Errorf("%w: batch is %s, not pending", domain.ErrInvalidBatchTransition, batch.ApprovalStatus)
		}
		return tx.Batches().MarkRejected(ctx, id)
	})
}

// ApproveAndAllocate runs the approval flow end to end in one transaction:
// claim cells for the batch amount, route any remainder to the pool, and
// record the claimed set on the batch. For update requests the cells of the
// original references are released first. Sub-threshold batch amounts are
// not approvable; they go through Allocate, which pools them.
func (e *Engine) ApproveAndAllocate(ctx context.Context, batchID, approverID string, pkg *domain.Package) (*AllocationResult, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}

	var result AllocationResult
	err = e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		batch, err := tx.Batches().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if batch.ApprovalStatus != domain.BatchPending {
			return fmt.Errorf("%w: batch is %s, not pending", domain.ErrInvalidBatchTransition, batch.ApprovalStatus)
		}

		units, remainder, err := ResolveArea(batch.TotalAmount, pkg)
		if err != nil {
			return err
		}
		if units == 0 {
			return fmt.Errorf("%w: amount below allocation threshold", domain.ErrInvalidArea)
		}

		if batch.RequestType == "update" {
			if _, err := e.releaseByRef(ctx, tx, batch.OriginalPledgeID, batch.OriginalPaymentID); err != nil {
				return err
			}
		}

		status := domain.CellPledged
		if batch.NewPaymentID != nil {
			status = domain.CellPaid
		}
		claim := domain.CellClaim{
			Status:    status,
			PledgeID:  batch.NewPledgeID,
			PaymentID: batch.NewPaymentID,
			DonorName: batch.DonorName,
			BatchID:   &id,
		}
		cellIDs, err := e.claimCells(ctx, tx, units, claim)
		if err != nil {
			return err
		}
		if remainder > 0 {
			if _, err := tx.Pool().Add(ctx, remainder); err != nil {
				return err
			}
		}

		areaM2 := float64(units) * 0.25
		if err := tx.Batches().MarkApproved(ctx, id, cellIDs, areaM2, approverID); err != nil {
			return err
		}
		result = AllocationResult{
			AllocatedCellIDs: cellIDs,
			AreaAllocatedM2:  areaM2,
			PooledPence:      remainder,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.audit.Record(ctx, AuditEvent{
		Action:  "approve_batch",
		BatchID: &id,
		CellIDs: result.AllocatedCellIDs,
		AreaM2:  result.AreaAllocatedM2,
	})
	if result.PooledPence > 0 {
		e.drainPool(ctx)
	}
	return &result, nil
}

// DeallocateBatch undoes an approved batch: the exact recorded cell set is
// restored to available, its conflicts are unblocked, and the batch becomes
// cancelled. A second call on the same batch fails with
// ErrInvalidBatchTransition.
func (e *Engine) DeallocateBatch(ctx context.Context, batchID string) (*DeallocationResult, error) {
	id, err := parseBatchID(batchID)
	if err != nil {
		return nil, err
	}

	var freed []string
	err = e.store.WithTx(ctx, func(tx domain.RepoTx) error {
		batch, err := tx.Batches().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if batch.ApprovalStatus != domain.BatchApproved {
			return fmt.Errorf("%w: batch is %s, not approved", domain.ErrInvalidBatchTransition, batch.ApprovalStatus)
		}

		cells, err := tx.Cells().GetForUpdate(ctx, batch.AllocatedCellIDs)
		if err != nil {
			return err
		}
		if err := e.releaseCells(ctx, tx, cells); err != nil {
			return err
		}
		freed = batch.AllocatedCellIDs
		return tx.Batches().MarkCancelled(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	e.audit.Record(ctx, AuditEvent{
		Action:  "deallocate_batch",
		BatchID: &id,
		CellIDs: freed,
	})
	return &DeallocationResult{DeallocatedCellIDs: freed}, nil
}
