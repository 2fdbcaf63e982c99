package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"floorgrid/internal/domain"
	"floorgrid/internal/sqlinline"
)

// BatchRepositoryPG implements domain.BatchRepository using PostgreSQL.
type BatchRepositoryPG struct {
	db DBTX
}

// NewBatchRepository creates a batch repo bound to the given querier.
func NewBatchRepository(db DBTX) *BatchRepositoryPG {
	return &BatchRepositoryPG{db: db}
}

func (r *BatchRepositoryPG) Create(ctx context.Context, batch *domain.AllocationBatch) error {
	row := r.db.QueryRow(ctx, sqlinline.QInsertBatch,
		batch.BatchType, batch.RequestType,
		batch.OriginalPledgeID, batch.OriginalPaymentID,
		batch.NewPledgeID, batch.NewPaymentID,
		batch.DonorID, batch.DonorName, batch.DonorPhone,
		batch.OriginalAmount, batch.AdditionalAmount, batch.TotalAmount,
		batch.PackageID,
	)
	if err := row.Scan(&batch.ID, &batch.RequestedAt); err != nil {
		return fmt.Errorf("%w: insert batch: %v", domain.ErrPersistence, err)
	}
	batch.ApprovalStatus = domain.BatchPending
	return nil
}

func scanBatch(row pgx.Row) (*domain.AllocationBatch, error) {
	var batch domain.AllocationBatch
	err := row.Scan(
		&batch.ID, &batch.BatchType, &batch.RequestType,
		&batch.OriginalPledgeID, &batch.OriginalPaymentID,
		&batch.NewPledgeID, &batch.NewPaymentID,
		&batch.DonorID, &batch.DonorName, &batch.DonorPhone,
		&batch.OriginalAmount, &batch.AdditionalAmount, &batch.TotalAmount,
		&batch.ApprovalStatus, &batch.AllocatedCellIDs, &batch.AllocatedArea,
		&batch.PackageID, &batch.RequestedAt, &batch.ApprovedAt, &batch.RejectedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan batch: %v", domain.ErrPersistence, err)
	}
	return &batch, nil
}

func (r *BatchRepositoryPG) Get(ctx context.Context, id uuid.UUID) (*domain.AllocationBatch, error) {
	return scanBatch(r.db.QueryRow(ctx, sqlinline.QGetBatch, id))
}

func (r *BatchRepositoryPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AllocationBatch, error) {
	return scanBatch(r.db.QueryRow(ctx, sqlinline.QGetBatchForUpdate, id))
}

func (r *BatchRepositoryPG) MarkApproved(ctx context.Context, id uuid.UUID, cellIDs []string, areaM2 float64, approverID string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QApproveBatch, id, cellIDs, areaM2, approverID)
	if err != nil {
		return fmt.Errorf("%w: approve batch: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrInvalidBatchTransition
	}
	return nil
}

func (r *BatchRepositoryPG) MarkRejected(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, sqlinline.QRejectBatch, id)
	if err != nil {
		return fmt.Errorf("%w: reject batch: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrInvalidBatchTransition
	}
	return nil
}

func (r *BatchRepositoryPG) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, sqlinline.QCancelBatch, id)
	if err != nil {
		return fmt.Errorf("%w: cancel batch: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrInvalidBatchTransition
	}
	return nil
}
