package domain

import (
	"context"

	"github.com/google/uuid"
)

// CellClaim carries the donor fields written onto a cell when it is claimed.
type CellClaim struct {
	Status      CellStatus
	PledgeID    *string
	PaymentID   *string
	DonorName   string
	AmountPence int64
	BatchID     *uuid.UUID
}

// CellRepository is the persistence contract for grid cells. Mutating
// methods are only ever called inside a transaction (see TxRunner); the
// ForUpdate variants take row locks so concurrent allocators cannot select
// the same rows.
type CellRepository interface {
	// SelectAvailableForUpdate returns up to limit available cells of the
	// given tier, ordered by rectangle then position, locked for update.
	SelectAvailableForUpdate(ctx context.Context, cellType CellType, limit int) ([]GridCell, error)
	// GetForUpdate loads the named cells with row locks, in id order.
	GetForUpdate(ctx context.Context, cellIDs []string) ([]GridCell, error)
	// Claim writes donor fields and the claimed status onto one cell.
	Claim(ctx context.Context, cellID string, claim CellClaim) error
	// Block marks available cells blocked; it reports how many rows changed.
	Block(ctx context.Context, cellIDs []string) (int, error)
	// Release returns occupied cells to available, clearing donor fields.
	Release(ctx context.Context, cellIDs []string) error
	// UnblockIfUnconflicted frees one blocked cell provided none of the
	// given conflicting cells is still occupied.
	UnblockIfUnconflicted(ctx context.Context, cellID string, conflictIDs []string) (bool, error)
	// FindByDonorRefForUpdate returns occupied cells referencing the given
	// pledge or payment id, locked for update.
	FindByDonorRefForUpdate(ctx context.Context, pledgeID, paymentID *string) ([]GridCell, error)
	// List returns cells for visualization, optionally filtered by rectangle.
	List(ctx context.Context, rectangle string) ([]GridCell, error)
	// Stats aggregates grid occupancy.
	Stats(ctx context.Context) (*GridStats, error)
}

// BatchRepository persists allocation batches.
type BatchRepository interface {
	Create(ctx context.Context, batch *AllocationBatch) error
	Get(ctx context.Context, id uuid.UUID) (*AllocationBatch, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*AllocationBatch, error)
	MarkApproved(ctx context.Context, id uuid.UUID, cellIDs []string, areaM2 float64, approverID string) error
	MarkRejected(ctx context.Context, id uuid.UUID) error
	MarkCancelled(ctx context.Context, id uuid.UUID) error
}

// PoolRepository persists the single shared custom-amount accumulator row.
type PoolRepository interface {
	GetForUpdate(ctx context.Context) (*CustomAmountPool, error)
	// Add credits a contribution to total and remaining.
	Add(ctx context.Context, amountPence int64) (*CustomAmountPool, error)
	// RecordAllocation moves value from remaining to allocated.
	RecordAllocation(ctx context.Context, amountPence int64) error
}

// RepoTx groups the repositories bound to one open transaction.
type RepoTx interface {
	Cells() CellRepository
	Batches() BatchRepository
	Pool() PoolRepository
}

// TxRunner executes fn inside a single database transaction: commit on nil,
// full rollback on error. Partial mutation is never observable.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx RepoTx) error) error
}
