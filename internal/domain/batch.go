package domain

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the approval state of an allocation batch.
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchApproved  BatchStatus = "approved"
	BatchRejected  BatchStatus = "rejected"
	BatchCancelled BatchStatus = "cancelled"
)

// AllocationBatch records one allocation request end to end: the donor, the
// amounts, prior and candidate pledge/payment references, and, once
// approved, the exact cell set that was claimed. The batch is the unit of
// undo; it is never deleted.
type AllocationBatch struct {
	ID                uuid.UUID
	BatchType         string
	RequestType       string
	OriginalPledgeID  *string
	OriginalPaymentID *string
	NewPledgeID       *string
	NewPaymentID      *string
	DonorID           *string
	DonorName         string
	DonorPhone        *string
	OriginalAmount    int64
	AdditionalAmount  int64
	TotalAmount       int64
	ApprovalStatus    BatchStatus
	AllocatedCellIDs  []string
	AllocatedArea     float64
	PackageID         *string
	RequestedAt       time.Time
	ApprovedAt        *time.Time
	RejectedAt        *time.Time
}

// Package is the fixed area/price metadata attached to a packaged donation.
// The engine treats it as caller-supplied input, not a persisted entity.
type Package struct {
	ID           string
	QuarterUnits int
	PricePence   int64
}
