package domain

import "time"

// CollectiveDonorName is stamped on cells allocated from the shared pool.
// Sub-threshold contributions are pooled anonymously; the collective
// allocation is attributable to no single donor.
const CollectiveDonorName = "Collective (Multiple Donors)"

// CustomAmountPool is the single shared accumulator for contributions below
// the minimum allocatable amount. Invariant: TotalPence equals
// AllocatedPence + RemainingPence after every mutation.
type CustomAmountPool struct {
	TotalPence     int64
	AllocatedPence int64
	RemainingPence int64
	LastUpdated    time.Time
}
