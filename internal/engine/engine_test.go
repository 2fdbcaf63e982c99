package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorgrid/internal/domain"
)

func newTestEngine(store *memStore) *Engine {
	return New(store, zerolog.Nop(), nil)
}

func strptr(s string) *string { return &s }

func cellStatus(t *testing.T, store *memStore, id string) domain.CellStatus {
	t.Helper()
	cell, ok := store.cells[id]
	require.True(t, ok, "cell %s must exist", id)
	return cell.Status
}

func TestAllocateFullSquareBlocksChildren(t *testing.T) {
	store := newMemStore("A", 2)
	eng := newTestEngine(store)

	result, err := eng.Allocate(context.Background(), AllocateRequest{
		PledgeID:    strptr("pl-1"),
		AmountPence: 40_000,
		DonorName:   "Asha Patel",
		Status:      domain.CellPledged,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1010-01"}, result.AllocatedCellIDs)
	assert.Equal(t, 1.0, result.AreaAllocatedM2)
	assert.Zero(t, result.PooledPence)

	assert.Equal(t, domain.CellPledged, cellStatus(t, store, "A1010-01"))
	for _, id := range []string{"A1005-01", "A1005-02", "A0505-01", "A0505-02", "A0505-03", "A0505-04"} {
		assert.Equal(t, domain.CellBlocked, cellStatus(t, store, id), "conflict %s must be blocked", id)
	}
	// The neighbouring square is untouched.
	assert.Equal(t, domain.CellAvailable, cellStatus(t, store, "A1010-02"))
}

func TestAllocateRemainderIsPooledAndConverted(t *testing.T) {
	store := newMemStore("A", 4)
	eng := newTestEngine(store)

	result, err := eng.Allocate(context.Background(), AllocateRequest{
		PaymentID:   strptr("pay-1"),
		AmountPence: 35_000,
		DonorName:   "Bilal Khan",
		Status:      domain.CellPaid,
	})
	require.NoError(t, err)
	require.Len(t, result.AllocatedCellIDs, 1)
	assert.Equal(t, "A1005-01", result.AllocatedCellIDs[0])
	assert.Equal(t, 0.5, result.AreaAllocatedM2)
	assert.Equal(t, int64(15_000), result.PooledPence)

	// The pooled £150 crossed the threshold, so £100 converted into a
	// collective quarter and £50 stays pooled.
	assert.Equal(t, int64(15_000), store.pool.TotalPence)
	assert.Equal(t, int64(10_000), store.pool.AllocatedPence)
	assert.Equal(t, int64(5_000), store.pool.RemainingPence)

	var collective *domain.GridCell
	for _, c := range store.cells {
		if c.Status.Occupied() && c.DonorName != nil && *c.DonorName == domain.CollectiveDonorName {
			collective = c
			break
		}
	}
	require.NotNil(t, collective, "a collective cell must be claimed")
	assert.Equal(t, domain.CellQuarter, collective.Type)
}

func TestAllocateValidatesDonorReference(t *testing.T) {
	eng := newTestEngine(newMemStore("A", 1))

	_, err := eng.Allocate(context.Background(), AllocateRequest{
		AmountPence: 10_000,
		DonorName:   "No Refs",
		Status:      domain.CellPledged,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArea)

	_, err = eng.Allocate(context.Background(), AllocateRequest{
		PledgeID:    strptr("pl-1"),
		PaymentID:   strptr("pay-1"),
		AmountPence: 10_000,
		DonorName:   "Both Refs",
		Status:      domain.CellPledged,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArea)
}

func TestAllocateInsufficientSpaceRollsBack(t *testing.T) {
	store := newMemStore("A", 1)
	eng := newTestEngine(store)

	// 8 units need two squares; only one exists.
	_, err := eng.Allocate(context.Background(), AllocateRequest{
		PledgeID:    strptr("pl-big"),
		AmountPence: 80_000,
		Package:     &domain.Package{ID: "double", QuarterUnits: 8, PricePence: 80_000},
		DonorName:   "Too Big",
		Status:      domain.CellPledged,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientSpace)

	for id := range store.cells {
		assert.Equal(t, domain.CellAvailable, cellStatus(t, store, id), "rollback must leave %s available", id)
	}
}

func TestAllocateDeterministicOrder(t *testing.T) {
	store := newMemStore("BA", 1)
	eng := newTestEngine(store)

	result, err := eng.Allocate(context.Background(), AllocateRequest{
		PledgeID:    strptr("pl-1"),
		AmountPence: 10_000,
		DonorName:   "First Donor",
		Status:      domain.CellPledged,
	})
	require.NoError(t, err)
	// Rectangle A scans before B regardless of seeding order.
	assert.Equal(t, []string{"A0505-01"}, result.AllocatedCellIDs)
}

func TestConcurrentAllocatorsLastCell(t *testing.T) {
	store := newMemStore("A", 1)
	eng := newTestEngine(store)
	ctx := context.Background()

	// Claim three of the four quarters; exactly one quarter remains.
	for i, ref := range []string{"pl-a", "pl-b", "pl-c"} {
		_, err := eng.Allocate(ctx, AllocateRequest{
			PledgeID:    strptr(ref),
			AmountPence: 10_000,
			DonorName:   "Donor",
			Status:      domain.CellPledged,
		})
		require.NoError(t, err, "setup claim %d", i)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.Allocate(ctx, AllocateRequest{
				PledgeID:    strptr("race-" + string(rune('a'+i))),
				AmountPence: 10_000,
				DonorName:   "Racer",
				Status:      domain.CellPledged,
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientSpace):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok, "exactly one allocator wins the last cell")
	assert.Equal(t, 1, insufficient)
}

func TestGridStatusAndStats(t *testing.T) {
	store := newMemStore("AB", 2)
	eng := newTestEngine(store)
	ctx := context.Background()

	_, err := eng.Allocate(ctx, AllocateRequest{
		PaymentID:   strptr("pay-1"),
		AmountPence: 40_000,
		DonorName:   "Payer",
		Status:      domain.CellPaid,
	})
	require.NoError(t, err)

	cells, err := eng.GridStatus(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, cells, 14, "two squares at three tiers")
	for _, c := range cells {
		assert.Equal(t, "A", c.RectangleID)
	}

	stats, err := eng.AllocationStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 28, stats.TotalCells)
	assert.Equal(t, 1, stats.PaidCells)
	assert.Zero(t, stats.PledgedCells)
	assert.Equal(t, 6, stats.BlockedCells)
	assert.Equal(t, 1.0, stats.TotalAreaM2)
	assert.Equal(t, int64(40_000), stats.TotalAmountPence)
	assert.InDelta(t, 25.0, stats.ProgressPercentage, 0.001)
}
