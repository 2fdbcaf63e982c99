package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"floorgrid/internal/domain"
)

// memStore is an in-memory domain.TxRunner. A mutex serializes
// transactions, mirroring the row-lock behaviour of the real store, and a
// snapshot taken at transaction start restores state on rollback.
type memStore struct {
	mu      sync.Mutex
	cells   map[string]*domain.GridCell
	batches map[uuid.UUID]*domain.AllocationBatch
	pool    domain.CustomAmountPool
}

// newMemStore seeds a grid of the given rectangles with the full three-tier
// inventory per square, plus the singleton pool row.
func newMemStore(rectangles string, squaresPerRectangle int) *memStore {
	s := &memStore{
		cells:   map[string]*domain.GridCell{},
		batches: map[uuid.UUID]*domain.AllocationBatch{},
	}
	for _, r := range rectangles {
		rect := string(r)
		for p := 1; p <= squaresPerRectangle; p++ {
			refs := []domain.CellRef{
				{Rectangle: rect, Type: domain.CellFull, Position: p},
				{Rectangle: rect, Type: domain.CellHalf, Position: 2*p - 1},
				{Rectangle: rect, Type: domain.CellHalf, Position: 2 * p},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4*p - 3},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4*p - 2},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4*p - 1},
				{Rectangle: rect, Type: domain.CellQuarter, Position: 4 * p},
			}
			for _, ref := range refs {
				s.cells[ref.ID()] = &domain.GridCell{
					ID:          ref.ID(),
					RectangleID: ref.Rectangle,
					Position:    ref.Position,
					Type:        ref.Type,
					AreaM2:      ref.Type.AreaM2(),
					Status:      domain.CellAvailable,
				}
			}
		}
	}
	return s
}

func (s *memStore) snapshot() (map[string]*domain.GridCell, map[uuid.UUID]*domain.AllocationBatch, domain.CustomAmountPool) {
	cells := make(map[string]*domain.GridCell, len(s.cells))
	for id, c := range s.cells {
		cp := *c
		cells[id] = &cp
	}
	batches := make(map[uuid.UUID]*domain.AllocationBatch, len(s.batches))
	for id, b := range s.batches {
		cp := *b
		cp.AllocatedCellIDs = append([]string(nil), b.AllocatedCellIDs...)
		batches[id] = &cp
	}
	return cells, batches, s.pool
}

func (s *memStore) WithTx(_ context.Context, fn func(tx domain.RepoTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells, batches, pool := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.cells, s.batches, s.pool = cells, batches, pool
		return err
	}
	return nil
}

// cell returns the live cell or fails the transaction.
func (s *memStore) cell(id string) (*domain.GridCell, error) {
	c, ok := s.cells[id]
	if !ok {
		return nil, fmt.Errorf("%w: no cell %s", domain.ErrPersistence, id)
	}
	return c, nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) Cells() domain.CellRepository    { return &memCells{s: t.s} }
func (t *memTx) Batches() domain.BatchRepository { return &memBatches{s: t.s} }
func (t *memTx) Pool() domain.PoolRepository     { return &memPool{s: t.s} }

type memCells struct {
	s *memStore
}

func (r *memCells) SelectAvailableForUpdate(_ context.Context, cellType domain.CellType, limit int) ([]domain.GridCell, error) {
	var out []domain.GridCell
	for _, c := range r.s.cells {
		if c.Type == cellType && c.Status == domain.CellAvailable {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RectangleID != out[j].RectangleID {
			return out[i].RectangleID < out[j].RectangleID
		}
		return out[i].Position < out[j].Position
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memCells) GetForUpdate(_ context.Context, cellIDs []string) ([]domain.GridCell, error) {
	ids := append([]string(nil), cellIDs...)
	sort.Strings(ids)
	var out []domain.GridCell
	for _, id := range ids {
		if c, ok := r.s.cells[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCells) Claim(_ context.Context, cellID string, claim domain.CellClaim) error {
	c, err := r.s.cell(cellID)
	if err != nil {
		return err
	}
	if c.Status != domain.CellAvailable {
		return fmt.Errorf("%w: claim cell %s: not available", domain.ErrPersistence, cellID)
	}
	now := time.Now()
	amount := claim.AmountPence
	name := claim.DonorName
	c.Status = claim.Status
	c.PledgeID = claim.PledgeID
	c.PaymentID = claim.PaymentID
	c.DonorName = &name
	c.AmountPence = &amount
	c.BatchID = claim.BatchID
	c.AssignedAt = &now
	return nil
}

func (r *memCells) Block(_ context.Context, cellIDs []string) (int, error) {
	n := 0
	for _, id := range cellIDs {
		if c, ok := r.s.cells[id]; ok && c.Status == domain.CellAvailable {
			c.Status = domain.CellBlocked
			n++
		}
	}
	return n, nil
}

func (r *memCells) Release(_ context.Context, cellIDs []string) error {
	for _, id := range cellIDs {
		c, ok := r.s.cells[id]
		if !ok || !c.Status.Occupied() {
			continue
		}
		c.Status = domain.CellAvailable
		c.PledgeID = nil
		c.PaymentID = nil
		c.DonorName = nil
		c.AmountPence = nil
		c.BatchID = nil
		c.AssignedAt = nil
	}
	return nil
}

func (r *memCells) UnblockIfUnconflicted(_ context.Context, cellID string, conflictIDs []string) (bool, error) {
	c, ok := r.s.cells[cellID]
	if !ok || c.Status != domain.CellBlocked {
		return false, nil
	}
	for _, id := range conflictIDs {
		if other, ok := r.s.cells[id]; ok && other.Status.Occupied() {
			return false, nil
		}
	}
	c.Status = domain.CellAvailable
	return true, nil
}

func (r *memCells) FindByDonorRefForUpdate(_ context.Context, pledgeID, paymentID *string) ([]domain.GridCell, error) {
	var out []domain.GridCell
	for _, c := range r.s.cells {
		if !c.Status.Occupied() {
			continue
		}
		if pledgeID != nil && c.PledgeID != nil && *c.PledgeID == *pledgeID {
			out = append(out, *c)
			continue
		}
		if paymentID != nil && c.PaymentID != nil && *c.PaymentID == *paymentID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCells) List(_ context.Context, rectangle string) ([]domain.GridCell, error) {
	var out []domain.GridCell
	for _, c := range r.s.cells {
		if rectangle == "" || c.RectangleID == rectangle {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCells) Stats(_ context.Context) (*domain.GridStats, error) {
	var stats domain.GridStats
	var floorArea float64
	for _, c := range r.s.cells {
		stats.TotalCells++
		switch c.Status {
		case domain.CellPledged:
			stats.PledgedCells++
		case domain.CellPaid:
			stats.PaidCells++
		case domain.CellAvailable:
			stats.AvailableCells++
		case domain.CellBlocked:
			stats.BlockedCells++
		}
		if c.Status.Occupied() {
			stats.TotalAreaM2 += c.AreaM2
			if c.AmountPence != nil {
				stats.TotalAmountPence += *c.AmountPence
			}
		}
		if c.Type == domain.CellFull {
			floorArea += c.AreaM2
		}
	}
	if floorArea > 0 {
		stats.ProgressPercentage = stats.TotalAreaM2 / floorArea * 100
	}
	return &stats, nil
}

type memBatches struct {
	s *memStore
}

func (r *memBatches) Create(_ context.Context, batch *domain.AllocationBatch) error {
	batch.ID = uuid.New()
	batch.ApprovalStatus = domain.BatchPending
	batch.RequestedAt = time.Now()
	cp := *batch
	r.s.batches[batch.ID] = &cp
	return nil
}

func (r *memBatches) get(id uuid.UUID) (*domain.AllocationBatch, error) {
	b, ok := r.s.batches[id]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return b, nil
}

func (r *memBatches) Get(_ context.Context, id uuid.UUID) (*domain.AllocationBatch, error) {
	b, err := r.get(id)
	if err != nil {
		return nil, err
	}
	cp := *b
	cp.AllocatedCellIDs = append([]string(nil), b.AllocatedCellIDs...)
	return &cp, nil
}

func (r *memBatches) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.AllocationBatch, error) {
	return r.Get(ctx, id)
}

func (r *memBatches) MarkApproved(_ context.Context, id uuid.UUID, cellIDs []string, areaM2 float64, _ string) error {
	b, err := r.get(id)
	if err != nil {
		return err
	}
	if b.ApprovalStatus != domain.BatchPending {
		return domain.ErrInvalidBatchTransition
	}
	now := time.Now()
	b.ApprovalStatus = domain.BatchApproved
	b.AllocatedCellIDs = append([]string(nil), cellIDs...)
	b.AllocatedArea = areaM2
	b.ApprovedAt = &now
	return nil
}

func (r *memBatches) MarkRejected(_ context.Context, id uuid.UUID) error {
	b, err := r.get(id)
	if err != nil {
		return err
	}
	if b.ApprovalStatus != domain.BatchPending {
		return domain.ErrInvalidBatchTransition
	}
	now := time.Now()
	b.ApprovalStatus = domain.BatchRejected
	b.RejectedAt = &now
	return nil
}

func (r *memBatches) MarkCancelled(_ context.Context, id uuid.UUID) error {
	b, err := r.get(id)
	if err != nil {
		return err
	}
	if b.ApprovalStatus != domain.BatchApproved {
		return domain.ErrInvalidBatchTransition
	}
	b.ApprovalStatus = domain.BatchCancelled
	return nil
}

type memPool struct {
	s *memStore
}

func (r *memPool) GetForUpdate(_ context.Context) (*domain.CustomAmountPool, error) {
	cp := r.s.pool
	return &cp, nil
}

func (r *memPool) Add(_ context.Context, amountPence int64) (*domain.CustomAmountPool, error) {
	r.s.pool.TotalPence += amountPence
	r.s.pool.RemainingPence += amountPence
	r.s.pool.LastUpdated = time.Now()
	cp := r.s.pool
	return &cp, nil
}

func (r *memPool) RecordAllocation(_ context.Context, amountPence int64) error {
	if r.s.pool.RemainingPence < amountPence {
		return fmt.Errorf("%w: record pool allocation: remaining below %d", domain.ErrPersistence, amountPence)
	}
	r.s.pool.RemainingPence -= amountPence
	r.s.pool.AllocatedPence += amountPence
	r.s.pool.LastUpdated = time.Now()
	return nil
}
