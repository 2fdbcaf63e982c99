package repo

import (
	"context"
	"fmt"

	"floorgrid/internal/domain"
	"floorgrid/internal/sqlinline"
)

// PoolRepositoryPG implements domain.PoolRepository using PostgreSQL. The
// pool is a single row; every mutation locks it, which serializes
// contributions by construction.
type PoolRepositoryPG struct {
	db DBTX
}

// NewPoolRepository creates a pool repo bound to the given querier.
func NewPoolRepository(db DBTX) *PoolRepositoryPG {
	return &PoolRepositoryPG{db: db}
}

func (r *PoolRepositoryPG) GetForUpdate(ctx context.Context) (*domain.CustomAmountPool, error) {
	row := r.db.QueryRow(ctx, sqlinline.QGetPoolForUpdate)
	var pool domain.CustomAmountPool
	if err := row.Scan(&pool.TotalPence, &pool.AllocatedPence, &pool.RemainingPence, &pool.LastUpdated); err != nil {
		return nil, fmt.Errorf("%w: read pool: %v", domain.ErrPersistence, err)
	}
	return &pool, nil
}

func (r *PoolRepositoryPG) Add(ctx context.Context, amountPence int64) (*domain.CustomAmountPool, error) {
	row := r.db.QueryRow(ctx, sqlinline.QAddToPool, amountPence)
	var pool domain.CustomAmountPool
	if err := row.Scan(&pool.TotalPence, &pool.AllocatedPence, &pool.RemainingPence, &pool.LastUpdated); err != nil {
		return nil, fmt.Errorf("%w: add to pool: %v", domain.ErrPersistence, err)
	}
	return &pool, nil
}

func (r *PoolRepositoryPG) RecordAllocation(ctx context.Context, amountPence int64) error {
	tag, err := r.db.Exec(ctx, sqlinline.QPoolRecordAllocation, amountPence)
	if err != nil {
		return fmt.Errorf("%w: record pool allocation: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: record pool allocation: remaining below %d", domain.ErrPersistence, amountPence)
	}
	return nil
}
