package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"floorgrid/internal/domain"
	"floorgrid/internal/infra"
)

// DBTX is the subset of pgx used by the repositories. Both *pgxpool.Pool
// and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store owns the connection pool and hands out per-transaction repositories.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewStore creates a Store over an initialized pgx pool.
func NewStore(pool *pgxpool.Pool, log zerolog.Logger) *Store {
	return &Store{pool: pool, log: log}
}

// WithTx runs fn inside one database transaction. The transaction commits
// when fn returns nil and rolls back otherwise, so a failing allocation
// never leaves the grid partially updated.
func (s *Store) WithTx(ctx context.Context, fn func(tx domain.RepoTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	runner := infra.NewSQLRunner(tx, s.log)
	if err := fn(&txRepos{db: runner}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrPersistence, err)
	}
	return nil
}

type txRepos struct {
	db DBTX
}

func (t *txRepos) Cells() domain.CellRepository    { return &CellRepositoryPG{db: t.db} }
func (t *txRepos) Batches() domain.BatchRepository { return &BatchRepositoryPG{db: t.db} }
func (t *txRepos) Pool() domain.PoolRepository     { return &PoolRepositoryPG{db: t.db} }
