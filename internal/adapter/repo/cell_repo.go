package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"floorgrid/internal/domain"
	"floorgrid/internal/sqlinline"
)

// CellRepositoryPG implements domain.CellRepository using PostgreSQL.
type CellRepositoryPG struct {
	db DBTX
}

// NewCellRepository creates a cell repo bound to the given querier.
func NewCellRepository(db DBTX) *CellRepositoryPG {
	return &CellRepositoryPG{db: db}
}

func scanCell(row pgx.Row, cell *domain.GridCell) error {
	return row.Scan(
		&cell.ID, &cell.RectangleID, &cell.Position, &cell.Type,
		&cell.AreaM2, &cell.Status,
		&cell.PledgeID, &cell.PaymentID, &cell.DonorName,
		&cell.AmountPence, &cell.BatchID, &cell.AssignedAt,
	)
}

func collectCells(rows pgx.Rows) ([]domain.GridCell, error) {
	defer rows.Close()
	var items []domain.GridCell
	for rows.Next() {
		var cell domain.GridCell
		if err := scanCell(rows, &cell); err != nil {
			return nil, fmt.Errorf("%w: scan cell: %v", domain.ErrPersistence, err)
		}
		items = append(items, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read cells: %v", domain.ErrPersistence, err)
	}
	return items, nil
}

func (r *CellRepositoryPG) SelectAvailableForUpdate(ctx context.Context, cellType domain.CellType, limit int) ([]domain.GridCell, error) {
	rows, err := r.db.Query(ctx, sqlinline.QSelectAvailableCellsForUpdate, string(cellType), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: select available cells: %v", domain.ErrPersistence, err)
	}
	return collectCells(rows)
}

func (r *CellRepositoryPG) GetForUpdate(ctx context.Context, cellIDs []string) ([]domain.GridCell, error) {
	if len(cellIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, sqlinline.QGetCellsForUpdate, cellIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: lock cells: %v", domain.ErrPersistence, err)
	}
	return collectCells(rows)
}

func (r *CellRepositoryPG) Claim(ctx context.Context, cellID string, claim domain.CellClaim) error {
	tag, err := r.db.Exec(ctx, sqlinline.QClaimCell,
		cellID, string(claim.Status),
		claim.PledgeID, claim.PaymentID,
		claim.DonorName, claim.AmountPence, claim.BatchID,
	)
	if err != nil {
		return fmt.Errorf("%w: claim cell %s: %v", domain.ErrPersistence, cellID, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%w: claim cell %s: not available", domain.ErrPersistence, cellID)
	}
	return nil
}

func (r *CellRepositoryPG) Block(ctx context.Context, cellIDs []string) (int, error) {
	if len(cellIDs) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx, sqlinline.QBlockCells, cellIDs)
	if err != nil {
		return 0, fmt.Errorf("%w: block cells: %v", domain.ErrPersistence, err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *CellRepositoryPG) Release(ctx context.Context, cellIDs []string) error {
	if len(cellIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, sqlinline.QReleaseCells, cellIDs)
	if err != nil {
		return fmt.Errorf("%w: release cells: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (r *CellRepositoryPG) UnblockIfUnconflicted(ctx context.Context, cellID string, conflictIDs []string) (bool, error) {
	tag, err := r.db.Exec(ctx, sqlinline.QUnblockCellIfUnconflicted, cellID, conflictIDs)
	if err != nil {
		return false, fmt.Errorf("%w: unblock cell %s: %v", domain.ErrPersistence, cellID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CellRepositoryPG) FindByDonorRefForUpdate(ctx context.Context, pledgeID, paymentID *string) ([]domain.GridCell, error) {
	rows, err := r.db.Query(ctx, sqlinline.QFindCellsByDonorRefForUpdate, pledgeID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: find cells by donor ref: %v", domain.ErrPersistence, err)
	}
	return collectCells(rows)
}

func (r *CellRepositoryPG) List(ctx context.Context, rectangle string) ([]domain.GridCell, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListCells, rectangle)
	if err != nil {
		return nil, fmt.Errorf("%w: list cells: %v", domain.ErrPersistence, err)
	}
	return collectCells(rows)
}

func (r *CellRepositoryPG) Stats(ctx context.Context) (*domain.GridStats, error) {
	row := r.db.QueryRow(ctx, sqlinline.QGridStats)
	var stats domain.GridStats
	var floorAreaM2 float64
	err := row.Scan(
		&stats.TotalCells, &stats.PledgedCells, &stats.PaidCells,
		&stats.AvailableCells, &stats.BlockedCells,
		&stats.TotalAreaM2, &stats.TotalAmountPence, &floorAreaM2,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: grid stats: %v", domain.ErrPersistence, err)
	}
	if floorAreaM2 > 0 {
		stats.ProgressPercentage = stats.TotalAreaM2 / floorAreaM2 * 100
	}
	return &stats, nil
}
