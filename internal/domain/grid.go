package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CellType identifies one of the three nested size tiers of the floor grid.
type CellType string

const (
	CellFull    CellType = "1x1"
	CellHalf    CellType = "1x0.5"
	CellQuarter CellType = "0.5x0.5"
)

// QuarterUnits returns the cell's area expressed in 0.25 m² units.
func (t CellType) QuarterUnits() int {
	switch t {
	case CellFull:
		return 4
	case CellHalf:
		return 2
	default:
		return 1
	}
}

// AreaM2 returns the cell's area in square metres.
func (t CellType) AreaM2() float64 {
	return float64(t.QuarterUnits()) * 0.25
}

// code is the size fragment embedded in cell ids, in half-metre dims.
func (t CellType) code() string {
	switch t {
	case CellFull:
		return "1010"
	case CellHalf:
		return "1005"
	default:
		return "0505"
	}
}

// CellStatus is the lifecycle state of a grid cell.
type CellStatus string

const (
	CellAvailable CellStatus = "available"
	CellPledged   CellStatus = "pledged"
	CellPaid      CellStatus = "paid"
	CellBlocked   CellStatus = "blocked"
)

// Occupied reports whether the cell carries donor data.
func (s CellStatus) Occupied() bool {
	return s == CellPledged || s == CellPaid
}

// CellRef locates a cell by rectangle, tier and 1-based position within the
// rectangle. Positions count independently per tier: square p contains
// halves 2p-1 and 2p, and quarters 4p-3 through 4p.
type CellRef struct {
	Rectangle string
	Type      CellType
	Position  int
}

// ID renders the canonical cell id, e.g. A0505-01.
func (r CellRef) ID() string {
	return fmt.Sprintf("%s%s-%02d", r.Rectangle, r.Type.code(), r.Position)
}

// Conflicts returns every cell at another tier that geometrically overlaps
// the given cell: all coarser ancestors plus all finer descendants. The
// result is pure positional arithmetic, no storage access.
func Conflicts(r CellRef) []CellRef {
	switch r.Type {
	case CellFull:
		p := r.Position
		return []CellRef{
			{r.Rectangle, CellHalf, 2*p - 1},
			{r.Rectangle, CellHalf, 2 * p},
			{r.Rectangle, CellQuarter, 4*p - 3},
			{r.Rectangle, CellQuarter, 4*p - 2},
			{r.Rectangle, CellQuarter, 4*p - 1},
			{r.Rectangle, CellQuarter, 4 * p},
		}
	case CellHalf:
		h := r.Position
		return []CellRef{
			{r.Rectangle, CellFull, (h + 1) / 2},
			{r.Rectangle, CellQuarter, 2*h - 1},
			{r.Rectangle, CellQuarter, 2 * h},
		}
	default:
		q := r.Position
		return []CellRef{
			{r.Rectangle, CellFull, (q + 3) / 4},
			{r.Rectangle, CellHalf, (q + 1) / 2},
		}
	}
}

// ConflictIDs is Conflicts rendered to cell ids.
func ConflictIDs(r CellRef) []string {
	refs := Conflicts(r)
	ids := make([]string, len(refs))
	for i, c := range refs {
		ids[i] = c.ID()
	}
	return ids
}

// GridCell is one discrete unit of the floor-plan grid.
type GridCell struct {
	ID          string
	RectangleID string
	Position    int
	Type        CellType
	AreaM2      float64
	Status      CellStatus
	PledgeID    *string
	PaymentID   *string
	DonorName   *string
	AmountPence *int64
	BatchID     *uuid.UUID
	AssignedAt  *time.Time
}

// Ref returns the positional reference of the cell.
func (c *GridCell) Ref() CellRef {
	return CellRef{Rectangle: c.RectangleID, Type: c.Type, Position: c.Position}
}

// GridStats is the aggregate view exposed for progress reporting.
type GridStats struct {
	TotalCells         int
	PledgedCells       int
	PaidCells          int
	AvailableCells     int
	BlockedCells       int
	TotalAreaM2        float64
	TotalAmountPence   int64
	ProgressPercentage float64
}
