package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellRefID(t *testing.T) {
	assert.Equal(t, "A0505-01", CellRef{Rectangle: "A", Type: CellQuarter, Position: 1}.ID())
	assert.Equal(t, "B1005-12", CellRef{Rectangle: "B", Type: CellHalf, Position: 12}.ID())
	assert.Equal(t, "G1010-07", CellRef{Rectangle: "G", Type: CellFull, Position: 7}.ID())
}

func TestCellTypeUnits(t *testing.T) {
	assert.Equal(t, 4, CellFull.QuarterUnits())
	assert.Equal(t, 2, CellHalf.QuarterUnits())
	assert.Equal(t, 1, CellQuarter.QuarterUnits())
	assert.Equal(t, 1.0, CellFull.AreaM2())
	assert.Equal(t, 0.5, CellHalf.AreaM2())
	assert.Equal(t, 0.25, CellQuarter.AreaM2())
}

func TestConflictsOfFullSquare(t *testing.T) {
	got := ConflictIDs(CellRef{Rectangle: "A", Type: CellFull, Position: 2})
	want := []string{
		"A1005-03", "A1005-04",
		"A0505-05", "A0505-06", "A0505-07", "A0505-08",
	}
	assert.ElementsMatch(t, want, got)
}

func TestConflictsOfHalf(t *testing.T) {
	got := ConflictIDs(CellRef{Rectangle: "C", Type: CellHalf, Position: 3})
	want := []string{"C1010-02", "C0505-05", "C0505-06"}
	assert.ElementsMatch(t, want, got)
}

func TestConflictsOfQuarterIncludeBothAncestors(t *testing.T) {
	got := ConflictIDs(CellRef{Rectangle: "A", Type: CellQuarter, Position: 5})
	want := []string{"A1010-02", "A1005-03"}
	assert.ElementsMatch(t, want, got)
}

func TestConflictsAreSymmetric(t *testing.T) {
	// Every conflict of a quarter lists that quarter among its own
	// conflicts, and likewise up the hierarchy.
	q := CellRef{Rectangle: "B", Type: CellQuarter, Position: 11}
	for _, parent := range Conflicts(q) {
		assert.Contains(t, ConflictIDs(parent), q.ID())
	}
}

func TestStatusOccupied(t *testing.T) {
	assert.True(t, CellPledged.Occupied())
	assert.True(t, CellPaid.Occupied())
	assert.False(t, CellAvailable.Occupied())
	assert.False(t, CellBlocked.Occupied())
}
