package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockfall/gameserver/block"
	"github.com/blockfall/gameserver/models"
)

func cellAt(x, y int) *block.Block {
	return &block.Block{Origin: models.Vec{X: x, Y: y}, Cells: []models.Vec{{X: 0, Y: 0}}}
}

func TestDrawAndErase(t *testing.T) {
	m := New(10, 20)
	b := &block.Block{
		Origin: models.Vec{X: 4, Y: 2},
		Cells:  []models.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}},
	}

	m.Draw(b)
	assert.True(t, m.Occupied(4, 2))
	assert.True(t, m.Occupied(5, 2))

	m.Erase(b)
	assert.False(t, m.Occupied(4, 2))
	assert.False(t, m.Occupied(5, 2))
}

func TestDrawSkipsCellsAboveBoard(t *testing.T) {
	m := New(10, 20)
	b := &block.Block{
		Origin: models.Vec{X: 4, Y: -1},
		Cells:  []models.Vec{{X: 0, Y: 0}, {X: 0, Y: 1}},
	}
	m.Draw(b)
	assert.True(t, m.Occupied(4, 0))
	assert.False(t, m.Occupied(4, -1))
}

func TestIsBlockedBounds(t *testing.T) {
	m := New(10, 20)

	cases := []struct {
		name    string
		x, y    int
		blocked bool
	}{
		{"inside", 4, 10, false},
		{"left wall", -1, 10, true},
		{"right wall", 10, 10, true},
		{"below floor", 4, 20, true},
		{"above board", 4, -3, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.blocked, m.IsBlocked(cellAt(tc.x, tc.y)))
		})
	}
}

func TestIsBlockedOccupancy(t *testing.T) {
	m := New(10, 20)
	m.Draw(cellAt(4, 10))

	assert.True(t, m.IsBlocked(cellAt(4, 10)))
	assert.False(t, m.IsBlocked(cellAt(4, 9)))

	// cells above the board are exempt from occupancy, not from walls
	above := &block.Block{
		Origin: models.Vec{X: -1, Y: -2},
		Cells:  []models.Vec{{X: 0, Y: 0}},
	}
	assert.True(t, m.IsBlocked(above))
}

func TestCompleteRows(t *testing.T) {
	m := New(4, 6)
	for x := 0; x < 4; x++ {
		m.Draw(cellAt(x, 5))
		m.Draw(cellAt(x, 3))
	}
	m.Draw(cellAt(0, 4))

	assert.Equal(t, []int{3, 5}, m.CompleteRows())
}

func TestCollapseShiftsRowsDown(t *testing.T) {
	m := New(4, 6)
	// row 3 complete, row 2 partially filled above it
	for x := 0; x < 4; x++ {
		m.Draw(cellAt(x, 3))
	}
	m.Draw(cellAt(1, 2))

	rows := m.CompleteRows()
	require.Equal(t, []int{3}, rows)
	m.Collapse(rows)

	assert.Empty(t, m.CompleteRows())
	assert.False(t, m.Occupied(1, 2), "rows above the cleared row shift down")
	assert.True(t, m.Occupied(1, 3))

	// dimensions are never resized
	assert.Equal(t, 4, m.Cols())
	assert.Equal(t, 6, m.Rows())
	assert.Len(t, m.Cells(), 6)
}

func TestCollapseMultipleRows(t *testing.T) {
	m := New(3, 5)
	for x := 0; x < 3; x++ {
		m.Draw(cellAt(x, 4))
		m.Draw(cellAt(x, 2))
	}
	m.Draw(cellAt(2, 3))

	m.Collapse([]int{2, 4})

	assert.True(t, m.Occupied(2, 4), "partial row lands on the floor")
	assert.False(t, m.Occupied(2, 3))
	assert.Empty(t, m.CompleteRows())
}

func TestCellsReturnsDeepCopy(t *testing.T) {
	m := New(3, 3)
	cells := m.Cells()
	cells[0][0] = 1
	assert.False(t, m.Occupied(0, 0))
}
