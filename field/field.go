// field/field.go
package field

import (
	"github.com/blockfall/gameserver/block"
)

// Matrix 固定尺寸的占用矩阵，开局后不再变更尺寸
type Matrix struct {
	cols  int
	rows  int
	cells [][]int // rows x cols, 0 表示空
}

// New creates an empty cols x rows matrix.
func New(cols, rows int) *Matrix {
	cells := make([][]int, rows)
	for y := range cells {
		cells[y] = make([]int, cols)
	}
	return &Matrix{cols: cols, rows: rows, cells: cells}
}

func (m *Matrix) Cols() int { return m.cols }
func (m *Matrix) Rows() int { return m.rows }

// Occupied reports whether the cell at (x, y) is filled. Out-of-range
// coordinates count as empty.
func (m *Matrix) Occupied(x, y int) bool {
	if x < 0 || x >= m.cols || y < 0 || y >= m.rows {
		return false
	}
	return m.cells[y][x] != 0
}

// Cells returns a deep copy of the grid for snapshots.
func (m *Matrix) Cells() [][]int {
	out := make([][]int, m.rows)
	for y, row := range m.cells {
		out[y] = make([]int, m.cols)
		copy(out[y], row)
	}
	return out
}

// Draw marks the block's cells as occupied. Cells above the visible board
// (y < 0) have no storage and are skipped.
func (m *Matrix) Draw(b *block.Block) {
	m.mark(b, 1)
}

// Erase clears the block's cells.
func (m *Matrix) Erase(b *block.Block) {
	m.mark(b, 0)
}

func (m *Matrix) mark(b *block.Block, v int) {
	for _, c := range b.Absolute() {
		if c.X < 0 || c.X >= m.cols || c.Y < 0 || c.Y >= m.rows {
			continue
		}
		m.cells[c.Y][c.X] = v
	}
}

// IsBlocked reports whether the block collides: any cell outside the
// horizontal bounds or below the bottom row, or any cell with y >= 0 on an
// already-occupied cell. Cells above the board are exempt from the
// occupancy check but not from the horizontal bounds.
func (m *Matrix) IsBlocked(b *block.Block) bool {
	for _, c := range b.Absolute() {
		if c.X < 0 || c.X >= m.cols {
			return true
		}
		if c.Y >= m.rows {
			return true
		}
		if c.Y >= 0 && m.cells[c.Y][c.X] != 0 {
			return true
		}
	}
	return false
}

// CompleteRows returns the indices of rows where every cell is occupied,
// in top-to-bottom order.
func (m *Matrix) CompleteRows() []int {
	var complete []int
	for y, row := range m.cells {
		full := true
		for _, v := range row {
			if v == 0 {
				full = false
				break
			}
		}
		if full {
			complete = append(complete, y)
		}
	}
	return complete
}

// Collapse removes the given rows and prepends equivalent empty rows at the
// top, so rows above shift down to fill the gap.
func (m *Matrix) Collapse(rows []int) {
	if len(rows) == 0 {
		return
	}
	drop := make(map[int]bool, len(rows))
	for _, y := range rows {
		drop[y] = true
	}
	kept := make([][]int, 0, m.rows)
	for y, row := range m.cells {
		if !drop[y] {
			kept = append(kept, row)
		}
	}
	rebuilt := make([][]int, 0, m.rows)
	for i := 0; i < m.rows-len(kept); i++ {
		rebuilt = append(rebuilt, make([]int, m.cols))
	}
	m.cells = append(rebuilt, kept...)
}
