// block/block.go
package block

import (
	"math"

	"github.com/blockfall/gameserver/models"
)

// Block 活动方块：原点 + 相对占用格 + 当前旋转角度
type Block struct {
	Origin   models.Vec
	Cells    []models.Vec
	Rotation int // 角度，0/90/180/270
}

// Clone returns an independent copy of the block.
func (b *Block) Clone() *Block {
	cells := make([]models.Vec, len(b.Cells))
	copy(cells, b.Cells)
	return &Block{Origin: b.Origin, Cells: cells, Rotation: b.Rotation}
}

// Absolute returns the matrix coordinates occupied by the block.
func (b *Block) Absolute() []models.Vec {
	abs := make([]models.Vec, len(b.Cells))
	for i, c := range b.Cells {
		abs[i] = models.Vec{X: b.Origin.X + c.X, Y: b.Origin.Y + c.Y}
	}
	return abs
}

// Shifted returns a copy of the block with its origin moved by (dx, dy).
func (b *Block) Shifted(dx, dy int) *Block {
	s := b.Clone()
	s.Origin.X += dx
	s.Origin.Y += dy
	return s
}

// View converts the block into its serializable form.
func (b *Block) View() *models.BlockView {
	if b == nil {
		return nil
	}
	cells := make([]models.Vec, len(b.Cells))
	copy(cells, b.Cells)
	return &models.BlockView{Origin: b.Origin, Cells: cells, Rotation: b.Rotation}
}

// extents returns the maximum relative x and y of the cells.
func extents(cells []models.Vec) (maxX, maxY int) {
	for _, c := range cells {
		if c.X > maxX {
			maxX = c.X
		}
		if c.Y > maxY {
			maxY = c.Y
		}
	}
	return maxX, maxY
}

// RotatedCW returns the block rotated 90 degrees clockwise about its local
// bounding box, with the origin adjusted so the shape stays visually
// centered. The rounding direction of the recentering offset alternates
// with the accumulated angle so repeated rotations do not drift the piece.
func (b *Block) RotatedCW() *Block {
	oldMaxX, oldMaxY := extents(b.Cells)

	cells := make([]models.Vec, len(b.Cells))
	for i, c := range b.Cells {
		cells[i] = models.Vec{X: oldMaxY - c.Y, Y: c.X}
	}
	newMaxX, newMaxY := extents(cells)

	rotation := (b.Rotation + 90) % 360
	roundUp := rotation%180 == 0

	return &Block{
		Origin: models.Vec{
			X: b.Origin.X - half(newMaxX-oldMaxX, roundUp),
			Y: b.Origin.Y - half(newMaxY-oldMaxY, roundUp),
		},
		Cells:    cells,
		Rotation: rotation,
	}
}

// half 取 n/2，roundUp 决定奇数时向上还是向下取整
func half(n int, roundUp bool) int {
	if roundUp {
		return int(math.Ceil(float64(n) / 2))
	}
	return int(math.Floor(float64(n) / 2))
}
