package block

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockfall/gameserver/models"
)

// normalize shifts a cell set so its minimum x/y are zero, making shapes
// comparable regardless of origin placement.
func normalize(cells []models.Vec) []models.Vec {
	minX, minY := cells[0].X, cells[0].Y
	for _, c := range cells {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
	}
	out := make([]models.Vec, len(cells))
	for i, c := range cells {
		out[i] = models.Vec{X: c.X - minX, Y: c.Y - minY}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func TestFourRotationsRestoreShape(t *testing.T) {
	gen := NewSeededGenerator(7)
	origin := models.Vec{X: 4, Y: 0}

	for i := 0; i < ShapeCount; i++ {
		b := gen.Next(origin)
		rotated := b.Clone()
		for r := 0; r < 4; r++ {
			rotated = rotated.RotatedCW()
		}
		assert.Equal(t, normalize(b.Cells), normalize(rotated.Cells),
			"shape %d should return to its original cell set after 360°", i)
		assert.Equal(t, 0, rotated.Rotation)
	}
}

func TestRotationIsClockwise(t *testing.T) {
	// A horizontal domino-like bar becomes vertical with preserved size.
	b := &Block{
		Origin: models.Vec{X: 3, Y: 3},
		Cells: []models.Vec{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0},
		},
	}
	r := b.RotatedCW()
	assert.Equal(t, 90, r.Rotation)
	assert.Equal(t, []models.Vec{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 0, Y: 3},
	}, normalize(r.Cells))
}

func TestRotationDoesNotDrift(t *testing.T) {
	gen := NewSeededGenerator(11)
	origin := models.Vec{X: 5, Y: 5}

	for i := 0; i < ShapeCount; i++ {
		b := gen.Next(origin)
		rotated := b.Clone()
		for r := 0; r < 4; r++ {
			rotated = rotated.RotatedCW()
		}
		// the alternating rounding direction brings the origin back
		assert.Equal(t, b.Origin, rotated.Origin, "shape %d drifted", i)
	}
}

func TestAbsoluteAndShifted(t *testing.T) {
	b := &Block{
		Origin: models.Vec{X: 2, Y: 3},
		Cells:  []models.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}
	assert.Equal(t, []models.Vec{{X: 2, Y: 3}, {X: 3, Y: 4}}, b.Absolute())

	s := b.Shifted(-1, 2)
	assert.Equal(t, models.Vec{X: 1, Y: 5}, s.Origin)
	assert.Equal(t, models.Vec{X: 2, Y: 3}, b.Origin, "shift must not mutate the receiver")
}

func TestCloneIsIndependent(t *testing.T) {
	b := &Block{Origin: models.Vec{X: 1, Y: 1}, Cells: []models.Vec{{X: 0, Y: 0}}}
	c := b.Clone()
	c.Cells[0].X = 9
	require.Equal(t, 0, b.Cells[0].X)
}

func TestViewNilBlock(t *testing.T) {
	var b *Block
	assert.Nil(t, b.View())
}
