// block/generator.go
package block

import (
	"math/rand"
	"time"

	"github.com/blockfall/gameserver/models"
)

// shapes 形状目录：7 种四格方块 + 2 种三格方块
var shapes = [][]models.Vec{
	{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}, // I
	{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, // O
	{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}}, // T
	{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}, // S
	{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}}, // Z
	{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}, // J
	{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}}, // L
	{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}},               // I3
	{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},               // L3
}

// ShapeCount is the size of the shape catalog.
var ShapeCount = len(shapes)

// Generator draws shapes with a bag randomizer: every shape of the catalog
// appears exactly once before any shape repeats. When the bag runs out a
// fresh full bag is shuffled.
type Generator struct {
	rng *rand.Rand
	bag []int
}

// NewGenerator creates a generator seeded from the current time.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator creates a generator with a deterministic sequence.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Next draws the next shape from the bag and places it at origin.
func (g *Generator) Next(origin models.Vec) *Block {
	if len(g.bag) == 0 {
		g.refill()
	}
	if len(g.bag) == 0 {
		// 不应发生：refill 总是放入完整目录
		panic("block: bag empty after refill")
	}
	idx := g.bag[0]
	g.bag = g.bag[1:]

	cells := make([]models.Vec, len(shapes[idx]))
	copy(cells, shapes[idx])
	return &Block{Origin: origin, Cells: cells}
}

func (g *Generator) refill() {
	g.bag = g.rng.Perm(ShapeCount)
}
