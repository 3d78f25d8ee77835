package game

import "math/rand"

// Cell is one board square. The grid origin is the top-left corner.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev distance: the radius metric used by every area effect, so a
// radius-1 burst covers the full 3x3 square around the epicenter.
func Chebyshev(a, b Cell) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Manhattan distance bounds relocation and movement allowances.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func RandId(prefix string) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return prefix + "-" + string(b)
}

// footprint returns the cells a unit of the given size occupies from an
// anchor, extending down when vertical and right otherwise.
func footprint(anchor Cell, size int, vertical bool) []Cell {
	cells := make([]Cell, size)
	for i := 0; i < size; i++ {
		if vertical {
			cells[i] = Cell{X: anchor.X, Y: anchor.Y + i}
		} else {
			cells[i] = Cell{X: anchor.X + i, Y: anchor.Y}
		}
	}
	return cells
}
