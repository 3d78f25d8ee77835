package game

import "math/rand"

type TerrainType byte

const (
	Sea  TerrainType = 0 // open water, deployable
	Reef TerrainType = 1 // blocking: nothing may occupy a reef cell
)

// Terrain is a row-major W x H grid generated once at room creation and never
// mutated afterwards.
type Terrain struct {
	W, H int
	Grid []TerrainType // Grid[y*W + x]
}

// GenerateTerrain scatters reef cells over an open sea grid. The same seed
// reproduces the same board, which keeps tests deterministic.
func GenerateTerrain(w, h, reefs int, seed int64) *Terrain {
	t := &Terrain{W: w, H: h, Grid: make([]TerrainType, w*h)}
	rng := rand.New(rand.NewSource(seed))
	placed := 0
	for attempts := 0; placed < reefs && attempts < reefs*20; attempts++ {
		x := rng.Intn(w)
		y := rng.Intn(h)
		if t.Grid[y*w+x] == Sea {
			t.Grid[y*w+x] = Reef
			placed++
		}
	}
	return t
}

func (t *Terrain) InBounds(x, y int) bool {
	return x >= 0 && x < t.W && y >= 0 && y < t.H
}

// Blocked reports whether a cell cannot be occupied. Out-of-bounds cells
// count as blocked.
func (t *Terrain) Blocked(x, y int) bool {
	if !t.InBounds(x, y) {
		return true
	}
	return t.Grid[y*t.W+x] != Sea
}

// Rows returns the grid as row slices for client serialization.
func (t *Terrain) Rows() [][]int {
	rows := make([][]int, t.H)
	for y := 0; y < t.H; y++ {
		row := make([]int, t.W)
		for x := 0; x < t.W; x++ {
			row[x] = int(t.Grid[y*t.W+x])
		}
		rows[y] = row
	}
	return rows
}
