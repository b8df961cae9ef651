package world

import "sort"

// SpatialIndex maps grid cells to the agents occupying them, for
// Chebyshev-radius neighbor queries. It is rebuilt every step after
// movement resolves, so queries always see the positions the current
// step's interaction phases should observe.
type SpatialIndex struct {
	buckets map[Coord][]int
}

// NewSpatialIndex creates an empty index.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{buckets: make(map[Coord][]int)}
}

// Rebuild replaces the index contents. positions[id] is the cell of
// agent id.
func (si *SpatialIndex) Rebuild(positions []Coord) {
	clear(si.buckets)
	for id, pos := range positions {
		si.buckets[pos] = append(si.buckets[pos], id)
	}
}

// Query returns the ids of all agents within Chebyshev distance radius
// of pos, excluding self. Results are sorted ascending so callers
// iterate neighbors in a deterministic order.
func (si *SpatialIndex) Query(self int, pos Coord, radius int) []int {
	var out []int
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			cell := Coord{X: pos.X + dx, Y: pos.Y + dy}
			for _, id := range si.buckets[cell] {
				if id != self {
					out = append(out, id)
				}
			}
		}
	}
	sort.Ints(out)
	return out
}
