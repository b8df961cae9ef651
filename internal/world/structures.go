// Structure placement for the scheduled variant. Homes, workplaces,
// schools, and leisure venues are dropped onto the grid by
// noise-weighted sampling, so each category clusters into its own
// districts instead of scattering uniformly.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/agora/internal/entropy"
)

// StructureCategory classifies what a structure is used for.
type StructureCategory uint8

const (
	CategoryHome StructureCategory = iota
	CategoryWork
	CategorySchool
	CategoryLeisure
)

// CategoryName returns a human-readable category label.
func CategoryName(c StructureCategory) string {
	switch c {
	case CategoryHome:
		return "home"
	case CategoryWork:
		return "work"
	case CategorySchool:
		return "school"
	case CategoryLeisure:
		return "leisure"
	}
	return "unknown"
}

// Structure is a square region of cells agents are scheduled into.
// Center is the representative cell directed movement steers toward.
type Structure struct {
	Category StructureCategory
	Center   Coord
	HalfSize int
}

// Contains reports whether c lies inside the structure's footprint.
func (s Structure) Contains(c Coord) bool {
	return Chebyshev(s.Center, c) <= s.HalfSize
}

// StructureCounts configures how many structures of each category to
// place.
type StructureCounts struct {
	Homes      int
	Workplaces int
	Schools    int
	Leisure    int
}

// Footprint half-sizes per category. Workplaces and schools are larger
// gathering places than homes and venues.
var categoryHalfSize = map[StructureCategory]int{
	CategoryHome:    1,
	CategoryWork:    2,
	CategorySchool:  2,
	CategoryLeisure: 1,
}

const placementAttempts = 24

// PlaceStructures samples structure centers for every category. Each
// category gets its own noise field (seed-offset, as with terrain
// layers); candidate cells are drawn uniformly and accepted with
// probability equal to the local noise value, which pulls structures
// of a category toward that category's high-noise basins.
func PlaceStructures(counts StructureCounts, width, height int, seed int64, src *entropy.Source) []Structure {
	specs := []struct {
		category StructureCategory
		count    int
	}{
		{CategoryHome, counts.Homes},
		{CategoryWork, counts.Workplaces},
		{CategorySchool, counts.Schools},
		{CategoryLeisure, counts.Leisure},
	}

	var structures []Structure
	for layer, spec := range specs {
		noise := opensimplex.NewNormalized(seed + int64(layer))
		half := categoryHalfSize[spec.category]
		for i := 0; i < spec.count; i++ {
			center := sampleCenter(noise, width, height, half, src)
			structures = append(structures, Structure{
				Category: spec.category,
				Center:   center,
				HalfSize: half,
			})
		}
	}
	return structures
}

// sampleCenter rejection-samples a center cell weighted by the noise
// field. The center is kept at least half cells from every edge so the
// whole footprint, and any directed step toward it, stays in bounds.
func sampleCenter(noise opensimplex.Noise, width, height, half int, src *entropy.Source) Coord {
	const frequency = 0.1

	minX, maxX := half, width-1-half
	minY, maxY := half, height-1-half
	if maxX < minX {
		minX, maxX = 0, width-1
	}
	if maxY < minY {
		minY, maxY = 0, height-1
	}

	var candidate Coord
	for attempt := 0; attempt < placementAttempts; attempt++ {
		candidate = Coord{
			X: minX + src.Intn(maxX-minX+1),
			Y: minY + src.Intn(maxY-minY+1),
		}
		w := noise.Eval2(float64(candidate.X)*frequency, float64(candidate.Y)*frequency)
		if src.Float64() < w {
			return candidate
		}
	}
	// All attempts rejected; keep the last candidate rather than loop
	// forever on a low-noise grid.
	return candidate
}
