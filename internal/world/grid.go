// Package world provides the grid geometry, cell occupancy, spatial
// indexing, and structure placement for the simulation.
package world

// Coord is an integer cell position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev returns the Chebyshev (chessboard) distance between two
// coordinates: max(|dx|, |dy|).
func Chebyshev(a, b Coord) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Grid is a bounded 2D grid with optional single-occupancy tracking.
// Cell (x, y) is stored at index y*Width+x. A cell holds the occupying
// agent id plus one, with zero meaning empty.
type Grid struct {
	Width  int
	Height int
	cells  []int
}

// NewGrid creates an empty grid of the given dimensions.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		cells:  make([]int, width*height),
	}
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// Occupied reports whether the cell at c holds an agent.
func (g *Grid) Occupied(c Coord) bool {
	return g.cells[c.Y*g.Width+c.X] != 0
}

// Place marks c as occupied by the given agent id. The cell must be
// in bounds and empty.
func (g *Grid) Place(id int, c Coord) {
	g.cells[c.Y*g.Width+c.X] = id + 1
}

// Move clears the old cell and marks the new one.
func (g *Grid) Move(id int, from, to Coord) {
	g.cells[from.Y*g.Width+from.X] = 0
	g.cells[to.Y*g.Width+to.X] = id + 1
}

// Capacity returns the number of cells.
func (g *Grid) Capacity() int {
	return g.Width * g.Height
}
