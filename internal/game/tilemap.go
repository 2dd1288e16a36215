package game

import "math"

// CellKind is the terrain tag of a single grid cell.
type CellKind uint8

const (
	CellFree      CellKind = iota // open ground
	CellTree                      // walkable, blocks sight and fire
	CellRock                      // impassable, blocks sight and fire
	CellWater                     // impassable, fire passes over it
	CellWarehouse                 // depot walls, impassable and opaque
)

func (c CellKind) String() string {
	switch c {
	case CellFree:
		return "free"
	case CellTree:
		return "tree"
	case CellRock:
		return "rock"
	case CellWater:
		return "water"
	case CellWarehouse:
		return "warehouse"
	default:
		return "unknown"
	}
}

// Walkable reports whether agents may stand on the cell.
func (c CellKind) Walkable() bool {
	return c == CellFree || c == CellTree
}

// BlocksSight reports whether the cell stops sightlines and gunfire.
func (c CellKind) BlocksSight() bool {
	return c == CellTree || c == CellRock || c == CellWarehouse
}

const (
	// occupancyPenalty is the extra path cost of a cell held by another agent.
	occupancyPenalty = 5.0
	// dynamicCostMax caps the transient hazard overlay per cell.
	dynamicCostMax = 20.0
	// dynamicCostFloor is the value below which decayed costs snap to zero.
	dynamicCostFloor = 0.01
)

// GridPos is an integer cell coordinate.
type GridPos struct {
	X, Y int
}

// WorldGrid holds terrain, the single-owner occupancy map and the decaying
// dynamic-cost overlay. Occupancy id 0 means the cell is free.
type WorldGrid struct {
	cols     int
	rows     int
	cells    []CellKind
	occupant []int
	dynCost  []float64
}

// NewWorldGrid returns an all-free grid of the given size.
func NewWorldGrid(cols, rows int) *WorldGrid {
	return &WorldGrid{
		cols:     cols,
		rows:     rows,
		cells:    make([]CellKind, cols*rows),
		occupant: make([]int, cols*rows),
		dynCost:  make([]float64, cols*rows),
	}
}

// Cols returns the grid width in cells.
func (g *WorldGrid) Cols() int { return g.cols }

// Rows returns the grid height in cells.
func (g *WorldGrid) Rows() int { return g.rows }

// InBounds reports whether (x, y) lies on the grid.
func (g *WorldGrid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.cols && y < g.rows
}

func (g *WorldGrid) index(x, y int) int { return y*g.cols + x }

// Cell returns the terrain at (x, y). Out-of-bounds reads as rock so the
// map edge behaves like a wall for every caller.
func (g *WorldGrid) Cell(x, y int) CellKind {
	if !g.InBounds(x, y) {
		return CellRock
	}
	return g.cells[g.index(x, y)]
}

// SetCell overwrites the terrain at (x, y).
func (g *WorldGrid) SetCell(x, y int, c CellKind) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[g.index(x, y)] = c
}

// IsWalkable reports whether an agent may stand on (x, y).
func (g *WorldGrid) IsWalkable(x, y int) bool {
	return g.Cell(x, y).Walkable()
}

// BlocksSight reports whether (x, y) is opaque.
func (g *WorldGrid) BlocksSight(x, y int) bool {
	return g.Cell(x, y).BlocksSight()
}

// --- Occupancy ---

// Occupant returns the id registered at (x, y), or 0.
func (g *WorldGrid) Occupant(x, y int) int {
	if !g.InBounds(x, y) {
		return 0
	}
	return g.occupant[g.index(x, y)]
}

// IsOccupied reports whether a different agent than ignoreID holds (x, y).
func (g *WorldGrid) IsOccupied(x, y, ignoreID int) bool {
	if !g.InBounds(x, y) {
		return false
	}
	id := g.occupant[g.index(x, y)]
	return id != 0 && id != ignoreID
}

// SetOccupied registers id at (x, y). A cell already held by someone else is
// never overwritten; the return value reports whether id now owns the cell.
func (g *WorldGrid) SetOccupied(x, y, id int) bool {
	if !g.InBounds(x, y) || id == 0 {
		return false
	}
	i := g.index(x, y)
	if g.occupant[i] != 0 && g.occupant[i] != id {
		return false
	}
	g.occupant[i] = id
	return true
}

// ClearOccupied releases (x, y) if it is held by id.
func (g *WorldGrid) ClearOccupied(x, y, id int) {
	if !g.InBounds(x, y) {
		return
	}
	i := g.index(x, y)
	if g.occupant[i] == id {
		g.occupant[i] = 0
	}
}

// OccupancyPenalty is the path-cost surcharge for entering (x, y).
func (g *WorldGrid) OccupancyPenalty(x, y, ignoreID int) float64 {
	if g.IsOccupied(x, y, ignoreID) {
		return occupancyPenalty
	}
	return 0
}

// --- Dynamic cost overlay ---

// DynamicCost returns the transient extra traversal cost at (x, y).
func (g *WorldGrid) DynamicCost(x, y int) float64 {
	if !g.InBounds(x, y) {
		return 0
	}
	return g.dynCost[g.index(x, y)]
}

// AddDynamicCost raises the overlay on a disk around (cx, cy).
func (g *WorldGrid) AddDynamicCost(cx, cy, radius int, extra float64) {
	if radius <= 0 || extra <= 0 {
		return
	}
	r2 := radius * radius
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if !g.InBounds(x, y) {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r2 {
				continue
			}
			i := g.index(x, y)
			g.dynCost[i] = math.Min(dynamicCostMax, g.dynCost[i]+extra)
		}
	}
}

// DecayDynamicCosts scales every overlay value by factor (clamped to [0,1])
// and floors near-zero values. Called once per tick.
func (g *WorldGrid) DecayDynamicCosts(factor float64) {
	factor = clamp01(factor)
	for i, v := range g.dynCost {
		if v == 0 {
			continue
		}
		v *= factor
		if v < dynamicCostFloor {
			v = 0
		}
		g.dynCost[i] = v
	}
}

// --- Terrain stamping ---

// StampSquare fills an axis-aligned square of the given size centred on (cx, cy).
func (g *WorldGrid) StampSquare(cx, cy int, size float64, c CellKind) {
	x0 := int(math.Floor(float64(cx) - size/2))
	x1 := int(math.Ceil(float64(cx) + size/2))
	y0 := int(math.Floor(float64(cy) - size/2))
	y1 := int(math.Ceil(float64(cy) + size/2))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			g.SetCell(x, y, c)
		}
	}
}

// StampEllipse fills every cell inside the ellipse with radii (rx, ry).
func (g *WorldGrid) StampEllipse(cx, cy int, rx, ry float64, c CellKind) {
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := cy - int(math.Ceil(ry)); y <= cy+int(math.Ceil(ry)); y++ {
		for x := cx - int(math.Ceil(rx)); x <= cx+int(math.Ceil(rx)); x++ {
			nx := float64(x-cx) / rx
			ny := float64(y-cy) / ry
			if nx*nx+ny*ny <= 1.0 {
				g.SetCell(x, y, c)
			}
		}
	}
}

// --- Neighbourhood queries ---

var dirs4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// NearHardCover reports whether a tree or rock lies within Chebyshev distance r.
func (g *WorldGrid) NearHardCover(x, y, r int) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			c := g.Cell(x+dx, y+dy)
			if g.InBounds(x+dx, y+dy) && (c == CellTree || c == CellRock) {
				return true
			}
		}
	}
	return false
}

// NearOpaque reports whether any sight-blocking cell other than (x, y) itself
// lies within Chebyshev distance r.
func (g *WorldGrid) NearOpaque(x, y, r int) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.InBounds(x+dx, y+dy) && g.BlocksSight(x+dx, y+dy) {
				return true
			}
		}
	}
	return false
}

// FindNearestFreeTile runs a 4-connected flood from (x, y) over walkable cells
// and returns the first one not held by another agent. Because the flood only
// crosses walkable cells, the result is reachable by the path planner.
func (g *WorldGrid) FindNearestFreeTile(x, y, radius, ignoreID int) (GridPos, bool) {
	if !g.InBounds(x, y) {
		return GridPos{}, false
	}
	type node struct{ x, y, d int }
	visited := make(map[int]bool)
	queue := []node{{x, y, 0}}
	visited[g.index(x, y)] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if g.IsWalkable(cur.x, cur.y) && !g.IsOccupied(cur.x, cur.y, ignoreID) {
			return GridPos{cur.x, cur.y}, true
		}
		if cur.d >= radius {
			continue
		}
		// The seed may sit on a wall; only expand out of it or through walkable cells.
		if cur.d > 0 && !g.IsWalkable(cur.x, cur.y) {
			continue
		}
		for _, d := range dirs4 {
			nx, ny := cur.x+d[0], cur.y+d[1]
			if !g.InBounds(nx, ny) {
				continue
			}
			k := g.index(nx, ny)
			if visited[k] {
				continue
			}
			visited[k] = true
			queue = append(queue, node{nx, ny, cur.d + 1})
		}
	}
	return GridPos{}, false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
