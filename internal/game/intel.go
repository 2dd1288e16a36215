package game

import "math"

const heatMaxValue = 1.0

// HeatLayer is a row-major grid of values clamped to [0, heatMaxValue].
type HeatLayer struct {
	cells []float64
	rows  int
	cols  int
}

func newHeatLayer(rows, cols int) *HeatLayer {
	return &HeatLayer{
		cells: make([]float64, rows*cols),
		rows:  rows,
		cols:  cols,
	}
}

// Add adds delta to cell (row, col), clamped to [0, heatMaxValue].
func (l *HeatLayer) Add(row, col int, delta float64) {
	if row < 0 || row >= l.rows || col < 0 || col >= l.cols {
		return
	}
	idx := row*l.cols + col
	l.cells[idx] = math.Max(0, math.Min(heatMaxValue, l.cells[idx]+delta))
}

// Set forces a cell to exactly v, clamped to [0, heatMaxValue].
func (l *HeatLayer) Set(row, col int, v float64) {
	if row < 0 || row >= l.rows || col < 0 || col >= l.cols {
		return
	}
	l.cells[row*l.cols+col] = math.Max(0, math.Min(heatMaxValue, v))
}

// At returns the value at (row, col), or 0 if out of bounds.
func (l *HeatLayer) At(row, col int) float64 {
	if row < 0 || row >= l.rows || col < 0 || col >= l.cols {
		return 0
	}
	return l.cells[row*l.cols+col]
}

// Reset zeroes the layer.
func (l *HeatLayer) Reset() {
	clear(l.cells)
}

// Decay scales every value by factor and floors tiny values.
func (l *HeatLayer) Decay(factor float64) {
	for i, v := range l.cells {
		if v == 0 {
			continue
		}
		v *= factor
		if v < 0.001 {
			v = 0
		}
		l.cells[i] = v
	}
}

// Rows returns the layer height.
func (l *HeatLayer) Rows() int { return l.rows }

// Cols returns the layer width.
func (l *HeatLayer) Cols() int { return l.cols }

// InfluenceMap owns the per-team danger fields and the shared visibility
// field. Danger is rebuilt from scratch from enemy warrior raycasts every
// tick; projectile trails go into a separate decaying fire-risk layer that is
// folded into danger on rebuild, so two rebuilds with the same inputs give
// identical fields.
type InfluenceMap struct {
	danger     [teamCount]*HeatLayer
	fireRisk   [teamCount]*HeatLayer
	visibility *HeatLayer
	visibleFor Team

	rays            int
	dangerRange     int
	dangerIncrement float64
	visibilityRange int

	// unit ray directions, computed once so every rebuild walks identical rays
	rayDX []float64
	rayDY []float64
}

// NewInfluenceMap allocates fields matching grid and precomputes the ray fan.
func NewInfluenceMap(grid *WorldGrid, cfg Config) *InfluenceMap {
	m := &InfluenceMap{
		visibility:      newHeatLayer(grid.Rows(), grid.Cols()),
		rays:            cfg.DangerRays,
		dangerRange:     cfg.DangerRange,
		dangerIncrement: cfg.DangerIncrement,
		visibilityRange: cfg.VisibilityRange,
	}
	for t := Team(0); t < teamCount; t++ {
		m.danger[t] = newHeatLayer(grid.Rows(), grid.Cols())
		m.fireRisk[t] = newHeatLayer(grid.Rows(), grid.Cols())
	}
	m.rayDX = make([]float64, m.rays)
	m.rayDY = make([]float64, m.rays)
	for r := 0; r < m.rays; r++ {
		ang := 2 * math.Pi * float64(r) / float64(m.rays)
		m.rayDX[r] = math.Cos(ang)
		m.rayDY[r] = math.Sin(ang)
	}
	return m
}

// Danger returns the perceived threat to team at (x, y).
func (m *InfluenceMap) Danger(team Team, x, y int) float64 {
	return m.danger[team].At(y, x)
}

// DangerLayer exposes a team's field for rendering.
func (m *InfluenceMap) DangerLayer(team Team) *HeatLayer { return m.danger[team] }

// Visibility returns how visible (x, y) is to the last team scanned.
func (m *InfluenceMap) Visibility(x, y int) float64 {
	return m.visibility.At(y, x)
}

// VisibilityLayer exposes the shared visibility field and its viewer team.
func (m *InfluenceMap) VisibilityLayer() (*HeatLayer, Team) { return m.visibility, m.visibleFor }

// RebuildDanger recomputes both teams' danger fields from the living
// warriors of the opposing side.
func (m *InfluenceMap) RebuildDanger(grid *WorldGrid, agents []*Agent) {
	for t := Team(0); t < teamCount; t++ {
		layer := m.danger[t]
		copy(layer.cells, m.fireRisk[t].cells)
		for _, a := range agents {
			if a.team == t || !a.Alive() || a.role != RoleWarrior {
				continue
			}
			sx, sy := int(math.Floor(a.x)), int(math.Floor(a.y))
			if !grid.InBounds(sx, sy) {
				continue
			}
			m.castDanger(grid, layer, sx, sy)
		}
	}
}

// castDanger fans rays from the centre of (sx, sy). Free and water cells take
// the base increment; the first rock takes double, the first tree or
// warehouse one and a half, and ends the ray.
func (m *InfluenceMap) castDanger(grid *WorldGrid, layer *HeatLayer, sx, sy int) {
	inc := m.dangerIncrement
	for r := 0; r < m.rays; r++ {
		fx, fy := float64(sx)+0.5, float64(sy)+0.5
		for step := 0; step < m.dangerRange; step++ {
			fx += m.rayDX[r]
			fy += m.rayDY[r]
			tx, ty := int(math.Floor(fx)), int(math.Floor(fy))
			if !grid.InBounds(tx, ty) {
				break
			}
			c := grid.Cell(tx, ty)
			if c == CellRock {
				layer.Add(ty, tx, inc*2)
				break
			}
			if c == CellTree || c == CellWarehouse {
				layer.Add(ty, tx, inc*1.5)
				break
			}
			layer.Add(ty, tx, inc)
		}
	}
}

// AddFireRisk records a transient hazard for team at (x, y). It shows up in
// the danger field immediately and persists through rebuilds while it decays.
func (m *InfluenceMap) AddFireRisk(team Team, x, y int, inc float64) {
	m.fireRisk[team].Add(y, x, inc)
	m.danger[team].Add(y, x, inc)
}

// DecayFireRisk fades projectile trails. Called once per tick.
func (m *InfluenceMap) DecayFireRisk(factor float64) {
	for t := Team(0); t < teamCount; t++ {
		m.fireRisk[t].Decay(clamp01(factor))
	}
}

// RebuildVisibility marks every cell viewers of team can see. Rays stop after
// marking the first opaque cell.
func (m *InfluenceMap) RebuildVisibility(grid *WorldGrid, team Team, agents []*Agent) {
	m.visibility.Reset()
	m.visibleFor = team
	for _, a := range agents {
		if a.team != team || !a.Alive() {
			continue
		}
		sx, sy := int(math.Floor(a.x)), int(math.Floor(a.y))
		if !grid.InBounds(sx, sy) {
			continue
		}
		for r := 0; r < m.rays; r++ {
			fx, fy := float64(sx)+0.5, float64(sy)+0.5
			for step := 0; step < m.visibilityRange; step++ {
				fx += m.rayDX[r]
				fy += m.rayDY[r]
				tx, ty := int(math.Floor(fx)), int(math.Floor(fy))
				if !grid.InBounds(tx, ty) {
					break
				}
				m.visibility.Set(ty, tx, 1.0)
				if grid.BlocksSight(tx, ty) {
					break
				}
			}
		}
	}
}
