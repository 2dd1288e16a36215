package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// borderWidth is the pixel gap between the window edge and the battlefield.
const borderWidth = 24

// cellPx is the on-screen size of one grid cell.
const cellPx = 8

// reportTicks is how much history the C key copies.
const reportTicks = 600

var cellColors = [...]color.RGBA{
	CellFree:      {R: 38, G: 54, B: 34, A: 255},
	CellTree:      {R: 22, G: 84, B: 30, A: 255},
	CellRock:      {R: 96, G: 92, B: 86, A: 255},
	CellWater:     {R: 36, G: 70, B: 120, A: 255},
	CellWarehouse: {R: 120, G: 94, B: 62, A: 255},
}

var (
	dangerColors = [teamCount]color.RGBA{
		TeamOrange: {R: 255, G: 60, B: 40, A: 170},
		TeamBlue:   {R: 200, G: 40, B: 255, A: 170},
	}
	visibilityColor = color.RGBA{R: 255, G: 240, B: 140, A: 90}
)

type Game struct {
	world *World

	width      int
	height     int
	gameWidth  int // playfield width (log panel takes the rest)
	gameHeight int
	offX       int
	offY       int

	// Pre-rendered terrain; the grid never changes after setup.
	terrain *ebiten.Image

	// Overlay toggles.
	showDanger     [teamCount]bool
	showVisibility bool
	showPaths      bool
	showHUD        bool
	prevKeys       map[ebiten.Key]bool

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	selected      *Agent
	prevMouseLeft bool

	status      string
	statusUntil int
}

// New builds the stock match and a window-sized viewer around it.
func New(cfg Config) (*Game, error) {
	w, err := NewDefaultWorld(cfg)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	cols, rows := w.grid.Cols(), w.grid.Rows()
	g := &Game{
		world:      w,
		gameWidth:  cols * cellPx,
		gameHeight: rows * cellPx,
		offX:       borderWidth,
		offY:       borderWidth,
		showPaths:  true,
		showHUD:    true,
		prevKeys:   make(map[ebiten.Key]bool),
		simSpeed:   1,
	}
	g.width = borderWidth + g.gameWidth + borderWidth + logPanelWidth
	g.height = borderWidth + g.gameHeight + borderWidth
	g.terrain = ebiten.NewImage(g.gameWidth, g.gameHeight)
	g.renderTerrain()
	return g, nil
}

// World exposes the simulation behind the viewer.
func (g *Game) World() *World { return g.world }

func (g *Game) renderTerrain() {
	grid := g.world.grid
	cs := float32(cellPx)
	for y := 0; y < grid.Rows(); y++ {
		for x := 0; x < grid.Cols(); x++ {
			c := cellColors[grid.Cell(x, y)]
			vector.FillRect(g.terrain, float32(x)*cs, float32(y)*cs, cs, cs, c, false)
		}
	}
	for t := Team(0); t < teamCount; t++ {
		d := g.world.bf.Depots[t]
		tint := teamTint(t, 200)
		for _, p := range []GridPos{d.Ammo, d.Med} {
			vector.StrokeRect(g.terrain, float32(p.X-1)*cs, float32(p.Y-1)*cs, 3*cs, 3*cs, 1.5, tint, false)
		}
	}
}

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()

	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.world.Step()
	}
	if g.selected != nil && !g.selected.Alive() {
		g.selected = nil
	}
	return nil
}

// pressed reports a key going down this frame.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes toggle keypresses (edge-triggered).
func (g *Game) handleInput() {
	cur := map[ebiten.Key]bool{}

	if g.pressed(cur, ebiten.Key1) {
		g.showDanger[TeamOrange] = !g.showDanger[TeamOrange]
	}
	if g.pressed(cur, ebiten.Key2) {
		g.showDanger[TeamBlue] = !g.showDanger[TeamBlue]
	}
	if g.pressed(cur, ebiten.KeyV) {
		g.showVisibility = !g.showVisibility
	}
	// Tab: which team the visibility field is computed for.
	if g.pressed(cur, ebiten.KeyTab) {
		g.world.SetVisibilityTeam(g.world.VisibilityTeam().Opponent())
	}
	if g.pressed(cur, ebiten.KeyT) {
		g.showPaths = !g.showPaths
	}
	if g.pressed(cur, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(cur, ebiten.KeyC) {
		g.copyDebugReport()
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if g.pressed(cur, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(cur, ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if g.pressed(cur, ebiten.KeyPeriod) {
		for i, s := range speeds {
			if s <= g.simSpeed && i < len(speeds)-1 && speeds[i+1] > g.simSpeed {
				g.simSpeed = speeds[i+1]
				break
			}
		}
	}

	// Left mouse click: select the nearest living agent.
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !g.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		g.selectAt(mx, my)
	}
	g.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	g.prevKeys = cur
}

func (g *Game) selectAt(mx, my int) {
	wx := float64(mx-g.offX) / cellPx
	wy := float64(my-g.offY) / cellPx
	var best *Agent
	bestD := 4.0
	for _, a := range g.world.agents {
		if !a.Alive() {
			continue
		}
		if d := a.distSq(wx, wy); d < bestD {
			best, bestD = a, d
		}
	}
	g.selected = best
}

func (g *Game) copyDebugReport() {
	if err := CopyDebugReport(g.world, g.selected, reportTicks); err != nil {
		g.status = "clipboard: " + err.Error()
	} else {
		g.status = "debug report copied"
	}
	g.statusUntil = g.world.tick + 3*TicksPerSecond
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(g.offX), float64(g.offY))
	screen.DrawImage(g.terrain, &op)

	for t := Team(0); t < teamCount; t++ {
		if g.showDanger[t] {
			g.drawHeatLayer(screen, g.world.influence.DangerLayer(t), dangerColors[t])
		}
	}
	if g.showVisibility {
		layer, _ := g.world.influence.VisibilityLayer()
		g.drawHeatLayer(screen, layer, visibilityColor)
	}
	if g.showPaths {
		g.drawPaths(screen)
	}
	g.world.combat.Draw(screen, cellPx, g.offX, g.offY)
	g.drawAgents(screen)

	// Battlefield border frame.
	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	logX := g.offX + g.gameWidth + g.offX
	g.world.Thoughts.Draw(screen, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.selected != nil {
		g.drawInspector(screen, g.selected)
	}
	if g.status != "" && g.world.tick < g.statusUntil {
		ebitenutil.DebugPrintAt(screen, g.status, g.offX+6, g.offY+g.gameHeight-18)
	}
}

// drawHeatLayer renders one HeatLayer as an alpha-blended colour wash.
func (g *Game) drawHeatLayer(screen *ebiten.Image, layer *HeatLayer, baseCol color.RGBA) {
	ox, oy := float32(g.offX), float32(g.offY)
	cs := float32(cellPx)
	for row := 0; row < layer.Rows(); row++ {
		for col := 0; col < layer.Cols(); col++ {
			v := layer.At(row, col)
			if v < 0.01 {
				continue
			}
			alpha := uint8(float64(baseCol.A) * v)
			if alpha < 2 {
				continue
			}
			c := color.RGBA{R: baseCol.R, G: baseCol.G, B: baseCol.B, A: alpha}
			vector.FillRect(screen, ox+float32(col)*cs, oy+float32(row)*cs, cs, cs, c, false)
		}
	}
}

func (g *Game) drawPaths(screen *ebiten.Image) {
	ox, oy := float32(g.offX), float32(g.offY)
	half := float32(cellPx) / 2
	for _, a := range g.world.agents {
		if !a.Alive() || !a.hasPath() {
			continue
		}
		alpha := uint8(60)
		if a == g.selected {
			alpha = 180
		}
		c := teamTint(a.team, alpha)
		px, py := ox+float32(a.x)*cellPx, oy+float32(a.y)*cellPx
		for _, p := range a.path[a.pathIndex:] {
			nx, ny := ox+float32(p.X)*cellPx+half, oy+float32(p.Y)*cellPx+half
			vector.StrokeLine(screen, px, py, nx, ny, 1.0, c, false)
			px, py = nx, ny
		}
		vector.StrokeCircle(screen, px, py, 2.5, 1.0, c, false)
	}
}

func (g *Game) drawAgents(screen *ebiten.Image) {
	ox, oy := float32(g.offX), float32(g.offY)
	for _, a := range g.world.agents {
		cx, cy := ox+float32(a.x)*cellPx, oy+float32(a.y)*cellPx
		if !a.Alive() {
			d := float32(3)
			c := color.RGBA{R: 90, G: 90, B: 90, A: 200}
			vector.StrokeLine(screen, cx-d, cy-d, cx+d, cy+d, 1.5, c, false)
			vector.StrokeLine(screen, cx-d, cy+d, cx+d, cy-d, 1.5, c, false)
			continue
		}
		r := float32(cellPx) * 0.6
		vector.FillCircle(screen, cx, cy, r, teamTint(a.team, 255), false)
		if a == g.selected {
			vector.StrokeCircle(screen, cx, cy, r+3, 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 220}, false)
		}
		drawRoleGlyph(screen, a, cx, cy)
		g.drawBars(screen, a, cx, cy-r-3)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// GameWidth returns the playfield width (excluding log panel).
func (g *Game) GameWidth() int {
	return g.gameWidth
}

// WindowSize is the native window size in pixels.
func (g *Game) WindowSize() (int, int) {
	return g.width, g.height
}
