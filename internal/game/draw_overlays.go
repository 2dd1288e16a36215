package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// hudFace is the fixed 7x13 bitmap face used for every overlay label.
var hudFace = text.NewGoXFace(basicfont.Face7x13)

const (
	hudLineH = 14
	barW     = 10
	barH     = 2
)

var (
	hpBarColor     = color.RGBA{R: 80, G: 220, B: 90, A: 230}
	ammoBarColor   = color.RGBA{R: 240, G: 210, B: 70, A: 230}
	supplyBarColor = color.RGBA{R: 90, G: 200, B: 255, A: 230}
	barBackColor   = color.RGBA{R: 0, G: 0, B: 0, A: 160}
)

// drawLabel draws s with its top-left corner at (x, y).
func drawLabel(screen *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, hudFace, op)
}

// drawRoleGlyph stamps the role letter over an agent's disc.
func drawRoleGlyph(screen *ebiten.Image, a *Agent, cx, cy float32) {
	drawLabel(screen, string(a.role.Letter()), float64(cx)-3, float64(cy)-7, color.RGBA{R: 10, G: 10, B: 10, A: 255})
}

// drawBars draws the HP bar and, below it, the role's resource bar
// (ammo for warriors, supply for medics and porters).
func (g *Game) drawBars(screen *ebiten.Image, a *Agent, cx, y float32) {
	x := cx - barW/2
	drawBar(screen, x, y-barH-1, float64(a.hp)/float64(a.world.cfg.MaxHP), hpBarColor)
	switch a.role {
	case RoleWarrior:
		drawBar(screen, x, y, ratio(a.ammo, a.maxAmmo), ammoBarColor)
	case RoleMedic, RolePorter:
		drawBar(screen, x, y, ratio(a.supply, a.maxSupply), supplyBarColor)
	}
}

func drawBar(screen *ebiten.Image, x, y float32, frac float64, c color.RGBA) {
	vector.FillRect(screen, x, y, barW, barH, barBackColor, false)
	if frac > 0 {
		vector.FillRect(screen, x, y, barW*float32(clamp01(frac)), barH, c, false)
	}
}

func ratio(v, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(v) / float64(limit)
}

// drawHUD renders sim speed, commander postures and key hints in the
// bottom-left corner of the battlefield.
func (g *Game) drawHUD(screen *ebiten.Image) {
	w := g.world
	speedStr := "PAUSED"
	if g.simSpeed > 0 {
		speedStr = fmt.Sprintf("%gx", g.simSpeed)
	}
	lines := []string{
		fmt.Sprintf("T=%d  SIM: %s  P=pause  ,/. speed", w.tick, speedStr),
	}
	for t := Team(0); t < teamCount; t++ {
		posture := "no commander"
		if c := w.commanders[t]; c != nil {
			posture = c.State().String()
		}
		ts := w.TeamStats(t)
		lines = append(lines, fmt.Sprintf("%-6s %-8s alive=%d deaths=%d", t, posture, ts.Alive, ts.Deaths))
	}
	on := func(b bool) string {
		if b {
			return "*"
		}
		return " "
	}
	lines = append(lines,
		fmt.Sprintf("[1]%s orange danger  [2]%s blue danger", on(g.showDanger[TeamOrange]), on(g.showDanger[TeamBlue])),
		fmt.Sprintf("[V]%s visibility (%s, Tab)  [T]%s paths", on(g.showVisibility), w.visibilityTeam, on(g.showPaths)),
		"[C] copy debug report  [H] hide  click=inspect",
	)
	if out := w.Outcome(); out.Outcome.Decided() {
		lines = append(lines, "OUTCOME: "+out.String())
	}

	const padX, padY = 6, 4
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*7 + padX*2)
	boxH := float32(len(lines)*hudLineH + padY*2)
	bx := float32(g.offX + 4)
	by := float32(g.offY+g.gameHeight) - boxH - 4

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, l := range lines {
		drawLabel(screen, l, float64(bx)+padX, float64(by)+padY+float64(i*hudLineH), color.White)
	}
}

// drawInspector shows the selected agent's vitals in the top-left corner.
func (g *Game) drawInspector(screen *ebiten.Image, a *Agent) {
	st := a.stats
	lines := []string{
		fmt.Sprintf("%s  %s %s  state=%s", a.label, a.team, a.role, a.StateKind()),
		fmt.Sprintf("pos=(%.1f,%.1f) hp=%d ammo=%d/%d gren=%d supply=%d/%d",
			a.x, a.y, a.hp, a.ammo, a.maxAmmo, a.grenades, a.supply, a.maxSupply),
		fmt.Sprintf("danger=%.2f moving=%t resting=%t path=%d/%d assists=%d",
			a.danger(), a.moving, a.resting, a.pathIndex, len(a.path), a.assists),
		fmt.Sprintf("shots=%d hits=%d heals=%d deliveries=%d stalls=%d",
			st.ShotsFired, st.Hits, st.Heals, st.Deliveries, st.Stalls),
	}
	if t := a.target(); t != nil {
		lines = append(lines, "target="+t.label)
	}

	bx, by := float32(g.offX+4), float32(g.offY+4)
	boxH := float32(len(lines)*hudLineH + 8)
	vector.FillRect(screen, bx, by, 420, boxH, color.RGBA{R: 6, G: 6, B: 16, A: 220}, false)
	vector.StrokeRect(screen, bx, by, 420, boxH, 1.0, teamTint(a.team, 200), false)
	for i, l := range lines {
		drawLabel(screen, l, float64(bx)+6, float64(by)+4+float64(i*hudLineH), color.White)
	}
}
