package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// --- Combat constants ---

const (
	shotSpawnOffset   = 0.5 // cells ahead of the shooter a round appears
	shotHitRadiusSq   = 1.0
	blastLifetime     = 30 // ticks a grenade blast stays on screen
	flashLifetime     = 4  // ticks a muzzle flash persists
	hitFlashTicks     = 24
	blastHazardRadius = 3
	blastHazardCost   = 8.0
	allyLineRadius    = 1.6 // clearance an ally needs from the line of fire
)

// Gunshot is a round in flight. It travels a fixed distance and stops on the
// first hard obstacle or enemy it meets.
type Gunshot struct {
	x, y       float64
	dirX, dirY float64
	speed      float64
	remaining  float64
	team       Team
	damage     int
	shooterID  int
}

// Pos returns the round's current position.
func (g *Gunshot) Pos() (float64, float64) { return g.x, g.y }

// Team returns the firing team.
func (g *Gunshot) Team() Team { return g.team }

// Blast is a grenade detonation kept for the renderer.
type Blast struct {
	x, y   float64
	radius float64
	team   Team
	age    int
}

// MuzzleFlash is a short-lived visual burst at the shooter.
type MuzzleFlash struct {
	x, y  float64
	angle float64
	team  Team
	age   int
}

// --- Combat Manager ---

// CombatManager owns the rounds in flight and the transient combat visuals.
type CombatManager struct {
	shots   []*Gunshot
	blasts  []*Blast
	flashes []*MuzzleFlash
}

// NewCombatManager returns an empty manager.
func NewCombatManager() *CombatManager {
	return &CombatManager{}
}

// Shots returns the rounds in flight.
func (cm *CombatManager) Shots() []*Gunshot { return cm.shots }

// spawnShot launches a round from shooter toward target. Only warriors fire.
func (cm *CombatManager) spawnShot(cfg *Config, shooter, target *Agent) bool {
	if shooter.role != RoleWarrior {
		return false
	}
	dx, dy := target.x-shooter.x, target.y-shooter.y
	d := math.Hypot(dx, dy)
	if d < 1e-4 {
		return false
	}
	dx, dy = dx/d, dy/d
	cm.shots = append(cm.shots, &Gunshot{
		x:         shooter.x + dx*shotSpawnOffset,
		y:         shooter.y + dy*shotSpawnOffset,
		dirX:      dx,
		dirY:      dy,
		speed:     cfg.ShotSpeed,
		remaining: cfg.ShotDistance,
		team:      shooter.team,
		damage:    cfg.ShotDamage,
		shooterID: shooter.id,
	})
	cm.flashes = append(cm.flashes, &MuzzleFlash{x: shooter.x, y: shooter.y, angle: math.Atan2(dy, dx), team: shooter.team})
	return true
}

// UpdateShots advances every round one tick. A round leaves a fire-risk
// trail in the danger field of the team it is flying at and is removed when
// it leaves the map, hits rock, tree or warehouse, strikes a living enemy,
// or runs out of distance.
func (cm *CombatManager) UpdateShots(w *World) {
	g := w.grid
	kept := cm.shots[:0]
	for _, s := range cm.shots {
		s.x += s.dirX * s.speed
		s.y += s.dirY * s.speed
		s.remaining -= s.speed
		cx, cy := int(s.x+0.5), int(s.y+0.5)

		remove := false
		switch c := g.Cell(cx, cy); {
		case !g.InBounds(cx, cy):
			remove = true
		case c == CellRock || c == CellWarehouse || c == CellTree:
			remove = true
		}
		if !remove {
			target := s.team.Opponent()
			w.influence.AddFireRisk(target, cx, cy, w.cfg.FireRiskIncrement)
			for _, e := range w.roster[target] {
				if !e.Alive() {
					continue
				}
				dx, dy := e.x-s.x, e.y-s.y
				if dx*dx+dy*dy <= shotHitRadiusSq {
					if shooter := w.Agent(s.shooterID); shooter != nil {
						shooter.stats.Hits++
					}
					w.logVerbose(e, "combat", "hit", fmt.Sprintf("hit for %d", s.damage))
					e.TakeDamage(s.damage)
					remove = true
					break
				}
			}
		}
		if s.remaining <= 0 {
			remove = true
		}
		if !remove {
			kept = append(kept, s)
		}
	}
	clear(cm.shots[len(kept):])
	cm.shots = kept
}

// UpdateEffects ages and prunes blasts and muzzle flashes.
func (cm *CombatManager) UpdateEffects() {
	keptB := cm.blasts[:0]
	for _, b := range cm.blasts {
		b.age++
		if b.age < blastLifetime {
			keptB = append(keptB, b)
		}
	}
	clear(cm.blasts[len(keptB):])
	cm.blasts = keptB

	keptF := cm.flashes[:0]
	for _, f := range cm.flashes {
		f.age++
		if f.age < flashLifetime {
			keptF = append(keptF, f)
		}
	}
	clear(cm.flashes[len(keptF):])
	cm.flashes = keptF
}

// --- Agent weapons ---

// Shoot fires one round at target when the agent has ammo and the target is
// alive, in range and in sight.
func (a *Agent) Shoot(target *Agent) bool {
	cfg := a.cfg()
	if a.role != RoleWarrior || a.ammo <= 0 || target == nil || !target.Alive() {
		return false
	}
	if !a.InRange(target, cfg.FireRange) || !a.CanSee(target) {
		return false
	}
	if !a.world.combat.spawnShot(cfg, a, target) {
		return false
	}
	a.spendAmmo()
	a.lastShotTick = a.now()
	a.stats.ShotsFired++
	a.world.logVerbose(a, "combat", "fire", fmt.Sprintf("at %s, ammo=%d", target.label, a.ammo))
	if a.ammo <= cfg.LowAmmoThreshold {
		a.ReportLowAmmo()
	}
	return true
}

// ThrowGrenade detonates a grenade at (tx, ty). Enemies within the blast
// radius take damage falling off linearly with distance, at least 1. The
// blast also leaves a short-lived path cost around the impact.
func (a *Agent) ThrowGrenade(tx, ty float64) bool {
	cfg := a.cfg()
	if a.role != RoleWarrior || a.grenades <= 0 {
		return false
	}
	if a.distSq(tx, ty) > cfg.GrenadeRange*cfg.GrenadeRange {
		return false
	}
	a.spendGrenade()
	a.lastShotTick = a.now()
	a.stats.GrenadesThrown++
	w := a.world
	w.combat.blasts = append(w.combat.blasts, &Blast{x: tx, y: ty, radius: cfg.GrenadeRadius, team: a.team})
	w.grid.AddDynamicCost(int(tx+0.5), int(ty+0.5), blastHazardRadius, blastHazardCost)
	w.logEvent(a, "combat", "grenade", fmt.Sprintf("at (%.1f,%.1f)", tx, ty), 0)

	r := cfg.GrenadeRadius
	for _, e := range w.roster[a.team.Opponent()] {
		if !e.Alive() {
			continue
		}
		d := math.Hypot(e.x-tx, e.y-ty)
		if d > r {
			continue
		}
		dmg := max(1, int(math.Round(cfg.GrenadeDamage*math.Max(0, 1-d/r))))
		a.stats.Hits++
		e.TakeDamage(dmg)
	}
	return true
}

// clearAllyLine reports whether no living ally of shooter stands inside the
// corridor between shooter and target.
func (w *World) clearAllyLine(shooter, target *Agent) bool {
	dx, dy := target.x-shooter.x, target.y-shooter.y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-6 {
		return false
	}
	safe := allyLineRadius
	for _, o := range w.roster[shooter.team] {
		if o == shooter || o == target || !o.Alive() {
			continue
		}
		ax, ay := o.x-shooter.x, o.y-shooter.y
		t := (ax*dx + ay*dy) / lenSq
		if t <= 0 || t >= 1 {
			continue
		}
		px, py := o.x-(shooter.x+t*dx), o.y-(shooter.y+t*dy)
		if px*px+py*py <= safe*safe {
			return false
		}
	}
	return true
}

// alliesNear reports whether any living ally of a other than a is within
// sqrt(radiusSq) of (x, y).
func (w *World) alliesNear(a *Agent, x, y, radiusSq float64) bool {
	for _, o := range w.roster[a.team] {
		if o == a || !o.Alive() {
			continue
		}
		dx, dy := o.x-x, o.y-y
		if dx*dx+dy*dy <= radiusSq {
			return true
		}
	}
	return false
}

// --- Drawing ---

// Draw renders rounds, blasts and muzzle flashes at scale pixels per cell.
func (cm *CombatManager) Draw(screen *ebiten.Image, scale float32, offX, offY int) {
	ox, oy := float32(offX), float32(offY)
	for _, s := range cm.shots {
		hx, hy := ox+float32(s.x)*scale, oy+float32(s.y)*scale
		tx, ty := hx-float32(s.dirX)*scale*1.5, hy-float32(s.dirY)*scale*1.5
		vector.StrokeLine(screen, tx, ty, hx, hy, 1.2, teamTint(s.team, 220), false)
		vector.FillCircle(screen, hx, hy, 1.2, color.RGBA{R: 255, G: 255, B: 230, A: 230}, false)
	}
	for _, b := range cm.blasts {
		progress := float64(b.age) / float64(blastLifetime)
		alpha := uint8(200 * (1 - progress))
		r := float32(b.radius) * scale * float32(0.4+0.6*progress)
		cx, cy := ox+float32(b.x)*scale, oy+float32(b.y)*scale
		vector.FillCircle(screen, cx, cy, r, color.RGBA{R: 255, G: 140, B: 30, A: alpha / 3}, false)
		vector.StrokeCircle(screen, cx, cy, r, 1.5, color.RGBA{R: 255, G: 220, B: 120, A: alpha}, false)
	}
	for _, f := range cm.flashes {
		progress := float64(f.age) / float64(flashLifetime)
		alpha := uint8(255 * (1.0 - progress))
		sx, sy := ox+float32(f.x)*scale, oy+float32(f.y)*scale
		vector.FillCircle(screen, sx, sy, scale*0.6, color.RGBA{R: 255, G: 255, B: 220, A: alpha}, false)
		l := float64(scale) * 1.5 * (1.0 - progress*0.7)
		ex := sx + float32(math.Cos(f.angle)*l)
		ey := sy + float32(math.Sin(f.angle)*l)
		vector.StrokeLine(screen, sx, sy, ex, ey, 1.5, color.RGBA{R: 255, G: 240, B: 160, A: alpha}, false)
	}
}

// teamTint returns the team colour with the given alpha.
func teamTint(t Team, alpha uint8) color.RGBA {
	if t == TeamOrange {
		return color.RGBA{R: 255, G: 150, B: 40, A: alpha}
	}
	return color.RGBA{R: 70, G: 150, B: 255, A: alpha}
}
