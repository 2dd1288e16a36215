package game

import (
	"fmt"
	"math"
)

const (
	combatCloseRangeSq   = 100.0 // enemies within 10 cells count toward local odds
	combatPressRangeSq   = 36.0  // 6 cells: an enemy this close is on top of us
	combatTooRiskyDanger = 0.55
	combatMaxObjective   = 35.0
	combatSkipDanger     = 0.85
	grenadeAllySafetySq  = 64.0
)

// combatState drives a warrior: pick a firing position toward the order
// target or default objective, then shoot, lob grenades and fall back.
type combatState struct {
	lastGrenadeTick int
}

func (s *combatState) Kind() StateKind { return StateCombat }

func (s *combatState) OnEnter(a *Agent) {
	if a.role != RoleWarrior {
		a.world.logEvent(a, "diag", "combat_role", "non-warrior cannot fight, seeking cover", 0)
		a.ChangeState(&coverState{})
		return
	}
	a.engaging = true
	s.lastGrenadeTick = neverTick

	objective := a.world.bf.DefaultTargets[a.team]
	if a.hasOrderTarget {
		objective = a.orderTarget
	}
	pos, ok := s.pickFiringPosition(a, objective)
	if !ok {
		pos = objective
		a.world.logVerbose(a, "combat", "position", fmt.Sprintf("no firing position, heading for (%d,%d)", pos.X, pos.Y))
	} else {
		a.world.logVerbose(a, "combat", "position", fmt.Sprintf("firing position (%d,%d) risk=%.2f",
			pos.X, pos.Y, a.world.influence.Danger(a.team, pos.X, pos.Y)))
	}

	a.clearOrderTarget()
	path, ok := a.planTo(pos, 0.9, 0.6)
	if !ok {
		a.world.logEvent(a, "combat", "no_path", fmt.Sprintf("cannot reach (%d,%d)", pos.X, pos.Y), 0)
		a.ChangeState(&coverState{})
		return
	}
	a.SetPath(path)
}

// pickFiringPosition scores every walkable cell in a square around the
// agent by danger, distance to the objective and to the agent, with a small
// bonus for hard cover nearby.
func (s *combatState) pickFiringPosition(a *Agent, objective GridPos) (GridPos, bool) {
	g := a.world.grid
	sx, sy := int(a.x), int(a.y)
	r := a.cfg().CombatSearchRadius
	best := math.Inf(1)
	var pick GridPos
	found := false
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			x, y := sx+dx, sy+dy
			if !g.IsWalkable(x, y) {
				continue
			}
			distT := math.Hypot(float64(x-objective.X), float64(y-objective.Y))
			if distT > combatMaxObjective {
				continue
			}
			risk := a.world.influence.Danger(a.team, x, y)
			if risk >= combatSkipDanger {
				continue
			}
			score := risk*12 + distT*0.2 + math.Hypot(float64(dx), float64(dy))*0.05
			if g.NearOpaque(x, y, 2) {
				score -= 0.15
			}
			if score < best {
				best = score
				pick = GridPos{x, y}
				found = true
			}
		}
	}
	return pick, found
}

func (s *combatState) Transition(a *Agent) {
	if a.role != RoleWarrior || !a.Alive() {
		return
	}
	w := a.world
	cfg := a.cfg()

	var (
		enemiesClose, enemiesPressing int
		nearest                       *Agent
		nearestSq                     = math.Inf(1)
		primary, fallback, lob        *Agent
		enemyWarriorsAlive            bool
	)
	grenadeRangeSq := cfg.GrenadeRange * cfg.GrenadeRange
	for _, e := range w.roster[a.team.Opponent()] {
		if !e.Alive() {
			continue
		}
		if e.role == RoleWarrior {
			enemyWarriorsAlive = true
		}
		if primary != nil {
			continue
		}
		d2 := a.distSqTo(e)
		if d2 < nearestSq {
			nearestSq = d2
			nearest = e
		}
		if d2 <= combatCloseRangeSq {
			enemiesClose++
		}
		if d2 <= combatPressRangeSq {
			enemiesPressing++
		}
		shootable := a.InRange(e, cfg.FireRange) && a.CanSee(e)
		if e.role == RoleWarrior || e.role == RoleCommander {
			if shootable {
				primary = e
				a.ReportEnemySpotted(e)
				if a.state != s {
					return
				}
				continue
			}
		} else if shootable && fallback == nil {
			fallback = e
		}
		if lob == nil && d2 <= grenadeRangeSq {
			lob = e
		}
	}
	if primary == nil {
		primary = fallback
	}

	alliesClose := 0
	for _, o := range w.roster[a.team] {
		if o != a && o.Alive() && a.distSqTo(o) <= combatCloseRangeSq {
			alliesClose++
		}
	}

	recentlyRetreated := a.since(a.lastRetreatTick) < cfg.RecentRetreatTicks
	lowHealth := a.hp < cfg.RetreatHP
	overwhelmed := enemiesClose > alliesClose+1 || enemiesPressing >= 2 || nearestSq <= combatPressRangeSq

	if a.hp <= cfg.CriticalHP {
		a.Stop()
		if !recentlyRetreated {
			w.logEvent(a, "combat", "critical", fmt.Sprintf("hp=%d, breaking contact", a.hp), float64(a.hp))
			a.retreatToCover()
		}
		if a.Alive() {
			a.ReportInjury()
		}
		return
	}

	if !recentlyRetreated && (lowHealth || overwhelmed) {
		w.logEvent(a, "combat", "fall_back", fmt.Sprintf("hp=%d close=%d allies=%d", a.hp, enemiesClose, alliesClose), float64(a.hp))
		a.retreatToCover()
		a.ReportInjury()
		return
	}

	if !a.moving && primary == nil && a.danger() > combatTooRiskyDanger && enemyWarriorsAlive {
		w.logEvent(a, "combat", "too_exposed", fmt.Sprintf("risk=%.2f", a.danger()), a.danger())
		a.retreatToCover()
		return
	}

	switch {
	case primary != nil:
		a.Stop()
		if a.since(a.lastShotTick) <= cfg.FireCooldownTicks {
			break
		}
		if a.ammo <= 0 {
			a.ReportLowAmmo()
			if a.state != s {
				return
			}
			w.logEvent(a, "combat", "dry", "out of ammo, heading to supply", 0)
			a.ChangeState(&goToSupplyState{})
			return
		}
		if !w.clearAllyLine(a, primary) {
			w.logVerbose(a, "combat", "hold_fire", "ally in line of fire")
			break
		}
		a.Shoot(primary)
		if a.state != s {
			return
		}
	case lob != nil && a.grenades > 0 && a.since(s.lastGrenadeTick) > cfg.GrenadeCooldownTicks &&
		a.since(a.lastShotTick) > cfg.GrenadeCooldownTicks:
		if w.alliesNear(a, lob.x, lob.y, grenadeAllySafetySq) {
			break
		}
		if a.ThrowGrenade(lob.x, lob.y) {
			s.lastGrenadeTick = a.now()
		}
		if a.state != s {
			return
		}
	default:
		if a.moving {
			return
		}
		if !a.hasPath() {
			s.advance(a, nearest)
		} else {
			s.flankObstructed(a)
		}
	}

	if !recentlyRetreated && a.hp < cfg.InjuryThreshold {
		w.logEvent(a, "combat", "wounded", fmt.Sprintf("hp=%d, falling back", a.hp), float64(a.hp))
		a.retreatToCover()
		a.ReportInjury()
	}
}

// advance walks toward the nearest living enemy, or the default objective
// when none is left.
func (s *combatState) advance(a *Agent, nearest *Agent) {
	if nearest != nil && nearest.Alive() {
		a.GoToGrid(int(math.Round(nearest.x)), int(math.Round(nearest.y)))
		return
	}
	t := a.world.bf.DefaultTargets[a.team]
	a.GoToGrid(t.X, t.Y)
}

// flankObstructed moves next to the closest enemy in fire range that is
// hidden behind terrain.
func (s *combatState) flankObstructed(a *Agent) {
	cfg := a.cfg()
	bestSq := cfg.FireRange * cfg.FireRange
	var hidden *Agent
	for _, e := range a.world.roster[a.team.Opponent()] {
		if !e.Alive() {
			continue
		}
		d2 := a.distSqTo(e)
		if d2 < bestSq && d2 > 9 && !a.CanSee(e) {
			hidden = e
			bestSq = d2
		}
	}
	if hidden == nil {
		return
	}
	t := GridPos{int(math.Round(hidden.x)), int(math.Round(hidden.y))}
	if alt, ok := a.world.grid.FindNearestFreeTile(t.X, t.Y, 2, a.id); ok {
		t = alt
	}
	a.GoToGrid(t.X, t.Y)
}

func (s *combatState) OnExit(a *Agent) {
	a.engaging = false
}
