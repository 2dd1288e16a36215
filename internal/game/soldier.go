package game

import (
	"fmt"
	"math"
)

// neverTick marks a timer that has not fired yet. It is far enough in the
// past that every "ticks since" comparison treats it as long ago.
const neverTick = -1 << 30

// Agent is one soldier on the field: identity, continuous position, bounded
// resources, the current path and exactly one behaviour state while alive.
// Cross-references to other agents are ids resolved through the World.
type Agent struct {
	id    int
	label string
	team  Team
	role  Role
	world *World

	x, y             float64
	dirX, dirY       float64
	targetX, targetY float64 // current waypoint

	hp          int
	ammo        int
	maxAmmo     int
	grenades    int
	maxGrenades int
	supply      int
	maxSupply   int
	lowAmmo     bool
	assists     int

	path      []GridPos
	pathIndex int

	moving     bool
	engaging   bool
	delivering bool
	resting    bool

	state BehaviorState

	orderTarget    GridPos
	hasOrderTarget bool
	targetID       int

	occCell      GridPos
	hasOccupancy bool
	blockCounter int
	blockGoal    GridPos // path goal when the current stall began
	blockBest    float64 // Manhattan distance to blockGoal when the stall began

	lastRetreatTick    int
	lastIdleAnchorTick int
	lastShotTick       int
	lastReportTick     [reportKindCount]int
	hitFlashUntil      int

	stats AgentStats
}

func newAgent(w *World, id int, team Team, role Role, x, y float64) *Agent {
	cfg := &w.cfg
	a := &Agent{
		id:        id,
		label:     fmt.Sprintf("%c%c%d", team.letter(), role.Letter(), id),
		team:      team,
		role:      role,
		world:     w,
		x:         x,
		y:         y,
		targetX:   x,
		targetY:   y,
		hp:        cfg.MaxHP,
		pathIndex: -1,

		lastRetreatTick:    neverTick,
		lastIdleAnchorTick: w.tick,
		lastShotTick:       neverTick,
	}
	for i := range a.lastReportTick {
		a.lastReportTick[i] = neverTick
	}
	switch role {
	case RoleWarrior:
		a.maxAmmo = cfg.WarriorMaxAmmo
		a.ammo = a.maxAmmo
		a.maxGrenades = cfg.WarriorMaxGrenades
		a.grenades = a.maxGrenades
		// A warrior's supply bar tracks its grenades.
		a.maxSupply = a.maxGrenades
		a.supply = a.grenades
	case RoleMedic:
		a.maxSupply = cfg.MedicMaxSupply
		a.supply = a.maxSupply
	case RolePorter:
		a.maxSupply = cfg.PorterMaxSupply
		a.supply = a.maxSupply
	}
	a.lowAmmo = a.ammo <= cfg.LowAmmoThreshold
	a.updateOccupancy()
	return a
}

// --- Read accessors (renderer, harness) ---

func (a *Agent) ID() int                  { return a.id }
func (a *Agent) Label() string            { return a.label }
func (a *Agent) Team() Team               { return a.team }
func (a *Agent) Role() Role               { return a.role }
func (a *Agent) Pos() (float64, float64)  { return a.x, a.y }
func (a *Agent) HP() int                  { return a.hp }
func (a *Agent) Ammo() int                { return a.ammo }
func (a *Agent) MaxAmmo() int             { return a.maxAmmo }
func (a *Agent) Grenades() int            { return a.grenades }
func (a *Agent) Supply() int              { return a.supply }
func (a *Agent) MaxSupply() int           { return a.maxSupply }
func (a *Agent) IsMoving() bool           { return a.moving }
func (a *Agent) Path() []GridPos          { return a.path }
func (a *Agent) PathIndex() int           { return a.pathIndex }
func (a *Agent) LastRetreatTick() int     { return a.lastRetreatTick }
func (a *Agent) Stats() AgentStats        { return a.stats }

// OccupiedCell is the cell registered in the occupancy map, if any.
func (a *Agent) OccupiedCell() (GridPos, bool) { return a.occCell, a.hasOccupancy }

// Alive reports hp > 0. Dead agents stay in the roster as corpses.
func (a *Agent) Alive() bool { return a.hp > 0 }

// StateKind returns the tag of the current behaviour, or StateNone.
func (a *Agent) StateKind() StateKind {
	if a.state == nil {
		return StateNone
	}
	return a.state.Kind()
}

// isBusy is true while the agent is walking, fighting or on a delivery run.
func (a *Agent) isBusy() bool {
	return a.moving || a.engaging || a.delivering
}

// cell returns the grid cell the agent is standing on.
func (a *Agent) cell() GridPos {
	return GridPos{int(math.Round(a.x)), int(math.Round(a.y))}
}

func (a *Agent) distSq(x, y float64) float64 {
	dx, dy := x-a.x, y-a.y
	return dx*dx + dy*dy
}

func (a *Agent) distSqTo(o *Agent) float64 { return a.distSq(o.x, o.y) }

func (a *Agent) now() int { return a.world.tick }

func (a *Agent) since(tick int) int { return a.world.tick - tick }

func (a *Agent) cfg() *Config { return &a.world.cfg }

// danger is the agent's own team danger at its floor cell.
func (a *Agent) danger() float64 {
	return a.world.influence.Danger(a.team, int(a.x), int(a.y))
}

// --- Orders and targets ---

func (a *Agent) setOrderTarget(p GridPos) {
	a.orderTarget = p
	a.hasOrderTarget = true
}

func (a *Agent) clearOrderTarget() { a.hasOrderTarget = false }

// target resolves the target-agent id, or nil.
func (a *Agent) target() *Agent {
	if a.targetID == 0 {
		return nil
	}
	return a.world.Agent(a.targetID)
}

func (a *Agent) setTarget(t *Agent) {
	if t == nil {
		a.targetID = 0
		return
	}
	a.targetID = t.id
}

// --- Behaviour state ---

// ChangeState runs the outgoing state's OnExit, installs next and runs its
// OnEnter. next may be nil to leave the agent stateless. OnEnter may itself
// delegate to another state, so callers must re-check a.state afterwards.
func (a *Agent) ChangeState(next BehaviorState) {
	prev := a.state
	a.state = nil
	if prev != nil {
		prev.OnExit(a)
	}
	a.state = next
	if next != nil {
		a.world.logStateChange(a, prev, next)
		next.OnEnter(a)
	}
}

// MarkRetreat stamps the last retreat time.
func (a *Agent) MarkRetreat() { a.lastRetreatTick = a.now() }

// MarkIdleAnchor stamps the last idle-anchor order time.
func (a *Agent) MarkIdleAnchor() { a.lastIdleAnchorTick = a.now() }

func (a *Agent) retreatToCover() {
	a.ChangeState(&coverState{})
	a.MarkRetreat()
}

// --- Resources ---

// TakeDamage subtracts dmg. At zero the agent dies: it stops, drops its path
// and releases its cell. Survivors report the injury and, below the retreat
// threshold, break for cover.
func (a *Agent) TakeDamage(dmg int) {
	if !a.Alive() || dmg <= 0 {
		return
	}
	a.hp -= dmg
	a.stats.DamageTaken += dmg
	if a.hp <= 0 {
		a.die()
		return
	}
	a.hitFlashUntil = a.now() + hitFlashTicks
	a.ReportInjury()
	if !a.Alive() || a.hp >= a.cfg().RetreatHP {
		return
	}
	if a.StateKind() != StateSeekCover {
		a.retreatToCover()
	}
}

func (a *Agent) die() {
	a.hp = 0
	a.moving = false
	a.engaging = false
	a.delivering = false
	a.resting = false
	a.path = nil
	a.pathIndex = -1
	if a.hasOccupancy {
		a.world.grid.ClearOccupied(a.occCell.X, a.occCell.Y, a.id)
		a.hasOccupancy = false
	}
	// Drop the state without handing control to another one.
	if st := a.state; st != nil {
		a.state = nil
		st.OnExit(a)
	}
	a.world.logEvent(a, "combat", "death", "eliminated", 0)
}

// Heal restores hp up to the maximum.
func (a *Agent) Heal(amount int) {
	if !a.Alive() || amount <= 0 {
		return
	}
	a.hp = min(a.cfg().MaxHP, a.hp+amount)
}

// RefillAmmo tops up ammo and, for warriors, grenades.
func (a *Agent) RefillAmmo() {
	if a.maxAmmo <= 0 {
		return
	}
	a.ammo = a.maxAmmo
	a.lowAmmo = false
	if a.role == RoleWarrior {
		a.grenades = a.maxGrenades
		a.supply = a.maxSupply
	}
}

// NeedsAmmo is true for warriors at or under the low-ammo threshold.
func (a *Agent) NeedsAmmo() bool {
	return a.role == RoleWarrior && a.ammo <= a.cfg().LowAmmoThreshold
}

// needsResupply widens NeedsAmmo to warriors with no grenades left.
func (a *Agent) needsResupply() bool {
	return a.NeedsAmmo() || (a.role == RoleWarrior && a.grenades == 0)
}

func (a *Agent) spendAmmo() bool {
	if a.ammo <= 0 {
		return false
	}
	a.ammo--
	return true
}

func (a *Agent) spendGrenade() bool {
	if a.grenades <= 0 {
		return false
	}
	a.grenades--
	if a.role == RoleWarrior {
		a.supply = a.grenades
	}
	return true
}

// consumeSupply spends one unit of medic/porter supply.
func (a *Agent) consumeSupply() bool {
	if a.supply <= 0 {
		return false
	}
	a.supply--
	return true
}

// restock fills supply and clears the assist counter after a depot visit.
// A warrior that walked in dry draws a full load instead.
func (a *Agent) restock() {
	if a.role == RoleWarrior {
		a.RefillAmmo()
		return
	}
	a.supply = a.maxSupply
	a.assists = 0
	if a.role == RolePorter {
		a.lowAmmo = false
	}
}

// RegisterAssist counts a completed heal or delivery.
func (a *Agent) RegisterAssist() {
	if a.role == RoleMedic || a.role == RolePorter {
		a.assists = min(a.assists+1, a.cfg().AssistLimit)
	}
}

// CanTakeAssist is false once the assist limit forces a return to base.
func (a *Agent) CanTakeAssist() bool {
	return a.assists < a.cfg().AssistLimit
}

// InRange reports whether o is within r of a.
func (a *Agent) InRange(o *Agent, r float64) bool {
	return a.distSqTo(o) <= r*r
}

// CanSee tests line of sight between the agents' floor cells.
func (a *Agent) CanSee(o *Agent) bool {
	return a.world.grid.HasLineOfSight(int(a.x), int(a.y), int(o.x), int(o.y))
}

// moveSpeed is the per-tick step, scaled by role.
func (a *Agent) moveSpeed() float64 {
	cfg := a.cfg()
	switch a.role {
	case RoleMedic:
		return cfg.MoveSpeed * cfg.MedicSpeedMul
	case RolePorter:
		return cfg.MoveSpeed * cfg.PorterSpeedMul
	default:
		return cfg.MoveSpeed
	}
}
