package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

const (
	localPatrolRadius   = 9
	localPatrolTries    = 18
	localPatrolMinSq    = 9
	localPatrolMaxRisk  = 0.78
	idleCoverRadius     = 12
	idleNudge           = 5
	openingPorterTarget = 2 // roster slot of the Orange warrior that starts short of ammo
)

// World is the shared simulation context: terrain, influence maps, planner,
// both rosters and their commanders. Agents and states reach each other only
// through it, by id.
type World struct {
	cfg  Config
	rng  *rand.Rand
	tick int

	bf        *Battlefield
	grid      *WorldGrid
	influence *InfluenceMap
	planner   *PathPlanner
	doctrine  *Doctrine
	combat    *CombatManager

	agents     []*Agent // id = index + 1
	roster     [teamCount][]*Agent
	commanders [teamCount]*Commander
	radio      [teamCount]RadioNet

	visibilityTeam Team

	SimLog   *SimLog
	Thoughts *ThoughtLog
	RunID    uuid.UUID
}

// NewWorld validates cfg, compiles its doctrine and wires the terrain of bf
// to fresh influence maps and a planner. It spawns nobody.
func NewWorld(cfg Config, bf *Battlefield) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	doc, err := NewDoctrine(cfg.Doctrine)
	if err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	w := &World{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(cfg.Seed)), // #nosec G404 -- simulation only, seeded for replays
		bf:       bf,
		grid:     bf.Grid,
		doctrine: doc,
		combat:   NewCombatManager(),
		SimLog:   NewSimLog(false),
		Thoughts: NewThoughtLog(),
		RunID:    uuid.New(),
	}
	w.influence = NewInfluenceMap(bf.Grid, cfg)
	w.planner = NewPathPlanner(bf.Grid, w.influence, cfg.GoalSlack)
	return w, nil
}

// NewDefaultWorld builds the stock 200x100 match: both teams spawned, opening
// states assigned and the Orange porter already dispatched to the warrior
// that starts the match nearly dry.
func NewDefaultWorld(cfg Config) (*World, error) {
	w, err := NewWorld(cfg, DefaultBattlefield())
	if err != nil {
		return nil, err
	}
	w.SpawnAll()
	w.AssignInitialStates()
	w.openingDispatch()
	return w, nil
}

// --- Accessors (renderer, harness, reporter) ---

func (w *World) Tick() int                    { return w.tick }
func (w *World) Config() *Config              { return &w.cfg }
func (w *World) Grid() *WorldGrid             { return w.grid }
func (w *World) Influence() *InfluenceMap     { return w.influence }
func (w *World) Planner() *PathPlanner        { return w.planner }
func (w *World) Battlefield() *Battlefield    { return w.bf }
func (w *World) Combat() *CombatManager       { return w.combat }
func (w *World) Agents() []*Agent             { return w.agents }
func (w *World) Roster(t Team) []*Agent       { return w.roster[t] }
func (w *World) Commander(t Team) *Commander  { return w.commanders[t] }
func (w *World) Radio(t Team) *RadioNet       { return &w.radio[t] }
func (w *World) VisibilityTeam() Team         { return w.visibilityTeam }
func (w *World) SetVisibilityTeam(t Team)     { w.visibilityTeam = t }
func (w *World) SetVerbose(v bool)            { w.SimLog.verbose = v }
func (w *World) Commanders() []*Commander     { return w.commanders[:] }
func (w *World) Outcome() BattleOutcomeReason { return DetermineBattleOutcome(w.roster[TeamOrange], w.roster[TeamBlue]) }

// Agent resolves an id, or nil when the id was never issued.
func (w *World) Agent(id int) *Agent {
	if id <= 0 || id > len(w.agents) {
		return nil
	}
	return w.agents[id-1]
}

// commanderAgent is the living agent behind team's commander, or nil.
func (w *World) commanderAgent(t Team) *Agent {
	if c := w.commanders[t]; c != nil {
		return c.agent()
	}
	return nil
}

// --- Setup ---

// Spawn places a new agent. The first commander spawned for a team becomes
// that team's Commander.
func (w *World) Spawn(team Team, role Role, x, y float64) *Agent {
	a := newAgent(w, len(w.agents)+1, team, role, x, y)
	w.agents = append(w.agents, a)
	w.roster[team] = append(w.roster[team], a)
	if role == RoleCommander && w.commanders[team] == nil {
		w.commanders[team] = NewCommander(w, team, a.id)
	}
	w.logEvent(a, "spawn", role.String(), fmt.Sprintf("at (%.0f,%.0f)", x, y), 0)
	return a
}

// SpawnAll spawns every team's battlefield spawn list in order, Orange first.
func (w *World) SpawnAll() {
	for t := Team(0); t < teamCount; t++ {
		for _, s := range w.bf.Spawns[t] {
			w.Spawn(t, s.Role, float64(s.X), float64(s.Y))
		}
	}
}

// AssignInitialStates gives every living agent without a state its role's
// starting behaviour.
func (w *World) AssignInitialStates() {
	for _, a := range w.agents {
		if a.Alive() && a.state == nil {
			a.ChangeState(newRoleState(a.role))
		}
	}
}

// openingDispatch reproduces the stock opening: one Orange warrior starts
// nearly out of ammo and the Orange porter is sent to it at once.
func (w *World) openingDispatch() {
	orange := w.roster[TeamOrange]
	if len(orange) <= openingPorterTarget {
		return
	}
	target := orange[openingPorterTarget]
	if target.role != RoleWarrior {
		return
	}
	target.ammo = 1
	target.lowAmmo = true
	c := w.commanders[TeamOrange]
	if c == nil {
		return
	}
	for _, p := range orange {
		if p.role == RolePorter && p.Alive() {
			c.AssignDeliverAmmo(p, target)
			return
		}
	}
}

// --- Tick ---

// Step advances the simulation one tick: movement and behaviour for every
// living agent (Orange roster first, then Blue), projectiles and effects,
// idle motion, hazard decay, influence rebuild and, on the planning
// interval, both commanders.
func (w *World) Step() {
	for t := Team(0); t < teamCount; t++ {
		for _, a := range w.roster[t] {
			if !a.Alive() {
				continue
			}
			a.integrateMovement()
			if a.Alive() && a.state != nil {
				a.state.Transition(a)
			}
		}
	}

	w.combat.UpdateShots(w)
	w.combat.UpdateEffects()
	w.EnsureIdleMotion()

	w.grid.DecayDynamicCosts(w.cfg.HazardDecay)
	w.influence.DecayFireRisk(w.cfg.HazardDecay)
	w.influence.RebuildDanger(w.grid, w.agents)
	w.influence.RebuildVisibility(w.grid, w.visibilityTeam, w.agents)

	if w.tick%w.cfg.PlanIntervalTicks == 0 {
		for _, c := range w.commanders {
			if c != nil {
				c.PlanAndAssignOrders()
			}
		}
	}
	w.tick++
}

// --- Idle motion ---

// EnsureIdleMotion keeps stateless, stationary non-commanders from standing
// still forever: after the idle interval each one walks to a nearby safe
// patrol cell, then to cover, then takes a random nudge.
func (w *World) EnsureIdleMotion() {
	for _, a := range w.agents {
		if !a.Alive() || a.moving || a.state != nil || a.role == RoleCommander {
			continue
		}
		if a.since(a.lastIdleAnchorTick) <= w.cfg.IdleMotionTicks {
			continue
		}
		w.idleMove(a)
	}
}

func (w *World) idleMove(a *Agent) {
	if t, ok := w.findLocalPatrolTarget(a); ok {
		a.setOrderTarget(t)
		a.MarkIdleAnchor()
		a.ChangeState(&coverState{})
		a.clearOrderTarget()
		return
	}
	start := a.startCell()
	if spot, ok := w.planner.FindNearestCover(start.X, start.Y, idleCoverRadius, a.id, a.team); ok {
		a.MarkIdleAnchor()
		a.GoToGrid(spot.X, spot.Y)
		return
	}
	a.MarkIdleAnchor()
	x, y := start.X+w.rng.Intn(2*idleNudge+1)-idleNudge, start.Y+w.rng.Intn(2*idleNudge+1)-idleNudge
	if w.grid.IsWalkable(x, y) {
		a.GoToGrid(x, y)
	}
}

// findLocalPatrolTarget samples cells around the agent for a free, walkable
// spot at least 3 cells away whose danger is tolerable.
func (w *World) findLocalPatrolTarget(a *Agent) (GridPos, bool) {
	start := a.startCell()
	span := 2*localPatrolRadius + 1
	for i := 0; i < localPatrolTries; i++ {
		dx, dy := w.rng.Intn(span)-localPatrolRadius, w.rng.Intn(span)-localPatrolRadius
		if dx == 0 && dy == 0 || dx*dx+dy*dy < localPatrolMinSq {
			continue
		}
		x, y := start.X+dx, start.Y+dy
		if !w.grid.IsWalkable(x, y) || w.grid.IsOccupied(x, y, a.id) {
			continue
		}
		if w.influence.Danger(a.team, x, y) > localPatrolMaxRisk {
			continue
		}
		return GridPos{x, y}, true
	}
	return GridPos{}, false
}

// idleOrder is the commander's order for a medic with nobody to treat:
// a short patrol hop once the idle interval has passed, plain cover
// otherwise.
func (w *World) idleOrder(a *Agent) {
	if a.since(a.lastIdleAnchorTick) > w.cfg.IdleMotionTicks {
		if t, ok := w.findLocalPatrolTarget(a); ok {
			a.setOrderTarget(t)
			a.MarkIdleAnchor()
			a.ChangeState(&coverState{})
			a.clearOrderTarget()
			return
		}
	}
	a.clearOrderTarget()
	a.ChangeState(&coverState{})
}

// --- Logging ---

func (w *World) logStateChange(a *Agent, prev, next BehaviorState) {
	from := StateNone
	if prev != nil {
		from = prev.Kind()
	}
	msg := fmt.Sprintf("%s -> %s", from, next.Kind())
	w.SimLog.Add(w.tick, a.label, a.team.String(), "state", "change", msg, 0)
	w.Thoughts.Add(w.tick, a.label, a.team, "state", msg)
}

func (w *World) logEvent(a *Agent, category, key, value string, num float64) {
	w.SimLog.Add(w.tick, a.label, a.team.String(), category, key, value, num)
	w.Thoughts.Add(w.tick, a.label, a.team, category, key+": "+value)
}

func (w *World) logVerbose(a *Agent, category, key, value string) {
	w.SimLog.AddVerbose(w.tick, a.label, a.team.String(), category, key, value, 0)
}
