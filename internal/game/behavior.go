package game

import "fmt"

// StateKind tags a behaviour so callers can branch on it without type
// assertions.
type StateKind uint8

const (
	StateNone StateKind = iota
	StateCombat
	StateSeekCover
	StateHeal
	StateDeliverAmmo
	StateGoToSupply
	StateGoToMedSupply
	StateReturnToWarehouse
)

func (k StateKind) String() string {
	switch k {
	case StateCombat:
		return "combat"
	case StateSeekCover:
		return "seek_cover"
	case StateHeal:
		return "heal"
	case StateDeliverAmmo:
		return "deliver_ammo"
	case StateGoToSupply:
		return "go_to_supply"
	case StateGoToMedSupply:
		return "go_to_med_supply"
	case StateReturnToWarehouse:
		return "return_to_warehouse"
	default:
		return "none"
	}
}

// BehaviorState is one node of an agent's state machine.
//
// OnEnter does one-time setup and may hand control to another state through
// Agent.ChangeState. Transition runs once per tick while the state is
// installed. OnExit must release every flag and target the state set.
type BehaviorState interface {
	Kind() StateKind
	OnEnter(a *Agent)
	Transition(a *Agent)
	OnExit(a *Agent)
}

// newRoleState returns the state an agent starts the match in.
func newRoleState(r Role) BehaviorState {
	switch r {
	case RoleWarrior:
		return &combatState{}
	case RoleMedic:
		return &goToMedSupplyState{}
	case RolePorter:
		return &goToSupplyState{}
	default:
		return &coverState{}
	}
}

// progressWatch detects an agent that keeps walking without closing on its
// goal. Every window ticks the distance must have shrunk by at least 0.2.
type progressWatch struct {
	window    int
	lastCheck int
	lastDist  float64
}

func (p *progressWatch) reset(now, window int) {
	p.window = window
	p.lastCheck = now
	p.lastDist = -1
}

// stalled samples dist and reports a stall once per elapsed window.
func (p *progressWatch) stalled(now int, dist float64) bool {
	if now-p.lastCheck <= p.window {
		return false
	}
	stuck := p.lastDist >= 0 && dist >= p.lastDist-0.2
	p.lastDist = dist
	p.lastCheck = now
	return stuck
}

// --- shared target helpers ---

// findFreeSpotNear returns base or a random free cell in the rings around it
// out to radius 3. Candidates are shuffled so agents sent to the same anchor
// spread out.
func (a *Agent) findFreeSpotNear(base GridPos) (GridPos, bool) {
	g := a.world.grid
	if !g.InBounds(base.X, base.Y) {
		return GridPos{}, false
	}
	const maxRing = 3
	cands := []GridPos{base}
	for r := 1; r <= maxRing; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if absInt(dx) != r && absInt(dy) != r {
					continue
				}
				cands = append(cands, GridPos{base.X + dx, base.Y + dy})
			}
		}
	}
	a.world.rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })
	for _, c := range cands {
		if g.IsWalkable(c.X, c.Y) && !g.IsOccupied(c.X, c.Y, a.id) {
			return c, true
		}
	}
	return GridPos{}, false
}

// walkableAround returns p if it can be stood on, otherwise the first
// walkable 4-neighbour.
func walkableAround(g *WorldGrid, p GridPos) (GridPos, bool) {
	if g.IsWalkable(p.X, p.Y) {
		return p, true
	}
	for _, d := range dirs4 {
		n := GridPos{p.X + d[0], p.Y + d[1]}
		if g.IsWalkable(n.X, n.Y) {
			return n, true
		}
	}
	return p, false
}

// planFromDepot plans to goal like planTo, but when the agent is still
// near its depot it first walks the team's exit corridor, expanded into
// 4-connected steps, and plans the rest of the route from the corridor's end.
func (a *Agent) planFromDepot(goal GridPos, weights ...float64) ([]GridPos, bool) {
	steps := a.depotExitSteps()
	if len(steps) == 0 {
		return a.planTo(goal, weights...)
	}
	end := steps[len(steps)-1]
	rest, ok := a.world.planner.PlanRelaxed(end.X, end.Y, goal.X, goal.Y, a.id, a.team, weights...)
	if !ok {
		return a.planTo(goal, weights...)
	}
	return append(steps, rest[1:]...), true
}

// depotExitSteps returns the expanded exit corridor, or nil when the agent
// is more than 6 cells from its head or a step is blocked.
func (a *Agent) depotExitSteps() []GridPos {
	corridor := a.world.bf.Depots[a.team].ExitCorridor
	if len(corridor) == 0 {
		return nil
	}
	head := corridor[0]
	if a.distSq(float64(head.X), float64(head.Y)) > 36 {
		return nil
	}
	g := a.world.grid
	cur := a.startCell()
	var steps []GridPos
	push := func(p GridPos) bool {
		if !g.IsWalkable(p.X, p.Y) {
			return false
		}
		if len(steps) == 0 || steps[len(steps)-1] != p {
			steps = append(steps, p)
		}
		cur = p
		return true
	}
	for _, c := range corridor {
		if !g.IsWalkable(c.X, c.Y) || g.IsOccupied(c.X, c.Y, a.id) {
			continue
		}
		for cur.X != c.X {
			if !push(GridPos{cur.X + sign(c.X-cur.X), cur.Y}) {
				return nil
			}
		}
		for cur.Y != c.Y {
			if !push(GridPos{cur.X, cur.Y + sign(c.Y-cur.Y)}) {
				return nil
			}
		}
	}
	return steps
}

// unstick snaps an agent whose start cell cannot be stood on (pushed onto a
// depot wall, say) to a random free walkable cell within radius. The planner
// refuses to search from a blocked start.
func (a *Agent) unstick(radius int) bool {
	g := a.world.grid
	start := a.startCell()
	if g.IsWalkable(start.X, start.Y) {
		return true
	}
	span := 2*radius + 1
	for i := 0; i < 4*span; i++ {
		x, y := start.X+a.world.rng.Intn(span)-radius, start.Y+a.world.rng.Intn(span)-radius
		if g.IsWalkable(x, y) && !g.IsOccupied(x, y, a.id) {
			a.x, a.y = float64(x), float64(y)
			a.updateOccupancy()
			a.world.logVerbose(a, "move", "unstick", fmt.Sprintf("(%d,%d) -> (%d,%d)", start.X, start.Y, x, y))
			return true
		}
	}
	return false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
