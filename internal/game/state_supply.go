package game

import "fmt"

// depotRun is the shared walk-wait-restock cycle of the two supply states.
type depotRun struct {
	depot      GridPos
	arriveSq   float64
	waitTicks  int
	waiting    bool
	waitFrom   int
	stocked    bool
	lastReplan int
}

// plan routes the agent toward the depot with the given danger weights,
// then toward the nearest cover within coverRadius of it.
func (r *depotRun) plan(a *Agent, coverRadius int, weights ...float64) bool {
	if !a.unstick(1) {
		start := a.startCell()
		if spot, ok := a.world.planner.FindNearestCover(start.X, start.Y, 8, a.id, a.team); ok {
			return a.GoToGrid(spot.X, spot.Y)
		}
		return false
	}
	if path, ok := a.planFromDepot(r.depot, weights...); ok {
		a.SetPath(path)
		return true
	}
	if spot, ok := a.world.planner.FindNearestCover(r.depot.X, r.depot.Y, coverRadius, a.id, a.team); ok {
		if path, ok := a.planFromDepot(spot, 0.4); ok {
			a.SetPath(path)
			return true
		}
	}
	return false
}

// tick advances the cycle and reports true on the tick the agent restocks.
// A restocked agent rests at the depot until its commander reassigns it.
func (r *depotRun) tick(a *Agent, coverRadius int, weights ...float64) bool {
	if a.moving || r.stocked {
		return false
	}
	w := a.world
	if a.distSq(float64(r.depot.X), float64(r.depot.Y)) > r.arriveSq {
		r.waiting = false
		if !a.hasPath() && a.since(r.lastReplan) >= a.cfg().WarehouseRepathTicks {
			r.lastReplan = a.now()
			w.logVerbose(a, "supply", "replan", fmt.Sprintf("to depot (%d,%d)", r.depot.X, r.depot.Y))
			r.plan(a, coverRadius, weights...)
		}
		return false
	}
	if !r.waiting {
		r.waiting = true
		r.waitFrom = a.now()
		a.resting = true
		return false
	}
	if a.since(r.waitFrom) < r.waitTicks {
		return false
	}
	r.waiting = false
	r.stocked = true
	a.restock()
	a.resting = true
	w.logEvent(a, "supply", "restocked", fmt.Sprintf("supply=%d", a.supply), float64(a.supply))
	return true
}

// goToSupplyState walks a porter to the ammo depot and restocks it there.
type goToSupplyState struct {
	run depotRun
}

func (s *goToSupplyState) Kind() StateKind { return StateGoToSupply }

func (s *goToSupplyState) OnEnter(a *Agent) {
	a.resting = false
	depot, _ := walkableAround(a.world.grid, a.world.bf.Depots[a.team].Ammo)
	s.run = depotRun{
		depot:      depot,
		arriveSq:   9,
		waitTicks:  a.cfg().AmmoWaitTicks,
		lastReplan: a.now(),
	}
	if !s.run.plan(a, 12, 0.5, 0.2) {
		a.world.logEvent(a, "supply", "unreachable", "ammo depot out of reach", 0)
		a.ChangeState(&coverState{})
	}
}

func (s *goToSupplyState) Transition(a *Agent) {
	s.run.tick(a, 12, 0.5, 0.2)
}

func (s *goToSupplyState) OnExit(a *Agent) {
	a.moving = false
	a.resting = false
}

// goToMedSupplyState walks a medic to the medical depot and restocks it.
type goToMedSupplyState struct {
	run depotRun
}

func (s *goToMedSupplyState) Kind() StateKind { return StateGoToMedSupply }

// medDepotCell returns the depot or its first walkable 8-neighbour.
func medDepotCell(g *WorldGrid, p GridPos) (GridPos, bool) {
	if g.IsWalkable(p.X, p.Y) {
		return p, true
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if g.IsWalkable(p.X+dx, p.Y+dy) {
				return GridPos{p.X + dx, p.Y + dy}, true
			}
		}
	}
	return p, false
}

func (s *goToMedSupplyState) OnEnter(a *Agent) {
	a.resting = false
	depot, ok := medDepotCell(a.world.grid, a.world.bf.Depots[a.team].Med)
	if !ok {
		a.world.logEvent(a, "supply", "unreachable", "med depot walled in", 0)
		a.ChangeState(&coverState{})
		return
	}
	s.run = depotRun{
		depot:      depot,
		arriveSq:   4,
		waitTicks:  a.cfg().MedWaitTicks,
		lastReplan: a.now(),
	}
	if !s.run.plan(a, 14, 0.6, 0.3) {
		a.world.logEvent(a, "supply", "unreachable", "med depot out of reach", 0)
		a.ChangeState(&coverState{})
	}
}

func (s *goToMedSupplyState) Transition(a *Agent) {
	s.run.tick(a, 14, 0.6, 0.3)
}

func (s *goToMedSupplyState) OnExit(a *Agent) {
	a.moving = false
	a.resting = false
}
