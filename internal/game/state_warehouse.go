package game

import (
	"fmt"
	"math"
)

const (
	warehouseArrival      = 3.0
	patrolTries           = 5
	patrolRetryTicks      = 60
	patrolMinPauseTicks   = 180
	patrolPauseJitter     = 120
	warehouseMinRetreat   = 8.0
	warehouseRepathFactor = 4.0 // replan while farther than this many arrival radii squared
)

// returnToWarehouseState takes a support agent away from the ally it just
// served, back to its depot hub, restocks it there and then patrols a small
// circle around the hub until the commander has new work.
type returnToWarehouseState struct {
	center       GridPos
	patrolRadius float64
	avoid        GridPos
	hasAvoid     bool

	hub        GridPos
	retreating bool
	retreatTo  GridPos
	inPatrol   bool
	nextPatrol int
	lastRepath int
}

func newReturnToWarehouse(center GridPos, patrolRadius float64, avoid GridPos, hasAvoid bool) *returnToWarehouseState {
	return &returnToWarehouseState{center: center, patrolRadius: patrolRadius, avoid: avoid, hasAvoid: hasAvoid}
}

func (s *returnToWarehouseState) Kind() StateKind { return StateReturnToWarehouse }

func (s *returnToWarehouseState) OnEnter(a *Agent) {
	a.delivering = false
	a.resting = false
	a.Stop()
	s.hub = s.center
	switch a.role {
	case RolePorter:
		s.hub = a.world.bf.Depots[a.team].Ammo
	case RoleMedic:
		s.hub = a.world.bf.Depots[a.team].Med
	}
	s.lastRepath = a.now()

	if s.hasAvoid && s.startRetreat(a) {
		return
	}
	if !s.routeToHub(a) {
		a.resting = true
	}
}

// startRetreat moves away from the avoid point by at least 8 cells before
// turning for home, so the agent does not linger beside the ally it served.
func (s *returnToWarehouseState) startRetreat(a *Agent) bool {
	w := a.world
	dist := math.Max(warehouseMinRetreat, 2*s.patrolRadius)
	dx, dy := a.x-float64(s.avoid.X), a.y-float64(s.avoid.Y)
	l := math.Hypot(dx, dy)
	if l < 0.5 {
		ang := w.rng.Float64() * 2 * math.Pi
		dx, dy, l = math.Cos(ang), math.Sin(ang), 1
	}
	t := GridPos{
		X: int(math.Round(a.x + dx/l*dist)),
		Y: int(math.Round(a.y + dy/l*dist)),
	}
	t.X = max(1, min(w.grid.Cols()-2, t.X))
	t.Y = max(1, min(w.grid.Rows()-2, t.Y))
	if !w.grid.IsWalkable(t.X, t.Y) {
		alt, ok := w.grid.FindNearestFreeTile(t.X, t.Y, 4, a.id)
		if !ok {
			return false
		}
		t = alt
	}
	path, ok := a.planTo(t, 0.4, 0.2)
	if !ok {
		return false
	}
	a.SetPath(path)
	s.retreating = true
	s.retreatTo = t
	w.logVerbose(a, "warehouse", "retreat", fmt.Sprintf("clearing to (%d,%d)", t.X, t.Y))
	return true
}

func (s *returnToWarehouseState) routeToHub(a *Agent) bool {
	goal := s.hub
	if !a.world.grid.IsWalkable(goal.X, goal.Y) {
		alt, ok := a.world.grid.FindNearestFreeTile(goal.X, goal.Y, 3, a.id)
		if !ok {
			return false
		}
		goal = alt
	}
	path, ok := a.planTo(goal, 0.4, 0.2)
	if !ok {
		a.world.logVerbose(a, "warehouse", "no_route", fmt.Sprintf("hub (%d,%d)", goal.X, goal.Y))
		return false
	}
	a.SetPath(path)
	return true
}

func (s *returnToWarehouseState) Transition(a *Agent) {
	w := a.world
	cfg := a.cfg()
	arrivalSq := warehouseArrival * warehouseArrival

	if s.retreating {
		reached := a.distSq(float64(s.retreatTo.X), float64(s.retreatTo.Y)) <= arrivalSq
		if reached || !a.moving {
			s.retreating = false
			s.lastRepath = a.now()
			if !s.routeToHub(a) {
				a.resting = true
			}
			return
		}
		if a.since(s.lastRepath) >= cfg.WarehouseRepathTicks {
			s.lastRepath = a.now()
			if path, ok := a.planTo(s.retreatTo, 0.4, 0.2); ok {
				a.SetPath(path)
			}
		}
		return
	}

	if s.inPatrol {
		if !a.moving && a.now() >= s.nextPatrol {
			s.issuePatrolMove(a)
		}
		return
	}

	hubSq := a.distSq(float64(s.hub.X), float64(s.hub.Y))
	if hubSq <= arrivalSq {
		a.ClearPath()
		if a.supply < a.maxSupply {
			a.restock()
			a.resting = true
			w.logEvent(a, "warehouse", "restocked", fmt.Sprintf("supply=%d", a.supply), float64(a.supply))
			if a.role == RoleMedic {
				if p := a.findPriorityInjured(); p != nil {
					a.setTarget(p)
					a.ChangeState(&healState{})
					return
				}
			}
		}
		s.inPatrol = true
		s.nextPatrol = a.now()
		a.resting = true
		return
	}

	if !a.moving {
		if a.since(s.lastRepath) >= patrolRetryTicks/2 {
			s.lastRepath = a.now()
			s.routeToHub(a)
		}
		return
	}
	if a.since(s.lastRepath) >= cfg.WarehouseRepathTicks && hubSq > warehouseRepathFactor*arrivalSq {
		s.lastRepath = a.now()
		s.routeToHub(a)
	}
}

// issuePatrolMove walks to a random point on the patrol ring around the hub.
func (s *returnToWarehouseState) issuePatrolMove(a *Agent) {
	w := a.world
	r := s.patrolRadius
	for i := 0; i < patrolTries; i++ {
		ang := w.rng.Float64() * 2 * math.Pi
		d := r * (0.5 + 0.5*w.rng.Float64())
		t := GridPos{
			X: int(math.Round(float64(s.hub.X) + math.Cos(ang)*d)),
			Y: int(math.Round(float64(s.hub.Y) + math.Sin(ang)*d)),
		}
		if !w.grid.IsWalkable(t.X, t.Y) {
			alt, ok := w.grid.FindNearestFreeTile(t.X, t.Y, 2, a.id)
			if !ok {
				continue
			}
			t = alt
		}
		if a.GoToGrid(t.X, t.Y) {
			a.resting = false
			s.nextPatrol = a.now() + patrolMinPauseTicks + w.rng.Intn(patrolPauseJitter+1)
			return
		}
	}
	s.nextPatrol = a.now() + patrolRetryTicks
}

// findPriorityInjured ranks hurt teammates for a freshly restocked medic.
// Warriors come first, then the commander and porters; anyone at 30 hp or
// less is bumped further.
func (a *Agent) findPriorityInjured() *Agent {
	var best *Agent
	bestScore := math.Inf(1)
	for _, o := range a.world.roster[a.team] {
		if o == a || !o.Alive() || o.hp >= a.cfg().InjuryThreshold {
			continue
		}
		score := float64(o.hp)
		switch o.role {
		case RoleWarrior:
			score -= 10
		case RoleCommander:
			score -= 8
		case RolePorter:
			score -= 5
		}
		if o.hp <= 30 {
			score -= 15
		}
		if score < bestScore {
			best, bestScore = o, score
		}
	}
	return best
}

func (s *returnToWarehouseState) OnExit(a *Agent) {
	a.resting = false
}
