package game

import (
	"fmt"
	"math"
)

const (
	deliverRadius      = 3.5
	deliverStallWindow = 60
	porterReturnPatrol = 4.0
	deliverCoverRadius = 10
)

// deliverAmmoState runs a porter's resupply trip: walk to a warrior that is
// short of ammo or grenades, refill it on contact and head back to the
// ammo depot.
type deliverAmmoState struct {
	watch progressWatch
}

func (s *deliverAmmoState) Kind() StateKind { return StateDeliverAmmo }

// findLowAmmoAlly picks the nearest warrior that needs ammo or has run out
// of grenades. Grenade-only needs look slightly closer than they are.
func (a *Agent) findLowAmmoAlly() *Agent {
	var best *Agent
	bestD := math.Inf(1)
	for _, o := range a.world.roster[a.team] {
		if o == a || !o.Alive() || !o.needsResupply() {
			continue
		}
		needsAmmo := o.NeedsAmmo()
		d := a.distSqTo(o)
		if !needsAmmo {
			d *= 0.85
		}
		if d < bestD {
			best, bestD = o, d
		}
	}
	return best
}

func (s *deliverAmmoState) OnEnter(a *Agent) {
	a.resting = false
	a.delivering = true
	s.watch.reset(a.now(), deliverStallWindow)

	if a.supply <= 0 {
		a.world.logEvent(a, "supply", "empty", "nothing to deliver, restocking", 0)
		a.ChangeState(&goToSupplyState{})
		return
	}

	t := a.target()
	if t != nil && (!t.Alive() || !t.needsResupply()) {
		t = nil
	}
	if t == nil {
		t = a.findLowAmmoAlly()
	}
	if t == nil {
		a.world.logVerbose(a, "supply", "no_recipient", "nobody short of ammo")
		a.ChangeState(&coverState{})
		return
	}
	a.setTarget(t)
	if !s.planPathToAlly(a, t) {
		a.world.logEvent(a, "supply", "unreachable", fmt.Sprintf("cannot reach %s", t.label), 0)
		a.ChangeState(&coverState{})
	}
}

// planPathToAlly tries the free cells in the rings around the recipient in
// random order, then the recipient's own cell, then the nearest cover near
// it.
func (s *deliverAmmoState) planPathToAlly(a *Agent, t *Agent) bool {
	w := a.world
	g := w.grid
	goal := t.cell()

	var cands []GridPos
	for r := 1; r <= 3 && len(cands) == 0; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if absInt(dx) != r && absInt(dy) != r {
					continue
				}
				x, y := goal.X+dx, goal.Y+dy
				if g.IsWalkable(x, y) && !g.IsOccupied(x, y, a.id) {
					cands = append(cands, GridPos{x, y})
				}
			}
		}
	}
	cands = append(cands, goal)
	w.rng.Shuffle(len(cands), func(i, j int) { cands[i], cands[j] = cands[j], cands[i] })

	a.unstick(2)
	for _, c := range cands {
		if path, ok := a.planFromDepot(c, 0.6, 0.3); ok {
			a.SetPath(path)
			return true
		}
	}
	if spot, ok := w.planner.FindNearestCover(goal.X, goal.Y, deliverCoverRadius, a.id, a.team); ok {
		if path, ok := a.planFromDepot(spot, 0.4); ok {
			a.SetPath(path)
			return true
		}
	}
	return false
}

func (s *deliverAmmoState) Transition(a *Agent) {
	w := a.world
	t := a.target()
	if t == nil || !t.Alive() || !t.needsResupply() {
		w.logVerbose(a, "supply", "recipient_gone", "heading back to supply")
		a.ChangeState(&goToSupplyState{})
		return
	}

	dist := math.Sqrt(a.distSqTo(t))
	if dist <= deliverRadius {
		a.ClearPath()
		t.RefillAmmo()
		a.consumeSupply()
		a.RegisterAssist()
		a.stats.Deliveries++
		a.delivering = false
		w.logEvent(a, "supply", "delivered", fmt.Sprintf("to %s", t.label), 0)
		a.ChangeState(newReturnToWarehouse(w.bf.Depots[a.team].Ammo, porterReturnPatrol, t.cell(), true))
		return
	}

	if a.moving && !s.watch.stalled(a.now(), dist) {
		return
	}
	w.logVerbose(a, "supply", "replan", fmt.Sprintf("%.1f from %s", dist, t.label))
	if !s.planPathToAlly(a, t) {
		a.ChangeState(&coverState{})
	}
}

func (s *deliverAmmoState) OnExit(a *Agent) {
	a.delivering = false
	a.moving = false
	a.setTarget(nil)
}
