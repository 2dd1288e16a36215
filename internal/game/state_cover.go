package game

import "fmt"

const (
	coverUnsafeDanger    = 0.6
	coverAnchorRetreat   = 150 // ticks after a retreat before an idle warrior re-anchors
	coverAnchorRadius    = 18
	coverAnchorMinDistSq = 9.0
)

// coverState takes the agent to a low-danger cell: the order target when one
// is set, otherwise the best cell from the cover search, otherwise the
// nearest hand-picked fallback. Once there it rests, leaves if the cell turns
// dangerous and, for idle warriors, drifts back toward the defensive band.
type coverState struct{}

func (s *coverState) Kind() StateKind { return StateSeekCover }

func (s *coverState) OnEnter(a *Agent) {
	a.Stop()
	a.resting = false
	s.seek(a)
}

func (s *coverState) seek(a *Agent) {
	cfg := a.cfg()
	radius := cfg.CoverSearchRadius
	if a.since(a.lastRetreatTick) < cfg.RecentRetreatTicks {
		radius = cfg.PanicCoverRadius
	}

	start := a.startCell()
	if a.hasOrderTarget && a.world.grid.InBounds(a.orderTarget.X, a.orderTarget.Y) {
		spot, ok := a.findFreeSpotNear(a.orderTarget)
		if !ok {
			a.world.logVerbose(a, "cover", "anchor_taken", fmt.Sprintf("(%d,%d) fully occupied", a.orderTarget.X, a.orderTarget.Y))
			return
		}
		if path, ok := a.world.planner.FindSafePath(start.X, start.Y, spot.X, spot.Y, a.id, a.team, 0.8); ok {
			a.SetPath(path)
			a.world.logVerbose(a, "cover", "ordered", fmt.Sprintf("to (%d,%d)", spot.X, spot.Y))
			return
		}
	}

	if spot, ok := a.world.planner.FindNearestCover(start.X, start.Y, radius, a.id, a.team); ok {
		free, ok := a.findFreeSpotNear(spot)
		if !ok {
			a.world.logVerbose(a, "cover", "cover_taken", fmt.Sprintf("(%d,%d) fully occupied, holding", spot.X, spot.Y))
			return
		}
		if path, ok := a.world.planner.FindSafePath(start.X, start.Y, free.X, free.Y, a.id, a.team, 0.7); ok {
			a.SetPath(path)
			a.world.logVerbose(a, "cover", "found", fmt.Sprintf("(%d,%d)", free.X, free.Y))
		} else {
			a.world.logVerbose(a, "cover", "no_safe_path", fmt.Sprintf("to (%d,%d), holding", free.X, free.Y))
		}
		return
	}

	if p, ok := s.nearestFallback(a); ok {
		if free, ok := a.findFreeSpotNear(p); ok {
			a.world.logVerbose(a, "cover", "fallback", fmt.Sprintf("(%d,%d)", free.X, free.Y))
			a.GoToGrid(free.X, free.Y)
			return
		}
	}
	a.world.logEvent(a, "cover", "none", fmt.Sprintf("no cover within %d, holding", radius), float64(radius))
}

// nearestFallback picks the closest hand-picked cover point. Points inside
// rock are moved to the first walkable cell around them.
func (s *coverState) nearestFallback(a *Agent) (GridPos, bool) {
	g := a.world.grid
	best := -1.0
	var pick GridPos
	for _, p := range a.world.bf.FallbackCover {
		t := p
		switch {
		case g.IsWalkable(p.X, p.Y):
		case g.Cell(p.X, p.Y) == CellRock:
			found := false
			for dx := -1; dx <= 1 && !found; dx++ {
				for dy := -1; dy <= 1; dy++ {
					if g.IsWalkable(p.X+dx, p.Y+dy) {
						t = GridPos{p.X + dx, p.Y + dy}
						found = true
						break
					}
				}
			}
			if !found {
				continue
			}
		default:
			continue
		}
		d := a.distSq(float64(t.X), float64(t.Y))
		if best < 0 || d < best {
			best = d
			pick = t
		}
	}
	return pick, best >= 0
}

func (s *coverState) Transition(a *Agent) {
	if a.moving || a.delivering || a.engaging {
		return
	}
	cfg := a.cfg()
	a.resting = true

	if a.danger() > coverUnsafeDanger {
		a.world.logVerbose(a, "cover", "unsafe", fmt.Sprintf("danger=%.2f, moving", a.danger()))
		a.resting = false
		s.seek(a)
		return
	}

	if a.role != RoleWarrior || a.hasPath() {
		return
	}
	if a.since(a.lastRetreatTick) <= coverAnchorRetreat || a.since(a.lastIdleAnchorTick) <= cfg.IdleAnchorTicks {
		return
	}
	anchor := a.world.bf.IdleAnchors[a.team]
	spot, ok := a.world.planner.FindNearestCover(anchor.X, anchor.Y, coverAnchorRadius, a.id, a.team)
	if !ok || a.distSq(float64(spot.X), float64(spot.Y)) <= coverAnchorMinDistSq {
		return
	}
	a.setOrderTarget(spot)
	a.MarkIdleAnchor()
	a.resting = false
	a.world.logVerbose(a, "cover", "anchor", fmt.Sprintf("drifting to band (%d,%d)", spot.X, spot.Y))
	s.seek(a)
	a.clearOrderTarget()
}

func (s *coverState) OnExit(a *Agent) {
	a.moving = false
	a.resting = false
}
