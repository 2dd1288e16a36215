package game

import (
	"fmt"
	"math"
)

// arrivalDistSq is the squared distance at which a waypoint counts as reached.
const arrivalDistSq = 0.25

// SetPath replaces the current path and starts walking toward its first cell.
// An empty path stops the agent.
func (a *Agent) SetPath(p []GridPos) {
	a.path = p
	if len(p) == 0 {
		a.pathIndex = -1
		a.moving = false
		return
	}
	a.pathIndex = 0
	a.aimAt(p[0])
	a.moving = true
}

// ClearPath drops the path and stops.
func (a *Agent) ClearPath() {
	a.path = nil
	a.pathIndex = -1
	a.moving = false
}

// Stop halts movement but keeps the remaining path.
func (a *Agent) Stop() { a.moving = false }

func (a *Agent) hasPath() bool {
	return a.pathIndex >= 0 && a.pathIndex < len(a.path)
}

// pathGoal returns the last cell of the current path.
func (a *Agent) pathGoal() (GridPos, bool) {
	if len(a.path) == 0 {
		return GridPos{}, false
	}
	return a.path[len(a.path)-1], true
}

func (a *Agent) aimAt(p GridPos) {
	a.targetX, a.targetY = float64(p.X), float64(p.Y)
	dx, dy := a.targetX-a.x, a.targetY-a.y
	l := math.Hypot(dx, dy)
	if l > 1e-6 {
		a.dirX, a.dirY = dx/l, dy/l
	} else {
		a.dirX, a.dirY = 0, 0
	}
}

// startCell is the rounded cell used as the origin of path requests.
func (a *Agent) startCell() GridPos {
	return GridPos{int(a.x + 0.5), int(a.y + 0.5)}
}

// planTo runs the relaxed search chain from the agent's cell to goal.
func (a *Agent) planTo(goal GridPos, weights ...float64) ([]GridPos, bool) {
	s := a.startCell()
	return a.world.planner.PlanRelaxed(s.X, s.Y, goal.X, goal.Y, a.id, a.team, weights...)
}

// GoToGrid paths to (gx, gy) with a danger-weighted search, falling back to
// the plain search. Already standing on the goal clears the path.
func (a *Agent) GoToGrid(gx, gy int) bool {
	s := a.startCell()
	if s.X == gx && s.Y == gy {
		a.ClearPath()
		return true
	}
	path, ok := a.planTo(GridPos{gx, gy}, 0.8)
	if !ok {
		a.ClearPath()
		return false
	}
	a.SetPath(path)
	return true
}

// updateOccupancy moves the agent's registration to its rounded cell.
func (a *Agent) updateOccupancy() {
	g := a.world.grid
	c := a.cell()
	if !g.InBounds(c.X, c.Y) {
		if a.hasOccupancy {
			g.ClearOccupied(a.occCell.X, a.occCell.Y, a.id)
			a.hasOccupancy = false
		}
		return
	}
	if a.hasOccupancy && c == a.occCell {
		return
	}
	if !g.SetOccupied(c.X, c.Y, a.id) {
		// Someone else holds the cell; keep the old registration.
		return
	}
	if a.hasOccupancy {
		g.ClearOccupied(a.occCell.X, a.occCell.Y, a.id)
	}
	a.occCell = c
	a.hasOccupancy = true
}

// integrateMovement advances the agent one step along its path, resolving
// blocked cells by yielding, side-stepping, replanning or giving up.
func (a *Agent) integrateMovement() {
	if !a.Alive() {
		a.moving = false
		return
	}
	if !a.moving && a.hasPath() {
		a.aimAt(a.path[a.pathIndex])
		a.moving = true
	}
	if !a.moving {
		return
	}

	g := a.world.grid
	step := a.moveSpeed()
	nx := a.x + a.dirX*step
	ny := a.y + a.dirY*step
	cx, cy := int(nx+0.5), int(ny+0.5)

	walkable := g.IsWalkable(cx, cy)
	occupied := g.IsOccupied(cx, cy, a.id)
	if !walkable || occupied {
		a.handleBlocked(cx, cy, occupied)
		return
	}

	a.x = clampFloat(nx, 1, float64(g.Cols()-2))
	a.y = clampFloat(ny, 1, float64(g.Rows()-2))
	a.updateOccupancy()
	a.stats.Distance += step
	a.noteProgress()

	if a.distSq(a.targetX, a.targetY) < arrivalDistSq {
		a.x, a.y = a.targetX, a.targetY
		a.updateOccupancy()
		a.pathIndex++
		if a.pathIndex < len(a.path) {
			a.aimAt(a.path[a.pathIndex])
			a.moving = true
		} else {
			a.ClearPath()
			a.blockCounter = 0
		}
	}
}

// noteProgress ends a stall once the agent is strictly closer to the goal it
// was blocked on than at any point since, or once it heads somewhere else.
// Backing off along a detour does not count.
func (a *Agent) noteProgress() {
	if a.blockCounter == 0 {
		return
	}
	goal, ok := a.pathGoal()
	if !ok || goal != a.blockGoal {
		a.blockCounter = 0
		return
	}
	c := a.cell()
	if d := manhattan(goal.X, goal.Y, c.X, c.Y); d < a.blockBest {
		a.blockCounter = 0
	}
}

// handleBlocked resolves a step into (cx, cy) that failed. A head-on swap
// with an agent walking into our cell makes us yield; otherwise we try a side
// step, then escalating replans, and finally abandon the path for cover.
func (a *Agent) handleBlocked(cx, cy int, occupied bool) {
	g := a.world.grid
	if occupied {
		if other := a.world.Agent(g.Occupant(cx, cy)); other != nil && other.moving {
			here := a.startCell()
			if int(other.targetX+0.5) == here.X && int(other.targetY+0.5) == here.Y {
				a.moving = false
				a.blockCounter = 0
				a.world.logVerbose(a, "move", "yield", fmt.Sprintf("swap with %s at (%d,%d)", other.label, cx, cy))
				return
			}
		}
		if a.TryStepAside() {
			return
		}
	}

	a.moving = false
	if a.blockCounter == 0 {
		here := a.cell()
		a.blockGoal, _ = a.pathGoal()
		a.blockBest = manhattan(a.blockGoal.X, a.blockGoal.Y, here.X, here.Y)
	}
	a.blockCounter++
	a.stats.Stalls++
	limit := a.cfg().BlockLimit
	if a.blockCounter > limit {
		a.world.logEvent(a, "move", "persistent_block", fmt.Sprintf("blocked at (%d,%d)", cx, cy), float64(a.blockCounter))
		a.ClearPath()
		a.blockCounter = 0
		a.ChangeState(&coverState{})
		return
	}
	// Escalate: local detour, route around the blocking cell, full replan.
	goal, hasGoal := a.pathGoal()
	switch a.blockCounter {
	case 2:
		a.PlanShortDetour(2)
	case 3:
		if occupied && hasGoal {
			a.TryPlanAroundOccupiedCell(GridPos{cx, cy}, goal)
		}
	case 4:
		a.ReplanPathWithDynamicCosts()
	}
	// A fresh plan still has to prove itself; the agent resumes next tick.
	a.moving = false
}

// TryStepAside moves the next waypoint to a free neighbour beside the
// direction of travel, scored by danger, crowding and distance to the goal.
func (a *Agent) TryStepAside() bool {
	if !a.hasPath() {
		return false
	}
	g := a.world.grid
	base := a.cell()
	if !g.InBounds(base.X, base.Y) {
		return false
	}
	next := a.path[a.pathIndex]
	dx, dy := next.X-base.X, next.Y-base.Y
	if dx == 0 && dy == 0 {
		return false
	}
	goal, _ := a.pathGoal()

	candidates := [4][2]int{
		{-dy, dx},
		{dy, -dx},
		{dx - dy, dy + dx},
		{dx + dy, dy - dx},
	}
	best := math.Inf(1)
	var pick GridPos
	found := false
	for _, c := range candidates {
		nx, ny := base.X+c[0], base.Y+c[1]
		if !g.InBounds(nx, ny) || !g.IsWalkable(nx, ny) || g.IsOccupied(nx, ny, a.id) {
			continue
		}
		score := a.world.influence.Danger(a.team, nx, ny)*10 +
			g.OccupancyPenalty(nx, ny, a.id) +
			0.2*manhattan(goal.X, goal.Y, nx, ny)
		if score < best {
			best = score
			pick = GridPos{nx, ny}
			found = true
		}
	}
	if !found {
		return false
	}
	np := make([]GridPos, 0, len(a.path)-a.pathIndex+1)
	np = append(np, pick)
	np = append(np, a.path[a.pathIndex:]...)
	a.SetPath(np)
	a.world.logVerbose(a, "move", "step_aside", fmt.Sprintf("to (%d,%d)", pick.X, pick.Y))
	return true
}

// PlanShortDetour flood-fills within a Chebyshev radius for the first free
// cell, walks there first and then rejoins the remaining path. Cells inside
// the team commander's personal space are trimmed from the detour head.
func (a *Agent) PlanShortDetour(radius int) bool {
	g := a.world.grid
	start := a.cell()
	if !g.InBounds(start.X, start.Y) {
		return false
	}
	within := func(x, y int) bool {
		return max(absInt(x-start.X), absInt(y-start.Y)) <= radius
	}
	parent := map[GridPos]GridPos{start: start}
	queue := []GridPos{start}
	var escape GridPos
	found := false
	for len(queue) > 0 && !found {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range dirs4 {
			n := GridPos{cur.X + d[0], cur.Y + d[1]}
			if !g.InBounds(n.X, n.Y) || !within(n.X, n.Y) {
				continue
			}
			if _, seen := parent[n]; seen {
				continue
			}
			if !g.IsWalkable(n.X, n.Y) || g.IsOccupied(n.X, n.Y, a.id) {
				continue
			}
			parent[n] = cur
			if !found {
				escape = n
				found = true
			}
			queue = append(queue, n)
		}
	}
	if !found {
		return false
	}

	var detour []GridPos
	for c := escape; c != start; c = parent[c] {
		detour = append(detour, c)
	}
	// detour runs escape -> start; trim the head while it crowds the commander.
	if cmd := a.world.commanderAgent(a.team); cmd != nil && cmd.Alive() && cmd != a {
		far := func(c GridPos) bool { return cmd.distSq(float64(c.X), float64(c.Y)) > 9 }
		if !far(detour[0]) {
			i := 0
			for i < len(detour) && !far(detour[i]) {
				i++
			}
			detour = detour[i:]
		}
		if len(detour) == 0 {
			return false
		}
	}
	for i, j := 0, len(detour)-1; i < j; i, j = i+1, j-1 {
		detour[i], detour[j] = detour[j], detour[i]
	}
	var rest []GridPos
	if a.hasPath() {
		rest = a.path[a.pathIndex:]
	}
	if len(rest) > 0 && detour[len(detour)-1] == rest[0] {
		rest = rest[1:]
	}
	a.SetPath(append(detour, rest...))
	a.world.logVerbose(a, "move", "detour", fmt.Sprintf("via (%d,%d)", escape.X, escape.Y))
	return true
}

// TryPlanAroundOccupiedCell treats the blocked cell as rock for one search
// and restores it afterwards.
func (a *Agent) TryPlanAroundOccupiedCell(blocked, goal GridPos) bool {
	g := a.world.grid
	orig := g.Cell(blocked.X, blocked.Y)
	if orig.Walkable() {
		g.SetCell(blocked.X, blocked.Y, CellRock)
		defer g.SetCell(blocked.X, blocked.Y, orig)
	}
	path, ok := a.planTo(goal, 0.8, 0.5)
	if !ok || len(path) == 0 {
		return false
	}
	a.SetPath(path)
	return true
}

// ReplanPathWithDynamicCosts plans afresh to the current path goal, or to the
// order target when there is no path.
func (a *Agent) ReplanPathWithDynamicCosts() bool {
	goal, ok := a.pathGoal()
	if !ok {
		if !a.hasOrderTarget {
			return false
		}
		goal = a.orderTarget
	}
	path, ok := a.planTo(goal, 0.8, 0.5)
	if !ok || len(path) == 0 {
		return false
	}
	a.SetPath(path)
	return true
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
