package game

import (
	"math/rand"
	"testing"
)

func walkUntilIdle(a *Agent, maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		if !a.moving && !a.hasPath() {
			return i
		}
		a.integrateMovement()
	}
	return -1
}

func TestSetPath_EmptyStops(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5, 5)
	a.SetPath([]GridPos{{6, 5}})
	if !a.moving {
		t.Fatal("non-empty path should start movement")
	}
	a.SetPath(nil)
	if a.moving || a.hasPath() {
		t.Fatal("empty path should stop the agent")
	}
}

func TestGoToGrid_WalksAndSnapsToGoal(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5, 5)
	if !a.GoToGrid(8, 5) {
		t.Fatal("GoToGrid on open ground should succeed")
	}
	if steps := walkUntilIdle(a, 500); steps < 0 {
		t.Fatalf("agent never arrived; pos=(%.2f,%.2f)", a.x, a.y)
	}
	if a.x != 8 || a.y != 5 {
		t.Fatalf("expected agent snapped to (8,5), got (%.3f,%.3f)", a.x, a.y)
	}
	if got := w.grid.Occupant(8, 5); got != a.id {
		t.Fatalf("goal cell occupant = %d, want %d", got, a.id)
	}
	if got := w.grid.Occupant(5, 5); got != 0 {
		t.Fatalf("start cell should be released, occupant = %d", got)
	}
	if a.stats.Distance <= 0 {
		t.Fatal("distance walked should be recorded")
	}
}

func TestGoToGrid_OwnCellClearsPath(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5, 5)
	a.SetPath([]GridPos{{6, 5}, {7, 5}})
	if !a.GoToGrid(5, 5) {
		t.Fatal("going to the cell already held is trivially satisfied")
	}
	if a.moving || a.hasPath() {
		t.Fatal("arriving in place should leave no path")
	}
}

func TestIntegrateMovement_HeadOnSwapYields(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5.45, 5)
	b := w.Spawn(TeamBlue, RoleWarrior, 5.56, 5)
	if c, _ := a.OccupiedCell(); c != (GridPos{5, 5}) {
		t.Fatalf("A should hold (5,5), got %v", c)
	}
	if c, _ := b.OccupiedCell(); c != (GridPos{6, 5}) {
		t.Fatalf("B should hold (6,5), got %v", c)
	}
	a.SetPath([]GridPos{{6, 5}})
	b.SetPath([]GridPos{{5, 5}})

	a.integrateMovement()
	if a.moving {
		t.Fatal("A should yield to B walking into its cell")
	}
	if a.x != 5.45 {
		t.Fatalf("a yielding agent must not move, x=%v", a.x)
	}
	if a.blockCounter != 0 {
		t.Fatalf("yielding is not a stall, blockCounter=%d", a.blockCounter)
	}
	assertSingleOwner(t, w)
}

func TestIntegrateMovement_ClampsInsideBorder(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 1.02, 5)
	a.targetX, a.targetY = -3, 5
	a.dirX, a.dirY = -1, 0
	a.path = []GridPos{{0, 5}}
	a.pathIndex = 0
	a.moving = true
	a.integrateMovement()
	if a.x < 1 {
		t.Fatalf("x must stay inside the border ring, got %v", a.x)
	}
}

func TestMovement_RandomWalkKeepsSingleOccupancy(t *testing.T) {
	w := newTestWorld(t, 24, 24)
	rng := rand.New(rand.NewSource(7))
	var agents []*Agent
	for i := 0; i < 16; i++ {
		x := float64(3 + (i%4)*5)
		y := float64(3 + (i/4)*5)
		team := TeamOrange
		if i%2 == 1 {
			team = TeamBlue
		}
		agents = append(agents, w.Spawn(team, RoleWarrior, x, y))
	}
	assertSingleOwner(t, w)

	for tick := 0; tick < 1500; tick++ {
		for _, a := range agents {
			if !a.moving && rng.Intn(20) == 0 {
				a.GoToGrid(1+rng.Intn(22), 1+rng.Intn(22))
			}
			a.integrateMovement()
		}
		w.grid.DecayDynamicCosts(w.cfg.HazardDecay)
		w.tick++
		assertSingleOwner(t, w)
	}
}

func TestIntegrateMovement_PersistentBlockInCorridorGivesUp(t *testing.T) {
	ts := newSim(t,
		WithMapSize(20, 5),
		WithTerrain(0, 1, 20, 1, CellRock),
		WithTerrain(0, 3, 20, 1, CellRock),
		WithoutInitialOrders(),
		WithVerbose(true),
		WithAgent(TeamOrange, RoleWarrior, 3, 2),
		WithAgent(TeamOrange, RolePorter, 8, 2),
	)
	w := ts.World
	a := ts.Agent(1)
	if !a.GoToGrid(15, 2) {
		t.Fatal("the corridor is open apart from the parked porter")
	}

	maxBlock := 0
	gaveUp := -1
	for i := 0; i < 3000; i++ {
		a.integrateMovement()
		maxBlock = max(maxBlock, a.blockCounter)
		w.tick++
		if a.StateKind() == StateSeekCover {
			gaveUp = i
			break
		}
	}
	t.Logf("gave up after %d ticks, max block count %d, pos=(%.2f,%.2f)", gaveUp, maxBlock, a.x, a.y)
	if gaveUp < 0 {
		dumpLog(t, w)
		t.Fatalf("agent never abandoned its path: state=%s block=%d pos=(%.2f,%.2f)", a.StateKind(), a.blockCounter, a.x, a.y)
	}
	if maxBlock < w.cfg.BlockLimit {
		t.Fatalf("should escalate through every retry, max block count %d", maxBlock)
	}
	if !w.SimLog.HasEntry("move", "persistent_block", "") {
		t.Fatal("giving up should be logged")
	}
	if !w.SimLog.HasEntry("move", "detour", "") {
		t.Fatal("a short detour should be tried before giving up")
	}
	if a.blockCounter != 0 {
		t.Fatalf("giving up resets the counter, got %d", a.blockCounter)
	}
	if w.grid.Cell(8, 2) != CellFree {
		t.Fatal("planning around the porter must restore its cell")
	}
	if a.x >= 8 {
		t.Fatalf("agent passed through the porter: x=%.2f", a.x)
	}
	assertSingleOwner(t, w)
}

func TestIntegrateMovement_ProgressClearsStall(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5, 5)
	b := w.Spawn(TeamOrange, RolePorter, 6, 5)
	a.SetPath([]GridPos{{6, 5}, {7, 5}, {8, 5}, {9, 5}})

	// Nudge a into the porter until the first stall registers.
	w.grid.SetCell(5, 4, CellRock)
	w.grid.SetCell(5, 6, CellRock)
	w.grid.SetCell(6, 4, CellRock)
	w.grid.SetCell(6, 6, CellRock)
	for i := 0; i < 20 && a.blockCounter == 0; i++ {
		a.integrateMovement()
	}
	if a.blockCounter == 0 {
		t.Fatal("walking into a parked agent with walls on both sides should stall")
	}

	w.grid.ClearOccupied(6, 5, b.id)
	b.hasOccupancy = false
	b.x, b.y = 15, 15
	b.updateOccupancy()
	for i := 0; i < 200 && a.blockCounter != 0; i++ {
		a.integrateMovement()
	}
	if a.blockCounter != 0 {
		t.Fatalf("closing on the goal should clear the stall, counter=%d pos=(%.2f,%.2f)", a.blockCounter, a.x, a.y)
	}
}

func TestTryStepAside_ScoresDangerAndGoalDistance(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5, 5)
	w.Spawn(TeamOrange, RolePorter, 6, 5)
	path := []GridPos{{6, 5}, {8, 6}, {10, 7}}

	// Scores are 0.2 x Manhattan distance to (10,7): (6,6)=1.0 (5,6)=1.2
	// (6,4)=1.4 (5,4)=1.6.
	a.SetPath(append([]GridPos(nil), path...))
	if !a.TryStepAside() {
		t.Fatal("open neighbours should allow a side step")
	}
	if a.path[0] != (GridPos{6, 6}) {
		t.Fatalf("closest side cell to the goal should win, got %v", a.path[0])
	}
	if got := a.path[len(a.path)-1]; got != (GridPos{10, 7}) {
		t.Fatalf("side step must keep the goal, got %v", got)
	}

	// 0.05 danger costs 0.5 and pushes (6,6) to 1.5.
	w.influence.AddFireRisk(TeamOrange, 6, 6, 0.05)
	a.SetPath(append([]GridPos(nil), path...))
	a.TryStepAside()
	if a.path[0] != (GridPos{5, 6}) {
		t.Fatalf("danger should steer the step to (5,6), got %v", a.path[0])
	}

	w.Spawn(TeamBlue, RoleMedic, 5, 6)
	a.SetPath(append([]GridPos(nil), path...))
	a.TryStepAside()
	if a.path[0] != (GridPos{6, 4}) {
		t.Fatalf("occupied cells are never candidates, got %v", a.path[0])
	}

	for _, c := range []GridPos{{6, 6}, {6, 4}, {5, 4}} {
		w.grid.SetCell(c.X, c.Y, CellRock)
	}
	a.SetPath(append([]GridPos(nil), path...))
	if a.TryStepAside() {
		t.Fatalf("no free neighbour left, yet stepped to %v", a.path[0])
	}
}
