package game

import (
	"strings"
	"testing"
)

func TestNewWorld_ValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MoveSpeed = 0
	_, err := NewWorld(cfg, NewBattlefield(20, 20))
	if err == nil || !strings.HasPrefix(err.Error(), "new world:") {
		t.Fatalf("expected a wrapped validation error, got %v", err)
	}
}

func TestWorld_SpawnAssignsIdsAndLabels(t *testing.T) {
	w := newTestWorld(t, 30, 20)
	c := w.Spawn(TeamOrange, RoleCommander, 3, 3)
	m := w.Spawn(TeamOrange, RoleMedic, 5, 3)
	b := w.Spawn(TeamBlue, RoleWarrior, 25, 15)

	if c.ID() != 1 || m.ID() != 2 || b.ID() != 3 {
		t.Fatalf("ids should be 1-based in spawn order, got %d %d %d", c.ID(), m.ID(), b.ID())
	}
	if c.Label() != "OC1" || m.Label() != "OM2" || b.Label() != "BW3" {
		t.Fatalf("unexpected labels %s %s %s", c.Label(), m.Label(), b.Label())
	}
	if w.Agent(0) != nil || w.Agent(4) != nil || w.Agent(2) != m {
		t.Fatal("Agent lookup should resolve exactly the issued ids")
	}
	if w.Commander(TeamOrange) == nil || w.Commander(TeamBlue) != nil {
		t.Fatal("only the side that spawned a commander has one")
	}
	if got := len(w.Roster(TeamOrange)); got != 2 {
		t.Fatalf("orange roster = %d, want 2", got)
	}
	if occ := w.grid.Occupant(5, 3); occ != m.ID() {
		t.Fatalf("spawn should register occupancy, got %d", occ)
	}
	if !w.SimLog.HasEntry("spawn", "medic", "at (5,3)") {
		t.Fatal("spawn should be logged")
	}
}

func TestWorld_StepAdvancesTickAndRebuildsDanger(t *testing.T) {
	ts := newSim(t,
		WithSeed(3),
		WithoutInitialOrders(),
		WithAgent(TeamBlue, RoleWarrior, 20, 15),
	)
	w := ts.World
	if w.influence.Danger(TeamOrange, 22, 15) != 0 {
		t.Fatal("danger is only built by Step")
	}
	ts.RunTicks(1)
	if ts.Tick() != 1 {
		t.Fatalf("tick = %d, want 1", ts.Tick())
	}
	if w.influence.Danger(TeamOrange, 22, 15) <= 0 {
		t.Fatal("Step should rebuild the danger fields")
	}
	if _, team := w.influence.VisibilityLayer(); team != w.VisibilityTeam() {
		t.Fatal("visibility should be built for the selected team")
	}
}

func TestWorld_IdleAgentsStartMoving(t *testing.T) {
	ts := newSim(t,
		WithSeed(5),
		WithoutInitialOrders(),
		WithAgent(TeamOrange, RolePorter, 20, 15),
		WithAgent(TeamBlue, RoleCommander, 35, 25),
	)
	porter, cmd := ts.Agent(1), ts.Agent(2)
	cfg := ts.World.cfg

	ts.RunTicks(cfg.IdleMotionTicks)
	if porter.IsMoving() || porter.state != nil {
		t.Fatal("idle motion must wait out the idle interval")
	}
	ts.RunTicks(2)
	if !porter.IsMoving() && porter.state == nil {
		dumpLog(t, ts.World)
		t.Fatal("an idle porter should be given somewhere to go")
	}
	if cmd.state != nil {
		t.Fatal("commanders are never idle-moved")
	}
}

func TestNewDefaultWorld_OpeningDispatch(t *testing.T) {
	w, err := NewDefaultWorld(DefaultConfig())
	if err != nil {
		t.Fatalf("NewDefaultWorld: %v", err)
	}
	if len(w.Roster(TeamOrange)) != 5 || len(w.Roster(TeamBlue)) != 5 {
		t.Fatalf("each side fields five, got %d/%d", len(w.Roster(TeamOrange)), len(w.Roster(TeamBlue)))
	}
	dry := w.Roster(TeamOrange)[openingPorterTarget]
	if dry.Ammo() != 1 {
		t.Fatalf("opening warrior ammo = %d, want 1", dry.Ammo())
	}
	var porter *Agent
	for _, a := range w.Roster(TeamOrange) {
		if a.Role() == RolePorter {
			porter = a
		}
	}
	if porter.StateKind() != StateDeliverAmmo || porter.target() != dry {
		t.Fatalf("orange porter should open on a delivery to %s, got %s -> %v",
			dry.Label(), porter.StateKind(), porter.target())
	}
	for _, a := range w.Agents() {
		if a.state == nil {
			t.Fatalf("%s starts without a state", a.Label())
		}
	}
	if w.Outcome().Outcome.Decided() {
		t.Fatal("a fresh match is undecided")
	}
}

func TestWorld_SeedMakesRunsRepeatable(t *testing.T) {
	run := func() []SimLogEntry {
		ts := newSim(t, WithSeed(21), WithDefaultBattlefield())
		ts.RunTicks(900)
		return ts.SimLog().Entries()
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("same seed gave %d vs %d log entries", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverge at entry %d: %s vs %s", i, a[i], b[i])
		}
	}
}
