package game

import "testing"

// newTestWorld builds an empty open field with default tuning.
func newTestWorld(t *testing.T, cols, rows int) *World {
	t.Helper()
	w, err := NewWorld(DefaultConfig(), NewBattlefield(cols, rows))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

// newSim builds a TestSim and fails the test on construction errors.
func newSim(t *testing.T, opts ...SimOption) *TestSim {
	t.Helper()
	ts, err := NewTestSim(opts...)
	if err != nil {
		t.Fatalf("NewTestSim: %v", err)
	}
	return ts
}

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, w *World) {
	t.Helper()
	entries := w.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
	t.Log("\n" + w.SimLog.Summary(w.tick, w.agents, w.Commanders()))
}

// assertSingleOwner fails if two living agents claim the same cell or the
// grid disagrees with an agent's registration.
func assertSingleOwner(t *testing.T, w *World) {
	t.Helper()
	seen := map[GridPos]int{}
	for _, a := range w.agents {
		c, ok := a.OccupiedCell()
		if !ok {
			continue
		}
		if prev, dup := seen[c]; dup {
			t.Fatalf("T=%d: agents %d and %d both registered at %v", w.tick, prev, a.id, c)
		}
		seen[c] = a.id
		if got := w.grid.Occupant(c.X, c.Y); got != a.id {
			t.Fatalf("T=%d: agent %d thinks it holds %v but grid says %d", w.tick, a.id, c, got)
		}
	}
}

// relocate teleports a to (x, y), moving its occupancy registration along.
func relocate(a *Agent, x, y float64) {
	if a.hasOccupancy {
		a.world.grid.ClearOccupied(a.occCell.X, a.occCell.Y, a.id)
		a.hasOccupancy = false
	}
	a.x, a.y = x, y
	a.targetX, a.targetY = x, y
	a.updateOccupancy()
}
