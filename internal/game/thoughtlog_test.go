package game

import "testing"

func TestThoughtLog_EvictsOldestWhenFull(t *testing.T) {
	tl := NewThoughtLog()
	for i := 0; i < logMaxEntries+5; i++ {
		tl.Add(i, "OW2", TeamOrange, "state", "tick")
	}
	if tl.Len() != logMaxEntries {
		t.Fatalf("expected %d retained entries, got %d", logMaxEntries, tl.Len())
	}
	all := tl.Recent(0)
	if all[0].Tick != 5 || all[len(all)-1].Tick != logMaxEntries+4 {
		t.Fatalf("expected ticks 5..%d oldest first, got %d..%d", logMaxEntries+4, all[0].Tick, all[len(all)-1].Tick)
	}
	last := tl.Recent(3)
	if len(last) != 3 || last[2].Tick != logMaxEntries+4 || last[0].Tick != logMaxEntries+2 {
		t.Fatalf("Recent(3) should return the three newest entries, got %+v", last)
	}
}

func TestThoughtLog_FedByWorldEvents(t *testing.T) {
	w := newTestWorld(t, 30, 20)
	a := w.Spawn(TeamBlue, RoleWarrior, 10, 10)
	a.ChangeState(&coverState{})

	got := w.Thoughts.Recent(0)
	if len(got) < 2 || got[0].Category != "spawn" {
		t.Fatalf("expected spawn then state change in the field log, got %+v", got)
	}
	st := got[1]
	if st.Label != a.Label() || st.Team != TeamBlue || st.Category != "state" {
		t.Fatalf("unexpected field log entry: %+v", st)
	}
	if st.Message != "none -> seek_cover" {
		t.Fatalf("expected transition message, got %q", st.Message)
	}
}
