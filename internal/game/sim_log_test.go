package game

import (
	"strings"
	"testing"
)

func TestSimLog_Queries(t *testing.T) {
	sl := NewSimLog(false)
	sl.Add(10, "OW2", "orange", "radio", "low_ammo", "AMMO 3/30", 3)
	sl.Add(20, "OC1", "orange", "strategy", "team_state", "defend -> attack", 0)
	sl.Add(30, "OW2", "orange", "radio", "low_ammo", "AMMO 0/30", 0)
	sl.AddVerbose(31, "OW2", "orange", "move", "replan", "blocked", 0)

	if sl.Verbose() {
		t.Fatalf("log built non-verbose")
	}
	if n := len(sl.Entries()); n != 3 {
		t.Fatalf("verbose entry should be dropped, got %d entries", n)
	}
	if n := sl.CountCategory("radio", ""); n != 2 {
		t.Fatalf("expected 2 radio entries, got %d", n)
	}
	last, ok := sl.LastOf("radio", "low_ammo")
	if !ok || last.Tick != 30 || last.NumVal != 0 {
		t.Fatalf("LastOf should return the dry report, got %+v ok=%t", last, ok)
	}
	if _, ok := sl.LastOf("combat", "death"); ok {
		t.Fatalf("LastOf on a missing key should report false")
	}
	if !sl.HasEntry("strategy", "", "-> attack") || sl.HasEntry("strategy", "", "-> retreat") {
		t.Fatalf("HasEntry substring match wrong")
	}
	if got := sl.FilterAgent("OC1"); len(got) != 1 || got[0].Tick != 20 {
		t.Fatalf("FilterAgent(OC1) = %+v", got)
	}
	if got := sl.FilterTickRange(15, 30); len(got) != 2 {
		t.Fatalf("expected 2 entries in [15,30], got %d", len(got))
	}
	if !strings.Contains(sl.Format(), "[T=0020] OC1") {
		t.Fatalf("Format should carry fixed-width lines:\n%s", sl.Format())
	}
	if strings.Contains(sl.FormatRange(0, 15), "OC1") {
		t.Fatalf("FormatRange leaked an entry outside the range")
	}
}

func TestSimLog_SummaryCoversRosterAndCommanders(t *testing.T) {
	ts := newSim(t, WithDefaultBattlefield(), WithSeed(3))
	ts.RunTicks(120)
	w := ts.World

	out := w.SimLog.Summary(w.tick, w.agents, w.Commanders())
	t.Log("\n" + out)
	for _, want := range []string{"Summary at T=0120", "orange alive=5/5", "blue alive=5/5", "orange commander:", "OC1 "} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q", want)
		}
	}
}

func TestBuildStages_SplitsAtStateChanges(t *testing.T) {
	events := []SimLogEntry{
		{Tick: 105, Category: "state", Key: "change", Value: "none -> combat"},
		{Tick: 110, Category: "radio", Key: "low_ammo", Value: "AMMO 2/30"},
		{Tick: 130, Category: "state", Key: "change", Value: "combat -> seek_cover"},
	}
	st := buildStages(events, 100, 150)
	if len(st) != 3 {
		t.Fatalf("expected 3 stages, got %+v", st)
	}
	want := []reportStage{
		{100, 104, "(before range)"},
		{105, 129, "combat"},
		{130, 150, "seek_cover"},
	}
	for i := range want {
		if st[i] != want[i] {
			t.Fatalf("stage %d = %+v, want %+v", i, st[i], want[i])
		}
	}

	st = buildStages([]SimLogEntry{{Tick: 100, Category: "state", Key: "change", Value: "none -> heal"}}, 100, 120)
	if len(st) != 1 || st[0].state != "heal" || st[0].endTick != 120 {
		t.Fatalf("a change on the first tick should replace the opening stage, got %+v", st)
	}
}

func TestDebugReport_SelectedAgent(t *testing.T) {
	ts := newSim(t, WithDefaultBattlefield(), WithSeed(5))
	ts.RunTicks(90)
	w := ts.World
	sel := w.Agent(5)

	out := DebugReport(w, sel, 120)
	t.Log("\n" + out)
	for _, want := range []string{
		"run=" + w.RunID.String(),
		"tick_range=[0..90]",
		"== orange: state=",
		"roster:",
		"== SELECTED (" + sel.Label() + ") ==",
		"stages:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("debug report missing %q", want)
		}
	}

	general := DebugReport(w, nil, 0)
	if !strings.Contains(general, "recent events:") || strings.Contains(general, "SELECTED") {
		t.Fatalf("unselected report should list recent events only")
	}
}
