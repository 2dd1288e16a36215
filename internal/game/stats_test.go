package game

import (
	"strings"
	"testing"
)

func TestAgentStats_Accuracy(t *testing.T) {
	if (AgentStats{}).Accuracy() != 0 {
		t.Fatal("no shots means zero accuracy")
	}
	s := AgentStats{ShotsFired: 8, Hits: 2}
	if s.Accuracy() != 0.25 {
		t.Fatalf("accuracy = %v, want 0.25", s.Accuracy())
	}
}

func TestWorld_TeamStatsAggregatesRoster(t *testing.T) {
	w := newTestWorld(t, 30, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5, 5)
	b := w.Spawn(TeamOrange, RolePorter, 7, 5)
	c := w.Spawn(TeamOrange, RoleMedic, 9, 5)
	w.Spawn(TeamBlue, RoleWarrior, 25, 15)

	a.stats.ShotsFired, a.stats.Hits = 10, 4
	b.stats.Deliveries = 2
	c.stats.Heals = 3
	c.TakeDamage(c.hp)
	w.radio[TeamOrange].push(Report{Kind: ReportInjured})

	ts := w.TeamStats(TeamOrange)
	if ts.Alive != 2 || ts.Deaths != 1 {
		t.Fatalf("alive/deaths = %d/%d, want 2/1", ts.Alive, ts.Deaths)
	}
	if ts.ShotsFired != 10 || ts.Hits != 4 || ts.Deliveries != 2 || ts.Heals != 3 {
		t.Fatalf("stats not summed: %+v", ts.AgentStats)
	}
	if ts.Reports[ReportInjured] != 1 {
		t.Fatalf("report count = %d, want 1", ts.Reports[ReportInjured])
	}
	if !strings.Contains(ts.String(), "orange alive=2 deaths=1") {
		t.Fatalf("unexpected summary %q", ts.String())
	}
	if blue := w.TeamStats(TeamBlue); blue.Alive != 1 || blue.ShotsFired != 0 {
		t.Fatalf("blue stats leaked: %+v", blue)
	}
}

func TestDetermineBattleOutcome(t *testing.T) {
	mk := func(w *World, team Team, n int) []*Agent {
		for i := 0; i < n; i++ {
			w.Spawn(team, RoleWarrior, float64(3+i*2), float64(3+int(team)*10))
		}
		return w.roster[team]
	}
	kill := func(as []*Agent, n int) {
		for _, a := range as[:n] {
			a.die()
		}
	}

	cases := []struct {
		name         string
		orangeDead   int
		blueDead     int
		want         BattleOutcome
		wantDescPart string
	}{
		{"both standing", 0, 0, OutcomeInconclusive, "unresolved"},
		{"blue wiped", 1, 5, OutcomeOrangeVictory, "blue_eliminated"},
		{"orange wiped", 5, 2, OutcomeBlueVictory, "orange_eliminated"},
		{"mutual", 5, 5, OutcomeDraw, "mutual_annihilation"},
		{"orange leaning", 0, 4, OutcomeInconclusive, "leaning_orange"},
		{"blue leaning", 4, 1, OutcomeInconclusive, "leaning_blue"},
	}
	for _, tc := range cases {
		w := newTestWorld(t, 30, 20)
		orange, blue := mk(w, TeamOrange, 5), mk(w, TeamBlue, 5)
		kill(orange, tc.orangeDead)
		kill(blue, tc.blueDead)
		got := DetermineBattleOutcome(orange, blue)
		if got.Outcome != tc.want {
			t.Fatalf("%s: outcome = %s, want %s", tc.name, got.Outcome, tc.want)
		}
		if !strings.Contains(got.Description, tc.wantDescPart) {
			t.Fatalf("%s: description %q lacks %q", tc.name, got.Description, tc.wantDescPart)
		}
		if got.Outcome.Decided() == (tc.want == OutcomeInconclusive) {
			t.Fatalf("%s: Decided() disagrees with outcome", tc.name)
		}
		if w.Outcome().Outcome != got.Outcome {
			t.Fatalf("%s: World.Outcome disagrees", tc.name)
		}
	}
}
