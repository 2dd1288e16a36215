package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/Squad-Command/internal/game"
)

func TestTeamSurvivalCounts(t *testing.T) {
	teams := [2]game.TeamStats{
		{Team: game.TeamOrange, Alive: 3, Deaths: 2},
		{Team: game.TeamBlue, Alive: 5, Deaths: 0},
	}

	orangeTotal, blueTotal, orangeAlive, blueAlive := teamSurvivalCounts(teams)
	if orangeTotal != 5 || blueTotal != 5 {
		t.Fatalf("expected totals orange=5 blue=5, got orange=%d blue=%d", orangeTotal, blueTotal)
	}
	if orangeAlive != 3 || blueAlive != 5 {
		t.Fatalf("expected survivors orange=3 blue=5, got orange=%d blue=%d", orangeAlive, blueAlive)
	}
}

func stalemateRun(orangeAlive, blueAlive, strategyChanges int) runStats {
	return runStats{
		outcome: game.BattleOutcomeReason{Outcome: game.OutcomeInconclusive},
		teams: [2]game.TeamStats{
			{Team: game.TeamOrange, Alive: orangeAlive, Deaths: 5 - orangeAlive},
			{Team: game.TeamBlue, Alive: blueAlive, Deaths: 5 - blueAlive},
		},
		strategyChanges: strategyChanges,
	}
}

func TestDetectStalemate_TrueWhenMutualSurvivalAndPostureStatic(t *testing.T) {
	isStalemate, reason := detectStalemate(stalemateRun(5, 4, 1))
	if !isStalemate {
		t.Fatalf("expected stalemate=true, got false (reason=%s)", reason)
	}
	if !strings.Contains(reason, "high_mutual_survival") {
		t.Fatalf("expected reason to mention high_mutual_survival, got: %s", reason)
	}
}

func TestDetectStalemate_FalseWhenPostureShifts(t *testing.T) {
	isStalemate, reason := detectStalemate(stalemateRun(5, 4, 6))
	if isStalemate {
		t.Fatalf("expected stalemate=false when commanders keep changing posture (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWhenAttritionDecisive(t *testing.T) {
	isStalemate, reason := detectStalemate(stalemateRun(1, 5, 0))
	if isStalemate {
		t.Fatalf("expected stalemate=false under decisive attrition (reason=%s)", reason)
	}
}

func TestDetectStalemate_FalseWhenDecided(t *testing.T) {
	rs := stalemateRun(5, 0, 0)
	rs.outcome.Outcome = game.OutcomeOrangeVictory
	isStalemate, reason := detectStalemate(rs)
	if isStalemate || !strings.HasPrefix(reason, "decided:") {
		t.Fatalf("expected decided run to not be a stalemate, got %t (%s)", isStalemate, reason)
	}
}

func TestFirstTick(t *testing.T) {
	entries := []game.SimLogEntry{
		{Tick: 3, Category: "radio", Key: "low_ammo"},
		{Tick: 9, Category: "radio", Key: "enemy_spotted"},
		{Tick: 12, Category: "radio", Key: "enemy_spotted"},
	}
	if got := firstTick(entries, "radio", "enemy_spotted"); got != 9 {
		t.Fatalf("expected first enemy report at 9, got %d", got)
	}
	if got := firstTick(entries, "combat", "death"); got != -1 {
		t.Fatalf("expected -1 for missing event, got %d", got)
	}
}
