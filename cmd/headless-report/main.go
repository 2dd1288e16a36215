package main

import (
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Garsondee/Squad-Command/internal/game"
	"github.com/google/uuid"
)

type runStats struct {
	runIndex int
	seed     int64
	runID    uuid.UUID

	endTick int
	outcome game.BattleOutcomeReason
	teams   [2]game.TeamStats
	orders  [2]int

	firstContactTick  int
	firstDeathTick    int
	firstStrategyTick int

	stateChanges    int
	strategyChanges int
	radioReports    int
	deaths          map[string]struct{}

	behaviour *game.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var configPath string
	var sampleEvery int
	var window int

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 7200, "tick limit per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&configPath, "config", "", "YAML tuning file (defaults when empty)")
	flag.IntVar(&sampleEvery, "sample-every", 60, "ticks between behaviour samples")
	flag.IntVar(&window, "window", 600, "behaviour report window in ticks")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if sampleEvery <= 0 {
		fmt.Println("error: -sample-every must be > 0")
		return
	}
	cfg := game.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(configPath); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("=== Headless Battle Report ===\n")
	fmt.Printf("runs=%d ticks=%d seed_base=%d seed_step=%d config=%q\n\n", runs, ticks, seedBase, seedStep, configPath)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := runDefaultMatch(i+1, seed, ticks, sampleEvery, window, cfg)
		if err != nil {
			log.Fatal(err)
		}
		all = append(all, rs)
		printRun(rs)
	}

	printAggregate(all)
}

func runDefaultMatch(runIndex int, seed int64, ticks, sampleEvery, window int, cfg game.Config) (runStats, error) {
	ts, err := game.NewTestSim(
		game.WithConfig(func(c *game.Config) { *c = cfg }),
		game.WithSeed(seed),
		game.WithDefaultBattlefield(),
	)
	if err != nil {
		return runStats{}, fmt.Errorf("run %d: %w", runIndex, err)
	}
	w := ts.World
	reporter := game.NewMatchReporter(window)
	reporter.Collect(w)
	for w.Tick() < ticks && !w.Outcome().Outcome.Decided() {
		ts.RunTicks(1)
		if w.Tick()%sampleEvery == 0 {
			reporter.Collect(w)
		}
	}
	reporter.Collect(w)
	outcome := w.Outcome()
	sl := w.SimLog

	rs := runStats{
		runIndex:          runIndex,
		seed:              seed,
		runID:             w.RunID,
		endTick:           w.Tick(),
		outcome:           outcome,
		firstContactTick:  firstTick(sl.Entries(), "radio", "enemy_spotted"),
		firstDeathTick:    firstTick(sl.Entries(), "combat", "death"),
		firstStrategyTick: firstTick(sl.Entries(), "strategy", "team_state"),
		stateChanges:      sl.CountCategory("state", "change"),
		strategyChanges:   sl.CountCategory("strategy", "team_state"),
		deaths:            map[string]struct{}{},
		behaviour:         reporter.WindowSummary(),
	}
	for t := game.TeamOrange; t <= game.TeamBlue; t++ {
		rs.teams[t] = w.TeamStats(t)
		if c := w.Commander(t); c != nil {
			rs.orders[t] = c.OrdersIssued
		}
	}
	for _, e := range sl.Entries() {
		switch e.Category {
		case "radio":
			rs.radioReports++
		case "combat":
			if e.Key == "death" {
				rs.deaths[e.Agent] = struct{}{}
			}
		}
	}
	return rs, nil
}

func firstTick(entries []game.SimLogEntry, category, key string) int {
	for _, e := range entries {
		if e.Category == category && e.Key == key {
			return e.Tick
		}
	}
	return -1
}

// teamSurvivalCounts returns (orangeTotal, blueTotal, orangeAlive, blueAlive).
func teamSurvivalCounts(teams [2]game.TeamStats) (int, int, int, int) {
	o, b := teams[game.TeamOrange], teams[game.TeamBlue]
	return o.Alive + o.Deaths, b.Alive + b.Deaths, o.Alive, b.Alive
}

// detectStalemate flags a run that hit the tick limit with both sides
// mostly intact and commanders stuck in one posture.
func detectStalemate(rs runStats) (bool, string) {
	if rs.outcome.Outcome.Decided() {
		return false, "decided:" + rs.outcome.Outcome.String()
	}
	ot, bt, oa, ba := teamSurvivalCounts(rs.teams)
	if ot == 0 || bt == 0 {
		return false, "empty_roster"
	}
	orangeSurv := float64(oa) / float64(ot)
	blueSurv := float64(ba) / float64(bt)
	var reasons []string
	if orangeSurv >= 0.6 && blueSurv >= 0.6 {
		reasons = append(reasons, fmt.Sprintf("high_mutual_survival(%.2f/%.2f)", orangeSurv, blueSurv))
	}
	if rs.strategyChanges <= 2 {
		reasons = append(reasons, fmt.Sprintf("static_posture(%d)", rs.strategyChanges))
	}
	if len(reasons) < 2 {
		return false, "active:" + strings.Join(reasons, ",")
	}
	return true, strings.Join(reasons, ",")
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d run=%s) ---\n", rs.runIndex, rs.seed, rs.runID)
	fmt.Printf("outcome: %s at T=%d\n", rs.outcome, rs.endTick)
	fmt.Printf("phase_markers: first_contact=%d first_death=%d first_strategy=%d\n",
		rs.firstContactTick, rs.firstDeathTick, rs.firstStrategyTick)
	fmt.Printf("event_totals: state_change=%d strategy_change=%d radio=%d\n",
		rs.stateChanges, rs.strategyChanges, rs.radioReports)
	for t := game.TeamOrange; t <= game.TeamBlue; t++ {
		fmt.Printf("  %s orders=%d accuracy=%.2f\n", rs.teams[t], rs.orders[t], rs.teams[t].Accuracy())
	}
	stalemate, reason := detectStalemate(rs)
	fmt.Printf("stalemate=%t (%s)\n", stalemate, reason)
	fmt.Printf("dead: %s\n", joinSet(rs.deaths))
	fmt.Println(rs.behaviour.Format())
}

func printAggregate(all []runStats) {
	outcomes := map[game.BattleOutcome]int{}
	var sums [2]game.TeamStats
	totalState, totalStrategy, totalRadio, stalemates := 0, 0, 0, 0
	deathTicks := make([]int, 0, len(all))
	contactTicks := make([]int, 0, len(all))
	deadGlobal := map[string]int{}

	for _, rs := range all {
		outcomes[rs.outcome.Outcome]++
		totalState += rs.stateChanges
		totalStrategy += rs.strategyChanges
		totalRadio += rs.radioReports
		if s, _ := detectStalemate(rs); s {
			stalemates++
		}
		if rs.firstDeathTick >= 0 {
			deathTicks = append(deathTicks, rs.firstDeathTick)
		}
		if rs.firstContactTick >= 0 {
			contactTicks = append(contactTicks, rs.firstContactTick)
		}
		for t := range sums {
			ts := rs.teams[t]
			sums[t].Alive += ts.Alive
			sums[t].Deaths += ts.Deaths
			sums[t].ShotsFired += ts.ShotsFired
			sums[t].Hits += ts.Hits
			sums[t].GrenadesThrown += ts.GrenadesThrown
			sums[t].Heals += ts.Heals
			sums[t].Deliveries += ts.Deliveries
		}
		for label := range rs.deaths {
			deadGlobal[label]++
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d orange_wins=%d blue_wins=%d draws=%d inconclusive=%d stalemates=%d\n",
		n, outcomes[game.OutcomeOrangeVictory], outcomes[game.OutcomeBlueVictory],
		outcomes[game.OutcomeDraw], outcomes[game.OutcomeInconclusive], stalemates)
	fmt.Printf("avg_events_per_run: state_change=%.1f strategy_change=%.1f radio=%.1f\n",
		avg(totalState, n), avg(totalStrategy, n), avg(totalRadio, n))
	fmt.Printf("phase_marker_avg_ticks: first_contact=%s first_death=%s\n",
		avgTickString(contactTicks), avgTickString(deathTicks))
	for t := game.TeamOrange; t <= game.TeamBlue; t++ {
		s := sums[t]
		fmt.Printf("%s avg: deaths=%.1f shots=%.1f hits=%.1f grenades=%.1f heals=%.1f deliveries=%.1f\n",
			t, avg(s.Deaths, n), avg(s.ShotsFired, n), avg(s.Hits, n), avg(s.GrenadesThrown, n),
			avg(s.Heals, n), avg(s.Deliveries, n))
	}

	labels := make([]string, 0, len(deadGlobal))
	for l := range deadGlobal {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	fmt.Println("\n--- Death rate by agent ---")
	for _, l := range labels {
		fmt.Printf("  %-4s %.0f%%\n", l, float64(deadGlobal[l])/float64(n)*100)
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
