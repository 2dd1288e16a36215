package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// TeamSample captures one team's state at one point in time.
type TeamSample struct {
	Posture     TeamState
	HasCommand  bool
	Alive       int
	Dead        int
	Injured     int // hp below max but above zero
	DryWarriors int // living warriors with no ammo
	Moving      int
	AvgDanger   float64
	States      [StateReturnToWarehouse + 1]int
}

// MatchSample is a snapshot of both teams at one tick.
type MatchSample struct {
	Tick  int
	Teams [teamCount]TeamSample
}

// MatchReporter collects periodic samples from a world and summarises them
// over a sliding tick window.
type MatchReporter struct {
	history     []MatchSample
	windowTicks int
}

// NewMatchReporter creates a reporter with the given window size.
func NewMatchReporter(windowTicks int) *MatchReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &MatchReporter{windowTicks: windowTicks}
}

// Collect samples the current world state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *MatchReporter) Collect(w *World) {
	s := MatchSample{Tick: w.tick}
	for t := Team(0); t < teamCount; t++ {
		ts := &s.Teams[t]
		if c := w.commanders[t]; c != nil && c.alive() {
			ts.Posture = c.state
			ts.HasCommand = true
		}
		dangerSum := 0.0
		for _, a := range w.roster[t] {
			if !a.Alive() {
				ts.Dead++
				continue
			}
			ts.Alive++
			if a.hp < w.cfg.MaxHP {
				ts.Injured++
			}
			if a.role == RoleWarrior && a.ammo == 0 {
				ts.DryWarriors++
			}
			if a.moving {
				ts.Moving++
			}
			ts.States[a.StateKind()]++
			dangerSum += a.danger()
		}
		if ts.Alive > 0 {
			ts.AvgDanger = dangerSum / float64(ts.Alive)
		}
	}
	r.history = append(r.history, s)
}

// Latest returns the most recent sample, or nil.
func (r *MatchReporter) Latest() *MatchSample {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all collected samples.
func (r *MatchReporter) History() []MatchSample { return r.history }

// TeamWindow is one team's aggregate over a window.
type TeamWindow struct {
	StatePct      [StateReturnToWarehouse + 1]float64 // share of living agent-samples, 0-100
	PostureTicks  [TeamRetreat + 1]int                // samples spent in each posture
	AvgAlive      float64
	AvgInjured    float64
	AvgDryWarrior float64
	AvgMoving     float64
	AvgDanger     float64
	Dead          int // at the end of the window
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int
	Teams            [teamCount]TeamWindow
}

// WindowSummary averages the samples that fall inside the recent window.
func (r *MatchReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1]
	cutoff := latest.Tick - r.windowTicks
	var window []MatchSample
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
	}
	for t := Team(0); t < teamCount; t++ {
		tw := &wr.Teams[t]
		var stateTotal float64
		for _, s := range window {
			ts := s.Teams[t]
			for k, c := range ts.States {
				tw.StatePct[k] += float64(c)
				stateTotal += float64(c)
			}
			if ts.HasCommand {
				tw.PostureTicks[ts.Posture]++
			}
			tw.AvgAlive += float64(ts.Alive)
			tw.AvgInjured += float64(ts.Injured)
			tw.AvgDryWarrior += float64(ts.DryWarriors)
			tw.AvgMoving += float64(ts.Moving)
			tw.AvgDanger += ts.AvgDanger
		}
		if stateTotal > 0 {
			for k := range tw.StatePct {
				tw.StatePct[k] = tw.StatePct[k] / stateTotal * 100
			}
		}
		tw.AvgAlive /= n
		tw.AvgInjured /= n
		tw.AvgDryWarrior /= n
		tw.AvgMoving /= n
		tw.AvgDanger /= n
		tw.Dead = latest.Teams[t].Dead
	}
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Behaviour Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)
	for t := Team(0); t < teamCount; t++ {
		tw := wr.Teams[t]
		fmt.Fprintf(&sb, "--- %s ---\n", strings.ToUpper(t.String()))
		fmt.Fprintf(&sb, "  alive=%.1f injured=%.1f dry_warriors=%.1f moving=%.1f dead=%d danger=%.2f\n",
			tw.AvgAlive, tw.AvgInjured, tw.AvgDryWarrior, tw.AvgMoving, tw.Dead, tw.AvgDanger)
		sb.WriteString("  posture:")
		for p := TeamDefend; p <= TeamRetreat; p++ {
			fmt.Fprintf(&sb, " %s=%d", p, tw.PostureTicks[p])
		}
		sb.WriteByte('\n')
		for k, pct := range tw.StatePct {
			if pct > 0.5 {
				fmt.Fprintf(&sb, "  %-19s %5.1f%%\n", StateKind(k), pct)
			}
		}
	}
	return sb.String()
}

// FormatLatest returns a concise snapshot of the most recent sample.
func (r *MatchReporter) FormatLatest() string {
	s := r.Latest()
	if s == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d ---\n", s.Tick)
	for t := Team(0); t < teamCount; t++ {
		ts := s.Teams[t]
		posture := "none"
		if ts.HasCommand {
			posture = ts.Posture.String()
		}
		fmt.Fprintf(&sb, "%-6s posture=%-7s alive=%d dead=%d injured=%d dry=%d danger=%.2f\n",
			t, posture, ts.Alive, ts.Dead, ts.Injured, ts.DryWarriors, ts.AvgDanger)
	}
	return sb.String()
}
