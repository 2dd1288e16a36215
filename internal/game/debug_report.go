package game

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// debugRadioLines is how much radio traffic per team the report includes.
const debugRadioLines = 8

// DebugReport renders the last lastTicks of the match as plain text: run
// header, both commanders, recent radio traffic, a roster table and, when an
// agent is selected, its state stages and every event it logged.
func DebugReport(w *World, selected *Agent, lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := w.tick
	fromTick := max(0, toTick-lastTicks+1)

	var b strings.Builder
	fmt.Fprintf(&b, "--- Squad-Command debug report ---\n")
	fmt.Fprintf(&b, "run=%s seed=%d tick_range=[%d..%d] ticks=%d\n",
		w.RunID, w.cfg.Seed, fromTick, toTick, toTick-fromTick+1)
	fmt.Fprintf(&b, "outcome=%s verbose_log=%t\n\n", w.Outcome(), w.SimLog.Verbose())

	for t := Team(0); t < teamCount; t++ {
		c := w.commanders[t]
		if c == nil {
			fmt.Fprintf(&b, "== %s: no commander ==\n", t)
		} else {
			fmt.Fprintf(&b, "== %s: state=%s changes=%d orders=%d debounced=%d ==\n",
				t, c.State(), c.StrategicChanges, c.OrdersIssued, c.OrdersDebounced)
		}
		for _, r := range w.radio[t].Recent(debugRadioLines) {
			fmt.Fprintf(&b, "  radio T=%d %s %s %s\n", r.Tick, r.SenderLabel, r.Kind, r.Summary)
		}
	}
	b.WriteByte('\n')

	b.WriteString("roster:\n")
	for _, a := range w.agents {
		tgt := "-"
		if t := a.target(); t != nil {
			tgt = t.label
		}
		fmt.Fprintf(&b, "  %-4s hp=%3d ammo=%2d gren=%d supply=%d state=%-19s pos=(%5.1f,%5.1f) moving=%-5t resting=%-5t target=%s\n",
			a.label, a.hp, a.ammo, a.grenades, a.supply, a.StateKind(), a.x, a.y, a.moving, a.resting, tgt)
	}
	b.WriteByte('\n')

	if selected == nil {
		b.WriteString("recent events:\n")
		b.WriteString(w.SimLog.FormatRange(fromTick, toTick))
		return b.String()
	}

	fmt.Fprintf(&b, "== SELECTED (%s) ==\n", selected.label)
	var events []SimLogEntry
	for _, e := range w.SimLog.FilterAgent(selected.label) {
		if e.Tick >= fromTick && e.Tick <= toTick {
			events = append(events, e)
		}
	}
	if len(events) == 0 {
		b.WriteString("(no events recorded in range)\n")
		return b.String()
	}

	b.WriteString("stages:\n")
	for i, st := range buildStages(events, fromTick, toTick) {
		fmt.Fprintf(&b, "  %02d) T=%d..%d (%dt) %s\n", i+1, st.startTick, st.endTick, st.endTick-st.startTick+1, st.state)
	}
	b.WriteString("events:\n")
	for _, e := range events {
		b.WriteString("  ")
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

type reportStage struct {
	startTick int
	endTick   int
	state     string
}

// buildStages splits [fromTick, toTick] at every state change in events.
func buildStages(events []SimLogEntry, fromTick, toTick int) []reportStage {
	stages := make([]reportStage, 0, 8)
	cur := reportStage{startTick: fromTick, state: "(before range)"}
	for _, e := range events {
		if e.Category != "state" || e.Key != "change" {
			continue
		}
		next := e.Value
		if _, after, ok := strings.Cut(e.Value, " -> "); ok {
			next = after
		}
		if e.Tick > cur.startTick {
			cur.endTick = e.Tick - 1
			stages = append(stages, cur)
		}
		cur = reportStage{startTick: e.Tick, state: next}
	}
	cur.endTick = toTick
	return append(stages, cur)
}

// CopyDebugReport puts DebugReport on the system clipboard.
func CopyDebugReport(w *World, selected *Agent, lastTicks int) error {
	if err := clipboard.WriteAll(DebugReport(w, selected, lastTicks)); err != nil {
		return fmt.Errorf("copy debug report: %w", err)
	}
	return nil
}
