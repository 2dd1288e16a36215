package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded simulation event.
type SimLogEntry struct {
	Tick     int
	Agent    string  // label e.g. "OW2", "BC6", or "--" for global events
	Team     string  // "orange", "blue", or "--"
	Category string  // state, strategy, order, radio, combat, cover, heal, supply, warehouse, move, diag
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=0420] OW2  state     change           combat -> seek_cover
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%04d] %-4s %-9s %-16s %s",
		e.Tick, e.Agent, e.Category, e.Key, e.Value)
}

// SimLog collects structured events for tests, the headless reporter and
// the debug report. Unlike ThoughtLog (UI ring-buffer), SimLog is unbounded
// and machine-readable.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, chatty entries such as
// replans, yields and individual shots are recorded as well.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Add records a new entry.
func (sl *SimLog) Add(tick int, agent, team, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Agent:    agent,
		Team:     team,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, agent, team, category, key, value string, numVal float64) {
	if !sl.verbose {
		return
	}
	sl.Add(tick, agent, team, category, key, value, numVal)
}

// Verbose reports whether chatty entries are kept.
func (sl *SimLog) Verbose() bool { return sl.verbose }

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	return sl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterAgent returns entries for a specific agent label.
func (sl *SimLog) FilterAgent(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Agent == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range sl.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable snapshot: state distribution and
// survivors per team, each commander's posture, and who is holding what.
func (sl *SimLog) Summary(tick int, agents []*Agent, commanders []*Commander) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%04d ---\n", tick)

	for _, team := range []Team{TeamOrange, TeamBlue} {
		counts := map[StateKind]int{}
		alive, total := 0, 0
		for _, a := range agents {
			if a.team != team {
				continue
			}
			total++
			if a.Alive() {
				alive++
				counts[a.StateKind()]++
			}
		}
		fmt.Fprintf(&sb, "%s alive=%d/%d states: ", team, alive, total)
		for k := StateNone; k <= StateReturnToWarehouse; k++ {
			if n := counts[k]; n > 0 {
				fmt.Fprintf(&sb, "%s=%d  ", k, n)
			}
		}
		sb.WriteByte('\n')
	}

	for _, c := range commanders {
		if c == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s commander: %s  changes=%d orders=%d debounced=%d\n",
			c.team, c.state, c.StrategicChanges, c.OrdersIssued, c.OrdersDebounced)
	}

	for _, a := range agents {
		if !a.Alive() {
			continue
		}
		fmt.Fprintf(&sb, "%-4s %-19s hp=%3d ammo=%2d gren=%d supply=%d (%.1f,%.1f)\n",
			a.label, a.StateKind(), a.hp, a.ammo, a.grenades, a.supply, a.x, a.y)
	}
	return sb.String()
}
