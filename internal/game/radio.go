package game

import (
	"fmt"
	"math"
)

// radioHistory is how many reports the HUD keeps per team.
const radioHistory = 16

// ReportKind categorises traffic from an agent to its commander.
type ReportKind uint8

const (
	ReportEnemySpotted ReportKind = iota
	ReportLowAmmo
	ReportInjured
	reportKindCount
)

func (k ReportKind) String() string {
	switch k {
	case ReportEnemySpotted:
		return "enemy_spotted"
	case ReportLowAmmo:
		return "low_ammo"
	case ReportInjured:
		return "injured"
	default:
		return "unknown"
	}
}

// Report is one message on a team net. Reports are delivered the tick they
// are sent; the commander acts on them before the sender's Transition
// returns.
type Report struct {
	Tick        int
	Kind        ReportKind
	SenderID    int
	SenderLabel string
	Team        Team
	Summary     string

	// Position of the spotted enemy, or of the sender otherwise.
	X, Y float64
}

// RadioNet keeps the recent traffic of one team for the HUD and debug
// report.
type RadioNet struct {
	lines []Report
	sent  [reportKindCount]int
}

func (rn *RadioNet) push(r Report) {
	rn.sent[r.Kind]++
	rn.lines = append(rn.lines, r)
	if over := len(rn.lines) - radioHistory; over > 0 {
		rn.lines = append(rn.lines[:0], rn.lines[over:]...)
	}
}

// Recent returns up to n of the latest reports, oldest first.
func (rn *RadioNet) Recent(n int) []Report {
	if n >= len(rn.lines) {
		return rn.lines
	}
	return rn.lines[len(rn.lines)-n:]
}

// Sent returns how many reports of kind went out on the net.
func (rn *RadioNet) Sent(kind ReportKind) int { return rn.sent[kind] }

func (a *Agent) reportCooldown(kind ReportKind) int {
	if kind == ReportEnemySpotted {
		return a.cfg().EnemyReportCooldownTicks
	}
	return a.cfg().StatusReportCooldownTicks
}

// transmit sends a report to the team commander, subject to the per-kind
// cooldown. It returns false when nothing was sent.
func (a *Agent) transmit(kind ReportKind, summary string, x, y float64) bool {
	if !a.Alive() {
		return false
	}
	if a.since(a.lastReportTick[kind]) < a.reportCooldown(kind) {
		return false
	}
	w := a.world
	cmd := w.commanders[a.team]
	if cmd == nil {
		return false
	}
	a.lastReportTick[kind] = a.now()
	r := Report{
		Tick:        a.now(),
		Kind:        kind,
		SenderID:    a.id,
		SenderLabel: a.label,
		Team:        a.team,
		Summary:     summary,
		X:           x,
		Y:           y,
	}
	w.radio[a.team].push(r)
	w.logEvent(a, "radio", kind.String(), summary, 0)
	cmd.ReceiveReport(r)
	return true
}

// ReportEnemySpotted tells the commander where e was seen.
func (a *Agent) ReportEnemySpotted(e *Agent) bool {
	if e == nil || !e.Alive() {
		return false
	}
	d := math.Sqrt(a.distSqTo(e))
	return a.transmit(ReportEnemySpotted, fmt.Sprintf("CONTACT %s %.0f", e.label, d), e.x, e.y)
}

// ReportLowAmmo fires when the agent first drops to the low-ammo threshold,
// and again while it is completely dry.
func (a *Agent) ReportLowAmmo() bool {
	if a.ammo > a.cfg().LowAmmoThreshold {
		return false
	}
	wasLow := a.lowAmmo
	a.lowAmmo = true
	if wasLow && a.ammo > 0 {
		return false
	}
	return a.transmit(ReportLowAmmo, fmt.Sprintf("AMMO %d/%d", a.ammo, a.maxAmmo), a.x, a.y)
}

// ReportInjury reports wounds below the injury threshold.
func (a *Agent) ReportInjury() bool {
	if !a.Alive() || a.hp >= a.cfg().InjuryThreshold {
		return false
	}
	return a.transmit(ReportInjured, fmt.Sprintf("HIT hp:%d", a.hp), a.x, a.y)
}
