package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth  = 320
	logMaxEntries  = 60
	logLineHeight  = 13
	logHighlighted = 3
)

// ThoughtEntry is one line of the field log panel.
type ThoughtEntry struct {
	Tick     int
	Label    string // "OW2", "BM9"
	Team     Team
	Category string // SimLog category, "state" for transitions
	Message  string
}

// ThoughtLog keeps the most recent logMaxEntries field-log lines. The World
// feeds it every non-verbose SimLog event.
type ThoughtLog struct {
	entries [logMaxEntries]ThoughtEntry
	next    int
	n       int
}

// NewThoughtLog returns an empty field log.
func NewThoughtLog() *ThoughtLog { return &ThoughtLog{} }

// Add records one event, evicting the oldest once full.
func (tl *ThoughtLog) Add(tick int, label string, team Team, category, msg string) {
	tl.entries[tl.next] = ThoughtEntry{Tick: tick, Label: label, Team: team, Category: category, Message: msg}
	tl.next = (tl.next + 1) % logMaxEntries
	tl.n = min(tl.n+1, logMaxEntries)
}

// Len is the number of retained entries.
func (tl *ThoughtLog) Len() int { return tl.n }

// Recent returns up to limit entries, oldest first. limit <= 0 means all.
func (tl *ThoughtLog) Recent(limit int) []ThoughtEntry {
	k := tl.n
	if limit > 0 && limit < k {
		k = limit
	}
	out := make([]ThoughtEntry, k)
	for i := range out {
		out[i] = tl.entries[(tl.next-k+i+logMaxEntries)%logMaxEntries]
	}
	return out
}

// categoryTint colours the message text so combat and command traffic stand
// out from routine movement.
func categoryTint(category string) color.Color {
	switch category {
	case "combat":
		return color.RGBA{R: 255, G: 120, B: 110, A: 255}
	case "strategy", "order":
		return color.RGBA{R: 120, G: 210, B: 255, A: 255}
	case "radio":
		return color.RGBA{R: 250, G: 220, B: 110, A: 255}
	case "diag":
		return color.RGBA{R: 200, G: 120, B: 255, A: 255}
	default:
		return color.RGBA{R: 200, G: 210, B: 200, A: 255}
	}
}

// Draw renders the field log as a side panel starting at panelX, newest
// entry at the bottom.
func (tl *ThoughtLog) Draw(screen *ebiten.Image, panelX int, panelH int) {
	px, ph := float32(panelX), float32(panelH)
	vector.FillRect(screen, px, 0, logPanelWidth, ph, color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, px, 0, px, ph, 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)
	vector.FillRect(screen, px, 0, logPanelWidth, 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	drawLabel(screen, "FIELD LOG", float64(panelX+8), 2, color.White)

	visible := tl.Recent((panelH - 24) / logLineHeight)
	y := 20
	for i, e := range visible {
		if i >= len(visible)-logHighlighted {
			vector.FillRect(screen, px+2, float32(y), logPanelWidth-4, logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 5, teamTint(e.Team, 255), false)
		line := fmt.Sprintf("%5d %-4s %s", e.Tick, e.Label, e.Message)
		drawLabel(screen, line, float64(panelX+12), float64(y), categoryTint(e.Category))
		y += logLineHeight
	}
}
