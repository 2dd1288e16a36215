package game

import "fmt"

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeOrangeVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeOrangeVictory:
		return "orange_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// Decided reports whether the match is over.
func (o BattleOutcome) Decided() bool { return o != OutcomeInconclusive }

type BattleOutcomeReason struct {
	Outcome         BattleOutcome
	OrangeSurvivors int
	OrangeTotal     int
	BlueSurvivors   int
	BlueTotal       int
	Description     string
}

func (r BattleOutcomeReason) String() string {
	return fmt.Sprintf("%s (orange %d/%d, blue %d/%d) %s",
		r.Outcome, r.OrangeSurvivors, r.OrangeTotal, r.BlueSurvivors, r.BlueTotal, r.Description)
}

// DetermineBattleOutcome applies the elimination rule: a side with nobody
// left alive loses, and if both are wiped out it is a draw. While both sides
// stand the result is inconclusive; the description then leans toward the
// side with clearly lighter casualties, for batch reports cut off by a tick
// limit.
func DetermineBattleOutcome(orange, blue []*Agent) BattleOutcomeReason {
	r := BattleOutcomeReason{OrangeTotal: len(orange), BlueTotal: len(blue)}
	for _, a := range orange {
		if a.Alive() {
			r.OrangeSurvivors++
		}
	}
	for _, a := range blue {
		if a.Alive() {
			r.BlueSurvivors++
		}
	}

	switch {
	case r.OrangeSurvivors == 0 && r.BlueSurvivors == 0:
		r.Outcome = OutcomeDraw
		r.Description = "mutual_annihilation"
		return r
	case r.OrangeSurvivors == 0:
		r.Outcome = OutcomeBlueVictory
		r.Description = "orange_eliminated"
		return r
	case r.BlueSurvivors == 0:
		r.Outcome = OutcomeOrangeVictory
		r.Description = "blue_eliminated"
		return r
	}

	orangeLoss := casualtyRate(r.OrangeSurvivors, r.OrangeTotal)
	blueLoss := casualtyRate(r.BlueSurvivors, r.BlueTotal)
	switch diff := blueLoss - orangeLoss; {
	case diff > 0.30 && orangeLoss < 0.50:
		r.Description = "leaning_orange_casualty_advantage"
	case diff < -0.30 && blueLoss < 0.50:
		r.Description = "leaning_blue_casualty_advantage"
	default:
		r.Description = "unresolved"
	}
	return r
}

func casualtyRate(survivors, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(total-survivors) / float64(total)
}
