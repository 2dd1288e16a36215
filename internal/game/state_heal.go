package game

import (
	"fmt"
	"math"
)

const (
	healRadius        = 4.0
	healStallWindow   = 30
	medicReturnPatrol = 4.0
)

// healState sends a medic to the most urgent injured ally, treats it after
// a short delay and then heads back to the medical depot.
type healState struct {
	patientID int
	treating  bool
	treatFrom int
	watch     progressWatch
}

func (s *healState) Kind() StateKind { return StateHeal }

// healPriority ranks a patient: lower is more urgent. Warriors come first,
// then the commander, porters and medics; anyone at 35 hp or less jumps the
// queue.
func healPriority(p *Agent) int {
	bias := 0
	switch p.role {
	case RoleCommander:
		bias = 5
	case RolePorter:
		bias = 10
	case RoleMedic:
		bias = 15
	}
	if p.hp <= 35 {
		bias -= 15
	}
	return p.hp + bias
}

// findInjuredAlly returns the living teammate under the injury threshold
// with the best heal priority, nearest on ties.
func (a *Agent) findInjuredAlly() *Agent {
	var best *Agent
	bestScore, bestD := math.MaxInt, math.Inf(1)
	for _, o := range a.world.roster[a.team] {
		if o == a || !o.Alive() || o.hp >= a.cfg().InjuryThreshold {
			continue
		}
		score := healPriority(o)
		d := a.distSqTo(o)
		if score < bestScore || (score == bestScore && d < bestD) {
			best, bestScore, bestD = o, score, d
		}
	}
	return best
}

func (s *healState) OnEnter(a *Agent) {
	a.resting = false
	s.treating = false
	s.watch.reset(a.now(), healStallWindow)

	if a.supply <= 0 {
		a.world.logEvent(a, "heal", "no_supply", "out of medkits", 0)
		a.ChangeState(&goToMedSupplyState{})
		return
	}

	patient := a.target()
	if patient != nil && (!patient.Alive() || patient.hp >= a.cfg().MaxHP) {
		patient = nil
	}
	if patient == nil {
		patient = a.findInjuredAlly()
	}
	if patient == nil {
		a.world.logVerbose(a, "heal", "no_patient", "nobody to treat")
		a.ChangeState(&goToMedSupplyState{})
		return
	}
	s.setPatient(a, patient)
	if !s.routeTo(a, patient) {
		a.world.logEvent(a, "heal", "unreachable", fmt.Sprintf("cannot reach %s", patient.label), 0)
		a.ChangeState(&coverState{})
	}
}

func (s *healState) setPatient(a *Agent, p *Agent) {
	s.patientID = p.id
	a.setTarget(p)
}

func (s *healState) routeTo(a *Agent, p *Agent) bool {
	goal := GridPos{int(math.Round(p.x)), int(math.Round(p.y))}
	path, ok := a.planTo(goal, 0.6, 0.3)
	if !ok {
		return false
	}
	a.SetPath(path)
	return true
}

// retarget picks a new patient or gives up and restocks.
func (s *healState) retarget(a *Agent) {
	if next := a.findInjuredAlly(); next != nil && s.routeTo(a, next) {
		s.setPatient(a, next)
		s.treating = false
		return
	}
	a.ChangeState(&goToMedSupplyState{})
}

func (s *healState) Transition(a *Agent) {
	w := a.world
	cfg := a.cfg()
	patient := w.Agent(s.patientID)
	if patient == nil || !patient.Alive() {
		w.logVerbose(a, "heal", "patient_lost", "retargeting")
		s.retarget(a)
		return
	}

	dist := math.Sqrt(a.distSqTo(patient))
	if dist > healRadius {
		s.treating = false
		if !a.moving {
			if !s.routeTo(a, patient) {
				a.ChangeState(&coverState{})
			}
			return
		}
		if s.watch.stalled(a.now(), dist) {
			w.logVerbose(a, "heal", "stalled", fmt.Sprintf("at %.1f, replanning", dist))
			if !s.routeTo(a, patient) {
				a.ChangeState(&coverState{})
			}
		}
		return
	}

	if a.moving || a.hasPath() {
		a.ClearPath()
	}
	if patient.hp >= cfg.MaxHP {
		w.logVerbose(a, "heal", "patient_healthy", patient.label)
		s.retarget(a)
		return
	}
	if !s.treating {
		s.treating = true
		s.treatFrom = a.now()
		w.logVerbose(a, "heal", "treating", patient.label)
		return
	}
	if a.since(s.treatFrom) < cfg.HealDelayTicks {
		return
	}

	patient.Heal(cfg.MaxHP)
	a.consumeSupply()
	a.RegisterAssist()
	a.stats.Heals++
	w.logEvent(a, "heal", "healed", fmt.Sprintf("%s to %d hp", patient.label, patient.hp), float64(patient.hp))
	if !a.CanTakeAssist() {
		w.logVerbose(a, "heal", "assist_limit", fmt.Sprintf("%d/%d", a.assists, cfg.AssistLimit))
	}
	if patient.role == RoleWarrior {
		patient.ChangeState(&combatState{})
	}
	if a.state != s {
		return
	}

	depot := w.bf.Depots[a.team].Med
	a.ChangeState(newReturnToWarehouse(depot, medicReturnPatrol, GridPos{int(patient.x), int(patient.y)}, true))
}

func (s *healState) OnExit(a *Agent) {
	s.treating = false
	s.patientID = 0
	a.moving = false
	a.setTarget(nil)
}
