package game

import (
	"fmt"
	"math"
)

// TeamState is a commander's strategic posture.
type TeamState uint8

const (
	TeamDefend TeamState = iota
	TeamAttack
	TeamRetreat
)

func (s TeamState) String() string {
	switch s {
	case TeamAttack:
		return "attack"
	case TeamRetreat:
		return "retreat"
	default:
		return "defend"
	}
}

const (
	commanderLowHealthHP  = 45
	urgentWarriorDanger   = 0.7
	urgentWarriorHP       = 35
	urgentPatientHP       = 30
	warriorHoldDanger     = 0.5
	warriorHoldHP         = 50
	medicCoverDanger      = 0.45
	slotMaxDanger         = 2.0
	safeSpotMaxDanger     = 0.75
	commanderPatientBias  = 20
	repositionRadius      = 20
	forcedRepositionRange = 30
	supportPatrolRadius   = 4.0
)

// orderKey identifies an order for debouncing: the state kind plus either
// the target agent or the target cell.
type orderKey struct {
	kind     StateKind
	targetID int
	cell     GridPos
	hasCell  bool
}

type issuedOrder struct {
	key  orderKey
	tick int
}

// Commander runs one team's strategy. It owns no soldiers; it reads the
// roster through the World and steers agents by swapping their behaviour
// states.
type Commander struct {
	team    Team
	agentID int
	world   *World

	state          TeamState
	lastPlanned    TeamState
	hasPlanned     bool
	firstEvalTick  int
	lastChangeTick int
	lastAttackTick int
	lastReposition int

	// planning blocks re-entry when a state change made during a pass
	// triggers a report back to this commander.
	planning bool

	slots      *CoverSlots
	spread     spreadBook
	reserved   map[GridPos]int
	lastSlot   map[int]GridPos
	lastOrders map[int]issuedOrder

	// Telemetry.
	StrategicChanges int
	OrdersIssued     int
	OrdersDebounced  int
}

// NewCommander binds a commander to the agent that carries it.
func NewCommander(w *World, team Team, agentID int) *Commander {
	return &Commander{
		team:           team,
		agentID:        agentID,
		world:          w,
		state:          TeamDefend,
		firstEvalTick:  neverTick,
		lastChangeTick: neverTick,
		lastAttackTick: neverTick,
		lastReposition: neverTick,
		slots:          BuildCoverSlots(w.bf, team),
		reserved:       make(map[GridPos]int),
		lastSlot:       make(map[int]GridPos),
		lastOrders:     make(map[int]issuedOrder),
	}
}

// State returns the current strategic posture.
func (c *Commander) State() TeamState { return c.state }

// Team returns the commander's side.
func (c *Commander) Team() Team { return c.team }

// Slots exposes the cover-slot catalog.
func (c *Commander) Slots() *CoverSlots { return c.slots }

func (c *Commander) agent() *Agent { return c.world.Agent(c.agentID) }

func (c *Commander) alive() bool {
	a := c.agent()
	return a != nil && a.Alive()
}

// --- Strategy ---

// Assess snapshots both teams for the doctrine predicates.
func (c *Commander) Assess() TeamAssessment {
	w := c.world
	var as TeamAssessment
	var hpSum, dangerSum float64
	for _, a := range w.roster[c.team] {
		if !a.Alive() {
			continue
		}
		as.Alive++
		hpSum += float64(a.hp)
		dangerSum += a.danger()
		if a.hp < commanderLowHealthHP {
			as.LowHealth++
		}
	}
	var enemyHP float64
	for _, e := range w.roster[c.team.Opponent()] {
		if e.Alive() {
			as.Enemies++
			enemyHP += float64(e.hp)
		}
	}
	if as.Alive > 0 {
		as.AvgHP = hpSum / float64(as.Alive)
		as.AvgDanger = dangerSum / float64(as.Alive)
	}
	if as.Enemies > 0 {
		as.EnemyAvgHP = enemyHP / float64(as.Enemies)
	}
	if me := c.agent(); me != nil && me.Alive() {
		as.CommanderHP = me.hp
		as.CommanderDanger = me.danger()
	}
	as.RetreatQuorum = max(1, as.Alive/2)
	if c.firstEvalTick != neverTick {
		as.BattleTicks = w.tick - c.firstEvalTick
	}
	return as
}

func (c *Commander) predicate(name string, eval func(TeamAssessment) (bool, error), as TeamAssessment) bool {
	ok, err := eval(as)
	if err != nil {
		if me := c.agent(); me != nil {
			c.world.logEvent(me, "diag", "doctrine_"+name, err.Error(), 0)
		}
		return false
	}
	return ok
}

// EvaluateTeamStatus picks the team's posture. A forced retreat applies at
// once; any other change waits out the dwell time. Attacks are withheld
// during the opening phase and between cooldowns, except for periodic
// probes once the opening is over.
func (c *Commander) EvaluateTeamStatus() TeamState {
	w := c.world
	cfg := &w.cfg
	now := w.tick
	if c.firstEvalTick == neverTick {
		c.firstEvalTick = now
	}
	as := c.Assess()

	opening := as.BattleTicks < cfg.OpeningPhaseTicks
	sinceAttack := now - c.lastAttackTick
	cooldownReady := c.lastAttackTick == neverTick || sinceAttack > cfg.AttackCooldownTicks
	timeForProbe := !opening && cooldownReady && sinceAttack > cfg.ProbeCooldownTicks

	forceRetreat := c.predicate("force_retreat", w.doctrine.ForceRetreat, as)
	advantage := c.predicate("advantage", w.doctrine.Advantage, as)

	desired := TeamDefend
	switch {
	case forceRetreat:
		desired = TeamRetreat
	case advantage && cooldownReady:
		desired = TeamAttack
	case timeForProbe:
		desired = TeamAttack
	}
	if desired == TeamAttack && opening {
		desired = TeamDefend
	}

	if desired != c.state && (now-c.lastChangeTick > cfg.DwellTicks || forceRetreat) {
		if me := c.agent(); me != nil {
			w.logEvent(me, "strategy", "team_state", fmt.Sprintf("%s -> %s (adv=%t retreat=%t probe=%t)",
				c.state, desired, advantage, forceRetreat, timeForProbe), as.AvgDanger)
		}
		c.state = desired
		c.lastChangeTick = now
		c.StrategicChanges++
		switch desired {
		case TeamAttack:
			c.lastAttackTick = now
		case TeamRetreat:
			c.lastAttackTick = neverTick
		}
	}
	return c.state
}

// --- Planning ---

// PlanAndAssignOrders reviews every living teammate and hands new orders to
// those that have none, face an urgent need, sit idle, or whose orders were
// made for a different team posture. With the commander dead, warriors
// without a state fall back to fighting on their own.
func (c *Commander) PlanAndAssignOrders() {
	if c.planning {
		return
	}
	c.planning = true
	defer func() { c.planning = false }()

	w := c.world
	cfg := &w.cfg
	me := c.agent()
	if me == nil || !me.Alive() {
		for _, a := range w.roster[c.team] {
			if a.Alive() && a.role == RoleWarrior && a.state == nil {
				a.ChangeState(&combatState{})
			}
		}
		return
	}

	c.MoveToSafePosition()
	teamState := c.EvaluateTeamStatus()
	c.spread.prune(func(id int) bool {
		a := w.Agent(id)
		return a != nil && a.Alive()
	})
	clear(c.reserved)

	var lowAmmo, critical []*Agent
	for _, a := range w.roster[c.team] {
		if !a.Alive() {
			continue
		}
		if a.role == RoleWarrior && (a.ammo <= cfg.LowAmmoThreshold || a.grenades == 0) {
			lowAmmo = append(lowAmmo, a)
		}
		if a.hp < cfg.InjuryThreshold {
			critical = append(critical, a)
		}
	}
	postureChanged := !c.hasPlanned || teamState != c.lastPlanned

	for _, a := range w.roster[c.team] {
		if a == me || !a.Alive() {
			continue
		}
		forcedRetreat := a.role != RoleWarrior && a.danger() > cfg.NonWarriorRetreatDanger
		if !c.shouldReassign(a, forcedRetreat, postureChanged, lowAmmo, critical) && !forcedRetreat {
			continue
		}
		switch a.role {
		case RoleWarrior:
			c.orderWarrior(a, teamState)
		case RoleMedic:
			c.orderMedic(a, forcedRetreat, critical)
		case RolePorter:
			c.orderPorter(a, forcedRetreat)
		}
	}
	c.lastPlanned = teamState
	c.hasPlanned = true
}

func (c *Commander) shouldReassign(a *Agent, forcedRetreat, postureChanged bool, lowAmmo, critical []*Agent) bool {
	if a.state == nil {
		return true
	}
	cfg := a.cfg()
	urgent := false
	switch a.role {
	case RoleWarrior:
		urgent = a.danger() > urgentWarriorDanger || a.hp < urgentWarriorHP
	case RoleMedic:
		for _, o := range c.world.roster[c.team] {
			if o != a && o.Alive() && o.hp < urgentPatientHP {
				urgent = true
				break
			}
		}
	case RolePorter:
		for _, o := range lowAmmo {
			if o.ammo <= cfg.LowAmmoThreshold {
				urgent = true
				break
			}
		}
	}
	reassign := urgent || !a.isBusy()

	switch a.StateKind() {
	case StateHeal:
		if len(critical) == 0 {
			reassign = true
		}
	case StateDeliverAmmo:
		if a.target() != nil && a.delivering && !forcedRetreat {
			reassign = false
		} else if len(lowAmmo) == 0 {
			reassign = true
		}
	}
	return reassign || postureChanged
}

// issue hands next to a, unless the same order went to a within the
// debounce window and a is still running it.
func (c *Commander) issue(a *Agent, next BehaviorState, targetID int, cell GridPos, hasCell bool) bool {
	w := c.world
	key := orderKey{kind: next.Kind(), targetID: targetID, cell: cell, hasCell: hasCell}
	if last, ok := c.lastOrders[a.id]; ok && last.key == key &&
		w.tick-last.tick < w.cfg.OrderDebounceTicks && a.StateKind() == key.kind {
		c.OrdersDebounced++
		return false
	}

	a.ChangeState(nil)
	if hasCell {
		a.setOrderTarget(cell)
	} else {
		a.clearOrderTarget()
	}
	if targetID != 0 {
		a.targetID = targetID
	}
	c.lastOrders[a.id] = issuedOrder{key: key, tick: w.tick}
	c.OrdersIssued++
	if me := c.agent(); me != nil {
		detail := a.label
		if hasCell {
			detail += fmt.Sprintf(" @(%d,%d)", cell.X, cell.Y)
		}
		if t := w.Agent(targetID); t != nil {
			detail += " -> " + t.label
		}
		w.logVerbose(me, "order", key.kind.String(), detail)
	}
	a.ChangeState(next)
	return true
}

func (c *Commander) orderWarrior(a *Agent, ts TeamState) {
	cfg := a.cfg()
	if a.hp < cfg.RetreatHP {
		c.issue(a, &coverState{}, 0, GridPos{}, false)
		return
	}
	base, ok := c.pickSlot(a, bandFor(ts))
	if !ok {
		base = c.FindSafePositionForWarrior(a)
	}
	t := c.spread.spreadTarget(c.world.grid, base, a.id)
	c.reserved[t] = a.id

	switch {
	case a.ammo == 0 && a.supply == 0:
		c.issue(a, &goToSupplyState{}, 0, GridPos{}, false)
	case a.danger() > warriorHoldDanger && a.hp < warriorHoldHP:
		c.issue(a, &coverState{}, 0, t, true)
	case ts == TeamAttack:
		c.issue(a, &combatState{}, 0, t, true)
	default:
		c.issue(a, &coverState{}, 0, t, true)
	}
}

// pickSlot samples the band's cover slots up to the evaluation cap and
// returns the least dangerous one under slotMaxDanger. A warrior keeps its
// previous slot while that slot is still in the band and safe enough.
func (c *Commander) pickSlot(a *Agent, b StrategicBand) (GridPos, bool) {
	w := c.world
	g := w.grid
	band := c.slots.Band(b)
	if len(band) == 0 {
		return GridPos{}, false
	}
	usable := func(p GridPos) bool {
		_, taken := c.reserved[p]
		return !taken && !g.IsOccupied(p.X, p.Y, a.id)
	}

	if p, ok := c.lastSlot[a.id]; ok && w.bf.BandAt(c.team, p.X) == b && usable(p) &&
		w.influence.Danger(c.team, p.X, p.Y) < slotMaxDanger {
		return p, true
	}

	limit := w.cfg.CoverSlotEvalCap
	best := slotMaxDanger
	var pick GridPos
	found := false
	evaluated := 0
	for tries := 0; tries < 4*limit && evaluated < limit; tries++ {
		p := band[w.rng.Intn(len(band))]
		if !usable(p) {
			continue
		}
		evaluated++
		if d := w.influence.Danger(c.team, p.X, p.Y); d < best {
			best = d
			pick = p
			found = true
		}
	}
	if found {
		c.lastSlot[a.id] = pick
	}
	return pick, found
}

// enemyFocus is the mean position of living enemies, or the team's default
// objective when none are left.
func (c *Commander) enemyFocus() GridPos {
	var sx, sy float64
	n := 0
	for _, e := range c.world.roster[c.team.Opponent()] {
		if e.Alive() {
			sx += e.x
			sy += e.y
			n++
		}
	}
	if n == 0 {
		return c.world.bf.DefaultTargets[c.team]
	}
	return GridPos{int(math.Round(sx / float64(n))), int(math.Round(sy / float64(n)))}
}

// FindSafePositionForWarrior scores every walkable, unreserved, free cell
// around the enemy focus by danger first, then distance to the focus, then
// distance to the warrior. It returns the focus itself when nothing
// qualifies.
func (c *Commander) FindSafePositionForWarrior(a *Agent) GridPos {
	w := c.world
	g := w.grid
	focus := c.enemyFocus()
	r := w.cfg.SafeSpotSearchRadius
	best := math.Inf(1)
	pick := focus
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			x, y := focus.X+dx, focus.Y+dy
			if !g.IsWalkable(x, y) || g.IsOccupied(x, y, a.id) {
				continue
			}
			if _, taken := c.reserved[GridPos{x, y}]; taken {
				continue
			}
			sec := w.influence.Danger(c.team, x, y)
			if sec > safeSpotMaxDanger {
				continue
			}
			score := sec*100 + math.Hypot(float64(dx), float64(dy))*0.5 + math.Sqrt(a.distSq(float64(x), float64(y)))*0.1
			if score < best {
				best = score
				pick = GridPos{x, y}
			}
		}
	}
	return pick
}

func (c *Commander) orderMedic(a *Agent, forcedRetreat bool, critical []*Agent) {
	w := c.world
	none := GridPos{}
	if forcedRetreat && len(critical) == 0 {
		c.issue(a, &coverState{}, 0, none, false)
		return
	}
	if !a.CanTakeAssist() {
		c.issue(a, newReturnToWarehouse(w.bf.Depots[c.team].Med, supportPatrolRadius, none, false), 0, none, false)
		return
	}
	if len(critical) == 0 {
		switch {
		case a.supply == 0:
			c.issue(a, &goToMedSupplyState{}, 0, none, false)
		case a.danger() > medicCoverDanger:
			c.issue(a, &coverState{}, 0, none, false)
		default:
			a.ChangeState(nil)
			w.idleOrder(a)
		}
		return
	}
	if p := c.FindMostCriticalInjuredAlly(a); p != nil {
		c.issue(a, &healState{}, p.id, none, false)
		return
	}
	c.issue(a, &goToMedSupplyState{}, 0, none, false)
}

// FindMostCriticalInjuredAlly returns the hurt teammate with the lowest hp,
// never exclude (the medic asking). The commander counts as 20 hp worse off
// than it is.
func (c *Commander) FindMostCriticalInjuredAlly(exclude *Agent) *Agent {
	var best *Agent
	bestScore := math.MaxInt
	for _, o := range c.world.roster[c.team] {
		if o == exclude || !o.Alive() || o.hp >= c.world.cfg.MaxHP {
			continue
		}
		score := o.hp
		if o.role == RoleCommander {
			score -= commanderPatientBias
		}
		if score < bestScore {
			best, bestScore = o, score
		}
	}
	return best
}

func (c *Commander) orderPorter(a *Agent, forcedRetreat bool) {
	w := c.world
	none := GridPos{}
	if forcedRetreat {
		c.issue(a, &coverState{}, 0, none, false)
		return
	}
	if !a.CanTakeAssist() {
		c.issue(a, newReturnToWarehouse(w.bf.Depots[c.team].Ammo, supportPatrolRadius, none, false), 0, none, false)
		return
	}
	if a.supply == 0 {
		if a.StateKind() != StateGoToSupply {
			c.issue(a, &goToSupplyState{}, 0, none, false)
		}
		return
	}
	if starved := c.FindMostAmmoStarvedWarrior(); starved != nil && !c.HasActiveSupplyFor(starved, a) {
		if c.AssignDeliverAmmo(a, starved) {
			return
		}
	}
	if a.StateKind() != StateGoToSupply {
		c.issue(a, &goToSupplyState{}, 0, none, false)
	}
}

// FindMostAmmoStarvedWarrior scores warriors that need resupply by ammo and
// grenades left, with extra weight for an empty or near-empty grenade belt.
func (c *Commander) FindMostAmmoStarvedWarrior() *Agent {
	var best *Agent
	bestScore := math.MaxInt
	for _, o := range c.world.roster[c.team] {
		if !o.Alive() || !o.needsResupply() {
			continue
		}
		score := o.ammo*10 + o.grenades*3
		if o.grenades <= 1 {
			score -= 20
		}
		if o.supply <= 1 {
			score -= 10
		}
		if score < bestScore {
			best, bestScore = o, score
		}
	}
	return best
}

// HasActiveSupplyFor reports whether a porter other than except is already
// on a delivery run to target.
func (c *Commander) HasActiveSupplyFor(target, except *Agent) bool {
	for _, p := range c.world.roster[c.team] {
		if p == except || !p.Alive() || p.role != RolePorter {
			continue
		}
		if p.StateKind() == StateDeliverAmmo && p.targetID == target.id {
			return true
		}
	}
	return false
}

// AssignDeliverAmmo sends porter p to target.
func (c *Commander) AssignDeliverAmmo(p, target *Agent) bool {
	if !p.CanTakeAssist() {
		return false
	}
	if p.targetID != target.id && c.HasActiveSupplyFor(target, p) {
		return false
	}
	return c.issue(p, &deliverAmmoState{}, target.id, GridPos{}, false)
}

// MoveToSafePosition walks the commander to nearby cover when its cell gets
// dangerous, or every reposition interval while it stands still.
func (c *Commander) MoveToSafePosition() {
	me := c.agent()
	if me == nil || !me.Alive() {
		return
	}
	w := c.world
	cfg := &w.cfg
	threshold := cfg.RepositionDanger
	if c.state == TeamAttack {
		threshold = cfg.AttackRepositionDanger
	}
	force := me.danger() > threshold
	periodic := !me.moving && w.tick-c.lastReposition > cfg.RepositionIntervalTicks
	if !force && !periodic {
		return
	}
	radius := repositionRadius
	if force {
		radius = forcedRepositionRange
	}
	start := me.startCell()
	spot, ok := w.planner.FindNearestCover(start.X, start.Y, radius, me.id, c.team)
	if !ok {
		return
	}
	c.lastReposition = w.tick
	if spot == start {
		return
	}
	path, ok := w.planner.FindSafePath(start.X, start.Y, spot.X, spot.Y, me.id, c.team, 0.8)
	if !ok {
		return
	}
	me.SetPath(path)
	w.logVerbose(me, "strategy", "reposition", fmt.Sprintf("to (%d,%d) force=%t", spot.X, spot.Y, force))
}

// ReceiveReport reacts to a report from a teammate: low ammo dispatches the
// first free porter, an injury the first free medic (any medic when the
// sender is badly hurt or not a warrior). Every report ends in a planning
// pass.
func (c *Commander) ReceiveReport(r Report) {
	w := c.world
	sender := w.Agent(r.SenderID)
	if sender == nil || !sender.Alive() || !c.alive() {
		return
	}
	none := GridPos{}
	switch r.Kind {
	case ReportLowAmmo:
		for _, p := range w.roster[c.team] {
			if p.Alive() && p.role == RolePorter && p.StateKind() != StateDeliverAmmo {
				c.issue(p, &deliverAmmoState{}, sender.id, none, false)
				break
			}
		}
	case ReportInjured:
		anyMedic := sender.hp <= urgentPatientHP || sender.role != RoleWarrior
		for _, m := range w.roster[c.team] {
			if m.Alive() && m.role == RoleMedic && (anyMedic || m.StateKind() != StateHeal) {
				c.issue(m, &healState{}, sender.id, none, false)
				break
			}
		}
	}
	c.PlanAndAssignOrders()
}
