package game

import "testing"

// --- Invariant: state exits release flags ---

func TestInvariant_ChangeStateNilReleasesFlags(t *testing.T) {
	ts := newSim(t,
		WithSeed(42),
		WithoutInitialOrders(),
		WithAgent(TeamOrange, RoleWarrior, 10, 15),
		WithAgent(TeamOrange, RolePorter, 14, 15),
		WithAgent(TeamOrange, RoleMedic, 18, 15),
	)
	warrior, porter, medic := ts.Agent(1), ts.Agent(2), ts.Agent(3)

	warrior.ChangeState(&combatState{})
	if !warrior.engaging {
		t.Fatal("combat should set engaging")
	}
	warrior.ChangeState(nil)
	if warrior.engaging || warrior.state != nil {
		t.Fatal("leaving combat must release engaging")
	}

	warrior.ammo = 2
	porter.setTarget(warrior)
	porter.ChangeState(&deliverAmmoState{})
	if !porter.delivering {
		t.Fatal("delivery should set delivering")
	}
	porter.ChangeState(nil)
	if porter.delivering || porter.targetID != 0 || porter.moving {
		t.Fatal("leaving delivery must release delivering, target and movement")
	}

	warrior.hp = 50
	medic.ChangeState(&healState{})
	if medic.target() != warrior {
		t.Fatal("medic should target the wounded warrior")
	}
	medic.ChangeState(&coverState{})
	if medic.targetID != 0 {
		t.Fatal("replacing heal must clear the patient")
	}
	medic.resting = true
	medic.ChangeState(nil)
	if medic.resting {
		t.Fatal("leaving cover must clear resting")
	}
}

func TestInvariant_ChangeStateNilIsNotLogged(t *testing.T) {
	ts := newSim(t, WithSeed(1), WithAgent(TeamOrange, RoleWarrior, 10, 15))
	before := ts.SimLog().CountCategory("state", "change")
	ts.Agent(1).ChangeState(nil)
	if got := ts.SimLog().CountCategory("state", "change"); got != before {
		t.Fatalf("clearing a state should not log a change (%d -> %d)", before, got)
	}
}

// --- Invariant: the dead stay dead ---

func TestInvariant_DeathReleasesEverything(t *testing.T) {
	ts := newSim(t,
		WithSeed(42),
		WithAgent(TeamOrange, RoleWarrior, 10, 15),
	)
	a := ts.Agent(1)
	ts.RunTicks(5)
	a.TakeDamage(a.hp + 10)

	if a.Alive() || a.hp != 0 {
		t.Fatalf("hp should floor at 0, got %d", a.hp)
	}
	if a.state != nil || a.moving || a.engaging || a.hasPath() {
		t.Fatal("a dead agent must be inert")
	}
	if _, ok := a.OccupiedCell(); ok {
		t.Fatal("a dead agent must release its cell")
	}
	if !ts.SimLog().HasEntry("combat", "death", "") {
		t.Fatal("death should be logged")
	}

	x, y := a.Pos()
	ts.RunTicks(300)
	if nx, ny := a.Pos(); nx != x || ny != y || a.state != nil {
		t.Fatal("corpses never move or take orders")
	}
	a.Heal(50)
	if a.Alive() {
		t.Fatal("healing cannot revive the dead")
	}
}

// --- Invariant: resources stay in bounds ---

func TestInvariant_ResourceBounds(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	a := w.Spawn(TeamOrange, RoleWarrior, 5, 5)
	a.TakeDamage(30)
	a.Heal(500)
	if a.hp != w.cfg.MaxHP {
		t.Fatalf("heal should cap at max hp, got %d", a.hp)
	}
	for a.spendAmmo() {
	}
	if a.ammo != 0 {
		t.Fatalf("ammo should stop at 0, got %d", a.ammo)
	}
	a.spendGrenade()
	if a.spendGrenade() || a.grenades != 0 || a.supply != 0 {
		t.Fatal("grenades should stop at 0 and mirror into supply")
	}
	a.RefillAmmo()
	if a.ammo != a.maxAmmo || a.grenades != a.maxGrenades || a.lowAmmo {
		t.Fatal("refill should restore ammo and grenades")
	}

	p := w.Spawn(TeamOrange, RolePorter, 8, 5)
	p.consumeSupply()
	if p.consumeSupply() || p.supply != 0 {
		t.Fatal("porter supply should stop at 0")
	}
	p.RegisterAssist()
	p.RegisterAssist()
	if p.assists != w.cfg.AssistLimit {
		t.Fatalf("assists should cap at the limit, got %d", p.assists)
	}
	p.restock()
	if p.supply != p.maxSupply || !p.CanTakeAssist() {
		t.Fatal("restock should refill supply and reset assists")
	}
}

func TestInvariant_LeavingDepotRunReleasesRest(t *testing.T) {
	ts := newSim(t,
		WithSeed(42),
		WithoutInitialOrders(),
		WithAgent(TeamOrange, RoleWarrior, 10, 15),
		WithAgent(TeamOrange, RoleMedic, 10, 8),
	)
	warrior, medic := ts.Agent(1), ts.Agent(2)

	warrior.ammo = 0
	warrior.ChangeState(&goToSupplyState{})
	if warrior.StateKind() != StateGoToSupply || !warrior.moving {
		t.Fatalf("dry warrior should walk to the ammo depot, got %s", warrior.StateKind())
	}
	warrior.resting = true
	warrior.ChangeState(nil)
	if warrior.resting || warrior.moving {
		t.Fatalf("leaving the ammo run must release rest and movement, resting=%t moving=%t", warrior.resting, warrior.moving)
	}

	medic.supply = 0
	medic.ChangeState(&goToMedSupplyState{})
	if medic.StateKind() != StateGoToMedSupply {
		t.Fatalf("empty medic should walk to the med depot, got %s", medic.StateKind())
	}
	medic.resting = true
	medic.ChangeState(nil)
	if medic.resting || medic.moving {
		t.Fatalf("leaving the med run must release rest and movement, resting=%t moving=%t", medic.resting, medic.moving)
	}
}
