package game

import (
	"strings"
	"testing"
)

func newRadioSim(t *testing.T) (*TestSim, *Agent, *Agent, *Agent) {
	t.Helper()
	ts := newSim(t,
		WithSeed(42),
		WithoutInitialOrders(),
		WithAgent(TeamOrange, RoleCommander, 6, 6),
		WithAgent(TeamOrange, RoleWarrior, 20, 15),
		WithAgent(TeamOrange, RoleMedic, 10, 20),
	)
	return ts, ts.Agent(1), ts.Agent(2), ts.Agent(3)
}

func TestReportLowAmmo_OncePerDropThenWhenDry(t *testing.T) {
	ts, _, warrior, _ := newRadioSim(t)
	w := ts.World
	net := w.Radio(TeamOrange)

	warrior.ammo = 6
	if warrior.ReportLowAmmo() {
		t.Fatal("above the threshold nothing is reported")
	}
	warrior.ammo = 5
	warrior.lowAmmo = false
	if !warrior.ReportLowAmmo() {
		t.Fatal("first drop to the threshold should report")
	}
	if net.Sent(ReportLowAmmo) != 1 {
		t.Fatalf("sent = %d, want 1", net.Sent(ReportLowAmmo))
	}
	if warrior.ReportLowAmmo() {
		t.Fatal("already-low warrior with ammo left must not report again")
	}

	warrior.ammo = 0
	if warrior.ReportLowAmmo() {
		t.Fatal("dry report must still respect the status cooldown")
	}
	w.tick += w.cfg.StatusReportCooldownTicks
	if !warrior.ReportLowAmmo() {
		t.Fatal("a dry warrior reports again once the cooldown expires")
	}
	if got := net.Recent(10); len(got) != 2 || got[1].Kind != ReportLowAmmo || !strings.HasPrefix(got[1].Summary, "AMMO 0/") {
		t.Fatalf("unexpected radio history: %+v", got)
	}
	if !w.SimLog.HasEntry("radio", "low_ammo", "AMMO") {
		t.Fatal("radio traffic should be logged")
	}
}

func TestReportInjury_DispatchesMedic(t *testing.T) {
	ts, _, warrior, medic := newRadioSim(t)
	warrior.hp = 70
	if warrior.ReportInjury() {
		t.Fatal("hp above the injury threshold is not reported")
	}
	warrior.hp = 50
	if !warrior.ReportInjury() {
		t.Fatal("wounded warrior should report")
	}
	if medic.StateKind() != StateHeal {
		dumpLog(t, ts.World)
		t.Fatalf("medic should be sent to heal, got %s", medic.StateKind())
	}
	if medic.target() != warrior {
		t.Fatalf("medic target = %v, want %s", medic.target(), warrior.label)
	}
	if c := ts.World.Commander(TeamOrange); c.OrdersIssued == 0 {
		t.Fatal("report handling should count the heal order")
	}
}

func TestReceiveReport_IgnoredByDeadCommander(t *testing.T) {
	_, cmd, warrior, medic := newRadioSim(t)
	cmd.die()
	warrior.hp = 50
	warrior.ReportInjury()
	if medic.StateKind() != StateNone {
		t.Fatalf("a dead commander dispatches nobody, medic is %s", medic.StateKind())
	}
}

func TestTransmit_WithoutCommanderSendsNothing(t *testing.T) {
	w := newTestWorld(t, 20, 20)
	lone := w.Spawn(TeamBlue, RoleWarrior, 5, 5)
	lone.ammo = 0
	if lone.ReportLowAmmo() {
		t.Fatal("no commander means nothing is transmitted")
	}
	if w.Radio(TeamBlue).Sent(ReportLowAmmo) != 0 {
		t.Fatal("radio net should stay empty")
	}
}

func TestRadioNet_KeepsBoundedHistory(t *testing.T) {
	var rn RadioNet
	for i := 0; i < radioHistory+5; i++ {
		rn.push(Report{Tick: i, Kind: ReportEnemySpotted})
	}
	all := rn.Recent(100)
	if len(all) != radioHistory {
		t.Fatalf("history len = %d, want %d", len(all), radioHistory)
	}
	if all[0].Tick != 5 || all[len(all)-1].Tick != radioHistory+4 {
		t.Fatalf("history should keep the newest reports, got %d..%d", all[0].Tick, all[len(all)-1].Tick)
	}
	if rn.Sent(ReportEnemySpotted) != radioHistory+5 {
		t.Fatalf("sent counter should not be truncated, got %d", rn.Sent(ReportEnemySpotted))
	}
	if last := rn.Recent(2); len(last) != 2 || last[1].Tick != radioHistory+4 {
		t.Fatalf("Recent(2) = %+v", last)
	}
}
