package game

import (
	"strings"
	"testing"
)

func TestDoctrine_StockForceRetreat(t *testing.T) {
	d, err := NewDoctrine(DefaultDoctrineConfig())
	if err != nil {
		t.Fatalf("NewDoctrine: %v", err)
	}
	cases := []struct {
		name string
		as   TeamAssessment
		want bool
	}{
		{"calm", TeamAssessment{Alive: 5, CommanderHP: 100, RetreatQuorum: 2}, false},
		{"commander under fire", TeamAssessment{Alive: 5, CommanderHP: 100, CommanderDanger: 0.7, RetreatQuorum: 2}, true},
		{"commander badly hurt", TeamAssessment{Alive: 5, CommanderHP: 30, RetreatQuorum: 2}, true},
		{"dead commander does not count", TeamAssessment{Alive: 5, CommanderHP: 0, RetreatQuorum: 2}, false},
		{"half the team hurt", TeamAssessment{Alive: 4, CommanderHP: 100, LowHealth: 2, RetreatQuorum: 2}, true},
	}
	for _, tc := range cases {
		got, err := d.ForceRetreat(tc.as)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: ForceRetreat=%t, want %t", tc.name, got, tc.want)
		}
	}
}

func TestDoctrine_StockAdvantage(t *testing.T) {
	d, err := NewDoctrine(DoctrineConfig{})
	if err != nil {
		t.Fatalf("empty config should fall back to stock rules: %v", err)
	}
	strong := TeamAssessment{Alive: 5, Enemies: 3, AvgHP: 90, EnemyAvgHP: 60, AvgDanger: 0.1, CommanderDanger: 0.1}
	if ok, _ := d.Advantage(strong); !ok {
		t.Fatal("healthy, outnumbering team should hold the advantage")
	}
	weak := strong
	weak.Alive = 2
	if ok, _ := d.Advantage(weak); ok {
		t.Fatal("outnumbered team has no advantage")
	}
}

func TestDoctrine_CustomAndInvalidPredicates(t *testing.T) {
	d, err := NewDoctrine(DoctrineConfig{Advantage: "BattleTicks > 10"})
	if err != nil {
		t.Fatalf("NewDoctrine: %v", err)
	}
	if ok, _ := d.Advantage(TeamAssessment{BattleTicks: 11}); !ok {
		t.Fatal("custom predicate not applied")
	}

	_, err = NewDoctrine(DoctrineConfig{ForceRetreat: "NoSuchField > 1"})
	if err == nil || !strings.Contains(err.Error(), "force_retreat") {
		t.Fatalf("unknown variable should fail to compile, got %v", err)
	}
	_, err = NewDoctrine(DoctrineConfig{Advantage: "AvgHP + 1"})
	if err == nil {
		t.Fatal("non-boolean predicate should fail to compile")
	}
}

func TestNewWorld_RejectsBadDoctrine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Doctrine.Advantage = "Alive >"
	if _, err := NewWorld(cfg, NewBattlefield(20, 20)); err == nil || !strings.Contains(err.Error(), "new world") {
		t.Fatalf("expected wrapped doctrine error, got %v", err)
	}
}
