package game

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// TeamAssessment is the snapshot a commander judges its strategic options
// from. Field names are the variables available to doctrine expressions.
type TeamAssessment struct {
	Alive           int
	Enemies         int
	AvgHP           float64
	EnemyAvgHP      float64
	AvgDanger       float64
	CommanderDanger float64
	CommanderHP     int
	LowHealth       int
	// RetreatQuorum is max(1, Alive/2) in integer arithmetic.
	RetreatQuorum int
	// BattleTicks counts ticks since the commander's first evaluation.
	BattleTicks int
}

// DoctrineConfig holds the source of each strategic predicate.
type DoctrineConfig struct {
	ForceRetreat string `yaml:"force_retreat"`
	Advantage    string `yaml:"advantage"`
}

// DefaultDoctrineConfig returns the stock predicates.
func DefaultDoctrineConfig() DoctrineConfig {
	return DoctrineConfig{
		ForceRetreat: "CommanderDanger > 0.6 || (CommanderHP > 0 && CommanderHP < 35) || LowHealth >= RetreatQuorum",
		Advantage:    "Alive >= Enemies && AvgHP > EnemyAvgHP + 4 && AvgDanger < 0.38 && CommanderDanger < 0.35 && AvgHP > 55",
	}
}

// Doctrine is a compiled set of strategic predicates.
type Doctrine struct {
	forceRetreat *vm.Program
	advantage    *vm.Program
}

// NewDoctrine compiles the predicates in cfg. Empty sources fall back to the
// stock rule for that predicate.
func NewDoctrine(cfg DoctrineConfig) (*Doctrine, error) {
	def := DefaultDoctrineConfig()
	if cfg.ForceRetreat == "" {
		cfg.ForceRetreat = def.ForceRetreat
	}
	if cfg.Advantage == "" {
		cfg.Advantage = def.Advantage
	}
	fr, err := compilePredicate("force_retreat", cfg.ForceRetreat)
	if err != nil {
		return nil, err
	}
	adv, err := compilePredicate("advantage", cfg.Advantage)
	if err != nil {
		return nil, err
	}
	return &Doctrine{forceRetreat: fr, advantage: adv}, nil
}

func compilePredicate(name, src string) (*vm.Program, error) {
	prog, err := expr.Compile(src, expr.Env(TeamAssessment{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile doctrine %q: %w", name, err)
	}
	return prog, nil
}

// ForceRetreat reports whether the team must fall back regardless of dwell.
func (d *Doctrine) ForceRetreat(a TeamAssessment) (bool, error) {
	return runPredicate(d.forceRetreat, a)
}

// Advantage reports whether the team is strong enough to attack.
func (d *Doctrine) Advantage(a TeamAssessment) (bool, error) {
	return runPredicate(d.advantage, a)
}

func runPredicate(prog *vm.Program, a TeamAssessment) (bool, error) {
	out, err := vm.Run(prog, a)
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}
