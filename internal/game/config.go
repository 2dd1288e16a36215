package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TicksPerSecond is the fixed simulation rate every tick duration assumes.
const TicksPerSecond = 60

// Config carries every tunable of the simulation. Durations are in ticks.
type Config struct {
	Seed int64 `yaml:"seed"`

	// Movement
	MoveSpeed      float64 `yaml:"move_speed"`
	MedicSpeedMul  float64 `yaml:"medic_speed_mul"`
	PorterSpeedMul float64 `yaml:"porter_speed_mul"`
	BlockLimit     int     `yaml:"block_limit"`

	// Resources
	MaxHP              int `yaml:"max_hp"`
	WarriorMaxAmmo     int `yaml:"warrior_max_ammo"`
	WarriorMaxGrenades int `yaml:"warrior_max_grenades"`
	MedicMaxSupply     int `yaml:"medic_max_supply"`
	PorterMaxSupply    int `yaml:"porter_max_supply"`
	LowAmmoThreshold   int `yaml:"low_ammo_threshold"`
	InjuryThreshold    int `yaml:"injury_threshold"`
	RetreatHP          int `yaml:"retreat_hp"`
	CriticalHP         int `yaml:"critical_hp"`
	AssistLimit        int `yaml:"assist_limit"`

	// Weapons
	FireRange            float64 `yaml:"fire_range"`
	FireCooldownTicks    int     `yaml:"fire_cooldown_ticks"`
	ShotDamage           int     `yaml:"shot_damage"`
	ShotSpeed            float64 `yaml:"shot_speed"`
	ShotDistance         float64 `yaml:"shot_distance"`
	GrenadeRange         float64 `yaml:"grenade_range"`
	GrenadeRadius        float64 `yaml:"grenade_radius"`
	GrenadeDamage        float64 `yaml:"grenade_damage"`
	GrenadeCooldownTicks int     `yaml:"grenade_cooldown_ticks"`

	// Influence maps
	DangerRays        int     `yaml:"danger_rays"`
	DangerRange       int     `yaml:"danger_range"`
	DangerIncrement   float64 `yaml:"danger_increment"`
	VisibilityRange   int     `yaml:"visibility_range"`
	FireRiskIncrement float64 `yaml:"fire_risk_increment"`
	HazardDecay       float64 `yaml:"hazard_decay"`

	// Commander
	OpeningPhaseTicks       int     `yaml:"opening_phase_ticks"`
	DwellTicks              int     `yaml:"dwell_ticks"`
	AttackCooldownTicks     int     `yaml:"attack_cooldown_ticks"`
	ProbeCooldownTicks      int     `yaml:"probe_cooldown_ticks"`
	PlanIntervalTicks       int     `yaml:"plan_interval_ticks"`
	OrderDebounceTicks      int     `yaml:"order_debounce_ticks"`
	RepositionDanger        float64 `yaml:"reposition_danger"`
	AttackRepositionDanger  float64 `yaml:"attack_reposition_danger"`
	RepositionIntervalTicks int     `yaml:"reposition_interval_ticks"`
	NonWarriorRetreatDanger float64 `yaml:"non_warrior_retreat_danger"`
	CoverSlotEvalCap        int     `yaml:"cover_slot_eval_cap"`

	// Reports
	EnemyReportCooldownTicks  int `yaml:"enemy_report_cooldown_ticks"`
	StatusReportCooldownTicks int `yaml:"status_report_cooldown_ticks"`

	// Search radii
	CoverSearchRadius    int `yaml:"cover_search_radius"`
	PanicCoverRadius     int `yaml:"panic_cover_radius"`
	CombatSearchRadius   int `yaml:"combat_search_radius"`
	SafeSpotSearchRadius int `yaml:"safe_spot_search_radius"`
	GoalSlack            int `yaml:"goal_slack"`

	// Behaviour timers
	RecentRetreatTicks   int `yaml:"recent_retreat_ticks"`
	IdleAnchorTicks      int `yaml:"idle_anchor_ticks"`
	IdleMotionTicks      int `yaml:"idle_motion_ticks"`
	HealDelayTicks       int `yaml:"heal_delay_ticks"`
	AmmoWaitTicks        int `yaml:"ammo_wait_ticks"`
	MedWaitTicks         int `yaml:"med_wait_ticks"`
	WarehouseRepathTicks int `yaml:"warehouse_repath_ticks"`

	Doctrine DoctrineConfig `yaml:"doctrine"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Seed: 1,

		MoveSpeed:      0.06,
		MedicSpeedMul:  1.6,
		PorterSpeedMul: 1.3,
		BlockLimit:     5,

		MaxHP:              100,
		WarriorMaxAmmo:     10,
		WarriorMaxGrenades: 1,
		MedicMaxSupply:     1,
		PorterMaxSupply:    1,
		LowAmmoThreshold:   5,
		InjuryThreshold:    60,
		RetreatHP:          40,
		CriticalHP:         25,
		AssistLimit:        1,

		FireRange:            15,
		FireCooldownTicks:    27,
		ShotDamage:           7,
		ShotSpeed:            0.8,
		ShotDistance:         15,
		GrenadeRange:         20,
		GrenadeRadius:        6,
		GrenadeDamage:        18,
		GrenadeCooldownTicks: 90,

		DangerRays:        72,
		DangerRange:       35,
		DangerIncrement:   0.02,
		VisibilityRange:   30,
		FireRiskIncrement: 0.002,
		HazardDecay:       0.96,

		OpeningPhaseTicks:       600,
		DwellTicks:              240,
		AttackCooldownTicks:     480,
		ProbeCooldownTicks:      600,
		PlanIntervalTicks:       60,
		OrderDebounceTicks:      120,
		RepositionDanger:        0.18,
		AttackRepositionDanger:  0.25,
		RepositionIntervalTicks: 360,
		NonWarriorRetreatDanger: 0.55,
		CoverSlotEvalCap:        20,

		EnemyReportCooldownTicks:  180,
		StatusReportCooldownTicks: 120,

		CoverSearchRadius:    30,
		PanicCoverRadius:     60,
		CombatSearchRadius:   18,
		SafeSpotSearchRadius: 25,
		GoalSlack:            3,

		RecentRetreatTicks:   120,
		IdleAnchorTicks:      360,
		IdleMotionTicks:      180,
		HealDelayTicks:       36,
		AmmoWaitTicks:        60,
		MedWaitTicks:         120,
		WarehouseRepathTicks: 120,

		Doctrine: DefaultDoctrineConfig(),
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", name, v))
		}
	}
	nonNegative := func(name string, v int) {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %d", name, v))
		}
	}
	positive("move_speed", c.MoveSpeed)
	positive("max_hp", float64(c.MaxHP))
	positive("fire_range", c.FireRange)
	positive("grenade_range", c.GrenadeRange)
	positive("grenade_radius", c.GrenadeRadius)
	positive("shot_speed", c.ShotSpeed)
	positive("danger_rays", float64(c.DangerRays))
	positive("danger_range", float64(c.DangerRange))
	positive("visibility_range", float64(c.VisibilityRange))
	positive("plan_interval_ticks", float64(c.PlanIntervalTicks))
	positive("cover_search_radius", float64(c.CoverSearchRadius))
	nonNegative("warrior_max_ammo", c.WarriorMaxAmmo)
	nonNegative("warrior_max_grenades", c.WarriorMaxGrenades)
	nonNegative("medic_max_supply", c.MedicMaxSupply)
	nonNegative("porter_max_supply", c.PorterMaxSupply)
	nonNegative("assist_limit", c.AssistLimit)
	nonNegative("dwell_ticks", c.DwellTicks)
	nonNegative("goal_slack", c.GoalSlack)
	if c.DangerIncrement < 0 || c.DangerIncrement > 1 {
		errs = append(errs, fmt.Errorf("danger_increment must be within [0,1], got %v", c.DangerIncrement))
	}
	if c.HazardDecay < 0 || c.HazardDecay > 1 {
		errs = append(errs, fmt.Errorf("hazard_decay must be within [0,1], got %v", c.HazardDecay))
	}
	if c.CriticalHP > c.RetreatHP {
		errs = append(errs, fmt.Errorf("critical_hp (%d) must not exceed retreat_hp (%d)", c.CriticalHP, c.RetreatHP))
	}
	return errors.Join(errs...)
}
