package game

import "fmt"

// TestSim is a headless simulation harness used by tests and the batch
// reporter. It drives World.Step without any Ebiten dependency and builds
// its world from ordered options.
type TestSim struct {
	World *World

	cols, rows int
	cfg        Config
	walls      []wallSpec
	stockField bool
	skipOrders bool
	verbose    bool
}

type wallSpec struct {
	x, y, w, h int
	kind       CellKind
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // map size, terrain, seed, config; applied before the world exists
	simOptAgent                       // spawns; applied once the world is built
	simOptOrders                      // applied after the opening states are assigned
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithMapSize sets the grid dimensions of an open field.
func WithMapSize(cols, rows int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cols, ts.rows = cols, rows
	}}
}

// WithTerrain fills a w×h block with kind.
func WithTerrain(x, y, w, h int, kind CellKind) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.walls = append(ts.walls, wallSpec{x, y, w, h, kind})
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.cfg.Seed = seed
	}}
}

// WithConfig lets a test tweak the tuning before the world is built.
func WithConfig(edit func(*Config)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		edit(&ts.cfg)
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithDefaultBattlefield uses the stock 200x100 map with both full teams
// and the stock opening dispatch.
func WithDefaultBattlefield() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.stockField = true
	}}
}

// WithoutInitialOrders leaves every spawned agent stateless.
func WithoutInitialOrders() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.skipOrders = true
	}}
}

// WithAgent spawns one agent. Agents receive ids in option order.
func WithAgent(team Team, role Role, x, y float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.World.Spawn(team, role, x, y)
	}}
}

// WithOrder runs fn against the built world after the opening states.
func WithOrder(fn func(w *World)) SimOption {
	return SimOption{simOptOrders, func(ts *TestSim) {
		fn(ts.World)
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (map size, terrain, seed, config)
//  2. Build World
//  3. Agents
//  4. Opening states, then orders
func NewTestSim(opts ...SimOption) (*TestSim, error) {
	ts := &TestSim{cols: 40, rows: 30, cfg: DefaultConfig()}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	if ts.stockField {
		w, err := NewDefaultWorld(ts.cfg)
		if err != nil {
			return nil, err
		}
		ts.World = w
		if ts.skipOrders {
			for _, a := range w.agents {
				a.ChangeState(nil)
			}
		}
	} else {
		bf := NewBattlefield(ts.cols, ts.rows)
		for _, wl := range ts.walls {
			for y := wl.y; y < wl.y+wl.h; y++ {
				for x := wl.x; x < wl.x+wl.w; x++ {
					bf.Grid.SetCell(x, y, wl.kind)
				}
			}
		}
		w, err := NewWorld(ts.cfg, bf)
		if err != nil {
			return nil, fmt.Errorf("test sim: %w", err)
		}
		ts.World = w
	}
	ts.World.SetVerbose(ts.verbose)

	for _, o := range opts {
		if o.kind == simOptAgent {
			o.fn(ts)
		}
	}
	if !ts.stockField && !ts.skipOrders {
		ts.World.AssignInitialStates()
	}
	for _, o := range opts {
		if o.kind == simOptOrders {
			o.fn(ts)
		}
	}
	return ts, nil
}

// Agent resolves an id against the world.
func (ts *TestSim) Agent(id int) *Agent { return ts.World.Agent(id) }

// Tick is the current simulation tick.
func (ts *TestSim) Tick() int { return ts.World.tick }

// SimLog is the world's structured log.
func (ts *TestSim) SimLog() *SimLog { return ts.World.SimLog }

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.World.Step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.World.Step()
		if predicate(ts) {
			return ts.World.tick
		}
	}
	return -1
}

// RunToOutcome steps until one side is eliminated or maxTicks elapse.
func (ts *TestSim) RunToOutcome(maxTicks int) BattleOutcomeReason {
	ts.RunUntil(func(s *TestSim) bool { return s.World.Outcome().Outcome.Decided() }, maxTicks)
	return ts.World.Outcome()
}
