package game

// Team identifies one of the two opposing sides.
type Team uint8

const (
	TeamOrange Team = iota
	TeamBlue
	teamCount
)

func (t Team) String() string {
	if t == TeamOrange {
		return "orange"
	}
	return "blue"
}

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamOrange {
		return TeamBlue
	}
	return TeamOrange
}

func (t Team) letter() byte {
	if t == TeamOrange {
		return 'O'
	}
	return 'B'
}

// Role decides an agent's resources and which behaviours it may run.
type Role uint8

const (
	RoleCommander Role = iota
	RoleWarrior
	RoleMedic
	RolePorter
)

func (r Role) String() string {
	switch r {
	case RoleCommander:
		return "commander"
	case RoleWarrior:
		return "warrior"
	case RoleMedic:
		return "medic"
	case RolePorter:
		return "porter"
	default:
		return "unknown"
	}
}

// Letter is the single-character symbol used in labels and on the map.
func (r Role) Letter() byte {
	switch r {
	case RoleCommander:
		return 'C'
	case RoleMedic:
		return 'M'
	case RolePorter:
		return 'P'
	default:
		return 'W'
	}
}

// ParseRole maps a role letter back to a Role.
func ParseRole(c byte) (Role, bool) {
	switch c {
	case 'C', 'c':
		return RoleCommander, true
	case 'W', 'w':
		return RoleWarrior, true
	case 'M', 'm':
		return RoleMedic, true
	case 'P', 'p':
		return RolePorter, true
	}
	return RoleWarrior, false
}

// SpawnSpec places one agent at match start.
type SpawnSpec struct {
	X, Y int
	Role Role
}

// Depot is a team's resupply layout. ExitCorridor is walked first when a
// porter leaves the ammo depot so it does not path into the warehouse walls.
type Depot struct {
	Ammo         GridPos
	Med          GridPos
	ExitCorridor []GridPos
}

// Battlefield bundles the terrain with the per-team layout data the
// behaviours consult: depots, spawns, default objectives and cover bands.
type Battlefield struct {
	Grid   *WorldGrid
	Depots [teamCount]Depot
	Spawns [teamCount][]SpawnSpec

	// DefaultTargets is where warriors push when they have no other order.
	DefaultTargets [teamCount]GridPos
	// IdleAnchors pull idle warriors back toward a defensive band.
	IdleAnchors [teamCount]GridPos
	// FallbackCover lists hand-picked cover points used when the cover search fails.
	FallbackCover []GridPos

	// Band edges by x. Orange faces +x, Blue faces -x.
	retreatEdge [teamCount]int
	attackEdge  [teamCount]int
}

// StrategicBand partitions cover slots by how far forward they sit.
type StrategicBand uint8

const (
	BandRetreat StrategicBand = iota
	BandDefend
	BandAttack
	bandCount
)

func (b StrategicBand) String() string {
	switch b {
	case BandRetreat:
		return "retreat"
	case BandDefend:
		return "defend"
	default:
		return "attack"
	}
}

// BandAt classifies column x from team's point of view.
func (bf *Battlefield) BandAt(team Team, x int) StrategicBand {
	if team == TeamOrange {
		switch {
		case x < bf.retreatEdge[team]:
			return BandRetreat
		case x < bf.attackEdge[team]:
			return BandDefend
		default:
			return BandAttack
		}
	}
	switch {
	case x > bf.retreatEdge[team]:
		return BandRetreat
	case x > bf.attackEdge[team]:
		return BandDefend
	default:
		return BandAttack
	}
}

// NewBattlefield returns an open field of the given size with depots in the
// corners, objectives in the middle and bands split into even thirds.
func NewBattlefield(cols, rows int) *Battlefield {
	bf := &Battlefield{Grid: NewWorldGrid(cols, rows)}
	bf.Depots[TeamOrange] = Depot{
		Ammo: GridPos{2, rows - 3},
		Med:  GridPos{2, 2},
	}
	bf.Depots[TeamBlue] = Depot{
		Ammo: GridPos{cols - 3, rows - 3},
		Med:  GridPos{cols - 3, 2},
	}
	mid := GridPos{cols / 2, rows / 2}
	bf.DefaultTargets = [teamCount]GridPos{mid, mid}
	bf.IdleAnchors = [teamCount]GridPos{{cols / 3, rows / 2}, {cols - cols/3, rows / 2}}
	bf.retreatEdge = [teamCount]int{cols / 4, cols - cols/4}
	bf.attackEdge = [teamCount]int{cols / 2, cols / 2}
	return bf
}

// DefaultBattlefield builds the 200x100 two-depot map with its fixed
// woods, rock outcrops, ponds and warehouses.
func DefaultBattlefield() *Battlefield {
	bf := &Battlefield{Grid: NewWorldGrid(200, 100)}
	g := bf.Grid

	for _, t := range []GridPos{
		{70, 73}, {76, 78}, {156, 46}, {76, 38}, {86, 42}, {92, 36},
		{112, 68}, {118, 74}, {124, 80}, {140, 28}, {148, 26},
	} {
		g.SetCell(t.X, t.Y, CellTree)
	}
	for _, r := range []GridPos{
		{45, 65}, {51, 60}, {132, 50}, {132, 45}, {32, 37},
		{150, 64}, {102, 40}, {118, 32}, {172, 48},
	} {
		g.StampSquare(r.X, r.Y, 6, CellRock)
	}
	g.StampEllipse(98, 65, 10, 5, CellWater)
	g.StampEllipse(55, 36, 8, 5, CellWater)

	for _, w := range []GridPos{{20, 85}, {15, 20}, {180, 85}, {185, 20}} {
		g.StampSquare(w.X, w.Y, 5, CellWarehouse)
	}

	// Medical yards: clear a courtyard around each med point and force an
	// entrance through the warehouse wall.
	for _, m := range []GridPos{{15, 15}, {185, 15}} {
		for dy := -3; dy <= 3; dy++ {
			for dx := -3; dx <= 3; dx++ {
				c := g.Cell(m.X+dx, m.Y+dy)
				if c != CellRock && c != CellWater {
					g.SetCell(m.X+dx, m.Y+dy, CellFree)
				}
			}
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				g.SetCell(m.X+dx, m.Y+dy, CellFree)
			}
		}
	}

	bf.Depots[TeamOrange] = Depot{
		Ammo:         GridPos{28, 80},
		Med:          GridPos{15, 15},
		ExitCorridor: []GridPos{{26, 82}, {28, 80}, {30, 77}, {32, 73}},
	}
	bf.Depots[TeamBlue] = Depot{
		Ammo:         GridPos{172, 80},
		Med:          GridPos{185, 15},
		ExitCorridor: []GridPos{{174, 82}, {172, 80}, {170, 77}, {168, 73}},
	}

	bf.Spawns[TeamOrange] = []SpawnSpec{
		{X: 34, Y: 68, Role: RoleCommander},
		{X: 50, Y: 72, Role: RoleWarrior},
		{X: 42, Y: 58, Role: RoleWarrior},
		{X: 13, Y: 18, Role: RoleMedic},
		{X: 24, Y: 82, Role: RolePorter},
	}
	bf.Spawns[TeamBlue] = []SpawnSpec{
		{X: 172, Y: 64, Role: RoleCommander},
		{X: 150, Y: 70, Role: RoleWarrior},
		{X: 158, Y: 54, Role: RoleWarrior},
		{X: 187, Y: 18, Role: RoleMedic},
		{X: 176, Y: 82, Role: RolePorter},
	}

	bf.DefaultTargets = [teamCount]GridPos{{140, 60}, {60, 40}}
	bf.IdleAnchors = [teamCount]GridPos{{95, 52}, {105, 48}}
	bf.FallbackCover = []GridPos{
		{70, 73}, {76, 78}, {76, 38}, {86, 42}, {92, 36}, {104, 58}, {110, 62},
		{112, 68}, {118, 74}, {124, 80}, {140, 28}, {148, 26}, {164, 70}, {170, 74},
		{45, 65}, {51, 60}, {102, 40}, {118, 32}, {132, 50}, {150, 64}, {172, 48},
	}
	bf.retreatEdge = [teamCount]int{45, 155}
	bf.attackEdge = [teamCount]int{110, 90}
	return bf
}
