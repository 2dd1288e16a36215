package game

// CoverSlots is one team's catalog of candidate firing positions, computed
// once per battlefield and split into strategic bands by column. A slot is
// a walkable cell with a sight-blocking cell within two steps, on a
// checkerboard so neighbouring slots do not crowd the same obstacle.
type CoverSlots struct {
	team  Team
	bands [bandCount][]GridPos
}

// BuildCoverSlots scans the grid interior and files every qualifying cell
// under team's band for its column.
func BuildCoverSlots(bf *Battlefield, team Team) *CoverSlots {
	cs := &CoverSlots{team: team}
	g := bf.Grid
	for y := 1; y < g.Rows()-1; y++ {
		for x := 1; x < g.Cols()-1; x++ {
			if (x+y)%2 != 0 || !g.IsWalkable(x, y) || !g.NearOpaque(x, y, 2) {
				continue
			}
			b := bf.BandAt(team, x)
			cs.bands[b] = append(cs.bands[b], GridPos{x, y})
		}
	}
	return cs
}

// Band returns the slots in b. The slice is shared; callers copy before
// reordering.
func (cs *CoverSlots) Band(b StrategicBand) []GridPos {
	return cs.bands[b]
}

// Len counts every slot across bands.
func (cs *CoverSlots) Len() int {
	n := 0
	for _, b := range cs.bands {
		n += len(b)
	}
	return n
}

// bandFor maps a team strategic state to the band its warriors hold.
func bandFor(s TeamState) StrategicBand {
	switch s {
	case TeamAttack:
		return BandAttack
	case TeamRetreat:
		return BandRetreat
	default:
		return BandDefend
	}
}
