package game

import (
	"container/heap"
	"math"
)

// PathPlanner runs grid searches over the world grid, optionally weighted by
// a team's danger field.
type PathPlanner struct {
	grid      *WorldGrid
	influence *InfluenceMap
	// goalSlack is the square radius searched for a substitute goal when the
	// requested one cannot be reached.
	goalSlack int
}

// NewPathPlanner binds a planner to the grid and influence fields it reads.
func NewPathPlanner(grid *WorldGrid, influence *InfluenceMap, goalSlack int) *PathPlanner {
	return &PathPlanner{grid: grid, influence: influence, goalSlack: goalSlack}
}

// --- A* pathfinding ---

type pathNode struct {
	cx, cy int
	g, h   float64
	seq    int // insertion order, keeps equal-f pops stable
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int { return len(ol) }
func (ol openList) Less(i, j int) bool {
	fi, fj := ol[i].g+ol[i].h, ol[j].g+ol[j].h
	if fi != fj {
		return fi < fj
	}
	return ol[i].seq < ol[j].seq
}
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

func manhattan(ax, ay, bx, by int) float64 {
	return float64(absInt(ax-bx) + absInt(ay-by))
}

// search is the shared A* core. Edge cost is 1 + occupancy penalty + dynamic
// cost, plus weight*danger*10 when weighted is set. The returned path starts
// with the start cell.
func (p *PathPlanner) search(sx, sy, gx, gy, ignoreID int, team Team, weight float64, weighted bool) ([]GridPos, bool) {
	g := p.grid
	if !g.InBounds(sx, sy) || !g.InBounds(gx, gy) {
		return nil, false
	}
	if !g.IsWalkable(sx, sy) {
		return nil, false
	}

	key := func(cx, cy int) int { return cy*g.cols + cx }
	seq := 0
	start := &pathNode{cx: sx, cy: sy, h: manhattan(sx, sy, gx, gy)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[int]bool)
	best := map[int]float64{key(sx, sy): 0}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		k := key(cur.cx, cur.cy)
		if closed[k] {
			continue
		}
		closed[k] = true
		if cur.cx == gx && cur.cy == gy {
			return buildPath(cur), true
		}

		for _, d := range dirs4 {
			nx, ny := cur.cx+d[0], cur.cy+d[1]
			if !g.InBounds(nx, ny) || !g.IsWalkable(nx, ny) {
				continue
			}
			nk := key(nx, ny)
			if closed[nk] {
				continue
			}
			cost := 1.0 + g.OccupancyPenalty(nx, ny, ignoreID) + g.DynamicCost(nx, ny)
			if weighted {
				cost += weight * p.influence.Danger(team, nx, ny) * 10.0
			}
			ng := cur.g + cost
			if prev, ok := best[nk]; ok && ng >= prev {
				continue
			}
			best[nk] = ng
			seq++
			heap.Push(ol, &pathNode{cx: nx, cy: ny, g: ng, h: manhattan(nx, ny, gx, gy), seq: seq, parent: cur})
		}
	}
	return nil, false
}

func buildPath(end *pathNode) []GridPos {
	var cells []GridPos
	for n := end; n != nil; n = n.parent {
		cells = append(cells, GridPos{n.cx, n.cy})
	}
	// Reverse
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells
}

// FindPath is the plain search. If the goal cannot be reached it retries
// once toward the walkable cell nearest the goal within goalSlack.
func (p *PathPlanner) FindPath(sx, sy, gx, gy, ignoreID int) ([]GridPos, bool) {
	if path, ok := p.search(sx, sy, gx, gy, ignoreID, TeamOrange, 0, false); ok {
		return path, true
	}
	if !p.grid.InBounds(sx, sy) || !p.grid.InBounds(gx, gy) || !p.grid.IsWalkable(sx, sy) {
		return nil, false
	}
	alt, ok := p.nearestWalkable(gx, gy)
	if !ok || alt == (GridPos{gx, gy}) {
		return nil, false
	}
	return p.search(sx, sy, alt.X, alt.Y, ignoreID, TeamOrange, 0, false)
}

func (p *PathPlanner) nearestWalkable(gx, gy int) (GridPos, bool) {
	bestD := math.MaxInt
	var best GridPos
	for dy := -p.goalSlack; dy <= p.goalSlack; dy++ {
		for dx := -p.goalSlack; dx <= p.goalSlack; dx++ {
			nx, ny := gx+dx, gy+dy
			if !p.grid.InBounds(nx, ny) || !p.grid.IsWalkable(nx, ny) {
				continue
			}
			if d := dx*dx + dy*dy; d < bestD {
				bestD = d
				best = GridPos{nx, ny}
			}
		}
	}
	return best, bestD != math.MaxInt
}

// FindSafePath is A* with team's danger field added to every edge.
func (p *PathPlanner) FindSafePath(sx, sy, gx, gy, ignoreID int, team Team, weight float64) ([]GridPos, bool) {
	return p.search(sx, sy, gx, gy, ignoreID, team, weight, true)
}

// PlanRelaxed tries the danger-weighted search at each weight in turn and
// finally the plain search with its goal fallback.
func (p *PathPlanner) PlanRelaxed(sx, sy, gx, gy, ignoreID int, team Team, weights ...float64) ([]GridPos, bool) {
	for _, w := range weights {
		if path, ok := p.FindSafePath(sx, sy, gx, gy, ignoreID, team, w); ok {
			return path, true
		}
	}
	return p.FindPath(sx, sy, gx, gy, ignoreID)
}

// --- Cover search ---

const (
	coverQualifyScore = 0.3
	coverOpenScore    = 0.1
)

// FindNearestCover floods 4-connected walkable cells out to radius and
// returns the lowest-scoring qualifying cell, nearest on ties. A cell's score
// is its danger plus 0.05 of the occupancy penalty; it qualifies below 0.3
// when a tree or rock lies within 2 cells, or below 0.1 anywhere. The start
// cell is only returned when nothing else qualifies.
func (p *PathPlanner) FindNearestCover(sx, sy, radius, ignoreID int, team Team) (GridPos, bool) {
	g := p.grid
	if !g.InBounds(sx, sy) {
		return GridPos{}, false
	}
	type node struct{ x, y, dist int }
	visited := make([]bool, g.cols*g.rows)
	queue := []node{{sx, sy, 0}}
	visited[g.index(sx, sy)] = true

	bestScore, bestDist := 1.0, math.MaxInt
	var best GridPos
	found := false
	fallbackScore := 1.0
	hasFallback := false

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.dist > radius {
			continue
		}
		if g.IsWalkable(cur.x, cur.y) {
			score := p.influence.Danger(team, cur.x, cur.y) + 0.05*g.OccupancyPenalty(cur.x, cur.y, ignoreID)
			if score < coverQualifyScore && (score < coverOpenScore || g.NearHardCover(cur.x, cur.y, 2)) {
				if cur.x == sx && cur.y == sy {
					if !hasFallback || score < fallbackScore {
						hasFallback = true
						fallbackScore = score
					}
				} else if score < bestScore || (score == bestScore && cur.dist < bestDist) {
					bestScore, bestDist = score, cur.dist
					best = GridPos{cur.x, cur.y}
					found = true
				}
			}
		}
		for _, d := range dirs4 {
			nx, ny := cur.x+d[0], cur.y+d[1]
			if !g.InBounds(nx, ny) || !g.IsWalkable(nx, ny) {
				continue
			}
			i := g.index(nx, ny)
			if visited[i] {
				continue
			}
			visited[i] = true
			queue = append(queue, node{nx, ny, cur.dist + 1})
		}
	}
	if found {
		return best, true
	}
	if hasFallback {
		return GridPos{sx, sy}, true
	}
	return GridPos{}, false
}
