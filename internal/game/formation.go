package game

// spreadPool is the fixed set of offsets a commander hands out, one per
// warrior, so warriors ordered to the same area fan out around it instead
// of queueing for one cell.
var spreadPool = [...]GridPos{
	{-4, 0}, {0, 0}, {4, 0},
	{-4, 3}, {4, 3},
	{-2, -3}, {2, -3},
	{0, 5},
}

// spreadBook remembers which offset each warrior was given. Offsets are
// handed out in pool order and wrap around.
type spreadBook struct {
	offsets map[int]GridPos
	next    int
}

// offsetFor returns id's offset, assigning the next pool entry on first use.
func (b *spreadBook) offsetFor(id int) GridPos {
	if b.offsets == nil {
		b.offsets = make(map[int]GridPos)
	}
	if off, ok := b.offsets[id]; ok {
		return off
	}
	off := spreadPool[b.next%len(spreadPool)]
	b.next++
	b.offsets[id] = off
	return off
}

// prune forgets warriors that are no longer alive.
func (b *spreadBook) prune(alive func(id int) bool) {
	for id := range b.offsets {
		if !alive(id) {
			delete(b.offsets, id)
		}
	}
}

// spreadTarget shifts base by id's offset, clamps it inside the map border
// and falls back to the nearest free walkable cell when the shifted cell
// cannot be stood on.
func (b *spreadBook) spreadTarget(g *WorldGrid, base GridPos, id int) GridPos {
	off := b.offsetFor(id)
	t := GridPos{
		X: max(1, min(g.Cols()-2, base.X+off.X)),
		Y: max(1, min(g.Rows()-2, base.Y+off.Y)),
	}
	if g.IsWalkable(t.X, t.Y) {
		return t
	}
	if alt, ok := g.FindNearestFreeTile(t.X, t.Y, 4, id); ok {
		return alt
	}
	return base
}
