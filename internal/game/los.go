package game

// HasLineOfSight walks a Bresenham line from (x0,y0) to (x1,y1) and returns
// false if any cell on it blocks sight. Both endpoints are tested, so an agent
// standing inside a tree can neither see nor be seen.
func (g *WorldGrid) HasLineOfSight(x0, y0, x1, y1 int) bool {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if g.BlocksSight(x0, y0) {
			return false
		}
		if x0 == x1 && y0 == y1 {
			return true
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
