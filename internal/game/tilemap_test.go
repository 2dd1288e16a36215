package game

import "testing"

func TestWorldGrid_DefaultFree(t *testing.T) {
	g := NewWorldGrid(10, 8)
	if g.Cols() != 10 || g.Rows() != 8 {
		t.Fatalf("expected 10x8, got %dx%d", g.Cols(), g.Rows())
	}
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Cols(); x++ {
			if g.Cell(x, y) != CellFree {
				t.Fatalf("cell (%d,%d) = %s, want free", x, y, g.Cell(x, y))
			}
		}
	}
}

func TestWorldGrid_OutOfBoundsIsRock(t *testing.T) {
	g := NewWorldGrid(5, 5)
	for _, p := range []GridPos{{-1, 0}, {0, -1}, {5, 0}, {0, 5}} {
		if g.Cell(p.X, p.Y) != CellRock {
			t.Fatalf("out-of-bounds (%d,%d) should read as rock", p.X, p.Y)
		}
		if g.IsWalkable(p.X, p.Y) {
			t.Fatalf("out-of-bounds (%d,%d) should not be walkable", p.X, p.Y)
		}
	}
}

func TestCellKind_WalkableAndOpaque(t *testing.T) {
	cases := []struct {
		kind     CellKind
		walkable bool
		opaque   bool
	}{
		{CellFree, true, false},
		{CellTree, true, true},
		{CellRock, false, true},
		{CellWater, false, false},
		{CellWarehouse, false, true},
	}
	for _, c := range cases {
		if c.kind.Walkable() != c.walkable {
			t.Fatalf("%s walkable=%t, want %t", c.kind, c.kind.Walkable(), c.walkable)
		}
		if c.kind.BlocksSight() != c.opaque {
			t.Fatalf("%s opaque=%t, want %t", c.kind, c.kind.BlocksSight(), c.opaque)
		}
	}
}

func TestWorldGrid_OccupancySingleOwner(t *testing.T) {
	g := NewWorldGrid(5, 5)
	if !g.SetOccupied(2, 2, 7) {
		t.Fatal("first claim should succeed")
	}
	if g.SetOccupied(2, 2, 9) {
		t.Fatal("second agent must not take an occupied cell")
	}
	if g.Occupant(2, 2) != 7 {
		t.Fatalf("owner = %d, want 7", g.Occupant(2, 2))
	}
	if g.IsOccupied(2, 2, 7) {
		t.Fatal("a cell is not occupied from its owner's point of view")
	}
	if !g.IsOccupied(2, 2, 9) {
		t.Fatal("cell should be occupied for other agents")
	}
	g.ClearOccupied(2, 2, 9)
	if g.Occupant(2, 2) != 7 {
		t.Fatal("only the owner may release a cell")
	}
	g.ClearOccupied(2, 2, 7)
	if g.Occupant(2, 2) != 0 {
		t.Fatal("owner release should free the cell")
	}
	if g.SetOccupied(1, 1, 0) {
		t.Fatal("id 0 is reserved for free cells")
	}
}

func TestWorldGrid_DynamicCostClampAndDecay(t *testing.T) {
	g := NewWorldGrid(10, 10)
	for i := 0; i < 10; i++ {
		g.AddDynamicCost(5, 5, 2, 5)
	}
	if v := g.DynamicCost(5, 5); v != dynamicCostMax {
		t.Fatalf("centre cost = %v, want clamp %v", v, dynamicCostMax)
	}
	if g.DynamicCost(8, 5) != 0 {
		t.Fatal("cells outside the radius must stay untouched")
	}
	g.DecayDynamicCosts(0.5)
	if v := g.DynamicCost(5, 5); v != dynamicCostMax/2 {
		t.Fatalf("decayed cost = %v, want %v", v, dynamicCostMax/2)
	}
	for i := 0; i < 20; i++ {
		g.DecayDynamicCosts(0.5)
	}
	if v := g.DynamicCost(5, 5); v != 0 {
		t.Fatalf("near-zero cost should snap to 0, got %v", v)
	}
}

func TestWorldGrid_StampSquare(t *testing.T) {
	g := NewWorldGrid(20, 20)
	g.StampSquare(10, 10, 4, CellRock)
	if g.Cell(10, 10) != CellRock || g.Cell(8, 8) != CellRock || g.Cell(12, 12) != CellRock {
		t.Fatal("square should cover its centre and corners")
	}
	if g.Cell(13, 10) != CellFree {
		t.Fatal("square should not spill past its half-size")
	}
}

func TestFindNearestFreeTile_SkipsOccupiedAndWalls(t *testing.T) {
	g := NewWorldGrid(10, 10)
	g.SetOccupied(5, 5, 3)
	p, ok := g.FindNearestFreeTile(5, 5, 3, 1)
	if !ok {
		t.Fatal("expected a free tile near (5,5)")
	}
	if p == (GridPos{5, 5}) {
		t.Fatal("occupied seed must not be returned")
	}
	if d := absInt(p.X-5) + absInt(p.Y-5); d != 1 {
		t.Fatalf("expected an adjacent tile, got %v (distance %d)", p, d)
	}

	// Seed on a rock returns the nearest walkable neighbour.
	g.SetCell(2, 2, CellRock)
	p, ok = g.FindNearestFreeTile(2, 2, 2, 1)
	if !ok || !g.IsWalkable(p.X, p.Y) {
		t.Fatalf("expected walkable escape from rock, got %v ok=%t", p, ok)
	}

	// A sealed pocket has no answer.
	s := NewWorldGrid(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			s.SetCell(x, y, CellWater)
		}
	}
	if _, ok := s.FindNearestFreeTile(2, 2, 4, 1); ok {
		t.Fatal("all-water grid has no free tile")
	}
}

func TestWorldGrid_NearOpaqueIgnoresSelf(t *testing.T) {
	g := NewWorldGrid(10, 10)
	g.SetCell(5, 5, CellTree)
	if g.NearOpaque(5, 5, 1) {
		t.Fatal("the cell itself must not count")
	}
	if !g.NearOpaque(6, 5, 1) {
		t.Fatal("adjacent tree should count")
	}
	if g.NearOpaque(8, 5, 2) {
		t.Fatal("tree at distance 3 is outside r=2")
	}
}
