package pathing

import (
	"testing"

	"blastradius/internal/worldstate"
)

type openTerrain struct{ w, h int }

func (t openTerrain) Tile(x, y int) (worldstate.Tile, bool) {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return worldstate.Empty, false
	}
	return worldstate.Empty, true
}

type wallTerrain struct {
	w, h  int
	walls map[worldstate.Position]bool
}

func (t wallTerrain) Tile(x, y int) (worldstate.Tile, bool) {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return worldstate.Empty, false
	}
	if t.walls[worldstate.Position{X: x, Y: y}] {
		return worldstate.Wall, true
	}
	return worldstate.Empty, true
}

type zeroDanger struct{}

func (zeroDanger) DangerAt(x, y int) float64 { return 0 }

type pointDanger struct {
	at    worldstate.Position
	value float64
}

func (d pointDanger) DangerAt(x, y int) float64 {
	if x == d.at.X && y == d.at.Y {
		return d.value
	}
	return 0
}

func TestAStarStraightLine(t *testing.T) {
	grid := NewWorldGrid(9, 9, openTerrain{9, 9}, zeroDanger{})
	path, ok := AStar(grid, worldstate.Position{X: 0, Y: 0}, worldstate.Position{X: 4, Y: 0})
	if !ok {
		t.Fatal("expected a path")
	}
	if len(path) != 5 {
		t.Fatalf("expected 5-cell path, got %d: %v", len(path), path)
	}
	if path[0] != (worldstate.Position{X: 0, Y: 0}) || path[len(path)-1] != (worldstate.Position{X: 4, Y: 0}) {
		t.Fatalf("path endpoints wrong: %v", path)
	}
}

func TestAStarUnreachableBehindWalls(t *testing.T) {
	walls := map[worldstate.Position]bool{}
	for y := 0; y < 5; y++ {
		walls[worldstate.Position{X: 2, Y: y}] = true
	}
	grid := NewWorldGrid(5, 5, wallTerrain{5, 5, walls}, zeroDanger{})
	_, ok := AStar(grid, worldstate.Position{X: 0, Y: 0}, worldstate.Position{X: 4, Y: 0})
	if ok {
		t.Fatal("expected goal behind a solid wall column to be unreachable")
	}
}

func TestAStarRoutesAroundDanger(t *testing.T) {
	grid := NewWorldGrid(5, 3, openTerrain{5, 3}, pointDanger{at: worldstate.Position{X: 2, Y: 1}, value: 50})
	path, ok := AStar(grid, worldstate.Position{X: 0, Y: 1}, worldstate.Position{X: 4, Y: 1})
	if !ok {
		t.Fatal("expected a path")
	}
	for _, p := range path {
		if p == (worldstate.Position{X: 2, Y: 1}) {
			t.Fatalf("expected path to avoid the high-influence cell, got %v", path)
		}
	}
}

func TestWorldGridIsWalkableRespectsDangerThreshold(t *testing.T) {
	hot := pointDanger{at: worldstate.Position{X: 1, Y: 1}, value: 100}
	grid := NewWorldGrid(3, 3, openTerrain{3, 3}, hot)
	if grid.IsWalkable(worldstate.Position{X: 1, Y: 1}) {
		t.Fatal("expected cell at danger threshold 100 to be unwalkable")
	}
	if !grid.IsWalkable(worldstate.Position{X: 0, Y: 0}) {
		t.Fatal("expected zero-danger cell to be walkable")
	}
}

func TestPathCacheLRUPromotesOnRead(t *testing.T) {
	c := NewPathCache(2, LRU)
	a, b, cc := worldstate.Position{X: 0, Y: 0}, worldstate.Position{X: 1, Y: 0}, worldstate.Position{X: 2, Y: 0}
	c.Put(a, a, []worldstate.Position{a})
	c.Put(b, b, []worldstate.Position{b})

	c.Get(a, a) // promotes a to the front
	c.Put(cc, cc, []worldstate.Position{cc}) // evicts the LRU entry, which is now b

	if _, ok := c.Get(b, b); ok {
		t.Fatal("expected b evicted after a was promoted by a read")
	}
	if _, ok := c.Get(a, a); !ok {
		t.Fatal("expected a to survive eviction")
	}
}

func TestPathCacheFIFODoesNotPromoteOnRead(t *testing.T) {
	c := NewPathCache(2, FIFO)
	a, b, cc := worldstate.Position{X: 0, Y: 0}, worldstate.Position{X: 1, Y: 0}, worldstate.Position{X: 2, Y: 0}
	c.Put(a, a, []worldstate.Position{a})
	c.Put(b, b, []worldstate.Position{b})

	c.Get(a, a) // FIFO: does not change eviction order
	c.Put(cc, cc, []worldstate.Position{cc})

	if _, ok := c.Get(a, a); ok {
		t.Fatal("expected a (oldest insert) evicted under FIFO regardless of reads")
	}
	if _, ok := c.Get(b, b); !ok {
		t.Fatal("expected b to survive")
	}
}

func TestPathCacheHitMissCounters(t *testing.T) {
	c := NewPathCache(4, LRU)
	p := worldstate.Position{X: 0, Y: 0}
	c.Get(p, p)
	c.Put(p, p, []worldstate.Position{p})
	c.Get(p, p)

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit/1 miss, got %d/%d", hits, misses)
	}
}

func TestSimplifyPathRemovesCollinearMidpoints(t *testing.T) {
	path := []worldstate.Position{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {3, 1}}
	out := SimplifyPath(path)
	want := []worldstate.Position{{0, 0}, {3, 0}, {3, 1}}
	if len(out) != len(want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}

func TestSmoothPathSkipsUnobstructedWaypoints(t *testing.T) {
	grid := NewWorldGrid(9, 9, openTerrain{9, 9}, zeroDanger{})
	path := []worldstate.Position{{0, 0}, {1, 0}, {2, 0}, {3, 0}}
	out := SmoothPath(path, grid)
	if len(out) != 2 {
		t.Fatalf("expected straight open path smoothed to 2 waypoints, got %v", out)
	}
	if out[0] != path[0] || out[len(out)-1] != path[len(path)-1] {
		t.Fatalf("expected endpoints preserved, got %v", out)
	}
}
