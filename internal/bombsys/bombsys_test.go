package bombsys

import (
	"sort"
	"testing"

	"blastradius/internal/worldstate"
)

type openGrid struct {
	w, h  int
	walls map[worldstate.Position]worldstate.Tile
}

func (g openGrid) Tile(x, y int) (worldstate.Tile, bool) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return worldstate.Empty, false
	}
	if t, ok := g.walls[worldstate.Position{X: x, Y: y}]; ok {
		return t, true
	}
	return worldstate.Empty, true
}

func sortPositions(ps []worldstate.Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}

// Scenario 1: bomb detonation on a 5x5 grid, power=3, no walls.
func TestPropagateOpenGrid(t *testing.T) {
	g := openGrid{w: 5, h: 5}
	res := Propagate(worldstate.Position{X: 1, Y: 1}, 3, false, g)

	want := []worldstate.Position{
		{1, 1}, {0, 1}, {2, 1}, {3, 1}, {4, 1}, {1, 0}, {1, 2}, {1, 3}, {1, 4},
	}
	sortPositions(want)
	got := append([]worldstate.Position(nil), res.Cells...)
	sortPositions(got)

	if len(got) != len(want) {
		t.Fatalf("expected %d cells, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mismatch at %d: want %v got %v (full: %v)", i, want[i], got[i], got)
		}
	}
}

// Scenario 2: blocked propagation with and without pierce.
func TestPropagateBlockedByWall(t *testing.T) {
	g := openGrid{w: 5, h: 5, walls: map[worldstate.Position]worldstate.Tile{{X: 2, Y: 1}: worldstate.Wall}}

	res := Propagate(worldstate.Position{X: 1, Y: 1}, 3, false, g)
	for _, excluded := range []worldstate.Position{{3, 1}, {4, 1}} {
		for _, c := range res.Cells {
			if c == excluded {
				t.Fatalf("expected %v excluded without pierce, got cells %v", excluded, res.Cells)
			}
		}
	}

	piercing := Propagate(worldstate.Position{X: 1, Y: 1}, 3, true, g)
	// With pierce=true the blast continues past the (still standing) wall,
	// so both cells beyond it are reached.
	for _, included := range []worldstate.Position{{3, 1}, {4, 1}} {
		found := false
		for _, c := range piercing.Cells {
			if c == included {
				found = true
			}
		}
		if !found {
			t.Fatalf("with pierce, blast should continue past the wall: %v missing from %v", included, piercing.Cells)
		}
	}
}

func TestPropagateSoftCratePierce(t *testing.T) {
	g := openGrid{w: 5, h: 5, walls: map[worldstate.Position]worldstate.Tile{{X: 2, Y: 1}: worldstate.SoftCrate}}

	blocked := Propagate(worldstate.Position{X: 1, Y: 1}, 3, false, g)
	found3 := false
	for _, c := range blocked.Cells {
		if c == (worldstate.Position{X: 3, Y: 1}) {
			found3 = true
		}
	}
	if found3 {
		t.Fatalf("without pierce, blast should not reach past soft crate: %v", blocked.Cells)
	}

	pierced := Propagate(worldstate.Position{X: 1, Y: 1}, 3, true, g)
	found3 = false
	for _, c := range pierced.Cells {
		if c == (worldstate.Position{X: 3, Y: 1}) {
			found3 = true
		}
	}
	if !found3 {
		t.Fatalf("with pierce, blast should continue past destroyed soft crate: %v", pierced.Cells)
	}
}

func TestPropagatePowerZero(t *testing.T) {
	g := openGrid{w: 5, h: 5}
	res := Propagate(worldstate.Position{X: 2, Y: 2}, 0, false, g)
	if len(res.Cells) != 1 || res.Cells[0] != (worldstate.Position{X: 2, Y: 2}) {
		t.Fatalf("power=0 should affect only the bomb's own cell, got %v", res.Cells)
	}
}

// Scenario 3: chain reaction.
func TestDetectChainsSharedRow(t *testing.T) {
	bombs := []worldstate.Bomb{
		{ID: 1, Position: worldstate.Position{X: 1, Y: 1}, Timer: 1, Power: 2},
		{ID: 2, Position: worldstate.Position{X: 3, Y: 1}, Timer: 5, Power: 2},
	}
	chains := DetectChains(bombs)
	if len(chains) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(chains))
	}
	c := chains[0]
	if len(c.Bombs) != 2 {
		t.Fatalf("expected chain of 2 bombs, got %d", len(c.Bombs))
	}
	if c.TriggerBomb != 1 || c.Detonates != 1 {
		t.Fatalf("expected trigger bomb 1 at tick 1, got bomb %d at tick %d", c.TriggerBomb, c.Detonates)
	}
}

func TestDetectChainsDisjoint(t *testing.T) {
	bombs := []worldstate.Bomb{
		{ID: 1, Position: worldstate.Position{X: 1, Y: 1}, Timer: 2, Power: 1},
		{ID: 2, Position: worldstate.Position{X: 10, Y: 10}, Timer: 2, Power: 1},
	}
	chains := DetectChains(bombs)
	if len(chains) != 2 {
		t.Fatalf("expected 2 disjoint chains, got %d", len(chains))
	}
}

func TestKickBombIntoWallFails(t *testing.T) {
	g := openGrid{w: 5, h: 5, walls: map[worldstate.Position]worldstate.Tile{{X: 3, Y: 2}: worldstate.Wall}}
	b := worldstate.Bomb{Position: worldstate.Position{X: 2, Y: 2}, Kickable: true}
	_, moved := KickBomb(b, 1, 0, g)
	if moved {
		t.Fatal("expected kick into wall to fail")
	}
}

func TestKickBombOffGridFails(t *testing.T) {
	g := openGrid{w: 5, h: 5}
	b := worldstate.Bomb{Position: worldstate.Position{X: 0, Y: 0}, Kickable: true}
	_, moved := KickBomb(b, -1, 0, g)
	if moved {
		t.Fatal("expected kick off-grid to fail")
	}
}

func TestKickBombSucceeds(t *testing.T) {
	g := openGrid{w: 5, h: 5}
	b := worldstate.Bomb{Position: worldstate.Position{X: 2, Y: 2}, Kickable: true}
	dest, moved := KickBomb(b, 1, 0, g)
	if !moved || dest != (worldstate.Position{X: 3, Y: 2}) {
		t.Fatalf("expected kick to (3,2), got %v moved=%v", dest, moved)
	}
}

func TestDetonateRemote(t *testing.T) {
	store := map[worldstate.BombId]worldstate.Bomb{
		1: {ID: 1, Remote: true, Timer: 10},
		2: {ID: 2, Remote: false, Timer: 10},
	}
	lookup := func(id worldstate.BombId) (worldstate.Bomb, bool) { b, ok := store[id]; return b, ok }
	set := func(id worldstate.BombId, fn func(*worldstate.Bomb)) bool {
		b, ok := store[id]
		if !ok {
			return false
		}
		fn(&b)
		store[id] = b
		return true
	}

	if err := DetonateRemote(1, lookup, set); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if store[1].Timer != 0 {
		t.Fatalf("expected timer forced to 0, got %d", store[1].Timer)
	}

	if err := DetonateRemote(2, lookup, set); err != ErrNotRemote {
		t.Fatalf("expected ErrNotRemote, got %v", err)
	}
	if err := DetonateRemote(999, lookup, set); err != ErrMissingBomb {
		t.Fatalf("expected ErrMissingBomb, got %v", err)
	}
}

func TestIsSafeReflexive(t *testing.T) {
	g := openGrid{w: 5, h: 5}
	bombs := []worldstate.Bomb{{Position: worldstate.Position{X: 1, Y: 1}, Power: 1}}
	if IsSafe(worldstate.Position{X: 1, Y: 1}, bombs, g) {
		t.Fatal("bomb's own cell should not be safe")
	}
	if !IsSafe(worldstate.Position{X: 4, Y: 4}, bombs, g) {
		t.Fatal("cell far from bomb should be safe")
	}
}
