package bombsys

import "blastradius/internal/worldstate"

// TileQuery is the minimal read surface blast propagation needs from a
// grid (satisfied by *worldstate.World and *worldstate.Snapshot).
type TileQuery interface {
	Tile(x, y int) (worldstate.Tile, bool)
}

var cardinalDirs = []worldstate.Position{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

// BlastResult is the outcome of propagating a single bomb's blast.
type BlastResult struct {
	Cells          []worldstate.Position // every affected cell, including the bomb's own
	DestroyedCrate []worldstate.Position // soft crates destroyed by this blast
}

// Propagate computes the affected-cell set for a bomb at p with power k,
// per spec.md §4.5: stop at the grid boundary; stop on a Wall/SoftCrate
// after including it (destroying the SoftCrate), unless Pierce is set in
// which case propagation continues past the obstacle.
func Propagate(p worldstate.Position, power uint8, pierce bool, q TileQuery) BlastResult {
	res := BlastResult{Cells: []worldstate.Position{p}}
	if t, ok := q.Tile(p.X, p.Y); ok && t == worldstate.SoftCrate {
		res.DestroyedCrate = append(res.DestroyedCrate, p)
	}

	for _, d := range cardinalDirs {
		for step := 1; step <= int(power); step++ {
			cell := worldstate.Position{X: p.X + d.X*step, Y: p.Y + d.Y*step}
			t, ok := q.Tile(cell.X, cell.Y)
			if !ok {
				break // grid boundary
			}
			if t == worldstate.Wall {
				// The blast reaches the wall's cell but never destroys it.
				res.Cells = append(res.Cells, cell)
				if !pierce {
					break
				}
				continue
			}
			if t == worldstate.SoftCrate {
				res.Cells = append(res.Cells, cell)
				res.DestroyedCrate = append(res.DestroyedCrate, cell)
				if !pierce {
					break
				}
				continue
			}
			res.Cells = append(res.Cells, cell)
		}
	}
	return res
}

// UnionCells merges affected-cell sets (used to detonate a chain
// simultaneously: all cell sets are unioned before destruction is
// applied, per spec.md §4.5).
func UnionCells(results ...BlastResult) []worldstate.Position {
	seen := make(map[worldstate.Position]struct{})
	var out []worldstate.Position
	for _, r := range results {
		for _, c := range r.Cells {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}

// UnionDestroyedCrates merges the destroyed-softcrate sets.
func UnionDestroyedCrates(results ...BlastResult) []worldstate.Position {
	seen := make(map[worldstate.Position]struct{})
	var out []worldstate.Position
	for _, r := range results {
		for _, c := range r.DestroyedCrate {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}
