package bombsys

import "blastradius/internal/worldstate"

// DangerTiles returns the union of blast-cell sets of all active bombs.
func DangerTiles(bombs []worldstate.Bomb, q TileQuery) []worldstate.Position {
	results := make([]BlastResult, len(bombs))
	for i, b := range bombs {
		results[i] = Propagate(b.Position, b.Power, b.Pierce, q)
	}
	return UnionCells(results...)
}

// IsSafe reports whether pos is outside the danger set.
func IsSafe(pos worldstate.Position, bombs []worldstate.Bomb, q TileQuery) bool {
	danger := DangerTiles(bombs, q)
	for _, d := range danger {
		if d == pos {
			return false
		}
	}
	return true
}

// OpportunityTiles returns the subset of targets that are currently in
// danger (spec.md §4.5): targets ∩ danger_tiles(bombs).
func OpportunityTiles(targets []worldstate.Position, bombs []worldstate.Bomb, q TileQuery) []worldstate.Position {
	danger := make(map[worldstate.Position]struct{})
	for _, d := range DangerTiles(bombs, q) {
		danger[d] = struct{}{}
	}
	var out []worldstate.Position
	for _, t := range targets {
		if _, ok := danger[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
