package pathing

import "blastradius/internal/worldstate"

func direction(a, b worldstate.Position) worldstate.Position {
	return worldstate.Position{X: sign(b.X - a.X), Y: sign(b.Y - a.Y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// SimplifyPath removes collinear midpoints: a waypoint is dropped when
// the direction into it equals the direction out of it (spec.md §4.7).
func SimplifyPath(path []worldstate.Position) []worldstate.Position {
	if len(path) < 3 {
		return append([]worldstate.Position(nil), path...)
	}
	out := []worldstate.Position{path[0]}
	for i := 1; i < len(path)-1; i++ {
		in := direction(path[i-1], path[i])
		outDir := direction(path[i], path[i+1])
		if in != outDir {
			out = append(out, path[i])
		}
	}
	out = append(out, path[len(path)-1])
	return out
}

// SmoothPath skips waypoints when the straight axis-aligned segment
// between the last kept point and a later point is entirely unobstructed
// (spec.md §4.7: "axis-aligned only for this core").
func SmoothPath(path []worldstate.Position, grid Grid) []worldstate.Position {
	if len(path) < 3 {
		return append([]worldstate.Position(nil), path...)
	}
	out := []worldstate.Position{path[0]}
	anchor := 0
	for i := 2; i < len(path); i++ {
		if !axisAlignedClear(path[anchor], path[i], grid) {
			out = append(out, path[i-1])
			anchor = i - 1
		}
	}
	out = append(out, path[len(path)-1])
	return out
}

// axisAlignedClear reports whether a and b share a row or column and
// every cell strictly between them is walkable.
func axisAlignedClear(a, b worldstate.Position, grid Grid) bool {
	if a.X != b.X && a.Y != b.Y {
		return false
	}
	d := direction(a, b)
	cur := worldstate.Position{X: a.X + d.X, Y: a.Y + d.Y}
	for cur != b {
		if !grid.IsWalkable(cur) {
			return false
		}
		cur = worldstate.Position{X: cur.X + d.X, Y: cur.Y + d.Y}
	}
	return true
}
