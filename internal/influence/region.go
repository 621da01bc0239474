// Package influence implements the danger/opportunity influence maps
// bots read from when scoring goals and weighting pathfinding (spec.md
// §4.6).
package influence

// Region is an axis-aligned, inclusive bounding box of dirty grid cells.
type Region struct {
	MinX, MinY, MaxX, MaxY int
}

// overlaps reports whether r and o share at least one cell.
func (r Region) overlaps(o Region) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// union returns the bounding box containing both r and o.
func (r Region) union(o Region) Region {
	return Region{
		MinX: min(r.MinX, o.MinX),
		MinY: min(r.MinY, o.MinY),
		MaxX: max(r.MaxX, o.MaxX),
		MaxY: max(r.MaxY, o.MaxY),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
