// Package pathing implements A* (canonical) plus JPS/D*-Lite placeholder
// variants, an LRU/FIFO path cache, and path postprocessing (spec.md
// §4.7).
package pathing

import "blastradius/internal/worldstate"

// Grid is the abstract terrain A* walks, matching spec.md §4.7's
// `width()`, `height()`, `is_walkable(p)`, `influence(p)`, `neighbors(p)`.
type Grid interface {
	Width() int
	Height() int
	IsWalkable(p worldstate.Position) bool
	Influence(p worldstate.Position) int
	Neighbors(p worldstate.Position) []worldstate.Position
}

// TileQuery is the minimal read surface WorldGrid needs from terrain
// (satisfied by *worldstate.World and *worldstate.Snapshot).
type TileQuery interface {
	Tile(x, y int) (worldstate.Tile, bool)
}

// DangerQuery is the minimal read surface WorldGrid needs from an
// influence map (satisfied by *influence.Map).
type DangerQuery interface {
	DangerAt(x, y int) float64
}

// dangerWalkThreshold is the point at which a cell is considered
// impassable purely from danger, independent of terrain: `is_walkable =
// danger_at(p) < 100` (spec.md §4.7).
const dangerWalkThreshold = 100

// WorldGrid adapts a terrain query and a danger layer into the Grid
// interface the bot's pathfinder walks: walls and soft crates block
// regardless of danger, and a cell hot enough from nearby bombs also
// blocks even if physically open.
type WorldGrid struct {
	width, height int
	terrain       TileQuery
	danger        DangerQuery
}

// NewWorldGrid constructs a Grid adapter over the given terrain and
// danger sources.
func NewWorldGrid(width, height int, terrain TileQuery, danger DangerQuery) *WorldGrid {
	return &WorldGrid{width: width, height: height, terrain: terrain, danger: danger}
}

func (g *WorldGrid) Width() int  { return g.width }
func (g *WorldGrid) Height() int { return g.height }

func (g *WorldGrid) IsWalkable(p worldstate.Position) bool {
	t, ok := g.terrain.Tile(p.X, p.Y)
	if !ok || t == worldstate.Wall || t == worldstate.SoftCrate {
		return false
	}
	return g.danger.DangerAt(p.X, p.Y) < dangerWalkThreshold
}

// Influence returns the danger value at p as the integer cost bump A*
// adds to every step landing on it: `influence(p) = danger_at(p) as i32`.
func (g *WorldGrid) Influence(p worldstate.Position) int {
	return int(g.danger.DangerAt(p.X, p.Y))
}

var cardinalSteps = []worldstate.Position{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}

func (g *WorldGrid) Neighbors(p worldstate.Position) []worldstate.Position {
	out := make([]worldstate.Position, 0, 4)
	for _, d := range cardinalSteps {
		n := worldstate.Position{X: p.X + d.X, Y: p.Y + d.Y}
		if n.X < 0 || n.Y < 0 || n.X >= g.width || n.Y >= g.height {
			continue
		}
		out = append(out, n)
	}
	return out
}
