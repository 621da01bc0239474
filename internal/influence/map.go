package influence

import (
	"golang.org/x/exp/slices"

	"blastradius/internal/worldstate"
)

// UpdateStrategy decides how a pending dirty-region set is expanded
// before recomputation (spec.md §4.6).
type UpdateStrategy interface {
	Expand(dirty []Region, width, height int) []Region
}

// FullUpdate recomputes the entire grid regardless of what's dirty —
// used on world (re)construction or after a structural change too large
// to track incrementally.
type FullUpdate struct{}

func (FullUpdate) Expand(_ []Region, width, height int) []Region {
	return []Region{{MinX: 0, MinY: 0, MaxX: width - 1, MaxY: height - 1}}
}

// IncrementalUpdate recomputes exactly the coalesced dirty regions.
type IncrementalUpdate struct{}

func (IncrementalUpdate) Expand(dirty []Region, _, _ int) []Region { return dirty }

// Map holds the Danger and Opportunity layers over a shared W×H grid
// (spec.md §4.6). Both layers share the same dirty-region bookkeeping:
// after mark_dirty, stored regions are pairwise non-overlapping — any
// region touching the new one is folded into its bounding-box union,
// transitively.
type Map struct {
	width, height int
	danger        *layer
	opportunity   *layer
	dirty         []Region
	strategy      UpdateStrategy
}

// New constructs an empty influence map over a width x height grid using
// strategy to expand dirty regions on Update (a Map refreshed through
// RefreshFromWorld should use FullUpdate; see there).
func New(width, height int, strategy UpdateStrategy) *Map {
	return &Map{
		width:       width,
		height:      height,
		danger:      newLayer(width, height),
		opportunity: newLayer(width, height),
		strategy:    strategy,
	}
}

// AddDangerSource registers a danger emitter and marks its bounding box
// dirty.
func (m *Map) AddDangerSource(s Source) {
	m.danger.addSource(s)
	m.MarkDirty(s.bbox())
}

// AddOpportunitySource registers an opportunity emitter and marks its
// bounding box dirty.
func (m *Map) AddOpportunitySource(s Source) {
	m.opportunity.addSource(s)
	m.MarkDirty(s.bbox())
}

// ClearSources drops every registered source from both layers (called
// each tick before re-deriving sources from the current world state —
// bombs and powerups don't persist as "sources" across ticks the way a
// static map feature would).
func (m *Map) ClearSources() {
	m.danger.sources = m.danger.sources[:0]
	m.opportunity.sources = m.opportunity.sources[:0]
}

// MarkDirty coalesces r with any overlapping stored region, replacing
// them with the bounding box of their union, transitively, maintaining
// the pairwise-non-overlapping invariant (spec.md §4.6).
func (m *Map) MarkDirty(r Region) {
	merged := r
	for {
		idx := slices.IndexFunc(m.dirty, func(existing Region) bool { return existing.overlaps(merged) })
		if idx < 0 {
			break
		}
		merged = merged.union(m.dirty[idx])
		m.dirty = slices.Delete(m.dirty, idx, idx+1)
	}
	m.dirty = append(m.dirty, merged)
}

// Update expands the dirty set per the configured UpdateStrategy, then
// recomputes each layer over every dirty region and clears the dirty
// set. world is accepted for API symmetry with spec.md §4.6's
// `update(world)`; sources are pushed in separately via AddDangerSource/
// AddOpportunitySource rather than derived here, keeping the map
// decoupled from worldstate's concrete layout.
func (m *Map) Update(_ *worldstate.World) {
	regions := m.strategy.Expand(m.dirty, m.width, m.height)
	for _, r := range regions {
		m.danger.recomputeRegion(r)
		m.opportunity.recomputeRegion(r)
	}
	m.dirty = m.dirty[:0]
}

// DangerAt returns the danger layer's value at (x,y); out-of-bounds is 0.
func (m *Map) DangerAt(x, y int) float64 { return float64(m.danger.at(x, y)) }

// OpportunityAt returns the opportunity layer's value at (x,y).
func (m *Map) OpportunityAt(x, y int) float64 { return float64(m.opportunity.at(x, y)) }

// IsSafePath reports whether every point has non-positive danger.
func (m *Map) IsSafePath(points []worldstate.Position) bool {
	for _, p := range points {
		if m.DangerAt(p.X, p.Y) > 0 {
			return false
		}
	}
	return true
}

// Width and Height expose the grid dimensions.
func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }

// dangerStrength scales a bomb's urgency: a bomb about to detonate is
// far more dangerous than one that just landed. 120 keeps a
// timer-0 bomb's own cell above the `is_walkable` threshold of 100
// (spec.md §4.7) with margin for neighboring cells' falloff.
func dangerStrength(timer uint8) float64 {
	return 120.0 / (1.0 + float64(timer))
}

const (
	opportunityPowerUpStrength = 50.0
	opportunityPowerUpRange    = 3.0
)

// RefreshFromWorld re-derives both layers' sources from the live world:
// every active bomb is a danger source (range = blast power + 1, strength
// scaled by how soon it detonates) and every PowerUp tile is an
// opportunity source. Previous sources are dropped first, then Update
// recomputes the affected regions. Call once per tick before bots read
// DangerAt/OpportunityAt.
//
// Because sources are rebuilt wholesale every call, a Map driven by
// RefreshFromWorld should use FullUpdate: a source that disappeared
// since the last call (a bomb that detonated) leaves no trace to mark
// its old region dirty, so IncrementalUpdate would leave stale values
// behind at cells no source reaches anymore.
func (m *Map) RefreshFromWorld(world *worldstate.World) {
	m.ClearSources()
	for _, b := range world.Bombs() {
		m.AddDangerSource(Source{
			X: b.Position.X, Y: b.Position.Y,
			Strength: dangerStrength(b.Timer),
			Range:    float64(b.Power) + 1,
		})
	}
	for y := 0; y < world.Height(); y++ {
		for x := 0; x < world.Width(); x++ {
			if t, ok := world.Tile(x, y); ok && t == worldstate.PowerUp {
				m.AddOpportunitySource(Source{X: x, Y: y, Strength: opportunityPowerUpStrength, Range: opportunityPowerUpRange})
			}
		}
	}
	m.Update(world)
}
