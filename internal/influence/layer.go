package influence

// Source is a point emitter of influence: a bomb (danger) or a
// powerup/weak-crate cluster (opportunity).
type Source struct {
	X, Y     int
	Strength float64
	Range    float64
}

func (s Source) bbox() Region {
	r := int(s.Range)
	return Region{MinX: s.X - r, MinY: s.Y - r, MaxX: s.X + r, MaxY: s.Y + r}
}

// manhattan is the L1 distance between two grid cells.
func manhattan(x1, y1, x2, y2 int) int {
	dx := x1 - x2
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y2
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// layer is a single W×H influence grid: row-major flat slice, the same
// cache-friendly layout as spatial.SpatialGrid's cell array (grounded on
// internal/game/spatial/grid.go), generalized from entity-index buckets
// to a per-cell scalar.
type layer struct {
	width, height int
	values        []float32
	sources       []Source
}

func newLayer(width, height int) *layer {
	return &layer{width: width, height: height, values: make([]float32, width*height)}
}

func (l *layer) idx(x, y int) int { return y*l.width + x }

func (l *layer) inBounds(x, y int) bool {
	return x >= 0 && x < l.width && y >= 0 && y < l.height
}

func (l *layer) at(x, y int) float32 {
	if !l.inBounds(x, y) {
		return 0
	}
	return l.values[l.idx(x, y)]
}

func (l *layer) addSource(s Source) {
	l.sources = append(l.sources, s)
}

// recomputeRegion recomputes every cell in r as the sum over sources of
// strength * max(0, 1 - dist/range) (spec.md §4.6).
func (l *layer) recomputeRegion(r Region) {
	minX, minY := clamp(r.MinX, 0, l.width-1), clamp(r.MinY, 0, l.height-1)
	maxX, maxY := clamp(r.MaxX, 0, l.width-1), clamp(r.MaxY, 0, l.height-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			var total float64
			for _, s := range l.sources {
				if s.Range <= 0 {
					continue
				}
				dist := float64(manhattan(x, y, s.X, s.Y))
				contribution := s.Strength * max(0, 1-dist/s.Range)
				total += contribution
			}
			l.values[l.idx(x, y)] = float32(total)
		}
	}
}
