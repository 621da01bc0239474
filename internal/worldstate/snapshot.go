package worldstate

import "sync/atomic"

// Snapshot is an immutable, consistent view of (tiles, bombs, agents,
// version) published atomically after each successful delta application.
// Tiles, bombs and agents are each copied when the snapshot is published
// (see SnapshotPool.Publish), so later World mutations never show through.
type Snapshot struct {
	Width   int
	Height  int
	Tiles   []Tile
	Bombs   []Bomb
	Agents  []Agent
	Version uint64
}

// TileAt is a bounds-checked convenience accessor taking an explicit
// width, for callers that don't want to carry a *Snapshot around.
func (s *Snapshot) TileAt(width, x, y int) (Tile, bool) {
	if s == nil || x < 0 || y < 0 {
		return Empty, false
	}
	i := y*width + x
	if i < 0 || i >= len(s.Tiles) {
		return Empty, false
	}
	return s.Tiles[i], true
}

// Tile satisfies the same read surface as *World.Tile, letting bombsys,
// influence, and pathing consume a published Snapshot without knowing
// it's a Snapshot rather than the live World.
func (s *Snapshot) Tile(x, y int) (Tile, bool) {
	return s.TileAt(s.Width, x, y)
}

// SnapshotPool publishes snapshots via atomic pointer swap: readers that
// hold an older snapshot remain valid (the Go GC reclaims it once the
// last reference drops, standing in for the hazard-pointer/epoch scheme
// spec.md §9 suggests); writers never block readers and vice versa.
type SnapshotPool struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotPool creates an empty pool.
func NewSnapshotPool() *SnapshotPool {
	p := &SnapshotPool{}
	p.current.Store(&Snapshot{})
	return p
}

// Publish builds a new immutable snapshot from the given live state and
// installs it atomically. Tiles and entity vectors are copied so that a
// reader holding an older snapshot is unaffected by the World mutating
// its live arrays in place on the next delta (spec.md §4.1: "old
// snapshots remain valid").
func (p *SnapshotPool) Publish(width, height int, tiles []Tile, bombs []Bomb, agents []Agent, version uint64) {
	snap := &Snapshot{
		Width:   width,
		Height:  height,
		Tiles:   append([]Tile(nil), tiles...),
		Bombs:   append([]Bomb(nil), bombs...),
		Agents:  append([]Agent(nil), agents...),
		Version: version,
	}
	p.current.Store(snap)
}

// Acquire returns the latest published snapshot.
func (p *SnapshotPool) Acquire() *Snapshot {
	return p.current.Load()
}
