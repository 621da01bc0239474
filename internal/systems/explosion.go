package systems

import (
	"sync"

	"blastradius/internal/bombsys"
	"blastradius/internal/eventbus"
	"blastradius/internal/worldstate"
)

// explosionAnimTicks is how long a blown-out cell renders as Explosion
// before reverting to Empty (spec.md §4.4: "a 3-tick animation timer").
const explosionAnimTicks = 3

// ExplosionSystem depends on bomb (spec.md §4.4). It resolves the bombs
// BombSystem marked as detonating this tick, including any bomb swept
// into the same chain, applies destruction, restores bomb counts, and
// tracks the transient Explosion-tile animation.
type ExplosionSystem struct {
	bombs  *BombSystem
	player *PlayerSystem

	mu     sync.Mutex
	fading map[worldstate.Position]uint8 // cell -> ticks remaining as Explosion

	clearedMu sync.Mutex
	cleared   []worldstate.Position // soft crates destroyed this tick, for PowerUpSystem
}

// NewExplosionSystem wires an ExplosionSystem to the bomb and player
// systems it collaborates with.
func NewExplosionSystem(bombs *BombSystem, player *PlayerSystem) *ExplosionSystem {
	return &ExplosionSystem{bombs: bombs, player: player, fading: make(map[worldstate.Position]uint8)}
}

func (s *ExplosionSystem) Name() string           { return "explosion" }
func (s *ExplosionSystem) Dependencies() []string { return []string{"bomb"} }
func (s *ExplosionSystem) Parallelizable() bool   { return false }

// ClearedCrates returns the soft-crate positions destroyed by the most
// recent Run, for PowerUpSystem to consider.
func (s *ExplosionSystem) ClearedCrates() []worldstate.Position {
	s.clearedMu.Lock()
	defer s.clearedMu.Unlock()
	return append([]worldstate.Position(nil), s.cleared...)
}

func (s *ExplosionSystem) Run(world *worldstate.World, bus *eventbus.Bus) (worldstate.GridDelta, bool, error) {
	s.ageFades(world)

	s.clearedMu.Lock()
	s.cleared = nil
	s.clearedMu.Unlock()

	detonating := s.bombs.Detonating()
	if len(detonating) == 0 {
		return worldstate.GridDelta{}, false, nil
	}
	detonatingSet := make(map[worldstate.BombId]struct{}, len(detonating))
	for _, id := range detonating {
		detonatingSet[id] = struct{}{}
	}

	chains := bombsys.DetectChains(world.Bombs())
	for _, chain := range chains {
		if !chainOverlaps(chain, detonatingSet) {
			continue
		}
		s.resolveChain(world, bus, chain)
	}
	return worldstate.GridDelta{}, false, nil
}

func chainOverlaps(chain worldstate.BombChain, detonating map[worldstate.BombId]struct{}) bool {
	for _, id := range chain.Bombs {
		if _, ok := detonating[id]; ok {
			return true
		}
	}
	return false
}

// resolveChain detonates every bomb in the chain simultaneously: all
// affected-cell sets are unioned before destruction is applied (spec.md
// §4.5), then that union's destruction/removal/animation is applied
// once.
func (s *ExplosionSystem) resolveChain(world *worldstate.World, bus *eventbus.Bus, chain worldstate.BombChain) {
	var results []bombsys.BlastResult
	var positions []worldstate.Position
	positionByID := make(map[worldstate.BombId]worldstate.Position, len(chain.Bombs))

	for _, id := range chain.Bombs {
		b, ok := world.BombByID(id)
		if !ok {
			continue
		}
		results = append(results, bombsys.Propagate(b.Position, b.Power, b.Pierce, world))
		positions = append(positions, b.Position)
		positionByID[id] = b.Position

		world.MutateAgent(b.Owner, func(a *worldstate.Agent) {
			if a.BombsLeft < 8 {
				a.BombsLeft++
			}
		})
	}
	if len(results) == 0 {
		return
	}

	cells := bombsys.UnionCells(results...)
	crates := bombsys.UnionDestroyedCrates(results...)

	for _, c := range crates {
		world.ApplyDelta(worldstate.SetTileDelta(c.X, c.Y, worldstate.Empty))
	}
	s.clearedMu.Lock()
	s.cleared = append(s.cleared, crates...)
	s.clearedMu.Unlock()
	s.markExplosion(world, cells)

	s.removeOverlappingAgents(world, bus, cells)

	for _, id := range chain.Bombs {
		world.RemoveBomb(id)
	}

	bus.Broadcast(eventbus.BombEv(eventbus.BombEvent{Kind: eventbus.BombExplodedEv, Position: positionByID[chain.TriggerBomb]}))
	if len(chain.Bombs) > 1 {
		bus.Broadcast(eventbus.BombEv(eventbus.BombEvent{Kind: eventbus.BombChainReactionEv, Positions: positions}))
	}
}

func (s *ExplosionSystem) markExplosion(world *worldstate.World, cells []worldstate.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cells {
		if t, ok := world.Tile(c.X, c.Y); ok && t == worldstate.Wall {
			continue
		}
		world.ApplyDelta(worldstate.SetTileDelta(c.X, c.Y, worldstate.Explosion))
		s.fading[c] = explosionAnimTicks
	}
}

// ageFades decrements every pending Explosion tile's remaining ticks and
// reverts it to Empty once it reaches 0.
func (s *ExplosionSystem) ageFades(world *worldstate.World) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c, ticks := range s.fading {
		if ticks <= 1 {
			delete(s.fading, c)
			if t, ok := world.Tile(c.X, c.Y); ok && t == worldstate.Explosion {
				world.ApplyDelta(worldstate.SetTileDelta(c.X, c.Y, worldstate.Empty))
			}
			continue
		}
		s.fading[c] = ticks - 1
	}
}

func (s *ExplosionSystem) removeOverlappingAgents(world *worldstate.World, bus *eventbus.Bus, cells []worldstate.Position) {
	cellSet := make(map[worldstate.Position]struct{}, len(cells))
	for _, c := range cells {
		cellSet[c] = struct{}{}
	}
	var slain []worldstate.Agent
	for _, a := range world.Agents() {
		if _, hit := cellSet[a.Position]; hit {
			slain = append(slain, a)
		}
	}
	for _, a := range slain {
		world.ApplyDelta(worldstate.RemoveAgentDelta(a.ID))
		if a.Lives > 1 {
			a.Lives--
			s.player.QueueRespawn(a)
		} else {
			bus.Broadcast(eventbus.GameEv(eventbus.GameEvent{Kind: eventbus.GameAgentEliminated, EntityID: a.ID}))
		}
	}
}
