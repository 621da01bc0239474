package systems

import (
	"sync"

	"blastradius/internal/bombsys"
	"blastradius/internal/eventbus"
	"blastradius/internal/worldstate"
)

// BombSystem has no dependencies (spec.md §4.4). It advances every
// bomb's timer each tick and hands the bombs that reach 0 to
// ExplosionSystem, which depends on it.
type BombSystem struct {
	mu         sync.Mutex
	nextID     worldstate.BombId
	detonating []worldstate.BombId
}

// NewBombSystem constructs an empty bomb system.
func NewBombSystem() *BombSystem { return &BombSystem{} }

func (s *BombSystem) Name() string           { return "bomb" }
func (s *BombSystem) Dependencies() []string { return nil }
func (s *BombSystem) Parallelizable() bool   { return false }

// AddBomb places a new bomb owned by ownerID at pos, deducting one from
// the owner's bomb count. Applies directly rather than queuing, since
// placement is a player decision the engine should reflect immediately
// (spec.md §4.4's `add_bomb`).
func (s *BombSystem) AddBomb(world *worldstate.World, bus *eventbus.Bus, ownerID worldstate.AgentId, pos worldstate.Position, timer, power uint8, pierce, remote, kickable bool) worldstate.BombId {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	b := worldstate.Bomb{
		ID:       id,
		Owner:    ownerID,
		Position: pos,
		Timer:    timer,
		Power:    power,
		Pierce:   pierce,
		Remote:   remote,
		Kickable: kickable,
	}
	world.ApplyDelta(worldstate.AddBombDelta(b))
	world.MutateAgent(ownerID, func(a *worldstate.Agent) {
		if a.BombsLeft > 0 {
			a.BombsLeft--
		}
	})
	bus.Broadcast(eventbus.GameEv(eventbus.GameEvent{
		Kind:     eventbus.GameBombPlaced,
		EntityID: ownerID,
		BombID:   id,
		Position: pos,
		Power:    power,
	}))
	return id
}

// DetonateRemote forces a remote-armed bomb's timer to 0 immediately
// (spec.md §4.5's `detonate_remote`).
func (s *BombSystem) DetonateRemote(world *worldstate.World, id worldstate.BombId) error {
	return bombsys.DetonateRemote(id, world.BombByID, world.MutateBomb)
}

// Detonating returns the bomb ids that reached timer 0 on the most
// recent Run, for ExplosionSystem to consume.
func (s *BombSystem) Detonating() []worldstate.BombId {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]worldstate.BombId(nil), s.detonating...)
}

// Run decrements every bomb's timer and records which bombs reached 0,
// per spec.md §4.5's `tick() -> [BombId]`. Timer mutation is applied
// directly (every bomb may change per tick, so a single GridDelta
// wouldn't express it — see DESIGN.md's Open Question).
func (s *BombSystem) Run(world *worldstate.World, bus *eventbus.Bus) (worldstate.GridDelta, bool, error) {
	var done []worldstate.BombId
	for _, b := range world.Bombs() {
		id := b.ID
		world.MutateBomb(id, func(bomb *worldstate.Bomb) {
			if bomb.Timer > 0 {
				bomb.Timer--
			}
		})
		updated, ok := world.BombByID(id)
		if ok && updated.Timer == 0 {
			done = append(done, id)
		}
	}

	s.mu.Lock()
	s.detonating = done
	s.mu.Unlock()

	return worldstate.GridDelta{}, false, nil
}
