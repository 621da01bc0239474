package systems

import (
	"sync"

	"blastradius/internal/eventbus"
	"blastradius/internal/worldstate"
)

// PlayerSystem depends on movement (spec.md §4.4) and performs agent
// bookkeeping: respawning agents that still have lives remaining after
// an elimination. ExplosionSystem queues respawn requests for agents it
// removes; PlayerSystem drains the queue on the following tick (its
// declared dependency is only on movement, so it shares a batch with
// explosion and runs before it in registration order, which means a
// respawn lands one tick after the elimination that caused it).
type PlayerSystem struct {
	mu           sync.Mutex
	pending      []worldstate.Agent
	nextSpawnIdx int
}

// NewPlayerSystem constructs an empty player system.
func NewPlayerSystem() *PlayerSystem { return &PlayerSystem{} }

func (s *PlayerSystem) Name() string           { return "player" }
func (s *PlayerSystem) Dependencies() []string { return []string{"movement"} }
func (s *PlayerSystem) Parallelizable() bool   { return false }

// QueueRespawn enqueues an agent (with Lives already decremented by the
// caller) to be re-added at the next available spawn slot.
func (s *PlayerSystem) QueueRespawn(a worldstate.Agent) {
	s.mu.Lock()
	s.pending = append(s.pending, a)
	s.mu.Unlock()
}

func (s *PlayerSystem) Run(world *worldstate.World, bus *eventbus.Bus) (worldstate.GridDelta, bool, error) {
	s.mu.Lock()
	reqs := s.pending
	s.pending = nil
	s.mu.Unlock()

	slots := worldstate.SpawnSlots(world.Width(), world.Height())
	if len(slots) == 0 {
		return worldstate.GridDelta{}, false, nil
	}

	occupied := func(p worldstate.Position) bool {
		for _, other := range world.Agents() {
			if other.Position == p {
				return true
			}
		}
		return false
	}
	for _, a := range reqs {
		a.Position = slots[s.nextSpawnIdx%len(slots)]
		s.nextSpawnIdx++
		for tries := 1; tries < len(slots) && occupied(a.Position); tries++ {
			a.Position = slots[s.nextSpawnIdx%len(slots)]
			s.nextSpawnIdx++
		}
		a.BombsLeft = 1
		world.ApplyDelta(worldstate.AddAgentDelta(a))
		bus.Broadcast(eventbus.GameEv(eventbus.GameEvent{
			Kind:     eventbus.GameAgentRespawned,
			EntityID: a.ID,
			Position: a.Position,
		}))
	}
	return worldstate.GridDelta{}, false, nil
}
