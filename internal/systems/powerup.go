package systems

import (
	"math/rand"

	"blastradius/internal/eventbus"
	"blastradius/internal/worldstate"
)

// PowerUpSystem depends on explosion (spec.md §4.4): it places PowerUp
// tiles in a fraction of the soft-crate cells ExplosionSystem just
// cleared, per a configured spawn probability.
type PowerUpSystem struct {
	explosion   *ExplosionSystem
	probability float64
	rng         *rand.Rand
}

// NewPowerUpSystem constructs a powerup system that spawns a PowerUp on
// each newly cleared crate cell with the given probability in [0,1].
// rng is caller-supplied so the engine's deterministic replay seed
// governs powerup placement too (spec.md §9/§4.11).
func NewPowerUpSystem(explosion *ExplosionSystem, probability float64, rng *rand.Rand) *PowerUpSystem {
	return &PowerUpSystem{explosion: explosion, probability: probability, rng: rng}
}

func (s *PowerUpSystem) Name() string           { return "powerup" }
func (s *PowerUpSystem) Dependencies() []string { return []string{"explosion"} }
func (s *PowerUpSystem) Parallelizable() bool   { return false }

func (s *PowerUpSystem) Run(world *worldstate.World, bus *eventbus.Bus) (worldstate.GridDelta, bool, error) {
	cleared := s.explosion.ClearedCrates()
	for _, c := range cleared {
		t, ok := world.Tile(c.X, c.Y)
		// ExplosionSystem has already marked the cleared cell as Explosion;
		// anything else there means another delta claimed the cell.
		if !ok || (t != worldstate.Empty && t != worldstate.Explosion) {
			continue
		}
		if s.rng.Float64() >= s.probability {
			continue
		}
		world.ApplyDelta(worldstate.SetTileDelta(c.X, c.Y, worldstate.PowerUp))
	}
	return worldstate.GridDelta{}, false, nil
}
