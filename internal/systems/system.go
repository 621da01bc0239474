// Package systems implements the per-tick work units declared in
// spec.md §4.4 (movement, player, bomb, explosion, powerup), wiring
// bombsys primitives into worldstate.World mutations and eventbus
// notifications.
package systems

import (
	"context"

	"blastradius/internal/eventbus"
	"blastradius/internal/scheduler"
	"blastradius/internal/worldstate"
)

// System is a named per-tick unit of work. Run returns a delta to apply
// (ok=false means no change), mirroring spec.md §4.4's
// `run(world, bus) -> Option<GridDelta>`.
type System interface {
	Name() string
	Dependencies() []string
	Parallelizable() bool
	Run(world *worldstate.World, bus *eventbus.Bus) (worldstate.GridDelta, bool, error)
}

// ApplyAndBroadcast runs sys, applies any resulting delta to world, and
// broadcasts it — the scheduler-level contract from spec.md §4.4 ("the
// scheduler applies the delta, records it, and broadcasts
// Event::Grid(delta)"), factored out so every Task closure shares it.
func ApplyAndBroadcast(sys System, world *worldstate.World, bus *eventbus.Bus) error {
	delta, ok, err := sys.Run(world, bus)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	world.ApplyDelta(delta)
	bus.Broadcast(eventbus.GridEvent(delta))
	return nil
}

// AsTask adapts a System into the scheduler.Task closure shape,
// capturing world and bus per spec.md §4.3's "closure capturing
// references to the world, event bus, and a system".
func AsTask(sys System, world *worldstate.World, bus *eventbus.Bus) scheduler.Task {
	return scheduler.Task{
		Name:           sys.Name(),
		Dependencies:   sys.Dependencies(),
		Parallelizable: sys.Parallelizable(),
		Run: func(ctx context.Context) error {
			return ApplyAndBroadcast(sys, world, bus)
		},
	}
}
