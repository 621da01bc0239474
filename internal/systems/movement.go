package systems

import (
	"sync"

	"blastradius/internal/eventbus"
	"blastradius/internal/worldstate"
)

// moveRequest is a queued, not-yet-validated agent move.
type moveRequest struct {
	AgentID worldstate.AgentId
	Dir     eventbus.Direction
}

func directionDelta(d eventbus.Direction) worldstate.Position {
	switch d {
	case eventbus.Up:
		return worldstate.Position{X: 0, Y: -1}
	case eventbus.Down:
		return worldstate.Position{X: 0, Y: 1}
	case eventbus.Left:
		return worldstate.Position{X: -1, Y: 0}
	case eventbus.Right:
		return worldstate.Position{X: 1, Y: 0}
	default:
		return worldstate.Position{}
	}
}

// MovementSystem has no dependencies and is not parallelizable (spec.md
// §4.4). It consumes queued agent-move validations rather than running
// any AI itself — bots (internal/bot) feed it via QueueMove from their
// decision pipeline output.
//
// A single tick can resolve many queued moves, so MovementSystem applies
// its deltas directly through World rather than returning the single
// GridDelta the scheduler would otherwise apply — see DESIGN.md's Open
// Question on multi-effect systems.
type MovementSystem struct {
	mu      sync.Mutex
	pending []moveRequest
}

// NewMovementSystem constructs an empty movement system.
func NewMovementSystem() *MovementSystem { return &MovementSystem{} }

func (s *MovementSystem) Name() string           { return "movement" }
func (s *MovementSystem) Dependencies() []string { return nil }
func (s *MovementSystem) Parallelizable() bool   { return false }

// QueueMove enqueues an agent move for the next Run call.
func (s *MovementSystem) QueueMove(id worldstate.AgentId, dir eventbus.Direction) {
	s.mu.Lock()
	s.pending = append(s.pending, moveRequest{AgentID: id, Dir: dir})
	s.mu.Unlock()
}

// bombBlocks reports whether a bomb currently occupies the destination
// tile; an agent cannot walk onto a bomb (it must wait, kick, or detonate
// it remotely).
func bombBlocks(bombs []worldstate.Bomb, p worldstate.Position) bool {
	for _, b := range bombs {
		if b.Position == p {
			return true
		}
	}
	return false
}

func (s *MovementSystem) Run(world *worldstate.World, bus *eventbus.Bus) (worldstate.GridDelta, bool, error) {
	s.mu.Lock()
	reqs := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, req := range reqs {
		agent, ok := world.AgentByID(req.AgentID)
		if !ok {
			continue
		}
		delta := directionDelta(req.Dir)
		dest := worldstate.Position{X: agent.Position.X + delta.X, Y: agent.Position.Y + delta.Y}

		t, inBounds := world.Tile(dest.X, dest.Y)
		if !inBounds || t == worldstate.Wall || t == worldstate.SoftCrate {
			continue
		}
		if bombBlocks(world.Bombs(), dest) {
			continue
		}
		occupied := false
		for _, other := range world.Agents() {
			if other.ID != req.AgentID && other.Position == dest {
				occupied = true
				break
			}
		}
		if occupied {
			continue
		}

		d := worldstate.MoveAgentDelta(req.AgentID, dest)
		world.ApplyDelta(d)
		bus.Broadcast(eventbus.GridEvent(d))
	}
	return worldstate.GridDelta{}, false, nil
}
