package goals

import (
	"blastradius/internal/bombsys"
	"blastradius/internal/worldstate"
)

// BombPlacementStrategy names where/whether a goal's Plan should place
// a bomb relative to the bot's own escape routes, per the three named
// strategies in original_source's placement crate (§3A): Safe only
// places when an escape route survives the blast, Tactical places
// regardless of escape, Strategic places only when the blast is
// worthwhile (catches a crate or an enemy) and an escape route exists.
type BombPlacementStrategy uint8

const (
	Safe BombPlacementStrategy = iota
	Tactical
	Strategic
)

// hasEscapeRoute reports whether at least one open, non-blast neighbor
// of pos would remain reachable if a bomb of the given power were
// placed at pos right now.
func hasEscapeRoute(pos worldstate.Position, power uint8, s State) bool {
	blast := bombsys.Propagate(pos, power, false, s.Snapshot)
	inBlast := make(map[worldstate.Position]bool, len(blast.Cells))
	for _, c := range blast.Cells {
		inBlast[c] = true
	}
	for _, n := range neighbors4(pos) {
		t, ok := s.Snapshot.Tile(n.X, n.Y)
		if !ok || t == worldstate.Wall || t == worldstate.SoftCrate {
			continue
		}
		if !inBlast[n] {
			return true
		}
	}
	return false
}

// blastWorthwhile reports whether a bomb placed at pos with the given
// power would destroy at least one crate or threaten an enemy agent.
func blastWorthwhile(pos worldstate.Position, power uint8, self worldstate.AgentId, s State) bool {
	blast := bombsys.Propagate(pos, power, false, s.Snapshot)
	if len(blast.DestroyedCrate) > 0 {
		return true
	}
	cells := make(map[worldstate.Position]bool, len(blast.Cells))
	for _, c := range blast.Cells {
		cells[c] = true
	}
	for _, a := range s.Snapshot.Agents {
		if a.ID != self && cells[a.Position] {
			return true
		}
	}
	return false
}

// shouldPlaceBomb applies strategy's policy for placing a bomb of the
// given power at pos right now.
func shouldPlaceBomb(strategy BombPlacementStrategy, pos worldstate.Position, power uint8, self worldstate.AgentId, s State) bool {
	switch strategy {
	case Tactical:
		return true
	case Strategic:
		return blastWorthwhile(pos, power, self, s) && hasEscapeRoute(pos, power, s)
	default: // Safe
		return hasEscapeRoute(pos, power, s)
	}
}
