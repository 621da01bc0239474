package goals

import (
	"blastradius/internal/bombsys"
	"blastradius/internal/worldstate"
)

func manhattan(a, b worldstate.Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func nearestAgent(self worldstate.Agent, agents []worldstate.Agent) (worldstate.Agent, int, bool) {
	best := worldstate.Agent{}
	bestDist := -1
	found := false
	for _, a := range agents {
		if a.ID == self.ID {
			continue
		}
		d := manhattan(self.Position, a.Position)
		if !found || d < bestDist {
			best, bestDist, found = a, d, true
		}
	}
	return best, bestDist, found
}

func nearestTile(self worldstate.Agent, snap *worldstate.Snapshot, want worldstate.Tile) (worldstate.Position, int, bool) {
	best := worldstate.Position{}
	bestDist := -1
	found := false
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			if t, ok := snap.Tile(x, y); ok && t == want {
				d := manhattan(self.Position, worldstate.Position{X: x, Y: y})
				if !found || d < bestDist {
					best, bestDist, found = worldstate.Position{X: x, Y: y}, d, true
				}
			}
		}
	}
	return best, bestDist, found
}

func stepToward(from, to worldstate.Position) worldstate.Position {
	d := worldstate.Position{}
	if to.X > from.X {
		d.X = 1
	} else if to.X < from.X {
		d.X = -1
	} else if to.Y > from.Y {
		d.Y = 1
	} else if to.Y < from.Y {
		d.Y = -1
	}
	return worldstate.Position{X: from.X + d.X, Y: from.Y + d.Y}
}

// AvoidDangerGoal steers away from bombs close enough to threaten the
// bot. The hard escape-move case (spec.md §4.9 step 2) is handled
// directly by the bot's decision pipeline before goals are even
// consulted; this goal covers the softer 75-priority case the pipeline
// leaves to the planner.
type AvoidDangerGoal struct{}

func (AvoidDangerGoal) Type() Type { return AvoidDanger }

func (AvoidDangerGoal) Priority(s State) float64 {
	self, ok := s.Self()
	if !ok {
		return 0
	}
	immediate, within := false, false
	for _, b := range s.Snapshot.Bombs {
		if b.Timer <= 2 {
			res := bombsys.Propagate(b.Position, b.Power, b.Pierce, s.Snapshot)
			for _, c := range res.Cells {
				if c == self.Position {
					immediate = true
				}
			}
		}
		if manhattan(b.Position, self.Position) <= int(b.Power)+1 {
			within = true
		}
	}
	if immediate {
		return 100
	}
	if within {
		return 75
	}
	return 0
}

func (g AvoidDangerGoal) Achievable(s State) bool { return g.Priority(s) > 0 }

func (g AvoidDangerGoal) Progress(s State) float64 {
	if bombsys.IsSafe(mustSelf(s).Position, s.Snapshot.Bombs, s.Snapshot) {
		return 1
	}
	return 0
}

func (g AvoidDangerGoal) Completed(s State) bool {
	self, ok := s.Self()
	return ok && bombsys.IsSafe(self.Position, s.Snapshot.Bombs, s.Snapshot)
}

func (g AvoidDangerGoal) Plan(s State) []Action {
	self, ok := s.Self()
	if !ok {
		return []Action{{Kind: ActionWait}}
	}
	best := self.Position
	bestDist := -1
	for _, n := range neighbors4(self.Position) {
		if t, ok := s.Snapshot.Tile(n.X, n.Y); !ok || t == worldstate.Wall || t == worldstate.SoftCrate {
			continue
		}
		d := nearestBombDistance(n, s.Snapshot.Bombs)
		if d > bestDist {
			best, bestDist = n, d
		}
	}
	return []Action{{Kind: ActionMoveTowards, Target: best}}
}

func nearestBombDistance(p worldstate.Position, bombs []worldstate.Bomb) int {
	best := -1
	for _, b := range bombs {
		d := manhattan(p, b.Position)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 1 << 20
	}
	return best
}

func neighbors4(p worldstate.Position) []worldstate.Position {
	return []worldstate.Position{
		{X: p.X, Y: p.Y - 1}, {X: p.X, Y: p.Y + 1},
		{X: p.X - 1, Y: p.Y}, {X: p.X + 1, Y: p.Y},
	}
}

func mustSelf(s State) worldstate.Agent {
	a, _ := s.Self()
	return a
}

// AttackEnemyGoal pursues the nearest other agent. Strategy governs
// whether a PlaceBomb action is withheld until an escape route exists
// (Safe, the zero value), issued unconditionally (Tactical), or issued
// only when the blast is worthwhile and escapable (Strategic).
type AttackEnemyGoal struct {
	Strategy BombPlacementStrategy
}

func (AttackEnemyGoal) Type() Type { return AttackEnemy }

func attackPriority(d int) float64 {
	switch {
	case d <= 4:
		return 90 - 10*float64(d)
	case d <= 8:
		return 50 - 5*float64(d-4)
	default:
		return 20
	}
}

func (AttackEnemyGoal) Priority(s State) float64 {
	self, ok := s.Self()
	if !ok {
		return 0
	}
	_, d, found := nearestAgent(self, s.Snapshot.Agents)
	if !found {
		return 0
	}
	return attackPriority(d)
}

func (g AttackEnemyGoal) Achievable(s State) bool {
	self, ok := s.Self()
	if !ok {
		return false
	}
	_, _, found := nearestAgent(self, s.Snapshot.Agents)
	return found
}

func (g AttackEnemyGoal) Progress(s State) float64 {
	self, ok := s.Self()
	if !ok {
		return 0
	}
	_, d, found := nearestAgent(self, s.Snapshot.Agents)
	if !found {
		return 1
	}
	if d > 8 {
		return 0
	}
	return 1 - float64(d)/8
}

func (g AttackEnemyGoal) Completed(s State) bool {
	self, ok := s.Self()
	if !ok {
		return true
	}
	_, d, found := nearestAgent(self, s.Snapshot.Agents)
	return !found || d > 8
}

func (g AttackEnemyGoal) Plan(s State) []Action {
	self, ok := s.Self()
	if !ok {
		return []Action{{Kind: ActionWait}}
	}
	target, d, found := nearestAgent(self, s.Snapshot.Agents)
	if !found {
		return []Action{{Kind: ActionWait}}
	}
	if d <= 1 {
		if shouldPlaceBomb(g.Strategy, self.Position, self.Power, self.ID, s) {
			return []Action{{Kind: ActionPlaceBomb}}
		}
		return []Action{{Kind: ActionWait}}
	}
	return []Action{{Kind: ActionMoveTowards, Target: stepToward(self.Position, target.Position)}}
}

// DestroyBlocksGoal pursues and detonates the nearest reachable soft
// crate. Strategy governs bomb placement the same way as
// AttackEnemyGoal's.
type DestroyBlocksGoal struct {
	Strategy BombPlacementStrategy
}

func (DestroyBlocksGoal) Type() Type { return DestroyBlocks }

func (DestroyBlocksGoal) Priority(s State) float64 {
	self, ok := s.Self()
	if !ok {
		return 0
	}
	if _, _, found := nearestTile(self, s.Snapshot, worldstate.SoftCrate); found {
		return 60
	}
	return 0
}

func (g DestroyBlocksGoal) Achievable(s State) bool { return g.Priority(s) > 0 }

func (g DestroyBlocksGoal) Progress(s State) float64 {
	self, ok := s.Self()
	if !ok {
		return 0
	}
	_, d, found := nearestTile(self, s.Snapshot, worldstate.SoftCrate)
	if !found {
		return 1
	}
	if d == 0 {
		return 1
	}
	return 1 - 1.0/float64(d+1)
}

func (g DestroyBlocksGoal) Completed(s State) bool {
	self, ok := s.Self()
	if !ok {
		return true
	}
	_, d, found := nearestTile(self, s.Snapshot, worldstate.SoftCrate)
	return !found || d <= 1
}

func (g DestroyBlocksGoal) Plan(s State) []Action {
	self, ok := s.Self()
	if !ok {
		return []Action{{Kind: ActionWait}}
	}
	target, d, found := nearestTile(self, s.Snapshot, worldstate.SoftCrate)
	if !found {
		return []Action{{Kind: ActionWait}}
	}
	if d <= 1 {
		if shouldPlaceBomb(g.Strategy, self.Position, self.Power, self.ID, s) {
			return []Action{{Kind: ActionPlaceBomb}}
		}
		return []Action{{Kind: ActionWait}}
	}
	return []Action{{Kind: ActionMoveTowards, Target: stepToward(self.Position, target)}}
}

// CollectPowerUpGoal pursues the nearest PowerUp tile.
type CollectPowerUpGoal struct{}

func (CollectPowerUpGoal) Type() Type { return CollectPowerUp }

func (CollectPowerUpGoal) Priority(s State) float64 {
	self, ok := s.Self()
	if !ok {
		return 0
	}
	if _, _, found := nearestTile(self, s.Snapshot, worldstate.PowerUp); found {
		return 50
	}
	return 0
}

func (g CollectPowerUpGoal) Achievable(s State) bool { return g.Priority(s) > 0 }

func (g CollectPowerUpGoal) Progress(s State) float64 {
	self, ok := s.Self()
	if !ok {
		return 0
	}
	_, d, found := nearestTile(self, s.Snapshot, worldstate.PowerUp)
	if !found {
		return 1
	}
	if d == 0 {
		return 1
	}
	return 1 - 1.0/float64(d+1)
}

func (g CollectPowerUpGoal) Completed(s State) bool {
	self, ok := s.Self()
	if !ok {
		return true
	}
	_, d, found := nearestTile(self, s.Snapshot, worldstate.PowerUp)
	return !found || d == 0
}

func (g CollectPowerUpGoal) Plan(s State) []Action {
	self, ok := s.Self()
	if !ok {
		return []Action{{Kind: ActionWait}}
	}
	target, d, found := nearestTile(self, s.Snapshot, worldstate.PowerUp)
	if !found {
		return []Action{{Kind: ActionWait}}
	}
	if d == 0 {
		return []Action{{Kind: ActionWait}}
	}
	return []Action{{Kind: ActionMoveTowards, Target: stepToward(self.Position, target)}}
}
