package goals

import (
	"testing"

	"blastradius/internal/worldstate"
)

func flatSnapshot(w, h int) *worldstate.Snapshot {
	tiles := make([]worldstate.Tile, w*h)
	return &worldstate.Snapshot{Width: w, Height: h, Tiles: tiles}
}

func setTile(s *worldstate.Snapshot, x, y int, t worldstate.Tile) {
	s.Tiles[y*s.Width+x] = t
}

func TestAvoidDangerPriorityImmediateBlast(t *testing.T) {
	snap := flatSnapshot(7, 7)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 3, Y: 3}}}
	snap.Bombs = []worldstate.Bomb{{ID: 1, Position: worldstate.Position{X: 1, Y: 3}, Timer: 1, Power: 3}}
	s := State{Snapshot: snap, BotID: 1}

	g := AvoidDangerGoal{}
	if got := g.Priority(s); got != 100 {
		t.Fatalf("expected priority 100 for immediate blast threat, got %v", got)
	}
}

func TestAvoidDangerPriorityWithinRange(t *testing.T) {
	snap := flatSnapshot(10, 3)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 5, Y: 1}}}
	snap.Bombs = []worldstate.Bomb{{ID: 1, Position: worldstate.Position{X: 2, Y: 1}, Timer: 8, Power: 2}}
	s := State{Snapshot: snap, BotID: 1}

	g := AvoidDangerGoal{}
	if got := g.Priority(s); got != 75 {
		t.Fatalf("expected priority 75 when within power+1 but timer not imminent, got %v", got)
	}
}

func TestAvoidDangerPriorityZeroWhenNoBombs(t *testing.T) {
	snap := flatSnapshot(5, 5)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 2, Y: 2}}}
	s := State{Snapshot: snap, BotID: 1}

	if got := (AvoidDangerGoal{}).Priority(s); got != 0 {
		t.Fatalf("expected priority 0 with no bombs, got %v", got)
	}
}

func TestAvoidDangerPlanPrefersFartherNeighbor(t *testing.T) {
	snap := flatSnapshot(5, 3)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 2, Y: 1}}}
	snap.Bombs = []worldstate.Bomb{{ID: 1, Position: worldstate.Position{X: 1, Y: 1}, Timer: 1, Power: 1}}
	s := State{Snapshot: snap, BotID: 1}

	actions := (AvoidDangerGoal{}).Plan(s)
	if len(actions) != 1 || actions[0].Kind != ActionMoveTowards {
		t.Fatalf("expected a single MoveTowards action, got %v", actions)
	}
	bombPos := worldstate.Position{X: 1, Y: 1}
	agentPos := worldstate.Position{X: 2, Y: 1}
	if manhattan(actions[0].Target, bombPos) <= manhattan(agentPos, bombPos) {
		t.Fatalf("expected plan to move to a cell farther from the bomb, got %v", actions[0].Target)
	}
}

func TestAttackEnemyPriorityDecaysWithDistance(t *testing.T) {
	snap := flatSnapshot(20, 1)
	snap.Agents = []worldstate.Agent{
		{ID: 1, Position: worldstate.Position{X: 0, Y: 0}},
		{ID: 2, Position: worldstate.Position{X: 2, Y: 0}},
	}
	s := State{Snapshot: snap, BotID: 1}
	g := AttackEnemyGoal{}
	if got := g.Priority(s); got != 70 {
		t.Fatalf("expected 90-10*2=70 at distance 2, got %v", got)
	}

	snap.Agents[1].Position = worldstate.Position{X: 6, Y: 0}
	if got := g.Priority(s); got != 40 {
		t.Fatalf("expected 50-5*(6-4)=40 at distance 6, got %v", got)
	}

	snap.Agents[1].Position = worldstate.Position{X: 15, Y: 0}
	if got := g.Priority(s); got != 20 {
		t.Fatalf("expected flat 20 beyond distance 8, got %v", got)
	}
}

func TestAttackEnemyPlanPlacesBombWhenAdjacent(t *testing.T) {
	snap := flatSnapshot(5, 1)
	snap.Agents = []worldstate.Agent{
		{ID: 1, Position: worldstate.Position{X: 1, Y: 0}},
		{ID: 2, Position: worldstate.Position{X: 2, Y: 0}},
	}
	s := State{Snapshot: snap, BotID: 1}
	actions := (AttackEnemyGoal{}).Plan(s)
	if len(actions) != 1 || actions[0].Kind != ActionPlaceBomb {
		t.Fatalf("expected PlaceBomb when adjacent to enemy, got %v", actions)
	}
}

func TestDestroyBlocksGoalTargetsNearestCrate(t *testing.T) {
	snap := flatSnapshot(5, 5)
	setTile(snap, 4, 0, worldstate.SoftCrate)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 0, Y: 0}}}
	s := State{Snapshot: snap, BotID: 1}

	g := DestroyBlocksGoal{}
	if got := g.Priority(s); got != 60 {
		t.Fatalf("expected priority 60 when a crate exists, got %v", got)
	}
	actions := g.Plan(s)
	if actions[0].Kind != ActionMoveTowards {
		t.Fatalf("expected MoveTowards the crate, got %v", actions)
	}
}

func TestCollectPowerUpGoalCompletesOnArrival(t *testing.T) {
	snap := flatSnapshot(3, 1)
	setTile(snap, 1, 0, worldstate.PowerUp)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 1, Y: 0}}}
	s := State{Snapshot: snap, BotID: 1}

	g := CollectPowerUpGoal{}
	if !g.Completed(s) {
		t.Fatal("expected goal completed when standing on the power-up")
	}
}

func TestPlannerReevaluatePicksHighestScore(t *testing.T) {
	snap := flatSnapshot(10, 3)
	snap.Agents = []worldstate.Agent{
		{ID: 1, Position: worldstate.Position{X: 5, Y: 1}},
		{ID: 2, Position: worldstate.Position{X: 9, Y: 1}},
	}
	snap.Bombs = []worldstate.Bomb{{ID: 1, Position: worldstate.Position{X: 4, Y: 1}, Timer: 1, Power: 2}}
	s := State{Snapshot: snap, BotID: 1}

	p := NewPlanner([]Weighted{
		{AvoidDangerGoal{}, 1},
		{AttackEnemyGoal{}, 1},
		{DestroyBlocksGoal{}, 1},
		{CollectPowerUpGoal{}, 1},
	})
	active := p.Reevaluate(s)
	if active == nil || active.Type() != AvoidDanger {
		t.Fatalf("expected AvoidDanger to win with an immediate blast threat, got %v", active)
	}
}

func TestHierarchyBlocksDependentsWhileDangerActive(t *testing.T) {
	snap := flatSnapshot(10, 3)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 5, Y: 1}}}
	snap.Bombs = []worldstate.Bomb{{ID: 1, Position: worldstate.Position{X: 4, Y: 1}, Timer: 1, Power: 2}}
	setTile(snap, 9, 1, worldstate.SoftCrate)
	s := State{Snapshot: snap, BotID: 1}

	h := DefaultHierarchy()
	pool := []Weighted{
		{AvoidDangerGoal{}, 1},
		{DestroyBlocksGoal{}, 1},
	}
	if h.Ready(DestroyBlocks, s, pool) {
		t.Fatal("expected DestroyBlocks blocked while AvoidDanger has a live threat")
	}
}

func TestProgressMonitorDeclaresStallAfterThreshold(t *testing.T) {
	m := NewProgressMonitor(3)
	m.Observe(0.1) // baseline
	if m.Observe(0.1) {
		t.Fatal("should not stall on first stagnant tick")
	}
	if m.Observe(0.1) {
		t.Fatal("should not stall on second stagnant tick")
	}
	if !m.Observe(0.1) {
		t.Fatal("expected stall declared on third consecutive stagnant tick")
	}
}

func TestProgressMonitorResetsOnForwardProgress(t *testing.T) {
	m := NewProgressMonitor(2)
	m.Observe(0.1)
	m.Observe(0.1)
	if m.Observe(0.2) {
		t.Fatal("forward progress should reset stagnation")
	}
	if m.Observe(0.2) {
		t.Fatal("expected no stall immediately after a progress reset")
	}
}

func TestSafeStrategyWithholdsBombWithNoEscape(t *testing.T) {
	snap := flatSnapshot(3, 1)
	setTile(snap, 0, 0, worldstate.Wall)
	setTile(snap, 2, 0, worldstate.Wall)
	snap.Agents = []worldstate.Agent{
		{ID: 1, Position: worldstate.Position{X: 1, Y: 0}, Power: 3},
		{ID: 2, Position: worldstate.Position{X: 1, Y: 0}}, // unreachable degenerate enemy for Achievable()
	}
	s := State{Snapshot: snap, BotID: 1}
	self, _ := s.Self()
	if hasEscapeRoute(self.Position, self.Power, s) {
		t.Fatal("expected no escape route when both neighbors are walls")
	}
	if shouldPlaceBomb(Safe, self.Position, self.Power, 1, s) {
		t.Fatal("expected Safe strategy to withhold placement with no escape route")
	}
	if !shouldPlaceBomb(Tactical, self.Position, self.Power, 1, s) {
		t.Fatal("expected Tactical strategy to place regardless of escape route")
	}
}

func TestExecutorDecideReturnsWaitWhenNothingAchievable(t *testing.T) {
	snap := flatSnapshot(3, 3)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 1, Y: 1}}}
	s := State{Snapshot: snap, BotID: 1}

	e := NewExecutor([]Weighted{
		{AvoidDangerGoal{}, 1},
		{AttackEnemyGoal{}, 1},
		{DestroyBlocksGoal{}, 1},
		{CollectPowerUpGoal{}, 1},
	}, DefaultHierarchy(), 5)

	_, actions := e.Decide(s)
	if len(actions) != 1 || actions[0].Kind != ActionWait {
		t.Fatalf("expected Wait when no goal is achievable, got %v", actions)
	}
}
