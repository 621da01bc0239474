package bot

import (
	"math/rand"

	"golang.org/x/time/rate"

	"blastradius/internal/bombsys"
	"blastradius/internal/eventbus"
	"blastradius/internal/goals"
	"blastradius/internal/influence"
	"blastradius/internal/pathing"
	"blastradius/internal/worldstate"
)

// Bot owns one agent's decision pipeline: perceive -> (hard danger
// escape) -> goal planning -> pathfind -> act (spec.md §4.9). It is not
// itself a scheduler.System; the engine drains its Decision output and
// feeds movement/bomb systems (spec.md §4.10).
type Bot struct {
	ID  worldstate.AgentId
	cfg Config

	bus   *eventbus.Bus
	subID eventbus.SubscriberID
	Events <-chan eventbus.Event
	done   chan struct{}

	executor  *goals.Executor
	pathCache *pathing.PathCache
	limiter   *rate.Limiter
	rng       *rand.Rand
}

// New constructs a bot wired to bus, subscribed to grid updates and the
// engine-stopped signal. rng should be seeded deterministically by the
// caller for reproducible replays (spec.md §4.11).
func New(id worldstate.AgentId, bus *eventbus.Bus, cfg Config, rng *rand.Rand) *Bot {
	pool := []goals.Weighted{
		{Goal: goals.AvoidDangerGoal{}, Weight: 1},
		{Goal: goals.AttackEnemyGoal{}, Weight: 1},
		{Goal: goals.DestroyBlocksGoal{}, Weight: 1},
		{Goal: goals.CollectPowerUpGoal{}, Weight: 1},
	}
	subID, ch := bus.Subscribe(func(e eventbus.Event) bool {
		return e.Kind == eventbus.KindGrid || (e.Kind == eventbus.KindSystem && e.Sys.Kind == eventbus.SystemEngineStopped)
	})
	return &Bot{
		ID:        id,
		cfg:       cfg,
		bus:       bus,
		subID:     subID,
		Events:    ch,
		done:      make(chan struct{}),
		executor:  goals.NewExecutor(pool, goals.DefaultHierarchy(), cfg.StallThreshold),
		pathCache: pathing.NewPathCache(cfg.PathCacheSize, cfg.CachePolicy),
		limiter:   rate.NewLimiter(rate.Every(cfg.MoveCooldown), 1),
		rng:       rng,
	}
}

// Close unsubscribes the bot from the bus and signals Run to exit, even
// if the engine's own System(EngineStopped) broadcast raced Close or
// never reached this bot's subscription in time.
func (b *Bot) Close() {
	b.bus.Unsubscribe(b.subID)
	close(b.done)
}

// Run drains the bot's event channel until it observes
// System(EngineStopped) or Close is called, deciding and emitting a
// Decision on every Grid update that the move cooldown allows. The
// caller supplies the current influence map (shared/refreshed once per
// tick by the engine, not owned by any one bot).
func (b *Bot) Run(infMap func() *influence.Map, snapshot func() *worldstate.Snapshot) {
	for e := range eventbus.WithShutdown(b.done, b.Events) {
		if e.Kind == eventbus.KindSystem && e.Sys.Kind == eventbus.SystemEngineStopped {
			return
		}
		if e.Kind != eventbus.KindGrid {
			continue
		}
		if !b.limiter.Allow() {
			continue
		}
		decision := b.Decide(snapshot(), infMap())
		b.bus.Emit(eventbus.BotEv(eventbus.BotEvent{Kind: eventbus.BotDecisionEv, BotID: b.ID, Decision: decision}), eventbus.Normal)
		b.bus.Emit(eventbus.BotEv(eventbus.BotEvent{Kind: eventbus.BotStatusEv, BotID: b.ID, Status: b.statusOf()}), eventbus.Low)
	}
}

func (b *Bot) statusOf() string {
	if g := b.executor.Planner.Active(); g != nil {
		return g.Type().String()
	}
	return "idle"
}

// Decide runs one full decision-pipeline pass and returns the resulting
// Decision, without touching the event bus — exposed directly for tests
// and for deterministic single-step replay driving.
func (b *Bot) Decide(snap *worldstate.Snapshot, infMap *influence.Map) eventbus.Decision {
	self, ok := goals.State{Snapshot: snap, BotID: b.ID}.Self()
	if !ok {
		return eventbus.Decision{Kind: eventbus.DecisionWait}
	}

	// Step 2 (spec.md §4.9): immediate danger escape bypasses the goal
	// system entirely.
	if !bombsys.IsSafe(self.Position, snap.Bombs, snap) {
		if dec, ok := b.escapeDecision(self, snap); ok {
			return dec
		}
	}

	state := goals.State{Snapshot: snap, BotID: b.ID}
	_, actions := b.executor.Decide(state)
	if len(actions) == 0 {
		return b.fallback(self, snap, infMap)
	}

	switch actions[0].Kind {
	case goals.ActionWait:
		return b.fallback(self, snap, infMap)
	case goals.ActionPlaceBomb:
		return eventbus.Decision{Kind: eventbus.DecisionPlaceBomb}
	case goals.ActionMoveTowards:
		if dir, ok := b.pathDirection(self.Position, actions[0].Target, snap, infMap); ok {
			return eventbus.Decision{Kind: eventbus.DecisionMove, Dir: dir}
		}
		return b.fallback(self, snap, infMap)
	default:
		return b.fallback(self, snap, infMap)
	}
}

// escapeDecision picks the cardinal neighbor farthest from the nearest
// threatening bomb, the same heuristic AvoidDangerGoal.Plan uses, kept
// separate here since this path fires before any goal is even
// consulted.
func (b *Bot) escapeDecision(self worldstate.Agent, snap *worldstate.Snapshot) (eventbus.Decision, bool) {
	type candidate struct {
		dir  eventbus.Direction
		dist int
	}
	best := candidate{dist: -1}
	for _, c := range []struct {
		dir   eventbus.Direction
		delta worldstate.Position
	}{
		{eventbus.Up, worldstate.Position{X: 0, Y: -1}},
		{eventbus.Down, worldstate.Position{X: 0, Y: 1}},
		{eventbus.Left, worldstate.Position{X: -1, Y: 0}},
		{eventbus.Right, worldstate.Position{X: 1, Y: 0}},
	} {
		n := worldstate.Position{X: self.Position.X + c.delta.X, Y: self.Position.Y + c.delta.Y}
		t, ok := snap.Tile(n.X, n.Y)
		if !ok || t == worldstate.Wall || t == worldstate.SoftCrate {
			continue
		}
		if !bombsys.IsSafe(n, snap.Bombs, snap) {
			continue
		}
		d := minBombDistance(n, snap.Bombs)
		if d > best.dist {
			best = candidate{c.dir, d}
		}
	}
	if best.dist < 0 {
		return eventbus.Decision{}, false
	}
	return eventbus.Decision{Kind: eventbus.DecisionMove, Dir: best.dir}, true
}

func minBombDistance(p worldstate.Position, bombs []worldstate.Bomb) int {
	best := -1
	for _, bm := range bombs {
		d := abs(p.X-bm.Position.X) + abs(p.Y-bm.Position.Y)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 1 << 20
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pathDirection finds (with caching) a path from from to to and returns
// the direction of its first step.
func (b *Bot) pathDirection(from, to worldstate.Position, snap *worldstate.Snapshot, infMap *influence.Map) (eventbus.Direction, bool) {
	path, ok := b.pathCache.Get(from, to)
	if !ok {
		grid := pathing.NewWorldGrid(snap.Width, snap.Height, snap, infMap)
		path, ok = pathing.FindPath(pathing.AlgoAStar, grid, from, to)
		if !ok {
			return 0, false
		}
		path = pathing.SimplifyPath(path)
		b.pathCache.Put(from, to, path)
	}
	if len(path) < 2 {
		return 0, false
	}
	step := path[1]
	switch {
	case step.Y < from.Y:
		return eventbus.Up, true
	case step.Y > from.Y:
		return eventbus.Down, true
	case step.X < from.X:
		return eventbus.Left, true
	case step.X > from.X:
		return eventbus.Right, true
	default:
		return 0, false
	}
}

// fallback implements spec.md §4.9's 0.7/0.2/0.1 split for when the goal
// system yields Wait (no goal is achievable, the active goal stalled, or
// its plan waits) or no path can be found to the chosen goal's target.
func (b *Bot) fallback(self worldstate.Agent, snap *worldstate.Snapshot, infMap *influence.Map) eventbus.Decision {
	r := b.rng.Float64()
	switch {
	case r < b.cfg.FallbackMoveProb:
		if dir, ok := b.randomWalkableDirection(self, snap, infMap); ok {
			return eventbus.Decision{Kind: eventbus.DecisionMove, Dir: dir}
		}
		return eventbus.Decision{Kind: eventbus.DecisionWait}
	case r < b.cfg.FallbackMoveProb+b.cfg.FallbackWaitProb:
		return eventbus.Decision{Kind: eventbus.DecisionWait}
	default:
		return eventbus.Decision{Kind: eventbus.DecisionPlaceBomb}
	}
}

func (b *Bot) randomWalkableDirection(self worldstate.Agent, snap *worldstate.Snapshot, infMap *influence.Map) (eventbus.Direction, bool) {
	dirs := []eventbus.Direction{eventbus.Up, eventbus.Down, eventbus.Left, eventbus.Right}
	b.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	grid := pathing.NewWorldGrid(snap.Width, snap.Height, snap, infMap)
	deltas := map[eventbus.Direction]worldstate.Position{
		eventbus.Up:    {X: 0, Y: -1},
		eventbus.Down:  {X: 0, Y: 1},
		eventbus.Left:  {X: -1, Y: 0},
		eventbus.Right: {X: 1, Y: 0},
	}
	for _, d := range dirs {
		delta := deltas[d]
		n := worldstate.Position{X: self.Position.X + delta.X, Y: self.Position.Y + delta.Y}
		if grid.IsWalkable(n) {
			return d, true
		}
	}
	return 0, false
}
