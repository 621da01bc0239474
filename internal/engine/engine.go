// Package engine wires worldstate, eventbus, scheduler, systems, bot,
// and replay into the single per-tick loop spec.md §4.10 describes:
// drain queued bot decisions, run the system DAG, record a
// determinism hash, and broadcast Game(TickCompleted). Grounded on
// internal/game/engine.go's tick(), generalized from a hardcoded phase
// sequence to systems' declared dependency DAG.
package engine

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"

	"blastradius/internal/bot"
	"blastradius/internal/engineconfig"
	"blastradius/internal/eventbus"
	"blastradius/internal/influence"
	"blastradius/internal/replay"
	"blastradius/internal/scheduler"
	"blastradius/internal/systems"
	"blastradius/internal/worldstate"
)

// moveCooldownMillis is spec.md §4.9/§4.10's fixed 200ms per-bot move
// spacing, expressed here in ticks rather than wall-clock time so the
// engine's authoritative recheck stays replay-deterministic (§9: "no
// wall-clock sampling"). The bot's own rate.Limiter paces a live run in
// real time; this is the tick-counted gate the engine actually trusts.
const moveCooldownMillis = 200

// Engine owns one arena's authoritative World plus every system needed
// to advance it one tick at a time.
type Engine struct {
	cfg engineconfig.Config

	World *worldstate.World
	Bus   *eventbus.Bus

	movement  *systems.MovementSystem
	player    *systems.PlayerSystem
	bombs     *systems.BombSystem
	explosion *systems.ExplosionSystem
	powerup   *systems.PowerUpSystem
	sched     *scheduler.Scheduler

	influence *influence.Map
	recorder  *replay.ReplayRecorder
	checker   *replay.DeterminismChecker

	mu            sync.Mutex
	bots          map[worldstate.AgentId]*bot.Bot
	lastMove      map[worldstate.AgentId]uint64
	pendingDeltas []worldstate.GridDelta
	store         *replay.Store

	tick          uint64
	cooldownTicks uint64

	gridSub eventbus.SubscriberID
}

// New constructs an Engine from a validated Config. The world starts
// empty of agents; callers add bots via AddBot.
func New(cfg engineconfig.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	world := worldstate.New(cfg.Width, cfg.Height)
	bus := eventbus.New()

	movement := systems.NewMovementSystem()
	player := systems.NewPlayerSystem()
	bombs := systems.NewBombSystem()
	explosion := systems.NewExplosionSystem(bombs, player)
	powerup := systems.NewPowerUpSystem(explosion, 0.5, rand.New(rand.NewSource(1)))

	sched := scheduler.New()
	sched.AddTask(systems.AsTask(movement, world, bus))
	sched.AddTask(systems.AsTask(player, world, bus))
	sched.AddTask(systems.AsTask(bombs, world, bus))
	sched.AddTask(systems.AsTask(explosion, world, bus))
	sched.AddTask(systems.AsTask(powerup, world, bus))

	cooldownTicks := uint64(cfg.TickRate) * moveCooldownMillis / 1000
	if cooldownTicks == 0 {
		cooldownTicks = 1
	}

	recorder := replay.NewReplayRecorder()

	eng := &Engine{
		cfg:           cfg,
		World:         world,
		Bus:           bus,
		movement:      movement,
		player:        player,
		bombs:         bombs,
		explosion:     explosion,
		powerup:       powerup,
		sched:         sched,
		influence:     influence.New(cfg.Width, cfg.Height, influence.FullUpdate{}),
		recorder:      recorder,
		checker:       replay.NewDeterminismChecker(),
		bots:          make(map[worldstate.AgentId]*bot.Bot),
		lastMove:      make(map[worldstate.AgentId]uint64),
		cooldownTicks: cooldownTicks,
	}

	gridSub, gridCh := bus.Subscribe(func(e eventbus.Event) bool { return e.Kind == eventbus.KindGrid })
	eng.gridSub = gridSub
	go func() {
		for e := range gridCh {
			recorder.Record(e.Grid)
			eng.mu.Lock()
			eng.pendingDeltas = append(eng.pendingDeltas, e.Grid)
			eng.mu.Unlock()
		}
	}()

	return eng, nil
}

// SetStore attaches an optional persistent store; subsequent ticks
// append their deltas to it as they complete.
func (e *Engine) SetStore(store *replay.Store) { e.store = store }

// AddBot spawns a new agent at the next free spawn slot and starts a
// Bot decision loop for it, seeded from seed for deterministic replay.
func (e *Engine) AddBot(id worldstate.AgentId, seed int64) *bot.Bot {
	e.player.QueueRespawn(worldstate.Agent{
		ID:    id,
		Lives: e.cfg.StartingLives,
		Power: 1,
	})
	b := bot.New(id, e.Bus, bot.DefaultConfig(), rand.New(rand.NewSource(seed)))
	e.mu.Lock()
	e.bots[id] = b
	e.mu.Unlock()
	go b.Run(func() *influence.Map { return e.influence }, func() *worldstate.Snapshot { return e.World.Snapshot() })
	return b
}

// StartRecording begins buffering every applied delta for replay.
func (e *Engine) StartRecording() { e.recorder.Start() }

// StopRecording stops buffering and returns a standalone Replay.
func (e *Engine) StopRecording() *replay.Replay {
	e.recorder.Stop()
	return e.recorder.ToReplay()
}

// Hashes returns the determinism hash stream recorded so far.
func (e *Engine) Hashes() []uint64 { return e.checker.Hashes() }

// Tick runs exactly one tick: drain bot decisions, run the system DAG,
// refresh the influence map, record the determinism hash, and
// broadcast Game(TickCompleted) last (spec.md §4.10/§5).
func (e *Engine) Tick(ctx context.Context) error {
	e.drainDecisions()

	if err := e.sched.Run(ctx); err != nil {
		return err
	}

	e.influence.RefreshFromWorld(e.World)

	e.tick++
	e.checker.Record(e.World)

	if e.store != nil {
		e.mu.Lock()
		deltas := e.pendingDeltas
		e.pendingDeltas = nil
		e.mu.Unlock()
		if payload, err := json.Marshal(deltas); err == nil {
			e.store.Append(e.tick, payload)
		}
	}

	e.Bus.Broadcast(eventbus.GameEv(eventbus.GameEvent{Kind: eventbus.GameTickCompleted, Tick: e.tick}))
	return nil
}

// drainDecisions pops every queued Bot(Decision) event in FIFO order and
// applies each, validating cooldown/bounds/bombs_left per spec.md §4.10.
// Process also broadcasts each event to general subscribers (logging,
// recorders), but this pass consumes the events it returns directly,
// in the same call stack that queued them — it never reads back through
// a subscriber channel, so it cannot race against that subscriber's
// pump goroutine (spec.md §8/§9 require tick order, not scheduler
// order). Movement's own Run call still re-validates bounds/
// walkability/no-overlap; this pass only gates whether a move is
// queued at all.
func (e *Engine) drainDecisions() {
	for _, ev := range e.Bus.Process() {
		if ev.Kind == eventbus.KindBot && ev.Bot.Kind == eventbus.BotDecisionEv {
			e.applyDecision(ev.Bot)
		}
	}
}

func (e *Engine) applyDecision(be eventbus.BotEvent) {
	switch be.Decision.Kind {
	case eventbus.DecisionMove:
		e.mu.Lock()
		last, seen := e.lastMove[be.BotID]
		ready := !seen || e.tick-last >= e.cooldownTicks
		if ready {
			e.lastMove[be.BotID] = e.tick
		}
		e.mu.Unlock()
		if ready {
			e.movement.QueueMove(be.BotID, be.Decision.Dir)
		}
	case eventbus.DecisionPlaceBomb:
		agent, ok := e.World.AgentByID(be.BotID)
		if !ok || agent.BombsLeft < 1 {
			return
		}
		e.bombs.AddBomb(e.World, e.Bus, be.BotID, agent.Position, e.cfg.BombTimer, agent.Power, false, false, false)
	case eventbus.DecisionWait:
		// no-op
	}
}

// Shutdown broadcasts System(EngineStopped) so every bot goroutine
// observes shutdown and returns, then unsubscribes the engine itself.
func (e *Engine) Shutdown() {
	e.Bus.Broadcast(eventbus.SystemEv(eventbus.SystemEvent{Kind: eventbus.SystemEngineStopped}))
	e.Bus.Unsubscribe(e.gridSub)
	for _, b := range e.bots {
		b.Close()
	}
}
