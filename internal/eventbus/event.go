// Package eventbus brokers state deltas, decisions, and lifecycle
// signals between the scheduler and bots under strict ordering rules
// (spec.md §4.2).
package eventbus

import (
	"blastradius/internal/worldstate"
)

// EventKind discriminates the Event sum type.
type EventKind uint8

const (
	KindGrid EventKind = iota
	KindGame
	KindBot
	KindBomb
	KindSystem
)

// Event is the core sum type exchanged on the bus.
type Event struct {
	Kind EventKind

	Grid worldstate.GridDelta
	Game GameEvent
	Bot  BotEvent
	Bomb BombEvent
	Sys  SystemEvent
}

func GridEvent(d worldstate.GridDelta) Event { return Event{Kind: KindGrid, Grid: d} }
func GameEv(e GameEvent) Event               { return Event{Kind: KindGame, Game: e} }
func BotEv(e BotEvent) Event                 { return Event{Kind: KindBot, Bot: e} }
func BombEv(e BombEvent) Event               { return Event{Kind: KindBomb, Bomb: e} }
func SystemEv(e SystemEvent) Event           { return Event{Kind: KindSystem, Sys: e} }

// GameEventKind discriminates GameEvent payloads.
type GameEventKind uint8

const (
	GameTickCompleted GameEventKind = iota
	GameBombPlaced
	GameAgentRespawned
	GameAgentEliminated
)

type GameEvent struct {
	Kind GameEventKind

	Tick uint64 // TickCompleted

	EntityID worldstate.AgentId // BombPlaced
	BombID   worldstate.BombId
	Position worldstate.Position
	Power    uint8
}

// Direction is a cardinal movement direction.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Decision is the reduced BotDecision sum type the bot emits (spec.md §3).
type DecisionKind uint8

const (
	DecisionWait DecisionKind = iota
	DecisionMove
	DecisionPlaceBomb
)

type Decision struct {
	Kind DecisionKind
	Dir  Direction
}

// BotEventKind discriminates BotEvent payloads.
type BotEventKind uint8

const (
	BotDecisionEv BotEventKind = iota
	BotStatusEv
	BotErrorEv
)

type BotEvent struct {
	Kind     BotEventKind
	BotID    worldstate.AgentId
	Decision Decision
	Status   string
	Message  string
}

// BombEventKind discriminates BombEvent payloads.
type BombEventKind uint8

const (
	BombPlacedEv BombEventKind = iota
	BombExplodedEv
	BombChainReactionEv
	BombPowerUpCollectedEv
)

type PowerUpType uint8

const (
	PowerUpBombCount PowerUpType = iota
	PowerUpBlastRadius
)

type BombEvent struct {
	Kind       BombEventKind
	AgentID    worldstate.AgentId
	Position   worldstate.Position
	Radius     uint8
	Positions  []worldstate.Position // ChainReaction
	PowerType  PowerUpType
}

// SystemEventKind discriminates SystemEvent payloads.
type SystemEventKind uint8

const (
	SystemEngineStarted SystemEventKind = iota
	SystemEngineStopped
)

type SystemEvent struct {
	Kind SystemEventKind
}
