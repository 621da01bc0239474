// Package goals implements the bot goal system: a closed set of goal
// types, a priority-driven planner, a prerequisite hierarchy, and a
// stalled-progress executor (spec.md §4.8).
package goals

import "blastradius/internal/worldstate"

// Action is a single planned step a goal's Plan produces. Goals emit
// MoveTowards, PlaceBomb or Wait; the bot decision pipeline (§4.9)
// translates MoveTowards into a pathfinder request.
type Action struct {
	Kind   ActionKind
	Target worldstate.Position // MoveTowards
}

type ActionKind uint8

const (
	ActionMoveTowards ActionKind = iota
	ActionPlaceBomb
	ActionWait
)

// Type enumerates the closed set of goal kinds (spec.md §4.8).
type Type uint8

const (
	AvoidDanger Type = iota
	AttackEnemy
	DestroyBlocks
	CollectPowerUp
)

func (t Type) String() string {
	switch t {
	case AvoidDanger:
		return "AvoidDanger"
	case AttackEnemy:
		return "AttackEnemy"
	case DestroyBlocks:
		return "DestroyBlocks"
	case CollectPowerUp:
		return "CollectPowerUp"
	default:
		return "Unknown"
	}
}

// State is the read-only view a goal scores and plans against: the
// current world snapshot plus the bot's own agent id.
type State struct {
	Snapshot *worldstate.Snapshot
	BotID    worldstate.AgentId
}

// Self returns the bot's own agent from the snapshot, if still present.
func (s State) Self() (worldstate.Agent, bool) {
	for _, a := range s.Snapshot.Agents {
		if a.ID == s.BotID {
			return a, true
		}
	}
	return worldstate.Agent{}, false
}

// Goal is the trait spec.md §4.8 describes: priority/achievable/
// progress/completed/plan, each a pure function of State.
type Goal interface {
	Type() Type
	Priority(s State) float64
	Achievable(s State) bool
	Progress(s State) float64 // in [0,1]
	Completed(s State) bool
	Plan(s State) []Action
}
