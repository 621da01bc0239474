// Package worldstate holds the shared-world state model: tiles, agents,
// bombs, and the lock-free snapshot views bots read from.
package worldstate

import "fmt"

// Position is an integer grid coordinate.
type Position struct {
	X, Y int
}

// Tile is the terrain state of a single grid cell.
type Tile uint8

const (
	Empty Tile = iota
	Wall
	SoftCrate
	PowerUp
	Explosion
)

func (t Tile) String() string {
	switch t {
	case Empty:
		return "Empty"
	case Wall:
		return "Wall"
	case SoftCrate:
		return "SoftCrate"
	case PowerUp:
		return "PowerUp"
	case Explosion:
		return "Explosion"
	default:
		return fmt.Sprintf("Tile(%d)", uint8(t))
	}
}

// AgentId, BombId, ChainId identify entities. Agent/Bomb ids are the u64
// wire form from §6; ChainId is opaque (uuid-backed, see SPEC_FULL §1A).
type AgentId uint64
type BombId uint64
type ChainId string

// Agent is a bot-controlled entity on the grid.
type Agent struct {
	ID         AgentId
	Position   Position
	BombsLeft  uint8
	Power      uint8
	Lives      uint8 // supplemental, §3A — bookkeeping only
	Score      uint32
}

// Bomb is a placed, ticking explosive.
type Bomb struct {
	ID       BombId
	Owner    AgentId
	Position Position
	Timer    uint8 // ticks to detonation
	Power    uint8 // blast radius
	Pierce   bool
	Remote   bool
	Kickable bool
	ChainID  ChainId
}

// HasChain reports whether the bomb has been assigned to a chain.
func (b Bomb) HasChain() bool { return b.ChainID != "" }

// BombChain is an equivalence class of bombs whose blasts reach each
// other along rows/columns.
type BombChain struct {
	ID          ChainId
	Bombs       []BombId
	TriggerBomb BombId // bomb with the smallest timer
	Detonates   uint8  // tick offset == TriggerBomb's timer
}

// GridDelta is the smallest serializable change to the world.
type GridDelta struct {
	Kind DeltaKind

	// SetTile
	X, Y int
	T    Tile

	// AddBomb
	Bomb Bomb

	// AddAgent / MoveAgent / RemoveAgent
	Agent    Agent
	AgentID  AgentId
	MoveTo   Position
}

// DeltaKind discriminates GridDelta's sum-type payload.
type DeltaKind uint8

const (
	DeltaNone DeltaKind = iota
	DeltaSetTile
	DeltaAddBomb
	DeltaAddAgent
	DeltaMoveAgent
	DeltaRemoveAgent
)

func SetTileDelta(x, y int, t Tile) GridDelta {
	return GridDelta{Kind: DeltaSetTile, X: x, Y: y, T: t}
}

func AddBombDelta(b Bomb) GridDelta {
	return GridDelta{Kind: DeltaAddBomb, Bomb: b}
}

func AddAgentDelta(a Agent) GridDelta {
	return GridDelta{Kind: DeltaAddAgent, Agent: a}
}

func MoveAgentDelta(id AgentId, p Position) GridDelta {
	return GridDelta{Kind: DeltaMoveAgent, AgentID: id, MoveTo: p}
}

func RemoveAgentDelta(id AgentId) GridDelta {
	return GridDelta{Kind: DeltaRemoveAgent, AgentID: id}
}
