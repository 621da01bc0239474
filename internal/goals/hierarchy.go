package goals

import "golang.org/x/exp/slices"

// Hierarchy expresses prerequisite relationships between goal types:
// a goal is "locked" until every goal it depends on is either absent
// from the active pool or already satisfied this round (spec.md §4.8's
// dependency table — e.g. DestroyBlocks is not worth considering while
// AvoidDanger still has a live, unresolved threat).
type Hierarchy struct {
	deps map[Type][]Type
}

// NewHierarchy builds a dependency map. A nil/empty map means no goal
// depends on any other.
func NewHierarchy(deps map[Type][]Type) *Hierarchy {
	return &Hierarchy{deps: deps}
}

// DefaultHierarchy is the dependency table spec.md §4.8 describes:
// combat and collection goals defer to danger avoidance first.
func DefaultHierarchy() *Hierarchy {
	return NewHierarchy(map[Type][]Type{
		AttackEnemy:    {AvoidDanger},
		DestroyBlocks:  {AvoidDanger},
		CollectPowerUp: {AvoidDanger},
	})
}

// Ready reports whether every prerequisite of t is unblocked: absent
// from the scored pool, or not currently satisfied-pending (i.e. its
// priority is 0, meaning it has nothing left to contend for attention).
func (h *Hierarchy) Ready(t Type, s State, pool []Weighted) bool {
	for _, dep := range h.deps[t] {
		blocked := slices.ContainsFunc(pool, func(w Weighted) bool {
			return w.Goal.Type() == dep && w.Goal.Priority(s) > 0
		})
		if blocked {
			return false
		}
	}
	return true
}

// NextReady scans the pool in insertion order and returns the first
// goal whose prerequisites are satisfied and which is achievable in s.
// FIFO-by-insertion gives deterministic tie-breaking across ticks.
func (h *Hierarchy) NextReady(pool []Weighted, s State) (Goal, bool) {
	idx := slices.IndexFunc(pool, func(w Weighted) bool {
		return h.Ready(w.Goal.Type(), s, pool) && w.Goal.Achievable(s)
	})
	if idx < 0 {
		return nil, false
	}
	return pool[idx].Goal, true
}
