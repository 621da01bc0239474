package goals

import "sort"

// Weighted pairs a goal with its configured weight. The planner scores
// a goal as Priority(state) * Weight, so a team/bot profile can lean a
// bot toward, say, aggression over caution without touching the goal
// implementations themselves.
type Weighted struct {
	Goal   Goal
	Weight float64
}

// Planner holds the pool of goals a bot can pursue and tracks which one
// is currently active (spec.md §4.8: "exactly one goal is active at a
// time; the planner reevaluates scores every decision tick").
type Planner struct {
	pool   []Weighted
	active Goal
}

// NewPlanner builds a planner over the given weighted goal pool. Goals
// with a nil Goal or zero weight are dropped.
func NewPlanner(pool []Weighted) *Planner {
	p := &Planner{}
	for _, w := range pool {
		if w.Goal != nil && w.Weight != 0 {
			p.pool = append(p.pool, w)
		}
	}
	return p
}

// Active returns the currently active goal, or nil if none has been
// selected yet.
func (p *Planner) Active() Goal { return p.active }

// Reevaluate scores every achievable goal in the pool and activates the
// highest-scoring one, breaking ties by pool order (first registered
// wins) to keep selection deterministic for replay. If the active goal
// is Completed, it is dropped from consideration this round so a
// goal doesn't re-select itself merely by still being "achievable".
func (p *Planner) Reevaluate(s State) Goal {
	type scored struct {
		w     Weighted
		score float64
	}
	var candidates []scored
	for _, w := range p.pool {
		if p.active != nil && w.Goal.Type() == p.active.Type() && w.Goal.Completed(s) {
			continue
		}
		if !w.Goal.Achievable(s) {
			continue
		}
		candidates = append(candidates, scored{w, w.Goal.Priority(s) * w.Weight})
	}
	if len(candidates) == 0 {
		p.active = nil
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	p.active = candidates[0].w.Goal
	return p.active
}

// ExecuteActive plans the next actions for the active goal, or returns a
// single Wait if no goal is active.
func (p *Planner) ExecuteActive(s State) []Action {
	if p.active == nil {
		return []Action{{Kind: ActionWait}}
	}
	return p.active.Plan(s)
}
