package goals

import "sort"

// ProgressMonitor counts consecutive decision ticks without forward
// progress on the active goal, grounded on combat.go's tick-counted
// (not wall-clock) cooldown idiom. When the active goal stalls past the
// threshold, the Executor drops it and returns Wait for that tick; the
// next tick scores the pool afresh with stagnation counting restarted,
// so the same goal can be selected again.
type ProgressMonitor struct {
	stallThreshold int
	lastProgress   float64
	stagnantTicks  int
	haveBaseline   bool
}

// NewProgressMonitor builds a monitor that declares a goal stalled
// after stallThreshold consecutive ticks with no Progress increase.
func NewProgressMonitor(stallThreshold int) *ProgressMonitor {
	return &ProgressMonitor{stallThreshold: stallThreshold}
}

// Observe records this tick's progress value for the active goal and
// reports whether the goal should now be considered stalled.
func (m *ProgressMonitor) Observe(progress float64) (stalled bool) {
	if !m.haveBaseline {
		m.lastProgress, m.haveBaseline = progress, true
		return false
	}
	if progress > m.lastProgress {
		m.lastProgress, m.stagnantTicks = progress, 0
		return false
	}
	m.stagnantTicks++
	return m.stagnantTicks >= m.stallThreshold
}

// Reset clears accumulated stagnation, used whenever the planner swaps
// the active goal.
func (m *ProgressMonitor) Reset() {
	m.haveBaseline = false
	m.stagnantTicks = 0
}

// Executor ties a Planner and a Hierarchy together into the single
// per-decision-tick call a bot makes: reevaluate, check for stalls,
// and return the concrete actions to execute.
type Executor struct {
	Planner    *Planner
	Hierarchy  *Hierarchy
	Monitor    *ProgressMonitor
	pool       []Weighted
	activeType Type
	haveActive bool
}

// NewExecutor wires a planner, a dependency hierarchy, and a stall
// monitor over the same weighted goal pool.
func NewExecutor(pool []Weighted, hierarchy *Hierarchy, stallThreshold int) *Executor {
	return &Executor{
		Planner:   NewPlanner(pool),
		Hierarchy: hierarchy,
		Monitor:   NewProgressMonitor(stallThreshold),
		pool:      pool,
	}
}

// Decide runs one planning step: score every hierarchy-ready, achievable
// goal in the pool by Priority*Weight, detect stalls on whichever goal
// stays active across ticks, and return the actions to take this tick
// plus the goal type they came from.
func (e *Executor) Decide(s State) (Type, []Action) {
	type scored struct {
		w     Weighted
		score float64
	}
	var candidates []scored
	for _, w := range e.pool {
		if !e.Hierarchy.Ready(w.Goal.Type(), s, e.pool) || !w.Goal.Achievable(s) {
			continue
		}
		candidates = append(candidates, scored{w, w.Goal.Priority(s) * w.Weight})
	}
	if len(candidates) == 0 {
		e.Planner.active, e.haveActive = nil, false
		return 0, []Action{{Kind: ActionWait}}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	chosen := candidates[0].w.Goal
	if !e.haveActive || e.activeType != chosen.Type() {
		e.Monitor.Reset()
		e.activeType, e.haveActive = chosen.Type(), true
	}
	e.Planner.active = chosen
	if e.Monitor.Observe(chosen.Progress(s)) {
		e.haveActive = false
		e.Planner.active = nil
		return 0, []Action{{Kind: ActionWait}}
	}
	return chosen.Type(), chosen.Plan(s)
}
