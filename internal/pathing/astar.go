package pathing

import (
	"container/heap"

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

// node is a single open-set entry. seq preserves insertion order so that
// equal-f ties break deterministically FIFO (spec.md §4.7).
type node struct {
	pos   worldstate.Position
	g, f  int
	seq   int
	index int
}

type openSet []*node

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	return o[i].seq < o[j].seq
}
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index, o[j].index = i, j
}
func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*o)
	*o = append(*o, n)
}
func (o *openSet) Pop() any {
	old := *o
	n := old[len(old)-1]
	*o = old[:len(old)-1]
	return n
}

// AStar finds a shortest path from start to goal over grid, per spec.md
// §4.7: step cost u->v is `1 + max(0, influence(v))`, heuristic
// `h(a,b) = manhattan(a,b) + max(0, influence(b))`, `f = g + h`, open set
// is a min-heap on f with FIFO tie-breaking. Returns (path, true) with
// path[0] == start and path[len-1] == goal, or (nil, false) if
// unreachable.
func AStar(grid Grid, start, goal worldstate.Position) ([]worldstate.Position, bool) {
	if !grid.IsWalkable(start) && start != goal {
		return nil, false
	}
	if start == goal {
		return []worldstate.Position{start}, true
	}

	goalInfluence := maxInt(0, grid.Influence(goal))

	open := &openSet{}
	heap.Init(open)
	seq := 0
	startNode := &node{pos: start, g: 0, f: manhattan(start, goal) + goalInfluence, seq: seq}
	heap.Push(open, startNode)
	seq++

	cameFrom := map[worldstate.Position]worldstate.Position{}
	bestG := map[worldstate.Position]int{start: 0}

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if current.g > bestG[current.pos] {
			continue // stale entry, a better one was already processed
		}
		if current.pos == goal {
			return reconstruct(cameFrom, start, goal), true
		}

		for _, next := range grid.Neighbors(current.pos) {
			if !grid.IsWalkable(next) {
				continue
			}
			stepCost := 1 + maxInt(0, grid.Influence(next))
			tentativeG := current.g + stepCost
			if existing, ok := bestG[next]; ok && tentativeG >= existing {
				continue
			}
			bestG[next] = tentativeG
			cameFrom[next] = current.pos
			h := manhattan(next, goal) + maxInt(0, grid.Influence(goal))
			heap.Push(open, &node{pos: next, g: tentativeG, f: tentativeG + h, seq: seq})
			seq++
		}
	}
	return nil, false
}

func reconstruct(cameFrom map[worldstate.Position]worldstate.Position, start, goal worldstate.Position) []worldstate.Position {
	path := []worldstate.Position{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
