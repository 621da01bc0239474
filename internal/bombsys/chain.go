// Package bombsys implements the bomb subsystem: chain detection, blast
// propagation, kick, remote detonation, and danger analysis (spec.md §4.5).
package bombsys

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"blastradius/internal/worldstate"
)

// ErrMissingBomb is returned by DetonateRemote for an unknown bomb id.
var ErrMissingBomb = errors.New("bombsys: missing bomb")

// ErrNotRemote is returned by DetonateRemote for a non-remote bomb.
var ErrNotRemote = errors.New("bombsys: bomb is not remote")

// adjacent reports whether two bombs reach each other: they share a row
// or column and the Manhattan distance along that axis is <= the power
// of at least one of them (spec.md §4.5).
func adjacent(a, b worldstate.Bomb) bool {
	if a.Position.Y == b.Position.Y {
		d := abs(a.Position.X - b.Position.X)
		return d <= int(a.Power) || d <= int(b.Power)
	}
	if a.Position.X == b.Position.X {
		d := abs(a.Position.Y - b.Position.Y)
		return d <= int(a.Power) || d <= int(b.Power)
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// unionFind is a small disjoint-set over bomb slice indices.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// DetectChains partitions bombs into equivalence classes (connected
// components of the "reaches" relation), each a BombChain whose trigger
// is the bomb with the smallest timer. O(n^2) pairwise comparison,
// acceptable for boards with N << 100 bombs (spec.md §9).
func DetectChains(bombs []worldstate.Bomb) []worldstate.BombChain {
	n := len(bombs)
	if n == 0 {
		return nil
	}
	uf := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if adjacent(bombs[i], bombs[j]) {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		r := uf.find(i)
		groups[r] = append(groups[r], i)
	}

	// Stable, deterministic chain ordering: sort by the root's bomb id.
	roots := make([]int, 0, len(groups))
	for r := range groups {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return bombs[roots[i]].ID < bombs[roots[j]].ID })

	chains := make([]worldstate.BombChain, 0, len(roots))
	for _, r := range roots {
		members := groups[r]
		sort.Slice(members, func(i, j int) bool { return bombs[members[i]].ID < bombs[members[j]].ID })

		trigger := members[0]
		for _, m := range members[1:] {
			if bombs[m].Timer < bombs[trigger].Timer {
				trigger = m
			}
		}

		ids := make([]worldstate.BombId, len(members))
		for i, m := range members {
			ids[i] = bombs[m].ID
		}
		chains = append(chains, worldstate.BombChain{
			ID:          worldstate.ChainId(uuid.NewString()),
			Bombs:       ids,
			TriggerBomb: bombs[trigger].ID,
			Detonates:   bombs[trigger].Timer,
		})
	}
	return chains
}
