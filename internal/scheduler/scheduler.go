// Package scheduler advances the world by running data-dependent
// systems in topological order with safe intra-batch parallelism
// (spec.md §4.3).
package scheduler

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrCycle is returned by Run (AddTask does no checking) when the
// dependency graph cannot be fully scheduled (spec.md §7).
var ErrCycle = errors.New("scheduler: dependency cycle detected")

// Task is a named unit of per-tick work with declared dependencies.
type Task struct {
	Name            string
	Dependencies    []string
	Parallelizable  bool
	Run             func(ctx context.Context) error
}

// Scheduler holds a set of named tasks and runs them in dependency order.
type Scheduler struct {
	tasks []Task
	byName map[string]int
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{byName: make(map[string]int)}
}

// AddTask registers a task without validating it. Every Run call checks
// the graph: a dependency on an unregistered task is reported before any
// task runs, while a cycle is reported once no remaining task is ready,
// which can be after earlier batches of that tick have already run.
func (s *Scheduler) AddTask(t Task) {
	s.byName[t.Name] = len(s.tasks)
	s.tasks = append(s.tasks, t)
}

// Run executes one tick: computes indegrees, extracts ready batches, runs
// parallelizable tasks concurrently within a batch via errgroup, and
// loops until no tasks remain. Returns ErrCycle if tasks remain with
// unsatisfied indegree (a dependency cycle, or a dependency on an
// unregistered task name).
func (s *Scheduler) Run(ctx context.Context) error {
	indegree := make([]int, len(s.tasks))
	dependents := make([][]int, len(s.tasks))

	for i, t := range s.tasks {
		for _, dep := range t.Dependencies {
			j, ok := s.byName[dep]
			if !ok {
				return errors.Wrapf(ErrCycle, "task %q depends on unregistered task %q", t.Name, dep)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, len(s.tasks))
	remaining := len(s.tasks)

	var ready []int
	for i, d := range indegree {
		if d == 0 {
			ready = append(ready, i)
		}
	}

	for remaining > 0 {
		if len(ready) == 0 {
			return ErrCycle
		}
		batch := ready
		ready = nil

		g, gctx := errgroup.WithContext(ctx)
		for _, idx := range batch {
			idx := idx
			t := s.tasks[idx]
			if t.Parallelizable {
				g.Go(func() error { return t.Run(gctx) })
			}
		}
		// Non-parallel tasks in the same ready batch run sequentially on
		// the current goroutine; order among them is unspecified
		// (spec.md §4.3) so registration order is used.
		var firstErr error
		for _, idx := range batch {
			t := s.tasks[idx]
			if !t.Parallelizable {
				if err := t.Run(ctx); err != nil && firstErr == nil {
					firstErr = err
				}
			}
		}
		if err := g.Wait(); err != nil && firstErr == nil {
			firstErr = err
		}
		if firstErr != nil {
			return firstErr
		}

		for _, idx := range batch {
			done[idx] = true
			remaining--
			for _, dep := range dependents[idx] {
				indegree[dep]--
				if indegree[dep] == 0 {
					ready = append(ready, dep)
				}
			}
		}
	}
	return nil
}

// Names returns the registered task names in insertion order, for tests
// and introspection.
func (s *Scheduler) Names() []string {
	names := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		names[i] = t.Name
	}
	return names
}
