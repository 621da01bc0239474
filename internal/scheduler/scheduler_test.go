package scheduler

import (
	"context"
	"sync"
	"testing"
)

func TestRunOrderRespectsDependencies(t *testing.T) {
	s := New()
	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}

	s.AddTask(Task{Name: "movement", Run: record("movement")})
	s.AddTask(Task{Name: "player", Dependencies: []string{"movement"}, Run: record("player")})
	s.AddTask(Task{Name: "bomb", Run: record("bomb")})
	s.AddTask(Task{Name: "explosion", Dependencies: []string{"bomb"}, Run: record("explosion")})
	s.AddTask(Task{Name: "powerup", Dependencies: []string{"explosion"}, Run: record("powerup")})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos["movement"] >= pos["player"] {
		t.Errorf("movement must run before player: %v", order)
	}
	if pos["bomb"] >= pos["explosion"] {
		t.Errorf("bomb must run before explosion: %v", order)
	}
	if pos["explosion"] >= pos["powerup"] {
		t.Errorf("explosion must run before powerup: %v", order)
	}
}

func TestRunDetectsCycle(t *testing.T) {
	s := New()
	s.AddTask(Task{Name: "a", Dependencies: []string{"b"}, Run: func(context.Context) error { return nil }})
	s.AddTask(Task{Name: "b", Dependencies: []string{"a"}, Run: func(context.Context) error { return nil }})

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected cycle error, got nil")
	}
}

func TestRunDetectsUnregisteredDependency(t *testing.T) {
	s := New()
	s.AddTask(Task{Name: "a", Dependencies: []string{"ghost"}, Run: func(context.Context) error { return nil }})

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for unregistered dependency")
	}
}

func TestParallelBatchRunsEveryTask(t *testing.T) {
	s := New()
	var count int
	var mu sync.Mutex
	inc := func(context.Context) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	}
	s.AddTask(Task{Name: "p1", Parallelizable: true, Run: inc})
	s.AddTask(Task{Name: "p2", Parallelizable: true, Run: inc})
	s.AddTask(Task{Name: "p3", Parallelizable: true, Run: inc})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected all 3 tasks to run, got %d", count)
	}
}
