package bot

import (
	"math/rand"
	"testing"

	"blastradius/internal/eventbus"
	"blastradius/internal/influence"
	"blastradius/internal/worldstate"
)

func flatSnapshot(w, h int) *worldstate.Snapshot {
	return &worldstate.Snapshot{Width: w, Height: h, Tiles: make([]worldstate.Tile, w*h)}
}

func setTile(s *worldstate.Snapshot, x, y int, t worldstate.Tile) {
	s.Tiles[y*s.Width+x] = t
}

func newBotForTest(cfg Config) *Bot {
	bus := eventbus.New()
	return New(1, bus, cfg, rand.New(rand.NewSource(1)))
}

func TestDecideEscapesImmediateDanger(t *testing.T) {
	snap := flatSnapshot(7, 3)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 3, Y: 1}}}
	snap.Bombs = []worldstate.Bomb{{ID: 1, Position: worldstate.Position{X: 1, Y: 1}, Timer: 1, Power: 2}}
	infMap := influence.New(7, 3, influence.FullUpdate{})

	b := newBotForTest(DefaultConfig())
	dec := b.Decide(snap, infMap)
	if dec.Kind != eventbus.DecisionMove {
		t.Fatalf("expected an escape move when standing inside a live bomb's blast range, got %v", dec)
	}
}

func TestDecideChasesPowerUpWhenSafe(t *testing.T) {
	snap := flatSnapshot(5, 1)
	setTile(snap, 4, 0, worldstate.PowerUp)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 0, Y: 0}}}
	infMap := influence.New(5, 1, influence.FullUpdate{})

	b := newBotForTest(DefaultConfig())
	dec := b.Decide(snap, infMap)
	if dec.Kind != eventbus.DecisionMove || dec.Dir != eventbus.Right {
		t.Fatalf("expected a rightward move toward the power-up, got %v", dec)
	}
}

func TestDecideFallsBackWhenAloneAndSafe(t *testing.T) {
	snap := flatSnapshot(3, 3)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 1, Y: 1}}}
	infMap := influence.New(3, 3, influence.FullUpdate{})

	b := newBotForTest(DefaultConfig())
	dec := b.Decide(snap, infMap)
	if dec.Kind != eventbus.DecisionWait && dec.Kind != eventbus.DecisionPlaceBomb && dec.Kind != eventbus.DecisionMove {
		t.Fatalf("expected a well-formed fallback decision, got %v", dec)
	}
}

func TestDecideReturnsWaitForUnknownAgent(t *testing.T) {
	snap := flatSnapshot(3, 3)
	infMap := influence.New(3, 3, influence.FullUpdate{})

	b := newBotForTest(DefaultConfig())
	dec := b.Decide(snap, infMap)
	if dec.Kind != eventbus.DecisionWait {
		t.Fatalf("expected Wait when the bot's own agent is absent from the snapshot, got %v", dec)
	}
}

func TestEscapeDecisionPrefersSaferNeighbor(t *testing.T) {
	snap := flatSnapshot(7, 3)
	snap.Agents = []worldstate.Agent{{ID: 1, Position: worldstate.Position{X: 3, Y: 1}}}
	snap.Bombs = []worldstate.Bomb{{ID: 1, Position: worldstate.Position{X: 2, Y: 1}, Timer: 1, Power: 2}}

	b := newBotForTest(DefaultConfig())
	self, _ := goalsSelf(snap, 1)
	dec, ok := b.escapeDecision(self, snap)
	if !ok {
		t.Fatal("expected an escape decision to be found")
	}
	if dec.Dir != eventbus.Right && dec.Dir != eventbus.Up && dec.Dir != eventbus.Down {
		t.Fatalf("expected escape away from the bomb's row-aligned blast, got %v", dec.Dir)
	}
}

func goalsSelf(snap *worldstate.Snapshot, id worldstate.AgentId) (worldstate.Agent, bool) {
	for _, a := range snap.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return worldstate.Agent{}, false
}
