// Package bot implements the per-agent decision pipeline: perceive the
// published world snapshot and influence map, consult the goal system,
// pathfind toward the active goal's target, and emit a Decision on the
// event bus — spec.md §4.9.
package bot

import (
	"time"

	"blastradius/internal/pathing"
)

// Config tunes one bot's decision pipeline. Values default to spec.md
// §4.9's numbers but are overridable per profile/difficulty.
type Config struct {
	// MoveCooldown is the minimum spacing between two consecutive
	// decisions the bot emits; it paces every decision kind, not only
	// moves (spec.md §4.9: 200ms).
	MoveCooldown time.Duration

	// FallbackMoveProb, FallbackWaitProb, FallbackBombProb split the
	// behavior when the goal system yields Wait or no path can be found
	// to the chosen goal's target; they must sum to 1.
	FallbackMoveProb float64
	FallbackWaitProb float64
	FallbackBombProb float64

	// StallThreshold is the number of consecutive decision ticks
	// without Progress before a goal is abandoned (internal/goals
	// ProgressMonitor).
	StallThreshold int

	// PathCacheSize and CachePolicy configure the per-bot path cache.
	PathCacheSize int
	CachePolicy   pathing.CachePolicy
}

// DefaultConfig returns spec.md §4.9's numbers.
func DefaultConfig() Config {
	return Config{
		MoveCooldown:     200 * time.Millisecond,
		FallbackMoveProb: 0.7,
		FallbackWaitProb: 0.2,
		FallbackBombProb: 0.1,
		StallThreshold:   10,
		PathCacheSize:    64,
		CachePolicy:      pathing.LRU,
	}
}
