// Package engineconfig holds the plain configuration struct the engine
// is constructed from (spec.md §6's Configuration table). It has no
// loader of its own — no env/file parsing, no flags — Default builds the
// base Config and the CLI entry point (cmd/arenademo) overrides fields.
package engineconfig

import "github.com/pkg/errors"

// AIType selects a bot's decision profile. Only one profile is
// implemented today; the field exists so a future difficulty/behavior
// variant doesn't require a breaking Config change.
type AIType uint8

const (
	AIBalanced AIType = iota
)

// Config is the engine's full external configuration surface (spec.md
// §6's Configuration table).
type Config struct {
	Width  int
	Height int

	TickRate int // ticks per second

	MaxPlayers int

	BombTimer     uint8 // default fuse length, in ticks
	StartingLives uint8

	DecisionTimeout int // soft, in milliseconds; not read by any component, so decisions are neither timed nor recorded against it
	AIType          AIType
}

// ErrTooManyPlayers is returned by Validate when MaxPlayers exceeds the
// fixed spawn table size (spec.md §9's Open Question: spawn-table
// overflow is a construction-time error, not a runtime fallback).
var ErrTooManyPlayers = errors.New("engineconfig: max_players exceeds the fixed spawn slot table")

// MaxSpawnSlots mirrors worldstate.MaxSpawnSlots; duplicated here (a
// plain constant, not an import) so this package stays a leaf with no
// dependency on worldstate.
const MaxSpawnSlots = 8

// Validate checks the configuration is constructible, returning
// ErrTooManyPlayers if MaxPlayers exceeds the spawn table.
func (c Config) Validate() error {
	if c.MaxPlayers > MaxSpawnSlots {
		return errors.Wrapf(ErrTooManyPlayers, "max_players=%d > %d", c.MaxPlayers, MaxSpawnSlots)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New("engineconfig: width and height must be positive")
	}
	if c.TickRate <= 0 {
		return errors.New("engineconfig: tick_rate must be positive")
	}
	return nil
}

// Default returns a small, playable default configuration.
func Default() Config {
	return Config{
		Width:           13,
		Height:          11,
		TickRate:        20,
		MaxPlayers:      4,
		BombTimer:       60,
		StartingLives:   3,
		DecisionTimeout: 50,
		AIType:          AIBalanced,
	}
}
