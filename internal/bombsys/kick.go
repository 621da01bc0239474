package bombsys

import "blastradius/internal/worldstate"

// KickBomb moves a bomb one tile in dir when it is kickable, the
// destination is in bounds, and the destination is not a Wall. Returns
// whether the move occurred, and the destination if so.
func KickBomb(b worldstate.Bomb, dx, dy int, q TileQuery) (worldstate.Position, bool) {
	if !b.Kickable {
		return b.Position, false
	}
	dest := worldstate.Position{X: b.Position.X + dx, Y: b.Position.Y + dy}
	t, ok := q.Tile(dest.X, dest.Y)
	if !ok || t == worldstate.Wall {
		return b.Position, false
	}
	return dest, true
}

// DetonateRemote forces the timer of a remote-armed bomb to 0. Returns
// nil on success or an error: ErrMissingBomb for an unknown id,
// ErrNotRemote for a bomb armed without Remote=true.
func DetonateRemote(id worldstate.BombId, lookup func(worldstate.BombId) (worldstate.Bomb, bool), set func(worldstate.BombId, func(*worldstate.Bomb)) bool) error {
	b, ok := lookup(id)
	if !ok {
		return ErrMissingBomb
	}
	if !b.Remote {
		return ErrNotRemote
	}
	set(id, func(bomb *worldstate.Bomb) { bomb.Timer = 0 })
	return nil
}
