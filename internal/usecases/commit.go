package usecases

import (
	"context"
	"log/slog"

	"card-clicker/internal/game"
)

// writes records the store writes of one action so that they can be undone
// when a later write of the same action fails.
type writes struct {
	undo []func(ctx context.Context) error
}

// apply runs write and, on success, remembers how to revert it.
func (w *writes) apply(ctx context.Context, op string, write, revert func(ctx context.Context) error) error {
	if err := write(ctx); err != nil {
		return unavailable(op, err)
	}
	if revert != nil {
		w.undo = append(w.undo, revert)
	}
	return nil
}

// rollback reverts the applied writes newest first. Revert failures are
// logged; the in-memory state is left untouched either way.
func (w *writes) rollback(ctx context.Context, playerID string) {
	ctx = context.WithoutCancel(ctx)
	for i := len(w.undo) - 1; i >= 0; i-- {
		if err := w.undo[i](ctx); err != nil {
			slog.Error("failed to revert store write", "player", playerID, "error", err)
		}
	}
	w.undo = nil
}

// commit persists next and swaps it in as the session state. Card writes
// already recorded in w are reverted if the player record or the
// leaderboard cannot be updated. Must run on the session goroutine.
func (u *UseCases) commit(ctx context.Context, s *session, next *game.Session, w *writes) error {
	prev := s.state.Player
	next.Player.LastSaveTime = u.clock.Now()

	err := w.apply(ctx, "update player",
		func(ctx context.Context) error { return u.repos.Player.UpdatePlayer(ctx, next.Player) },
		func(ctx context.Context) error { return u.repos.Player.UpdatePlayer(ctx, prev) })
	if err != nil {
		w.rollback(ctx, s.playerID)
		return err
	}

	if next.Player.DeckPower != prev.DeckPower {
		err := w.apply(ctx, "push score",
			func(ctx context.Context) error { return u.repos.Leaderboard.PushScore(ctx, s.playerID, next.Player.DeckPower) },
			nil)
		if err != nil {
			w.rollback(ctx, s.playerID)
			return err
		}
	}

	s.state = next
	return nil
}
