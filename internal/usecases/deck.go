package usecases

import (
	"context"

	"card-clicker/internal/game"
	"card-clicker/internal/models"
)

// Deck returns the resolved deck with its power and active abilities.
func (u *UseCases) Deck(ctx context.Context, playerID string) (models.DeckView, error) {
	var view models.DeckView
	err := u.do(ctx, playerID, func(sess *session) error {
		view = sess.state.Clone().DeckView()
		return nil
	})
	return view, err
}

// SwapDeckSlot pins a card to a deck slot, freezing an auto deck first.
func (u *UseCases) SwapDeckSlot(ctx context.Context, playerID string, slot int, instanceID string) (models.DeckView, error) {
	return u.changeDeck(ctx, playerID, func(next *game.Session) error {
		return u.engine.SwapDeckSlot(next, slot, instanceID)
	})
}

// ResetDeckToAuto returns the deck to automatic top-power selection.
func (u *UseCases) ResetDeckToAuto(ctx context.Context, playerID string) (models.DeckView, error) {
	return u.changeDeck(ctx, playerID, func(next *game.Session) error {
		u.engine.ResetDeckToAuto(next)
		return nil
	})
}

func (u *UseCases) changeDeck(ctx context.Context, playerID string, change func(*game.Session) error) (models.DeckView, error) {
	var view models.DeckView
	err := u.do(ctx, playerID, func(sess *session) error {
		next := sess.state.Clone()
		if err := change(next); err != nil {
			return err
		}
		if err := u.commit(ctx, sess, next, &writes{}); err != nil {
			return err
		}

		view = next.Clone().DeckView()
		u.publish(ctx, models.Event{
			Type: models.EventDeckChanged, PlayerID: playerID, DeckPower: view.DeckPower, At: u.clock.Now(),
		})
		return nil
	})
	return view, err
}
