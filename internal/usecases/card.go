package usecases

import (
	"context"
	"errors"
	"log/slog"

	"card-clicker/internal/game"
	"card-clicker/internal/models"
)

// Click applies n manual clicks. A catalog miss is returned as an error
// wrapping models.ErrCatalogLookup together with the committed result.
func (u *UseCases) Click(ctx context.Context, playerID string, n int) (models.ClickResult, error) {
	if n < 1 {
		n = 1
	}
	var res models.ClickResult
	err := u.do(ctx, playerID, func(sess *session) error {
		var err error
		res, err = u.click(ctx, sess, false, func(next *game.Session) (models.ClickResult, error) {
			return u.engine.Click(ctx, next, n)
		})
		return err
	})
	return res, err
}

// tick is the auto-click timer callback of one session.
func (u *UseCases) tick(sess *session) func(ctx context.Context) {
	return func(ctx context.Context) {
		err := sess.do(ctx, func() error {
			ctx := context.WithoutCancel(ctx)
			if sess.state.Abilities().Stacks(models.AbilityAutoClick) == 0 {
				return nil
			}
			_, err := u.click(ctx, sess, true, func(next *game.Session) (models.ClickResult, error) {
				return u.engine.AutoClick(ctx, next)
			})
			return err
		})
		switch {
		case err == nil, errors.Is(err, context.Canceled), errors.Is(err, models.ErrSessionClosed):
		case errors.Is(err, models.ErrCatalogLookup):
			slog.Warn("auto click drew an unknown card", "player", sess.playerID, "error", err)
		default:
			slog.Error("auto click failed", "player", sess.playerID, "error", err)
		}
	}
}

func (u *UseCases) click(ctx context.Context, sess *session, auto bool, run func(*game.Session) (models.ClickResult, error)) (models.ClickResult, error) {
	next := sess.state.Clone()
	res, lookupErr := run(next)
	if lookupErr != nil && !errors.Is(lookupErr, models.ErrCatalogLookup) {
		return models.ClickResult{}, lookupErr
	}

	w := &writes{}
	for _, acq := range res.Acquired {
		card := acq.Card
		err := w.apply(ctx, "add card",
			func(ctx context.Context) error { return u.repos.Card.AddCard(ctx, card) },
			func(ctx context.Context) error { return u.repos.Card.DeleteCard(ctx, card.PlayerID, card.InstanceID) })
		if err != nil {
			w.rollback(ctx, sess.playerID)
			return models.ClickResult{}, err
		}
	}
	if err := u.commit(ctx, sess, next, w); err != nil {
		return models.ClickResult{}, err
	}

	if res.FailedLookups > 0 {
		slog.Warn("card lookups failed", "player", sess.playerID, "count", res.FailedLookups)
	}

	now := u.clock.Now()
	events := make([]models.Event, 0, len(res.Acquired)+1)
	if auto {
		events = append(events, models.Event{
			Type: models.EventAutoClick, PlayerID: sess.playerID, Clicks: res.Added, DeckPower: res.DeckPower, At: now,
		})
	}
	for _, acq := range res.Acquired {
		card := acq.Card
		events = append(events, models.Event{
			Type: models.EventCardAcquired, PlayerID: sess.playerID, Card: &card, Promoted: acq.Promoted, Auto: auto, DeckPower: res.DeckPower, At: now,
		})
	}
	u.publish(ctx, events...)

	return res, lookupErr
}

// Upgrade levels a card up for dust.
func (u *UseCases) Upgrade(ctx context.Context, playerID, instanceID string) (models.UpgradeResult, error) {
	var res models.UpgradeResult
	err := u.do(ctx, playerID, func(sess *session) error {
		next := sess.state.Clone()
		r, err := u.engine.Upgrade(next, instanceID)
		if err != nil {
			return err
		}

		w := &writes{}
		err = w.apply(ctx, "set level",
			func(ctx context.Context) error { return u.repos.Card.SetLevel(ctx, playerID, instanceID, r.Card.Level) },
			func(ctx context.Context) error { return u.repos.Card.SetLevel(ctx, playerID, instanceID, r.Card.Level-1) })
		if err != nil {
			return err
		}
		if err := u.commit(ctx, sess, next, w); err != nil {
			return err
		}

		res = r
		u.publish(ctx, models.Event{
			Type: models.EventCardUpgraded, PlayerID: playerID, Card: &r.Card, Cost: r.Cost, Dust: r.Dust, DeckPower: r.DeckPower, At: u.clock.Now(),
		})
		return nil
	})
	return res, err
}

// Disenchant destroys a card that is not pinned to the deck for dust.
func (u *UseCases) Disenchant(ctx context.Context, playerID, instanceID string) (models.DisenchantResult, error) {
	var res models.DisenchantResult
	err := u.do(ctx, playerID, func(sess *session) error {
		next := sess.state.Clone()
		r, err := u.engine.Disenchant(next, instanceID)
		if err != nil {
			return err
		}

		w := &writes{}
		err = w.apply(ctx, "delete card",
			func(ctx context.Context) error { return u.repos.Card.DeleteCard(ctx, playerID, instanceID) },
			func(ctx context.Context) error { return u.repos.Card.AddCard(ctx, r.Card) })
		if err != nil {
			return err
		}
		if err := u.commit(ctx, sess, next, w); err != nil {
			return err
		}

		res = r
		u.publish(ctx, models.Event{
			Type: models.EventCardDisenchanted, PlayerID: playerID, Card: &r.Card, Dust: r.Dust, DeckPower: r.DeckPower, At: u.clock.Now(),
		})
		return nil
	})
	return res, err
}

// ClearUnseen marks every card as seen and returns the instance ids that changed.
func (u *UseCases) ClearUnseen(ctx context.Context, playerID string) ([]string, error) {
	cleared := []string{}
	err := u.do(ctx, playerID, func(sess *session) error {
		next := sess.state.Clone()
		ids := u.engine.ClearUnseen(next)
		if len(ids) == 0 {
			return nil
		}

		w := &writes{}
		for _, id := range ids {
			err := w.apply(ctx, "set unseen",
				func(ctx context.Context) error { return u.repos.Card.SetUnseen(ctx, playerID, id, false) },
				func(ctx context.Context) error { return u.repos.Card.SetUnseen(ctx, playerID, id, true) })
			if err != nil {
				w.rollback(ctx, playerID)
				return err
			}
		}
		if err := u.commit(ctx, sess, next, w); err != nil {
			return err
		}
		cleared = ids
		return nil
	})
	return cleared, err
}
