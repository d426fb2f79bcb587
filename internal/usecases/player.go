package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"card-clicker/internal/game"
	"card-clicker/internal/models"
)

// Login resolves the custom id to a player, creating the player on first
// login, and opens its session.
func (u *UseCases) Login(ctx context.Context, customID string) (models.LoginResponse, error) {
	playerID, created, err := u.repos.Identity.Login(ctx, customID)
	if err != nil {
		slog.Error("login failed", "customId", customID, "error", err)
		return models.LoginResponse{}, err
	}

	player, exists, err := u.repos.Player.GetPlayer(ctx, playerID)
	if err != nil {
		return models.LoginResponse{}, unavailable("get player", err)
	}
	if !exists {
		player = models.NewPlayerState(playerID, u.clock.Now())
		player.DisplayName = customID
		err := u.repos.Player.CreatePlayer(ctx, player)
		switch {
		case err == nil:
			created = true
			slog.Info("new player", "player", playerID, "customId", customID)
		case errors.Is(err, models.ErrAlreadyExists):
			// a concurrent first login created it
		default:
			return models.LoginResponse{}, unavailable("create player", err)
		}
	}

	// Registered on every login so that a failed first attempt is repaired.
	name := player.DisplayName
	if name == "" {
		name = customID
	}
	if err := u.repos.Leaderboard.SetDisplayName(ctx, playerID, name); err != nil {
		return models.LoginResponse{}, unavailable("set display name", err)
	}

	if _, err := u.session(ctx, playerID); err != nil {
		return models.LoginResponse{}, err
	}
	return models.LoginResponse{PlayerID: playerID, Created: created}, nil
}

// session returns the open session of a player, opening it from the stores
// when needed. A closing session stays registered until its final save is
// done and is waited for, so a player never has two sessions. A newly opened
// session starts its auto-click timer. Unknown players are ErrNotFound.
func (u *UseCases) session(ctx context.Context, playerID string) (*session, error) {
	for {
		sess, err := u.openSession(ctx, playerID)
		if err != nil || !sess.isClosing() {
			return sess, err
		}
		select {
		case <-sess.done:
			u.forget(sess)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// openSession returns the registered session, which may be closing, or
// loads and registers a new one.
func (u *UseCases) openSession(ctx context.Context, playerID string) (*session, error) {
	u.sessionsMU.Lock()
	if u.closed {
		u.sessionsMU.Unlock()
		return nil, models.ErrSessionClosed
	}
	sess, ok := u.sessions[playerID]
	u.sessionsMU.Unlock()
	if ok {
		return sess, nil
	}

	state, err := u.load(ctx, playerID)
	if err != nil {
		return nil, err
	}

	u.sessionsMU.Lock()
	defer u.sessionsMU.Unlock()
	if u.closed {
		return nil, models.ErrSessionClosed
	}
	// lost the race against a concurrent open
	if sess, ok := u.sessions[playerID]; ok {
		return sess, nil
	}
	sess = newSession(state)
	u.sessions[playerID] = sess
	sess.startTicker(u.autoClick, u.tick(sess))
	slog.Info("session opened", "player", playerID, "cards", len(state.Cards), "deckPower", state.Player.DeckPower)
	return sess, nil
}

// forget unregisters sess if it is still the player's session.
func (u *UseCases) forget(sess *session) {
	u.sessionsMU.Lock()
	defer u.sessionsMU.Unlock()
	if u.sessions[sess.playerID] == sess {
		delete(u.sessions, sess.playerID)
	}
}

// do runs job on the player's session. A job that lost the race against
// CloseSession runs again on the reopened session.
func (u *UseCases) do(ctx context.Context, playerID string, job func(sess *session) error) error {
	for {
		sess, err := u.session(ctx, playerID)
		if err != nil {
			return err
		}
		err = sess.do(ctx, func() error { return job(sess) })
		if !errors.Is(err, models.ErrSessionClosed) || !sess.isClosing() {
			return err
		}
	}
}

// load joins the stored collection with the catalog and publishes the
// resulting deck power to the leaderboard.
func (u *UseCases) load(ctx context.Context, playerID string) (*game.Session, error) {
	player, ok, err := u.repos.Player.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, unavailable("get player", err)
	}
	if !ok {
		return nil, fmt.Errorf("player %s: %w", playerID, models.ErrNotFound)
	}

	owned, err := u.repos.Card.GetOwnedCards(ctx, playerID)
	if err != nil {
		return nil, unavailable("get cards", err)
	}
	cards := make([]models.OwnedCard, 0, len(owned))
	for _, c := range owned {
		tpl, ok, err := u.repos.Catalog.GetTemplate(ctx, c.CardID)
		if err != nil {
			return nil, unavailable("card template", err)
		}
		if !ok {
			slog.Warn("skipping owned card missing from catalog", "player", playerID, "instance", c.InstanceID, "card", c.CardID)
			continue
		}
		c.Template = tpl
		if c.Rarity == models.RarityUnknown {
			c.Rarity = tpl.Rarity
		}
		cards = append(cards, c)
	}

	state := &game.Session{Player: player, Cards: cards}
	if state.Player.DeckSlots == nil {
		state.Player.DeckSlots = make([]string, 0, models.MaxDeckSlots)
	}
	if state.RecalculateDeckPower() {
		if err := u.repos.Player.UpdatePlayer(ctx, state.Player); err != nil {
			return nil, unavailable("update player", err)
		}
	}
	if err := u.repos.Leaderboard.PushScore(ctx, playerID, state.Player.DeckPower); err != nil {
		return nil, unavailable("push score", err)
	}
	return state, nil
}

// Snapshot returns the player's state, collection ordered by power and deck.
func (u *UseCases) Snapshot(ctx context.Context, playerID string) (models.PlayerView, error) {
	var view models.PlayerView
	err := u.do(ctx, playerID, func(sess *session) error {
		st := sess.state.Clone()
		view = models.PlayerView{
			Player:    st.Player,
			Threshold: u.Threshold(),
			AutoClick: sess.ticking(),
			Cards:     game.SortByPower(st.Cards),
			Deck:      st.DeckView(),
		}
		return nil
	})
	return view, err
}

// Save writes the player record and stamps the save time.
func (u *UseCases) Save(ctx context.Context, playerID string) (models.PlayerState, error) {
	var saved models.PlayerState
	err := u.do(ctx, playerID, func(sess *session) error {
		var err error
		saved, err = u.save(ctx, sess)
		return err
	})
	return saved, err
}

func (u *UseCases) save(ctx context.Context, sess *session) (models.PlayerState, error) {
	next := sess.state.Clone()
	if err := u.commit(ctx, sess, next, &writes{}); err != nil {
		slog.Error("failed to save player", "player", sess.playerID, "error", err)
		return models.PlayerState{}, err
	}
	return next.Player, nil
}

// SetAutoClick starts or stops the auto-click timer of an open session.
func (u *UseCases) SetAutoClick(ctx context.Context, playerID string, enabled bool) error {
	sess, err := u.session(ctx, playerID)
	if err != nil {
		return err
	}
	if enabled {
		sess.startTicker(u.autoClick, u.tick(sess))
	} else {
		sess.stopTicking()
	}
	return nil
}

// CloseSession stops the auto-click timer, saves a last time and forgets the
// session. The session stays registered until the final save is done so the
// player cannot be reopened from a stale store. Closing a player without a
// session is a no-op.
func (u *UseCases) CloseSession(ctx context.Context, playerID string) error {
	u.sessionsMU.Lock()
	sess, ok := u.sessions[playerID]
	u.sessionsMU.Unlock()

	if !ok {
		return nil
	}
	defer u.forget(sess)
	return u.closeSession(ctx, sess)
}

func (u *UseCases) closeSession(ctx context.Context, sess *session) error {
	err := sess.close(ctx, func() error {
		_, err := u.save(ctx, sess)
		return err
	})
	if err != nil {
		slog.Error("final save failed", "player", sess.playerID, "error", err)
		return err
	}
	slog.Info("session closed", "player", sess.playerID)
	return nil
}

// Shutdown closes every session and refuses new ones.
func (u *UseCases) Shutdown(ctx context.Context) error {
	u.sessionsMU.Lock()
	u.closed = true
	open := slices.Collect(maps.Values(u.sessions))
	clear(u.sessions)
	u.sessionsMU.Unlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, sess := range open {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := u.closeSession(ctx, sess); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Sessions returns how many sessions are open.
func (u *UseCases) Sessions() int {
	u.sessionsMU.Lock()
	defer u.sessionsMU.Unlock()
	return len(u.sessions)
}
