package usecases

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"card-clicker/internal/game"
	"card-clicker/internal/infrastructure/events"
	"card-clicker/internal/models"
	"card-clicker/internal/repositories"
	"card-clicker/internal/repositories/catalog"
	"card-clicker/internal/repositories/leaderboard"
	"card-clicker/internal/repositories/players"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

var (
	slime  = models.CardTemplate{CardID: "card_0001", Name: "Slime", Rarity: models.RarityCommon, HP: 100, ATK: 10, DEF: 5}
	ticker = models.CardTemplate{CardID: "card_0002", Name: "Clockwork Golem", Rarity: models.RarityRare, HP: 200, ATK: 20, DEF: 10, Ability: models.AbilityAutoClick}
)

// fixedRoller always draws the same index.
type fixedRoller int

func (f fixedRoller) Intn(n int) int { return min(int(f), n-1) }

// flakyPlayers fails UpdatePlayer while failUpdate is set, parks the next
// UpdatePlayer on holdUpdate and reports the next read as absent after missNext.
type flakyPlayers struct {
	*players.Players
	failUpdate atomic.Bool
	missNext   atomic.Bool
	holdUpdate atomic.Pointer[hold]
}

type hold struct {
	reached chan struct{}
	release chan struct{}
}

func newHold() *hold {
	return &hold{reached: make(chan struct{}), release: make(chan struct{})}
}

func (f *flakyPlayers) GetPlayer(ctx context.Context, id string) (models.PlayerState, bool, error) {
	if f.missNext.Swap(false) {
		return models.PlayerState{}, false, nil
	}
	return f.Players.GetPlayer(ctx, id)
}

func (f *flakyPlayers) UpdatePlayer(ctx context.Context, p models.PlayerState) error {
	if h := f.holdUpdate.Swap(nil); h != nil {
		close(h.reached)
		<-h.release
	}
	if f.failUpdate.Load() {
		return errors.New("connection refused")
	}
	return f.Players.UpdatePlayer(ctx, p)
}

// flakyBoard fails SetDisplayName while failNames is set.
type flakyBoard struct {
	*leaderboard.Leaderboard
	failNames atomic.Bool
}

func (f *flakyBoard) SetDisplayName(ctx context.Context, id, name string) error {
	if f.failNames.Load() {
		return errors.New("connection refused")
	}
	return f.Leaderboard.SetDisplayName(ctx, id, name)
}

type fixture struct {
	uc      *UseCases
	repos   *repositories.Repositories
	players *flakyPlayers
	board   *flakyBoard
	hub     *events.Hub
	clock   *game.FakeClock
}

func newFixture(t *testing.T, cat *catalog.Catalog, opts Options) *fixture {
	t.Helper()
	if cat == nil {
		cat = catalog.New(fixedRoller(0), 0, slime, ticker)
	}
	repos := repositories.New(cat)
	flaky := &flakyPlayers{Players: players.New()}
	repos.Player = flaky
	board := &flakyBoard{Leaderboard: leaderboard.New()}
	repos.Leaderboard = board

	clock := game.NewFakeClock(t0)
	if opts.ClicksPerCard == 0 {
		opts.ClicksPerCard = 10
	}
	if opts.AutoClickInterval == 0 {
		opts.AutoClickInterval = time.Hour
	}
	opts.Clock = clock
	opts.Rand = fixedRoller(99)

	hub := events.NewHub()
	uc := New(repos, hub, opts)
	t.Cleanup(func() { _ = uc.Shutdown(context.Background()) })
	return &fixture{uc: uc, repos: repos, players: flaky, board: board, hub: hub, clock: clock}
}

func (f *fixture) seed(t *testing.T, player models.PlayerState, cards ...models.OwnedCard) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.repos.Player.CreatePlayer(ctx, player))
	for _, c := range cards {
		require.NoError(t, f.repos.Card.AddCard(ctx, c))
	}
}

func (f *fixture) storedPlayer(t *testing.T, id string) models.PlayerState {
	t.Helper()
	p, ok, err := f.repos.Player.GetPlayer(context.Background(), id)
	require.NoError(t, err)
	require.True(t, ok)
	return p
}

func (f *fixture) storedCards(t *testing.T, id string) []models.OwnedCard {
	t.Helper()
	cards, err := f.repos.Card.GetOwnedCards(context.Background(), id)
	require.NoError(t, err)
	return cards
}

func card(instanceID string, tpl models.CardTemplate, level int) models.OwnedCard {
	return models.OwnedCard{
		InstanceID: instanceID, PlayerID: "p1", CardID: tpl.CardID, Rarity: tpl.Rarity,
		Level: level, AcquiredAt: t0, Unseen: true,
	}
}

func seededPlayer(dust int) models.PlayerState {
	p := models.NewPlayerState("p1", t0)
	p.DisplayName = "Ana"
	p.Dust = dust
	return p
}

func TestLoginCreatesPlayerOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})

	first, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 1, f.uc.Sessions())

	again, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, first.PlayerID, again.PlayerID)
	assert.Equal(t, 1, f.uc.Sessions())

	view, err := f.uc.Snapshot(ctx, first.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, "ana", view.Player.DisplayName)
	assert.Equal(t, 10, view.Threshold)
	assert.Empty(t, view.Cards)
	assert.True(t, view.Deck.Auto)

	top, err := f.uc.Leaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "ana", top[0].DisplayName)
	assert.Equal(t, 0, top[0].Score)
}

func TestUnknownPlayerIsNotFound(t *testing.T) {
	f := newFixture(t, nil, Options{})

	_, err := f.uc.Click(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, 0, f.uc.Sessions())
}

func TestClickAcquiresAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.New(fixedRoller(0), 0, slime), Options{})
	login, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)
	id := login.PlayerID

	sub, cancel, err := f.hub.Subscribe(ctx, id)
	require.NoError(t, err)
	defer cancel()

	res, err := f.uc.Click(ctx, id, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Added)
	assert.Equal(t, 5, res.ClickCount)
	require.Len(t, res.Acquired, 2)
	assert.Equal(t, 2*137, res.DeckPower)

	stored := f.storedPlayer(t, id)
	assert.Equal(t, 5, stored.ClickCount)
	assert.Equal(t, 25, stored.TotalClicks)
	assert.Equal(t, 2*137, stored.DeckPower)
	assert.Len(t, f.storedCards(t, id), 2)

	top, err := f.uc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2*137, top[0].Score)

	require.Len(t, sub, 2)
	e := <-sub
	assert.Equal(t, models.EventCardAcquired, e.Type)
	require.NotNil(t, e.Card)
	assert.Equal(t, "card_0001", e.Card.CardID)
}

func TestCatalogMissConsumesClicksAndCommits(t *testing.T) {
	ctx := context.Background()
	// draws card_0002, which is not loaded
	f := newFixture(t, catalog.New(fixedRoller(1), 2, slime), Options{})
	login, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)

	res, err := f.uc.Click(ctx, login.PlayerID, 10)
	require.ErrorIs(t, err, models.ErrCatalogLookup)
	assert.Equal(t, 1, res.FailedLookups)
	assert.Empty(t, res.Acquired)
	assert.Equal(t, 0, res.ClickCount)

	stored := f.storedPlayer(t, login.PlayerID)
	assert.Equal(t, 0, stored.ClickCount)
	assert.Equal(t, 10, stored.TotalClicks)
	assert.Empty(t, f.storedCards(t, login.PlayerID))
}

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})
	f.seed(t, seededPlayer(100), card("i1", slime, 1))

	before, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)

	f.players.failUpdate.Store(true)

	_, err = f.uc.Click(ctx, "p1", 10)
	assert.ErrorIs(t, err, models.ErrCollaboratorUnavailable)
	_, err = f.uc.Upgrade(ctx, "p1", "i1")
	assert.ErrorIs(t, err, models.ErrCollaboratorUnavailable)
	_, err = f.uc.Disenchant(ctx, "p1", "i1")
	assert.ErrorIs(t, err, models.ErrCollaboratorUnavailable)

	after, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	cards := f.storedCards(t, "p1")
	require.Len(t, cards, 1, "the card written by the failed click is reverted")
	assert.Equal(t, 1, cards[0].Level)

	f.players.failUpdate.Store(false)
	res, err := f.uc.Upgrade(ctx, "p1", "i1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Card.Level)
}

func TestUpgradeAndDisenchant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})
	f.seed(t, seededPlayer(100),
		card("i1", slime, 1),
		card("i2", slime, 1),
		models.OwnedCard{InstanceID: "gone", PlayerID: "p1", CardID: "card_9999", Level: 1, AcquiredAt: t0},
	)

	view, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, view.Cards, 2, "cards missing from the catalog are skipped")

	up, err := f.uc.Upgrade(ctx, "p1", "i1")
	require.NoError(t, err)
	assert.Equal(t, 50, up.Cost)
	assert.Equal(t, 50, up.Dust)
	assert.Equal(t, 2, up.Card.Level)

	_, err = f.uc.Upgrade(ctx, "p1", "i1")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	dis, err := f.uc.Disenchant(ctx, "p1", "i2")
	require.NoError(t, err)
	assert.Equal(t, 10, dis.DustGain)
	assert.Equal(t, 60, dis.Dust)

	_, err = f.uc.Disenchant(ctx, "p1", "i2")
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored := f.storedPlayer(t, "p1")
	assert.Equal(t, 60, stored.Dust)
	assert.Equal(t, 125*12/10, stored.DeckPower)

	cards := f.storedCards(t, "p1")
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.InstanceID)
		if c.InstanceID == "i1" {
			assert.Equal(t, 2, c.Level)
		}
	}
	assert.ElementsMatch(t, []string{"i1", "gone"}, ids)
}

func TestDeckSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})
	player := seededPlayer(0)
	player.DeckSlots = []string{"i2"}
	f.seed(t, player, card("i1", slime, 1), card("i2", ticker, 1), card("i3", slime, 1))

	_, err := f.uc.SwapDeckSlot(ctx, "p1", models.MaxDeckSlots, "i1")
	assert.ErrorIs(t, err, models.ErrInvalidSlot)
	_, err = f.uc.SwapDeckSlot(ctx, "p1", 0, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.uc.SwapDeckSlot(ctx, "p1", 0, "i2")
	assert.ErrorIs(t, err, models.ErrAlreadyInDeck)

	deck, err := f.uc.Deck(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, deck.Auto)
	require.Len(t, deck.Cards, 1)
	assert.Equal(t, 275, deck.DeckPower)

	deck, err = f.uc.SwapDeckSlot(ctx, "p1", 3, "i3")
	require.NoError(t, err)
	assert.Len(t, deck.Cards, 2)
	assert.Equal(t, 275+137, deck.DeckPower)
	assert.Equal(t, []string{"i2", "i3"}, f.storedPlayer(t, "p1").DeckSlots)

	_, err = f.uc.Disenchant(ctx, "p1", "i3")
	assert.ErrorIs(t, err, models.ErrCardInDeck)
	_, err = f.uc.Disenchant(ctx, "p1", "i1")
	require.NoError(t, err)

	deck, err = f.uc.ResetDeckToAuto(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, deck.Auto)
	assert.Empty(t, f.storedPlayer(t, "p1").DeckSlots)

	_, err = f.uc.Disenchant(ctx, "p1", "i3")
	require.NoError(t, err)
}

func TestClearUnseen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})
	seen := card("i2", slime, 1)
	seen.Unseen = false
	f.seed(t, seededPlayer(0), card("i1", slime, 1), seen)

	cleared, err := f.uc.ClearUnseen(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"i1"}, cleared)
	for _, c := range f.storedCards(t, "p1") {
		assert.False(t, c.Unseen, c.InstanceID)
	}

	cleared, err = f.uc.ClearUnseen(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, cleared)
}

func TestConcurrentClicksAreSerialized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, catalog.New(fixedRoller(0), 0, slime), Options{})
	login, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Click(ctx, login.PlayerID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := f.uc.Snapshot(ctx, login.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, 50, view.Player.TotalClicks)
	assert.Equal(t, 0, view.Player.ClickCount)
	assert.Len(t, view.Cards, 5)
	assert.Len(t, f.storedCards(t, login.PlayerID), 5)
}

func TestAutoClickTimer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{ClicksPerCard: 1000, AutoClickInterval: 5 * time.Millisecond})
	f.seed(t, seededPlayer(0), card("i1", ticker, 1))

	_, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		p, _, err := f.repos.Player.GetPlayer(ctx, "p1")
		return err == nil && p.TotalClicks >= 3
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.uc.SetAutoClick(ctx, "p1", false))
	stopped, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, stopped.AutoClick)

	time.Sleep(30 * time.Millisecond)
	later, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, stopped.Player.TotalClicks, later.Player.TotalClicks)

	require.NoError(t, f.uc.SetAutoClick(ctx, "p1", true))
	assert.Eventually(t, func() bool {
		view, err := f.uc.Snapshot(ctx, "p1")
		return err == nil && view.Player.TotalClicks > later.Player.TotalClicks
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAutoClickWithoutStacksDoesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{AutoClickInterval: 2 * time.Millisecond})
	f.seed(t, seededPlayer(0), card("i1", slime, 1))

	_, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	view, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Player.TotalClicks)
}

func TestCloseSessionSavesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})
	f.seed(t, seededPlayer(0))

	_, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)

	require.NoError(t, f.uc.CloseSession(ctx, "p1"))
	assert.Equal(t, 0, f.uc.Sessions())
	assert.True(t, t0.Add(time.Minute).Equal(f.storedPlayer(t, "p1").LastSaveTime))
	require.NoError(t, f.uc.CloseSession(ctx, "p1"))
}

func TestSaveStampsTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})
	f.seed(t, seededPlayer(0))
	f.clock.Advance(time.Hour)

	saved, err := f.uc.Save(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, t0.Add(time.Hour).Equal(saved.LastSaveTime))
	assert.True(t, saved.LastSaveTime.Equal(f.storedPlayer(t, "p1").LastSaveTime))
}

func TestShutdownClosesEverySession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})

	_, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)
	_, err = f.uc.Login(ctx, "bia")
	require.NoError(t, err)
	require.Equal(t, 2, f.uc.Sessions())

	require.NoError(t, f.uc.Shutdown(ctx))
	assert.Equal(t, 0, f.uc.Sessions())

	_, err = f.uc.Login(ctx, "ana")
	assert.ErrorIs(t, err, models.ErrSessionClosed)
}

func TestLoginAfterConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})

	first, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)
	require.NoError(t, f.uc.CloseSession(ctx, first.PlayerID))

	// the record shows up between the read and the create
	f.players.missNext.Store(true)
	again, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, first.PlayerID, again.PlayerID)
	assert.False(t, again.Created)
	assert.Equal(t, 1, f.uc.Sessions())
}

func TestLoginRepairsDisplayName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})

	f.board.failNames.Store(true)
	_, err := f.uc.Login(ctx, "ana")
	require.ErrorIs(t, err, models.ErrCollaboratorUnavailable)

	f.board.failNames.Store(false)
	res, err := f.uc.Login(ctx, "ana")
	require.NoError(t, err)
	assert.False(t, res.Created)

	top, err := f.uc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "ana", top[0].DisplayName)
}

func TestActionDuringCloseRunsAfterFinalSave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, Options{})
	f.seed(t, seededPlayer(50), card("c1", slime, 1))

	_, err := f.uc.Snapshot(ctx, "p1")
	require.NoError(t, err)

	h := newHold()
	f.players.holdUpdate.Store(h)
	closed := make(chan error, 1)
	go func() { closed <- f.uc.CloseSession(ctx, "p1") }()
	<-h.reached

	type upgrade struct {
		res models.UpgradeResult
		err error
	}
	upgraded := make(chan upgrade, 1)
	go func() {
		res, err := f.uc.Upgrade(ctx, "p1", "c1")
		upgraded <- upgrade{res, err}
	}()

	select {
	case u := <-upgraded:
		t.Fatalf("upgrade finished before the final save: %+v", u)
	case <-time.After(30 * time.Millisecond):
	}
	assert.Equal(t, 1, f.uc.Sessions())

	close(h.release)
	require.NoError(t, <-closed)
	u := <-upgraded
	require.NoError(t, u.err)
	assert.Equal(t, 50, u.res.Cost)
	assert.Equal(t, 0, u.res.Dust)
	assert.Equal(t, 2, u.res.Card.Level)

	assert.Equal(t, 0, f.storedPlayer(t, "p1").Dust)
	stored := f.storedCards(t, "p1")
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Level)
	assert.Equal(t, 1, f.uc.Sessions())
}
