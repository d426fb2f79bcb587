package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"card-clicker/internal/game"
	"card-clicker/internal/infrastructure/events"
	"card-clicker/internal/models"
	"card-clicker/internal/repositories"
	"card-clicker/internal/repositories/catalog"
	"card-clicker/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zeroRoller struct{}

func (zeroRoller) Intn(int) int { return 0 }

var slime = models.CardTemplate{CardID: "card_0001", Name: "Slime", Rarity: models.RarityCommon, HP: 100, ATK: 10, DEF: 5}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repos := repositories.New(catalog.New(zeroRoller{}, 0, slime))
	hub := events.NewHub()
	uc := usecases.New(repos, hub, usecases.Options{
		ClicksPerCard:     10,
		AutoClickInterval: time.Hour,
		Rand:              zeroRoller{},
		Clock:             game.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	t.Cleanup(func() { _ = uc.Shutdown(context.Background()) })
	return New(uc, hub, "memory", 10).Router()
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func login(t *testing.T, r http.Handler, customID string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/login", models.LoginRequest{CustomID: customID})
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())
	return decode[models.LoginResponse](t, w).PlayerID
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w := do(t, r, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.HealthResponse{Status: "OK", Backend: "memory", Sessions: 0}, decode[models.HealthResponse](t, w))
}

func TestLogin(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/login", models.LoginRequest{CustomID: "ana"})
	require.Equal(t, http.StatusCreated, w.Code)
	first := decode[models.LoginResponse](t, w)
	assert.True(t, first.Created)

	w = do(t, r, http.MethodPost, "/login", models.LoginRequest{CustomID: "ana"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.PlayerID, decode[models.LoginResponse](t, w).PlayerID)

	w = do(t, r, http.MethodPost, "/login", models.LoginRequest{CustomID: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClickFlow(t *testing.T) {
	r := newRouter(t)
	id := login(t, r, "ana")

	w := do(t, r, http.MethodPost, "/players/"+id+"/click", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.ClickResult](t, w).ClickCount)

	w = do(t, r, http.MethodPost, "/players/"+id+"/click", models.ClickRequest{Clicks: 9})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[models.ClickResult](t, w)
	assert.Equal(t, 0, res.ClickCount)
	require.Len(t, res.Acquired, 1)
	assert.Equal(t, 137, res.DeckPower)

	w = do(t, r, http.MethodPost, "/players/"+id+"/click", models.ClickRequest{Clicks: 5000})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/players/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[models.PlayerView](t, w)
	assert.Equal(t, 10, view.Player.TotalClicks)
	require.Len(t, view.Cards, 1)
	assert.True(t, view.Cards[0].Unseen)

	w = do(t, r, http.MethodPost, "/players/"+id+"/cards/seen", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cleared":["`+view.Cards[0].InstanceID+`"]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/leaderboard?n=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	top := decode[[]models.LeaderboardEntry](t, w)
	require.Len(t, top, 1)
	assert.Equal(t, 137, top[0].Score)
	assert.Equal(t, "ana", top[0].DisplayName)

	w = do(t, r, http.MethodGet, "/leaderboard?n=zero", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorStatuses(t *testing.T) {
	r := newRouter(t)
	id := login(t, r, "ana")
	do(t, r, http.MethodPost, "/players/"+id+"/click", models.ClickRequest{Clicks: 10})
	instance := decode[models.PlayerView](t, do(t, r, http.MethodGet, "/players/"+id, nil)).Cards[0].InstanceID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"unknown player", http.MethodGet, "/players/ghost", nil, http.StatusNotFound, "not_found"},
		{"unknown card", http.MethodPost, "/players/" + id + "/cards/nope/upgrade", nil, http.StatusNotFound, "not_found"},
		{"no dust", http.MethodPost, "/players/" + id + "/cards/" + instance + "/upgrade", nil, http.StatusUnprocessableEntity, "insufficient_funds"},
		{"bad slot", http.MethodPut, "/players/" + id + "/deck/slots/9", models.SwapSlotRequest{InstanceID: instance}, http.StatusBadRequest, "invalid_slot"},
		{"slot not a number", http.MethodPut, "/players/" + id + "/deck/slots/x", models.SwapSlotRequest{InstanceID: instance}, http.StatusBadRequest, "invalid_slot"},
		{"already in deck", http.MethodPut, "/players/" + id + "/deck/slots/0", models.SwapSlotRequest{InstanceID: instance}, http.StatusConflict, "already_in_deck"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.kind, decode[models.ErrorResponse](t, w).Type)
		})
	}
}

func TestDeckEndpoints(t *testing.T) {
	r := newRouter(t)
	id := login(t, r, "ana")
	do(t, r, http.MethodPost, "/players/"+id+"/click", models.ClickRequest{Clicks: 20})

	deck := decode[models.DeckView](t, do(t, r, http.MethodGet, "/players/"+id+"/deck", nil))
	require.True(t, deck.Auto)
	require.Len(t, deck.Cards, 2)

	w := do(t, r, http.MethodDelete, "/players/"+id+"/deck/slots", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.DeckView](t, w).Auto)

	w = do(t, r, http.MethodPost, "/players/"+id+"/cards/"+deck.Cards[1].InstanceID+"/disenchant", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, decode[models.DisenchantResult](t, w).Dust)

	w = do(t, r, http.MethodPost, "/players/"+id+"/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, decode[models.PlayerState](t, w).Dust)

	w = do(t, r, http.MethodPut, "/players/"+id+"/autoclick", gin.H{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPut, "/players/"+id+"/autoclick", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/players/"+id+"/session", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 0, decode[models.HealthResponse](t, do(t, r, http.MethodGet, "/health", nil)).Sessions)
}

func TestEventStream(t *testing.T) {
	r := newRouter(t)
	id := login(t, r, "ana")

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/players/" + id + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	res, err := http.Post(srv.URL+"/players/"+id+"/click", "application/json", strings.NewReader(`{"clicks":10}`))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event models.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, models.EventCardAcquired, event.Type)
	assert.Equal(t, id, event.PlayerID)
	require.NotNil(t, event.Card)
	assert.Equal(t, "card_0001", event.Card.CardID)

	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/players/ghost/events", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
