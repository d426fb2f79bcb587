package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"card-clicker/internal/models"

	"github.com/fatih/color"
)

// NUMBOTS IS HOW MANY BOTS RUN AGAINST THE SERVER!!!
const (
	NUMBOTS     int = 50
	ROUNDS      int = 20
	clicksBurst int = 25
)

// BotClient is a simulated player talking to the HTTP API
type BotClient struct {
	id        int
	customID  string
	playerID  string
	base      string
	http      *http.Client
	rnd       *rand.Rand
	logPrefix string

	acquired    int
	upgrades    int
	disenchants int
}

// NewBotClient creates a new bot
func NewBotClient(id int, base string) *BotClient {
	customID := fmt.Sprintf("bot_%d", id)
	return &BotClient{
		id:        id,
		customID:  customID,
		base:      base,
		http:      &http.Client{Timeout: 10 * time.Second},
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
		logPrefix: fmt.Sprintf("[Bot %d - %s]", id, customID),
	}
}

// logInfo prints an info message with the bot prefix
func (b *BotClient) logInfo(format string, a ...interface{}) {
	fmt.Printf("%s INFO: %s\n", b.logPrefix, fmt.Sprintf(format, a...))
}

// logError prints an error message with the bot prefix
func (b *BotClient) logError(format string, a ...interface{}) {
	color.Red("%s ERROR: %s", b.logPrefix, fmt.Sprintf(format, a...))
}

func (b *BotClient) send(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, b.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var apiErr models.ErrorResponse
		_ = json.NewDecoder(res.Body).Decode(&apiErr)
		return fmt.Errorf("%s: %s", res.Status, apiErr.Type)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func (b *BotClient) login() error {
	var res models.LoginResponse
	if err := b.send(http.MethodPost, "/login", models.LoginRequest{CustomID: b.customID}, &res); err != nil {
		return err
	}
	b.playerID = res.PlayerID
	if res.Created {
		b.logInfo("Registered! ID: %s", b.playerID)
	} else {
		b.logInfo("Logged in! ID: %s", b.playerID)
	}
	return nil
}

// click sends a burst of clicks at once
func (b *BotClient) click() error {
	var res models.ClickResult
	err := b.send(http.MethodPost, "/players/"+b.playerID+"/click", models.ClickRequest{Clicks: clicksBurst}, &res)
	if err != nil {
		return err
	}
	b.acquired += len(res.Acquired)
	for _, acq := range res.Acquired {
		b.logInfo("New card: [%s] %s (power %d)", acq.Card.Rarity, acq.Card.Template.Name, acq.Card.Power())
	}
	return nil
}

// manageCards upgrades the strongest card and disenchants the weakest one outside the deck
func (b *BotClient) manageCards() error {
	var view models.PlayerView
	if err := b.send(http.MethodGet, "/players/"+b.playerID, nil, &view); err != nil {
		return err
	}
	if len(view.Cards) == 0 {
		return nil
	}

	if len(view.Cards) > models.MaxDeckSlots {
		weakest := view.Cards[len(view.Cards)-1]
		var res models.DisenchantResult
		err := b.send(http.MethodPost, "/players/"+b.playerID+"/cards/"+weakest.InstanceID+"/disenchant", nil, &res)
		if err == nil {
			b.disenchants++
		} else if !strings.Contains(err.Error(), "card_in_deck") {
			return err
		}
	}

	err := b.send(http.MethodPost, "/players/"+b.playerID+"/cards/"+view.Cards[0].InstanceID+"/upgrade", nil, nil)
	switch {
	case err == nil:
		b.upgrades++
	case strings.Contains(err.Error(), "insufficient_funds"):
		// Not enough dust, try again next round
	default:
		return err
	}
	return nil
}

// run is the bot's main loop
func (b *BotClient) run(rounds int) error {
	// Spread the start so the bots don't all begin at once
	time.Sleep(time.Duration(b.id) * 50 * time.Millisecond)

	maxAttempts := 5
	var err error
	for i := 0; i < maxAttempts; i++ {
		if err = b.login(); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return fmt.Errorf("login after %d attempts: %w", maxAttempts, err)
	}

	for round := 0; round < rounds; round++ {
		if err := b.click(); err != nil {
			return fmt.Errorf("click: %w", err)
		}
		if b.rnd.Intn(4) == 0 {
			if err := b.manageCards(); err != nil {
				return fmt.Errorf("cards: %w", err)
			}
		}
		time.Sleep(time.Duration(100+b.rnd.Intn(400)) * time.Millisecond)
	}

	// Closing the session forces the final save
	if err := b.send(http.MethodDelete, "/players/"+b.playerID+"/session", nil, nil); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	b.logInfo("Done: %d cards, %d upgrades, %d disenchanted", b.acquired, b.upgrades, b.disenchants)
	return nil
}

func main() {
	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "http://localhost:8080"
	}
	addr = strings.TrimSuffix(addr, "/")

	// how many bots to run
	numBots, err := strconv.Atoi(os.Getenv("NUM_BOTS"))
	if err != nil || numBots <= 0 {
		numBots = NUMBOTS
	}
	rounds, err := strconv.Atoi(os.Getenv("BOT_ROUNDS"))
	if err != nil || rounds <= 0 {
		rounds = ROUNDS
	}
	color.Cyan("Starting %d test bots against %s...", numBots, addr)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for i := 1; i <= numBots; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			bot := NewBotClient(id, addr)
			if err := bot.run(rounds); err != nil {
				bot.logError("%v", err)
				mu.Lock()
				failed = append(failed, fmt.Errorf("bot %d: %w", id, err))
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	var top []models.LeaderboardEntry
	probe := NewBotClient(0, addr)
	if err := probe.send(http.MethodGet, "/leaderboard", nil, &top); err == nil {
		color.Cyan("=== TOP %d ===", len(top))
		for _, e := range top {
			fmt.Printf("%d. %s - %d\n", e.Rank, e.DisplayName, e.Score)
		}
	}

	if err := errors.Join(failed...); err != nil {
		color.Red("%d bots failed", len(failed))
		os.Exit(1)
	}
	color.Green("All bots finished.")
}
