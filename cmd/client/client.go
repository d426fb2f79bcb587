package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"card-clicker/internal/game"
	"card-clicker/internal/models"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

var (
	// Player data
	playerID string
	customID string

	api = &apiClient{http: &http.Client{Timeout: 10 * time.Second}}
)

func main() {
	color.NoColor = false

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "http://localhost:8080"
	}
	api.base = strings.TrimSuffix(addr, "/")

	reader := bufio.NewReader(os.Stdin)

	color.Cyan("=== Card Clicker RPG ===")
	fmt.Print("Custom id (anything): ")
	input, _ := reader.ReadString('\n')
	customID = strings.TrimSpace(input)

	var res models.LoginResponse
	if err := api.call(http.MethodPost, "/login", models.LoginRequest{CustomID: customID}, &res); err != nil {
		color.Red("login failed: %v", err)
		return
	}
	playerID = res.PlayerID
	if res.Created {
		color.Green("Welcome, %s! A new collection was created.", customID)
	}

	go listenEvents()
	showMenu(reader)
}

func showMenu(reader *bufio.Reader) {
	for {
		var view models.PlayerView
		if err := api.call(http.MethodGet, "/players/"+playerID, nil, &view); err != nil {
			color.Red("could not load player: %v", err)
			return
		}

		clearScreen()
		color.Cyan("=== Card Clicker RPG ===")
		fmt.Printf("Clicks: %d/%d\n", view.Player.ClickCount, view.Threshold)
		fmt.Printf("Dust: %d\n", view.Player.Dust)
		fmt.Printf("Cards: %d\n", len(view.Cards))
		fmt.Printf("Deck power: %d\n", view.Player.DeckPower)
		if view.AutoClick && game.AutoClickAmount(game.AggregateAbilities(view.Deck.Cards)) > 0 {
			color.Green("Auto-click: on")
		}
		for _, a := range view.Deck.Abilities {
			color.Magenta("  %s x%d: %s", a.Ability, a.Stacks, a.Effect)
		}
		fmt.Println()
		fmt.Println("[1] Click")
		fmt.Println("[2] My cards")
		fmt.Println("[3] My deck")
		fmt.Println("[4] Disenchant a card")
		fmt.Println("[5] Upgrade a card")
		fmt.Println("[6] Leaderboard")
		fmt.Println("[7] Save")
		fmt.Println("[8] Quit")
		fmt.Print("> ")

		input, _ := reader.ReadString('\n')
		switch strings.TrimSpace(input) {
		case "1":
			handleClick()
			continue
		case "2":
			printCards(view)
		case "3":
			printDeck(view)
		case "4":
			handleDisenchant(reader, view)
		case "5":
			handleUpgrade(reader, view)
		case "6":
			printLeaderboard()
		case "7":
			handleSave()
		case "8":
			color.Yellow("Saving...")
			if err := api.call(http.MethodDelete, "/players/"+playerID+"/session", nil, nil); err != nil {
				color.Red("final save failed: %v", err)
			}
			color.Yellow("Bye!")
			return
		default:
			color.Red("Invalid option.")
		}

		fmt.Print("\nPress Enter to continue...")
		_, _ = reader.ReadString('\n')
	}
}

func handleClick() {
	var res models.ClickResult
	if err := api.call(http.MethodPost, "/players/"+playerID+"/click", nil, &res); err != nil {
		color.Red("click failed: %v", err)
		time.Sleep(time.Second)
		return
	}
	for _, acq := range res.Acquired {
		printAcquired(acq.Card, acq.Promoted)
		time.Sleep(time.Second)
	}
	if res.FailedLookups > 0 {
		color.Red("The card slipped away... (%d)", res.FailedLookups)
		time.Sleep(time.Second)
	}
}

func printAcquired(card models.OwnedCard, promoted bool) {
	color.Yellow("★ New card! ★")
	if promoted {
		color.Magenta("[LUCKY] rarity raised to %s!", card.Rarity)
	}
	rarityColor(card.Rarity).Printf("[%s] %s\n", card.Rarity, card.Template.Name)
	fmt.Printf("HP:%d ATK:%d DEF:%d\n", card.Template.HP, card.Template.ATK, card.Template.DEF)
	fmt.Printf("Power: %d\n", card.Power())
}

func printCards(view models.PlayerView) {
	if len(view.Cards) == 0 {
		fmt.Println("You have no cards yet.")
		return
	}

	color.Cyan("=== Cards by power ===")
	for i, c := range view.Cards {
		marker := ""
		if c.Unseen {
			marker = color.GreenString(" NEW")
		}
		rarityColor(c.Rarity).Printf("%d. [%s] %s Lv.%d", i+1, c.Rarity, c.Template.Name, c.Level)
		fmt.Println(marker)
		fmt.Printf("   HP:%d ATK:%d DEF:%d | Power: %d | %s\n", c.Template.HP, c.Template.ATK, c.Template.DEF, c.Power(), c.Template.Ability)
	}
	_ = api.call(http.MethodPost, "/players/"+playerID+"/cards/seen", nil, nil)
}

func printDeck(view models.PlayerView) {
	if len(view.Deck.Cards) == 0 {
		fmt.Println("Your deck is empty.")
		return
	}

	mode := "top 5 by power"
	if !view.Deck.Auto {
		mode = "pinned"
	}
	color.Cyan("=== My deck (%s) ===", mode)
	fmt.Printf("Total power: %d\n\n", view.Deck.DeckPower)
	for i, c := range view.Deck.Cards {
		rarityColor(c.Rarity).Printf("%d. [%s] %s Lv.%d - power %d\n", i+1, c.Rarity, c.Template.Name, c.Level, c.Power())
	}
}

// pickCard reads a card number from the power-ordered list; 0 cancels
func pickCard(reader *bufio.Reader, view models.PlayerView, prompt string) (models.OwnedCard, bool) {
	printCards(view)
	if len(view.Cards) == 0 {
		return models.OwnedCard{}, false
	}
	fmt.Printf("\n%s (cancel: 0): ", prompt)
	input, _ := reader.ReadString('\n')
	idx, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || idx < 1 || idx > len(view.Cards) {
		return models.OwnedCard{}, false
	}
	return view.Cards[idx-1], true
}

func confirm(reader *bufio.Reader, prompt string) bool {
	fmt.Printf("%s (y/n): ", prompt)
	input, _ := reader.ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(input), "y")
}

func handleDisenchant(reader *bufio.Reader, view models.PlayerView) {
	card, ok := pickCard(reader, view, "Card to disenchant")
	if !ok || !confirm(reader, "Really disenchant it?") {
		return
	}

	var res models.DisenchantResult
	if err := api.call(http.MethodPost, "/players/"+playerID+"/cards/"+card.InstanceID+"/disenchant", nil, &res); err != nil {
		color.Red("disenchant failed: %v", err)
		return
	}
	color.Green("[%s] %s disenchanted, dust +%d (now %d)", res.Card.Rarity, card.Template.Name, res.DustGain, res.Dust)
}

func handleUpgrade(reader *bufio.Reader, view models.PlayerView) {
	card, ok := pickCard(reader, view, "Card to upgrade")
	if !ok {
		return
	}

	cost := game.UpgradeCost(card.Level, game.AggregateAbilities(view.Deck.Cards))
	fmt.Printf("Upgrade cost: %d dust (you have %d)\n", cost, view.Player.Dust)
	if !confirm(reader, "Upgrade?") {
		return
	}

	var res models.UpgradeResult
	if err := api.call(http.MethodPost, "/players/"+playerID+"/cards/"+card.InstanceID+"/upgrade", nil, &res); err != nil {
		color.Red("upgrade failed: %v", err)
		return
	}
	color.Green("%s Lv.%d -> Lv.%d (dust -%d)", card.Template.Name, res.Card.Level-1, res.Card.Level, res.Cost)
}

func printLeaderboard() {
	var entries []models.LeaderboardEntry
	if err := api.call(http.MethodGet, "/leaderboard?n=10", nil, &entries); err != nil {
		color.Red("leaderboard unavailable: %v", err)
		return
	}

	color.Cyan("=== Deck power TOP 10 ===")
	if len(entries) == 0 {
		fmt.Println("No rankings yet.")
		return
	}
	for _, e := range entries {
		if e.PlayerID == playerID {
			color.Yellow("%d. %s - %d ★ YOU", e.Rank, e.DisplayName, e.Score)
			continue
		}
		fmt.Printf("%d. %s - %d\n", e.Rank, e.DisplayName, e.Score)
	}
}

func handleSave() {
	var player models.PlayerState
	if err := api.call(http.MethodPost, "/players/"+playerID+"/save", nil, &player); err != nil {
		color.Red("save failed: %v", err)
		return
	}
	color.Green("Saved at %s", player.LastSaveTime.Local().Format(time.TimeOnly))
}

// listenEvents prints the cards won by auto-click while the menu is open
func listenEvents() {
	u, err := url.Parse(api.base)
	if err != nil {
		return
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/players/" + playerID + "/events"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var event models.Event
		if err := conn.ReadJSON(&event); err != nil {
			return
		}
		if event.Type == models.EventCardAcquired && event.Auto && event.Card != nil {
			fmt.Println()
			printAcquired(*event.Card, event.Promoted)
		}
	}
}

func rarityColor(r models.Rarity) *color.Color {
	switch r {
	case models.RarityLegendary:
		return color.New(color.FgYellow, color.Bold)
	case models.RarityEpic:
		return color.New(color.FgMagenta)
	case models.RarityRare:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgWhite)
	}
}

type apiClient struct {
	base string
	http *http.Client
}

func (a *apiClient) call(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, a.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var apiErr models.ErrorResponse
		if err := json.NewDecoder(res.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return errors.New(res.Status)
		}
		return errors.New(apiErr.Message)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func clearScreen() {
	switch runtime.GOOS {
	case "linux", "darwin": // Unix-like systems
		cmd := exec.Command("clear")
		cmd.Stdout = os.Stdout
		cmd.Run()
	case "windows":
		cmd := exec.Command("cmd", "/c", "cls")
		cmd.Stdout = os.Stdout
		cmd.Run()
	default:
		fmt.Print("\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n\n") // fallback
	}
}
