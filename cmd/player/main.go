package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"multitunes/internal/models"
	"multitunes/internal/player"

	logger "github.com/Bparsons0904/goLogger"
)

func main() {
	var (
		serverURL   = flag.String("server", "http://localhost:8288", "API server base URL")
		genre       = flag.Int("genre", int(models.GenreAll), "genre id (0 for all)")
		fresh       = flag.Bool("fresh", false, "play a fresh radio playlist instead of the daily game")
		historyPath = flag.String("history", defaultHistoryPath(), "played-games history file")
	)
	flag.Parse()

	log := logger.New("player").File("main")

	if !models.Genre(*genre).Valid() {
		fmt.Fprintf(os.Stderr, "unknown genre id %d\n", *genre)
		os.Exit(1)
	}

	game, err := fetchGame(*serverURL, models.Genre(*genre), *fresh)
	if err != nil {
		_ = log.Err("failed to fetch game", err)
		fmt.Fprintf(os.Stderr, "could not fetch game: %v\n", err)
		os.Exit(1)
	}

	session := &session{
		game:    game,
		loader:  player.NewLoader(player.NewHTTPStemSource(*serverURL)),
		history: player.NewFileHistoryStore(*historyPath),
		input:   readInput(),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := session.play(); err != nil {
		_ = log.Err("session ended with error", err)
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "multitunes-history.json"
	}
	return filepath.Join(home, ".multitunes", "history.json")
}

// fetchGame asks the API for today's game, or a fresh ephemeral one.
func fetchGame(baseURL string, genre models.Genre, fresh bool) (*models.Game, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	var resp *http.Response
	var err error
	if fresh {
		body, marshalErr := json.Marshal(map[string]models.Genre{"genre": genre})
		if marshalErr != nil {
			return nil, marshalErr
		}
		resp, err = client.Post(
			fmt.Sprintf("%s/api/game/fresh", baseURL),
			"application/json",
			bytes.NewReader(body),
		)
	} else {
		resp, err = client.Get(fmt.Sprintf("%s/api/game/daily/%d", baseURL, genre))
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil && payload.Error != "" {
			return nil, fmt.Errorf("server: %s", payload.Error)
		}
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var payload struct {
		Game *models.Game `json:"game"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Game == nil || len(payload.Game.Questions) == 0 {
		return nil, fmt.Errorf("server returned an empty game")
	}
	return payload.Game, nil
}

// readInput pumps stdin lines into a channel so the tick loop can poll
// it without blocking.
func readInput() <-chan string {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()
	return lines
}

type session struct {
	game    *models.Game
	loader  *player.Loader
	history player.HistoryStore
	input   <-chan string
	rand    *rand.Rand

	// choices holds the shuffled display order of the current question's
	// answers; the stored order always lists the correct answer first.
	choices []models.Answer
}

func (s *session) play() error {
	controller := player.NewController(s.game, s.loader, s.history, player.RealClock{})

	if controller.Begin() == player.StateAlreadyPlayed {
		record, _ := s.history.HasPlayed(s.game)
		fmt.Printf("You already played this game (score %d/40). Come back tomorrow!\n", record.Score)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.loader.Start(ctx, s.game)

	s.printHeader()

	ticker := time.NewTicker(player.TickInterval)
	defer ticker.Stop()

	lastState := player.StateUnknown
	lastRevealed := 0

	for {
		select {
		case <-ticker.C:
			state := controller.Tick()

			if state != lastState {
				s.onStateChange(controller, state)
				lastState = state
				lastRevealed = 0
			}

			if state == player.StatePlaying {
				if revealed := len(controller.Revealed()); revealed != lastRevealed {
					s.printRevealed(controller)
					lastRevealed = revealed
				}
			}

			if state == player.StateDone {
				s.printResults(controller)
				return nil
			}

		case line, ok := <-s.input:
			if !ok {
				return nil
			}
			if err := s.onInput(controller, line); err != nil {
				fmt.Println(err)
			}
		}
	}
}

func (s *session) onStateChange(controller *player.Controller, state player.State) {
	switch state {
	case player.StateLoading:
		fmt.Println("Buffering stems...")
	case player.StateReady:
		fmt.Println("Ready. Press enter to start.")
	case player.StatePlaying:
		s.printQuestion(controller)
	case player.StateIntersong:
		s.printIntersong(controller)
	}
}

func (s *session) onInput(controller *player.Controller, line string) error {
	switch controller.State() {
	case player.StateReady:
		return controller.Start()

	case player.StatePlaying:
		choice, err := strconv.Atoi(line)
		if err != nil || choice < 1 || choice > len(s.choices) {
			return fmt.Errorf("enter a number between 1 and %d", len(s.choices))
		}

		points, err := controller.Answer(s.choices[choice-1].ID)
		if err != nil {
			return err
		}
		if points > 0 {
			fmt.Printf("Correct! +%d points\n", points)
		} else {
			fmt.Println("Wrong answer, 0 points.")
		}
		return nil

	case player.StateIntersong:
		_, err := controller.Next()
		return err

	default:
		return nil
	}
}

func (s *session) printHeader() {
	kind := "Daily game"
	if s.game.ID == 0 {
		kind = "Fresh playlist"
	}
	fmt.Printf(
		"MultiTunes — %s (%s, %s)\n",
		kind,
		s.game.Genre,
		s.game.Date.Format(time.DateOnly),
	)
	fmt.Printf("%d questions. Stems reveal over time; answer fast for more points.\n\n", len(s.game.Questions))
}

func (s *session) printQuestion(controller *player.Controller) {
	question := controller.CurrentQuestion()
	if question == nil {
		return
	}

	s.choices = append([]models.Answer(nil), question.Answers...)
	s.rand.Shuffle(len(s.choices), func(i, j int) {
		s.choices[i], s.choices[j] = s.choices[j], s.choices[i]
	})

	fmt.Printf("--- Question %d of %d ---\n", controller.Question()+1, len(s.game.Questions))
	for i, answer := range s.choices {
		fmt.Printf("  %d) %s\n", i+1, answer.Title)
	}
	fmt.Println("Type the number of your answer:")
}

func (s *session) printRevealed(controller *player.Controller) {
	names := make([]string, 0, len(models.Stems))
	for _, stem := range controller.Revealed() {
		names = append(names, string(stem))
	}
	fmt.Printf("Now playing: %s\n", strings.Join(names, ", "))
}

func (s *session) printIntersong(controller *player.Controller) {
	question := controller.CurrentQuestion()
	if question != nil && question.Track != nil {
		fmt.Printf("That was %q by %s.\n", question.Track.Title, question.Track.Artist)
	}
	if controller.Question() < len(s.game.Questions)-1 {
		fmt.Println("Press enter for the next question.")
	} else {
		fmt.Println("Press enter to finish.")
	}
}

func (s *session) printResults(controller *player.Controller) {
	fmt.Println("\n=== Game over ===")
	for i, points := range controller.Points() {
		fmt.Printf("  Question %d: %d points\n", i+1, points)
	}
	maxScore := len(s.game.Questions) * 8
	fmt.Printf("Final score: %d/%d\n", controller.Score(), maxScore)
}
