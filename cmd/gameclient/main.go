package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/catanatron/gameclient/pkg/api"
	"github.com/catanatron/gameclient/pkg/bot"
	"github.com/catanatron/gameclient/pkg/config"
	"github.com/catanatron/gameclient/pkg/dice"
	"github.com/catanatron/gameclient/pkg/game"
	"github.com/catanatron/gameclient/pkg/game/types"
	"github.com/catanatron/gameclient/pkg/gateway"
	"github.com/catanatron/gameclient/pkg/log"
	"github.com/catanatron/gameclient/pkg/notifications"
	"github.com/catanatron/gameclient/pkg/poll"
)

const revealDuration = 400 * time.Millisecond

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	mode := flag.String("mode", "play", "play, watch, pvp, list, delete or advice")
	serverURL := flag.String("server", cfg.ServerURL, "Game service base URL")
	players := flag.String("players", "CATANATRON,CATANATRON,CATANATRON,CATANATRON", "Seat keys for a new game (HUMAN, RANDOM, CATANATRON)")
	gameID := flag.String("game", "", "Existing game id (watch, delete, advice)")
	roomID := flag.String("room", "", "PvP room id; empty creates a new room")
	userName := flag.String("name", "", "PvP user name; empty generates a guest name")
	startRoom := flag.Bool("start", false, "Start the PvP room after joining (host only)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	logger := log.New(os.Stderr, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)

	client := api.NewClient(api.NewClientOptions{BaseURL: *serverURL})
	ctx := context.Background()

	switch *mode {
	case "play":
		err = runPlay(ctx, client, cfg, strings.Split(*players, ","))
	case "watch":
		err = runWatch(ctx, client, cfg, *gameID)
	case "pvp":
		err = runPvp(ctx, client, cfg, *roomID, *userName, *startRoom)
	case "list":
		err = runList(ctx, client)
	case "delete":
		err = runDelete(ctx, client, *gameID)
	case "advice":
		err = runAdvice(ctx, client, *gameID)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

// runPlay creates a game and drives it to completion, pacing automated
// moves and narrating each action.
func runPlay(ctx context.Context, client *api.Client, cfg *config.Config, playerKeys []string) error {
	gameID, err := client.CreateGame(ctx, playerKeys)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	log.Info("Created game %s", gameID)

	store := game.NewStore()
	store.SetGame(gameID)
	queue := notifications.NewQueue(notifications.DefaultCapacity)
	gw := gateway.NewGateway(gateway.NewGatewayOptions{
		Submitter:     client,
		Store:         store,
		Notifications: queue,
	})
	runner := bot.NewRunner(bot.NewRunnerOptions{
		Advancer:    gw,
		Store:       store,
		PacingDelay: cfg.PacingDelay,
	})

	sequencer := dice.NewSequencer()
	done := make(chan *types.GameSnapshot, 1)
	unsubscribe := store.Subscribe(func(snapshot *types.GameSnapshot) {
		sequencer.Observe(snapshot)
		if snapshot.Ended() {
			select {
			case done <- snapshot:
			default:
			}
		}
	})
	defer unsubscribe()

	runner.Start(gameID)
	defer runner.Stop()

	snapshot, err := client.GetState(ctx, gameID, api.StateLatest)
	if err != nil {
		return fmt.Errorf("failed to fetch initial state: %w", err)
	}
	store.Replace(snapshot)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case final := <-done:
			drainNotifications(queue)
			log.Info("Game over: %s wins after %d turns", *final.WinningColor, final.NumTurns)
			return nil
		case <-ticker.C:
			drainNotifications(queue)
			presentReveal(sequencer)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// presentReveal is the CLI's stand-in for the roll overlay: hold the
// reveal for a beat, then hand it to the persistent display.
func presentReveal(sequencer *dice.Sequencer) {
	roll, ok := sequencer.Revealing()
	if !ok {
		return
	}
	log.Info("%s is rolling...", roll.Color)
	time.Sleep(revealDuration)
	sequencer.RevealComplete()
	if settled, ok := sequencer.Settled(); ok {
		log.Info("Dice show %d + %d", settled.Die1, settled.Die2)
	}
}

func drainNotifications(queue *notifications.Queue) {
	for _, notification := range queue.Drain() {
		switch notification.Severity {
		case notifications.SeverityError:
			log.Error("%s", notification.Text)
		case notifications.SeverityWarning:
			log.Warn("%s", notification.Text)
		default:
			log.Info("%s", notification.Text)
		}
	}
}

// runWatch polls an existing game and narrates new records until it ends.
func runWatch(ctx context.Context, client *api.Client, cfg *config.Config, gameID string) error {
	if gameID == "" {
		return fmt.Errorf("watch mode requires -game")
	}
	store := game.NewStore()
	store.SetGame(gameID)

	done := watchStore(store)

	poller := poll.NewPoller(poll.NewPollerOptions{
		Fetcher:  &poll.GameFetcher{Client: client, GameID: gameID},
		Store:    store,
		Interval: cfg.PollInterval,
	})
	poller.Start()
	defer poller.Stop()

	final := <-done
	log.Info("Game over: %s wins", *final.WinningColor)
	return nil
}

// watchStore narrates accepted snapshots and resolves once the game ends.
func watchStore(store *game.Store) <-chan *types.GameSnapshot {
	done := make(chan *types.GameSnapshot, 1)
	var prev *types.GameSnapshot
	store.Subscribe(func(snapshot *types.GameSnapshot) {
		for _, record := range game.NewRecords(prev, snapshot) {
			log.Info("%s", gateway.DescribeRecord(record))
		}
		prev = snapshot
		if snapshot.Ended() {
			select {
			case done <- snapshot:
			default:
			}
		}
	})
	return done
}

// runPvp joins (or creates) a room and follows its game by polling. On
// session invalidation it rejoins rather than retrying blindly.
func runPvp(ctx context.Context, client *api.Client, cfg *config.Config, roomID, userName string, startRoom bool) error {
	if userName == "" {
		userName = "guest-" + uuid.NewString()[:8]
	}
	if roomID == "" {
		room, err := client.CreateRoom(ctx, userName+"'s room")
		if err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}
		roomID = room.RoomID
		log.Info("Created room %s", roomID)
	}

	session, room, err := client.JoinRoom(ctx, roomID, userName)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}
	if session.IsSpectator {
		log.Info("Joined room %s as spectator", roomID)
	} else {
		log.Info("Joined room %s as %s", roomID, *session.SeatColor)
	}

	if startRoom {
		if _, err := session.Start(ctx); err != nil {
			return fmt.Errorf("failed to start room: %w", err)
		}
	}

	// Wait for the game to exist before following it.
	for room.GameID == nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.PollInterval):
		}
		room, err = session.Status(ctx)
		if err != nil {
			if api.IsUnauthorized(err) {
				log.Warn("Session invalidated, rejoining room %s", roomID)
				session, room, err = client.JoinRoom(ctx, roomID, userName)
				if err != nil {
					return fmt.Errorf("failed to rejoin room: %w", err)
				}
				continue
			}
			return fmt.Errorf("failed to fetch room status: %w", err)
		}
	}
	log.Info("Following game %s", *room.GameID)

	store := game.NewStore()
	store.SetGame(*room.GameID)
	done := watchStore(store)

	poller := poll.NewPoller(poll.NewPollerOptions{
		Fetcher:  session,
		Store:    store,
		Interval: cfg.PollInterval,
	})
	poller.Start()
	defer poller.Stop()

	final := <-done
	log.Info("Game over: %s wins", *final.WinningColor)
	return nil
}

func runList(ctx context.Context, client *api.Client) error {
	games, err := client.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	for _, summary := range games {
		status := "in progress"
		if summary.WinningColor != nil {
			status = fmt.Sprintf("won by %s", *summary.WinningColor)
		}
		fmt.Printf("%s\tstate %d\t%s\n", summary.GameID, summary.StateIndex, status)
	}
	return nil
}

func runDelete(ctx context.Context, client *api.Client, gameID string) error {
	if gameID == "" {
		return fmt.Errorf("delete mode requires -game")
	}
	if err := client.DeleteGame(ctx, gameID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	log.Info("Deleted game %s", gameID)
	return nil
}

func runAdvice(ctx context.Context, client *api.Client, gameID string) error {
	if gameID == "" {
		return fmt.Errorf("advice mode requires -game")
	}
	response, err := client.NegotiationAdvice(ctx, gameID, api.StateLatest, api.AdviceRequest{})
	if err != nil {
		return fmt.Errorf("failed to fetch advice: %w", err)
	}
	if !response.Success {
		return fmt.Errorf("advice unavailable: %s", response.Error)
	}
	fmt.Println(response.Advice)
	return nil
}
