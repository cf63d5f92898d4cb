// Command autoplay plays the memory match game through the REST API with a
// perfect-memory strategy. It is useful for load testing a running server and
// for checking that the rules stay winnable on every board size.
//
// With --watch it also subscribes to the session's WebSocket stream and logs
// every pushed snapshot, including the timer ticks and delayed flip-backs.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/memory-match-game/game/engine"
	hub "github.com/wricardo/memory-match-game/transport/websocket"
)

// Summary tallies outcomes over several games
type Summary struct {
	Games    int
	Outcomes map[engine.Outcome]int
	Moves    int
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "Play games against a running server with a perfect-memory bot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server base URL", Sources: cli.EnvVars("API_URL")},
			&cli.StringFlag{Name: "config", Usage: "Board preset (tiny, small, medium, large, huge)"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "Number of games to play"},
			&cli.DurationFlag{Name: "poll", Value: 100 * time.Millisecond, Usage: "Wait between polls while the board is locked"},
			&cli.BoolFlag{Name: "watch", Usage: "Log WebSocket pushes for the session"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level", Sources: cli.EnvVars("LOG_LEVEL")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if lvl, err := zerolog.ParseLevel(cmd.String("log-level")); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
			return ctx, nil
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	client := NewClient(cmd.String("url"))
	state, err := client.CreateSession(cmd.String("config"))
	if err != nil {
		return err
	}
	log.Info().Str("session_id", client.SessionID()).Int("pairs", state.PairCount).Msg("session created")

	if cmd.Bool("watch") {
		go watch(ctx, cmd.String("url"), client.SessionID())
	}

	summary := Summary{Outcomes: make(map[engine.Outcome]int)}
	player := NewPlayer()
	for i := 0; i < int(cmd.Int("games")); i++ {
		if i > 0 {
			if _, err := client.NewGame(); err != nil {
				return err
			}
		}
		player.Reset()

		final, err := playGame(ctx, client, player, cmd.Duration("poll"))
		if err != nil {
			return err
		}
		summary.Games++
		summary.Outcomes[final.Outcome]++
		summary.Moves += final.Moves

		log.Info().
			Int("game", i+1).
			Str("outcome", string(final.Outcome)).
			Int("score", final.Score).
			Int("moves", final.Moves).
			Int("elapsed", final.ElapsedSeconds).
			Msg(final.Message)
	}

	fmt.Println(formatSummary(summary))
	return nil
}

// playGame flips cards until the game finishes
func playGame(ctx context.Context, client *Client, player *Player, poll time.Duration) (*engine.GameState, error) {
	state, err := client.GetState()
	if err != nil {
		return nil, err
	}

	for !state.Finished {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cardID, ok := player.Next(state)
		if !ok {
			time.Sleep(poll)
			if state, err = client.GetState(); err != nil {
				return nil, err
			}
			continue
		}

		result, err := client.Flip(cardID)
		if err != nil {
			return nil, err
		}
		if !result.Accepted {
			log.Debug().Int("card_id", cardID).Str("reason", result.Message).Msg("flip rejected")
			time.Sleep(poll)
		}
		player.Observe(result.GameState)
		state = result.GameState

		log.Debug().
			Int("card_id", cardID).
			Int("moves", state.Moves).
			Int("score", state.Score).
			Int("known", player.Known()).
			Msg("flip")
	}
	return state, nil
}

// websocketURL turns an http(s) base URL into the session's ws(s) endpoint
func websocketURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()
	return u.String(), nil
}

// watch logs every message pushed for the session until ctx ends or the connection drops
func watch(ctx context.Context, baseURL, sessionID string) {
	wsURL, err := websocketURL(baseURL, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("invalid websocket URL")
		return
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		log.Error().Err(err).Str("url", wsURL).Msg("websocket dial failed")
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg hub.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() == nil {
				log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
		event := log.Info().Str("session_id", msg.SessionID)
		if msg.Event != "" {
			event = event.Str("event", msg.Event)
		}
		if s := msg.GameState; s != nil {
			event = event.
				Int("score", s.Score).
				Int("moves", s.Moves).
				Int("seconds_remaining", s.SecondsRemaining).
				Bool("locked", s.Locked)
		}
		event.Msg("push")
	}
}

func formatSummary(s Summary) string {
	if s.Games == 0 {
		return "No games played"
	}
	return fmt.Sprintf("Games: %d | Wins: %d | Timeouts: %d | Out of moves: %d | Avg moves: %.1f",
		s.Games,
		s.Outcomes[engine.OutcomeWin],
		s.Outcomes[engine.OutcomeTimeout],
		s.Outcomes[engine.OutcomeMovesExhausted],
		float64(s.Moves)/float64(s.Games))
}
