package internal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/centrifugal/centrifuge"
	"github.com/oklog/ulid/v2"
	"github.com/ogero/subtitle-shots/internal/cache"
	"github.com/ogero/subtitle-shots/internal/common"
	"github.com/ogero/subtitle-shots/internal/loki"
	"github.com/ogero/subtitle-shots/pkg/frequency"
	"github.com/ogero/subtitle-shots/pkg/game"
	"github.com/ogero/subtitle-shots/pkg/selector"
	"github.com/ogero/subtitle-shots/pkg/subtitle"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
)

// GameRequest is a game generation request along with the uploaded subtitle.
type GameRequest struct {
	game.Request
	// Title is an optional, free form, name of the movie.
	Title string
	// Filename is the uploaded file name, used to detect archives and subtitle formats.
	Filename string
	// Subtitle is the uploaded file contents.
	Subtitle io.Reader
	// Seed makes the generation reproducible when set.
	Seed *uint64
}

// Game is a generated game, ready to be served.
type Game struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	game.Result
}

// Stats represents statistical data including game counts in the last 24 hours and instant title information.
type Stats struct {
	// GamesCount24 represents the number of games generated in the last 24 hours.
	GamesCount24 int `json:"gamesCount24"`
	// FailedGamesCount24 represents the number of failed generations in the last 24 hours.
	FailedGamesCount24 int `json:"failedGamesCount24"`
	// TitleInstant holds the title of the last generated game.
	TitleInstant string `json:"titleInstant"`
}

// GameService generates games from uploaded subtitles and publishes usage stats.
type GameService interface {
	// Handler handles incoming HTTP requests via a websocket handler
	http.Handler
	// Generate reads the uploaded subtitle and generates a game from it.
	Generate(ctx context.Context, req GameRequest) (*Game, error)
	// BroadcastStats updates and publishes statistical data to a websocket channel.
	// Accepts a function to modify stats and returns an error if updating or publishing fails.
	BroadcastStats(statsUpdater func(stats *Stats) error) error
	// StartPollingStats fetches and broadcasts statistical data every interval, until ctx is done.
	StartPollingStats(ctx context.Context, interval time.Duration)
	// Shutdown stops the websocket node.
	Shutdown(ctx context.Context) error
}

// GameServiceOptions configures a GameService.
type GameServiceOptions struct {
	StatsWebsocketChannel string
	// Language of the stopwords, part of the index cache key.
	Language         language.Tag
	MaxSubtitleBytes int64
	CacheTTL         time.Duration
}

type gameService struct {
	opts      GameServiceOptions
	assembler *game.Assembler
	loki      loki.Loki

	node             *centrifuge.Node
	websocketHandler *centrifuge.WebsocketHandler
	statsMutex       *sync.Mutex
	stats            Stats
}

// NewGameService creates a new instance of GameService. loki may be nil, stats are then not polled.
// The cache must be open before calling Generate.
func NewGameService(opts GameServiceOptions, assembler *game.Assembler, loki loki.Loki) (GameService, error) {
	svc := &gameService{
		opts:      opts,
		assembler: assembler,
		loki:      loki,

		statsMutex: &sync.Mutex{},
	}

	node, err := centrifuge.New(centrifuge.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to centrifuge.New: %w", err)
	}
	svc.node = node

	node.OnConnecting(func(ctx context.Context, e centrifuge.ConnectEvent) (centrifuge.ConnectReply, error) {
		return centrifuge.ConnectReply{}, nil
	})

	node.OnConnect(func(client *centrifuge.Client) {
		client.OnSubscribe(func(e centrifuge.SubscribeEvent, cb centrifuge.SubscribeCallback) {
			if e.Channel != opts.StatsWebsocketChannel {
				cb(centrifuge.SubscribeReply{}, centrifuge.ErrorPermissionDenied)
				return
			}

			cb(centrifuge.SubscribeReply{
				Options: centrifuge.SubscribeOptions{},
			}, nil)

			go func() {
				err := svc.BroadcastStats(func(data *Stats) error { return nil })
				if err != nil {
					common.Log.Warn("Failed to internal.GameService.BroadcastStats", "err", err)
				}
			}()
		})
	})

	if err := node.Run(); err != nil {
		return nil, fmt.Errorf("failed to centrifuge.Node.Run: %w", err)
	}

	svc.websocketHandler = centrifuge.NewWebsocketHandler(node, centrifuge.WebsocketConfig{
		ReadBufferSize:     1024,
		UseWriteBufferPool: true,
	})

	return svc, nil
}

// Generate reads the uploaded subtitle and generates a game from it.
// The frequency index of a subtitle is cached, so replaying a movie only runs the selection.
func (s *gameService) Generate(ctx context.Context, req GameRequest) (*Game, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.GameService.Generate")
	defer span.End()

	span.SetAttributes(
		attribute.Int("game.players", req.Players),
		attribute.Int("game.level", req.Level),
		attribute.Int("game.bonus", req.BonusWords),
		attribute.String("game.strategy", req.Strategy.String()),
		attribute.String("game.title", req.Title),
		attribute.String("file.name", req.Filename),
	)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	cues, err := subtitle.Read(req.Filename, req.Subtitle, s.opts.MaxSubtitleBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to subtitle.Read: %w", err)
	}
	span.SetAttributes(attribute.Int("subtitle.cues", len(cues)))

	index, err := s.index(ctx, cues)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("index.words", len(index)))

	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed = rand.Uint64()
	}
	rnd := rand.New(rand.NewPCG(seed, seed))

	result, err := s.assembler.Play(rnd, req.Request, index)
	if err != nil {
		common.GamesGeneratedTotalIncr(ctx, req.Strategy.String(), resultLabel(err))
		return nil, fmt.Errorf("failed to game.Assembler.Play: %w", err)
	}
	common.GamesGeneratedTotalIncr(ctx, result.Strategy.String(), resultLabel(nil))
	span.SetAttributes(attribute.String("game.strategy.used", result.Strategy.String()))

	g := &Game{
		ID:     ulid.Make().String(),
		Title:  req.Title,
		Result: *result,
	}
	span.SetAttributes(attribute.String("game.id", g.ID))
	common.Log.InfoContext(ctx, loki.GameGeneratedMessage,
		"id", g.ID,
		"title", g.Title,
		"players", req.Players,
		"level", req.Level,
		"strategy", result.Strategy.String())

	if g.Title != "" {
		go func() {
			err := s.BroadcastStats(func(data *Stats) error {
				data.TitleInstant = g.Title
				return nil
			})
			if err != nil {
				common.Log.WarnContext(ctx, "Failed to internal.GameService.BroadcastStats", "err", err)
			}
		}()
	}

	return g, nil
}

// index returns the frequency index of cues, from the cache when possible.
func (s *gameService) index(ctx context.Context, cues []string) (frequency.Index, error) {

	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer("").Start(ctx, "internal.GameService.index")
	defer span.End()

	sum := sha256.Sum256([]byte(strings.Join(cues, "\n")))

	cacheResult := "hit"
	cacheKey := fmt.Sprintf("frequency.index : %s : %s", s.opts.Language, hex.EncodeToString(sum[:]))
	index, err := cache.Memoize[frequency.Index](cacheKey, s.opts.CacheTTL, func() (*frequency.Index, error) {

		cacheResult = "miss"
		index, err := s.assembler.Analyze(cues)
		if err != nil {
			return nil, fmt.Errorf("failed to game.Assembler.Analyze: %w", err)
		}

		return &index, nil
	})
	span.SetAttributes(attribute.String("cache.frequency.index.result", cacheResult))
	common.CacheGetsTotalIncr(ctx, "frequency.index", cacheResult)
	if err != nil {
		return nil, err
	}

	return *index, nil
}

func resultLabel(err error) string {
	var genErr *selector.GenerationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &genErr):
		return genErr.Kind.String()
	case errors.Is(err, game.ErrInvalidRequest):
		return "invalid_request"
	default:
		return "error"
	}
}

// BroadcastStats updates and publishes statistical data to a websocket channel.
// Accepts a function to modify stats and returns an error if updating or publishing fails.
func (s *gameService) BroadcastStats(statsUpdater func(stats *Stats) error) error {
	stats, err := func() (Stats, error) {
		s.statsMutex.Lock()
		defer s.statsMutex.Unlock()
		err := statsUpdater(&s.stats)
		if err != nil {
			return Stats{}, err
		}
		return s.stats, nil
	}()
	if err != nil {
		return fmt.Errorf("failed to statsUpdater: %w", err)
	}

	b, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to json.Marshal: %w", err)
	}

	_, err = s.node.Publish(s.opts.StatsWebsocketChannel, b)
	if err != nil {
		return fmt.Errorf("failed to centrifuge.Node.Publish: %w", err)
	}

	return nil
}

// StartPollingStats fetches and broadcasts statistical data every interval, until ctx is done.
// It returns immediately when the service has no Loki client.
func (s *gameService) StartPollingStats(ctx context.Context, interval time.Duration) {
	if s.loki == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.pollStats(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *gameService) pollStats(ctx context.Context) {
	games, gamesErr := s.loki.GetGames24(ctx)
	if gamesErr != nil {
		common.Log.ErrorContext(ctx, "Failed to loki.Loki.GetGames24", "err", gamesErr)
	}
	failed, failedErr := s.loki.GetFailedGames24(ctx)
	if failedErr != nil {
		common.Log.ErrorContext(ctx, "Failed to loki.Loki.GetFailedGames24", "err", failedErr)
	}
	// A failed query keeps the previous count.
	err := s.BroadcastStats(func(stats *Stats) error {
		if gamesErr == nil {
			stats.GamesCount24 = games
		}
		if failedErr == nil {
			stats.FailedGamesCount24 = failed
		}
		return nil
	})
	if err != nil {
		common.Log.WarnContext(ctx, "Failed to internal.GameService.BroadcastStats", "err", err)
	}
}

// ServeHTTP handles incoming HTTP requests via a websocket handler
func (s *gameService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	newCtx := centrifuge.SetCredentials(ctx, &centrifuge.Credentials{})
	r = r.WithContext(newCtx)

	s.websocketHandler.ServeHTTP(w, r)
}

// Shutdown stops the websocket node.
func (s *gameService) Shutdown(ctx context.Context) error {
	if err := s.node.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to centrifuge.Node.Shutdown: %w", err)
	}
	return nil
}
