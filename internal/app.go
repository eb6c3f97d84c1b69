package internal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ogero/subtitle-shots/internal/common"
	"github.com/ogero/subtitle-shots/internal/loki"
	"github.com/ogero/subtitle-shots/pkg/game"
	"github.com/ogero/subtitle-shots/pkg/selector"
	"github.com/ogero/subtitle-shots/pkg/subtitle"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// App represents the main application structure that holds the game service and the request defaults.
type App struct {
	GameService     GameService
	DefaultStrategy selector.Strategy
	// FallbackStrategy is used when a request does not name one. Nil disables fallback by default.
	FallbackStrategy *selector.Strategy
}

/*
NewApp creates a new instance of the App struct.

Parameters:
  - gameService: The service generating the games.
  - defaultStrategy: The strategy used when a request does not name one.
  - fallbackStrategy: The fallback used when a request does not name one, may be nil.

Returns:
  - A pointer to the newly created App instance.
*/
func NewApp(gameService GameService, defaultStrategy selector.Strategy, fallbackStrategy *selector.Strategy) (*App, error) {
	if _, err := defaultStrategy.Selector(); err != nil {
		return nil, err
	}
	return &App{
		GameService:      gameService,
		DefaultStrategy:  defaultStrategy,
		FallbackStrategy: fallbackStrategy,
	}, nil
}

// Routes mounts the app handlers on r.
func (a *App) Routes(r chi.Router) {
	r.Post("/games", a.GamesHandler)
	r.Get("/levels", a.LevelsHandler)
	r.Get("/strategies", a.StrategiesHandler)
	r.HandleFunc("/connection/websocket", a.WebsocketHandler)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// LevelResponse describes a named intoxication level.
type LevelResponse struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// StrategiesResponse lists the selection strategies.
type StrategiesResponse struct {
	Default    selector.Strategy   `json:"default"`
	Fallback   *selector.Strategy  `json:"fallback,omitempty"`
	Strategies []selector.Strategy `json:"strategies"`
}

/*
GamesHandler generates a game from the subtitle sent as the request body.

Query parameters: players and level are required; bonus, strategy, fallback, seed, title and filename are optional.
*/
func (a *App) GamesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	common.Log.DebugContext(ctx, "GamesHandler")

	badRequest := func(msg string, err error) {
		common.Log.WarnContext(ctx, msg, "err", err)
		span.RecordError(err)
		a.writeError(w, r, http.StatusBadRequest, "", err)
	}

	query := r.URL.Query()

	players, err := common.ParsePlayers(query.Get("players"))
	if err != nil {
		badRequest("Failed to common.ParsePlayers", err)
		return
	}

	level, err := game.ParseLevel(query.Get("level"))
	if err != nil {
		badRequest("Failed to game.ParseLevel", err)
		return
	}
	if err := common.ValidateLevel(int(level)); err != nil {
		badRequest("Failed to common.ValidateLevel", err)
		return
	}

	bonus, err := common.ParseBonus(query.Get("bonus"))
	if err != nil {
		badRequest("Failed to common.ParseBonus", err)
		return
	}

	strategy := a.DefaultStrategy
	if s := query.Get("strategy"); s != "" {
		if strategy, err = selector.ParseStrategy(s); err != nil {
			badRequest("Failed to selector.ParseStrategy", err)
			return
		}
	}

	fallback := a.FallbackStrategy
	switch s := query.Get("fallback"); s {
	case "":
	case "none":
		fallback = nil
	default:
		f, err := selector.ParseStrategy(s)
		if err != nil {
			badRequest("Failed to selector.ParseStrategy", err)
			return
		}
		fallback = &f
	}

	seed, err := common.ParseSeed(query.Get("seed"))
	if err != nil {
		badRequest("Failed to common.ParseSeed", err)
		return
	}

	title := query.Get("title")
	if err := common.ValidateTitle(title); err != nil {
		badRequest("Failed to common.ValidateTitle", err)
		return
	}

	filename := query.Get("filename")
	if err := common.ValidateFilename(filename); err != nil {
		badRequest("Failed to common.ValidateFilename", err)
		return
	}

	span.SetAttributes(
		attribute.Int("params.players", players),
		attribute.Int("params.level", int(level)),
		attribute.String("params.strategy", strategy.String()),
	)

	g, err := a.GameService.Generate(ctx, GameRequest{
		Request: game.Request{
			Players:    players,
			Level:      int(level),
			BonusWords: bonus,
			Strategy:   strategy,
			Fallback:   fallback,
		},
		Title:    title,
		Filename: filename,
		Subtitle: r.Body,
		Seed:     seed,
	})
	if err != nil {
		span.RecordError(err)
		status, kind := statusFor(err)
		if status == http.StatusInternalServerError {
			common.Log.ErrorContext(ctx, loki.GameFailedMessage, "err", err)
		} else {
			common.Log.WarnContext(ctx, loki.GameFailedMessage, "err", err, "kind", kind)
		}
		a.writeError(w, r, status, kind, err)
		return
	}

	a.writeJSON(w, r, http.StatusCreated, g)
}

// statusFor maps a generation error to its HTTP status and error kind.
func statusFor(err error) (int, string) {
	var genErr *selector.GenerationError
	switch {
	case errors.Is(err, game.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, subtitle.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "subtitle_too_large"
	case errors.Is(err, subtitle.ErrUnsupportedFormat):
		return http.StatusBadRequest, "unsupported_subtitle"
	case errors.Is(err, subtitle.ErrUndecodable):
		return http.StatusBadRequest, "undecodable_subtitle"
	case errors.As(err, &genErr):
		return http.StatusUnprocessableEntity, genErr.Kind.String()
	default:
		return http.StatusInternalServerError, ""
	}
}

// LevelsHandler lists the named intoxication levels.
func (a *App) LevelsHandler(w http.ResponseWriter, r *http.Request) {
	levels := game.Levels()
	response := make([]LevelResponse, 0, len(levels))
	for _, l := range levels {
		response = append(response, LevelResponse{Name: l.String(), Level: int(l)})
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	a.writeJSON(w, r, http.StatusOK, response)
}

// StrategiesHandler lists the selection strategies and the defaults.
func (a *App) StrategiesHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, r, http.StatusOK, StrategiesResponse{
		Default:    a.DefaultStrategy,
		Fallback:   a.FallbackStrategy,
		Strategies: selector.Strategies(),
	})
}

// WebsocketHandler handles WebSocket connections
func (a *App) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	common.Log.DebugContext(ctx, "WebsocketHandler")

	a.GameService.ServeHTTP(w, r)
}

func (a *App) writeError(w http.ResponseWriter, r *http.Request, status int, kind string, err error) {
	a.writeJSON(w, r, status, ErrorResponse{
		Error:   http.StatusText(status),
		Kind:    kind,
		Message: err.Error(),
	})
}

func (a *App) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	ctx := r.Context()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.Log.ErrorContext(ctx, "Failed to write response", "err", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}
