package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ogero/subtitle-shots/internal"
	"github.com/ogero/subtitle-shots/internal/cache"
	"github.com/ogero/subtitle-shots/internal/common"
	"github.com/ogero/subtitle-shots/internal/config"
	"github.com/ogero/subtitle-shots/internal/loki"
	"github.com/ogero/subtitle-shots/pkg/game"
	"github.com/ogero/subtitle-shots/pkg/lexical"
	"github.com/ogero/subtitle-shots/pkg/transport"
	slogchi "github.com/samber/slog-chi"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "subtitle-shots"

// version is set at build time with -ldflags "-X main.version=..."
var version = "0.0.0-dev"

func main() {
	if err := run(); err != nil {
		common.Log.Error("Failed to run", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to config.Load: %w", err)
	}

	shutdownLogger, err := common.InitLogger(serviceName, version, cfg.ServiceEnvironment, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to common.InitLogger: %w", err)
	}
	defer func() { _ = shutdownLogger(context.Background()) }()

	shutdownInstrumentation, err := common.InitInstrumentation(serviceName, version, cfg.ServiceEnvironment, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to common.InitInstrumentation: %w", err)
	}
	defer shutdownInstrumentation(context.Background())

	if err := cache.Open(cfg.CacheDir); err != nil {
		return fmt.Errorf("failed to cache.Open: %w", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			common.Log.Error("Failed to cache.Close", "err", err)
		}
	}()

	var stopwords *lexical.Stopwords
	if cfg.StopwordsFile != "" {
		stopwords, err = lexical.LoadStopwordsFile(cfg.StopwordsFile)
	} else {
		stopwords, err = lexical.LoadStopwords(cfg.StopwordsLang)
	}
	if err != nil {
		return fmt.Errorf("failed to load stopwords: %w", err)
	}
	ta := lexical.NewProseAnalysis(stopwords)
	common.Log.Info("Loaded stopwords", "language", ta.Language().String(), "count", stopwords.Len())

	var lokiClient loki.Loki
	if cfg.LokiHost != "" {
		lokiClient = loki.NewLoki(cfg.LokiHost, serviceName,
			transport.WithUserAgent(serviceName+"/"+version),
			transport.WithScopeOrgID(cfg.LokiTenant))
	}

	gameService, err := internal.NewGameService(internal.GameServiceOptions{
		StatsWebsocketChannel: cfg.StatsChannel,
		Language:              ta.Language(),
		MaxSubtitleBytes:      cfg.MaxSubtitleBytes,
		CacheTTL:              cfg.CacheTTL,
	}, game.NewAssembler(ta), lokiClient)
	if err != nil {
		return fmt.Errorf("failed to internal.NewGameService: %w", err)
	}
	go gameService.StartPollingStats(ctx, cfg.StatsInterval)

	fallback, err := cfg.Fallback()
	if err != nil {
		return err
	}
	app, err := internal.NewApp(gameService, cfg.DefaultStrategy, fallback)
	if err != nil {
		return fmt.Errorf("failed to internal.NewApp: %w", err)
	}

	r := chi.NewRouter()
	r.Use(slogchi.NewWithConfig(common.Log, slogchi.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithTraceID:      true,
		WithSpanID:       true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Requested-With",
			"Accept",
			"Accept-Language",
			"Accept-Encoding",
			"Content-Language",
			"Origin",
		},
		MaxAge: 300,
	}))
	app.Routes(r)

	srv := &http.Server{
		Addr:              cfg.ServerListenAddr,
		Handler:           otelhttp.NewHandler(r, "server"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		common.Log.Info("Listening", "addr", cfg.ServerListenAddr, "public", cfg.PublicHost)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.Log.Error("Failed to http.Server.ListenAndServe", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.Log.Error("Failed to http.Server.Shutdown", "err", err)
	}
	if err := gameService.Shutdown(shutdownCtx); err != nil {
		common.Log.Error("Failed to internal.GameService.Shutdown", "err", err)
	}

	common.Log.Info("Bye!")

	return nil
}
