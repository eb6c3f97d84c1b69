package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/ogero/subtitle-shots/pkg/selector"
)

// Config is the service configuration, read from the environment.
type Config struct {
	// ServerListenAddr specifies the network address that the HTTP server will listen on.
	ServerListenAddr string `env:"SERVER_LISTEN_ADDR" envDefault:":3593"`
	// PublicHost is the public (external) base URL where the service is accessible. Only scheme and host are kept.
	PublicHost         string `env:"PUBLIC_HOST" envDefault:"http://127.0.0.1:3593"`
	ServiceEnvironment string `env:"SERVICE_ENVIRONMENT" envDefault:"lcl"`
	OTLPEndpoint       string `env:"OTLP_ENDPOINT" envDefault:"127.0.0.1:4317"`

	CacheDir string        `env:"CACHE_DIR" envDefault:".cache"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"168h"`

	// LokiHost enables the 24h stats when set.
	LokiHost   string `env:"LOKI_HOST"`
	LokiTenant string `env:"LOKI_TENANT"`

	// StopwordsFile, when set, replaces the embedded list of StopwordsLang.
	StopwordsLang string `env:"STOPWORDS_LANG" envDefault:"en"`
	StopwordsFile string `env:"STOPWORDS_FILE"`

	DefaultStrategy selector.Strategy `env:"DEFAULT_STRATEGY" envDefault:"proximity"`
	// FallbackStrategy is empty when games must not fall back to another strategy.
	FallbackStrategy string `env:"FALLBACK_STRATEGY"`

	MaxSubtitleBytes int64 `env:"MAX_SUBTITLE_BYTES" envDefault:"2097152"`

	StatsChannel  string        `env:"STATS_CHANNEL" envDefault:"stats"`
	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"1m"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads the configuration from the given environment instead of the process one.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("failed to env.ParseAsWithOptions: %w", err)
	}

	u, err := url.Parse(cfg.PublicHost)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PUBLIC_HOST: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid PUBLIC_HOST %q, scheme and host are required", cfg.PublicHost)
	}
	cfg.PublicHost = fmt.Sprintf("%s://%s", u.Scheme, u.Host)

	if cfg.MaxSubtitleBytes <= 0 {
		return nil, errors.New("invalid MAX_SUBTITLE_BYTES, less than or equal to 0")
	}
	if cfg.StatsInterval <= 0 {
		return nil, errors.New("invalid STATS_INTERVAL, less than or equal to 0")
	}

	if _, err := cfg.Fallback(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Fallback returns the configured fallback strategy, nil when there is none.
func (c *Config) Fallback() (*selector.Strategy, error) {
	if c.FallbackStrategy == "" {
		return nil, nil
	}
	s, err := selector.ParseStrategy(c.FallbackStrategy)
	if err != nil {
		return nil, fmt.Errorf("invalid FALLBACK_STRATEGY: %w", err)
	}
	return &s, nil
}
