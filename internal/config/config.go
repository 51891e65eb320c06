package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"uglgen/internal"
	"uglgen/internal/ugl"
)

type Config struct {
	CatalogPath      string `env:"CATALOG_PATH" envDefault:"Artikelliste.xlsx"`
	CatalogHeaderRow int    `env:"CATALOG_HEADER_ROW" envDefault:"1"`

	MatchThreshold float64 `env:"MATCH_THRESHOLD" envDefault:"0.3"`
	ArticleKey     string  `env:"ARTICLE_KEY" envDefault:"article_number"`
	DefaultUnit    string  `env:"DEFAULT_UNIT" envDefault:"piece"`
	ResolveWorkers int     `env:"RESOLVE_WORKERS" envDefault:"4"`

	OutputDir     string `env:"OUTPUT_DIR" envDefault:"out"`
	OutputCharset string `env:"OUTPUT_CHARSET" envDefault:"windows-1252"`

	InboxDir         string `env:"INBOX_DIR" envDefault:"inbox"`
	WatchIntervalSec int    `env:"WATCH_INTERVAL_SEC" envDefault:"30"`

	CacheEnabled bool   `env:"CACHE_ENABLED" envDefault:"true"`
	DBPath       string `env:"DB_PATH" envDefault:"data/cache.db"`

	HTTPHost  string `env:"HTTP_HOST" envDefault:"127.0.0.1"`
	HTTPPort  int    `env:"HTTP_PORT" envDefault:"8082"`
	MaxBodyKB int    `env:"MAX_BODY_KB" envDefault:"256"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE" envDefault:"logs/uglgen.log"`
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.ArticleKey = strings.ToLower(strings.TrimSpace(cfg.ArticleKey))
	cfg.DefaultUnit = strings.ToLower(strings.TrimSpace(cfg.DefaultUnit))
	cfg.OutputCharset = strings.ToLower(strings.TrimSpace(cfg.OutputCharset))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch internal.ArticleKey(c.ArticleKey) {
	case internal.KeyArticleNumber, internal.KeyEAN:
	default:
		return fmt.Errorf("config: unsupported ARTICLE_KEY: %s", c.ArticleKey)
	}
	switch internal.UnitPolicy(c.DefaultUnit) {
	case internal.PolicyPiece, internal.PolicyMeter, internal.PolicyLegacy:
	default:
		return fmt.Errorf("config: unsupported DEFAULT_UNIT: %s", c.DefaultUnit)
	}
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("config: MATCH_THRESHOLD must be within [0,1], got %v", c.MatchThreshold)
	}
	if c.ResolveWorkers <= 0 {
		return fmt.Errorf("config: RESOLVE_WORKERS must be positive, got %d", c.ResolveWorkers)
	}
	if !ugl.ValidCharset(c.OutputCharset) {
		return fmt.Errorf("config: unsupported OUTPUT_CHARSET: %s", c.OutputCharset)
	}
	if c.WatchIntervalSec < 0 {
		return fmt.Errorf("config: WATCH_INTERVAL_SEC must not be negative, got %d", c.WatchIntervalSec)
	}
	if c.CatalogHeaderRow <= 0 {
		return fmt.Errorf("config: CATALOG_HEADER_ROW is 1-based, got %d", c.CatalogHeaderRow)
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort) }

func (c Config) Key() internal.ArticleKey { return internal.ArticleKey(c.ArticleKey) }

func (c Config) Policy() internal.UnitPolicy { return internal.UnitPolicy(c.DefaultUnit) }
