package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"uglgen/internal"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Artikelliste.xlsx", cfg.CatalogPath)
	require.Equal(t, 0.3, cfg.MatchThreshold)
	require.Equal(t, internal.KeyArticleNumber, cfg.Key())
	require.Equal(t, internal.PolicyPiece, cfg.Policy())
	require.Equal(t, "127.0.0.1:8082", cfg.Addr())
	require.Equal(t, "inbox", cfg.InboxDir)
	require.Equal(t, 30, cfg.WatchIntervalSec)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ARTICLE_KEY", " EAN ")
	t.Setenv("DEFAULT_UNIT", "legacy")
	t.Setenv("MATCH_THRESHOLD", "0.55")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, internal.KeyEAN, cfg.Key())
	require.Equal(t, internal.PolicyLegacy, cfg.Policy())
	require.Equal(t, 0.55, cfg.MatchThreshold)
}

func TestValidate(t *testing.T) {
	base := Config{
		CatalogHeaderRow: 1,
		MatchThreshold:   0.3,
		ArticleKey:       "article_number",
		DefaultUnit:      "piece",
		ResolveWorkers:   1,
		OutputCharset:    "windows-1252",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantMsg string
	}{
		{name: "article key", mutate: func(c *Config) { c.ArticleKey = "sku" }, wantMsg: "config: unsupported ARTICLE_KEY: sku"},
		{name: "unit policy", mutate: func(c *Config) { c.DefaultUnit = "kg" }, wantMsg: "config: unsupported DEFAULT_UNIT: kg"},
		{name: "threshold", mutate: func(c *Config) { c.MatchThreshold = 30 }, wantMsg: "config: MATCH_THRESHOLD must be within [0,1], got 30"},
		{name: "workers", mutate: func(c *Config) { c.ResolveWorkers = 0 }, wantMsg: "config: RESOLVE_WORKERS must be positive, got 0"},
		{name: "charset", mutate: func(c *Config) { c.OutputCharset = "ebcdic" }, wantMsg: "config: unsupported OUTPUT_CHARSET: ebcdic"},
		{name: "multi-byte charset", mutate: func(c *Config) { c.OutputCharset = "utf-8" }, wantMsg: "config: unsupported OUTPUT_CHARSET: utf-8"},
		{name: "watch interval", mutate: func(c *Config) { c.WatchIntervalSec = -1 }, wantMsg: "config: WATCH_INTERVAL_SEC must not be negative, got -1"},
		{name: "header row", mutate: func(c *Config) { c.CatalogHeaderRow = 0 }, wantMsg: "config: CATALOG_HEADER_ROW is 1-based, got 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			require.EqualError(t, c.Validate(), tt.wantMsg)
		})
	}
}
