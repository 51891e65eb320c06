// Package listener turns order files dropped into an inbox directory into
// UGL documents.
package listener

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"uglgen/internal/config"
	"uglgen/internal/pipeline"
	"uglgen/internal/ugl"
)

const (
	doneDir   = "done"
	failedDir = "failed"
)

// kinds maps file extensions to ReadInput kinds. Other files are left alone.
var kinds = map[string]string{
	".txt":  "file",
	".html": "html",
	".htm":  "html",
	".eml":  "eml",
	".pdf":  "pdf",
}

// Generator turns order text into a document; *pipeline.Service implements it.
type Generator interface {
	Generate(ctx context.Context, text string) (pipeline.Result, error)
}

type Service struct {
	gen    Generator
	cfg    config.Config
	logger zerolog.Logger
}

func NewService(gen Generator, cfg config.Config, logger zerolog.Logger) *Service {
	return &Service{gen: gen, cfg: cfg, logger: logger.With().Str("component", "listener").Logger()}
}

type CycleResult struct {
	Generated int
	Failed    int
}

func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	s.logger.Info().Str("inbox", s.cfg.InboxDir).Dur("interval", interval).Msg("watching")

	for {
		if _, err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("listener cycle error")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle processes every order file currently in the inbox, oldest name first.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	if err := os.MkdirAll(s.cfg.InboxDir, 0o755); err != nil {
		return CycleResult{}, err
	}
	entries, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		return CycleResult{}, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := kinds[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var res CycleResult
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out, err := s.processFile(ctx, name)
		if err != nil && ctx.Err() != nil {
			// interrupted, not broken: leave the file for the next run
			s.logger.Info().Str("file", name).Msg("order file left in inbox")
			return res, ctx.Err()
		}
		if err != nil {
			res.Failed++
			s.logger.Warn().Err(err).Str("file", name).Msg("order file failed")
			if mvErr := s.move(name, failedDir); mvErr != nil {
				return res, mvErr
			}
			continue
		}
		res.Generated++
		s.logger.Info().Str("file", name).Str("out", out).Msg("order file generated")
		if err := s.move(name, doneDir); err != nil {
			return res, err
		}
	}
	if len(names) > 0 {
		s.logger.Info().Int("generated", res.Generated).Int("failed", res.Failed).Msg("listener cycle done")
	}
	return res, nil
}

func (s *Service) processFile(ctx context.Context, name string) (string, error) {
	kind := kinds[strings.ToLower(filepath.Ext(name))]
	text, err := pipeline.ReadInput(kind, filepath.Join(s.cfg.InboxDir, name))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	result, err := s.gen.Generate(ctx, text)
	if err != nil {
		return "", err
	}

	out := freePath(filepath.Join(s.cfg.OutputDir, OutputName(name)))
	if err := ugl.WriteFile(out, result.Document, s.cfg.OutputCharset); err != nil {
		return "", err
	}
	return out, nil
}

func (s *Service) move(name, sub string) error {
	dir := filepath.Join(s.cfg.InboxDir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	err := os.Rename(filepath.Join(s.cfg.InboxDir, name), filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// OutputName derives the document file name from an inbox file name. The
// source extension is kept so order.txt and order.eml stay apart.
func OutputName(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	stem := repl.Replace(filepath.Base(input))
	if len(stem) > 120 {
		stem = stem[:120]
	}
	return stem + "." + ugl.DefaultFileName
}

// freePath returns path, or path with a -2, -3, ... suffix before the
// document extension when a file of that name already exists.
func freePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	base := strings.TrimSuffix(path, "."+ugl.DefaultFileName)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d.%s", base, n, ugl.DefaultFileName)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}
