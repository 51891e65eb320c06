package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"uglgen/internal/catalog"
	"uglgen/internal/config"
	"uglgen/internal/listener"
	"uglgen/internal/pipeline"
	"uglgen/internal/server"
	"uglgen/internal/storage"
	"uglgen/internal/ugl"
)

var errUsage = errors.New("unknown command")

func main() {
	cfg, err := config.Load()
	must(err)
	logger := config.SetupLogger(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// run returns instead of exiting so deferred cache closes always happen.
	err = run(os.Args[1], os.Args[2:], cfg, logger)
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(1)
	}
	must(err)
}

func run(cmd string, args []string, cfg config.Config, logger zerolog.Logger) error {
	switch cmd {
	case "catalog:check":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		article := fs.String("article", "", "print the entry for this article number")
		_ = fs.Parse(args)
		idx, err := catalog.Load(cfg.CatalogPath, cfg.CatalogHeaderRow)
		if err != nil {
			return err
		}
		fmt.Printf("catalog ok path=%s entries=%d version=%s\n", cfg.CatalogPath, idx.Len(), idx.Version)
		if *article != "" {
			entry, ok := idx.Lookup(*article)
			if !ok {
				return fmt.Errorf("article %s not in catalog", *article)
			}
			fmt.Printf("%s ean=%s %s\n", entry.ArticleNumber, entry.EAN, entry.Description)
		}
		return nil
	case "generate":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "raw text or input file path")
		inType := fs.String("type", "text", "text|file|html|eml|pdf")
		out := fs.String("out", filepath.Join(cfg.OutputDir, ugl.DefaultFileName), "output UGL path")
		xlsx := fs.String("xlsx", "", "optional review xlsx path")
		_ = fs.Parse(args)
		if strings.TrimSpace(*input) == "" {
			return fmt.Errorf("--input is required")
		}

		text, err := pipeline.ReadInput(*inType, *input)
		if err != nil {
			return err
		}
		svc, closeCache, err := newService(cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()

		res, err := svc.Generate(context.Background(), text)
		if errors.Is(err, pipeline.ErrNothingMatched) {
			return fmt.Errorf("%w in %d fragments", err, res.Fragments)
		}
		if err != nil {
			return err
		}
		if err := ugl.WriteFile(*out, res.Document, cfg.OutputCharset); err != nil {
			return err
		}
		if *xlsx != "" {
			if err := pipeline.ExportItemsToXLSX(res.Items, *xlsx); err != nil {
				return err
			}
		}
		fmt.Printf("generate done fragments=%d positions=%d cached=%t output=%s\n", res.Fragments, len(res.Items), res.Cached, *out)
		return nil
	case "serve":
		svc, closeCache, err := newService(cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		return serve(cfg, svc, logger)
	case "watch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		once := fs.Bool("once", false, "process the inbox once and exit")
		_ = fs.Parse(args)
		svc, closeCache, err := newService(cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()

		l := listener.NewService(svc, cfg, logger)
		if *once {
			res, err := l.RunCycle(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("watch cycle done generated=%d failed=%d\n", res.Generated, res.Failed)
			return nil
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return l.Run(ctx)
	default:
		return errUsage
	}
}

// newService loads the catalog and attaches the resolution cache when enabled.
// The returned func closes the cache.
func newService(cfg config.Config, logger zerolog.Logger) (*pipeline.Service, func(), error) {
	idx, err := catalog.Load(cfg.CatalogPath, cfg.CatalogHeaderRow)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("catalog_version", idx.Version).Int("entries", idx.Len()).Msg("catalog loaded")

	svc := pipeline.NewService(idx, cfg, logger)
	if !cfg.CacheEnabled {
		return svc, func() {}, nil
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.DBPath).Msg("cache disabled")
		return svc, func() {}, nil
	}
	pruned, err := db.SyncCatalogVersion(idx.Version)
	if err != nil {
		logger.Warn().Err(err).Msg("cache prune failed")
	} else if pruned > 0 {
		logger.Info().Int64("pruned", pruned).Msg("stale cache rows removed")
	}
	if rows, err := db.CountResolutions(); err == nil {
		logger.Debug().Int("rows", rows).Str("path", cfg.DBPath).Msg("cache opened")
	}
	return svc.WithCache(db), func() { _ = db.Close() }, nil
}

func serve(cfg config.Config, svc *pipeline.Service, logger zerolog.Logger) error {
	r := server.NewRouter(cfg, svc, logger)
	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	listenErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func usage() {
	fmt.Println("usage: uglgen <command>")
	fmt.Println("commands:")
	fmt.Println("  generate --input=... [--type=text|file|html|eml|pdf] [--out=out/ugl.001] [--xlsx=out/review.xlsx]")
	fmt.Println("  catalog:check [--article=...]")
	fmt.Println("  serve")
	fmt.Println("  watch [--once]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
