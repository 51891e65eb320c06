package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"uglgen/internal"
	"uglgen/internal/catalog"
	"uglgen/internal/config"
	"uglgen/internal/ugl"
)

// MaxPositions is the largest line number a three-digit position field holds.
const MaxPositions = 999

var (
	ErrNothingMatched   = errors.New("no items recognized")
	ErrTooManyPositions = errors.New("too many positions")
)

// ResolutionCache stores resolved items by cache key. storage.DB implements it.
type ResolutionCache interface {
	GetResolution(key string) ([]internal.ResolvedLineItem, bool, error)
	PutResolution(key, catalogVersion, input string, items []internal.ResolvedLineItem) error
}

type Result struct {
	Fragments int                         `json:"fragments"`
	Items     []internal.ResolvedLineItem `json:"items"`
	Document  string                      `json:"document"`
	Cached    bool                        `json:"cached"`
}

type Service struct {
	index    *catalog.Index
	resolver *Resolver
	encoder  *ugl.Encoder
	cache    ResolutionCache
	cfg      config.Config
	logger   zerolog.Logger
}

func NewService(index *catalog.Index, cfg config.Config, logger zerolog.Logger) *Service {
	matcher := NewMatcher(index, cfg.MatchThreshold)
	return &Service{
		index:    index,
		resolver: NewResolver(matcher, cfg.Policy(), cfg.Key(), cfg.ResolveWorkers),
		encoder:  ugl.NewEncoder(),
		cfg:      cfg,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// WithCache enables result caching. A nil cache disables it.
func (s *Service) WithCache(cache ResolutionCache) *Service {
	s.cache = cache
	return s
}

// WithClock fixes the date written to header records.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.encoder.Now = now
	return s
}

func (s *Service) CatalogVersion() string { return s.index.Version }

// Generate splits text into fragments, resolves them and renders the
// document. Nothing is rendered when no fragment matched.
func (s *Service) Generate(ctx context.Context, text string) (Result, error) {
	start := time.Now()
	fragments := SplitFragments(text)

	key := s.cacheKey(text)
	items, cached := s.lookup(key)
	if !cached {
		var err error
		items, err = s.resolver.Resolve(ctx, fragments)
		if err != nil {
			return Result{}, fmt.Errorf("resolve: %w", err)
		}
	}

	logEvt := s.logger.Info().
		Int("fragments", len(fragments)).
		Int("matched", len(items)).
		Str("catalog_version", s.index.Version).
		Bool("cached", cached).
		Dur("elapsed", time.Since(start))

	if len(items) == 0 {
		logEvt.Msg("nothing matched")
		return Result{Fragments: len(fragments)}, ErrNothingMatched
	}
	if len(items) > MaxPositions {
		logEvt.Msg("too many positions")
		return Result{Fragments: len(fragments)}, fmt.Errorf("%w: %d > %d", ErrTooManyPositions, len(items), MaxPositions)
	}
	if !cached {
		s.store(key, text, items)
	}
	logEvt.Msg("order generated")

	return Result{
		Fragments: len(fragments),
		Items:     items,
		Document:  s.encoder.Encode(items),
		Cached:    cached,
	}, nil
}

func (s *Service) cacheKey(text string) string {
	h := sha256.New()
	for _, part := range []string{
		text,
		s.index.Version,
		string(s.cfg.Key()),
		string(s.cfg.Policy()),
		strconv.FormatFloat(s.cfg.MatchThreshold, 'f', -1, 64),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache failures are logged and otherwise ignored; the result is always
// recomputable.
func (s *Service) lookup(key string) ([]internal.ResolvedLineItem, bool) {
	if s.cache == nil {
		return nil, false
	}
	items, ok, err := s.cache.GetResolution(key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache lookup failed")
		return nil, false
	}
	return items, ok && len(items) > 0
}

func (s *Service) store(key, text string, items []internal.ResolvedLineItem) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutResolution(key, s.index.Version, text, items); err != nil {
		s.logger.Warn().Err(err).Msg("cache store failed")
	}
}
