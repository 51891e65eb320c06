package pipeline

import (
	"context"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"uglgen/internal"
	"uglgen/internal/util"
)

type Resolver struct {
	matcher *Matcher
	policy  internal.UnitPolicy
	key     internal.ArticleKey
	workers int
}

func NewResolver(matcher *Matcher, policy internal.UnitPolicy, key internal.ArticleKey, workers int) *Resolver {
	if workers <= 0 {
		workers = 1
	}
	return &Resolver{matcher: matcher, policy: policy, key: key, workers: workers}
}

type resolution struct {
	item internal.ResolvedLineItem
	ok   bool
}

// ResolveOne extracts the quantity and matches the fragment. The two steps
// share nothing; a fragment below the threshold yields ok=false.
func (r *Resolver) ResolveOne(fragment string) (internal.ResolvedLineItem, bool) {
	qty := util.ParseQty(fragment, r.policy)
	match := r.matcher.Match(fragment)
	if !match.Matched || match.Entry == nil {
		return internal.ResolvedLineItem{}, false
	}

	entry := *match.Entry
	return internal.ResolvedLineItem{
		Fragment:    fragment,
		ArticleKey:  ArticleKeyFor(entry, r.key),
		Description: entry.Description,
		Quantity:    qty,
		EAN:         entry.EAN,
		Score:       match.Score,
	}, true
}

// Resolve processes fragments concurrently and returns the matched items in
// input order.
func (r *Resolver) Resolve(ctx context.Context, fragments []string) ([]internal.ResolvedLineItem, error) {
	results := make([]resolution, len(fragments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, fragment := range fragments {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, ok := r.ResolveOne(fragment)
			results[i] = resolution{item: item, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lo.FilterMap(results, func(res resolution, _ int) (internal.ResolvedLineItem, bool) {
		return res.item, res.ok
	}), nil
}

// ArticleKeyFor picks the identifier written to position records. Entries
// without an EAN fall back to their article number.
func ArticleKeyFor(entry internal.CatalogEntry, key internal.ArticleKey) string {
	if key == internal.KeyEAN && entry.EAN != "" {
		return entry.EAN
	}
	return entry.ArticleNumber
}
