package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"uglgen/internal"
	"uglgen/internal/util"
)

const (
	ColArticleNumber = "artikel nr."
	ColEAN           = "ean"
)

// DescriptionColumns are joined in this order to form an entry's description.
var DescriptionColumns = []string{"hersteller", "serie", "typ", "größe", "variante"}

var (
	ErrMissingColumn = errors.New("catalog: missing required column")
	ErrEmptyCatalog  = errors.New("catalog: no entries")
)

// Index is built once and only read afterwards; it is safe for concurrent use.
type Index struct {
	Entries        []internal.CatalogEntry
	FoldedByOffset []string
	ByArticle      map[string]int
	Version        string
}

func Load(path string, headerRow int) (*Index, error) {
	table, err := ReadRows(path, headerRow)
	if err != nil {
		return nil, err
	}
	return BuildIndex(table)
}

func BuildIndex(table Table) (*Index, error) {
	if !table.HasColumn(ColArticleNumber) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, ColArticleNumber)
	}

	idx := &Index{ByArticle: map[string]int{}}
	for _, row := range table.Rows {
		entry, ok := toEntry(row)
		if !ok {
			continue
		}
		idx.add(entry)
	}
	if len(idx.Entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	idx.Version = version(idx.Entries)
	return idx, nil
}

// NewIndex builds an index straight from typed entries.
func NewIndex(entries []internal.CatalogEntry) (*Index, error) {
	idx := &Index{ByArticle: map[string]int{}}
	for _, e := range entries {
		idx.add(e)
	}
	if len(idx.Entries) == 0 {
		return nil, ErrEmptyCatalog
	}
	idx.Version = version(idx.Entries)
	return idx, nil
}

func (idx *Index) add(e internal.CatalogEntry) {
	if _, ok := idx.ByArticle[e.ArticleNumber]; !ok {
		idx.ByArticle[e.ArticleNumber] = len(idx.Entries)
	}
	idx.Entries = append(idx.Entries, e)
	idx.FoldedByOffset = append(idx.FoldedByOffset, util.Fold(e.Description))
}

func (idx *Index) Len() int { return len(idx.Entries) }

func (idx *Index) Lookup(articleNumber string) (internal.CatalogEntry, bool) {
	i, ok := idx.ByArticle[articleNumber]
	if !ok {
		return internal.CatalogEntry{}, false
	}
	return idx.Entries[i], true
}

func toEntry(row map[string]string) (internal.CatalogEntry, bool) {
	article := strings.TrimSpace(util.SingleLine(row[ColArticleNumber]))
	if article == "" {
		return internal.CatalogEntry{}, false
	}
	// multi-line cells would otherwise split position records
	parts := make([]string, 0, len(DescriptionColumns))
	for _, col := range DescriptionColumns {
		parts = append(parts, util.SingleLine(row[col]))
	}
	return internal.CatalogEntry{
		ArticleNumber: article,
		EAN:           strings.TrimSpace(util.SingleLine(row[ColEAN])),
		Description:   util.JoinFields(parts...),
	}, true
}

func version(entries []internal.CatalogEntry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.ArticleNumber))
		h.Write([]byte{0})
		h.Write([]byte(e.EAN))
		h.Write([]byte{0})
		h.Write([]byte(e.Description))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
