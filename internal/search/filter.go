// Path: internal/search/filter.go
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"pokedex/internal/domain"
)

// Normalize folds a query or display name for matching: trimmed, lower case,
// diacritics removed ("Évoli" matches "evoli").
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	// Transformers keep state, so each call builds its own chain.
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		return s
	}
	return folded
}

// Filter returns the entries whose display name contains query. query must
// already be normalized; an empty query keeps every entry.
func Filter(entries []domain.CatalogEntity, query string) []domain.CatalogEntity {
	if query == "" {
		return entries
	}
	out := make([]domain.CatalogEntity, 0)
	for _, e := range entries {
		if strings.Contains(Normalize(e.DisplayName), query) {
			out = append(out, e)
		}
	}
	return out
}

// PageCount is ceil(total/size), never less than one.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage moves page into [1, pageCount].
func ClampPage(page, pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	return max(1, min(page, pageCount))
}

// Paginate returns the 1-based page of entries. Out-of-range pages are clamped.
func Paginate(entries []domain.CatalogEntity, page, size int) []domain.CatalogEntity {
	if size <= 0 {
		return entries
	}
	page = ClampPage(page, PageCount(len(entries), size))
	start := (page - 1) * size
	end := min(start+size, len(entries))
	if start >= end {
		return []domain.CatalogEntity{}
	}
	return entries[start:end]
}

// Page is one rendered slice of search results.
type Page struct {
	Query     string                 `json:"query"`
	Page      int                    `json:"page"`
	PageCount int                    `json:"pageCount"`
	Total     int                    `json:"total"`
	Items     []domain.CatalogEntity `json:"items"`
}

// BuildPage filters, clamps and slices in one step.
func BuildPage(entries []domain.CatalogEntity, query string, page, size int) Page {
	filtered := Filter(entries, query)
	count := PageCount(len(filtered), size)
	page = ClampPage(page, count)
	return Page{
		Query:     query,
		Page:      page,
		PageCount: count,
		Total:     len(filtered),
		Items:     Paginate(filtered, page, size),
	}
}
