// Path: internal/search/viewmodel.go
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"pokedex/internal/domain"
)

// DefaultDebounce is the quiet period before a raw query takes effect.
const DefaultDebounce = 300 * time.Millisecond

// LookupFunc resolves a name or id to a single entity.
type LookupFunc func(ctx context.Context, query string) (domain.CatalogEntity, error)

// Selection is the outcome of a single-result lookup. A nil Entity means
// nothing is selected; Err tells why when a lookup was attempted.
type Selection struct {
	Query  string                `json:"query"`
	Entity *domain.CatalogEntity `json:"entity"`
	Err    error                 `json:"-"`
}

// NotFound reports whether the lookup found nothing.
func (s Selection) NotFound() bool { return errors.Is(s.Err, domain.ErrNotFound) }

// Options configures a ViewModel.
type Options struct {
	PageSize int
	Debounce time.Duration
	Clock    clockwork.Clock
}

// ViewModel is the search state machine behind one search session:
// raw query, debounced query, current page and the catalog it filters.
type ViewModel struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	debounce time.Duration
	pageSize int
	lookup   LookupFunc
	log      *zap.Logger
	listener func(Page)

	catalog   []domain.CatalogEntity
	raw       string
	debounced string
	page      int
	filtered  []domain.CatalogEntity

	timer     clockwork.Timer
	gen       uint64
	selectSeq uint64
	selection Selection
	closed    bool
}

// NewViewModel creates a view model with an empty catalog.
func NewViewModel(opts Options, lookup LookupFunc, logger *zap.Logger) *ViewModel {
	if opts.PageSize <= 0 {
		opts.PageSize = 12
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &ViewModel{
		clock:    opts.Clock,
		debounce: opts.Debounce,
		pageSize: opts.PageSize,
		lookup:   lookup,
		log:      logger.Named("search"),
		page:     1,
		filtered: []domain.CatalogEntity{},
	}
}

// SetListener registers fn to receive the results after every debounced
// query change, page change or catalog replacement. fn runs outside the
// view model's lock.
func (v *ViewModel) SetListener(fn func(Page)) {
	v.mu.Lock()
	v.listener = fn
	v.mu.Unlock()
}

// SetCatalog replaces the entries being searched.
func (v *ViewModel) SetCatalog(entries []domain.CatalogEntity) {
	v.mu.Lock()
	v.catalog = entries
	v.recomputeLocked()
	v.page = ClampPage(v.page, PageCount(len(v.filtered), v.pageSize))
	v.notifyUnlock()
}

// SetRawQuery records a keystroke. The debounced query follows after the
// quiet period; a newer keystroke replaces the pending one. Blank input
// clears the debounced query at once.
func (v *ViewModel) SetRawQuery(text string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.raw = text
	v.gen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}

	if strings.TrimSpace(text) == "" {
		if v.applyLocked("") {
			v.notifyUnlock()
			return
		}
		v.mu.Unlock()
		return
	}

	gen := v.gen
	v.timer = v.clock.AfterFunc(v.debounce, func() { v.fire(gen) })
	v.mu.Unlock()
}

func (v *ViewModel) fire(gen uint64) {
	v.mu.Lock()
	if v.closed || gen != v.gen {
		v.mu.Unlock()
		return
	}
	v.timer = nil
	if !v.applyLocked(Normalize(v.raw)) {
		v.mu.Unlock()
		return
	}
	v.log.Debug("Debounced query applied", zap.String("query", v.debounced))
	v.notifyUnlock()
}

// applyLocked installs a new debounced query and reports whether it changed.
func (v *ViewModel) applyLocked(query string) bool {
	if query == v.debounced {
		return false
	}
	v.debounced = query
	v.page = 1
	v.recomputeLocked()
	return true
}

func (v *ViewModel) recomputeLocked() {
	v.filtered = Filter(v.catalog, v.debounced)
}

// notifyUnlock snapshots the results, releases the lock and calls the listener.
func (v *ViewModel) notifyUnlock() Page {
	page := v.resultsLocked()
	fn := v.listener
	v.mu.Unlock()
	if fn != nil {
		fn(page)
	}
	return page
}

// SetPage moves to page n, clamped into range, and returns the results.
func (v *ViewModel) SetPage(n int) Page {
	v.mu.Lock()
	clamped := ClampPage(n, PageCount(len(v.filtered), v.pageSize))
	if clamped == v.page {
		page := v.resultsLocked()
		v.mu.Unlock()
		return page
	}
	v.page = clamped
	return v.notifyUnlock()
}

// Results returns the current page of filtered entries.
func (v *ViewModel) Results() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resultsLocked()
}

func (v *ViewModel) resultsLocked() Page {
	count := PageCount(len(v.filtered), v.pageSize)
	return Page{
		Query:     v.debounced,
		Page:      v.page,
		PageCount: count,
		Total:     len(v.filtered),
		Items:     Paginate(v.filtered, v.page, v.pageSize),
	}
}

// RawQuery returns the latest keystroke text.
func (v *ViewModel) RawQuery() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.raw
}

// DebouncedQuery returns the query currently filtering the results.
func (v *ViewModel) DebouncedQuery() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.debounced
}

// Select looks up a single entity by name or id. The lookup key is folded
// with Normalize, so "Évoli" is asked for as "evoli". Not-found and transport
// failures clear the selection instead of failing. When selections overlap,
// only the latest one is kept.
func (v *ViewModel) Select(ctx context.Context, query string) Selection {
	query = strings.TrimSpace(query)

	v.mu.Lock()
	v.selectSeq++
	seq := v.selectSeq
	v.mu.Unlock()

	sel := Selection{Query: query}
	if query == "" {
		v.commitSelection(seq, sel)
		return sel
	}

	entity, err := v.lookup(ctx, Normalize(query))
	switch {
	case err == nil:
		sel.Entity = &entity
	case errors.Is(err, domain.ErrNotFound):
		sel.Err = err
	default:
		v.log.Debug("Selection lookup failed", zap.String("query", query), zap.Error(err))
		sel.Err = err
	}
	v.commitSelection(seq, sel)
	return sel
}

func (v *ViewModel) commitSelection(seq uint64, sel Selection) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq == v.selectSeq {
		v.selection = sel
	}
}

// Selection returns the last committed selection.
func (v *ViewModel) Selection() Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection
}

// Close stops the pending debounce timer. Later keystrokes are ignored.
func (v *ViewModel) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.gen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}
