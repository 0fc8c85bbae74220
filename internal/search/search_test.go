// Path: internal/search/search_test.go
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"pokedex/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func entries(n int) []domain.CatalogEntity {
	out := make([]domain.CatalogEntity, n)
	for i := range out {
		out[i] = domain.CatalogEntity{ID: i + 1, DisplayName: fmt.Sprintf("Mon %d", i+1)}
	}
	return out
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "evoli", Normalize("  Évoli "))
	assert.Equal(t, "pokemon", Normalize("POKÉMON"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "mr. mime", Normalize("Mr. Mime"))
}

func TestFilter(t *testing.T) {
	list := []domain.CatalogEntity{
		{ID: 133, DisplayName: "Évoli"},
		{ID: 25, DisplayName: "Pikachu"},
		{ID: 26, DisplayName: "Raichu"},
	}
	assert.Len(t, Filter(list, ""), 3)
	assert.Equal(t, 133, Filter(list, "evo")[0].ID)

	got := Filter(list, "chu")
	require.Len(t, got, 2)
	assert.Equal(t, []int{25, 26}, []int{got[0].ID, got[1].ID})

	assert.Empty(t, Filter(list, "zzz"))
	assert.NotNil(t, Filter(list, "zzz"))
}

func TestPagination(t *testing.T) {
	list := entries(37)

	assert.Equal(t, 4, PageCount(37, 12))
	assert.Equal(t, 1, PageCount(0, 12))
	assert.Equal(t, 1, PageCount(12, 12))
	assert.Equal(t, 2, PageCount(13, 12))

	assert.Equal(t, 4, ClampPage(99, 4))
	assert.Equal(t, 1, ClampPage(0, 4))
	assert.Equal(t, 1, ClampPage(-5, 4))
	assert.Equal(t, 1, ClampPage(3, 0))

	last := Paginate(list, 4, 12)
	require.Len(t, last, 1)
	assert.Equal(t, 37, last[0].ID)
	assert.Len(t, Paginate(list, 1, 12), 12)
	assert.Equal(t, last, Paginate(list, 99, 12))
	assert.Empty(t, Paginate(nil, 1, 12))

	p := BuildPage(list, "", 99, 12)
	assert.Equal(t, Page{Query: "", Page: 4, PageCount: 4, Total: 37, Items: last}, p)
}

func newVM(t *testing.T, clock clockwork.Clock, lookup LookupFunc) *ViewModel {
	t.Helper()
	vm := NewViewModel(Options{PageSize: 12, Debounce: 300 * time.Millisecond, Clock: clock}, lookup, zap.NewNop())
	t.Cleanup(vm.Close)
	return vm
}

func TestViewModel_SetPageClamps(t *testing.T) {
	vm := newVM(t, clockwork.NewFakeClock(), nil)
	vm.SetCatalog(entries(37))

	assert.Equal(t, 4, vm.Results().PageCount)
	assert.Equal(t, 4, vm.SetPage(99).Page)
	assert.Equal(t, 1, vm.SetPage(0).Page)
	p := vm.SetPage(2)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 13, p.Items[0].ID)
}

func TestViewModel_DebounceKeepsOnlyFinalValue(t *testing.T) {
	clock := clockwork.NewFakeClock()
	vm := newVM(t, clock, nil)
	vm.SetCatalog([]domain.CatalogEntity{
		{ID: 1, DisplayName: "Bulbizarre"},
		{ID: 25, DisplayName: "Pikachu"},
		{ID: 26, DisplayName: "Raichu"},
	})

	var mu sync.Mutex
	var seen []string
	vm.SetListener(func(p Page) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p.Query)
	})

	for _, text := range []string{"p", "pi", "pik", "Pika"} {
		vm.SetRawQuery(text)
		clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, "", vm.DebouncedQuery(), "intermediate keystrokes never apply")
	assert.Equal(t, "Pika", vm.RawQuery())

	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return vm.DebouncedQuery() == "pika" }, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"pika"}, seen)
	mu.Unlock()

	p := vm.Results()
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 25, p.Items[0].ID)
}

func TestViewModel_DebouncedChangeResetsPage(t *testing.T) {
	clock := clockwork.NewFakeClock()
	vm := newVM(t, clock, nil)
	vm.SetCatalog(entries(37))
	vm.SetPage(3)

	vm.SetRawQuery("mon")
	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return vm.DebouncedQuery() == "mon" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, vm.Results().Page)
}

func TestViewModel_BlankQueryClearsImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	vm := newVM(t, clock, nil)
	vm.SetCatalog(entries(3))

	vm.SetRawQuery("mon 2")
	clock.Advance(300 * time.Millisecond)
	require.Eventually(t, func() bool { return vm.DebouncedQuery() == "mon 2" }, time.Second, 5*time.Millisecond)

	vm.SetRawQuery("pending")
	vm.SetRawQuery("   ")
	assert.Equal(t, "", vm.DebouncedQuery())
	assert.Equal(t, 3, vm.Results().Total)

	clock.Advance(time.Second)
	assert.Never(t, func() bool { return vm.DebouncedQuery() != "" }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestViewModel_CloseStopsTimer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	vm := newVM(t, clock, nil)
	vm.SetRawQuery("pika")
	vm.Close()
	clock.Advance(time.Second)
	assert.Never(t, func() bool { return vm.DebouncedQuery() != "" }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestViewModel_RealClock(t *testing.T) {
	vm := NewViewModel(Options{Debounce: 10 * time.Millisecond}, nil, zap.NewNop())
	defer vm.Close()
	vm.SetCatalog(entries(5))
	vm.SetRawQuery("Mon 5")
	require.Eventually(t, func() bool { return vm.Results().Total == 1 }, time.Second, 5*time.Millisecond)
}

func TestViewModel_Select(t *testing.T) {
	transport := &domain.TransportError{Op: "GET", URL: "u", StatusCode: 500}
	lookup := func(_ context.Context, q string) (domain.CatalogEntity, error) {
		switch q {
		case "pikachu", "25":
			return domain.CatalogEntity{ID: 25, DisplayName: "Pikachu"}, nil
		case "evoli":
			return domain.CatalogEntity{ID: 133, DisplayName: "Évoli"}, nil
		case "broken":
			return domain.CatalogEntity{}, transport
		default:
			return domain.CatalogEntity{}, domain.ErrNotFound
		}
	}
	vm := newVM(t, clockwork.NewFakeClock(), lookup)
	ctx := context.Background()

	sel := vm.Select(ctx, " Pikachu ")
	require.NotNil(t, sel.Entity)
	assert.Equal(t, 25, sel.Entity.ID)
	assert.Equal(t, 25, vm.Selection().Entity.ID)

	sel = vm.Select(ctx, " Évoli")
	require.NotNil(t, sel.Entity, "accents are folded before the lookup")
	assert.Equal(t, 133, sel.Entity.ID)
	assert.Equal(t, "Évoli", sel.Query)

	sel = vm.Select(ctx, "missingno")
	assert.Nil(t, sel.Entity)
	assert.True(t, sel.NotFound())
	assert.Nil(t, vm.Selection().Entity, "not found clears the selection")

	vm.Select(ctx, "25")
	sel = vm.Select(ctx, "broken")
	assert.Nil(t, sel.Entity)
	assert.False(t, sel.NotFound())
	var te *domain.TransportError
	assert.True(t, errors.As(sel.Err, &te))
	assert.Nil(t, vm.Selection().Entity)

	sel = vm.Select(ctx, "  ")
	assert.Nil(t, sel.Entity)
	assert.NoError(t, sel.Err)
}
