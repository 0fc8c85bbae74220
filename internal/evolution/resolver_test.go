// Path: internal/evolution/resolver_test.go
package evolution

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"pokedex/internal/domain"
	"pokedex/internal/normalize"
	"pokedex/internal/shape"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	mu         sync.Mutex
	entities   map[int]string
	evolutions map[int]string
	calls      []int

	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (f *fakeFetcher) FetchByID(_ context.Context, id int) (shape.Node, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		cur := f.maxInflight.Load()
		if n <= cur || f.maxInflight.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, id)
	body, ok := f.entities[id]
	f.mu.Unlock()
	if !ok {
		return shape.Node{}, domain.ErrNotFound
	}
	return shape.MustParse(body), nil
}

func (f *fakeFetcher) FetchEvolution(_ context.Context, id int) (shape.Node, error) {
	body, ok := f.evolutions[id]
	if !ok {
		return shape.Node{}, domain.ErrNotFound
	}
	return shape.MustParse(body), nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func intPtr(i int) *int { return &i }

func TestResolveEvolutionChain_EmbeddedNamedRefsNeedNoLookups(t *testing.T) {
	f := &fakeFetcher{}
	r := NewResolver(f, 10, zap.NewNop())
	root := shape.MustParse(`{"pokedex_id":25,"name":{"fr":"Pikachu"},
		"evolution":{"pre":[{"pokedex_id":172,"name":"Pichu","condition":"Bonheur"}],"next":[{"pokedex_id":26,"name":"Raichu","condition":"Pierre Foudre"}]}}`)
	entity := normalize.Entity(root, 25)

	evo := r.ResolveEvolutionChain(context.Background(), entity)
	want := &domain.Evolution{
		Precedents: []domain.EvolutionRef{{TargetID: intPtr(172), Name: "Pichu", Condition: "Bonheur"}},
		Successors: []domain.EvolutionRef{{TargetID: intPtr(26), Name: "Raichu", Condition: "Pierre Foudre"}},
	}
	if diff := cmp.Diff(want, evo); diff != "" {
		t.Errorf("chain mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, f.callCount())

	evo.Successors[0].Name = "mutated"
	assert.Equal(t, "Raichu", entity.Evolution.Successors[0].Name, "result does not alias the entity")
}

func TestResolveEvolutionChain_EmbeddedUnnamedRefsStayAsIs(t *testing.T) {
	f := &fakeFetcher{}
	r := NewResolver(f, 10, zap.NewNop())
	root := shape.MustParse(`{"pokedex_id":25,"name":{"fr":"Pikachu"},
		"evolution":{"pre":[{"pokedex_id":172,"condition":"Bonheur"}],"next":[26]}}`)
	entity := normalize.Entity(root, 25)

	evo := r.ResolveEvolutionChain(context.Background(), entity)
	require.NotNil(t, evo)
	assert.Zero(t, f.callCount(), "an embedded block issues no lookups")
	if diff := cmp.Diff(entity.Evolution, evo); diff != "" {
		t.Errorf("embedded chain changed (-want +got):\n%s", diff)
	}
}

func TestResolveEvolutionChain_EndpointAndEnrichment(t *testing.T) {
	f := &fakeFetcher{
		entities: map[int]string{
			2: `{"pokedex_id":2,"name":{"fr":"Herbizarre"},"sprites":{"regular":"https://img/2.png"}}`,
		},
		evolutions: map[int]string{
			1: `{"next":[2, "3"]}`,
		},
	}
	r := NewResolver(f, 10, zap.NewNop())

	evo := r.ResolveEvolutionChain(context.Background(), domain.CatalogEntity{ID: 1, DisplayName: "Bulbizarre"})
	require.NotNil(t, evo)
	assert.Empty(t, evo.Precedents)
	require.Len(t, evo.Successors, 2)
	assert.Equal(t, "Herbizarre", evo.Successors[0].Name)
	assert.Equal(t, "https://img/2.png", evo.Successors[0].Sprites.Default)
	assert.Equal(t, "#3", evo.Successors[1].Name, "failed lookup falls back to the id")
	assert.Equal(t, 2, f.callCount())
}

func TestResolveEvolutionChain_NoBlock(t *testing.T) {
	r := NewResolver(&fakeFetcher{}, 10, zap.NewNop())
	assert.Nil(t, r.ResolveEvolutionChain(context.Background(), domain.CatalogEntity{ID: 132}))

	f := &fakeFetcher{evolutions: map[int]string{132: `"nothing"`}}
	r = NewResolver(f, 10, zap.NewNop())
	assert.Nil(t, r.ResolveEvolutionChain(context.Background(), domain.CatalogEntity{ID: 132}))
}

func TestResolveEvolutionChain_FanoutCapAndDedup(t *testing.T) {
	entities := map[int]string{}
	var next []string
	for id := 200; id < 230; id++ {
		entities[id] = fmt.Sprintf(`{"pokedex_id":%d,"name":"Mon%d"}`, id, id)
		next = append(next, fmt.Sprint(id), fmt.Sprint(id))
	}
	body := `{"next":[` + strings.Join(next, ",") + `]}`
	f := &fakeFetcher{entities: entities, evolutions: map[int]string{1: body}}
	r := NewResolver(f, 4, zap.NewNop())

	evo := r.ResolveEvolutionChain(context.Background(), domain.CatalogEntity{ID: 1})
	require.NotNil(t, evo)
	require.Len(t, evo.Successors, 60)
	assert.Equal(t, 4, f.callCount(), "one lookup per distinct id, capped")
	assert.LessOrEqual(t, f.maxInflight.Load(), int32(4))
	assert.Equal(t, "Mon200", evo.Successors[0].Name)
	assert.Equal(t, "Mon200", evo.Successors[1].Name)
	assert.Equal(t, "#229", evo.Successors[59].Name)
}

func TestCollectForms(t *testing.T) {
	f := &fakeFetcher{
		entities: map[int]string{
			4: `{"pokedex_id":4,"name":"Salamèche"}`,
			6: `{"pokedex_id":6,"name":"Dracaufeu","sprites":{"regular":"r","mega":{"x":{"regular":"mx"},"y":{"regular":"my"}},"gmax":{"regular":"g"}}}`,
		},
	}
	r := NewResolver(f, 10, zap.NewNop())
	chain := &domain.Evolution{
		Precedents: []domain.EvolutionRef{{TargetID: intPtr(4), Name: "Salamèche"}},
		Successors: []domain.EvolutionRef{{TargetID: intPtr(6), Name: "Dracaufeu"}, {TargetID: intPtr(999), Name: "ghost"}},
	}

	forms := r.CollectForms(context.Background(), domain.CatalogEntity{ID: 5, DisplayName: "Reptincel"}, chain, false)
	var names []string
	for _, fm := range forms {
		names = append(names, fm.Name)
	}
	assert.Equal(t, []string{"Dracaufeu (Mega X)", "Dracaufeu (Mega Y)", "Dracaufeu (Gigamax)"}, names)
}

func TestCollectForms_OwnFormsWin(t *testing.T) {
	f := &fakeFetcher{}
	r := NewResolver(f, 10, zap.NewNop())
	own := []domain.FormEntry{{Name: "Pikachu (Gigamax)"}}

	got := r.CollectForms(context.Background(), domain.CatalogEntity{ID: 25, Forms: own},
		&domain.Evolution{Successors: []domain.EvolutionRef{{TargetID: intPtr(26)}}}, false)
	assert.Equal(t, own, got)
	assert.Zero(t, f.callCount())

	assert.Empty(t, r.CollectForms(context.Background(), domain.CatalogEntity{ID: 132}, nil, false))
}

func TestCollectForms_EmptyOwnGroupSkipsChain(t *testing.T) {
	f := &fakeFetcher{entities: map[int]string{
		5: `{"pokedex_id":5,"name":"Reptincel","sprites":{"gmax":{"regular":"g"}}}`,
	}}
	r := NewResolver(f, 10, zap.NewNop())
	root := shape.MustParse(`{"pokedex_id":4,"name":"Salamèche","sprites":{"mega":{}},"evolution":{"mega":[],"next":[{"pokedex_id":5,"name":"Reptincel"}]}}`)
	entity := normalize.Entity(root, 4)
	require.Empty(t, entity.Forms)

	got := r.CollectForms(context.Background(), entity, entity.Evolution, normalize.HasOwnForms(root))
	assert.Empty(t, got)
	assert.Zero(t, f.callCount())

	got = r.CollectForms(context.Background(), entity, entity.Evolution, false)
	require.Len(t, got, 1)
	assert.Equal(t, "Reptincel (Gigamax)", got[0].Name)
}
