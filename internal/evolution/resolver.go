// Path: internal/evolution/resolver.go
package evolution

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pokedex/internal/domain"
	"pokedex/internal/normalize"
	"pokedex/internal/shape"
)

// DefaultFanoutLimit caps the sub-fetches of one resolution.
const DefaultFanoutLimit = 10

// Fetcher is the part of the catalog client the resolver needs.
type Fetcher interface {
	FetchByID(ctx context.Context, id int) (shape.Node, error)
	FetchEvolution(ctx context.Context, id int) (shape.Node, error)
}

// Resolver completes evolution chains and alternate forms with best-effort
// lookups of related entities. Individual lookup failures are logged and
// skipped; callers always get a partial result.
type Resolver struct {
	fetcher Fetcher
	limit   int
	log     *zap.Logger
}

// NewResolver creates a resolver issuing at most limit lookups per call.
func NewResolver(fetcher Fetcher, limit int, logger *zap.Logger) *Resolver {
	if limit <= 0 {
		limit = DefaultFanoutLimit
	}
	return &Resolver{fetcher: fetcher, limit: limit, log: logger.Named("evolution")}
}

// ResolveEvolutionChain returns the evolution chain of entity. The block
// embedded in the payload is returned as is, with no further lookups.
// Otherwise the evolution endpoint is asked and references without a name
// are named by looking their target up. The returned chain never aliases
// entity.Evolution.
func (r *Resolver) ResolveEvolutionChain(ctx context.Context, entity domain.CatalogEntity) *domain.Evolution {
	if entity.Evolution != nil {
		return entity.Clone().Evolution
	}
	block, err := r.fetcher.FetchEvolution(ctx, entity.ID)
	if err != nil {
		r.log.Debug("No evolution block", zap.Int("id", entity.ID), zap.Error(err))
		return nil
	}
	evo := normalize.EvolutionBlock(block)
	if evo == nil {
		return nil
	}

	var unnamed []int
	seen := make(map[int]bool)
	for _, group := range [][]domain.EvolutionRef{evo.Precedents, evo.Successors} {
		for _, ref := range group {
			if ref.Name != "" || ref.TargetID == nil || seen[*ref.TargetID] {
				continue
			}
			seen[*ref.TargetID] = true
			unnamed = append(unnamed, *ref.TargetID)
		}
	}

	found := r.lookupAll(ctx, unnamed)
	enrich := func(refs []domain.EvolutionRef) {
		for i := range refs {
			ref := &refs[i]
			if ref.Name != "" || ref.TargetID == nil {
				continue
			}
			if e, ok := found[*ref.TargetID]; ok {
				ref.Name = e.DisplayName
				if ref.Sprites.IsZero() {
					ref.Sprites = domain.SpriteSet{Default: e.Sprites.Default, Shiny: e.Sprites.Shiny}
				}
			} else {
				ref.Name = domain.FallbackName(*ref.TargetID)
			}
		}
	}
	enrich(evo.Precedents)
	enrich(evo.Successors)
	return evo
}

// CollectForms returns the alternate forms to show for entity. When the
// payload carried form data of its own (ownForms, see normalize.HasOwnForms)
// or entity already has forms, those win even if empty. Otherwise the forms
// of every entity on its evolution chain are gathered in chain order.
func (r *Resolver) CollectForms(ctx context.Context, entity domain.CatalogEntity, chain *domain.Evolution, ownForms bool) []domain.FormEntry {
	if ownForms || len(entity.Forms) > 0 {
		return entity.Forms
	}
	var ids []int
	for _, id := range chain.TargetIDs() {
		if id != entity.ID {
			ids = append(ids, id)
		}
	}
	if len(ids) > r.limit {
		ids = ids[:r.limit]
	}

	forms := make([][]domain.FormEntry, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, id := range ids {
		g.Go(func() error {
			root, err := r.fetcher.FetchByID(gctx, id)
			if err != nil {
				r.log.Debug("Form lookup failed", zap.Int("id", id), zap.Error(err))
				return nil
			}
			forms[i] = normalize.Entity(root, id).Forms
			return nil
		})
	}
	_ = g.Wait()

	out := []domain.FormEntry{}
	for _, f := range forms {
		out = append(out, f...)
	}
	return out
}

// lookupAll fetches up to limit entities concurrently. Failures are dropped.
func (r *Resolver) lookupAll(ctx context.Context, ids []int) map[int]domain.CatalogEntity {
	if len(ids) > r.limit {
		r.log.Debug("Capping evolution lookups", zap.Int("wanted", len(ids)), zap.Int("limit", r.limit))
		ids = ids[:r.limit]
	}

	var mu sync.Mutex
	found := make(map[int]domain.CatalogEntity, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for _, id := range ids {
		g.Go(func() error {
			root, err := r.fetcher.FetchByID(gctx, id)
			if err != nil {
				r.log.Debug("Evolution lookup failed", zap.Int("id", id), zap.Error(err))
				return nil
			}
			e := normalize.Entity(root, id)
			mu.Lock()
			found[id] = e
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return found
}
