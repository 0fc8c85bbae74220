// Path: internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"pokedex/internal/config"
	"pokedex/internal/domain"
	"pokedex/internal/events"
	"pokedex/internal/evolution"
	"pokedex/internal/normalize"
	"pokedex/internal/shape"
)

// Catalog is the upstream catalog API. Implemented by *catalog.Client and
// replaced by fakes in tests.
type Catalog interface {
	ListAll(ctx context.Context) ([]domain.CatalogEntity, error)
	FetchByID(ctx context.Context, id int) (shape.Node, error)
	Lookup(ctx context.Context, key string) (shape.Node, error)
	FetchEvolution(ctx context.Context, id int) (shape.Node, error)
}

// Favorites is the favorites set the service toggles.
type Favorites interface {
	Contains(id int) bool
	Toggle(ctx context.Context, entity domain.CatalogEntity) (bool, error)
	List() []domain.CatalogEntity
}

// Service is the central orchestrator: it keeps the catalog listing fresh,
// assembles detail views and toggles favorites by id.
type Service struct {
	cfg       config.CatalogConfig
	catalog   Catalog
	resolver  *evolution.Resolver
	favorites Favorites
	broker    *events.Broker
	log       *zap.Logger

	mu      sync.RWMutex
	entries []domain.CatalogEntity
	loaded  bool

	stopOnce sync.Once
	stopChan chan struct{} // Used for graceful shutdown
}

// NewService creates a new core application service.
func NewService(
	cfg config.CatalogConfig,
	catalog Catalog,
	favorites Favorites,
	broker *events.Broker,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		catalog:   catalog,
		resolver:  evolution.NewResolver(catalog, cfg.EvolutionFanoutLimit, logger),
		favorites: favorites,
		broker:    broker,
		log:       logger.Named("service"),
		entries:   []domain.CatalogEntity{},
		stopChan:  make(chan struct{}),
	}
}

// Start refreshes the catalog immediately and then periodically until Stop
// is called or ctx is cancelled. It is a long-running, blocking method.
func (s *Service) Start(ctx context.Context) {
	interval := time.Duration(s.cfg.RefreshIntervalMinutes) * time.Minute
	s.log.Info("Catalog refresh loop starting", zap.Duration("interval", interval))

	// Run the first refresh immediately on startup.
	if err := s.RefreshCatalog(ctx); err != nil {
		s.log.Warn("Initial catalog refresh failed", zap.Error(err))
	}
	if interval <= 0 {
		s.log.Info("Periodic refresh disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.RefreshCatalog(ctx); err != nil {
				s.log.Warn("Catalog refresh failed, keeping previous listing", zap.Error(err))
			}
		case <-s.stopChan:
			s.log.Info("Catalog refresh loop stopped")
			return
		case <-ctx.Done():
			s.log.Info("Catalog refresh loop context cancelled")
			return
		}
	}
}

// Stop shuts down the refresh loop. It is safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// RefreshCatalog reloads the listing. On failure the previous listing is
// kept, which is the empty list when nothing was ever loaded.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	entries, err := s.catalog.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	s.mu.Lock()
	s.entries = entries
	s.loaded = true
	s.mu.Unlock()

	s.log.Info("Catalog refreshed", zap.Int("entries", len(entries)))
	s.broker.Publish(events.TopicCatalogRefreshed, len(entries))
	return nil
}

// Catalog returns the current listing. The slice is a copy; the entities
// themselves are never mutated.
func (s *Service) Catalog() []domain.CatalogEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Loaded reports whether a listing was ever fetched successfully.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Service) cached(id int) (domain.CatalogEntity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.CatalogEntity{}, false
}

// Detail assembles the detail view of id. The primary fetch must succeed;
// the evolution chain and the forms are completed on a best-effort basis,
// strictly after it.
func (s *Service) Detail(ctx context.Context, id int) (domain.Detail, error) {
	if id < 1 {
		return domain.Detail{}, domain.ErrNotFound
	}
	root, err := s.catalog.FetchByID(ctx, id)
	if err != nil {
		return domain.Detail{}, err
	}
	entity := normalize.Entity(root, id)
	if err := ctx.Err(); err != nil {
		return domain.Detail{}, err
	}

	entity.Evolution = s.resolver.ResolveEvolutionChain(ctx, entity)
	forms := s.resolver.CollectForms(ctx, entity, entity.Evolution, normalize.HasOwnForms(root))
	entity.Forms = normalize.DisplayableForms(entity, forms)
	if err := ctx.Err(); err != nil {
		return domain.Detail{}, err
	}

	return domain.Detail{
		Entity:     entity,
		Navigation: domain.NavigationFor(entity.ID),
		Favorite:   s.favorites.Contains(entity.ID),
	}, nil
}

// Lookup resolves a name or numeric id to a full entity.
func (s *Service) Lookup(ctx context.Context, query string) (domain.CatalogEntity, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.CatalogEntity{}, domain.ErrNotFound
	}
	root, err := s.catalog.Lookup(ctx, query)
	if err != nil {
		return domain.CatalogEntity{}, err
	}
	fallback, _ := strconv.Atoi(query)
	entity := normalize.Entity(root, fallback)
	if entity.ID < 1 {
		return domain.CatalogEntity{}, domain.ErrNotFound
	}
	return entity, nil
}

// ToggleFavorite flips the favorite state of id. The snapshot comes from the
// cached listing when possible, otherwise from a fresh fetch.
func (s *Service) ToggleFavorite(ctx context.Context, id int) (bool, error) {
	if id < 1 {
		return false, domain.ErrNotFound
	}
	entity, ok := s.cached(id)
	if !ok {
		root, err := s.catalog.FetchByID(ctx, id)
		if err != nil {
			return false, fmt.Errorf("snapshot %d: %w", id, err)
		}
		entity = normalize.Entity(root, id)
	}
	added, err := s.favorites.Toggle(ctx, entity)
	if err != nil {
		return added, err
	}
	s.log.Debug("Favorite toggled", zap.Int("id", id), zap.Bool("added", added))
	return added, nil
}

// Favorites returns the favorites in insertion order.
func (s *Service) Favorites() []domain.CatalogEntity {
	return s.favorites.List()
}

// IsCancelled reports whether err comes from an abandoned request.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
