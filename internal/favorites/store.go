// Path: internal/favorites/store.go
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pokedex/internal/domain"
	"pokedex/internal/events"
	"pokedex/internal/storage"
)

// Key is the KV slot holding the serialized favorites.
const Key = "favorites"

// Store is the process-wide favorites set. Entries are snapshots taken at
// toggle time and iterate in insertion order.
type Store struct {
	mu     sync.RWMutex
	kv     storage.KV
	broker *events.Broker
	log    *zap.Logger
	gauge  prometheus.Gauge

	order []int
	byID  map[int]domain.CatalogEntity
}

// Option configures a Store.
type Option func(*Store)

// WithGauge reports the number of favorites on g after every change.
func WithGauge(g prometheus.Gauge) Option {
	return func(s *Store) { s.gauge = g }
}

// NewGauge registers the favorites gauge on reg.
func NewGauge(reg prometheus.Registerer) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pokedex",
		Name:      "favorites",
		Help:      "Number of entries in the favorites set.",
	})
	reg.MustRegister(g)
	return g
}

// NewStore creates an empty store. Call Load once before use.
func NewStore(kv storage.KV, broker *events.Broker, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		broker: broker,
		log:    logger.Named("favorites"),
		byID:   make(map[int]domain.CatalogEntity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory set with the persisted one. Missing or corrupt
// data yields an empty set; only a failing backend is reported.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, Key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.byID = make(map[int]domain.CatalogEntity)
	defer s.report()

	if err != nil {
		return fmt.Errorf("read %s: %w", Key, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("Discarding unreadable favorites", zap.Error(err))
		return nil
	}
	skipped := 0
	for _, item := range items {
		var e domain.CatalogEntity
		if err := json.Unmarshal(item, &e); err != nil || e.ID <= 0 {
			skipped++
			continue
		}
		if _, dup := s.byID[e.ID]; dup {
			skipped++
			continue
		}
		if strings.TrimSpace(e.DisplayName) == "" {
			e.DisplayName = domain.FallbackName(e.ID)
		}
		s.order = append(s.order, e.ID)
		s.byID[e.ID] = e
	}
	if skipped > 0 {
		s.log.Warn("Skipped invalid favorites entries", zap.Int("skipped", skipped))
	}
	s.log.Debug("Favorites loaded", zap.Int("count", len(s.order)))
	return nil
}

// Toggle removes the entity when present, otherwise stores a snapshot of it.
// The full set is persisted before returning. added reports the new membership.
func (s *Store) Toggle(ctx context.Context, entity domain.CatalogEntity) (added bool, err error) {
	s.mu.Lock()
	if _, ok := s.byID[entity.ID]; ok {
		delete(s.byID, entity.ID)
		for i, id := range s.order {
			if id == entity.ID {
				s.order = append(s.order[:i:i], s.order[i+1:]...)
				break
			}
		}
	} else {
		s.byID[entity.ID] = entity.Clone()
		s.order = append(s.order, entity.ID)
		added = true
	}
	snapshot := s.listLocked()
	s.report()
	err = s.persistLocked(ctx, snapshot)
	s.mu.Unlock()

	if err != nil {
		return added, err
	}
	s.broker.Publish(events.TopicFavoritesChanged, snapshot)
	return added, nil
}

// Contains reports membership by id.
func (s *Store) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok
}

// List returns deep copies of the favorites in insertion order.
func (s *Store) List() []domain.CatalogEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

// Len returns the number of favorites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *Store) listLocked() []domain.CatalogEntity {
	out := make([]domain.CatalogEntity, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out
}

func (s *Store) persistLocked(ctx context.Context, entries []domain.CatalogEntity) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", Key, err)
	}
	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", Key, err)
	}
	return nil
}

func (s *Store) report() {
	if s.gauge != nil {
		s.gauge.Set(float64(len(s.order)))
	}
}
