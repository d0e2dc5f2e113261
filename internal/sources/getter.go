package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nestauk/createch/internal/cache"
	"github.com/nestauk/createch/internal/metrics"
	"github.com/nestauk/createch/internal/records"
)

// Fetcher loads a source's names from the warehouse.
type Fetcher interface {
	Names(ctx context.Context, src Source) ([]records.NameRecord, error)
}

// Getter serves source names through a cache keyed by source and run id.
type Getter struct {
	fetcher Fetcher
	store   cache.Store
	metrics *metrics.Metrics
}

// NewGetter creates a getter. m may be nil.
func NewGetter(fetcher Fetcher, store cache.Store, m *metrics.Metrics) *Getter {
	return &Getter{fetcher: fetcher, store: store, metrics: m}
}

// Names returns the names of source for runID, fetching and caching them on
// a miss.
func (g *Getter) Names(ctx context.Context, source, runID string) ([]records.NameRecord, error) {
	src, err := Lookup(source)
	if err != nil {
		return nil, err
	}
	key := cache.Key(src.Name, runID)

	recs, err := g.store.Get(ctx, key)
	switch {
	case err == nil:
		g.count("hit")
		log.Debug().Str("key", key).Int("names", len(recs)).Msg("name cache hit")
		return recs, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		return nil, fmt.Errorf("failed to read name cache: %w", err)
	}
	g.count("miss")

	recs, err = g.fetcher.Names(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := g.store.Put(ctx, key, recs); err != nil {
		return nil, fmt.Errorf("failed to write name cache: %w", err)
	}
	log.Info().Str("source", src.Name).Str("run", runID).Int("names", len(recs)).Msg("fetched names")
	return recs, nil
}

// Invalidate drops the cached names of source for runID.
func (g *Getter) Invalidate(ctx context.Context, source, runID string) error {
	src, err := Lookup(source)
	if err != nil {
		return err
	}
	return g.store.Delete(ctx, cache.Key(src.Name, runID))
}

func (g *Getter) count(result string) {
	if g.metrics != nil {
		g.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
