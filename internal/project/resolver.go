package project

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Source reports where a resolved config came from.
type Source int

const (
	// SourceNone means the project was not found anywhere.
	SourceNone Source = iota
	// SourceCache means the config was served from the key-value cache.
	SourceCache
	// SourceStore means the config was built from the relational store and
	// written back to the cache.
	SourceStore
)

// String implements fmt.Stringer for metrics labels.
func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceStore:
		return "store"
	default:
		return "none"
	}
}

// Resolver performs cache-aside lookups of project configuration.
type Resolver struct {
	cache  Cache
	store  Store
	logger *zap.Logger
}

// NewResolver wires a Resolver to its cache and store capabilities.
func NewResolver(cache Cache, store Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cache: cache, store: store, logger: logger}
}

// Resolve returns the config for slug, or nil when the project is absent or
// disabled. The cache is consulted first; a hit never touches the store. On
// a miss the config is assembled from the store and written back under the
// same key with no expiration. Absence is deliberately not cached so that
// activating a project takes effect on the next request.
func (r *Resolver) Resolve(ctx context.Context, slug string) (*Config, Source, error) {
	key := CacheKey(slug)

	raw, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		// A broken cache degrades to store lookups rather than failing the
		// request.
		r.logger.Warn("config cache read failed", zap.String("project", slug), zap.Error(err))
	} else if ok {
		var cfg Config
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, SourceNone, fmt.Errorf("decode cached config for %q: %w", slug, err)
		}
		return &cfg, SourceCache, nil
	}

	cfg, err := r.store.GetProject(ctx, slug)
	if err != nil {
		return nil, SourceNone, fmt.Errorf("load project %q: %w", slug, err)
	}
	if cfg == nil {
		return nil, SourceNone, nil
	}

	names, err := r.store.ListExtraArgNames(ctx, slug)
	if err != nil {
		return nil, SourceNone, fmt.Errorf("load extra arg names for %q: %w", slug, err)
	}
	cfg.ExtraArgNames = names

	encoded, err := json.Marshal(cfg)
	if err != nil {
		return nil, SourceNone, fmt.Errorf("encode config for %q: %w", slug, err)
	}
	if err := r.cache.Put(ctx, key, string(encoded)); err != nil {
		// The config is still served; only the next request pays for the
		// store round-trip again.
		r.logger.Warn("config cache write failed", zap.String("project", slug), zap.Error(err))
	}
	return cfg, SourceStore, nil
}
