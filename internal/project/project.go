// Package project defines the per-project configuration record and the
// cache-aside resolver that materializes it.
package project

import "context"

// CacheKeyPrefix is prepended to the project slug to form the cache key.
const CacheKeyPrefix = "project:"

// Notification holds the Telegram destination for a project, carried inside
// the cached config so event ingestion needs no extra store round-trip.
type Notification struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

// Config is the canonical cache record for one project. The JSON shape is
// stable: cache entries written by one instance must be readable by all
// others.
type Config struct {
	// Code is the JavaScript payload served for GET requests. When
	// obfuscation is enabled for the project this is already the obfuscated
	// variant; consumers never see both.
	Code string `json:"code"`
	// ExtraArgNames lists the field names the project accepts on event
	// submission, in store order. Duplicates are preserved.
	ExtraArgNames []string     `json:"extra_arg_names"`
	Notification  Notification `json:"notification"`
}

// CacheKey returns the cache key for a project slug.
func CacheKey(slug string) string {
	return CacheKeyPrefix + slug
}

// Cache is the key-value cache capability consumed by the resolver. Get
// reports absence via the boolean, not an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Store is the authoritative relational source for project configuration.
// GetProject returns nil when the project does not exist, is disabled, or
// has no code payload.
type Store interface {
	GetProject(ctx context.Context, slug string) (*Config, error)
	ListExtraArgNames(ctx context.Context, slug string) ([]string, error)
}
