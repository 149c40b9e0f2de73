package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	HashStore
	GeoStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSetMulti(ctx context.Context, items []HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
}

// GeoMember is one entry of a geospatial index.
type GeoMember struct {
	Member string
	Lng    float64
	Lat    float64
}

// GeoStore provides geospatial index operations.
type GeoStore interface {
	GeoAdd(ctx context.Context, key string, members []GeoMember) error
	// GeoSearchBox returns the members inside a box centered on
	// lng/lat, ordered nearest-first, capped at limit.
	GeoSearchBox(ctx context.Context, key string, lng, lat, widthKM, heightKM float64, limit int) ([]string, error)
	GeoRemove(ctx context.Context, key string, members []string) error
}

// KVStore provides expiring key-value operations, used for the shared
// query cache. Get returns ErrKeyNotFound on a miss.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
