package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Cache is the key/value cache used for computed read models such as the
// dashboard. Implementations never return errors: a cache failure behaves
// like a miss.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

const (
	PrefixDashboard = "dashboard"
	PrefixRevenue   = "revenue"
	PrefixAlerts    = "alerts"
)

// GenerateKey joins a prefix and its parts with colons, e.g.
// dashboard:tenant_1:5.
func GenerateKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// UnmarshalCacheValue converts a cached value to *T. The in-memory cache
// stores the pointer itself while Redis hands back a JSON string.
func UnmarshalCacheValue[T any](value interface{}) (*T, bool) {
	if value == nil {
		return nil, false
	}

	if typed, ok := value.(*T); ok {
		return typed, true
	}

	if str, ok := value.(string); ok {
		var result T
		if err := json.Unmarshal([]byte(str), &result); err == nil {
			return &result, true
		}
	}

	return nil, false
}
